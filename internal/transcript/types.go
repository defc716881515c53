package transcript

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ActionKind is the coarse category of an executed action, used for
// feedback correlation.
type ActionKind string

const (
	ActionAdd    ActionKind = "add"
	ActionUpdate ActionKind = "update"
	ActionDelete ActionKind = "delete"
)

// Verdict is a user's reaction to an assistant turn.
type Verdict string

const (
	VerdictUp   Verdict = "up"
	VerdictDown Verdict = "down"
)

// Turn is one entry in the conversation log. Turns are immutable once
// appended, except for Feedback and Correction which are attached later
// by id.
type Turn struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
	Text string `json:"text"`

	// Set on assistant turns that executed a store mutation; used to
	// correlate feedback with the action it judges.
	ActionDescriptor string     `json:"action_descriptor,omitempty"`
	ActionKind       ActionKind `json:"action_kind,omitempty"`
	FeedbackID       string     `json:"feedback_id,omitempty"`

	// The user text that produced this assistant turn, kept so a
	// correction can replay the original request.
	OriginatingUserText string `json:"originating_user_text,omitempty"`

	Feedback   Verdict `json:"feedback,omitempty"`
	Correction string  `json:"correction,omitempty"`
}
