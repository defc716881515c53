package classifier

import (
	"context"

	"github.com/nbryan/concierge/internal/store"
)

// TurnContext is the role+text view of a transcript turn sent to the
// classification service.
type TurnContext struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Request carries one utterance plus the conversational and data context
// the service needs to ground its answer.
type Request struct {
	Utterance        string          `json:"utterance"`
	RecentTurns      []TurnContext   `json:"recent_turns,omitempty"`
	Snapshot         *store.Snapshot `json:"entity_snapshot,omitempty"`
	NowLocal         string          `json:"now_local"`
	NowAbsolute      string          `json:"now_absolute"`
	FulfilledIntents []string        `json:"fulfilled_intents,omitempty"`
}

// RawPayload is the service's loosely-typed response. It is an external
// boundary value: nothing may branch on it before Validate turns it into
// an Intent.
type RawPayload struct {
	Action      string                 `json:"action"`
	Message     string                 `json:"message,omitempty"`
	Kind        string                 `json:"kind,omitempty"`
	Title       string                 `json:"title,omitempty"`
	SearchTitle string                 `json:"search_title,omitempty"`
	Notes       string                 `json:"notes,omitempty"`
	Datetime    string                 `json:"datetime,omitempty"`
	Date        string                 `json:"date,omitempty"`
	Priority    *int                   `json:"priority,omitempty"`
	Frequency   string                 `json:"frequency,omitempty"`
	Updates     map[string]interface{} `json:"updates,omitempty"`
	Items       []string               `json:"items,omitempty"`
}

// Classifier is the boundary adapter to the classification service.
// Implementations make exactly one attempt per call: no retries, no
// caching. The caller owns the single-flight guarantee.
type Classifier interface {
	Classify(ctx context.Context, req Request) (*RawPayload, error)
}
