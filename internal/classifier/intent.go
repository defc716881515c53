package classifier

import (
	"github.com/nbryan/concierge/internal/store"
)

// Intent is the closed sum of validated classifier responses. Every
// variant is produced by Validate and consumed by a single type switch
// in the executor, so a new discriminant is a compile-visible gap rather
// than a silent no-op.
type Intent interface {
	intent()
}

// Add creates a new item in a collection.
type Add struct {
	Kind      store.Kind
	Title     string
	Notes     string
	When      string // raw datetime string, parsed by the executor
	Priority  int
	Frequency string
	Items     []string // grocery batches arrive as a list
	Message   string
}

// Update applies field changes to one existing item.
type Update struct {
	Kind        store.Kind
	SearchTitle string
	Updates     map[string]interface{}
	Message     string
}

// UpdatePriority changes the priority of one existing item.
type UpdatePriority struct {
	Kind        store.Kind
	SearchTitle string
	Priority    int
	Message     string
}

// Delete asks for an item's removal; execution always confirms first.
type Delete struct {
	Kind        store.Kind
	SearchTitle string
	Message     string
}

// NavigateCalendar forwards a target date to the calendar view.
type NavigateCalendar struct {
	Date    string
	Message string
}

// ClearChat empties the transcript and resets session suggestions.
type ClearChat struct {
	Message string
}

// Reply is a plain conversational answer with no side effect. Unknown or
// malformed payloads normalize to this variant.
type Reply struct {
	Text string
}

func (Add) intent()              {}
func (Update) intent()           {}
func (UpdatePriority) intent()   {}
func (Delete) intent()           {}
func (NavigateCalendar) intent() {}
func (ClearChat) intent()        {}
func (Reply) intent()            {}

// Validate converts the loose boundary payload into the closed intent
// sum. Anything that cannot be made into a well-formed operation becomes
// a Reply carrying the sanitized message text.
func Validate(raw *RawPayload) Intent {
	if raw == nil {
		return Reply{Text: ""}
	}
	reply := func() Intent {
		return Reply{Text: CleanReply(raw.Message)}
	}

	switch raw.Action {
	case "add":
		kind, ok := store.ParseKind(raw.Kind)
		if !ok {
			kind = store.KindTask
		}
		if raw.Title == "" && len(raw.Items) == 0 {
			return reply()
		}
		priority := 0
		if raw.Priority != nil {
			priority = *raw.Priority
		}
		return Add{
			Kind:      kind,
			Title:     raw.Title,
			Notes:     raw.Notes,
			When:      raw.Datetime,
			Priority:  priority,
			Frequency: raw.Frequency,
			Items:     raw.Items,
			Message:   raw.Message,
		}

	case "update":
		kind, ok := store.ParseKind(raw.Kind)
		if !ok || searchTitle(raw) == "" || len(raw.Updates) == 0 {
			return reply()
		}
		return Update{
			Kind:        kind,
			SearchTitle: searchTitle(raw),
			Updates:     raw.Updates,
			Message:     raw.Message,
		}

	case "update_priority":
		kind, ok := store.ParseKind(raw.Kind)
		if !ok || searchTitle(raw) == "" || raw.Priority == nil {
			return reply()
		}
		return UpdatePriority{
			Kind:        kind,
			SearchTitle: searchTitle(raw),
			Priority:    *raw.Priority,
			Message:     raw.Message,
		}

	case "delete":
		kind, ok := store.ParseKind(raw.Kind)
		if !ok || searchTitle(raw) == "" {
			return reply()
		}
		return Delete{
			Kind:        kind,
			SearchTitle: searchTitle(raw),
			Message:     raw.Message,
		}

	case "navigate_calendar":
		date := raw.Date
		if date == "" {
			date = raw.Datetime
		}
		if date == "" {
			return reply()
		}
		return NavigateCalendar{Date: date, Message: raw.Message}

	case "clear_chat":
		return ClearChat{Message: raw.Message}

	default:
		return reply()
	}
}

// searchTitle tolerates the service filling either title field on
// lookup-style actions.
func searchTitle(raw *RawPayload) string {
	if raw.SearchTitle != "" {
		return raw.SearchTitle
	}
	return raw.Title
}
