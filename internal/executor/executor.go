// Package executor turns a validated intent into a store mutation and
// the assistant's reply. Local writes happen synchronously; remote
// mirroring is best-effort and deferred until the reply turn is visible.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nbryan/concierge/internal/bridge"
	"github.com/nbryan/concierge/internal/classifier"
	"github.com/nbryan/concierge/internal/resolver"
	"github.com/nbryan/concierge/internal/store"
	syncer "github.com/nbryan/concierge/internal/sync"
	"github.com/nbryan/concierge/internal/transcript"
)

// CalendarNavigator receives calendar navigation targets. It is a view
// collaborator: no store mutation is involved.
type CalendarNavigator interface {
	NavigateTo(ctx context.Context, date string)
}

// PendingDeletion is the outstanding confirmation round-trip created by
// a delete intent. Deletion never happens without it.
type PendingDeletion struct {
	ItemID           string
	ItemTitle        string
	ItemKind         store.Kind
	ConfirmationText string

	// The user utterance that asked for the deletion, installed by the
	// conversation manager. Feedback on the resolved turn correlates to
	// this request, not to the confirmation prompt.
	OriginatingUserText string
}

// Mirror is one local write awaiting a best-effort remote push.
type Mirror struct {
	Kind store.Kind
	Item store.Item
}

// Outcome is the result of applying one intent: the reply to show, the
// action metadata for feedback correlation, and any follow-up work.
type Outcome struct {
	Reply            string
	ActionKind       transcript.ActionKind
	ActionDescriptor string
	Pending          *PendingDeletion
	ClearChat        bool
	Mirrors          []Mirror
}

// Config wires an Executor. Remote, Port, and Calendar may be nil.
type Config struct {
	Store      store.Store
	Resolver   *resolver.Resolver
	Remote     *syncer.Client
	Port       *bridge.Port
	Calendar   CalendarNavigator
	SpeechHost bool
	Now        func() time.Time
}

// Executor applies intents against the local store.
type Executor struct {
	store      store.Store
	resolver   *resolver.Resolver
	remote     *syncer.Client
	port       *bridge.Port
	calendar   CalendarNavigator
	speechHost bool
	now        func() time.Time
}

// New creates an executor from the config.
func New(cfg Config) *Executor {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Executor{
		store:      cfg.Store,
		resolver:   cfg.Resolver,
		remote:     cfg.Remote,
		port:       cfg.Port,
		calendar:   cfg.Calendar,
		speechHost: cfg.SpeechHost,
		now:        now,
	}
}

// Apply dispatches one validated intent. The type switch is exhaustive
// over the intent sum; an unhandled variant falls through to the plain
// reply treatment.
func (e *Executor) Apply(ctx context.Context, intent classifier.Intent) (*Outcome, error) {
	switch it := intent.(type) {
	case classifier.Add:
		return e.applyAdd(ctx, it)
	case classifier.Update:
		return e.applyUpdate(ctx, it)
	case classifier.UpdatePriority:
		return e.applyUpdatePriority(ctx, it)
	case classifier.Delete:
		return e.applyDelete(ctx, it)
	case classifier.NavigateCalendar:
		return e.applyNavigate(ctx, it)
	case classifier.ClearChat:
		return &Outcome{
			Reply:     replyOrTemplate(it.Message, clearedReply),
			ClearChat: true,
		}, nil
	case classifier.Reply:
		text := it.Text
		if text == "" {
			text = "I'm not sure what you meant. Could you rephrase that?"
		}
		return &Outcome{Reply: text}, nil
	default:
		return &Outcome{Reply: "I'm not sure what you meant. Could you rephrase that?"}, nil
	}
}

func (e *Executor) applyAdd(ctx context.Context, it classifier.Add) (*Outcome, error) {
	// Batches: the classifier sends several items at once, usually for
	// groceries but Validate admits a list for any kind.
	if len(it.Items) > 0 {
		out := &Outcome{
			ActionKind:       transcript.ActionAdd,
			ActionDescriptor: fmt.Sprintf("add %d %ss", len(it.Items), kindNoun(it.Kind)),
		}
		for _, title := range it.Items {
			item := store.Item{ID: uuid.New().String(), Title: title}
			if err := e.store.Create(ctx, it.Kind, item); err != nil {
				return nil, err
			}
			out.Mirrors = append(out.Mirrors, Mirror{Kind: it.Kind, Item: item})
		}
		out.Reply = replyOrTemplate(it.Message, addedManyReply(it.Kind, it.Items))
		return out, nil
	}

	item := store.Item{
		ID:        uuid.New().String(),
		Title:     it.Title,
		Notes:     it.Notes,
		Priority:  it.Priority,
		Frequency: it.Frequency,
	}

	var timed bool
	if it.Kind == store.KindTask || it.Kind == store.KindAppointment {
		item.Due, timed = ParseWhen(it.When, e.now())
		item.Timed = timed
	}

	if err := e.store.Create(ctx, it.Kind, item); err != nil {
		return nil, err
	}

	// Notifications only exist under a speech-capable host, and only
	// when the reminder carries an explicit time.
	if e.speechHost && e.port != nil && timed && item.Due != nil {
		e.port.ScheduleNotification(item.ID, "Reminder", item.Title, item.Due.Format(time.RFC3339))
	}

	descriptor := fmt.Sprintf("add %s %q", kindNoun(it.Kind), it.Title)
	if item.Due != nil {
		descriptor += " due " + item.Due.Format(time.RFC3339)
	}

	return &Outcome{
		Reply:            replyOrTemplate(it.Message, addedReply(it.Kind, it.Title, item.Due, timed)),
		ActionKind:       transcript.ActionAdd,
		ActionDescriptor: descriptor,
		Mirrors:          []Mirror{{Kind: it.Kind, Item: item}},
	}, nil
}

func (e *Executor) applyUpdate(ctx context.Context, it classifier.Update) (*Outcome, error) {
	target, err := e.resolver.Find(ctx, it.Kind, it.SearchTitle)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return &Outcome{Reply: notFoundReply(it.Kind, it.SearchTitle)}, nil
	}

	fields := e.fieldsFromUpdates(it.Updates)
	if fields.Empty() {
		return &Outcome{Reply: fmt.Sprintf("There was nothing to change on %q.", target.Title)}, nil
	}
	if err := e.store.Patch(ctx, it.Kind, target.ID, fields); err != nil {
		return nil, err
	}

	updated := *target
	applyFields(&updated, fields)

	return &Outcome{
		Reply:            replyOrTemplate(it.Message, updatedReply(it.Kind, target.Title)),
		ActionKind:       transcript.ActionUpdate,
		ActionDescriptor: fmt.Sprintf("update %s %q", kindNoun(it.Kind), target.Title),
		Mirrors:          []Mirror{{Kind: it.Kind, Item: updated}},
	}, nil
}

func (e *Executor) applyUpdatePriority(ctx context.Context, it classifier.UpdatePriority) (*Outcome, error) {
	target, err := e.resolver.Find(ctx, it.Kind, it.SearchTitle)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return &Outcome{Reply: notFoundReply(it.Kind, it.SearchTitle)}, nil
	}

	priority := it.Priority
	if err := e.store.Patch(ctx, it.Kind, target.ID, store.Fields{Priority: &priority}); err != nil {
		return nil, err
	}

	updated := *target
	updated.Priority = priority

	return &Outcome{
		Reply:            replyOrTemplate(it.Message, priorityReply(it.Kind, target.Title, priority)),
		ActionKind:       transcript.ActionUpdate,
		ActionDescriptor: fmt.Sprintf("set priority of %s %q to %d", kindNoun(it.Kind), target.Title, priority),
		Mirrors:          []Mirror{{Kind: it.Kind, Item: updated}},
	}, nil
}

func (e *Executor) applyDelete(ctx context.Context, it classifier.Delete) (*Outcome, error) {
	target, err := e.resolver.Find(ctx, it.Kind, it.SearchTitle)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return &Outcome{Reply: notFoundReply(it.Kind, it.SearchTitle)}, nil
	}

	prompt := deleteConfirmPrompt(it.Kind, target.Title)
	return &Outcome{
		Reply: prompt,
		Pending: &PendingDeletion{
			ItemID:           target.ID,
			ItemTitle:        target.Title,
			ItemKind:         it.Kind,
			ConfirmationText: prompt,
		},
	}, nil
}

func (e *Executor) applyNavigate(ctx context.Context, it classifier.NavigateCalendar) (*Outcome, error) {
	if e.calendar != nil {
		e.calendar.NavigateTo(ctx, it.Date)
	}
	return &Outcome{Reply: replyOrTemplate(it.Message, calendarReply(it.Date))}, nil
}

// ConfirmDeletion performs the deletion the pending sub-dialogue guarded.
func (e *Executor) ConfirmDeletion(ctx context.Context, p *PendingDeletion) (*Outcome, error) {
	if err := e.store.Delete(ctx, p.ItemKind, p.ItemID); err != nil {
		return nil, err
	}
	return &Outcome{
		Reply:            deletedReply(p.ItemKind, p.ItemTitle),
		ActionKind:       transcript.ActionDelete,
		ActionDescriptor: fmt.Sprintf("delete %s %q", kindNoun(p.ItemKind), p.ItemTitle),
	}, nil
}

// CancelDeletion resolves the pending sub-dialogue without deleting.
func (e *Executor) CancelDeletion(p *PendingDeletion) *Outcome {
	return &Outcome{Reply: keptReply(p.ItemKind, p.ItemTitle)}
}

// PushMirrors issues the best-effort remote writes for an outcome. It is
// called after the reply turn is appended so a slow remote call can
// never reorder the visible transcript.
func (e *Executor) PushMirrors(ctx context.Context, mirrors []Mirror) {
	for _, m := range mirrors {
		e.remote.Push(ctx, m.Kind, m.Item)
	}
}

// fieldsFromUpdates converts the classifier's loose field map into a
// typed patch. Unknown keys are dropped.
func (e *Executor) fieldsFromUpdates(updates map[string]interface{}) store.Fields {
	var fields store.Fields
	for key, value := range updates {
		switch key {
		case "title", "name":
			if s, ok := value.(string); ok {
				fields.Title = &s
			}
		case "notes", "content":
			if s, ok := value.(string); ok {
				fields.Notes = &s
			}
		case "datetime", "due", "start":
			if s, ok := value.(string); ok {
				due, timed := ParseWhen(s, e.now())
				fields.Due = due
				fields.Timed = &timed
			}
		case "priority":
			switch v := value.(type) {
			case float64:
				p := int(v)
				fields.Priority = &p
			case int:
				p := v
				fields.Priority = &p
			}
		case "frequency":
			if s, ok := value.(string); ok {
				fields.Frequency = &s
			}
		case "done", "completed":
			if b, ok := value.(bool); ok {
				fields.Done = &b
			}
		}
	}
	return fields
}

// applyFields folds a patch into an in-memory copy for mirroring.
func applyFields(item *store.Item, fields store.Fields) {
	if fields.Title != nil {
		item.Title = *fields.Title
	}
	if fields.Notes != nil {
		item.Notes = *fields.Notes
	}
	if fields.Due != nil {
		item.Due = fields.Due
	}
	if fields.Timed != nil {
		item.Timed = *fields.Timed
	}
	if fields.Priority != nil {
		item.Priority = *fields.Priority
	}
	if fields.Frequency != nil {
		item.Frequency = *fields.Frequency
	}
	if fields.Done != nil {
		item.Done = *fields.Done
	}
}
