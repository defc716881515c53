package transcript

import (
	"context"
	"log"
	"sync"
)

// Capacity is the fixed turn limit; the oldest turn is evicted first.
const Capacity = 50

// RecentLimit is how many trailing turns are offered to the classifier.
const RecentLimit = 10

// Persister saves and restores a session's transcript. Save is called on
// every change; failures are logged and never block the conversation.
type Persister interface {
	Save(ctx context.Context, sessionID string, turns []Turn) error
	Load(ctx context.Context, sessionID string) ([]Turn, error)
}

// Buffer is the ordered, size-bounded log of turns for one session.
// Insertion order is the only ordering guarantee. Mutations come from
// the conversation manager's single-flight slot, but read surfaces
// (the transcript endpoint) run on concurrent handlers, so the slice is
// guarded.
type Buffer struct {
	mu        sync.Mutex
	sessionID string
	turns     []Turn
	persister Persister
}

// NewBuffer creates an empty buffer for the session. persister may be nil.
func NewBuffer(sessionID string, persister Persister) *Buffer {
	return &Buffer{sessionID: sessionID, persister: persister}
}

// Rehydrate loads the persisted transcript, replacing any buffered turns.
func (b *Buffer) Rehydrate(ctx context.Context) error {
	if b.persister == nil {
		return nil
	}
	turns, err := b.persister.Load(ctx, b.sessionID)
	if err != nil {
		return err
	}
	if len(turns) > Capacity {
		turns = turns[len(turns)-Capacity:]
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.turns = turns
	return nil
}

// Append adds a turn, evicting from the head when over capacity.
func (b *Buffer) Append(ctx context.Context, turn Turn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.turns = append(b.turns, turn)
	if len(b.turns) > Capacity {
		b.turns = b.turns[len(b.turns)-Capacity:]
	}
	b.persist(ctx)
}

// AttachFeedback records a verdict and the feedback entry id on the
// identified turn.
func (b *Buffer) AttachFeedback(ctx context.Context, turnID string, verdict Verdict, feedbackID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.turns {
		if b.turns[i].ID == turnID {
			b.turns[i].Feedback = verdict
			if feedbackID != "" {
				b.turns[i].FeedbackID = feedbackID
			}
			b.persist(ctx)
			return true
		}
	}
	return false
}

// AttachCorrection records the user's correction text on the identified turn.
func (b *Buffer) AttachCorrection(ctx context.Context, turnID, correction string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.turns {
		if b.turns[i].ID == turnID {
			b.turns[i].Correction = correction
			b.persist(ctx)
			return true
		}
	}
	return false
}

// Find returns the turn with the given id, or nil. The pointer is only
// stable for the caller holding the manager's submission slot.
func (b *Buffer) Find(turnID string) *Turn {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.turns {
		if b.turns[i].ID == turnID {
			return &b.turns[i]
		}
	}
	return nil
}

// Recent returns up to n trailing turns.
func (b *Buffer) Recent(n int) []Turn {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n >= len(b.turns) {
		n = len(b.turns)
	}
	out := make([]Turn, n)
	copy(out, b.turns[len(b.turns)-n:])
	return out
}

// Turns returns a copy of the full transcript.
func (b *Buffer) Turns() []Turn {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Turn, len(b.turns))
	copy(out, b.turns)
	return out
}

// Len returns the number of buffered turns.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.turns)
}

// Clear empties the transcript.
func (b *Buffer) Clear(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.turns = nil
	b.persist(ctx)
}

func (b *Buffer) persist(ctx context.Context) {
	if b.persister == nil {
		return
	}
	if err := b.persister.Save(ctx, b.sessionID, b.turns); err != nil {
		log.Printf("transcript: persisting session %s: %v", b.sessionID, err)
	}
}
