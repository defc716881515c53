// Package feedback captures the user's approval or disapproval of an
// executed action. Approvals are recorded immediately; a disapproval is
// held back until the user explains what should have happened, so the
// record always carries a usable correction.
package feedback

import (
	"context"

	"github.com/nbryan/concierge/internal/transcript"
)

// CorrectionPrompt is what the assistant asks after a thumbs-down.
const CorrectionPrompt = "Sorry about that. What should I have done instead?"

// Recorder turns reactions into persisted feedback entries.
type Recorder struct {
	store *Store
}

// NewRecorder creates a recorder backed by the given store.
func NewRecorder(store *Store) *Recorder {
	return &Recorder{store: store}
}

// RecordApproval persists an "up" reaction for the given assistant turn.
func (r *Recorder) RecordApproval(ctx context.Context, turn *transcript.Turn) (*Entry, error) {
	return r.store.Create(ctx, Entry{
		TurnID:           turn.ID,
		Verdict:          transcript.VerdictUp,
		UserText:         turn.OriginatingUserText,
		AssistantText:    turn.Text,
		ActionDescriptor: turn.ActionDescriptor,
	})
}

// RecordCorrection persists a "down" reaction together with the user's
// correction. This is the only path that records a disapproval.
func (r *Recorder) RecordCorrection(ctx context.Context, turn *transcript.Turn, correction string) (*Entry, error) {
	return r.store.Create(ctx, Entry{
		TurnID:           turn.ID,
		Verdict:          transcript.VerdictDown,
		UserText:         turn.OriginatingUserText,
		AssistantText:    turn.Text,
		ActionDescriptor: turn.ActionDescriptor,
		Correction:       correction,
	})
}
