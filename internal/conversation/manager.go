// Package conversation orchestrates turn-taking: it routes each raw
// utterance either to an outstanding sub-dialogue (deletion confirmation
// or correction capture) or through the classifier to the executor, and
// carries the per-session learning signals between turns.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nbryan/concierge/internal/bridge"
	"github.com/nbryan/concierge/internal/classifier"
	"github.com/nbryan/concierge/internal/executor"
	"github.com/nbryan/concierge/internal/feedback"
	"github.com/nbryan/concierge/internal/store"
	"github.com/nbryan/concierge/internal/transcript"
)

// ErrBusy rejects a submission while another is still being processed.
// Overlapping submissions are refused, not queued.
var ErrBusy = errors.New("a submission is already in progress")

// DefaultPendingTTL bounds how long a pending sub-dialogue waits for an
// answer. Expiry is checked lazily on the next submission.
const DefaultPendingTTL = 2 * time.Minute

// Fulfilled-intent categories: once the assistant has volunteered
// follow-up suggestions for a category, it stays quiet about it until an
// explicit re-query.
const (
	categoryTodos        = "todos"
	categoryAppointments = "appointments"
	categoryRoutines     = "routines"
)

// Config wires a Manager. Port may be nil for hosts without speech.
type Config struct {
	Buffer     *transcript.Buffer
	Classifier classifier.Classifier
	Executor   *executor.Executor
	Recorder   *feedback.Recorder
	Store      store.Store
	Port       *bridge.Port
	SpeechHost bool
	PendingTTL time.Duration
	Now        func() time.Time
}

// Manager is the conversation state machine. All mutable conversational
// state lives on the instance so tests can construct isolated managers.
type Manager struct {
	mu   sync.Mutex
	busy bool

	buffer     *transcript.Buffer
	classifier classifier.Classifier
	executor   *executor.Executor
	recorder   *feedback.Recorder
	store      store.Store
	port       *bridge.Port
	speechHost bool

	pendingDeletion   *executor.PendingDeletion
	pendingCorrection *pendingCorrection
	pendingSetAt      time.Time
	pendingTTL        time.Duration

	fulfilled map[string]bool
	now       func() time.Time
}

// New creates a manager from the config.
func New(cfg Config) *Manager {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	ttl := cfg.PendingTTL
	if ttl == 0 {
		ttl = DefaultPendingTTL
	}
	return &Manager{
		buffer:     cfg.Buffer,
		classifier: cfg.Classifier,
		executor:   cfg.Executor,
		recorder:   cfg.Recorder,
		store:      cfg.Store,
		port:       cfg.Port,
		speechHost: cfg.SpeechHost,
		pendingTTL: ttl,
		fulfilled:  make(map[string]bool),
		now:        now,
	}
}

// Submit processes one raw utterance and returns the resulting assistant
// turn. Single-flight: a second call while one is outstanding fails with
// ErrBusy.
func (m *Manager) Submit(ctx context.Context, text string) (*transcript.Turn, error) {
	if err := m.acquire(); err != nil {
		return nil, err
	}
	defer m.release()

	return m.process(ctx, text)
}

// acquire claims the single-flight slot. Submit and React share it: both
// mutate the transcript and the pending sub-dialogue state, and the
// served surfaces call them from concurrent handlers.
func (m *Manager) acquire() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return ErrBusy
	}
	m.busy = true
	return nil
}

func (m *Manager) release() {
	m.mu.Lock()
	m.busy = false
	m.mu.Unlock()
}

func (m *Manager) process(ctx context.Context, text string) (*transcript.Turn, error) {
	m.expirePending()

	m.buffer.Append(ctx, transcript.Turn{
		ID:   uuid.New().String(),
		Role: transcript.RoleUser,
		Text: text,
	})

	if m.pendingDeletion != nil {
		if turn, handled := m.resolveDeletion(ctx, text); handled {
			return turn, nil
		}
		// Any other answer abandons the confirmation and the utterance
		// is processed as a normal command.
		m.pendingDeletion = nil
	}

	if m.pendingCorrection != nil {
		return m.resolveCorrection(ctx, text)
	}

	return m.classifyAndExecute(ctx, text, text)
}

// resolveDeletion interprets the utterance as a yes/no answer to the
// outstanding confirmation. It reports handled=false when the text is
// neither.
func (m *Manager) resolveDeletion(ctx context.Context, text string) (*transcript.Turn, bool) {
	pending := m.pendingDeletion
	answer := normalizeAnswer(text)

	switch {
	case affirmativeTokens[answer]:
		m.pendingDeletion = nil
		outcome, err := m.executor.ConfirmDeletion(ctx, pending)
		if err != nil {
			return m.appendApology(ctx), true
		}
		return m.commitOutcome(ctx, outcome, pending.OriginatingUserText), true

	case negativeTokens[answer]:
		m.pendingDeletion = nil
		outcome := m.executor.CancelDeletion(pending)
		return m.commitOutcome(ctx, outcome, pending.OriginatingUserText), true

	default:
		return nil, false
	}
}

// resolveCorrection captures the utterance as the correction for the
// disapproved turn, records the feedback, and replays the original
// request annotated with what the user wanted.
func (m *Manager) resolveCorrection(ctx context.Context, correction string) (*transcript.Turn, error) {
	pending := m.pendingCorrection
	m.pendingCorrection = nil

	turn := m.buffer.Find(pending.turnID)
	if turn == nil {
		return m.appendApology(ctx), nil
	}

	entry, err := m.recorder.RecordCorrection(ctx, turn, correction)
	if err != nil {
		return m.appendApology(ctx), nil
	}
	m.buffer.AttachCorrection(ctx, turn.ID, correction)
	m.buffer.AttachFeedback(ctx, turn.ID, transcript.VerdictDown, entry.ID)

	m.buffer.Append(ctx, transcript.Turn{
		ID:   uuid.New().String(),
		Role: transcript.RoleAssistant,
		Text: "Thanks, let me try that again.",
	})

	annotated := fmt.Sprintf(
		"%s\n\n(The user corrected the previous attempt: %s. Apply the correction, then ask the user to confirm the result.)",
		turn.OriginatingUserText, correction,
	)
	return m.classifyAndExecute(ctx, annotated, turn.OriginatingUserText)
}

// classifyAndExecute is the normal path: one classification attempt, one
// execution, one assistant turn.
func (m *Manager) classifyAndExecute(ctx context.Context, utterance, originText string) (*transcript.Turn, error) {
	if hasRequeryCue(utterance) {
		m.fulfilled = make(map[string]bool)
	}

	payload, err := m.classifier.Classify(ctx, m.buildRequest(ctx, utterance))
	if err != nil {
		// Fixed apology; the fulfilled set is left untouched.
		return m.appendApology(ctx), nil
	}

	intent := classifier.Validate(payload)
	outcome, err := m.executor.Apply(ctx, intent)
	if err != nil {
		return m.appendApology(ctx), nil
	}

	if outcome.ClearChat {
		m.buffer.Clear(ctx)
		m.fulfilled = make(map[string]bool)
	}

	m.markFulfilled(intent)
	return m.commitOutcome(ctx, outcome, originText), nil
}

// commitOutcome appends the assistant turn, then runs the deferred side
// effects: pending-state installation, speech, and remote mirroring. The
// transcript append always happens before the remote push so a slow
// remote call cannot reorder visible turns.
func (m *Manager) commitOutcome(ctx context.Context, outcome *executor.Outcome, originText string) *transcript.Turn {
	turn := transcript.Turn{
		ID:                  uuid.New().String(),
		Role:                transcript.RoleAssistant,
		Text:                outcome.Reply,
		ActionKind:          outcome.ActionKind,
		ActionDescriptor:    outcome.ActionDescriptor,
		OriginatingUserText: originText,
	}
	m.buffer.Append(ctx, turn)

	if outcome.Pending != nil {
		outcome.Pending.OriginatingUserText = originText
		m.pendingDeletion = outcome.Pending
		m.pendingSetAt = m.now()
	}

	if m.speechHost && m.port != nil {
		m.port.Speak(bridge.Speakable(outcome.Reply))
	}

	m.executor.PushMirrors(ctx, outcome.Mirrors)
	return &turn
}

func (m *Manager) appendApology(ctx context.Context) *transcript.Turn {
	turn := transcript.Turn{
		ID:   uuid.New().String(),
		Role: transcript.RoleAssistant,
		Text: executor.Apology,
	}
	m.buffer.Append(ctx, turn)
	return &turn
}

// React records the user's reaction to an executed action. An approval
// is persisted immediately; a disapproval opens the correction
// sub-dialogue and returns its prompt turn. Like Submit it is
// single-flight and fails with ErrBusy while a submission is in
// progress.
func (m *Manager) React(ctx context.Context, turnID string, verdict transcript.Verdict) (*transcript.Turn, error) {
	if err := m.acquire(); err != nil {
		return nil, err
	}
	defer m.release()

	turn := m.buffer.Find(turnID)
	if turn == nil {
		return nil, fmt.Errorf("turn not found: %s", turnID)
	}
	if turn.Role != transcript.RoleAssistant || turn.ActionKind == "" {
		return nil, fmt.Errorf("turn %s carries no reviewable action", turnID)
	}

	switch verdict {
	case transcript.VerdictUp:
		entry, err := m.recorder.RecordApproval(ctx, turn)
		if err != nil {
			return nil, err
		}
		m.buffer.AttachFeedback(ctx, turnID, transcript.VerdictUp, entry.ID)
		return nil, nil

	case transcript.VerdictDown:
		m.pendingCorrection = &pendingCorrection{turnID: turnID}
		m.pendingSetAt = m.now()
		prompt := transcript.Turn{
			ID:   uuid.New().String(),
			Role: transcript.RoleAssistant,
			Text: feedback.CorrectionPrompt,
		}
		m.buffer.Append(ctx, prompt)
		return &prompt, nil

	default:
		return nil, fmt.Errorf("unknown verdict %q", verdict)
	}
}

// buildRequest assembles the classification request: trailing turns,
// the id+label entity snapshot, both time renderings, and the fulfilled
// set.
func (m *Manager) buildRequest(ctx context.Context, utterance string) classifier.Request {
	recent := m.buffer.Recent(transcript.RecentLimit)
	turns := make([]classifier.TurnContext, 0, len(recent))
	for _, t := range recent {
		turns = append(turns, classifier.TurnContext{Role: string(t.Role), Text: t.Text})
	}

	snapshot, err := store.TakeSnapshot(ctx, m.store)
	if err != nil {
		snapshot = nil
	}

	now := m.now()
	return classifier.Request{
		Utterance:        utterance,
		RecentTurns:      turns,
		Snapshot:         snapshot,
		NowLocal:         now.Format("Monday, January 2, 2006 3:04 PM"),
		NowAbsolute:      now.Format(time.RFC3339),
		FulfilledIntents: m.fulfilledList(),
	}
}

func (m *Manager) markFulfilled(intent classifier.Intent) {
	var kind store.Kind
	switch it := intent.(type) {
	case classifier.Add:
		kind = it.Kind
	case classifier.Update:
		kind = it.Kind
	case classifier.UpdatePriority:
		kind = it.Kind
	case classifier.Delete:
		kind = it.Kind
	default:
		return
	}
	switch kind {
	case store.KindTask:
		m.fulfilled[categoryTodos] = true
	case store.KindAppointment:
		m.fulfilled[categoryAppointments] = true
	case store.KindHabit:
		m.fulfilled[categoryRoutines] = true
	}
}

func (m *Manager) fulfilledList() []string {
	out := make([]string, 0, len(m.fulfilled))
	for category := range m.fulfilled {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

// expirePending clears an abandoned sub-dialogue once its TTL passes.
func (m *Manager) expirePending() {
	if m.pendingDeletion == nil && m.pendingCorrection == nil {
		return
	}
	if m.pendingTTL > 0 && m.now().Sub(m.pendingSetAt) > m.pendingTTL {
		m.pendingDeletion = nil
		m.pendingCorrection = nil
	}
}

// Buffer exposes the transcript for read surfaces.
func (m *Manager) Buffer() *transcript.Buffer { return m.buffer }

// AwaitingConfirmation reports whether a deletion confirmation is pending.
func (m *Manager) AwaitingConfirmation() bool {
	return m.pendingDeletion != nil
}

// AwaitingCorrection reports whether a correction capture is pending.
func (m *Manager) AwaitingCorrection() bool {
	return m.pendingCorrection != nil
}
