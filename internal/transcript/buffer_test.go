package transcript

import (
	"context"
	"fmt"
	"testing"

	"github.com/nbryan/concierge/internal/db"
)

func setupPersister(t *testing.T) *SQLPersister {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewSQLPersister(database)
}

func TestAppendEvictsOldestAtCapacity(t *testing.T) {
	ctx := context.Background()
	b := NewBuffer("s1", nil)

	for i := 1; i <= Capacity+1; i++ {
		b.Append(ctx, Turn{ID: fmt.Sprintf("t%d", i), Role: RoleUser, Text: fmt.Sprintf("turn %d", i)})
	}

	if b.Len() != Capacity {
		t.Fatalf("expected %d turns, got %d", Capacity, b.Len())
	}
	turns := b.Turns()
	if turns[0].ID != "t2" {
		t.Errorf("expected first turn to be t2 after eviction, got %s", turns[0].ID)
	}
	if turns[len(turns)-1].ID != fmt.Sprintf("t%d", Capacity+1) {
		t.Errorf("expected last turn to be t%d, got %s", Capacity+1, turns[len(turns)-1].ID)
	}
	if b.Find("t1") != nil {
		t.Error("turn t1 should have been evicted")
	}
}

func TestAttachFeedbackAndCorrection(t *testing.T) {
	ctx := context.Background()
	b := NewBuffer("s1", nil)
	b.Append(ctx, Turn{ID: "a1", Role: RoleAssistant, Text: "Added task."})

	if ok := b.AttachFeedback(ctx, "a1", VerdictDown, "fb1"); !ok {
		t.Fatal("AttachFeedback should find the turn")
	}
	if ok := b.AttachCorrection(ctx, "a1", "should have been an appointment"); !ok {
		t.Fatal("AttachCorrection should find the turn")
	}
	turn := b.Find("a1")
	if turn.Feedback != VerdictDown {
		t.Errorf("expected down verdict, got %q", turn.Feedback)
	}
	if turn.FeedbackID != "fb1" {
		t.Errorf("expected feedback id fb1, got %q", turn.FeedbackID)
	}
	if turn.Correction != "should have been an appointment" {
		t.Errorf("unexpected correction: %q", turn.Correction)
	}

	if b.AttachFeedback(ctx, "missing", VerdictUp, "") {
		t.Error("AttachFeedback should report false for unknown ids")
	}
}

func TestRecentReturnsTrailingTurns(t *testing.T) {
	ctx := context.Background()
	b := NewBuffer("s1", nil)
	for i := 1; i <= 15; i++ {
		b.Append(ctx, Turn{ID: fmt.Sprintf("t%d", i), Role: RoleUser, Text: "x"})
	}

	recent := b.Recent(RecentLimit)
	if len(recent) != RecentLimit {
		t.Fatalf("expected %d turns, got %d", RecentLimit, len(recent))
	}
	if recent[0].ID != "t6" {
		t.Errorf("expected window to start at t6, got %s", recent[0].ID)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	persister := setupPersister(t)

	b := NewBuffer("session-a", persister)
	b.Append(ctx, Turn{ID: "u1", Role: RoleUser, Text: "add milk"})
	b.Append(ctx, Turn{ID: "a1", Role: RoleAssistant, Text: "Added grocery item \"milk\".", ActionKind: ActionAdd})

	restored := NewBuffer("session-a", persister)
	if err := restored.Rehydrate(ctx); err != nil {
		t.Fatalf("Rehydrate: %v", err)
	}
	if restored.Len() != 2 {
		t.Fatalf("expected 2 turns after rehydrate, got %d", restored.Len())
	}
	if restored.Turns()[1].ActionKind != ActionAdd {
		t.Error("action kind should survive the round trip")
	}

	// Clearing persists the empty transcript too.
	b.Clear(ctx)
	restored = NewBuffer("session-a", persister)
	if err := restored.Rehydrate(ctx); err != nil {
		t.Fatalf("Rehydrate after clear: %v", err)
	}
	if restored.Len() != 0 {
		t.Errorf("expected empty transcript, got %d turns", restored.Len())
	}
}

func TestRehydrateUnknownSessionIsEmpty(t *testing.T) {
	persister := setupPersister(t)
	b := NewBuffer("never-seen", persister)
	if err := b.Rehydrate(context.Background()); err != nil {
		t.Fatalf("Rehydrate: %v", err)
	}
	if b.Len() != 0 {
		t.Errorf("expected empty buffer, got %d", b.Len())
	}
}
