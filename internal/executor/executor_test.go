package executor

import (
	"context"
	"testing"
	"time"

	"github.com/nbryan/concierge/internal/bridge"
	"github.com/nbryan/concierge/internal/classifier"
	"github.com/nbryan/concierge/internal/db"
	"github.com/nbryan/concierge/internal/resolver"
	"github.com/nbryan/concierge/internal/store"
	"github.com/nbryan/concierge/internal/transcript"
)

func setupExecutor(t *testing.T, cfg Config) (*Executor, store.Store) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	s := store.NewSQLStore(database)
	cfg.Store = s
	cfg.Resolver = resolver.New(s)
	if cfg.Now == nil {
		cfg.Now = func() time.Time {
			return time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
		}
	}
	return New(cfg), s
}

func TestApplyAddTimedTaskSchedulesNotification(t *testing.T) {
	port := bridge.NewPort()
	exec, s := setupExecutor(t, Config{Port: port, SpeechHost: true})
	ctx := context.Background()

	out, err := exec.Apply(ctx, classifier.Add{
		Kind:  store.KindTask,
		Title: "call the dentist",
		When:  "2026-03-12T15:00:00Z",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.ActionKind != transcript.ActionAdd {
		t.Errorf("expected add action, got %q", out.ActionKind)
	}

	items, err := s.List(ctx, store.KindTask)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 task, got %d", len(items))
	}
	if !items[0].Timed || items[0].Due == nil {
		t.Error("task should be stored with a timed due date")
	}

	msgs := port.Drain()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 host message, got %d", len(msgs))
	}
	if msgs[0].Type != bridge.MsgScheduleNotification {
		t.Errorf("expected schedule_notification, got %q", msgs[0].Type)
	}
	if msgs[0].ID != items[0].ID {
		t.Error("notification should reference the stored item's id")
	}
}

func TestApplyAddDateOnlyNoNotification(t *testing.T) {
	port := bridge.NewPort()
	exec, _ := setupExecutor(t, Config{Port: port, SpeechHost: true})

	_, err := exec.Apply(context.Background(), classifier.Add{
		Kind:  store.KindTask,
		Title: "water plants",
		When:  "2026-03-12T00:00:00",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if msgs := port.Drain(); len(msgs) != 0 {
		t.Errorf("date-only reminder should schedule nothing, got %d messages", len(msgs))
	}
}

func TestApplyAddNoNotificationWithoutSpeechHost(t *testing.T) {
	port := bridge.NewPort()
	exec, _ := setupExecutor(t, Config{Port: port, SpeechHost: false})

	_, err := exec.Apply(context.Background(), classifier.Add{
		Kind:  store.KindTask,
		Title: "call mom",
		When:  "2026-03-12T15:00:00",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if msgs := port.Drain(); len(msgs) != 0 {
		t.Errorf("non-speech host should schedule nothing, got %d messages", len(msgs))
	}
}

func TestApplyAddGroceryBatch(t *testing.T) {
	exec, s := setupExecutor(t, Config{})
	ctx := context.Background()

	out, err := exec.Apply(ctx, classifier.Add{
		Kind:  store.KindGrocery,
		Items: []string{"milk", "eggs", "bread"},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(out.Mirrors) != 3 {
		t.Errorf("expected 3 mirrors, got %d", len(out.Mirrors))
	}

	items, err := s.List(ctx, store.KindGrocery)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 grocery items, got %d", len(items))
	}
	if items[0].Title != "milk" || items[2].Title != "bread" {
		t.Errorf("batch order not preserved: %+v", items)
	}
}

func TestApplyAddBatchOfTasks(t *testing.T) {
	exec, s := setupExecutor(t, Config{})
	ctx := context.Background()

	out, err := exec.Apply(ctx, classifier.Add{
		Kind:  store.KindTask,
		Items: []string{"buy stamps", "mail the letter"},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(out.Mirrors) != 2 {
		t.Errorf("expected 2 mirrors, got %d", len(out.Mirrors))
	}

	items, err := s.List(ctx, store.KindTask)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(items))
	}
	for _, it := range items {
		if it.Title == "" {
			t.Error("batch adds must never create an untitled item")
		}
	}
}

func TestApplyAddMalformedWhenSchedulesNothing(t *testing.T) {
	port := bridge.NewPort()
	exec, s := setupExecutor(t, Config{Port: port, SpeechHost: true})
	ctx := context.Background()

	_, err := exec.Apply(ctx, classifier.Add{
		Kind:  store.KindTask,
		Title: "renew passport",
		When:  "sometime soonish",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if msgs := port.Drain(); len(msgs) != 0 {
		t.Errorf("an invented fallback time must not schedule a notification, got %d messages", len(msgs))
	}
	items, _ := s.List(ctx, store.KindTask)
	if len(items) != 1 || items[0].Due == nil || items[0].Timed {
		t.Errorf("expected a date-only fallback due, got %+v", items)
	}
}

func TestApplyUpdateNotFound(t *testing.T) {
	exec, _ := setupExecutor(t, Config{})

	out, err := exec.Apply(context.Background(), classifier.Update{
		Kind:        store.KindTask,
		SearchTitle: "laundry",
		Updates:     map[string]interface{}{"priority": float64(1)},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := `I couldn't find a task called "laundry".`
	if out.Reply != want {
		t.Errorf("reply = %q, want %q", out.Reply, want)
	}
	if out.ActionKind != "" {
		t.Error("a miss must not record an action")
	}
}

func TestApplyUpdatePatchesAndMirrors(t *testing.T) {
	exec, s := setupExecutor(t, Config{})
	ctx := context.Background()

	if err := s.Create(ctx, store.KindTask, store.Item{ID: "t1", Title: "file taxes"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	out, err := exec.Apply(ctx, classifier.Update{
		Kind:        store.KindTask,
		SearchTitle: "taxes",
		Updates: map[string]interface{}{
			"notes":    "use last year's forms",
			"priority": float64(2),
		},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.ActionKind != transcript.ActionUpdate {
		t.Errorf("expected update action, got %q", out.ActionKind)
	}
	if len(out.Mirrors) != 1 || out.Mirrors[0].Item.Priority != 2 {
		t.Errorf("mirror should carry the patched copy: %+v", out.Mirrors)
	}

	items, _ := s.List(ctx, store.KindTask)
	if items[0].Notes != "use last year's forms" || items[0].Priority != 2 {
		t.Errorf("patch not applied: %+v", items[0])
	}
}

func TestApplyDeleteOnlyStagesConfirmation(t *testing.T) {
	exec, s := setupExecutor(t, Config{})
	ctx := context.Background()

	if err := s.Create(ctx, store.KindAppointment, store.Item{ID: "a1", Title: "dentist checkup"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	out, err := exec.Apply(ctx, classifier.Delete{
		Kind:        store.KindAppointment,
		SearchTitle: "dentist",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Pending == nil {
		t.Fatal("delete must stage a pending confirmation")
	}
	if out.Pending.ItemID != "a1" {
		t.Errorf("pending item id = %q", out.Pending.ItemID)
	}
	if out.ActionKind != "" {
		t.Error("staging a confirmation is not yet an action")
	}

	items, _ := s.List(ctx, store.KindAppointment)
	if len(items) != 1 {
		t.Fatal("nothing may be deleted before confirmation")
	}

	// Confirming performs the actual delete.
	confirmed, err := exec.ConfirmDeletion(ctx, out.Pending)
	if err != nil {
		t.Fatalf("ConfirmDeletion: %v", err)
	}
	if confirmed.ActionKind != transcript.ActionDelete {
		t.Errorf("expected delete action, got %q", confirmed.ActionKind)
	}
	items, _ = s.List(ctx, store.KindAppointment)
	if len(items) != 0 {
		t.Error("item should be gone after confirmation")
	}
}

func TestCancelDeletionKeepsItem(t *testing.T) {
	exec, s := setupExecutor(t, Config{})
	ctx := context.Background()

	if err := s.Create(ctx, store.KindTask, store.Item{ID: "t1", Title: "old chore"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	out := exec.CancelDeletion(&PendingDeletion{ItemID: "t1", ItemTitle: "old chore", ItemKind: store.KindTask})
	if out.Reply == "" {
		t.Error("cancel should still produce a reply")
	}
	items, _ := s.List(ctx, store.KindTask)
	if len(items) != 1 {
		t.Error("cancel must not delete")
	}
}

type recordingNavigator struct {
	dates []string
}

func (n *recordingNavigator) NavigateTo(_ context.Context, date string) {
	n.dates = append(n.dates, date)
}

func TestApplyNavigateCalendar(t *testing.T) {
	nav := &recordingNavigator{}
	exec, _ := setupExecutor(t, Config{Calendar: nav})

	out, err := exec.Apply(context.Background(), classifier.NavigateCalendar{Date: "2026-04-01"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Reply == "" {
		t.Error("navigation should reply")
	}
	if len(nav.dates) != 1 || nav.dates[0] != "2026-04-01" {
		t.Errorf("navigator calls = %v", nav.dates)
	}
}

func TestApplyClearChat(t *testing.T) {
	exec, _ := setupExecutor(t, Config{})

	out, err := exec.Apply(context.Background(), classifier.ClearChat{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !out.ClearChat {
		t.Error("outcome should request a transcript clear")
	}
}

func TestReplyOrTemplateRejectsGenericMessages(t *testing.T) {
	if got := replyOrTemplate("Got it!", "Added task \"x\"."); got != `Added task "x".` {
		t.Errorf("generic message should fall back to template, got %q", got)
	}
	if got := replyOrTemplate("Added your reminder for Tuesday.", "template"); got != "Added your reminder for Tuesday." {
		t.Errorf("specific message should win, got %q", got)
	}
}
