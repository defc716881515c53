package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nbryan/concierge/internal/bridge"
	"github.com/nbryan/concierge/internal/classifier"
	"github.com/nbryan/concierge/internal/conversation"
	"github.com/nbryan/concierge/internal/db"
	"github.com/nbryan/concierge/internal/executor"
	"github.com/nbryan/concierge/internal/feedback"
	"github.com/nbryan/concierge/internal/resolver"
	"github.com/nbryan/concierge/internal/store"
	"github.com/nbryan/concierge/internal/transcript"
)

// fixedClassifier always returns the same payload.
type fixedClassifier struct {
	payload *classifier.RawPayload
}

func (c *fixedClassifier) Classify(_ context.Context, _ classifier.Request) (*classifier.RawPayload, error) {
	return c.payload, nil
}

func setupServer(t *testing.T, cls classifier.Classifier) (*Server, store.Store) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	s := store.NewSQLStore(database)
	port := bridge.NewPort()
	exec := executor.New(executor.Config{
		Store:    s,
		Resolver: resolver.New(s),
		Port:     port,
	})
	manager := conversation.New(conversation.Config{
		Buffer:     transcript.NewBuffer("test", nil),
		Classifier: cls,
		Executor:   exec,
		Recorder:   feedback.NewRecorder(feedback.NewStore(database)),
		Store:      s,
		Port:       port,
	})
	b := bridge.New(port, manager)
	return New(Config{Port: 0}, manager, b, s), s
}

func TestHealthz(t *testing.T) {
	srv, _ := setupServer(t, &fixedClassifier{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestChatRoundTrip(t *testing.T) {
	srv, s := setupServer(t, &fixedClassifier{payload: &classifier.RawPayload{
		Action: "add",
		Kind:   "task",
		Title:  "water plants",
	}})

	body := bytes.NewBufferString(`{"text": "add a task to water plants"}`)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var turn transcript.Turn
	if err := json.Unmarshal(rec.Body.Bytes(), &turn); err != nil {
		t.Fatalf("decoding turn: %v", err)
	}
	if turn.Role != transcript.RoleAssistant || turn.ActionKind != transcript.ActionAdd {
		t.Errorf("unexpected turn: %+v", turn)
	}

	items, err := s.List(context.Background(), store.KindTask)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 task, got %d", len(items))
	}
}

func TestChatRejectsEmptyText(t *testing.T) {
	srv, _ := setupServer(t, &fixedClassifier{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(`{}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestTranscriptEndpoint(t *testing.T) {
	srv, _ := setupServer(t, &fixedClassifier{payload: &classifier.RawPayload{
		Action: "respond", Message: "Hello!",
	}})

	// Empty transcript serializes as an array, not null.
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transcript", nil))
	if rec.Body.String() != "[]\n" {
		t.Errorf("empty transcript body = %q", rec.Body.String())
	}

	body := bytes.NewBufferString(`{"text": "hi"}`)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("chat status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transcript", nil))
	var turns []transcript.Turn
	if err := json.Unmarshal(rec.Body.Bytes(), &turns); err != nil {
		t.Fatalf("decoding transcript: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected user + assistant turns, got %d", len(turns))
	}
	if turns[0].Role != transcript.RoleUser || turns[1].Role != transcript.RoleAssistant {
		t.Errorf("unexpected roles: %q, %q", turns[0].Role, turns[1].Role)
	}
}

func TestFeedbackEndpoint(t *testing.T) {
	srv, _ := setupServer(t, &fixedClassifier{payload: &classifier.RawPayload{
		Action: "add", Kind: "task", Title: "water plants",
	}})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat",
		bytes.NewBufferString(`{"text": "add a task to water plants"}`)))
	var turn transcript.Turn
	if err := json.Unmarshal(rec.Body.Bytes(), &turn); err != nil {
		t.Fatalf("decoding turn: %v", err)
	}

	// Thumbs-up records immediately.
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/feedback",
		bytes.NewBufferString(`{"turn_id": "`+turn.ID+`", "verdict": "up"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("feedback status = %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		Recorded bool             `json:"recorded"`
		Prompt   *transcript.Turn `json:"prompt"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Recorded || resp.Prompt != nil {
		t.Errorf("up feedback should be recorded without a prompt: %+v", resp)
	}
}

func TestFeedbackValidation(t *testing.T) {
	srv, _ := setupServer(t, &fixedClassifier{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/feedback",
		bytes.NewBufferString(`{"turn_id": "x", "verdict": "sideways"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad verdict status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/feedback",
		bytes.NewBufferString(`{"turn_id": "missing", "verdict": "up"}`)))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown turn status = %d", rec.Code)
	}
}

func TestListItemsEndpoint(t *testing.T) {
	srv, s := setupServer(t, &fixedClassifier{})
	ctx := context.Background()

	if err := s.Create(ctx, store.KindGrocery, store.Item{Title: "milk"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items/grocery", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var items []store.Item
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decoding items: %v", err)
	}
	if len(items) != 1 || items[0].Title != "milk" {
		t.Errorf("unexpected items: %+v", items)
	}

	// Aliases resolve too.
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items/groceries", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("alias status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items/unknown", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown kind status = %d", rec.Code)
	}
}
