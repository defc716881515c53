package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nbryan/concierge/internal/conversation"
	"github.com/nbryan/concierge/internal/store"
	"github.com/nbryan/concierge/internal/transcript"
)

type chatRequest struct {
	Text string `json:"text"`
}

type reactRequest struct {
	TurnID  string `json:"turn_id"`
	Verdict string `json:"verdict"`
}

func (s *Server) registerRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Get("/transcript", s.handleTranscript)
		r.Post("/feedback", s.handleFeedback)
		r.Get("/items/{kind}", s.handleListItems)
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	turn, err := s.bridge.SubmitText(r.Context(), req.Text)
	if errors.Is(err, conversation.ErrBusy) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, turn)
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	turns := s.manager.Buffer().Turns()
	if turns == nil {
		turns = []transcript.Turn{}
	}
	writeJSON(w, http.StatusOK, turns)
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req reactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TurnID == "" {
		writeError(w, http.StatusBadRequest, "turn_id is required")
		return
	}
	verdict := transcript.Verdict(req.Verdict)
	if verdict != transcript.VerdictUp && verdict != transcript.VerdictDown {
		writeError(w, http.StatusBadRequest, "verdict must be up or down")
		return
	}

	prompt, err := s.manager.React(r.Context(), req.TurnID, verdict)
	if errors.Is(err, conversation.ErrBusy) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	resp := map[string]interface{}{"recorded": prompt == nil}
	if prompt != nil {
		resp["prompt"] = prompt
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	kind, ok := store.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown collection")
		return
	}
	items, err := s.store.List(r.Context(), kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if items == nil {
		items = []store.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
