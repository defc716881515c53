package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nbryan/concierge/internal/db"
	"github.com/nbryan/concierge/internal/transcript"
)

// Entry is one recorded reaction, kept for later training/analysis.
type Entry struct {
	ID               string             `json:"id"`
	TurnID           string             `json:"turn_id"`
	Verdict          transcript.Verdict `json:"verdict"`
	UserText         string             `json:"user_text"`
	AssistantText    string             `json:"assistant_text"`
	ActionDescriptor string             `json:"action_descriptor"`
	Correction       string             `json:"correction,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

// Store persists feedback entries.
type Store struct {
	db *db.DB
}

// NewStore creates a feedback store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts a new feedback entry.
func (s *Store) Create(ctx context.Context, e Entry) (*Entry, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.CreatedAt = time.Now().UTC()

	var correction sql.NullString
	if e.Correction != "" {
		correction = sql.NullString{String: e.Correction, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback_entries (id, turn_id, verdict, user_text, assistant_text, action_descriptor, correction, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TurnID, e.Verdict, e.UserText, e.AssistantText, e.ActionDescriptor, correction, e.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting feedback: %w", err)
	}
	return &e, nil
}

// List returns all feedback entries, newest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, turn_id, verdict, user_text, assistant_text, action_descriptor, correction, created_at
		 FROM feedback_entries ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing feedback: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var correction sql.NullString
		if err := rows.Scan(&e.ID, &e.TurnID, &e.Verdict, &e.UserText, &e.AssistantText, &e.ActionDescriptor, &correction, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning feedback: %w", err)
		}
		e.Correction = correction.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
