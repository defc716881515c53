package transcript

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nbryan/concierge/internal/db"
)

// SQLPersister stores each session's transcript as one JSON row,
// overwritten on every change.
type SQLPersister struct {
	db *db.DB
}

// NewSQLPersister creates a persister backed by the given database.
func NewSQLPersister(database *db.DB) *SQLPersister {
	return &SQLPersister{db: database}
}

// Save upserts the full transcript under the session id.
func (p *SQLPersister) Save(ctx context.Context, sessionID string, turns []Turn) error {
	if turns == nil {
		turns = []Turn{}
	}
	data, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("encoding transcript: %w", err)
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO sessions (id, transcript, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET transcript = excluded.transcript, updated_at = excluded.updated_at`,
		sessionID, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving transcript: %w", err)
	}
	return nil
}

// Load returns the persisted transcript, or nil if the session is new.
func (p *SQLPersister) Load(ctx context.Context, sessionID string) ([]Turn, error) {
	var data string
	err := p.db.QueryRowContext(ctx,
		`SELECT transcript FROM sessions WHERE id = ?`, sessionID,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading transcript: %w", err)
	}
	var turns []Turn
	if err := json.Unmarshal([]byte(data), &turns); err != nil {
		return nil, fmt.Errorf("decoding transcript: %w", err)
	}
	return turns, nil
}
