package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nbryan/concierge/internal/db"
)

// tables maps each kind to its backing table. Kinds share a column
// layout, so every statement below is built from this map.
var tables = map[Kind]string{
	KindTask:        "tasks",
	KindAppointment: "appointments",
	KindHabit:       "habits",
	KindGrocery:     "groceries",
}

// SQLStore persists the four collections to SQLite.
type SQLStore struct {
	db *db.DB
}

// NewSQLStore creates a store backed by the given database.
func NewSQLStore(database *db.DB) *SQLStore {
	return &SQLStore{db: database}
}

func tableFor(kind Kind) (string, error) {
	t, ok := tables[kind]
	if !ok {
		return "", fmt.Errorf("unknown collection %q", kind)
	}
	return t, nil
}

// Create inserts a new item into the kind's collection.
func (s *SQLStore) Create(ctx context.Context, kind Kind, item Item) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	var due sql.NullTime
	if item.Due != nil {
		due = sql.NullTime{Time: *item.Due, Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+table+` (id, title, notes, due_at, timed, priority, frequency, done, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Title, item.Notes, due, item.Timed, item.Priority, item.Frequency, item.Done, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting %s: %w", kind, err)
	}
	return nil
}

// Patch applies a partial update to a single item.
func (s *SQLStore) Patch(ctx context.Context, kind Kind, id string, fields Fields) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	if fields.Empty() {
		return nil
	}

	sets := []string{"updated_at = ?"}
	args := []interface{}{time.Now().UTC()}

	if fields.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *fields.Title)
	}
	if fields.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *fields.Notes)
	}
	if fields.Due != nil {
		sets = append(sets, "due_at = ?")
		args = append(args, *fields.Due)
	}
	if fields.Timed != nil {
		sets = append(sets, "timed = ?")
		args = append(args, *fields.Timed)
	}
	if fields.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *fields.Priority)
	}
	if fields.Frequency != nil {
		sets = append(sets, "frequency = ?")
		args = append(args, *fields.Frequency)
	}
	if fields.Done != nil {
		sets = append(sets, "done = ?")
		args = append(args, *fields.Done)
	}

	args = append(args, id)
	result, err := s.db.ExecContext(ctx,
		`UPDATE `+table+` SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("patching %s: %w", kind, err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%s not found: %s", kind, id)
	}
	return nil
}

// Delete removes an item from the kind's collection.
func (s *SQLStore) Delete(ctx context.Context, kind Kind, id string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", kind, err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%s not found: %s", kind, id)
	}
	return nil
}

// List returns the kind's collection in insertion order.
func (s *SQLStore) List(ctx context.Context, kind Kind) ([]Item, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, notes, due_at, timed, priority, frequency, done, created_at, updated_at
		 FROM `+table+` ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", kind, err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		var due sql.NullTime
		if err := rows.Scan(&it.ID, &it.Title, &it.Notes, &due, &it.Timed, &it.Priority, &it.Frequency, &it.Done, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", kind, err)
		}
		if due.Valid {
			t := due.Time
			it.Due = &t
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
