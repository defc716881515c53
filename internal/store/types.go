package store

import (
	"strings"
	"time"
)

// Kind identifies one of the four productivity collections.
type Kind string

const (
	KindTask        Kind = "task"
	KindAppointment Kind = "appointment"
	KindHabit       Kind = "habit"
	KindGrocery     Kind = "grocery"
)

// Kinds lists all collections in their canonical order.
var Kinds = []Kind{KindTask, KindAppointment, KindHabit, KindGrocery}

// kindAliases maps the labels the classifier (and users) use for a
// collection to its canonical kind. "routine" is the spoken name for
// habits and must land in the habit collection.
var kindAliases = map[string]Kind{
	"task":         KindTask,
	"tasks":        KindTask,
	"todo":         KindTask,
	"todos":        KindTask,
	"reminder":     KindTask,
	"appointment":  KindAppointment,
	"event":        KindAppointment,
	"meeting":      KindAppointment,
	"calendar":     KindAppointment,
	"habit":        KindHabit,
	"habits":       KindHabit,
	"routine":      KindHabit,
	"routines":     KindHabit,
	"grocery":      KindGrocery,
	"groceries":    KindGrocery,
	"grocery_item": KindGrocery,
}

// ParseKind normalizes a kind label to its canonical collection.
func ParseKind(s string) (Kind, bool) {
	k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]
	return k, ok
}

// Item is the unified record stored in any of the four collections.
// Fields that do not apply to a kind are left zero.
type Item struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Notes     string     `json:"notes,omitempty"`
	Due       *time.Time `json:"due,omitempty"`
	Timed     bool       `json:"timed,omitempty"`
	Priority  int        `json:"priority,omitempty"`
	Frequency string     `json:"frequency,omitempty"`
	Done      bool       `json:"done,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Fields is a partial update; only non-nil members are applied.
type Fields struct {
	Title     *string
	Notes     *string
	Due       *time.Time
	Timed     *bool
	Priority  *int
	Frequency *string
	Done      *bool
}

// Empty reports whether the patch would change nothing.
func (f Fields) Empty() bool {
	return f.Title == nil && f.Notes == nil && f.Due == nil &&
		f.Timed == nil && f.Priority == nil && f.Frequency == nil && f.Done == nil
}

// Ref is the id+label view of an item handed to the classifier. Volatile
// fields are deliberately excluded.
type Ref struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Snapshot is the per-collection id+label view of the whole store.
type Snapshot struct {
	Tasks        []Ref `json:"tasks"`
	Appointments []Ref `json:"appointments"`
	Habits       []Ref `json:"habits"`
	Groceries    []Ref `json:"groceries"`
}
