package store

import "context"

// Store is the interpreter's view of the local productivity data. The
// core mutates it synchronously and assumes success; it never reads back
// confirmations.
type Store interface {
	Create(ctx context.Context, kind Kind, item Item) error
	Patch(ctx context.Context, kind Kind, id string, fields Fields) error
	Delete(ctx context.Context, kind Kind, id string) error
	List(ctx context.Context, kind Kind) ([]Item, error)
}

// TakeSnapshot builds the id+label view of every collection.
func TakeSnapshot(ctx context.Context, s Store) (*Snapshot, error) {
	snap := &Snapshot{}
	for _, kind := range Kinds {
		items, err := s.List(ctx, kind)
		if err != nil {
			return nil, err
		}
		refs := make([]Ref, 0, len(items))
		for _, it := range items {
			refs = append(refs, Ref{ID: it.ID, Label: it.Title})
		}
		switch kind {
		case KindTask:
			snap.Tasks = refs
		case KindAppointment:
			snap.Appointments = refs
		case KindHabit:
			snap.Habits = refs
		case KindGrocery:
			snap.Groceries = refs
		}
	}
	return snap, nil
}
