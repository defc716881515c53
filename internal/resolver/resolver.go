// Package resolver locates an existing item from a spoken or typed name.
//
// The matching rule is a contract, not an implementation detail: an item
// matches when its label contains the search text OR the search text
// contains its label, case-insensitively. Voice transcriptions routinely
// add or drop words ("the dentist appointment on Tuesday" versus a stored
// "Dentist checkup"), so both directions are required. The first match in
// collection order wins.
package resolver

import (
	"context"
	"strings"

	"github.com/nbryan/concierge/internal/store"
)

// Resolver fuzzy-matches names against one collection of the store.
type Resolver struct {
	store store.Store
}

// New creates a resolver over the given store.
func New(s store.Store) *Resolver {
	return &Resolver{store: s}
}

// Find returns the first item in the kind's collection whose label
// matches searchText, or nil when nothing matches.
func (r *Resolver) Find(ctx context.Context, kind store.Kind, searchText string) (*store.Item, error) {
	items, err := r.store.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(searchText))
	if needle == "" {
		return nil, nil
	}
	for i := range items {
		label := strings.ToLower(items[i].Title)
		if label == "" {
			continue
		}
		if strings.Contains(label, needle) || strings.Contains(needle, label) {
			return &items[i], nil
		}
	}
	return nil, nil
}
