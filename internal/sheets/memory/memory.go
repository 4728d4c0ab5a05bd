// Package memory is an in-process stand-in for the Google Sheets backup,
// used in development and tests.
package memory

import (
	"context"
	"sync"

	"giro/internal/core"
)

type Store struct {
	mu    sync.Mutex
	order []string
	items map[string]core.Entry
}

func New() *Store {
	return &Store{items: make(map[string]core.Entry)}
}

// Upsert stores the entry, replacing any earlier version with the same ID.
func (s *Store) Upsert(_ context.Context, e core.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[e.ID]; !ok {
		s.order = append(s.order, e.ID)
	}
	s.items[e.ID] = e
	return nil
}

// Delete removes the entry. Unknown IDs are a no-op.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return nil
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Entries returns the stored entries in first-write order.
func (s *Store) Entries() []core.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Entry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}
