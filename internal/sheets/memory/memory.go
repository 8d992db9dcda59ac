package memory

import (
	"context"
	"fmt"
	"sync"

	"fiado/internal/core"
)

// Store is an in-memory sheet used by tests and local development when no
// Google credentials are configured.
type Store struct {
	mu    sync.Mutex
	items []core.Debt
}

func New() *Store {
	return &Store{}
}

// Append upserts the debt keyed by ID, matching the sheet's one-row-per-debt
// contract. Returns a synthetic row reference.
func (s *Store) Append(_ context.Context, d core.Debt) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == d.ID {
			s.items[i] = d
			return fmt.Sprintf("mem:%d", i+1), nil
		}
	}
	s.items = append(s.items, d)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Remove drops all stored rows with the given debt ID.
func (s *Store) Remove(_ context.Context, debtID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	for _, d := range s.items {
		if d.ID != debtID {
			kept = append(kept, d)
		}
	}
	s.items = kept
	return nil
}

// Items returns a copy of the stored rows.
func (s *Store) Items() []core.Debt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Debt(nil), s.items...)
}
