// Package memory provides an in-memory transaction store. It backs the
// zero-setup default configuration and doubles as the test substitute for
// the SQLite repository.
package memory

import (
	"context"
	"sort"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]core.Transaction
}

func New() *Store {
	return &Store{nextID: 1, items: make(map[int64]core.Transaction)}
}

// Create validates and stores the transaction, assigning the next ID.
func (s *Store) Create(_ context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = s.nextID
	s.nextID++
	s.items[tx.ID] = tx
	return tx.ID, nil
}

// Update replaces an existing transaction. The owner must match.
func (s *Store) Update(_ context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.items[tx.ID]
	if !ok || existing.OwnerID != tx.OwnerID {
		return store.ErrNotFound
	}
	s.items[tx.ID] = tx
	return nil
}

func (s *Store) Delete(_ context.Context, ownerID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.items[id]
	if !ok || existing.OwnerID != ownerID {
		return store.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *Store) Get(_ context.Context, ownerID string, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.items[id]
	if !ok || tx.OwnerID != ownerID {
		return core.Transaction{}, store.ErrNotFound
	}
	return tx, nil
}

// ListByOwner returns the owner's transactions ordered by date, then ID.
func (s *Store) ListByOwner(_ context.Context, ownerID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.items {
		if tx.OwnerID == ownerID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredOn.Equal(out[j].OccurredOn) {
			return out[i].OccurredOn.Before(out[j].OccurredOn)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

var _ store.Store = (*Store)(nil)
