// Package memstore keeps linked items in process memory. Contents are lost on
// restart, so it is only meant for development and tests.
package memstore

import (
	"context"
	"sync"

	"github.com/MrJamesThe3rd/finlink/internal/item"
)

type Store struct {
	mu    sync.RWMutex
	items map[string][]item.Item
}

func New() *Store {
	return &Store{items: make(map[string][]item.Item)}
}

func (s *Store) Save(_ context.Context, it *item.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.items[it.UserID] {
		if existing.AccessToken == it.AccessToken {
			return nil
		}
	}

	s.items[it.UserID] = append(s.items[it.UserID], *it)

	return nil
}

func (s *Store) ListByUser(_ context.Context, userID string) ([]*item.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.items[userID]

	out := make([]*item.Item, len(stored))
	for i := range stored {
		it := stored[i]
		out[i] = &it
	}

	return out, nil
}

func (s *Store) Delete(_ context.Context, userID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.items[userID]
	for i, it := range stored {
		if it.ItemID == itemID {
			s.items[userID] = append(stored[:i:i], stored[i+1:]...)
			return nil
		}
	}

	return item.ErrNotFound
}
