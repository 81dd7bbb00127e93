// Package memstore keeps category rules in process memory.
package memstore

import (
	"context"
	"sync"

	"github.com/MrJamesThe3rd/finlink/internal/categorize"
)

type Store struct {
	mu    sync.RWMutex
	rules map[string][]categorize.Rule
}

func New() *Store {
	return &Store{rules: make(map[string][]categorize.Rule)}
}

func (s *Store) Create(_ context.Context, r *categorize.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rules[r.UserID] = append(s.rules[r.UserID], *r)

	return nil
}

func (s *Store) ListByUser(_ context.Context, userID string) ([]*categorize.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.rules[userID]

	out := make([]*categorize.Rule, len(stored))
	for i := range stored {
		r := stored[i]
		out[i] = &r
	}

	return out, nil
}

func (s *Store) FindMatch(ctx context.Context, userID, text string) (*categorize.Rule, error) {
	rules, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return categorize.Match(rules, text), nil
}
