// Package memstore keeps users in process memory for development and tests.
package memstore

import (
	"context"
	"sync"

	"github.com/MrJamesThe3rd/finlink/internal/user"
)

type Store struct {
	mu      sync.RWMutex
	byID    map[string]user.User
	byEmail map[string]string
}

func New() *Store {
	return &Store{
		byID:    make(map[string]user.User),
		byEmail: make(map[string]string),
	}
}

func (s *Store) Create(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[u.Email]; ok {
		return user.ErrUserExists
	}

	s.byID[u.ID] = *u
	s.byEmail[u.Email] = u.ID

	return nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mu.RLock()
	id, ok := s.byEmail[email]
	s.mu.RUnlock()

	if !ok {
		return nil, user.ErrNotFound
	}

	return s.GetByID(ctx, id)
}

func (s *Store) GetByID(_ context.Context, id string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}

	return &u, nil
}
