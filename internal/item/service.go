// Package item keeps track of the bank connections (Plaid items) each user has
// linked, together with the access tokens needed to query them.
package item

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("item not found")

// Item is one linked bank connection.
type Item struct {
	ID              uuid.UUID
	UserID          string
	ItemID          string
	AccessToken     string
	InstitutionID   string
	InstitutionName string
	CreatedAt       time.Time
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=item
type Repository interface {
	Save(ctx context.Context, it *Item) error
	// ListByUser returns the user's items in link order.
	ListByUser(ctx context.Context, userID string) ([]*Item, error)
	Delete(ctx context.Context, userID, itemID string) error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type LinkParams struct {
	UserID          string
	ItemID          string
	AccessToken     string
	InstitutionID   string
	InstitutionName string
}

// Link records a new item for the user. Linking an access token the user
// already has returns the existing item unchanged.
func (s *Service) Link(ctx context.Context, params LinkParams) (*Item, error) {
	existing, err := s.repo.ListByUser(ctx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	for _, it := range existing {
		if it.AccessToken == params.AccessToken {
			return it, nil
		}
	}

	it := &Item{
		ID:              uuid.New(),
		UserID:          params.UserID,
		ItemID:          params.ItemID,
		AccessToken:     params.AccessToken,
		InstitutionID:   params.InstitutionID,
		InstitutionName: params.InstitutionName,
		CreatedAt:       s.now().UTC(),
	}

	if err := s.repo.Save(ctx, it); err != nil {
		return nil, fmt.Errorf("saving item: %w", err)
	}

	return it, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]*Item, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Unlink(ctx context.Context, userID, itemID string) error {
	return s.repo.Delete(ctx, userID, itemID)
}
