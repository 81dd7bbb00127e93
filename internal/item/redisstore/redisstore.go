// Package redisstore keeps linked items in Redis: one hash per item and one
// sorted set per user ordering that user's items by link time.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v7"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finlink/internal/item"
)

const keyPrefix = "finlink:"

type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func userKey(userID string) string {
	return keyPrefix + "user:" + userID + ":items"
}

func itemKey(userID, itemID string) string {
	return keyPrefix + "item:" + userID + ":" + itemID
}

func (s *Store) Save(ctx context.Context, it *item.Item) error {
	c := s.client.WithContext(ctx)

	existing, err := s.ListByUser(ctx, it.UserID)
	if err != nil {
		return err
	}

	for _, e := range existing {
		if e.AccessToken == it.AccessToken {
			return nil
		}
	}

	_, err = c.TxPipelined(func(pipe redis.Pipeliner) error {
		pipe.HSet(itemKey(it.UserID, it.ItemID),
			"id", it.ID.String(),
			"user_id", it.UserID,
			"item_id", it.ItemID,
			"access_token", it.AccessToken,
			"institution_id", it.InstitutionID,
			"institution_name", it.InstitutionName,
			"created_at", it.CreatedAt.Format(time.RFC3339Nano),
		)
		pipe.ZAdd(userKey(it.UserID), &redis.Z{
			Score:  float64(it.CreatedAt.UnixNano()),
			Member: it.ItemID,
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("saving item: %w", err)
	}

	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]*item.Item, error) {
	c := s.client.WithContext(ctx)

	ids, err := c.ZRange(userKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing item ids: %w", err)
	}

	items := make([]*item.Item, 0, len(ids))

	for _, id := range ids {
		fields, err := c.HGetAll(itemKey(userID, id)).Result()
		if err != nil {
			return nil, fmt.Errorf("loading item %s: %w", id, err)
		}

		if len(fields) == 0 {
			continue
		}

		it, err := decode(fields)
		if err != nil {
			return nil, fmt.Errorf("decoding item %s: %w", id, err)
		}

		items = append(items, it)
	}

	return items, nil
}

func (s *Store) Delete(ctx context.Context, userID, itemID string) error {
	c := s.client.WithContext(ctx)

	removed, err := c.ZRem(userKey(userID), itemID).Result()
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}

	if removed == 0 {
		return item.ErrNotFound
	}

	if err := c.Del(itemKey(userID, itemID)).Err(); err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}

	return nil
}

func decode(fields map[string]string) (*item.Item, error) {
	id, err := uuid.Parse(fields["id"])
	if err != nil {
		return nil, err
	}

	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil, err
	}

	return &item.Item{
		ID:              id,
		UserID:          fields["user_id"],
		ItemID:          fields["item_id"],
		AccessToken:     fields["access_token"],
		InstitutionID:   fields["institution_id"],
		InstitutionName: fields["institution_name"],
		CreatedAt:       createdAt,
	}, nil
}
