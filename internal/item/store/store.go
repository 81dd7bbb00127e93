package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MrJamesThe3rd/finlink/internal/item"
)

const table = "plaid_tokens"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save inserts the item. A second save of the same user and access token is a no-op.
func (s *Store) Save(ctx context.Context, it *item.Item) error {
	query, args, err := psql.Insert(table).
		Columns("id", "user_id", "item_id", "access_token", "institution_id", "institution_name", "created_at").
		Values(it.ID, it.UserID, it.ItemID, it.AccessToken, it.InstitutionID, it.InstitutionName, it.CreatedAt).
		Suffix("ON CONFLICT (user_id, access_token) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("saving item: %w", err)
	}

	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]*item.Item, error) {
	query, args, err := psql.
		Select("id", "user_id", "item_id", "access_token", "institution_id", "institution_name", "created_at").
		From(table).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []*item.Item

	for rows.Next() {
		var (
			it            item.Item
			institutionID sql.NullString
			institution   sql.NullString
		)

		if err := rows.Scan(
			&it.ID, &it.UserID, &it.ItemID, &it.AccessToken, &institutionID, &institution, &it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}

		it.InstitutionID = institutionID.String
		it.InstitutionName = institution.String

		items = append(items, &it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}

	return items, nil
}

func (s *Store) Delete(ctx context.Context, userID, itemID string) error {
	query, args, err := psql.Delete(table).
		Where(sq.Eq{"user_id": userID, "item_id": itemID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}

	if n == 0 {
		return item.ErrNotFound
	}

	return nil
}
