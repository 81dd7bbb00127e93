package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MrJamesThe3rd/finlink/internal/categorize"
)

const table = "category_rules"

var (
	psql    = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	columns = []string{"id", "user_id", "pattern", "category", "created_at"}
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, r *categorize.Rule) error {
	query, args, err := psql.Insert(table).
		Columns(columns...).
		Values(r.ID, r.UserID, r.Pattern, r.Category, r.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("creating rule: %w", err)
	}

	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]*categorize.Rule, error) {
	query, args, err := psql.Select(columns...).
		From(table).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	defer rows.Close()

	var rules []*categorize.Rule

	for rows.Next() {
		var r categorize.Rule
		if err := rows.Scan(&r.ID, &r.UserID, &r.Pattern, &r.Category, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}

		rules = append(rules, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rules: %w", err)
	}

	return rules, nil
}

// FindMatch lets Postgres pick the longest contained pattern, newest first on ties.
func (s *Store) FindMatch(ctx context.Context, userID, text string) (*categorize.Rule, error) {
	query, args, err := psql.Select(columns...).
		From(table).
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Expr("strpos(lower(?), lower(pattern)) > 0", text)).
		OrderBy("LENGTH(pattern) DESC", "created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	var r categorize.Rule

	err = s.db.QueryRowContext(ctx, query, args...).Scan(&r.ID, &r.UserID, &r.Pattern, &r.Category, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("finding match: %w", err)
	}

	return &r, nil
}
