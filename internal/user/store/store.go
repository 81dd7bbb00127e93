package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/finlink/internal/user"
)

const uniqueViolation = "23505"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, u *user.User) error {
	query, args, err := psql.Insert("users").
		Columns("id", "email", "name", "password_hash", "created_at").
		Values(u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.ErrUserExists
		}

		return fmt.Errorf("creating user: %w", err)
	}

	return nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.get(ctx, sq.Eq{"email": email})
}

func (s *Store) GetByID(ctx context.Context, id string) (*user.User, error) {
	return s.get(ctx, sq.Eq{"id": id})
}

func (s *Store) get(ctx context.Context, where sq.Eq) (*user.User, error) {
	query, args, err := psql.
		Select("id", "email", "name", "password_hash", "created_at").
		From("users").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	var u user.User

	err = s.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}

		return nil, fmt.Errorf("getting user: %w", err)
	}

	return &u, nil
}
