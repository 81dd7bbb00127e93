package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finlink/internal/finance"
	"github.com/MrJamesThe3rd/finlink/internal/ledger"
)

// batchSize keeps multi-row inserts well under the Postgres parameter limit.
const batchSize = 500

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) SaveAccounts(ctx context.Context, userID, itemID string, accounts []finance.Account) error {
	now := s.now().UTC()

	return s.inBatches(ctx, len(accounts), func(from, to int) sq.InsertBuilder {
		b := psql.Insert("accounts").Columns(
			"user_id", "account_id", "item_id", "name", "mask", "type", "subtype", "institution_name",
			"current_balance", "available_balance", "credit_limit", "iso_currency_code", "updated_at",
		)

		for _, a := range accounts[from:to] {
			var limit decimal.NullDecimal
			if a.Balances.Limit != nil {
				limit = decimal.NewNullDecimal(decimal.NewFromFloat(*a.Balances.Limit))
			}

			b = b.Values(
				userID, a.AccountID, itemID, a.Name, a.Mask, a.Type, a.Subtype, a.InstitutionName,
				decimal.NewFromFloat(a.Balances.Current), decimal.NewFromFloat(a.Balances.Available), limit,
				a.Balances.ISOCurrencyCode, now,
			)
		}

		return b.Suffix(`ON CONFLICT (user_id, account_id) DO UPDATE SET
			item_id = EXCLUDED.item_id,
			name = EXCLUDED.name,
			mask = EXCLUDED.mask,
			type = EXCLUDED.type,
			subtype = EXCLUDED.subtype,
			institution_name = EXCLUDED.institution_name,
			current_balance = EXCLUDED.current_balance,
			available_balance = EXCLUDED.available_balance,
			credit_limit = EXCLUDED.credit_limit,
			iso_currency_code = EXCLUDED.iso_currency_code,
			updated_at = EXCLUDED.updated_at`)
	})
}

func (s *Store) SaveTransactions(ctx context.Context, userID, itemID string, txs []finance.Transaction) error {
	now := s.now().UTC()

	return s.inBatches(ctx, len(txs), func(from, to int) sq.InsertBuilder {
		b := psql.Insert("transactions").Columns(
			"user_id", "transaction_id", "item_id", "account_id", "account_name", "institution_name",
			"name", "merchant_name", "date", "amount", "category", "category_id", "pending",
			"iso_currency_code", "updated_at",
		)

		for _, t := range txs[from:to] {
			b = b.Values(
				userID, t.TransactionID, itemID, t.AccountID, t.AccountName, t.InstitutionName,
				t.Name, t.MerchantName, t.Date.Time(), decimal.NewFromFloat(t.Amount), t.Category, t.CategoryID,
				t.Pending, t.ISOCurrencyCode, now,
			)
		}

		return b.Suffix(`ON CONFLICT (user_id, transaction_id) DO UPDATE SET
			item_id = EXCLUDED.item_id,
			account_id = EXCLUDED.account_id,
			account_name = EXCLUDED.account_name,
			institution_name = EXCLUDED.institution_name,
			name = EXCLUDED.name,
			merchant_name = EXCLUDED.merchant_name,
			date = EXCLUDED.date,
			amount = EXCLUDED.amount,
			category = EXCLUDED.category,
			category_id = EXCLUDED.category_id,
			pending = EXCLUDED.pending,
			iso_currency_code = EXCLUDED.iso_currency_code,
			updated_at = EXCLUDED.updated_at`)
	})
}

// inBatches runs the inserts built for each batch of n rows in one database
// transaction.
func (s *Store) inBatches(ctx context.Context, n int, build func(from, to int) sq.InsertBuilder) error {
	if n == 0 {
		return nil
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	for from := 0; from < n; from += batchSize {
		query, args, err := build(from, min(from+batchSize, n)).ToSql()
		if err != nil {
			return fmt.Errorf("building insert: %w", err)
		}

		if _, err := dbTx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("saving snapshot: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) AccountItem(ctx context.Context, userID, accountID string) (string, error) {
	query, args, err := psql.Select("item_id").
		From("accounts").
		Where(sq.Eq{"user_id": userID, "account_id": accountID}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("building select: %w", err)
	}

	var itemID string

	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ledger.ErrAccountNotFound
		}

		return "", fmt.Errorf("getting account: %w", err)
	}

	return itemID, nil
}

func (s *Store) DeleteItem(ctx context.Context, userID, itemID string) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	for _, table := range []string{"transactions", "accounts"} {
		query, args, err := psql.Delete(table).
			Where(sq.Eq{"user_id": userID, "item_id": itemID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("building delete: %w", err)
		}

		if _, err := dbTx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("deleting %s: %w", table, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
