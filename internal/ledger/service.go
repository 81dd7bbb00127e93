// Package ledger assembles a user's accounts and transactions from every bank
// connection they linked. Connections are queried one after another; a
// connection that fails is logged and skipped so the others still show.
package ledger

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/finlink/internal/banking"
	"github.com/MrJamesThe3rd/finlink/internal/categorize"
	"github.com/MrJamesThe3rd/finlink/internal/finance"
	"github.com/MrJamesThe3rd/finlink/internal/item"
)

var (
	ErrMissingPublicToken = errors.New("public_token is required")
	ErrAccountNotFound    = errors.New("account not found")
	ErrDemoAccount        = errors.New("demo accounts cannot be removed")
)

const (
	DefaultMonths = 6
	MaxMonths     = 24
)

// Repository keeps the last seen copy of accounts and transactions. Snapshots
// are written after every successful fetch; reads always go upstream.
//
//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	SaveAccounts(ctx context.Context, userID, itemID string, accounts []finance.Account) error
	SaveTransactions(ctx context.Context, userID, itemID string, txs []finance.Transaction) error
	// AccountItem returns the item the account was fetched from, or ErrAccountNotFound.
	AccountItem(ctx context.Context, userID, accountID string) (string, error)
	// DeleteItem drops every snapshot taken from the item.
	DeleteItem(ctx context.Context, userID, itemID string) error
}

// LinkConfig is what the Link session shows to the user.
type LinkConfig struct {
	ClientName   string
	Language     string
	Products     []string
	CountryCodes []string
}

var DefaultLinkConfig = LinkConfig{
	ClientName:   "Personal Finance App",
	Language:     "en",
	Products:     []string{"auth", "transactions"},
	CountryCodes: []string{"US"},
}

// source pairs a linked item with the provider that serves it.
type source struct {
	item     *item.Item
	provider banking.Provider
}

type Service struct {
	provider   banking.Provider
	items      *item.Service
	repo       Repository
	normalizer *finance.Normalizer
	rules      *categorize.Service
	demo       *source
	link       LinkConfig
	now        func() time.Time
}

type Option func(*Service)

// WithDemo serves it from p to users that have linked nothing yet.
func WithDemo(p banking.Provider, it item.Item) Option {
	return func(s *Service) { s.demo = &source{item: &it, provider: p} }
}

func WithCategorizer(rules *categorize.Service) Option {
	return func(s *Service) { s.rules = rules }
}

func WithLinkConfig(cfg LinkConfig) Option {
	return func(s *Service) { s.link = cfg }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(
	provider banking.Provider,
	items *item.Service,
	repo Repository,
	normalizer *finance.Normalizer,
	opts ...Option,
) *Service {
	s := &Service{
		provider:   provider,
		items:      items,
		repo:       repo,
		normalizer: normalizer,
		link:       DefaultLinkConfig,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) CreateLinkToken(ctx context.Context, userID string) (*banking.LinkToken, error) {
	token, err := s.provider.CreateLinkToken(ctx, banking.LinkTokenRequest{
		UserID:       userID,
		ClientName:   s.link.ClientName,
		Language:     cmp.Or(s.link.Language, DefaultLinkConfig.Language),
		Products:     s.link.Products,
		CountryCodes: s.link.CountryCodes,
	})
	if err != nil {
		return nil, fmt.Errorf("creating link token: %w", err)
	}

	return token, nil
}

// ExchangePublicToken finishes a Link session: it trades the public token,
// remembers the new item and returns its accounts. institution is what Link
// reported and names the accounts when upstream does not.
func (s *Service) ExchangePublicToken(
	ctx context.Context,
	userID, publicToken string,
	institution banking.Institution,
) ([]finance.Account, error) {
	publicToken = strings.TrimSpace(publicToken)
	if publicToken == "" {
		return nil, ErrMissingPublicToken
	}

	ex, err := s.provider.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return nil, fmt.Errorf("exchanging public token: %w", err)
	}

	it, err := s.items.Link(ctx, item.LinkParams{
		UserID:          userID,
		ItemID:          ex.ItemID,
		AccessToken:     ex.AccessToken,
		InstitutionID:   institution.ID,
		InstitutionName: institution.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("linking item: %w", err)
	}

	raws, err := s.provider.GetAccounts(ctx, ex.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("getting accounts: %w", err)
	}

	accounts := s.normalizer.Accounts(raws, institution.Name)
	s.snapshotAccounts(ctx, userID, it.ItemID, accounts)

	return accounts, nil
}

// Accounts returns the accounts of every item the user linked.
func (s *Service) Accounts(ctx context.Context, userID string) ([]finance.Account, error) {
	sources, err := s.sources(ctx, userID)
	if err != nil {
		return nil, err
	}

	all := []finance.Account{}

	for _, src := range sources {
		raws, err := src.provider.GetAccounts(ctx, src.item.AccessToken)
		if err != nil {
			slog.Error("failed to fetch accounts", "user_id", userID, "item_id", src.item.ItemID, "error", err)
			continue
		}

		accounts := s.normalizer.Accounts(raws, cmp.Or(src.item.InstitutionName, finance.ConnectedInstitution))
		s.snapshotAccounts(ctx, userID, src.item.ItemID, accounts)

		all = append(all, accounts...)
	}

	return all, nil
}

// Transactions returns the user's transactions within r, newest first, with
// the user's category rules applied.
func (s *Service) Transactions(ctx context.Context, userID string, r Range) ([]finance.Transaction, error) {
	sources, err := s.sources(ctx, userID)
	if err != nil {
		return nil, err
	}

	all := []finance.Transaction{}

	for _, src := range sources {
		res, err := src.provider.GetTransactions(ctx, src.item.AccessToken, r.Start, r.End)
		if err != nil {
			slog.Error("failed to fetch transactions", "user_id", userID, "item_id", src.item.ItemID, "error", err)
			continue
		}

		if res == nil {
			continue
		}

		txs := s.normalizer.Transactions(res.Transactions, finance.TransactionContext{
			Sign:            src.provider.SignMode(),
			InstitutionName: cmp.Or(src.item.InstitutionName, finance.ConnectedInstitution),
			AccountNames:    finance.AccountNames(res.Accounts),
		})
		s.snapshotTransactions(ctx, userID, src.item.ItemID, txs)

		all = append(all, txs...)
	}

	if s.rules != nil {
		categorized, err := s.rules.Apply(ctx, userID, all)
		if err != nil {
			slog.Error("failed to apply category rules", "user_id", userID, "error", err)
		}

		all = categorized
	}

	finance.SortNewestFirst(all)

	return all, nil
}

// RemoveAccount unlinks the item the account belongs to. Upstream serves
// accounts per item, so the item's other accounts go with it. Accounts of the
// demo item are served again on the next load and are refused with
// ErrDemoAccount.
func (s *Service) RemoveAccount(ctx context.Context, userID, accountID string) error {
	itemID, err := s.repo.AccountItem(ctx, userID, accountID)
	if err != nil {
		return err
	}

	if s.demo != nil && itemID == s.demo.item.ItemID {
		return ErrDemoAccount
	}

	if err := s.items.Unlink(ctx, userID, itemID); err != nil && !errors.Is(err, item.ErrNotFound) {
		return fmt.Errorf("unlinking item: %w", err)
	}

	if err := s.repo.DeleteItem(ctx, userID, itemID); err != nil {
		return fmt.Errorf("deleting snapshots: %w", err)
	}

	return nil
}

// MonthlySpending returns expenses per calendar month for the last months
// months, the current one included.
func (s *Service) MonthlySpending(ctx context.Context, userID string, months int) ([]finance.MonthlySpendingPoint, error) {
	if months <= 0 {
		months = DefaultMonths
	}

	months = min(months, MaxMonths)

	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	txs, err := s.Transactions(ctx, userID, Range{Start: start, End: now})
	if err != nil {
		return nil, err
	}

	return finance.MonthlyTotals(txs, now, months), nil
}

func (s *Service) CategorySpending(ctx context.Context, userID string, r Range) ([]finance.CategoryTotal, error) {
	txs, err := s.Transactions(ctx, userID, r)
	if err != nil {
		return nil, err
	}

	return finance.CategoryTotals(txs), nil
}

// Summary is the dashboard headline for one user and period.
type Summary struct {
	NetWorth     float64                 `json:"net_worth"`
	TotalAssets  float64                 `json:"total_assets"`
	TotalDebt    float64                 `json:"total_debt"`
	AccountCount int                     `json:"account_count"`
	StartDate    finance.Date            `json:"start_date"`
	EndDate      finance.Date            `json:"end_date"`
	Categories   []finance.CategoryTotal `json:"categories"`
	finance.Cashflow
}

func (s *Service) Summary(ctx context.Context, userID string, r Range) (*Summary, error) {
	accounts, err := s.Accounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	txs, err := s.Transactions(ctx, userID, r)
	if err != nil {
		return nil, err
	}

	return &Summary{
		NetWorth:     finance.NetWorth(accounts),
		TotalAssets:  finance.TotalAssets(accounts),
		TotalDebt:    finance.TotalDebt(accounts),
		AccountCount: len(accounts),
		StartDate:    finance.DateOf(r.Start),
		EndDate:      finance.DateOf(r.End),
		Categories:   finance.CategoryTotals(txs),
		Cashflow:     finance.SummarizeCashflow(txs),
	}, nil
}

// sources lists the user's linked items. Users without any get the demo item
// when one is configured.
func (s *Service) sources(ctx context.Context, userID string) ([]source, error) {
	items, err := s.items.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	if len(items) == 0 && s.demo != nil {
		return []source{*s.demo}, nil
	}

	sources := make([]source, len(items))
	for i, it := range items {
		sources[i] = source{item: it, provider: s.provider}
	}

	return sources, nil
}

func (s *Service) snapshotAccounts(ctx context.Context, userID, itemID string, accounts []finance.Account) {
	if len(accounts) == 0 {
		return
	}

	if err := s.repo.SaveAccounts(ctx, userID, itemID, accounts); err != nil {
		slog.Error("failed to save account snapshot", "user_id", userID, "item_id", itemID, "error", err)
	}
}

func (s *Service) snapshotTransactions(ctx context.Context, userID, itemID string, txs []finance.Transaction) {
	if len(txs) == 0 {
		return
	}

	if err := s.repo.SaveTransactions(ctx, userID, itemID, txs); err != nil {
		slog.Error("failed to save transaction snapshot", "user_id", userID, "item_id", itemID, "error", err)
	}
}
