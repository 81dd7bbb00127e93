// Package mock is an in-process data source serving demo accounts and
// transactions, used in development and whenever no Plaid credentials are set.
package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finlink/internal/banking"
	"github.com/MrJamesThe3rd/finlink/internal/finance"
)

// The demo item stands in for a linked bank when a user has none.
const (
	DemoAccessToken = "access-sandbox-demo"
	DemoItemID      = "item-sandbox-demo"
	DemoInstitution = "Mock Bank"
)

const (
	checkingID   = "mock-account-1"
	savingsID    = "mock-account-2"
	creditCardID = "mock-account-3"

	creditUnion = "Mock Credit Union"

	// historyMonths is how far back the recurring demo bills go.
	historyMonths = 5
)

// Provider implements banking.Provider with fixed demo data. When a statement
// is supplied its transactions replace the generated ones.
type Provider struct {
	now       func() time.Time
	statement []finance.RawTransaction
}

var _ banking.Provider = (*Provider)(nil)

type Option func(*Provider)

func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// WithStatement serves the given transactions instead of the generated demo set.
// Rows without an account are attributed to the demo checking account.
func WithStatement(txs []finance.RawTransaction) Option {
	return func(p *Provider) {
		p.statement = make([]finance.RawTransaction, len(txs))
		for i, tx := range txs {
			if tx.AccountID == "" {
				tx.AccountID = checkingID
			}

			p.statement[i] = tx
		}
	}
}

func New(opts ...Option) *Provider {
	p := &Provider{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// SignMode reports transaction_type signing: demo amounts are already
// canonical and carry no contradicting type.
func (p *Provider) SignMode() finance.SignMode {
	return finance.SignTransactionType
}

func (p *Provider) CreateLinkToken(_ context.Context, _ banking.LinkTokenRequest) (*banking.LinkToken, error) {
	return &banking.LinkToken{
		Token:      "link-sandbox-" + uuid.NewString(),
		Expiration: p.now().Add(4 * time.Hour).UTC(),
		RequestID:  uuid.NewString(),
	}, nil
}

func (p *Provider) ExchangePublicToken(_ context.Context, publicToken string) (*banking.Exchange, error) {
	if publicToken == "" {
		return nil, fmt.Errorf("public token is required")
	}

	return &banking.Exchange{
		AccessToken: "access-sandbox-" + uuid.NewString(),
		ItemID:      "item-sandbox-" + uuid.NewString(),
	}, nil
}

func (p *Provider) GetAccounts(_ context.Context, _ string) ([]finance.RawAccount, error) {
	return demoAccounts(), nil
}

// GetTransactions returns the transactions dated within [start, end].
func (p *Provider) GetTransactions(_ context.Context, _ string, start, end time.Time) (*banking.Transactions, error) {
	all := p.statement
	if all == nil {
		all = demoTransactions(p.now())
	}

	from, to := finance.DateOf(start), finance.DateOf(end)

	txs := make([]finance.RawTransaction, 0, len(all))
	for _, tx := range all {
		if tx.Date.Before(from) || tx.Date.After(to) {
			continue
		}

		txs = append(txs, tx)
	}

	return &banking.Transactions{Accounts: demoAccounts(), Transactions: txs}, nil
}

func demoAccounts() []finance.RawAccount {
	return []finance.RawAccount{
		{
			ID:              checkingID,
			AccountID:       checkingID,
			Name:            "Mock Checking",
			Mask:            "1234",
			Type:            "depository",
			Subtype:         "checking",
			Balance:         finance.NumberOf(1250.45),
			InstitutionName: DemoInstitution,
			Balances: &finance.RawBalances{
				Available:       finance.NumberOf(1200.00),
				Current:         finance.NumberOf(1250.45),
				ISOCurrencyCode: "USD",
			},
		},
		{
			ID:              savingsID,
			AccountID:       savingsID,
			Name:            "Mock Savings",
			Mask:            "5678",
			Type:            "depository",
			Subtype:         "savings",
			Balance:         finance.NumberOf(5432.10),
			InstitutionName: DemoInstitution,
			Balances: &finance.RawBalances{
				Available:       finance.NumberOf(5432.10),
				Current:         finance.NumberOf(5432.10),
				ISOCurrencyCode: "USD",
			},
		},
		{
			ID:              creditCardID,
			AccountID:       creditCardID,
			Name:            "Mock Credit Card",
			Mask:            "9012",
			Type:            "credit",
			Subtype:         "credit card",
			Balance:         finance.NumberOf(-450.75),
			InstitutionName: creditUnion,
			Balances: &finance.RawBalances{
				Available:       finance.NumberOf(3549.25),
				Current:         finance.NumberOf(-450.75),
				Limit:           finance.NumberOf(4000.00),
				ISOCurrencyCode: "USD",
			},
		},
	}
}

type demoTx struct {
	id          string
	accountID   string
	amount      float64
	daysAgo     int
	description string
	name        string
	category    string
	categoryID  string
	pending     bool
	merchant    string
}

var recent = []demoTx{
	{"mock-tx-1", checkingID, -75.50, 0, "Grocery Store", "Whole Foods", "Food", "13005000", false, "Whole Foods"},
	{"mock-tx-2", checkingID, -12.99, 1, "Coffee Shop", "Starbucks", "Dining", "13005043", false, "Starbucks"},
	{"mock-tx-3", savingsID, 1000.00, 7, "Deposit", "Transfer", "Income", "21001000", false, "Transfer"},
	{"mock-tx-4", creditCardID, -120.35, 1, "Online Shopping", "Amazon", "Shopping", "19013000", true, "Amazon"},
	{"mock-tx-5", checkingID, -45.00, 0, "Uber Ride", "Uber", "Transportation", "17000000", false, "Uber"},
	{"mock-tx-6", checkingID, -89.99, 7, "Internet Bill", "Comcast", "Utilities", "16000000", false, "Comcast"},
	{"mock-tx-7", checkingID, 2500.00, 7, "Payroll", "COMPANY PAYROLL", "Income", "21001000", false, "Employer"},
	{"mock-tx-8", creditCardID, -35.50, 0, "Restaurant", "Local Cafe", "Dining", "13005000", true, "Local Cafe"},
}

var accountNames = map[string]string{
	checkingID:   "Mock Checking",
	savingsID:    "Mock Savings",
	creditCardID: "Mock Credit Card",
}

var institutions = map[string]string{
	checkingID:   DemoInstitution,
	savingsID:    DemoInstitution,
	creditCardID: creditUnion,
}

func demoTransactions(now time.Time) []finance.RawTransaction {
	today := finance.DateOf(now).Time()

	txs := make([]finance.RawTransaction, 0, len(recent)+2*historyMonths)
	for _, d := range recent {
		txs = append(txs, d.raw(finance.DateOf(today.AddDate(0, 0, -d.daysAgo))))
	}

	// Recurring bills in earlier months keep the monthly spending chart populated.
	for m := 1; m <= historyMonths; m++ {
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -m, 0)
		key := first.Format("2006-01")

		txs = append(txs,
			demoTx{"mock-rent-" + key, checkingID, -1100.00, 0, "Monthly Rent", "Rent Payment", "Rent", "16001000", false, "Property Management"}.
				raw(finance.DateOf(first)),
			demoTx{"mock-groceries-" + key, creditCardID, -(180.00 + float64(m)*12.37), 0, "Grocery Store", "Trader Joe's", "Food", "13005000", false, "Trader Joe's"}.
				raw(finance.DateOf(first.AddDate(0, 0, 14))),
		)
	}

	return txs
}

func (d demoTx) raw(date finance.Date) finance.RawTransaction {
	return finance.RawTransaction{
		ID:              d.id,
		TransactionID:   d.id,
		AccountID:       d.accountID,
		AccountName:     accountNames[d.accountID],
		Amount:          finance.NumberOf(d.amount),
		Date:            date,
		Description:     d.description,
		Name:            d.name,
		Category:        finance.CategoryField(d.category),
		CategoryID:      d.categoryID,
		Pending:         finance.Flag(d.pending),
		MerchantName:    d.merchant,
		InstitutionName: institutions[d.accountID],
		ISOCurrencyCode: "USD",
	}
}
