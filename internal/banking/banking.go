// Package banking defines the upstream source of account and transaction data.
// The live implementation talks to Plaid; the mock implementation serves demo
// data for development.
package banking

import (
	"context"
	"time"

	"github.com/MrJamesThe3rd/finlink/internal/finance"
)

// LinkTokenRequest describes the Link session to open for a user.
type LinkTokenRequest struct {
	UserID       string
	ClientName   string
	Language     string
	Products     []string
	CountryCodes []string
}

type LinkToken struct {
	Token      string    `json:"link_token"`
	Expiration time.Time `json:"expiration"`
	RequestID  string    `json:"request_id,omitempty"`
}

// Exchange is the result of trading a Link public token for a long-lived
// access token.
type Exchange struct {
	AccessToken string
	ItemID      string
}

// Institution identifies the bank the user picked during Link.
type Institution struct {
	ID   string `json:"institution_id"`
	Name string `json:"name"`
}

// Transactions is what a source returns for one item and date range. Accounts
// are included so callers can resolve account names without another request.
type Transactions struct {
	Accounts     []finance.RawAccount
	Transactions []finance.RawTransaction
}

//go:generate mockgen -source=banking.go -destination=provider_mock.go -package=banking
type Provider interface {
	CreateLinkToken(ctx context.Context, req LinkTokenRequest) (*LinkToken, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (*Exchange, error)
	GetAccounts(ctx context.Context, accessToken string) ([]finance.RawAccount, error)
	GetTransactions(ctx context.Context, accessToken string, start, end time.Time) (*Transactions, error)

	// SignMode reports how this source signs transaction amounts.
	SignMode() finance.SignMode
}
