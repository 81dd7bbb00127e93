// Package plaid is a minimal client for the Plaid REST API covering Link,
// token exchange, accounts and transactions.
package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/finlink/internal/banking"
	"github.com/MrJamesThe3rd/finlink/internal/finance"
)

const (
	// pageSize is the largest count /transactions/get accepts.
	pageSize       = 500
	defaultTimeout = 10 * time.Second
)

var environments = map[string]string{
	"sandbox":     "https://sandbox.plaid.com",
	"development": "https://development.plaid.com",
	"production":  "https://production.plaid.com",
}

// ErrMissingCredentials is returned by New when the client ID or secret is empty.
var ErrMissingCredentials = errors.New("plaid client id and secret are required")

type Config struct {
	ClientID string
	Secret   string
	// Env selects the base URL: sandbox, development or production.
	Env string
	// BaseURL overrides Env.
	BaseURL  string
	Timeout  time.Duration
	SignMode finance.SignMode
}

// Client implements banking.Provider against Plaid.
type Client struct {
	baseURL  string
	clientID string
	secret   string
	sign     finance.SignMode
	client   *http.Client
}

var _ banking.Provider = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.Secret == "" {
		return nil, ErrMissingCredentials
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		env := strings.ToLower(cfg.Env)
		if env == "" {
			env = "sandbox"
		}

		var ok bool
		if baseURL, ok = environments[env]; !ok {
			return nil, fmt.Errorf("unknown plaid environment %q", cfg.Env)
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	sign := cfg.SignMode
	if sign == "" {
		sign = finance.SignPlaid
	}

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: cfg.ClientID,
		secret:   cfg.Secret,
		sign:     sign,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) SignMode() finance.SignMode {
	return c.sign
}

type linkTokenUser struct {
	ClientUserID string `json:"client_user_id"`
}

type linkTokenCreateRequest struct {
	ClientName   string        `json:"client_name"`
	Language     string        `json:"language"`
	CountryCodes []string      `json:"country_codes"`
	User         linkTokenUser `json:"user"`
	Products     []string      `json:"products"`
}

func (c *Client) CreateLinkToken(ctx context.Context, req banking.LinkTokenRequest) (*banking.LinkToken, error) {
	body := linkTokenCreateRequest{
		ClientName:   req.ClientName,
		Language:     req.Language,
		CountryCodes: req.CountryCodes,
		User:         linkTokenUser{ClientUserID: req.UserID},
		Products:     req.Products,
	}

	var resp banking.LinkToken
	if err := c.post(ctx, "/link/token/create", body, &resp); err != nil {
		return nil, fmt.Errorf("creating link token: %w", err)
	}

	return &resp, nil
}

func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*banking.Exchange, error) {
	body := map[string]string{"public_token": publicToken}

	var resp struct {
		AccessToken string `json:"access_token"`
		ItemID      string `json:"item_id"`
	}

	if err := c.post(ctx, "/item/public_token/exchange", body, &resp); err != nil {
		return nil, fmt.Errorf("exchanging public token: %w", err)
	}

	return &banking.Exchange{AccessToken: resp.AccessToken, ItemID: resp.ItemID}, nil
}

func (c *Client) GetAccounts(ctx context.Context, accessToken string) ([]finance.RawAccount, error) {
	body := map[string]string{"access_token": accessToken}

	var resp struct {
		Accounts []finance.RawAccount `json:"accounts"`
	}

	if err := c.post(ctx, "/accounts/get", body, &resp); err != nil {
		return nil, fmt.Errorf("getting accounts: %w", err)
	}

	return resp.Accounts, nil
}

type transactionsGetOptions struct {
	Count  int `json:"count"`
	Offset int `json:"offset"`
}

type transactionsGetRequest struct {
	AccessToken string                 `json:"access_token"`
	StartDate   string                 `json:"start_date"`
	EndDate     string                 `json:"end_date"`
	Options     transactionsGetOptions `json:"options"`
}

type transactionsGetResponse struct {
	Accounts          []finance.RawAccount     `json:"accounts"`
	Transactions      []finance.RawTransaction `json:"transactions"`
	TotalTransactions int                      `json:"total_transactions"`
}

// GetTransactions pages through /transactions/get until every transaction in
// the range has been fetched.
func (c *Client) GetTransactions(ctx context.Context, accessToken string, start, end time.Time) (*banking.Transactions, error) {
	req := transactionsGetRequest{
		AccessToken: accessToken,
		StartDate:   start.Format(time.DateOnly),
		EndDate:     end.Format(time.DateOnly),
		Options:     transactionsGetOptions{Count: pageSize},
	}

	result := &banking.Transactions{}

	for {
		var page transactionsGetResponse
		if err := c.post(ctx, "/transactions/get", req, &page); err != nil {
			return nil, fmt.Errorf("getting transactions (offset %d): %w", req.Options.Offset, err)
		}

		if result.Accounts == nil {
			result.Accounts = page.Accounts
		}

		result.Transactions = append(result.Transactions, page.Transactions...)
		req.Options.Offset += len(page.Transactions)

		if len(page.Transactions) == 0 || req.Options.Offset >= page.TotalTransactions {
			break
		}
	}

	return result, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("PLAID-CLIENT-ID", c.clientID)
	req.Header.Set("PLAID-SECRET", c.secret)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return parseError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
