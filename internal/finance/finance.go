// Package finance holds the canonical account and transaction records shown to
// users, the normalizer that produces them from upstream payloads, and the
// aggregations computed over them.
//
// Amounts follow one sign convention: negative is money leaving the account
// (expense), positive is money coming in (income).
package finance

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

const (
	DefaultCurrency        = "USD"
	DefaultAccountName     = "Account"
	DefaultInstitution     = "Bank Account"
	ConnectedInstitution   = "Connected Account"
	DefaultTransactionName = "Transaction"
	DefaultCategory        = "Other"
)

// Balances are the monetary fields of an Account.
type Balances struct {
	Available       float64  `json:"available"`
	Current         float64  `json:"current"`
	Limit           *float64 `json:"limit"`
	ISOCurrencyCode string   `json:"iso_currency_code"`
}

// Account is a financial account in canonical shape.
// Balance and Institution duplicate Balances.Current and InstitutionName for
// consumers that only read the flat legacy fields.
type Account struct {
	ID              string   `json:"id"`
	AccountID       string   `json:"account_id"`
	Name            string   `json:"name"`
	Mask            string   `json:"mask"`
	Type            string   `json:"type"`
	Subtype         string   `json:"subtype"`
	InstitutionName string   `json:"institution_name"`
	Institution     string   `json:"institution"`
	Balance         float64  `json:"balance"`
	Balances        Balances `json:"balances"`
}

// CurrentBalance returns the balance used for net worth calculations.
func (a Account) CurrentBalance() float64 {
	return a.Balances.Current
}

// Transaction is a single ledger entry in canonical shape. It references its
// account by AccountID only; AccountName and InstitutionName are display copies.
type Transaction struct {
	ID              string  `json:"id"`
	TransactionID   string  `json:"transaction_id"`
	AccountID       string  `json:"account_id"`
	AccountName     string  `json:"account_name"`
	InstitutionName string  `json:"institution_name"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	MerchantName    string  `json:"merchant_name"`
	Date            Date    `json:"date"`
	Amount          float64 `json:"amount"`
	Category        string  `json:"category"`
	CategoryID      string  `json:"category_id"`
	Pending         bool    `json:"pending"`
	ISOCurrencyCode string  `json:"iso_currency_code"`
}

// IsExpense reports whether the transaction moved money out of the account.
func (t Transaction) IsExpense() bool {
	return t.Amount < 0
}

// MonthlySpendingPoint is one bar of the monthly spending chart.
type MonthlySpendingPoint struct {
	Month      string  `json:"month"`
	Key        string  `json:"key"`
	TotalSpent float64 `json:"totalSpent"`
}

// Date is a calendar day without time of day.
// It encodes as "2006-01-02" in JSON and decodes leniently: empty, null or
// unparsable values leave it zero.
type Date struct {
	t time.Time
}

// NewDate returns the date for the given day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate accepts "2006-01-02" or RFC 3339 timestamps.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)

	t, err := time.Parse(time.DateOnly, s)
	if err == nil {
		return DateOf(t), nil
	}

	t, err = time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, err
	}

	return DateOf(t), nil
}

func (d Date) Time() time.Time { return d.t }
func (d Date) IsZero() bool    { return d.t.IsZero() }
func (d Date) Before(o Date) bool {
	return d.t.Before(o.t)
}

func (d Date) After(o Date) bool {
	return d.t.After(o.t)
}

func (d Date) String() string {
	if d.t.IsZero() {
		return ""
	}

	return d.t.Format(time.DateOnly)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.t.IsZero() {
		return []byte("null"), nil
	}

	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	*d = Date{}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}

	if parsed, err := ParseDate(s); err == nil {
		*d = parsed
	}

	return nil
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}
