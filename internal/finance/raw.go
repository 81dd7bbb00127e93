package finance

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// RawAccount decodes the account shapes produced by Plaid, the mock source and
// older clients that only send a flat balance.
type RawAccount struct {
	ID              string       `json:"id"`
	AccountID       string       `json:"account_id"`
	Name            string       `json:"name"`
	OfficialName    string       `json:"official_name"`
	Mask            string       `json:"mask"`
	Type            string       `json:"type"`
	Subtype         string       `json:"subtype"`
	Balance         Number       `json:"balance"`
	Balances        *RawBalances `json:"balances"`
	Institution     string       `json:"institution"`
	InstitutionName string       `json:"institution_name"`
}

type RawBalances struct {
	Available       Number `json:"available"`
	Current         Number `json:"current"`
	Limit           Number `json:"limit"`
	ISOCurrencyCode string `json:"iso_currency_code"`
}

// RawTransaction decodes Plaid transactions as well as already-normalized and
// hand-written mock records.
type RawTransaction struct {
	ID              string        `json:"id"`
	TransactionID   string        `json:"transaction_id"`
	AccountID       string        `json:"account_id"`
	AccountName     string        `json:"account_name"`
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	MerchantName    string        `json:"merchant_name"`
	Amount          Number        `json:"amount"`
	Date            Date          `json:"date"`
	Category        CategoryField `json:"category"`
	CategoryID      string        `json:"category_id"`
	Pending         Flag          `json:"pending"`
	TransactionType string        `json:"transaction_type"`
	InstitutionName string        `json:"institution_name"`
	Institution     string        `json:"institution"`
	ISOCurrencyCode string        `json:"iso_currency_code"`
	Currency        string        `json:"currency"`
}

// Number is a leniently decoded numeric field. JSON numbers and numeric strings
// are accepted; null, booleans and other strings leave it unset.
type Number struct {
	value decimal.Decimal
	valid bool
}

// NumberOf returns a set Number.
func NumberOf(f float64) Number {
	return Number{value: decimal.NewFromFloat(f), valid: true}
}

// Float64 returns the value and whether it was set.
func (n Number) Float64() (float64, bool) {
	if !n.valid {
		return 0, false
	}

	return n.value.InexactFloat64(), true
}

// Decimal returns the exact decoded value and whether it was set.
func (n Number) Decimal() (decimal.Decimal, bool) {
	return n.value, n.valid
}

func (n Number) Valid() bool { return n.valid }

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}

	return []byte(n.value.String()), nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || isNull(data) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}

		raw = strings.TrimSpace(s)
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}

	*n = Number{value: d, valid: true}

	return nil
}

// Flag decodes any JSON value using JavaScript truthiness: false, 0, "" and
// null are false, everything else is true.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0, isNull(data):
		*f = false
	case data[0] == 't':
		*f = true
	case data[0] == 'f':
		*f = false
	case data[0] == '"':
		var s string
		_ = json.Unmarshal(data, &s)
		*f = s != ""
	case data[0] == '[', data[0] == '{':
		*f = true
	default:
		d, err := decimal.NewFromString(string(data))
		*f = Flag(err == nil && !d.IsZero())
	}

	return nil
}

// CategoryField holds a single category. Plaid sends a hierarchy array, in
// which case only the top-level (first) entry is kept.
type CategoryField string

func (c *CategoryField) UnmarshalJSON(data []byte) error {
	*c = ""

	data = bytes.TrimSpace(data)
	if len(data) == 0 || isNull(data) {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*c = CategoryField(s)
		}
	case '[':
		var items []any
		if err := json.Unmarshal(data, &items); err != nil || len(items) == 0 {
			return nil
		}

		if s, ok := items[0].(string); ok {
			*c = CategoryField(s)
		}
	}

	return nil
}

// NumberFromDecimal returns a set Number holding d exactly.
func NumberFromDecimal(d decimal.Decimal) Number {
	return Number{value: d, valid: true}
}
