package finance

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// SignMode selects how raw upstream amounts are converted to the canonical
// sign convention (negative = outflow).
type SignMode string

const (
	// SignPlaid negates every amount; Plaid reports outflows as positive.
	SignPlaid SignMode = "plaid"
	// SignTransactionType only corrects amounts whose transaction_type
	// contradicts their sign: positive debits are negated and negative credits
	// made positive. Everything else passes through unchanged.
	SignTransactionType SignMode = "transaction_type"
	// SignAuto applies SignTransactionType when transaction_type is debit or
	// credit and SignPlaid otherwise. Plaid's own channel values ("place",
	// "digital", "special", "unresolved") carry no direction.
	SignAuto SignMode = "auto"
)

// ParseSignMode validates a configured sign mode. Empty means SignPlaid.
func ParseSignMode(s string) (SignMode, error) {
	switch m := SignMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return SignPlaid, nil
	case SignPlaid, SignTransactionType, SignAuto:
		return m, nil
	}

	return "", fmt.Errorf("unknown sign mode %q", s)
}

// SignAmount converts amount to the canonical convention according to mode.
func SignAmount(amount float64, transactionType string, mode SignMode) float64 {
	txType := strings.ToLower(strings.TrimSpace(transactionType))

	if mode == SignAuto {
		mode = SignPlaid
		if txType == "debit" || txType == "credit" {
			mode = SignTransactionType
		}
	}

	switch mode {
	case SignTransactionType:
		switch {
		case txType == "debit" && amount > 0:
			amount = -amount
		case txType == "credit" && amount < 0:
			amount = -amount
		}
	default:
		amount = -amount
	}

	if amount == 0 {
		return 0
	}

	return amount
}

// IDFunc returns a fresh identifier carrying the given prefix.
type IDFunc func(prefix string) string

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// RandomID builds "<prefix>-<unix millis>-<10 base36 chars>".
func RandomID(prefix string) string {
	suffix := make([]byte, 10)
	for i := range suffix {
		suffix[i] = base36[rand.IntN(len(base36))]
	}

	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), suffix)
}

// TransactionContext carries what a batch of raw transactions shares: the
// source's sign convention, its institution and the names of its accounts.
type TransactionContext struct {
	Sign            SignMode
	InstitutionName string
	AccountNames    map[string]string
}

// Normalizer maps raw records to canonical ones. It never fails: absent fields
// get defaults. The only inputs besides the record are the injected ID
// generator (used when upstream omits an ID) and clock (used when upstream
// omits a date).
type Normalizer struct {
	newID IDFunc
	now   func() time.Time
}

type Option func(*Normalizer)

func WithIDFunc(f IDFunc) Option {
	return func(n *Normalizer) { n.newID = f }
}

func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) { n.now = now }
}

func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		newID: RandomID,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Account normalizes one raw account. fallbackInstitution is used when the
// record names no institution, e.g. the institution picked during Link.
func (n *Normalizer) Account(raw RawAccount, fallbackInstitution string) Account {
	id := cmp.Or(raw.AccountID, raw.ID)
	if id == "" {
		id = n.newID("acct")
	}

	var nested RawBalances
	if raw.Balances != nil {
		nested = *raw.Balances
	}

	current := numberOr(0, nested.Current, raw.Balance)
	available := numberOr(0, nested.Available, raw.Balance)

	var limit *float64
	if v, ok := nested.Limit.Float64(); ok {
		limit = &v
	}

	institution := cmp.Or(raw.InstitutionName, raw.Institution, fallbackInstitution, DefaultInstitution)

	return Account{
		ID:              id,
		AccountID:       id,
		Name:            cmp.Or(raw.Name, raw.OfficialName, DefaultAccountName),
		Mask:            raw.Mask,
		Type:            raw.Type,
		Subtype:         raw.Subtype,
		InstitutionName: institution,
		Institution:     institution,
		Balance:         current,
		Balances: Balances{
			Available:       available,
			Current:         current,
			Limit:           limit,
			ISOCurrencyCode: cmp.Or(strings.ToUpper(nested.ISOCurrencyCode), DefaultCurrency),
		},
	}
}

func (n *Normalizer) Accounts(raws []RawAccount, fallbackInstitution string) []Account {
	accounts := make([]Account, 0, len(raws))
	for _, raw := range raws {
		accounts = append(accounts, n.Account(raw, fallbackInstitution))
	}

	return accounts
}

// Transaction normalizes one raw transaction.
func (n *Normalizer) Transaction(raw RawTransaction, tc TransactionContext) Transaction {
	id := cmp.Or(raw.TransactionID, raw.ID)
	if id == "" {
		id = n.newID("tx")
	}

	amount := 0.0
	if v, ok := raw.Amount.Float64(); ok {
		amount = SignAmount(v, raw.TransactionType, tc.Sign)
	}

	date := raw.Date
	if date.IsZero() {
		date = DateOf(n.now())
	}

	return Transaction{
		ID:              id,
		TransactionID:   id,
		AccountID:       raw.AccountID,
		AccountName:     cmp.Or(raw.AccountName, tc.AccountNames[raw.AccountID], DefaultAccountName),
		InstitutionName: cmp.Or(raw.InstitutionName, raw.Institution, tc.InstitutionName, DefaultInstitution),
		Name:            cmp.Or(raw.Name, raw.Description, DefaultTransactionName),
		Description:     cmp.Or(raw.Description, raw.Name, DefaultTransactionName),
		MerchantName:    raw.MerchantName,
		Date:            date,
		Amount:          amount,
		Category:        cmp.Or(strings.TrimSpace(string(raw.Category)), DefaultCategory),
		CategoryID:      raw.CategoryID,
		Pending:         bool(raw.Pending),
		ISOCurrencyCode: cmp.Or(strings.ToUpper(raw.ISOCurrencyCode), strings.ToUpper(raw.Currency), DefaultCurrency),
	}
}

func (n *Normalizer) Transactions(raws []RawTransaction, tc TransactionContext) []Transaction {
	txs := make([]Transaction, 0, len(raws))
	for _, raw := range raws {
		txs = append(txs, n.Transaction(raw, tc))
	}

	return txs
}

// AccountNames indexes account display names by account ID.
func AccountNames(raws []RawAccount) map[string]string {
	names := make(map[string]string, len(raws))
	for _, a := range raws {
		id := cmp.Or(a.AccountID, a.ID)
		if id == "" {
			continue
		}

		names[id] = cmp.Or(a.Name, a.OfficialName)
	}

	return names
}

// ToRawTransaction converts a canonical transaction back into the raw shape,
// so canonical records can flow through any code that accepts raw input.
func ToRawTransaction(t Transaction) RawTransaction {
	return RawTransaction{
		ID:              t.ID,
		TransactionID:   t.TransactionID,
		AccountID:       t.AccountID,
		AccountName:     t.AccountName,
		Name:            t.Name,
		Description:     t.Description,
		MerchantName:    t.MerchantName,
		Amount:          NumberOf(t.Amount),
		Date:            t.Date,
		Category:        CategoryField(t.Category),
		CategoryID:      t.CategoryID,
		Pending:         Flag(t.Pending),
		InstitutionName: t.InstitutionName,
		ISOCurrencyCode: t.ISOCurrencyCode,
	}
}

func numberOr(def float64, candidates ...Number) float64 {
	for _, c := range candidates {
		if v, ok := c.Float64(); ok {
			return v
		}
	}

	return def
}

// ToRawAccount converts a canonical account back into the raw shape.
func ToRawAccount(a Account) RawAccount {
	limit := Number{}
	if a.Balances.Limit != nil {
		limit = NumberOf(*a.Balances.Limit)
	}

	return RawAccount{
		ID:              a.ID,
		AccountID:       a.AccountID,
		Name:            a.Name,
		Mask:            a.Mask,
		Type:            a.Type,
		Subtype:         a.Subtype,
		Balance:         NumberOf(a.Balance),
		Institution:     a.Institution,
		InstitutionName: a.InstitutionName,
		Balances: &RawBalances{
			Available:       NumberOf(a.Balances.Available),
			Current:         NumberOf(a.Balances.Current),
			Limit:           limit,
			ISOCurrencyCode: a.Balances.ISOCurrencyCode,
		},
	}
}
