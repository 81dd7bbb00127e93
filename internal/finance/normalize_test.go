package finance_test

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finlink/internal/finance"
)

var fixedNow = time.Date(2025, 3, 20, 15, 4, 5, 0, time.UTC)

func newNormalizer() *finance.Normalizer {
	return finance.NewNormalizer(
		finance.WithIDFunc(func(prefix string) string { return prefix + "-generated" }),
		finance.WithClock(func() time.Time { return fixedNow }),
	)
}

func decodeAccount(t *testing.T, s string) finance.RawAccount {
	t.Helper()

	var raw finance.RawAccount
	require.NoError(t, json.Unmarshal([]byte(s), &raw))

	return raw
}

func decodeTransaction(t *testing.T, s string) finance.RawTransaction {
	t.Helper()

	var raw finance.RawTransaction
	require.NoError(t, json.Unmarshal([]byte(s), &raw))

	return raw
}

func TestNormalizer_Account(t *testing.T) {
	type testCase struct {
		name     string
		input    string
		fallback string
		check    func(t *testing.T, got finance.Account)
	}

	tests := []testCase{
		{
			name:  "NestedBalancesWithoutInstitution",
			input: `{"account_id":"a1","name":"Checking","balances":{"available":100,"current":150,"limit":null,"iso_currency_code":"USD"}}`,
			check: func(t *testing.T, got finance.Account) {
				assert.Equal(t, "a1", got.ID)
				assert.Equal(t, "a1", got.AccountID)
				assert.Equal(t, 150.0, got.Balance)
				assert.Equal(t, 150.0, got.Balances.Current)
				assert.Equal(t, 100.0, got.Balances.Available)
				assert.Nil(t, got.Balances.Limit)
				assert.Equal(t, "Bank Account", got.InstitutionName)
				assert.Equal(t, "Bank Account", got.Institution)
			},
		},
		{
			name:  "FlatBalanceOnly",
			input: `{"id":"legacy","name":"Old","balance":-42.25}`,
			check: func(t *testing.T, got finance.Account) {
				assert.Equal(t, "legacy", got.ID)
				assert.Equal(t, -42.25, got.Balances.Current)
				assert.Equal(t, -42.25, got.Balances.Available)
				assert.Equal(t, -42.25, got.Balance)
				assert.Equal(t, "USD", got.Balances.ISOCurrencyCode)
			},
		},
		{
			name:  "NestedWinsOverFlat",
			input: `{"id":"x","balance":1,"balances":{"current":2}}`,
			check: func(t *testing.T, got finance.Account) {
				assert.Equal(t, 2.0, got.Balances.Current)
				assert.Equal(t, 1.0, got.Balances.Available)
			},
		},
		{
			name:  "NothingSet",
			input: `{}`,
			check: func(t *testing.T, got finance.Account) {
				assert.Equal(t, "acct-generated", got.ID)
				assert.Equal(t, "Account", got.Name)
				assert.Equal(t, 0.0, got.Balances.Current)
				assert.Equal(t, 0.0, got.Balances.Available)
				assert.Equal(t, "Bank Account", got.InstitutionName)
			},
		},
		{
			name:     "InstitutionChain",
			input:    `{"id":"x","institution":"Chase"}`,
			fallback: "Link Bank",
			check: func(t *testing.T, got finance.Account) {
				assert.Equal(t, "Chase", got.InstitutionName)
			},
		},
		{
			name:     "FallbackInstitution",
			input:    `{"id":"x"}`,
			fallback: "Link Bank",
			check: func(t *testing.T, got finance.Account) {
				assert.Equal(t, "Link Bank", got.InstitutionName)
			},
		},
		{
			name:  "MalformedBalanceIsZero",
			input: `{"id":"x","balance":"lots"}`,
			check: func(t *testing.T, got finance.Account) {
				assert.Equal(t, 0.0, got.Balances.Current)
			},
		},
		{
			name:  "NumericStringBalance",
			input: `{"id":"x","balance":"12.5"}`,
			check: func(t *testing.T, got finance.Account) {
				assert.Equal(t, 12.5, got.Balances.Current)
			},
		},
		{
			name:  "CreditLimit",
			input: `{"id":"cc","type":"credit","balances":{"current":-450.75,"available":3549.25,"limit":4000}}`,
			check: func(t *testing.T, got finance.Account) {
				require.NotNil(t, got.Balances.Limit)
				assert.Equal(t, 4000.0, *got.Balances.Limit)
				assert.Equal(t, -450.75, got.Balance)
			},
		},
	}

	n := newNormalizer()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Account(decodeAccount(t, tt.input), tt.fallback)
			tt.check(t, got)
		})
	}
}

func TestNormalizer_Transaction(t *testing.T) {
	type testCase struct {
		name  string
		input string
		tc    finance.TransactionContext
		check func(t *testing.T, got finance.Transaction)
	}

	tests := []testCase{
		{
			name:  "PlaidOutflowWithEmptyCategory",
			input: `{"transaction_id":"t1","amount":42.50,"category":[],"pending":0}`,
			tc:    finance.TransactionContext{Sign: finance.SignPlaid},
			check: func(t *testing.T, got finance.Transaction) {
				assert.Equal(t, "t1", got.ID)
				assert.Equal(t, "t1", got.TransactionID)
				assert.Equal(t, -42.50, got.Amount)
				assert.Equal(t, "Other", got.Category)
				assert.False(t, got.Pending)
			},
		},
		{
			name:  "CategoryArrayTakesFirst",
			input: `{"id":"t2","amount":-3,"category":["Food","Groceries"]}`,
			tc:    finance.TransactionContext{Sign: finance.SignTransactionType},
			check: func(t *testing.T, got finance.Transaction) {
				assert.Equal(t, "Food", got.Category)
				assert.Equal(t, -3.0, got.Amount)
			},
		},
		{
			name:  "MissingCategory",
			input: `{"id":"t3"}`,
			check: func(t *testing.T, got finance.Transaction) {
				assert.Equal(t, "Other", got.Category)
			},
		},
		{
			name:  "DefaultsAndGeneratedID",
			input: `{"amount":10}`,
			tc:    finance.TransactionContext{Sign: finance.SignPlaid, InstitutionName: "Chase"},
			check: func(t *testing.T, got finance.Transaction) {
				assert.Equal(t, "tx-generated", got.ID)
				assert.Equal(t, "Transaction", got.Name)
				assert.Equal(t, "Transaction", got.Description)
				assert.Equal(t, "Account", got.AccountName)
				assert.Equal(t, "Chase", got.InstitutionName)
				assert.Equal(t, "", got.MerchantName)
				assert.Equal(t, "2025-03-20", got.Date.String())
				assert.Equal(t, "USD", got.ISOCurrencyCode)
			},
		},
		{
			name:  "AccountNameFromContext",
			input: `{"id":"t4","account_id":"a1","name":"Coffee","date":"2025-03-01","pending":"yes"}`,
			tc: finance.TransactionContext{
				AccountNames: map[string]string{"a1": "Checking"},
			},
			check: func(t *testing.T, got finance.Transaction) {
				assert.Equal(t, "Checking", got.AccountName)
				assert.Equal(t, "Coffee", got.Description)
				assert.Equal(t, "2025-03-01", got.Date.String())
				assert.True(t, got.Pending)
				assert.Equal(t, "Bank Account", got.InstitutionName)
			},
		},
		{
			name:  "DebitPositiveIsNegated",
			input: `{"id":"t5","amount":20,"transaction_type":"debit"}`,
			tc:    finance.TransactionContext{Sign: finance.SignTransactionType},
			check: func(t *testing.T, got finance.Transaction) {
				assert.Equal(t, -20.0, got.Amount)
			},
		},
		{
			name:  "CreditNegativeIsAbs",
			input: `{"id":"t6","amount":-20,"transaction_type":"credit"}`,
			tc:    finance.TransactionContext{Sign: finance.SignTransactionType},
			check: func(t *testing.T, got finance.Transaction) {
				assert.Equal(t, 20.0, got.Amount)
			},
		},
		{
			name:  "AutoWithoutTypeNegates",
			input: `{"id":"t7","amount":20}`,
			tc:    finance.TransactionContext{Sign: finance.SignAuto},
			check: func(t *testing.T, got finance.Transaction) {
				assert.Equal(t, -20.0, got.Amount)
			},
		},
		{
			name:  "AutoWithTypeUsesType",
			input: `{"id":"t8","amount":20,"transaction_type":"credit"}`,
			tc:    finance.TransactionContext{Sign: finance.SignAuto},
			check: func(t *testing.T, got finance.Transaction) {
				assert.Equal(t, 20.0, got.Amount)
			},
		},
		{
			name:  "AutoWithPlaidChannelTypeNegates",
			input: `{"transaction_id":"t10","account_id":"a1","amount":42.5,"date":"2025-03-01","name":"Uber","transaction_type":"place","category":["Travel","Taxi"]}`,
			tc:    finance.TransactionContext{Sign: finance.SignAuto},
			check: func(t *testing.T, got finance.Transaction) {
				assert.Equal(t, -42.5, got.Amount)
				assert.True(t, got.IsExpense())
			},
		},
		{
			name:  "AutoWithUnresolvedTypeNegates",
			input: `{"id":"t11","amount":-1500,"transaction_type":"unresolved"}`,
			tc:    finance.TransactionContext{Sign: finance.SignAuto},
			check: func(t *testing.T, got finance.Transaction) {
				assert.Equal(t, 1500.0, got.Amount)
			},
		},
		{
			name:  "ZeroAmountStaysPositiveZero",
			input: `{"id":"t9","amount":0}`,
			tc:    finance.TransactionContext{Sign: finance.SignPlaid},
			check: func(t *testing.T, got finance.Transaction) {
				b, err := json.Marshal(got.Amount)
				require.NoError(t, err)
				assert.Equal(t, "0", string(b))
			},
		},
	}

	n := newNormalizer()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Transaction(decodeTransaction(t, tt.input), tt.tc)
			tt.check(t, got)
		})
	}
}

func TestNormalizer_Idempotent(t *testing.T) {
	n := newNormalizer()

	account := n.Account(decodeAccount(t,
		`{"account_id":"a1","name":"Card","type":"credit","mask":"9012","balances":{"available":3549.25,"current":-450.75,"limit":4000,"iso_currency_code":"USD"}}`,
	), "Mock Credit Union")

	b, err := json.Marshal(account)
	require.NoError(t, err)

	again := n.Account(decodeAccount(t, string(b)), "")
	assert.Equal(t, account, again)
	assert.Equal(t, account, n.Account(finance.ToRawAccount(account), ""))

	tc := finance.TransactionContext{Sign: finance.SignTransactionType}
	tx := n.Transaction(decodeTransaction(t,
		`{"transaction_id":"t1","account_id":"a1","name":"Whole Foods","amount":-75.5,"date":"2025-03-15","category":["Food","Groceries"],"merchant_name":"Whole Foods","pending":true}`,
	), tc)

	b, err = json.Marshal(tx)
	require.NoError(t, err)

	assert.Equal(t, tx, n.Transaction(decodeTransaction(t, string(b)), tc))
	assert.Equal(t, tx, n.Transaction(finance.ToRawTransaction(tx), tc))
}

func TestRandomID(t *testing.T) {
	id := finance.RandomID("tx")
	assert.Regexp(t, regexp.MustCompile(`^tx-\d+-[0-9a-z]{10}$`), id)
	assert.NotEqual(t, id, finance.RandomID("tx"))
}

func TestParseSignMode(t *testing.T) {
	m, err := finance.ParseSignMode("")
	require.NoError(t, err)
	assert.Equal(t, finance.SignPlaid, m)

	m, err = finance.ParseSignMode("Transaction_Type")
	require.NoError(t, err)
	assert.Equal(t, finance.SignTransactionType, m)

	_, err = finance.ParseSignMode("backwards")
	assert.Error(t, err)
}

func TestAccountNames(t *testing.T) {
	names := finance.AccountNames([]finance.RawAccount{
		{AccountID: "a1", Name: "Checking"},
		{ID: "a2", OfficialName: "Premier Savings"},
		{Name: "no id"},
	})

	assert.Equal(t, map[string]string{"a1": "Checking", "a2": "Premier Savings"}, names)
}
