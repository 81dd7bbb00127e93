package mock_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finlink/internal/banking"
	"github.com/MrJamesThe3rd/finlink/internal/banking/mock"
	"github.com/MrJamesThe3rd/finlink/internal/finance"
)

var now = time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)

func TestProvider_Accounts(t *testing.T) {
	p := mock.New(mock.WithClock(func() time.Time { return now }))

	raws, err := p.GetAccounts(context.Background(), mock.DemoAccessToken)
	require.NoError(t, err)
	require.Len(t, raws, 3)

	accounts := finance.NewNormalizer().Accounts(raws, "")

	assert.Equal(t, "Mock Checking", accounts[0].Name)
	assert.Equal(t, "Mock Credit Union", accounts[2].InstitutionName)
	assert.Equal(t, 6231.80, finance.NetWorth(accounts))
	assert.Equal(t, 450.75, finance.TotalDebt(accounts))
}

func TestProvider_TransactionsRange(t *testing.T) {
	p := mock.New(mock.WithClock(func() time.Time { return now }))

	got, err := p.GetTransactions(context.Background(), mock.DemoAccessToken, now.AddDate(0, 0, -1), now)
	require.NoError(t, err)

	ids := make([]string, 0, len(got.Transactions))
	for _, tx := range got.Transactions {
		ids = append(ids, tx.TransactionID)
	}

	assert.ElementsMatch(t, []string{"mock-tx-1", "mock-tx-2", "mock-tx-4", "mock-tx-5", "mock-tx-8"}, ids)
	assert.Len(t, got.Accounts, 3)
}

func TestProvider_History(t *testing.T) {
	p := mock.New(mock.WithClock(func() time.Time { return now }))

	got, err := p.GetTransactions(context.Background(), mock.DemoAccessToken, now.AddDate(0, -6, 0), now)
	require.NoError(t, err)

	txs := finance.NewNormalizer().Transactions(got.Transactions, finance.TransactionContext{Sign: p.SignMode()})
	points := finance.MonthlyTotals(txs, now, 6)

	require.Len(t, points, 6)

	for _, pt := range points {
		assert.Positive(t, pt.TotalSpent, pt.Key)
	}

	assert.Equal(t, -75.50, txs[0].Amount)
}

func TestProvider_Statement(t *testing.T) {
	stmt := []finance.RawTransaction{
		{TransactionID: "s1", Name: "Rent", Amount: finance.NumberOf(-900), Date: finance.NewDate(2025, 3, 1)},
		{TransactionID: "s2", Name: "Old", Amount: finance.NumberOf(-1), Date: finance.NewDate(2024, 1, 1)},
	}

	p := mock.New(mock.WithStatement(stmt))

	got, err := p.GetTransactions(context.Background(), "any",
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)
	require.Len(t, got.Transactions, 1)
	assert.Equal(t, "s1", got.Transactions[0].TransactionID)
	assert.Equal(t, "mock-account-1", got.Transactions[0].AccountID)
}

func TestProvider_Tokens(t *testing.T) {
	p := mock.New()

	lt, err := p.CreateLinkToken(context.Background(), banking.LinkTokenRequest{UserID: "u"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(lt.Token, "link-sandbox-"))

	ex, err := p.ExchangePublicToken(context.Background(), "public-sandbox-x")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ex.AccessToken, "access-sandbox-"))
	assert.NotEmpty(t, ex.ItemID)

	_, err = p.ExchangePublicToken(context.Background(), "")
	assert.Error(t, err)
}
