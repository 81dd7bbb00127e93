package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finlink/internal/banking"
	"github.com/MrJamesThe3rd/finlink/internal/banking/mock"
	"github.com/MrJamesThe3rd/finlink/internal/categorize"
	catmem "github.com/MrJamesThe3rd/finlink/internal/categorize/memstore"
	"github.com/MrJamesThe3rd/finlink/internal/finance"
	"github.com/MrJamesThe3rd/finlink/internal/item"
	itemmem "github.com/MrJamesThe3rd/finlink/internal/item/memstore"
	"github.com/MrJamesThe3rd/finlink/internal/ledger"
	"github.com/MrJamesThe3rd/finlink/internal/ledger/memstore"
)

var now = time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

var demoItem = item.Item{ItemID: mock.DemoItemID, AccessToken: mock.DemoAccessToken, InstitutionName: mock.DemoInstitution}

func link(t *testing.T, items *item.Service, userID, itemID, token, institution string) {
	t.Helper()

	_, err := items.Link(context.Background(), item.LinkParams{
		UserID:          userID,
		ItemID:          itemID,
		AccessToken:     token,
		InstitutionName: institution,
	})
	require.NoError(t, err)
}

func TestService_CreateLinkToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	provider := banking.NewMockProvider(ctrl)
	provider.EXPECT().
		CreateLinkToken(gomock.Any(), banking.LinkTokenRequest{
			UserID:       "u1",
			ClientName:   "Personal Finance App",
			Language:     "en",
			Products:     []string{"auth", "transactions"},
			CountryCodes: []string{"US"},
		}).
		Return(&banking.LinkToken{Token: "link-sandbox-1"}, nil)

	svc := ledger.NewService(provider, item.NewService(itemmem.New()), ledger.NewMockRepository(ctrl), finance.NewNormalizer())

	got, err := svc.CreateLinkToken(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "link-sandbox-1", got.Token)
}

func TestService_ExchangePublicToken(t *testing.T) {
	type testCase struct {
		name        string
		publicToken string
		setupMock   func(p *banking.MockProvider, r *ledger.MockRepository)
		wantErr     error
		wantItems   int
	}

	rawAccounts := []finance.RawAccount{
		{AccountID: "acc-1", Name: "Checking", Balances: &finance.RawBalances{Current: finance.NumberOf(150)}},
	}

	tests := []testCase{
		{
			name:        "Success",
			publicToken: "public-sandbox-1",
			setupMock: func(p *banking.MockProvider, r *ledger.MockRepository) {
				p.EXPECT().ExchangePublicToken(gomock.Any(), "public-sandbox-1").
					Return(&banking.Exchange{AccessToken: "access-1", ItemID: "item-1"}, nil)
				p.EXPECT().GetAccounts(gomock.Any(), "access-1").Return(rawAccounts, nil)
				r.EXPECT().SaveAccounts(gomock.Any(), "u1", "item-1", gomock.Len(1)).Return(nil)
			},
			wantItems: 1,
		},
		{
			name:        "SnapshotFailureIsNotFatal",
			publicToken: "public-sandbox-1",
			setupMock: func(p *banking.MockProvider, r *ledger.MockRepository) {
				p.EXPECT().ExchangePublicToken(gomock.Any(), gomock.Any()).
					Return(&banking.Exchange{AccessToken: "access-1", ItemID: "item-1"}, nil)
				p.EXPECT().GetAccounts(gomock.Any(), "access-1").Return(rawAccounts, nil)
				r.EXPECT().SaveAccounts(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("db down"))
			},
			wantItems: 1,
		},
		{
			name:        "MissingToken",
			publicToken: "  ",
			wantErr:     ledger.ErrMissingPublicToken,
		},
		{
			name:        "ExchangeFails",
			publicToken: "public-sandbox-1",
			setupMock: func(p *banking.MockProvider, _ *ledger.MockRepository) {
				p.EXPECT().ExchangePublicToken(gomock.Any(), gomock.Any()).Return(nil, errors.New("INVALID_PUBLIC_TOKEN"))
			},
			wantErr: errors.New("exchanging public token"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			provider := banking.NewMockProvider(ctrl)
			repo := ledger.NewMockRepository(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(provider, repo)
			}

			items := item.NewService(itemmem.New())
			svc := ledger.NewService(provider, items, repo, finance.NewNormalizer())

			got, err := svc.ExchangePublicToken(context.Background(), "u1", tt.publicToken,
				banking.Institution{ID: "ins_1", Name: "Chase"})

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())

				return
			}

			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "Chase", got[0].InstitutionName)
			assert.Equal(t, 150.0, got[0].Balance)

			linked, err := items.List(context.Background(), "u1")
			require.NoError(t, err)
			assert.Len(t, linked, tt.wantItems)
			assert.Equal(t, "ins_1", linked[0].InstitutionID)
		})
	}
}

func TestService_Accounts_SkipsFailingItem(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	provider := banking.NewMockProvider(ctrl)
	provider.EXPECT().GetAccounts(gomock.Any(), "access-1").Return(nil, errors.New("ITEM_LOGIN_REQUIRED"))
	provider.EXPECT().GetAccounts(gomock.Any(), "access-2").Return([]finance.RawAccount{
		{AccountID: "acc-2", Balance: finance.NumberOf(-30)},
		{AccountID: "acc-3", Balance: finance.NumberOf(100)},
	}, nil)

	repo := ledger.NewMockRepository(ctrl)
	repo.EXPECT().SaveAccounts(gomock.Any(), "u1", "item-2", gomock.Len(2)).Return(nil)

	items := item.NewService(itemmem.New())
	link(t, items, "u1", "item-1", "access-1", "Broken Bank")
	link(t, items, "u1", "item-2", "access-2", "")

	svc := ledger.NewService(provider, items, repo, finance.NewNormalizer())

	got, err := svc.Accounts(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, finance.ConnectedInstitution, got[0].InstitutionName)
	assert.Equal(t, 70.0, finance.NetWorth(got))
}

func TestService_Accounts_NoItems(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := ledger.NewService(banking.NewMockProvider(ctrl), item.NewService(itemmem.New()),
		ledger.NewMockRepository(ctrl), finance.NewNormalizer())

	got, err := svc.Accounts(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func newDemoService(t *testing.T, opts ...ledger.Option) (*ledger.Service, *memstore.Store) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := memstore.New()
	demo := mock.New(mock.WithClock(clock))

	opts = append([]ledger.Option{ledger.WithDemo(demo, demoItem), ledger.WithClock(clock)}, opts...)

	svc := ledger.NewService(banking.NewMockProvider(ctrl), item.NewService(itemmem.New()), repo,
		finance.NewNormalizer(finance.WithClock(clock)), opts...)

	return svc, repo
}

func TestService_Transactions_Demo(t *testing.T) {
	ctx := context.Background()

	rules := categorize.NewService(catmem.New())
	_, err := rules.AddRule(ctx, "u1", "starbucks", "Coffee")
	require.NoError(t, err)

	svc, repo := newDemoService(t, ledger.WithCategorizer(rules))

	r, err := ledger.ParseRange("", "", now)
	require.NoError(t, err)

	got, err := svc.Transactions(ctx, "u1", r)
	require.NoError(t, err)
	require.Len(t, got, 8)

	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Date.After(got[i-1].Date), "newest first")
	}

	byID := make(map[string]finance.Transaction, len(got))
	for _, tx := range got {
		byID[tx.ID] = tx
	}

	assert.Equal(t, "Coffee", byID["mock-tx-2"].Category)
	assert.Equal(t, "Mock Checking", byID["mock-tx-2"].AccountName)
	assert.Equal(t, -12.99, byID["mock-tx-2"].Amount)
	assert.Equal(t, 2500.0, byID["mock-tx-7"].Amount)
	assert.Equal(t, 8, repo.TransactionCount("u1"))
}

func TestService_MonthlySpending(t *testing.T) {
	svc, _ := newDemoService(t)

	type testCase struct {
		name   string
		months int
		want   int
	}

	tests := []testCase{
		{name: "Default", months: 0, want: ledger.DefaultMonths},
		{name: "Three", months: 3, want: 3},
		{name: "Capped", months: 100, want: ledger.MaxMonths},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.MonthlySpending(context.Background(), "u1", tt.months)
			require.NoError(t, err)
			require.Len(t, got, tt.want)
			assert.Equal(t, "2025-03", got[len(got)-1].Key)
			assert.Positive(t, got[len(got)-1].TotalSpent)
		})
	}
}

func TestService_Summary(t *testing.T) {
	svc, _ := newDemoService(t)

	r, err := ledger.ParseRange("2025-03-13", "2025-03-20", now)
	require.NoError(t, err)

	got, err := svc.Summary(context.Background(), "u1", r)
	require.NoError(t, err)

	assert.Equal(t, 3, got.AccountCount)
	assert.Equal(t, 6231.80, got.NetWorth)
	assert.Equal(t, 450.75, got.TotalDebt)
	assert.Equal(t, 3500.0, got.TotalIncome)
	assert.Equal(t, 379.33, got.TotalExpenses)
	assert.Equal(t, 3120.67, got.NetCashflow)
	assert.Equal(t, finance.NewDate(2025, 3, 13), got.StartDate)
	require.NotEmpty(t, got.Categories)
	assert.Equal(t, "Food", got.Categories[0].Category)
}

func TestService_RemoveAccount(t *testing.T) {
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	provider := banking.NewMockProvider(ctrl)
	provider.EXPECT().GetAccounts(gomock.Any(), "access-1").
		Return([]finance.RawAccount{{AccountID: "acc-1"}, {AccountID: "acc-2"}}, nil)

	items := item.NewService(itemmem.New())
	link(t, items, "u1", "item-1", "access-1", "Chase")

	repo := memstore.New()
	svc := ledger.NewService(provider, items, repo, finance.NewNormalizer())

	err := svc.RemoveAccount(ctx, "u1", "acc-1")
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)

	_, err = svc.Accounts(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, svc.RemoveAccount(ctx, "u1", "acc-1"))

	linked, err := items.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, linked)

	_, err = repo.AccountItem(ctx, "u1", "acc-2")
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestService_RemoveAccount_DeleteFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	repo.EXPECT().AccountItem(gomock.Any(), "u1", "acc-1").Return(mock.DemoItemID, nil)
	repo.EXPECT().DeleteItem(gomock.Any(), "u1", mock.DemoItemID).Return(errors.New("db error"))

	svc := ledger.NewService(banking.NewMockProvider(ctrl), item.NewService(itemmem.New()), repo, finance.NewNormalizer())

	err := svc.RemoveAccount(context.Background(), "u1", "acc-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestService_RemoveAccount_Demo(t *testing.T) {
	ctx := context.Background()

	svc, repo := newDemoService(t)

	accounts, err := svc.Accounts(ctx, "u1")
	require.NoError(t, err)
	require.NotEmpty(t, accounts)

	err = svc.RemoveAccount(ctx, "u1", accounts[0].AccountID)
	require.ErrorIs(t, err, ledger.ErrDemoAccount)

	itemID, err := repo.AccountItem(ctx, "u1", accounts[0].AccountID)
	require.NoError(t, err)
	assert.Equal(t, mock.DemoItemID, itemID)
}
