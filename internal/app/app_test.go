package app_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finlink/internal/app"
	"github.com/MrJamesThe3rd/finlink/internal/config"
	"github.com/MrJamesThe3rd/finlink/internal/ledger"
	"github.com/MrJamesThe3rd/finlink/internal/user"
)

func memoryConfig() *config.Config {
	var cfg config.Config

	cfg.App.Env = "development"
	cfg.Store.Backend = config.BackendMemory
	cfg.JWT.Secret = "test"
	cfg.JWT.TTL = time.Hour
	cfg.Plaid.ClientName = "Personal Finance App"
	cfg.Plaid.Products = []string{"auth", "transactions"}
	cfg.Plaid.CountryCodes = []string{"US"}

	return &cfg
}

func TestNew_MemoryMock(t *testing.T) {
	ctx := context.Background()

	a, err := app.New(ctx, memoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })

	demo, err := a.Users.Login(ctx, user.DemoEmail, user.DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, user.DemoName, demo.Name)

	accounts, err := a.Ledger.Accounts(ctx, demo.ID)
	require.NoError(t, err)
	assert.Len(t, accounts, 3)

	link, err := a.Ledger.CreateLinkToken(ctx, demo.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link.Token, "link-sandbox-"))
}

func TestNew_Production(t *testing.T) {
	ctx := context.Background()

	cfg := memoryConfig()
	cfg.App.Env = "production"

	a, err := app.New(ctx, cfg)
	require.NoError(t, err)

	_, err = a.Users.Login(ctx, user.DemoEmail, user.DemoPassword)
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)

	accounts, err := a.Ledger.Accounts(ctx, "someone")
	require.NoError(t, err)
	assert.Empty(t, accounts)

	h := a.Handler()

	for target, want := range map[string]int{
		"/api/health-check": http.StatusOK,
		"/api/debug/env":    http.StatusNotFound,
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, want, rec.Code, target)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	req.Header.Set("Authorization", "Bearer mock_jwt_token_1")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNew_MockStatement(t *testing.T) {
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "statement.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"date,name,amount,category\n"+
			"2025-03-01,Salary,2500.00,Income\n"+
			"2025-03-02,Groceries,-80.25,Food\n",
	), 0o600))

	cfg := memoryConfig()
	cfg.Data.StatementFile = path

	a, err := app.New(ctx, cfg)
	require.NoError(t, err)

	r, err := ledger.ParseRange("2025-03-01", "2025-03-31", time.Now())
	require.NoError(t, err)

	txs, err := a.Ledger.Transactions(ctx, "u1", r)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "Groceries", txs[0].Name)
	assert.InDelta(t, -80.25, txs[0].Amount, 0.001)
	assert.Equal(t, "Salary", txs[1].Name)
}

func TestNew_Errors(t *testing.T) {
	type testCase struct {
		name   string
		modify func(cfg *config.Config)
	}

	tests := []testCase{
		{
			name:   "MissingStatement",
			modify: func(cfg *config.Config) { cfg.Data.StatementFile = filepath.Join(t.TempDir(), "missing.csv") },
		},
		{
			name: "BadSignMode",
			modify: func(cfg *config.Config) {
				cfg.Data.Source = config.SourcePlaid
				cfg.Plaid.ClientID = "id"
				cfg.Plaid.Secret = "secret"
				cfg.Plaid.SignMode = "sideways"
			},
		},
		{
			name: "PlaidWithoutCredentials",
			modify: func(cfg *config.Config) {
				cfg.Data.Source = config.SourcePlaid
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := memoryConfig()
			tt.modify(cfg)

			_, err := app.New(context.Background(), cfg)
			assert.Error(t, err)
		})
	}
}

func TestHandler_DebugEnv(t *testing.T) {
	t.Setenv("PORT", "9000")

	cfg := memoryConfig()
	cfg.Plaid.ClientID = "client-abcdef"

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/debug/env", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Plaid struct {
			ClientIDPrefix string `json:"client_id_prefix"`
			DataSource     string `json:"data_source"`
		} `json:"plaid"`
		Server struct {
			Port string `json:"port"`
		} `json:"server"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "client...", body.Plaid.ClientIDPrefix)
	assert.Equal(t, config.SourceMock, body.Plaid.DataSource)
	assert.Equal(t, "9000", body.Server.Port)
}
