package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finlink/internal/config"
)

// unsetEnv clears keys for the test; envconfig treats a set but empty
// variable as a value, not as missing.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()

	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "PORT", "NODE_ENV", "DATABASE_URL", "STORE_BACKEND", "ITEM_STORE", "DATA_SOURCE",
		"PLAID_CLIENT_ID", "PLAID_SECRET", "PLAID_PRODUCTS", "JWT_TTL", "PLAID_TIMEOUT", "DB_HOST", "DB_PORT",
		"DB_USER", "DB_PASSWORD", "DB_NAME")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.App.Port)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, config.BackendPostgres, cfg.ItemBackend())
	assert.Equal(t, config.SourceMock, cfg.DataSource())
	assert.Equal(t, 168*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 10*time.Second, cfg.Plaid.Timeout)
	assert.Equal(t, []string{"auth", "transactions"}, cfg.Plaid.Products)
	assert.Equal(t, "postgres://postgres:@localhost:5432/finlink?sslmode=disable", cfg.ConnectionString())
}

func TestLoad(t *testing.T) {
	type testCase struct {
		name    string
		env     map[string]string
		check   func(t *testing.T, cfg *config.Config)
		wantErr string
	}

	tests := []testCase{
		{
			name: "PlaidWhenCredentialsSet",
			env:  map[string]string{"PLAID_CLIENT_ID": "id", "PLAID_SECRET": "secret"},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, config.SourcePlaid, cfg.DataSource())
			},
		},
		{
			name: "ExplicitMockWins",
			env:  map[string]string{"PLAID_CLIENT_ID": "id", "PLAID_SECRET": "secret", "DATA_SOURCE": "MOCK"},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, config.SourceMock, cfg.DataSource())
			},
		},
		{
			name: "DatabaseURL",
			env:  map[string]string{"DATABASE_URL": "postgres://u:p@db/x"},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "postgres://u:p@db/x", cfg.ConnectionString())
			},
		},
		{
			name: "RedisItems",
			env:  map[string]string{"STORE_BACKEND": "memory", "ITEM_STORE": "redis"},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, config.BackendRedis, cfg.ItemBackend())
			},
		},
		{
			name:    "UnknownBackend",
			env:     map[string]string{"STORE_BACKEND": "sqlite"},
			wantErr: "STORE_BACKEND",
		},
		{
			name:    "PostgresItemsWithoutPostgres",
			env:     map[string]string{"STORE_BACKEND": "memory", "ITEM_STORE": "postgres"},
			wantErr: "ITEM_STORE",
		},
		{
			name:    "UnknownSource",
			env:     map[string]string{"DATA_SOURCE": "yodlee"},
			wantErr: "DATA_SOURCE",
		},
		{
			name:    "ProductionNeedsSecret",
			env:     map[string]string{"NODE_ENV": "production"},
			wantErr: "JWT_SECRET",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetEnv(t, "NODE_ENV", "DATABASE_URL", "STORE_BACKEND", "ITEM_STORE", "DATA_SOURCE",
				"PLAID_CLIENT_ID", "PLAID_SECRET", "JWT_SECRET")

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := config.Load()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}

			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}
