package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	BackendRedis    = "redis"

	SourcePlaid = "plaid"
	SourceMock  = "mock"

	devSecret = "dev-secret-change-me"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Finlink"`
		Port int    `envconfig:"PORT" default:"8000"`
		// Env is "production" or anything else, mirroring NODE_ENV.
		Env string `envconfig:"NODE_ENV" default:"development"`
	}

	DB struct {
		URL      string `envconfig:"DATABASE_URL"`
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"finlink"`
	}

	Store struct {
		Backend string `envconfig:"STORE_BACKEND" default:"postgres"`
		// Items defaults to Backend when empty.
		Items string `envconfig:"ITEM_STORE"`
	}

	Redis struct {
		Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
		Password string `envconfig:"REDIS_PASSWORD"`
		DB       int    `envconfig:"REDIS_DB" default:"0"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	JWT struct {
		Secret string        `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`
		TTL    time.Duration `envconfig:"JWT_TTL" default:"168h"`
	}

	Plaid struct {
		ClientID     string        `envconfig:"PLAID_CLIENT_ID"`
		Secret       string        `envconfig:"PLAID_SECRET"`
		Env          string        `envconfig:"PLAID_ENV" default:"sandbox"`
		Timeout      time.Duration `envconfig:"PLAID_TIMEOUT" default:"10s"`
		SignMode     string        `envconfig:"PLAID_SIGN_MODE" default:"plaid"`
		ClientName   string        `envconfig:"PLAID_CLIENT_NAME" default:"Personal Finance App"`
		Products     []string      `envconfig:"PLAID_PRODUCTS" default:"auth,transactions"`
		CountryCodes []string      `envconfig:"PLAID_COUNTRY_CODES" default:"US"`
	}

	Data struct {
		// Source is plaid or mock; empty picks plaid when credentials are set.
		Source        string `envconfig:"DATA_SOURCE"`
		StatementFile string `envconfig:"MOCK_STATEMENT_FILE"`
	}
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

// ConnectionString prefers DATABASE_URL over the individual DB_* settings.
func (c *Config) ConnectionString() string {
	if c.DB.URL != "" {
		return c.DB.URL
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func (c *Config) StoreBackend() string {
	return strings.ToLower(c.Store.Backend)
}

func (c *Config) ItemBackend() string {
	if c.Store.Items != "" {
		return strings.ToLower(c.Store.Items)
	}

	return c.StoreBackend()
}

func (c *Config) DataSource() string {
	if c.Data.Source != "" {
		return strings.ToLower(c.Data.Source)
	}

	if c.Plaid.ClientID != "" && c.Plaid.Secret != "" {
		return SourcePlaid
	}

	return SourceMock
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend() {
	case BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	switch c.ItemBackend() {
	case BackendPostgres, BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("unknown ITEM_STORE %q", c.Store.Items)
	}

	if c.ItemBackend() == BackendPostgres && c.StoreBackend() != BackendPostgres {
		return errors.New("ITEM_STORE=postgres requires STORE_BACKEND=postgres")
	}

	switch c.DataSource() {
	case SourcePlaid, SourceMock:
	default:
		return fmt.Errorf("unknown DATA_SOURCE %q", c.Data.Source)
	}

	if c.IsProduction() && c.JWT.Secret == devSecret {
		return errors.New("JWT_SECRET must be set in production")
	}

	return nil
}
