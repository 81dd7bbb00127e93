// Package app wires configuration into the services shared by the API server
// and the terminal dashboard.
package app

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-redis/redis/v7"

	"github.com/MrJamesThe3rd/finlink/internal/auth"
	"github.com/MrJamesThe3rd/finlink/internal/banking"
	"github.com/MrJamesThe3rd/finlink/internal/banking/mock"
	"github.com/MrJamesThe3rd/finlink/internal/banking/plaid"
	"github.com/MrJamesThe3rd/finlink/internal/categorize"
	catmem "github.com/MrJamesThe3rd/finlink/internal/categorize/memstore"
	catstore "github.com/MrJamesThe3rd/finlink/internal/categorize/store"
	"github.com/MrJamesThe3rd/finlink/internal/config"
	"github.com/MrJamesThe3rd/finlink/internal/database"
	"github.com/MrJamesThe3rd/finlink/internal/export"
	"github.com/MrJamesThe3rd/finlink/internal/finance"
	api "github.com/MrJamesThe3rd/finlink/internal/http"
	httpauth "github.com/MrJamesThe3rd/finlink/internal/http/auth"
	"github.com/MrJamesThe3rd/finlink/internal/http/categories"
	httpexport "github.com/MrJamesThe3rd/finlink/internal/http/export"
	"github.com/MrJamesThe3rd/finlink/internal/http/importcsv"
	httpplaid "github.com/MrJamesThe3rd/finlink/internal/http/plaid"
	"github.com/MrJamesThe3rd/finlink/internal/http/spending"
	"github.com/MrJamesThe3rd/finlink/internal/http/system"
	"github.com/MrJamesThe3rd/finlink/internal/importer"
	"github.com/MrJamesThe3rd/finlink/internal/item"
	itemmem "github.com/MrJamesThe3rd/finlink/internal/item/memstore"
	"github.com/MrJamesThe3rd/finlink/internal/item/redisstore"
	itemstore "github.com/MrJamesThe3rd/finlink/internal/item/store"
	"github.com/MrJamesThe3rd/finlink/internal/ledger"
	ledgermem "github.com/MrJamesThe3rd/finlink/internal/ledger/memstore"
	ledgerstore "github.com/MrJamesThe3rd/finlink/internal/ledger/store"
	"github.com/MrJamesThe3rd/finlink/internal/user"
	usermem "github.com/MrJamesThe3rd/finlink/internal/user/memstore"
	userstore "github.com/MrJamesThe3rd/finlink/internal/user/store"
)

type App struct {
	Config   *config.Config
	Users    *user.Service
	Items    *item.Service
	Ledger   *ledger.Service
	Rules    *categorize.Service
	Importer *importer.Service
	Exporter *export.Service
	Tokens   *auth.Manager

	closers []func() error
}

type repositories struct {
	users  user.Repository
	items  item.Repository
	ledger ledger.Repository
	rules  categorize.Repository
}

// New opens the configured backends and builds every service. Outside
// production the demo user is seeded and users without linked banks see the
// mock source's demo item.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	repos, err := a.openRepositories(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	provider, err := newProvider(cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	normalizer := finance.NewNormalizer()

	a.Users = user.NewService(repos.users)
	a.Items = item.NewService(repos.items)
	a.Rules = categorize.NewService(repos.rules)
	a.Importer = importer.NewService(normalizer)
	a.Tokens = auth.NewManager(cfg.JWT.Secret, cfg.JWT.TTL, !cfg.IsProduction())

	opts := []ledger.Option{
		ledger.WithCategorizer(a.Rules),
		ledger.WithLinkConfig(linkConfig(cfg)),
	}

	if !cfg.IsProduction() {
		demo, ok := provider.(*mock.Provider)
		if !ok {
			demo = mock.New()
		}

		opts = append(opts, ledger.WithDemo(demo, DemoItem()))

		if _, err := a.Users.EnsureDemoUser(ctx); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("seeding demo user: %w", err)
		}
	}

	a.Ledger = ledger.NewService(provider, a.Items, repos.ledger, normalizer, opts...)
	a.Exporter = export.NewService(a.Ledger)

	slog.Info("services ready",
		"data_source", cfg.DataSource(),
		"store", cfg.StoreBackend(),
		"item_store", cfg.ItemBackend(),
		"production", cfg.IsProduction(),
	)

	return a, nil
}

// linkConfig overrides the Link defaults with whatever is configured.
func linkConfig(cfg *config.Config) ledger.LinkConfig {
	link := ledger.DefaultLinkConfig
	link.ClientName = cmp.Or(cfg.Plaid.ClientName, link.ClientName)

	if len(cfg.Plaid.Products) > 0 {
		link.Products = cfg.Plaid.Products
	}

	if len(cfg.Plaid.CountryCodes) > 0 {
		link.CountryCodes = cfg.Plaid.CountryCodes
	}

	return link
}

// DemoItem is the stand-in connection served by the mock source.
func DemoItem() item.Item {
	return item.Item{
		ItemID:          mock.DemoItemID,
		AccessToken:     mock.DemoAccessToken,
		InstitutionName: mock.DemoInstitution,
	}
}

func (a *App) openRepositories(ctx context.Context) (*repositories, error) {
	var repos repositories

	switch a.Config.StoreBackend() {
	case config.BackendMemory:
		slog.Warn("using in-memory stores, data is lost on restart")

		repos.users = usermem.New()
		repos.ledger = ledgermem.New()
		repos.rules = catmem.New()
	default:
		db, err := database.New(a.Config.ConnectionString())
		if err != nil {
			return nil, err
		}

		a.closers = append(a.closers, db.Close)

		if err := database.Migrate(ctx, db); err != nil {
			return nil, err
		}

		repos.users = userstore.New(db)
		repos.ledger = ledgerstore.New(db)
		repos.rules = catstore.New(db)
		repos.items = itemstore.New(db)
	}

	switch a.Config.ItemBackend() {
	case config.BackendMemory:
		repos.items = itemmem.New()
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     a.Config.Redis.Addr,
			Password: a.Config.Redis.Password,
			DB:       a.Config.Redis.DB,
		})
		a.closers = append(a.closers, client.Close)

		if err := client.WithContext(ctx).Ping().Err(); err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}

		repos.items = redisstore.New(client)
	}

	return &repos, nil
}

func newProvider(cfg *config.Config) (banking.Provider, error) {
	if cfg.DataSource() == config.SourceMock {
		var opts []mock.Option

		if cfg.Data.StatementFile != "" {
			txs, err := loadStatement(cfg.Data.StatementFile)
			if err != nil {
				return nil, err
			}

			opts = append(opts, mock.WithStatement(txs))
		}

		return mock.New(opts...), nil
	}

	sign, err := finance.ParseSignMode(cfg.Plaid.SignMode)
	if err != nil {
		return nil, err
	}

	client, err := plaid.New(plaid.Config{
		ClientID: cfg.Plaid.ClientID,
		Secret:   cfg.Plaid.Secret,
		Env:      cfg.Plaid.Env,
		Timeout:  cfg.Plaid.Timeout,
		SignMode: sign,
	})
	if err != nil {
		return nil, fmt.Errorf("creating plaid client: %w", err)
	}

	return client, nil
}

func loadStatement(path string) ([]finance.RawTransaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening mock statement: %w", err)
	}
	defer f.Close()

	stmt, err := importer.NewParser().Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing mock statement %s: %w", path, err)
	}

	slog.Info("loaded mock statement", "path", path, "profile", stmt.Profile, "transactions", len(stmt.Transactions))

	return stmt.Transactions, nil
}

// Handler builds the API router over the app's services.
func (a *App) Handler() http.Handler {
	var env *system.EnvInfo
	if !a.Config.IsProduction() {
		env = &system.EnvInfo{
			PlaidClientID: a.Config.Plaid.ClientID,
			PlaidSecret:   a.Config.Plaid.Secret,
			PlaidEnv:      a.Config.Plaid.Env,
			DataSource:    a.Config.DataSource(),
			Port:          os.Getenv("PORT"),
			Environment:   os.Getenv("NODE_ENV"),
		}
	}

	return api.New(api.Handlers{
		System:     system.NewHandler(env),
		Auth:       httpauth.NewHandler(a.Users, a.Tokens),
		Plaid:      httpplaid.NewHandler(a.Ledger),
		Spending:   spending.NewHandler(a.Ledger),
		Categories: categories.NewHandler(a.Rules),
		Import:     importcsv.NewHandler(a.Importer, a.Rules),
		Export:     httpexport.NewHandler(a.Exporter, a.Ledger),
	}, a.Tokens, a.Config.Server.Timeout)
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}

	a.closers = nil

	return errors.Join(errs...)
}
