// soukctl drives the marketplace client from the command line: session
// management, catalog browsing, the cart, checkout and the wallet
// operations. State lives in the configured key-value store, so the cart and
// session survive between invocations the same way they do in the app.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/zoudousouk/souk-go/internal/account"
	"github.com/zoudousouk/souk-go/internal/api"
	"github.com/zoudousouk/souk-go/internal/cart"
	"github.com/zoudousouk/souk-go/internal/catalog"
	"github.com/zoudousouk/souk-go/internal/checkout"
	"github.com/zoudousouk/souk-go/internal/session"
	"github.com/zoudousouk/souk-go/internal/wallet"
	"github.com/zoudousouk/souk-go/pkg/config"
	pkgerrors "github.com/zoudousouk/souk-go/pkg/errors"
	"github.com/zoudousouk/souk-go/pkg/kv"
	"github.com/zoudousouk/souk-go/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "soukctl"})

	if err := godotenv.Load(); err != nil {
		logg.Debug(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "soukctl",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	app, cleanup, err := bootstrap(context.Background(), cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap", err)
		os.Exit(1)
	}
	defer func() {
		if err := cleanup(); err != nil {
			logg.Error(context.Background(), "error closing storage", err)
		}
	}()

	if err := run(context.Background(), app, os.Args[1:]); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			fmt.Fprintln(os.Stderr, typed.UserMessage())
			if pkgerrors.IsRetryable(err) {
				fmt.Fprintln(os.Stderr, "Réessayez dans quelques instants.")
			}
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// application holds the wired services every subcommand picks from.
type application struct {
	config   *config.Config
	logger   *logger.Logger
	sessions *session.Manager
	cart     *cart.Store
	checkout *checkout.Coordinator
	wallet   wallet.Service
	catalog  catalog.Service
	account  account.Service
}

func bootstrap(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*application, func() error, error) {
	store, closeStore, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("opening storage: %w", err)
	}

	// tokens and profile data go through the sealed layer when a
	// passphrase is configured; everything else stays plain
	sessionStore := store
	if cfg.Security.SealPassphrase != "" {
		sealed, err := kv.NewSealed(ctx, store, cfg.Security)
		if err != nil {
			return nil, nil, multierr.Append(fmt.Errorf("sealing storage: %w", err), closeStore())
		}
		sessionStore = sealed
	}

	sessions, err := session.NewManager(sessionStore, logg)
	if err != nil {
		return nil, nil, multierr.Append(err, closeStore())
	}
	if err := sessions.Restore(ctx); err != nil {
		return nil, nil, multierr.Append(fmt.Errorf("restoring session: %w", err), closeStore())
	}

	client, err := api.NewClient(cfg.API, sessions, logg)
	if err != nil {
		return nil, nil, multierr.Append(err, closeStore())
	}

	cartStore, err := cart.NewStore(store, logg)
	if err != nil {
		return nil, nil, multierr.Append(err, closeStore())
	}
	cartStore.Load(ctx)

	coordinator, err := checkout.NewCoordinator(cartStore, sessions, client, logg, nil)
	if err != nil {
		return nil, nil, multierr.Append(err, closeStore())
	}

	walletSvc, err := wallet.NewService(client, sessions, cfg.Fees, logg)
	if err != nil {
		return nil, nil, multierr.Append(err, closeStore())
	}

	catalogSvc, err := catalog.NewService(client, store, logg)
	if err != nil {
		return nil, nil, multierr.Append(err, closeStore())
	}

	accountSvc, err := account.NewService(client, sessions, logg)
	if err != nil {
		return nil, nil, multierr.Append(err, closeStore())
	}

	return &application{
		config:   cfg,
		logger:   logg,
		sessions: sessions,
		cart:     cartStore,
		checkout: coordinator,
		wallet:   walletSvc,
		catalog:  catalogSvc,
		account:  accountSvc,
	}, closeStore, nil
}

func openStorage(ctx context.Context, cfg *config.Config) (kv.Store, func() error, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverSQLite:
		store, err := kv.OpenSQLite(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.StorageDriverRedis:
		store, err := kv.NewRedis(ctx, cfg.Redis, cfg.Storage.Namespace)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.StorageDriverMemory:
		return kv.NewMemory(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
