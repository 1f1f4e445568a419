package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cyberguard/awareness-service/internal/cache"
	"github.com/cyberguard/awareness-service/internal/config"
	"github.com/cyberguard/awareness-service/internal/content"
	"github.com/cyberguard/awareness-service/internal/events"
	"github.com/cyberguard/awareness-service/internal/progress"
	"github.com/cyberguard/awareness-service/internal/repositories"
	"github.com/cyberguard/awareness-service/internal/repositories/sqlstore"
	"github.com/cyberguard/awareness-service/internal/services"
	"github.com/cyberguard/awareness-service/internal/utils"
	"github.com/cyberguard/awareness-service/internal/validator"
	"github.com/cyberguard/awareness-service/pkg"
)

// app holds everything a command needs. close releases it in reverse order.
type app struct {
	cfg       *config.Config
	logger    utils.Logger
	catalog   *content.Catalog
	store     progress.Store
	repos     *repositories.Repositories
	publisher events.EventPublisher
	services  services.ServiceManager

	closers []func() error
}

type appOptions struct {
	// needDatabase fails startup when the relational store is unreachable
	needDatabase bool
	// storeOverride forces a progress backend regardless of configuration
	storeOverride string
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.storeOverride != "" {
		cfg.StoreBackend = opts.storeOverride
	}

	a := &app{
		cfg:    cfg,
		logger: utils.NewLogger(cfg.Environment, cfg.LogLevel),
	}
	slogger := utils.ToSlogLogger(a.logger)

	a.catalog, err = content.Default()
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}

	if err := a.openDatabase(databaseRequired(cfg, opts)); err != nil {
		a.close()
		return nil, err
	}

	if err := a.openStore(ctx); err != nil {
		a.close()
		return nil, err
	}

	a.publisher, err = cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("create event publisher: %w", err)
	}
	a.closers = append(a.closers, a.publisher.Close)

	a.services = services.NewServiceManager(services.ServiceManagerConfig{
		Catalog:   a.catalog,
		Store:     a.store,
		Options:   progress.Options{ReplayAwardsPoints: cfg.ReplayAwardsPoints},
		Repos:     a.repos,
		Publisher: a.publisher,
		Logger:    slogger,
		Validator: validator.New(),
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
	})
	return a, nil
}

// databaseRequired reports whether startup must fail without the relational
// store. Login can only be enforced when accounts exist.
func databaseRequired(cfg *config.Config, opts appOptions) bool {
	return opts.needDatabase || cfg.StoreBackend == config.StoreDatabase || cfg.RequireLogin
}

// openDatabase connects to DATABASE_URL. When the database is optional a
// failure only disables accounts.
func (a *app) openDatabase(required bool) error {
	db, err := pkg.InitDatabase(a.cfg)
	if err != nil {
		return a.databaseUnavailable(required, err)
	}
	return a.useDatabase(db, sqlstore.AutoMigrate, required)
}

// useDatabase migrates db and wires the repositories. The connection pool is
// closed again when migration fails.
func (a *app) useDatabase(db *gorm.DB, migrate func(*gorm.DB) error, required bool) error {
	sqlDB, err := db.DB()
	if err != nil {
		return a.databaseUnavailable(required, err)
	}
	if err := migrate(db); err != nil {
		if closeErr := sqlDB.Close(); closeErr != nil {
			a.logger.Warn("Failed to close database", "error", closeErr)
		}
		return a.databaseUnavailable(required, err)
	}

	a.repos = sqlstore.NewRepositories(db)
	a.closers = append(a.closers, sqlDB.Close)
	return nil
}

func (a *app) databaseUnavailable(required bool, err error) error {
	if required {
		return fmt.Errorf("database: %w", err)
	}
	a.logger.Warn("Database unavailable, accounts disabled", "driver", a.cfg.DBDriver, "error", err)
	return nil
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.StoreBackend {
	case config.StoreRedis:
		client, err := pkg.NewRedisClient(ctx, a.cfg)
		if err != nil {
			return err
		}
		zapLogger, err := utils.NewZapLogger(a.cfg.Environment)
		if err != nil {
			zapLogger = zap.NewNop()
		}
		a.store = cache.NewRedisStore(client, zapLogger, cache.DefaultKeyPrefix, a.cfg.ProgressTTL)
		a.closers = append(a.closers, client.Close, func() error {
			_ = zapLogger.Sync()
			return nil
		})
	case config.StoreDatabase:
		a.store = a.repos.Progress
	case config.StoreMemory:
		a.logger.Warn("Using in-memory progress store, state is lost on exit")
		a.store = cache.NewMemoryStore()
	default:
		return fmt.Errorf("unsupported store backend %q", a.cfg.StoreBackend)
	}

	a.logger.Info("Progress store ready", "backend", a.cfg.StoreBackend)
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Shutdown step failed", "error", err)
		}
	}
	a.closers = nil
}

// withApp builds the app for cmd, runs fn and tears everything down
func withApp(cmd *cobra.Command, opts appOptions, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if backend, _ := cmd.Flags().GetString("store"); backend != "" {
		opts.storeOverride = backend
	}

	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a)
}
