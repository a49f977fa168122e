package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/postgres"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/sqlite"
)

const pgHealthCheckPeriod = 30 * time.Second

// openStore selects the driver from the DSN scheme, opens it and applies
// pending migrations. postgres:// and postgresql:// use the pgx pool;
// anything else, optionally prefixed with sqlite://, is a SQLite DSN.
func openStore(ctx context.Context, cfg Config, logger *slog.Logger) (store.Store, error) {
	var (
		db     store.Store
		driver string
		err    error
	)

	if isPostgresDSN(cfg.DatabaseURL) {
		driver = "postgres"
		db, err = openPostgres(ctx, cfg)
	} else {
		driver = "sqlite"
		db, err = openSQLite(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s store: %w", driver, err)
	}

	logger.Info("store ready", "driver", driver)
	return db, nil
}

func openPostgres(ctx context.Context, cfg Config) (store.Store, error) {
	st, err := postgres.NewStore(ctx, cfg.DatabaseURL, postgres.Options{
		MaxConns:          cfg.DBMaxConns,
		HealthCheckPeriod: pgHealthCheckPeriod,
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

func openSQLite(cfg Config) (store.Store, error) {
	st, err := sqlite.NewStore(strings.TrimPrefix(cfg.DatabaseURL, "sqlite://"))
	if err != nil {
		return nil, err
	}
	return st, nil
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
