package main

import (
	"fmt"

	"github.com/headcount-lab/headcount/internal/core/config"
	"github.com/headcount-lab/headcount/internal/core/storage"
	"github.com/headcount-lab/headcount/internal/core/storage/postgres"
	"github.com/headcount-lab/headcount/internal/core/storage/sqlite"
	"github.com/headcount-lab/headcount/internal/migrations"
)

// stores bundles the retrying store decorators with the backend handle.
type stores struct {
	raw     storage.RawEventStore
	rollups storage.RollupStore
	pinger  storage.Pinger
	close   func() error
}

// openStores connects to the configured backend, applies migrations and
// wraps both stores with the configured retry policy.
func openStores(cfg *config.Config) (*stores, error) {
	var (
		raw     storage.RawEventStore
		rollups storage.RollupStore
		pinger  storage.Pinger
		closeFn func() error
	)

	switch cfg.Database.Type {
	case "postgres":
		db, err := postgres.Open(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := migrations.RunMigrations(db, migrations.DialectPostgres, cfg.Database.AutoMigrate); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
		adapter, err := postgres.NewAdapter(db)
		if err != nil {
			db.Close()
			return nil, err
		}
		raw, rollups, pinger, closeFn = adapter, postgres.NewRollupAdapter(db, cfg.Location()), adapter, adapter.Close

	case "sqlite":
		db, err := sqlite.Open(cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := migrations.RunMigrations(db, migrations.DialectSQLite, cfg.Database.AutoMigrate); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
		store := sqlite.NewStore(db, cfg.Location())
		raw, rollups, pinger, closeFn = store, store, store, store.Close

	default:
		return nil, fmt.Errorf("unsupported database.type %q", cfg.Database.Type)
	}

	policy := cfg.Database.RetryPolicy()
	return &stores{
		raw:     storage.NewRetryingRawEventStore(raw, policy),
		rollups: storage.NewRetryingRollupStore(rollups, policy),
		pinger:  pinger,
		close:   closeFn,
	}, nil
}
