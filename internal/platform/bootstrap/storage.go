// Package bootstrap turns a loaded configuration into wired stores and integrations.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/SscSPs/money_tracker_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/money_tracker_ledger/internal/platform/config"
	"github.com/SscSPs/money_tracker_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/money_tracker_ledger/internal/repositories/database/sqlite"
	"github.com/SscSPs/money_tracker_ledger/internal/repositories/memory"
	"github.com/SscSPs/money_tracker_ledger/pkg/database"
)

// Storage is the opened backing store of the ledger.
type Storage struct {
	Repos portsrepo.RepositoryProvider
	close func()
}

// Close releases the store's connections.
func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStorage opens the store selected by cfg.StorageDriver, applying migrations when
// migrate is set. The sqlite driver always migrates its embedded schema.
func OpenStorage(ctx context.Context, cfg *config.Config, migrate bool) (*Storage, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		if migrate {
			slog.Info("Running database migrations...")
			if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
				return nil, err
			}
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		return &Storage{
			Repos: pgsql.NewRepositoryProvider(pool),
			close: func() { database.ClosePgxPool(pool) },
		}, nil

	case config.StorageSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.Info("SQLite store opened", slog.String("path", cfg.SQLitePath))
		return &Storage{
			Repos: store.Repositories(),
			close: func() {
				if err := store.Close(); err != nil {
					slog.Error("Failed to close sqlite store", slog.String("error", err.Error()))
				}
			},
		}, nil

	case config.StorageMemory:
		slog.Warn("Using in-memory storage, data is lost on exit")
		return &Storage{Repos: memory.New().Repositories()}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
