// Package sqlite is the single-device store: the same contract as the Postgres store
// on one SQLite file. Writers serialise on the database write lock taken by BEGIN IMMEDIATE.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/money_tracker_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/money_tracker_ledger/internal/core/ports/repositories"
	migrate "github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// timeLayout is fixed width so that TEXT comparisons order like the instants they encode.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const dsnOptions = "?_foreign_keys=on&_journal_mode=WAL&_txlock=immediate&_busy_timeout=5000"

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// Store implements every repository port on one SQLite database.
type Store struct {
	db *sql.DB
}

var (
	_ portsrepo.AccountRepositoryFacade  = (*Store)(nil)
	_ portsrepo.CategoryRepositoryFacade = (*Store)(nil)
	_ portsrepo.EventReader              = (*Store)(nil)
	_ portsrepo.TransactionManager       = (*Store)(nil)
)

// New wraps an already opened and migrated database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens (creating if needed) the database file at path and applies pending migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+dsnOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps the immediate write lock and reads on one handle.
	db.SetMaxOpenConns(1)

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return New(db), nil
}

func migrateUp(db *sql.DB) error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load sqlite migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create sqlite driver instance for migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply sqlite migrations: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Repositories exposes the store through every repository port.
func (s *Store) Repositories() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:  s,
		CategoryRepo: s,
		EventRepo:    s,
		TxManager:    s,
	}
}

// BeginAtomic starts an immediate transaction, waiting on the busy timeout for other writers.
func (s *Store) BeginAtomic(ctx context.Context) (portsrepo.AtomicScope, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to begin transaction", err)
	}
	return &sqliteScope{tx: tx, balances: make(map[string]decimal.Decimal)}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored time %q: %w", s, err)
	}
	return t.UTC(), nil
}

// translateError maps a driver error onto the application error taxonomy.
func translateError(err error, msg string) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicate, msg)
		case sqlite3.ErrConstraintForeignKey:
			return apperrors.NewConflictError("%s: %v", msg, sqliteErr)
		case sqlite3.ErrConstraintCheck:
			return apperrors.NewValidationError("%s: %v", msg, sqliteErr)
		}
	}
	return apperrors.NewStorageError(msg, err)
}
