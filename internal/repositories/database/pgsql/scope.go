package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/SscSPs/money_tracker_ledger/internal/apperrors"
	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/money_tracker_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxTransactionManager opens atomic scopes backed by a database transaction.
type PgxTransactionManager struct {
	BaseRepository
}

func newPgxTransactionManager(pool *pgxpool.Pool) *PgxTransactionManager {
	return &PgxTransactionManager{BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionManager = (*PgxTransactionManager)(nil)

// BeginAtomic waits for a pooled connection and starts a transaction on it.
func (m *PgxTransactionManager) BeginAtomic(ctx context.Context) (portsrepo.AtomicScope, error) {
	tx, err := m.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to begin transaction", err)
	}
	return &pgxScope{tx: tx}, nil
}

// pgxScope runs every statement on one transaction. Row locks taken with
// FOR UPDATE are held until Commit or Rollback.
type pgxScope struct {
	tx pgx.Tx
}

var _ portsrepo.AtomicScope = (*pgxScope)(nil)

func (s *pgxScope) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	return findAccountsForUpdate(ctx, s.tx, accountIDs)
}

func (s *pgxScope) UpdateAccountBalances(ctx context.Context, balanceChanges map[string]decimal.Decimal, now time.Time) error {
	return updateAccountBalances(ctx, s.tx, balanceChanges, now)
}

func (s *pgxScope) FindEventByIDForUpdate(ctx context.Context, eventID string) (*domain.Event, error) {
	return findEventForUpdate(ctx, s.tx, eventID)
}

func (s *pgxScope) SaveEvent(ctx context.Context, event domain.Event) error {
	return insertEvent(ctx, s.tx, event)
}

func (s *pgxScope) UpdateEvent(ctx context.Context, event domain.Event) error {
	return updateEvent(ctx, s.tx, event)
}

func (s *pgxScope) DeleteEvent(ctx context.Context, eventID string) error {
	return deleteEvent(ctx, s.tx, eventID)
}

func (s *pgxScope) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	return findCategory(ctx, s.tx, categoryID, true)
}

func (s *pgxScope) LockAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error) {
	return lockAccountsByOwner(ctx, s.tx, ownerID)
}

func (s *pgxScope) ListEventsByOwner(ctx context.Context, ownerID string) ([]domain.Event, error) {
	return listEventsByOwner(ctx, s.tx, ownerID)
}

// Commit commits a transaction
func (s *pgxScope) Commit(ctx context.Context) error {
	if err := s.tx.Commit(ctx); err != nil {
		return apperrors.NewStorageError("failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (s *pgxScope) Rollback(ctx context.Context) error {
	if err := s.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewStorageError("failed to rollback transaction", err)
	}
	return nil
}
