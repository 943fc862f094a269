package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/money_tracker_ledger/internal/apperrors"
	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/money_tracker_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/money_tracker_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// sqliteScope runs on an immediate transaction, so the whole database is already
// write-locked and the "for update" reads are plain SELECTs. Balances are TEXT,
// so new balances are computed here from the values read in the scope.
type sqliteScope struct {
	tx       *sql.Tx
	balances map[string]decimal.Decimal
}

var _ portsrepo.AtomicScope = (*sqliteScope)(nil)

func (s *sqliteScope) remember(accounts []domain.Account) {
	for _, acc := range accounts {
		s.balances[acc.AccountID] = acc.Balance
	}
}

func (s *sqliteScope) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	found := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return found, nil
	}
	args := make([]any, len(accountIDs))
	for i, id := range accountIDs {
		args[i] = id
	}
	accounts, err := queryAccounts(ctx, s.tx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_id IN (`+placeholders(len(accountIDs))+`) ORDER BY account_id`, args...)
	if err != nil {
		return nil, err
	}
	s.remember(accounts)
	for _, acc := range accounts {
		found[acc.AccountID] = acc
	}
	return found, nil
}

func (s *sqliteScope) UpdateAccountBalances(ctx context.Context, balanceChanges map[string]decimal.Decimal, now time.Time) error {
	for _, accountID := range accounting.SortedAccountIDs(balanceChanges) {
		delta := balanceChanges[accountID]
		if delta.IsZero() {
			continue
		}
		current, ok := s.balances[accountID]
		if !ok {
			acc, err := s.FindAccountsByIDsForUpdate(ctx, []string{accountID})
			if err != nil {
				return err
			}
			if _, ok := acc[accountID]; !ok {
				return apperrors.NewNotFoundError("account %s during balance update", accountID)
			}
			current = s.balances[accountID]
		}

		next := current.Add(delta)
		res, err := s.tx.ExecContext(ctx, `UPDATE accounts SET balance = ?, updated_at = ? WHERE account_id = ?`,
			next.String(), formatTime(now), accountID)
		if err := checkAffected(res, err, "account", accountID); err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}
		s.balances[accountID] = next
	}
	return nil
}

func (s *sqliteScope) FindEventByIDForUpdate(ctx context.Context, eventID string) (*domain.Event, error) {
	return findEvent(ctx, s.tx, eventID)
}

func (s *sqliteScope) SaveEvent(ctx context.Context, event domain.Event) error {
	return insertEvent(ctx, s.tx, event)
}

func (s *sqliteScope) UpdateEvent(ctx context.Context, event domain.Event) error {
	return updateEvent(ctx, s.tx, event)
}

func (s *sqliteScope) DeleteEvent(ctx context.Context, eventID string) error {
	return deleteEvent(ctx, s.tx, eventID)
}

func (s *sqliteScope) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	return findCategory(ctx, s.tx, categoryID)
}

func (s *sqliteScope) LockAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error) {
	accounts, err := queryAccounts(ctx, s.tx, `SELECT `+accountColumns+` FROM accounts WHERE owner_id = ? ORDER BY account_id`, ownerID)
	if err != nil {
		return nil, err
	}
	s.remember(accounts)
	return accounts, nil
}

func (s *sqliteScope) ListEventsByOwner(ctx context.Context, ownerID string) ([]domain.Event, error) {
	return listEventsByOwner(ctx, s.tx, ownerID)
}

func (s *sqliteScope) Commit(ctx context.Context) error {
	if err := s.tx.Commit(); err != nil {
		return apperrors.NewStorageError("failed to commit transaction", err)
	}
	return nil
}

func (s *sqliteScope) Rollback(ctx context.Context) error {
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return apperrors.NewStorageError("failed to rollback transaction", err)
	}
	return nil
}
