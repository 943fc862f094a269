package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/money_tracker_ledger/internal/apperrors"
	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/money_tracker_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/money_tracker_ledger/internal/models"
	"github.com/SscSPs/money_tracker_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, owner_id, name, icon_tag, opening_balance, balance, created_at, updated_at`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row rowScanner) (domain.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.OwnerID,
		&m.Name,
		&m.IconTag,
		&m.OpeningBalance,
		&m.Balance,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, err
	}
	return mapping.ToDomainAccount(m), nil
}

func collectAccounts(rows pgx.Rows) ([]domain.Account, error) {
	defer rows.Close()
	accounts := make([]domain.Account, 0)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.OwnerID,
		m.Name,
		m.IconTag,
		m.OpeningBalance,
		m.Balance,
		m.CreatedAt,
		m.UpdatedAt,
	)
	return translateError(err, fmt.Sprintf("failed to save account %s", m.AccountID))
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("account %s", accountID)
		}
		return nil, translateError(err, fmt.Sprintf("failed to find account %s", accountID))
	}
	return &acc, nil
}

// ListAccountsByOwner retrieves every account of an owner ordered by name.
func (r *PgxAccountRepository) ListAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1 ORDER BY name, account_id;`
	rows, err := r.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, translateError(err, "failed to list accounts")
	}
	accounts, err := collectAccounts(rows)
	if err != nil {
		return nil, translateError(err, "failed to scan accounts")
	}
	return accounts, nil
}

// UpdateAccountDetails changes the display fields of an account. The balance columns are never written here.
func (r *PgxAccountRepository) UpdateAccountDetails(ctx context.Context, account domain.Account) error {
	query := `UPDATE accounts SET name = $2, icon_tag = $3 WHERE account_id = $1;`
	ct, err := r.Pool.Exec(ctx, query, account.AccountID, account.Name, account.IconTag)
	if err != nil {
		return translateError(err, fmt.Sprintf("failed to update account %s", account.AccountID))
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("account %s", account.AccountID)
	}
	return nil
}

// DeleteAccount removes an account; the events foreign keys reject it while referenced.
func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	ct, err := r.Pool.Exec(ctx, `DELETE FROM accounts WHERE account_id = $1;`, accountID)
	if err != nil {
		return translateError(err, fmt.Sprintf("account %s is referenced by events", accountID))
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("account %s", accountID)
	}
	return nil
}

// findAccountsForUpdate locks the rows in ascending id order so concurrent scopes cannot deadlock.
func findAccountsForUpdate(ctx context.Context, q querier, accountIDs []string) (map[string]domain.Account, error) {
	found := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return found, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1) ORDER BY account_id FOR UPDATE;`
	rows, err := q.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, translateError(err, "failed to lock accounts")
	}
	accounts, err := collectAccounts(rows)
	if err != nil {
		return nil, translateError(err, "failed to scan locked accounts")
	}
	for _, acc := range accounts {
		found[acc.AccountID] = acc
	}
	return found, nil
}

func lockAccountsByOwner(ctx context.Context, q querier, ownerID string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1 ORDER BY account_id FOR UPDATE;`
	rows, err := q.Query(ctx, query, ownerID)
	if err != nil {
		return nil, translateError(err, "failed to lock owner accounts")
	}
	accounts, err := collectAccounts(rows)
	if err != nil {
		return nil, translateError(err, "failed to scan owner accounts")
	}
	return accounts, nil
}

// updateAccountBalances adds every delta in one batch round trip.
func updateAccountBalances(ctx context.Context, q querier, balanceChanges map[string]decimal.Decimal, now time.Time) error {
	query := `UPDATE accounts SET balance = balance + $2, updated_at = $3 WHERE account_id = $1;`

	accountIDs := make([]string, 0, len(balanceChanges))
	for accountID, delta := range balanceChanges {
		if !delta.IsZero() {
			accountIDs = append(accountIDs, accountID)
		}
	}
	if len(accountIDs) == 0 {
		return nil
	}
	sort.Strings(accountIDs)

	batch := &pgx.Batch{}
	for _, accountID := range accountIDs {
		batch.Queue(query, accountID, balanceChanges[accountID], now.UTC())
	}

	br := q.SendBatch(ctx, batch)
	var batchErr error
	for _, accountID := range accountIDs {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = translateError(err, fmt.Sprintf("failed to update balance for account %s", accountID))
			}
		} else if ct.RowsAffected() == 0 && batchErr == nil {
			batchErr = apperrors.NewNotFoundError("account %s during balance update", accountID)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = translateError(err, "failed to close balance update batch")
	}
	return batchErr
}
