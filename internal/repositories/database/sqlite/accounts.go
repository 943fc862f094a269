package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/money_tracker_ledger/internal/apperrors"
	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	"github.com/SscSPs/money_tracker_ledger/internal/models"
	"github.com/SscSPs/money_tracker_ledger/internal/utils/mapping"
)

const accountColumns = `account_id, owner_id, name, icon_tag, opening_balance, balance, created_at, updated_at`

func scanAccount(row rowScanner) (domain.Account, error) {
	var m models.Account
	var createdAt, updatedAt string
	if err := row.Scan(&m.AccountID, &m.OwnerID, &m.Name, &m.IconTag, &m.OpeningBalance, &m.Balance, &createdAt, &updatedAt); err != nil {
		return domain.Account{}, err
	}
	var err error
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Account{}, err
	}
	if m.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Account{}, err
	}
	return mapping.ToDomainAccount(m), nil
}

func queryAccounts(ctx context.Context, q dbtx, query string, args ...any) ([]domain.Account, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "failed to query accounts")
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, translateError(err, "failed to scan account")
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "failed to iterate accounts")
	}
	return accounts, nil
}

func (s *Store) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.AccountID, m.OwnerID, m.Name, m.IconTag, m.OpeningBalance, m.Balance, formatTime(m.CreatedAt), formatTime(m.UpdatedAt),
	)
	return translateError(err, fmt.Sprintf("failed to save account %s", m.AccountID))
}

func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	acc, err := scanAccount(s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_id = ?`, accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("account %s", accountID)
		}
		return nil, translateError(err, fmt.Sprintf("failed to find account %s", accountID))
	}
	return &acc, nil
}

func (s *Store) ListAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error) {
	return queryAccounts(ctx, s.db, `SELECT `+accountColumns+` FROM accounts WHERE owner_id = ? ORDER BY name, account_id`, ownerID)
}

func (s *Store) UpdateAccountDetails(ctx context.Context, account domain.Account) error {
	res, err := s.db.ExecContext(ctx, `UPDATE accounts SET name = ?, icon_tag = ? WHERE account_id = ?`,
		account.Name, account.IconTag, account.AccountID)
	return checkAffected(res, err, "account", account.AccountID)
}

func (s *Store) DeleteAccount(ctx context.Context, accountID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE account_id = ?`, accountID)
	if err != nil {
		return translateError(err, fmt.Sprintf("account %s is referenced by events", accountID))
	}
	return checkAffected(res, nil, "account", accountID)
}

// checkAffected turns a write that matched no row into ErrNotFound.
func checkAffected(res sql.Result, err error, entity, id string) error {
	if err != nil {
		return translateError(err, fmt.Sprintf("failed to write %s %s", entity, id))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return translateError(err, "failed to read affected rows")
	}
	if n == 0 {
		return apperrors.NewNotFoundError("%s %s", entity, id)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
