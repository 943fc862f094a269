package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccountsByOwner retrieves every account of an owner ordered by name.
	ListAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data. None of them touch the balance
// of an existing account.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccountDetails updates name and icon of an existing account.
	UpdateAccountDetails(ctx context.Context, account domain.Account) error

	// DeleteAccount removes an account. Fails with ErrConflict while any event references it.
	DeleteAccount(ctx context.Context, accountID string) error
}

// AccountTransactionSupport defines the account operations available inside an atomic scope
type AccountTransactionSupport interface {
	// FindAccountsByIDsForUpdate selects accounts and locks them until the scope ends.
	// Missing ids are absent from the result rather than an error.
	FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// UpdateAccountBalances adds each delta to the account's balance and refreshes updatedAt.
	UpdateAccountBalances(ctx context.Context, balanceChanges map[string]decimal.Decimal, now time.Time) error
}

// AccountRepositoryFacade combines the account interfaces used outside atomic scopes
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
