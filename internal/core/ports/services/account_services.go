package services

import (
	"context"

	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	"github.com/SscSPs/money_tracker_ledger/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves an account of the owner by its unique identifier.
	GetAccountByID(ctx context.Context, ownerID string, accountID string) (*domain.Account, error)
}

// AccountWriterSvc defines the account operations that never touch an existing balance
type AccountWriterSvc interface {
	// CreateAccount persists a new account with its opening balance.
	CreateAccount(ctx context.Context, ownerID string, req dto.CreateAccountRequest) (*domain.Account, error)

	// UpdateAccount changes the display fields of an account.
	UpdateAccount(ctx context.Context, ownerID string, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error)

	// DeleteAccount removes an account that no event references.
	DeleteAccount(ctx context.Context, ownerID string, accountID string) error
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
