package dto

import (
	"time"

	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Name           string           `json:"name" binding:"required,max=120"`
	IconTag        string           `json:"iconTag" binding:"max=64"`
	OpeningBalance *decimal.Decimal `json:"openingBalance" swaggertype:"string" example:"250.00"` // Optional, defaults to zero; may be negative
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
// The balance is deliberately absent: only the ledger engine writes it.
type UpdateAccountRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=120"`
	IconTag *string `json:"iconTag" binding:"omitempty,max=64"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID      string          `json:"accountID"`
	Name           string          `json:"name"`
	IconTag        string          `json:"iconTag"`
	OpeningBalance decimal.Decimal `json:"openingBalance" swaggertype:"string"`
	Balance        decimal.Decimal `json:"balance" swaggertype:"string"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:      acc.AccountID,
		Name:           acc.Name,
		IconTag:        acc.IconTag,
		OpeningBalance: acc.OpeningBalance,
		Balance:        acc.Balance,
		CreatedAt:      acc.CreatedAt,
		UpdatedAt:      acc.UpdatedAt,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}
