package models

import (
	"github.com/shopspring/decimal"
)

// Account represents a row of the accounts table.
type Account struct {
	AccountID      string          `db:"account_id"`
	OwnerID        string          `db:"owner_id"`
	Name           string          `db:"name"`
	IconTag        string          `db:"icon_tag"`
	OpeningBalance decimal.Decimal `db:"opening_balance"`
	Balance        decimal.Decimal `db:"balance"` // Persisted, only the ledger engine changes it
	Timestamps
}
