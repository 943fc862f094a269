package domain

import (
	"github.com/shopspring/decimal"
)

// Account represents a named store of value owned by a single user.
// Balance is written only by the ledger engine.
type Account struct {
	AccountID      string          `json:"accountID"`      // Primary Key (UUID)
	OwnerID        string          `json:"ownerID"`        // Owning user reference
	Name           string          `json:"name"`           // Non-empty display label
	IconTag        string          `json:"iconTag"`        // Opaque rendering hint
	OpeningBalance decimal.Decimal `json:"openingBalance"` // Balance before any event
	Balance        decimal.Decimal `json:"balance"`        // OpeningBalance + sum of event effects
	Timestamps
}
