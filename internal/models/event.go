package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// EventKind mirrors the kind column CHECK constraint.
type EventKind string

// Event represents a row of the events table.
// Nullable foreign keys are NULL rather than empty so FK constraints only apply when set.
type Event struct {
	EventID              string          `db:"event_id"`
	OwnerID              string          `db:"owner_id"`
	Kind                 EventKind       `db:"kind"`
	Amount               decimal.Decimal `db:"amount"`
	Description          string          `db:"description"`
	CategoryID           sql.NullString  `db:"category_id"`
	SourceAccountID      string          `db:"source_account_id"`
	DestinationAccountID sql.NullString  `db:"destination_account_id"`
	OccurredAt           time.Time       `db:"occurred_at"`
	Timestamps
}

// EventView is an events row joined with the display columns of its accounts and category.
type EventView struct {
	Event
	SourceAccountName      string         `db:"source_account_name"`
	SourceAccountIcon      string         `db:"source_account_icon"`
	DestinationAccountName sql.NullString `db:"destination_account_name"`
	DestinationAccountIcon sql.NullString `db:"destination_account_icon"`
	CategoryName           sql.NullString `db:"category_name"`
	CategoryIcon           sql.NullString `db:"category_icon"`
}
