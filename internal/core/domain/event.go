package domain

import (
	"time"

	"github.com/SscSPs/money_tracker_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// EventKind is the type of monetary occurrence an event records.
type EventKind string

const (
	Income   EventKind = "INCOME"
	Expense  EventKind = "EXPENSE"
	Transfer EventKind = "TRANSFER"
)

// IsValid reports whether k is one of the supported event kinds.
func (k EventKind) IsValid() bool {
	switch k {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

// Event is the persisted record of a financial occurrence.
// Amount is always a positive magnitude; direction follows from Kind.
type Event struct {
	EventID              string          `json:"eventID"`                        // Primary Key (UUID)
	OwnerID              string          `json:"ownerID"`                        // Owning user reference
	Kind                 EventKind       `json:"kind"`                           // INCOME, EXPENSE, TRANSFER
	Amount               decimal.Decimal `json:"amount"`                         // Positive magnitude
	Description          string          `json:"description,omitempty"`          // Optional free text
	CategoryID           string          `json:"categoryID,omitempty"`           // Optional; never set for TRANSFER
	SourceAccountID      string          `json:"sourceAccountID"`                // Account the event is recorded against
	DestinationAccountID string          `json:"destinationAccountID,omitempty"` // TRANSFER only
	OccurredAt           time.Time       `json:"occurredAt"`                     // User-attributed date
	Timestamps
}

// AccountIDs returns the distinct accounts referenced by the event.
func (e Event) AccountIDs() []string {
	if e.DestinationAccountID == "" || e.DestinationAccountID == e.SourceAccountID {
		return []string{e.SourceAccountID}
	}
	return []string{e.SourceAccountID, e.DestinationAccountID}
}

// Normalized drops fields that do not apply to the event's kind.
func (e Event) Normalized() Event {
	if e.Kind == Transfer {
		e.CategoryID = ""
	} else {
		e.DestinationAccountID = ""
	}
	return e
}

// Validate checks the constraints every stored event must satisfy.
// It expects a normalized event.
func (e Event) Validate() error {
	if e.OwnerID == "" {
		return apperrors.NewValidationError("owner is required")
	}
	if !e.Kind.IsValid() {
		return apperrors.NewValidationError("unknown event kind %q", e.Kind)
	}
	if !e.Amount.IsPositive() {
		return apperrors.NewValidationError("amount must be greater than zero")
	}
	if e.SourceAccountID == "" {
		return apperrors.NewValidationError("source account is required")
	}
	if e.OccurredAt.IsZero() {
		return apperrors.NewValidationError("occurredAt is required")
	}
	if e.Kind == Transfer {
		if e.DestinationAccountID == "" {
			return apperrors.NewValidationError("destination account is required for transfers")
		}
		if e.DestinationAccountID == e.SourceAccountID {
			return apperrors.NewValidationError("transfer source and destination must differ")
		}
	}
	return nil
}

// EventDraft is a caller-supplied event without identity or bookkeeping timestamps.
type EventDraft struct {
	OwnerID              string
	Kind                 EventKind
	Amount               decimal.Decimal
	Description          string
	CategoryID           string
	SourceAccountID      string
	DestinationAccountID string
	OccurredAt           time.Time // Zero means "now"
}

// Event converts the draft into an unsaved event.
func (d EventDraft) Event() Event {
	return Event{
		OwnerID:              d.OwnerID,
		Kind:                 d.Kind,
		Amount:               d.Amount,
		Description:          d.Description,
		CategoryID:           d.CategoryID,
		SourceAccountID:      d.SourceAccountID,
		DestinationAccountID: d.DestinationAccountID,
		OccurredAt:           d.OccurredAt,
	}
}

// EventPatch is a partial update; nil fields keep their stored value.
// An empty string clears an optional text or reference field.
type EventPatch struct {
	Kind                 *EventKind
	Amount               *decimal.Decimal
	Description          *string
	CategoryID           *string
	SourceAccountID      *string
	DestinationAccountID *string
	OccurredAt           *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (p EventPatch) IsEmpty() bool {
	return p.Kind == nil && p.Amount == nil && p.Description == nil && p.CategoryID == nil &&
		p.SourceAccountID == nil && p.DestinationAccountID == nil && p.OccurredAt == nil
}

// Apply merges the patch over e and returns the result. e is not modified.
func (p EventPatch) Apply(e Event) Event {
	if p.Kind != nil {
		e.Kind = *p.Kind
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.CategoryID != nil {
		e.CategoryID = *p.CategoryID
	}
	if p.SourceAccountID != nil {
		e.SourceAccountID = *p.SourceAccountID
	}
	if p.DestinationAccountID != nil {
		e.DestinationAccountID = *p.DestinationAccountID
	}
	if p.OccurredAt != nil {
		e.OccurredAt = p.OccurredAt.UTC()
	}
	return e
}
