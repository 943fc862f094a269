package services

import (
	"context"

	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
)

// LedgerWriterSvc is the only component allowed to change account balances.
// Every method runs in a single atomic scope.
type LedgerWriterSvc interface {
	// RecordEvent persists a new event and applies its effect.
	RecordEvent(ctx context.Context, draft domain.EventDraft) (*domain.Event, error)

	// AmendEvent replaces the stored effect of an event with the effect of the patched event.
	AmendEvent(ctx context.Context, eventID string, patch domain.EventPatch) (*domain.Event, error)

	// RemoveEvent deletes an event and reverts its effect. Removing a missing event is a no-op.
	RemoveEvent(ctx context.Context, eventID string) error
}

// LedgerAuditorSvc verifies stored balances against the event history
type LedgerAuditorSvc interface {
	// AuditBalances replays an owner's events. A drift yields the report and an ErrInvariantViolation.
	AuditBalances(ctx context.Context, ownerID string) (*domain.AuditReport, error)
}

// LedgerSvcFacade combines all ledger engine interfaces
type LedgerSvcFacade interface {
	LedgerWriterSvc
	LedgerAuditorSvc
}
