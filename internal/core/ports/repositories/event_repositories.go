package repositories

import (
	"context"

	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
)

// EventReader defines the read-only projections over stored events
type EventReader interface {
	// FindEventViewByID retrieves one event of an owner with its joined display data.
	FindEventViewByID(ctx context.Context, ownerID string, eventID string) (*domain.EventView, error)

	// ListEventViews retrieves a page of an owner's events, newest first.
	// The filter has already been validated and its limit clamped.
	ListEventViews(ctx context.Context, ownerID string, filter domain.EventFilter) (*domain.EventPage, error)
}

// EventTransactionSupport defines the event operations available inside an atomic scope
type EventTransactionSupport interface {
	// FindEventByIDForUpdate loads and locks an event. Fails with ErrNotFound if absent.
	FindEventByIDForUpdate(ctx context.Context, eventID string) (*domain.Event, error)

	// SaveEvent inserts a new event row.
	SaveEvent(ctx context.Context, event domain.Event) error

	// UpdateEvent overwrites every mutable column of an existing event.
	UpdateEvent(ctx context.Context, event domain.Event) error

	// DeleteEvent removes an event row.
	DeleteEvent(ctx context.Context, eventID string) error
}

// LedgerSnapshotSupport reads an owner's complete ledger consistently inside a scope
type LedgerSnapshotSupport interface {
	// LockAccountsByOwner selects and locks every account of an owner.
	LockAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error)

	// ListEventsByOwner retrieves every stored event of an owner.
	ListEventsByOwner(ctx context.Context, ownerID string) ([]domain.Event, error)
}
