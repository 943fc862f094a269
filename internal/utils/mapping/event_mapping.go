package mapping

import (
	"database/sql"

	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	"github.com/SscSPs/money_tracker_ledger/internal/models"
)

// ToModelEvent converts a domain Event to a model Event
func ToModelEvent(d domain.Event) models.Event {
	return models.Event{
		EventID:              d.EventID,
		OwnerID:              d.OwnerID,
		Kind:                 models.EventKind(d.Kind),
		Amount:               d.Amount,
		Description:          d.Description,
		CategoryID:           nullString(d.CategoryID),
		SourceAccountID:      d.SourceAccountID,
		DestinationAccountID: nullString(d.DestinationAccountID),
		OccurredAt:           d.OccurredAt.UTC(),
		Timestamps:           ToModelTimestamps(d.Timestamps),
	}
}

// ToDomainEvent converts a model Event to a domain Event
func ToDomainEvent(m models.Event) domain.Event {
	return domain.Event{
		EventID:              m.EventID,
		OwnerID:              m.OwnerID,
		Kind:                 domain.EventKind(m.Kind),
		Amount:               m.Amount,
		Description:          m.Description,
		CategoryID:           m.CategoryID.String,
		SourceAccountID:      m.SourceAccountID,
		DestinationAccountID: m.DestinationAccountID.String,
		OccurredAt:           m.OccurredAt.UTC(),
		Timestamps:           ToDomainTimestamps(m.Timestamps),
	}
}

// ToDomainEventView converts a joined row to a domain EventView
func ToDomainEventView(m models.EventView) domain.EventView {
	return domain.EventView{
		Event:                  ToDomainEvent(m.Event),
		SourceAccountName:      m.SourceAccountName,
		SourceAccountIcon:      m.SourceAccountIcon,
		DestinationAccountName: m.DestinationAccountName.String,
		DestinationAccountIcon: m.DestinationAccountIcon.String,
		CategoryName:           m.CategoryName.String,
		CategoryIcon:           m.CategoryIcon.String,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
