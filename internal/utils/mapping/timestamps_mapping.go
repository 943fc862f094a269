package mapping

import (
	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	"github.com/SscSPs/money_tracker_ledger/internal/models"
)

// ToModelTimestamps converts domain timestamps to their model form, in UTC.
func ToModelTimestamps(d domain.Timestamps) models.Timestamps {
	return models.Timestamps{
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// ToDomainTimestamps converts model timestamps to their domain form, in UTC.
func ToDomainTimestamps(m models.Timestamps) domain.Timestamps {
	return domain.Timestamps{
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}
