package mapping

import (
	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	"github.com/SscSPs/money_tracker_ledger/internal/models"
)

// ToModelCategory converts a domain Category to a model Category
func ToModelCategory(d domain.Category) models.Category {
	return models.Category{
		CategoryID: d.CategoryID,
		OwnerID:    d.OwnerID,
		Name:       d.Name,
		Kind:       models.CategoryKind(d.Kind),
		IconTag:    d.IconTag,
		Timestamps: ToModelTimestamps(d.Timestamps),
	}
}

// ToDomainCategory converts a model Category to a domain Category
func ToDomainCategory(m models.Category) domain.Category {
	return domain.Category{
		CategoryID: m.CategoryID,
		OwnerID:    m.OwnerID,
		Name:       m.Name,
		Kind:       domain.CategoryKind(m.Kind),
		IconTag:    m.IconTag,
		Timestamps: ToDomainTimestamps(m.Timestamps),
	}
}
