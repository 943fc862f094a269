package repositories

import (
	"context"

	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
)

// CategoryReader defines read operations for category data
type CategoryReader interface {
	FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)
	ListCategoriesByOwner(ctx context.Context, ownerID string) ([]domain.Category, error)
}

// CategoryWriter defines write operations for category data
type CategoryWriter interface {
	SaveCategory(ctx context.Context, category domain.Category) error
	// DeleteCategory fails with ErrConflict while any event references the category.
	DeleteCategory(ctx context.Context, categoryID string) error
}

// CategoryTransactionSupport resolves categories inside an atomic scope
type CategoryTransactionSupport interface {
	FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)
}

// CategoryRepositoryFacade combines all category repository interfaces
type CategoryRepositoryFacade interface {
	CategoryReader
	CategoryWriter
}
