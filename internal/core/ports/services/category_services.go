package services

import (
	"context"

	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	"github.com/SscSPs/money_tracker_ledger/internal/dto"
)

// CategorySvcFacade manages the categories income and expense events are filed under
type CategorySvcFacade interface {
	CreateCategory(ctx context.Context, ownerID string, req dto.CreateCategoryRequest) (*domain.Category, error)
	ListCategories(ctx context.Context, ownerID string) ([]domain.Category, error)
	DeleteCategory(ctx context.Context, ownerID string, categoryID string) error
}
