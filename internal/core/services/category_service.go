package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/money_tracker_ledger/internal/apperrors"
	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/money_tracker_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_tracker_ledger/internal/core/ports/services"
	"github.com/SscSPs/money_tracker_ledger/internal/dto"
	"github.com/google/uuid"
)

type categoryService struct {
	BaseService
	categoryRepo portsrepo.CategoryRepositoryFacade
}

// NewCategoryService creates the category service.
func NewCategoryService(repo portsrepo.CategoryRepositoryFacade) portssvc.CategorySvcFacade {
	return &categoryService{categoryRepo: repo}
}

var _ portssvc.CategorySvcFacade = (*categoryService)(nil)

func (s *categoryService) CreateCategory(ctx context.Context, ownerID string, req dto.CreateCategoryRequest) (*domain.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("category name must not be empty")
	}
	if !req.Kind.IsValid() {
		return nil, apperrors.NewValidationError("unknown category kind %q", req.Kind)
	}

	now := time.Now().UTC()
	category := domain.Category{
		CategoryID: uuid.NewString(),
		OwnerID:    ownerID,
		Name:       name,
		Kind:       req.Kind,
		IconTag:    req.IconTag,
		Timestamps: domain.Timestamps{CreatedAt: now, UpdatedAt: now},
	}
	if err := s.categoryRepo.SaveCategory(ctx, category); err != nil {
		s.LogError(ctx, err, "Failed to save category", slog.String("owner_id", ownerID))
		return nil, err
	}
	return &category, nil
}

func (s *categoryService) ListCategories(ctx context.Context, ownerID string) ([]domain.Category, error) {
	return s.categoryRepo.ListCategoriesByOwner(ctx, ownerID)
}

func (s *categoryService) DeleteCategory(ctx context.Context, ownerID string, categoryID string) error {
	cat, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if cat.OwnerID != ownerID {
		return apperrors.NewNotFoundError("category %s", categoryID)
	}
	if err := s.categoryRepo.DeleteCategory(ctx, categoryID); err != nil {
		s.LogFailure(ctx, err, "Failed to delete category", slog.String("category_id", categoryID))
		return err
	}
	return nil
}
