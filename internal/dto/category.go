package dto

import (
	"time"

	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
)

// CreateCategoryRequest defines the data needed to create a category.
type CreateCategoryRequest struct {
	Name    string              `json:"name" binding:"required,max=120"`
	Kind    domain.CategoryKind `json:"kind" binding:"required,oneof=INCOME EXPENSE"`
	IconTag string              `json:"iconTag" binding:"max=64"`
}

// CategoryResponse defines the data returned for a category.
type CategoryResponse struct {
	CategoryID string              `json:"categoryID"`
	Name       string              `json:"name"`
	Kind       domain.CategoryKind `json:"kind"`
	IconTag    string              `json:"iconTag"`
	CreatedAt  time.Time           `json:"createdAt"`
}

// ToCategoryResponse converts a domain.Category to its DTO.
func ToCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		CategoryID: c.CategoryID,
		Name:       c.Name,
		Kind:       c.Kind,
		IconTag:    c.IconTag,
		CreatedAt:  c.CreatedAt,
	}
}

// ListCategoriesResponse wraps the list of categories.
type ListCategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

// ToListCategoriesResponse converts categories to the list DTO.
func ToListCategoriesResponse(cats []domain.Category) ListCategoriesResponse {
	res := ListCategoriesResponse{Categories: make([]CategoryResponse, len(cats))}
	for i := range cats {
		res.Categories[i] = ToCategoryResponse(&cats[i])
	}
	return res
}
