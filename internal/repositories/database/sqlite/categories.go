package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SscSPs/money_tracker_ledger/internal/apperrors"
	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	"github.com/SscSPs/money_tracker_ledger/internal/models"
	"github.com/SscSPs/money_tracker_ledger/internal/utils/mapping"
)

const categoryColumns = `category_id, owner_id, name, kind, icon_tag, created_at, updated_at`

func scanCategory(row rowScanner) (domain.Category, error) {
	var m models.Category
	var createdAt, updatedAt string
	if err := row.Scan(&m.CategoryID, &m.OwnerID, &m.Name, &m.Kind, &m.IconTag, &createdAt, &updatedAt); err != nil {
		return domain.Category{}, err
	}
	var err error
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Category{}, err
	}
	if m.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Category{}, err
	}
	return mapping.ToDomainCategory(m), nil
}

func findCategory(ctx context.Context, q dbtx, categoryID string) (*domain.Category, error) {
	cat, err := scanCategory(q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE category_id = ?`, categoryID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("category %s", categoryID)
		}
		return nil, translateError(err, fmt.Sprintf("failed to find category %s", categoryID))
	}
	return &cat, nil
}

func (s *Store) SaveCategory(ctx context.Context, category domain.Category) error {
	m := mapping.ToModelCategory(category)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.CategoryID, m.OwnerID, m.Name, string(m.Kind), m.IconTag, formatTime(m.CreatedAt), formatTime(m.UpdatedAt),
	)
	return translateError(err, fmt.Sprintf("failed to save category %s", m.CategoryID))
}

func (s *Store) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	return findCategory(ctx, s.db, categoryID)
}

func (s *Store) ListCategoriesByOwner(ctx context.Context, ownerID string) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE owner_id = ? ORDER BY name, category_id`, ownerID)
	if err != nil {
		return nil, translateError(err, "failed to list categories")
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, translateError(err, "failed to scan category")
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "failed to iterate categories")
	}
	return categories, nil
}

func (s *Store) DeleteCategory(ctx context.Context, categoryID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE category_id = ?`, categoryID)
	if err != nil {
		return translateError(err, fmt.Sprintf("category %s is referenced by events", categoryID))
	}
	return checkAffected(res, nil, "category", categoryID)
}
