package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/money_tracker_ledger/internal/apperrors"
	"github.com/SscSPs/money_tracker_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/money_tracker_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/money_tracker_ledger/internal/models"
	"github.com/SscSPs/money_tracker_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const categoryColumns = `category_id, owner_id, name, kind, icon_tag, created_at, updated_at`

type PgxCategoryRepository struct {
	BaseRepository
}

func newPgxCategoryRepository(pool *pgxpool.Pool) *PgxCategoryRepository {
	return &PgxCategoryRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.CategoryRepositoryFacade = (*PgxCategoryRepository)(nil)

func scanCategory(row rowScanner) (domain.Category, error) {
	var m models.Category
	if err := row.Scan(&m.CategoryID, &m.OwnerID, &m.Name, &m.Kind, &m.IconTag, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return domain.Category{}, err
	}
	return mapping.ToDomainCategory(m), nil
}

func (r *PgxCategoryRepository) SaveCategory(ctx context.Context, category domain.Category) error {
	m := mapping.ToModelCategory(category)
	query := `INSERT INTO categories (` + categoryColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7);`
	_, err := r.Pool.Exec(ctx, query, m.CategoryID, m.OwnerID, m.Name, m.Kind, m.IconTag, m.CreatedAt, m.UpdatedAt)
	return translateError(err, fmt.Sprintf("failed to save category %s", m.CategoryID))
}

func (r *PgxCategoryRepository) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	return findCategory(ctx, r.Pool, categoryID, false)
}

func (r *PgxCategoryRepository) ListCategoriesByOwner(ctx context.Context, ownerID string) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE owner_id = $1 ORDER BY name, category_id;`
	rows, err := r.Pool.Query(ctx, query, ownerID)
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

func (r *PgxCategoryRepository) DeleteCategory(ctx context.Context, categoryID string) error {
	ct, err := r.Pool.Exec(ctx, `DELETE FROM categories WHERE category_id = $1;`, categoryID)
	if err != nil {
		return translateError(err, fmt.Sprintf("category %s is referenced by events", categoryID))
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("category %s", categoryID)
	}
	return nil
}

// findCategory optionally takes a share lock so the category cannot be deleted before the scope commits.
func findCategory(ctx context.Context, q querier, categoryID string, share bool) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE category_id = $1`
	if share {
		query += ` FOR SHARE`
	}
	cat, err := scanCategory(q.QueryRow(ctx, query, categoryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("category %s", categoryID)
		}
		return nil, translateError(err, fmt.Sprintf("failed to find category %s", categoryID))
	}
	return &cat, nil
}
