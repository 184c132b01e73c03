package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/gcompare/gcompare_api/internal/models"
)

// CategoryRepository handles data access for categories.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetAll returns all categories ordered by name.
func (r *CategoryRepository) GetAll() ([]models.Category, error) {
	const q = `SELECT * FROM categories ORDER BY name`

	var categories []models.Category
	if err := r.db.Select(&categories, q); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetBySlug returns a single category by its unique slug.
func (r *CategoryRepository) GetBySlug(slug string) (*models.Category, error) {
	const q = `SELECT * FROM categories WHERE slug = $1 LIMIT 1`

	var c models.Category
	if err := r.db.Get(&c, q, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &c, nil
}

// Upsert inserts a category or updates it, keyed on the unique slug.
func (r *CategoryRepository) Upsert(c *models.Category) error {
	const q = `
        INSERT INTO categories (name, slug, icon)
        VALUES (:name, :slug, :icon)
        ON CONFLICT (slug) DO UPDATE SET
            name       = EXCLUDED.name,
            icon       = EXCLUDED.icon,
            updated_at = NOW()`

	_, err := r.db.NamedExec(q, c)
	return err
}
