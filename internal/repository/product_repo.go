package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/gcompare/gcompare_api/internal/models"
)

// ProductRepository handles data access for locally tracked products.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetByID returns a single product.
func (r *ProductRepository) GetByID(id string) (*models.Product, error) {
	const q = `SELECT * FROM products WHERE id = $1 LIMIT 1`

	var p models.Product
	if err := r.db.Get(&p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &p, nil
}

// Upsert inserts a product or updates its metadata by id.
func (r *ProductRepository) Upsert(p *models.Product) error {
	const q = `
        INSERT INTO products (id, title, description, brand, category_id, image_url, rating, review_count, promoted)
        VALUES (:id, :title, :description, :brand, :category_id, :image_url, :rating, :review_count, :promoted)
        ON CONFLICT (id) DO UPDATE SET
            title        = EXCLUDED.title,
            description  = EXCLUDED.description,
            brand        = EXCLUDED.brand,
            category_id  = EXCLUDED.category_id,
            image_url    = EXCLUDED.image_url,
            rating       = EXCLUDED.rating,
            review_count = EXCLUDED.review_count,
            promoted     = EXCLUDED.promoted,
            updated_at   = NOW()`

	_, err := r.db.NamedExec(q, p)
	return err
}
