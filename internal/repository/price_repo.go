package repository

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gcompare/gcompare_api/internal/models"
)

// PriceRepository handles data access for stored platform quotes.
type PriceRepository struct {
	db *sqlx.DB
}

// NewPriceRepository creates a new PriceRepository.
func NewPriceRepository(db *sqlx.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// ListStale returns quotes not refreshed within maxAge, joined with their
// platform name so the worker can route each to the right adapter.
func (r *PriceRepository) ListStale(maxAge time.Duration, limit int) ([]models.ProductPrice, error) {
	const q = `
        SELECT pp.*, p.name AS platform_name
        FROM product_prices pp
        JOIN platforms p ON p.id = pp.platform_id
        WHERE p.is_active = true AND pp.updated_at < $1
        ORDER BY pp.updated_at
        LIMIT $2`

	var prices []models.ProductPrice
	if err := r.db.Select(&prices, q, time.Now().Add(-maxAge), limit); err != nil {
		return nil, err
	}
	return prices, nil
}

// UpdateQuote refreshes the stored quote for one row.
func (r *PriceRepository) UpdateQuote(id int, quote *models.PriceQuote) error {
	const q = `
        UPDATE product_prices SET
            price          = $2,
            original_price = $3,
            in_stock       = $4,
            currency       = $5,
            updated_at     = $6
        WHERE id = $1`

	_, err := r.db.Exec(q, id, quote.Price, quote.OriginalPrice, quote.InStock, quote.Currency, quote.LastUpdated)
	return err
}

// Upsert inserts a quote or updates it, keyed on the composite
// (platform_id, external_id) uniqueness.
func (r *PriceRepository) Upsert(p *models.ProductPrice) error {
	const q = `
        INSERT INTO product_prices (product_id, platform_id, external_id, price, original_price, in_stock, currency, affiliate_url)
        VALUES (:product_id, :platform_id, :external_id, :price, :original_price, :in_stock, :currency, :affiliate_url)
        ON CONFLICT (platform_id, external_id) DO UPDATE SET
            product_id     = EXCLUDED.product_id,
            price          = EXCLUDED.price,
            original_price = EXCLUDED.original_price,
            in_stock       = EXCLUDED.in_stock,
            currency       = EXCLUDED.currency,
            affiliate_url  = EXCLUDED.affiliate_url,
            updated_at     = NOW()`

	_, err := r.db.NamedExec(q, p)
	return err
}
