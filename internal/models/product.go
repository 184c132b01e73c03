package models

import "time"

// Product is a catalog entry in the local store. It exists so prices
// gathered from platforms can be tracked over time; the aggregation path
// itself never requires a product to be persisted.
type Product struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Brand       string    `db:"brand" json:"brand"`
	CategoryID  *int      `db:"category_id" json:"categoryId,omitempty"`
	ImageURL    string    `db:"image_url" json:"imageUrl"`
	Rating      float64   `db:"rating" json:"rating"`
	ReviewCount int       `db:"review_count" json:"reviewCount"`
	Promoted    bool      `db:"promoted" json:"promoted"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
	UpdatedAt   time.Time `db:"updated_at" json:"-"`
}

// ProductPrice is one platform's stored quote for a product.
// (platform_id, external_id) is unique, which makes seeding and the
// price sync worker idempotent upserts.
type ProductPrice struct {
	ID            int       `db:"id" json:"id"`
	ProductID     string    `db:"product_id" json:"productId"`
	PlatformID    int       `db:"platform_id" json:"platformId"`
	ExternalID    string    `db:"external_id" json:"externalId"`
	Price         float64   `db:"price" json:"price"`
	OriginalPrice *float64  `db:"original_price" json:"originalPrice,omitempty"`
	InStock       bool      `db:"in_stock" json:"inStock"`
	Currency      string    `db:"currency" json:"currency"`
	AffiliateURL  string    `db:"affiliate_url" json:"affiliateUrl"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`

	// Joined from platforms when listing quotes for refresh.
	PlatformName string `db:"platform_name" json:"-"`
}
