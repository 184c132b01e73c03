package models

import "time"

// CanonicalProduct is the platform-agnostic representation of one product
// as found on one platform. Instances live for the duration of a single
// search request; only the cache holds serialized copies beyond that.
type CanonicalProduct struct {
	ExternalID    string   `json:"externalId"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Currency      string   `json:"currency"`
	ImageURL      string   `json:"imageUrl"`
	InStock       bool     `json:"inStock"`
	Rating        float64  `json:"rating,omitempty"`
	ReviewCount   int      `json:"reviewCount,omitempty"`
	Brand         string   `json:"brand,omitempty"`
	AffiliateURL  string   `json:"affiliateUrl"`
}

// PriceQuote is a point-in-time price reading for one external id.
type PriceQuote struct {
	Price         float64   `json:"price"`
	OriginalPrice *float64  `json:"originalPrice,omitempty"`
	InStock       bool      `json:"inStock"`
	Currency      string    `json:"currency"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

// Review is a single customer review fetched from a platform.
type Review struct {
	ID           string    `json:"id,omitempty"`
	Author       string    `json:"author,omitempty"`
	Rating       float64   `json:"rating"`
	Title        string    `json:"title,omitempty"`
	Content      string    `json:"content,omitempty"`
	Verified     bool      `json:"verified"`
	HelpfulCount int       `json:"helpfulCount,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
