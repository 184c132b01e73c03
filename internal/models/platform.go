package models

import "time"

// PlatformType enumerates the supported platform categories.
type PlatformType string

const (
	PlatformECommerce     PlatformType = "E_COMMERCE"
	PlatformQuickCommerce PlatformType = "QUICK_COMMERCE"
)

// Platform represents one external catalog/price source.
// Name is globally unique and stable; it keys both the adapter registry
// and cache entries, so it must never change after seeding.
type Platform struct {
	ID          int          `db:"id" json:"id"`
	Name        string       `db:"name" json:"name"`
	DisplayName string       `db:"display_name" json:"displayName"`
	Type        PlatformType `db:"type" json:"type"`
	BaseURL     string       `db:"base_url" json:"baseUrl"`
	APIURL      *string      `db:"api_url" json:"apiUrl,omitempty"`
	AffiliateID *string      `db:"affiliate_id" json:"affiliateId,omitempty"`
	LogoURL     *string      `db:"logo_url" json:"logoUrl,omitempty"`
	IsActive    bool         `db:"is_active" json:"isActive"`
	CreatedAt   time.Time    `db:"created_at" json:"-"`
	UpdatedAt   time.Time    `db:"updated_at" json:"-"`
}

// PlatformSummary is the public shape returned by the platforms listing.
type PlatformSummary struct {
	ID          int          `db:"id" json:"id"`
	Name        string       `db:"name" json:"name"`
	DisplayName string       `db:"display_name" json:"displayName"`
	Type        PlatformType `db:"type" json:"type"`
	LogoURL     *string      `db:"logo_url" json:"logoUrl"`
}
