package models

// SortBy enumerates the supported result orderings.
type SortBy string

const (
	SortRelevance SortBy = "relevance"
	SortPriceAsc  SortBy = "price_asc"
	SortPriceDesc SortBy = "price_desc"
	SortRating    SortBy = "rating"
)

// ValidSortBy reports whether s is a recognized sort key.
func ValidSortBy(s SortBy) bool {
	switch s {
	case SortRelevance, SortPriceAsc, SortPriceDesc, SortRating:
		return true
	}
	return false
}

// SearchFilters carries all query modifiers. It is treated as an immutable
// value through the pipeline; Normalize returns a copy with defaults applied
// rather than mutating in place.
type SearchFilters struct {
	Category string   `json:"category,omitempty"`
	Brand    string   `json:"brand,omitempty"`
	MinPrice *float64 `json:"minPrice,omitempty"`
	MaxPrice *float64 `json:"maxPrice,omitempty"`
	InStock  *bool    `json:"inStock,omitempty"`
	Page     int      `json:"page"`
	Limit    int      `json:"limit"`
	SortBy   SortBy   `json:"sortBy"`
}

// Normalize applies defaults: page 1, limit 20 (capped at 100), relevance sort.
func (f SearchFilters) Normalize() SearchFilters {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.SortBy == "" {
		f.SortBy = SortRelevance
	}
	return f
}

// ComparisonEntry is one deduplicated product concept with a quote per
// contributing platform. LowestPrice is always the minimum price across
// PlatformQuotes; Rating/ReviewCount come from the most-reviewed quote.
type ComparisonEntry struct {
	Title          string                      `json:"title"`
	Description    string                      `json:"description,omitempty"`
	Brand          string                      `json:"brand,omitempty"`
	ImageURL       string                      `json:"imageUrl"`
	PlatformQuotes map[string]CanonicalProduct `json:"prices"`
	LowestPrice    float64                     `json:"lowestPrice"`
	Rating         float64                     `json:"rating,omitempty"`
	ReviewCount    int                         `json:"reviewCount,omitempty"`
}

// AggregatedResult is the output of one search: the deduplicated, sorted,
// paginated entries plus enough metadata for the caller to tell a complete
// result from a degraded one.
type AggregatedResult struct {
	Query           string            `json:"query"`
	Page            int               `json:"page"`
	Limit           int               `json:"limit"`
	Total           int               `json:"total"`
	Partial         bool              `json:"partial"`
	FailedPlatforms []string          `json:"failedPlatforms,omitempty"`
	Entries         []ComparisonEntry `json:"results"`
	Cached          bool              `json:"cached"`
}
