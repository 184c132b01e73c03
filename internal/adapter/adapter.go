package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"sync"

	"github.com/gcompare/gcompare_api/internal/models"
	"github.com/gcompare/gcompare_api/pkg/httpx"
)

// ErrProductNotFound is returned when an external id does not resolve on
// the platform.
var ErrProductNotFound = errors.New("PRODUCT_NOT_FOUND")

// ErrUnknownPlatform is returned when no adapter variant exists for a
// platform name.
var ErrUnknownPlatform = errors.New("UNKNOWN_PLATFORM")

// searchPageSize is the result count requested from platforms whose API
// accepts a size parameter. Adapters always fetch the first page only;
// pagination happens over the merged set after dedup and sort.
const searchPageSize = 50

// PlatformAdapter is the uniform contract every catalog source implements.
// Request construction and response parsing stay fully private to each
// variant; only the operations useful for comparison are exposed.
//
// SearchProducts returns the platform's first result page, and an empty
// slice (nil error) for zero results. Filter fields that describe the
// wanted products (category, brand, price bounds) may be forwarded;
// Page and Limit never are.
// GetReviews is an optional capability: adapters without review data
// return an empty slice rather than failing.
type PlatformAdapter interface {
	Name() string
	Type() models.PlatformType

	SearchProducts(ctx context.Context, query string, filters models.SearchFilters) ([]models.CanonicalProduct, error)
	GetProductDetails(ctx context.Context, externalID string) (*models.CanonicalProduct, error)
	GetProductPrice(ctx context.Context, externalID string) (*models.PriceQuote, error)
	GetReviews(ctx context.Context, externalID string) ([]models.Review, error)
	GenerateAffiliateLink(externalID string) string
}

// FromPlatform builds the adapter variant for a seeded platform record.
// The supported set is fixed at build time; unknown names error so the
// caller can skip them instead of registering a dead adapter.
func FromPlatform(p models.Platform, client *httpx.Client) (PlatformAdapter, error) {
	switch p.Name {
	case "amazon":
		return NewAmazonAdapter(p, client), nil
	case "flipkart":
		return NewFlipkartAdapter(p, client), nil
	case "zepto":
		return NewZeptoAdapter(p, client), nil
	case "blinkit":
		return NewBlinkitAdapter(p, client), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, p.Name)
	}
}

// Registry maps platform names to adapter instances. It is populated once
// at process startup and read concurrently by every search request.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]PlatformAdapter
	order    []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]PlatformAdapter)}
}

// Register adds an adapter under its platform name. Re-registering a name
// replaces the previous adapter.
func (r *Registry) Register(a PlatformAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[a.Name()]; !exists {
		r.order = append(r.order, a.Name())
	}
	r.adapters[a.Name()] = a
}

// Get returns the adapter for a platform name.
func (r *Registry) Get(name string) (PlatformAdapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, name)
	}
	return a, nil
}

// All returns adapters in registration order. Dispatch order is stable so
// relevance-sorted results keep a deterministic platform interleaving.
func (r *Registry) All() []PlatformAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]PlatformAdapter, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.adapters[name])
	}
	return out
}

// Names returns registered platform names sorted ascending.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	sort.Strings(names)
	return names
}

// buildAffiliateLink composes an outbound product URL. The tag parameter is
// only present when an affiliate id is configured; the UTM parameters are
// always attached.
func buildAffiliateLink(baseURL, productPath, affiliateID string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	u.Path = productPath
	q := u.Query()
	if affiliateID != "" {
		q.Set("tag", affiliateID)
	}
	q.Set("utm_source", "gcompare")
	q.Set("utm_medium", "affiliate")
	u.RawQuery = q.Encode()
	return u.String()
}

// affiliateID unwraps the optional column value.
func affiliateID(p models.Platform) string {
	if p.AffiliateID == nil {
		return ""
	}
	return *p.AffiliateID
}

// apiURL falls back to the platform base URL when no dedicated API host is
// configured.
func apiURL(p models.Platform) string {
	if p.APIURL != nil && *p.APIURL != "" {
		return *p.APIURL
	}
	return p.BaseURL
}
