package cache

import (
	"context"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gcompare/gcompare_api/internal/models"
)

// memStore is an in-memory Store that records the TTL of the last Set.
type memStore struct {
	mu      sync.Mutex
	data    map[string]string
	lastTTL time.Duration
}

func newMemStore() *memStore { return &memStore{data: make(map[string]string)} }

func (s *memStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return v, nil
}

func (s *memStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.lastTTL = ttl
	return nil
}

func (s *memStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func (s *memStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func baseFilters() models.SearchFilters {
	return models.SearchFilters{}.Normalize()
}

func TestKeyDiffersWhenAnyFilterDiffers(t *testing.T) {
	t.Parallel()

	c := NewSearchCache(newMemStore())
	base := c.Key("iphone", baseFilters())

	min := 1000.0
	max := 90000.0
	inStock := true

	variants := []models.SearchFilters{}
	f := baseFilters()
	f.Category = "electronics"
	variants = append(variants, f)
	f = baseFilters()
	f.Brand = "apple"
	variants = append(variants, f)
	f = baseFilters()
	f.MinPrice = &min
	variants = append(variants, f)
	f = baseFilters()
	f.MaxPrice = &max
	variants = append(variants, f)
	f = baseFilters()
	f.InStock = &inStock
	variants = append(variants, f)
	f = baseFilters()
	f.Page = 2
	variants = append(variants, f)
	f = baseFilters()
	f.Limit = 50
	variants = append(variants, f)
	f = baseFilters()
	f.SortBy = models.SortPriceAsc
	variants = append(variants, f)

	seen := map[string]bool{base: true}
	for i, v := range variants {
		key := c.Key("iphone", v)
		if seen[key] {
			t.Errorf("variant %d produced duplicate key %q", i, key)
		}
		seen[key] = true
	}
}

func TestKeyNormalizesQueryText(t *testing.T) {
	t.Parallel()

	c := NewSearchCache(newMemStore())
	a := c.Key("  iPhone   15 ", baseFilters())
	b := c.Key("iphone 15", baseFilters())
	if a != b {
		t.Errorf("keys differ for trivially different spellings: %q vs %q", a, b)
	}
}

func TestResultRoundTrip(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	c := NewSearchCache(store)
	ctx := context.Background()

	original := 89900.0
	result := &models.AggregatedResult{
		Query:           "iphone 15",
		Page:            1,
		Limit:           20,
		Total:           1,
		Partial:         true,
		FailedPlatforms: []string{"zepto"},
		Entries: []models.ComparisonEntry{{
			Title:       "iPhone 15",
			Brand:       "Apple",
			ImageURL:    "https://img.test/iphone.jpg",
			LowestPrice: 78999,
			Rating:      4.6,
			ReviewCount: 5400,
			PlatformQuotes: map[string]models.CanonicalProduct{
				"amazon": {
					ExternalID:    "B0X",
					Title:         "iPhone 15",
					Price:         79900,
					OriginalPrice: &original,
					Currency:      "INR",
					InStock:       true,
					AffiliateURL:  "https://amazon.test/dp/B0X?tag=t",
				},
			},
		}},
	}

	key := c.Key("iphone 15", baseFilters())
	if err := c.SetResult(ctx, key, result); err != nil {
		t.Fatalf("SetResult() error = %v", err)
	}
	if store.lastTTL != SearchTTL {
		t.Errorf("stored TTL = %v, want %v", store.lastTTL, SearchTTL)
	}

	got, err := c.GetResult(ctx, key)
	if err != nil {
		t.Fatalf("GetResult() error = %v", err)
	}
	if !reflect.DeepEqual(got, result) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, result)
	}
}

func TestGetResultMiss(t *testing.T) {
	t.Parallel()

	c := NewSearchCache(newMemStore())
	got, err := c.GetResult(context.Background(), "search:q=nothing")
	if err != nil {
		t.Fatalf("GetResult() error = %v, want nil on miss", err)
	}
	if got != nil {
		t.Errorf("GetResult() = %+v, want nil on miss", got)
	}
}

func TestPlatformsRoundTrip(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	c := NewSearchCache(store)
	ctx := context.Background()

	logo := "https://cdn.test/amazon.png"
	platforms := []models.PlatformSummary{
		{ID: 1, Name: "amazon", DisplayName: "Amazon", Type: models.PlatformECommerce, LogoURL: &logo},
		{ID: 3, Name: "zepto", DisplayName: "Zepto", Type: models.PlatformQuickCommerce},
	}

	if err := c.SetPlatforms(ctx, platforms); err != nil {
		t.Fatalf("SetPlatforms() error = %v", err)
	}
	if store.lastTTL != PlatformsTTL {
		t.Errorf("stored TTL = %v, want %v", store.lastTTL, PlatformsTTL)
	}

	got, err := c.GetPlatforms(ctx)
	if err != nil {
		t.Fatalf("GetPlatforms() error = %v", err)
	}
	if !reflect.DeepEqual(got, platforms) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, platforms)
	}
}

func TestInvalidateSearchesOnlyRemovesSearchKeys(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	c := NewSearchCache(store)
	ctx := context.Background()

	key := c.Key("iphone", baseFilters())
	if err := c.SetResult(ctx, key, &models.AggregatedResult{Query: "iphone"}); err != nil {
		t.Fatalf("SetResult() error = %v", err)
	}
	if err := c.SetPlatforms(ctx, []models.PlatformSummary{{ID: 1, Name: "amazon"}}); err != nil {
		t.Fatalf("SetPlatforms() error = %v", err)
	}

	if err := c.InvalidateSearches(ctx); err != nil {
		t.Fatalf("InvalidateSearches() error = %v", err)
	}

	if got, _ := c.GetResult(ctx, key); got != nil {
		t.Error("search entry survived invalidation")
	}
	if got, _ := c.GetPlatforms(ctx); got == nil {
		t.Error("platform listing removed by search invalidation")
	}
}
