package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gcompare/gcompare_api/internal/models"
)

// TTLs. Search results expire fast because price and stock are volatile;
// the platform listing only changes when the catalog is reseeded.
const (
	SearchTTL    = 5 * time.Minute
	PlatformsTTL = time.Hour
)

const platformsKey = "platforms:active"

// SearchCache memoizes aggregated search results and the active platform
// listing. Keys include every filter field, so two requests that differ in
// any modifier never share an entry.
type SearchCache struct {
	store Store
}

// NewSearchCache creates a SearchCache over a Store.
func NewSearchCache(store Store) *SearchCache {
	return &SearchCache{store: store}
}

// Key builds the cache key for a query/filters combination. Query text is
// lowercased with whitespace collapsed so trivially different spellings hit
// the same entry.
func (c *SearchCache) Key(query string, f models.SearchFilters) string {
	q := strings.Join(strings.Fields(strings.ToLower(query)), " ")

	var sb strings.Builder
	sb.WriteString("search:q=")
	sb.WriteString(q)
	sb.WriteString(":cat=")
	sb.WriteString(strings.ToLower(f.Category))
	sb.WriteString(":brand=")
	sb.WriteString(strings.ToLower(f.Brand))
	sb.WriteString(":min=")
	sb.WriteString(formatPrice(f.MinPrice))
	sb.WriteString(":max=")
	sb.WriteString(formatPrice(f.MaxPrice))
	sb.WriteString(":stock=")
	sb.WriteString(formatBool(f.InStock))
	fmt.Fprintf(&sb, ":page=%d:limit=%d:sort=%s", f.Page, f.Limit, f.SortBy)
	return sb.String()
}

// GetResult returns the cached result for key, or (nil, nil) on a miss.
func (c *SearchCache) GetResult(ctx context.Context, key string) (*models.AggregatedResult, error) {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if err == ErrCacheMiss {
			return nil, nil
		}
		return nil, err
	}

	var result models.AggregatedResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("unmarshal cached result: %w", err)
	}
	return &result, nil
}

// SetResult stores an aggregated result under key with the search TTL.
func (c *SearchCache) SetResult(ctx context.Context, key string, result *models.AggregatedResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return c.store.Set(ctx, key, string(raw), SearchTTL)
}

// GetPlatforms returns the cached active platform listing, or (nil, nil)
// on a miss.
func (c *SearchCache) GetPlatforms(ctx context.Context) ([]models.PlatformSummary, error) {
	raw, err := c.store.Get(ctx, platformsKey)
	if err != nil {
		if err == ErrCacheMiss {
			return nil, nil
		}
		return nil, err
	}

	var platforms []models.PlatformSummary
	if err := json.Unmarshal([]byte(raw), &platforms); err != nil {
		return nil, fmt.Errorf("unmarshal cached platforms: %w", err)
	}
	return platforms, nil
}

// SetPlatforms stores the active platform listing with the platforms TTL.
func (c *SearchCache) SetPlatforms(ctx context.Context, platforms []models.PlatformSummary) error {
	raw, err := json.Marshal(platforms)
	if err != nil {
		return fmt.Errorf("marshal platforms: %w", err)
	}
	return c.store.Set(ctx, platformsKey, string(raw), PlatformsTTL)
}

// InvalidateSearches removes every cached search result. Used after
// reseeding or when a platform is deactivated.
func (c *SearchCache) InvalidateSearches(ctx context.Context) error {
	keys, err := c.store.Keys(ctx, "search:*")
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.store.Delete(ctx, keys...)
}

func formatPrice(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func formatBool(b *bool) string {
	if b == nil {
		return "-"
	}
	if *b {
		return "1"
	}
	return "0"
}
