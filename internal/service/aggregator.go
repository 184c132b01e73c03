package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gcompare/gcompare_api/internal/adapter"
	"github.com/gcompare/gcompare_api/internal/cache"
	"github.com/gcompare/gcompare_api/internal/models"
	"github.com/gcompare/gcompare_api/internal/utils"
)

// Aggregator fans a search out to every registered platform adapter,
// merges the contributions into a deduplicated comparison set, and
// memoizes the result. Adapters share no mutable state during a query,
// so the fan-out needs no locking beyond the final collection.
type Aggregator struct {
	registry *adapter.Registry
	cache    *cache.SearchCache
	matcher  ProductMatcher
	timeout  time.Duration
}

// NewAggregator constructs an Aggregator. timeout bounds each adapter's
// contribution to a single query.
func NewAggregator(registry *adapter.Registry, searchCache *cache.SearchCache, matcher ProductMatcher, timeout time.Duration) *Aggregator {
	return &Aggregator{
		registry: registry,
		cache:    searchCache,
		matcher:  matcher,
		timeout:  timeout,
	}
}

// adapterOutcome is one settled fan-out call.
type adapterOutcome struct {
	platform string
	products []models.CanonicalProduct
	err      error
}

// Search runs one aggregated query. Adapter failures degrade the result
// (Partial=true, platform listed in FailedPlatforms); only total
// exhaustion returns utils.ErrNoSourcesAvailable. Cache failures never
// fail the request: the live result is computed and caching skipped.
func (a *Aggregator) Search(ctx context.Context, query string, filters models.SearchFilters) (*models.AggregatedResult, error) {
	filters = filters.Normalize()
	key := a.cache.Key(query, filters)

	cached, err := a.cache.GetResult(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("cache read failed, computing live result")
	}
	if cached != nil {
		cached.Cached = true
		return cached, nil
	}

	adapters := a.registry.All()
	if len(adapters) == 0 {
		return nil, utils.ErrNoSourcesAvailable
	}

	outcomes := a.fanOut(ctx, adapters, query, filters)

	var failed []string
	merged := make(map[string]*models.ComparisonEntry)
	var order []string

	for _, out := range outcomes {
		if out.err != nil {
			failed = append(failed, out.platform)
			log.Error().Err(out.err).
				Str("platform", out.platform).
				Str("query", query).
				Msg("adapter search failed")
			continue
		}
		for _, p := range out.products {
			if !matchesFilters(p, filters) {
				continue
			}
			a.merge(merged, &order, out.platform, p)
		}
	}

	if len(failed) == len(adapters) {
		return nil, utils.ErrNoSourcesAvailable
	}

	entries := make([]models.ComparisonEntry, 0, len(order))
	for _, k := range order {
		entries = append(entries, *merged[k])
	}
	sortEntries(entries, filters.SortBy)

	total := len(entries)
	result := &models.AggregatedResult{
		Query:           query,
		Page:            filters.Page,
		Limit:           filters.Limit,
		Total:           total,
		Partial:         len(failed) > 0,
		FailedPlatforms: failed,
		Entries:         window(entries, filters.Page, filters.Limit),
	}

	if err := a.cache.SetResult(ctx, key, result); err != nil {
		log.Warn().Err(err).Str("query", query).Msg("cache write failed, serving uncached result")
	}
	return result, nil
}

// fanOut dispatches the query to every adapter concurrently and waits for
// all calls to settle. Each call gets its own timeout so one slow platform
// cannot stall the query; a call exceeding its budget counts as failed and
// is abandoned.
func (a *Aggregator) fanOut(ctx context.Context, adapters []adapter.PlatformAdapter, query string, filters models.SearchFilters) []adapterOutcome {
	outcomes := make([]adapterOutcome, len(adapters))

	var wg sync.WaitGroup
	for i, ad := range adapters {
		wg.Add(1)
		go func(i int, ad adapter.PlatformAdapter) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			start := time.Now()
			products, err := ad.SearchProducts(callCtx, query, filters)
			outcomes[i] = adapterOutcome{platform: ad.Name(), products: products, err: err}

			log.Debug().
				Str("platform", ad.Name()).
				Str("query", query).
				Int("results", len(products)).
				Dur("latency", time.Since(start)).
				Err(err).
				Msg("adapter settled")
		}(i, ad)
	}
	wg.Wait()

	return outcomes
}

// merge folds one platform quote into the comparison set. The first quote
// seeds the entry's descriptive fields; the most-reviewed quote supplies
// the representative rating; LowestPrice tracks the minimum across quotes.
func (a *Aggregator) merge(merged map[string]*models.ComparisonEntry, order *[]string, platform string, p models.CanonicalProduct) {
	key := a.matcher.Key(platform, p)

	entry, ok := merged[key]
	if !ok {
		entry = &models.ComparisonEntry{
			Title:          p.Title,
			Description:    p.Description,
			Brand:          p.Brand,
			ImageURL:       p.ImageURL,
			PlatformQuotes: make(map[string]models.CanonicalProduct),
			LowestPrice:    p.Price,
		}
		merged[key] = entry
		*order = append(*order, key)
	}

	entry.PlatformQuotes[platform] = p
	if p.Price < entry.LowestPrice {
		entry.LowestPrice = p.Price
	}
	if p.ReviewCount >= entry.ReviewCount && p.Rating > 0 {
		entry.Rating = p.Rating
		entry.ReviewCount = p.ReviewCount
	}
}

// matchesFilters enforces filters locally. Platforms receive the filter
// parameters too, but not all of them honor every field.
func matchesFilters(p models.CanonicalProduct, f models.SearchFilters) bool {
	if f.Brand != "" && !strings.EqualFold(p.Brand, f.Brand) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.InStock != nil && *f.InStock && !p.InStock {
		return false
	}
	return true
}

// sortEntries orders the comparison set. Relevance keeps the platform
// dispatch order untouched.
func sortEntries(entries []models.ComparisonEntry, sortBy models.SortBy) {
	switch sortBy {
	case models.SortPriceAsc:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].LowestPrice < entries[j].LowestPrice
		})
	case models.SortPriceDesc:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].LowestPrice > entries[j].LowestPrice
		})
	case models.SortRating:
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].Rating != entries[j].Rating {
				return entries[i].Rating > entries[j].Rating
			}
			return entries[i].ReviewCount > entries[j].ReviewCount
		})
	}
}

// window applies offset/limit pagination over the sorted sequence.
func window(entries []models.ComparisonEntry, page, limit int) []models.ComparisonEntry {
	offset := (page - 1) * limit
	if offset >= len(entries) {
		return []models.ComparisonEntry{}
	}
	end := offset + limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[offset:end]
}
