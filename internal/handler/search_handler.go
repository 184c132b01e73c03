package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gcompare/gcompare_api/internal/models"
	"github.com/gcompare/gcompare_api/internal/utils"
)

// Searcher is the aggregation surface the handler needs.
type Searcher interface {
	Search(ctx context.Context, query string, filters models.SearchFilters) (*models.AggregatedResult, error)
}

// SearchHandler handles the aggregated search endpoint.
type SearchHandler struct {
	aggregator Searcher
}

// NewSearchHandler constructs a SearchHandler.
func NewSearchHandler(aggregator Searcher) *SearchHandler {
	return &SearchHandler{aggregator: aggregator}
}

// Search runs an aggregated product search across all active platforms.
// A missing query or unknown sort key is a validation error; total source
// exhaustion is the only aggregation failure surfaced to the caller, with
// no internal detail leaked.
func (h *SearchHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		utils.Error(c, 400, "VALIDATION_ERROR", "Search query is required")
		return
	}

	filters, ok := parseFilters(c)
	if !ok {
		return
	}

	result, err := h.aggregator.Search(c.Request.Context(), query, filters)
	if err != nil {
		if errors.Is(err, utils.ErrNoSourcesAvailable) {
			utils.Error(c, 500, "NO_SOURCES_AVAILABLE", "Search is temporarily unavailable")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to search products")
		return
	}

	utils.Success(c, 200, "Search completed", result)
}

// parseFilters reads all query modifiers. On an invalid sortBy it writes
// the 400 response itself and reports false.
func parseFilters(c *gin.Context) (models.SearchFilters, bool) {
	filters := models.SearchFilters{
		Category: c.Query("category"),
		Brand:    c.Query("brand"),
	}

	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filters.Page = n
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filters.Limit = n
		}
	}
	if v := c.Query("minPrice"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			filters.MinPrice = &f
		}
	}
	if v := c.Query("maxPrice"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			filters.MaxPrice = &f
		}
	}
	if v := c.Query("inStock"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filters.InStock = &b
		}
	}

	if v := c.Query("sortBy"); v != "" {
		sortBy := models.SortBy(v)
		if !models.ValidSortBy(sortBy) {
			utils.Error(c, 400, "VALIDATION_ERROR", "sortBy must be one of relevance, price_asc, price_desc, rating")
			return filters, false
		}
		filters.SortBy = sortBy
	}

	return filters.Normalize(), true
}
