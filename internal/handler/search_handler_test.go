package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/gcompare/gcompare_api/internal/models"
	"github.com/gcompare/gcompare_api/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeSearcher records the last call and returns canned output.
type fakeSearcher struct {
	lastQuery   string
	lastFilters models.SearchFilters
	result      *models.AggregatedResult
	err         error
}

func (f *fakeSearcher) Search(ctx context.Context, query string, filters models.SearchFilters) (*models.AggregatedResult, error) {
	f.lastQuery = query
	f.lastFilters = filters
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// envelope mirrors the response shape for assertions.
type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func performSearch(t *testing.T, searcher Searcher, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	router := gin.New()
	router.GET("/v1/search", NewSearchHandler(searcher).Search)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v\nbody: %s", err, w.Body.String())
	}
	return w, env
}

func TestSearchMissingQuery(t *testing.T) {
	t.Parallel()

	w, env := performSearch(t, &fakeSearcher{}, "/v1/search")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
}

func TestSearchBlankQuery(t *testing.T) {
	t.Parallel()

	w, _ := performSearch(t, &fakeSearcher{}, "/v1/search?q=%20%20")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for whitespace-only query", w.Code)
	}
}

func TestSearchInvalidSortBy(t *testing.T) {
	t.Parallel()

	w, env := performSearch(t, &fakeSearcher{}, "/v1/search?q=iphone&sortBy=cheapest")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
}

func TestSearchNoSourcesAvailable(t *testing.T) {
	t.Parallel()

	w, env := performSearch(t, &fakeSearcher{err: utils.ErrNoSourcesAvailable}, "/v1/search?q=iphone")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if env.Error == nil || env.Error.Code != "NO_SOURCES_AVAILABLE" {
		t.Errorf("error = %+v, want NO_SOURCES_AVAILABLE", env.Error)
	}
}

func TestSearchInternalError(t *testing.T) {
	t.Parallel()

	w, env := performSearch(t, &fakeSearcher{err: errors.New("connection reset")}, "/v1/search?q=iphone")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if env.Error == nil || env.Error.Code != "INTERNAL_ERROR" {
		t.Errorf("error = %+v, want INTERNAL_ERROR", env.Error)
	}
	if env.Error != nil && env.Error.Message == "connection reset" {
		t.Error("internal error detail leaked to the caller")
	}
}

func TestSearchSuccess(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{result: &models.AggregatedResult{
		Query: "iphone 15",
		Page:  1,
		Limit: 20,
		Total: 1,
		Entries: []models.ComparisonEntry{{
			Title:       "iPhone 15",
			LowestPrice: 78999,
		}},
	}}

	w, env := performSearch(t, searcher, "/v1/search?q=iphone+15")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !env.Success {
		t.Error("Success = false, want true")
	}

	var result models.AggregatedResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if result.Total != 1 || result.Entries[0].Title != "iPhone 15" {
		t.Errorf("result = %+v", result)
	}
	if searcher.lastQuery != "iphone 15" {
		t.Errorf("query passed = %q, want %q", searcher.lastQuery, "iphone 15")
	}
}

func TestSearchParsesAllFilters(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{result: &models.AggregatedResult{}}
	target := "/v1/search?q=milk&category=grocery&brand=amul&minPrice=10&maxPrice=99.5&inStock=true&page=3&limit=50&sortBy=price_desc"
	w, _ := performSearch(t, searcher, target)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	f := searcher.lastFilters
	if f.Category != "grocery" || f.Brand != "amul" {
		t.Errorf("category/brand = %q/%q", f.Category, f.Brand)
	}
	if f.MinPrice == nil || *f.MinPrice != 10 {
		t.Errorf("MinPrice = %v, want 10", f.MinPrice)
	}
	if f.MaxPrice == nil || *f.MaxPrice != 99.5 {
		t.Errorf("MaxPrice = %v, want 99.5", f.MaxPrice)
	}
	if f.InStock == nil || !*f.InStock {
		t.Errorf("InStock = %v, want true", f.InStock)
	}
	if f.Page != 3 || f.Limit != 50 {
		t.Errorf("page/limit = %d/%d, want 3/50", f.Page, f.Limit)
	}
	if f.SortBy != models.SortPriceDesc {
		t.Errorf("SortBy = %q, want price_desc", f.SortBy)
	}
}

func TestSearchNormalizesDefaults(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{result: &models.AggregatedResult{}}
	performSearch(t, searcher, "/v1/search?q=milk&limit=500")

	f := searcher.lastFilters
	if f.Page != 1 {
		t.Errorf("Page = %d, want default 1", f.Page)
	}
	if f.Limit != 100 {
		t.Errorf("Limit = %d, want capped at 100", f.Limit)
	}
	if f.SortBy != models.SortRelevance {
		t.Errorf("SortBy = %q, want relevance default", f.SortBy)
	}
}
