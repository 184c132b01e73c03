package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gcompare/gcompare_api/internal/models"
	"github.com/gcompare/gcompare_api/pkg/httpx"
)

const blinkitListingHTML = `<!DOCTYPE html>
<html><body>
<div data-test-id="product-card" data-product-id="prn-100">
  <img src="https://cdn.blinkit.test/milk.jpg">
  <span data-test-id="product-brand">Amul</span>
  <span data-test-id="product-name">Amul Taaza Milk 1L</span>
  <span data-test-id="selling-price">₹72</span>
  <span data-test-id="mrp">₹78</span>
</div>
<div data-test-id="product-card" data-product-id="prn-101">
  <img src="https://cdn.blinkit.test/bread.jpg">
  <span data-test-id="product-name">Brown Bread</span>
  <span data-test-id="selling-price">₹45</span>
  <span data-test-id="out-of-stock">Out of stock</span>
</div>
<div data-test-id="product-card">
  <span data-test-id="product-name">No id, skipped</span>
</div>
</body></html>`

func newBlinkitForURL(baseURL string) *BlinkitAdapter {
	p := testPlatform("blinkit", "")
	p.BaseURL = baseURL
	return NewBlinkitAdapter(p, httpx.NewClient(httpx.Config{MaxAttempts: 1}))
}

func TestBlinkitSearchProducts(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "milk" {
			t.Errorf("query q = %q, want milk", got)
		}
		if r.URL.Query().Has("page") {
			t.Error("page parameter forwarded to the platform, want first page only")
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(blinkitListingHTML))
	}))
	defer srv.Close()

	b := newBlinkitForURL(srv.URL)
	products, err := b.SearchProducts(context.Background(), "milk", models.SearchFilters{Page: 3}.Normalize())
	if err != nil {
		t.Fatalf("SearchProducts() error = %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("got %d products, want 2 (card without id skipped)", len(products))
	}

	milk := products[0]
	if milk.ExternalID != "prn-100" {
		t.Errorf("ExternalID = %q, want prn-100", milk.ExternalID)
	}
	if milk.Title != "Amul Taaza Milk 1L" {
		t.Errorf("Title = %q", milk.Title)
	}
	if milk.Brand != "Amul" {
		t.Errorf("Brand = %q, want Amul", milk.Brand)
	}
	if milk.Price != 72 {
		t.Errorf("Price = %v, want 72", milk.Price)
	}
	if milk.OriginalPrice == nil || *milk.OriginalPrice != 78 {
		t.Errorf("OriginalPrice = %v, want 78", milk.OriginalPrice)
	}
	if milk.Currency != "INR" {
		t.Errorf("Currency = %q, want INR", milk.Currency)
	}
	if !milk.InStock {
		t.Error("InStock = false, want true")
	}
	if milk.AffiliateURL == "" {
		t.Error("AffiliateURL is empty")
	}

	bread := products[1]
	if bread.InStock {
		t.Error("out-of-stock card reported InStock = true")
	}
	if bread.OriginalPrice != nil {
		t.Errorf("OriginalPrice = %v, want nil when mrp is absent", bread.OriginalPrice)
	}
}

func TestBlinkitGetProductDetailsNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	b := newBlinkitForURL(srv.URL)
	_, err := b.GetProductDetails(context.Background(), "prn-999")
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("GetProductDetails() error = %v, want ErrProductNotFound", err)
	}
}

func TestBlinkitGetProductDetailsMissingCard(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div>nothing here</div></body></html>`))
	}))
	defer srv.Close()

	b := newBlinkitForURL(srv.URL)
	_, err := b.GetProductDetails(context.Background(), "prn-1")
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("GetProductDetails() error = %v, want ErrProductNotFound", err)
	}
}

func TestParseRupees(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want float64
	}{
		{"₹72", 72},
		{"₹1,299.50", 1299.50},
		{"MRP ₹78", 78},
		{"", 0},
		{"free", 0},
	}
	for _, tt := range tests {
		if got := parseRupees(tt.in); got != tt.want {
			t.Errorf("parseRupees(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
