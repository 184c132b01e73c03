package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gcompare/gcompare_api/internal/models"
	"github.com/gcompare/gcompare_api/pkg/httpx"
)

func newAmazonForURL(apiBase string) *AmazonAdapter {
	p := testPlatform("amazon", "assoc-21")
	p.APIURL = strPtr(apiBase)
	return NewAmazonAdapter(p, httpx.NewClient(httpx.Config{MaxAttempts: 1}))
}

func TestAmazonSearchProducts(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/search" {
			t.Errorf("path = %q, want /v2/search", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("k") != "iphone 15" {
			t.Errorf("k = %q, want iphone 15", q.Get("k"))
		}
		if q.Get("brand") != "apple" {
			t.Errorf("brand = %q, want apple", q.Get("brand"))
		}
		if q.Has("page") {
			t.Errorf("page=%s forwarded to the platform, want first page only", q.Get("page"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{
			"asin":"B0CHP2F5YP",
			"title":"iPhone 15 (128 GB)",
			"brand":"Apple",
			"price":79900,
			"list_price":89900,
			"currency":"INR",
			"image_url":"https://img.test/iphone.jpg",
			"in_stock":true,
			"rating":4.6,
			"rating_count":5400
		}]}`))
	}))
	defer srv.Close()

	a := newAmazonForURL(srv.URL)
	filters := models.SearchFilters{Brand: "apple", Page: 2}.Normalize()
	products, err := a.SearchProducts(context.Background(), "iphone 15", filters)
	if err != nil {
		t.Fatalf("SearchProducts() error = %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("got %d products, want 1", len(products))
	}

	p := products[0]
	if p.ExternalID != "B0CHP2F5YP" {
		t.Errorf("ExternalID = %q", p.ExternalID)
	}
	if p.Price != 79900 {
		t.Errorf("Price = %v, want 79900", p.Price)
	}
	if p.OriginalPrice == nil || *p.OriginalPrice != 89900 {
		t.Errorf("OriginalPrice = %v, want 89900", p.OriginalPrice)
	}
	if p.Rating != 4.6 || p.ReviewCount != 5400 {
		t.Errorf("Rating/ReviewCount = %v/%d", p.Rating, p.ReviewCount)
	}
	if p.AffiliateURL == "" {
		t.Error("AffiliateURL is empty")
	}
}

func TestAmazonGetProductDetailsNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	a := newAmazonForURL(srv.URL)
	_, err := a.GetProductDetails(context.Background(), "B0MISSING")
	if err != ErrProductNotFound {
		t.Fatalf("GetProductDetails() error = %v, want ErrProductNotFound", err)
	}
}

func TestAmazonGetProductPrice(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/items/B0X/offer" {
			t.Errorf("path = %q, want /v2/items/B0X/offer", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"price":79900,"currency":"INR","in_stock":true,"updated_at":"2026-08-30T10:00:00Z"}`))
	}))
	defer srv.Close()

	a := newAmazonForURL(srv.URL)
	quote, err := a.GetProductPrice(context.Background(), "B0X")
	if err != nil {
		t.Fatalf("GetProductPrice() error = %v", err)
	}
	if quote.Price != 79900 || !quote.InStock {
		t.Errorf("quote = %+v", quote)
	}
	if quote.LastUpdated.IsZero() {
		t.Error("LastUpdated is zero")
	}
}

func TestAmazonGetReviews(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reviews":[{
			"id":"r1","author":"Priya","rating":5,
			"title":"Great phone","body":"Worth it.",
			"verified_purchase":true,"helpful_votes":12,"date":"2026-08-01"
		}]}`))
	}))
	defer srv.Close()

	a := newAmazonForURL(srv.URL)
	reviews, err := a.GetReviews(context.Background(), "B0X")
	if err != nil {
		t.Fatalf("GetReviews() error = %v", err)
	}
	if len(reviews) != 1 {
		t.Fatalf("got %d reviews, want 1", len(reviews))
	}
	rv := reviews[0]
	if rv.Author != "Priya" || rv.Rating != 5 || !rv.Verified || rv.HelpfulCount != 12 {
		t.Errorf("review = %+v", rv)
	}
}
