package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/gcompare/gcompare_api/internal/models"
	"github.com/gcompare/gcompare_api/pkg/httpx"
)

// AmazonAdapter talks to the Amazon product catalog API.
type AmazonAdapter struct {
	name        string
	baseURL     string
	apiURL      string
	affiliateID string
	http        *httpx.Client
}

// NewAmazonAdapter constructs an AmazonAdapter from the seeded platform record.
func NewAmazonAdapter(p models.Platform, client *httpx.Client) *AmazonAdapter {
	return &AmazonAdapter{
		name:        p.Name,
		baseURL:     p.BaseURL,
		apiURL:      apiURL(p),
		affiliateID: affiliateID(p),
		http:        client,
	}
}

func (a *AmazonAdapter) Name() string              { return a.name }
func (a *AmazonAdapter) Type() models.PlatformType { return models.PlatformECommerce }

// amazonItem is the wire shape of one search/detail result.
type amazonItem struct {
	ASIN        string   `json:"asin"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Brand       string   `json:"brand"`
	Price       float64  `json:"price"`
	ListPrice   *float64 `json:"list_price"`
	Currency    string   `json:"currency"`
	ImageURL    string   `json:"image_url"`
	InStock     bool     `json:"in_stock"`
	Rating      float64  `json:"rating"`
	RatingCount int      `json:"rating_count"`
}

type amazonSearchResponse struct {
	Items []amazonItem `json:"items"`
}

type amazonPriceResponse struct {
	Price     float64  `json:"price"`
	ListPrice *float64 `json:"list_price"`
	Currency  string   `json:"currency"`
	InStock   bool     `json:"in_stock"`
	UpdatedAt string   `json:"updated_at"`
}

type amazonReview struct {
	ID       string  `json:"id"`
	Author   string  `json:"author"`
	Rating   float64 `json:"rating"`
	Title    string  `json:"title"`
	Body     string  `json:"body"`
	Verified bool    `json:"verified_purchase"`
	Helpful  int     `json:"helpful_votes"`
	Date     string  `json:"date"`
}

type amazonReviewsResponse struct {
	Reviews []amazonReview `json:"reviews"`
}

// SearchProducts queries the catalog API and maps hits to canonical products.
func (a *AmazonAdapter) SearchProducts(ctx context.Context, query string, filters models.SearchFilters) ([]models.CanonicalProduct, error) {
	params := url.Values{}
	params.Set("k", query)
	if filters.Category != "" {
		params.Set("category", filters.Category)
	}
	if filters.Brand != "" {
		params.Set("brand", filters.Brand)
	}
	if filters.MinPrice != nil {
		params.Set("min-price", strconv.FormatFloat(*filters.MinPrice, 'f', -1, 64))
	}
	if filters.MaxPrice != nil {
		params.Set("max-price", strconv.FormatFloat(*filters.MaxPrice, 'f', -1, 64))
	}

	var resp amazonSearchResponse
	if err := a.http.GetJSON(ctx, a.apiURL+"/v2/search?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("amazon search %q: %w", query, err)
	}

	products := make([]models.CanonicalProduct, 0, len(resp.Items))
	for _, it := range resp.Items {
		products = append(products, a.toCanonical(it))
	}
	return products, nil
}

// GetProductDetails fetches a single listing by ASIN.
func (a *AmazonAdapter) GetProductDetails(ctx context.Context, externalID string) (*models.CanonicalProduct, error) {
	var it amazonItem
	if err := a.http.GetJSON(ctx, a.apiURL+"/v2/items/"+url.PathEscape(externalID), &it); err != nil {
		var srcErr *httpx.SourceError
		if errors.As(err, &srcErr) && srcErr.Status == 404 {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("amazon details %s: %w", externalID, err)
	}
	p := a.toCanonical(it)
	return &p, nil
}

// GetProductPrice fetches the current quote for an ASIN.
func (a *AmazonAdapter) GetProductPrice(ctx context.Context, externalID string) (*models.PriceQuote, error) {
	var resp amazonPriceResponse
	if err := a.http.GetJSON(ctx, a.apiURL+"/v2/items/"+url.PathEscape(externalID)+"/offer", &resp); err != nil {
		var srcErr *httpx.SourceError
		if errors.As(err, &srcErr) && srcErr.Status == 404 {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("amazon price %s: %w", externalID, err)
	}

	updated, err := time.Parse(time.RFC3339, resp.UpdatedAt)
	if err != nil {
		updated = time.Now().UTC()
	}
	return &models.PriceQuote{
		Price:         resp.Price,
		OriginalPrice: resp.ListPrice,
		InStock:       resp.InStock,
		Currency:      currencyOr(resp.Currency, "INR"),
		LastUpdated:   updated,
	}, nil
}

// GetReviews fetches customer reviews for an ASIN.
func (a *AmazonAdapter) GetReviews(ctx context.Context, externalID string) ([]models.Review, error) {
	var resp amazonReviewsResponse
	if err := a.http.GetJSON(ctx, a.apiURL+"/v2/items/"+url.PathEscape(externalID)+"/reviews", &resp); err != nil {
		return nil, fmt.Errorf("amazon reviews %s: %w", externalID, err)
	}

	reviews := make([]models.Review, 0, len(resp.Reviews))
	for _, rv := range resp.Reviews {
		created, err := time.Parse("2006-01-02", rv.Date)
		if err != nil {
			created = time.Now().UTC()
		}
		reviews = append(reviews, models.Review{
			ID:           rv.ID,
			Author:       rv.Author,
			Rating:       rv.Rating,
			Title:        rv.Title,
			Content:      rv.Body,
			Verified:     rv.Verified,
			HelpfulCount: rv.Helpful,
			CreatedAt:    created,
		})
	}
	return reviews, nil
}

// GenerateAffiliateLink builds the outbound /dp/{asin} URL with tracking
// parameters.
func (a *AmazonAdapter) GenerateAffiliateLink(externalID string) string {
	return buildAffiliateLink(a.baseURL, "/dp/"+externalID, a.affiliateID)
}

func (a *AmazonAdapter) toCanonical(it amazonItem) models.CanonicalProduct {
	return models.CanonicalProduct{
		ExternalID:    it.ASIN,
		Title:         it.Title,
		Description:   it.Description,
		Price:         it.Price,
		OriginalPrice: it.ListPrice,
		Currency:      currencyOr(it.Currency, "INR"),
		ImageURL:      it.ImageURL,
		InStock:       it.InStock,
		Rating:        it.Rating,
		ReviewCount:   it.RatingCount,
		Brand:         it.Brand,
		AffiliateURL:  a.GenerateAffiliateLink(it.ASIN),
	}
}

func currencyOr(c, def string) string {
	if c == "" {
		return def
	}
	return c
}
