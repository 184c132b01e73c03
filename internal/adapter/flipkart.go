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

// FlipkartAdapter talks to the Flipkart affiliate catalog API.
type FlipkartAdapter struct {
	name        string
	baseURL     string
	apiURL      string
	affiliateID string
	http        *httpx.Client
}

// NewFlipkartAdapter constructs a FlipkartAdapter from the seeded platform record.
func NewFlipkartAdapter(p models.Platform, client *httpx.Client) *FlipkartAdapter {
	return &FlipkartAdapter{
		name:        p.Name,
		baseURL:     p.BaseURL,
		apiURL:      apiURL(p),
		affiliateID: affiliateID(p),
		http:        client,
	}
}

func (f *FlipkartAdapter) Name() string              { return f.name }
func (f *FlipkartAdapter) Type() models.PlatformType { return models.PlatformECommerce }

// Flipkart nests pricing and rating under sub-objects; the wire shape is
// intentionally different from other platforms.
type flipkartProduct struct {
	ProductID   string `json:"productId"`
	Title       string `json:"title"`
	Description string `json:"productDescription"`
	Brand       string `json:"productBrand"`
	ImageURL    string `json:"imageUrls"`
	Pricing     struct {
		SellingPrice float64  `json:"sellingPrice"`
		MRP          *float64 `json:"mrp"`
		Currency     string   `json:"currency"`
	} `json:"pricing"`
	Availability struct {
		InStock bool `json:"inStock"`
	} `json:"availability"`
	CustomerRating struct {
		Average float64 `json:"average"`
		Count   int     `json:"count"`
	} `json:"customerRating"`
}

type flipkartSearchResponse struct {
	Products []flipkartProduct `json:"products"`
}

type flipkartOfferResponse struct {
	SellingPrice float64  `json:"sellingPrice"`
	MRP          *float64 `json:"mrp"`
	Currency     string   `json:"currency"`
	InStock      bool     `json:"inStock"`
	LastUpdated  string   `json:"lastUpdated"`
}

type flipkartReviewsResponse struct {
	Reviews []struct {
		ReviewID  string  `json:"reviewId"`
		Reviewer  string  `json:"reviewer"`
		Rating    float64 `json:"rating"`
		Headline  string  `json:"headline"`
		Text      string  `json:"text"`
		Certified bool    `json:"certifiedBuyer"`
		Upvotes   int     `json:"upvotes"`
		CreatedAt string  `json:"createdAt"`
	} `json:"reviews"`
}

// SearchProducts queries the catalog and maps hits to canonical products.
func (f *FlipkartAdapter) SearchProducts(ctx context.Context, query string, filters models.SearchFilters) ([]models.CanonicalProduct, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("resultsPerPage", strconv.Itoa(searchPageSize))
	if filters.Category != "" {
		params.Set("categoryPath", filters.Category)
	}
	if filters.Brand != "" {
		params.Set("brand", filters.Brand)
	}

	var resp flipkartSearchResponse
	if err := f.http.GetJSON(ctx, f.apiURL+"/affiliate/1.0/search.json?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("flipkart search %q: %w", query, err)
	}

	products := make([]models.CanonicalProduct, 0, len(resp.Products))
	for _, fp := range resp.Products {
		products = append(products, f.toCanonical(fp))
	}
	return products, nil
}

// GetProductDetails fetches a single listing by product id.
func (f *FlipkartAdapter) GetProductDetails(ctx context.Context, externalID string) (*models.CanonicalProduct, error) {
	var fp flipkartProduct
	if err := f.http.GetJSON(ctx, f.apiURL+"/affiliate/1.0/product.json?id="+url.QueryEscape(externalID), &fp); err != nil {
		var srcErr *httpx.SourceError
		if errors.As(err, &srcErr) && srcErr.Status == 404 {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("flipkart details %s: %w", externalID, err)
	}
	p := f.toCanonical(fp)
	return &p, nil
}

// GetProductPrice fetches the current offer for a product id.
func (f *FlipkartAdapter) GetProductPrice(ctx context.Context, externalID string) (*models.PriceQuote, error) {
	var resp flipkartOfferResponse
	if err := f.http.GetJSON(ctx, f.apiURL+"/affiliate/1.0/offer.json?id="+url.QueryEscape(externalID), &resp); err != nil {
		var srcErr *httpx.SourceError
		if errors.As(err, &srcErr) && srcErr.Status == 404 {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("flipkart price %s: %w", externalID, err)
	}

	updated, err := time.Parse(time.RFC3339, resp.LastUpdated)
	if err != nil {
		updated = time.Now().UTC()
	}
	return &models.PriceQuote{
		Price:         resp.SellingPrice,
		OriginalPrice: resp.MRP,
		InStock:       resp.InStock,
		Currency:      currencyOr(resp.Currency, "INR"),
		LastUpdated:   updated,
	}, nil
}

// GetReviews fetches customer reviews for a product id.
func (f *FlipkartAdapter) GetReviews(ctx context.Context, externalID string) ([]models.Review, error) {
	var resp flipkartReviewsResponse
	if err := f.http.GetJSON(ctx, f.apiURL+"/affiliate/1.0/reviews.json?id="+url.QueryEscape(externalID), &resp); err != nil {
		return nil, fmt.Errorf("flipkart reviews %s: %w", externalID, err)
	}

	reviews := make([]models.Review, 0, len(resp.Reviews))
	for _, rv := range resp.Reviews {
		created, err := time.Parse(time.RFC3339, rv.CreatedAt)
		if err != nil {
			created = time.Now().UTC()
		}
		reviews = append(reviews, models.Review{
			ID:           rv.ReviewID,
			Author:       rv.Reviewer,
			Rating:       rv.Rating,
			Title:        rv.Headline,
			Content:      rv.Text,
			Verified:     rv.Certified,
			HelpfulCount: rv.Upvotes,
			CreatedAt:    created,
		})
	}
	return reviews, nil
}

// GenerateAffiliateLink builds the outbound product URL with tracking
// parameters.
func (f *FlipkartAdapter) GenerateAffiliateLink(externalID string) string {
	return buildAffiliateLink(f.baseURL, "/product/"+externalID, f.affiliateID)
}

func (f *FlipkartAdapter) toCanonical(fp flipkartProduct) models.CanonicalProduct {
	return models.CanonicalProduct{
		ExternalID:    fp.ProductID,
		Title:         fp.Title,
		Description:   fp.Description,
		Price:         fp.Pricing.SellingPrice,
		OriginalPrice: fp.Pricing.MRP,
		Currency:      currencyOr(fp.Pricing.Currency, "INR"),
		ImageURL:      fp.ImageURL,
		InStock:       fp.Availability.InStock,
		Rating:        fp.CustomerRating.Average,
		ReviewCount:   fp.CustomerRating.Count,
		Brand:         fp.Brand,
		AffiliateURL:  f.GenerateAffiliateLink(fp.ProductID),
	}
}
