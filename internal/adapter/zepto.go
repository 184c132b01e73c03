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

// ZeptoAdapter talks to the Zepto quick-commerce storefront API.
// Quick-commerce catalogs carry no review data, so GetReviews always
// returns an empty slice.
type ZeptoAdapter struct {
	name        string
	baseURL     string
	apiURL      string
	affiliateID string
	http        *httpx.Client
}

// NewZeptoAdapter constructs a ZeptoAdapter from the seeded platform record.
func NewZeptoAdapter(p models.Platform, client *httpx.Client) *ZeptoAdapter {
	return &ZeptoAdapter{
		name:        p.Name,
		baseURL:     p.BaseURL,
		apiURL:      apiURL(p),
		affiliateID: affiliateID(p),
		http:        client,
	}
}

func (z *ZeptoAdapter) Name() string              { return z.name }
func (z *ZeptoAdapter) Type() models.PlatformType { return models.PlatformQuickCommerce }

// Zepto quotes prices in paise.
type zeptoVariant struct {
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	BrandName  string `json:"brand_name"`
	ImageURL   string `json:"image_url"`
	MRPPaise   int64  `json:"mrp"`
	PricePaise int64  `json:"selling_price"`
	Available  bool   `json:"available"`
}

type zeptoSearchResponse struct {
	Variants []zeptoVariant `json:"variants"`
}

// SearchProducts queries the storefront and maps variants to canonical
// products.
func (z *ZeptoAdapter) SearchProducts(ctx context.Context, query string, filters models.SearchFilters) ([]models.CanonicalProduct, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("page_size", strconv.Itoa(searchPageSize))

	var resp zeptoSearchResponse
	if err := z.http.GetJSON(ctx, z.apiURL+"/api/v3/search?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("zepto search %q: %w", query, err)
	}

	products := make([]models.CanonicalProduct, 0, len(resp.Variants))
	for _, v := range resp.Variants {
		products = append(products, z.toCanonical(v))
	}
	return products, nil
}

// GetProductDetails fetches a single variant by SKU.
func (z *ZeptoAdapter) GetProductDetails(ctx context.Context, externalID string) (*models.CanonicalProduct, error) {
	var v zeptoVariant
	if err := z.http.GetJSON(ctx, z.apiURL+"/api/v3/variants/"+url.PathEscape(externalID), &v); err != nil {
		var srcErr *httpx.SourceError
		if errors.As(err, &srcErr) && srcErr.Status == 404 {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("zepto details %s: %w", externalID, err)
	}
	p := z.toCanonical(v)
	return &p, nil
}

// GetProductPrice fetches the current quote for a SKU.
func (z *ZeptoAdapter) GetProductPrice(ctx context.Context, externalID string) (*models.PriceQuote, error) {
	p, err := z.GetProductDetails(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return &models.PriceQuote{
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		InStock:       p.InStock,
		Currency:      p.Currency,
		LastUpdated:   time.Now().UTC(),
	}, nil
}

// GetReviews is not supported by the platform.
func (z *ZeptoAdapter) GetReviews(ctx context.Context, externalID string) ([]models.Review, error) {
	return []models.Review{}, nil
}

// GenerateAffiliateLink builds the outbound product URL with tracking
// parameters.
func (z *ZeptoAdapter) GenerateAffiliateLink(externalID string) string {
	return buildAffiliateLink(z.baseURL, "/product/"+externalID, z.affiliateID)
}

func (z *ZeptoAdapter) toCanonical(v zeptoVariant) models.CanonicalProduct {
	price := float64(v.PricePaise) / 100
	var original *float64
	if v.MRPPaise > v.PricePaise {
		mrp := float64(v.MRPPaise) / 100
		original = &mrp
	}
	return models.CanonicalProduct{
		ExternalID:    v.SKU,
		Title:         v.Name,
		Price:         price,
		OriginalPrice: original,
		Currency:      "INR",
		ImageURL:      v.ImageURL,
		InStock:       v.Available,
		Brand:         v.BrandName,
		AffiliateURL:  z.GenerateAffiliateLink(v.SKU),
	}
}
