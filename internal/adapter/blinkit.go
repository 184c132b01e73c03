package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/gcompare/gcompare_api/internal/models"
	"github.com/gcompare/gcompare_api/pkg/httpx"
)

// BlinkitAdapter scrapes the Blinkit storefront HTML. The platform exposes
// no public API, so listings are extracted from search page markup.
// Like other quick-commerce sources it carries no review data.
type BlinkitAdapter struct {
	name        string
	baseURL     string
	affiliateID string
	http        *httpx.Client
}

// NewBlinkitAdapter constructs a BlinkitAdapter from the seeded platform record.
func NewBlinkitAdapter(p models.Platform, client *httpx.Client) *BlinkitAdapter {
	return &BlinkitAdapter{
		name:        p.Name,
		baseURL:     p.BaseURL,
		affiliateID: affiliateID(p),
		http:        client,
	}
}

func (b *BlinkitAdapter) Name() string              { return b.name }
func (b *BlinkitAdapter) Type() models.PlatformType { return models.PlatformQuickCommerce }

// SearchProducts fetches the search results page and extracts product cards.
func (b *BlinkitAdapter) SearchProducts(ctx context.Context, query string, filters models.SearchFilters) ([]models.CanonicalProduct, error) {
	params := url.Values{}
	params.Set("q", query)

	doc, err := b.fetchDocument(ctx, b.baseURL+"/s/?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("blinkit search %q: %w", query, err)
	}
	return b.extractProducts(doc), nil
}

// GetProductDetails fetches a product page and extracts the single listing.
func (b *BlinkitAdapter) GetProductDetails(ctx context.Context, externalID string) (*models.CanonicalProduct, error) {
	doc, err := b.fetchDocument(ctx, b.baseURL+"/prn/p/"+url.PathEscape(externalID))
	if err != nil {
		var srcErr *httpx.SourceError
		if errors.As(err, &srcErr) && srcErr.Status == 404 {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("blinkit details %s: %w", externalID, err)
	}

	card := doc.Find("[data-test-id='product-detail']").First()
	if card.Length() == 0 {
		return nil, ErrProductNotFound
	}
	p := b.extractCard(card, externalID)
	return &p, nil
}

// GetProductPrice extracts the current quote from the product page.
func (b *BlinkitAdapter) GetProductPrice(ctx context.Context, externalID string) (*models.PriceQuote, error) {
	p, err := b.GetProductDetails(ctx, externalID)
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
func (b *BlinkitAdapter) GetReviews(ctx context.Context, externalID string) ([]models.Review, error) {
	return []models.Review{}, nil
}

// GenerateAffiliateLink builds the outbound product URL with tracking
// parameters.
func (b *BlinkitAdapter) GenerateAffiliateLink(externalID string) string {
	return buildAffiliateLink(b.baseURL, "/prn/p/"+externalID, b.affiliateID)
}

func (b *BlinkitAdapter) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, err := b.http.GetBytes(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// extractProducts maps every product card on a listing page.
func (b *BlinkitAdapter) extractProducts(doc *goquery.Document) []models.CanonicalProduct {
	products := []models.CanonicalProduct{}
	doc.Find("[data-test-id='product-card']").Each(func(_ int, card *goquery.Selection) {
		id, ok := card.Attr("data-product-id")
		if !ok || id == "" {
			return
		}
		products = append(products, b.extractCard(card, id))
	})
	return products
}

// extractCard maps one card's markup to a canonical product.
func (b *BlinkitAdapter) extractCard(card *goquery.Selection, externalID string) models.CanonicalProduct {
	title := strings.TrimSpace(card.Find("[data-test-id='product-name']").First().Text())
	brand := strings.TrimSpace(card.Find("[data-test-id='product-brand']").First().Text())
	imageURL, _ := card.Find("img").First().Attr("src")

	price := parseRupees(card.Find("[data-test-id='selling-price']").First().Text())
	var original *float64
	if mrp := parseRupees(card.Find("[data-test-id='mrp']").First().Text()); mrp > price {
		original = &mrp
	}

	// Cards only render the out-of-stock badge when the item is unavailable.
	inStock := card.Find("[data-test-id='out-of-stock']").Length() == 0

	return models.CanonicalProduct{
		ExternalID:    externalID,
		Title:         title,
		Price:         price,
		OriginalPrice: original,
		Currency:      "INR",
		ImageURL:      imageURL,
		InStock:       inStock,
		Brand:         brand,
		AffiliateURL:  b.GenerateAffiliateLink(externalID),
	}
}

// parseRupees converts a rendered price like "₹1,299.50" to a number.
// Returns 0 when no digits are present.
func parseRupees(s string) float64 {
	var sb strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(sb.String(), 64)
	if err != nil {
		return 0
	}
	return v
}
