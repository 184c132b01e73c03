package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gcompare/gcompare_api/internal/cache"
	"github.com/gcompare/gcompare_api/internal/config"
	"github.com/gcompare/gcompare_api/internal/database"
	"github.com/gcompare/gcompare_api/internal/models"
	"github.com/gcompare/gcompare_api/internal/repository"
)

// main seeds platforms, categories, and a sample tracked product. Every
// write is an upsert keyed on the table's uniqueness constraint, so the
// seeder is safe to rerun.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	platformRepo := repository.NewPlatformRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	priceRepo := repository.NewPriceRepository(db)

	log.Info().Msg("Seeding database...")

	for _, p := range seedPlatforms() {
		if err := platformRepo.Upsert(&p); err != nil {
			log.Fatal().Err(err).Str("platform", p.Name).Msg("platform upsert failed")
		}
	}
	log.Info().Int("count", len(seedPlatforms())).Msg("Platforms seeded")

	categories := seedCategories()
	for _, c := range categories {
		if err := categoryRepo.Upsert(&c); err != nil {
			log.Fatal().Err(err).Str("slug", c.Slug).Msg("category upsert failed")
		}
	}
	log.Info().Int("count", len(categories)).Msg("Categories seeded")

	if err := seedSampleProduct(platformRepo, categoryRepo, productRepo, priceRepo); err != nil {
		log.Fatal().Err(err).Msg("sample product seeding failed")
	}
	log.Info().Msg("Sample product seeded")

	// Cached search results may reference the pre-seed catalog.
	invalidateSearchCache(cfg)

	log.Info().Msg("Seeding completed")
}

// invalidateSearchCache drops cached search results after a reseed. The
// seeder stays usable without a reachable Redis, so failures only warn.
func invalidateSearchCache(cfg *config.Config) {
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, skipping search cache invalidation")
		return
	}
	defer redisClient.Close()

	if err := cache.NewSearchCache(redisClient).InvalidateSearches(context.Background()); err != nil {
		log.Warn().Err(err).Msg("search cache invalidation failed")
		return
	}
	log.Info().Msg("Search cache invalidated")
}

func seedPlatforms() []models.Platform {
	amazonAffiliate := os.Getenv("AMAZON_ASSOCIATE_ID")
	flipkartAffiliate := os.Getenv("FLIPKART_AFFILIATE_ID")

	return []models.Platform{
		{
			Name:        "amazon",
			DisplayName: "Amazon",
			Type:        models.PlatformECommerce,
			BaseURL:     "https://www.amazon.in",
			APIURL:      strPtr("https://api.amazon.in"),
			AffiliateID: optionalStr(amazonAffiliate),
			IsActive:    true,
		},
		{
			Name:        "flipkart",
			DisplayName: "Flipkart",
			Type:        models.PlatformECommerce,
			BaseURL:     "https://www.flipkart.com",
			APIURL:      strPtr("https://api.flipkart.com"),
			AffiliateID: optionalStr(flipkartAffiliate),
			IsActive:    true,
		},
		{
			Name:        "zepto",
			DisplayName: "Zepto",
			Type:        models.PlatformQuickCommerce,
			BaseURL:     "https://www.zeptonow.com",
			IsActive:    true,
		},
		{
			Name:        "blinkit",
			DisplayName: "Blinkit",
			Type:        models.PlatformQuickCommerce,
			BaseURL:     "https://www.blinkit.com",
			IsActive:    true,
		},
		{
			Name:        "swiggy-instamart",
			DisplayName: "Swiggy Instamart",
			Type:        models.PlatformQuickCommerce,
			BaseURL:     "https://www.swiggy.com/instamart",
			IsActive:    true,
		},
		{
			Name:        "bigbasket",
			DisplayName: "BigBasket",
			Type:        models.PlatformQuickCommerce,
			BaseURL:     "https://www.bigbasket.com",
			IsActive:    true,
		},
	}
}

func seedCategories() []models.Category {
	return []models.Category{
		{Name: "Electronics", Slug: "electronics", Icon: "📱"},
		{Name: "Fashion", Slug: "fashion", Icon: "👕"},
		{Name: "Groceries", Slug: "groceries", Icon: "🛒"},
		{Name: "Home & Kitchen", Slug: "home-kitchen", Icon: "🏠"},
		{Name: "Beauty & Personal Care", Slug: "beauty", Icon: "💄"},
	}
}

// seedSampleProduct creates one tracked product with quotes on the two
// e-commerce platforms, mirroring a real comparison row.
func seedSampleProduct(
	platformRepo *repository.PlatformRepository,
	categoryRepo *repository.CategoryRepository,
	productRepo *repository.ProductRepository,
	priceRepo *repository.PriceRepository,
) error {
	electronics, err := categoryRepo.GetBySlug("electronics")
	if err != nil {
		return fmt.Errorf("load electronics category: %w", err)
	}

	product := models.Product{
		ID:          "sample-product-1",
		Title:       "Apple iPhone 15 (128GB) - Black",
		Description: "The iPhone 15 features a beautiful design, powerful A16 Bionic chip, and an advanced dual-camera system.",
		Brand:       "Apple",
		CategoryID:  &electronics.ID,
		ImageURL:    "/placeholder-product.jpg",
		Rating:      4.5,
		ReviewCount: 1234,
		Promoted:    true,
	}
	if err := productRepo.Upsert(&product); err != nil {
		return fmt.Errorf("upsert sample product: %w", err)
	}

	amazon, err := platformRepo.GetByName("amazon")
	if err != nil {
		return fmt.Errorf("load amazon platform: %w", err)
	}
	flipkart, err := platformRepo.GetByName("flipkart")
	if err != nil {
		return fmt.Errorf("load flipkart platform: %w", err)
	}

	prices := []models.ProductPrice{
		{
			ProductID:     product.ID,
			PlatformID:    amazon.ID,
			ExternalID:    "B0CHP2F5YP",
			Price:         79900,
			OriginalPrice: floatPtr(89900),
			InStock:       true,
			Currency:      "INR",
			AffiliateURL:  "https://www.amazon.in/dp/B0CHP2F5YP?tag=gcompare-21",
		},
		{
			ProductID:     product.ID,
			PlatformID:    flipkart.ID,
			ExternalID:    "MOBGTAGPAQFZMRQQ",
			Price:         78999,
			OriginalPrice: floatPtr(89900),
			InStock:       true,
			Currency:      "INR",
			AffiliateURL:  "https://www.flipkart.com/apple-iphone-15-black-128-gb/p/itm",
		},
	}
	for _, price := range prices {
		if err := priceRepo.Upsert(&price); err != nil {
			return fmt.Errorf("upsert price %s: %w", price.ExternalID, err)
		}
	}
	return nil
}

func strPtr(s string) *string { return &s }

func optionalStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func floatPtr(f float64) *float64 { return &f }
