package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gcompare/gcompare_api/internal/adapter"
	"github.com/gcompare/gcompare_api/internal/cache"
	"github.com/gcompare/gcompare_api/internal/config"
	"github.com/gcompare/gcompare_api/internal/database"
	"github.com/gcompare/gcompare_api/internal/handler"
	"github.com/gcompare/gcompare_api/internal/middleware"
	"github.com/gcompare/gcompare_api/internal/repository"
	"github.com/gcompare/gcompare_api/internal/service"
	"github.com/gcompare/gcompare_api/internal/worker"
	"github.com/gcompare/gcompare_api/pkg/httpx"
)

// main is the application entrypoint for the GCompare aggregation API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting gcompare api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 3c. Initialize search cache
	searchCache := cache.NewSearchCache(redisClient)

	// 4. Initialize repositories
	platformRepo := repository.NewPlatformRepository(db)
	priceRepo := repository.NewPriceRepository(db)

	// 5. Build the adapter registry from active platforms. Each platform
	// gets its own retrying client so one source's throttling does not
	// slow the others.
	platforms, err := platformRepo.GetActive()
	if err != nil {
		log.Error().Err(err).Msg("failed to load platforms")
		fmt.Fprintf(os.Stderr, "failed to load platforms: %v\n", err)
		os.Exit(1)
	}

	registry := adapter.NewRegistry()
	for _, p := range platforms {
		client := httpx.NewClient(httpx.Config{
			MaxAttempts:       cfg.Adapter.MaxAttempts,
			Timeout:           cfg.Adapter.Timeout,
			RequestsPerSecond: cfg.Adapter.RequestsPerSecond,
		})
		ad, err := adapter.FromPlatform(p, client)
		if err != nil {
			log.Warn().Str("platform", p.Name).Msg("No adapter variant for platform, skipping")
			continue
		}
		registry.Register(ad)
		log.Info().Str("platform", p.Name).Str("type", string(p.Type)).Msg("Platform adapter registered")
	}

	// 6. Initialize services
	aggregator := service.NewAggregator(registry, searchCache, service.TitleBrandMatcher{}, cfg.Adapter.Timeout)
	platformSvc := service.NewPlatformService(platformRepo, searchCache)

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:   handler.NewHealthHandler(db, redisClient),
		Search:   handler.NewSearchHandler(aggregator),
		Platform: handler.NewPlatformHandler(platformSvc),
		Product:  handler.NewProductHandler(registry),
	}

	// 8. Initialize middleware
	searchLimiter := middleware.NewSearchRateLimiter(30, time.Minute)

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, searchLimiter)

	// 10. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 11. Start workers
	go worker.NewPriceSyncWorker(
		priceRepo, registry,
		cfg.Worker.PriceSyncInterval,
		cfg.Worker.PriceStaleAfter,
		cfg.Worker.PriceSyncConcurrency,
	).Start(ctx)

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health   *handler.HealthHandler
	Search   *handler.SearchHandler
	Platform *handler.PlatformHandler
	Product  *handler.ProductHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, searchLimiter *middleware.SearchRateLimiter) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	router.GET("/v1/search", searchLimiter.Handle(), handlers.Search.Search)
	router.GET("/v1/platforms", handlers.Platform.GetPlatforms)

	platform := router.Group("/v1/platforms/:platform")
	{
		platform.GET("/products/:externalId", handlers.Product.GetProductDetails)
		platform.GET("/products/:externalId/price", handlers.Product.GetProductPrice)
		platform.GET("/products/:externalId/reviews", handlers.Product.GetReviews)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	// Run migrations
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
