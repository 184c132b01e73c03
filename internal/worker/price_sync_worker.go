package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/gcompare/gcompare_api/internal/adapter"
	"github.com/gcompare/gcompare_api/internal/models"
	"github.com/gcompare/gcompare_api/internal/repository"
)

// batchSize caps how many quotes one sync pass refreshes.
const batchSize = 200

// PriceSyncWorker periodically refreshes stored platform quotes through the
// adapters, so tracked products keep near-current prices between searches.
type PriceSyncWorker struct {
	priceRepo   *repository.PriceRepository
	registry    *adapter.Registry
	interval    time.Duration
	staleAfter  time.Duration
	concurrency int
}

// NewPriceSyncWorker constructs a PriceSyncWorker.
func NewPriceSyncWorker(
	priceRepo *repository.PriceRepository,
	registry *adapter.Registry,
	interval time.Duration,
	staleAfter time.Duration,
	concurrency int,
) *PriceSyncWorker {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &PriceSyncWorker{
		priceRepo:   priceRepo,
		registry:    registry,
		interval:    interval,
		staleAfter:  staleAfter,
		concurrency: concurrency,
	}
}

// Start begins the periodic sync loop and listens for context cancellation.
func (w *PriceSyncWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting price sync worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Price sync worker stopped")
			return
		}
	}
}

func (w *PriceSyncWorker) run(ctx context.Context) {
	stale, err := w.priceRepo.ListStale(w.staleAfter, batchSize)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list stale quotes")
		return
	}
	if len(stale) == 0 {
		return
	}

	log.Info().Int("count", len(stale)).Msg("Refreshing stale quotes")
	start := time.Now()

	var refreshed, failed int
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)

	results := make([]bool, len(stale))
	for i, price := range stale {
		g.Go(func() error {
			results[i] = w.refresh(gctx, price)
			return nil
		})
	}
	_ = g.Wait()

	for _, ok := range results {
		if ok {
			refreshed++
		} else {
			failed++
		}
	}

	log.Info().
		Int("refreshed", refreshed).
		Int("failed", failed).
		Dur("took", time.Since(start)).
		Msg("Price sync completed")
}

// refresh fetches a live quote for one stored price row and persists it.
// Missing products are logged and left in place for manual review.
func (w *PriceSyncWorker) refresh(ctx context.Context, price models.ProductPrice) bool {
	ad, err := w.registry.Get(price.PlatformName)
	if err != nil {
		log.Warn().Str("platform", price.PlatformName).Msg("No adapter for platform, skipping quote")
		return false
	}

	quote, err := ad.GetProductPrice(ctx, price.ExternalID)
	if err != nil {
		if errors.Is(err, adapter.ErrProductNotFound) {
			log.Warn().
				Str("platform", price.PlatformName).
				Str("external_id", price.ExternalID).
				Msg("Product gone from platform")
			return false
		}
		log.Error().Err(err).
			Str("platform", price.PlatformName).
			Str("external_id", price.ExternalID).
			Msg("Quote refresh failed")
		return false
	}

	if err := w.priceRepo.UpdateQuote(price.ID, quote); err != nil {
		log.Error().Err(err).
			Str("platform", price.PlatformName).
			Str("external_id", price.ExternalID).
			Msg("Quote persist failed")
		return false
	}
	return true
}
