package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/gcompare/gcompare_api/internal/cache"
	"github.com/gcompare/gcompare_api/internal/models"
)

// PlatformLister is the repository surface PlatformService needs.
type PlatformLister interface {
	GetActiveSummaries() ([]models.PlatformSummary, error)
}

// PlatformService serves the active platform listing with a long-lived
// cache in front; the listing only changes when the catalog is reseeded.
type PlatformService struct {
	platforms PlatformLister
	cache     *cache.SearchCache
}

// NewPlatformService constructs a PlatformService.
func NewPlatformService(platforms PlatformLister, searchCache *cache.SearchCache) *PlatformService {
	return &PlatformService{platforms: platforms, cache: searchCache}
}

// GetActivePlatforms returns active platform summaries sorted by name.
// Cache failures fall back to the database.
func (s *PlatformService) GetActivePlatforms(ctx context.Context) ([]models.PlatformSummary, error) {
	cached, err := s.cache.GetPlatforms(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("platforms cache read failed, querying database")
	}
	if cached != nil {
		return cached, nil
	}

	summaries, err := s.platforms.GetActiveSummaries()
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetPlatforms(ctx, summaries); err != nil {
		log.Warn().Err(err).Msg("platforms cache write failed")
	}
	return summaries, nil
}
