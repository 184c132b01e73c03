package service

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/gcompare/gcompare_api/internal/cache"
	"github.com/gcompare/gcompare_api/internal/models"
)

type fakePlatformRepo struct {
	summaries []models.PlatformSummary
	err       error
	calls     int32
}

func (f *fakePlatformRepo) GetActiveSummaries() ([]models.PlatformSummary, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return f.summaries, nil
}

func TestGetActivePlatformsCachesListing(t *testing.T) {
	t.Parallel()

	repo := &fakePlatformRepo{summaries: []models.PlatformSummary{
		{ID: 1, Name: "amazon", DisplayName: "Amazon", Type: models.PlatformECommerce},
		{ID: 2, Name: "zepto", DisplayName: "Zepto", Type: models.PlatformQuickCommerce},
	}}
	svc := NewPlatformService(repo, cache.NewSearchCache(newMemStore()))

	first, err := svc.GetActivePlatforms(context.Background())
	if err != nil {
		t.Fatalf("first call error = %v", err)
	}
	second, err := svc.GetActivePlatforms(context.Background())
	if err != nil {
		t.Fatalf("second call error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("listings differ:\nfirst  %+v\nsecond %+v", first, second)
	}
	if got := atomic.LoadInt32(&repo.calls); got != 1 {
		t.Errorf("repository queried %d times, want 1 (second call served from cache)", got)
	}
}

func TestGetActivePlatformsFailsOpenOnBrokenCache(t *testing.T) {
	t.Parallel()

	repo := &fakePlatformRepo{summaries: []models.PlatformSummary{{ID: 1, Name: "amazon"}}}
	svc := NewPlatformService(repo, cache.NewSearchCache(brokenStore{}))

	got, err := svc.GetActivePlatforms(context.Background())
	if err != nil {
		t.Fatalf("GetActivePlatforms() error = %v, want database fallback", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d platforms, want 1", len(got))
	}
}

func TestGetActivePlatformsRepositoryError(t *testing.T) {
	t.Parallel()

	repo := &fakePlatformRepo{err: errors.New("connection refused")}
	svc := NewPlatformService(repo, cache.NewSearchCache(newMemStore()))

	if _, err := svc.GetActivePlatforms(context.Background()); err == nil {
		t.Fatal("GetActivePlatforms() error = nil, want repository error surfaced")
	}
}
