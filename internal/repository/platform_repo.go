package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/gcompare/gcompare_api/internal/models"
)

// PlatformRepository handles data access for platforms.
type PlatformRepository struct {
	db *sqlx.DB
}

// NewPlatformRepository creates a new PlatformRepository.
func NewPlatformRepository(db *sqlx.DB) *PlatformRepository {
	return &PlatformRepository{db: db}
}

// GetActive returns all active platforms ordered by name ascending.
func (r *PlatformRepository) GetActive() ([]models.Platform, error) {
	const q = `SELECT * FROM platforms WHERE is_active = true ORDER BY name`

	var platforms []models.Platform
	if err := r.db.Select(&platforms, q); err != nil {
		return nil, err
	}
	return platforms, nil
}

// GetActiveSummaries returns the public listing shape for active platforms,
// ordered by name ascending.
func (r *PlatformRepository) GetActiveSummaries() ([]models.PlatformSummary, error) {
	const q = `
        SELECT id, name, display_name, type, logo_url
        FROM platforms WHERE is_active = true ORDER BY name`

	var summaries []models.PlatformSummary
	if err := r.db.Select(&summaries, q); err != nil {
		return nil, err
	}
	return summaries, nil
}

// GetByName returns a single platform by its unique name.
func (r *PlatformRepository) GetByName(name string) (*models.Platform, error) {
	const q = `SELECT * FROM platforms WHERE name = $1 LIMIT 1`

	var p models.Platform
	if err := r.db.Get(&p, q, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &p, nil
}

// Upsert inserts a platform or updates its metadata, keyed on the unique
// name. Used by the seed entrypoint; safe to rerun.
func (r *PlatformRepository) Upsert(p *models.Platform) error {
	const q = `
        INSERT INTO platforms (name, display_name, type, base_url, api_url, affiliate_id, logo_url, is_active)
        VALUES (:name, :display_name, :type, :base_url, :api_url, :affiliate_id, :logo_url, :is_active)
        ON CONFLICT (name) DO UPDATE SET
            display_name = EXCLUDED.display_name,
            type         = EXCLUDED.type,
            base_url     = EXCLUDED.base_url,
            api_url      = EXCLUDED.api_url,
            affiliate_id = EXCLUDED.affiliate_id,
            logo_url     = EXCLUDED.logo_url,
            is_active    = EXCLUDED.is_active,
            updated_at   = NOW()`

	_, err := r.db.NamedExec(q, p)
	return err
}
