// Package postgres implements the repository interfaces (C4/C7) over
// database/sql with the jackc/pgx/v5 stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"blotter/internal/domain/entity"
	"blotter/internal/repository"
)

// SourceRepo implements repository.SourceRepository.
type SourceRepo struct{ db *sql.DB }

// NewSourceRepo constructs a SourceRepo over db.
func NewSourceRepo(db *sql.DB) repository.SourceRepository {
	return &SourceRepo{db: db}
}

func scanSource(row interface{ Scan(...any) error }) (*entity.Source, error) {
	var s entity.Source
	err := row.Scan(&s.ID, &s.AgencyName, &s.Jurisdiction, &s.RegionLabel,
		&s.SourceType, &s.BaseURL, &s.ParserID, &s.Active, &s.UseBrowser, &s.FeedURL, &s.LastCheckedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

const sourceColumns = `id, agency_name, jurisdiction, region_label, source_type, base_url, parser_id, active, use_browser, feed_url, last_checked_at`

func (r *SourceRepo) Get(ctx context.Context, id int64) (*entity.Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM sources WHERE id = $1 LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, id)
	s, err := scanSource(row)
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return s, nil
}

func (r *SourceRepo) List(ctx context.Context) ([]*entity.Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM sources ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sources := make([]*entity.Source, 0, 50)
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

func (r *SourceRepo) ActiveSourcesFor(ctx context.Context, regionLabel string) ([]*entity.Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM sources WHERE region_label = $1 AND active = TRUE ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, regionLabel)
	if err != nil {
		return nil, fmt.Errorf("ActiveSourcesFor: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sources := make([]*entity.Source, 0, 16)
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("ActiveSourcesFor: Scan: %w", err)
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

func (r *SourceRepo) Upsert(ctx context.Context, source *entity.Source) error {
	const query = `
INSERT INTO sources (agency_name, jurisdiction, region_label, source_type, base_url, parser_id, active, use_browser, feed_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (base_url) DO UPDATE SET
	agency_name  = EXCLUDED.agency_name,
	jurisdiction = EXCLUDED.jurisdiction,
	region_label = EXCLUDED.region_label,
	source_type  = EXCLUDED.source_type,
	parser_id    = EXCLUDED.parser_id,
	active       = EXCLUDED.active,
	use_browser  = EXCLUDED.use_browser,
	feed_url     = EXCLUDED.feed_url
RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		source.AgencyName, source.Jurisdiction, source.RegionLabel, source.SourceType,
		source.BaseURL, source.ParserID, source.Active, source.UseBrowser, source.FeedURL,
	).Scan(&source.ID)
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}

func (r *SourceRepo) TouchCrawledAt(ctx context.Context, sourceID int64, t time.Time) error {
	const query = `UPDATE sources SET last_checked_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, t, sourceID)
	if err != nil {
		return fmt.Errorf("TouchCrawledAt: %w", err)
	}
	return nil
}
