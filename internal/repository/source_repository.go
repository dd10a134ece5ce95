// Package repository defines the storage-facing interfaces consumed by
// the pipeline's use cases. Concrete implementations live under
// internal/infra/adapter/persistence.
package repository

import (
	"context"
	"time"

	"blotter/internal/domain/entity"
)

// SourceRepository manages Source rows: synchronized from an external
// config provider at startup, never deleted by the pipeline.
type SourceRepository interface {
	Get(ctx context.Context, id int64) (*entity.Source, error)
	List(ctx context.Context) ([]*entity.Source, error)
	// ActiveSourcesFor returns the active sources for a region label,
	// the primary query key consulted by the refresh orchestrator.
	ActiveSourcesFor(ctx context.Context, regionLabel string) ([]*entity.Source, error)
	// Upsert inserts a new Source keyed by BaseURL, or updates the
	// existing row's mutable fields if BaseURL already exists.
	Upsert(ctx context.Context, source *entity.Source) error
	// TouchCrawledAt advances the last_checked_at watermark. Idempotent.
	TouchCrawledAt(ctx context.Context, sourceID int64, t time.Time) error
}
