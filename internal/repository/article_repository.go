package repository

import (
	"context"

	"blotter/internal/domain/entity"
)

// IncidentRow is the denormalized (Source, RawArticle, EnrichedIncident)
// triple produced by the read side of the store, as consumed by the
// query surface (C8).
type IncidentRow struct {
	Source   *entity.Source
	Article  *entity.RawArticle
	Incident *entity.EnrichedIncident
}

// ArticleRepository enforces at-most-one stored copy of any
// (source, article) pair and the 1:1 article-incident relationship.
type ArticleRepository interface {
	// UpsertRaw performs an atomic lookup by (source_id, external_id):
	// if absent, inserts and returns inserted=true; if present, returns
	// the existing id with inserted=false. Never mutates an existing row.
	UpsertRaw(ctx context.Context, article *entity.RawArticle) (id int64, inserted bool, err error)

	// StoreEnriched inserts an EnrichedIncident keyed by incident.ID.
	// Fails with entity.ErrAlreadyExists if a row already exists for
	// that id — callers must only store enrichment for newly inserted
	// RawArticles.
	StoreEnriched(ctx context.Context, incident *entity.EnrichedIncident) error

	// ListIncidents returns denormalized incident rows for a region,
	// ordered by published_at desc then id desc, bounded by limit.
	ListIncidents(ctx context.Context, regionLabel string, limit int) ([]IncidentRow, error)

	// CountIncidents returns the number of enriched incidents belonging
	// to sources in the given region.
	CountIncidents(ctx context.Context, regionLabel string) (int64, error)
}
