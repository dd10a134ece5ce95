package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"blotter/internal/domain/entity"
	"blotter/internal/repository"
)

// ArticleRepo implements repository.ArticleRepository.
type ArticleRepo struct{ db *sql.DB }

// NewArticleRepo constructs an ArticleRepo over db.
func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{db: db}
}

// UpsertRaw performs the atomic lookup-or-insert spec §4.4 requires:
// ON CONFLICT DO NOTHING tells whether the row was newly inserted via
// RETURNING id; on conflict a follow-up SELECT fetches the existing
// row's id without ever mutating it.
func (r *ArticleRepo) UpsertRaw(ctx context.Context, article *entity.RawArticle) (int64, bool, error) {
	const insertQuery = `
INSERT INTO articles_raw (source_id, external_id, url, title_raw, body_raw, published_at, raw_html, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (source_id, external_id) DO NOTHING
RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, insertQuery,
		article.SourceID, article.ExternalID, article.URL, article.TitleRaw,
		article.BodyRaw, article.PublishedAt, article.RawHTML, article.CreatedAt,
	).Scan(&id)
	if err == nil {
		article.ID = id
		return id, true, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, fmt.Errorf("UpsertRaw: insert: %w", err)
	}

	const existingQuery = `SELECT id FROM articles_raw WHERE source_id = $1 AND external_id = $2`
	if err := r.db.QueryRowContext(ctx, existingQuery, article.SourceID, article.ExternalID).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("UpsertRaw: lookup existing: %w", err)
	}
	return id, false, nil
}

// StoreEnriched implements repository.ArticleRepository.
func (r *ArticleRepo) StoreEnriched(ctx context.Context, incident *entity.EnrichedIncident) error {
	tagsJSON, err := json.Marshal(incident.Tags)
	if err != nil {
		return fmt.Errorf("StoreEnriched: marshal tags: %w", err)
	}
	entitiesJSON, err := json.Marshal(incident.Entities)
	if err != nil {
		return fmt.Errorf("StoreEnriched: marshal entities: %w", err)
	}

	const query = `
INSERT INTO incidents_enriched
	(id, severity, summary_tactical, tags, entities, location_label, lat, lng,
	 graph_cluster_key, crime_category, temporal_context, weapon_involved,
	 tactical_advice, llm_model, prompt_version, processed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err = r.db.ExecContext(ctx, query,
		incident.ID, incident.Severity, incident.SummaryTactical, tagsJSON, entitiesJSON,
		incident.LocationLabel, incident.Lat, incident.Lng, incident.GraphClusterKey,
		incident.CrimeCategory, incident.TemporalContext, incident.WeaponInvolved,
		incident.TacticalAdvice, incident.LLMModel, incident.PromptVersion, incident.ProcessedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("StoreEnriched: %w", entity.ErrAlreadyExists)
		}
		return fmt.Errorf("StoreEnriched: %w", err)
	}
	return nil
}

// ListIncidents implements repository.ArticleRepository, ordered by
// published_at desc then id desc per spec §4.4.
func (r *ArticleRepo) ListIncidents(ctx context.Context, regionLabel string, limit int) ([]repository.IncidentRow, error) {
	const query = `
SELECT
	s.id, s.agency_name, s.jurisdiction, s.region_label, s.source_type, s.base_url, s.parser_id, s.active, s.use_browser, s.feed_url, s.last_checked_at,
	a.id, a.source_id, a.external_id, a.url, a.title_raw, a.body_raw, a.published_at, a.raw_html, a.created_at,
	i.id, i.severity, i.summary_tactical, i.tags, i.entities, i.location_label, i.lat, i.lng,
	i.graph_cluster_key, i.crime_category, i.temporal_context, i.weapon_involved, i.tactical_advice,
	i.llm_model, i.prompt_version, i.processed_at
FROM incidents_enriched i
JOIN articles_raw a ON a.id = i.id
JOIN sources s ON s.id = a.source_id
WHERE s.region_label = $1
ORDER BY a.published_at DESC NULLS LAST, a.id DESC
LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, regionLabel, limit)
	if err != nil {
		return nil, fmt.Errorf("ListIncidents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]repository.IncidentRow, 0, limit)
	for rows.Next() {
		var s entity.Source
		var a entity.RawArticle
		var i entity.EnrichedIncident
		var tagsJSON, entitiesJSON []byte

		err := rows.Scan(
			&s.ID, &s.AgencyName, &s.Jurisdiction, &s.RegionLabel, &s.SourceType, &s.BaseURL, &s.ParserID, &s.Active, &s.UseBrowser, &s.FeedURL, &s.LastCheckedAt,
			&a.ID, &a.SourceID, &a.ExternalID, &a.URL, &a.TitleRaw, &a.BodyRaw, &a.PublishedAt, &a.RawHTML, &a.CreatedAt,
			&i.ID, &i.Severity, &i.SummaryTactical, &tagsJSON, &entitiesJSON, &i.LocationLabel, &i.Lat, &i.Lng,
			&i.GraphClusterKey, &i.CrimeCategory, &i.TemporalContext, &i.WeaponInvolved, &i.TacticalAdvice,
			&i.LLMModel, &i.PromptVersion, &i.ProcessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ListIncidents: Scan: %w", err)
		}
		if err := json.Unmarshal(tagsJSON, &i.Tags); err != nil {
			return nil, fmt.Errorf("ListIncidents: unmarshal tags: %w", err)
		}
		if err := json.Unmarshal(entitiesJSON, &i.Entities); err != nil {
			return nil, fmt.Errorf("ListIncidents: unmarshal entities: %w", err)
		}

		result = append(result, repository.IncidentRow{Source: &s, Article: &a, Incident: &i})
	}
	return result, rows.Err()
}

// CountIncidents implements repository.ArticleRepository.
func (r *ArticleRepo) CountIncidents(ctx context.Context, regionLabel string) (int64, error) {
	const query = `
SELECT COUNT(*)
FROM incidents_enriched i
JOIN articles_raw a ON a.id = i.id
JOIN sources s ON s.id = a.source_id
WHERE s.region_label = $1`
	var count int64
	if err := r.db.QueryRowContext(ctx, query, regionLabel).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountIncidents: %w", err)
	}
	return count, nil
}

// isUniqueViolation checks for postgres error code 23505 without
// importing a postgres-specific error type package, since pgx's
// stdlib adapter still surfaces *pgconn.PgError through database/sql,
// which exposes SQLState(). An error that does not itself implement
// SQLState() (for example, one wrapped by another layer) is reported as
// not a unique violation.
func isUniqueViolation(err error) bool {
	type sqlState interface{ SQLState() string }
	if pgErr, ok := err.(sqlState); ok {
		return pgErr.SQLState() == "23505"
	}
	return false
}
