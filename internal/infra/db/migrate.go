package db

import "database/sql"

// MigrateUp creates the four tables C4/C7 require if they don't
// already exist: sources, articles_raw, incidents_enriched, and
// refresh_jobs. Deletion of a RawArticle cascades to EnrichedIncident
// per spec §4.4's referential-integrity invariant.
func MigrateUp(conn *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sources (
			id              SERIAL PRIMARY KEY,
			agency_name     TEXT NOT NULL,
			jurisdiction    TEXT NOT NULL DEFAULT '',
			region_label    TEXT NOT NULL,
			source_type     TEXT NOT NULL DEFAULT '',
			base_url        TEXT NOT NULL UNIQUE,
			parser_id       TEXT NOT NULL,
			active          BOOLEAN NOT NULL DEFAULT TRUE,
			use_browser     BOOLEAN NOT NULL DEFAULT FALSE,
			feed_url        TEXT NOT NULL DEFAULT '',
			last_checked_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sources_region_active ON sources(region_label) WHERE active = TRUE`,

		`CREATE TABLE IF NOT EXISTS articles_raw (
			id           SERIAL PRIMARY KEY,
			source_id    INTEGER NOT NULL REFERENCES sources(id),
			external_id  TEXT NOT NULL,
			url          TEXT NOT NULL,
			title_raw    TEXT NOT NULL,
			body_raw     TEXT NOT NULL,
			published_at TIMESTAMPTZ,
			raw_html     TEXT NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (source_id, external_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_raw_published_at ON articles_raw(published_at DESC)`,

		`CREATE TABLE IF NOT EXISTS incidents_enriched (
			id                INTEGER PRIMARY KEY REFERENCES articles_raw(id) ON DELETE CASCADE,
			severity          TEXT NOT NULL,
			summary_tactical  TEXT NOT NULL,
			tags              JSONB NOT NULL DEFAULT '[]',
			entities          JSONB NOT NULL DEFAULT '[]',
			location_label    TEXT NOT NULL DEFAULT '',
			lat               DOUBLE PRECISION,
			lng               DOUBLE PRECISION,
			graph_cluster_key TEXT NOT NULL DEFAULT '',
			crime_category    TEXT NOT NULL,
			temporal_context  TEXT NOT NULL DEFAULT '',
			weapon_involved   TEXT NOT NULL DEFAULT '',
			tactical_advice   TEXT NOT NULL DEFAULT '',
			llm_model         TEXT NOT NULL,
			prompt_version    TEXT NOT NULL,
			processed_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS refresh_jobs (
			id               SERIAL PRIMARY KEY,
			job_id           TEXT NOT NULL UNIQUE,
			region           TEXT NOT NULL,
			status           TEXT NOT NULL,
			new_articles     BIGINT NOT NULL DEFAULT 0,
			total_incidents  BIGINT NOT NULL DEFAULT 0,
			error_message    TEXT NOT NULL DEFAULT '',
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
			started_at       TIMESTAMPTZ,
			completed_at     TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_refresh_jobs_region ON refresh_jobs(region)`,
	}

	for _, stmt := range statements {
		if _, err := conn.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
