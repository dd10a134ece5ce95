package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"blotter/internal/domain/entity"
	"blotter/internal/infra/adapter/persistence/postgres"
)

func TestArticleRepo_UpsertRaw_Inserted(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO articles_raw`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))

	repo := postgres.NewArticleRepo(db)
	article := &entity.RawArticle{SourceID: 1, ExternalID: "hash1", URL: "https://x.com/1", TitleRaw: "T", BodyRaw: "B", RawHTML: "<html></html>"}

	id, inserted, err := repo.UpsertRaw(context.Background(), article)
	if err != nil {
		t.Fatalf("UpsertRaw() error = %v", err)
	}
	if !inserted {
		t.Error("expected inserted=true")
	}
	if id != 10 || article.ID != 10 {
		t.Errorf("id = %d, article.ID = %d, want 10", id, article.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_UpsertRaw_AlreadyExists(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO articles_raw`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"})) // no rows => ON CONFLICT DO NOTHING path
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM articles_raw`)).
		WithArgs(int64(1), "hash1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	repo := postgres.NewArticleRepo(db)
	article := &entity.RawArticle{SourceID: 1, ExternalID: "hash1", URL: "https://x.com/1", TitleRaw: "T", BodyRaw: "B", RawHTML: "<html></html>"}

	id, inserted, err := repo.UpsertRaw(context.Background(), article)
	if err != nil {
		t.Fatalf("UpsertRaw() error = %v", err)
	}
	if inserted {
		t.Error("expected inserted=false")
	}
	if id != 7 {
		t.Errorf("id = %d, want 7", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_StoreEnriched(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO incidents_enriched`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := postgres.NewArticleRepo(db)
	incident := &entity.EnrichedIncident{
		ID: 10, Severity: entity.SeverityMedium, CrimeCategory: entity.CrimeCategoryUnknown,
		Tags: []string{}, Entities: []entity.IncidentEntity{}, LLMModel: "none", PromptVersion: "stub_v1",
	}
	if err := repo.StoreEnriched(context.Background(), incident); err != nil {
		t.Fatalf("StoreEnriched() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_CountIncidents(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*)`)).
		WithArgs("R").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	repo := postgres.NewArticleRepo(db)
	count, err := repo.CountIncidents(context.Background(), "R")
	if err != nil {
		t.Fatalf("CountIncidents() error = %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_ListIncidents(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	cols := []string{
		"s.id", "s.agency_name", "s.jurisdiction", "s.region_label", "s.source_type", "s.base_url", "s.parser_id", "s.active", "s.use_browser", "s.feed_url", "s.last_checked_at",
		"a.id", "a.source_id", "a.external_id", "a.url", "a.title_raw", "a.body_raw", "a.published_at", "a.raw_html", "a.created_at",
		"i.id", "i.severity", "i.summary_tactical", "i.tags", "i.entities", "i.location_label", "i.lat", "i.lng",
		"i.graph_cluster_key", "i.crime_category", "i.temporal_context", "i.weapon_involved", "i.tactical_advice",
		"i.llm_model", "i.prompt_version", "i.processed_at",
	}
	now := time.Now()
	mock.ExpectQuery(`FROM incidents_enriched`).
		WithArgs("R", 10).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			int64(1), "Test PD", "", "R", "rcmp", "https://a.com", "rcmp", true, false, "", nil,
			int64(2), int64(1), "hash1", "https://a.com/1", "Title", "Body", nil, "<html></html>", now,
			int64(2), "MEDIUM", "Summary", []byte(`[]`), []byte(`[]`), "", nil, nil,
			"", "Unknown", "", "", "",
			"none", "stub_v1", now,
		))

	repo := postgres.NewArticleRepo(db)
	rows, err := repo.ListIncidents(context.Background(), "R", 10)
	if err != nil {
		t.Fatalf("ListIncidents() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Source.AgencyName != "Test PD" || rows[0].Article.TitleRaw != "Title" || rows[0].Incident.Severity != entity.SeverityMedium {
		t.Errorf("unexpected row contents: %+v", rows[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
