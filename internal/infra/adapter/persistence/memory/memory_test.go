package memory_test

import (
	"context"
	"testing"
	"time"

	"blotter/internal/domain/entity"
	"blotter/internal/infra/adapter/persistence/memory"
)

func TestSourceStore_UpsertThenGet(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSourceStore()

	source := &entity.Source{AgencyName: "Test PD", RegionLabel: "R", BaseURL: "https://a.com", ParserID: "rcmp", Active: true}
	if err := store.Upsert(ctx, source); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if source.ID == 0 {
		t.Fatal("expected Upsert to stamp an ID")
	}

	got, err := store.Get(ctx, source.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.AgencyName != "Test PD" {
		t.Errorf("AgencyName = %q, want Test PD", got.AgencyName)
	}
}

func TestSourceStore_UpsertExistingBaseURL_Updates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSourceStore()

	first := &entity.Source{AgencyName: "A", RegionLabel: "R", BaseURL: "https://a.com", ParserID: "rcmp", Active: true}
	_ = store.Upsert(ctx, first)

	second := &entity.Source{AgencyName: "A Updated", RegionLabel: "R", BaseURL: "https://a.com", ParserID: "rcmp", Active: false}
	if err := store.Upsert(ctx, second); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second.ID = %d, want %d (same BaseURL should update, not insert)", second.ID, first.ID)
	}

	all, _ := store.List(ctx)
	if len(all) != 1 {
		t.Fatalf("expected 1 source after update-by-BaseURL, got %d", len(all))
	}
}

func TestSourceStore_Get_NotFound(t *testing.T) {
	store := memory.NewSourceStore()
	if _, err := store.Get(context.Background(), 999); err != entity.ErrNotFound {
		t.Errorf("Get() error = %v, want entity.ErrNotFound", err)
	}
}

func TestSourceStore_ActiveSourcesFor_FiltersInactiveAndRegion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSourceStore()
	_ = store.Upsert(ctx, &entity.Source{AgencyName: "Active R", RegionLabel: "R", BaseURL: "https://a.com", Active: true})
	_ = store.Upsert(ctx, &entity.Source{AgencyName: "Inactive R", RegionLabel: "R", BaseURL: "https://b.com", Active: false})
	_ = store.Upsert(ctx, &entity.Source{AgencyName: "Active Other", RegionLabel: "Other", BaseURL: "https://c.com", Active: true})

	got, err := store.ActiveSourcesFor(ctx, "R")
	if err != nil {
		t.Fatalf("ActiveSourcesFor() error = %v", err)
	}
	if len(got) != 1 || got[0].AgencyName != "Active R" {
		t.Errorf("ActiveSourcesFor() = %+v, want exactly [Active R]", got)
	}
}

func TestSourceStore_TouchCrawledAt(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSourceStore()
	source := &entity.Source{AgencyName: "A", RegionLabel: "R", BaseURL: "https://a.com"}
	_ = store.Upsert(ctx, source)

	now := time.Now()
	if err := store.TouchCrawledAt(ctx, source.ID, now); err != nil {
		t.Fatalf("TouchCrawledAt() error = %v", err)
	}
	got, _ := store.Get(ctx, source.ID)
	if got.LastCheckedAt == nil || !got.LastCheckedAt.Equal(now) {
		t.Errorf("LastCheckedAt = %v, want %v", got.LastCheckedAt, now)
	}
}

func TestArticleStore_UpsertRaw_InsertThenDedup(t *testing.T) {
	ctx := context.Background()
	sources := memory.NewSourceStore()
	articles := memory.NewArticleStore(sources)

	a := &entity.RawArticle{SourceID: 1, ExternalID: "hash1", URL: "https://a.com/1", TitleRaw: "T"}
	id1, inserted1, err := articles.UpsertRaw(ctx, a)
	if err != nil || !inserted1 {
		t.Fatalf("first UpsertRaw: id=%d inserted=%v err=%v", id1, inserted1, err)
	}

	dup := &entity.RawArticle{SourceID: 1, ExternalID: "hash1", URL: "https://a.com/1-alt", TitleRaw: "T2"}
	id2, inserted2, err := articles.UpsertRaw(ctx, dup)
	if err != nil {
		t.Fatalf("second UpsertRaw() error = %v", err)
	}
	if inserted2 {
		t.Error("expected second UpsertRaw with same (source_id, external_id) to report inserted=false")
	}
	if id2 != id1 {
		t.Errorf("id2 = %d, want %d (existing id)", id2, id1)
	}
}

func TestArticleStore_StoreEnriched_DuplicateFails(t *testing.T) {
	ctx := context.Background()
	sources := memory.NewSourceStore()
	articles := memory.NewArticleStore(sources)

	a := &entity.RawArticle{SourceID: 1, ExternalID: "hash1", URL: "https://a.com/1"}
	id, _, _ := articles.UpsertRaw(ctx, a)

	incident := &entity.EnrichedIncident{ID: id, Severity: entity.SeverityMedium, CrimeCategory: entity.CrimeCategoryUnknown}
	if err := articles.StoreEnriched(ctx, incident); err != nil {
		t.Fatalf("first StoreEnriched() error = %v", err)
	}
	if err := articles.StoreEnriched(ctx, incident); err == nil {
		t.Fatal("expected second StoreEnriched for the same id to fail")
	}
}

func TestArticleStore_ListIncidents_OrderedNewestFirst(t *testing.T) {
	ctx := context.Background()
	sources := memory.NewSourceStore()
	articles := memory.NewArticleStore(sources)

	source := &entity.Source{AgencyName: "A", RegionLabel: "R", BaseURL: "https://a.com"}
	_ = sources.Upsert(ctx, source)

	older := time.Now().Add(-time.Hour)
	newer := time.Now()

	a1 := &entity.RawArticle{SourceID: source.ID, ExternalID: "h1", PublishedAt: &older}
	id1, _, _ := articles.UpsertRaw(ctx, a1)
	_ = articles.StoreEnriched(ctx, &entity.EnrichedIncident{ID: id1, Severity: entity.SeverityLow, CrimeCategory: entity.CrimeCategoryUnknown})

	a2 := &entity.RawArticle{SourceID: source.ID, ExternalID: "h2", PublishedAt: &newer}
	id2, _, _ := articles.UpsertRaw(ctx, a2)
	_ = articles.StoreEnriched(ctx, &entity.EnrichedIncident{ID: id2, Severity: entity.SeverityHigh, CrimeCategory: entity.CrimeCategoryUnknown})

	rows, err := articles.ListIncidents(ctx, "R", 10)
	if err != nil {
		t.Fatalf("ListIncidents() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Article.ID != id2 {
		t.Errorf("expected newest article first, got id %d want %d", rows[0].Article.ID, id2)
	}
}

func TestArticleStore_CountIncidents(t *testing.T) {
	ctx := context.Background()
	sources := memory.NewSourceStore()
	articles := memory.NewArticleStore(sources)
	source := &entity.Source{AgencyName: "A", RegionLabel: "R", BaseURL: "https://a.com"}
	_ = sources.Upsert(ctx, source)

	a := &entity.RawArticle{SourceID: source.ID, ExternalID: "h1"}
	id, _, _ := articles.UpsertRaw(ctx, a)
	_ = articles.StoreEnriched(ctx, &entity.EnrichedIncident{ID: id, Severity: entity.SeverityLow, CrimeCategory: entity.CrimeCategoryUnknown})

	count, err := articles.CountIncidents(ctx, "R")
	if err != nil {
		t.Fatalf("CountIncidents() error = %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestJobStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.NewJobStore()

	job, err := store.Create(ctx, "R")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if job.Status != entity.JobPending {
		t.Fatalf("Status = %q, want pending", job.Status)
	}

	if err := store.MarkRunning(ctx, job.JobID); err != nil {
		t.Fatalf("MarkRunning() error = %v", err)
	}
	if err := store.MarkSucceeded(ctx, job.JobID, 3, 3); err != nil {
		t.Fatalf("MarkSucceeded() error = %v", err)
	}

	got, err := store.Get(ctx, job.JobID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != entity.JobSucceeded || got.NewArticles != 3 || got.TotalIncidents != 3 {
		t.Errorf("got = %+v, want succeeded with 3/3", got)
	}
}

func TestJobStore_MarkRunning_WrongPriorState(t *testing.T) {
	ctx := context.Background()
	store := memory.NewJobStore()
	job, _ := store.Create(ctx, "R")

	if err := store.MarkRunning(ctx, job.JobID); err != nil {
		t.Fatalf("first MarkRunning() error = %v", err)
	}
	if err := store.MarkRunning(ctx, job.JobID); err == nil {
		t.Fatal("expected second MarkRunning (pending->running already consumed) to fail")
	}
}

func TestJobStore_Get_NotFound(t *testing.T) {
	store := memory.NewJobStore()
	if _, err := store.Get(context.Background(), "missing"); err != entity.ErrNotFound {
		t.Errorf("Get() error = %v, want entity.ErrNotFound", err)
	}
}
