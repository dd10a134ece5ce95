package mapview

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"blotter/internal/domain/entity"
	"blotter/internal/infra/adapter/persistence/memory"
	"blotter/internal/usecase/query"
)

func lat(f float64) *float64 { return &f }

func TestHandlers_Get_ExcludesIncidentsWithoutCoordinates(t *testing.T) {
	sources := memory.NewSourceStore()
	articles := memory.NewArticleStore(sources)
	source := &entity.Source{AgencyName: "RCMP Surrey", RegionLabel: "BC", BaseURL: "http://example.test", ParserID: "rcmp"}
	if err := sources.Upsert(context.Background(), source); err != nil {
		t.Fatalf("upsert source: %v", err)
	}

	withCoords := &entity.RawArticle{SourceID: source.ID, ExternalID: "e1", TitleRaw: "Has coords"}
	id1, _, err := articles.UpsertRaw(context.Background(), withCoords)
	if err != nil {
		t.Fatalf("upsert raw 1: %v", err)
	}
	if err := articles.StoreEnriched(context.Background(), &entity.EnrichedIncident{
		ID: id1, Severity: entity.SeverityLow, CrimeCategory: entity.CrimeCategoryOther,
		Lat: lat(49.1), Lng: lat(-122.8),
	}); err != nil {
		t.Fatalf("store enriched 1: %v", err)
	}

	withoutCoords := &entity.RawArticle{SourceID: source.ID, ExternalID: "e2", TitleRaw: "No coords"}
	id2, _, err := articles.UpsertRaw(context.Background(), withoutCoords)
	if err != nil {
		t.Fatalf("upsert raw 2: %v", err)
	}
	if err := articles.StoreEnriched(context.Background(), &entity.EnrichedIncident{
		ID: id2, Severity: entity.SeverityLow, CrimeCategory: entity.CrimeCategoryOther,
	}); err != nil {
		t.Fatalf("store enriched 2: %v", err)
	}

	svc := query.NewService(articles)
	h := Handlers{Svc: svc, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	req := httptest.NewRequest(http.MethodGet, "/api/map?region=BC", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Code = %v, want %v, body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var body mapResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Markers) != 1 {
		t.Fatalf("len(Markers) = %d, want 1", len(body.Markers))
	}
	if body.Markers[0].IncidentID != id1 {
		t.Errorf("IncidentID = %d, want %d", body.Markers[0].IncidentID, id1)
	}
}
