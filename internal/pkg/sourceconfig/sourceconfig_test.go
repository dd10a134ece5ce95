package sourceconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"blotter/internal/infra/adapter/persistence/memory"
)

const sampleYAML = `
sources:
  - agency_name: RCMP Surrey
    jurisdiction: Surrey
    region_label: BC
    source_type: rcmp
    base_url: https://example.test/surrey
    parser_id: rcmp
    active: true
    use_browser: false
  - agency_name: City of Example
    jurisdiction: Example
    region_label: BC
    source_type: municipal_list
    base_url: https://example.test/city
    parser_id: municipal_list
    active: true
`

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestYAMLProvider_Load_ParsesAllFields(t *testing.T) {
	path := writeTempConfig(t, sampleYAML)
	provider := NewYAMLProvider(path)

	sources, err := provider.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("len(sources) = %d, want 2", len(sources))
	}
	if sources[0].AgencyName != "RCMP Surrey" || sources[0].ParserID != "rcmp" || !sources[0].Active {
		t.Errorf("unexpected first source: %+v", sources[0])
	}
}

func TestSync_UpsertsIntoRepository(t *testing.T) {
	path := writeTempConfig(t, sampleYAML)
	provider := NewYAMLProvider(path)
	repo := memory.NewSourceStore()

	n, err := Sync(context.Background(), provider, repo)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if n != 2 {
		t.Errorf("n = %d, want 2", n)
	}

	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len(list) = %d, want 2", len(list))
	}
}

func TestYAMLProvider_Load_MissingFile(t *testing.T) {
	provider := NewYAMLProvider("/nonexistent/path/sources.yaml")
	if _, err := provider.Load(); err == nil {
		t.Error("expected error for missing file")
	}
}
