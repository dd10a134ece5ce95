package fetcher_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"blotter/internal/infra/fetcher"
)

func TestDefaultConfig(t *testing.T) {
	cfg := fetcher.DefaultConfig()

	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected Timeout=30s, got %v", cfg.Timeout)
	}
	if cfg.TotalBudget != 45*time.Second {
		t.Errorf("expected TotalBudget=45s, got %v", cfg.TotalBudget)
	}
	if cfg.MaxRetries != 2 {
		t.Errorf("expected MaxRetries=2, got %d", cfg.MaxRetries)
	}
	if !cfg.DenyPrivateIPs {
		t.Error("expected DenyPrivateIPs=true by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid, got error: %v", err)
	}
}

func TestConfigValidate_InvalidTimeout(t *testing.T) {
	cfg := fetcher.DefaultConfig()
	cfg.Timeout = 0

	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for zero timeout")
	}
}

func TestConfigValidate_InvalidMaxRetries(t *testing.T) {
	cfg := fetcher.DefaultConfig()
	cfg.MaxRetries = -1

	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for negative max retries")
	}
}

func TestHTTPFetcher_Fetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer srv.Close()

	cfg := fetcher.DefaultConfig()
	cfg.DenyPrivateIPs = false
	f := fetcher.NewHTTPFetcher(cfg, nil)

	result, err := f.Fetch(context.Background(), srv.URL, false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Status != http.StatusOK {
		t.Errorf("expected status 200, got %d", result.Status)
	}
	if !strings.Contains(string(result.Body), "hello") {
		t.Errorf("expected body to contain 'hello', got %q", result.Body)
	}
}

func TestHTTPFetcher_Fetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := fetcher.DefaultConfig()
	cfg.DenyPrivateIPs = false
	cfg.MaxRetries = 0
	f := fetcher.NewHTTPFetcher(cfg, nil)

	_, err := f.Fetch(context.Background(), srv.URL, false)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestHTTPFetcher_Fetch_PrivateIPRejected(t *testing.T) {
	cfg := fetcher.DefaultConfig()
	f := fetcher.NewHTTPFetcher(cfg, nil)

	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1/whatever", false)
	if err == nil {
		t.Fatal("expected error for loopback URL with DenyPrivateIPs enabled")
	}
}

func TestHTTPFetcher_Fetch_BrowserFallsBackWhenUnsupported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("rendered"))
	}))
	defer srv.Close()

	cfg := fetcher.DefaultConfig()
	cfg.DenyPrivateIPs = false
	f := fetcher.NewHTTPFetcher(cfg, nil)

	result, err := f.Fetch(context.Background(), srv.URL, true)
	if err != nil {
		t.Fatalf("expected fallback to plain HTTP to succeed, got %v", err)
	}
	if string(result.Body) != "rendered" {
		t.Errorf("expected body 'rendered', got %q", result.Body)
	}
}

type stubBrowserFetcher struct {
	result *fetcher.Result
	err    error
}

func (s *stubBrowserFetcher) Render(_ context.Context, _ string) (*fetcher.Result, error) {
	return s.result, s.err
}

func TestHTTPFetcher_Fetch_UsesInjectedBrowser(t *testing.T) {
	cfg := fetcher.DefaultConfig()
	browser := &stubBrowserFetcher{result: &fetcher.Result{Status: 200, Body: []byte("js-rendered")}}
	f := fetcher.NewHTTPFetcher(cfg, browser)

	result, err := f.Fetch(context.Background(), "https://example.com/listing", true)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(result.Body) != "js-rendered" {
		t.Errorf("expected body from injected browser, got %q", result.Body)
	}
}
