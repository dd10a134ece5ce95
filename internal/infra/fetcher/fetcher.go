package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"blotter/internal/domain/entity"
	"blotter/internal/resilience/circuitbreaker"
	"blotter/internal/resilience/retry"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// politenessRate bounds outbound requests made through one HTTPFetcher,
// across all hosts it fetches from (there is no per-host limiter), so a
// crawl of a newsroom's listing plus article pages doesn't hammer it; spec
// §4.1 asks the fetcher to behave politely toward operator sites.
const politenessRate = 2 // requests per second, per HTTPFetcher instance

// Result is the successful outcome of a fetch: the response status,
// body, and the final URL reached after any redirects.
type Result struct {
	Status   int
	Body     []byte
	FinalURL string
}

// Fetcher is the C1 contract: retrieve an HTTP resource with retries,
// timeouts, and optional headless-browser rendering.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, useBrowser bool) (*Result, error)
}

// HTTPFetcher implements Fetcher over plain HTTP with retry, circuit
// breaking, and SSRF-safe redirect validation. When useBrowser is
// requested it delegates to an injected BrowserFetcher, falling back to
// plain HTTP with a logged warning if none is configured.
type HTTPFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         Config
	browser        BrowserFetcher
	limiter        *rate.Limiter
}

// BrowserFetcher renders a URL with a headless browser, waiting for
// network idle before returning the rendered HTML. No real headless
// browser dependency exists anywhere in the example corpus; production
// deployments inject a real implementation (e.g. a chromedp-backed
// adapter) — NewHTTPFetcher defaults to StubBrowserFetcher, which
// degrades to a plain HTTP fetch with a logged warning, matching the
// fail-open posture used elsewhere in the pipeline for optional
// capabilities.
type BrowserFetcher interface {
	Render(ctx context.Context, rawURL string) (*Result, error)
}

// StubBrowserFetcher reports ErrBrowserUnsupported so callers fall back
// to the plain HTTP path.
type StubBrowserFetcher struct{}

func (StubBrowserFetcher) Render(_ context.Context, _ string) (*Result, error) {
	return nil, ErrBrowserUnsupported
}

// NewHTTPFetcher creates a new HTTPFetcher with the given configuration.
// If browser is nil, StubBrowserFetcher is used.
func NewHTTPFetcher(config Config, browser BrowserFetcher) *HTTPFetcher {
	if browser == nil {
		browser = StubBrowserFetcher{}
	}

	f := &HTTPFetcher{
		circuitBreaker: circuitbreaker.New(circuitbreaker.SourceFetchConfig()),
		retryConfig:    retry.FetcherConfig(),
		config:         config,
		browser:        browser,
		limiter:        rate.NewLimiter(rate.Limit(politenessRate), politenessRate),
	}

	client := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= f.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			if f.config.DenyPrivateIPs {
				if err := entity.ValidateURL(req.URL.String()); err != nil {
					return fmt.Errorf("redirect target validation failed: %w", err)
				}
			}
			return nil
		},
	}
	f.client = client
	return f
}

// Fetch retrieves a URL, applying the total elapsed budget, retry with
// backoff, and circuit breaking described in spec §4.1.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, useBrowser bool) (*Result, error) {
	budgetCtx, cancel := context.WithTimeout(ctx, f.config.TotalBudget)
	defer cancel()

	if useBrowser {
		result, err := f.browser.Render(budgetCtx, rawURL)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, ErrBrowserUnsupported) {
			return nil, err
		}
		slog.Warn("headless browser unavailable, falling back to plain HTTP fetch",
			slog.String("url", rawURL))
	}

	if f.config.DenyPrivateIPs {
		if err := entity.ValidateURL(rawURL); err != nil {
			return nil, err
		}
	}

	if err := f.limiter.Wait(budgetCtx); err != nil {
		return nil, fmt.Errorf("%w: politeness rate limit wait: %v", ErrTimeout, err)
	}

	retryCfg := f.retryConfig
	retryCfg.MaxAttempts = f.config.MaxRetries + 1

	var result *Result
	retryErr := retry.WithBackoff(budgetCtx, retryCfg, func() error {
		cbResult, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(budgetCtx, rawURL)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("source fetch circuit breaker open, request rejected",
					slog.String("url", rawURL),
					slog.String("state", f.circuitBreaker.State().String()))
			}
			return err
		}
		result = cbResult.(*Result)
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}
	return result, nil
}

func (f *HTTPFetcher) doFetch(ctx context.Context, rawURL string) (interface{}, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: request exceeded %v", ErrTimeout, f.config.Timeout)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Err != nil {
			return nil, urlErr.Err
		}
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	limitedReader := io.LimitReader(resp.Body, f.config.MaxBodySize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > f.config.MaxBodySize {
		return nil, fmt.Errorf("%w: response size exceeds limit %d bytes", ErrBodyTooLarge, f.config.MaxBodySize)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Result{Status: resp.StatusCode, Body: body, FinalURL: finalURL}, nil
}

// bodyReader is a convenience for parsers that want an io.Reader over
// the fetched bytes without retaining the whole Result.
func bodyReader(r *Result) io.Reader {
	return bytes.NewReader(r.Body)
}
