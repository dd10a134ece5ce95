package parser

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"blotter/internal/domain/entity"
	"blotter/internal/infra/fetcher"
	"blotter/internal/pkg/canonical"

	"github.com/PuerkitoBio/goquery"
)

// articleDelay is the fixed minimum delay between article fetches
// within a single source (spec §4.3's politeness requirement). Kept as
// a var rather than a const so tests can shrink it.
var articleDelay = time.Second

// candidate is a discovered, absolutized, deduplicated listing-page
// anchor awaiting per-article extraction.
type candidate struct {
	url   string
	title string
}

// fetchArticle retrieves one candidate article page and extracts
// title/body/published_at/raw_html into a RawArticle, per spec §4.3
// step 3. The title is the article page's first <h1>; when that is
// empty, c.title (the listing page's anchor text) is used, and the
// page's <title> only when both are empty.
func fetchArticle(ctx context.Context, f fetcher.Fetcher, source entity.Source, c candidate) (entity.RawArticle, error) {
	result, err := f.Fetch(ctx, c.url, source.UseBrowser)
	if err != nil {
		return entity.RawArticle{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(result.Body))
	if err != nil {
		return entity.RawArticle{}, err
	}

	title := c.title
	if docTitle := collapseWhitespace(doc.Find("h1").First().Text()); docTitle != "" {
		title = docTitle
	}
	if title == "" {
		title = collapseWhitespace(doc.Find("title").First().Text())
	}

	body := extractBodyWithFallback(doc, result.Body, c.url)
	publishedAt := findPublishedAt(doc)

	article := entity.RawArticle{
		SourceID:    source.ID,
		ExternalID:  canonical.StableHash(source.ID, c.url, title),
		URL:         c.url,
		TitleRaw:    title,
		BodyRaw:     body,
		PublishedAt: publishedAt,
		RawHTML:     string(result.Body),
		CreatedAt:   time.Now(),
	}
	return article, nil
}

// findPublishedAt looks for a <time> element's datetime attribute
// first (wordpress-style article cards), then its text content, as a
// best-effort date source on the article page itself.
func findPublishedAt(doc *goquery.Document) *time.Time {
	timeEl := doc.Find("time").First()
	if timeEl.Length() == 0 {
		return nil
	}
	if dt, ok := timeEl.Attr("datetime"); ok {
		if t := parseDate(dt); t != nil {
			return t
		}
	}
	return parseDate(timeEl.Text())
}

// fetchArticles applies the per-source politeness delay between
// fetches and logs+skips individual article failures, per spec §4.3's
// failure semantics ("a failed article fetch is logged and skipped").
func fetchArticles(ctx context.Context, f fetcher.Fetcher, source entity.Source, candidates []candidate) []entity.RawArticle {
	articles := make([]entity.RawArticle, 0, len(candidates))
	for i, c := range candidates {
		if i > 0 {
			select {
			case <-ctx.Done():
				return articles
			case <-time.After(articleDelay):
			}
		}
		article, err := fetchArticle(ctx, f, source, c)
		if err != nil {
			slog.Warn("article fetch failed, skipping",
				slog.String("source", source.AgencyName),
				slog.String("url", c.url),
				slog.Any("error", err))
			continue
		}
		articles = append(articles, article)
	}
	return articles
}

// dedupeCandidates keeps the first occurrence of each absolute URL
// within one listing-page run, per spec §4.3 step 1.
func dedupeCandidates(candidates []candidate) []candidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.url == "" {
			continue
		}
		if _, ok := seen[c.url]; ok {
			continue
		}
		seen[c.url] = struct{}{}
		out = append(out, c)
	}
	return out
}

// stopAtWatermark truncates candidates at the first one whose date is
// known and at-or-before since, per spec §4.3's SHOULD-stop hint.
// Candidates with unknown dates never trigger the cut, but are dropped
// with everything else after it (correctness doesn't depend on this:
// C4 is authoritative on duplication).
func stopAtWatermark(articles []entity.RawArticle, since *time.Time) []entity.RawArticle {
	if since == nil {
		return articles
	}
	for i, a := range articles {
		if a.PublishedAt != nil && !a.PublishedAt.After(*since) {
			return articles[:i]
		}
	}
	return articles
}
