// Package parser implements the Parser registry (C2) and parser family
// contract (C3): turning a listing page into a finite, newest-first
// sequence of RawArticle records.
package parser

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// minBodyLength is the threshold below which extractBody's selector walk
// is considered to have failed to find real article text, triggering the
// go-readability fallback in extractBodyWithFallback.
const minBodyLength = 200

// dateFormats is tried in order by parseDate. The set covers the common
// shapes newsroom pages render dates in; best-effort per spec, not
// exhaustive.
var dateFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"02 January 2006",
	"Monday, January 2, 2006",
	time.RFC1123,
	time.RFC1123Z,
	"01/02/2006",
	"01-02-2006",
}

// parseDate attempts every format in dateFormats in turn and returns the
// first one that parses. Returns nil (unknown) rather than falling back
// to time.Now() — unlike a listing scrape, an unparsed article date
// should not masquerade as "just published" and skew newest-first
// ordering or the since watermark.
func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return &t
		}
	}
	return nil
}

// bodySelectors is the priority order spec §4.3 requires: <article>,
// <main>, then named content containers, then <body> as the last
// resort.
var bodySelectors = []string{
	"article",
	"main",
	".content",
	".post-content",
	".entry-content",
	"body",
}

// stripSelectors are removed from the body container before text
// extraction so navigation chrome and embedded scripts don't pollute
// body_raw.
var stripSelectors = []string{"script", "style", "nav", "header", "footer"}

var whitespaceRun = regexp.MustCompile(`[ \t\r\n]+`)

// extractBody walks bodySelectors in priority order and returns the
// stripped, whitespace-collapsed text of the first container with any
// non-empty content.
func extractBody(doc *goquery.Document) string {
	for _, sel := range bodySelectors {
		container := doc.Find(sel).First()
		if container.Length() == 0 {
			continue
		}
		clone := container.Clone()
		for _, strip := range stripSelectors {
			clone.Find(strip).Remove()
		}
		text := strings.TrimSpace(clone.Text())
		if text != "" {
			return collapseWhitespace(text)
		}
	}
	return ""
}

// extractBodyWithFallback tries the priority-selector walk first, since
// it's cheap and preserves the site's own content boundaries. When that
// yields nothing usable (an unfamiliar template, body text under named
// containers the sites we know don't use), it falls back to
// go-readability's boilerplate-removal heuristic over the raw page,
// using its .TextContent, then its .Content, then the selector result
// again. rawHTML is re-parsed by readability because it wants
// its own io.Reader and a base *url.URL for link resolution; pageURL
// must be absolute.
func extractBodyWithFallback(doc *goquery.Document, rawHTML []byte, pageURL string) string {
	if body := extractBody(doc); len(body) >= minBodyLength {
		return body
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return extractBody(doc)
	}

	article, err := readability.FromReader(bytes.NewReader(rawHTML), parsed)
	if err != nil {
		return extractBody(doc)
	}

	if text := collapseWhitespace(article.TextContent); text != "" {
		return text
	}
	if article.Content != "" {
		return collapseWhitespace(article.Content)
	}
	return extractBody(doc)
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// makeAbsoluteURL resolves href against base, tolerating malformed
// input by returning href unchanged rather than failing the whole
// listing scrape over one bad anchor.
func makeAbsoluteURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	baseTrimmed := strings.TrimRight(base, "/")
	if strings.HasPrefix(href, "/") {
		return joinSchemeHost(baseTrimmed) + href
	}
	return baseTrimmed + "/" + href
}

// joinSchemeHost strips any path component from base, leaving
// scheme://host for resolving root-relative hrefs.
func joinSchemeHost(base string) string {
	idx := strings.Index(base, "://")
	if idx < 0 {
		return base
	}
	rest := base[idx+3:]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		rest = rest[:slash]
	}
	return base[:idx+3] + rest
}
