package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"blotter/internal/domain/entity"
	"blotter/internal/infra/fetcher"

	"github.com/PuerkitoBio/goquery"
)

// newsLikeSegments are path substrings that mark a candidate URL as
// plausibly an article, per spec §4.2.
var newsLikeSegments = []string{"news", "release", "media", "press"}

// pathBlacklist rejects obviously-not-article paths: pagination,
// category indexes, and site-chrome links that happen to share a
// news-like segment.
var pathBlacklist = []string{
	"/tag/", "/category/", "/page/", "/search", "/feed",
	"/login", "/subscribe", "/contact", "/about", "#",
}

// MunicipalListParser handles list/card layouts where article URLs
// share a news-like path segment, rejecting obviously-not-article
// paths by keyword blacklist.
type MunicipalListParser struct {
	fetcher      fetcher.Fetcher
	itemSelector string
}

// NewMunicipalListParser constructs a MunicipalListParser backed by f.
// itemSelector scopes the listing-page search to article cards; pass
// "" to search the whole document's anchors.
func NewMunicipalListParser(f fetcher.Fetcher, itemSelector string) *MunicipalListParser {
	return &MunicipalListParser{fetcher: f, itemSelector: itemSelector}
}

// FetchNew implements Parser.
func (p *MunicipalListParser) FetchNew(ctx context.Context, source entity.Source, since *time.Time) ([]entity.RawArticle, error) {
	listing, err := p.fetcher.Fetch(ctx, source.BaseURL, source.UseBrowser)
	if err != nil {
		return nil, fmt.Errorf("municipal_list: listing fetch failed: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(listing.Body))
	if err != nil {
		return nil, fmt.Errorf("municipal_list: parse listing: %w", err)
	}

	scope := doc.Selection
	if p.itemSelector != "" {
		scope = doc.Find(p.itemSelector)
	}

	anchors := scope.Find("a")
	anchors = anchors.AddSelection(scope.Filter("a"))

	var candidates []candidate
	anchors.Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || !isNewsLikePath(href) {
			return
		}
		candidates = append(candidates, candidate{
			url:   makeAbsoluteURL(source.BaseURL, href),
			title: collapseWhitespace(sel.Text()),
		})
	})

	candidates = dedupeCandidates(candidates)
	articles := fetchArticles(ctx, p.fetcher, source, candidates)
	return stopAtWatermark(articles, since), nil
}

// isNewsLikePath accepts a path containing a news-like segment that
// isn't also blacklisted.
func isNewsLikePath(href string) bool {
	lower := strings.ToLower(href)
	for _, bad := range pathBlacklist {
		if strings.Contains(lower, bad) {
			return false
		}
	}
	for _, good := range newsLikeSegments {
		if strings.Contains(lower, good) {
			return true
		}
	}
	return false
}
