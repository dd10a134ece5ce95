package parser

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"blotter/internal/domain/entity"
	"blotter/internal/infra/fetcher"

	"github.com/PuerkitoBio/goquery"
)

// rcmpNodePath matches a path segment of the form /node/<digits>, the
// RCMP detachment newsroom content-type route.
var rcmpNodePath = regexp.MustCompile(`/node/\d+`)

// RCMPParser handles RCMP detachment newsrooms: JS-rendered listing
// pages (use_browser hint carried on the Source), candidate URLs
// restricted to anchors whose path contains /news/ or /node/<digits>.
type RCMPParser struct {
	fetcher fetcher.Fetcher
}

// NewRCMPParser constructs an RCMPParser backed by f.
func NewRCMPParser(f fetcher.Fetcher) *RCMPParser {
	return &RCMPParser{fetcher: f}
}

// FetchNew implements Parser.
func (p *RCMPParser) FetchNew(ctx context.Context, source entity.Source, since *time.Time) ([]entity.RawArticle, error) {
	listing, err := p.fetcher.Fetch(ctx, source.BaseURL, source.UseBrowser)
	if err != nil {
		if source.FeedURL != "" {
			return p.fetchViaFeed(ctx, source, since)
		}
		return nil, fmt.Errorf("rcmp: listing fetch failed: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(listing.Body))
	if err != nil {
		return nil, fmt.Errorf("rcmp: parse listing: %w", err)
	}

	var candidates []candidate
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		if !isRCMPArticlePath(href) {
			return
		}
		absolute := makeAbsoluteURL(source.BaseURL, href)
		candidates = append(candidates, candidate{
			url:   absolute,
			title: collapseWhitespace(sel.Text()),
		})
	})

	candidates = dedupeCandidates(candidates)
	if len(candidates) == 0 && source.FeedURL != "" {
		return p.fetchViaFeed(ctx, source, since)
	}

	articles := fetchArticles(ctx, p.fetcher, source, candidates)
	return stopAtWatermark(articles, since), nil
}

// isRCMPArticlePath accepts anchors whose path contains /news/ or
// /node/<digits>, per spec §4.2.
func isRCMPArticlePath(href string) bool {
	if strings.Contains(href, "/news/") {
		return true
	}
	return rcmpNodePath.MatchString(href)
}
