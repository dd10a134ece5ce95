package parser

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"blotter/internal/domain/entity"
	"blotter/internal/infra/fetcher"

	"github.com/PuerkitoBio/goquery"
)

// articleCardSelector finds listing-page cards exposing a <time>
// element, the blog-style signal spec §4.2 uses to identify WordPress
// newsrooms.
const articleCardSelector = "article, .post, .hentry"

// WordPressParser handles blog-style sites whose article cards expose
// a <time> element for the publish date. Article bodies go through the
// same extractBodyWithFallback walk as every other family (<article>,
// <main>, .content, .post-content, .entry-content, <body>); no
// WordPress-specific container order is applied, so a page with both
// <article> and .entry-content takes its body from <article>.
type WordPressParser struct {
	fetcher fetcher.Fetcher
}

// NewWordPressParser constructs a WordPressParser backed by f.
func NewWordPressParser(f fetcher.Fetcher) *WordPressParser {
	return &WordPressParser{fetcher: f}
}

// FetchNew implements Parser.
func (p *WordPressParser) FetchNew(ctx context.Context, source entity.Source, since *time.Time) ([]entity.RawArticle, error) {
	listing, err := p.fetcher.Fetch(ctx, source.BaseURL, source.UseBrowser)
	if err != nil {
		return nil, fmt.Errorf("wordpress: listing fetch failed: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(listing.Body))
	if err != nil {
		return nil, fmt.Errorf("wordpress: parse listing: %w", err)
	}

	var candidates []candidate
	doc.Find(articleCardSelector).Each(func(_ int, card *goquery.Selection) {
		if card.Find("time").Length() == 0 {
			return
		}
		link := card.Find("a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		candidates = append(candidates, candidate{
			url:   makeAbsoluteURL(source.BaseURL, href),
			title: collapseWhitespace(link.Text()),
		})
	})

	candidates = dedupeCandidates(candidates)
	articles := fetchArticles(ctx, p.fetcher, source, candidates)
	return stopAtWatermark(articles, since), nil
}
