package parser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"blotter/internal/domain/entity"
	"blotter/internal/pkg/canonical"
	"blotter/internal/resilience/circuitbreaker"
	"blotter/internal/resilience/retry"

	"github.com/mmcdole/gofeed"
)

// fetchViaFeed is the RCMP parser's fallback path for sources that
// expose an RSS/Atom mirror of their newsroom listing: several
// detachment sites that render the HTML listing with client-side JS
// still publish a feed covering the same content, which sidesteps the
// need for a browser fetch entirely. Tried only when the source carries
// a feed_url and the HTML path either fails to fetch the listing or
// (FetchNew's own goquery walk) comes back with zero candidates; the
// source's use_browser flag is not consulted.
func (p *RCMPParser) fetchViaFeed(ctx context.Context, source entity.Source, since *time.Time) ([]entity.RawArticle, error) {
	var feed *gofeed.Feed

	cb := circuitbreaker.New(circuitbreaker.SourceFetchConfig())
	retryErr := retry.WithBackoff(ctx, retry.FetcherConfig(), func() error {
		result, err := cb.Execute(func() (interface{}, error) {
			fp := gofeed.NewParser()
			fp.UserAgent = "blotter-incident-crawler"
			return fp.ParseURLWithContext(source.FeedURL, ctx)
		})
		if err != nil {
			return err
		}
		feed = result.(*gofeed.Feed)
		return nil
	})
	if retryErr != nil {
		return nil, fmt.Errorf("rcmp: feed fallback fetch failed: %w", retryErr)
	}

	articles := make([]entity.RawArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		var publishedAt *time.Time
		if item.PublishedParsed != nil {
			publishedAt = item.PublishedParsed
		}

		body := item.Content
		if body == "" {
			body = item.Description
		}

		title := collapseWhitespace(item.Title)
		article := entity.RawArticle{
			SourceID:    source.ID,
			ExternalID:  canonical.StableHash(source.ID, item.Link, title),
			URL:         item.Link,
			TitleRaw:    title,
			BodyRaw:     collapseWhitespace(body),
			PublishedAt: publishedAt,
			RawHTML:     item.Content,
			CreatedAt:   time.Now(),
		}
		articles = append(articles, article)
	}

	slog.Debug("rcmp feed fallback used",
		slog.Int64("source_id", source.ID),
		slog.String("feed_url", source.FeedURL),
		slog.Int("items", len(articles)))

	return stopAtWatermark(articles, since), nil
}
