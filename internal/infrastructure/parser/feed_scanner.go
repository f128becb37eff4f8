package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"ZipTales/internal/domain"
	"ZipTales/internal/scanner"
)

const userAgent = "ZipTales/1.0"

// FeedScanner reads RSS/Atom/JSON feeds listed for a site.
type FeedScanner struct {
	parser *gofeed.Parser
	logger *slog.Logger
}

var _ scanner.Scanner = (*FeedScanner)(nil)

// NewFeedScanner wires an HTTP client; a nil client gets a 20s timeout.
func NewFeedScanner(client *http.Client, logger *slog.Logger) *FeedScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	fp := gofeed.NewParser()
	fp.Client = client
	fp.UserAgent = userAgent

	return &FeedScanner{parser: fp, logger: logger}
}

// Name identifies the strategy inside the registry.
func (f *FeedScanner) Name() string {
	return "rss"
}

// Scan parses every feed URL and returns items published at or after req.Since.
// A broken feed is logged and skipped unless it is the only one.
func (f *FeedScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if len(req.URLs) == 0 {
		return nil, fmt.Errorf("no feed urls provided for site %s", req.SiteName)
	}

	source := req.Option("source", "")
	seen := map[string]struct{}{}
	var (
		results []domain.Article
		lastErr error
		okFeeds int
	)

	for _, feedURL := range req.URLs {
		feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			lastErr = fmt.Errorf("parse feed %s: %w", feedURL, err)
			if f.logger != nil {
				f.logger.Warn("feed skipped", "site", req.SiteName, "url", feedURL, "error", err)
			}
			continue
		}
		okFeeds++

		for _, item := range feed.Items {
			article, ok := feedItemToArticle(item, source)
			if !ok {
				continue
			}
			if !req.Since.IsZero() && article.PublishedAt.Before(req.Since) {
				continue
			}
			if _, dup := seen[article.ExternalID]; dup {
				continue
			}
			seen[article.ExternalID] = struct{}{}
			results = append(results, article)
		}
	}

	if okFeeds == 0 && lastErr != nil {
		return nil, lastErr
	}
	return results, nil
}

func feedItemToArticle(item *gofeed.Item, source string) (domain.Article, bool) {
	if item == nil {
		return domain.Article{}, false
	}

	externalID := strings.TrimSpace(item.GUID)
	if externalID == "" {
		externalID = strings.TrimSpace(item.Link)
	}
	if externalID == "" {
		return domain.Article{}, false
	}

	publishedAt := time.Now().UTC()
	switch {
	case item.PublishedParsed != nil:
		publishedAt = item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		publishedAt = item.UpdatedParsed.UTC()
	}

	article := domain.Article{
		ExternalID:  externalID,
		Title:       strings.TrimSpace(item.Title),
		Summary:     PlainText(item.Description),
		Content:     item.Content,
		Source:      source,
		URL:         item.Link,
		PublishedAt: publishedAt,
	}
	if item.Author != nil {
		article.Author = item.Author.Name
	}
	if len(item.Categories) > 0 {
		article.Category = item.Categories[0]
	}
	if article.Title == "" {
		article.Title = externalID
	}

	return article, true
}
