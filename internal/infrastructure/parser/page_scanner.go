package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ZipTales/internal/domain"
	"ZipTales/internal/scanner"
)

const defaultMaxPages = 5

var publishedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2 Jan 2006",
	"January 2, 2006",
}

// PageScanner crawls HTML list pages (newest first) using CSS selectors from site options.
//
// Options: item, title, link, summary, time, next (selectors) and maxPages.
type PageScanner struct {
	client *http.Client
	logger *slog.Logger
}

var _ scanner.Scanner = (*PageScanner)(nil)

// NewPageScanner wires an HTTP client; a nil client gets a 20s timeout.
func NewPageScanner(client *http.Client, logger *slog.Logger) *PageScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &PageScanner{client: client, logger: logger}
}

// Name identifies the strategy inside the registry.
func (p *PageScanner) Name() string {
	return "html"
}

type pageSelectors struct {
	item    string
	title   string
	link    string
	summary string
	time    string
	next    string
}

func selectorsFrom(req scanner.Request) pageSelectors {
	return pageSelectors{
		item:    req.Option("item", "article"),
		title:   req.Option("title", "h1, h2, h3"),
		link:    req.Option("link", "a[href]"),
		summary: req.Option("summary", "p"),
		time:    req.Option("time", "time"),
		next:    req.Option("next", `a[rel="next"]`),
	}
}

// Scan walks each start URL, following "next" links until an entry older than req.Since shows up.
// A start URL whose first page fails is logged and skipped unless every start URL fails.
func (p *PageScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if len(req.URLs) == 0 {
		return nil, fmt.Errorf("no pages provided for site %s", req.SiteName)
	}

	maxPages := defaultMaxPages
	if v, err := strconv.Atoi(req.Option("maxPages", "")); err == nil && v > 0 {
		maxPages = v
	}

	sel := selectorsFrom(req)
	source := req.Option("source", "")
	results := make([]domain.Article, 0)
	seen := map[string]struct{}{}
	var (
		lastErr error
		okPages int
	)

	for _, start := range req.URLs {
		articles, err := p.crawl(ctx, req, start, sel, source, maxPages)
		if err != nil {
			lastErr = fmt.Errorf("site %s: %w", req.SiteName, err)
			p.warn("start page skipped", "site", req.SiteName, "url", start, "error", err)
			continue
		}
		okPages++

		for _, article := range articles {
			if _, ok := seen[article.ExternalID]; ok {
				continue
			}
			seen[article.ExternalID] = struct{}{}
			results = append(results, article)
		}
	}

	if okPages == 0 && lastErr != nil {
		return nil, lastErr
	}
	return results, nil
}

// crawl follows one pagination chain. Only a failure on the first page is an error;
// a later failure ends the chain with what was collected so far.
func (p *PageScanner) crawl(ctx context.Context, req scanner.Request, start string, sel pageSelectors, source string, maxPages int) ([]domain.Article, error) {
	var collected []domain.Article
	pageURL := start
	for page := 0; page < maxPages && pageURL != ""; page++ {
		base, doc, err := p.fetchPage(ctx, pageURL)
		if err != nil {
			if page == 0 {
				return nil, err
			}
			p.warn("pagination stopped", "site", req.SiteName, "url", pageURL, "error", err)
			break
		}

		pageArticles, shouldContinue := extractArticles(doc, base, sel, source, req.Since)
		collected = append(collected, pageArticles...)
		if p.logger != nil {
			p.logger.Debug("page scanned", "site", req.SiteName, "url", pageURL, "articles", len(pageArticles))
		}
		if !shouldContinue {
			break
		}
		pageURL = nextPageURL(doc, base, sel.next)
	}
	return collected, nil
}

func (p *PageScanner) fetchPage(ctx context.Context, pageURL string) (*url.URL, *goquery.Document, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid page url %s: %w", pageURL, err)
	}
	doc, err := p.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, nil, err
	}
	return base, doc, nil
}

func (p *PageScanner) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *PageScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", pageURL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func extractArticles(doc *goquery.Document, base *url.URL, sel pageSelectors, source string, since time.Time) ([]domain.Article, bool) {
	var (
		collected    []domain.Article
		continueScan = true
	)

	doc.Find(sel.item).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		article, ok := parseEntry(item, base, sel, source)
		if !ok {
			return true
		}
		if !since.IsZero() && article.PublishedAt.Before(since) {
			continueScan = false
			return false
		}
		collected = append(collected, article)
		return true
	})

	return collected, continueScan
}

func parseEntry(item *goquery.Selection, base *url.URL, sel pageSelectors, source string) (domain.Article, bool) {
	href, exists := item.Find(sel.link).First().Attr("href")
	if !exists || strings.TrimSpace(href) == "" {
		return domain.Article{}, false
	}
	link := resolveURL(base, href)

	title := collapseSpaces(item.Find(sel.title).First().Text())
	if title == "" {
		title = collapseSpaces(item.Find(sel.link).First().Text())
	}

	summary := collapseSpaces(item.Find(sel.summary).First().Text())

	publishedAt := time.Now().UTC()
	timeNode := item.Find(sel.time).First()
	stamp, _ := timeNode.Attr("datetime")
	if stamp == "" {
		stamp = timeNode.Text()
	}
	if parsed, ok := parsePublished(stamp); ok {
		publishedAt = parsed
	}

	return domain.Article{
		ExternalID:  link,
		Title:       title,
		Summary:     summary,
		Source:      source,
		URL:         link,
		PublishedAt: publishedAt,
	}, true
}

func parsePublished(raw string) (time.Time, bool) {
	raw = collapseSpaces(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range publishedLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

func nextPageURL(doc *goquery.Document, base *url.URL, selector string) string {
	href, exists := doc.Find(selector).First().Attr("href")
	if !exists || strings.TrimSpace(href) == "" {
		return ""
	}
	return resolveURL(base, href)
}

func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
