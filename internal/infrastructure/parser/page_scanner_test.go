package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ZipTales/internal/scanner"
)

func TestParseEntry(t *testing.T) {
	t.Parallel()

	html := `
	<article>
	  <h2>Sample Title</h2>
	  <a href="/news/42">read more</a>
	  <p>Officials confirmed the report.</p>
	  <time datetime="2025-11-08T10:00:00Z">8 Nov</time>
	</article>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	base, _ := url.Parse("https://news.example/latest")

	article, ok := parseEntry(doc.Find("article").First(), base, selectorsFrom(scanner.Request{}), "News Example")
	if !ok {
		t.Fatalf("parseEntry rejected a valid entry")
	}

	if article.ExternalID != "https://news.example/news/42" {
		t.Fatalf("unexpected id: %s", article.ExternalID)
	}
	if article.Title != "Sample Title" {
		t.Fatalf("unexpected title: %s", article.Title)
	}
	if article.Summary != "Officials confirmed the report." {
		t.Fatalf("unexpected summary: %s", article.Summary)
	}
	if !article.PublishedAt.Equal(time.Date(2025, time.November, 8, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected published date: %s", article.PublishedAt)
	}
	if article.Source != "News Example" {
		t.Fatalf("unexpected source: %s", article.Source)
	}
}

func TestParsePublished(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"2025-03-03", "3 Mar 2025", "March 3, 2025", "2025-03-03T00:00:00Z"} {
		got, ok := parsePublished(raw)
		if !ok || got.Format("2006-01-02") != "2025-03-03" {
			t.Fatalf("parsePublished(%q) = %v, %v", raw, got, ok)
		}
	}
	if _, ok := parsePublished("yesterday"); ok {
		t.Fatalf("expected failure for free-form text")
	}
}

func TestPageScannerFollowsPagesUntilSince(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"/latest": `<html><body>
			<article><h2>Newest</h2><a href="/a/3">x</a><time datetime="2025-03-05">5 Mar</time></article>
			<article><h2>No link</h2></article>
			<article><h2>Newer</h2><a href="/a/2">x</a><time datetime="2025-03-04">4 Mar</time></article>
			<a rel="next" href="/latest?page=2">next</a>
		</body></html>`,
		"/latest?page=2": `<html><body>
			<article><h2>Newer again</h2><a href="/a/2">x</a><time datetime="2025-03-04">4 Mar</time></article>
			<article><h2>In range</h2><a href="/a/1">x</a><time datetime="2025-03-02">2 Mar</time></article>
			<article><h2>Too old</h2><a href="/a/0">x</a><time datetime="2025-02-01">1 Feb</time></article>
			<a rel="next" href="/latest?page=3">next</a>
		</body></html>`,
	}

	var (
		mu        sync.Mutex
		requested []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requested = append(requested, r.URL.RequestURI())
		mu.Unlock()
		body, ok := pages[r.URL.RequestURI()]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	ps := NewPageScanner(server.Client(), nil)
	req := scanner.Request{
		Since:    time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		SiteName: "example",
		URLs:     []string{server.URL + "/latest"},
	}

	articles, err := ps.Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("scan returned error: %v", err)
	}

	if len(articles) != 3 {
		t.Fatalf("expected 3 articles, got %d: %+v", len(articles), articles)
	}
	if articles[2].Title != "In range" {
		t.Fatalf("unexpected last article: %s", articles[2].Title)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(requested) != 2 {
		t.Fatalf("scanner should stop after the page with an old entry, requested %v", requested)
	}
}

func TestPageScannerErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	ps := NewPageScanner(server.Client(), nil)
	if ps.Name() != "html" {
		t.Fatalf("unexpected name %s", ps.Name())
	}
	if _, err := ps.Scan(context.Background(), scanner.Request{SiteName: "x"}); err == nil {
		t.Fatalf("expected error without urls")
	}
	if _, err := ps.Scan(context.Background(), scanner.Request{SiteName: "x", URLs: []string{server.URL}}); err == nil {
		t.Fatalf("expected error for non-200 page")
	}
}

func TestPageScannerSkipsBrokenStartPages(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/news":
			_, _ = w.Write([]byte(`<html><body>
				<article><h2>Kept</h2><a href="/a/1">x</a><time datetime="2025-03-05">5 Mar</time></article>
				<a rel="next" href="/news/gone">next</a>
			</body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	ps := NewPageScanner(server.Client(), nil)
	req := scanner.Request{
		SiteName: "example",
		URLs:     []string{server.URL + "/missing", server.URL + "/news"},
	}

	articles, err := ps.Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("one broken start page should not fail the site: %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "Kept" {
		t.Fatalf("unexpected articles: %+v", articles)
	}

	req.URLs = []string{server.URL + "/missing", server.URL + "/also-missing"}
	if _, err := ps.Scan(context.Background(), req); err == nil {
		t.Fatalf("expected error when every start page fails")
	}
}
