package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"strings"
	"time"

	"github.com/masahif/docskills/internal/parser"
)

var (
	// ErrNotHTML marks a response that is not an HTML document.
	ErrNotHTML = errors.New("response is not HTML")
	// ErrEmptyBody marks a successful response without content.
	ErrEmptyBody = errors.New("empty response body")
)

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// Page is a fetched HTML page and the links it contains.
type Page struct {
	URL        string // Requested URL
	FinalURL   string // After redirects
	StatusCode int
	Body       []byte
	Links      []string
	FetchedAt  time.Time
}

// HTTPFetcher downloads pages over HTTP and extracts their links.
type HTTPFetcher struct {
	client *Client
}

// NewHTTPFetcher returns a fetcher using client.
func NewHTTPFetcher(client *Client) *HTTPFetcher {
	return &HTTPFetcher{client: client}
}

// Fetch downloads url. Transport failures, non-2xx statuses, non-HTML
// content and empty bodies are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	resp, err := f.client.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}
	if !isHTML(resp.ContentType) {
		return nil, fmt.Errorf("%w: %s", ErrNotHTML, resp.ContentType)
	}
	if len(strings.TrimSpace(string(resp.Body))) == 0 {
		return nil, ErrEmptyBody
	}

	page := &Page{
		URL:        url,
		FinalURL:   resp.FinalURL,
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
		FetchedAt:  time.Now().UTC(),
	}

	extractor, err := parser.NewLinkExtractor(resp.FinalURL)
	if err != nil {
		return page, nil
	}
	links, err := extractor.Extract(resp.Body)
	if err != nil {
		slog.Debug("Link extraction failed", "url", url, "error", err)
		return page, nil
	}
	for _, l := range links {
		page.Links = append(page.Links, l.URL)
	}

	slog.Debug("Fetched page", "url", url, "status", resp.StatusCode, "links", len(page.Links),
		"ttfb", resp.Metrics.TTFB, "download_time", resp.Metrics.DownloadTime)
	return page, nil
}

// isHTML accepts HTML and XHTML. A missing content type is sniffed as HTML.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
