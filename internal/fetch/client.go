// Package fetch is the HTTP side of a crawl: it downloads pages and
// robots.txt files and reports what it found.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"time"
)

// MaxBodySize caps the bytes read from one response.
const MaxBodySize = 10 << 20

// ErrTooManyRedirects is returned after more than ten redirects.
var ErrTooManyRedirects = errors.New("too many redirects")

// Client performs GET requests with a fixed user agent and timeout.
type Client struct {
	client    *http.Client
	userAgent string
}

// Metrics holds request timings.
type Metrics struct {
	TTFB         time.Duration // Time to first byte
	DownloadTime time.Duration // Until the body was read
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode  int
	Header      http.Header
	Body        []byte
	ContentType string
	FinalURL    string // After following redirects
	Metrics     Metrics
}

// NewClient creates a client. timeout bounds a whole request, body included.
func NewClient(userAgent string, timeout time.Duration) *Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return ErrTooManyRedirects
			}
			return nil
		},
	}

	return &Client{client: client, userAgent: userAgent}
}

// UserAgent returns the agent string sent with every request.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// Get fetches url. Any status code is returned as a Response; only transport
// failures are errors.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	var firstByte time.Time
	trace := &httptrace.ClientTrace{
		GotFirstResponseByte: func() {
			firstByte = time.Now()
		},
	}
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), trace))

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var metrics Metrics
	if !firstByte.IsZero() {
		metrics.TTFB = firstByte.Sub(start)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	metrics.DownloadTime = time.Since(start)

	return &Response{
		StatusCode:  resp.StatusCode,
		Header:      resp.Header,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
		Metrics:     metrics,
	}, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}
