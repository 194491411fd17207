package crawler

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/sync/singleflight"
)

// RobotsCache fetches robots.txt once per host and answers path checks for
// one user agent. A robots.txt that cannot be fetched or parsed allows
// everything.
type RobotsCache struct {
	source    RobotsSource
	userAgent string
	onDelay   func(host string, delay time.Duration)

	mu     sync.RWMutex
	groups map[string]*robotstxt.Group
	fetch  singleflight.Group
}

// NewRobotsCache returns a cache reading robots.txt through source. onDelay,
// if set, is called with each host's declared Crawl-delay.
func NewRobotsCache(source RobotsSource, userAgent string, onDelay func(host string, delay time.Duration)) *RobotsCache {
	return &RobotsCache{
		source:    source,
		userAgent: userAgent,
		onDelay:   onDelay,
		groups:    make(map[string]*robotstxt.Group),
	}
}

// Allowed reports whether the user agent may fetch rawURL.
func (r *RobotsCache) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	group := r.group(ctx, u.Scheme, u.Host)
	if group == nil {
		return true
	}
	return group.Test(u.RequestURI())
}

func (r *RobotsCache) group(ctx context.Context, scheme, host string) *robotstxt.Group {
	r.mu.RLock()
	group, ok := r.groups[host]
	r.mu.RUnlock()
	if ok {
		return group
	}

	v, _, _ := r.fetch.Do(host, func() (interface{}, error) {
		group, cache := r.load(ctx, scheme, host)
		if cache {
			r.mu.Lock()
			r.groups[host] = group
			r.mu.Unlock()
		}
		return group, nil
	})
	return v.(*robotstxt.Group)
}

// load fetches and parses robots.txt for host. cache is false when the
// fetch was cut short by cancellation and should be retried.
func (r *RobotsCache) load(ctx context.Context, scheme, host string) (group *robotstxt.Group, cache bool) {
	robotsURL := scheme + "://" + host + "/robots.txt"

	resp, err := r.source.Get(ctx, robotsURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false
		}
		slog.Warn("Failed to fetch robots.txt, allowing all", "url", robotsURL, "error", err)
		return permissive(r.userAgent), true
	}
	if resp.StatusCode >= 500 {
		slog.Warn("robots.txt unavailable, allowing all", "url", robotsURL, "status_code", resp.StatusCode)
		return permissive(r.userAgent), true
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, resp.Body)
	if err != nil {
		slog.Warn("Failed to parse robots.txt, allowing all", "url", robotsURL, "error", err)
		return permissive(r.userAgent), true
	}

	group = data.FindGroup(r.userAgent)
	if group.CrawlDelay > 0 && r.onDelay != nil {
		slog.Debug("robots.txt crawl delay", "host", host, "delay", group.CrawlDelay)
		r.onDelay(host, group.CrawlDelay)
	}
	return group, true
}

func permissive(agent string) *robotstxt.Group {
	data, _ := robotstxt.FromStatusAndBytes(404, nil)
	return data.FindGroup(agent)
}
