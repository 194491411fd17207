package crawler

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
)

// Politeness decides whether a frontier URL may be visited: not yet
// visited, within the depth limit, on a seed host and allowed by robots.txt.
type Politeness struct {
	state      *CrawlState
	maxDepth   int
	subdomains bool
	hosts      []seedHost
	robots     *RobotsCache // nil when robots.txt is not respected
}

type seedHost struct {
	host     string // host:port as in the URL
	hostname string
	port     string
}

// NewPoliteness returns a controller for the given seeds. robots may be nil.
func NewPoliteness(state *CrawlState, seeds []string, maxDepth int, subdomains bool, robots *RobotsCache) *Politeness {
	p := &Politeness{
		state:      state,
		maxDepth:   maxDepth,
		subdomains: subdomains,
		robots:     robots,
	}
	for _, seed := range seeds {
		u, err := url.Parse(seed)
		if err != nil || u.Host == "" {
			continue
		}
		h := seedHost{host: strings.ToLower(u.Host), hostname: strings.ToLower(u.Hostname()), port: u.Port()}
		if !p.hasHost(h.host) {
			p.hosts = append(p.hosts, h)
		}
	}
	return p
}

// ShouldVisit checks item in order: duplicate, depth, host, robots.
func (p *Politeness) ShouldVisit(ctx context.Context, item URLItem) Decision {
	if p.state.IsVisited(item.URL) {
		return RejectDuplicate
	}
	if item.Depth > p.maxDepth {
		return RejectDepth
	}
	if !p.AllowedHost(item.URL) {
		return RejectSubdomain
	}
	if p.robots != nil && !p.robots.Allowed(ctx, item.URL) {
		slog.Debug("Disallowed by robots.txt", "url", item.URL)
		return RejectRobots
	}
	return Admit
}

// AllowedHost reports whether rawURL is on a seed host, or on one of its
// subdomains when subdomains are enabled.
func (p *Politeness) AllowedHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Host)
	hostname := strings.ToLower(u.Hostname())

	for _, h := range p.hosts {
		if host == h.host {
			return true
		}
		if p.subdomains && u.Port() == h.port && strings.HasSuffix(hostname, "."+h.hostname) {
			return true
		}
	}
	return false
}

func (p *Politeness) hasHost(host string) bool {
	for _, h := range p.hosts {
		if h.host == host {
			return true
		}
	}
	return false
}
