package crawler

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter spaces requests to the same host by at least a delay. Hosts
// are independent of each other.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	delays   map[string]time.Duration
	mu       sync.Mutex
	delay    time.Duration
}

// NewRateLimiter creates a limiter with the given per-host spacing. A zero
// delay disables limiting.
func NewRateLimiter(defaultDelay time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		delays:   make(map[string]time.Duration),
		delay:    defaultDelay,
	}
}

// Wait blocks until a request to urlStr's host may be sent.
func (r *RateLimiter) Wait(ctx context.Context, urlStr string) error {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return err
	}
	return r.getLimiter(parsedURL.Host).Wait(ctx)
}

// SetDomainDelay widens the spacing for domain. A delay at or below the
// current one is ignored.
func (r *RateLimiter) SetDomainDelay(domain string, delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.delays[domain]
	if !ok {
		current = r.delay
	}
	if delay <= current {
		return
	}

	r.delays[domain] = delay
	if limiter, ok := r.limiters[domain]; ok {
		limiter.SetLimit(rate.Every(delay))
		return
	}
	r.limiters[domain] = newLimiter(delay)
}

// DomainDelay returns the spacing in effect for domain.
func (r *RateLimiter) DomainDelay(domain string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.delays[domain]; ok {
		return d
	}
	return r.delay
}

func (r *RateLimiter) getLimiter(domain string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limiter, exists := r.limiters[domain]; exists {
		return limiter
	}
	limiter := newLimiter(r.delay)
	r.limiters[domain] = limiter
	return limiter
}

func newLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}
