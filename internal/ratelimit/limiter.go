package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// Limit is a token bucket: PerSecond requests on average, Burst at once.
type Limit struct {
	PerSecond float64
	Burst     int
}

func (l Limit) limiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(l.PerSecond), l.Burst)
}

// HostLimiter throttles outbound requests per upstream host. It only ever
// waits; it never drops or retries a request. Hosts without an explicit
// limit share the fallback settings but get their own bucket.
type HostLimiter struct {
	mu       sync.RWMutex
	buckets  map[string]*rate.Limiter
	fallback Limit
}

func NewHostLimiter(fallback Limit) *HostLimiter {
	return &HostLimiter{
		buckets:  make(map[string]*rate.Limiter),
		fallback: fallback,
	}
}

// SetLimit gives the host of endpoint its own bucket, replacing any earlier one.
func (h *HostLimiter) SetLimit(endpoint string, l Limit) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("rate limit for %q: %w", endpoint, err)
	}
	if u.Host == "" {
		return fmt.Errorf("rate limit for %q: no host", endpoint)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.buckets[u.Host] = l.limiter()
	return nil
}

func (h *HostLimiter) bucket(host string) *rate.Limiter {
	h.mu.RLock()
	b, ok := h.buckets[host]
	h.mu.RUnlock()
	if ok {
		return b
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if b, ok = h.buckets[host]; ok {
		return b
	}
	b = h.fallback.limiter()
	h.buckets[host] = b
	return b
}

// Wait blocks until host may be called or ctx is done.
func (h *HostLimiter) Wait(ctx context.Context, host string) error {
	return h.bucket(host).Wait(ctx)
}
