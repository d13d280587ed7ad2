package npbapi

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter caps the request rate towards the NPB API. Rapid selector
// changes in several browser tabs would otherwise hammer the local API.
type RateLimiter struct {
	limiter *rate.Limiter

	// set from Retry-After on a 429 response
	cooldownUntil time.Time
	mu            sync.Mutex
}

// NewRateLimiter creates a limiter allowing rps requests per second with the
// given burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// DefaultRateLimiter returns a limiter that tolerates a full page load
// (summary, teams, stats and both freshness calls) without waiting.
func DefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(5.0, 5)
}

// Wait blocks until the next request is allowed.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	waitUntil := r.cooldownUntil
	r.mu.Unlock()

	if time.Now().Before(waitUntil) {
		timer := time.NewTimer(time.Until(waitUntil))
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return r.limiter.Wait(ctx)
}

// SetCooldown pauses all requests for d.
func (r *RateLimiter) SetCooldown(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	until := time.Now().Add(d)
	if until.After(r.cooldownUntil) {
		r.cooldownUntil = until
	}
}
