package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// proactiveRate keeps well under the authenticated 5000/hour limit.
	proactiveRate = 1.2

	// minBuffer is the number of remaining requests below which calls wait
	// for the window to reset.
	minBuffer = 10

	headerRateRemaining = "X-RateLimit-Remaining"
	headerRateReset     = "X-RateLimit-Reset"
)

// RateLimiter throttles requests and honours the limit GitHub reports in
// response headers.
type RateLimiter struct {
	mu        sync.Mutex
	remaining int
	resetTime time.Time
	bucket    *rate.Limiter
}

// NewRateLimiter creates a rate limiter.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		remaining: -1,
		bucket:    rate.NewLimiter(rate.Limit(proactiveRate), 5),
	}
}

// Wait blocks until a request may be made.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	remaining, resetTime := r.remaining, r.resetTime
	r.mu.Unlock()

	if remaining >= 0 && remaining < minBuffer && time.Now().Before(resetTime) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(resetTime)):
		}
	}
	return nil
}

// Update records the limit state from response headers.
func (r *RateLimiter) Update(resp *http.Response) {
	if resp == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if v := resp.Header.Get(headerRateRemaining); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			r.remaining = n
		}
	}
	if v := resp.Header.Get(headerRateReset); v != "" {
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
			r.resetTime = time.Unix(secs, 0)
		}
	}
}

// Remaining returns the last reported number of remaining requests, or -1.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}
