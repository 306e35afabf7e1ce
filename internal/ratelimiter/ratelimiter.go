// Package ratelimiter throttles requests to remote backends with a token
// bucket.
package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter throttles requests using the token bucket algorithm.
//
// Tokens are added at a constant rate and each request consumes one. Burst
// is the bucket capacity, so short spikes above the sustained rate are
// served immediately.
//
// A nil *RateLimiter never throttles, so callers can hold one
// unconditionally.
//
// Thread safety:
// All methods are safe for concurrent use.
type RateLimiter struct {
	limiter *rate.Limiter
}

// New creates a RateLimiter.
//
// Parameters:
//   - requestsPerSecond: Sustained rate; 0 disables limiting and New returns nil
//   - burst: Bucket capacity; 0 defaults to requestsPerSecond
//
// Example:
//
//	// 100 req/s sustained, bursts of 200
//	limiter := New(100, 200)
func New(requestsPerSecond, burst uint) *RateLimiter {
	if requestsPerSecond == 0 {
		return nil
	}
	if burst == 0 {
		burst = requestsPerSecond
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), int(burst)),
	}
}

// Allow reports whether a request may proceed now, consuming a token if so.
func (r *RateLimiter) Allow() bool {
	if r == nil {
		return true
	}
	return r.limiter.Allow()
}

// Wait blocks until a token is available or ctx is done.
//
// Returns:
//   - nil if a token was acquired
//   - error if ctx was cancelled, or its deadline would expire before a
//     token becomes available
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r == nil {
		return ctx.Err()
	}
	return r.limiter.Wait(ctx)
}
