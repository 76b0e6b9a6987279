package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// RateLimiter is a fixed-window limiter keyed by caller. Without Redis it
// lets every request through.
type RateLimiter struct {
	helper *CacheHelper
	limit  int64
	window time.Duration
}

// NewRateLimiter allows limit requests per key within window. A non-positive
// limit disables limiting.
func NewRateLimiter(helper *CacheHelper, limit int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = RateLimitCacheConfig.TTL
	}
	return &RateLimiter{
		helper: helper,
		limit:  int64(limit),
		window: window,
	}
}

// Allow records a hit for key and reports whether it is within the limit
func (r *RateLimiter) Allow(ctx context.Context, key string) bool {
	if r == nil || r.limit <= 0 {
		return true
	}

	count, err := r.helper.Increment(ctx, key, r.window)
	if err != nil {
		if !errors.Is(err, ErrCacheNotAvailable) {
			slog.WarnContext(ctx, "Rate limiter unavailable, allowing request", "error", err)
		}
		return true
	}

	return count <= r.limit
}
