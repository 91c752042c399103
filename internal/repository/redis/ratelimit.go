package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	rateLimitPrefix = "ratelimit:"
)

// RateLimiter is a fixed-window counter per key
type RateLimiter struct {
	client *Client
	name   string
	limit  int
	window time.Duration
}

// NewRateLimiter creates a limiter allowing limit hits per window. name
// namespaces the keys so several limiters can share one Redis.
func NewRateLimiter(client *Client, name string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		name:   name,
		limit:  limit,
		window: window,
	}
}

func (r *RateLimiter) key(key string) string {
	return fmt.Sprintf("%s%s:%s", rateLimitPrefix, r.name, key)
}

// Allow counts a hit for key.
// Returns (allowed, remaining, resetTime, error)
func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	fullKey := r.key(key)

	pipe := r.client.rdb.Pipeline()

	// Increment counter
	incrCmd := pipe.Incr(ctx, fullKey)

	// Start the window on the first hit
	pipe.ExpireNX(ctx, fullKey, r.window)

	ttlCmd := pipe.PTTL(ctx, fullKey)

	_, err := pipe.Exec(ctx)
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, 0, time.Time{}, fmt.Errorf("failed to execute rate limit check: %w", err)
	}

	count := incrCmd.Val()
	remaining := r.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	ttl := ttlCmd.Val()
	if ttl <= 0 {
		ttl = r.window
	}

	return count <= int64(r.limit), remaining, time.Now().Add(ttl), nil
}

// Limit returns the number of hits allowed per window
func (r *RateLimiter) Limit() int {
	return r.limit
}
