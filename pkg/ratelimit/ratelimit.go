// Package ratelimit provides Redis backed GCRA rate limiting shared across instances
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "smarthome:ratelimit:"

// RateLimiter defines the interface for rate limiting
type RateLimiter interface {
	// Allow reports whether key may proceed under limit
	Allow(ctx context.Context, key string, limit Limit) (*Result, error)
}

// Limit allows Rate events per Period with bursts up to Burst
type Limit struct {
	Rate   int
	Period time.Duration
	Burst  int
}

// IsZero reports whether the limit is unset
func (l Limit) IsZero() bool { return l.Rate <= 0 || l.Period <= 0 }

// PerSecond allows rate events per second; burst is raised to rate if lower
func PerSecond(rate, burst int) Limit {
	return Limit{Rate: rate, Period: time.Second, Burst: max(rate, burst)}
}

// PerMinute allows rate events per minute with no extra burst
func PerMinute(rate int) Limit {
	return Limit{Rate: rate, Period: time.Minute, Burst: rate}
}

// Result represents the result of a rate limit check
type Result struct {
	Allowed    bool
	Remaining  int
	ResetAfter time.Duration
	RetryAfter time.Duration
}

// RedisRateLimiter implements RateLimiter using redis_rate
type RedisRateLimiter struct {
	limiter *redis_rate.Limiter
}

// NewRedisRateLimiter creates a new RedisRateLimiter
func NewRedisRateLimiter(rdb *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{limiter: redis_rate.NewLimiter(rdb)}
}

// Allow consumes one token for key
func (r *RedisRateLimiter) Allow(ctx context.Context, key string, limit Limit) (*Result, error) {
	if limit.IsZero() {
		return &Result{Allowed: true, Remaining: -1}, nil
	}
	res, err := r.limiter.Allow(ctx, keyPrefix+key, redis_rate.Limit{
		Rate:   limit.Rate,
		Period: limit.Period,
		Burst:  limit.Burst,
	})
	if err != nil {
		return nil, fmt.Errorf("rate limit check %s: %w", key, err)
	}
	return &Result{
		Allowed:    res.Allowed > 0,
		Remaining:  res.Remaining,
		ResetAfter: res.ResetAfter,
		RetryAfter: res.RetryAfter,
	}, nil
}
