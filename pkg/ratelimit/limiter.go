package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result reports the outcome of one Allow call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter is a fixed-window request limiter backed by Redis, shared across
// server instances. Unlike the guest message ledger it fails OPEN: a Redis
// outage should not take chat down, the limiter is abuse shaping only while
// the ledger is the actual quota.
type Limiter struct {
	rdb    *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewLimiter(rdb *redis.Client, prefix string, limit int, window time.Duration) *Limiter {
	return &Limiter{
		rdb:    rdb,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

// Allow counts one request for identifier and reports whether it is within
// the window limit. The INCR+EXPIRE pair runs in a pipeline so the key always
// gets a TTL even on first touch.
func (l *Limiter) Allow(ctx context.Context, identifier string) (Result, error) {
	windowStart := time.Now().Truncate(l.window)
	key := fmt.Sprintf("%s:%s:%d", l.prefix, identifier, windowStart.Unix())

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	count := int(incr.Val())
	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   count <= l.limit,
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   windowStart.Add(l.window),
	}, nil
}
