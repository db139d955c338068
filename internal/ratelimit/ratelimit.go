// Package ratelimit implements fixed-window limiters behind domain.RateLimiter.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"quiz-match/internal/config"
	"quiz-match/internal/domain"

	"github.com/redis/go-redis/v9"
)

// New picks the backend named by rate_limit.backend. client may be nil for "memory".
func New(cfg config.RateLimitConfig, client redis.Cmdable) (domain.RateLimiter, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryLimiter(cfg.Requests, cfg.Window), nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("redis rate limiter requires a redis client")
		}
		return NewRedisLimiter(client, cfg.Requests, cfg.Window), nil
	default:
		return nil, fmt.Errorf("unsupported rate limit backend %q", cfg.Backend)
	}
}

// MemoryLimiter counts requests per key in process memory. Each instance keeps its
// own windows, so limits are per replica.
type MemoryLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	windows   map[string]*fixedWindow
	lastSweep time.Time
	now       func() time.Time
}

type fixedWindow struct {
	start time.Time
	count int
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		windows: make(map[string]*fixedWindow),
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		w = &fixedWindow{start: now}
		l.windows[key] = w
	}
	if w.count >= l.limit {
		return false, nil
	}
	w.count++
	return true, nil
}

// sweep drops expired windows at most once per window length.
func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, key)
		}
	}
	l.lastSweep = now
}

// RedisLimiter shares windows across replicas with INCR and EXPIRE NX (Redis 7+).
type RedisLimiter struct {
	client redis.Cmdable
	limit  int
	window time.Duration
}

func NewRedisLimiter(client redis.Cmdable, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

// Allow counts the hit and arms the window expiry in one MULTI/EXEC. EXPIRE NX
// only sets a TTL the key lacks, so a key left without one heals on the next hit.
// Errors are returned to the caller, which decides whether to fail open.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return incr.Val() <= int64(l.limit), nil
}
