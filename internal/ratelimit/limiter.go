package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "orderdesk:ratelimit:"

// NewRedisClient creates a client for addr. A redis:// or rediss:// scheme is
// stripped. A failed ping is logged and does not stop start-up.
func NewRedisClient(ctx context.Context, addr, password string, db int) *redis.Client {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsedAddr = strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis ping failed on initialization", "addr", parsedAddr, "error", err)
	} else {
		slog.Info("redis connection established", "addr", parsedAddr)
	}
	return client
}

// Limiter is a fixed-window request counter kept in Redis
type Limiter struct {
	client redis.Cmdable
	limit  int
	window time.Duration
}

func NewLimiter(client redis.Cmdable, limit int, window time.Duration) *Limiter {
	return &Limiter{client: client, limit: limit, window: window}
}

// Allow counts one request for key in the current window and reports whether
// it is within the limit. If the counter cannot be read the request is allowed
// and the error returned. A counter over the limit that has lost its expiry
// gets one again, so a client is never blocked past a single window.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	cacheKey := keyPrefix + key
	count, err := l.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, fmt.Errorf("increment %s: %w", cacheKey, err)
	}

	// the window starts with the first request
	if count == 1 {
		if err := l.client.Expire(ctx, cacheKey, l.window).Err(); err != nil {
			return true, fmt.Errorf("expire %s: %w", cacheKey, err)
		}
	}

	if count <= int64(l.limit) {
		return true, nil
	}

	ttl, err := l.client.TTL(ctx, cacheKey).Result()
	if err != nil {
		return false, fmt.Errorf("ttl %s: %w", cacheKey, err)
	}
	// -1: the key exists without an expiry
	if ttl == -1 {
		if err := l.client.Expire(ctx, cacheKey, l.window).Err(); err != nil {
			return false, fmt.Errorf("expire %s: %w", cacheKey, err)
		}
	}
	return false, nil
}

func (l *Limiter) Window() time.Duration {
	return l.window
}

// Ping checks the Redis connection
func (l *Limiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
