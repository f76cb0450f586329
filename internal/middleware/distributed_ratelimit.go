package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const rateLimitWindow = time.Minute

// RedisRateLimiter shares fixed one-minute windows across instances through
// Redis. The window start is part of the key, so the counter and its expiry
// are written in one pipeline.
type RedisRateLimiter struct {
	redis      *redis.Client
	prefix     string
	generalRPM int
	authRPM    int
	now        func() time.Time
}

func NewRedisRateLimiter(client *redis.Client, generalRPM int, authRPM int, prefix string) *RedisRateLimiter {
	if authRPM <= 0 {
		authRPM = defaultAuthRPM
	}
	if prefix == "" {
		prefix = "ratelimit"
	}

	return &RedisRateLimiter{
		redis:      client,
		prefix:     prefix,
		generalRPM: generalRPM,
		authRPM:    authRPM,
		now:        time.Now,
	}
}

// Allow returns true with a non-nil error when Redis is unreachable.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string, scope Scope) (bool, error) {
	limit := l.generalRPM
	if scope == ScopeAuth {
		limit = l.authRPM
	}
	if limit <= 0 {
		return true, nil
	}

	window := l.now().Truncate(rateLimitWindow).Unix()
	redisKey := fmt.Sprintf("%s:%s:%s:%d", l.prefix, scope, key, window)

	pipe := l.redis.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rateLimitWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, fmt.Errorf("redis error: %w", err)
	}

	return incr.Val() <= int64(limit), nil
}
