package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLimiter(t *testing.T, generalRPM int, authRPM int) (*RedisRateLimiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := NewRedisRateLimiter(client, generalRPM, authRPM, "test")
	limiter.now = func() time.Time { return time.Date(2026, 1, 1, 12, 0, 30, 0, time.UTC) }
	return limiter, mr
}

func TestRedisRateLimiter_Allow(t *testing.T) {
	limiter, mr := newRedisLimiter(t, 0, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(ctx, "192.0.2.1", ScopeAuth)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := limiter.Allow(ctx, "192.0.2.1", ScopeAuth)
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = limiter.Allow(ctx, "192.0.2.2", ScopeAuth)
	require.NoError(t, err)
	assert.True(t, allowed)

	key := "test:auth:192.0.2.1:" + "1767268800"
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestRedisRateLimiter_UnlimitedGeneralSkipsRedis(t *testing.T) {
	limiter, mr := newRedisLimiter(t, 0, 2)

	allowed, err := limiter.Allow(context.Background(), "192.0.2.1", ScopeGeneral)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Empty(t, mr.Keys())
}

func TestRedisRateLimiter_NewWindowResetsBudget(t *testing.T) {
	limiter, _ := newRedisLimiter(t, 1, 1)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "192.0.2.1", ScopeGeneral)
	require.NoError(t, err)
	assert.True(t, allowed)
	allowed, err = limiter.Allow(ctx, "192.0.2.1", ScopeGeneral)
	require.NoError(t, err)
	assert.False(t, allowed)

	limiter.now = func() time.Time { return time.Date(2026, 1, 1, 12, 1, 0, 0, time.UTC) }
	allowed, err = limiter.Allow(ctx, "192.0.2.1", ScopeGeneral)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisRateLimiter_FailsOpenWhenRedisIsDown(t *testing.T) {
	limiter, mr := newRedisLimiter(t, 5, 5)
	mr.Close()

	allowed, err := limiter.Allow(context.Background(), "192.0.2.1", ScopeAuth)
	require.Error(t, err)
	assert.True(t, allowed)
}
