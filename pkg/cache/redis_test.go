package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T, opts ...RedisOption) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCacheFromClient(client, opts...), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	require.NoError(t, c.Ping(ctx))

	_, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "k", []byte("svg bytes"), time.Hour))
	assert.True(t, mr.Exists(DefaultRedisPrefix+"k"))

	data, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte("svg bytes"), data)

	require.NoError(t, c.Delete(ctx, "k"))
	_, hit, _ = c.Get(ctx, "k")
	assert.False(t, hit)
}

func TestRedisCacheTTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	require.NoError(t, c.Set(ctx, "k", []byte("x"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisCachePrefixAndClear(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t, WithPrefix("test:"))

	require.NoError(t, mr.Set("other:key", "keep"))
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, []byte(k), 0))
	}
	assert.True(t, mr.Exists("test:a"))

	require.NoError(t, c.Clear(ctx))
	for _, k := range []string{"a", "b", "c"} {
		assert.False(t, mr.Exists("test:"+k))
	}
	assert.True(t, mr.Exists("other:key"), "keys outside the prefix must survive Clear")
}

func TestRedisCacheClientErrors(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)
	mr.Close()

	_, _, err := c.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, c.Set(ctx, "k", nil, 0))
	assert.Error(t, c.Ping(ctx))
}

func TestRedisCacheCloseLeavesSharedClientOpen(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestRedis(t)
	require.NoError(t, c.Close())
	assert.NoError(t, c.Ping(ctx))
}
