package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/bingkai/internal/clock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTTLCacheExpires(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))
	c := NewTTLCacheWithClock[string, int](fake)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, 0)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	fake.Advance(2 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)

	v, ok = c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())

	c.Delete("b")
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestNilTTLCache(t *testing.T) {
	var c *TTLCache[string, int]
	c.Set("a", 1, time.Minute)
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestNoopCache(t *testing.T) {
	var c Cache[string, int] = NoopCache[string, int]{}
	c.Set("a", 1, time.Minute)
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestAssetCacheMemoryTier(t *testing.T) {
	c := NewAssetCache(nil, nil, time.Minute, zap.NewNop())
	ctx := context.Background()

	_, ok := c.Get(ctx, "file://fonts/regular.ttf")
	assert.False(t, ok)

	c.Set(ctx, "file://fonts/regular.ttf", []byte("ttf"))
	data, ok := c.Get(ctx, "file://fonts/regular.ttf")
	assert.True(t, ok)
	assert.Equal(t, []byte("ttf"), data)
}

func TestAssetCacheRedisDownIsAMiss(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	c := NewAssetCache(NoopCache[string, []byte]{}, rdb, time.Minute, zap.NewNop())
	c.Set(context.Background(), "ref", []byte("x"))
	_, ok := c.Get(context.Background(), "ref")
	assert.False(t, ok)
}

func TestAssetKey(t *testing.T) {
	assert.Equal(t, "bingkai:asset:da39a3ee5e6b4b0d3255bfef95601890afd80709", AssetKey(""))
}
