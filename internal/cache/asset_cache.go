package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultAssetTTL = time.Hour

// AssetCache keeps resource bytes (fonts, templates) between invoice runs.
type AssetCache interface {
	Get(ctx context.Context, ref string) ([]byte, bool)
	Set(ctx context.Context, ref string, data []byte)
}

type assetCache struct {
	memory Cache[string, []byte]
	redis  redis.UniversalClient
	ttl    time.Duration
	log    *zap.Logger
}

// NewAssetCache returns a two-tier cache: in-process first, then Redis when
// rdb is not nil. Redis failures are logged and treated as misses.
func NewAssetCache(memory Cache[string, []byte], rdb redis.UniversalClient, ttl time.Duration, log *zap.Logger) AssetCache {
	if memory == nil {
		memory = NewTTLCache[string, []byte]()
	}
	if ttl <= 0 {
		ttl = defaultAssetTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &assetCache{memory: memory, redis: rdb, ttl: ttl, log: log.Named("cache.asset")}
}

// AssetKey is the Redis key holding the bytes of ref.
func AssetKey(ref string) string {
	sum := sha1.Sum([]byte(ref))
	return "bingkai:asset:" + hex.EncodeToString(sum[:])
}

func (c *assetCache) Get(ctx context.Context, ref string) ([]byte, bool) {
	if data, ok := c.memory.Get(ref); ok {
		return data, true
	}
	if c.redis == nil {
		return nil, false
	}

	data, err := c.redis.Get(ctx, AssetKey(ref)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("redis asset lookup failed", zap.String("ref", ref), zap.Error(err))
		}
		return nil, false
	}
	c.memory.Set(ref, data, c.ttl)
	return data, true
}

func (c *assetCache) Set(ctx context.Context, ref string, data []byte) {
	c.memory.Set(ref, data, c.ttl)
	if c.redis == nil {
		return
	}
	if err := c.redis.Set(ctx, AssetKey(ref), data, c.ttl).Err(); err != nil {
		c.log.Warn("redis asset store failed", zap.String("ref", ref), zap.Error(err))
	}
}
