package assets

import (
	"context"

	"github.com/smallbiznis/bingkai/internal/cache"
)

// CachedLoader serves repeat loads of the same ref from an AssetCache. Only
// successful loads are cached.
type CachedLoader struct {
	next  Loader
	cache cache.AssetCache
}

func NewCachedLoader(next Loader, c cache.AssetCache) *CachedLoader {
	return &CachedLoader{next: next, cache: c}
}

func (l *CachedLoader) Load(ctx context.Context, ref string) ([]byte, error) {
	if l.cache != nil {
		if data, ok := l.cache.Get(ctx, ref); ok {
			return data, nil
		}
	}
	data, err := l.next.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	if l.cache != nil {
		l.cache.Set(ctx, ref, data)
	}
	return data, nil
}
