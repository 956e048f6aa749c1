package cache

import (
	"context"
	"time"
)

// prefixed scopes every key of an inner cache under a fixed prefix.
type prefixed struct {
	inner  Cache
	prefix string
}

// WithPrefix returns a Cache that prepends prefix to every key before
// delegating to inner. Close closes inner.
//
//	shared := cache.NewRedisCache(client)
//	plots := cache.WithPrefix(shared, "offlineplot:")
func WithPrefix(inner Cache, prefix string) Cache {
	if prefix == "" {
		return inner
	}
	if p, ok := inner.(*prefixed); ok {
		return &prefixed{inner: p.inner, prefix: p.prefix + prefix}
	}
	return &prefixed{inner: inner, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return p.inner.Set(ctx, p.prefix+key, data, ttl)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.prefix+key)
}

func (p *prefixed) Close() error { return p.inner.Close() }
