package quotes

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache is the storage behind the quote client. Backends may expire keys on
// their own; freshness is still checked by the client from fetched_at.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type MemoryCache struct {
	c *gocache.Cache
}

func NewMemoryCache(cleanup time.Duration) *MemoryCache {
	return &MemoryCache{c: gocache.New(gocache.NoExpiration, cleanup)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}

	return v.([]byte), nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.c.Set(key, value, ttl)
	return nil
}
