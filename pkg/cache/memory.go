package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps JSON bytes rather than values, so readers decode their
// own copy the same way they would from Redis.
type MemoryCache struct {
	items *gocache.Cache
}

func NewMemoryCache(defaultTTL, purgeEvery time.Duration) *MemoryCache {
	return &MemoryCache{items: gocache.New(defaultTTL, purgeEvery)}
}

// Set with ttl 0 uses the default TTL given to NewMemoryCache.
func (m *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %q: %w", key, err)
	}
	m.items.Set(key, raw, ttl)
	return nil
}

func (m *MemoryCache) Get(_ context.Context, key string, target interface{}) error {
	v, ok := m.items.Get(key)
	if !ok {
		return ErrMiss
	}
	raw, ok := v.([]byte)
	if !ok {
		return fmt.Errorf("cache: %q holds %T", key, v)
	}
	return json.Unmarshal(raw, target)
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.items.Delete(key)
	return nil
}
