package cache

import (
	"context"
	"time"

	"credit-core/pkg/logger"

	"go.uber.org/zap"
)

// MultiLevelCache layers a process-local cache (L1) over a shared one (L2).
type MultiLevelCache struct {
	local  Cache
	remote Cache
}

func NewMultiLevelCache(local, remote Cache) *MultiLevelCache {
	return &MultiLevelCache{
		local:  local,
		remote: remote,
	}
}

func (m *MultiLevelCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	// L1 lives half as long so instances converge on L2 quickly.
	if err := m.local.Set(ctx, key, value, ttl/2); err != nil {
		logger.Warn("cache: L1 set failed", zap.String("key", key), zap.Error(err))
	}
	return m.remote.Set(ctx, key, value, ttl)
}

func (m *MultiLevelCache) Get(ctx context.Context, key string, target interface{}) error {
	if err := m.local.Get(ctx, key, target); err == nil {
		return nil
	}

	if err := m.remote.Get(ctx, key, target); err != nil {
		return ErrMiss
	}
	// Short backfill keeps stale L1 entries from outliving an invalidation by much.
	_ = m.local.Set(ctx, key, target, time.Minute)
	return nil
}

func (m *MultiLevelCache) Delete(ctx context.Context, key string) error {
	_ = m.local.Delete(ctx, key)
	return m.remote.Delete(ctx, key)
}
