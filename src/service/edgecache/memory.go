package edgecache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/collection"
)

const memoryCacheName = "launchpad-edge"

type memoryEntry struct {
	resp      *CachedResponse
	expiresAt time.Time
}

// MemoryCache 进程内缓存, 单实例部署或测试使用
type MemoryCache struct {
	cache *collection.Cache
	now   func() time.Time
}

// NewMemoryCache 创建进程内缓存, limit 为最大条目数
func NewMemoryCache(limit int) (*MemoryCache, error) {
	opts := []collection.CacheOption{collection.WithName(memoryCacheName)}
	if limit > 0 {
		opts = append(opts, collection.WithLimit(limit))
	}
	// 默认过期时间只作为兜底清理, 每次写入都带上自己的 ttl
	c, err := collection.NewCache(time.Minute, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed on create memory cache")
	}
	return &MemoryCache{cache: c, now: time.Now}, nil
}

func (m *MemoryCache) Get(_ context.Context, key string) (*CachedResponse, bool, error) {
	v, ok := m.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	entry, ok := v.(*memoryEntry)
	if !ok {
		return nil, false, nil
	}
	// 时间轮的清理有秒级误差, 读取时按写入的截止时间严格判断
	if !m.now().Before(entry.expiresAt) {
		m.cache.Del(key)
		return nil, false, nil
	}
	return entry.resp, true, nil
}

func (m *MemoryCache) Put(_ context.Context, key string, resp *CachedResponse, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.cache.SetWithExpire(key, &memoryEntry{resp: resp, expiresAt: m.now().Add(ttl)}, ttl)
	return nil
}
