package edgecache

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/stores/xkv"
)

const redisKeyPrefix = "cache:launchpad:edge:"

// RedisCache 共享缓存, 多实例部署时所有实例看到同一份响应
type RedisCache struct {
	store *xkv.Store
}

func NewRedisCache(store *xkv.Store) *RedisCache {
	return &RedisCache{store: store}
}

func (r *RedisCache) Get(ctx context.Context, key string) (*CachedResponse, bool, error) {
	raw, err := r.store.GetCtx(ctx, redisKeyPrefix+key)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed on get cached response")
	}
	if raw == "" {
		return nil, false, nil
	}

	var resp CachedResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		// 损坏的条目按未命中处理, 下一次写入覆盖
		return nil, false, nil
	}
	return &resp, true, nil
}

func (r *RedisCache) Put(ctx context.Context, key string, resp *CachedResponse, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return errors.Wrap(err, "failed on marshal cached response")
	}
	seconds := int(math.Ceil(ttl.Seconds()))
	if err := r.store.SetexCtx(ctx, redisKeyPrefix+key, string(raw), seconds); err != nil {
		return errors.Wrap(err, "failed on set cached response")
	}
	return nil
}
