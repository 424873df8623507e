package edgecache

import (
	"context"
	"net/http"
	"time"
)

// CachedResponse 一次完整的 HTTP 响应, 命中时原样回放
type CachedResponse struct {
	Status  int         `json:"status"`
	Headers http.Header `json:"headers"`
	Body    []byte      `json:"body"`
}

// Cache 边缘响应缓存, 以请求 (方法 + URL) 为键
// 过期的条目视为未命中
type Cache interface {
	Get(ctx context.Context, key string) (*CachedResponse, bool, error)
	Put(ctx context.Context, key string, resp *CachedResponse, ttl time.Duration) error
}

// Key 缓存键
func Key(method, url string) string {
	return method + " " + url
}
