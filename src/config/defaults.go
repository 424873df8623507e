package config

import (
	"fmt"

	"github.com/pkg/errors"
)

// 可选配置项的默认值
const (
	DefaultApiPort            = ":9000"
	DefaultMaxBodyBytes       = 1 << 20
	DefaultAddressTimeoutMs   = 10000
	DefaultSettleTimeoutMs    = 30000
	DefaultCacheTTLSeconds    = 15
	DefaultCacheWriteTimeout  = 3000
	DefaultCacheBackend       = CacheBackendRedis
	CacheBackendRedis         = "redis"
	CacheBackendMemory        = "memory"
	DefaultSignerEndpoint     = "http://127.0.0.1:8787"
	DefaultLogLevel           = "info"
	DefaultLogMode            = "console"
	DefaultDBMaxOpenConns     = 20
	DefaultDBMaxIdleConns     = 5
	DefaultDBConnMaxLifetimeS = 600
)

func (c *Config) applyDefaults() {
	if c.Api.Port == "" {
		c.Api.Port = DefaultApiPort
	}
	if c.Api.MaxBodyBytes == 0 {
		c.Api.MaxBodyBytes = DefaultMaxBodyBytes
	}

	if c.Signer.Endpoint == "" {
		c.Signer.Endpoint = DefaultSignerEndpoint
	}
	if c.Signer.AddressTimeout == 0 {
		c.Signer.AddressTimeout = DefaultAddressTimeoutMs
	}
	if c.Signer.SettleTimeout == 0 {
		c.Signer.SettleTimeout = DefaultSettleTimeoutMs
	}

	if c.Launchpad.CacheTTLSeconds == 0 {
		c.Launchpad.CacheTTLSeconds = DefaultCacheTTLSeconds
	}
	if c.Launchpad.CacheWriteTimeout == 0 {
		c.Launchpad.CacheWriteTimeout = DefaultCacheWriteTimeout
	}
	if c.Launchpad.CacheBackend == "" {
		c.Launchpad.CacheBackend = DefaultCacheBackend
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Mode == "" {
		c.Log.Mode = DefaultLogMode
	}

	if c.DB.MaxOpenConns == 0 {
		c.DB.MaxOpenConns = DefaultDBMaxOpenConns
	}
	if c.DB.MaxIdleConns == 0 {
		c.DB.MaxIdleConns = DefaultDBMaxIdleConns
	}
	if c.DB.ConnMaxLifetime == 0 {
		c.DB.ConnMaxLifetime = DefaultDBConnMaxLifetimeS
	}
}

// Validate 校验配置的合法性
// 1. 集合 slug 非空且唯一
// 2. 每个集合最多配置一种总量来源
// 3. 缓存 TTL 与超时必须为正数
func (c *Config) Validate() error {
	if c.Launchpad.CacheTTLSeconds < 0 {
		return errors.New("launchpad.cache_ttl_seconds must be positive")
	}
	if c.Launchpad.CacheBackend != CacheBackendRedis && c.Launchpad.CacheBackend != CacheBackendMemory {
		return fmt.Errorf("launchpad.cache_backend: unknown backend %q", c.Launchpad.CacheBackend)
	}
	if c.Launchpad.CacheBackend == CacheBackendRedis && len(c.Kv.Redis) == 0 {
		return errors.New("kv.redis is required for the redis cache backend")
	}
	if c.Signer.AddressTimeout < 0 || c.Signer.SettleTimeout < 0 {
		return errors.New("signer timeouts must be positive")
	}

	seen := make(map[string]struct{}, len(c.Collections))
	for i, col := range c.Collections {
		if col.Slug == "" {
			return fmt.Errorf("collections[%d]: slug is required", i)
		}
		if _, ok := seen[col.Slug]; ok {
			return fmt.Errorf("collections[%d]: duplicate slug %q", i, col.Slug)
		}
		seen[col.Slug] = struct{}{}

		sources := 0
		if col.GalleryInscriptionID != "" {
			sources++
		}
		if col.ParentInscriptionID != "" {
			sources++
		}
		if len(col.InscriptionIDs) > 0 {
			sources++
		}
		if sources > 1 {
			return fmt.Errorf("collections[%d]: %q declares more than one supply source", i, col.Slug)
		}
	}
	return nil
}
