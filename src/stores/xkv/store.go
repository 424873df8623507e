package xkv

import (
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/kv"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

// Store KV 存储 (Redis), 对 go-zero kv.Store 的薄封装
type Store struct {
	kv.Store
}

// NodeConf 单个 Redis 节点配置
type NodeConf struct {
	Host string
	Type string
	Pass string
}

// NewStore 根据节点列表创建 KV 存储
// 多个节点时按一致性哈希分片
func NewStore(nodes []NodeConf) *Store {
	var kvConf kv.KvConf
	for _, n := range nodes {
		if n.Type == "" {
			n.Type = redis.NodeType
		}
		kvConf = append(kvConf, cache.NodeConf{
			RedisConf: redis.RedisConf{
				Host: n.Host,
				Type: n.Type,
				Pass: n.Pass,
			},
			Weight: 1,
		})
	}
	return &Store{Store: kv.NewStore(kvConf)}
}
