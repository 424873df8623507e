package svc

import (
	"gorm.io/gorm"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/dao"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/catalog"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/edgecache"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/saleagent"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/selleraddr"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/stores/xkv"
)

// CtxConfig 服务上下文配置构建器
// 用于使用 Option 模式构建 ServerCtx
type CtxConfig struct {
	db         *gorm.DB
	dao        *dao.Dao
	store      LaunchpadStore
	KvStore    *xkv.Store
	catalog    *catalog.Catalog
	agents     *saleagent.Registry
	sellerAddr *selleraddr.Resolver
	edgeCache  edgecache.Cache
}

type CtxOption func(conf *CtxConfig)

// NewServerCtx 创建新的服务上下文
// 使用 Option 模式初始化 DB, KVStore, Dao 等组件
// 未显式指定 store 时使用 Dao
func NewServerCtx(options ...CtxOption) *ServerCtx {
	c := &CtxConfig{}
	for _, opt := range options {
		opt(c)
	}
	store := c.store
	if store == nil && c.dao != nil {
		store = c.dao
	}
	return &ServerCtx{
		DB:         c.db,
		KvStore:    c.KvStore,
		Dao:        c.dao,
		Store:      store,
		Catalog:    c.catalog,
		SaleAgents: c.agents,
		SellerAddr: c.sellerAddr,
		EdgeCache:  c.edgeCache,
	}
}

func WithKv(kv *xkv.Store) CtxOption {
	return func(conf *CtxConfig) {
		conf.KvStore = kv
	}
}

func WithDB(db *gorm.DB) CtxOption {
	return func(conf *CtxConfig) {
		conf.db = db
	}
}

func WithDao(dao *dao.Dao) CtxOption {
	return func(conf *CtxConfig) {
		conf.dao = dao
	}
}

// WithStore 替换数据读取实现, 测试中注入内存实现
func WithStore(store LaunchpadStore) CtxOption {
	return func(conf *CtxConfig) {
		conf.store = store
	}
}

func WithCatalog(c *catalog.Catalog) CtxOption {
	return func(conf *CtxConfig) {
		conf.catalog = c
	}
}

func WithSaleAgents(r *saleagent.Registry) CtxOption {
	return func(conf *CtxConfig) {
		conf.agents = r
	}
}

func WithSellerAddr(r *selleraddr.Resolver) CtxOption {
	return func(conf *CtxConfig) {
		conf.sellerAddr = r
	}
}

func WithEdgeCache(c edgecache.Cache) CtxOption {
	return func(conf *CtxConfig) {
		conf.edgeCache = c
	}
}
