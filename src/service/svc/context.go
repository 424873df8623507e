package svc

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/config"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/dao"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/logger/xzap"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/catalog"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/edgecache"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/mq"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/saleagent"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/selleraddr"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/signer"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/stores/gdb"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/stores/xkv"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/types/v1"
)

const (
	// memoryCacheLimit 进程内边缘缓存的最大条目数
	memoryCacheLimit = 4096
	// settlementProject 成交事件队列的项目前缀
	settlementProject = "easyswap"
)

// LaunchpadStore 销售与进度计算依赖的持久化读写, 由 dao.Dao 实现
type LaunchpadStore interface {
	LoadParentContext(ctx context.Context, collection *types.Collection) (*types.ParentContext, error)
	CountAvailable(ctx context.Context, collectionSlug string) (int64, error)
	CountPending(ctx context.Context, collectionSlug string) (int64, error)
	LoadItem(ctx context.Context, collectionSlug, inscriptionID string) (*types.Item, error)
	MarkItemState(ctx context.Context, collectionSlug, inscriptionID string, state types.ItemState) error
}

type ServerCtx struct {
	C          *config.Config
	DB         *gorm.DB
	Dao        *dao.Dao
	Store      LaunchpadStore
	KvStore    *xkv.Store
	Catalog    *catalog.Catalog
	SaleAgents *saleagent.Registry
	SellerAddr *selleraddr.Resolver
	EdgeCache  edgecache.Cache
}

// NewServiceContext 初始化服务上下文
// 该函数负责初始化后端服务所需的所有基础设施组件
func NewServiceContext(c *config.Config) (*ServerCtx, error) {
	// 1. 初始化日志系统 (Zap Logger)
	if _, err := xzap.SetUp(c.Log); err != nil {
		return nil, err
	}

	// 2. 初始化 Redis 客户端 (xkv Store)
	var nodes []xkv.NodeConf
	for _, con := range c.Kv.Redis {
		nodes = append(nodes, xkv.NodeConf{Host: con.Host, Type: con.Type, Pass: con.Pass})
	}
	var store *xkv.Store
	if len(nodes) > 0 {
		store = xkv.NewStore(nodes)
	}

	// 3. 初始化数据库连接 (GORM)
	db, err := gdb.NewDB(&c.DB)
	if err != nil {
		return nil, err
	}

	// 4. 初始化边缘缓存
	edge, err := newEdgeCache(c, store)
	if err != nil {
		return nil, err
	}

	// 5. 初始化数据访问层 (DAO)
	dao := dao.New(context.Background(), db, store)

	// 6. 签名服务: 卖家地址解析器与每个铭文的 sale agent
	signerCli := signer.NewClient(c.Signer.Endpoint)
	resolver := selleraddr.New(signerCli, time.Duration(c.Signer.AddressTimeout)*time.Millisecond)
	var agentOpts []saleagent.Option
	if store != nil {
		agentOpts = append(agentOpts, saleagent.WithPublisher(mq.NewSettlementQueue(store, settlementProject)))
	}
	agents := saleagent.NewRegistry(signerCli, dao, time.Duration(c.Signer.SettleTimeout)*time.Millisecond, agentOpts...)

	// 7. 组装 ServerCtx 对象
	serverCtx := NewServerCtx(
		WithDB(db),
		WithKv(store),
		WithDao(dao),
		WithCatalog(catalog.New(c.Collections)),
		WithSaleAgents(agents),
		WithSellerAddr(resolver),
		WithEdgeCache(edge),
	)
	serverCtx.C = c

	return serverCtx, nil
}

func newEdgeCache(c *config.Config, store *xkv.Store) (edgecache.Cache, error) {
	switch c.Launchpad.CacheBackend {
	case config.CacheBackendMemory:
		return edgecache.NewMemoryCache(memoryCacheLimit)
	case config.CacheBackendRedis:
		if store == nil {
			return nil, errors.New("redis cache backend requires kv.redis")
		}
		return edgecache.NewRedisCache(store), nil
	default:
		return nil, errors.Errorf("unknown cache backend %q", c.Launchpad.CacheBackend)
	}
}

// Close 停止所有 sale agent
func (s *ServerCtx) Close() {
	if s.SaleAgents != nil {
		s.SaleAgents.Stop()
	}
}
