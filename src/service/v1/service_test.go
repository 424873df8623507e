package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/config"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/catalog"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/edgecache"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/svc"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/types/v1"
)

// memStore 内存实现的 LaunchpadStore
type memStore struct {
	mu        sync.Mutex
	parent    *types.ParentContext
	available int64
	pending   int64
	items     map[string]*types.Item
	readErr   error

	reads  atomic.Int32
	writes []types.ItemState
}

func newMemStore() *memStore {
	return &memStore{items: make(map[string]*types.Item)}
}

func (m *memStore) LoadParentContext(ctx context.Context, collection *types.Collection) (*types.ParentContext, error) {
	m.reads.Add(1)
	return m.parent, nil
}

func (m *memStore) CountAvailable(ctx context.Context, slug string) (int64, error) {
	m.reads.Add(1)
	if m.readErr != nil {
		return 0, m.readErr
	}
	return m.available, nil
}

func (m *memStore) CountPending(ctx context.Context, slug string) (int64, error) {
	m.reads.Add(1)
	return m.pending, nil
}

func (m *memStore) LoadItem(ctx context.Context, slug, id string) (*types.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[slug+":"+id]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (m *memStore) MarkItemState(ctx context.Context, slug, id string, state types.ItemState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, state)
	if item, ok := m.items[slug+":"+id]; ok {
		item.State = state
	}
	return nil
}

func (m *memStore) addItem(slug, id string, state types.ItemState) {
	m.items[slug+":"+id] = &types.Item{CollectionSlug: slug, InscriptionID: id, State: state}
}

func (m *memStore) stateWrites() []types.ItemState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.ItemState(nil), m.writes...)
}

// mapCache 可手动过期的 edgecache.Cache
type mapCache struct {
	mu      sync.Mutex
	entries map[string]*edgecache.CachedResponse
	puts    atomic.Int32
	putErr  error
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]*edgecache.CachedResponse)}
}

func (c *mapCache) Get(ctx context.Context, key string) (*edgecache.CachedResponse, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	resp, ok := c.entries[key]
	return resp, ok, nil
}

func (c *mapCache) Put(ctx context.Context, key string, resp *edgecache.CachedResponse, ttl time.Duration) error {
	c.puts.Add(1)
	if c.putErr != nil {
		return c.putErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = resp
	return nil
}

func (c *mapCache) expire(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func testCollections() []config.CollectionPolicy {
	return []config.CollectionPolicy{
		{Slug: "frogs", Title: "Frogs", IsLaunchpad: true, InscriptionIDs: []string{"a", "b", "c", "d"}},
		{Slug: "gallery", Title: "Gallery", IsLaunchpad: true, GalleryInscriptionID: "gi0"},
		{Slug: "closed", Title: "Closed", InscriptionIDs: []string{"a"}},
	}
}

func newTestCtx(store *memStore, cache edgecache.Cache, opts ...svc.CtxOption) *svc.ServerCtx {
	opts = append([]svc.CtxOption{
		svc.WithStore(store),
		svc.WithCatalog(catalog.New(testCollections())),
		svc.WithEdgeCache(cache),
	}, opts...)
	svcCtx := svc.NewServerCtx(opts...)
	svcCtx.C = &config.Config{
		Launchpad: config.LaunchpadCfg{CacheTTLSeconds: 15, CacheWriteTimeout: 1000},
		Policy:    config.PolicyCfg{Name: "Fixed price", Description: "First come first served", FeeRate: "0.02"},
	}
	return svcCtx
}
