package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/threading"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/common/utils"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/errcode"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/logger/xzap"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/edgecache"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/svc"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/types/v1"
)

// ProgressCacheControl 进度响应的缓存策略
// 浏览器不缓存, 共享缓存 ttl 秒内新鲜, 过期后 ttl 秒内可先返回旧值再后台刷新
func ProgressCacheControl(ttlSeconds int) string {
	return fmt.Sprintf("public, max-age=0, s-maxage=%d, stale-while-revalidate=%d", ttlSeconds, ttlSeconds)
}

// GetLaunchpadProgress 获取 launchpad 集合的发售进度
// 功能:
// 1. slug 不合法或集合不是 launchpad 时返回 404
// 2. 按 (GET + URL) 查边缘缓存, 命中直接返回, 不访问存储
// 3. 未命中时并发读取父铭文上下文、可售数量、待确认数量, 任一失败整体失败且不写缓存
// 4. 计算供应量快照并渲染响应, 返回之后在后台写入缓存, 写入失败只记录日志
func GetLaunchpadProgress(ctx context.Context, svcCtx *svc.ServerCtx, slug, requestURL string) (*edgecache.CachedResponse, error) {
	// 1. 查找集合
	if !utils.IsValidSlug(slug) {
		return nil, errcode.NewNotFoundErr("Not Found")
	}
	collection, ok := svcCtx.Catalog.Lookup(slug)
	if !ok || !collection.IsLaunchpad {
		return nil, errcode.NewNotFoundErr("Not Found")
	}

	// 2. 查询边缘缓存
	key := edgecache.Key(http.MethodGet, requestURL)
	if cached, hit, err := svcCtx.EdgeCache.Get(ctx, key); err != nil {
		xzap.WithContext(ctx).Warn("failed on get progress cache", zap.String("key", key), zap.Error(err))
	} else if hit {
		return cached, nil
	}

	// 3. 并发读取三项输入
	var (
		parent             *types.ParentContext
		available, pending int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		parent, err = svcCtx.Store.LoadParentContext(gctx, collection)
		return err
	})
	g.Go(func() error {
		var err error
		available, err = svcCtx.Store.CountAvailable(gctx, collection.Slug)
		return err
	})
	g.Go(func() error {
		var err error
		pending, err = svcCtx.Store.CountPending(gctx, collection.Slug)
		return err
	})
	if err := g.Wait(); err != nil {
		xzap.WithContext(ctx).Error("failed on load launchpad progress", zap.String("slug", slug), zap.Error(err))
		return nil, errors.Wrap(errcode.ErrStoreRead, err.Error())
	}

	// 4. 计算快照并渲染
	snapshot := ComputeSupply(collection, parent, &available, &pending)
	body, err := json.Marshal(types.LaunchpadProgressResp{
		Slug:   collection.Slug,
		Title:  collection.Title,
		Supply: snapshot,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed on marshal launchpad progress")
	}

	ttlSeconds := svcCtx.C.Launchpad.CacheTTLSeconds
	resp := &edgecache.CachedResponse{
		Status: http.StatusOK,
		Headers: http.Header{
			"Content-Type":  []string{"application/json; charset=utf-8"},
			"Cache-Control": []string{ProgressCacheControl(ttlSeconds)},
		},
		Body: body,
	}

	// 5. 后台写缓存, 不阻塞响应
	if ttlSeconds > 0 {
		writeTimeout := time.Duration(svcCtx.C.Launchpad.CacheWriteTimeout) * time.Millisecond
		logger := xzap.WithContext(ctx)
		threading.GoSafe(func() {
			wctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			defer cancel()
			if err := svcCtx.EdgeCache.Put(wctx, key, resp, time.Duration(ttlSeconds)*time.Second); err != nil {
				logger.Warn("failed on put progress cache", zap.String("key", key), zap.Error(err))
			}
		})
	}

	return resp, nil
}
