package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/config"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/logger/xzap"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/svc"
)

const shutdownTimeout = 10 * time.Second

// Platform 平台结构体，作为整个应用程序的容器
type Platform struct {
	config    *config.Config
	router    *gin.Engine
	serverCtx *svc.ServerCtx
}

// NewPlatform 创建一个新的 Platform 实例
func NewPlatform(config *config.Config, router *gin.Engine, serverCtx *svc.ServerCtx) (*Platform, error) {
	return &Platform{
		config:    config,
		router:    router,
		serverCtx: serverCtx,
	}, nil
}

// Start 启动平台服务
// 阻塞直到 ctx 取消或监听失败, ctx 取消后等待进行中的请求完成再返回
func (p *Platform) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              p.config.Api.Port,
		Handler:           p.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		xzap.WithContext(ctx).Info("EasySwap-Launchpad run", zap.String("port", p.config.Api.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return errors.Wrap(err, "failed on listen api server")
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "failed on shutdown api server")
	}
	xzap.WithContext(ctx).Info("EasySwap-Launchpad stopped")
	return nil
}
