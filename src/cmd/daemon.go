package cmd

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof" // 引入 pprof 用于性能分析
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/api/router"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/app"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/config"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/logger/xzap"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/svc"
)

// DaemonCmd 定义了 "daemon" 子命令
var DaemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "run launchpad api server.", // 命令简短描述：启动 launchpad 接口服务
	Long:  "run launchpad api server.", // 命令详细描述
	Run: func(cmd *cobra.Command, args []string) {
		// 使用 WaitGroup 等待所有 goroutine 完成
		wg := &sync.WaitGroup{}
		wg.Add(1)

		// 创建一个带有取消功能的 Context，用于优雅退出
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// 服务退出信号通知chan，用于接收服务启动或运行过程中的错误
		onServerExit := make(chan error, 1)

		go func() {
			defer wg.Done() // goroutine 结束时减少 WaitGroup 计数

			// 1. 读取和解析配置文件 (config.toml)
			cfg, err := config.UnmarshalCmdConfig()
			if err != nil {
				xzap.WithContext(ctx).Error("Failed to unmarshal config", zap.Error(err))
				onServerExit <- err // 发送错误信号
				return
			}

			// 2. 初始化服务上下文 (日志, DB, Redis, 签名服务)
			serverCtx, err := svc.NewServiceContext(cfg)
			if err != nil {
				xzap.WithContext(ctx).Error("Failed to create service context", zap.Error(err))
				onServerExit <- err
				return
			}
			defer serverCtx.Close()

			xzap.WithContext(ctx).Info("launchpad server start",
				zap.String("port", cfg.Api.Port),
				zap.Int("collections", serverCtx.Catalog.Len()),
				zap.String("cache_backend", cfg.Launchpad.CacheBackend))

			// 3. 如果配置开启了 Pprof，启动 HTTP 服务进行性能监控
			if cfg.Monitor.PprofEnable {
				go func() {
					if err := http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", cfg.Monitor.PprofPort), nil); err != nil {
						xzap.WithContext(ctx).Warn("pprof server exit", zap.Error(err))
					}
				}()
			}

			// 4. 启动 HTTP 服务, ctx 取消后优雅关闭
			platform, err := app.NewPlatform(cfg, router.NewRouter(serverCtx), serverCtx)
			if err != nil {
				onServerExit <- err
				return
			}
			if err := platform.Start(ctx); err != nil {
				xzap.WithContext(ctx).Error("Failed to run api server", zap.Error(err))
				onServerExit <- err
			}
		}()

		// 信号通知chan，用于接收系统信号
		onSignal := make(chan os.Signal, 1)
		// 监听 SIGINT (Ctrl+C) 和 SIGTERM (kill) 信号，实现优雅退出
		signal.Notify(onSignal, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-onSignal: // 收到系统信号
			cancel() // 取消 Context，通知所有子 goroutine 退出
			xzap.WithContext(ctx).Info("Exit by signal", zap.String("signal", sig.String()))
		case err := <-onServerExit: // 收到服务内部错误
			cancel()
			xzap.WithContext(ctx).Error("Exit by error", zap.Error(err))
		}

		// 等待所有 goroutine 退出
		wg.Wait()
	},
}

func init() {
	// 将 daemon 命令添加到 root 命令中
	// 通过 launchpad daemon --config ./config/config.toml 启动
	rootCmd.AddCommand(DaemonCmd)
}
