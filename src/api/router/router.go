package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/api/middleware"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/common/utils"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/svc"
)

func NewRouter(svcCtx *svc.ServerCtx) *gin.Engine {
	// 设置 Gin 为发布模式 (ReleaseMode)
	gin.SetMode(gin.ReleaseMode)
	// 注册 psbt 自定义校验规则, SaleReq 的 binding tag 依赖它
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = utils.RegisterValidators(v)
	}

	r := gin.New()                        // 新建一个gin引擎实例
	r.Use(middleware.RecoverMiddleware()) // 使用自定义的恢复中间件，处理 Panic
	r.Use(middleware.RLog())              // 使用请求日志中间件，记录API访问日志

	r.Use(cors.New(cors.Config{ // 使用cors中间件，配置跨域访问策略
		AllowAllOrigins: true,                               // 允许所有源
		AllowMethods:    []string{"GET", "POST", "OPTIONS"}, // 允许的方法
		AllowHeaders:    []string{"Origin", "Content-Length", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:   []string{"Content-Length", "Content-Type", "Cache-Control", middleware.RequestIDHeader},
		MaxAge:          1 * time.Hour,
	}))
	if svcCtx.C != nil && svcCtx.C.Api.MaxBodyBytes > 0 {
		r.Use(limitBody(svcCtx.C.Api.MaxBodyBytes))
	}
	loadV1(r, svcCtx) // 加载 v1 版本的路由分组

	return r
}

// limitBody 限制请求体大小, 超出部分读取时报错
func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
