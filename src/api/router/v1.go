package router

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/ProjectsTask/EasySwapLaunchpad/src/api/v1"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/svc"
)

// loadV1 注册 v1 版本的所有接口
func loadV1(r *gin.Engine, svcCtx *svc.ServerCtx) {
	apiV1 := r.Group("/api/v1")

	apiV1.GET("/health", v1.HealthHandler())
	apiV1.GET("/policy", v1.PolicyHandler(svcCtx))

	launchpad := apiV1.Group("/launchpad")
	{
		launchpad.GET("/:slug/progress", v1.LaunchpadProgressHandler(svcCtx))
	}

	sell := apiV1.Group("/sell")
	{
		sell.POST("/:slug", v1.SaleHandler(svcCtx))
	}
}
