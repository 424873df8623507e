package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/svc"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/v1"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/xhttp"
)

// PolicyHandler 返回售卖策略与卖家收款地址
func PolicyHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := service.GetPolicy(c.Request.Context(), svcCtx)
		if err != nil {
			xhttp.Error(c, err)
			return
		}
		xhttp.OkJson(c, res)
	}
}

// HealthHandler 存活检查
func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		xhttp.OkJson(c, gin.H{"status": "ok"})
	}
}
