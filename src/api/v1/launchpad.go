package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/svc"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/v1"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/xhttp"
)

// LaunchpadProgressHandler 查询 launchpad 集合的发售进度
// 响应带 Cache-Control, 允许 CDN 在 TTL 内缓存并在过期后先返回旧值
func LaunchpadProgressHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 获取路径参数中的集合 slug
		slug := c.Params.ByName("slug")

		// 2. 调用 Service 层, 缓存键使用完整请求 URL
		resp, err := service.GetLaunchpadProgress(c.Request.Context(), svcCtx, slug, c.Request.URL.String())
		if err != nil {
			xhttp.Error(c, err)
			return
		}

		// 3. 原样写回 (可能来自缓存)
		writeCached(c, resp.Status, resp.Headers, resp.Body)
	}
}
