package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/svc"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/v1"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/types/v1"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/xhttp"
)

// SaleHandler 提交买家签名的 PSBT 购买铭文
// 同一铭文的并发提交在 sale agent 中串行处理, 只有一个买家成交
func SaleHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 解析请求体并按 binding tag 校验, 失败时交给 Service 层返回具体的 400
		var req types.SaleReq
		_ = c.ShouldBindJSON(&req)

		// 2. 调用 Service 层
		resp, err := service.ExecuteSale(c.Request.Context(), svcCtx, c.Params.ByName("slug"), req)
		if err != nil {
			xhttp.Error(c, err)
			return
		}

		// 3. sale agent 的状态码与响应体原样返回
		c.Data(resp.Status, jsonContentType, resp.Body)
	}
}
