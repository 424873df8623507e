package xhttp

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/errcode"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/logger/xzap"
)

// ErrorBody 错误响应体
type ErrorBody struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

// OkJson 返回 200 及 JSON 响应体
func OkJson(c *gin.Context, v interface{}) {
	c.JSON(http.StatusOK, v)
}

// Error 根据错误类型返回对应状态码与结构化错误体
// 非业务错误一律按 500 处理, 原始错误只记录日志不返回给客户端
func Error(c *gin.Context, err error) {
	e := errcode.ParseErr(err)
	if e == errcode.ErrUnexpected {
		xzap.WithContext(requestContext(c)).Error("unexpected error", zap.Error(err), zap.String("path", c.FullPath()))
	}
	c.AbortWithStatusJSON(e.HTTPStatus, ErrorBody{Code: e.Code, Error: e.Msg})
}

func requestContext(c *gin.Context) context.Context {
	if c.Request == nil {
		return context.Background()
	}
	return c.Request.Context()
}
