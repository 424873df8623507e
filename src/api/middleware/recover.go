package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/errcode"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/logger/xzap"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/xhttp"
)

// RecoverMiddleware 捕获 handler 中的 panic, 记录堆栈并返回 500
func RecoverMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if p := recover(); p != nil {
				xzap.WithContext(c.Request.Context()).Error("http handler panic",
					zap.String("panic", fmt.Sprint(p)),
					zap.String("path", c.Request.URL.Path),
					zap.ByteString("stack", debug.Stack()))
				if !c.Writer.Written() {
					c.AbortWithStatusJSON(http.StatusInternalServerError, xhttp.ErrorBody{
						Code:  errcode.ErrUnexpected.Code,
						Error: errcode.ErrUnexpected.Msg,
					})
					return
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
