package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const jsonContentType = "application/json; charset=utf-8"

// writeCached 写回一个完整的响应, 保留原有的响应头
func writeCached(c *gin.Context, status int, headers http.Header, body []byte) {
	contentType := jsonContentType
	for k, vs := range headers {
		if http.CanonicalHeaderKey(k) == "Content-Type" && len(vs) > 0 {
			contentType = vs[0]
			continue
		}
		for _, v := range vs {
			c.Writer.Header().Add(k, v)
		}
	}
	c.Data(status, contentType, body)
}
