package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "go-community-hub/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小；超限时 JSON 解析失败，由这里兜底返回 413
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, resp.Error(resp.CodeTooLarge, "request body too large"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
