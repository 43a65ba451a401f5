package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const KeyRequestID = "X-Request-ID"

// RequestID 透传客户端的 UUID 形式请求 ID（规范化为小写连字符格式），其它取值一律重新生成
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := normalizeRequestID(c.Request.Header.Get(KeyRequestID))
		c.Writer.Header().Set(KeyRequestID, rid)
		c.Set(KeyRequestID, rid)
		c.Next()
	}
}

func normalizeRequestID(raw string) string {
	// uuid 最长的合法写法是 urn:uuid: 前缀的 45 个字符
	if raw != "" && len(raw) <= 45 {
		if id, err := uuid.Parse(raw); err == nil {
			return id.String()
		}
	}
	return uuid.NewString()
}
