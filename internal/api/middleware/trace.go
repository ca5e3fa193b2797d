package middleware

import (
	"Huddle/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	TraceHeader   = "X-Trace-ID"
	requestHeader = "X-Request-ID"
	maxTraceLen   = 64
)

// TraceMiddleware 复用上游网关传入的追踪 id，缺失或过长时重新生成
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceHeader)
		if traceID == "" {
			traceID = c.GetHeader(requestHeader)
		}
		if traceID == "" || len(traceID) > maxTraceLen {
			traceID = uuid.NewString()
		}

		c.Set(logger.TraceIDKey, traceID)
		c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), traceID))

		c.Header(TraceHeader, traceID)
		c.Next()
	}
}
