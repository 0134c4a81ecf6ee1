package middleware

import (
	"github.com/gin-gonic/gin"

	"currencies-app/pkg/logger"
)

// RequestID puts a request id into the request context and echoes it in the
// X-Request-ID response header. A caller-supplied id is reused.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := logger.NewRequestID(c.GetHeader(logger.RequestIDHeader))
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Header(logger.RequestIDHeader, id)
		c.Next()
	}
}
