package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"currencies-app/pkg/logger"
)

// Recovery turns a panic in any later handler into a logged 500 error page.
func Recovery(log *zap.Logger, render ErrorRenderer) gin.HandlerFunc {
	render = rendererOrPlain(render)

	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithContext(c.Request.Context(), log).Error("panic recovered in handler",
					zap.Any("panic", r),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				render(c, http.StatusInternalServerError, fmt.Sprintf("500 - Internal server error: %v", r))
				c.Abort()
			}
		}()
		c.Next()
	}
}
