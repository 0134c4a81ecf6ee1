// Package middleware holds the gin middleware chain of the web application.
package middleware

import (
	"github.com/gin-gonic/gin"
)

// ErrorRenderer writes an error page with the given status.
type ErrorRenderer func(c *gin.Context, status int, message string)

func plainError(c *gin.Context, status int, message string) {
	c.Data(status, "text/plain; charset=utf-8", []byte(message))
}

func rendererOrPlain(render ErrorRenderer) ErrorRenderer {
	if render == nil {
		return plainError
	}
	return render
}
