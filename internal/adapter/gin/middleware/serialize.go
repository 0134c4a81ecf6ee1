package middleware

import (
	"sync"

	"github.com/gin-gonic/gin"
)

// Serialize lets exactly one request run at a time. The store holds a single
// connection and rate refreshes read then write, so requests must not interleave.
func Serialize() gin.HandlerFunc {
	var mu sync.Mutex
	return func(c *gin.Context) {
		mu.Lock()
		defer mu.Unlock()
		c.Next()
	}
}
