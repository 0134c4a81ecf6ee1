package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"currencies-app/pkg/logger"
)

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	BurstCapacity     int
	Enabled           bool
}

// RateLimiter limits requests per client IP with a token bucket kept in Redis.
type RateLimiter struct {
	client *redis.Client
	config RateLimiterConfig
	render ErrorRenderer
	log    *zap.Logger
	now    func() time.Time
}

// Token bucket in Lua so refill and consume are atomic.
// State per key: {last_refill, tokens}; returns 1 when the request is allowed.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
local last_refill = tonumber(bucket[1]) or now
local tokens = tonumber(bucket[2]) or capacity

local elapsed = math.max(0, now - last_refill)
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
end

redis.call('HSET', key, 'last_refill', tostring(now), 'tokens', tostring(tokens))
redis.call('EXPIRE', key, 60)
return allowed
`)

// NewRateLimiter creates a rate limiter. A nil client or a disabled config
// turns Middleware into a pass-through.
func NewRateLimiter(client *redis.Client, config RateLimiterConfig, render ErrorRenderer, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
		render: rendererOrPlain(render),
		log:    log,
		now:    time.Now,
	}
}

// Middleware returns the gin middleware. Redis failures let the request through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || !rl.config.Enabled || rl.client == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		clientIP := c.ClientIP()
		key := "ratelimit:tb:" + clientIP
		now := float64(rl.now().UnixMicro()) / 1e6

		allowed, err := tokenBucket.Run(ctx, rl.client, []string{key},
			rl.config.RequestsPerSecond,
			rl.config.BurstCapacity,
			now,
		).Int64()
		if err != nil {
			logger.WithContext(ctx, rl.log).Warn("rate limiter redis error, allowing request",
				zap.String("client_ip", clientIP),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if allowed == 0 {
			logger.WithContext(ctx, rl.log).Warn("rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.String("path", c.Request.URL.Path),
				zap.Float64("limit", rl.config.RequestsPerSecond),
			)
			rl.render(c, http.StatusTooManyRequests,
				fmt.Sprintf("429 - Too many requests: limit is %.2f requests/second (burst %d)",
					rl.config.RequestsPerSecond, rl.config.BurstCapacity))
			c.Abort()
			return
		}

		c.Next()
	}
}
