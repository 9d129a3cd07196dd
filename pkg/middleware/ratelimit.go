package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/smarthome/pkg/config"
	"github.com/wyfcoding/smarthome/pkg/logger"
	"github.com/wyfcoding/smarthome/pkg/ratelimit"
)

// Routes with their own quota: credential endpoints and checkout
var (
	authRoutes     = map[string]bool{"/api/login": true, "/api/register": true}
	checkoutRoutes = map[string]bool{"/api/place-order": true}
)

// policyFor picks the bucket and limit for a route template
func policyFor(route string, cfg config.RateLimitConfig) (string, ratelimit.Limit) {
	switch {
	case authRoutes[route] && cfg.AuthPerMinute > 0:
		return "auth", ratelimit.PerMinute(cfg.AuthPerMinute)
	case checkoutRoutes[route] && cfg.CheckoutPerMinute > 0:
		return "checkout", ratelimit.PerMinute(cfg.CheckoutPerMinute)
	default:
		return "api", ratelimit.PerSecond(cfg.QPS, cfg.Burst)
	}
}

// RateLimitMiddleware limits requests per client IP and fails open if the limiter errors
func RateLimitMiddleware(limiter ratelimit.RateLimiter, cfg config.RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		bucket, limit := policyFor(c.FullPath(), cfg)
		res, err := limiter.Allow(ctx, bucket+":"+c.ClientIP(), limit)
		if err != nil {
			logger.Warn(ctx, "Rate limiter unavailable, allowing request", "bucket", bucket, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Burst))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(res.ResetAfter/time.Second), 10))

		if !res.Allowed {
			logger.Warn(ctx, "Request rate limited", "bucket", bucket, "client_ip", c.ClientIP())
			c.Header("Retry-After", strconv.FormatInt(int64(res.RetryAfter.Round(time.Second)/time.Second), 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "too many requests",
				"request_id": logger.RequestID(ctx),
			})
			return
		}

		c.Next()
	}
}
