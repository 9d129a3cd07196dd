package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/wyfcoding/smarthome/pkg/config"
	"github.com/wyfcoding/smarthome/pkg/logger"
	"github.com/wyfcoding/smarthome/pkg/metrics"
	"github.com/wyfcoding/smarthome/pkg/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestLoggingMiddlewarePropagatesRequestID(t *testing.T) {
	r := gin.New()
	r.Use(GinLoggingMiddleware())
	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = logger.RequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	})

	t.Run("from header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "abc", seen)
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(GinLoggingMiddleware(), GinRecoveryMiddleware())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "request_id")
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(GinCORSMiddleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

type recordingCollector struct {
	metrics.NopCollector
	routes []string
	codes  []int
}

func (r *recordingCollector) RecordHTTPRequest(method, route string, statusCode int, duration float64, size int64) {
	r.routes = append(r.routes, route)
	r.codes = append(r.codes, statusCode)
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	col := &recordingCollector{}
	r := gin.New()
	r.Use(GinMetricsMiddleware(col))
	r.GET("/api/products/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/42", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, []string{"/api/products/:id", "unmatched"}, col.routes)
	assert.Equal(t, []int{http.StatusOK, http.StatusNotFound}, col.codes)
}

type stubLimiter struct {
	res *ratelimit.Result
	err error
}

func (s stubLimiter) Allow(ctx context.Context, key string, limit ratelimit.Limit) (*ratelimit.Result, error) {
	return s.res, s.err
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, QPS: 1, Burst: 1}

	tests := []struct {
		name    string
		limiter ratelimit.RateLimiter
		want    int
	}{
		{"allowed", stubLimiter{res: &ratelimit.Result{Allowed: true, Remaining: 0}}, http.StatusOK},
		{"denied", stubLimiter{res: &ratelimit.Result{Allowed: false, RetryAfter: time.Second}}, http.StatusTooManyRequests},
		{"limiter error fails open", stubLimiter{err: errors.New("redis down")}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(RateLimitMiddleware(tt.limiter, cfg))
			r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

type recordingLimiter struct {
	keys   []string
	limits []ratelimit.Limit
}

func (l *recordingLimiter) Allow(_ context.Context, key string, limit ratelimit.Limit) (*ratelimit.Result, error) {
	l.keys = append(l.keys, key)
	l.limits = append(l.limits, limit)
	return &ratelimit.Result{Allowed: true}, nil
}

func TestRateLimitBuckets(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, QPS: 5, Burst: 10, AuthPerMinute: 3, CheckoutPerMinute: 6}
	lim := &recordingLimiter{}

	r := gin.New()
	r.Use(RateLimitMiddleware(lim, cfg))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.POST("/api/login", ok)
	r.POST("/api/place-order", ok)
	r.GET("/api/products", ok)

	for _, path := range []string{"/api/login", "/api/place-order"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, []string{"auth:10.0.0.1", "checkout:10.0.0.1", "api:10.0.0.1"}, lim.keys)
	assert.Equal(t, ratelimit.PerMinute(3), lim.limits[0])
	assert.Equal(t, ratelimit.PerMinute(6), lim.limits[1])
	assert.Equal(t, ratelimit.Limit{Rate: 5, Period: time.Second, Burst: 10}, lim.limits[2])

	t.Run("disabled skips limiter", func(t *testing.T) {
		lim := &recordingLimiter{}
		r := gin.New()
		r.Use(RateLimitMiddleware(lim, config.RateLimitConfig{}))
		r.GET("/x", ok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, lim.keys)
	})
}
