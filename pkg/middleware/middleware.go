// Package middleware 提供 Gin 与 gRPC 的通用中间件（请求 ID、访问日志、panic recover、CORS、指标、限流）
package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wyfcoding/smarthome/pkg/logger"
	"github.com/wyfcoding/smarthome/pkg/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	// RequestIDHeader header for request ID, reused when the client sends one
	RequestIDHeader = "X-Request-ID"
	// TraceIDHeader header for cross-service trace ID
	TraceIDHeader = "X-Trace-ID"
)

// GinLoggingMiddleware Gin 日志中间件，负责生成请求 ID 并写入请求 context
func GinLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = requestID
		}

		ctx := logger.WithRequest(c.Request.Context(), requestID, traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, requestID)

		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		args := []any{
			"method", method,
			"path", path,
			"status_code", c.Writer.Status(),
			"response_size", c.Writer.Size(),
			"client_ip", c.ClientIP(),
			"duration", time.Since(start),
		}
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}
		if c.Writer.Status() >= 500 {
			logger.Error(ctx, "HTTP request completed", args...)
			return
		}
		logger.Info(ctx, "HTTP request completed", args...)
	}
}

// GinRecoveryMiddleware Gin panic 恢复中间件
func GinRecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				ctx := c.Request.Context()
				logger.Error(ctx, "HTTP request panicked",
					"path", c.Request.URL.Path,
					"panic", err,
				)

				c.AbortWithStatusJSON(500, gin.H{
					"error":      "internal server error",
					"request_id": logger.RequestID(ctx),
				})
			}
		}()
		c.Next()
	}
}

// GinCORSMiddleware Gin CORS 中间件
func GinCORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID, X-Trace-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// GinMetricsMiddleware 记录请求计数与耗时，路由使用模板路径避免标签基数膨胀
func GinMetricsMiddleware(collector metrics.MetricsCollector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		collector.RecordHTTPRequest(
			c.Request.Method,
			route,
			c.Writer.Status(),
			time.Since(start).Seconds(),
			int64(c.Writer.Size()),
		)
	}
}

// GRPCLoggingInterceptor gRPC 日志拦截器
func GRPCLoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		requestID := uuid.New().String()
		traceID := extractTraceID(ctx)
		if traceID == "" {
			traceID = requestID
		}
		ctx = logger.WithRequest(ctx, requestID, traceID)

		start := time.Now()
		method := info.FullMethod

		resp, err := handler(ctx, req)

		duration := time.Since(start)
		if err != nil {
			st, _ := status.FromError(err)
			logger.Error(ctx, "gRPC request failed",
				"method", method,
				"error_code", st.Code().String(),
				"error_message", st.Message(),
				"duration", duration,
			)
		} else {
			logger.Debug(ctx, "gRPC request completed",
				"method", method,
				"duration", duration,
			)
		}

		return resp, err
	}
}

// GRPCRecoveryInterceptor gRPC panic 恢复拦截器
func GRPCRecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(ctx, "gRPC request panicked",
					"method", info.FullMethod,
					"panic", r,
				)
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

// extractTraceID 从 gRPC metadata 中提取 trace ID
func extractTraceID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if vals := md.Get("x-trace-id"); len(vals) > 0 {
		return vals[0]
	}
	return ""
}
