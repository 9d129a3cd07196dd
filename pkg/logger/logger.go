// Package logger 提供统一的日志封装，基于 slog，支持结构化日志、trace_id/span_id 注入、日志切割
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
	"gopkg.in/natefinch/lumberjack.v2"
)

// globalLogger 是全局日志实例
var globalLogger *slog.Logger

// Config 日志配置
type Config struct {
	// 日志级别：debug, info, warn, error
	Level string
	// 输出格式：json 或 text
	Format string
	// 输出目标：stdout, file, both
	Output string
	// 日志文件路径（当 output 为 file 或 both 时）
	FilePath string
	// 最大文件大小（MB）
	MaxSize int
	// 最大备份文件数
	MaxBackups int
	// 最大保留天数
	MaxAge int
	// 是否压缩
	Compress bool
	// 是否输出调用者信息
	WithCaller bool
}

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	traceIDKey   ctxKey = "trace_id"
)

// Init 初始化全局日志实例
func Init(cfg Config) error {
	output, err := openOutput(cfg)
	if err != nil {
		return err
	}

	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: cfg.WithCaller,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(output, opts)
	} else {
		handler = slog.NewJSONHandler(output, opts)
	}

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)

	return nil
}

func openOutput(cfg Config) (io.Writer, error) {
	switch cfg.Output {
	case "file", "both":
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, err
		}
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		if cfg.Output == "file" {
			return fileWriter, nil
		}
		return io.MultiWriter(os.Stdout, fileWriter), nil
	default:
		return os.Stdout, nil
	}
}

// ParseLevel 将配置中的级别字符串转换为 slog.Level，未知值按 info 处理
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Get 获取全局日志实例
func Get() *slog.Logger {
	if globalLogger == nil {
		return slog.Default()
	}
	return globalLogger
}

// WithRequest 把请求 ID 与 trace ID 写入 context，供后续日志自动带出
func WithRequest(ctx context.Context, requestID, traceID string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	return context.WithValue(ctx, traceIDKey, traceID)
}

// RequestID 从 context 中读取请求 ID
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithContext 从 context 中提取 trace_id / span_id / request_id，返回带有这些字段的 logger
func WithContext(ctx context.Context) *slog.Logger {
	l := Get()
	if ctx == nil {
		return l
	}

	attrs := make([]any, 0, 3)
	if id := RequestID(ctx); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}

	// 优先使用 OpenTelemetry span，其次使用中间件生成的 trace ID
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	} else if traceID, ok := ctx.Value(traceIDKey).(string); ok && traceID != "" {
		attrs = append(attrs, slog.String("trace_id", traceID))
	}

	if len(attrs) > 0 {
		return l.With(attrs...)
	}
	return l
}

// Debug 输出 debug 级别日志
func Debug(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Debug(msg, args...)
}

// Info 输出 info 级别日志
func Info(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Info(msg, args...)
}

// Warn 输出 warn 级别日志
func Warn(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Warn(msg, args...)
}

// Error 输出 error 级别日志
func Error(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Error(msg, args...)
}

// Fatal 输出 fatal 级别日志并退出
func Fatal(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Error(msg, args...)
	os.Exit(1)
}

// LogDuration 记录操作耗时，返回一个函数用于在 defer 中调用
func LogDuration(ctx context.Context, msg string, args ...any) func() {
	start := time.Now()
	return func() {
		args = append(args, slog.Duration("duration", time.Since(start)))
		Info(ctx, msg, args...)
	}
}
