// Package db 提供 GORM 初始化、连接池配置、事务上下文传递与 SQL 日志桥接
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgLogger "github.com/wyfcoding/smarthome/pkg/logger"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// Config 数据库配置
type Config struct {
	Driver             string
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    int
	LogEnabled         bool
	SlowQueryThreshold int
	Tracing            bool
}

// DB 数据库实例包装
type DB struct {
	*gorm.DB
	config Config
}

// Init 初始化数据库连接
func Init(cfg Config) (*DB, error) {
	var dialector gorm.Dialector

	// 根据驱动类型选择方言
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormLogger := NewGormLogger(cfg.LogEnabled, time.Duration(cfg.SlowQueryThreshold)*time.Millisecond)

	// TranslateError 让唯一键冲突统一表现为 gorm.ErrDuplicatedKey
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Tracing {
		if err := db.Use(tracing.NewPlugin()); err != nil {
			return nil, fmt.Errorf("failed to register tracing plugin: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// 配置连接池
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := sqlDB.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pkgLogger.Info(context.Background(), "Database connected successfully", "driver", cfg.Driver)

	return &DB{
		DB:     db,
		config: cfg,
	}, nil
}

// Close 关闭数据库连接
func (d *DB) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping 检查数据库连通性，供健康检查使用
func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type txKey struct{}

// WithTxContext 将事务句柄放入 context
func WithTxContext(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext 从 context 取出事务句柄
func TxFromContext(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok
}

// Conn 返回 context 中的事务句柄，若不存在则返回普通连接
// 仓储统一通过它取连接，从而自动加入调用方开启的事务
func Conn(ctx context.Context, base *gorm.DB) *gorm.DB {
	if tx, ok := TxFromContext(ctx); ok {
		return tx.WithContext(ctx)
	}
	return base.WithContext(ctx)
}

// TxManager 跨仓储的事务边界
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Transaction 在事务中执行函数，事务句柄经由 context 传给仓储
// 已处于事务中时直接复用外层事务
func (d *DB) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}
	return d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithTxContext(ctx, tx))
	})
}

// IsDuplicateKey 判断是否为唯一键冲突
func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// IsNotFound 判断是否为记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// GormLogger GORM 日志记录器实现
type GormLogger struct {
	enabled            bool
	slowQueryThreshold time.Duration
}

// NewGormLogger 创建 GORM 日志记录器
func NewGormLogger(enabled bool, slowQueryThreshold time.Duration) *GormLogger {
	return &GormLogger{
		enabled:            enabled,
		slowQueryThreshold: slowQueryThreshold,
	}
}

// LogMode 设置日志模式
func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return l
}

// Info 记录信息日志
func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.enabled {
		pkgLogger.Info(ctx, msg, "data", data)
	}
}

// Warn 记录警告日志
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	pkgLogger.Warn(ctx, msg, "data", data)
}

// Error 记录错误日志
func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	pkgLogger.Error(ctx, msg, "data", data)
}

// Trace 记录 SQL 执行日志，慢查询无论是否开启 SQL 日志都会输出
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	slow := l.slowQueryThreshold > 0 && elapsed > l.slowQueryThreshold
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	if !l.enabled && !slow && !failed {
		return
	}

	sqlStr, rows := fc()
	args := []interface{}{
		"duration", elapsed,
		"rows", rows,
		"sql", sqlStr,
	}

	switch {
	case failed:
		args = append(args, "error", err)
		pkgLogger.Error(ctx, "SQL execution failed", args...)
	case slow:
		pkgLogger.Warn(ctx, "Slow query detected", args...)
	default:
		pkgLogger.Debug(ctx, "SQL executed", args...)
	}
}
