// Package config 提供 TOML 配置加载、环境变量覆盖与校验
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config 基础配置结构
type Config struct {
	// 服务名称
	ServiceName string `mapstructure:"service_name"`
	// 服务版本
	Version string `mapstructure:"version"`
	// 环境：dev, staging, prod
	Environment string `mapstructure:"environment"`
	// HTTP 服务配置
	HTTP HTTPConfig `mapstructure:"http"`
	// gRPC 健康检查服务配置
	GRPC GRPCConfig `mapstructure:"grpc"`
	// 数据库配置
	Database DatabaseConfig `mapstructure:"database"`
	// Redis 配置
	Redis RedisConfig `mapstructure:"redis"`
	// Kafka 配置
	Kafka KafkaConfig `mapstructure:"kafka"`
	// MongoDB 配置
	Mongo MongoConfig `mapstructure:"mongo"`
	// 日志配置
	Logger LoggerConfig `mapstructure:"logger"`
	// 追踪配置
	Tracing TracingConfig `mapstructure:"tracing"`
	// 指标配置
	Metrics MetricsConfig `mapstructure:"metrics"`
	// 限流配置
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	// 下单流程配置
	Order OrderConfig `mapstructure:"order"`
	// 商品目录 XML 导出配置
	CatalogExport CatalogExportConfig `mapstructure:"catalog_export"`
	// 报表配置
	Reporting ReportingConfig `mapstructure:"reporting"`
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// GRPCConfig gRPC 服务配置
type GRPCConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// 驱动：mysql, postgres
	Driver string `mapstructure:"driver"`
	// 数据源名称
	DSN string `mapstructure:"dsn"`
	// 最大连接数
	MaxOpenConns int `mapstructure:"max_open_conns"`
	// 最大空闲连接数
	MaxIdleConns int `mapstructure:"max_idle_conns"`
	// 连接最大生命周期（秒）
	ConnMaxLifetime int `mapstructure:"conn_max_lifetime"`
	// 是否启用 SQL 日志
	LogEnabled bool `mapstructure:"log_enabled"`
	// 慢查询阈值（毫秒）
	SlowQueryThreshold int `mapstructure:"slow_query_threshold"`
	// 启动时是否自动迁移表结构
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	MaxPoolSize  int    `mapstructure:"max_pool_size"`
	ConnTimeout  int    `mapstructure:"conn_timeout"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// KafkaConfig Kafka 配置
type KafkaConfig struct {
	// 是否启用事件投递，关闭时 outbox 记录只落库不投递
	Enabled bool `mapstructure:"enabled"`
	// Broker 地址列表
	Brokers []string `mapstructure:"brokers"`
	// 最大重试次数
	MaxRetries int `mapstructure:"max_retries"`
	// 重试退避（毫秒）
	RetryBackoff int `mapstructure:"retry_backoff"`
	// outbox 轮询间隔（毫秒）
	RelayInterval int `mapstructure:"relay_interval"`
	// 每批投递条数
	RelayBatchSize int `mapstructure:"relay_batch_size"`
}

// MongoConfig MongoDB 配置
type MongoConfig struct {
	URI              string `mapstructure:"uri"`
	Database         string `mapstructure:"database"`
	ReviewCollection string `mapstructure:"review_collection"`
	ConnTimeout      int    `mapstructure:"conn_timeout"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
	WithCaller bool   `mapstructure:"with_caller"`
}

// TracingConfig 追踪配置
type TracingConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	CollectorEndpoint string  `mapstructure:"collector_endpoint"`
	SamplingRate      float64 `mapstructure:"sampling_rate"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// RateLimitConfig 限流配置，按客户端 IP 计数
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// 普通接口每秒请求数与突发
	QPS   int `mapstructure:"qps"`
	Burst int `mapstructure:"burst"`
	// 登录与注册每分钟次数，0 表示与普通接口相同
	AuthPerMinute int `mapstructure:"auth_per_minute"`
	// 下单每分钟次数，0 表示与普通接口相同
	CheckoutPerMinute int `mapstructure:"checkout_per_minute"`
}

// OrderConfig 下单流程配置
type OrderConfig struct {
	// 雪花算法节点号，多实例部署时必须互不相同
	NodeID int64 `mapstructure:"node_id"`
	// 预计送达天数
	DeliveryLeadDays int `mapstructure:"delivery_lead_days"`
	// 确认号冲突时的最大尝试次数
	MaxPlaceAttempts int `mapstructure:"max_place_attempts"`
}

// CatalogExportConfig 商品目录 XML 镜像配置
type CatalogExportConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// 输出文件路径
	Path string `mapstructure:"path"`
	// 全量重导出的 cron 表达式
	Schedule string `mapstructure:"schedule"`
}

// ReportingConfig 报表配置
type ReportingConfig struct {
	// 看板缓存时间（秒），0 关闭缓存
	DashboardCacheTTL int `mapstructure:"dashboard_cache_ttl"`
}

// Load 从 TOML 文件加载配置，支持 APP_ 前缀的环境变量覆盖
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if c.Environment == "" {
		c.Environment = "dev"
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTP.Port)
	}
	if c.GRPC.Port < 0 || c.GRPC.Port > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.GRPC.Port)
	}
	switch c.Database.Driver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database DSN is required for %s driver", c.Database.Driver)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka brokers are required when kafka is enabled")
	}
	if c.Order.NodeID < 0 || c.Order.NodeID > 1023 {
		return fmt.Errorf("order node_id must be within [0, 1023], got %d", c.Order.NodeID)
	}
	if c.Order.DeliveryLeadDays < 0 {
		return fmt.Errorf("order delivery_lead_days must not be negative")
	}
	if c.Order.MaxPlaceAttempts < 1 {
		c.Order.MaxPlaceAttempts = 1
	}
	if c.RateLimit.Enabled && c.RateLimit.QPS <= 0 {
		return fmt.Errorf("rate_limit qps must be positive when rate limiting is enabled")
	}
	if c.CatalogExport.Enabled && c.CatalogExport.Path == "" {
		return fmt.Errorf("catalog_export path is required when export is enabled")
	}
	return nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "storefront")
	v.SetDefault("version", "dev")
	v.SetDefault("environment", "dev")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 5001)
	v.SetDefault("http.read_timeout", 30)
	v.SetDefault("http.write_timeout", 30)

	v.SetDefault("grpc.host", "0.0.0.0")
	v.SetDefault("grpc.port", 50051)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 300)
	v.SetDefault("database.log_enabled", false)
	v.SetDefault("database.slow_query_threshold", 1000)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.max_pool_size", 10)
	v.SetDefault("redis.conn_timeout", 5)
	v.SetDefault("redis.read_timeout", 3)
	v.SetDefault("redis.write_timeout", 3)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.max_retries", 3)
	v.SetDefault("kafka.retry_backoff", 100)
	v.SetDefault("kafka.relay_interval", 1000)
	v.SetDefault("kafka.relay_batch_size", 100)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "smarthomes")
	v.SetDefault("mongo.review_collection", "product_reviews")
	v.SetDefault("mongo.conn_timeout", 10)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.file_path", "logs/storefront.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 10)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.with_caller", false)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.collector_endpoint", "localhost:4317")
	v.SetDefault("tracing.sampling_rate", 1.0)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.qps", 50)
	v.SetDefault("rate_limit.burst", 100)
	v.SetDefault("rate_limit.auth_per_minute", 10)
	v.SetDefault("rate_limit.checkout_per_minute", 20)

	v.SetDefault("order.node_id", 1)
	v.SetDefault("order.delivery_lead_days", 14)
	v.SetDefault("order.max_place_attempts", 3)

	v.SetDefault("catalog_export.enabled", true)
	v.SetDefault("catalog_export.path", "data/ProductCatalog.xml")
	v.SetDefault("catalog_export.schedule", "@midnight")

	v.SetDefault("reporting.dashboard_cache_ttl", 30)
}
