// Package cache 提供 Redis 客户端初始化与 JSON 缓存，供限流、报表缓存与健康检查使用
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wyfcoding/smarthome/pkg/logger"
)

// Config Redis 配置
type Config struct {
	Host         string
	Port         int
	Password     string
	DB           int
	MaxPoolSize  int
	ConnTimeout  int
	ReadTimeout  int
	WriteTimeout int
}

// Addr 返回 host:port
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// New 创建 Redis 客户端并检查连通性
func New(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr(),
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        cfg.MaxPoolSize,
		DialTimeout:     time.Duration(cfg.ConnTimeout) * time.Second,
		ConnMaxIdleTime: 5 * time.Minute,
		ReadTimeout:     time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout:    time.Duration(cfg.WriteTimeout) * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info(ctx, "Redis connected successfully", "addr", cfg.Addr())
	return client, nil
}

// JSONCache 以 JSON 编码存取值的 Redis 缓存，key 统一加前缀
type JSONCache struct {
	client *redis.Client
	prefix string
}

// NewJSONCache 创建 JSON 缓存
func NewJSONCache(client *redis.Client, prefix string) *JSONCache {
	return &JSONCache{client: client, prefix: prefix}
}

// GetJSON 读取并解码到 dest，未命中返回 false
func (c *JSONCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

// SetJSON 编码后写入，ttl 为 0 表示不过期
func (c *JSONCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
