// Package mongodb 提供 MongoDB 客户端初始化
package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/smarthome/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Config MongoDB 配置
type Config struct {
	URI         string
	Database    string
	ConnTimeout int
}

// Client 包装 mongo.Client 与默认数据库
type Client struct {
	*mongo.Client
	db *mongo.Database
}

// Connect 建立连接并 Ping 主节点
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	timeout := time.Duration(cfg.ConnTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info(ctx, "MongoDB connected successfully", "database", cfg.Database)
	return &Client{Client: client, db: client.Database(cfg.Database)}, nil
}

// DB 返回配置中的默认数据库
func (c *Client) DB() *mongo.Database {
	return c.db
}

// Collection 返回默认数据库下的集合
func (c *Client) Collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

// Close 断开连接
func (c *Client) Close(ctx context.Context) error {
	return c.Client.Disconnect(ctx)
}
