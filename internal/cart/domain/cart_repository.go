package domain

import (
	"context"

	catalog "github.com/wyfcoding/smarthome/internal/catalog/domain"
)

// CartRepository 购物车仓储
type CartRepository interface {
	Create(ctx context.Context, item *CartItem) error
	// GetByID 不存在时返回 nil, nil
	GetByID(ctx context.Context, id uint) (*CartItem, error)
	// List userID 为空时返回全部条目
	List(ctx context.Context, userID string) ([]*CartItem, error)
	UpdateQuantity(ctx context.Context, id uint, quantity int) (bool, error)
	Delete(ctx context.Context, id uint) (bool, error)
	// Clear userID 为空时清空全部条目，返回删除行数
	Clear(ctx context.Context, userID string) (int64, error)
	DeleteByProduct(ctx context.Context, productID string) error
	// DeleteCheckedOut 删除 userID 名下、ID 与商品均匹配的条目
	DeleteCheckedOut(ctx context.Context, userID string, items map[uint]string) error
	// DemandByProduct 各商品在购物车中的数量合计
	DemandByProduct(ctx context.Context) (map[string]int, error)
}

// ProductLookup 读取商品信息，catalog 的商品仓储即满足该接口
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*catalog.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]*catalog.Product, error)
}

// EventPublisher 事件发布者
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
