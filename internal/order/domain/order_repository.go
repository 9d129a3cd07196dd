package domain

import (
	"context"
	"errors"
	"time"

	catalog "github.com/wyfcoding/smarthome/internal/catalog/domain"
)

// ErrDuplicateConfirmation 确认号唯一索引冲突，调用方应重新生成确认号后重试
var ErrDuplicateConfirmation = errors.New("duplicate confirmation number")

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// Create 保存新订单，确认号冲突时返回 ErrDuplicateConfirmation
	Create(ctx context.Context, order *Order) error
	// GetByConfirmation 不存在时返回 nil, nil
	GetByConfirmation(ctx context.Context, confirmation string) (*Order, error)
	// UpdateStatus 仅当当前状态为 from 时更新，返回是否更新成功
	UpdateStatus(ctx context.Context, confirmation string, from, to OrderStatus) (bool, error)
	// List 按下单时间倒序分页
	List(ctx context.Context, offset, limit int) ([]*Order, int64, error)
	// ListByUserName 按下单时间倒序
	ListByUserName(ctx context.Context, userName string) ([]*Order, error)
	// ListPlaced 返回 since 之后未取消的订单，按下单时间正序，since 为零值时不限时间
	ListPlaced(ctx context.Context, since time.Time) ([]*Order, error)
}

// ProductStore 下单所需的商品读取与库存扣减，catalog 的商品仓储即满足该接口
type ProductStore interface {
	GetByIDs(ctx context.Context, ids []string) ([]*catalog.Product, error)
	DecrementStock(ctx context.Context, id string, qty int) (bool, error)
}

// StoreLocator 自提门店查询
type StoreLocator interface {
	GetByID(ctx context.Context, id uint) (*catalog.StoreLocation, error)
	FindByStreet(ctx context.Context, street string) (*catalog.StoreLocation, error)
}

// CartCleaner 清理已结算的购物车条目
type CartCleaner interface {
	// DeleteCheckedOut items 为条目 ID 到商品 ID 的映射，归属或商品不符的条目保持不变
	DeleteCheckedOut(ctx context.Context, userID string, items map[uint]string) error
}

// ConfirmationGenerator 确认号生成器
type ConfirmationGenerator interface {
	Confirmation() string
}

// EventPublisher 事件发布者，ctx 中存在事务时随事务提交
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
