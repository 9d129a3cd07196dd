package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicProductCreated = "catalog.product.created"
	TopicProductUpdated = "catalog.product.updated"
	TopicProductDeleted = "catalog.product.deleted"
	TopicStockChanged   = "catalog.product.stock_changed"
)

// ProductCreatedEvent 商品创建事件
type ProductCreatedEvent struct {
	ProductID      string          `json:"product_id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	AvailableItems int             `json:"available_items"`
	CategoryID     uint            `json:"category_id"`
	Timestamp      time.Time       `json:"timestamp"`
}

// ProductUpdatedEvent 商品更新事件
type ProductUpdatedEvent struct {
	ProductID      string          `json:"product_id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	AvailableItems int             `json:"available_items"`
	CategoryID     uint            `json:"category_id"`
	Timestamp      time.Time       `json:"timestamp"`
}

// ProductDeletedEvent 商品删除事件
type ProductDeletedEvent struct {
	ProductID string    `json:"product_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ProductStockChangedEvent 商品库存被人工调整
type ProductStockChangedEvent struct {
	ProductID string    `json:"product_id"`
	OldStock  int       `json:"old_stock"`
	NewStock  int       `json:"new_stock"`
	Timestamp time.Time `json:"timestamp"`
}
