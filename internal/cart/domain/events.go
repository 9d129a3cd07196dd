package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicCartItemAdded   = "cart.item.added"
	TopicCartItemRemoved = "cart.item.removed"
	TopicCartCleared     = "cart.cleared"
)

// CartItemAddedEvent 购物车添加商品事件
type CartItemAddedEvent struct {
	ItemID     uint            `json:"item_id"`
	UserID     string          `json:"user_id,omitempty"`
	ProductID  string          `json:"product_id"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Timestamp  time.Time       `json:"timestamp"`
}

// CartItemRemovedEvent 购物车移除商品事件
type CartItemRemovedEvent struct {
	ItemID    uint      `json:"item_id"`
	UserID    string    `json:"user_id,omitempty"`
	ProductID string    `json:"product_id"`
	Timestamp time.Time `json:"timestamp"`
}

// CartClearedEvent 购物车清空事件
type CartClearedEvent struct {
	UserID    string    `json:"user_id,omitempty"`
	Removed   int64     `json:"removed"`
	Timestamp time.Time `json:"timestamp"`
}
