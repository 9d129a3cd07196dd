package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicOrderPlaced    = "order.placed"
	TopicOrderCancelled = "order.cancelled"
)

// OrderPlacedEvent 下单成功事件
type OrderPlacedEvent struct {
	ConfirmationNumber string          `json:"confirmation_number"`
	OrderID            uint            `json:"order_id"`
	UserName           string          `json:"user_name"`
	ZipCode            string          `json:"zip_code"`
	DeliveryOption     DeliveryOption  `json:"delivery_option"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	Items              []OrderItem     `json:"items"`
	OccurredOn         time.Time       `json:"occurred_on"`
}

// OrderCancelledEvent 订单取消事件
type OrderCancelledEvent struct {
	ConfirmationNumber string          `json:"confirmation_number"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	OccurredOn         time.Time       `json:"occurred_on"`
}
