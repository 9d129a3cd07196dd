// Package domain 订单领域模型
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/smarthome/pkg/apperror"
)

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// DeliveryOption 配送方式
type DeliveryOption string

const (
	DeliveryHome   DeliveryOption = "delivery"
	DeliveryPickup DeliveryOption = "pickup"
)

// ParseDeliveryOption 解析配送方式，不区分大小写
func ParseDeliveryOption(s string) (DeliveryOption, error) {
	switch DeliveryOption(strings.ToLower(strings.TrimSpace(s))) {
	case DeliveryHome:
		return DeliveryHome, nil
	case DeliveryPickup:
		return DeliveryPickup, nil
	default:
		return "", apperror.Validation("delivery option must be delivery or pickup, got %q", s)
	}
}

// ItemAccessory 快照中的配件，价格取下单时的目录价
type ItemAccessory struct {
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// OrderItem 订单商品快照，创建后不可修改
// ID 为商品 ID；Price 为下单时的单价（含零售折扣，不含配件）
type OrderItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	CategoryID  uint            `json:"category_id"`
	Accessories []ItemAccessory `json:"accessories,omitempty"`
	Warranty    string          `json:"warranty,omitempty"`
	LineTotal   decimal.Decimal `json:"line_total"`
	CartItemID  uint            `json:"cart_item_id,omitempty"`
}

// Units 售出件数，缺失数量的历史快照按 1 件计
func (i OrderItem) Units() int {
	if i.Quantity <= 0 {
		return 1
	}
	return i.Quantity
}

// Order 订单实体
type Order struct {
	ID                 uint
	ConfirmationNumber string
	UserID             string
	UserName           string
	Street             string
	City               string
	State              string
	ZipCode            string
	// 只保留末四位，见 MaskCard
	CreditCard     string
	DeliveryOption DeliveryOption
	PickupLocation string
	TotalAmount    decimal.Decimal
	OrderDate      time.Time
	DeliveryDate   time.Time
	Items          []OrderItem
	Status         OrderStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// MaskCard 卡号只保留末四位，其余替换为 *，对已脱敏的值幂等
func MaskCard(card string) string {
	card = strings.TrimSpace(card)
	if len(card) <= 4 {
		return card
	}
	return strings.Repeat("*", len(card)-4) + card[len(card)-4:]
}

// CanBeCancelled 是否可以取消
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending
}

// Cancel 取消订单，只改状态，金额与快照保持不变
func (o *Order) Cancel() error {
	if !o.CanBeCancelled() {
		return apperror.Conflict("order %s is already %s", o.ConfirmationNumber, strings.ToLower(string(o.Status)))
	}
	o.Status = OrderStatusCancelled
	return nil
}

// InsufficientInventoryError 库存不足
type InsufficientInventoryError struct {
	ProductID   string
	ProductName string
	Requested   int
}

func (e *InsufficientInventoryError) Error() string {
	return "insufficient inventory for product " + e.ProductName + " (" + e.ProductID + ")"
}

// Kind 归类为冲突
func (e *InsufficientInventoryError) Kind() apperror.Kind { return apperror.KindConflict }
