package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/smarthome/pkg/apperror"
)

// SelectedAccessory 用户在加购时选择的配件
type SelectedAccessory struct {
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// CartItem 购物车条目
// UserID 为空表示匿名共享购物车；TotalPrice 由客户端计算，下单时以服务端重算结果为准
type CartItem struct {
	ID          uint                `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID      string              `gorm:"column:user_id;type:varchar(36);index" json:"user_id,omitempty"`
	ProductID   string              `gorm:"column:product_id;type:varchar(36);index;not null" json:"product_id"`
	Accessories []SelectedAccessory `gorm:"column:accessories;type:text;serializer:json" json:"accessories"`
	Warranty    string              `gorm:"column:warranty;type:varchar(50)" json:"warranty"`
	Quantity    int                 `gorm:"column:quantity;not null" json:"quantity"`
	TotalPrice  decimal.Decimal     `gorm:"column:total_price;type:decimal(12,2);not null" json:"total_price"`
	CreatedAt   time.Time           `gorm:"column:created_at" json:"created_at"`
}

func (CartItem) TableName() string { return "cart_items" }

// Validate 校验条目
func (i *CartItem) Validate() error {
	if strings.TrimSpace(i.ProductID) == "" {
		return apperror.Validation("product_id is required")
	}
	if i.Quantity <= 0 {
		return apperror.Validation("quantity must be greater than 0")
	}
	if i.TotalPrice.IsNegative() {
		return apperror.Validation("total_price must not be negative")
	}
	return nil
}

// CartLine 购物车列表展示行，附带商品名
type CartLine struct {
	CartItem
	ProductName string `json:"product_name"`
}
