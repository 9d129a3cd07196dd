package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/smarthome/internal/order/domain"
)

// OrderModel 订单表映射
type OrderModel struct {
	ID                 uint                `gorm:"primaryKey;autoIncrement"`
	CreatedAt          time.Time           `gorm:"column:created_at"`
	UpdatedAt          time.Time           `gorm:"column:updated_at"`
	ConfirmationNumber string              `gorm:"column:confirmation_number;type:varchar(32);uniqueIndex;not null"`
	UserID             string              `gorm:"column:user_id;type:varchar(36);index"`
	UserName           string              `gorm:"column:user_name;type:varchar(80);index;not null"`
	Street             string              `gorm:"column:street;type:varchar(120);not null"`
	City               string              `gorm:"column:city;type:varchar(80);not null"`
	State              string              `gorm:"column:state;type:varchar(50);not null"`
	ZipCode            string              `gorm:"column:zip_code;type:varchar(20);index;not null"`
	CreditCard         string              `gorm:"column:credit_card;type:varchar(64);not null"`
	DeliveryOption     string              `gorm:"column:delivery_option;type:varchar(20);not null"`
	PickupLocation     string              `gorm:"column:pickup_location;type:varchar(120)"`
	TotalAmount        decimal.Decimal     `gorm:"column:total_amount;type:decimal(12,2);not null"`
	OrderDate          time.Time           `gorm:"column:order_date;index;not null"`
	DeliveryDate       time.Time           `gorm:"column:delivery_date;not null"`
	OrderItems         []domain.OrderItem  `gorm:"column:order_items;type:text;serializer:json;not null"`
	Status             string              `gorm:"column:status;type:varchar(20);index;not null;default:'Pending'"`
}

func (OrderModel) TableName() string { return "orders" }

func toOrderModel(o *domain.Order) *OrderModel {
	if o == nil {
		return nil
	}
	return &OrderModel{
		ID:                 o.ID,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
		ConfirmationNumber: o.ConfirmationNumber,
		UserID:             o.UserID,
		UserName:           o.UserName,
		Street:             o.Street,
		City:               o.City,
		State:              o.State,
		ZipCode:            o.ZipCode,
		CreditCard:         o.CreditCard,
		DeliveryOption:     string(o.DeliveryOption),
		PickupLocation:     o.PickupLocation,
		TotalAmount:        o.TotalAmount,
		OrderDate:          o.OrderDate,
		DeliveryDate:       o.DeliveryDate,
		OrderItems:         o.Items,
		Status:             string(o.Status),
	}
}

func toOrder(m *OrderModel) *domain.Order {
	if m == nil {
		return nil
	}
	return &domain.Order{
		ID:                 m.ID,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
		ConfirmationNumber: m.ConfirmationNumber,
		UserID:             m.UserID,
		UserName:           m.UserName,
		Street:             m.Street,
		City:               m.City,
		State:              m.State,
		ZipCode:            m.ZipCode,
		CreditCard:         m.CreditCard,
		DeliveryOption:     domain.DeliveryOption(m.DeliveryOption),
		PickupLocation:     m.PickupLocation,
		TotalAmount:        m.TotalAmount,
		OrderDate:          m.OrderDate,
		DeliveryDate:       m.DeliveryDate,
		Items:              m.OrderItems,
		Status:             domain.OrderStatus(m.Status),
	}
}
