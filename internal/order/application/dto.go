package application

import (
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/smarthome/internal/order/domain"
)

// OrderDTO 订单对外展示结构
type OrderDTO struct {
	ID                 uint               `json:"id"`
	ConfirmationNumber string             `json:"confirmation_number"`
	UserID             string             `json:"user_id,omitempty"`
	UserName           string             `json:"user_name"`
	Street             string             `json:"street"`
	City               string             `json:"city"`
	State              string             `json:"state"`
	ZipCode            string             `json:"zip_code"`
	CreditCard         string             `json:"credit_card"`
	DeliveryOption     string             `json:"delivery_option"`
	PickupLocation     string             `json:"pickup_location,omitempty"`
	TotalAmount        decimal.Decimal    `json:"total_amount"`
	OrderDate          string             `json:"order_date"`
	DeliveryDate       string             `json:"delivery_date"`
	Status             string             `json:"status"`
	Items              []domain.OrderItem `json:"items"`
}

// ToOrderDTO 转换为展示结构，支付凭证只保留末四位
func ToOrderDTO(o *domain.Order) *OrderDTO {
	return &OrderDTO{
		ID:                 o.ID,
		ConfirmationNumber: o.ConfirmationNumber,
		UserID:             o.UserID,
		UserName:           o.UserName,
		Street:             o.Street,
		City:               o.City,
		State:              o.State,
		ZipCode:            o.ZipCode,
		CreditCard:         domain.MaskCard(o.CreditCard),
		DeliveryOption:     string(o.DeliveryOption),
		PickupLocation:     o.PickupLocation,
		TotalAmount:        o.TotalAmount,
		OrderDate:          o.OrderDate.UTC().Format("2006-01-02 15:04:05"),
		DeliveryDate:       o.DeliveryDate.UTC().Format("2006-01-02"),
		Status:             string(o.Status),
		Items:              o.Items,
	}
}

// ToOrderDTOs 批量转换
func ToOrderDTOs(orders []*domain.Order) []*OrderDTO {
	out := make([]*OrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToOrderDTO(o))
	}
	return out
}
