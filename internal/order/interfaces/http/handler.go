package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/smarthome/internal/order/application"
	"github.com/wyfcoding/smarthome/pkg/response"
)

// OrderHandler HTTP 处理器
// 负责处理与订单相关的 HTTP 请求
type OrderHandler struct {
	svc *application.OrderService
}

// NewOrderHandler 创建 HTTP 处理器实例
func NewOrderHandler(svc *application.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/api/place-order", h.PlaceOrder)
	router.GET("/api/orderhistory/:user_name", h.OrderHistory)

	api := router.Group("/api/orders")
	{
		api.GET("", h.ListOrders)
		api.GET("/:confirmation_number", h.GetOrder)
		api.PUT("/cancel/:confirmation_number", h.CancelOrder)
	}
}

// AccessoryRequest 所选配件
type AccessoryRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CartItemRequest 结算的购物车条目
type CartItemRequest struct {
	CartItemID  uint               `json:"cart_item_id"`
	ProductID   string             `json:"product_id"`
	ProductName string             `json:"product_name"`
	Quantity    int                `json:"quantity"`
	Warranty    string             `json:"warranty"`
	Accessories []AccessoryRequest `json:"accessories"`
}

// PlaceOrderRequest 下单请求，字段名与前端结算页保持一致
type PlaceOrderRequest struct {
	UserID         string              `json:"user_id"`
	Name           string              `json:"name"`
	Street         string              `json:"street"`
	City           string              `json:"city"`
	State          string              `json:"state"`
	ZipCode        string              `json:"zipCode"`
	CreditCard     string              `json:"creditCard"`
	DeliveryOption string              `json:"deliveryOption"`
	PickupLocation string              `json:"pickupLocation"`
	TotalAmount    decimal.NullDecimal `json:"totalAmount"`
	CartItems      []CartItemRequest   `json:"cartItems"`
}

// PlaceOrder 下单
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	cmd := application.PlaceOrderCommand{
		UserID:         req.UserID,
		UserName:       req.Name,
		Street:         req.Street,
		City:           req.City,
		State:          req.State,
		ZipCode:        req.ZipCode,
		CreditCard:     req.CreditCard,
		DeliveryOption: req.DeliveryOption,
		PickupLocation: req.PickupLocation,
		ClientTotal:    req.TotalAmount,
		Lines:          make([]application.OrderLine, 0, len(req.CartItems)),
	}
	for _, it := range req.CartItems {
		line := application.OrderLine{
			CartItemID: it.CartItemID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			Warranty:   it.Warranty,
		}
		for _, a := range it.Accessories {
			line.Accessories = append(line.Accessories, application.AccessorySelection{ID: a.ID, Name: a.Name})
		}
		cmd.Lines = append(cmd.Lines, line)
	}

	order, err := h.svc.PlaceOrder(c.Request.Context(), cmd)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{
		"message":             "Order placed successfully",
		"order_id":            order.ID,
		"confirmation_number": order.ConfirmationNumber,
		"total_amount":        order.TotalAmount,
		"delivery_date":       order.DeliveryDate.UTC().Format("2006-01-02"),
	})
}

// CancelOrder 取消订单
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	confirmation := c.Param("confirmation_number")
	order, err := h.svc.CancelOrder(c.Request.Context(), confirmation)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"message":             "Order cancelled successfully",
		"confirmation_number": order.ConfirmationNumber,
		"status":              order.Status,
	})
}

// GetOrder 获取订单
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.svc.GetOrder(c.Request.Context(), c.Param("confirmation_number"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, application.ToOrderDTO(order))
}

// ListOrders 分页列出订单，总数放在 X-Total-Count 头中
func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	orders, p, err := h.svc.ListOrders(c.Request.Context(), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("X-Total-Count", strconv.FormatInt(p.Total, 10))
	response.Success(c, application.ToOrderDTOs(orders))
}

// OrderHistory 用户历史订单
func (h *OrderHandler) OrderHistory(c *gin.Context) {
	orders, err := h.svc.OrderHistory(c.Request.Context(), c.Param("user_name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, application.ToOrderDTOs(orders))
}
