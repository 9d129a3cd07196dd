package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/smarthome/internal/cart/application"
	"github.com/wyfcoding/smarthome/internal/cart/domain"
	"github.com/wyfcoding/smarthome/pkg/response"
)

// CartHandler 购物车 HTTP 处理器
type CartHandler struct {
	svc *application.CartService
}

// NewCartHandler 创建 HTTP 处理器实例
func NewCartHandler(svc *application.CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *CartHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/cart")
	{
		api.GET("", h.ListItems)
		api.POST("/add", h.AddItem)
		api.PUT("/update/:id", h.UpdateQuantity)
		api.DELETE("/remove/:id", h.RemoveItem)
		api.DELETE("/clear", h.ClearCart)
	}
}

// AddItemRequest 加购请求
type AddItemRequest struct {
	UserID      string                     `json:"user_id"`
	ProductID   string                     `json:"product_id"`
	Quantity    int                        `json:"quantity"`
	Accessories []domain.SelectedAccessory `json:"accessories"`
	Warranty    string                     `json:"warranty"`
	TotalPrice  decimal.NullDecimal        `json:"total_price"`
}

// UpdateQuantityRequest 修改数量请求
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// ListItems 列出购物车
func (h *CartHandler) ListItems(c *gin.Context) {
	lines, err := h.svc.ListItems(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, lines)
}

// AddItem 加购
func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.svc.AddItem(c.Request.Context(), application.AddItemCommand{
		UserID:      req.UserID,
		ProductID:   req.ProductID,
		Quantity:    req.Quantity,
		Accessories: req.Accessories,
		Warranty:    req.Warranty,
		TotalPrice:  req.TotalPrice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// UpdateQuantity 修改数量
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	id, err := application.ParseItemID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.UpdateQuantity(c.Request.Context(), id, req.Quantity); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Item quantity updated")
}

// RemoveItem 移除条目
func (h *CartHandler) RemoveItem(c *gin.Context) {
	id, err := application.ParseItemID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.svc.RemoveItem(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Item removed from cart")
}

// ClearCart 清空购物车
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.svc.ClearCart(c.Request.Context(), c.Query("user_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Cart cleared successfully")
}
