package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/smarthome/internal/review/application"
	"github.com/wyfcoding/smarthome/internal/review/domain"
	"github.com/wyfcoding/smarthome/pkg/response"
)

// ReviewHandler 评论 HTTP 处理器
type ReviewHandler struct {
	svc *application.ReviewService
}

// NewReviewHandler 创建评论处理器
func NewReviewHandler(svc *application.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *ReviewHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api")
	{
		api.POST("/product-review", h.SubmitReview)
		api.GET("/product-reviews", h.ListReviews)
		api.GET("/product-reviews/:product_name", h.ListReviewsByProduct)
		api.GET("/trending/liked-products", h.TopLikedProducts)
	}
}

// SubmitReview 提交评论
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	var review domain.Review
	if err := c.ShouldBindJSON(&review); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.svc.SubmitReview(c.Request.Context(), &review)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"message": "Review submitted successfully", "id": id})
}

// ListReviews 全部评论
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	reviews, err := h.svc.ListReviews(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, reviews)
}

// ListReviewsByProduct 某商品的评论
func (h *ReviewHandler) ListReviewsByProduct(c *gin.Context) {
	reviews, err := h.svc.ListReviewsByProduct(c.Request.Context(), c.Param("product_name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, reviews)
}

// TopLikedProducts 评分最高的评论
func (h *ReviewHandler) TopLikedProducts(c *gin.Context) {
	reviews, err := h.svc.TopLikedProducts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, reviews)
}
