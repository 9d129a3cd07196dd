package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/smarthome/internal/reporting/application"
	"github.com/wyfcoding/smarthome/pkg/response"
)

// ReportingHandler 销售报表 HTTP 处理器
type ReportingHandler struct {
	svc *application.ReportingService
}

// NewReportingHandler 创建报表处理器
func NewReportingHandler(svc *application.ReportingService) *ReportingHandler {
	return &ReportingHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *ReportingHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api")
	{
		api.GET("/daily-sales", serve(h.svc.DailySales))
		api.GET("/trending/sold-products", serve(h.svc.TopSoldProducts))
		api.GET("/trending/zip-codes", serve(h.svc.TopZipCodes))
		api.GET("/revenue-by-category", serve(h.svc.RevenueByCategory))
		api.GET("/sales", serve(h.svc.ProductSales))
		api.GET("/top-selling-products", serve(h.svc.TopSellingProducts))
		api.GET("/sale-products", serve(h.svc.SaleProducts))
		api.GET("/rebate-products", serve(h.svc.RebateProducts))
		api.GET("/inventory", serve(h.svc.Inventory))
		api.GET("/dashboard", serve(h.svc.Dashboard))
		api.GET("/product-count", h.ProductCount)
	}
}

// serve 把无参查询包装成处理函数
func serve[T any](query func(ctx context.Context) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := query(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, out)
	}
}

// ProductCount 商品总数
func (h *ReportingHandler) ProductCount(c *gin.Context) {
	n, err := h.svc.ProductCount(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"product_count": n})
}
