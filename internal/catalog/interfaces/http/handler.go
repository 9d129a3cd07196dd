package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/smarthome/internal/catalog/application"
	"github.com/wyfcoding/smarthome/internal/catalog/domain"
	"github.com/wyfcoding/smarthome/pkg/response"
)

// CatalogHandler 商品目录 HTTP 处理器
type CatalogHandler struct {
	svc *application.CatalogService
}

// NewCatalogHandler 创建 HTTP 处理器实例
func NewCatalogHandler(svc *application.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	products := router.Group("/api/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/search", h.SearchProducts)
		products.GET("/:id", h.GetProduct)
		products.POST("/add", h.CreateProduct)
		products.PUT("/update/:id", h.UpdateProduct)
		products.DELETE("/delete/:id", h.DeleteProduct)
	}

	categories := router.Group("/api/categories")
	{
		categories.GET("", h.ListCategories)
		categories.POST("", h.CreateCategory)
		categories.GET("/:id", h.GetCategory)
		categories.PUT("/:id", h.UpdateCategory)
		categories.DELETE("/:id", h.DeleteCategory)
	}

	locations := router.Group("/api/store-locations")
	{
		locations.GET("", h.ListStoreLocations)
		locations.POST("", h.CreateStoreLocation)
		locations.GET("/:id", h.GetStoreLocation)
		locations.PUT("/:id", h.UpdateStoreLocation)
		locations.DELETE("/:id", h.DeleteStoreLocation)
	}
}

// ProductRequest 创建/更新商品请求
// category 为旧客户端使用的分类字段名，与 category_id 等价
type ProductRequest struct {
	Name               string              `json:"name" binding:"required"`
	Description        string              `json:"description"`
	Price              decimal.Decimal     `json:"price"`
	CategoryID         uint                `json:"category_id"`
	Category           uint                `json:"category"`
	Manufacturer       string              `json:"manufacturer"`
	ImageURL           string              `json:"image_url"`
	Accessories        []domain.Accessory  `json:"accessories"`
	WarrantyOptions    []string            `json:"warranty_options"`
	RetailerDiscount   decimal.NullDecimal `json:"retailer_discount"`
	ManufacturerRebate decimal.NullDecimal `json:"manufacturer_rebate"`
	AvailableItems     int                 `json:"available_items"`
}

func (r ProductRequest) command() application.ProductCommand {
	categoryID := r.CategoryID
	if categoryID == 0 {
		categoryID = r.Category
	}
	return application.ProductCommand{
		Name:               r.Name,
		Description:        r.Description,
		Price:              r.Price,
		CategoryID:         categoryID,
		Manufacturer:       r.Manufacturer,
		ImageURL:           r.ImageURL,
		Accessories:        r.Accessories,
		WarrantyOptions:    r.WarrantyOptions,
		RetailerDiscount:   r.RetailerDiscount,
		ManufacturerRebate: r.ManufacturerRebate,
		AvailableItems:     r.AvailableItems,
	}
}

// ListProducts 列出商品
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var categoryID uint
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.ErrorWithStatus(c, http.StatusBadRequest, "invalid category_id")
			return
		}
		categoryID = uint(id)
	}

	products, err := h.svc.ListProducts(c.Request.Context(), categoryID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, products)
}

// SearchProducts 搜索商品
func (h *CatalogHandler) SearchProducts(c *gin.Context) {
	products, err := h.svc.SearchProducts(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, products)
}

// GetProduct 获取商品详情
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.svc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.svc.CreateProduct(c.Request.Context(), req.command())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"message": "Product added successfully", "product": product})
}

// UpdateProduct 更新商品
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.svc.UpdateProduct(c.Request.Context(), c.Param("id"), req.command())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Product updated successfully", "product": product})
}

// DeleteProduct 删除商品
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	if err := h.svc.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Product deleted successfully")
}

// CategoryRequest 分类请求
type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListCategories 列出分类
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, categories)
}

// GetCategory 获取分类
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	category, err := h.svc.GetCategory(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, category)
}

// CreateCategory 创建分类
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}
	category, err := h.svc.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, category)
}

// UpdateCategory 重命名分类
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}
	category, err := h.svc.UpdateCategory(c.Request.Context(), id, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, category)
}

// DeleteCategory 删除分类
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteCategory(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Category deleted successfully")
}

// StoreLocationRequest 门店请求，兼容 zipCode 写法
type StoreLocationRequest struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	ZipCode    string `json:"zip_code"`
	ZipCodeAlt string `json:"zipCode"`
}

func (r StoreLocationRequest) command() application.StoreLocationCommand {
	zip := r.ZipCode
	if zip == "" {
		zip = r.ZipCodeAlt
	}
	return application.StoreLocationCommand{Street: r.Street, City: r.City, State: r.State, ZipCode: zip}
}

// ListStoreLocations 列出门店
func (h *CatalogHandler) ListStoreLocations(c *gin.Context) {
	locs, err := h.svc.ListStoreLocations(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, locs)
}

// GetStoreLocation 获取门店
func (h *CatalogHandler) GetStoreLocation(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	loc, err := h.svc.GetStoreLocation(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, loc)
}

// CreateStoreLocation 创建门店
func (h *CatalogHandler) CreateStoreLocation(c *gin.Context) {
	var req StoreLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}
	loc, err := h.svc.CreateStoreLocation(c.Request.Context(), req.command())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, loc)
}

// UpdateStoreLocation 更新门店
func (h *CatalogHandler) UpdateStoreLocation(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req StoreLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}
	loc, err := h.svc.UpdateStoreLocation(c.Request.Context(), id, req.command())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, loc)
}

// DeleteStoreLocation 删除门店
func (h *CatalogHandler) DeleteStoreLocation(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteStoreLocation(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Store location deleted successfully")
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
