package application

import (
	"context"
	"strings"

	"github.com/wyfcoding/smarthome/internal/catalog/domain"
	"github.com/wyfcoding/smarthome/pkg/apperror"
)

// CatalogQueryService 商品目录查询服务
type CatalogQueryService struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
	locations  domain.StoreLocationRepository
}

// NewCatalogQueryService 创建商品目录查询服务实例
func NewCatalogQueryService(
	products domain.ProductRepository,
	categories domain.CategoryRepository,
	locations domain.StoreLocationRepository,
) *CatalogQueryService {
	return &CatalogQueryService{
		products:   products,
		categories: categories,
		locations:  locations,
	}
}

// GetProduct 根据 ID 获取商品
func (s *CatalogQueryService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load product")
	}
	if product == nil {
		return nil, apperror.NotFound("product not found")
	}
	return product, nil
}

// ListProducts 列出商品，categoryID 为 0 时不过滤
func (s *CatalogQueryService) ListProducts(ctx context.Context, categoryID uint) ([]*domain.Product, error) {
	products, err := s.products.List(ctx, categoryID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list products")
	}
	return products, nil
}

// SearchProducts 按名称或描述做不区分大小写的子串匹配
func (s *CatalogQueryService) SearchProducts(ctx context.Context, q string) ([]*domain.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperror.Validation("search query is required")
	}
	products, err := s.products.Search(ctx, q)
	if err != nil {
		return nil, apperror.Internal(err, "failed to search products")
	}
	return products, nil
}

// GetCategory 获取分类
func (s *CatalogQueryService) GetCategory(ctx context.Context, id uint) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load category")
	}
	if category == nil {
		return nil, apperror.NotFound("category not found")
	}
	return category, nil
}

// ListCategories 列出分类
func (s *CatalogQueryService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list categories")
	}
	return categories, nil
}

// GetStoreLocation 获取门店
func (s *CatalogQueryService) GetStoreLocation(ctx context.Context, id uint) (*domain.StoreLocation, error) {
	loc, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load store location")
	}
	if loc == nil {
		return nil, apperror.NotFound("store location not found")
	}
	return loc, nil
}

// ListStoreLocations 列出门店
func (s *CatalogQueryService) ListStoreLocations(ctx context.Context) ([]*domain.StoreLocation, error) {
	locs, err := s.locations.List(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list store locations")
	}
	return locs, nil
}
