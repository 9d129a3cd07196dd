package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/smarthome/internal/catalog/domain"
	"github.com/wyfcoding/smarthome/pkg/apperror"
	"github.com/wyfcoding/smarthome/pkg/db"
	"github.com/wyfcoding/smarthome/pkg/logger"
)

// ProductCommand 创建/更新商品命令，更新时整体替换所有字段
type ProductCommand struct {
	Name               string
	Description        string
	Price              decimal.Decimal
	CategoryID         uint
	Manufacturer       string
	ImageURL           string
	Accessories        []domain.Accessory
	WarrantyOptions    []string
	RetailerDiscount   decimal.NullDecimal
	ManufacturerRebate decimal.NullDecimal
	AvailableItems     int
}

// StoreLocationCommand 门店命令
type StoreLocationCommand struct {
	Street  string
	City    string
	State   string
	ZipCode string
}

// CatalogCommandService 商品目录命令服务
type CatalogCommandService struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
	locations  domain.StoreLocationRepository
	carts      domain.CartCleaner
	publisher  domain.EventPublisher
	mirror     domain.CatalogMirror
	tx         db.TxManager
}

// NewCatalogCommandService 创建商品目录命令服务实例
func NewCatalogCommandService(
	products domain.ProductRepository,
	categories domain.CategoryRepository,
	locations domain.StoreLocationRepository,
	carts domain.CartCleaner,
	publisher domain.EventPublisher,
	mirror domain.CatalogMirror,
	tx db.TxManager,
) *CatalogCommandService {
	if mirror == nil {
		mirror = nopMirror{}
	}
	return &CatalogCommandService{
		products:   products,
		categories: categories,
		locations:  locations,
		carts:      carts,
		publisher:  publisher,
		mirror:     mirror,
		tx:         tx,
	}
}

type nopMirror struct{}

func (nopMirror) Trigger() {}

// CreateProduct 处理创建商品
func (s *CatalogCommandService) CreateProduct(ctx context.Context, cmd ProductCommand) (*domain.Product, error) {
	product := &domain.Product{ID: uuid.NewString()}
	applyProductCommand(product, cmd)
	assignAccessoryIDs(product.Accessories)

	if err := product.Validate(); err != nil {
		return nil, err
	}

	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.ensureCategory(ctx, product.CategoryID); err != nil {
			return err
		}
		if err := s.products.Create(ctx, product); err != nil {
			return apperror.Internal(err, "failed to create product")
		}
		return s.publisher.Publish(ctx, domain.TopicProductCreated, product.ID, domain.ProductCreatedEvent{
			ProductID:      product.ID,
			Name:           product.Name,
			Price:          product.Price,
			AvailableItems: product.AvailableItems,
			CategoryID:     product.CategoryID,
			Timestamp:      time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Product created", "product_id", product.ID, "name", product.Name)
	s.mirror.Trigger()
	return product, nil
}

// UpdateProduct 处理更新商品
func (s *CatalogCommandService) UpdateProduct(ctx context.Context, id string, cmd ProductCommand) (*domain.Product, error) {
	var updated *domain.Product
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		product, err := s.products.GetByID(ctx, id)
		if err != nil {
			return apperror.Internal(err, "failed to load product")
		}
		if product == nil {
			return apperror.NotFound("product not found")
		}

		oldStock := product.AvailableItems
		applyProductCommand(product, cmd)
		assignAccessoryIDs(product.Accessories)
		if err := product.Validate(); err != nil {
			return err
		}
		if err := s.ensureCategory(ctx, product.CategoryID); err != nil {
			return err
		}
		if err := s.products.Update(ctx, product); err != nil {
			return apperror.Internal(err, "failed to update product")
		}

		now := time.Now()
		if err := s.publisher.Publish(ctx, domain.TopicProductUpdated, product.ID, domain.ProductUpdatedEvent{
			ProductID:      product.ID,
			Name:           product.Name,
			Price:          product.Price,
			AvailableItems: product.AvailableItems,
			CategoryID:     product.CategoryID,
			Timestamp:      now,
		}); err != nil {
			return err
		}

		// 库存被人工调整时单独发布库存变更事件
		if oldStock != product.AvailableItems {
			if err := s.publisher.Publish(ctx, domain.TopicStockChanged, product.ID, domain.ProductStockChangedEvent{
				ProductID: product.ID,
				OldStock:  oldStock,
				NewStock:  product.AvailableItems,
				Timestamp: now,
			}); err != nil {
				return err
			}
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.mirror.Trigger()
	return updated, nil
}

// DeleteProduct 删除商品，并在同一事务中删除引用它的购物车条目
func (s *CatalogCommandService) DeleteProduct(ctx context.Context, id string) error {
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.carts.DeleteByProduct(ctx, id); err != nil {
			return apperror.Internal(err, "failed to delete cart items")
		}
		deleted, err := s.products.Delete(ctx, id)
		if err != nil {
			return apperror.Internal(err, "failed to delete product")
		}
		if !deleted {
			return apperror.NotFound("product not found")
		}
		return s.publisher.Publish(ctx, domain.TopicProductDeleted, id, domain.ProductDeletedEvent{
			ProductID: id,
			Timestamp: time.Now(),
		})
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "Product deleted", "product_id", id)
	s.mirror.Trigger()
	return nil
}

// CreateCategory 创建分类
func (s *CatalogCommandService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("category name is required")
	}
	category := &domain.Category{Name: name}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, apperror.Internal(err, "failed to create category")
	}
	s.mirror.Trigger()
	return category, nil
}

// UpdateCategory 重命名分类
func (s *CatalogCommandService) UpdateCategory(ctx context.Context, id uint, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("category name is required")
	}
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load category")
	}
	if category == nil {
		return nil, apperror.NotFound("category not found")
	}
	category.Name = name
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, apperror.Internal(err, "failed to update category")
	}

	// 导出文件中包含分类名
	s.mirror.Trigger()
	return category, nil
}

// DeleteCategory 删除分类，仍被商品引用时拒绝
func (s *CatalogCommandService) DeleteCategory(ctx context.Context, id uint) error {
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		category, err := s.categories.GetByID(ctx, id)
		if err != nil {
			return apperror.Internal(err, "failed to load category")
		}
		if category == nil {
			return apperror.NotFound("category not found")
		}
		n, err := s.products.CountByCategory(ctx, id)
		if err != nil {
			return apperror.Internal(err, "failed to count products")
		}
		if n > 0 {
			return apperror.Conflict("category %q is still referenced by %d products", category.Name, n)
		}
		if _, err := s.categories.Delete(ctx, id); err != nil {
			return apperror.Internal(err, "failed to delete category")
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "Category deleted", "category_id", id)
	s.mirror.Trigger()
	return nil
}

// CreateStoreLocation 创建门店
func (s *CatalogCommandService) CreateStoreLocation(ctx context.Context, cmd StoreLocationCommand) (*domain.StoreLocation, error) {
	loc := &domain.StoreLocation{
		Street:  strings.TrimSpace(cmd.Street),
		City:    strings.TrimSpace(cmd.City),
		State:   strings.TrimSpace(cmd.State),
		ZipCode: strings.TrimSpace(cmd.ZipCode),
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	if err := s.locations.Create(ctx, loc); err != nil {
		return nil, apperror.Internal(err, "failed to create store location")
	}
	return loc, nil
}

// UpdateStoreLocation 更新门店
func (s *CatalogCommandService) UpdateStoreLocation(ctx context.Context, id uint, cmd StoreLocationCommand) (*domain.StoreLocation, error) {
	loc, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load store location")
	}
	if loc == nil {
		return nil, apperror.NotFound("store location not found")
	}
	loc.Street = strings.TrimSpace(cmd.Street)
	loc.City = strings.TrimSpace(cmd.City)
	loc.State = strings.TrimSpace(cmd.State)
	loc.ZipCode = strings.TrimSpace(cmd.ZipCode)
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	if err := s.locations.Update(ctx, loc); err != nil {
		return nil, apperror.Internal(err, "failed to update store location")
	}
	return loc, nil
}

// DeleteStoreLocation 删除门店
func (s *CatalogCommandService) DeleteStoreLocation(ctx context.Context, id uint) error {
	deleted, err := s.locations.Delete(ctx, id)
	if err != nil {
		return apperror.Internal(err, "failed to delete store location")
	}
	if !deleted {
		return apperror.NotFound("store location not found")
	}
	return nil
}

func (s *CatalogCommandService) ensureCategory(ctx context.Context, id uint) error {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return apperror.Internal(err, "failed to load category")
	}
	if category == nil {
		return apperror.Validation("category %d does not exist", id)
	}
	return nil
}

func applyProductCommand(p *domain.Product, cmd ProductCommand) {
	p.Name = strings.TrimSpace(cmd.Name)
	p.Description = cmd.Description
	p.Price = cmd.Price
	p.CategoryID = cmd.CategoryID
	p.Manufacturer = cmd.Manufacturer
	p.ImageURL = cmd.ImageURL
	p.Accessories = cmd.Accessories
	p.WarrantyOptions = cmd.WarrantyOptions
	p.RetailerDiscount = cmd.RetailerDiscount
	p.ManufacturerRebate = cmd.ManufacturerRebate
	p.AvailableItems = cmd.AvailableItems
}

func assignAccessoryIDs(accessories []domain.Accessory) {
	for i := range accessories {
		if accessories[i].ID == "" {
			accessories[i].ID = uuid.NewString()
		}
	}
}
