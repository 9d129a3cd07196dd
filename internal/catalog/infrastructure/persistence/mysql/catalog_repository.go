// Package mysql 商品目录的 GORM 仓储实现，MySQL 与 PostgreSQL 共用
package mysql

import (
	"context"
	"errors"
	"strings"

	"github.com/wyfcoding/smarthome/internal/catalog/domain"
	"github.com/wyfcoding/smarthome/pkg/db"
	"gorm.io/gorm"
)

type productRepository struct{ db *gorm.DB }

// NewProductRepository 创建商品仓储
func NewProductRepository(gdb *gorm.DB) domain.ProductRepository {
	return &productRepository{db: gdb}
}

func (r *productRepository) getDB(ctx context.Context) *gorm.DB {
	return db.Conn(ctx, r.db)
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.getDB(ctx).Create(product).Error
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	return r.getDB(ctx).Save(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.getDB(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Product, error) {
	var products []*domain.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.getDB(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *productRepository) List(ctx context.Context, categoryID uint) ([]*domain.Product, error) {
	var products []*domain.Product
	q := r.getDB(ctx).Model(&domain.Product{})
	if categoryID != 0 {
		q = q.Where("category_id = ?", categoryID)
	}
	err := q.Order("name asc").Find(&products).Error
	return products, err
}

func (r *productRepository) Search(ctx context.Context, q string) ([]*domain.Product, error) {
	var products []*domain.Product
	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
	err := r.getDB(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Order("name asc").
		Find(&products).Error
	return products, err
}

func (r *productRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.getDB(ctx).Where("id = ?", id).Delete(&domain.Product{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.getDB(ctx).Model(&domain.Product{}).Count(&n).Error
	return n, err
}

func (r *productRepository) CountByCategory(ctx context.Context, categoryID uint) (int64, error) {
	var n int64
	err := r.getDB(ctx).Model(&domain.Product{}).Where("category_id = ?", categoryID).Count(&n).Error
	return n, err
}

// DecrementStock 条件更新：库存判断与扣减在同一条语句中完成，并发下不会超卖
func (r *productRepository) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	res := r.getDB(ctx).Model(&domain.Product{}).
		Where("id = ? AND available_items >= ?", id, qty).
		UpdateColumn("available_items", gorm.Expr("available_items - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

type categoryRepository struct{ db *gorm.DB }

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(gdb *gorm.DB) domain.CategoryRepository {
	return &categoryRepository{db: gdb}
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	return db.Conn(ctx, r.db).Create(category).Error
}

func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	return db.Conn(ctx, r.db).Save(category).Error
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*domain.Category, error) {
	var c domain.Category
	err := db.Conn(ctx, r.db).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	var categories []*domain.Category
	err := db.Conn(ctx, r.db).Order("id asc").Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := db.Conn(ctx, r.db).Delete(&domain.Category{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type storeLocationRepository struct{ db *gorm.DB }

// NewStoreLocationRepository 创建门店仓储
func NewStoreLocationRepository(gdb *gorm.DB) domain.StoreLocationRepository {
	return &storeLocationRepository{db: gdb}
}

func (r *storeLocationRepository) Create(ctx context.Context, loc *domain.StoreLocation) error {
	return db.Conn(ctx, r.db).Create(loc).Error
}

func (r *storeLocationRepository) Update(ctx context.Context, loc *domain.StoreLocation) error {
	return db.Conn(ctx, r.db).Save(loc).Error
}

func (r *storeLocationRepository) GetByID(ctx context.Context, id uint) (*domain.StoreLocation, error) {
	var loc domain.StoreLocation
	err := db.Conn(ctx, r.db).First(&loc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *storeLocationRepository) FindByStreet(ctx context.Context, street string) (*domain.StoreLocation, error) {
	var loc domain.StoreLocation
	err := db.Conn(ctx, r.db).Where("LOWER(street) = ?", strings.ToLower(strings.TrimSpace(street))).First(&loc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *storeLocationRepository) List(ctx context.Context) ([]*domain.StoreLocation, error) {
	var locs []*domain.StoreLocation
	err := db.Conn(ctx, r.db).Order("id asc").Find(&locs).Error
	return locs, err
}

func (r *storeLocationRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := db.Conn(ctx, r.db).Delete(&domain.StoreLocation{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
