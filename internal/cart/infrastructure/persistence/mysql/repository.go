package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/smarthome/internal/cart/domain"
	"github.com/wyfcoding/smarthome/pkg/db"
	"gorm.io/gorm"
)

type cartRepository struct{ db *gorm.DB }

// NewCartRepository 创建购物车仓储
func NewCartRepository(gdb *gorm.DB) domain.CartRepository {
	return &cartRepository{db: gdb}
}

func (r *cartRepository) getDB(ctx context.Context) *gorm.DB {
	return db.Conn(ctx, r.db)
}

func (r *cartRepository) Create(ctx context.Context, item *domain.CartItem) error {
	return r.getDB(ctx).Create(item).Error
}

func (r *cartRepository) GetByID(ctx context.Context, id uint) (*domain.CartItem, error) {
	var item domain.CartItem
	err := r.getDB(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) List(ctx context.Context, userID string) ([]*domain.CartItem, error) {
	var items []*domain.CartItem
	q := r.getDB(ctx).Order("id asc")
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	err := q.Find(&items).Error
	return items, err
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, id uint, quantity int) (bool, error) {
	res := r.getDB(ctx).Model(&domain.CartItem{}).Where("id = ?", id).Update("quantity", quantity)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	// MySQL 在值未变化时 RowsAffected 为 0，需要再确认记录是否存在
	var n int64
	if err := r.getDB(ctx).Model(&domain.CartItem{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *cartRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.getDB(ctx).Delete(&domain.CartItem{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *cartRepository) Clear(ctx context.Context, userID string) (int64, error) {
	q := r.getDB(ctx)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	} else {
		q = q.Where("1 = 1")
	}
	res := q.Delete(&domain.CartItem{})
	return res.RowsAffected, res.Error
}

// DeleteByProduct 删除引用该商品的所有条目
func (r *cartRepository) DeleteByProduct(ctx context.Context, productID string) error {
	return r.getDB(ctx).Where("product_id = ?", productID).Delete(&domain.CartItem{}).Error
}

// DeleteCheckedOut 删除已结算的条目
func (r *cartRepository) DeleteCheckedOut(ctx context.Context, userID string, items map[uint]string) error {
	gdb := r.getDB(ctx)
	for id, productID := range items {
		err := gdb.Where("id = ? AND user_id = ? AND product_id = ?", id, userID, productID).
			Delete(&domain.CartItem{}).Error
		if err != nil {
			return fmt.Errorf("delete checked out cart item %d: %w", id, err)
		}
	}
	return nil
}

// DemandByProduct 按商品汇总购物车数量
func (r *cartRepository) DemandByProduct(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		ProductID string
		Quantity  int
	}
	err := r.getDB(ctx).Model(&domain.CartItem{}).
		Select("product_id, SUM(quantity) AS quantity").
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.ProductID] = row.Quantity
	}
	return out, nil
}
