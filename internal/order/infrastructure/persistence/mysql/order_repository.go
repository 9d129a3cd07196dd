// Package mysql 提供了订单仓储接口的 GORM 实现。
package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wyfcoding/smarthome/internal/order/domain"
	"github.com/wyfcoding/smarthome/pkg/db"
	"github.com/wyfcoding/smarthome/pkg/logger"
	"gorm.io/gorm"
)

// orderRepositoryImpl 是 domain.OrderRepository 接口的 GORM 实现。
type orderRepositoryImpl struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储实例
func NewOrderRepository(gdb *gorm.DB) domain.OrderRepository {
	return &orderRepositoryImpl{db: gdb}
}

func (r *orderRepositoryImpl) getDB(ctx context.Context) *gorm.DB {
	return db.Conn(ctx, r.db)
}

// Create 实现 domain.OrderRepository.Create
func (r *orderRepositoryImpl) Create(ctx context.Context, order *domain.Order) error {
	model := toOrderModel(order)
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return domain.ErrDuplicateConfirmation
		}
		logger.Error(ctx, "order_repository.create failed", "confirmation_number", order.ConfirmationNumber, "error", err)
		return fmt.Errorf("failed to create order: %w", err)
	}
	order.ID = model.ID
	order.CreatedAt = model.CreatedAt
	order.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByConfirmation 实现 domain.OrderRepository.GetByConfirmation
func (r *orderRepositoryImpl) GetByConfirmation(ctx context.Context, confirmation string) (*domain.Order, error) {
	var model OrderModel
	if err := r.getDB(ctx).Where("confirmation_number = ?", confirmation).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return toOrder(&model), nil
}

// UpdateStatus 条件更新，并发取消时只有一个请求成功
func (r *orderRepositoryImpl) UpdateStatus(ctx context.Context, confirmation string, from, to domain.OrderStatus) (bool, error) {
	res := r.getDB(ctx).Model(&OrderModel{}).
		Where("confirmation_number = ? AND status = ?", confirmation, string(from)).
		Update("status", string(to))
	if res.Error != nil {
		return false, fmt.Errorf("failed to update order status: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// List 实现 domain.OrderRepository.List
func (r *orderRepositoryImpl) List(ctx context.Context, offset, limit int) ([]*domain.Order, int64, error) {
	var models []OrderModel
	var total int64
	q := r.getDB(ctx).Model(&OrderModel{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}
	if err := q.Order("order_date desc, id desc").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return toOrders(models), total, nil
}

// ListByUserName 实现 domain.OrderRepository.ListByUserName
func (r *orderRepositoryImpl) ListByUserName(ctx context.Context, userName string) ([]*domain.Order, error) {
	var models []OrderModel
	err := r.getDB(ctx).Where("user_name = ?", userName).Order("order_date desc, id desc").Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list order history: %w", err)
	}
	return toOrders(models), nil
}

// ListPlaced 实现 domain.OrderRepository.ListPlaced
func (r *orderRepositoryImpl) ListPlaced(ctx context.Context, since time.Time) ([]*domain.Order, error) {
	q := r.getDB(ctx).Where("status <> ?", string(domain.OrderStatusCancelled))
	if !since.IsZero() {
		q = q.Where("order_date >= ?", since)
	}
	var models []OrderModel
	if err := q.Order("order_date asc, id asc").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list placed orders: %w", err)
	}
	return toOrders(models), nil
}

func toOrders(models []OrderModel) []*domain.Order {
	orders := make([]*domain.Order, len(models))
	for i := range models {
		orders[i] = toOrder(&models[i])
	}
	return orders
}
