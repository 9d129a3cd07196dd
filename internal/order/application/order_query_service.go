package application

import (
	"context"
	"strings"

	"github.com/wyfcoding/smarthome/internal/order/domain"
	"github.com/wyfcoding/smarthome/pkg/apperror"
	"github.com/wyfcoding/smarthome/pkg/utils"
)

// OrderQueryService 订单查询服务
type OrderQueryService struct {
	repo domain.OrderRepository
}

// NewOrderQueryService 创建订单查询服务实例
func NewOrderQueryService(repo domain.OrderRepository) *OrderQueryService {
	return &OrderQueryService{repo: repo}
}

// GetOrder 根据确认号获取订单
func (s *OrderQueryService) GetOrder(ctx context.Context, confirmation string) (*domain.Order, error) {
	order, err := s.repo.GetByConfirmation(ctx, confirmation)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load order")
	}
	if order == nil {
		return nil, apperror.NotFound("order not found")
	}
	return order, nil
}

// ListOrders 分页列出全部订单，最新的在前
func (s *OrderQueryService) ListOrders(ctx context.Context, page, pageSize int) ([]*domain.Order, *utils.Pagination, error) {
	p := utils.NewPagination(page, pageSize, 0)
	orders, total, err := s.repo.List(ctx, p.Offset(), p.Limit())
	if err != nil {
		return nil, nil, apperror.Internal(err, "failed to list orders")
	}
	return orders, utils.NewPagination(p.Page, p.PageSize, total), nil
}

// OrderHistory 某用户的历史订单，最新的在前
func (s *OrderQueryService) OrderHistory(ctx context.Context, userName string) ([]*domain.Order, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return nil, apperror.Validation("user name is required")
	}
	orders, err := s.repo.ListByUserName(ctx, userName)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load order history")
	}
	return orders, nil
}
