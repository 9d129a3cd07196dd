// Package memory 订单仓储的内存实现
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wyfcoding/smarthome/internal/order/domain"
)

// OrderRepository 内存订单仓储，确认号唯一约束与 SQL 实现一致
type OrderRepository struct {
	mu     sync.Mutex
	nextID uint
	orders map[string]domain.Order
}

// NewOrderRepository 创建内存订单仓储
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]domain.Order)}
}

func cloneOrder(o domain.Order) domain.Order {
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return o
}

func (r *OrderRepository) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ConfirmationNumber]; ok {
		return domain.ErrDuplicateConfirmation
	}
	r.nextID++
	order.ID = r.nextID
	order.CreatedAt = order.OrderDate
	order.UpdatedAt = order.OrderDate
	r.orders[order.ConfirmationNumber] = cloneOrder(*order)
	return nil
}

// Put 直接写入订单，用于准备测试数据
func (r *OrderRepository) Put(order domain.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	order.ID = r.nextID
	r.orders[order.ConfirmationNumber] = cloneOrder(order)
}

func (r *OrderRepository) GetByConfirmation(_ context.Context, confirmation string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[confirmation]
	if !ok {
		return nil, nil
	}
	cp := cloneOrder(o)
	return &cp, nil
}

func (r *OrderRepository) UpdateStatus(_ context.Context, confirmation string, from, to domain.OrderStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[confirmation]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	r.orders[confirmation] = o
	return true, nil
}

func (r *OrderRepository) List(_ context.Context, offset, limit int) ([]*domain.Order, int64, error) {
	all := r.sorted(func(domain.Order) bool { return true })
	total := int64(len(all))
	if offset >= len(all) {
		return []*domain.Order{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *OrderRepository) ListByUserName(_ context.Context, userName string) ([]*domain.Order, error) {
	return r.sorted(func(o domain.Order) bool { return o.UserName == userName }), nil
}

func (r *OrderRepository) ListPlaced(_ context.Context, since time.Time) ([]*domain.Order, error) {
	out := r.sorted(func(o domain.Order) bool {
		return o.Status != domain.OrderStatusCancelled && (since.IsZero() || !o.OrderDate.Before(since))
	})
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// All 返回全部订单
func (r *OrderRepository) All() []*domain.Order {
	return r.sorted(func(domain.Order) bool { return true })
}

func (r *OrderRepository) sorted(keep func(domain.Order) bool) []*domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if keep(o) {
			cp := cloneOrder(o)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderDate.After(out[j].OrderDate)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// Snapshot 保存当前全部订单，返回的函数用于回滚
func (r *OrderRepository) Snapshot() (restore func()) {
	r.mu.Lock()
	saved := make(map[string]domain.Order, len(r.orders))
	for k, o := range r.orders {
		saved[k] = cloneOrder(o)
	}
	nextID := r.nextID
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		r.orders = saved
		r.nextID = nextID
		r.mu.Unlock()
	}
}
