// Package memory 购物车仓储的内存实现
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/wyfcoding/smarthome/internal/cart/domain"
)

// CartRepository 内存购物车仓储
type CartRepository struct {
	mu     sync.Mutex
	nextID uint
	items  map[uint]domain.CartItem
}

// NewCartRepository 创建内存购物车仓储
func NewCartRepository() *CartRepository {
	return &CartRepository{items: make(map[uint]domain.CartItem)}
}

func (r *CartRepository) Create(_ context.Context, item *domain.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = *item
	return nil
}

func (r *CartRepository) GetByID(_ context.Context, id uint) (*domain.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (r *CartRepository) List(_ context.Context, userID string) ([]*domain.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.CartItem, 0, len(r.items))
	for _, it := range r.items {
		if userID == "" || it.UserID == userID {
			it := it
			out = append(out, &it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CartRepository) UpdateQuantity(_ context.Context, id uint, quantity int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return false, nil
	}
	it.Quantity = quantity
	r.items[id] = it
	return true, nil
}

func (r *CartRepository) Delete(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

func (r *CartRepository) Clear(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, it := range r.items {
		if userID == "" || it.UserID == userID {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

func (r *CartRepository) DeleteByProduct(_ context.Context, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, it := range r.items {
		if it.ProductID == productID {
			delete(r.items, id)
		}
	}
	return nil
}

func (r *CartRepository) DeleteCheckedOut(_ context.Context, userID string, items map[uint]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, productID := range items {
		if it, ok := r.items[id]; ok && it.UserID == userID && it.ProductID == productID {
			delete(r.items, id)
		}
	}
	return nil
}

func (r *CartRepository) DemandByProduct(_ context.Context) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int)
	for _, it := range r.items {
		out[it.ProductID] += it.Quantity
	}
	return out, nil
}

// Snapshot 保存当前全部条目，返回的函数用于回滚
func (r *CartRepository) Snapshot() (restore func()) {
	r.mu.Lock()
	saved := make(map[uint]domain.CartItem, len(r.items))
	for id, it := range r.items {
		saved[id] = it
	}
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		r.items = saved
		r.mu.Unlock()
	}
}
