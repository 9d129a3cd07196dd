// Package memory 商品目录仓储的内存实现，用于测试与本地调试
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/wyfcoding/smarthome/internal/catalog/domain"
)

// ProductRepository 内存商品仓储，返回值均为副本
type ProductRepository struct {
	mu       sync.Mutex
	products map[string]domain.Product
}

// NewProductRepository 创建内存商品仓储
func NewProductRepository(seed ...*domain.Product) *ProductRepository {
	r := &ProductRepository{products: make(map[string]domain.Product)}
	for _, p := range seed {
		r.products[p.ID] = cloneProduct(*p)
	}
	return r
}

func cloneProduct(p domain.Product) domain.Product {
	p.Accessories = append([]domain.Accessory(nil), p.Accessories...)
	p.WarrantyOptions = append([]string(nil), p.WarrantyOptions...)
	return p
}

func (r *ProductRepository) Create(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = cloneProduct(*product)
	return nil
}

func (r *ProductRepository) Update(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = cloneProduct(*product)
	return nil
}

func (r *ProductRepository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := cloneProduct(p)
	return &cp, nil
}

func (r *ProductRepository) GetByIDs(_ context.Context, ids []string) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			cp := cloneProduct(p)
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *ProductRepository) List(_ context.Context, categoryID uint) ([]*domain.Product, error) {
	return r.filter(func(p domain.Product) bool {
		return categoryID == 0 || p.CategoryID == categoryID
	}), nil
}

func (r *ProductRepository) Search(_ context.Context, q string) ([]*domain.Product, error) {
	q = strings.ToLower(q)
	return r.filter(func(p domain.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q)
	}), nil
}

func (r *ProductRepository) filter(keep func(domain.Product) bool) []*domain.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Product, 0)
	for _, p := range r.products {
		if keep(p) {
			cp := cloneProduct(p)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *ProductRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return false, nil
	}
	delete(r.products, id)
	return true, nil
}

func (r *ProductRepository) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}

func (r *ProductRepository) CountByCategory(_ context.Context, categoryID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.products {
		if p.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

// DecrementStock 与 SQL 条件更新语义一致：检查与扣减在同一把锁内完成
func (r *ProductRepository) DecrementStock(_ context.Context, id string, qty int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.AvailableItems < qty {
		return false, nil
	}
	p.AvailableItems -= qty
	r.products[id] = p
	return true, nil
}

// Snapshot 保存当前全部商品，返回的函数用于回滚到该快照
func (r *ProductRepository) Snapshot() (restore func()) {
	r.mu.Lock()
	saved := make(map[string]domain.Product, len(r.products))
	for id, p := range r.products {
		saved[id] = cloneProduct(p)
	}
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		r.products = saved
		r.mu.Unlock()
	}
}

// CategoryRepository 内存分类仓储
type CategoryRepository struct {
	mu         sync.Mutex
	nextID     uint
	categories map[uint]domain.Category
}

// NewCategoryRepository 创建内存分类仓储
func NewCategoryRepository(seed ...*domain.Category) *CategoryRepository {
	r := &CategoryRepository{categories: make(map[uint]domain.Category)}
	for _, c := range seed {
		r.categories[c.ID] = *c
		if c.ID > r.nextID {
			r.nextID = c.ID
		}
	}
	return r
}

func (r *CategoryRepository) Create(_ context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	category.ID = r.nextID
	r.categories[category.ID] = *category
	return nil
}

func (r *CategoryRepository) Update(_ context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[category.ID] = *category
	return nil
}

func (r *CategoryRepository) GetByID(_ context.Context, id uint) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *CategoryRepository) List(_ context.Context) ([]*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Category, 0, len(r.categories))
	for _, c := range r.categories {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CategoryRepository) Delete(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return false, nil
	}
	delete(r.categories, id)
	return true, nil
}

// StoreLocationRepository 内存门店仓储
type StoreLocationRepository struct {
	mu     sync.Mutex
	nextID uint
	locs   map[uint]domain.StoreLocation
}

// NewStoreLocationRepository 创建内存门店仓储
func NewStoreLocationRepository(seed ...*domain.StoreLocation) *StoreLocationRepository {
	r := &StoreLocationRepository{locs: make(map[uint]domain.StoreLocation)}
	for _, l := range seed {
		r.locs[l.ID] = *l
		if l.ID > r.nextID {
			r.nextID = l.ID
		}
	}
	return r
}

func (r *StoreLocationRepository) Create(_ context.Context, loc *domain.StoreLocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	loc.ID = r.nextID
	r.locs[loc.ID] = *loc
	return nil
}

func (r *StoreLocationRepository) Update(_ context.Context, loc *domain.StoreLocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locs[loc.ID] = *loc
	return nil
}

func (r *StoreLocationRepository) GetByID(_ context.Context, id uint) (*domain.StoreLocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locs[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *StoreLocationRepository) FindByStreet(_ context.Context, street string) (*domain.StoreLocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.locs {
		if strings.EqualFold(l.Street, strings.TrimSpace(street)) {
			l := l
			return &l, nil
		}
	}
	return nil, nil
}

func (r *StoreLocationRepository) List(_ context.Context) ([]*domain.StoreLocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.StoreLocation, 0, len(r.locs))
	for _, l := range r.locs {
		l := l
		out = append(out, &l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *StoreLocationRepository) Delete(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.locs[id]; !ok {
		return false, nil
	}
	delete(r.locs, id)
	return true, nil
}
