package domain

import "context"

// ProductRepository 商品仓储
// 查询方法在记录不存在时返回 nil, nil
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]*Product, error)
	// List categoryID 为 0 时返回全部
	List(ctx context.Context, categoryID uint) ([]*Product, error)
	// Search 名称或描述包含 q（不区分大小写）
	Search(ctx context.Context, q string) ([]*Product, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
	CountByCategory(ctx context.Context, categoryID uint) (int64, error)
	// DecrementStock 库存充足时原子扣减 qty，库存不足返回 false 且不做任何修改
	DecrementStock(ctx context.Context, id string, qty int) (bool, error)
}

// CategoryRepository 分类仓储
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	Update(ctx context.Context, category *Category) error
	GetByID(ctx context.Context, id uint) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
	Delete(ctx context.Context, id uint) (bool, error)
}

// StoreLocationRepository 门店仓储
type StoreLocationRepository interface {
	Create(ctx context.Context, loc *StoreLocation) error
	Update(ctx context.Context, loc *StoreLocation) error
	GetByID(ctx context.Context, id uint) (*StoreLocation, error)
	FindByStreet(ctx context.Context, street string) (*StoreLocation, error)
	List(ctx context.Context) ([]*StoreLocation, error)
	Delete(ctx context.Context, id uint) (bool, error)
}

// CartCleaner 删除商品时同步清理引用该商品的购物车条目
type CartCleaner interface {
	DeleteByProduct(ctx context.Context, productID string) error
}

// EventPublisher 领域事件发布者，ctx 中存在事务时事件随事务一起提交
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}

// CatalogMirror 目录镜像，商品或分类变更提交后触发一次重新导出
type CatalogMirror interface {
	Trigger()
}
