// Package domain 定义销售报表的结果类型与数据来源端口
package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	cart "github.com/wyfcoding/smarthome/internal/cart/domain"
	catalog "github.com/wyfcoding/smarthome/internal/catalog/domain"
	order "github.com/wyfcoding/smarthome/internal/order/domain"
)

// UncategorizedName 分类已被删除或未设置时的归类名称
const UncategorizedName = "Uncategorized"

// DailySales 单日销售额
type DailySales struct {
	Date       string          `json:"date"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

// ProductSold 商品售出件数
type ProductSold struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitsSold   int    `json:"units_sold"`
}

// ZipCodeCount 邮编下单数
type ZipCodeCount struct {
	ZipCode    string `json:"zip_code"`
	OrderCount int    `json:"order_count"`
}

// CategoryRevenue 分类营收
type CategoryRevenue struct {
	CategoryID uint            `json:"category_id"`
	Category   string          `json:"category"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// ProductSales 单个商品的销售汇总
type ProductSales struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	QuantitySold int             `json:"quantity_sold"`
	TotalSales   decimal.Decimal `json:"total_sales"`
}

// SaleProduct 打折商品
type SaleProduct struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	Discount      decimal.Decimal `json:"discount"`
	SalePrice     decimal.Decimal `json:"sale_price"`
}

// RebateProduct 有厂商返利的商品
type RebateProduct struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Rebate   decimal.Decimal `json:"rebate"`
	NetPrice decimal.Decimal `json:"net_price"`
}

// InventoryItem 库存与购物车需求
type InventoryItem struct {
	ProductID      string          `json:"product_id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	AvailableItems int             `json:"available_items"`
	CartDemand     int             `json:"cart_demand"`
}

// Dashboard 经理看板，各项独立查询，互相之间不保证一致
type Dashboard struct {
	ProductCount      int64             `json:"product_count"`
	DailySales        []DailySales      `json:"daily_sales"`
	TopSold           []ProductSold     `json:"top_sold_products"`
	TopZipCodes       []ZipCodeCount    `json:"top_zip_codes"`
	RevenueByCategory []CategoryRevenue `json:"revenue_by_category"`
	Inventory         []InventoryItem   `json:"inventory"`
}

// OrderSource 已提交订单的只读视图，订单仓储即满足该接口
type OrderSource interface {
	ListPlaced(ctx context.Context, since time.Time) ([]*order.Order, error)
}

// ProductSource 商品只读视图，catalog 的商品仓储即满足该接口
type ProductSource interface {
	List(ctx context.Context, categoryID uint) ([]*catalog.Product, error)
	Count(ctx context.Context) (int64, error)
}

// CategorySource 分类只读视图
type CategorySource interface {
	List(ctx context.Context) ([]*catalog.Category, error)
}

// CartDemandSource 购物车需求，cart 仓储即满足该接口
type CartDemandSource interface {
	DemandByProduct(ctx context.Context) (map[string]int, error)
}

var _ CartDemandSource = (cart.CartRepository)(nil)

// DashboardCache 看板结果缓存，未命中返回 false
type DashboardCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}
