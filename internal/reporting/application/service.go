// Package application 实现销售报表查询，所有聚合只读且排除已取消订单
package application

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	order "github.com/wyfcoding/smarthome/internal/order/domain"
	"github.com/wyfcoding/smarthome/internal/reporting/domain"
	"github.com/wyfcoding/smarthome/pkg/apperror"
	"github.com/wyfcoding/smarthome/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	dailySalesWindowDays = 30
	topN                 = 5
	dateLayout           = "2006-01-02"
	dashboardCacheKey    = "dashboard"
)

// ReportingService 报表查询服务
type ReportingService struct {
	orders     domain.OrderSource
	products   domain.ProductSource
	categories domain.CategorySource
	carts      domain.CartDemandSource
	cache      domain.DashboardCache
	cacheTTL   time.Duration
	now        func() time.Time
}

// NewReportingService 创建报表服务
func NewReportingService(orders domain.OrderSource, products domain.ProductSource, categories domain.CategorySource, carts domain.CartDemandSource) *ReportingService {
	return &ReportingService{
		orders:     orders,
		products:   products,
		categories: categories,
		carts:      carts,
		now:        time.Now,
	}
}

// WithDashboardCache 为看板开启短时缓存，ttl 不大于 0 时不生效
func (s *ReportingService) WithDashboardCache(cache domain.DashboardCache, ttl time.Duration) *ReportingService {
	if cache != nil && ttl > 0 {
		s.cache, s.cacheTTL = cache, ttl
	}
	return s
}

func (s *ReportingService) placedOrders(ctx context.Context, since time.Time) ([]*order.Order, error) {
	orders, err := s.orders.ListPlaced(ctx, since)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load orders")
	}
	return orders, nil
}

// DailySales 最近 30 天（含今天，UTC）每日销售额，按日期正序，无订单的日期不返回
func (s *ReportingService) DailySales(ctx context.Context) ([]domain.DailySales, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(dailySalesWindowDays - 1))

	orders, err := s.placedOrders(ctx, since)
	if err != nil {
		return nil, err
	}

	sums := make(map[string]decimal.Decimal)
	for _, o := range orders {
		day := o.OrderDate.UTC().Format(dateLayout)
		sums[day] = sums[day].Add(o.TotalAmount)
	}

	out := make([]domain.DailySales, 0, len(sums))
	for day, total := range sums {
		out = append(out, domain.DailySales{Date: day, TotalSales: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// TopSoldProducts 售出件数最多的 5 个商品，件数相同按商品 ID 升序
func (s *ReportingService) TopSoldProducts(ctx context.Context) ([]domain.ProductSold, error) {
	orders, err := s.placedOrders(ctx, time.Time{})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.ProductSold)
	for _, o := range orders {
		for _, it := range o.Items {
			ps, ok := byID[it.ID]
			if !ok {
				ps = &domain.ProductSold{ProductID: it.ID}
				byID[it.ID] = ps
			}
			ps.ProductName = it.Name
			ps.UnitsSold += it.Units()
		}
	}

	out := make([]domain.ProductSold, 0, len(byID))
	for _, ps := range byID {
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UnitsSold != out[j].UnitsSold {
			return out[i].UnitsSold > out[j].UnitsSold
		}
		return out[i].ProductID < out[j].ProductID
	})
	return limit(out, topN), nil
}

// TopZipCodes 下单数最多的 5 个邮编，数量相同按邮编升序
func (s *ReportingService) TopZipCodes(ctx context.Context) ([]domain.ZipCodeCount, error) {
	orders, err := s.placedOrders(ctx, time.Time{})
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, o := range orders {
		counts[strings.TrimSpace(o.ZipCode)]++
	}

	out := make([]domain.ZipCodeCount, 0, len(counts))
	for zip, n := range counts {
		out = append(out, domain.ZipCodeCount{ZipCode: zip, OrderCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderCount != out[j].OrderCount {
			return out[i].OrderCount > out[j].OrderCount
		}
		return out[i].ZipCode < out[j].ZipCode
	})
	return limit(out, topN), nil
}

// RevenueByCategory 按分类汇总单价 × 数量，分类在查询时解析名称
func (s *ReportingService) RevenueByCategory(ctx context.Context) ([]domain.CategoryRevenue, error) {
	orders, err := s.placedOrders(ctx, time.Time{})
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load categories")
	}
	names := make(map[uint]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	byName := make(map[string]*domain.CategoryRevenue)
	for _, o := range orders {
		for _, it := range o.Items {
			name, ok := names[it.CategoryID]
			id := it.CategoryID
			if !ok {
				name, id = domain.UncategorizedName, 0
			}
			cr, ok := byName[name]
			if !ok {
				cr = &domain.CategoryRevenue{CategoryID: id, Category: name}
				byName[name] = cr
			}
			// 只计商品单价，配件收入不归入分类；DailySales 按订单总额统计，两者口径不同
			cr.Revenue = cr.Revenue.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Units()))))
		}
	}

	out := make([]domain.CategoryRevenue, 0, len(byName))
	for _, cr := range byName {
		out = append(out, *cr)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

// ProductSales 每个已售商品的件数与销售额，按名称排序
func (s *ReportingService) ProductSales(ctx context.Context) ([]domain.ProductSales, error) {
	orders, err := s.placedOrders(ctx, time.Time{})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.ProductSales)
	for _, o := range orders {
		for _, it := range o.Items {
			ps, ok := byID[it.ID]
			if !ok {
				ps = &domain.ProductSales{ProductID: it.ID}
				byID[it.ID] = ps
			}
			// 名称与单价取最近一次快照
			ps.Name = it.Name
			ps.Price = it.Price
			units := it.Units()
			ps.QuantitySold += units
			ps.TotalSales = ps.TotalSales.Add(it.Price.Mul(decimal.NewFromInt(int64(units))))
		}
	}

	out := make([]domain.ProductSales, 0, len(byID))
	for _, ps := range byID {
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out, nil
}

// TopSellingProducts 销售额最高的 5 个商品
func (s *ReportingService) TopSellingProducts(ctx context.Context) ([]domain.ProductSales, error) {
	sales, err := s.ProductSales(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sales, func(i, j int) bool {
		if c := sales[i].TotalSales.Cmp(sales[j].TotalSales); c != 0 {
			return c > 0
		}
		return sales[i].ProductID < sales[j].ProductID
	})
	return limit(sales, topN), nil
}

// SaleProducts 设置了零售折扣的商品
func (s *ReportingService) SaleProducts(ctx context.Context) ([]domain.SaleProduct, error) {
	products, err := s.products.List(ctx, 0)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load products")
	}
	out := make([]domain.SaleProduct, 0)
	for _, p := range products {
		if !p.OnSale() {
			continue
		}
		out = append(out, domain.SaleProduct{
			ID:            p.ID,
			Name:          p.Name,
			OriginalPrice: p.Price,
			Discount:      p.RetailerDiscount.Decimal,
			SalePrice:     p.SalePrice(),
		})
	}
	return out, nil
}

// RebateProducts 设置了厂商返利的商品
func (s *ReportingService) RebateProducts(ctx context.Context) ([]domain.RebateProduct, error) {
	products, err := s.products.List(ctx, 0)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load products")
	}
	out := make([]domain.RebateProduct, 0)
	for _, p := range products {
		if !p.HasRebate() {
			continue
		}
		out = append(out, domain.RebateProduct{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Rebate:   p.ManufacturerRebate.Decimal,
			NetPrice: p.NetPrice(),
		})
	}
	return out, nil
}

// Inventory 各商品库存及购物车中的需求量
func (s *ReportingService) Inventory(ctx context.Context) ([]domain.InventoryItem, error) {
	products, err := s.products.List(ctx, 0)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load products")
	}
	demand, err := s.carts.DemandByProduct(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load cart demand")
	}

	out := make([]domain.InventoryItem, 0, len(products))
	for _, p := range products {
		out = append(out, domain.InventoryItem{
			ProductID:      p.ID,
			Name:           p.Name,
			Price:          p.Price,
			AvailableItems: p.AvailableItems,
			CartDemand:     demand[p.ID],
		})
	}
	return out, nil
}

// ProductCount 商品总数
func (s *ReportingService) ProductCount(ctx context.Context) (int64, error) {
	n, err := s.products.Count(ctx)
	if err != nil {
		return 0, apperror.Internal(err, "failed to count products")
	}
	return n, nil
}

// Dashboard 并发执行各项聚合，任一失败即返回错误
// 开启缓存时先读缓存，缓存读写失败退回实时聚合
func (s *ReportingService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	if s.cache != nil {
		var cached domain.Dashboard
		hit, err := s.cache.GetJSON(ctx, dashboardCacheKey, &cached)
		if err != nil {
			logger.Warn(ctx, "Dashboard cache read failed", "error", err)
		}
		if hit {
			return &cached, nil
		}
	}

	d, err := s.aggregateDashboard(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, dashboardCacheKey, d, s.cacheTTL); err != nil {
			logger.Warn(ctx, "Dashboard cache write failed", "error", err)
		}
	}
	return d, nil
}

func (s *ReportingService) aggregateDashboard(ctx context.Context) (*domain.Dashboard, error) {
	done := logger.LogDuration(ctx, "Dashboard aggregated")
	var d domain.Dashboard

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.ProductCount, err = s.ProductCount(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.DailySales, err = s.DailySales(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.TopSold, err = s.TopSoldProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.TopZipCodes, err = s.TopZipCodes(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.RevenueByCategory, err = s.RevenueByCategory(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.Inventory, err = s.Inventory(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	done()
	return &d, nil
}

func limit[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
