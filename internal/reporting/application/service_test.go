package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cartdomain "github.com/wyfcoding/smarthome/internal/cart/domain"
	cartmem "github.com/wyfcoding/smarthome/internal/cart/infrastructure/persistence/memory"
	catalog "github.com/wyfcoding/smarthome/internal/catalog/domain"
	catalogmem "github.com/wyfcoding/smarthome/internal/catalog/infrastructure/persistence/memory"
	order "github.com/wyfcoding/smarthome/internal/order/domain"
	ordermem "github.com/wyfcoding/smarthome/internal/order/infrastructure/persistence/memory"
	"github.com/wyfcoding/smarthome/internal/reporting/domain"
	"github.com/wyfcoding/smarthome/pkg/apperror"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func item(id, name, price string, qty int, category uint) order.OrderItem {
	return order.OrderItem{ID: id, Name: name, Price: d(price), Quantity: qty, CategoryID: category}
}

func placed(cn, zip, total string, at time.Time, items ...order.OrderItem) order.Order {
	return order.Order{
		ConfirmationNumber: cn,
		ZipCode:            zip,
		TotalAmount:        d(total),
		OrderDate:          at,
		Items:              items,
		Status:             order.OrderStatusPending,
	}
}

func newService(t *testing.T) *ReportingService {
	t.Helper()
	chicago := time.FixedZone("CDT", -5*60*60)

	orders := ordermem.NewOrderRepository()
	orders.Put(placed("A", "60601", "100.50", time.Date(2026, 3, 31, 9, 0, 0, 0, time.UTC),
		item("echo", "Echo Dot", "50.25", 2, 1)))
	// 芝加哥时间 3 月 30 日晚上，UTC 已是 3 月 31 日
	orders.Put(placed("B", "60602", "20.00", time.Date(2026, 3, 30, 20, 0, 0, 0, chicago),
		item("bulb", "Kasa Bulb", "10", 2, 2)))
	orders.Put(placed("C", "60601", "35.10", time.Date(2026, 3, 29, 12, 0, 0, 0, time.UTC),
		item("bulb", "Kasa Bulb", "10", 0, 2),
		item("plug", "Kasa Plug", "25.10", 1, 99)))
	orders.Put(placed("D", "60603", "5", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		item("plug", "Kasa Plug", "5", 1, 99)))
	orders.Put(placed("E", "60603", "7", time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC),
		item("plug", "Kasa Plug", "7", 1, 99)))

	cancelled := placed("F", "99999", "999", time.Date(2026, 3, 31, 8, 0, 0, 0, time.UTC),
		item("echo", "Echo Dot", "99.9", 10, 1))
	cancelled.Status = order.OrderStatusCancelled
	orders.Put(cancelled)

	products := catalogmem.NewProductRepository(
		&catalog.Product{ID: "echo", Name: "Echo Dot", Price: d("50.25"), CategoryID: 1, AvailableItems: 7,
			RetailerDiscount: decimal.NewNullDecimal(d("10"))},
		&catalog.Product{ID: "bulb", Name: "Kasa Bulb", Price: d("10"), CategoryID: 2, AvailableItems: 3,
			ManufacturerRebate: decimal.NewNullDecimal(d("2"))},
		&catalog.Product{ID: "plug", Name: "Kasa Plug", Price: d("25.10"), CategoryID: 2, AvailableItems: 0},
	)
	categories := catalogmem.NewCategoryRepository(
		&catalog.Category{ID: 1, Name: "Smart Speakers"},
		&catalog.Category{ID: 2, Name: "Smart Lightings"},
	)
	carts := cartmem.NewCartRepository()
	ctx := context.Background()
	require.NoError(t, carts.Create(ctx, &cartdomain.CartItem{ProductID: "echo", Quantity: 2, Warranty: "1 Year"}))
	require.NoError(t, carts.Create(ctx, &cartdomain.CartItem{ProductID: "echo", Quantity: 1, Warranty: "1 Year"}))

	svc := NewReportingService(orders, products, categories, carts)
	svc.now = func() time.Time { return time.Date(2026, 3, 31, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestDailySales(t *testing.T) {
	svc := newService(t)

	got, err := svc.DailySales(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	want := []struct{ date, total string }{
		{"2026-03-02", "5"},
		{"2026-03-29", "35.1"},
		{"2026-03-31", "120.5"},
	}
	for i, w := range want {
		assert.Equal(t, w.date, got[i].Date)
		assert.True(t, d(w.total).Equal(got[i].TotalSales), "%s: got %s", w.date, got[i].TotalSales)
	}
}

func TestTopSoldProducts(t *testing.T) {
	svc := newService(t)

	got, err := svc.TopSoldProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.ProductSold{
		{ProductID: "bulb", ProductName: "Kasa Bulb", UnitsSold: 3},
		{ProductID: "plug", ProductName: "Kasa Plug", UnitsSold: 3},
		{ProductID: "echo", ProductName: "Echo Dot", UnitsSold: 2},
	}, got)
}

func TestTopZipCodes(t *testing.T) {
	svc := newService(t)

	got, err := svc.TopZipCodes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.ZipCodeCount{
		{ZipCode: "60601", OrderCount: 2},
		{ZipCode: "60603", OrderCount: 2},
		{ZipCode: "60602", OrderCount: 1},
	}, got)
}

func TestRevenueByCategory(t *testing.T) {
	svc := newService(t)

	got, err := svc.RevenueByCategory(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "Smart Speakers", got[0].Category)
	assert.Equal(t, "100.50", got[0].Revenue.StringFixed(2))
	assert.Equal(t, domain.UncategorizedName, got[1].Category)
	assert.Equal(t, uint(0), got[1].CategoryID)
	assert.Equal(t, "37.10", got[1].Revenue.StringFixed(2))
	assert.Equal(t, "Smart Lightings", got[2].Category)
	assert.Equal(t, "30.00", got[2].Revenue.StringFixed(2))
}

func TestRevenueByCategoryExcludesAccessories(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 3, 31, 9, 0, 0, 0, time.UTC)

	withMount := item("echo", "Echo Dot", "50", 2, 1)
	withMount.Accessories = []order.ItemAccessory{{ID: "acc-mount", Name: "Wall Mount", Price: d("30")}}
	orders := ordermem.NewOrderRepository()
	orders.Put(placed("A", "60601", "160", at, withMount))

	svc := NewReportingService(orders, catalogmem.NewProductRepository(),
		catalogmem.NewCategoryRepository(&catalog.Category{ID: 1, Name: "Smart Speakers"}), cartmem.NewCartRepository())
	svc.now = func() time.Time { return at }

	revenue, err := svc.RevenueByCategory(ctx)
	require.NoError(t, err)
	require.Len(t, revenue, 1)
	assert.Equal(t, "100.00", revenue[0].Revenue.StringFixed(2))

	daily, err := svc.DailySales(ctx)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, "160.00", daily[0].TotalSales.StringFixed(2))
}

func TestProductSales(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	sales, err := svc.ProductSales(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 3)
	assert.Equal(t, "Echo Dot", sales[0].Name)
	assert.Equal(t, 2, sales[0].QuantitySold)
	assert.Equal(t, "Kasa Plug", sales[2].Name)
	assert.Equal(t, "25.10", sales[2].Price.StringFixed(2), "latest snapshot price")
	assert.Equal(t, "37.10", sales[2].TotalSales.StringFixed(2))

	top, err := svc.TopSellingProducts(ctx)
	require.NoError(t, err)
	ids := make([]string, len(top))
	for i, p := range top {
		ids[i] = p.ProductID
	}
	assert.Equal(t, []string{"echo", "plug", "bulb"}, ids)
}

func TestCatalogReports(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	sale, err := svc.SaleProducts(ctx)
	require.NoError(t, err)
	require.Len(t, sale, 1)
	assert.Equal(t, "echo", sale[0].ID)
	assert.Equal(t, "40.25", sale[0].SalePrice.StringFixed(2))

	rebate, err := svc.RebateProducts(ctx)
	require.NoError(t, err)
	require.Len(t, rebate, 1)
	assert.Equal(t, "bulb", rebate[0].ID)
	assert.Equal(t, "8.00", rebate[0].NetPrice.StringFixed(2))

	inv, err := svc.Inventory(ctx)
	require.NoError(t, err)
	require.Len(t, inv, 3)
	demand := make(map[string]int)
	for _, it := range inv {
		demand[it.ProductID] = it.CartDemand
	}
	assert.Equal(t, map[string]int{"echo": 3, "bulb": 0, "plug": 0}, demand)

	n, err := svc.ProductCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestDashboard(t *testing.T) {
	svc := newService(t)

	got, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ProductCount)
	assert.Len(t, got.DailySales, 3)
	assert.Len(t, got.TopSold, 3)
	assert.Len(t, got.TopZipCodes, 3)
	assert.Len(t, got.RevenueByCategory, 3)
	assert.Len(t, got.Inventory, 3)
}

type failingOrders struct{}

func (failingOrders) ListPlaced(context.Context, time.Time) ([]*order.Order, error) {
	return nil, errors.New("connection refused")
}

func TestReportsSurfaceStoreFailures(t *testing.T) {
	svc := NewReportingService(failingOrders{}, catalogmem.NewProductRepository(),
		catalogmem.NewCategoryRepository(), cartmem.NewCartRepository())

	_, err := svc.DailySales(context.Background())
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))

	_, err = svc.Dashboard(context.Background())
	assert.Error(t, err)
}

func TestEmptyStoreYieldsEmptyReports(t *testing.T) {
	svc := NewReportingService(ordermem.NewOrderRepository(), catalogmem.NewProductRepository(),
		catalogmem.NewCategoryRepository(), cartmem.NewCartRepository())

	daily, err := svc.DailySales(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, daily)
	assert.Empty(t, daily)

	top, err := svc.TopSoldProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, top)
}

type mapCache struct {
	entries map[string][]byte
	ttls    map[string]time.Duration
	err     error
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *mapCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *mapCache) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	if c.err != nil {
		return c.err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	c.ttls[key] = ttl
	return nil
}

func TestDashboardCache(t *testing.T) {
	ctx := context.Background()

	t.Run("miss populates, hit skips stores", func(t *testing.T) {
		cache := newMapCache()
		first, err := newService(t).WithDashboardCache(cache, time.Minute).Dashboard(ctx)
		require.NoError(t, err)
		assert.Equal(t, time.Minute, cache.ttls[dashboardCacheKey])

		// 订单存储不可用时仍命中缓存
		svc := NewReportingService(failingOrders{}, catalogmem.NewProductRepository(),
			catalogmem.NewCategoryRepository(), cartmem.NewCartRepository()).WithDashboardCache(cache, time.Minute)
		got, err := svc.Dashboard(ctx)
		require.NoError(t, err)
		assert.Equal(t, first.ProductCount, got.ProductCount)
		require.Len(t, got.DailySales, len(first.DailySales))
		assert.True(t, first.DailySales[0].TotalSales.Equal(got.DailySales[0].TotalSales))
	})

	t.Run("broken cache falls back", func(t *testing.T) {
		cache := newMapCache()
		cache.err = errors.New("redis down")
		got, err := newService(t).WithDashboardCache(cache, time.Minute).Dashboard(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), got.ProductCount)
	})

	t.Run("zero ttl disables", func(t *testing.T) {
		cache := newMapCache()
		_, err := newService(t).WithDashboardCache(cache, 0).Dashboard(ctx)
		require.NoError(t, err)
		assert.Empty(t, cache.entries)
	})
}
