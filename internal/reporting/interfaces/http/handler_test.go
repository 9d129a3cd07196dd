package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cartmem "github.com/wyfcoding/smarthome/internal/cart/infrastructure/persistence/memory"
	catalog "github.com/wyfcoding/smarthome/internal/catalog/domain"
	catalogmem "github.com/wyfcoding/smarthome/internal/catalog/infrastructure/persistence/memory"
	order "github.com/wyfcoding/smarthome/internal/order/domain"
	ordermem "github.com/wyfcoding/smarthome/internal/order/infrastructure/persistence/memory"
	"github.com/wyfcoding/smarthome/internal/reporting/application"
	"github.com/wyfcoding/smarthome/internal/reporting/domain"
)

type brokenOrders struct{}

func (brokenOrders) ListPlaced(context.Context, time.Time) ([]*order.Order, error) {
	return nil, errors.New("db down")
}

func newRouter(orders domain.OrderSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	products := catalogmem.NewProductRepository(
		&catalog.Product{ID: "hue", Name: "Philips Hue Bulb", Price: decimal.NewFromInt(50), AvailableItems: 4},
	)
	svc := application.NewReportingService(orders, products, catalogmem.NewCategoryRepository(), cartmem.NewCartRepository())
	r := gin.New()
	NewReportingHandler(svc).RegisterRoutes(&r.RouterGroup)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestReportingRoutes(t *testing.T) {
	orders := ordermem.NewOrderRepository()
	orders.Put(order.Order{
		ConfirmationNumber: "ORD-1",
		ZipCode:            "60616",
		TotalAmount:        decimal.NewFromInt(100),
		OrderDate:          time.Now().UTC(),
		Status:             order.OrderStatusPending,
		Items:              []order.OrderItem{{ID: "hue", Name: "Philips Hue Bulb", Price: decimal.NewFromInt(50), Quantity: 2}},
	})
	r := newRouter(orders)

	for _, path := range []string{
		"/api/daily-sales",
		"/api/trending/sold-products",
		"/api/trending/zip-codes",
		"/api/revenue-by-category",
		"/api/sales",
		"/api/top-selling-products",
		"/api/sale-products",
		"/api/rebate-products",
		"/api/inventory",
		"/api/dashboard",
	} {
		t.Run(path, func(t *testing.T) {
			w := get(r, path)
			assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		})
	}

	w := get(r, "/api/product-count")
	require.Equal(t, http.StatusOK, w.Code)
	var count struct {
		ProductCount int64 `json:"product_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &count))
	assert.Equal(t, int64(1), count.ProductCount)

	w = get(r, "/api/trending/zip-codes")
	var zips []domain.ZipCodeCount
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &zips))
	assert.Equal(t, []domain.ZipCodeCount{{ZipCode: "60616", OrderCount: 1}}, zips)
}

func TestReportingRoutesFailure(t *testing.T) {
	r := newRouter(brokenOrders{})

	w := get(r, "/api/daily-sales")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "failed to load orders")

	// 不依赖订单的报表不受影响
	assert.Equal(t, http.StatusOK, get(r, "/api/inventory").Code)
}
