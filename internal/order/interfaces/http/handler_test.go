package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cartmem "github.com/wyfcoding/smarthome/internal/cart/infrastructure/persistence/memory"
	catalog "github.com/wyfcoding/smarthome/internal/catalog/domain"
	catalogmem "github.com/wyfcoding/smarthome/internal/catalog/infrastructure/persistence/memory"
	"github.com/wyfcoding/smarthome/internal/order/application"
	"github.com/wyfcoding/smarthome/internal/order/infrastructure/persistence/memory"
	"github.com/wyfcoding/smarthome/pkg/idgen"
)

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, string, any) error { return nil }

type serialTx struct{}

func (serialTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	products := catalogmem.NewProductRepository(&catalog.Product{
		ID: "hue", Name: "Philips Hue Bulb", Price: decimal.RequireFromString("49.99"), CategoryID: 1, AvailableItems: 5,
	})
	locations := catalogmem.NewStoreLocationRepository(
		&catalog.StoreLocation{ID: 1, Street: "233 S Wacker Dr", City: "Chicago", State: "IL", ZipCode: "60606"},
	)
	ids, err := idgen.New(2)
	require.NoError(t, err)

	orders := memory.NewOrderRepository()
	cmd := application.NewOrderCommandService(orders, products, locations, cartmem.NewCartRepository(),
		noopPublisher{}, ids, serialTx{}, nil, application.Options{DeliveryLeadDays: 14, MaxPlaceAttempts: 3})
	svc := application.NewOrderService(cmd, application.NewOrderQueryService(orders))

	r := gin.New()
	NewOrderHandler(svc).RegisterRoutes(&r.RouterGroup)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const placeBody = `{
  "name": "John Doe", "street": "1 State St", "city": "Chicago", "state": "IL", "zipCode": "60601",
  "creditCard": "4111111111111111", "deliveryOption": "pickup", "pickupLocation": "1", "totalAmount": 99.98,
  "cartItems": [{"product_id": "hue", "product_name": "Philips Hue Bulb", "quantity": 2, "warranty": "1 Year"}]
}`

func TestOrderRoutes(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/api/place-order", placeBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var placed struct {
		ConfirmationNumber string          `json:"confirmation_number"`
		TotalAmount        decimal.Decimal `json:"total_amount"`
		DeliveryDate       string          `json:"delivery_date"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &placed))
	require.NotEmpty(t, placed.ConfirmationNumber)
	assert.Equal(t, "99.98", placed.TotalAmount.StringFixed(2))
	assert.Len(t, placed.DeliveryDate, len("2006-01-02"))

	w = do(r, http.MethodGet, "/api/orders/"+placed.ConfirmationNumber, "")
	require.Equal(t, http.StatusOK, w.Code)
	var dto application.OrderDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dto))
	assert.Equal(t, "233 S Wacker Dr", dto.PickupLocation)
	assert.Equal(t, "************1111", dto.CreditCard)

	w = do(r, http.MethodGet, "/api/orders?page=1&page_size=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Total-Count"))

	w = do(r, http.MethodGet, "/api/orderhistory/John%20Doe", "")
	require.Equal(t, http.StatusOK, w.Code)
	var history []application.OrderDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Len(t, history, 1)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"cancel", http.MethodPut, "/api/orders/cancel/" + placed.ConfirmationNumber, "", http.StatusOK},
		{"cancel twice", http.MethodPut, "/api/orders/cancel/" + placed.ConfirmationNumber, "", http.StatusBadRequest},
		{"cancel unknown", http.MethodPut, "/api/orders/cancel/ORD-NOPE", "", http.StatusNotFound},
		{"get unknown", http.MethodGet, "/api/orders/ORD-NOPE", "", http.StatusNotFound},
		{"malformed body", http.MethodPost, "/api/place-order", `{"name":`, http.StatusBadRequest},
		{"insufficient inventory", http.MethodPost, "/api/place-order",
			strings.Replace(placeBody, `"quantity": 2`, `"quantity": 4`, 1), http.StatusBadRequest},
		{"unknown store", http.MethodPost, "/api/place-order",
			strings.Replace(placeBody, `"pickupLocation": "1"`, `"pickupLocation": "9 Elm St"`, 1), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}
