package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecords(t *testing.T) {
	m := New("test")
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	c := NewDefaultMetricsCollector(m)
	c.RecordHTTPRequest("GET", "/api/products", 200, 0.01, 512)
	c.RecordHTTPRequest("GET", "/api/products", 200, 0.02, 0)
	c.RecordOrderPlaced(0.05)
	c.RecordInventoryRejection()
	c.RecordCatalogExport("success")
	c.RecordOutboxRelay("sent", 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/products", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersPlaced))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InventoryRejections))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogExports.WithLabelValues("success")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.OutboxRelayed.WithLabelValues("sent")))
}

func TestRegisterTwiceFails(t *testing.T) {
	m := New("test")
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))
	assert.Error(t, m.Register(reg))
}
