package export

import (
	"context"
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/smarthome/internal/catalog/domain"
	"github.com/wyfcoding/smarthome/internal/catalog/infrastructure/persistence/memory"
	"github.com/wyfcoding/smarthome/pkg/metrics"
)

func newTestExporter(t *testing.T, path string) (*Exporter, *metrics.Metrics) {
	t.Helper()
	products := memory.NewProductRepository(
		&domain.Product{
			ID:               "p1",
			Name:             "Amazon Echo",
			Price:            decimal.RequireFromString("99.99"),
			CategoryID:       1,
			AvailableItems:   5,
			RetailerDiscount: decimal.NewNullDecimal(decimal.NewFromInt(10)),
			Accessories:      []domain.Accessory{{ID: "a1", Name: "Wall Mount", Price: decimal.RequireFromString("29.99")}},
		},
		&domain.Product{ID: "p2", Name: "Orphan", Price: decimal.NewFromInt(1), CategoryID: 9},
	)
	categories := memory.NewCategoryRepository(&domain.Category{ID: 1, Name: "Smart Speakers"})

	m := metrics.New("test")
	require.NoError(t, m.Register(prometheus.NewRegistry()))
	e := NewExporter(products, categories, path, metrics.NewDefaultMetricsCollector(m))
	e.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return e, m
}

func TestExportWritesCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "ProductCatalog.xml")
	e, m := newTestExporter(t, path)

	require.NoError(t, e.Export(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc xmlCatalog
	require.NoError(t, xml.Unmarshal(data, &doc))
	assert.Equal(t, "2026-01-02T03:04:05Z", doc.ExportedAt)
	require.Len(t, doc.Categories, 2)

	speakers := doc.Categories[0]
	assert.Equal(t, "Smart Speakers", speakers.Name)
	require.Len(t, speakers.Products, 1)
	echo := speakers.Products[0]
	assert.Equal(t, "99.99", echo.Price)
	assert.Equal(t, "10.00", echo.RetailerDiscount)
	assert.Empty(t, echo.ManufacturerRebate)
	assert.Equal(t, domain.DefaultWarrantyOptions, echo.Warranties)
	require.Len(t, echo.Accessories, 1)
	assert.Equal(t, "Wall Mount", echo.Accessories[0].Name)

	assert.Equal(t, uncategorized, doc.Categories[1].Name)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogExports.WithLabelValues("success")))
}

func TestExportFailureIsCounted(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// 父路径是普通文件，无法创建目录
	e, m := newTestExporter(t, filepath.Join(blocker, "ProductCatalog.xml"))
	assert.Error(t, e.Export(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogExports.WithLabelValues("failure")))
}

func TestTriggerCoalesces(t *testing.T) {
	e, _ := newTestExporter(t, filepath.Join(t.TempDir(), "c.xml"))
	for i := 0; i < 10; i++ {
		e.Trigger()
	}
	assert.Len(t, e.trigger, 1)
}

func TestRunExportsOnTrigger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ProductCatalog.xml")
	e, m := newTestExporter(t, path)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	e.Trigger()
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.CatalogExports.WithLabelValues("success")) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.FileExists(t, path)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("exporter did not stop")
	}
}

func TestScheduleRejectsInvalidSpec(t *testing.T) {
	e, _ := newTestExporter(t, filepath.Join(t.TempDir(), "c.xml"))
	_, err := e.Schedule("not a cron spec")
	assert.Error(t, err)

	c, err := e.Schedule("@midnight")
	require.NoError(t, err)
	c.Stop()
}
