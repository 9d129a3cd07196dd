// Package export 将完整商品目录镜像为 XML 文件
// 导出是尽力而为的：失败只记录日志与指标，不影响触发它的写操作
package export

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron"
	"github.com/wyfcoding/smarthome/internal/catalog/domain"
	"github.com/wyfcoding/smarthome/pkg/logger"
	"github.com/wyfcoding/smarthome/pkg/metrics"
)

const uncategorized = "Uncategorized"

type xmlCatalog struct {
	XMLName    xml.Name      `xml:"ProductCatalog"`
	ExportedAt string        `xml:"exportedAt,attr"`
	Categories []xmlCategory `xml:"category"`
}

type xmlCategory struct {
	ID       uint         `xml:"id,attr"`
	Name     string       `xml:"name,attr"`
	Products []xmlProduct `xml:"product"`
}

type xmlProduct struct {
	ID                 string         `xml:"id,attr"`
	Name               string         `xml:"name"`
	Description        string         `xml:"description,omitempty"`
	Manufacturer       string         `xml:"manufacturer,omitempty"`
	Price              string         `xml:"price"`
	RetailerDiscount   string         `xml:"retailerDiscount,omitempty"`
	ManufacturerRebate string         `xml:"manufacturerRebate,omitempty"`
	AvailableItems     int            `xml:"availableItems"`
	ImageURL           string         `xml:"image,omitempty"`
	Accessories        []xmlAccessory `xml:"accessories>accessory"`
	Warranties         []string       `xml:"warranties>warranty"`
}

type xmlAccessory struct {
	ID    string `xml:"id,attr"`
	Name  string `xml:"name,attr"`
	Price string `xml:"price,attr"`
}

// Exporter 目录 XML 导出器
// Trigger 合并突发的变更通知，后台 Run 循环每次消费一次触发并重新导出全量目录
type Exporter struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
	path       string
	collector  metrics.MetricsCollector
	trigger    chan struct{}
	now        func() time.Time
}

// NewExporter 创建导出器
func NewExporter(products domain.ProductRepository, categories domain.CategoryRepository, path string, collector metrics.MetricsCollector) *Exporter {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Exporter{
		products:   products,
		categories: categories,
		path:       path,
		collector:  collector,
		trigger:    make(chan struct{}, 1),
		now:        time.Now,
	}
}

// Trigger 请求一次重新导出，已有未处理的请求时直接合并
func (e *Exporter) Trigger() {
	select {
	case e.trigger <- struct{}{}:
	default:
	}
}

// Run 处理导出请求直到 ctx 结束
func (e *Exporter) Run(ctx context.Context) error {
	logger.Info(ctx, "Catalog exporter started", "path", e.path)
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Catalog exporter stopped")
			return nil
		case <-e.trigger:
			if err := e.Export(ctx); err != nil {
				logger.Error(ctx, "Catalog export failed", "path", e.path, "error", err)
			}
		}
	}
}

// Schedule 按 cron 表达式定时触发全量导出，调用方负责 Stop
func (e *Exporter) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New()
	if err := c.AddFunc(spec, e.Trigger); err != nil {
		return nil, fmt.Errorf("invalid catalog export schedule %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}

// Export 立即导出一次，先写临时文件再 rename，读者不会看到半个文件
func (e *Exporter) Export(ctx context.Context) (err error) {
	done := logger.LogDuration(ctx, "Catalog exported", "path", e.path)
	defer func() {
		if err != nil {
			e.collector.RecordCatalogExport("failure")
			return
		}
		e.collector.RecordCatalogExport("success")
		done()
	}()

	doc, err := e.build(ctx)
	if err != nil {
		return err
	}
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return writeAtomic(e.path, append([]byte(xml.Header), data...))
}

func (e *Exporter) build(ctx context.Context) (*xmlCatalog, error) {
	categories, err := e.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	products, err := e.products.List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	doc := &xmlCatalog{ExportedAt: e.now().UTC().Format(time.RFC3339)}
	index := make(map[uint]int, len(categories))
	for _, c := range categories {
		index[c.ID] = len(doc.Categories)
		doc.Categories = append(doc.Categories, xmlCategory{ID: c.ID, Name: c.Name})
	}

	for _, p := range products {
		i, ok := index[p.CategoryID]
		if !ok {
			i = len(doc.Categories)
			index[p.CategoryID] = i
			doc.Categories = append(doc.Categories, xmlCategory{ID: p.CategoryID, Name: uncategorized})
		}
		doc.Categories[i].Products = append(doc.Categories[i].Products, toXMLProduct(p))
	}
	return doc, nil
}

func toXMLProduct(p *domain.Product) xmlProduct {
	xp := xmlProduct{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Manufacturer:   p.Manufacturer,
		Price:          p.Price.StringFixed(2),
		AvailableItems: p.AvailableItems,
		ImageURL:       p.ImageURL,
		Warranties:     p.Warranties(),
	}
	if p.RetailerDiscount.Valid {
		xp.RetailerDiscount = p.RetailerDiscount.Decimal.StringFixed(2)
	}
	if p.ManufacturerRebate.Valid {
		xp.ManufacturerRebate = p.ManufacturerRebate.Decimal.StringFixed(2)
	}
	for _, a := range p.Accessories {
		xp.Accessories = append(xp.Accessories, xmlAccessory{ID: a.ID, Name: a.Name, Price: a.Price.StringFixed(2)})
	}
	return xp
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close catalog: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace catalog: %w", err)
	}
	return nil
}
