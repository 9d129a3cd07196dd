// Package metrics 提供 Prometheus 指标定义与采集接口
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/smarthome/pkg/logger"
)

const namespace = "smarthome"

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数，按方法、路由、状态码区分
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec
	// HTTP 响应大小
	HTTPResponseSize *prometheus.HistogramVec

	// 业务指标
	OrdersPlaced          prometheus.Counter
	OrdersCancelled       prometheus.Counter
	InventoryRejections   prometheus.Counter
	CatalogExports        *prometheus.CounterVec
	OutboxRelayed         *prometheus.CounterVec
	OrderPlacementSeconds prometheus.Histogram
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPResponseSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "http_response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   []float64{100, 1000, 10000, 100000, 1000000},
		}, []string{"route"}),

		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "orders_placed_total",
			Help:      "Total orders placed",
		}),
		OrdersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "orders_cancelled_total",
			Help:      "Total orders cancelled",
		}),
		InventoryRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "inventory_rejections_total",
			Help:      "Orders rejected because of insufficient inventory",
		}),
		CatalogExports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "catalog_exports_total",
			Help:      "Catalog XML exports by outcome",
		}, []string{"outcome"}),
		OutboxRelayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "outbox_relayed_total",
			Help:      "Outbox events relayed to the broker by outcome",
		}, []string{"outcome"}),
		OrderPlacementSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "order_placement_duration_seconds",
			Help:      "Duration of the order placement transaction",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPResponseSize,
		m.OrdersPlaced,
		m.OrdersCancelled,
		m.InventoryRejections,
		m.CatalogExports,
		m.OutboxRelayed,
		m.OrderPlacementSeconds,
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}

	logger.Info(context.Background(), "Metrics registered successfully")
	return nil
}

// NewServer 创建 Prometheus 指标 HTTP 服务，由调用方负责启动与关闭
func NewServer(port int, path string, gatherer prometheus.Gatherer) *http.Server {
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
}

// MetricsCollector 指标收集器接口
type MetricsCollector interface {
	// 记录 HTTP 请求
	RecordHTTPRequest(method, route string, statusCode int, duration float64, responseSize int64)
	// 记录成功下单及其耗时
	RecordOrderPlaced(duration float64)
	// 记录订单取消
	RecordOrderCancelled()
	// 记录库存不足被拒绝的下单
	RecordInventoryRejection()
	// 记录目录导出结果
	RecordCatalogExport(outcome string)
	// 记录 outbox 投递结果
	RecordOutboxRelay(outcome string, count int)
}

// DefaultMetricsCollector 默认指标收集器实现
type DefaultMetricsCollector struct {
	metrics *Metrics
}

// NewDefaultMetricsCollector 创建默认指标收集器
func NewDefaultMetricsCollector(metrics *Metrics) *DefaultMetricsCollector {
	return &DefaultMetricsCollector{
		metrics: metrics,
	}
}

// RecordHTTPRequest 记录 HTTP 请求
func (dmc *DefaultMetricsCollector) RecordHTTPRequest(method, route string, statusCode int, duration float64, responseSize int64) {
	dmc.metrics.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	dmc.metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration)
	if responseSize > 0 {
		dmc.metrics.HTTPResponseSize.WithLabelValues(route).Observe(float64(responseSize))
	}
}

// RecordOrderPlaced 记录下单
func (dmc *DefaultMetricsCollector) RecordOrderPlaced(duration float64) {
	dmc.metrics.OrdersPlaced.Inc()
	dmc.metrics.OrderPlacementSeconds.Observe(duration)
}

// RecordOrderCancelled 记录取消
func (dmc *DefaultMetricsCollector) RecordOrderCancelled() {
	dmc.metrics.OrdersCancelled.Inc()
}

// RecordInventoryRejection 记录库存拒绝
func (dmc *DefaultMetricsCollector) RecordInventoryRejection() {
	dmc.metrics.InventoryRejections.Inc()
}

// RecordCatalogExport 记录目录导出
func (dmc *DefaultMetricsCollector) RecordCatalogExport(outcome string) {
	dmc.metrics.CatalogExports.WithLabelValues(outcome).Inc()
}

// RecordOutboxRelay 记录 outbox 投递
func (dmc *DefaultMetricsCollector) RecordOutboxRelay(outcome string, count int) {
	dmc.metrics.OutboxRelayed.WithLabelValues(outcome).Add(float64(count))
}

// NopCollector 不做任何记录，用于测试与关闭指标的场景
type NopCollector struct{}

func (NopCollector) RecordHTTPRequest(string, string, int, float64, int64) {}
func (NopCollector) RecordOrderPlaced(float64)                             {}
func (NopCollector) RecordOrderCancelled()                                 {}
func (NopCollector) RecordInventoryRejection()                             {}
func (NopCollector) RecordCatalogExport(string)                            {}
func (NopCollector) RecordOutboxRelay(string, int)                         {}
