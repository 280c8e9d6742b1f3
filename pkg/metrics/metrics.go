// Package metrics 基于Prometheus的指标收集
//
// 指标类型选择:
//   - Counter: 只增不减,如请求数、预约创建数、通知发送数
//   - Gauge: 瞬时值,如正在处理的请求数、熔断器状态
//   - Histogram: 分布,如请求耗时、批处理耗时
//
// 所有指标在包加载时注册到默认Registry,由/metrics端点暴露。
// 未开启/metrics端点时调用记录函数也是安全的。
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数
	// 标签: method、path(路由模板)、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 流通业务指标

	// HoldsCreatedTotal 预约创建数
	// 标签: mode(active=直接保留 / pending=排队)
	HoldsCreatedTotal *prometheus.CounterVec

	// CirculationEventsTotal 已提交的流通事件数,按通知类型统计
	// hold_activated即提升次数,hold_expired即过期次数
	CirculationEventsTotal *prometheus.CounterVec

	// SweepItemsTotal 批处理条目数
	// 标签: sweep(expire_holds/mark_overdue)、result(applied/failed/skipped)
	SweepItemsTotal *prometheus.CounterVec

	// SweepDuration 批处理耗时
	SweepDuration *prometheus.HistogramVec

	// QueueCacheRequests 队列快照缓存命中情况
	// 标签: result(hit/miss/error)
	QueueCacheRequests *prometheus.CounterVec

	// CatalogLookupsTotal 外部目录查询次数
	// 标签: result(found/not_found/error)
	CatalogLookupsTotal *prometheus.CounterVec

	// 熔断器指标

	// CircuitBreakerState 熔断器状态 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求数
	// 标签: name、result(success/failure/rejected)
	CircuitBreakerRequests *prometheus.CounterVec

	// Saga指标

	// SagaExecutionsTotal Saga执行数
	// 标签: saga、result(success/failure)
	SagaExecutionsTotal *prometheus.CounterVec

	// SagaCompensationsTotal Saga补偿执行数
	SagaCompensationsTotal *prometheus.CounterVec

	// 消息队列指标

	// MessagesPublishedTotal 消息发布数
	// 标签: exchange、routing_key、result(success/failure)
	MessagesPublishedTotal *prometheus.CounterVec
)

func init() {
	InitMetrics()
}

// InitMetrics 注册所有指标,重复调用无副作用
func InitMetrics() {
	once.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时(秒)",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	HoldsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circulation_holds_created_total",
			Help: "预约创建数",
		},
		[]string{"mode"},
	)

	CirculationEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circulation_events_total",
			Help: "已提交的流通事件数",
		},
		[]string{"kind"},
	)

	SweepItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circulation_sweep_items_total",
			Help: "批处理条目数",
		},
		[]string{"sweep", "result"},
	)

	SweepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "circulation_sweep_duration_seconds",
			Help:    "批处理耗时(秒)",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
		},
		[]string{"sweep"},
	)

	QueueCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circulation_queue_cache_requests_total",
			Help: "队列快照缓存请求数",
		},
		[]string{"result"},
	)

	CatalogLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_lookups_total",
			Help: "外部目录查询次数",
		},
		[]string{"result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态(0=CLOSED, 1=OPEN, 2=HALF_OPEN)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	SagaExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_executions_total",
			Help: "Saga执行总数",
		},
		[]string{"saga", "result"},
	)

	SagaCompensationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_compensations_total",
			Help: "Saga补偿执行总数",
		},
		[]string{"saga"},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key", "result"},
	)
}

// =========================================
// 便捷函数
// =========================================

// IncCounterVec 递增CounterVec
func IncCounterVec(counter *prometheus.CounterVec, labels ...string) {
	InitMetrics()
	counter.WithLabelValues(labels...).Inc()
}

// AddCounterVec 增加CounterVec
func AddCounterVec(counter *prometheus.CounterVec, value float64, labels ...string) {
	InitMetrics()
	counter.WithLabelValues(labels...).Add(value)
}

// SetGaugeVec 设置GaugeVec
func SetGaugeVec(gauge *prometheus.GaugeVec, value float64, labels ...string) {
	InitMetrics()
	gauge.WithLabelValues(labels...).Set(value)
}

// ObserveHistogramVec 记录HistogramVec观测值
func ObserveHistogramVec(histogram *prometheus.HistogramVec, value float64, labels ...string) {
	InitMetrics()
	histogram.WithLabelValues(labels...).Observe(value)
}

// RecordHoldCreated 记录一次预约创建
func RecordHoldCreated(mode string) {
	InitMetrics()
	HoldsCreatedTotal.WithLabelValues(mode).Inc()
}

// RecordEvent 记录一次已提交的流通事件
func RecordEvent(kind string) {
	InitMetrics()
	CirculationEventsTotal.WithLabelValues(kind).Inc()
}

// RecordSweep 记录一次批处理结果
func RecordSweep(sweep string, applied, failed, skipped int, seconds float64) {
	InitMetrics()
	SweepItemsTotal.WithLabelValues(sweep, "applied").Add(float64(applied))
	SweepItemsTotal.WithLabelValues(sweep, "failed").Add(float64(failed))
	SweepItemsTotal.WithLabelValues(sweep, "skipped").Add(float64(skipped))
	SweepDuration.WithLabelValues(sweep).Observe(seconds)
}
