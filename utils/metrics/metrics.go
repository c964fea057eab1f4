package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"
)

var (
	registry = prometheus.NewRegistry()
	logger   *zap.Logger
)

type MetricsConfig struct {
	ReportInterval time.Duration
	LogMetrics     bool
}

func Initialize(cfg *MetricsConfig, log *zap.Logger) {
	logger = log
	prometheus.DefaultRegisterer = registry
}

// Handler exposes the registry for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

type EngineMetrics struct {
	SwapsTotal         *prometheus.CounterVec
	SwapFailures       prometheus.Counter
	SwapLatency        prometheus.Histogram
	SlippageRejections prometheus.Counter
	LiquidityOps       *prometheus.CounterVec
	TransferFailures   prometheus.Counter
	PairsCreated       prometheus.Counter
	SuccessRate        prometheus.Gauge

	successCount prometheus.Counter
	totalCount   prometheus.Counter
}

func NewEngineMetrics(namespace string) *EngineMetrics {
	return &EngineMetrics{
		SwapsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "swaps_total",
			Help:      "Total number of executed swaps",
		}, []string{"direction"}),
		SwapFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "swap_failures_total",
			Help:      "Total number of failed swap attempts",
		}),
		SwapLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "swap_latency_seconds",
			Help:      "Swap execution latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 10),
		}),
		SlippageRejections: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slippage_rejections_total",
			Help:      "Swaps rejected for violating the minimum output bound",
		}),
		LiquidityOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "liquidity_operations_total",
			Help:      "Liquidity operations by kind",
		}, []string{"kind"}),
		TransferFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_failures_total",
			Help:      "Ledger transfers that failed during an operation",
		}),
		PairsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pairs_created_total",
			Help:      "Total number of pairs created",
		}),
		SuccessRate: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "operation_success_rate",
			Help:      "Ratio of successful mutating operations",
		}),
		successCount: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_success_total",
			Help:      "Total number of successful mutating operations",
		}),
		totalCount: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total number of mutating operations",
		}),
	}
}

// RecordOperation feeds the success-rate gauge from the raw counters.
func (m *EngineMetrics) RecordOperation(success bool) {
	m.totalCount.Add(1)
	if success {
		m.successCount.Add(1)
	}

	successCount := counterValue(m.successCount)
	totalCount := counterValue(m.totalCount)
	if totalCount > 0 {
		m.SuccessRate.Set(successCount / totalCount)
	}
}

func counterValue(c prometheus.Counter) float64 {
	ch := make(chan prometheus.Metric, 1)
	c.(prometheus.Collector).Collect(ch)
	metric := <-ch
	if metric == nil {
		return 0
	}
	out := &dto.Metric{}
	if err := metric.Write(out); err != nil || out.Counter == nil {
		return 0
	}
	return *out.Counter.Value
}

type OracleMetrics struct {
	Requests       prometheus.Counter
	Errors         prometheus.Counter
	CacheHits      prometheus.Counter
	ConvertLatency prometheus.Histogram
}

func NewOracleMetrics(namespace string) *OracleMetrics {
	return &OracleMetrics{
		Requests: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_requests_total",
			Help:      "Total number of oracle quote requests",
		}),
		Errors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_errors_total",
			Help:      "Total number of failed oracle quote requests",
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_cache_hits_total",
			Help:      "Quote lookups served from the LRU cache",
		}),
		ConvertLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "convert_latency_seconds",
			Help:      "USD conversion latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 10),
		}),
	}
}
