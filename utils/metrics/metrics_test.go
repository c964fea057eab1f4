package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMetricsInitialization(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	cfg := &MetricsConfig{
		ReportInterval: time.Second,
		LogMetrics:     true,
	}

	Initialize(cfg, logger)
	assert.NotNil(t, registry)
	assert.NotNil(t, Handler())
}

func TestEngineMetrics(t *testing.T) {
	metrics := NewEngineMetrics("test_engine")
	assert.NotNil(t, metrics)

	metrics.SwapsTotal.WithLabelValues("base_to_asset").Inc()
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SwapsTotal.WithLabelValues("base_to_asset")))

	metrics.SlippageRejections.Inc()
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SlippageRejections))

	metrics.SwapLatency.Observe(0.1)
	assert.NotNil(t, metrics.SwapLatency)
}

func TestEngineSuccessRate(t *testing.T) {
	metrics := NewEngineMetrics("test_engine_rate")

	metrics.RecordOperation(true)
	metrics.RecordOperation(true)
	metrics.RecordOperation(false)

	rate := testutil.ToFloat64(metrics.SuccessRate)
	assert.InDelta(t, 2.0/3.0, rate, 0.0001)
}

func TestOracleMetrics(t *testing.T) {
	metrics := NewOracleMetrics("test_oracle")
	assert.NotNil(t, metrics)

	metrics.Requests.Inc()
	metrics.CacheHits.Inc()
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Requests))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CacheHits))
}
