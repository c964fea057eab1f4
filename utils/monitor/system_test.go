package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRuntimeMonitor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mon, err := NewRuntimeMonitor(ctx, zaptest.NewLogger(t), prometheus.NewRegistry())
	require.NoError(t, err)
	require.NotNil(t, mon)
	defer mon.Cleanup()

	// Let it collect at least one sample.
	time.Sleep(1500 * time.Millisecond)

	metrics := mon.GetMetrics()
	assert.Contains(t, metrics, "goroutines")
	assert.Contains(t, metrics, "heap_objects")
	assert.Contains(t, metrics, "heap_alloc")
	assert.Contains(t, metrics, "gc_pause")

	goroutines, ok := metrics["goroutines"].(int64)
	assert.True(t, ok)
	assert.Greater(t, goroutines, int64(0))

	heapAlloc, ok := metrics["heap_alloc"].(int64)
	assert.True(t, ok)
	assert.Greater(t, heapAlloc, int64(0))
}

func TestRuntimeMonitorRejectsDuplicateRegistration(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()

	mon, err := NewRuntimeMonitor(ctx, zaptest.NewLogger(t), reg)
	require.NoError(t, err)
	defer mon.Cleanup()

	_, err = NewRuntimeMonitor(ctx, zaptest.NewLogger(t), reg)
	assert.Error(t, err)
}
