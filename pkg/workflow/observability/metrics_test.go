package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest installs a manual-reader meter provider for the test.
func setupMetricsTest(t *testing.T) (*sdkmetric.ManualReader, func()) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	originalProvider := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	cleanup := func() {
		otel.SetMeterProvider(originalProvider)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	}

	return reader, cleanup
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetricsRecorder(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)

	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop, "Expected real metrics recorder, got noop")
}

func TestRecordNodeExecution(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("records execution count with node attribute", func(t *testing.T) {
		m.RecordNodeExecution(ctx, "research", 50*time.Millisecond, nil)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "workflow.node.executions")
		require.NotNil(t, metric)

		sum, ok := metric.Data.(metricdata.Sum[int64])
		require.True(t, ok, "Expected Sum type")
		require.NotEmpty(t, sum.DataPoints)

		found := false
		for _, dp := range sum.DataPoints {
			for _, attr := range dp.Attributes.ToSlice() {
				if attr.Key == "node_id" && attr.Value.AsString() == "research" {
					found = true
					assert.GreaterOrEqual(t, dp.Value, int64(1))
				}
			}
		}
		assert.True(t, found, "Expected datapoint for node_id=research")
	})

	t.Run("records latency histogram", func(t *testing.T) {
		m.RecordNodeExecution(ctx, "summary", 100*time.Millisecond, nil)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "workflow.node.latency_ms")
		require.NotNil(t, metric)

		hist, ok := metric.Data.(metricdata.Histogram[float64])
		require.True(t, ok, "Expected Histogram type")
		require.NotEmpty(t, hist.DataPoints)
	})

	t.Run("records errors when present", func(t *testing.T) {
		m.RecordNodeExecution(ctx, "failing", 10*time.Millisecond, errors.New("node failed"))

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "workflow.node.errors")
		require.NotNil(t, metric)

		sum, ok := metric.Data.(metricdata.Sum[int64])
		require.True(t, ok, "Expected Sum type")

		found := false
		for _, dp := range sum.DataPoints {
			for _, attr := range dp.Attributes.ToSlice() {
				if attr.Key == "node_id" && attr.Value.AsString() == "failing" {
					found = true
					assert.GreaterOrEqual(t, dp.Value, int64(1))
				}
			}
		}
		assert.True(t, found, "Expected error datapoint")
	})
}

func TestRecordGraphRun(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	m.RecordGraphRun(ctx, true, 500*time.Millisecond)
	m.RecordGraphRun(ctx, false, 100*time.Millisecond)

	rm := collectMetrics(t, reader)

	runs := findMetric(rm, "workflow.runs")
	require.NotNil(t, runs)
	sum, ok := runs.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.NotEmpty(t, sum.DataPoints)

	latency := findMetric(rm, "workflow.run.latency_ms")
	require.NotNil(t, latency)
	hist, ok := latency.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "Expected Histogram type")
	require.NotEmpty(t, hist.DataPoints)
}

func TestRecordCheckpoint(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	m.RecordCheckpoint(context.Background(), "approval", 2048)

	rm := collectMetrics(t, reader)
	metric := findMetric(rm, "workflow.checkpoint.size_bytes")
	require.NotNil(t, metric)

	hist, ok := metric.Data.(metricdata.Histogram[int64])
	require.True(t, ok, "Expected Histogram[int64] type")
	require.NotEmpty(t, hist.DataPoints)

	found := false
	for _, dp := range hist.DataPoints {
		for _, attr := range dp.Attributes.ToSlice() {
			if attr.Key == "node_id" && attr.Value.AsString() == "approval" {
				found = true
				assert.Greater(t, dp.Count, uint64(0))
			}
		}
	}
	assert.True(t, found, "Expected datapoint for approval")
}

func TestRecordLLMCall(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	m.RecordLLMCall(ctx, "gpt-5-mini", 900*time.Millisecond, nil)
	m.RecordLLMCall(ctx, "gpt-5-mini", 100*time.Millisecond, errors.New("rate limited"))

	rm := collectMetrics(t, reader)

	calls := findMetric(rm, "workflow.llm.calls")
	require.NotNil(t, calls)
	sum, ok := calls.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)

	latency := findMetric(rm, "workflow.llm.latency_ms")
	require.NotNil(t, latency)
}

func TestRecordToolCall(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	m.RecordToolCall(context.Background(), "web_search", 200*time.Millisecond)

	rm := collectMetrics(t, reader)
	metric := findMetric(rm, "workflow.tool.calls")
	require.NotNil(t, metric)

	sum, ok := metric.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	found := false
	for _, dp := range sum.DataPoints {
		for _, attr := range dp.Attributes.ToSlice() {
			if attr.Key == "tool" && attr.Value.AsString() == "web_search" {
				found = true
			}
		}
	}
	assert.True(t, found, "Expected datapoint for web_search")
}

func TestNewOtelMetrics_Creation(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.NotNil(t, m.nodeExecutions)
	assert.NotNil(t, m.nodeLatency)
	assert.NotNil(t, m.nodeErrors)
	assert.NotNil(t, m.graphRuns)
	assert.NotNil(t, m.graphLatency)
	assert.NotNil(t, m.checkpointSize)
	assert.NotNil(t, m.llmCalls)
	assert.NotNil(t, m.llmLatency)
	assert.NotNil(t, m.toolCalls)
}
