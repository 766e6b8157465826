package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/matiasleandrokruk/logoguard/internal/domain/imagecheck"
	"github.com/matiasleandrokruk/logoguard/internal/infra/eventbus"
)

func newTestRecorder(t *testing.T) (*MetricsRecorder, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	rec, err := NewMetricsRecorder(mp.Meter("test"))
	require.NoError(t, err)
	return rec, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, scope := range rm.ScopeMetrics {
		for i := range scope.Metrics {
			if scope.Metrics[i].Name == name {
				return &scope.Metrics[i]
			}
		}
	}
	return nil
}

func TestMetricsRecorder_Observe(t *testing.T) {
	rec, reader := newTestRecorder(t)
	ctx := context.Background()

	rec.Observe(ctx, imagecheck.Result{Valid: true, Reason: imagecheck.ReasonOK, Duration: 100 * time.Millisecond})
	rec.Observe(ctx, imagecheck.Result{Valid: true, Reason: imagecheck.ReasonOK, Duration: 300 * time.Millisecond})
	rec.Observe(ctx, imagecheck.Result{Reason: imagecheck.ReasonHTTPStatus, Duration: 50 * time.Millisecond})

	rm := collect(t, reader)

	checks := findMetric(rm, MetricChecks)
	require.NotNil(t, checks)
	sum, ok := checks.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum[int64], got %T", checks.Data)

	counts := map[string]int64{}
	for _, dp := range sum.DataPoints {
		reason, _ := dp.Attributes.Value(attribute.Key("reason"))
		counts[reason.AsString()] += dp.Value
	}
	assert.Equal(t, int64(2), counts["ok"])
	assert.Equal(t, int64(1), counts["http_status"])

	duration := findMetric(rm, MetricCheckDuration)
	require.NotNil(t, duration)
	hist, ok := duration.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "expected Histogram[float64], got %T", duration.Data)

	var total uint64
	for _, dp := range hist.DataPoints {
		total += dp.Count
	}
	assert.Equal(t, uint64(3), total)
}

func TestMetricsRecorder_ConsumeUntilBusClosed(t *testing.T) {
	rec, reader := newTestRecorder(t)
	bus := eventbus.New()
	events := bus.Subscribe(imagecheck.TopicCheckCompleted)

	done := make(chan struct{})
	go func() {
		rec.Consume(context.Background(), events)
		close(done)
	}()

	bus.Publish(imagecheck.TopicCheckCompleted, imagecheck.Result{Reason: imagecheck.ReasonTimeout})
	bus.Publish(imagecheck.TopicCheckCompleted, 42)
	bus.Close()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop")
	}

	checks := findMetric(collect(t, reader), MetricChecks)
	require.NotNil(t, checks)
	sum := checks.Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)
}
