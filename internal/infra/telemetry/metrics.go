// Package telemetry wires OpenTelemetry metrics and tracing for logo checks.
package telemetry

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/matiasleandrokruk/logoguard/internal/domain/imagecheck"
	"github.com/matiasleandrokruk/logoguard/internal/infra/eventbus"
)

const (
	MeterName = "github.com/matiasleandrokruk/logoguard"

	MetricChecks        = "logoguard.checks"
	MetricCheckDuration = "logoguard.check.duration"
)

// MetricsRecorder turns completed checks into a counter and a duration histogram.
type MetricsRecorder struct {
	checks   metric.Int64Counter
	duration metric.Float64Histogram
}

// NewMetricsRecorder creates the instruments on meter.
func NewMetricsRecorder(meter metric.Meter) (*MetricsRecorder, error) {
	checks, err := meter.Int64Counter(MetricChecks,
		metric.WithDescription("Number of logo URL checks"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(MetricCheckDuration,
		metric.WithDescription("Duration of a logo URL check in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &MetricsRecorder{checks: checks, duration: duration}, nil
}

// Observe records one result.
func (m *MetricsRecorder) Observe(ctx context.Context, res imagecheck.Result) {
	attrs := metric.WithAttributes(
		attribute.String("valid", strconv.FormatBool(res.Valid)),
		attribute.String("reason", string(res.Reason)),
	)
	m.checks.Add(ctx, 1, attrs)
	m.duration.Record(ctx, res.Duration.Seconds(), attrs)
}

// Consume observes check events until ctx is done or the channel closes.
func (m *MetricsRecorder) Consume(ctx context.Context, events <-chan eventbus.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if res, ok := evt.Payload.(imagecheck.Result); ok {
				m.Observe(ctx, res)
			}
		}
	}
}
