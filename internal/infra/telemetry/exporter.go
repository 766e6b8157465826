package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultMetricInterval is how often metrics are pushed to the collector.
const DefaultMetricInterval = 30 * time.Second

// SetupMetrics installs a global meter provider pushing over OTLP/HTTP and
// returns it. An empty endpoint returns the current global provider unchanged.
func SetupMetrics(ctx context.Context, endpoint string) (metric.MeterProvider, ShutdownFunc, error) {
	if endpoint == "" {
		return otel.GetMeterProvider(), noopShutdown, nil
	}

	exporter, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(endpoint))
	if err != nil {
		return otel.GetMeterProvider(), noopShutdown, fmt.Errorf("telemetry: otlp metric exporter: %w", err)
	}

	mp := NewMeterProvider(sdkmetric.WithReader(
		sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(DefaultMetricInterval)),
	))
	otel.SetMeterProvider(mp)

	log.Info().Str("endpoint", endpoint).Msg("metric export enabled")
	return mp, mp.Shutdown, nil
}

// NewMeterProvider builds a meter provider tagged with the service resource.
func NewMeterProvider(opts ...sdkmetric.Option) *sdkmetric.MeterProvider {
	return sdkmetric.NewMeterProvider(append([]sdkmetric.Option{sdkmetric.WithResource(serviceResource())}, opts...)...)
}
