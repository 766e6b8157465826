package main

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/matiasleandrokruk/logoguard/internal/domain/audit"
	"github.com/matiasleandrokruk/logoguard/internal/domain/imagecheck"
	"github.com/matiasleandrokruk/logoguard/internal/domain/tool"
	"github.com/matiasleandrokruk/logoguard/internal/infra/config"
	"github.com/matiasleandrokruk/logoguard/internal/infra/eventbus"
	"github.com/matiasleandrokruk/logoguard/internal/infra/sqlite"
	"github.com/matiasleandrokruk/logoguard/internal/infra/telemetry"
)

const (
	eventBufferSize = 256
	shutdownTimeout = 10 * time.Second
)

// app is the wired process: validator, registry and the event consumers
// (audit trail, metrics) hanging off the bus.
type app struct {
	cfg       config.Config
	bus       *eventbus.Bus
	validator *imagecheck.Validator
	registry  *tool.ToolRegistry
	audit     *audit.AuditService
	db        *sql.DB

	meterProvider metric.MeterProvider

	consumers       errgroup.Group
	shutdownTracing telemetry.ShutdownFunc
	shutdownMetrics telemetry.ShutdownFunc
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{cfg: cfg, bus: eventbus.NewWithBuffer(eventBufferSize)}

	shutdown, err := telemetry.SetupTracing(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return nil, err
	}
	a.shutdownTracing = shutdown

	mp, shutdown, err := telemetry.SetupMetrics(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return nil, errors.Join(err, a.shutdownTracing(ctx))
	}
	a.meterProvider, a.shutdownMetrics = mp, shutdown

	// consumers outlive a cancelled ctx so close can drain them
	consumeCtx := context.WithoutCancel(ctx)

	metrics, err := telemetry.NewMetricsRecorder(mp.Meter(telemetry.MeterName))
	if err != nil {
		return nil, errors.Join(err, a.shutdownMetrics(ctx), a.shutdownTracing(ctx))
	}
	metricEvents := a.bus.Subscribe(imagecheck.TopicCheckCompleted)
	a.consumers.Go(func() error {
		metrics.Consume(consumeCtx, metricEvents)
		return nil
	})

	if cfg.AuditDBPath != "" {
		db, err := sqlite.Open(cfg.AuditDBPath)
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		a.db = db
		a.audit = audit.NewAuditService(db)
		auditEvents := a.bus.Subscribe(imagecheck.TopicCheckCompleted)
		a.consumers.Go(func() error {
			a.audit.Consume(consumeCtx, auditEvents)
			return nil
		})
		log.Debug().Str("path", cfg.AuditDBPath).Msg("audit trail enabled")
	}

	a.validator = imagecheck.NewValidator(
		imagecheck.WithTimeout(cfg.HTTPTimeout),
		imagecheck.WithMaxBodyBytes(cfg.MaxBodyBytes),
		imagecheck.WithMaxPixels(cfg.MaxPixels),
		imagecheck.WithDecode(cfg.Decode),
		imagecheck.WithPublisher(a.bus),
	)

	a.registry = tool.NewToolRegistry()
	if err := tool.RegisterBuiltInExecutors(a.registry, tool.BuiltinServices{Images: a.validator}); err != nil {
		a.close(ctx)
		return nil, err
	}
	return a, nil
}

// close drains pending events into the consumers, then releases resources.
func (a *app) close(ctx context.Context) {
	a.bus.Close()
	_ = a.consumers.Wait()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if a.shutdownMetrics != nil {
		if err := a.shutdownMetrics(ctx); err != nil {
			log.Warn().Err(err).Msg("metric shutdown failed")
		}
	}
	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(ctx); err != nil {
			log.Warn().Err(err).Msg("trace shutdown failed")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Warn().Err(err).Msg("audit db close failed")
		}
	}
}
