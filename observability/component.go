package observability

import (
	"context"
	"errors"
	"fmt"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/asr-server/component"
	"github.com/kbukum/asr-server/logger"
)

// Component manages the tracer and meter providers. With export disabled
// it still hands out Metrics backed by the global no-op meter.
type Component struct {
	cfg     Config
	tp      *sdktrace.TracerProvider
	mp      *sdkmetric.MeterProvider
	metrics *Metrics
	log     *logger.Logger
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates the observability component.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log.WithComponent("observability")}
}

func (c *Component) Name() string { return "observability" }

// Metrics returns the service instruments, or nil before Start.
func (c *Component) Metrics() *Metrics { return c.metrics }

func (c *Component) Start(ctx context.Context) error {
	if c.cfg.Enabled {
		tp, err := InitTracer(ctx, c.cfg)
		if err != nil {
			return fmt.Errorf("observability start: %w", err)
		}
		c.tp = tp

		mp, err := InitMeter(ctx, c.cfg)
		if err != nil {
			_ = tp.Shutdown(ctx)
			c.tp = nil
			return fmt.Errorf("observability start: %w", err)
		}
		c.mp = mp
	}

	m, err := NewMetrics(Meter(c.cfg.ServiceName))
	if err != nil {
		return fmt.Errorf("observability start: %w", err)
	}
	c.metrics = m
	return nil
}

// Stop flushes and shuts down the providers.
func (c *Component) Stop(ctx context.Context) error {
	var errs []error
	if c.tp != nil {
		if err := c.tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
		c.tp = nil
	}
	if c.mp != nil {
		if err := c.mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
		c.mp = nil
	}
	return errors.Join(errs...)
}

func (c *Component) Health(_ context.Context) component.Health {
	if c.metrics == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

func (c *Component) Describe() component.Description {
	details := "export disabled"
	if c.cfg.Enabled {
		details = fmt.Sprintf("otlp=%s sample_rate=%.2f", c.cfg.Endpoint, c.cfg.SampleRate)
	}
	return component.Description{Name: "Observability", Type: "telemetry", Details: details}
}
