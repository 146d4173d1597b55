package observability

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/voicescribe/component"
	"github.com/kbukum/voicescribe/logger"
)

// Component installs the OTLP trace and metric providers on Start and
// flushes them on Stop. When disabled it does nothing and the global
// no-op providers stay in place.
type Component struct {
	cfg         Config
	service     string
	version     string
	environment string
	log         *logger.Logger

	mu sync.Mutex
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

// NewComponent creates the telemetry component.
func NewComponent(cfg Config, service, version, environment string, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Component{
		cfg:         cfg,
		service:     service,
		version:     version,
		environment: environment,
		log:         log.WithComponent("observability"),
	}
}

// Name implements component.Component.
func (c *Component) Name() string { return "observability" }

// Start implements component.Component.
func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		c.log.Debug("Telemetry export disabled")
		return nil
	}

	tp, err := InitTracer(ctx, TracerConfig{
		ServiceName:    c.service,
		ServiceVersion: c.version,
		Environment:    c.environment,
		Endpoint:       c.cfg.Endpoint,
		Insecure:       c.cfg.Insecure,
		SampleRate:     c.cfg.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}

	mp, err := InitMeter(ctx, MeterConfig{
		ServiceName:    c.service,
		ServiceVersion: c.version,
		Environment:    c.environment,
		Endpoint:       c.cfg.Endpoint,
		Insecure:       c.cfg.Insecure,
		Interval:       c.cfg.MetricInterval,
	})
	if err != nil {
		_ = tp.Shutdown(ctx)
		return fmt.Errorf("observability: %w", err)
	}

	c.mu.Lock()
	c.tp, c.mp = tp, mp
	c.mu.Unlock()
	return nil
}

// Stop implements component.Component.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	tp, mp := c.tp, c.mp
	c.tp, c.mp = nil, nil
	c.mu.Unlock()

	var errs []error
	if tp != nil {
		if err := tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if mp != nil {
		if err := mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Health implements component.Component.
func (c *Component) Health(_ context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if !c.cfg.Enabled {
		h.Message = "disabled"
	}
	return h
}

// Describe implements component.Describable.
func (c *Component) Describe() component.Description {
	details := "disabled"
	if c.cfg.Enabled {
		details = fmt.Sprintf("otlp %s sample=%.2f", c.cfg.Endpoint, c.cfg.SampleRate)
	}
	return component.Description{Name: "Telemetry", Type: "observability", Details: details}
}
