package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/voicescribe/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (development, production).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider. Instruments created
// before InitMeter forward to the provider it installs.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the voice pipeline's instruments. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	messagesTotal   metric.Int64Counter
	messageDuration metric.Float64Histogram
	messagesActive  metric.Int64UpDownCounter
	stageDuration   metric.Float64Histogram
	audioSeconds    metric.Float64Counter
	errorTotal      metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	messagesTotal, err := meter.Int64Counter("voicescribe.messages",
		metric.WithDescription("Voice messages handled, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating voicescribe.messages counter: %w", err)
	}

	messageDuration, err := meter.Float64Histogram("voicescribe.message.duration",
		metric.WithDescription("End-to-end handling time of a voice message"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating voicescribe.message.duration histogram: %w", err)
	}

	messagesActive, err := meter.Int64UpDownCounter("voicescribe.messages.active",
		metric.WithDescription("Voice messages currently being handled"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating voicescribe.messages.active gauge: %w", err)
	}

	stageDuration, err := meter.Float64Histogram("voicescribe.stage.duration",
		metric.WithDescription("Duration of download, convert and transcribe stages"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating voicescribe.stage.duration histogram: %w", err)
	}

	audioSeconds, err := meter.Float64Counter("voicescribe.audio",
		metric.WithDescription("Audio submitted for transcription"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating voicescribe.audio counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("voicescribe.errors",
		metric.WithDescription("Errors by code and stage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating voicescribe.errors counter: %w", err)
	}

	return &Metrics{
		messagesTotal:   messagesTotal,
		messageDuration: messageDuration,
		messagesActive:  messagesActive,
		stageDuration:   stageDuration,
		audioSeconds:    audioSeconds,
		errorTotal:      errorTotal,
	}, nil
}

// MessageStarted increments the active message count.
func (m *Metrics) MessageStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.messagesActive.Add(ctx, 1)
}

// MessageFinished decrements active messages and records the outcome.
func (m *Metrics) MessageFinished(ctx context.Context, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.messagesActive.Add(ctx, -1)
	m.messagesTotal.Add(ctx, 1, attrs)
	m.messageDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordStage records one pipeline stage.
func (m *Metrics) RecordStage(ctx context.Context, stage, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", status),
	))
}

// RecordAudio adds transcribed audio length.
func (m *Metrics) RecordAudio(ctx context.Context, seconds float64) {
	if m == nil || seconds <= 0 {
		return
	}
	m.audioSeconds.Add(ctx, seconds)
}

// RecordError records an error by code and stage.
func (m *Metrics) RecordError(ctx context.Context, code, stage string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("stage", stage),
	))
}
