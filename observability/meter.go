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
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name reported on exported metrics.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
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

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the metric instruments recorded for pipeline execution.
type Metrics struct {
	stageTotal    metric.Int64Counter
	stageDuration metric.Float64Histogram
	itemTotal     metric.Int64Counter
	itemDropped   metric.Int64Counter
	errorTotal    metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	stageTotal, err := meter.Int64Counter("pipeline.stage.total",
		metric.WithDescription("Total number of executed stages"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.stage.total counter: %w", err)
	}

	stageDuration, err := meter.Float64Histogram("pipeline.stage.duration",
		metric.WithDescription("Wall-clock duration of stages in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.stage.duration histogram: %w", err)
	}

	itemTotal, err := meter.Int64Counter("pipeline.item.total",
		metric.WithDescription("Total number of items processed per step"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.item.total counter: %w", err)
	}

	itemDropped, err := meter.Int64Counter("pipeline.item.dropped",
		metric.WithDescription("Items dropped by filters or empty map outputs"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.item.dropped counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("pipeline.error.total",
		metric.WithDescription("Total step errors by step name"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.error.total counter: %w", err)
	}

	return &Metrics{
		stageTotal:    stageTotal,
		stageDuration: stageDuration,
		itemTotal:     itemTotal,
		itemDropped:   itemDropped,
		errorTotal:    errorTotal,
	}, nil
}

// RecordStage records one completed stage execution.
func (m *Metrics) RecordStage(ctx context.Context, step, mode, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("mode", mode),
		attribute.String("status", status),
	)
	m.stageTotal.Add(ctx, 1, attrs)
	m.stageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("mode", mode),
	))
}

// RecordItems records items entering and leaving a stage.
func (m *Metrics) RecordItems(ctx context.Context, step string, in, out int) {
	attrs := metric.WithAttributes(attribute.String("step", step))
	m.itemTotal.Add(ctx, int64(in), attrs)
	if dropped := in - out; dropped > 0 {
		m.itemDropped.Add(ctx, int64(dropped), attrs)
	}
}

// RecordError records a step error.
func (m *Metrics) RecordError(ctx context.Context, step string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("step", step)))
}
