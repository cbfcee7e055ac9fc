package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/resource"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const meterName = "github.com/hanko-field/configurator/internal/platform/observability"

// TelemetryOptions configures InitTelemetry.
type TelemetryOptions struct {
	ServiceName    string
	Environment    string
	MetricsEnabled bool
}

// Telemetry owns the tracer and meter providers installed as otel globals.
type Telemetry struct {
	// Metrics records HTTP request metrics. Never nil.
	Metrics *Metrics
	// Handler serves the Prometheus exposition format, or is nil when metrics are disabled.
	Handler http.Handler

	shutdown []func(context.Context) error
}

// InitTelemetry installs a tracer provider and, when enabled, a meter provider exported
// through a dedicated Prometheus registry.
func InitTelemetry(opts TelemetryOptions) (*Telemetry, error) {
	name := opts.ServiceName
	if name == "" {
		name = "configurator"
	}
	res := resource.NewSchemaless(
		semconv.ServiceName(name),
		attribute.String("deployment.environment", opts.Environment),
	)

	tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
	otel.SetTracerProvider(tp)
	t := &Telemetry{shutdown: []func(context.Context) error{tp.Shutdown}}

	if !opts.MetricsEnabled {
		metrics, err := NewMetrics(noop.NewMeterProvider().Meter(meterName))
		if err != nil {
			return nil, err
		}
		t.Metrics = metrics
		return t, nil
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(mp)
	t.shutdown = append(t.shutdown, mp.Shutdown)

	metrics, err := NewMetrics(mp.Meter(meterName))
	if err != nil {
		return nil, err
	}
	t.Metrics = metrics
	t.Handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return t, nil
}

// Shutdown flushes and stops the installed providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error
	for _, fn := range t.shutdown {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Metrics holds the HTTP server instruments.
type Metrics struct {
	requests metric.Int64Counter
	latency  metric.Float64Histogram
}

// NewMetrics creates the HTTP instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	requests, err := meter.Int64Counter(
		"configurator.http.requests",
		metric.WithDescription("Total number of HTTP requests served"),
	)
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram(
		"configurator.http.request.duration",
		metric.WithDescription("Duration of HTTP requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return &Metrics{requests: requests, latency: latency}, nil
}

// RecordRequest counts one served request. A nil receiver records nothing.
func (m *Metrics) RecordRequest(ctx context.Context, method, route string, status int, latency time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("status", strconv.Itoa(status)),
	)
	m.requests.Add(ctx, 1, attrs)
	m.latency.Record(ctx, latency.Seconds(), attrs)
}
