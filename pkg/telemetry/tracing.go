// Package telemetry wires optional OpenTelemetry tracing around the
// conversion steps. Tracing is off unless explicitly enabled; when off every
// span goes to the global no-op provider.
package telemetry

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// Config controls tracer provider construction.
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	// SamplerType is one of always, never, ratio.
	SamplerType  string
	SamplerRatio float64
}

// InitTracer installs a global tracer provider exporting over OTLP/HTTP and
// returns its shutdown function. The exporter endpoint and headers come from
// the standard OTEL_EXPORTER_OTLP_* environment variables.
func InitTracer(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create resource")
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create trace exporter")
	}

	provider := trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithSpanProcessor(trace.NewBatchSpanProcessor(
			exporter,
			trace.WithMaxExportBatchSize(512),
			trace.WithBatchTimeout(time.Second),
		)),
		trace.WithSampler(getSampler(cfg)),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return func(ctx context.Context) error {
		// provider first so buffered spans are flushed through the exporter
		return errors.Join(provider.Shutdown(ctx), exporter.Shutdown(ctx))
	}, nil
}

func getSampler(cfg Config) trace.Sampler {
	switch cfg.SamplerType {
	case "never":
		return trace.NeverSample()
	case "ratio":
		return trace.ParentBased(trace.TraceIDRatioBased(cfg.SamplerRatio))
	case "always":
		fallthrough
	default:
		return trace.AlwaysSample()
	}
}
