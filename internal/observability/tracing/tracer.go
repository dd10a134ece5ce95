// Package tracing provides OpenTelemetry span instrumentation for the
// C1-C5 per-source pipeline: one span per source crawl, with child
// spans around the parser fetch, each article's enrichment, and the
// store write.
package tracing

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("blotter")

// GetTracer returns the pipeline's global tracer for starting spans.
func GetTracer() trace.Tracer {
	return tracer
}

// InitTracer wires a stdout span exporter as the global trace
// provider, suitable for local/dev runs where no collector is
// deployed. It returns a shutdown func to flush and stop the provider.
func InitTracer(serviceName string) (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(attribute.String("service.name", serviceName)),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	slog.Info("tracing initialized", slog.String("service", serviceName), slog.String("exporter", "stdout"))
	return provider.Shutdown, nil
}
