// Package tracing provides OpenTelemetry tracing for the digest
// service: a shared tracer, HTTP server middleware, and tracer
// provider setup for the api and worker binaries.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the shared tracer for the digest service.
var tracer = otel.Tracer("newsdigest")

// GetTracer returns the shared tracer for creating spans.
//
//	ctx, span := tracing.GetTracer().Start(ctx, "digest.cycle")
//	defer span.End()
func GetTracer() trace.Tracer {
	return tracer
}

// Init installs a tracer provider for the given service name and
// registers the W3C trace context propagator. The returned shutdown
// function flushes pending spans and must be called on exit.
func Init(serviceName string) (func(context.Context) error, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("Init: build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	tracer = otel.Tracer("newsdigest")

	return tp.Shutdown, nil
}
