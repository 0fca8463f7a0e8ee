package telemetry

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// ServiceAPI names the HTTP server in traces
	ServiceAPI = "life-rpg-api"
	// ServiceWorker names the queue worker in traces
	ServiceWorker = "life-rpg-worker"

	jobTracerName = "github.com/benvon/life-rpg/internal/workers"
)

// ShutdownFunc flushes and stops tracing
type ShutdownFunc func(ctx context.Context) error

// InitTracer initializes the OpenTelemetry tracer provider
func InitTracer(ctx context.Context, serviceName, endpoint string) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, nil
}

// Setup starts tracing for serviceName when enabled and an endpoint is set.
// It reports whether tracing is active; the returned shutdown is always safe to call.
func Setup(ctx context.Context, enabled bool, serviceName, endpoint string, logger *zap.Logger) (ShutdownFunc, bool) {
	noop := func(context.Context) error { return nil }
	if !enabled {
		return noop, false
	}
	if endpoint == "" {
		logger.Warn("otel_enabled_but_endpoint_not_configured")
		return noop, false
	}

	tp, err := InitTracer(ctx, serviceName, endpoint)
	if err != nil {
		logger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		return noop, false
	}
	logger.Info("otel_tracer_initialized", zap.String("endpoint", endpoint), zap.String("service", serviceName))
	return func(ctx context.Context) error { return Shutdown(ctx, tp) }, true
}

// Shutdown gracefully shuts down the tracer provider
func Shutdown(ctx context.Context, tp *sdktrace.TracerProvider) error {
	if tp == nil {
		return nil
	}
	return tp.Shutdown(ctx)
}

// StartJobSpan starts a consumer span for one queue job. When tracing is not
// set up the global no-op provider makes this free.
func StartJobSpan(ctx context.Context, jobType string, jobID uuid.UUID, retryCount int) (context.Context, trace.Span) {
	return otel.Tracer(jobTracerName).Start(ctx, "job "+jobType,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("job.type", jobType),
			attribute.String("job.id", jobID.String()),
			attribute.Int("job.retry_count", retryCount),
		),
	)
}
