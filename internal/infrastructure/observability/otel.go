package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Metrics holds all application metrics
type Metrics struct {
	RequestCount     metric.Int64Counter
	RequestDuration  metric.Float64Histogram
	RunsStarted      metric.Int64Counter
	RunsCompleted    metric.Int64Counter
	RunsFailed       metric.Int64Counter
	SearchCallCount  metric.Int64Counter
	JudgeCallCount   metric.Int64Counter
	PipelineDuration metric.Float64Histogram
}

// Setup initializes OpenTelemetry
func Setup(ctx context.Context, serviceName, serviceVersion, endpoint string) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	// Set up trace exporter
	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	// Set up trace provider
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	shutdown := func(ctx context.Context) error {
		return tracerProvider.Shutdown(ctx)
	}

	return shutdown, nil
}

// InitMetrics initializes application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("github.com/veriscope/modelaudit")

	requestCount, err := meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	runsStarted, err := meter.Int64Counter(
		"investigation.runs.started",
		metric.WithDescription("Number of investigation runs started"),
	)
	if err != nil {
		return nil, err
	}

	runsCompleted, err := meter.Int64Counter(
		"investigation.runs.completed",
		metric.WithDescription("Number of investigation runs completed"),
	)
	if err != nil {
		return nil, err
	}

	runsFailed, err := meter.Int64Counter(
		"investigation.runs.failed",
		metric.WithDescription("Number of investigation runs that ended in error"),
	)
	if err != nil {
		return nil, err
	}

	searchCallCount, err := meter.Int64Counter(
		"investigation.search.calls",
		metric.WithDescription("Number of external search calls"),
	)
	if err != nil {
		return nil, err
	}

	judgeCallCount, err := meter.Int64Counter(
		"investigation.judge.calls",
		metric.WithDescription("Number of external judge calls"),
	)
	if err != nil {
		return nil, err
	}

	pipelineDuration, err := meter.Float64Histogram(
		"investigation.pipeline.duration",
		metric.WithDescription("End-to-end pipeline duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCount:     requestCount,
		RequestDuration:  requestDuration,
		RunsStarted:      runsStarted,
		RunsCompleted:    runsCompleted,
		RunsFailed:       runsFailed,
		SearchCallCount:  searchCallCount,
		JudgeCallCount:   judgeCallCount,
		PipelineDuration: pipelineDuration,
	}, nil
}

// StartSpan starts a new trace span
func StartSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	tracer := otel.Tracer("github.com/veriscope/modelaudit")
	return tracer.Start(ctx, spanName)
}

// SetSpanAttributes sets attributes on a span
func SetSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
}

// RecordRequestMetric records request count and duration metrics
func RecordRequestMetric(ctx context.Context, metrics *Metrics, method, path string, statusCode int, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", path),
		attribute.Int("http.status_code", statusCode),
	}

	metrics.RequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.RequestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}
