package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/config"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/pkg/contracts/domain"
)

const (
	ServiceVersion = config.AppVersion
	MeterName      = "boqpipeline"
)

// Telemetry holds the tracer and meter for one pipeline process. Providers
// are not installed globally so independent runs keep independent metrics.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *prometheus.Registry
	Metrics        *PipelineMetrics
	Logger         *slog.Logger
}

// InitializeTelemetry builds tracing and metrics from cfg. Spans go to
// traceOut when the stdout exporter is selected (nil means os.Stdout).
func InitializeTelemetry(cfg config.TelemetryConfig, traceOut io.Writer, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = GetLogger()
	}
	ctx := context.Background()

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	t := &Telemetry{Logger: logger}

	if err := t.initializeTracing(ctx, cfg, res, traceOut); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := t.initializeMetrics(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.DebugContext(ctx, "Telemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
		slog.String("trace_exporter", cfg.TraceExporter))

	return t, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg config.TelemetryConfig) (*resource.Resource, error) {
	return resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", ServiceVersion),
		attribute.String("deployment.environment.name", cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

func (t *Telemetry) initializeTracing(ctx context.Context, cfg config.TelemetryConfig, res *resource.Resource, traceOut io.Writer) error {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	}

	switch cfg.TraceExporter {
	case "stdout":
		exporterOpts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
		if traceOut != nil {
			exporterOpts = append(exporterOpts, stdouttrace.WithWriter(traceOut))
		}
		exporter, err := stdouttrace.New(exporterOpts...)
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	case "none", "":
		// Spans are still created so attributes and errors are cheap to record
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	tp := sdktrace.NewTracerProvider(opts...)
	t.TracerProvider = tp
	t.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(ServiceVersion))

	t.Logger.DebugContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))
	return nil
}

func (t *Telemetry) initializeMetrics(ctx context.Context, res *resource.Resource) error {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(
		otelprom.WithRegisterer(registry),
		otelprom.WithoutTargetInfo(),
		otelprom.WithoutScopeInfo(),
	)
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	t.Registry = registry
	t.MeterProvider = mp
	t.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(ServiceVersion))

	metrics, err := CreatePipelineMetrics(t.Meter)
	if err != nil {
		return err
	}
	t.Metrics = metrics

	t.Logger.DebugContext(ctx, "Metrics initialized", slog.String("exporter", "prometheus"))
	return nil
}

// PipelineMetrics holds the pipeline's instruments
type PipelineMetrics struct {
	RecordsGenerated metric.Int64Counter
	RecordsRead      metric.Int64Counter
	RecordsCleaned   metric.Int64Counter
	RecordsDropped   metric.Int64Counter
	StepDuration     metric.Float64Histogram
	Runs             metric.Int64Counter
	WeightedArea     metric.Float64Gauge
}

// CreatePipelineMetrics creates the pipeline instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	recordsGenerated, err := meter.Int64Counter(
		"boq_records_generated",
		metric.WithDescription("Raw records produced by the generator"),
	)
	if err != nil {
		return nil, err
	}

	recordsRead, err := meter.Int64Counter(
		"boq_records_read",
		metric.WithDescription("Raw records read by the cleaner"),
	)
	if err != nil {
		return nil, err
	}

	recordsCleaned, err := meter.Int64Counter(
		"boq_records_cleaned",
		metric.WithDescription("Canonical records emitted by the cleaner"),
	)
	if err != nil {
		return nil, err
	}

	recordsDropped, err := meter.Int64Counter(
		"boq_records_dropped",
		metric.WithDescription("Raw records excluded by the cleaner, by reason"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"boq_step_duration",
		metric.WithDescription("Pipeline step duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	runs, err := meter.Int64Counter(
		"boq_runs",
		metric.WithDescription("Pipeline runs by final status"),
	)
	if err != nil {
		return nil, err
	}

	weightedArea, err := meter.Float64Gauge(
		"boq_weighted_area_sqm",
		metric.WithDescription("Sum of area_sqm times quantity over the last cleaned dataset"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RecordsGenerated: recordsGenerated,
		RecordsRead:      recordsRead,
		RecordsCleaned:   recordsCleaned,
		RecordsDropped:   recordsDropped,
		StepDuration:     stepDuration,
		Runs:             runs,
		WeightedArea:     weightedArea,
	}, nil
}

// RecordGenerated records a generate step's output size
func (m *PipelineMetrics) RecordGenerated(ctx context.Context, count int) {
	if m == nil {
		return
	}
	m.RecordsGenerated.Add(ctx, int64(count))
}

// RecordCleaning records the counters of one cleaning pass
func (m *PipelineMetrics) RecordCleaning(ctx context.Context, summary domain.CleaningSummary) {
	if m == nil {
		return
	}
	m.RecordsRead.Add(ctx, int64(summary.InputCount))
	m.RecordsCleaned.Add(ctx, int64(summary.OutputCount))
	for reason, n := range summary.DropsByReason {
		m.RecordsDropped.Add(ctx, int64(n), metric.WithAttributes(attribute.String("reason", reason)))
	}
	m.WeightedArea.Record(ctx, summary.TotalWeightedArea)
}

// RecordStep records a step's duration and outcome
func (m *PipelineMetrics) RecordStep(ctx context.Context, step string, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	m.StepDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("status", status),
	))
}

// RecordRun records a finished run
func (m *PipelineMetrics) RecordRun(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.Runs.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// StartSpan starts a span. When telemetry is disabled the context is
// returned unchanged with a no-op span, so ending it never ends the parent.
func (t *Telemetry) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if t == nil || t.Tracer == nil {
		return ctx, noop.Span{}
	}
	return t.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// PipelineMetrics returns the instruments, nil when telemetry is disabled
func (t *Telemetry) PipelineMetrics() *PipelineMetrics {
	if t == nil {
		return nil
	}
	return t.Metrics
}

// WriteMetrics writes the current metric values in Prometheus text format
// to path, using the textfile collector's write-then-rename.
func (t *Telemetry) WriteMetrics(path string) error {
	if t == nil || t.Registry == nil {
		return fmt.Errorf("metrics are not initialized")
	}
	if err := config.EnsureParent(path); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, t.Registry)
}

// Shutdown flushes and stops both providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error

	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if t.MeterProvider != nil {
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
