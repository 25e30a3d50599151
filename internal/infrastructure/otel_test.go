package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/config"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/shared/testutil"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/pkg/contracts/domain"
)

func newTestTelemetry(t *testing.T, exporter string, traceOut *bytes.Buffer) *Telemetry {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)

	cfg := config.Default().Telemetry
	cfg.TraceExporter = exporter

	var tel *Telemetry
	var err error
	if traceOut != nil {
		tel, err = InitializeTelemetry(cfg, traceOut, logger)
	} else {
		tel, err = InitializeTelemetry(cfg, nil, logger)
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })
	return tel
}

func TestInitializeTelemetry(t *testing.T) {
	tel := newTestTelemetry(t, "none", nil)

	assert.NotNil(t, tel.TracerProvider)
	assert.NotNil(t, tel.MeterProvider)
	assert.NotNil(t, tel.Tracer)
	assert.NotNil(t, tel.Meter)
	assert.NotNil(t, tel.Registry)
	assert.NotNil(t, tel.Metrics)
}

func TestInitializeTelemetry_UnsupportedExporter(t *testing.T) {
	cfg := config.Default().Telemetry
	cfg.TraceExporter = "jaeger"

	_, err := InitializeTelemetry(cfg, nil, nil)
	assert.Error(t, err)
}

func TestTelemetry_StdoutTraces(t *testing.T) {
	var out bytes.Buffer
	tel := newTestTelemetry(t, "stdout", &out)

	ctx, span := tel.StartSpan(context.Background(), "step.clean", attribute.String("step", "clean"))
	RecordError(ctx, errors.New("boom"))
	span.End()

	require.NoError(t, tel.Shutdown(context.Background()))
	assert.Contains(t, out.String(), "step.clean")
	assert.Contains(t, out.String(), "boom")
}

func TestTelemetry_NilIsSafe(t *testing.T) {
	var tel *Telemetry

	ctx, span := tel.StartSpan(context.Background(), "noop")
	assert.NotNil(t, ctx)
	assert.False(t, span.IsRecording())
	span.End()

	assert.Nil(t, tel.PipelineMetrics())
	tel.PipelineMetrics().RecordGenerated(ctx, 10)
	tel.PipelineMetrics().RecordRun(ctx, "completed")
	assert.NoError(t, tel.Shutdown(ctx))
	assert.Error(t, tel.WriteMetrics(filepath.Join(t.TempDir(), "m.prom")))
}

func TestPipelineMetrics_WriteTextfile(t *testing.T) {
	tel := newTestTelemetry(t, "none", nil)
	ctx := context.Background()

	m := tel.PipelineMetrics()
	m.RecordGenerated(ctx, 100)
	m.RecordCleaning(ctx, domain.CleaningSummary{
		InputCount:        100,
		OutputCount:       97,
		DroppedCount:      3,
		DropsByReason:     map[string]int{"DATE_PARSE": 2, "LOGICAL_ORDER": 1},
		TotalWeightedArea: 1234.5,
	})
	m.RecordStep(ctx, "clean", 250*time.Millisecond, true)
	m.RecordRun(ctx, "completed")

	path := filepath.Join(t.TempDir(), "metrics", "boq.prom")
	require.NoError(t, tel.WriteMetrics(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "boq_records_generated_total 100")
	assert.Contains(t, text, "boq_records_read_total 100")
	assert.Contains(t, text, "boq_records_cleaned_total 97")
	assert.Contains(t, text, `reason="DATE_PARSE"`)
	assert.Contains(t, text, `reason="LOGICAL_ORDER"`)
	assert.Contains(t, text, "boq_step_duration_seconds")
	assert.Contains(t, text, `status="completed"`)
	assert.Contains(t, text, "boq_weighted_area_sqm 1234.5")
}

func TestTelemetry_IndependentRegistries(t *testing.T) {
	a := newTestTelemetry(t, "none", nil)
	b := newTestTelemetry(t, "none", nil)
	ctx := context.Background()

	a.PipelineMetrics().RecordGenerated(ctx, 5)
	b.PipelineMetrics().RecordGenerated(ctx, 7)

	dir := t.TempDir()
	require.NoError(t, a.WriteMetrics(filepath.Join(dir, "a.prom")))
	require.NoError(t, b.WriteMetrics(filepath.Join(dir, "b.prom")))

	aText, err := os.ReadFile(filepath.Join(dir, "a.prom"))
	require.NoError(t, err)
	bText, err := os.ReadFile(filepath.Join(dir, "b.prom"))
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(aText), "boq_records_generated_total 5"))
	assert.True(t, strings.Contains(string(bText), "boq_records_generated_total 7"))
}
