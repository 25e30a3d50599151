package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/config"
	apperrors "github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/errors"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/exporter"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/infrastructure"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/shared/testutil"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/pkg/contracts/domain"
)

func testConfig(dir string, rows int, seed int64) config.PipelineConfig {
	return config.PipelineConfig{
		RecordCount:        rows,
		BaseDate:           config.DefaultBaseDate,
		RawStorePath:       filepath.Join(dir, "raw", config.RawStoreFileName),
		CanonicalStorePath: filepath.Join(dir, "clean", config.CanonicalStoreFileName),
		Seed:               seed,
	}
}

func newTestTelemetry(t *testing.T) *infrastructure.Telemetry {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	tel, err := infrastructure.InitializeTelemetry(config.TelemetryConfig{
		ServiceName:   config.ServiceName,
		TraceExporter: "none",
		SampleRatio:   1,
	}, nil, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })
	return tel
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"all", ModeAll, false},
		{"generate", ModeGenerate, false},
		{"clean", ModeClean, false},
		{"", ModeAll, false},
		{"verify", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Equal(t, apperrors.ErrTypeConfig, apperrors.TypeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunner_AllSteps(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, 500, 42)
	cfg.XLSXPath = filepath.Join(dir, "clean", config.WorkbookFileName)
	cfg.SummaryPath = filepath.Join(dir, "reports", config.SummaryFileName)
	cfg.MetricsPath = filepath.Join(dir, "metrics", config.MetricsFileName)

	logger, handler := testutil.NewTestLogger(t)
	runner := NewRunner(cfg, WithLogger(logger), WithTelemetry(newTestTelemetry(t)))

	report, err := runner.Run(context.Background(), ModeAll)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, domain.RunStatusCompleted, report.Status)
	assert.NotEmpty(t, report.RunID)
	assert.NotNil(t, report.CompletedAt)
	require.Len(t, report.Steps, 2)
	for _, step := range report.Steps {
		assert.Equal(t, domain.StepStatusCompleted, step.Status, step.Name)
		assert.NotNil(t, step.StartedAt)
		assert.Empty(t, step.Error)
	}
	assert.Equal(t, 500, report.Step(StepGenerate).Records)

	require.NotNil(t, report.Summary)
	s := report.Summary
	assert.Equal(t, 500, s.InputCount)
	assert.Equal(t, s.InputCount-s.OutputCount, s.DroppedCount)
	assert.Equal(t, s.OutputCount, report.Step(StepClean).Records)
	assert.Equal(t, cfg.CanonicalStorePath, report.CanonicalStorePath)

	// Canonical store is written and conforms to the schema
	require.NoError(t, exporter.VerifyCanonical(cfg.CanonicalStorePath))
	doc, err := exporter.ReadCanonical(cfg.CanonicalStorePath)
	require.NoError(t, err)
	assert.Len(t, doc.Items, s.OutputCount)

	assert.FileExists(t, cfg.XLSXPath)

	// Run report on disk matches the returned one
	data, err := os.ReadFile(cfg.SummaryPath)
	require.NoError(t, err)
	var onDisk domain.RunReport
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, report.RunID, onDisk.RunID)
	assert.Equal(t, domain.RunStatusCompleted, onDisk.Status)
	assert.Equal(t, s.OutputCount, onDisk.Summary.OutputCount)

	metrics, err := os.ReadFile(cfg.MetricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "boq_records_generated_total 500")
	assert.Contains(t, string(metrics), `step="clean"`)
	assert.Contains(t, string(metrics), `status="completed"`)

	finished := handler.FindByMessage("Pipeline run finished")
	require.Len(t, finished, 1)
	assert.Equal(t, report.RunID, finished[0].Attrs["run_id"])
	assert.Equal(t, "pipeline", finished[0].Attrs["component"])
	testutil.AssertNoErrors(t, handler)
}

func TestRunner_SeededRunsAreReproducible(t *testing.T) {
	run := func() []byte {
		dir := t.TempDir()
		cfg := testConfig(dir, 200, 7)
		logger, _ := testutil.NewTestLogger(t)

		_, err := NewRunner(cfg, WithLogger(logger)).Run(context.Background(), ModeAll)
		require.NoError(t, err)

		data, err := os.ReadFile(cfg.CanonicalStorePath)
		require.NoError(t, err)
		return data
	}

	assert.Equal(t, run(), run())
}

func TestRunner_CleanOnly(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, 1, 0)
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.RawStorePath), 0755))
	content := testutil.RawStore(testutil.MissingQuantityRow, testutil.ReversedDatesRow, testutil.InvalidDateRow, testutil.UnnormalizedIDRow)
	require.NoError(t, os.WriteFile(cfg.RawStorePath, []byte(content), 0644))

	logger, _ := testutil.NewTestLogger(t)
	report, err := NewRunner(cfg, WithLogger(logger)).Run(context.Background(), ModeClean)
	require.NoError(t, err)

	require.Len(t, report.Steps, 1)
	assert.Equal(t, StepClean, report.Steps[0].Name)
	assert.Nil(t, report.Step(StepGenerate))

	assert.Equal(t, domain.CleaningSummary{
		InputCount:        4,
		OutputCount:       2,
		DroppedCount:      2,
		DropsByReason:     map[string]int{"LOGICAL_ORDER": 1, "DATE_PARSE": 1},
		TotalWeightedArea: 34.88,
		Materials:         []string{"Steel"},
	}, *report.Summary)

	doc, err := exporter.ReadCanonical(cfg.CanonicalStorePath)
	require.NoError(t, err)
	require.Len(t, doc.Items, 2)
	assert.Equal(t, "ZONE1-METRO-PIER-CAP-0001", doc.Items[0].ElementID)
	assert.Equal(t, "ZONE4-BRIDGE-GIRDER-0004", doc.Items[1].ElementID)
}

func TestRunner_GenerateOnly(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, 50, 3)
	logger, _ := testutil.NewTestLogger(t)

	report, err := NewRunner(cfg, WithLogger(logger)).Run(context.Background(), ModeGenerate)
	require.NoError(t, err)

	assert.Equal(t, domain.RunStatusCompleted, report.Status)
	assert.Nil(t, report.Summary)
	assert.Empty(t, report.CanonicalStorePath)
	assert.Equal(t, 50, report.Step(StepGenerate).Records)
	assert.FileExists(t, cfg.RawStorePath)
	assert.NoFileExists(t, cfg.CanonicalStorePath)
}

func TestRunner_MissingRawStore(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, 10, 0)
	cfg.SummaryPath = filepath.Join(dir, config.SummaryFileName)
	logger, handler := testutil.NewTestLogger(t)

	report, err := NewRunner(cfg, WithLogger(logger)).Run(context.Background(), ModeClean)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInputMissing)

	require.NotNil(t, report)
	assert.Equal(t, domain.RunStatusFailed, report.Status)
	step := report.Step(StepClean)
	require.NotNil(t, step)
	assert.Equal(t, domain.StepStatusFailed, step.Status)
	assert.Equal(t, string(apperrors.ErrTypeInputMissing), step.ErrorType)
	assert.Nil(t, report.Summary)

	assert.NoFileExists(t, cfg.CanonicalStorePath)
	assert.FileExists(t, cfg.SummaryPath, "failed runs still write their report")
	assert.NotEmpty(t, handler.FindByMessage("Step failed"))
}

func TestRunner_FailedStepSkipsTheRest(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, 10, 1)
	cfg.BaseDate = "2026-02-30"
	logger, _ := testutil.NewTestLogger(t)

	report, err := NewRunner(cfg, WithLogger(logger)).Run(context.Background(), ModeAll)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeConfig, apperrors.TypeOf(err))

	assert.Equal(t, domain.StepStatusFailed, report.Step(StepGenerate).Status)
	assert.Equal(t, domain.StepStatusSkipped, report.Step(StepClean).Status)
	assert.Nil(t, report.Step(StepClean).StartedAt)
	assert.NoFileExists(t, cfg.RawStorePath)
}

func TestRunner_CancelledContext(t *testing.T) {
	cfg := testConfig(t.TempDir(), 10, 1)
	logger, _ := testutil.NewTestLogger(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewRunner(cfg, WithLogger(logger)).Run(ctx, ModeAll)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.RunStatusFailed, report.Status)
	assert.Equal(t, domain.StepStatusFailed, report.Step(StepGenerate).Status)
	assert.Equal(t, domain.StepStatusSkipped, report.Step(StepClean).Status)
}

func TestRunner_RejectsCollidingPaths(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, 10, 1)
	cfg.XLSXPath = cfg.CanonicalStorePath

	report, err := NewRunner(cfg).Run(context.Background(), ModeAll)
	assert.Nil(t, report)
	assert.Equal(t, apperrors.ErrTypeConfig, apperrors.TypeOf(err))
	assert.NoFileExists(t, cfg.RawStorePath, "nothing runs on a bad configuration")
}

func TestRunner_RelativePathsResolveAgainstBase(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default().Pipeline
	cfg.RecordCount = 20
	cfg.Seed = 5
	logger, _ := testutil.NewTestLogger(t)

	runner := NewRunner(cfg, WithLogger(logger), WithPaths(config.NewPaths(dir)))
	assert.Equal(t, filepath.Join(dir, config.DefaultRawDir, config.RawStoreFileName), runner.Config().RawStorePath)

	_, err := runner.Run(context.Background(), ModeAll)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, config.DefaultCleanDir, config.CanonicalStoreFileName))
}

func TestRunner_RunIDFromContext(t *testing.T) {
	cfg := testConfig(t.TempDir(), 5, 1)
	logger, _ := testutil.NewTestLogger(t)

	ctx := infrastructure.WithRunID(context.Background(), "run-123")
	report, err := NewRunner(cfg, WithLogger(logger)).Run(ctx, ModeGenerate)
	require.NoError(t, err)
	assert.Equal(t, "run-123", report.RunID)
}

func TestRunner_ConcurrentConfigs(t *testing.T) {
	rows := []int{100, 250, 400, 75}
	reports := make([]*domain.RunReport, len(rows))
	runners := make([]*Runner, len(rows))
	for i, n := range rows {
		logger, _ := testutil.NewTestLogger(t)
		runners[i] = NewRunner(testConfig(t.TempDir(), n, int64(i+1)),
			WithLogger(logger), WithTelemetry(newTestTelemetry(t)))
	}

	g, ctx := errgroup.WithContext(context.Background())
	for i, runner := range runners {
		g.Go(func() error {
			report, err := runner.Run(ctx, ModeAll)
			if err != nil {
				return fmt.Errorf("config %d: %w", i, err)
			}
			reports[i] = report
			return nil
		})
	}
	require.NoError(t, g.Wait())

	seen := make(map[string]bool)
	for i, report := range reports {
		assert.Equal(t, rows[i], report.Summary.InputCount)
		assert.False(t, seen[report.RunID], "run ids are unique")
		seen[report.RunID] = true

		doc, err := exporter.ReadCanonical(runners[i].Config().CanonicalStorePath)
		require.NoError(t, err)
		assert.Len(t, doc.Items, report.Summary.OutputCount)
	}
}

func TestRunner_RawStoreNameIsFree(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, 30, 2)
	cfg.RawStorePath = filepath.Join(dir, "raw", "boq_raw.dat")
	logger, _ := testutil.NewTestLogger(t)

	report, err := NewRunner(cfg, WithLogger(logger)).Run(context.Background(), ModeAll)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusCompleted, report.Status)
	assert.Equal(t, 30, report.Summary.InputCount)
}
