package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/config"
	apperrors "github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/errors"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/exporter"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/files"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/generator"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/infrastructure"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/validation"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/pkg/contracts/domain"
)

// Mode selects which steps a run executes
type Mode string

const (
	ModeAll      Mode = "all"
	ModeGenerate Mode = "generate"
	ModeClean    Mode = "clean"
)

// ParseMode parses a -step value
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeAll, ModeGenerate, ModeClean:
		return m, nil
	case "":
		return ModeAll, nil
	default:
		return "", apperrors.NewConfigError(fmt.Sprintf("unknown step %q, want all, generate or clean", s), nil)
	}
}

// Option configures a Runner
type Option func(*Runner)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithTelemetry sets the tracer and metrics used by the run
func WithTelemetry(t *infrastructure.Telemetry) Option {
	return func(r *Runner) { r.telemetry = t }
}

// WithSource replaces the generator's random source. By default the
// source is derived from the configured seed.
func WithSource(source generator.Source) Option {
	return func(r *Runner) { r.source = source }
}

// WithPaths resolves relative configuration paths against paths.BaseDir
func WithPaths(paths *config.Paths) Option {
	return func(r *Runner) { r.paths = paths }
}

// Runner executes the generate and clean steps for one configuration
type Runner struct {
	cfg       config.PipelineConfig
	paths     *config.Paths
	source    generator.Source
	telemetry *infrastructure.Telemetry
	base      *slog.Logger
	logger    *slog.Logger

	writer    *exporter.Writer
	validator *validation.FileValidator
}

// NewRunner creates a runner for cfg. The configuration is copied; later
// changes to the caller's value do not affect the runner.
func NewRunner(cfg config.PipelineConfig, opts ...Option) *Runner {
	r := &Runner{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}

	if r.paths == nil {
		r.paths = config.NewPaths("")
	}
	r.cfg = r.cfg.ResolvePaths(r.paths)
	if r.source == nil {
		r.source = generator.SourceFor(r.cfg.Seed)
	}

	r.base = r.logger
	if r.base == nil {
		r.base = infrastructure.GetLogger()
	}
	r.logger = infrastructure.WithComponent(r.base, "pipeline")
	r.writer = exporter.NewWriter(files.NewManager(r.paths, r.base), r.base)
	r.validator = validation.NewFileValidator(r.base)
	return r
}

// Config returns the resolved configuration the runner executes
func (r *Runner) Config() config.PipelineConfig {
	return r.cfg
}

// Run executes the steps selected by mode in order. A failed step marks
// the remaining steps as skipped. The report is returned even when the run
// fails; the error is nil only for a completed run.
func (r *Runner) Run(ctx context.Context, mode Mode) (*domain.RunReport, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	runID := infrastructure.GetRunID(ctx)

	ctx, span := r.telemetry.StartSpan(ctx, "pipeline.run",
		attribute.String("run.id", runID),
		attribute.String("run.mode", string(mode)))
	defer span.End()

	steps, err := r.steps(mode)
	if err != nil {
		return nil, err
	}
	if err := r.validator.ValidateDistinct(
		r.cfg.RawStorePath,
		r.cfg.CanonicalStorePath,
		r.cfg.XLSXPath,
		r.cfg.SummaryPath,
		r.cfg.MetricsPath,
	); err != nil {
		return nil, err
	}

	report := &domain.RunReport{
		RunID:        runID,
		Status:       domain.RunStatusRunning,
		StartedAt:    time.Now(),
		RawStorePath: r.cfg.RawStorePath,
	}

	r.logger.InfoContext(ctx, "Pipeline run starting",
		slog.String("run_id", runID),
		slog.String("mode", string(mode)),
		slog.Int("steps", len(steps)))

	run := &RunState{RunID: runID, Config: r.cfg}
	states := make([]*StepState, len(steps))
	var runErr error

	for i, step := range steps {
		states[i] = NewStepState(step.Name())
		if runErr != nil {
			states[i].Skip()
			continue
		}
		runErr = r.executeStep(ctx, step, states[i], run)
	}

	for _, st := range states {
		report.Steps = append(report.Steps, st.Report())
	}
	if run.Cleaning != nil {
		summary := run.Cleaning.Summary
		report.Summary = &summary
		report.CanonicalStorePath = r.cfg.CanonicalStorePath
	}

	now := time.Now()
	report.CompletedAt = &now
	report.Status = domain.RunStatusCompleted
	if runErr != nil {
		report.Status = domain.RunStatusFailed
		infrastructure.RecordError(ctx, runErr)
	}

	r.telemetry.PipelineMetrics().RecordRun(ctx, string(report.Status))

	if err := r.writeOutputs(ctx, report); err != nil {
		runErr = errors.Join(runErr, err)
	}

	r.logger.InfoContext(ctx, "Pipeline run finished",
		slog.String("run_id", runID),
		slog.String("status", string(report.Status)),
		slog.Int64("duration_ms", now.Sub(report.StartedAt).Milliseconds()))

	return report, runErr
}

func (r *Runner) steps(mode Mode) ([]Step, error) {
	generate := &GenerateStep{
		source:    r.source,
		writer:    r.writer,
		validator: r.validator,
		telemetry: r.telemetry,
		logger:    r.base,
	}
	clean := &CleanStep{
		writer:    r.writer,
		validator: r.validator,
		telemetry: r.telemetry,
		logger:    r.base,
	}

	switch mode {
	case ModeAll, "":
		return []Step{generate, clean}, nil
	case ModeGenerate:
		return []Step{generate}, nil
	case ModeClean:
		return []Step{clean}, nil
	default:
		_, err := ParseMode(string(mode))
		return nil, err
	}
}

func (r *Runner) executeStep(ctx context.Context, step Step, st *StepState, run *RunState) error {
	name := step.Name()

	ctx, span := r.telemetry.StartSpan(ctx, "step."+name)
	defer span.End()

	st.Start()
	r.logger.InfoContext(ctx, "Step starting", slog.String("step", name))

	err := ctx.Err()
	var records int
	if err == nil {
		records, err = step.Execute(ctx, run)
	}

	if err != nil {
		st.Fail(err)
		infrastructure.RecordError(ctx, err)
		r.telemetry.PipelineMetrics().RecordStep(ctx, name, st.Duration(), false)

		r.logger.ErrorContext(ctx, "Step failed",
			slog.String("step", name),
			slog.String("error", err.Error()),
			slog.String("error_type", string(apperrors.TypeOf(err))),
			slog.Int64("duration_ms", st.Duration().Milliseconds()))
		return fmt.Errorf("step %s: %w", name, err)
	}

	st.Complete(records)
	span.SetAttributes(attribute.Int("records", records))
	r.telemetry.PipelineMetrics().RecordStep(ctx, name, st.Duration(), true)

	r.logger.InfoContext(ctx, "Step completed",
		slog.String("step", name),
		slog.Int("records", records),
		slog.Int64("duration_ms", st.Duration().Milliseconds()))
	return nil
}

// writeOutputs writes the optional run report and metrics textfile
func (r *Runner) writeOutputs(ctx context.Context, report *domain.RunReport) error {
	var errs []error

	if path := r.cfg.SummaryPath; path != "" {
		if err := r.writer.WriteRunReport(ctx, path, *report); err != nil {
			errs = append(errs, err)
		}
	}

	if path := r.cfg.MetricsPath; path != "" {
		if r.telemetry == nil {
			r.logger.WarnContext(ctx, "Metrics path set without telemetry, skipping",
				slog.String("path", path))
		} else if err := r.telemetry.WriteMetrics(path); err != nil {
			errs = append(errs, apperrors.NewStorageError("failed to write metrics", err).
				WithContext("path", path))
		}
	}

	return errors.Join(errs...)
}
