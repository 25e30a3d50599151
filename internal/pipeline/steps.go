package pipeline

import (
	"context"
	"log/slog"

	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/dataprocessing"
	apperrors "github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/errors"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/exporter"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/generator"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/infrastructure"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/validation"
)

// GenerateStep synthesizes raw records and writes the raw store
type GenerateStep struct {
	source    generator.Source
	writer    *exporter.Writer
	validator *validation.FileValidator
	telemetry *infrastructure.Telemetry
	logger    *slog.Logger
}

// Name implements Step
func (s *GenerateStep) Name() string { return StepGenerate }

// Execute implements Step
func (s *GenerateStep) Execute(ctx context.Context, run *RunState) (int, error) {
	cfg := run.Config

	base, err := cfg.Base()
	if err != nil {
		return 0, apperrors.NewConfigError("invalid base date", err)
	}
	if err := s.validator.ValidateOutputPath(cfg.RawStorePath); err != nil {
		return 0, err
	}

	gen, err := generator.New(s.source, nil, s.logger)
	if err != nil {
		return 0, err
	}

	records, stats, err := gen.GenerateWithStats(ctx, cfg.RecordCount, base)
	if err != nil {
		return 0, err
	}

	if err := s.writer.WriteRawStore(ctx, cfg.RawStorePath, records); err != nil {
		return 0, err
	}

	s.telemetry.PipelineMetrics().RecordGenerated(ctx, len(records))
	s.logger.InfoContext(ctx, "Raw store written",
		slog.String("step", StepGenerate),
		slog.String("path", cfg.RawStorePath),
		slog.Int("records", len(records)),
		slog.Float64("missing_rate", stats.MissingRate()),
		slog.Float64("chain_rate", stats.ChainRate()))

	run.Generated = len(records)
	run.GeneratorStats = stats
	return len(records), nil
}

// CleanStep cleans the raw store, writes the canonical store and verifies
// it against the schema, then writes the optional workbook
type CleanStep struct {
	writer    *exporter.Writer
	validator *validation.FileValidator
	telemetry *infrastructure.Telemetry
	logger    *slog.Logger
}

// Name implements Step
func (s *CleanStep) Name() string { return StepClean }

// Execute implements Step
func (s *CleanStep) Execute(ctx context.Context, run *RunState) (int, error) {
	cfg := run.Config

	if err := s.validator.ValidateRawStore(cfg.RawStorePath); err != nil {
		return 0, err
	}
	for _, out := range []string{cfg.CanonicalStorePath, cfg.XLSXPath} {
		if err := s.validator.ValidateOutputPath(out); err != nil {
			return 0, err
		}
	}

	cleaner := dataprocessing.NewCleaner(s.logger, dataprocessing.WithTelemetry(s.telemetry))
	result, err := cleaner.CleanFile(ctx, cfg.RawStorePath)
	if err != nil {
		return 0, err
	}

	if err := s.writer.WriteCanonical(ctx, cfg.CanonicalStorePath, result.Items); err != nil {
		return 0, err
	}
	if err := exporter.VerifyCanonical(cfg.CanonicalStorePath); err != nil {
		return 0, err
	}

	if cfg.XLSXPath != "" {
		err := s.writer.WriteWorkbook(ctx, cfg.XLSXPath, exporter.WorkbookData{
			Items:   result.Items,
			Summary: result.Summary,
			Drops:   result.Drops,
		})
		if err != nil {
			return 0, err
		}
	}

	s.telemetry.PipelineMetrics().RecordCleaning(ctx, result.Summary)

	run.Cleaning = result
	return len(result.Items), nil
}
