// Command boqpipeline generates a synthetic BoQ raw store and cleans it
// into the canonical store consumed by the kit optimizer.
//
// Usage:
//
//	boqpipeline [-step all|generate|clean] [-rows N] [-base-date YYYY-MM-DD]
//	            [-raw PATH] [-out PATH] [-xlsx PATH] [-summary PATH]
//	            [-metrics PATH] [-seed N]
//
// Flags override the configuration loaded from config.yaml, .env and
// BOQ_* environment variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/config"
	apperrors "github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/errors"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/exporter"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/infrastructure"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/pipeline"
)

// Exit codes
const (
	exitOK           = 0
	exitFailure      = 1
	exitInputMissing = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// options holds the parsed command line
type options struct {
	step     string
	rows     int
	baseDate string
	raw      string
	out      string
	xlsx     string
	summary  string
	metrics  string
	seed     int64
}

func parseFlags(args []string, stderr io.Writer) (options, map[string]bool, error) {
	var opts options
	fs := flag.NewFlagSet("boqpipeline", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.step, "step", string(pipeline.ModeAll), "steps to run: all, generate or clean")
	fs.IntVar(&opts.rows, "rows", config.DefaultRecordCount, "number of raw records to generate")
	fs.StringVar(&opts.baseDate, "base-date", config.DefaultBaseDate, "first start date of generated records (YYYY-MM-DD)")
	fs.StringVar(&opts.raw, "raw", "", "raw store path (CSV)")
	fs.StringVar(&opts.out, "out", "", "canonical store path (JSON)")
	fs.StringVar(&opts.xlsx, "xlsx", "", "optional BoQ workbook path")
	fs.StringVar(&opts.summary, "summary", "", "optional run report path (JSON)")
	fs.StringVar(&opts.metrics, "metrics", "", "optional Prometheus textfile path")
	fs.Int64Var(&opts.seed, "seed", 0, "random seed for generation, 0 for unseeded")

	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}
	if fs.NArg() > 0 {
		return opts, nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return opts, set, nil
}

// applyFlags overrides cfg with the flags given on the command line
func applyFlags(cfg *config.Config, opts options, set map[string]bool) {
	p := &cfg.Pipeline
	if set["rows"] {
		p.RecordCount = opts.rows
	}
	if set["base-date"] {
		p.BaseDate = opts.baseDate
	}
	if set["raw"] {
		p.RawStorePath = opts.raw
	}
	if set["out"] {
		p.CanonicalStorePath = opts.out
	}
	if set["xlsx"] {
		p.XLSXPath = opts.xlsx
	}
	if set["summary"] {
		p.SummaryPath = opts.summary
	}
	if set["metrics"] {
		p.MetricsPath = opts.metrics
	}
	if set["seed"] {
		p.Seed = opts.seed
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, set, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "boqpipeline: %v\n", err)
		return exitFailure
	}

	mode, err := pipeline.ParseMode(opts.step)
	if err != nil {
		fmt.Fprintf(stderr, "boqpipeline: %v\n", err)
		return exitFailure
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "boqpipeline: %v\n", err)
		return exitFailure
	}
	applyFlags(cfg, opts, set)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "boqpipeline: invalid configuration: %v\n", err)
		return exitFailure
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "boqpipeline: failed to initialize logger: %v\n", err)
		return exitFailure
	}
	defer infrastructure.CloseLogFile()

	telemetry, err := infrastructure.InitializeTelemetry(cfg.Telemetry, stderr, logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		return exitFailure
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	paths, err := config.GetPaths()
	if err != nil {
		logger.Error("Failed to resolve paths", slog.String("error", err.Error()))
		return exitFailure
	}
	paths.LogPathResolution(logger)

	runner := pipeline.NewRunner(cfg.Pipeline,
		pipeline.WithLogger(logger),
		pipeline.WithTelemetry(telemetry),
		pipeline.WithPaths(paths))

	report, runErr := runner.Run(ctx, mode)
	if report != nil {
		if err := exporter.RenderSummary(stdout, *report); err != nil {
			logger.Warn("Failed to print summary", slog.String("error", err.Error()))
		}
	}

	if runErr != nil {
		logger.ErrorContext(ctx, "Pipeline failed",
			slog.String("error", runErr.Error()),
			slog.String("error_type", string(apperrors.TypeOf(runErr))))
		return exitCode(runErr)
	}
	return exitOK
}

// exitCode maps a fatal error to the process exit status
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, apperrors.ErrInputMissing):
		return exitInputMissing
	default:
		return exitFailure
	}
}
