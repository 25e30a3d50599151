package dataprocessing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/errors"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/infrastructure"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/pkg/contracts/domain"
)

// Cleaner turns raw records into canonical records through the ordered
// stage list.
type Cleaner struct {
	stages    []Stage
	logger    *slog.Logger
	telemetry *infrastructure.Telemetry
}

// Option configures a Cleaner
type Option func(*Cleaner)

// WithTelemetry records a span per stage in batch mode
func WithTelemetry(t *infrastructure.Telemetry) Option {
	return func(c *Cleaner) {
		c.telemetry = t
	}
}

// NewCleaner creates a cleaner with the standard stages
func NewCleaner(logger *slog.Logger, opts ...Option) *Cleaner {
	c := &Cleaner{
		stages: Stages(),
		logger: infrastructure.WithComponent(logger, "cleaner"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clean runs the batch mode: each stage is applied to every surviving
// record before the next stage starts. Row problems never fail the call;
// an error means an emitted record broke an invariant.
func (c *Cleaner) Clean(ctx context.Context, raw []domain.RawRecord) (*Result, error) {
	c.logger.InfoContext(ctx, "Cleaning raw records", slog.Int("input_count", len(raw)))

	candidates := make([]Candidate, len(raw))
	for i, r := range raw {
		candidates[i] = newCandidate(i, r)
	}

	var drops []Drop
	for _, stage := range c.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stageCtx, span := c.telemetry.StartSpan(ctx, "stage."+stage.Name,
			attribute.Int("records.in", len(candidates)))

		survivors := candidates[:0]
		for _, cand := range candidates {
			next, err := stage.Apply(cand)
			if err != nil {
				drops = append(drops, c.drop(stageCtx, stage.Name, cand, err))
				continue
			}
			survivors = append(survivors, next)
		}
		candidates = survivors

		span.SetAttributes(attribute.Int("records.out", len(candidates)))
		span.End()
	}

	items := make([]domain.CleanRecord, 0, len(candidates))
	for _, cand := range candidates {
		record, err := emit(cand)
		if err != nil {
			return nil, err
		}
		items = append(items, record)
	}

	// Report drops in store order, as the streaming mode does
	sort.SliceStable(drops, func(i, j int) bool { return drops[i].Line < drops[j].Line })

	result := &Result{
		Items:   items,
		Summary: Summarize(len(raw), items, drops),
		Drops:   drops,
	}
	c.logSummary(ctx, result.Summary)
	return result, nil
}

// CleanStream runs every record through all stages before reading the next
// one, handing survivors to emitFn in store order. It never holds more
// than one record.
func (c *Cleaner) CleanStream(ctx context.Context, src RecordSource, emitFn func(domain.CleanRecord) error) (domain.CleaningSummary, []Drop, error) {
	summarizer := NewSummarizer()
	var drops []Drop

	for index := 0; ; index++ {
		if err := ctx.Err(); err != nil {
			return domain.CleaningSummary{}, nil, err
		}

		raw, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.CleaningSummary{}, nil, err
		}
		summarizer.AddInput()

		record, drop, err := c.cleanOne(ctx, newCandidate(index, raw))
		if err != nil {
			return domain.CleaningSummary{}, nil, err
		}
		if drop != nil {
			summarizer.AddDrop(*drop)
			drops = append(drops, *drop)
			continue
		}

		summarizer.AddRecord(record)
		if err := emitFn(record); err != nil {
			return domain.CleaningSummary{}, nil, err
		}
	}

	summary := summarizer.Summary()
	c.logSummary(ctx, summary)
	return summary, drops, nil
}

// CleanFile reads the raw store at path and cleans it in batch mode. A
// missing or unreadable store fails with InputMissing and no result.
func (c *Cleaner) CleanFile(ctx context.Context, path string) (*Result, error) {
	raw, err := ReadRawFile(path)
	if err != nil {
		c.logger.ErrorContext(ctx, "Raw store unavailable",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, err
	}
	return c.Clean(ctx, raw)
}

// cleanOne takes a single candidate through every stage
func (c *Cleaner) cleanOne(ctx context.Context, cand Candidate) (domain.CleanRecord, *Drop, error) {
	for _, stage := range c.stages {
		next, err := stage.Apply(cand)
		if err != nil {
			d := c.drop(ctx, stage.Name, cand, err)
			return domain.CleanRecord{}, &d, nil
		}
		cand = next
	}
	record, err := emit(cand)
	return record, nil, err
}

func (c *Cleaner) drop(ctx context.Context, stage string, cand Candidate, err error) Drop {
	reason := string(apperrors.TypeOf(err))
	if reason == "" {
		reason = string(apperrors.ErrTypeValidation)
	}

	detail := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		detail = appErr.Message
	}

	d := Drop{
		Line:      cand.Line,
		ElementID: cand.ElementID,
		Stage:     stage,
		Reason:    reason,
		Detail:    detail,
	}

	c.logger.DebugContext(ctx, "Record dropped",
		slog.Int("line", d.Line),
		slog.String("element_id", d.ElementID),
		slog.String("stage", d.Stage),
		slog.String("reason", d.Reason),
		slog.String("detail", d.Detail))

	return d
}

func (c *Cleaner) logSummary(ctx context.Context, s domain.CleaningSummary) {
	attrs := []any{
		slog.Int("input_count", s.InputCount),
		slog.Int("output_count", s.OutputCount),
		slog.Int("dropped_count", s.DroppedCount),
		slog.Float64("total_weighted_area", s.TotalWeightedArea),
	}
	for reason, n := range s.DropsByReason {
		attrs = append(attrs, slog.Int("drops."+reason, n))
	}
	c.logger.InfoContext(ctx, "Cleaning complete", attrs...)
}
