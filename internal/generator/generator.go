package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/errors"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/infrastructure"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/pkg/contracts/domain"
)

// Generation parameters
const (
	ChainProbability = 0.4

	// Start offsets in days from the base date, upper bound exclusive
	ChainFallbackOffsets = 30
	IndependentOffsets   = 90

	MinDurationDays = 3
	MaxDurationDays = 14

	ZoneCount = 4
)

var (
	// quantityChoices are drawn uniformly; the zero entry means missing
	quantityChoices = []float64{5, 10, 15, 20, 0}

	// lengthNoise is added to the template length
	lengthNoise = []float64{0.001, -0.002, 0}
)

// Stats describes the impurities injected into one generated batch
type Stats struct {
	Count           int `json:"count"`
	MissingQuantity int `json:"missing_quantity"`
	Chained         int `json:"chained"`
	ChainFallbacks  int `json:"chain_fallbacks"`
	NoisyLength     int `json:"noisy_length"`
}

// MissingRate is the share of records without a quantity
func (s Stats) MissingRate() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.MissingQuantity) / float64(s.Count)
}

// ChainRate is the share of records chained to their predecessor, out of
// the records eligible for chaining
func (s Stats) ChainRate() float64 {
	if s.Count < 2 {
		return 0
	}
	return float64(s.Chained) / float64(s.Count-1)
}

// Generator produces synthetic raw BoQ records
type Generator struct {
	source  Source
	catalog []domain.ElementTemplate
	logger  *slog.Logger
}

// New creates a generator. A nil source is replaced by an unseeded one and
// an empty catalog by DefaultCatalog.
func New(source Source, catalog []domain.ElementTemplate, logger *slog.Logger) (*Generator, error) {
	if source == nil {
		source = NewUnseededSource()
	}
	if len(catalog) == 0 {
		catalog = DefaultCatalog()
	}
	for _, tmpl := range catalog {
		if err := tmpl.Validate(); err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("invalid element template %q", tmpl.Type), err)
		}
	}

	return &Generator{
		source:  source,
		catalog: append([]domain.ElementTemplate(nil), catalog...),
		logger:  infrastructure.WithComponent(logger, "generator"),
	}, nil
}

// Generate returns exactly count raw records in generation order
func (g *Generator) Generate(ctx context.Context, count int, base domain.Date) ([]domain.RawRecord, error) {
	records, _, err := g.GenerateWithStats(ctx, count, base)
	return records, err
}

// GenerateWithStats is Generate that also reports the injected impurities
func (g *Generator) GenerateWithStats(ctx context.Context, count int, base domain.Date) ([]domain.RawRecord, Stats, error) {
	if count <= 0 {
		return nil, Stats{}, apperrors.NewConfigError(fmt.Sprintf("record count must be positive, got %d", count), nil)
	}
	if base.IsZero() {
		return nil, Stats{}, apperrors.NewConfigError("base date is required", nil)
	}

	g.logger.InfoContext(ctx, "Generating raw BoQ records",
		slog.Int("count", count),
		slog.String("base_date", base.String()))

	records := make([]domain.RawRecord, 0, count)
	stats := Stats{Count: count}

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, Stats{}, err
		}
		records = append(records, g.next(i, records, base, &stats))
	}

	g.logger.InfoContext(ctx, "Generation complete",
		slog.Int("count", stats.Count),
		slog.Int("missing_quantity", stats.MissingQuantity),
		slog.Int("chained", stats.Chained),
		slog.Int("noisy_length", stats.NoisyLength))

	return records, stats, nil
}

// next draws record i; the draw order is template, chaining, start,
// duration, quantity, length noise.
func (g *Generator) next(i int, prior []domain.RawRecord, base domain.Date, stats *Stats) domain.RawRecord {
	tmpl := g.catalog[g.source.Intn(len(g.catalog))]

	var start domain.Date
	var prefix string

	if i > 0 && g.source.Float64() < ChainProbability {
		prev := prior[i-1]
		stats.Chained++

		prevEnd, err := parseOptionalDate(prev.EndDate)
		if err == nil {
			start = prevEnd.AddDays(1)
		} else {
			stats.ChainFallbacks++
			start = base.AddDays(g.source.Intn(ChainFallbackOffsets))
		}
		prefix = chainPrefix(prev.ElementID)
	} else {
		start = base.AddDays(g.source.Intn(IndependentOffsets))
		prefix = fmt.Sprintf("Zone%d-%s", g.source.Intn(ZoneCount)+1, tmpl.Type)
	}

	duration := MinDurationDays + g.source.Intn(MaxDurationDays-MinDurationDays+1)
	end := start.AddDays(duration)

	var quantity *float64
	if q := quantityChoices[g.source.Intn(len(quantityChoices))]; q > 0 {
		quantity = domain.Float64Ptr(q)
	} else {
		stats.MissingQuantity++
	}

	noise := lengthNoise[g.source.Intn(len(lengthNoise))]
	if noise != 0 {
		stats.NoisyLength++
	}

	return domain.RawRecord{
		ElementID: fmt.Sprintf("%s-%04d", prefix, i),
		Material:  tmpl.Material,
		Length:    domain.Float64Ptr(tmpl.Length + noise),
		Width:     domain.Float64Ptr(tmpl.Width),
		Quantity:  quantity,
		StartDate: domain.StringPtr(start.String()),
		EndDate:   domain.StringPtr(end.String()),
	}
}

// chainPrefix strips the final "-<suffix>" from an element id
func chainPrefix(id string) string {
	if idx := strings.LastIndex(id, "-"); idx >= 0 {
		return id[:idx]
	}
	return id
}

func parseOptionalDate(s *string) (domain.Date, error) {
	if s == nil {
		return domain.Date{}, fmt.Errorf("missing date")
	}
	return domain.ParseDate(*s)
}
