package dataprocessing

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/pkg/contracts/domain"
)

// Summarizer accumulates the statistics of one cleaning pass. Batch and
// streaming cleaning feed it the same events, so both report the same
// summary for the same input.
type Summarizer struct {
	inputs       int
	outputs      int
	drops        map[string]int
	dropped      int
	weighted     decimal.Decimal
	materials    []string
	seenMaterial map[string]bool
}

// NewSummarizer creates an empty summarizer
func NewSummarizer() *Summarizer {
	return &Summarizer{
		drops:        make(map[string]int),
		weighted:     decimal.Zero,
		materials:    []string{},
		seenMaterial: make(map[string]bool),
	}
}

// AddInput counts one raw record
func (s *Summarizer) AddInput() {
	s.inputs++
}

// AddRecord counts one emitted record
func (s *Summarizer) AddRecord(r domain.CleanRecord) {
	s.outputs++
	s.weighted = s.weighted.Add(decimal.NewFromFloat(r.AreaSqm).Mul(decimal.NewFromInt(int64(r.Quantity))))
	if !s.seenMaterial[r.Material] {
		s.seenMaterial[r.Material] = true
		s.materials = append(s.materials, r.Material)
	}
}

// AddDrop counts one excluded record under its reason
func (s *Summarizer) AddDrop(d Drop) {
	s.dropped++
	s.drops[d.Reason]++
}

// Summary returns a snapshot of the statistics
func (s *Summarizer) Summary() domain.CleaningSummary {
	drops := make(map[string]int, len(s.drops))
	for reason, n := range s.drops {
		drops[reason] = n
	}

	return domain.CleaningSummary{
		InputCount:        s.inputs,
		OutputCount:       s.outputs,
		DroppedCount:      s.dropped,
		DropsByReason:     drops,
		TotalWeightedArea: boundedFloat(s.weighted),
		Materials:         append([]string{}, s.materials...),
	}
}

// Summarize computes the summary of an already cleaned batch
func Summarize(inputCount int, items []domain.CleanRecord, drops []Drop) domain.CleaningSummary {
	s := NewSummarizer()
	s.inputs = inputCount
	for _, item := range items {
		s.AddRecord(item)
	}
	for _, d := range drops {
		s.AddDrop(d)
	}
	return s.Summary()
}

// boundedFloat converts d to float64, saturating at the largest finite
// value so the summary always encodes as JSON
func boundedFloat(d decimal.Decimal) float64 {
	f := d.InexactFloat64()
	switch {
	case math.IsInf(f, 1):
		return math.MaxFloat64
	case math.IsInf(f, -1):
		return -math.MaxFloat64
	}
	return f
}
