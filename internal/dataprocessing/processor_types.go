package dataprocessing

import (
	"context"

	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/pkg/contracts/domain"
)

// Candidate is a raw record on its way through the stages. Each stage fills
// in the fields it derives; the raw pointers are kept for the ones after it.
type Candidate struct {
	// Line is the record's line in the raw store, counting the header as 1
	Line int

	ElementID string
	Material  string
	Length    *float64
	Width     *float64
	StartRaw  *string
	EndRaw    *string
	RawQty    *float64

	Quantity     int
	Start        domain.Date
	End          domain.Date
	AreaSqm      float64
	DurationDays int
}

// Stage is one pure per-record step of the cleaning pipeline. A non-nil
// error excludes the record; the error's type is the drop reason.
type Stage struct {
	Name  string
	Apply func(Candidate) (Candidate, error)
}

// Drop describes one record excluded by a stage
type Drop struct {
	Line      int    `json:"line"`
	ElementID string `json:"element_id"`
	Stage     string `json:"stage"`
	Reason    string `json:"reason"`
	Detail    string `json:"detail"`
}

// Result is the outcome of one cleaning pass
type Result struct {
	Items   []domain.CleanRecord
	Summary domain.CleaningSummary
	Drops   []Drop
}

// RecordSource yields raw records in store order and io.EOF when exhausted
type RecordSource interface {
	Next() (domain.RawRecord, error)
}

// Processor defines the cleaning contract
type Processor interface {
	Clean(ctx context.Context, raw []domain.RawRecord) (*Result, error)
	CleanFile(ctx context.Context, path string) (*Result, error)
}

var _ Processor = (*Cleaner)(nil)

// newCandidate starts a candidate from the raw record at ordinal index
func newCandidate(index int, r domain.RawRecord) Candidate {
	return Candidate{
		Line:      index + 2,
		ElementID: r.ElementID,
		Material:  r.Material,
		Length:    r.Length,
		Width:     r.Width,
		StartRaw:  r.StartDate,
		EndRaw:    r.EndDate,
		RawQty:    r.Quantity,
	}
}
