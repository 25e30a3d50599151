package dataprocessing

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/errors"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/pkg/contracts/domain"
)

// Stage names, in pipeline order
const (
	StageImputeQuantity = "impute-quantity"
	StageRequireFields  = "require-fields"
	StageNormalizeID    = "normalize-id"
	StageSnapDimensions = "snap-dimensions"
	StageParseDates     = "parse-dates"
	StageCheckOrder     = "check-order"
	StageDeriveArea     = "derive-area"
	StageDeriveDuration = "derive-duration"
	StageEmit           = "emit"
)

const (
	// DimensionPlaces is the snapping precision for length and width
	DimensionPlaces = 1
	// AreaPlaces is the rounding precision for area_sqm
	AreaPlaces = 3

	// DefaultQuantity replaces missing or unusable quantities
	DefaultQuantity = 1
	maxQuantity     = math.MaxInt32
)

// Stages returns the ordered stage list. Emission follows the last stage.
func Stages() []Stage {
	return []Stage{
		{Name: StageImputeQuantity, Apply: imputeQuantity},
		{Name: StageRequireFields, Apply: requireFields},
		{Name: StageNormalizeID, Apply: normalizeID},
		{Name: StageSnapDimensions, Apply: snapDimensions},
		{Name: StageParseDates, Apply: parseDates},
		{Name: StageCheckOrder, Apply: checkOrder},
		{Name: StageDeriveArea, Apply: deriveArea},
		{Name: StageDeriveDuration, Apply: deriveDuration},
	}
}

// imputeQuantity truncates the quantity toward zero. Missing, non-finite,
// out-of-range and sub-unit values become DefaultQuantity.
func imputeQuantity(c Candidate) (Candidate, error) {
	c.Quantity = DefaultQuantity
	if c.RawQty == nil || !isFinite(*c.RawQty) {
		return c, nil
	}
	q := math.Trunc(*c.RawQty)
	if q >= DefaultQuantity && q <= maxQuantity {
		c.Quantity = int(q)
	}
	return c, nil
}

func requireFields(c Candidate) (Candidate, error) {
	switch {
	case c.Length == nil:
		return c, apperrors.NewRequiredFieldError("length")
	case c.Width == nil:
		return c, apperrors.NewRequiredFieldError("width")
	case c.StartRaw == nil:
		return c, apperrors.NewRequiredFieldError("start_date")
	case c.EndRaw == nil:
		return c, apperrors.NewRequiredFieldError("end_date")
	}
	return c, nil
}

func normalizeID(c Candidate) (Candidate, error) {
	c.ElementID = strings.ToUpper(strings.TrimSpace(c.ElementID))
	if c.ElementID == "" {
		return c, apperrors.NewRequiredFieldError("element_id")
	}
	return c, nil
}

func snapDimensions(c Candidate) (Candidate, error) {
	length, err := snap("length", *c.Length)
	if err != nil {
		return c, err
	}
	width, err := snap("width", *c.Width)
	if err != nil {
		return c, err
	}
	c.Length = &length
	c.Width = &width
	return c, nil
}

// snap rounds v half-up to DimensionPlaces on its shortest decimal spelling,
// so 2.45 becomes 2.5 even though the float64 nearest 2.45 is below it.
func snap(field string, v float64) (float64, error) {
	if !isFinite(v) {
		return 0, apperrors.NewDimensionError(field, v)
	}
	snapped := RoundHalfUp(v, DimensionPlaces)
	if snapped <= 0 {
		return 0, apperrors.NewDimensionError(field, v)
	}
	return snapped, nil
}

func parseDates(c Candidate) (Candidate, error) {
	start, err := parseDateField("start_date", *c.StartRaw)
	if err != nil {
		return c, err
	}
	end, err := parseDateField("end_date", *c.EndRaw)
	if err != nil {
		return c, err
	}
	c.Start = start
	c.End = end
	return c, nil
}

func parseDateField(field, raw string) (domain.Date, error) {
	value := strings.TrimSpace(raw)
	d, err := domain.ParseDate(value)
	if err != nil {
		return domain.Date{}, apperrors.NewDateParseError(field, value, err)
	}
	return d, nil
}

func checkOrder(c Candidate) (Candidate, error) {
	if c.End.Before(c.Start.Time) {
		return c, apperrors.NewLogicalOrderError(c.Start.String(), c.End.String())
	}
	return c, nil
}

// deriveArea multiplies the snapped dimensions. Finite dimensions can still
// overflow float64 when multiplied, alone or weighted by the quantity; such
// a record is dropped rather than emitted with an infinite area.
func deriveArea(c Candidate) (Candidate, error) {
	area := decimal.NewFromFloat(*c.Length).Mul(decimal.NewFromFloat(*c.Width)).Round(AreaPlaces)
	areaSqm := area.InexactFloat64()
	if !isFinite(areaSqm) || areaSqm <= 0 {
		return c, apperrors.NewDimensionError("area_sqm", areaSqm)
	}
	if !isFinite(area.Mul(decimal.NewFromInt(int64(c.Quantity))).InexactFloat64()) {
		return c, apperrors.NewDimensionError("area_sqm", areaSqm).
			WithContext("quantity", c.Quantity)
	}
	c.AreaSqm = areaSqm
	return c, nil
}

func deriveDuration(c Candidate) (Candidate, error) {
	c.DurationDays = domain.DaysBetween(c.Start, c.End)
	return c, nil
}

// emit builds the canonical record and re-checks its invariants. A failure
// here is a defect in the stages, not a property of the input.
func emit(c Candidate) (domain.CleanRecord, error) {
	record := domain.CleanRecord{
		ElementID:    c.ElementID,
		Material:     c.Material,
		Length:       *c.Length,
		Width:        *c.Width,
		AreaSqm:      c.AreaSqm,
		Quantity:     c.Quantity,
		StartDate:    c.Start,
		EndDate:      c.End,
		DurationDays: c.DurationDays,
	}
	if err := record.Validate(); err != nil {
		return domain.CleanRecord{}, apperrors.NewAppValidationError("emitted record violates invariants", err).
			WithContext("line", c.Line)
	}
	return record, nil
}

// RoundHalfUp rounds v to places decimals, halves away from zero, working
// on the shortest decimal representation of v. v must be finite.
func RoundHalfUp(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
