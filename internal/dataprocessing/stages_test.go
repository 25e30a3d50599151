package dataprocessing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/errors"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/shared/testutil"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/pkg/contracts/domain"
)

func TestStages_Order(t *testing.T) {
	var names []string
	for _, s := range Stages() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		StageImputeQuantity,
		StageRequireFields,
		StageNormalizeID,
		StageSnapDimensions,
		StageParseDates,
		StageCheckOrder,
		StageDeriveArea,
		StageDeriveDuration,
	}, names)
}

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		in     float64
		places int32
		want   float64
	}{
		{2.45, 1, 2.5},
		{2.35, 1, 2.4},
		{2.44, 1, 2.4},
		{2.4013, 1, 2.4},
		{2.398, 1, 2.4},
		{4.001, 1, 4.0},
		{0.05, 1, 0.1},
		{-2.45, 1, -2.5},
		{1.0005, 3, 1.001},
		{2.88, 3, 2.88},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundHalfUp(tt.in, tt.places), "%v to %d places", tt.in, tt.places)
	}
}

func TestImputeQuantity(t *testing.T) {
	tests := []struct {
		name string
		raw  *float64
		want int
	}{
		{"missing", nil, 1},
		{"whole", domain.Float64Ptr(10), 10},
		{"decimal spelling", domain.Float64Ptr(10.0), 10},
		{"truncated", domain.Float64Ptr(7.9), 7},
		{"zero", domain.Float64Ptr(0), 1},
		{"fraction below one", domain.Float64Ptr(0.9), 1},
		{"negative", domain.Float64Ptr(-4), 1},
		{"nan", domain.Float64Ptr(math.NaN()), 1},
		{"infinite", domain.Float64Ptr(math.Inf(1)), 1},
		{"beyond int32", domain.Float64Ptr(1e12), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := imputeQuantity(Candidate{RawQty: tt.raw})
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Quantity)
		})
	}
}

func TestRequireFields(t *testing.T) {
	full := newCandidate(0, testutil.RawRecord("id", "Steel", 2.4, 1.2, 5, "2026-03-01", "2026-03-02"))

	_, err := requireFields(full)
	assert.NoError(t, err)

	tests := []struct {
		field string
		clear func(*Candidate)
	}{
		{"length", func(c *Candidate) { c.Length = nil }},
		{"width", func(c *Candidate) { c.Width = nil }},
		{"start_date", func(c *Candidate) { c.StartRaw = nil }},
		{"end_date", func(c *Candidate) { c.EndRaw = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			c := full
			tt.clear(&c)
			_, err := requireFields(c)
			require.ErrorIs(t, err, apperrors.ErrRequiredField)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.field, appErr.Context["field"])
		})
	}
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"  zone4-bridge-girder-0004 ", "ZONE4-BRIDGE-GIRDER-0004", false},
		{"ZONE1-A-0001", "ZONE1-A-0001", false},
		{"\tzone1\n", "ZONE1", false},
		{"", "", true},
		{"   ", "", true},
	}
	for _, tt := range tests {
		c, err := normalizeID(Candidate{ElementID: tt.in})
		if tt.wantErr {
			assert.ErrorIs(t, err, apperrors.ErrRequiredField, "%q", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, c.ElementID)
	}
}

func TestSnapDimensions(t *testing.T) {
	tests := []struct {
		name       string
		length     float64
		width      float64
		wantLength float64
		wantWidth  float64
		wantErr    bool
	}{
		{"noise removed", 2.4013, 1.2, 2.4, 1.2, false},
		{"negative noise", 2.398, 0.6, 2.4, 0.6, false},
		{"tie rounds up", 2.45, 2.35, 2.5, 2.4, false},
		{"rounds to zero", 0.04, 1.2, 0, 0, true},
		{"negative", 2.4, -1.2, 0, 0, true},
		{"nan", math.NaN(), 1.2, 0, 0, true},
		{"infinite width", 2.4, math.Inf(-1), 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			length, width := tt.length, tt.width
			c, err := snapDimensions(Candidate{Length: &length, Width: &width})
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrDimension)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLength, *c.Length)
			assert.Equal(t, tt.wantWidth, *c.Width)
			assert.Equal(t, tt.length, length, "input pointer is not mutated")
		})
	}
}

func TestParseDates(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		wantField string
	}{
		{"valid", "2026-03-01", "2026-03-05", ""},
		{"trimmed", " 2026-03-01 ", "\t2026-03-05", ""},
		{"impossible month", "2026-13-40", "2026-03-05", "start_date"},
		{"impossible day", "2026-03-01", "2026-02-30", "end_date"},
		{"wrong layout", "01/03/2026", "2026-03-05", "start_date"},
		{"datetime", "2026-03-01T00:00:00Z", "2026-03-05", "start_date"},
		{"blank after trim", "2026-03-01", "   ", "end_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.start, tt.end
			c, err := parseDates(Candidate{StartRaw: &start, EndRaw: &end})
			if tt.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, domain.NewDate(2026, time.March, 1), c.Start)
				assert.Equal(t, domain.NewDate(2026, time.March, 5), c.End)
				return
			}
			require.ErrorIs(t, err, apperrors.ErrDateParse)
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantField, appErr.Context["field"])
		})
	}
}

func TestCheckOrderAndDuration(t *testing.T) {
	day := func(d int) domain.Date { return domain.NewDate(2026, time.March, d) }

	_, err := checkOrder(Candidate{Start: day(10), End: day(1)})
	assert.ErrorIs(t, err, apperrors.ErrLogicalOrder)

	c, err := checkOrder(Candidate{Start: day(5), End: day(5)})
	require.NoError(t, err)
	c, err = deriveDuration(c)
	require.NoError(t, err)
	assert.Zero(t, c.DurationDays)

	c, err = deriveDuration(Candidate{Start: day(1), End: day(15)})
	require.NoError(t, err)
	assert.Equal(t, 14, c.DurationDays)

	// Crossing a month boundary
	c, err = deriveDuration(Candidate{Start: domain.NewDate(2026, time.February, 26), End: day(2)})
	require.NoError(t, err)
	assert.Equal(t, 4, c.DurationDays)

	// Centuries apart
	c, err = deriveDuration(Candidate{Start: domain.NewDate(1600, time.January, 1), End: domain.NewDate(2026, time.January, 1)})
	require.NoError(t, err)
	assert.Equal(t, 155594, c.DurationDays)
}

func TestDeriveArea(t *testing.T) {
	tests := []struct {
		length, width float64
		want          float64
	}{
		{2.4, 1.2, 2.88},
		{3.0, 0.6, 1.8},
		{0.1, 0.1, 0.01},
		{4.0, 0.4, 1.6},
		{2.4, 2.4, 5.76},
	}
	for _, tt := range tests {
		length, width := tt.length, tt.width
		c, err := deriveArea(Candidate{Length: &length, Width: &width})
		require.NoError(t, err)
		assert.Equal(t, tt.want, c.AreaSqm, "%v x %v", tt.length, tt.width)
	}
}

func TestDeriveArea_Overflow(t *testing.T) {
	tests := []struct {
		name          string
		length, width float64
		quantity      int
	}{
		{"product overflows", 1e200, 1e200, 1},
		{"weighted by quantity overflows", 1e154, 1e154, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			length, width := tt.length, tt.width
			_, err := deriveArea(Candidate{Length: &length, Width: &width, Quantity: tt.quantity})
			assert.ErrorIs(t, err, apperrors.ErrDimension)
		})
	}

	// Large but representable
	length, width := 1e154, 1e154
	c, err := deriveArea(Candidate{Length: &length, Width: &width, Quantity: 1})
	require.NoError(t, err)
	assert.False(t, math.IsInf(c.AreaSqm, 0))
}
