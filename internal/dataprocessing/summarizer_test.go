package dataprocessing

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/pkg/contracts/domain"
)

func TestSummarizer(t *testing.T) {
	s := NewSummarizer()

	empty := s.Summary()
	assert.Zero(t, empty.InputCount)
	assert.Equal(t, []string{}, empty.Materials)
	assert.Equal(t, map[string]int{}, empty.DropsByReason)

	for i := 0; i < 5; i++ {
		s.AddInput()
	}
	s.AddRecord(domain.CleanRecord{Material: "Plywood", AreaSqm: 3.24, Quantity: 5})
	s.AddRecord(domain.CleanRecord{Material: "Steel", AreaSqm: 2.88, Quantity: 1})
	s.AddRecord(domain.CleanRecord{Material: "Plywood", AreaSqm: 0.1, Quantity: 3})
	s.AddDrop(Drop{Reason: "DATE_PARSE"})
	s.AddDrop(Drop{Reason: "DATE_PARSE"})

	got := s.Summary()
	assert.Equal(t, 5, got.InputCount)
	assert.Equal(t, 3, got.OutputCount)
	assert.Equal(t, 2, got.DroppedCount)
	assert.Equal(t, map[string]int{"DATE_PARSE": 2}, got.DropsByReason)
	assert.Equal(t, []string{"Plywood", "Steel"}, got.Materials, "first appearance order")

	// Decimal accumulation keeps the sum exact to the printed digits
	assert.Equal(t, 19.38, got.TotalWeightedArea)

	// Snapshots are not affected by later events
	got.Materials[0] = "changed"
	got.DropsByReason["DATE_PARSE"] = 99
	s.AddRecord(domain.CleanRecord{Material: "Aluform", AreaSqm: 1, Quantity: 1})

	again := s.Summary()
	assert.Equal(t, []string{"Plywood", "Steel", "Aluform"}, again.Materials)
	assert.Equal(t, 2, again.DropsByReason["DATE_PARSE"])
}

func TestSummarize(t *testing.T) {
	items := []domain.CleanRecord{
		{Material: "Steel", AreaSqm: 2.88, Quantity: 1},
		{Material: "Steel", AreaSqm: 1.6, Quantity: 20},
	}
	drops := []Drop{{Reason: "LOGICAL_ORDER"}, {Reason: "DATE_PARSE"}}

	got := Summarize(4, items, drops)
	assert.Equal(t, domain.CleaningSummary{
		InputCount:        4,
		OutputCount:       2,
		DroppedCount:      2,
		DropsByReason:     map[string]int{"LOGICAL_ORDER": 1, "DATE_PARSE": 1},
		TotalWeightedArea: 34.88,
		Materials:         []string{"Steel"},
	}, got)
}

func TestSummarizer_TotalStaysFinite(t *testing.T) {
	s := NewSummarizer()
	s.AddRecord(domain.CleanRecord{Material: "Steel", AreaSqm: math.MaxFloat64 / 2, Quantity: 2})
	s.AddRecord(domain.CleanRecord{Material: "Steel", AreaSqm: math.MaxFloat64 / 2, Quantity: 2})

	got := s.Summary()
	assert.Equal(t, math.MaxFloat64, got.TotalWeightedArea)

	_, err := json.Marshal(got)
	assert.NoError(t, err)
}
