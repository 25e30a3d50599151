package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/pkg/contracts/domain"
)

// RawHeader is the raw store header row
const RawHeader = "element_id,material,length,width,quantity,start_date,end_date"

// Raw store rows, one per documented cleaning outcome
const (
	// Missing quantity and length noise; cleans to quantity 1, area 2.88, 4 days
	MissingQuantityRow = "Zone1-Metro-Pier-Cap-0001,Steel,2.4013,1.2,,2026-03-01,2026-03-05"
	// End before start; dropped for logical order
	ReversedDatesRow = "Zone2-Tower-Column-0002,Aluform,3.0,0.6,10,2026-03-10,2026-03-01"
	// Impossible calendar date; dropped for date parse
	InvalidDateRow = "Zone3-Podium-Slab-0003,Plywood,1.8,1.8,5,2026-13-40,2026-03-05"
	// Untrimmed lowercase id; normalized on output
	UnnormalizedIDRow = "  zone4-bridge-girder-0004 ,Steel,4.001,0.4,20,2026-04-01,2026-04-04"
)

// RawStore joins rows under the raw header with a trailing newline
func RawStore(rows ...string) string {
	return RawHeader + "\n" + strings.Join(rows, "\n") + "\n"
}

// WriteRawStore writes content to a fresh raw store file and returns its path
func WriteRawStore(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "BoQ_Dataset_Raw.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write raw store: %v", err)
	}
	return path
}

// RawRecord builds a fully populated raw record; callers nil out fields to
// inject impurities.
func RawRecord(id, material string, length, width, quantity float64, start, end string) domain.RawRecord {
	return domain.RawRecord{
		ElementID: id,
		Material:  material,
		Length:    domain.Float64Ptr(length),
		Width:     domain.Float64Ptr(width),
		Quantity:  domain.Float64Ptr(quantity),
		StartDate: domain.StringPtr(start),
		EndDate:   domain.StringPtr(end),
	}
}
