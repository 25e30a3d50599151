package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/errors"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/pkg/contracts/domain"
)

// Raw store column names
const (
	ColumnElementID = "element_id"
	ColumnMaterial  = "material"
	ColumnLength    = "length"
	ColumnWidth     = "width"
	ColumnQuantity  = "quantity"
	ColumnStartDate = "start_date"
	ColumnEndDate   = "end_date"
)

// RawColumns is the raw store header in write order
var RawColumns = []string{
	ColumnElementID,
	ColumnMaterial,
	ColumnLength,
	ColumnWidth,
	ColumnQuantity,
	ColumnStartDate,
	ColumnEndDate,
}

const utf8BOM = "\ufeff"

// RawReader reads raw records from a CSV raw store. Columns are located by
// header name, so their order in the file does not matter.
type RawReader struct {
	csv     *csv.Reader
	columns map[string]int
	path    string
	closer  io.Closer
}

// OpenRawFile opens the raw store at path. A missing or unreadable file, or
// one without a raw store header, is an InputMissing error.
func OpenRawFile(path string) (*RawReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewInputMissingError(path, err)
	}

	reader, err := newRawReader(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	reader.closer = f
	return reader, nil
}

// NewRawReader reads the header from r and returns a reader positioned at
// the first record.
func NewRawReader(r io.Reader) (*RawReader, error) {
	return newRawReader(r, "")
}

func newRawReader(r io.Reader, path string) (*RawReader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, apperrors.NewInputMissingError(path, fmt.Errorf("raw store has no header row"))
	}
	if err != nil {
		return nil, apperrors.NewInputMissingError(path, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := columns[key]; !dup {
			columns[key] = i
		}
	}

	if _, ok := columns[ColumnElementID]; !ok {
		return nil, apperrors.NewInputMissingError(path,
			fmt.Errorf("header has no %s column", ColumnElementID))
	}

	return &RawReader{csv: cr, columns: columns, path: path}, nil
}

// Next returns the next raw record, or io.EOF after the last one
func (r *RawReader) Next() (domain.RawRecord, error) {
	row, err := r.csv.Read()
	if err == io.EOF {
		return domain.RawRecord{}, io.EOF
	}
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return domain.RawRecord{}, apperrors.NewInputMissingError(r.path, err).
				WithContext("line", parseErr.Line)
		}
		return domain.RawRecord{}, apperrors.NewInputMissingError(r.path, err)
	}

	return domain.RawRecord{
		ElementID: r.cell(row, ColumnElementID),
		Material:  strings.TrimSpace(r.cell(row, ColumnMaterial)),
		Length:    r.number(row, ColumnLength),
		Width:     r.number(row, ColumnWidth),
		Quantity:  r.number(row, ColumnQuantity),
		StartDate: r.text(row, ColumnStartDate),
		EndDate:   r.text(row, ColumnEndDate),
	}, nil
}

// Close closes the underlying file when the reader opened it
func (r *RawReader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// cell returns the raw cell for column; short rows and absent columns
// read as empty
func (r *RawReader) cell(row []string, column string) string {
	idx, ok := r.columns[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// number parses a numeric cell; blank or unparsable cells are missing
func (r *RawReader) number(row []string, column string) *float64 {
	s := strings.TrimSpace(r.cell(row, column))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// text returns a non-blank cell verbatim, or nil
func (r *RawReader) text(row []string, column string) *string {
	s := r.cell(row, column)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// ReadRawFile reads every record of the raw store at path
func ReadRawFile(path string) ([]domain.RawRecord, error) {
	reader, err := OpenRawFile(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var records []domain.RawRecord
	for {
		record, err := reader.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

// SliceSource adapts an in-memory slice to RecordSource
type SliceSource struct {
	records []domain.RawRecord
	pos     int
}

// NewSliceSource returns a RecordSource over records
func NewSliceSource(records []domain.RawRecord) *SliceSource {
	return &SliceSource{records: records}
}

// Next implements RecordSource
func (s *SliceSource) Next() (domain.RawRecord, error) {
	if s.pos >= len(s.records) {
		return domain.RawRecord{}, io.EOF
	}
	r := s.records[s.pos]
	s.pos++
	return r, nil
}
