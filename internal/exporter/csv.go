package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// StreamWriter writes CSV rows one at a time, so large datasets never need
// to be held as [][]string
type StreamWriter struct {
	writer *csv.Writer
	rows   int
}

// NewStreamWriter writes headers to w and returns a writer for the rows.
// bom prefixes the output with a UTF-8 byte order mark for spreadsheet
// tools that need it.
func NewStreamWriter(w io.Writer, headers []string, bom bool) (*StreamWriter, error) {
	if bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return &StreamWriter{writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	if err := s.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record %d: %w", s.rows, err)
	}
	s.rows++
	return nil
}

// Rows returns the number of records written so far
func (s *StreamWriter) Rows() int {
	return s.rows
}

// Flush writes any buffered rows to the underlying writer
func (s *StreamWriter) Flush() error {
	s.writer.Flush()
	return s.writer.Error()
}
