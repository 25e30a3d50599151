package exporter

import (
	"context"
	"io"
	"log/slog"

	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/dataprocessing"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/pkg/contracts/domain"
)

// WriteRawStore writes records as the CSV raw store: the fixed header, then
// one row per record in order, missing values as blank cells
func (w *Writer) WriteRawStore(ctx context.Context, path string, records []domain.RawRecord) error {
	fullPath := w.files.Resolve(path)

	w.logger.InfoContext(ctx, "Writing raw store",
		slog.String("file_path", path),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(records)))

	return w.files.WriteAtomic(path, func(out io.Writer) error {
		stream, err := NewStreamWriter(out, dataprocessing.RawColumns, false)
		if err != nil {
			return err
		}
		for _, r := range records {
			if err := stream.WriteRecord(rawRow(r)); err != nil {
				return err
			}
		}
		return stream.Flush()
	})
}

// rawRow lays out r in dataprocessing.RawColumns order
func rawRow(r domain.RawRecord) []string {
	return []string{
		r.ElementID,
		r.Material,
		formatOptionalFloat(r.Length),
		formatOptionalFloat(r.Width),
		formatOptionalFloat(r.Quantity),
		formatOptionalString(r.StartDate),
		formatOptionalString(r.EndDate),
	}
}
