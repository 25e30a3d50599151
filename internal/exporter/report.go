package exporter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	apperrors "github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/errors"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/pkg/contracts/domain"
)

const summaryRule = "========================================"

// WriteRunReport writes the run report as indented JSON
func (w *Writer) WriteRunReport(ctx context.Context, path string, report domain.RunReport) error {
	var buf bytes.Buffer
	if err := encodeJSON(&buf, report); err != nil {
		return apperrors.NewStorageError("failed to encode run report", err)
	}

	w.logger.InfoContext(ctx, "Writing run report",
		slog.String("file_path", path),
		slog.String("run_id", report.RunID),
		slog.String("status", string(report.Status)))

	return w.files.WriteFile(path, buf.Bytes())
}

// RenderSummary prints the console ETL SUMMARY block for a run
func RenderSummary(w io.Writer, report domain.RunReport) error {
	var b strings.Builder

	b.WriteString("\n" + summaryRule + "\n")
	b.WriteString("KIT-OPTIMA: ETL SUMMARY\n")
	b.WriteString(summaryRule + "\n")

	if s := report.Summary; s != nil {
		fmt.Fprintf(&b, "Total Rows Processed : %d\n", s.InputCount)
		fmt.Fprintf(&b, "Dirty Rows Cleaned   : %d\n", s.DroppedCount)
		fmt.Fprintf(&b, "Total Formwork Area  : %s sqm\n", FormatThousands(s.TotalWeightedArea, 2))
		fmt.Fprintf(&b, "Materials Tracked    : %s\n", strings.Join(s.Materials, ", "))
	} else if step := report.Step("generate"); step != nil {
		fmt.Fprintf(&b, "Rows Generated       : %d\n", step.Records)
		fmt.Fprintf(&b, "Raw Store            : %s\n", report.RawStorePath)
	}

	switch report.Status {
	case domain.RunStatusCompleted:
		if report.CanonicalStorePath != "" {
			fmt.Fprintf(&b, "Pipeline Status      : SUCCESS -> %s ready for the kit optimizer.\n", report.CanonicalStorePath)
		} else {
			b.WriteString("Pipeline Status      : SUCCESS\n")
		}
	default:
		fmt.Fprintf(&b, "Pipeline Status      : %s\n", strings.ToUpper(string(report.Status)))
		for _, step := range report.Steps {
			if step.Error != "" {
				fmt.Fprintf(&b, "Failed Step          : %s (%s)\n", step.Name, step.ErrorType)
			}
		}
	}

	b.WriteString(summaryRule + "\n\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func sortedReasons(drops map[string]int) []string {
	reasons := make([]string, 0, len(drops))
	for r := range drops {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	return reasons
}
