package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/internal/dataprocessing"
	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/pkg/contracts/domain"
)

// Workbook sheet names
const (
	SheetItems   = "Items"
	SheetSummary = "Summary"
	SheetDrops   = "Drops"
)

// ItemColumns is the header of the Items sheet, in canonical field order
var ItemColumns = []string{
	"element_id",
	"material",
	"length",
	"width",
	"area_sqm",
	"quantity",
	"start_date",
	"end_date",
	"duration_days",
}

var dropColumns = []string{"line", "element_id", "stage", "reason", "detail"}

// WorkbookData is the content of the BoQ workbook
type WorkbookData struct {
	Items   []domain.CleanRecord
	Summary domain.CleaningSummary
	Drops   []dataprocessing.Drop
}

// WriteWorkbook writes the cleaned dataset as an xlsx workbook with an
// Items sheet, a Summary sheet and, when records were dropped, a Drops sheet
func (w *Writer) WriteWorkbook(ctx context.Context, path string, data WorkbookData) error {
	w.logger.InfoContext(ctx, "Writing BoQ workbook",
		slog.String("file_path", path),
		slog.String("full_path", w.files.Resolve(path)),
		slog.Int("item_count", len(data.Items)),
		slog.Int("drop_count", len(data.Drops)))

	f, err := buildWorkbook(data)
	if err != nil {
		return err
	}
	defer f.Close()

	return w.files.WriteAtomic(path, func(out io.Writer) error {
		return f.Write(out)
	})
}

func buildWorkbook(data WorkbookData) (*excelize.File, error) {
	f := excelize.NewFile()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetItems); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	steps := []func(*excelize.File, int, WorkbookData) error{
		writeItemsSheet,
		writeSummarySheet,
		writeDropsSheet,
	}
	for _, step := range steps {
		if err := step(f, header, data); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeItemsSheet(f *excelize.File, header int, data WorkbookData) error {
	if err := writeHeader(f, SheetItems, ItemColumns, header); err != nil {
		return err
	}

	for i, item := range data.Items {
		row := []interface{}{
			item.ElementID,
			item.Material,
			item.Length,
			item.Width,
			item.AreaSqm,
			item.Quantity,
			item.StartDate.String(),
			item.EndDate.String(),
			item.DurationDays,
		}
		if err := setRow(f, SheetItems, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(SheetItems, "A", "A", 32); err != nil {
		return err
	}
	return f.SetPanes(SheetItems, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeSummarySheet(f *excelize.File, header int, data WorkbookData) error {
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("failed to create %s sheet: %w", SheetSummary, err)
	}
	if err := writeHeader(f, SheetSummary, []string{"metric", "value"}, header); err != nil {
		return err
	}

	s := data.Summary
	rows := [][]interface{}{
		{"input_count", s.InputCount},
		{"output_count", s.OutputCount},
		{"dropped_count", s.DroppedCount},
		{"total_weighted_area", s.TotalWeightedArea},
		{"materials", strings.Join(s.Materials, ", ")},
	}
	for _, reason := range sortedReasons(s.DropsByReason) {
		rows = append(rows, []interface{}{"drops." + reason, s.DropsByReason[reason]})
	}

	for i, row := range rows {
		if err := setRow(f, SheetSummary, i+2, row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetSummary, "A", "A", 28)
}

func writeDropsSheet(f *excelize.File, header int, data WorkbookData) error {
	if len(data.Drops) == 0 {
		return nil
	}
	if _, err := f.NewSheet(SheetDrops); err != nil {
		return fmt.Errorf("failed to create %s sheet: %w", SheetDrops, err)
	}
	if err := writeHeader(f, SheetDrops, dropColumns, header); err != nil {
		return err
	}
	for i, d := range data.Drops {
		row := []interface{}{d.Line, d.ElementID, d.Stage, d.Reason, d.Detail}
		if err := setRow(f, SheetDrops, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, columns []string, style int) error {
	row := make([]interface{}, len(columns))
	for i, c := range columns {
		row[i] = c
	}
	if err := setRow(f, sheet, 1, row); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
