// Package exporter writes the pipeline's stores and reports.
//
// All file outputs go through a Writer, which replaces each target
// atomically via internal/files:
//
// Raw store: CSV with the fixed header
// element_id,material,length,width,quantity,start_date,end_date and blank
// cells for missing values.
//
// Canonical store: {"items": [...]} with two-space indentation and a
// trailing newline. VerifyCanonical reads it back and checks it against an
// embedded JSON Schema.
//
// BoQ workbook: an xlsx file with Items, Summary and Drops sheets.
//
// Run report: the RunReport as JSON, and RenderSummary for the console.
//
// Example usage:
//
//	w := exporter.NewWriter(files.NewManager(paths, logger), logger)
//
//	if err := w.WriteCanonical(ctx, cfg.CanonicalStorePath, result.Items); err != nil {
//	    return err
//	}
//	if err := exporter.VerifyCanonical(paths.Resolve(cfg.CanonicalStorePath)); err != nil {
//	    return err
//	}
package exporter
