// Package dataprocessing turns the raw BoQ store into the canonical record
// set consumed by the formwork kit optimizer.
//
// # Architecture
//
// The package is organized into three components:
//
//  1. Parser: RawReader reads the CSV raw store by header name
//  2. Processor: Cleaner runs the ordered stage list over raw records
//  3. Summarizer: aggregates counts, drop reasons and the weighted area
//
// # Stages
//
// Stages apply in a fixed order, each a pure function of one record:
//
//	impute-quantity → require-fields → normalize-id → snap-dimensions →
//	parse-dates → check-order → derive-area → derive-duration → emit
//
// A stage that returns an error excludes the record. The error's AppError
// type becomes the drop reason, for example DATE_PARSE.
//
// # Usage
//
//	cleaner := dataprocessing.NewCleaner(logger)
//	result, err := cleaner.CleanFile(ctx, "data/raw/BoQ_Dataset_Raw.csv")
//	if errors.Is(err, apperrors.ErrInputMissing) {
//	    // raw store absent or not a raw store
//	}
//
// Large stores can be cleaned without loading them:
//
//	reader, err := dataprocessing.OpenRawFile(path)
//	defer reader.Close()
//	summary, drops, err := cleaner.CleanStream(ctx, reader, writeItem)
//
// Batch and streaming modes produce the same items, drops and summary.
//
// # Error Handling
//
// Row problems never fail a call. Only an unreadable raw store
// (INPUT_MISSING) or a record that fails the post-emission invariant guard
// (VALIDATION) is returned as an error.
package dataprocessing
