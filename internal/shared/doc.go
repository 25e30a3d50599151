// Package shared holds helpers used across the BoQ pipeline packages that
// belong to no single layer.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//	- A buffered slog handler for asserting on log output
//	- Raw store fixtures (CSV text and RawRecord builders)
//
// Example:
//
//	logger, logs := testutil.NewTestLogger(t)
//	path := testutil.WriteRawStore(t, testutil.RawHeader+"\n"+testutil.MissingQuantityRow)
//	...
//	testutil.AssertLogContains(t, logs, slog.LevelInfo, "Cleaning complete")
package shared
