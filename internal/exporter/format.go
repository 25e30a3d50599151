package exporter

import (
	"fmt"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var reportPrinter = message.NewPrinter(language.English)

// formatOptionalFloat formats a raw measurement with the shortest decimal
// spelling that reads back as the same float64. Missing values are blank.
func formatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

// formatOptionalString returns the raw text, or blank when missing
func formatOptionalString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// FormatThousands formats f with places decimals and comma thousands
// separators, e.g. 12345.678 with 2 places is "12,345.68"
func FormatThousands(f float64, places int) string {
	return reportPrinter.Sprintf(fmt.Sprintf("%%.%df", places), f)
}
