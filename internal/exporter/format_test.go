package exporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/pkg/contracts/domain"
)

func TestFormatOptionalFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    *float64
		expected string
	}{
		{"missing", nil, ""},
		{"whole number", domain.Float64Ptr(10), "10"},
		{"noise kept", domain.Float64Ptr(2.4013), "2.4013"},
		{"shortest spelling", domain.Float64Ptr(0.1 + 0.2), "0.30000000000000004"},
		{"tiny value", domain.Float64Ptr(0.00001), "0.00001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatOptionalFloat(tt.input))
		})
	}
}

func TestFormatOptionalString(t *testing.T) {
	assert.Equal(t, "", formatOptionalString(nil))
	assert.Equal(t, " 2026-03-01", formatOptionalString(domain.StringPtr(" 2026-03-01")))
}

func TestFormatThousands(t *testing.T) {
	tests := []struct {
		input    float64
		places   int
		expected string
	}{
		{0, 2, "0.00"},
		{34.88, 2, "34.88"},
		{1234.5, 2, "1,234.50"},
		{1234567.891, 2, "1,234,567.89"},
		{-9876.5, 1, "-9,876.5"},
		{1000, 0, "1,000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatThousands(tt.input, tt.places), "%v", tt.input)
	}
}

func TestStreamWriter(t *testing.T) {
	var buf bytes.Buffer

	sw, err := NewStreamWriter(&buf, []string{"a", "b"}, true)
	require.NoError(t, err)
	require.NoError(t, sw.WriteRecord([]string{"1", "x,y"}))
	require.NoError(t, sw.WriteRecord([]string{"", `say "hi"`}))
	require.NoError(t, sw.Flush())

	assert.Equal(t, 2, sw.Rows())
	assert.Equal(t, "\xEF\xBB\xBFa,b\n1,\"x,y\"\n,\"say \"\"hi\"\"\"\n", buf.String())
}
