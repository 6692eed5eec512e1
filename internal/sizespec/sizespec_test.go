package sizespec_test

import (
	"errors"
	"testing"

	"sdutil/internal/sizespec"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		spec     string
		expected int64
	}{
		{name: "plain bytes", spec: "100", expected: 100},
		{name: "byte unit", spec: "100B", expected: 100},
		{name: "kilobytes", spec: "2K", expected: 2048},
		{name: "lowercase kilobytes", spec: "2k", expected: 2048},
		{name: "megabytes", spec: "512M", expected: 1 << 29},
		{name: "gigabytes", spec: "1G", expected: 1 << 30},
		{name: "ten gigabytes", spec: "10g", expected: 10 << 30},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result, parseError := sizespec.Parse(testCase.spec)
			if parseError != nil {
				t.Fatalf("unexpected error: %v", parseError)
			}
			if result != testCase.expected {
				t.Fatalf("expected %d, got %d", testCase.expected, result)
			}
		})
	}
}

func TestParseRejectsMalformedSpecs(t *testing.T) {
	testCases := []struct {
		name string
		spec string
	}{
		{name: "unknown unit", spec: "1X"},
		{name: "negative number", spec: "-5"},
		{name: "decimal number", spec: "5.5"},
		{name: "empty string", spec: ""},
		{name: "overflowing multiplication", spec: "99999999999G"},
		{name: "magnitude beyond int64", spec: "99999999999999999999"},
		{name: "terabyte unit not accepted", spec: "1T"},
		{name: "unit only", spec: "G"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, parseError := sizespec.Parse(testCase.spec)
			if !errors.Is(parseError, sizespec.ErrInvalidSizeSpec) {
				t.Fatalf("expected ErrInvalidSizeSpec, got %v", parseError)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	testCases := []struct {
		name               string
		sizeBytes          int64
		alwaysShowFraction bool
		expected           string
	}{
		{name: "zero", sizeBytes: 0, expected: "0B"},
		{name: "bytes", sizeBytes: 512, expected: "512B"},
		{name: "whole kilobytes", sizeBytes: 3072, expected: "3K"},
		{name: "fractional kilobytes", sizeBytes: 1536, expected: "1.5K"},
		{name: "ten megabytes", sizeBytes: 10 << 20, expected: "10M"},
		{name: "nine hundred megabytes", sizeBytes: 900 << 20, expected: "900M"},
		{name: "fractional gigabytes", sizeBytes: (1 << 30) + (1 << 29), expected: "1.5G"},
		{name: "terabytes", sizeBytes: 5 << 40, expected: "5T"},
		{name: "capped at terabytes", sizeBytes: 2048 << 40, expected: "2048T"},
		{name: "forced fraction", sizeBytes: 1024, alwaysShowFraction: true, expected: "1.0K"},
		{name: "forced fraction on bytes", sizeBytes: 5, alwaysShowFraction: true, expected: "5.0B"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result := sizespec.Format(testCase.sizeBytes, testCase.alwaysShowFraction)
			if result != testCase.expected {
				t.Fatalf("expected %s, got %s", testCase.expected, result)
			}
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	formatted := sizespec.Format(1<<30, false)
	parsed, parseError := sizespec.Parse(formatted)
	if parseError != nil {
		t.Fatalf("unexpected error: %v", parseError)
	}
	if parsed != 1<<30 {
		t.Fatalf("expected %d, got %d", int64(1<<30), parsed)
	}
}

func TestSeverityFor(t *testing.T) {
	testCases := []struct {
		name      string
		sizeBytes int64
		expected  sizespec.Severity
	}{
		{name: "bytes are low", sizeBytes: 42, expected: sizespec.SeverityLow},
		{name: "kilobytes are low", sizeBytes: 512 << 10, expected: sizespec.SeverityLow},
		{name: "megabytes are medium", sizeBytes: 1 << 20, expected: sizespec.SeverityMedium},
		{name: "gigabytes are high", sizeBytes: 1 << 30, expected: sizespec.SeverityHigh},
		{name: "terabytes are high", sizeBytes: 1 << 40, expected: sizespec.SeverityHigh},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result := sizespec.SeverityFor(testCase.sizeBytes)
			if result != testCase.expected {
				t.Fatalf("expected %s, got %s", testCase.expected, result)
			}
		})
	}
}
