// Package sizespec parses and formats human-readable byte size specifications.
package sizespec

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Severity classifies a size by the unit it formats to, for presentation
// layers that want to color large entries differently from small ones.
type Severity string

const (
	// SeverityLow covers sizes that format to bytes or kilobytes.
	SeverityLow Severity = "low"
	// SeverityMedium covers sizes that format to megabytes.
	SeverityMedium Severity = "medium"
	// SeverityHigh covers sizes that format to gigabytes or terabytes.
	SeverityHigh Severity = "high"
)

// ErrInvalidSizeSpec reports a malformed size specification string.
var ErrInvalidSizeSpec = errors.New("invalid size specification")

const (
	bytesPerKilobyte int64 = 1 << 10
	bytesPerMegabyte int64 = 1 << 20
	bytesPerGigabyte int64 = 1 << 30
)

// sizeSpecPattern accepts a whole number followed by an optional unit letter.
var sizeSpecPattern = regexp.MustCompile(`(?i)^(\d+)([BKMG])?$`)

var unitMultipliers = map[string]int64{
	"B": 1,
	"K": bytesPerKilobyte,
	"M": bytesPerMegabyte,
	"G": bytesPerGigabyte,
}

// sizeUnits orders the display units from smallest to largest.
var sizeUnits = []string{"B", "K", "M", "G", "T"}

// Parse converts a specification such as "512M" or "100" into a byte count.
// The unit letter is case-insensitive; no unit means raw bytes. Negative
// numbers, decimals, and unknown units fail with ErrInvalidSizeSpec.
func Parse(spec string) (int64, error) {
	match := sizeSpecPattern.FindStringSubmatch(spec)
	if match == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSizeSpec, spec)
	}
	magnitude, magnitudeError := strconv.ParseInt(match[1], 10, 64)
	if magnitudeError != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSizeSpec, spec)
	}
	if match[2] == "" {
		return magnitude, nil
	}
	multiplier := unitMultipliers[strings.ToUpper(match[2])]
	if magnitude > math.MaxInt64/multiplier {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSizeSpec, spec)
	}
	return magnitude * multiplier, nil
}

// Format converts a byte count into a human-readable size such as "1.5K" or
// "10G", scaling by 1024 to the largest unit that keeps the magnitude below
// 1024 and capping at terabytes. One decimal digit is shown when
// alwaysShowFraction is set, or when the scaled value is a small non-integer
// in a unit above bytes; otherwise the value is shown whole.
func Format(sizeBytes int64, alwaysShowFraction bool) string {
	scaledValue := float64(sizeBytes)
	unitIndex := 0
	for math.Abs(scaledValue) >= 1024.0 && unitIndex < len(sizeUnits)-1 {
		scaledValue /= 1024.0
		unitIndex++
	}
	precision := 0
	fractionalPart := scaledValue - math.Trunc(scaledValue)
	if alwaysShowFraction || (unitIndex > 0 && scaledValue < 10.0 && fractionalPart > 0.01) {
		precision = 1
	}
	return fmt.Sprintf("%.*f%s", precision, scaledValue, sizeUnits[unitIndex])
}

// SeverityFor maps a byte count onto the severity tag of its display unit.
func SeverityFor(sizeBytes int64) Severity {
	switch {
	case sizeBytes < bytesPerMegabyte:
		return SeverityLow
	case sizeBytes < bytesPerGigabyte:
		return SeverityMedium
	default:
		return SeverityHigh
	}
}
