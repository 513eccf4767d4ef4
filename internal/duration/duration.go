// Package duration parses the human-readable duration strings accepted by
// workflow step timeouts and delays ("500", "1000ms", "1s", "2.5s", "1m",
// "2hours"), grounded on the original agent's duration_parser.rs.
package duration

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse converts a duration string to milliseconds. A bare number is
// interpreted as milliseconds; otherwise the numeric prefix is scaled by
// the recognized unit suffix.
func Parse(input string) (int64, error) {
	input = strings.TrimSpace(input)

	if ms, err := strconv.ParseUint(input, 10, 64); err == nil {
		return int64(ms), nil
	}

	numberPart, unitPart, err := splitNumberAndUnit(input)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseFloat(numberPart, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number in duration: %s", numberPart)
	}

	var multiplier float64
	switch unitPart {
	case "ms", "milliseconds", "millisecond":
		multiplier = 1
	case "s", "sec", "secs", "second", "seconds":
		multiplier = 1000
	case "m", "min", "mins", "minute", "minutes":
		multiplier = 60_000
	case "h", "hr", "hrs", "hour", "hours":
		multiplier = 3_600_000
	case "":
		multiplier = 1
	default:
		return 0, fmt.Errorf("unknown time unit: %s", unitPart)
	}

	return int64(value * multiplier), nil
}

// splitNumberAndUnit splits input at the first alphabetic rune, the way
// the original's split_number_and_unit does.
func splitNumberAndUnit(input string) (number string, unit string, err error) {
	splitPos := len(input)
	for i, ch := range input {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') {
			splitPos = i
			break
		}
	}

	number = input[:splitPos]
	unit = input[splitPos:]

	if number == "" {
		return "", "", fmt.Errorf("no numeric value in duration: %s", input)
	}
	return number, unit, nil
}
