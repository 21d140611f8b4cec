package core

// convert.go turns raw CSV cells into typed values.
//
// The enrollment export is machine generated, but cells still arrive with
// stray whitespace, Excel formula prefixes (="123") and thousands separators
// when a file has passed through a spreadsheet. Parsers here tolerate those
// and nothing else.

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// withdrawalLayouts are tried in order. Month-only layouts resolve to the first day.
var withdrawalLayouts = []string{
	"2006-01-02", "2006/01/02", "2006.01.02", "20060102",
	"2006-01", "2006/01", "200601",
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

// IsBlank reports whether a cell is empty or whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// normalizeNumber strips separators and validates the numeric shape.
func normalizeNumber(s string) (string, bool) {
	s = CleanCell(s)
	s = strings.ReplaceAll(s, ",", "")
	if !numericRegex.MatchString(s) {
		return "", false
	}
	return s, true
}

// ParseInt parses an integer cell. Whole-valued decimals such as "12.0"
// are accepted since spreadsheet round trips produce them.
func ParseInt(s string) (int, error) {
	n, ok := normalizeNumber(s)
	if !ok {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrMalformed, s)
	}
	if i, err := strconv.Atoi(n); err == nil {
		return i, nil
	}
	d, err := decimal.NewFromString(n)
	if err != nil || !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrMalformed, s)
	}
	return int(d.IntPart()), nil
}

// ParseAmount parses a contribution amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	n, ok := normalizeNumber(s)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrMalformed, s)
	}
	d, err := decimal.NewFromString(n)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrMalformed, s)
	}
	return d, nil
}

// ParseDate parses a date cell. ok is false for blank or unrecognised input;
// callers treat that as a missing value rather than an error.
func ParseDate(s string) (t time.Time, ok bool) {
	s = CleanCell(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range withdrawalLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
