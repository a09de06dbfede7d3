package profile

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts are the calendar formats accepted as date-like, tried in order.
// Ambiguous numeric formats like 02/03/2024 are deliberately absent.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02 Jan 2006",
	"Jan 2, 2006",
	"2006/01/02",
}

var (
	truthy = map[string]struct{}{
		"true": {}, "t": {}, "yes": {}, "y": {}, "1": {},
	}
	falsy = map[string]struct{}{
		"false": {}, "f": {}, "no": {}, "n": {}, "0": {},
	}
)

// parseIntegerStrict accepts optionally signed whole numbers only. Leading
// zeros are allowed ("007" is how CSV exports spell account numbers), but
// decimal points, exponents, and grouping separators are not.
func parseIntegerStrict(v string) (int64, bool) {
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseDecimalStrict accepts fixed-point decimals of the form [+-]digits.digits
// and plain integers, returning the integer and fractional digit counts.
// Exponent notation is rejected so that "1e9" stays text.
func parseDecimalStrict(v string) (intDigits, fracDigits int, ok bool) {
	s := v
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	if s == "" {
		return 0, 0, false
	}
	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
		if intPart == "" || fracPart == "" {
			return 0, 0, false
		}
	}
	for _, r := range intPart {
		if r < '0' || r > '9' {
			return 0, 0, false
		}
	}
	for _, r := range fracPart {
		if r < '0' || r > '9' {
			return 0, 0, false
		}
	}
	return len(intPart), len(fracPart), true
}

// parseBoolLoose accepts common spellings of boolean values, case-insensitive.
func parseBoolLoose(v string) (bool, bool) {
	s := strings.ToLower(v)
	if _, ok := truthy[s]; ok {
		return true, true
	}
	if _, ok := falsy[s]; ok {
		return false, true
	}
	return false, false
}

// parseDateStrict parses v against the accepted calendar layouts.
func parseDateStrict(v string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseInteger, ParseDecimal, ParseBool, and ParseDate expose the shape
// parsers for collaborators that convert raw values into typed ones, so
// classification and conversion cannot disagree.

func ParseInteger(v string) (int64, bool) { return parseIntegerStrict(strings.TrimSpace(v)) }

func ParseDecimal(v string) (float64, bool) {
	s := strings.TrimSpace(v)
	if _, _, ok := parseDecimalStrict(s); !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func ParseBool(v string) (bool, bool) { return parseBoolLoose(strings.TrimSpace(v)) }

func ParseDate(v string) (time.Time, bool) { return parseDateStrict(strings.TrimSpace(v)) }
