package core

// convert.go provides type conversion functions for CSV cells.
//
// These functions handle the messy reality of exported balance reports:
//   - Multiple date formats (US, EU, ISO, timestamps)
//   - Excel formula prefixes (="value") and stray quotes
//   - Optionally, currency symbols, thousand separators and
//     accounting negatives written as (123.45)
//
// Parse* functions report ok=false for empty or invalid input instead of
// returning an error; the normalizer turns that into a row rejection.

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical calendar date format used for the analysis date
// and download file names.
const DateLayout = "2006-01-02"

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// MaxQuantityExponent bounds the decimal exponent of a quantity. Larger
// exponents expand to that many digits once summed or printed.
const MaxQuantityExponent = 64

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

// Date layouts split by year format for proper 2-digit year handling
var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "January 2, 2006", "2 Jan 2006", "02-Jan-2006",
		"20060102",
		"2/1/2006", // day-first fallback, only reached when month/day is impossible
	}
	timestampLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02 15:04",
		"1/2/2006 15:04:05",
		"1/2/2006 15:04",
		"1/2/2006 3:04:05 PM",
		"1/2/2006 3:04 PM",
	}
)

// ParseQuantity converts a plain decimal or exponent form ("12.5", "-3",
// "1e-4") to a decimal quantity. Currency symbols, thousands separators and
// parenthesized negatives are invalid here; see ParseQuantityLenient.
// Quantities whose exponent exceeds MaxQuantityExponent are invalid.
func ParseQuantity(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if !numericRegex.MatchString(s) {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if exp := d.Exponent(); exp > MaxQuantityExponent || exp < -MaxQuantityExponent {
		return decimal.Zero, false
	}
	return d, true
}

// ParseQuantityLenient is ParseQuantity for report-formatted numbers.
// Handles currency symbols, thousands separators, and accounting format (parentheses for negative).
func ParseQuantityLenient(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
			return decimal.Zero, false
		}
		s = "-" + s
	}

	return ParseQuantity(s)
}

// ParseDate converts a cell to a calendar date at UTC midnight.
// Timestamps are accepted and truncated to their calendar day.
// 2-digit years are resolved with TwoDigitYearPivot.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	// Try 4-digit year layouts first (unambiguous)
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DayOf(t), true
		}
	}

	currentYear := time.Now().Year()
	pivotYear := currentYear + TwoDigitYearPivot

	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// ParseAnalysisDate parses the caller-supplied analysis date (YYYY-MM-DD).
func ParseAnalysisDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidAnalysisDate
	}
	return t, nil
}

// DayOf drops the time of day, keeping the calendar date as written.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// Keys are lowercased for case-insensitive matching. When a header
// repeats, the first occurrence wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if _, exists := idx[key]; exists {
			continue
		}
		idx[key] = i
	}
	return idx
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

	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}
