package core

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// ParseQuantity Tests
// ----------------------------------------------------------------------------

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantValue string // decimal.String() of the expected quantity
	}{
		// Valid: integers and decimals
		{name: "positive integer", input: "123", wantValid: true, wantValue: "123"},
		{name: "zero", input: "0", wantValid: true, wantValue: "0"},
		{name: "negative integer", input: "-456", wantValid: true, wantValue: "-456"},
		{name: "explicit plus", input: "+7", wantValid: true, wantValue: "7"},
		{name: "decimal number", input: "123.45", wantValid: true, wantValue: "123.45"},
		{name: "satoshi precision", input: "0.00000001", wantValid: true, wantValue: "0.00000001"},
		{name: "leading decimal point", input: ".99", wantValid: true, wantValue: "0.99"},
		{name: "trailing decimal point", input: "99.", wantValid: true, wantValue: "99"},
		{name: "trailing zeros trimmed", input: "2.500", wantValid: true, wantValue: "2.5"},

		// Valid: scientific notation
		{name: "exponent", input: "1.5e3", wantValid: true, wantValue: "1500"},
		{name: "negative exponent", input: "1E-4", wantValid: true, wantValue: "0.0001"},

		{name: "surrounding whitespace", input: "  42  ", wantValid: true, wantValue: "42"},
		{name: "exponent at bound", input: "1e64", wantValid: true, wantValue: "1" + strings.Repeat("0", 64)},
		{name: "negative exponent at bound", input: "1e-64", wantValid: true, wantValue: "0." + strings.Repeat("0", 63) + "1"},

		// Invalid
		{name: "empty", input: "", wantValid: false},
		{name: "whitespace only", input: "   ", wantValid: false},
		{name: "text", input: "abc", wantValid: false},
		{name: "NaN", input: "NaN", wantValid: false},
		{name: "two decimal points", input: "1.2.3", wantValid: false},
		{name: "trailing garbage", input: "12abc", wantValid: false},
		{name: "double negative in parentheses", input: "(-5)", wantValid: false},
		{name: "lone sign", input: "-", wantValid: false},

		// Invalid: report formatting is not a plain number
		{name: "thousands separator", input: "1,000", wantValid: false},
		{name: "dollar sign", input: "$5", wantValid: false},
		{name: "euro sign", input: "€3", wantValid: false},
		{name: "parentheses negative", input: "(5)", wantValid: false},
		{name: "excel wrapper", input: `="5"`, wantValid: false},

		// Invalid: magnitude beyond MaxQuantityExponent
		{name: "huge exponent", input: "1e40000000", wantValid: false},
		{name: "huge negative exponent", input: "1e-40000000", wantValid: false},
		{name: "exponent past int32", input: "1e2147483648", wantValid: false},
		{name: "exponent just past bound", input: "1e65", wantValid: false},
		{name: "too many decimal places", input: "0." + strings.Repeat("1", 65), wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseQuantity(tt.input)
			if ok != tt.wantValid {
				t.Fatalf("ParseQuantity(%q) ok = %v, want %v", tt.input, ok, tt.wantValid)
			}
			if !tt.wantValid {
				return
			}
			if got.String() != tt.wantValue {
				t.Errorf("ParseQuantity(%q) = %s, want %s", tt.input, got.String(), tt.wantValue)
			}
		})
	}
}

func TestParseQuantityLenient(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantValue string
	}{
		{name: "plain", input: "12.5", wantValid: true, wantValue: "12.5"},
		{name: "dollar sign", input: "$1,234.56", wantValid: true, wantValue: "1234.56"},
		{name: "euro sign", input: "€1234.56", wantValid: true, wantValue: "1234.56"},
		{name: "pound sign", input: "£1234.56", wantValid: true, wantValue: "1234.56"},
		{name: "thousands separators", input: "1,000,000", wantValid: true, wantValue: "1000000"},
		{name: "parentheses negative", input: "(123.45)", wantValid: true, wantValue: "-123.45"},
		{name: "parentheses with currency", input: "($1,000)", wantValid: true, wantValue: "-1000"},

		{name: "empty", input: "", wantValid: false},
		{name: "empty parentheses", input: "()", wantValid: false},
		{name: "double negative in parentheses", input: "(-5)", wantValid: false},
		{name: "text", input: "$abc", wantValid: false},
		{name: "huge exponent still bounded", input: "$1e40000000", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseQuantityLenient(tt.input)
			if ok != tt.wantValid {
				t.Fatalf("ParseQuantityLenient(%q) ok = %v, want %v", tt.input, ok, tt.wantValid)
			}
			if tt.wantValid && got.String() != tt.wantValue {
				t.Errorf("ParseQuantityLenient(%q) = %s, want %s", tt.input, got.String(), tt.wantValue)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ParseDate Tests
// ----------------------------------------------------------------------------

func TestParseDate(t *testing.T) {
	apr30 := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      time.Time
	}{
		// ISO and variants
		{name: "ISO", input: "2025-04-30", wantValid: true, want: apr30},
		{name: "ISO slashes", input: "2025/04/30", wantValid: true, want: apr30},
		{name: "compact", input: "20250430", wantValid: true, want: apr30},

		// US month-first
		{name: "US", input: "4/30/2025", wantValid: true, want: apr30},
		{name: "US padded", input: "04/30/2025", wantValid: true, want: apr30},
		{name: "US ambiguous is month-first", input: "03/04/2025", wantValid: true,
			want: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)},

		// Day-first fallback when month-first is impossible
		{name: "day-first fallback", input: "30/4/2025", wantValid: true, want: apr30},

		// Textual
		{name: "short month", input: "Apr 30, 2025", wantValid: true, want: apr30},
		{name: "long month", input: "April 30, 2025", wantValid: true, want: apr30},
		{name: "day month year", input: "30 Apr 2025", wantValid: true, want: apr30},
		{name: "dashed textual", input: "30-Apr-2025", wantValid: true, want: apr30},

		// Timestamps truncate to the calendar day as written
		{name: "RFC3339", input: "2025-04-30T23:59:59Z", wantValid: true, want: apr30},
		{name: "RFC3339 offset", input: "2025-04-30T22:00:00-05:00", wantValid: true, want: apr30},
		{name: "space datetime", input: "2025-04-30 08:15:00", wantValid: true, want: apr30},
		{name: "US datetime", input: "4/30/2025 3:04 PM", wantValid: true, want: apr30},

		// Two-digit year
		{name: "two-digit year", input: "4/30/25", wantValid: true, want: apr30},

		// Invalid
		{name: "empty", input: "", wantValid: false},
		{name: "text", input: "yesterday", wantValid: false},
		{name: "impossible date", input: "2025-02-30", wantValid: false},
		{name: "month 13 twice", input: "13/13/2025", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if ok != tt.wantValid {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.input, ok, tt.wantValid)
			}
			if !tt.wantValid {
				return
			}
			if !SameDay(got, tt.want) {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.input, got.Format(DateLayout), tt.want.Format(DateLayout))
			}
		})
	}
}

func TestParseDate_TwoDigitYearPivot(t *testing.T) {
	far := (time.Now().Year() + TwoDigitYearPivot + 5) % 100

	got, ok := ParseDate(fmt.Sprintf("1/2/%02d", far))
	if !ok {
		t.Fatal("ParseDate failed for two-digit year")
	}
	if got.Year() > time.Now().Year()+TwoDigitYearPivot {
		t.Errorf("year %d beyond pivot was not moved to the previous century", got.Year())
	}
}

func TestParseAnalysisDate(t *testing.T) {
	got, err := ParseAnalysisDate(" 2025-04-30 ")
	if err != nil {
		t.Fatalf("ParseAnalysisDate error = %v", err)
	}
	if got.Format(DateLayout) != "2025-04-30" {
		t.Errorf("ParseAnalysisDate = %s", got.Format(DateLayout))
	}

	for _, bad := range []string{"", "04/30/2025", "2025-4-30", "2025-13-01"} {
		if _, err := ParseAnalysisDate(bad); err != ErrInvalidAnalysisDate {
			t.Errorf("ParseAnalysisDate(%q) error = %v, want ErrInvalidAnalysisDate", bad, err)
		}
	}
}

func TestSameDay(t *testing.T) {
	base := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)

	if !SameDay(base, time.Date(2025, 4, 30, 23, 59, 59, 0, time.UTC)) {
		t.Error("end of day should be the same day")
	}
	if SameDay(base, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("next midnight should not be the same day")
	}
	if SameDay(base, time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)) {
		t.Error("same month/day in another year should not match")
	}
}

// ----------------------------------------------------------------------------
// CleanCell Tests
// ----------------------------------------------------------------------------

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple string unchanged", input: "Wallet 7", want: "Wallet 7"},
		{name: "empty string", input: "", want: ""},
		{name: "surrounded by whitespace", input: "  hello  ", want: "hello"},
		{name: "Excel formula with quotes", input: `="12345"`, want: "12345"},
		{name: "bare equals sign", input: "=SUM(A1)", want: "SUM(A1)"},
		{name: "double quotes removed", input: `"hello"`, want: "hello"},
		{name: "single quotes removed", input: "'hello'", want: "hello"},
		{name: "leading single quote (Excel text prefix)", input: "'007", want: "007"},
		{name: "excel formula with whitespace", input: `  ="test"  `, want: "test"},
		{name: "only quotes", input: `""`, want: ""},
		{name: "equals with quoted number", input: `="0"`, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanCell(tt.input)
			if got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// MakeHeaderIndex Tests
// ----------------------------------------------------------------------------

func TestMakeHeaderIndex(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		checks map[string]int // key -> expected index
	}{
		{
			name:   "ledger headers",
			header: []string{"Qty", "Inventory", "Asset"},
			checks: map[string]int{"qty": 0, "inventory": 1, "asset": 2},
		},
		{
			name:   "case insensitive lookup",
			header: []string{"DATE", "Wallet Name", "quantity"},
			checks: map[string]int{"date": 0, "wallet name": 1, "quantity": 2},
		},
		{
			name:   "headers with quotes and whitespace cleaned",
			header: []string{` "Date" `, "  Wallet Name ", `="Quantity"`},
			checks: map[string]int{"date": 0, "wallet name": 1, "quantity": 2},
		},
		{
			name:   "empty header",
			header: []string{},
			checks: map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := MakeHeaderIndex(tt.header)

			if len(idx) != len(tt.checks) {
				t.Errorf("MakeHeaderIndex(%v) has %d keys, want %d", tt.header, len(idx), len(tt.checks))
			}
			for key, wantPos := range tt.checks {
				gotPos, ok := idx[key]
				if !ok {
					t.Errorf("MakeHeaderIndex(%v)[%q] not found, want index %d", tt.header, key, wantPos)
					continue
				}
				if gotPos != wantPos {
					t.Errorf("MakeHeaderIndex(%v)[%q] = %d, want %d", tt.header, key, gotPos, wantPos)
				}
			}
		})
	}
}

// When a header repeats, the first occurrence wins.
func TestMakeHeaderIndex_DuplicateHeaders(t *testing.T) {
	idx := MakeHeaderIndex([]string{"Qty", "Inventory", "qty"})

	if gotPos, ok := idx["qty"]; !ok || gotPos != 0 {
		t.Errorf("MakeHeaderIndex with duplicates: qty index = %d, want 0", gotPos)
	}
}
