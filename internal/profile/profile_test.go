package profile

import (
	"reflect"
	"testing"

	"github.com/CodedGrimoire/text2sql-analytics/internal/rawtable"
)

//
// parse helpers
//

// TestParseIntegerStrict verifies that only whole numbers count as
// integer-like. Fractions, exponents, and grouping must stay text.
func TestParseIntegerStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		ok   bool
		want int64
	}{
		{"plain", "42", true, 42},
		{"negative", "-7", true, -7},
		{"leading zeros", "007", true, 7},
		{"decimal point", "3.5", false, 0},
		{"exponent", "1e9", false, 0},
		{"grouped", "1,000", false, 0},
		{"text", "abc", false, 0},
		{"empty", "", false, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := parseIntegerStrict(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("parseIntegerStrict(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

// TestParseDecimalStrict verifies digit counting for fixed-point decimals.
func TestParseDecimalStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		ok       bool
		intWant  int
		fracWant int
	}{
		{"fixed point", "12.345", true, 2, 3},
		{"integer", "1200", true, 4, 0},
		{"signed", "-9.9", true, 1, 1},
		{"bare dot", ".5", false, 0, 0},
		{"trailing dot", "5.", false, 0, 0},
		{"exponent", "1e3", false, 0, 0},
		{"text", "12a", false, 0, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ip, fp, ok := parseDecimalStrict(tt.in)
			if ok != tt.ok || ip != tt.intWant || fp != tt.fracWant {
				t.Fatalf("parseDecimalStrict(%q) = (%d, %d, %v), want (%d, %d, %v)",
					tt.in, ip, fp, ok, tt.intWant, tt.fracWant, tt.ok)
			}
		})
	}
}

// TestParseDateStrict verifies that only unambiguous calendar formats parse.
func TestParseDateStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		ok   bool
	}{
		{"iso date", "2024-03-01", true},
		{"iso datetime", "2024-03-01 10:30:00", true},
		{"slash ymd", "2024/03/01", true},
		{"named month", "02 Jan 2006", true},
		{"ambiguous dmy", "02/03/2024", false},
		{"number", "20240301", false},
		{"text", "yesterday", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, ok := parseDateStrict(tt.in); ok != tt.ok {
				t.Fatalf("parseDateStrict(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
		})
	}
}

//
// Column
//

// TestColumnCounts verifies the core profile invariant: null count plus
// non-null observations equals the total, and shape counts track every
// matching value independently.
func TestColumnCounts(t *testing.T) {
	t.Parallel()

	col := rawtable.RawColumn{
		Name:   "amount",
		Values: []string{"10", "10", "3.50", "", "  ", "oops"},
	}
	p := Column(col)

	if p.TotalCount != 6 || p.NullCount != 2 {
		t.Fatalf("counts = (%d total, %d null), want (6, 2)", p.TotalCount, p.NullCount)
	}
	if p.NonNullCount() != 4 {
		t.Fatalf("NonNullCount() = %d, want 4", p.NonNullCount())
	}
	if p.DistinctCount != 3 {
		t.Fatalf("DistinctCount = %d, want 3", p.DistinctCount)
	}
	if p.IntegerLike != 2 {
		t.Fatalf("IntegerLike = %d, want 2", p.IntegerLike)
	}
	// "10" twice and "3.50" are decimal-compatible; "oops" is not.
	if p.DecimalLike != 3 {
		t.Fatalf("DecimalLike = %d, want 3", p.DecimalLike)
	}
	if p.MaxIntDigits != 2 || p.MaxFracDigits != 2 {
		t.Fatalf("digits = (%d, %d), want (2, 2)", p.MaxIntDigits, p.MaxFracDigits)
	}
	if p.MinInteger != 10 || p.MaxInteger != 10 {
		t.Fatalf("integer range = [%d, %d], want [10, 10]", p.MinInteger, p.MaxInteger)
	}
}

// TestColumnUnique verifies uniqueness detection over non-null values.
func TestColumnUnique(t *testing.T) {
	t.Parallel()

	unique := Column(rawtable.RawColumn{Name: "id", Values: []string{"1", "2", "3"}})
	if !unique.Unique() {
		t.Fatal("expected distinct column to be unique")
	}

	dup := Column(rawtable.RawColumn{Name: "id", Values: []string{"1", "1", "2"}})
	if dup.Unique() {
		t.Fatal("expected duplicated column to not be unique")
	}

	empty := Column(rawtable.RawColumn{Name: "id", Values: []string{"", ""}})
	if empty.Unique() {
		t.Fatal("expected all-null column to not be unique")
	}
}

//
// Table
//

// TestTableDeterministic verifies that concurrent profiling returns profiles
// in column order with identical content to the sequential path.
func TestTableDeterministic(t *testing.T) {
	t.Parallel()

	tbl := rawtable.New("events", []string{"id", "kind", "at"}, [][]string{
		{"1", "click", "2024-01-01"},
		{"2", "view", "2024-01-02"},
		{"3", "click", "2024-01-03"},
	})

	sequential := Table(tbl, 1)
	parallel := Table(tbl, 8)

	if !reflect.DeepEqual(sequential, parallel) {
		t.Fatalf("parallel profiling diverged:\n seq: %+v\n par: %+v", sequential, parallel)
	}
	for i, p := range parallel {
		if want := tbl.Columns[i].Name; p.Column != want {
			t.Fatalf("profile %d column = %q, want %q", i, p.Column, want)
		}
	}
}

// TestValueSet verifies deduplication and null exclusion.
func TestValueSet(t *testing.T) {
	t.Parallel()

	col := rawtable.RawColumn{Name: "c", Values: []string{"a", "a", " b ", ""}}
	set := ValueSet(&col)
	if len(set) != 2 {
		t.Fatalf("len(set) = %d, want 2", len(set))
	}
	if _, ok := set["b"]; !ok {
		t.Fatal("expected trimmed value in set")
	}
	if ValueSet(nil) != nil {
		t.Fatal("ValueSet(nil) should be nil")
	}
}
