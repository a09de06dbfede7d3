// Package profile implements per-column statistical profiling of raw tables.
//
// A Profile summarizes everything downstream inference needs: how many values
// were observed, how many were null/blank, how many were distinct, and how
// many matched each lexical shape (integer, decimal, date, boolean). Shape
// classification is conservative: a value only counts as integer-like if it
// parses as a whole number with no fractional or exponent notation, and
// date-like requires an unambiguous calendar-date parse.
//
// Profiling is pure and deterministic: identical input always produces an
// identical Profile, and unparseable values are simply recorded as text
// rather than propagating errors.
package profile

import (
	"strings"
	"sync"

	"github.com/CodedGrimoire/text2sql-analytics/internal/rawtable"
)

// Profile is the statistical summary of one raw column.
type Profile struct {
	Column string

	TotalCount    int
	NullCount     int
	DistinctCount int

	// Shape counts over non-null values. A single value may match several
	// shapes ("1" is integer-like, decimal-like, and boolean-like), so the
	// counts form a multiset of tags rather than a partition.
	IntegerLike int
	DecimalLike int
	DateLike    int
	BooleanLike int

	// Lexical extremes over non-null values (byte order).
	MinLexical string
	MaxLexical string

	// MaxLength is the longest observed value in runes.
	MaxLength int

	// Digit extents over integer-like and decimal-like values, used for
	// NUMERIC precision/scale inference.
	MaxIntDigits  int
	MaxFracDigits int

	// Parsed integer range over integer-like values.
	MinInteger int64
	MaxInteger int64
	HasInteger bool

	// Samples holds up to sampleCap distinct non-null values in first-seen
	// order, for the report.
	Samples []string
}

const sampleCap = 5

// NonNullCount returns TotalCount - NullCount.
func (p Profile) NonNullCount() int { return p.TotalCount - p.NullCount }

// AllNonNull reports whether every non-null value matched the given shape
// count. Columns with zero non-null values report false.
func (p Profile) AllNonNull(shapeCount int) bool {
	return p.NonNullCount() > 0 && shapeCount == p.NonNullCount()
}

// Unique reports whether every non-null value is distinct.
func (p Profile) Unique() bool {
	return p.NonNullCount() > 0 && p.DistinctCount == p.NonNullCount()
}

// Column profiles a single raw column. It never fails; values that match no
// stricter shape simply count as text.
func Column(col rawtable.RawColumn) Profile {
	p := Profile{Column: col.Name}
	distinct := make(map[string]struct{}, len(col.Values))

	for _, raw := range col.Values {
		p.TotalCount++
		v := strings.TrimSpace(raw)
		if v == "" {
			p.NullCount++
			continue
		}

		if _, seen := distinct[v]; !seen {
			distinct[v] = struct{}{}
			if len(p.Samples) < sampleCap {
				p.Samples = append(p.Samples, v)
			}
		}

		if p.MinLexical == "" && p.MaxLexical == "" && p.NonNullCount() == 1 {
			p.MinLexical, p.MaxLexical = v, v
		} else {
			if v < p.MinLexical {
				p.MinLexical = v
			}
			if v > p.MaxLexical {
				p.MaxLexical = v
			}
		}
		if n := len([]rune(v)); n > p.MaxLength {
			p.MaxLength = n
		}

		if iv, ok := parseIntegerStrict(v); ok {
			p.IntegerLike++
			if !p.HasInteger {
				p.MinInteger, p.MaxInteger = iv, iv
				p.HasInteger = true
			} else {
				if iv < p.MinInteger {
					p.MinInteger = iv
				}
				if iv > p.MaxInteger {
					p.MaxInteger = iv
				}
			}
		}
		if ip, fp, ok := parseDecimalStrict(v); ok {
			p.DecimalLike++
			if ip > p.MaxIntDigits {
				p.MaxIntDigits = ip
			}
			if fp > p.MaxFracDigits {
				p.MaxFracDigits = fp
			}
		}
		if _, ok := parseBoolLoose(v); ok {
			p.BooleanLike++
		}
		if _, ok := parseDateStrict(v); ok {
			p.DateLike++
		}
	}

	p.DistinctCount = len(distinct)
	return p
}

// Table profiles every column of t using a bounded worker pool. Profiles are
// returned in column order regardless of scheduling, so output is
// deterministic. workers <= 0 falls back to sequential profiling.
func Table(t rawtable.RawTable, workers int) []Profile {
	out := make([]Profile, len(t.Columns))
	if workers <= 1 || len(t.Columns) <= 1 {
		for i, c := range t.Columns {
			out[i] = Column(c)
		}
		return out
	}

	idxCh := make(chan int, len(t.Columns))
	for i := range t.Columns {
		idxCh <- i
	}
	close(idxCh)

	if workers > len(t.Columns) {
		workers = len(t.Columns)
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range idxCh {
				out[i] = Column(t.Columns[i])
			}
		}()
	}
	wg.Wait()

	return out
}

// ValueSet returns the distinct non-null values of a raw column. Used by the
// foreign-key detector for overlap tests.
func ValueSet(col *rawtable.RawColumn) map[string]struct{} {
	if col == nil {
		return nil
	}
	set := make(map[string]struct{}, len(col.Values))
	for _, raw := range col.Values {
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}
		set[v] = struct{}{}
	}
	return set
}
