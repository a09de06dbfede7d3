// Package infer maps column profiles to concrete SQL column types.
//
// Inference is a pure function over the numeric summary a profile carries. A
// column receives the strictest type for which every non-null value matched
// the corresponding shape, in descending precedence
// BOOLEAN > INTEGER > NUMERIC > DATE > VARCHAR. VARCHAR is the fallback and
// never fails, so type ambiguity is resolved here and never surfaces as an
// error.
package infer

import (
	"fmt"

	"github.com/CodedGrimoire/text2sql-analytics/internal/config"
	"github.com/CodedGrimoire/text2sql-analytics/internal/profile"
)

// Kind enumerates the supported column type families.
type Kind int

// KindVarchar is the zero value: the fallback type is also the safe default
// for an unpopulated ColumnType.
const (
	KindVarchar Kind = iota
	KindBoolean
	KindInteger
	KindNumeric
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "BOOLEAN"
	case KindInteger:
		return "INTEGER"
	case KindNumeric:
		return "NUMERIC"
	case KindDate:
		return "DATE"
	case KindVarchar:
		return "VARCHAR"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ColumnType is a tagged variant: exactly one Kind, with Precision/Scale set
// only for NUMERIC and Length only for VARCHAR.
type ColumnType struct {
	Kind      Kind
	Precision int
	Scale     int
	Length    int
}

// SQL renders the type as DDL text.
func (t ColumnType) SQL() string {
	switch t.Kind {
	case KindNumeric:
		return fmt.Sprintf("NUMERIC(%d,%d)", t.Precision, t.Scale)
	case KindVarchar:
		return fmt.Sprintf("VARCHAR(%d)", t.Length)
	default:
		return t.Kind.String()
	}
}

// Boolean, Integer, Date, Numeric, and Varchar are convenience constructors.

func Boolean() ColumnType { return ColumnType{Kind: KindBoolean} }
func Integer() ColumnType { return ColumnType{Kind: KindInteger} }
func Date() ColumnType    { return ColumnType{Kind: KindDate} }

func Numeric(precision, scale int) ColumnType {
	return ColumnType{Kind: KindNumeric, Precision: precision, Scale: scale}
}

func Varchar(length int) ColumnType {
	return ColumnType{Kind: KindVarchar, Length: length}
}

// Column infers the type for one profiled column.
//
// A column with zero non-null values defaults to VARCHAR at the configured
// default width. Decimal shape subsumes integer shape, so a column mixing
// "3" and "3.50" lands on NUMERIC; precision bounds the full literal
// (integer digits + fractional digits).
func Column(p profile.Profile, cfg config.Config) ColumnType {
	if p.NonNullCount() == 0 {
		return Varchar(cfg.DefaultVarcharWidth)
	}

	switch {
	case p.AllNonNull(p.BooleanLike):
		return Boolean()
	case p.AllNonNull(p.IntegerLike):
		return Integer()
	case p.AllNonNull(p.DecimalLike):
		return Numeric(p.MaxIntDigits+p.MaxFracDigits, p.MaxFracDigits)
	case p.AllNonNull(p.DateLike):
		return Date()
	default:
		return Varchar(bucketWidth(p.MaxLength, cfg.VarcharBuckets))
	}
}

// Nullable reports whether the column must allow NULL.
func Nullable(p profile.Profile) bool { return p.NullCount > 0 }

// bucketWidth rounds n up to the smallest configured bucket. Lengths beyond
// the last bucket keep the observed maximum.
func bucketWidth(n int, buckets []int) int {
	for _, b := range buckets {
		if n <= b {
			return b
		}
	}
	return n
}
