// Package rawtable defines the in-memory tabular input consumed by the
// normalization pipeline.
//
// A RawTable is an immutable snapshot of one source sheet/file: a name plus an
// ordered list of named columns, each holding the raw string values in row
// order. Values are kept exactly as read; blank (or whitespace-only) values
// are treated as NULL by downstream profiling.
//
// The package is intentionally dependency-light: parsing file formats beyond
// plain CSV is the job of external collaborators that hand us RawTables.
package rawtable

import "strings"

// RawColumn is one named column of raw scalar values, in row order.
type RawColumn struct {
	Name   string
	Values []string
}

// RawTable is one source table. Columns are aligned: every column holds the
// same number of values, one per row.
type RawTable struct {
	Name    string
	Columns []RawColumn
}

// New builds a RawTable from a header row and data rows. Rows whose field
// count does not match the header are skipped (best-effort, mirrors sampling
// behavior elsewhere in the pipeline). Header and table names are normalized
// to safe SQL identifiers.
func New(name string, headers []string, rows [][]string) RawTable {
	t := RawTable{Name: NormalizeIdent(name)}
	t.Columns = make([]RawColumn, len(headers))
	for i, h := range headers {
		t.Columns[i] = RawColumn{
			Name:   TruncateIdent(NormalizeIdent(h)),
			Values: make([]string, 0, len(rows)),
		}
	}
	for _, r := range rows {
		if len(r) != len(headers) {
			continue
		}
		for i := range headers {
			t.Columns[i].Values = append(t.Columns[i].Values, r[i])
		}
	}
	return t
}

// NumRows returns the number of data rows.
func (t RawTable) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// Row materializes row i as a value slice aligned with Columns.
func (t RawTable) Row(i int) []string {
	out := make([]string, len(t.Columns))
	for c := range t.Columns {
		out[c] = t.Columns[c].Values[i]
	}
	return out
}

// Column returns the column with the given (normalized) name, or nil.
func (t RawTable) Column(name string) *RawColumn {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// ColumnNames returns the ordered column names.
func (t RawTable) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i := range t.Columns {
		out[i] = t.Columns[i].Name
	}
	return out
}

// IsNull reports whether a raw value counts as missing.
func IsNull(v string) bool {
	return strings.TrimSpace(v) == ""
}
