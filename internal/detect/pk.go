// Package detect implements primary-key selection and heuristic foreign-key
// discovery over profiled tables.
package detect

import (
	"github.com/CodedGrimoire/text2sql-analytics/internal/profile"
)

// PrimaryKey is the detector's choice for one table. A synthesized key is an
// auto-incrementing integer column absent from the raw input.
type PrimaryKey struct {
	Column      string
	Synthesized bool

	// Candidates lists every column that passed the uniqueness and non-null
	// requirements, in column order, for the decision report.
	Candidates []string
}

// PrimaryKeyFor selects a single primary-key column for a table.
//
// A candidate must be exactly unique over its non-null values and contain no
// nulls. Among candidates, name affinity decides: "id" outranks
// "<table>_id", which outranks other id-like suffixes; the leftmost column
// wins remaining ties. When nothing qualifies a surrogate key is synthesized
// under a name not already taken by a raw column.
func PrimaryKeyFor(table string, profiles []profile.Profile) PrimaryKey {
	var pk PrimaryKey
	bestScore := -1

	for _, p := range profiles {
		if !p.Unique() || p.NullCount > 0 {
			continue
		}
		pk.Candidates = append(pk.Candidates, p.Column)
		if s := nameAffinity(table, p.Column); s > bestScore {
			bestScore = s
			pk.Column = p.Column
		}
	}

	if pk.Column == "" {
		pk.Column = surrogateName(table, profiles)
		pk.Synthesized = true
	}
	return pk
}

// nameAffinity scores how key-like a column name is for the given table.
// The tiers are disjoint so the ranking is total: a bare "id" always outranks
// "<table>_id", which outranks other id-like suffixes; position only breaks
// ties within one tier.
func nameAffinity(table, column string) int {
	if column == "id" {
		return 4
	}
	base := singular(table)
	if column == base+"_id" || column == base+"id" || column == table+"_id" || column == table+"id" {
		return 3
	}
	if hasKeySuffix(column) {
		return 1
	}
	return 0
}

// surrogateName picks a key name absent from the raw columns.
func surrogateName(table string, profiles []profile.Profile) string {
	taken := make(map[string]struct{}, len(profiles))
	for _, p := range profiles {
		taken[p.Column] = struct{}{}
	}
	for _, name := range []string{"id", singular(table) + "_id", "row_id", "surrogate_id"} {
		if _, ok := taken[name]; !ok {
			return name
		}
	}
	return table + "_surrogate_id"
}
