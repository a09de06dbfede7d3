// Package graph derives a table-level dependency plan from a schema model's
// foreign-key edges.
//
// The plan is a sequence of topological levels: every table in level N only
// references tables in earlier levels, so tables within one level are safe to
// seed concurrently. The graph is recomputed from the model each run and
// never mutated afterwards.
package graph

import (
	"sort"

	"github.com/CodedGrimoire/text2sql-analytics/internal/model"
)

// Plan is the seeding order for a schema model.
type Plan struct {
	// Levels holds table names grouped by dependency depth. Names within a
	// level are sorted for determinism.
	Levels [][]string

	// Order is Levels flattened.
	Order []string

	// Deferred are edges excluded from ordering: self-references, plus the
	// lowest-confidence edge of every cycle encountered. Rows on these edges
	// are inserted without a parent check and validated in a second pass.
	Deferred []model.ForeignKeyEdge
}

// IsDeferred reports whether the given edge was excluded from ordering.
func (p Plan) IsDeferred(e model.ForeignKeyEdge) bool {
	for _, d := range p.Deferred {
		if d.SourceTable == e.SourceTable && d.SourceColumn == e.SourceColumn &&
			d.TargetTable == e.TargetTable && d.TargetColumn == e.TargetColumn {
			return true
		}
	}
	return false
}

// BuildPlan computes the topological seeding plan using Kahn's algorithm.
//
// When a cycle stalls the ordering (no remaining table has in-degree zero),
// the lowest-confidence edge among the remaining tables is deferred and the
// ordering continues. Ties fall to the lexically smallest source table and
// column so identical models always produce identical plans.
func BuildPlan(m *model.SchemaModel) Plan {
	var plan Plan

	remaining := make(map[string]struct{}, m.NumTables())
	for _, name := range m.TableNames() {
		remaining[name] = struct{}{}
	}

	// Self-references can never be ordered; they are deferred up front.
	var active []model.ForeignKeyEdge
	for _, e := range m.Edges {
		if e.Recursive {
			plan.Deferred = append(plan.Deferred, e)
			continue
		}
		active = append(active, e)
	}

	for len(remaining) > 0 {
		level := zeroInDegree(remaining, active)
		if len(level) == 0 {
			// Cycle: defer the weakest remaining edge and retry.
			i := weakestEdge(active, remaining)
			plan.Deferred = append(plan.Deferred, active[i])
			active = append(active[:i], active[i+1:]...)
			continue
		}

		sort.Strings(level)
		plan.Levels = append(plan.Levels, level)
		plan.Order = append(plan.Order, level...)
		for _, name := range level {
			delete(remaining, name)
		}
		active = pruneEdges(active, remaining)
	}

	return plan
}

// zeroInDegree returns the remaining tables no active edge points out of
// (tables whose every referenced parent is already seeded).
func zeroInDegree(remaining map[string]struct{}, active []model.ForeignKeyEdge) []string {
	blocked := make(map[string]struct{})
	for _, e := range active {
		if _, ok := remaining[e.TargetTable]; ok {
			blocked[e.SourceTable] = struct{}{}
		}
	}
	var out []string
	for name := range remaining {
		if _, ok := blocked[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

// weakestEdge picks the index of the lowest-confidence edge between two
// remaining tables, with a lexical tie-break.
func weakestEdge(active []model.ForeignKeyEdge, remaining map[string]struct{}) int {
	best := -1
	for i, e := range active {
		if _, ok := remaining[e.SourceTable]; !ok {
			continue
		}
		if _, ok := remaining[e.TargetTable]; !ok {
			continue
		}
		if best < 0 || weaker(e, active[best]) {
			best = i
		}
	}
	return best
}

func weaker(a, b model.ForeignKeyEdge) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence < b.Confidence
	}
	if a.SourceTable != b.SourceTable {
		return a.SourceTable < b.SourceTable
	}
	return a.SourceColumn < b.SourceColumn
}

// pruneEdges drops edges whose target has already been seeded.
func pruneEdges(active []model.ForeignKeyEdge, remaining map[string]struct{}) []model.ForeignKeyEdge {
	out := active[:0]
	for _, e := range active {
		if _, ok := remaining[e.TargetTable]; ok {
			out = append(out, e)
		}
	}
	return out
}
