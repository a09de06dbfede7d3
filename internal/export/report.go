package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/CodedGrimoire/text2sql-analytics/internal/graph"
	"github.com/CodedGrimoire/text2sql-analytics/internal/model"
	"github.com/CodedGrimoire/text2sql-analytics/internal/seed"
)

// ColumnReport records one column's inference decision.
type ColumnReport struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Nullable      bool     `json:"nullable"`
	Synthesized   bool     `json:"synthesized,omitempty"`
	TotalCount    int      `json:"total_count,omitempty"`
	NullCount     int      `json:"null_count,omitempty"`
	DistinctCount int      `json:"distinct_count,omitempty"`
	Samples       []string `json:"samples,omitempty"`
}

// ForeignKeyReport records one accepted edge.
type ForeignKeyReport struct {
	Column       string  `json:"column"`
	TargetTable  string  `json:"target_table"`
	TargetColumn string  `json:"target_column"`
	Confidence   float64 `json:"confidence"`
	Method       string  `json:"method"`
	Deferred     bool    `json:"deferred,omitempty"`
	Recursive    bool    `json:"recursive,omitempty"`
}

// TableReport aggregates the decisions for one table.
type TableReport struct {
	Name           string             `json:"name"`
	Rows           int                `json:"rows"`
	PrimaryKey     string             `json:"primary_key"`
	SynthesizedKey bool               `json:"synthesized_key,omitempty"`
	PKCandidates   []string           `json:"pk_candidates,omitempty"`
	Columns        []ColumnReport     `json:"columns"`
	ForeignKeys    []ForeignKeyReport `json:"foreign_keys,omitempty"`
	Seeding        *seed.TableStats   `json:"seeding,omitempty"`
}

// Report is the structured audit of every inference decision in a run.
type Report struct {
	Tables  []TableReport `json:"tables"`
	Order   []string      `json:"seed_order"`
	Notices []string      `json:"notices,omitempty"`
}

// BuildReport assembles the audit report from a model and its plan.
// seedRes may be nil when seeding was not requested.
func BuildReport(m *model.SchemaModel, plan graph.Plan, seedRes *seed.Result) *Report {
	r := &Report{Order: plan.Order}

	for _, t := range m.Tables() {
		tr := TableReport{
			Name:           t.Name,
			Rows:           t.RowCount,
			PrimaryKey:     t.PrimaryKey.Column,
			SynthesizedKey: t.PrimaryKey.Synthesized,
			PKCandidates:   t.PKCandidates,
		}

		profiles := make(map[string]int, len(t.Profiles))
		for i, p := range t.Profiles {
			profiles[p.Column] = i
		}
		for _, c := range t.Columns {
			cr := ColumnReport{
				Name:        c.Name,
				Type:        c.Type.SQL(),
				Nullable:    c.Nullable,
				Synthesized: c.Synthesized,
			}
			if i, ok := profiles[c.Name]; ok && !c.Synthesized {
				p := t.Profiles[i]
				cr.TotalCount = p.TotalCount
				cr.NullCount = p.NullCount
				cr.DistinctCount = p.DistinctCount
				cr.Samples = p.Samples
			}
			tr.Columns = append(tr.Columns, cr)
		}

		for _, e := range t.ForeignKeys {
			tr.ForeignKeys = append(tr.ForeignKeys, ForeignKeyReport{
				Column:       e.SourceColumn,
				TargetTable:  e.TargetTable,
				TargetColumn: e.TargetColumn,
				Confidence:   e.Confidence,
				Method:       e.Method,
				Deferred:     plan.IsDeferred(e),
				Recursive:    e.Recursive,
			})
		}

		if seedRes != nil {
			tr.Seeding = seedRes.Stats(t.Name)
		}

		if t.PrimaryKey.Synthesized {
			r.Notices = append(r.Notices, fmt.Sprintf(
				"table %s: no column satisfied uniqueness, synthesized key %q", t.Name, t.PrimaryKey.Column))
		}
		r.Tables = append(r.Tables, tr)
	}

	for _, e := range plan.Deferred {
		kind := "cycle break"
		if e.Recursive {
			kind = "self reference"
		}
		r.Notices = append(r.Notices, fmt.Sprintf(
			"%s: edge %s.%s -> %s.%s deferred (confidence %.2f)",
			kind, e.SourceTable, e.SourceColumn, e.TargetTable, e.TargetColumn, e.Confidence))
	}

	return r
}

// JSON renders the machine-readable report.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Markdown renders the human-readable report.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# Schema Normalization Report\n\n")

	fmt.Fprintf(&b, "Seed order: %s\n\n", strings.Join(r.Order, ", "))

	for _, t := range r.Tables {
		fmt.Fprintf(&b, "## %s\n\n", t.Name)
		fmt.Fprintf(&b, "- rows: %d\n", t.Rows)
		pk := t.PrimaryKey
		if t.SynthesizedKey {
			pk += " (synthesized)"
		}
		fmt.Fprintf(&b, "- primary key: %s\n", pk)
		if len(t.PKCandidates) > 0 {
			fmt.Fprintf(&b, "- key candidates: %s\n", strings.Join(t.PKCandidates, ", "))
		}
		b.WriteString("\n| column | type | nullable | nulls | distinct |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, c := range t.Columns {
			fmt.Fprintf(&b, "| %s | %s | %v | %d | %d |\n",
				c.Name, c.Type, c.Nullable, c.NullCount, c.DistinctCount)
		}
		b.WriteString("\n")

		for _, fk := range t.ForeignKeys {
			suffix := ""
			if fk.Deferred {
				suffix = ", deferred"
			}
			fmt.Fprintf(&b, "- FK %s -> %s.%s (confidence %.2f, %s%s)\n",
				fk.Column, fk.TargetTable, fk.TargetColumn, fk.Confidence, fk.Method, suffix)
		}
		if t.Seeding != nil {
			fmt.Fprintf(&b, "- seeding: %d inserted, %d skipped, %d failed\n",
				t.Seeding.RowsInserted, t.Seeding.RowsSkipped, t.Seeding.RowsFailed)
			if t.Seeding.DeferredUnmatched > 0 {
				fmt.Fprintf(&b, "- deferred references unmatched: %d\n", t.Seeding.DeferredUnmatched)
			}
		}
		if len(t.ForeignKeys) > 0 || t.Seeding != nil {
			b.WriteString("\n")
		}
	}

	if len(r.Notices) > 0 {
		b.WriteString("## Notices\n\n")
		for _, n := range r.Notices {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}

	return b.String()
}
