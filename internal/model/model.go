// Package model defines the normalized schema produced by a pipeline run and
// the builder that assembles it.
//
// A SchemaModel is built once per run, then treated as read-only: the
// exporter, seeder, and report all consume the same immutable view. Tables
// keep their discovery order so exports are stable across runs.
package model

import (
	"fmt"

	"github.com/CodedGrimoire/text2sql-analytics/internal/infer"
	"github.com/CodedGrimoire/text2sql-analytics/internal/profile"
)

// Column is one typed column of a table definition.
type Column struct {
	Name     string
	Type     infer.ColumnType
	Nullable bool

	// Synthesized marks columns absent from the raw input (surrogate keys,
	// audit columns added at export time are not part of the model).
	Synthesized bool
}

// PrimaryKey identifies the key column of a table. Synthesized keys are
// auto-incrementing integers absent from the raw data.
type PrimaryKey struct {
	Column      string
	Synthesized bool
}

// Detection methods recorded on foreign-key edges.
const (
	MethodValueOverlap = "value_overlap"
	MethodNameMatch    = "name_match"
)

// ForeignKeyEdge is one accepted reference from a source column to the
// primary key of a target table.
type ForeignKeyEdge struct {
	SourceTable  string
	SourceColumn string
	TargetTable  string
	TargetColumn string

	// Confidence is in [0,1]; edges below the acceptance threshold are never
	// present in the model.
	Confidence float64

	// Method names the heuristic that produced the edge.
	Method string

	// Recursive marks self-referencing edges (source table == target table).
	Recursive bool
}

// TableDefinition is the normalized definition of one table.
type TableDefinition struct {
	Name       string
	Columns    []Column
	PrimaryKey PrimaryKey

	// ForeignKeys are the edges whose source is this table.
	ForeignKeys []ForeignKeyEdge

	// RowCount is the number of raw rows observed.
	RowCount int

	// Profiles are retained for the decision report, aligned with the
	// original (non-synthesized) columns.
	Profiles []profile.Profile

	// PKCandidates lists every column that qualified for the primary key,
	// for the decision report.
	PKCandidates []string
}

// Column returns the named column definition, or nil.
func (t *TableDefinition) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// SchemaModel maps table names to definitions, preserving discovery order.
type SchemaModel struct {
	order  []string
	tables map[string]*TableDefinition

	// Edges is the full accepted foreign-key set, for dependency analysis.
	Edges []ForeignKeyEdge
}

// NewSchemaModel returns an empty model.
func NewSchemaModel() *SchemaModel {
	return &SchemaModel{tables: make(map[string]*TableDefinition)}
}

// AddTable appends a table definition. Re-adding a name replaces the
// definition but keeps its original position.
func (m *SchemaModel) AddTable(t *TableDefinition) {
	if _, ok := m.tables[t.Name]; !ok {
		m.order = append(m.order, t.Name)
	}
	m.tables[t.Name] = t
}

// Table returns the named definition, or nil.
func (m *SchemaModel) Table(name string) *TableDefinition {
	return m.tables[name]
}

// TableNames returns table names in discovery order.
func (m *SchemaModel) TableNames() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Tables returns definitions in discovery order.
func (m *SchemaModel) Tables() []*TableDefinition {
	out := make([]*TableDefinition, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.tables[name])
	}
	return out
}

// NumTables returns the table count.
func (m *SchemaModel) NumTables() int { return len(m.order) }

// Validate checks the model's structural invariants: every table has exactly
// one primary key whose column exists and is non-nullable, and every edge
// references an existing table's primary key.
func (m *SchemaModel) Validate() error {
	for _, t := range m.Tables() {
		pk := t.Column(t.PrimaryKey.Column)
		if pk == nil {
			return fmt.Errorf("table %s: primary key column %q not defined", t.Name, t.PrimaryKey.Column)
		}
		if pk.Nullable {
			return fmt.Errorf("table %s: primary key column %q is nullable", t.Name, pk.Name)
		}
	}
	for _, e := range m.Edges {
		src := m.Table(e.SourceTable)
		if src == nil || src.Column(e.SourceColumn) == nil {
			return fmt.Errorf("edge %s.%s: source column not defined", e.SourceTable, e.SourceColumn)
		}
		tgt := m.Table(e.TargetTable)
		if tgt == nil {
			return fmt.Errorf("edge %s.%s: target table %s not defined", e.SourceTable, e.SourceColumn, e.TargetTable)
		}
		if tgt.PrimaryKey.Column != e.TargetColumn {
			return fmt.Errorf("edge %s.%s: target column %s.%s is not the primary key",
				e.SourceTable, e.SourceColumn, e.TargetTable, e.TargetColumn)
		}
	}
	return nil
}

// StructuralError is the only fatal input condition: a table with zero
// columns or zero rows.
type StructuralError struct {
	Table  string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error in table %s: %s", e.Table, e.Reason)
}
