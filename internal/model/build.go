package model

import (
	"github.com/CodedGrimoire/text2sql-analytics/internal/config"
	"github.com/CodedGrimoire/text2sql-analytics/internal/detect"
	"github.com/CodedGrimoire/text2sql-analytics/internal/infer"
	"github.com/CodedGrimoire/text2sql-analytics/internal/profile"
	"github.com/CodedGrimoire/text2sql-analytics/internal/rawtable"
)

// Build profiles every table, infers types, detects keys, and assembles the
// schema model.
//
// The only fatal condition is a table with zero columns or zero rows, which
// returns a *StructuralError naming the table. Every other ambiguity resolves
// through the fallback rules (VARCHAR, surrogate keys, dropped FK
// candidates), so a structurally sound input always yields a model.
func Build(tables []rawtable.RawTable, cfg config.Config) (*SchemaModel, error) {
	for _, t := range tables {
		if len(t.Columns) == 0 {
			return nil, &StructuralError{Table: t.Name, Reason: "zero columns"}
		}
		if t.NumRows() == 0 {
			return nil, &StructuralError{Table: t.Name, Reason: "zero rows"}
		}
	}

	profilesByTable := make(map[string][]profile.Profile, len(tables))
	pks := make(map[string]detect.PrimaryKey, len(tables))
	for _, t := range tables {
		profs := profile.Table(t, cfg.ProfileWorkers)
		profilesByTable[t.Name] = profs
		pks[t.Name] = detect.PrimaryKeyFor(t.Name, profs)
	}

	candidates := detect.ForeignKeys(tables, profilesByTable, pks, cfg)

	m := NewSchemaModel()
	for _, t := range tables {
		profs := profilesByTable[t.Name]
		pk := pks[t.Name]

		def := &TableDefinition{
			Name:         t.Name,
			PrimaryKey:   PrimaryKey{Column: pk.Column, Synthesized: pk.Synthesized},
			RowCount:     t.NumRows(),
			Profiles:     profs,
			PKCandidates: pk.Candidates,
		}

		if pk.Synthesized {
			def.Columns = append(def.Columns, Column{
				Name:        pk.Column,
				Type:        infer.Integer(),
				Nullable:    false,
				Synthesized: true,
			})
		}
		for _, p := range profs {
			def.Columns = append(def.Columns, Column{
				Name:     p.Column,
				Type:     infer.Column(p, cfg),
				Nullable: infer.Nullable(p),
			})
		}
		m.AddTable(def)
	}

	for _, c := range candidates {
		edge := ForeignKeyEdge{
			SourceTable:  c.SourceTable,
			SourceColumn: c.SourceColumn,
			TargetTable:  c.TargetTable,
			TargetColumn: c.TargetColumn,
			Confidence:   c.Confidence,
			Method:       c.Method,
			Recursive:    c.SourceTable == c.TargetTable,
		}
		m.Edges = append(m.Edges, edge)
		src := m.Table(c.SourceTable)
		src.ForeignKeys = append(src.ForeignKeys, edge)

		// A referencing column must match the key's type family and, since
		// the key is unique and non-null on the target side, stays whatever
		// nullability the source data showed.
		if tgt := m.Table(c.TargetTable); tgt != nil {
			if tc := tgt.Column(c.TargetColumn); tc != nil {
				if sc := src.Column(c.SourceColumn); sc != nil && sc.Type.Kind == tc.Type.Kind {
					sc.Type = tc.Type
				}
			}
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
