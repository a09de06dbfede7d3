// Package export serializes a schema model into DDL text and audit reports,
// and re-parses its own DDL for round-trip verification.
//
// Output is deterministic: identical models always produce byte-identical
// DDL and report content.
package export

import (
	"fmt"
	"strings"

	"github.com/CodedGrimoire/text2sql-analytics/internal/config"
	"github.com/CodedGrimoire/text2sql-analytics/internal/graph"
	"github.com/CodedGrimoire/text2sql-analytics/internal/model"
)

// Audit column names appended to every table when enabled. They are
// export-time additions, not part of the schema model.
const (
	AuditCreatedAt = "created_at"
	AuditUpdatedAt = "updated_at"
)

// DDL renders the model as a sequence of statements in dependency order:
// CREATE TABLE per table (producer before consumer), CREATE INDEX for every
// foreign-key source column, then ALTER TABLE constraints for deferred
// (cycle-break) edges so sequential execution never forward-references.
func DDL(m *model.SchemaModel, plan graph.Plan, cfg config.Config) string {
	var b strings.Builder

	for _, name := range plan.Order {
		writeCreateTable(&b, m.Table(name), plan, cfg)
		b.WriteString("\n")
	}

	wroteIndex := false
	for _, name := range plan.Order {
		for _, e := range m.Table(name).ForeignKeys {
			fmt.Fprintf(&b, "CREATE INDEX IF NOT EXISTS %s ON %s (%s);\n",
				indexName(e.SourceTable, e.SourceColumn), ident(e.SourceTable), ident(e.SourceColumn))
			wroteIndex = true
		}
	}
	if wroteIndex {
		b.WriteString("\n")
	}

	for _, e := range plan.Deferred {
		fmt.Fprintf(&b, "ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s);\n",
			ident(e.SourceTable), ident(constraintName(e)),
			ident(e.SourceColumn), ident(e.TargetTable), ident(e.TargetColumn))
	}

	return b.String()
}

func writeCreateTable(b *strings.Builder, t *model.TableDefinition, plan graph.Plan, cfg config.Config) {
	fmt.Fprintf(b, "CREATE TABLE IF NOT EXISTS %s (\n", ident(t.Name))

	refs := make(map[string]model.ForeignKeyEdge, len(t.ForeignKeys))
	for _, e := range t.ForeignKeys {
		if !plan.IsDeferred(e) {
			refs[e.SourceColumn] = e
		}
	}

	var lines []string
	for _, c := range t.Columns {
		lines = append(lines, columnDef(t, c, refs))
	}
	if cfg.AddAuditColumns {
		lines = append(lines,
			fmt.Sprintf("    %s TIMESTAMPTZ NOT NULL DEFAULT now()", ident(AuditCreatedAt)),
			fmt.Sprintf("    %s TIMESTAMPTZ NOT NULL DEFAULT now()", ident(AuditUpdatedAt)),
		)
	}

	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n);\n")
}

func columnDef(t *model.TableDefinition, c model.Column, refs map[string]model.ForeignKeyEdge) string {
	var b strings.Builder
	b.WriteString("    ")
	b.WriteString(ident(c.Name))
	b.WriteString(" ")

	isPK := c.Name == t.PrimaryKey.Column
	switch {
	case isPK && t.PrimaryKey.Synthesized:
		b.WriteString("BIGSERIAL PRIMARY KEY")
	case isPK:
		b.WriteString(c.Type.SQL())
		b.WriteString(" PRIMARY KEY")
	default:
		b.WriteString(c.Type.SQL())
		if !c.Nullable {
			b.WriteString(" NOT NULL")
		}
	}

	if e, ok := refs[c.Name]; ok {
		fmt.Fprintf(&b, " REFERENCES %s (%s)", ident(e.TargetTable), ident(e.TargetColumn))
	}
	return b.String()
}

func indexName(table, column string) string {
	return ident("idx_" + table + "_" + column)
}

func constraintName(e model.ForeignKeyEdge) string {
	return "fk_" + e.SourceTable + "_" + e.SourceColumn
}

// ident double-quotes an identifier, escaping embedded quotes.
func ident(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
