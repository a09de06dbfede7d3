package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/CodedGrimoire/text2sql-analytics/internal/infer"
	"github.com/CodedGrimoire/text2sql-analytics/internal/model"
)

// ParseDDL reads DDL produced by this package back into a schema model, used
// to verify that exporting loses no structural information.
//
// Only structure survives a round trip: column types, nullability, primary
// keys, and foreign-key endpoints. Confidence scores, detection methods, and
// profiles are not representable in DDL; parsed edges carry confidence 1 and
// method "ddl". Audit columns and indexes are export-time artifacts and are
// skipped.
func ParseDDL(ddl string) (*model.SchemaModel, error) {
	m := model.NewSchemaModel()

	for _, stmt := range statements(ddl) {
		switch {
		case strings.HasPrefix(stmt, "CREATE TABLE"):
			if err := parseCreateTable(m, stmt); err != nil {
				return nil, err
			}
		case strings.HasPrefix(stmt, "ALTER TABLE"):
			if err := parseAlterTable(m, stmt); err != nil {
				return nil, err
			}
		case strings.HasPrefix(stmt, "CREATE INDEX"):
			// Derived artifact; nothing to reconstruct.
		default:
			return nil, fmt.Errorf("parse ddl: unrecognized statement %q", firstLine(stmt))
		}
	}

	return m, nil
}

func parseCreateTable(m *model.SchemaModel, stmt string) error {
	open := strings.Index(stmt, "(")
	closeIdx := strings.LastIndex(stmt, ")")
	if open < 0 || closeIdx < open {
		return fmt.Errorf("parse ddl: malformed CREATE TABLE %q", firstLine(stmt))
	}

	name, err := unquote(strings.TrimSpace(strings.TrimPrefix(stmt[:open], "CREATE TABLE IF NOT EXISTS")))
	if err != nil {
		return fmt.Errorf("parse ddl: table name: %w", err)
	}

	def := &model.TableDefinition{Name: name}
	for _, line := range strings.Split(stmt[open+1:closeIdx], ",\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, ","))
		if line == "" {
			continue
		}
		if err := parseColumnLine(m, def, line); err != nil {
			return fmt.Errorf("parse ddl: table %s: %w", name, err)
		}
	}

	m.AddTable(def)
	return nil
}

func parseColumnLine(m *model.SchemaModel, def *model.TableDefinition, line string) error {
	colName, rest, err := splitIdent(line)
	if err != nil {
		return err
	}
	if colName == AuditCreatedAt || colName == AuditUpdatedAt {
		return nil
	}

	col := model.Column{Name: colName, Nullable: true}

	if strings.HasPrefix(rest, "BIGSERIAL PRIMARY KEY") {
		col.Type = infer.Integer()
		col.Nullable = false
		col.Synthesized = true
		def.PrimaryKey = model.PrimaryKey{Column: colName, Synthesized: true}
		def.Columns = append(def.Columns, col)
		return nil
	}

	typ, rest, err := parseType(rest)
	if err != nil {
		return fmt.Errorf("column %s: %w", colName, err)
	}
	col.Type = typ

	if strings.HasPrefix(rest, "PRIMARY KEY") {
		col.Nullable = false
		def.PrimaryKey = model.PrimaryKey{Column: colName}
		rest = strings.TrimSpace(strings.TrimPrefix(rest, "PRIMARY KEY"))
	}
	if strings.HasPrefix(rest, "NOT NULL") {
		col.Nullable = false
		rest = strings.TrimSpace(strings.TrimPrefix(rest, "NOT NULL"))
	}

	if strings.HasPrefix(rest, "REFERENCES") {
		tgtTable, tgtCol, err := parseReference(strings.TrimPrefix(rest, "REFERENCES"))
		if err != nil {
			return fmt.Errorf("column %s: %w", colName, err)
		}
		edge := model.ForeignKeyEdge{
			SourceTable:  def.Name,
			SourceColumn: colName,
			TargetTable:  tgtTable,
			TargetColumn: tgtCol,
			Confidence:   1,
			Method:       "ddl",
			Recursive:    tgtTable == def.Name,
		}
		def.ForeignKeys = append(def.ForeignKeys, edge)
		m.Edges = append(m.Edges, edge)
	}

	def.Columns = append(def.Columns, col)
	return nil
}

func parseAlterTable(m *model.SchemaModel, stmt string) error {
	rest := strings.TrimSpace(strings.TrimPrefix(stmt, "ALTER TABLE"))
	srcTable, rest, err := splitIdent(rest)
	if err != nil {
		return fmt.Errorf("parse ddl: alter table: %w", err)
	}

	i := strings.Index(rest, "FOREIGN KEY")
	if i < 0 {
		return fmt.Errorf("parse ddl: unsupported ALTER TABLE %q", firstLine(stmt))
	}
	rest = strings.TrimSpace(rest[i+len("FOREIGN KEY"):])

	srcCol, rest, err := parseParenIdent(rest)
	if err != nil {
		return fmt.Errorf("parse ddl: alter table %s: %w", srcTable, err)
	}
	tgtTable, tgtCol, err := parseReference(strings.TrimPrefix(strings.TrimSpace(rest), "REFERENCES"))
	if err != nil {
		return fmt.Errorf("parse ddl: alter table %s: %w", srcTable, err)
	}

	edge := model.ForeignKeyEdge{
		SourceTable:  srcTable,
		SourceColumn: srcCol,
		TargetTable:  tgtTable,
		TargetColumn: tgtCol,
		Confidence:   1,
		Method:       "ddl",
		Recursive:    srcTable == tgtTable,
	}
	def := m.Table(srcTable)
	if def == nil {
		return fmt.Errorf("parse ddl: alter table references unknown table %s", srcTable)
	}
	def.ForeignKeys = append(def.ForeignKeys, edge)
	m.Edges = append(m.Edges, edge)
	return nil
}

// parseType consumes one type spelling from the front of s.
func parseType(s string) (infer.ColumnType, string, error) {
	switch {
	case strings.HasPrefix(s, "INTEGER"):
		return infer.Integer(), strings.TrimSpace(strings.TrimPrefix(s, "INTEGER")), nil
	case strings.HasPrefix(s, "BOOLEAN"):
		return infer.Boolean(), strings.TrimSpace(strings.TrimPrefix(s, "BOOLEAN")), nil
	case strings.HasPrefix(s, "DATE"):
		return infer.Date(), strings.TrimSpace(strings.TrimPrefix(s, "DATE")), nil
	case strings.HasPrefix(s, "NUMERIC("):
		body, rest, err := parenBody(strings.TrimPrefix(s, "NUMERIC"))
		if err != nil {
			return infer.ColumnType{}, "", err
		}
		parts := strings.SplitN(body, ",", 2)
		if len(parts) != 2 {
			return infer.ColumnType{}, "", fmt.Errorf("malformed NUMERIC(%s)", body)
		}
		p, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		sc, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil {
			return infer.ColumnType{}, "", fmt.Errorf("malformed NUMERIC(%s)", body)
		}
		return infer.Numeric(p, sc), rest, nil
	case strings.HasPrefix(s, "VARCHAR("):
		body, rest, err := parenBody(strings.TrimPrefix(s, "VARCHAR"))
		if err != nil {
			return infer.ColumnType{}, "", err
		}
		n, err := strconv.Atoi(strings.TrimSpace(body))
		if err != nil {
			return infer.ColumnType{}, "", fmt.Errorf("malformed VARCHAR(%s)", body)
		}
		return infer.Varchar(n), rest, nil
	default:
		return infer.ColumnType{}, "", fmt.Errorf("unknown type in %q", s)
	}
}

// parseReference parses `"table" ("column")`.
func parseReference(s string) (table, column string, err error) {
	table, rest, err := splitIdent(strings.TrimSpace(s))
	if err != nil {
		return "", "", err
	}
	column, _, err = parseParenIdent(rest)
	return table, column, err
}

// parseParenIdent parses `("ident")` from the front of s.
func parseParenIdent(s string) (string, string, error) {
	body, rest, err := parenBody(strings.TrimSpace(s))
	if err != nil {
		return "", "", err
	}
	id, err := unquote(strings.TrimSpace(body))
	return id, rest, err
}

// parenBody consumes a parenthesized group from the front of s.
func parenBody(s string) (body, rest string, err error) {
	if !strings.HasPrefix(s, "(") {
		return "", "", fmt.Errorf("expected ( in %q", s)
	}
	end := strings.Index(s, ")")
	if end < 0 {
		return "", "", fmt.Errorf("unterminated ( in %q", s)
	}
	return s[1:end], strings.TrimSpace(s[end+1:]), nil
}

// splitIdent consumes one quoted identifier from the front of s.
func splitIdent(s string) (string, string, error) {
	if !strings.HasPrefix(s, `"`) {
		return "", "", fmt.Errorf("expected quoted identifier in %q", firstLine(s))
	}
	end := strings.Index(s[1:], `"`)
	if end < 0 {
		return "", "", fmt.Errorf("unterminated identifier in %q", firstLine(s))
	}
	return s[1 : 1+end], strings.TrimSpace(s[2+end:]), nil
}

func unquote(s string) (string, error) {
	if len(s) < 2 || !strings.HasPrefix(s, `"`) || !strings.HasSuffix(s, `"`) {
		return "", fmt.Errorf("expected quoted identifier, got %q", s)
	}
	return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`), nil
}

// statements splits a script on terminating semicolons.
func statements(script string) []string {
	parts := strings.Split(script, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
