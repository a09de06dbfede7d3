// Package sqlite implements the storage.RowInserter contract for SQLite via
// database/sql and the modernc.org driver (pure Go, no cgo).
//
// DDL note: the exported DDL targets Postgres types. SQLite's type affinity
// accepts most of those names (VARCHAR, NUMERIC, DATE all map to affinities),
// but BIGSERIAL, TIMESTAMPTZ defaults, and post-hoc FK constraints need
// rewriting before execution.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/CodedGrimoire/text2sql-analytics/internal/storage"
)

// Inserter implements storage.RowInserter for SQLite.
type Inserter struct {
	db *sql.DB
}

func init() {
	storage.Register("sqlite", New)
}

// New opens (or creates) the SQLite database at cfg.DSN.
func New(ctx context.Context, cfg storage.Config) (storage.RowInserter, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Inserter{db: db}, nil
}

func (r *Inserter) Close() { _ = r.db.Close() }

// ExecDDL executes a DDL script statement by statement. SQLite's Exec only
// runs the first statement of a multi-statement string, so the script is
// split on semicolons first.
//
// Trailing ADD CONSTRAINT statements (the cycle-break edges) are skipped:
// SQLite cannot add a foreign-key constraint to an existing table, and the
// rows on those edges are validated by the seeder's second pass anyway.
func (r *Inserter) ExecDDL(ctx context.Context, ddl string) error {
	for _, stmt := range splitStatements(ddl) {
		if isAddConstraint(stmt) {
			continue
		}
		stmt = translateDDL(stmt)
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec ddl: %w", err)
		}
	}
	return nil
}

// InsertRows inserts rows independently, reporting rejected rows through the
// outcome.
func (r *Inserter) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (storage.InsertOutcome, error) {
	var out storage.InsertOutcome
	if len(rows) == 0 || len(columns) == 0 {
		return out, nil
	}

	q := buildInsertSQL(table, columns)
	for i, row := range rows {
		if len(row) != len(columns) {
			out.FailedRows = append(out.FailedRows, i)
			continue
		}
		if _, err := r.db.ExecContext(ctx, q, row...); err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			out.FailedRows = append(out.FailedRows, i)
			continue
		}
		out.Inserted++
	}
	return out, nil
}

func buildInsertSQL(table string, columns []string) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(sqlIdent(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sqlIdent(c))
	}
	b.WriteString(") VALUES (")
	for i := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("?")
	}
	b.WriteString(");")
	return b.String()
}

// splitStatements breaks a DDL script into statements. Exported DDL never
// embeds semicolons inside literals, so a plain split is sufficient.
func splitStatements(script string) []string {
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

// translateDDL maps the Postgres spellings the exporter emits onto SQLite's.
// now() is not a SQLite function, so the audit-column default becomes
// CURRENT_TIMESTAMP.
func translateDDL(stmt string) string {
	r := strings.NewReplacer(
		"BIGSERIAL PRIMARY KEY", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"BIGSERIAL", "INTEGER",
		"TIMESTAMPTZ NOT NULL DEFAULT now()", "TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP",
		"TIMESTAMPTZ", "TEXT",
	)
	return r.Replace(stmt)
}

// isAddConstraint reports whether a statement adds a table constraint, which
// SQLite's ALTER TABLE grammar does not support.
func isAddConstraint(stmt string) bool {
	return strings.HasPrefix(stmt, "ALTER TABLE ") && strings.Contains(stmt, " ADD CONSTRAINT ")
}

func sqlIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
