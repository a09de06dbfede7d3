// Package mssql implements the storage.RowInserter contract for SQL Server
// via database/sql and the microsoft/go-mssqldb driver.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/CodedGrimoire/text2sql-analytics/internal/storage"
)

// Inserter implements storage.RowInserter for SQL Server.
type Inserter struct {
	db *sql.DB
}

func init() {
	storage.Register("mssql", New)
}

// New opens a SQL Server connection pool for cfg.DSN.
func New(ctx context.Context, cfg storage.Config) (storage.RowInserter, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
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

// ExecDDL executes a DDL script statement by statement, translating the
// Postgres spellings the exporter produces into T-SQL equivalents.
func (r *Inserter) ExecDDL(ctx context.Context, ddl string) error {
	for _, stmt := range splitStatements(ddl) {
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
	b.WriteString(mssqlIdent(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(mssqlIdent(c))
	}
	b.WriteString(") VALUES (")
	for i := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "@p%d", i+1)
	}
	b.WriteString(");")
	return b.String()
}

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

// translateDDL maps Postgres type spellings onto T-SQL ones. The statement
// structure (CREATE TABLE, ALTER TABLE ... ADD CONSTRAINT, CREATE INDEX) is
// shared.
func translateDDL(stmt string) string {
	r := strings.NewReplacer(
		"BIGSERIAL PRIMARY KEY", "BIGINT IDENTITY(1,1) PRIMARY KEY",
		"BIGSERIAL", "BIGINT IDENTITY(1,1)",
		"TIMESTAMPTZ", "DATETIMEOFFSET",
		"DEFAULT now()", "DEFAULT SYSDATETIMEOFFSET()",
		"BOOLEAN", "BIT",
		"CREATE INDEX IF NOT EXISTS", "CREATE INDEX",
		"CREATE TABLE IF NOT EXISTS", "CREATE TABLE",
	)
	return r.Replace(stmt)
}

func mssqlIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}
