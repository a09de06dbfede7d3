// Package postgres implements the storage.RowInserter contract on top of a
// pgx connection pool.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CodedGrimoire/text2sql-analytics/internal/storage"
)

// Inserter implements storage.RowInserter for Postgres.
type Inserter struct {
	pool *pgxpool.Pool
}

// New creates a Postgres-backed inserter.
func New(ctx context.Context, cfg storage.Config) (storage.RowInserter, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Inserter{pool: pool}, nil
}

// Close closes the connection pool.
func (r *Inserter) Close() {
	r.pool.Close()
}

// ExecDDL executes a DDL script. The exported DDL is a semicolon-separated
// sequence of statements; pgx's simple protocol runs them in one call.
func (r *Inserter) ExecDDL(ctx context.Context, ddl string) error {
	if strings.TrimSpace(ddl) == "" {
		return nil
	}
	if _, err := r.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("exec ddl: %w", err)
	}
	return nil
}

// InsertRows inserts rows one statement at a time so each row succeeds or
// fails independently, which is what the per-row outcome contract requires.
// A rejected row is recorded in the outcome; only infrastructure failures
// (bad SQL, lost connection) surface as the error.
func (r *Inserter) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (storage.InsertOutcome, error) {
	var out storage.InsertOutcome
	if len(rows) == 0 || len(columns) == 0 {
		return out, nil
	}

	sql := buildInsertSQL(table, columns)
	for i, row := range rows {
		if len(row) != len(columns) {
			out.FailedRows = append(out.FailedRows, i)
			continue
		}
		if _, err := r.pool.Exec(ctx, sql, row...); err != nil {
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

// buildInsertSQL constructs a single-row INSERT statement. It is pure and
// deterministic so placeholder numbering and quoting are unit-testable
// without a database.
func buildInsertSQL(table string, columns []string) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(pgIdent(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgIdent(c))
	}
	b.WriteString(") VALUES (")
	for i := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "$%d", i+1)
	}
	b.WriteString(");")
	return b.String()
}

// pgIdent double-quotes an identifier, escaping embedded quotes.
func pgIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
