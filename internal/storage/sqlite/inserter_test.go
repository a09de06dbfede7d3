package sqlite

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/CodedGrimoire/text2sql-analytics/internal/config"
	"github.com/CodedGrimoire/text2sql-analytics/internal/export"
	"github.com/CodedGrimoire/text2sql-analytics/internal/graph"
	"github.com/CodedGrimoire/text2sql-analytics/internal/model"
	"github.com/CodedGrimoire/text2sql-analytics/internal/rawtable"
	"github.com/CodedGrimoire/text2sql-analytics/internal/storage"
)

func openMemory(t *testing.T) storage.RowInserter {
	t.Helper()
	ins, err := New(context.Background(), storage.Config{Kind: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(ins.Close)
	return ins
}

func exportedDDL(t *testing.T, cfg config.Config, tables []rawtable.RawTable) string {
	t.Helper()
	m, err := model.Build(tables, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return export.DDL(m, graph.BuildPlan(m), cfg)
}

//
// SQL helpers
//

// TestBuildInsertSQL verifies ?-placeholders and identifier quoting.
func TestBuildInsertSQL(t *testing.T) {
	t.Parallel()

	got := buildInsertSQL("orders", []string{"orderid", "total"})
	want := `INSERT INTO "orders" ("orderid", "total") VALUES (?, ?);`
	if got != want {
		t.Fatalf("buildInsertSQL = %s, want %s", got, want)
	}
}

// TestSplitStatements verifies blank fragments are dropped.
func TestSplitStatements(t *testing.T) {
	t.Parallel()

	script := "CREATE TABLE a (x INTEGER);\n\nCREATE INDEX i ON a (x);\n"
	want := []string{"CREATE TABLE a (x INTEGER)", "CREATE INDEX i ON a (x)"}
	if got := splitStatements(script); !reflect.DeepEqual(got, want) {
		t.Fatalf("splitStatements = %v, want %v", got, want)
	}
}

// TestTranslateDDL verifies every Postgres spelling the exporter emits has a
// SQLite mapping.
func TestTranslateDDL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"surrogate key",
			`CREATE TABLE "t" ("id" BIGSERIAL PRIMARY KEY, "name" VARCHAR(50) NOT NULL)`,
			`CREATE TABLE "t" ("id" INTEGER PRIMARY KEY AUTOINCREMENT, "name" VARCHAR(50) NOT NULL)`,
		},
		{
			"audit columns",
			`"created_at" TIMESTAMPTZ NOT NULL DEFAULT now()`,
			`"created_at" TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP`,
		},
		{
			"bare timestamptz",
			`"seen" TIMESTAMPTZ`,
			`"seen" TEXT`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := translateDDL(tt.in); got != tt.want {
				t.Fatalf("translateDDL = %s, want %s", got, tt.want)
			}
		})
	}
}

//
// ExecDDL against the real driver
//

// TestExecDDLRunsExportedScript verifies the exporter's stock output (audit
// columns included) executes on an in-memory database and accepts rows.
func TestExecDDLRunsExportedScript(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	customers := rawtable.New("customers", []string{"customerid", "name"}, [][]string{
		{"1", "Ada"},
		{"2", "Brin"},
	})
	orders := rawtable.New("orders", []string{"orderid", "customerid", "total"}, [][]string{
		{"10", "1", "5.00"},
		{"11", "2", "7.25"},
	})
	ddl := exportedDDL(t, cfg, []rawtable.RawTable{customers, orders})
	if !strings.Contains(ddl, "DEFAULT now()") {
		t.Fatalf("fixture DDL lost its audit default:\n%s", ddl)
	}

	ins := openMemory(t)
	if err := ins.ExecDDL(context.Background(), ddl); err != nil {
		t.Fatalf("ExecDDL: %v", err)
	}

	out, err := ins.InsertRows(context.Background(), "customers",
		[]string{"customerid", "name"}, [][]any{{int64(1), "Ada"}, {int64(2), "Brin"}})
	if err != nil {
		t.Fatalf("InsertRows: %v", err)
	}
	if out.Inserted != 2 || len(out.FailedRows) != 0 {
		t.Fatalf("outcome = %+v, want 2 clean inserts", out)
	}
}

// TestExecDDLSkipsDeferredConstraints verifies a cyclic schema's trailing
// ALTER TABLE constraints do not fail execution.
func TestExecDDLSkipsDeferredConstraints(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	departments := rawtable.New("departments", []string{"department_id", "employee_id"}, [][]string{
		{"1", "10"},
		{"2", "11"},
	})
	employees := rawtable.New("employees", []string{"employee_id", "department_id"}, [][]string{
		{"10", "1"},
		{"11", "2"},
		{"12", "1"},
	})
	ddl := exportedDDL(t, cfg, []rawtable.RawTable{departments, employees})
	if !strings.Contains(ddl, "ADD CONSTRAINT") {
		t.Fatalf("fixture DDL lost its deferred constraint:\n%s", ddl)
	}

	ins := openMemory(t)
	if err := ins.ExecDDL(context.Background(), ddl); err != nil {
		t.Fatalf("ExecDDL: %v", err)
	}

	out, err := ins.InsertRows(context.Background(), "departments",
		[]string{"department_id", "employee_id"}, [][]any{{int64(1), int64(10)}})
	if err != nil {
		t.Fatalf("InsertRows: %v", err)
	}
	if out.Inserted != 1 {
		t.Fatalf("outcome = %+v, want 1 insert", out)
	}
}
