package model

import (
	"errors"
	"testing"

	"github.com/CodedGrimoire/text2sql-analytics/internal/config"
	"github.com/CodedGrimoire/text2sql-analytics/internal/infer"
	"github.com/CodedGrimoire/text2sql-analytics/internal/rawtable"
)

func fixtureTables() []rawtable.RawTable {
	customers := rawtable.New("customers", []string{"customerid", "name", "signup"}, [][]string{
		{"1", "Ada", "2024-01-01"},
		{"2", "Brin", ""},
		{"3", "Cora", "2024-02-10"},
	})
	orders := rawtable.New("orders", []string{"orderid", "customerid", "total"}, [][]string{
		{"10", "1", "5.00"},
		{"11", "1", "7.25"},
		{"12", "3", "9.99"},
	})
	return []rawtable.RawTable{customers, orders}
}

//
// Build
//

// TestBuildAssemblesModel verifies the end-to-end assembly: types, keys, and
// the accepted edge all land in the model with invariants intact.
func TestBuildAssemblesModel(t *testing.T) {
	t.Parallel()

	m, err := Build(fixtureTables(), config.Default())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	customers := m.Table("customers")
	if customers == nil {
		t.Fatal("customers missing from model")
	}
	if customers.PrimaryKey.Column != "customerid" || customers.PrimaryKey.Synthesized {
		t.Fatalf("customers pk = %+v, want real customerid", customers.PrimaryKey)
	}
	if c := customers.Column("signup"); c == nil || c.Type.Kind != infer.KindDate || !c.Nullable {
		t.Fatalf("signup = %+v, want nullable DATE", c)
	}
	if c := customers.Column("name"); c == nil || c.Type.Kind != infer.KindVarchar || c.Nullable {
		t.Fatalf("name = %+v, want NOT NULL VARCHAR", c)
	}

	orders := m.Table("orders")
	if c := orders.Column("total"); c == nil || c.Type.Kind != infer.KindNumeric {
		t.Fatalf("total = %+v, want NUMERIC", c)
	}

	if len(m.Edges) != 1 {
		t.Fatalf("edges = %+v, want one", m.Edges)
	}
	e := m.Edges[0]
	if e.SourceTable != "orders" || e.TargetTable != "customers" {
		t.Fatalf("edge = %+v, want orders -> customers", e)
	}
	if len(orders.ForeignKeys) != 1 {
		t.Fatalf("orders.ForeignKeys = %+v, want the accepted edge attached", orders.ForeignKeys)
	}

	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

// TestBuildSynthesizesKey verifies a table with no qualifying column gets a
// surrogate column absent from the raw input, marked synthesized.
func TestBuildSynthesizesKey(t *testing.T) {
	t.Parallel()

	tbl := rawtable.New("events", []string{"kind", "day"}, [][]string{
		{"click", "2024-01-01"},
		{"click", "2024-01-01"},
	})
	m, err := Build([]rawtable.RawTable{tbl}, config.Default())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	def := m.Table("events")
	if !def.PrimaryKey.Synthesized {
		t.Fatal("expected synthesized key")
	}
	pk := def.Column(def.PrimaryKey.Column)
	if pk == nil || !pk.Synthesized || pk.Nullable {
		t.Fatalf("pk column = %+v, want synthesized NOT NULL", pk)
	}
	for _, raw := range tbl.ColumnNames() {
		if raw == pk.Name {
			t.Fatalf("surrogate %q collides with raw column", pk.Name)
		}
	}
}

// TestBuildStructuralErrors verifies zero-column and zero-row tables fail
// fast with the offending table identified.
func TestBuildStructuralErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		table rawtable.RawTable
	}{
		{"zero rows", rawtable.New("empty", []string{"a"}, nil)},
		{"zero columns", rawtable.New("bare", nil, nil)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Build([]rawtable.RawTable{tt.table}, config.Default())
			var se *StructuralError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want *StructuralError", err)
			}
			if se.Table != tt.table.Name {
				t.Fatalf("offending table = %q, want %q", se.Table, tt.table.Name)
			}
		})
	}
}

//
// SchemaModel
//

// TestSchemaModelOrder verifies discovery order survives lookup and re-add.
func TestSchemaModelOrder(t *testing.T) {
	t.Parallel()

	m := NewSchemaModel()
	m.AddTable(&TableDefinition{Name: "b"})
	m.AddTable(&TableDefinition{Name: "a"})
	m.AddTable(&TableDefinition{Name: "b"})

	want := []string{"b", "a"}
	got := m.TableNames()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("TableNames() = %v, want %v", got, want)
	}
}

// TestValidateRejectsBrokenEdges verifies the edge invariants.
func TestValidateRejectsBrokenEdges(t *testing.T) {
	t.Parallel()

	m := NewSchemaModel()
	m.AddTable(&TableDefinition{
		Name:       "a",
		Columns:    []Column{{Name: "id", Type: infer.Integer()}},
		PrimaryKey: PrimaryKey{Column: "id"},
	})
	m.Edges = append(m.Edges, ForeignKeyEdge{
		SourceTable: "a", SourceColumn: "id",
		TargetTable: "ghost", TargetColumn: "id",
	})

	if err := m.Validate(); err == nil {
		t.Fatal("expected validation error for edge to missing table")
	}
}
