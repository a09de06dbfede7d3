package postgres

import "testing"

//
// buildInsertSQL
//

// TestBuildInsertSQL verifies placeholder numbering and identifier quoting.
func TestBuildInsertSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		table   string
		columns []string
		want    string
	}{
		{
			"single column",
			"customers", []string{"customerid"},
			`INSERT INTO "customers" ("customerid") VALUES ($1);`,
		},
		{
			"multiple columns",
			"orders", []string{"orderid", "customerid", "total"},
			`INSERT INTO "orders" ("orderid", "customerid", "total") VALUES ($1, $2, $3);`,
		},
		{
			"embedded quote escaped",
			`we"ird`, []string{"a"},
			`INSERT INTO "we""ird" ("a") VALUES ($1);`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := buildInsertSQL(tt.table, tt.columns); got != tt.want {
				t.Fatalf("buildInsertSQL = %s, want %s", got, tt.want)
			}
		})
	}
}
