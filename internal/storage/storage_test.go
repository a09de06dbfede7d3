package storage

import (
	"context"
	"strings"
	"testing"
)

type nopInserter struct{}

func (nopInserter) Close()                                {}
func (nopInserter) ExecDDL(context.Context, string) error { return nil }
func (nopInserter) InsertRows(context.Context, string, []string, [][]any) (InsertOutcome, error) {
	return InsertOutcome{}, nil
}

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s: expected panic", name)
		}
	}()
	fn()
}

//
// registry
//

// TestRegisterAndNew verifies the factory round trip and the error for an
// unknown kind.
func TestRegisterAndNew(t *testing.T) {
	Register("test-fake", func(context.Context, Config) (RowInserter, error) {
		return nopInserter{}, nil
	})

	ins, err := New(context.Background(), Config{Kind: "test-fake"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := ins.(nopInserter); !ok {
		t.Fatalf("New returned %T, want nopInserter", ins)
	}

	if _, err := New(context.Background(), Config{Kind: "ghost"}); err == nil ||
		!strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("err = %v, want unsupported kind", err)
	}
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for missing kind")
	}
}

// TestRegisterRejectsMisuse verifies duplicate, empty, and nil registrations
// panic so wiring mistakes surface at startup.
func TestRegisterRejectsMisuse(t *testing.T) {
	Register("test-dup", func(context.Context, Config) (RowInserter, error) {
		return nopInserter{}, nil
	})

	mustPanic(t, "duplicate kind", func() {
		Register("test-dup", func(context.Context, Config) (RowInserter, error) {
			return nopInserter{}, nil
		})
	})
	mustPanic(t, "empty kind", func() {
		Register("", func(context.Context, Config) (RowInserter, error) {
			return nopInserter{}, nil
		})
	})
	mustPanic(t, "nil factory", func() {
		Register("test-nil", nil)
	})
}

// TestKindsSorted verifies Kinds reports registrations in stable order.
func TestKindsSorted(t *testing.T) {
	Register("test-zz", func(context.Context, Config) (RowInserter, error) {
		return nopInserter{}, nil
	})
	Register("test-aa", func(context.Context, Config) (RowInserter, error) {
		return nopInserter{}, nil
	})

	kinds := Kinds()
	for i := 1; i < len(kinds); i++ {
		if kinds[i-1] >= kinds[i] {
			t.Fatalf("Kinds() = %v, want strictly ascending", kinds)
		}
	}
}
