// Package storage defines the backend-agnostic execution interface the
// seeder drives, plus the factory registry backends register into.
//
// The core never opens connections itself: cmd wiring constructs a
// RowInserter via New and injects it. Each backend implements the contract in
// its own idiom (pgx pools, database/sql, driver-specific placeholders).
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Config selects and configures a backend.
type Config struct {
	// Kind must match a registered backend kind ("postgres", "sqlite",
	// "mssql").
	Kind string

	// DSN is passed through to the backend factory; validation is
	// backend-specific.
	DSN string
}

// InsertOutcome reports per-row results of one InsertRows call.
type InsertOutcome struct {
	// Inserted is the number of rows accepted.
	Inserted int

	// FailedRows holds the indexes (into the rows argument) of rows the
	// backend rejected.
	FailedRows []int
}

// RowInserter executes DDL and inserts rows on behalf of the seeder.
//
// InsertRows must attempt every row and report per-row failures through the
// outcome rather than aborting the batch; the returned error is reserved for
// conditions that make the whole call unusable (connection loss, bad SQL).
type RowInserter interface {
	Close()
	ExecDDL(ctx context.Context, ddl string) error
	InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (InsertOutcome, error)
}

type factory func(ctx context.Context, cfg Config) (RowInserter, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend factory under a kind. Call from an init()
// function in the backend package. Registering the same kind twice panics so
// ambiguous backend selection fails fast.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// New constructs a RowInserter using the registered factory for cfg.Kind.
func New(ctx context.Context, cfg Config) (RowInserter, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("unsupported storage kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// Kinds returns the registered backend kinds, for CLI help text.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
