// Package seed loads raw rows into a database in dependency order.
//
// The seeder walks the topological plan level by level: tables within one
// level share no accepted edges, so they are seeded concurrently by a bounded
// worker pool, while a barrier between levels guarantees every parent row
// exists before any child row referencing it is attempted. Rows whose
// foreign-key value has no inserted parent are skipped and counted, never
// inserted out of order; rows on deferred (cycle-break) edges are the single
// exception and are validated in a second pass instead.
package seed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/CodedGrimoire/text2sql-analytics/internal/config"
	"github.com/CodedGrimoire/text2sql-analytics/internal/graph"
	"github.com/CodedGrimoire/text2sql-analytics/internal/infer"
	"github.com/CodedGrimoire/text2sql-analytics/internal/metrics"
	"github.com/CodedGrimoire/text2sql-analytics/internal/model"
	"github.com/CodedGrimoire/text2sql-analytics/internal/profile"
	"github.com/CodedGrimoire/text2sql-analytics/internal/rawtable"
	"github.com/CodedGrimoire/text2sql-analytics/internal/storage"
)

// Logger is the minimal logging seam. A nil Logger discards output.
type Logger interface {
	Printf(format string, v ...any)
}

// TableStats reports the outcome of seeding one table.
type TableStats struct {
	Table        string `json:"table"`
	RowsInserted int    `json:"rows_inserted"`

	// RowsSkipped counts rows dropped before insert because a declared
	// foreign-key value had no inserted parent row.
	RowsSkipped int `json:"rows_skipped"`

	// RowsFailed counts rows the backend rejected.
	RowsFailed int `json:"rows_failed"`

	// DeferredUnmatched counts rows whose deferred-edge reference matched no
	// parent value after all tables were loaded.
	DeferredUnmatched int `json:"deferred_unmatched,omitempty"`
}

// Result is the outcome of one seeding run.
type Result struct {
	Order    []string               `json:"order"`
	Deferred []model.ForeignKeyEdge `json:"deferred,omitempty"`
	Tables   []TableStats           `json:"tables"`
}

// Stats returns the stats entry for a table, or nil.
func (r *Result) Stats(table string) *TableStats {
	for i := range r.Tables {
		if r.Tables[i].Table == table {
			return &r.Tables[i]
		}
	}
	return nil
}

// TableError is returned when a table's row failures exceed the configured
// rate. It aborts the run for that table.
type TableError struct {
	Table  string
	Failed int
	Total  int
	Rate   float64
}

func (e *TableError) Error() string {
	return fmt.Sprintf("seed table %s: %d of %d rows failed (rate %.2f exceeds threshold)",
		e.Table, e.Failed, e.Total, e.Rate)
}

// Seeder drives row loading through an injected inserter. The zero value is
// unusable; populate Inserter and Config.
type Seeder struct {
	Inserter storage.RowInserter
	Config   config.Config

	// Logger and Metrics are optional; nil means discard.
	Logger  Logger
	Metrics metrics.Backend
}

func (s *Seeder) logf(format string, v ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, v...)
	}
}

// Run seeds every table of the model in plan order.
//
// The returned Result is valid even when err is non-nil: it holds the stats
// of every table that completed before the failure.
func (s *Seeder) Run(ctx context.Context, m *model.SchemaModel, raws []rawtable.RawTable, plan graph.Plan) (*Result, error) {
	start := time.Now()
	met := metrics.OrNop(s.Metrics)

	rawByName := make(map[string]rawtable.RawTable, len(raws))
	for _, t := range raws {
		rawByName[t.Name] = t
	}

	res := &Result{Order: plan.Order, Deferred: plan.Deferred}

	// keySets accumulates the raw primary-key values of successfully inserted
	// rows, per table. Children consult it to skip orphan rows.
	keys := &keyTracker{sets: make(map[string]map[string]struct{}, m.NumTables())}

	workers := s.Config.SeedWorkers
	if workers < 1 {
		workers = 1
	}

	for _, level := range plan.Levels {
		levelCtx, cancel := context.WithCancelCause(ctx)

		sem := make(chan struct{}, workers)
		statsCh := make(chan TableStats, len(level))
		var wg sync.WaitGroup

		for _, name := range level {
			def := m.Table(name)
			raw, ok := rawByName[name]
			if !ok {
				cancel(nil)
				return res, fmt.Errorf("seed: no raw data for table %s", name)
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-levelCtx.Done():
					return
				}

				stats, err := s.seedTable(levelCtx, def, raw, plan, keys)
				if err != nil {
					cancel(err)
					return
				}
				statsCh <- stats
			}()
		}
		wg.Wait()
		close(statsCh)

		byName := make(map[string]TableStats, len(level))
		for st := range statsCh {
			byName[st.Table] = st
		}
		// Level output is appended in plan order, not completion order.
		for _, name := range level {
			if st, ok := byName[name]; ok {
				res.Tables = append(res.Tables, st)
			}
		}

		err := context.Cause(levelCtx)
		cancel(nil)
		if err != nil {
			return res, err
		}
	}

	s.validateDeferred(m, rawByName, plan, keys, res)

	met.ObserveHistogram(metrics.MetricStageDuration, time.Since(start).Seconds(), metrics.Labels{"stage": "seed"})
	s.logf("stage=seed status=done tables=%d duration=%s", len(res.Tables), time.Since(start).Round(time.Millisecond))
	return res, nil
}

// seedTable loads one table's rows in batches.
func (s *Seeder) seedTable(ctx context.Context, def *model.TableDefinition, raw rawtable.RawTable, plan graph.Plan, keys *keyTracker) (TableStats, error) {
	stats := TableStats{Table: def.Name}
	met := metrics.OrNop(s.Metrics)

	// Synthesized keys are backend-generated; only raw columns are inserted.
	cols := make([]model.Column, 0, len(def.Columns))
	names := make([]string, 0, len(def.Columns))
	for _, c := range def.Columns {
		if c.Synthesized {
			continue
		}
		cols = append(cols, c)
		names = append(names, c.Name)
	}

	// Enforced edges require the parent value set; deferred edges skip the
	// check and are validated after the run.
	type check struct {
		colIdx int
		parent map[string]struct{}
	}
	var checks []check
	for _, e := range def.ForeignKeys {
		if plan.IsDeferred(e) {
			continue
		}
		idx := indexOf(names, e.SourceColumn)
		if idx < 0 {
			continue
		}
		checks = append(checks, check{colIdx: idx, parent: keys.get(e.TargetTable)})
	}

	pkIdx := -1
	if !def.PrimaryKey.Synthesized {
		pkIdx = indexOf(names, def.PrimaryKey.Column)
	}
	inserted := make([]string, 0, raw.NumRows())

	batchSize := s.Config.SeedBatchSize
	if batchSize < 1 {
		batchSize = 1
	}
	batch := make([][]any, 0, batchSize)
	batchKeys := make([]string, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		out, err := s.Inserter.InsertRows(ctx, def.Name, names, batch)
		if err != nil {
			return fmt.Errorf("seed table %s: %w", def.Name, err)
		}
		stats.RowsInserted += out.Inserted
		stats.RowsFailed += len(out.FailedRows)

		failed := make(map[int]struct{}, len(out.FailedRows))
		for _, i := range out.FailedRows {
			failed[i] = struct{}{}
		}
		for i, k := range batchKeys {
			if _, bad := failed[i]; !bad && k != "" {
				inserted = append(inserted, k)
			}
		}
		batch = batch[:0]
		batchKeys = batchKeys[:0]
		return nil
	}

	colByName := make(map[string]*rawtable.RawColumn, len(names))
	for i := range raw.Columns {
		colByName[raw.Columns[i].Name] = &raw.Columns[i]
	}

	total := raw.NumRows()
rows:
	for r := 0; r < total; r++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		row := make([]any, len(cols))
		for c, col := range cols {
			rc := colByName[col.Name]
			if rc == nil {
				row[c] = nil
				continue
			}
			row[c] = convertValue(rc.Values[r], col.Type)
		}

		for _, ck := range checks {
			if row[ck.colIdx] == nil {
				continue
			}
			if _, ok := ck.parent[rawKey(row[ck.colIdx])]; !ok {
				stats.RowsSkipped++
				continue rows
			}
		}

		var pkVal string
		if pkIdx >= 0 {
			pkVal = rawKey(row[pkIdx])
		}
		batch = append(batch, row)
		batchKeys = append(batchKeys, pkVal)

		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := flush(); err != nil {
		return stats, err
	}

	if pkIdx >= 0 {
		keys.put(def.Name, inserted)
	}

	met.IncCounter(metrics.MetricRowsInserted, float64(stats.RowsInserted), metrics.Labels{"table": def.Name})
	met.IncCounter(metrics.MetricRowsSkipped, float64(stats.RowsSkipped), metrics.Labels{"table": def.Name})
	met.IncCounter(metrics.MetricRowsFailed, float64(stats.RowsFailed), metrics.Labels{"table": def.Name})
	met.IncCounter(metrics.MetricTablesSeeded, 1, metrics.Labels{"table": def.Name})
	s.logf("stage=seed table=%s inserted=%d skipped=%d failed=%d",
		def.Name, stats.RowsInserted, stats.RowsSkipped, stats.RowsFailed)

	if total > 0 {
		bad := stats.RowsSkipped + stats.RowsFailed
		if rate := float64(bad) / float64(total); rate > s.Config.MaxRowFailureRate {
			return stats, &TableError{Table: def.Name, Failed: bad, Total: total, Rate: rate}
		}
	}
	return stats, nil
}

// validateDeferred counts, per deferred edge, source values that matched no
// inserted parent row. Reported, never fatal.
func (s *Seeder) validateDeferred(m *model.SchemaModel, raws map[string]rawtable.RawTable, plan graph.Plan, keys *keyTracker, res *Result) {
	for _, e := range plan.Deferred {
		raw, ok := raws[e.SourceTable]
		if !ok {
			continue
		}
		parent := keys.get(e.TargetTable)
		var colType infer.ColumnType
		if def := m.Table(e.SourceTable); def != nil {
			if c := def.Column(e.SourceColumn); c != nil {
				colType = c.Type
			}
		}
		unmatched := 0
		for v := range profile.ValueSet(raw.Column(e.SourceColumn)) {
			if _, ok := parent[rawKey(convertValue(v, colType))]; !ok {
				unmatched++
			}
		}
		if unmatched > 0 {
			if st := res.Stats(e.SourceTable); st != nil {
				st.DeferredUnmatched += unmatched
			}
			s.logf("stage=seed table=%s deferred_edge=%s.%s->%s.%s unmatched=%d",
				e.SourceTable, e.SourceTable, e.SourceColumn, e.TargetTable, e.TargetColumn, unmatched)
		}
	}
}

// convertValue maps a raw string onto the Go value for its column type.
// Values that fail their type's parse fall back to the raw string so the
// backend decides; blanks become NULL.
func convertValue(v string, t infer.ColumnType) any {
	if rawtable.IsNull(v) {
		return nil
	}
	switch t.Kind {
	case infer.KindBoolean:
		if b, ok := profile.ParseBool(v); ok {
			return b
		}
	case infer.KindInteger:
		if n, ok := profile.ParseInteger(v); ok {
			return n
		}
	case infer.KindNumeric:
		if f, ok := profile.ParseDecimal(v); ok {
			return f
		}
	case infer.KindDate:
		if d, ok := profile.ParseDate(v); ok {
			return d
		}
	}
	return v
}

// rawKey renders an inserted value back into the raw-string key space used
// for parent lookups.
func rawKey(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

// keyTracker guards the inserted-key sets shared across seeding workers.
type keyTracker struct {
	mu   sync.RWMutex
	sets map[string]map[string]struct{}
}

func (k *keyTracker) put(table string, values []string) {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	k.mu.Lock()
	k.sets[table] = set
	k.mu.Unlock()
}

func (k *keyTracker) get(table string) map[string]struct{} {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.sets[table]
}
