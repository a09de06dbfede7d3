// Package pipeline wires the normalization stages into a single run:
// profile/infer/detect (model build), dependency planning, DDL and report
// export, and optional database seeding.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/CodedGrimoire/text2sql-analytics/internal/config"
	"github.com/CodedGrimoire/text2sql-analytics/internal/export"
	"github.com/CodedGrimoire/text2sql-analytics/internal/graph"
	"github.com/CodedGrimoire/text2sql-analytics/internal/metrics"
	"github.com/CodedGrimoire/text2sql-analytics/internal/model"
	"github.com/CodedGrimoire/text2sql-analytics/internal/rawtable"
	"github.com/CodedGrimoire/text2sql-analytics/internal/seed"
	"github.com/CodedGrimoire/text2sql-analytics/internal/storage"
)

// Logger is the minimal logging seam. A nil Logger discards output.
type Logger interface {
	Printf(format string, v ...any)
}

// Options configures one pipeline run.
type Options struct {
	Config config.Config

	// Logger and Metrics are optional; nil means discard.
	Logger  Logger
	Metrics metrics.Backend

	// Inserter enables DDL execution and seeding when non-nil. The pipeline
	// never opens connections itself.
	Inserter storage.RowInserter
}

// Outcome carries every artifact of a run.
type Outcome struct {
	Model  *model.SchemaModel
	Plan   graph.Plan
	DDL    string
	Report *export.Report

	// Seed is nil when no inserter was provided.
	Seed *seed.Result
}

// Run executes the full pipeline over the given raw tables.
//
// A *model.StructuralError aborts before any artifact is produced. Seeding
// failures return the error alongside an Outcome holding the completed
// model, DDL, and partial seed stats, so callers can still write the report.
func Run(ctx context.Context, tables []rawtable.RawTable, opts Options) (*Outcome, error) {
	log := opts.Logger
	logf := func(format string, v ...any) {
		if log != nil {
			log.Printf(format, v...)
		}
	}
	met := metrics.OrNop(opts.Metrics)

	start := time.Now()
	m, err := model.Build(tables, opts.Config)
	if err != nil {
		return nil, err
	}
	met.ObserveHistogram(metrics.MetricStageDuration, time.Since(start).Seconds(), metrics.Labels{"stage": "build"})
	logf("stage=build tables=%d edges=%d duration=%s", m.NumTables(), len(m.Edges), time.Since(start).Round(time.Millisecond))

	plan := graph.BuildPlan(m)
	logf("stage=plan levels=%d deferred=%d", len(plan.Levels), len(plan.Deferred))

	out := &Outcome{
		Model: m,
		Plan:  plan,
		DDL:   export.DDL(m, plan, opts.Config),
	}

	if opts.Inserter == nil {
		out.Report = export.BuildReport(m, plan, nil)
		return out, nil
	}

	if err := opts.Inserter.ExecDDL(ctx, out.DDL); err != nil {
		return out, fmt.Errorf("pipeline: %w", err)
	}
	logf("stage=ddl status=applied tables=%d", m.NumTables())

	seeder := &seed.Seeder{
		Inserter: opts.Inserter,
		Config:   opts.Config,
		Logger:   log,
		Metrics:  opts.Metrics,
	}
	res, seedErr := seeder.Run(ctx, m, tables, plan)
	out.Seed = res
	out.Report = export.BuildReport(m, plan, res)
	if seedErr != nil {
		return out, fmt.Errorf("pipeline: %w", seedErr)
	}
	return out, nil
}
