// Package metrics defines the instrumentation seam for the normalization
// pipeline.
//
// Core code depends only on Backend; vendor-specific submission lives in
// subpackages. A nil or Nop backend makes every call a no-op, so components
// never check whether metrics are configured.
package metrics

// Labels tag a single observation.
type Labels map[string]string

// Backend receives counter increments and histogram samples.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
}

// Metric names emitted by the pipeline.
const (
	MetricRowsInserted  = "normalize_rows_inserted_total"
	MetricRowsSkipped   = "normalize_rows_skipped_total"
	MetricRowsFailed    = "normalize_rows_failed_total"
	MetricTablesSeeded  = "normalize_tables_seeded_total"
	MetricStageDuration = "normalize_stage_duration_seconds"
)

// Nop is a Backend that discards everything.
type Nop struct{}

func (Nop) IncCounter(string, float64, Labels)       {}
func (Nop) ObserveHistogram(string, float64, Labels) {}

// OrNop returns b, or a Nop backend when b is nil.
func OrNop(b Backend) Backend {
	if b == nil {
		return Nop{}
	}
	return b
}
