package config

import "testing"

//
// Default
//

// TestDefaultInvariants verifies the stock knobs satisfy the relationships
// the rest of the pipeline assumes.
func TestDefaultInvariants(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if cfg.FKOverlapWeight+cfg.FKNameWeight != 1 {
		t.Fatalf("weights sum to %v, want 1", cfg.FKOverlapWeight+cfg.FKNameWeight)
	}
	if cfg.FKOverlapThreshold <= 0 || cfg.FKOverlapThreshold > 1 {
		t.Fatalf("FKOverlapThreshold = %v", cfg.FKOverlapThreshold)
	}
	for i := 1; i < len(cfg.VarcharBuckets); i++ {
		if cfg.VarcharBuckets[i] <= cfg.VarcharBuckets[i-1] {
			t.Fatalf("VarcharBuckets not ascending: %v", cfg.VarcharBuckets)
		}
	}
	if cfg.ProfileWorkers < 1 || cfg.SeedWorkers < 1 || cfg.SeedBatchSize < 1 {
		t.Fatalf("worker/batch sizes must be positive: %+v", cfg)
	}
}

//
// FromEnv
//

// TestFromEnvOverrides verifies recognized variables override defaults and
// unparseable values are ignored.
func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("NORMALIZE_FK_THRESHOLD", "0.8")
	t.Setenv("NORMALIZE_AUDIT_COLUMNS", "false")
	t.Setenv("NORMALIZE_SEED_WORKERS", "2")
	t.Setenv("NORMALIZE_BATCH_SIZE", "not-a-number")

	cfg := FromEnv()
	if cfg.FKOverlapThreshold != 0.8 {
		t.Fatalf("FKOverlapThreshold = %v, want 0.8", cfg.FKOverlapThreshold)
	}
	if cfg.AddAuditColumns {
		t.Fatal("AddAuditColumns should be overridden to false")
	}
	if cfg.SeedWorkers != 2 {
		t.Fatalf("SeedWorkers = %d, want 2", cfg.SeedWorkers)
	}
	if cfg.SeedBatchSize != Default().SeedBatchSize {
		t.Fatalf("SeedBatchSize = %d, want default after bad value", cfg.SeedBatchSize)
	}
}

// TestFromEnvDefaults verifies an empty environment yields the defaults.
func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"NORMALIZE_FK_THRESHOLD",
		"NORMALIZE_NAME_SIMILARITY",
		"NORMALIZE_AUDIT_COLUMNS",
		"NORMALIZE_PROFILE_WORKERS",
		"NORMALIZE_SEED_WORKERS",
		"NORMALIZE_BATCH_SIZE",
		"NORMALIZE_MAX_FAILURE_RATE",
	} {
		t.Setenv(key, "")
	}

	if got, want := FromEnv(), Default(); got.FKOverlapThreshold != want.FKOverlapThreshold ||
		got.AddAuditColumns != want.AddAuditColumns ||
		got.SeedBatchSize != want.SeedBatchSize {
		t.Fatalf("FromEnv() = %+v, want defaults %+v", got, want)
	}
}
