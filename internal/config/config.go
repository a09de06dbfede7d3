// Package config holds the tunable knobs for the normalization pipeline.
//
// Components never read process-wide state; they receive a Config value
// explicitly so runs are deterministic and safe to invoke in parallel.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config controls inference heuristics and runtime behavior.
type Config struct {
	// FKOverlapThreshold is the minimum overlap ratio (distinct source values
	// found in the target primary key set / distinct non-null source values)
	// for a foreign-key candidate to be accepted.
	FKOverlapThreshold float64

	// FKOverlapWeight and FKNameWeight combine overlap ratio and name
	// similarity into the edge confidence score. They should sum to 1.
	FKOverlapWeight float64
	FKNameWeight    float64

	// MinNameSimilarity is the minimum name-similarity score for a
	// foreign-key candidate to pass the naming heuristic.
	MinNameSimilarity float64

	// VarcharBuckets are the widths VARCHAR lengths are rounded up to.
	// Must be ascending. Lengths beyond the last bucket use the observed max.
	VarcharBuckets []int

	// DefaultVarcharWidth is used for columns with zero non-null values.
	DefaultVarcharWidth int

	// AddAuditColumns appends created_at/updated_at TIMESTAMPTZ columns to
	// every exported table.
	AddAuditColumns bool

	// ProfileWorkers bounds the concurrent column-profiling pool.
	ProfileWorkers int

	// SeedWorkers bounds concurrent table seeding within a dependency level.
	// Size this to the external database connection pool.
	SeedWorkers int

	// SeedBatchSize is the number of rows per insert batch.
	SeedBatchSize int

	// MaxRowFailureRate is the fraction of failed rows a table tolerates
	// before its seeding run is failed outright.
	MaxRowFailureRate float64
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		FKOverlapThreshold:  0.95,
		FKOverlapWeight:     0.7,
		FKNameWeight:        0.3,
		MinNameSimilarity:   0.6,
		VarcharBuckets:      []int{10, 20, 50, 100, 255},
		DefaultVarcharWidth: 255,
		AddAuditColumns:     true,
		ProfileWorkers:      4,
		SeedWorkers:         4,
		SeedBatchSize:       512,
		MaxRowFailureRate:   0.05,
	}
}

// FromEnv returns the default configuration with overrides applied from the
// environment. A .env file in the working directory is honored when present
// (missing files are not an error).
//
// Recognized variables:
//
//	NORMALIZE_FK_THRESHOLD     float
//	NORMALIZE_NAME_SIMILARITY  float
//	NORMALIZE_AUDIT_COLUMNS    bool
//	NORMALIZE_PROFILE_WORKERS  int
//	NORMALIZE_SEED_WORKERS     int
//	NORMALIZE_BATCH_SIZE       int
//	NORMALIZE_MAX_FAILURE_RATE float
func FromEnv() Config {
	_ = godotenv.Load()

	cfg := Default()
	if v, ok := envFloat("NORMALIZE_FK_THRESHOLD"); ok {
		cfg.FKOverlapThreshold = v
	}
	if v, ok := envFloat("NORMALIZE_NAME_SIMILARITY"); ok {
		cfg.MinNameSimilarity = v
	}
	if v, ok := envBool("NORMALIZE_AUDIT_COLUMNS"); ok {
		cfg.AddAuditColumns = v
	}
	if v, ok := envInt("NORMALIZE_PROFILE_WORKERS"); ok {
		cfg.ProfileWorkers = v
	}
	if v, ok := envInt("NORMALIZE_SEED_WORKERS"); ok {
		cfg.SeedWorkers = v
	}
	if v, ok := envInt("NORMALIZE_BATCH_SIZE"); ok {
		cfg.SeedBatchSize = v
	}
	if v, ok := envFloat("NORMALIZE_MAX_FAILURE_RATE"); ok {
		cfg.MaxRowFailureRate = v
	}
	return cfg
}

func envFloat(key string) (float64, bool) {
	s := os.Getenv(key)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func envInt(key string) (int, bool) {
	s := os.Getenv(key)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func envBool(key string) (bool, bool) {
	s := os.Getenv(key)
	if s == "" {
		return false, false
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, false
	}
	return v, true
}
