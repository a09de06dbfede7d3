// Command normalize ingests a directory of CSV dumps, infers a relational
// schema, exports DDL plus an audit report, and optionally seeds a database
// in dependency order.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/CodedGrimoire/text2sql-analytics/internal/config"
	"github.com/CodedGrimoire/text2sql-analytics/internal/metrics"
	"github.com/CodedGrimoire/text2sql-analytics/internal/metrics/datadog"
	"github.com/CodedGrimoire/text2sql-analytics/internal/model"
	"github.com/CodedGrimoire/text2sql-analytics/internal/pipeline"
	"github.com/CodedGrimoire/text2sql-analytics/internal/rawtable"
	"github.com/CodedGrimoire/text2sql-analytics/internal/storage"

	// Registered storage backends.
	_ "github.com/CodedGrimoire/text2sql-analytics/internal/storage/mssql"
	_ "github.com/CodedGrimoire/text2sql-analytics/internal/storage/postgres"
	_ "github.com/CodedGrimoire/text2sql-analytics/internal/storage/sqlite"
)

var (
	inputDir  string
	outputDir string
	backend   string
	dsn       string
	doSeed    bool
	useDD     bool
	ddTags    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "normalize",
		Short: "Infer a normalized relational schema from raw tabular data",
		Long: "normalize profiles schema-less CSV dumps, infers column types, primary and\n" +
			"foreign keys, exports dependency-ordered DDL with an audit report, and can\n" +
			"seed the result into a database.",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the normalization pipeline over a CSV directory",
		RunE:  runPipeline,
	}

	runCmd.Flags().StringVar(&inputDir, "input", "", "directory of *.csv input files")
	runCmd.Flags().StringVar(&outputDir, "out", "./out", "output directory for schema.sql and reports")
	runCmd.Flags().StringVar(&backend, "backend", "", "database backend ("+strings.Join(storage.Kinds(), "/")+")")
	runCmd.Flags().StringVar(&dsn, "dsn", "", "database connection string")
	runCmd.Flags().BoolVar(&doSeed, "seed", false, "execute the DDL and seed rows in dependency order")
	runCmd.Flags().BoolVar(&useDD, "datadog", false, "submit run metrics to Datadog")
	runCmd.Flags().StringVar(&ddTags, "dd-tags", "", "extra Datadog tags, comma separated (env:prod,team:data)")
	_ = runCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.New(os.Stderr, "normalize ", log.LstdFlags)
	cfg := config.FromEnv()

	tables, err := rawtable.LoadCSVDir(inputDir)
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		return fmt.Errorf("no csv files found in %s", inputDir)
	}
	logger.Printf("stage=load dir=%s tables=%d", inputDir, len(tables))

	var met metrics.Backend
	if useDD {
		dd, err := datadog.NewBackend(ctx, datadog.Options{
			JobName:    "normalize",
			Tags:       datadog.ParseTagsCSV(ddTags),
			FlushEvery: 30 * time.Second,
		})
		if err != nil {
			return fmt.Errorf("datadog metrics init: %w", err)
		}
		defer func() {
			if err := dd.Close(); err != nil {
				logger.Printf("stage=metrics status=flush_failed err=%v", err)
			}
		}()
		met = dd
	}

	var inserter storage.RowInserter
	if doSeed {
		if backend == "" || dsn == "" {
			return fmt.Errorf("--seed requires --backend and --dsn")
		}
		inserter, err = storage.New(ctx, storage.Config{Kind: backend, DSN: dsn})
		if err != nil {
			return fmt.Errorf("open %s backend: %w", backend, err)
		}
		defer inserter.Close()
	}

	out, runErr := pipeline.Run(ctx, tables, pipeline.Options{
		Config:   cfg,
		Logger:   logger,
		Metrics:  met,
		Inserter: inserter,
	})

	var structural *model.StructuralError
	if errors.As(runErr, &structural) {
		return runErr
	}
	if out != nil {
		if err := writeArtifacts(out); err != nil {
			return err
		}
		logger.Printf("stage=export out=%s", outputDir)
	}
	return runErr
}

func writeArtifacts(out *pipeline.Outcome) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outputDir, "schema.sql"), []byte(out.DDL), 0o644); err != nil {
		return err
	}
	if out.Report == nil {
		return nil
	}
	js, err := out.Report.JSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outputDir, "report.json"), js, 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outputDir, "report.md"), []byte(out.Report.Markdown()), 0o644)
}
