package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/LuckySting/ConcurrentLab2/internal/bench"
	"github.com/LuckySting/ConcurrentLab2/internal/config"
	"github.com/LuckySting/ConcurrentLab2/internal/hardware"
	"github.com/LuckySting/ConcurrentLab2/internal/storage"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Sweep sizes, worker counts and strategies and print timing tables",
	RunE:  runBench,
}

func init() {
	f := benchCmd.Flags()
	f.IntSlice("sizes", nil, "Problem sizes N to sieve (overrides config)")
	f.IntSlice("workers", nil, "Worker counts to sweep (default: derived from the CPU)")
	f.StringSlice("strategy", nil, "Strategies to run: range, divisor, pool, pull")
	f.Int("repeats", 0, "Runs per combination, fastest is kept")
	f.String("start-from", "", "First index marked in parallel: stop or zero")
	f.Bool("verify", true, "Check every table against a reference sieve")
	f.Bool("db", false, "Store results in the configured database")
	f.String("db-driver", "", "Database driver: sqlite3 or postgres")
	f.String("db-dsn", "", "Database DSN")

	// Bind flags to viper
	v.BindPFlag("benchmark.sizes", f.Lookup("sizes"))
	v.BindPFlag("benchmark.workers", f.Lookup("workers"))
	v.BindPFlag("benchmark.strategies", f.Lookup("strategy"))
	v.BindPFlag("benchmark.repeats", f.Lookup("repeats"))
	v.BindPFlag("benchmark.start_from", f.Lookup("start-from"))
	v.BindPFlag("benchmark.verify", f.Lookup("verify"))
	v.BindPFlag("database.enabled", f.Lookup("db"))
	v.BindPFlag("database.driver", f.Lookup("db-driver"))
	v.BindPFlag("database.dsn", f.Lookup("db-dsn"))
}

// report is the JSON summary written next to the CSV results.
type report struct {
	Version    string         `json:"version"`
	Host       string         `json:"host"`
	Hardware   hardware.Info  `json:"hardware"`
	Config     *config.Config `json:"config"`
	Summary    *bench.Summary `json:"summary"`
	Consistent bool           `json:"consistent"`
	FinishedAt time.Time      `json:"finished_at"`
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	logger := setupLogger(cfg.Output)
	if from := cfg.LoadedFrom(); from != "" {
		logger.Infof("Loaded configuration from %s", from)
	}

	hw := hardware.Detect(logger)

	files, err := storage.NewFiles(&cfg.Output, logger)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}
	defer func() {
		if err := files.Close(); err != nil {
			logger.Errorf("Failed to close storage: %v", err)
		}
	}()

	harness, err := bench.New(cfg, hw.DefaultWorkers(), logger, files)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithFields(logrus.Fields{
		"sizes":   cfg.Benchmark.Sizes,
		"workers": harness.Workers(),
		"repeats": cfg.Benchmark.Repeats,
	}).Info("Starting benchmark")

	summary, runErr := harness.Run(ctx)
	if summary == nil {
		return runErr
	}
	if runErr != nil {
		logger.Warnf("Benchmark stopped early: %v", runErr)
	}

	if err := summary.WriteTables(cmd.OutOrStdout()); err != nil {
		return err
	}

	rep := &report{
		Version:    config.Version,
		Host:       hostname(),
		Hardware:   hw,
		Config:     cfg,
		Summary:    summary,
		Consistent: summary.Consistent(),
		FinishedAt: time.Now(),
	}
	if err := files.SaveSummary(rep); err != nil {
		logger.Errorf("Failed to save summary: %v", err)
	}

	if cfg.Database.Enabled {
		if err := saveToDatabase(cfg.Database, summary.Records, logger); err != nil {
			logger.Errorf("Failed to store results: %v", err)
		}
	}

	logger.Infof("Benchmark finished in %s, %d measurements", formatDuration(summary.Elapsed), len(summary.Records))
	if !rep.Consistent {
		return fmt.Errorf("strategies disagree for sizes %v", summary.Inconsistent())
	}
	return runErr
}

func saveToDatabase(cfg config.DatabaseConfig, recs []storage.Record, logger *logrus.Logger) error {
	db, err := storage.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.SaveRecords(ctx, recs); err != nil {
		return err
	}
	logger.Infof("Stored %d measurements in %s", len(recs), cfg.Driver)
	return nil
}
