package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LuckySting/ConcurrentLab2/internal/sieve"
	"github.com/LuckySting/ConcurrentLab2/internal/verify"
)

var (
	countN        int
	countStrategy string
	countWorkers  int
	countList     int
	countFromZero bool
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Sieve [0, N] once with one strategy and count the primes",
	RunE:  runCount,
}

func init() {
	countCmd.Flags().IntVarP(&countN, "n", "n", 1000000, "Upper bound N")
	countCmd.Flags().StringVarP(&countStrategy, "strategy", "s", "pull", "Strategy: range, divisor, pool, pull")
	countCmd.Flags().IntVarP(&countWorkers, "workers", "w", 0, "Worker count (0 = physical cores)")
	countCmd.Flags().IntVar(&countList, "list", 0, "Print the first K primes")
	countCmd.Flags().BoolVar(&countFromZero, "from-zero", false, "Mark from index 0 instead of the bootstrap stop")
}

func runCount(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	logger := setupLogger(cfg.Output)

	s, err := sieve.ParseStrategy(countStrategy)
	if err != nil {
		return err
	}
	workers := countWorkers
	if workers == 0 {
		workers = defaultWorkerCount(logger)
	}

	run, err := sieve.New(countN, sieve.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := run.Bootstrap(sieve.Stop(countN)); err != nil {
		return err
	}

	start := sieve.Stop(countN)
	if countFromZero {
		start = 0
	}
	rep, err := run.Execute(s, workers, start)
	if err != nil {
		return err
	}

	table := run.Table()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Strategy:   %s\n", s)
	fmt.Fprintf(out, "N:          %s\n", formatNumber(int64(countN)))
	fmt.Fprintf(out, "Workers:    %d (max %d tasks per worker)\n", workers, rep.MaxPerWorker())
	fmt.Fprintf(out, "Divisors:   %d\n", rep.Divisors)
	fmt.Fprintf(out, "Primes:     %d\n", verify.Count(table))
	fmt.Fprintf(out, "Elapsed:    %s\n", formatDuration(rep.Elapsed))
	if countList > 0 {
		fmt.Fprintf(out, "First %d:   %v\n", countList, verify.Primes(table, countList))
	}
	return nil
}
