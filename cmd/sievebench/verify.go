package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LuckySting/ConcurrentLab2/internal/sieve"
	"github.com/LuckySting/ConcurrentLab2/internal/verify"
)

var (
	verifyN       int
	verifyWorkers []int
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check every strategy and worker count against a reference sieve",
	RunE:  runVerify,
}

func init() {
	verifyCmd.Flags().IntVarP(&verifyN, "n", "n", 100000, "Upper bound N")
	verifyCmd.Flags().IntSliceVarP(&verifyWorkers, "workers", "w", []int{1, 2, 4, 8}, "Worker counts to check")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	logger := setupLogger(cfg.Output)
	if len(verifyWorkers) == 0 {
		return fmt.Errorf("no worker counts to verify")
	}

	ref := verify.Reference(verifyN)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Reference: %d primes in [0, %d]\n", ref.Count(), verifyN)

	var (
		failures int
		digest   string
	)
	for _, s := range sieve.Strategies() {
		for _, w := range verifyWorkers {
			run, err := sieve.New(verifyN, sieve.WithLogger(logger))
			if err != nil {
				return err
			}
			if err := run.Bootstrap(sieve.Stop(verifyN)); err != nil {
				return err
			}
			if _, err := run.RunStrategy(s, w, sieve.Stop(verifyN)); err != nil {
				return err
			}

			table := run.Table()
			status := "ok"
			if err := verify.Compare(table, ref); err != nil {
				status = "FAIL: " + err.Error()
				failures++
			}
			d := verify.Digest(table)
			if digest == "" {
				digest = d
			} else if d != digest {
				status += " (digest differs)"
				failures++
			}
			fmt.Fprintf(out, "%-16s workers=%-3d %s\n", s, w, status)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d verification failures", failures)
	}
	fmt.Fprintf(out, "All strategies agree, digest %s\n", digest[:16])
	return nil
}
