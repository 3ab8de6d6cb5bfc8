// Package bench sweeps problem sizes, worker counts and strategies over the
// sieve core and reports wall-clock timings.
package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/sirupsen/logrus"

	"github.com/LuckySting/ConcurrentLab2/internal/config"
	"github.com/LuckySting/ConcurrentLab2/internal/sieve"
	"github.com/LuckySting/ConcurrentLab2/internal/storage"
	"github.com/LuckySting/ConcurrentLab2/internal/verify"
)

var ErrVerification = errors.New("bench: result failed verification")

// Sink receives every measurement as soon as it is taken.
type Sink interface {
	SaveRecord(storage.Record) error
}

type Harness struct {
	config  *config.Config
	workers []int
	logger  *logrus.Logger
	sinks   []Sink
}

// New builds a harness. workers overrides the configured worker counts when
// the configuration leaves them empty.
func New(cfg *config.Config, workers []int, logger *logrus.Logger, sinks ...Sink) (*Harness, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Benchmark.Workers) > 0 {
		workers = cfg.Benchmark.Workers
	}
	if len(workers) == 0 {
		return nil, fmt.Errorf("%w: no worker counts to sweep", config.ErrInvalid)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Harness{config: cfg, workers: workers, logger: logger, sinks: sinks}, nil
}

func (h *Harness) Workers() []int { return h.workers }

// Run measures every configured combination. The context is only checked
// between measurements; a strategy that has started always completes.
func (h *Harness) Run(ctx context.Context) (*Summary, error) {
	strategies, err := h.config.ParsedStrategies()
	if err != nil {
		return nil, err
	}

	summary := newSummary(h.config.Benchmark.Sizes, h.workers)
	refs := make(map[int]*bitset.BitSet)
	started := time.Now()

	for _, s := range strategies {
		h.logger.Infof("Benchmarking %s", s)
		for _, n := range h.config.Benchmark.Sizes {
			for _, w := range h.workers {
				if err := ctx.Err(); err != nil {
					summary.Elapsed = time.Since(started)
					return summary, err
				}

				rec, table, err := h.measure(s, n, w)
				if err != nil {
					return summary, err
				}

				if h.config.Benchmark.Verify {
					ref, ok := refs[n]
					if !ok {
						ref = verify.Reference(n)
						refs[n] = ref
					}
					if err := verify.Compare(table, ref); err != nil {
						return summary, fmt.Errorf("%w: %s n=%d workers=%d: %v", ErrVerification, s, n, w, err)
					}
					rec.Verified = true
				}

				summary.add(rec)
				for _, sink := range h.sinks {
					if err := sink.SaveRecord(rec); err != nil {
						h.logger.Warnf("Failed to save result: %v", err)
					}
				}

				h.logger.WithFields(logrus.Fields{
					"strategy": s,
					"n":        n,
					"workers":  w,
					"elapsed":  rec.Elapsed,
				}).Debug("Measured")
			}
		}
	}

	summary.Elapsed = time.Since(started)
	return summary, nil
}

// measure runs one combination repeats times on fresh state and keeps the
// fastest execution.
func (h *Harness) measure(s sieve.Strategy, n, workers int) (storage.Record, []bool, error) {
	var (
		best  storage.Record
		table []bool
	)
	start := h.config.StartFor(n)

	for i := 0; i < h.config.Benchmark.Repeats; i++ {
		run, err := sieve.New(n, sieve.WithLogger(h.logger))
		if err != nil {
			return best, nil, err
		}
		if err := run.Bootstrap(sieve.Stop(n)); err != nil {
			return best, nil, err
		}
		rep, err := run.Execute(s, workers, start)
		if err != nil {
			return best, nil, fmt.Errorf("%s n=%d workers=%d: %w", s, n, workers, err)
		}

		if i == 0 || rep.Elapsed < best.Elapsed {
			table = run.Table()
			best = storage.Record{
				Strategy:   s.String(),
				N:          n,
				Workers:    workers,
				StartFrom:  start,
				Divisors:   rep.Divisors,
				Tasks:      rep.Tasks,
				MaxTasks:   rep.MaxPerWorker(),
				Elapsed:    rep.Elapsed,
				MeasuredAt: time.Now(),
			}
		}
	}

	best.Primes = verify.Count(table)
	best.Digest = verify.Digest(table)
	return best, table, nil
}
