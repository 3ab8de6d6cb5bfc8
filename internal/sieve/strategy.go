package sieve

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Strategy names one way of splitting the marking phase across workers.
type Strategy string

const (
	RangePartition   Strategy = "RangePartition"
	DivisorPartition Strategy = "DivisorPartition"
	PooledTask       Strategy = "PooledTask"
	DynamicPull      Strategy = "DynamicPull"
)

// Strategies lists every strategy in benchmark order.
func Strategies() []Strategy {
	return []Strategy{RangePartition, DivisorPartition, PooledTask, DynamicPull}
}

// ParseStrategy accepts the canonical names case-insensitively as well as
// the short aliases range, divisor, pool and pull.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rangepartition", "range-partition", "range":
		return RangePartition, nil
	case "divisorpartition", "divisor-partition", "divisor", "dividers":
		return DivisorPartition, nil
	case "pooledtask", "pooled-task", "pool":
		return PooledTask, nil
	case "dynamicpull", "dynamic-pull", "pull", "own":
		return DynamicPull, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

func (s Strategy) String() string { return string(s) }

// Report describes one completed strategy execution.
type Report struct {
	Strategy  Strategy      `json:"strategy"`
	Workers   int           `json:"workers"`
	StartFrom int           `json:"start_from"`
	Divisors  int           `json:"divisors"`
	Tasks     int           `json:"tasks"`
	PerWorker []int         `json:"per_worker"`
	Elapsed   time.Duration `json:"elapsed"`
}

// MaxPerWorker is the largest number of assignments a single worker took.
func (rep Report) MaxPerWorker() int {
	most := 0
	for _, n := range rep.PerWorker {
		if n > most {
			most = n
		}
	}
	return most
}

// RunStrategy executes the named strategy over [startFrom, N] and returns the
// wall-clock time of that call. It neither resets nor re-bootstraps state.
func (r *Run) RunStrategy(s Strategy, workers, startFrom int) (time.Duration, error) {
	rep, err := r.Execute(s, workers, startFrom)
	if err != nil {
		return 0, err
	}
	return rep.Elapsed, nil
}

// Execute is RunStrategy with the full per-worker report.
func (r *Run) Execute(s Strategy, workers, startFrom int) (Report, error) {
	if err := r.checkReady(workers, startFrom); err != nil {
		return Report{}, err
	}

	var plan func(*group, int, int) int
	switch s {
	case RangePartition:
		plan = r.byRange
	case DivisorPartition:
		plan = r.byDivisors
	case PooledTask:
		plan = r.byPool
	case DynamicPull:
		plan = r.byPull
	default:
		return Report{}, fmt.Errorf("%w: %q", ErrUnknownStrategy, string(s))
	}

	g := newGroup(r, workers)
	start := time.Now()
	tasks := plan(g, workers, startFrom)
	err := g.Wait()
	elapsed := time.Since(start)

	if err != nil {
		r.faulted.Store(true)
		r.logger.WithError(err).Errorf("%s aborted", s)
		return Report{}, err
	}

	rep := Report{
		Strategy:  s,
		Workers:   workers,
		StartFrom: startFrom,
		Divisors:  len(r.divisors),
		Tasks:     tasks,
		PerWorker: g.counts,
		Elapsed:   elapsed,
	}
	r.logger.WithFields(logrus.Fields{
		"strategy": s,
		"workers":  workers,
		"tasks":    tasks,
		"elapsed":  elapsed,
	}).Debug("Strategy complete")

	return rep, nil
}

func (r *Run) checkReady(workers, startFrom int) error {
	if r.faulted.Load() {
		return ErrFaulted
	}
	if workers <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, workers)
	}
	if !r.bootstrapped {
		return ErrNotBootstrapped
	}
	if startFrom < 0 || startFrom > len(r.table) {
		return fmt.Errorf("%w: startFrom=%d with table length %d", ErrOutOfRange, startFrom, len(r.table))
	}
	return nil
}

// group joins a fixed set of workers. A panic inside a worker is turned into
// an ErrWorkerFault and fails the whole execution.
type group struct {
	run    *Run
	eg     errgroup.Group
	counts []int // assignments processed, indexed by worker
}

func newGroup(r *Run, workers int) *group {
	return &group{run: r, counts: make([]int, workers)}
}

// spawn starts worker id. Each worker only writes its own counts slot.
func (g *group) spawn(id int, body func(process func(Assignment))) {
	g.eg.Go(func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("%w: worker %d: %v\n%s", ErrWorkerFault, id, p, debug.Stack())
			}
		}()
		body(func(a Assignment) {
			g.run.mark(a)
			g.counts[id]++
		})
		return nil
	})
}

func (g *group) Wait() error {
	return g.eg.Wait()
}
