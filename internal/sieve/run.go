// Package sieve marks composites over [0, N] with a Sieve of Eratosthenes
// whose marking phase can be split across workers in four different ways.
//
// A Run owns all state for one sieve: the marking table and the ordered
// divisor list. Bootstrap builds the divisor list sequentially, after which
// any strategy may be executed against the remaining range.
package sieve

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Run is the state of a single sieve over [0, N].
type Run struct {
	n        int
	table    []atomic.Bool // true = candidate, false = composite
	divisors []int

	bootstrapped bool
	faulted      atomic.Bool

	// mark processes one assignment; tests swap it to inject faults.
	mark   func(Assignment)
	logger *logrus.Logger
}

type Option func(*Run)

// WithLogger attaches a logger; runs are silent by default.
func WithLogger(logger *logrus.Logger) Option {
	return func(r *Run) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New allocates a fresh table of n+1 candidates and an empty divisor list.
func New(n int, opts ...Option) (*Run, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: n=%d", ErrInvalidSize, n)
	}

	r := &Run{
		n:        n,
		table:    make([]atomic.Bool, n+1),
		divisors: make([]int, 0, isqrt(n)),
	}
	r.mark = r.MarkRange

	discard := logrus.New()
	discard.SetOutput(io.Discard)
	r.logger = discard

	for _, opt := range opts {
		opt(r)
	}

	for i := range r.table {
		r.table[i].Store(true)
	}
	// 0 and 1 are neither prime nor reachable by any divisor.
	for i := 0; i < len(r.table) && i < 2; i++ {
		r.table[i].Store(false)
	}

	return r, nil
}

// N is the upper bound of the sieved range.
func (r *Run) N() int { return r.n }

// Len is the number of cells in the marking table (N+1).
func (r *Run) Len() int { return len(r.table) }

func (r *Run) IsCandidate(i int) bool {
	return r.table[i].Load()
}

// Table returns a snapshot of the marking table. It must only be taken
// while no strategy is running.
func (r *Run) Table() []bool {
	out := make([]bool, len(r.table))
	for i := range r.table {
		out[i] = r.table[i].Load()
	}
	return out
}

// Divisors returns a copy of the divisor list.
func (r *Run) Divisors() []int {
	out := make([]int, len(r.divisors))
	copy(out, r.divisors)
	return out
}

func (r *Run) Bootstrapped() bool { return r.bootstrapped }

// Stop is the bootstrap bound for a sieve over [0, n]: floor(sqrt(n)) + 1.
func Stop(n int) int {
	if n < 0 {
		return 0
	}
	return isqrt(n) + 1
}

// isqrt returns floor(sqrt(n)) using Newton's iteration on integers.
func isqrt(n int) int {
	if n < 2 {
		return n
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}
