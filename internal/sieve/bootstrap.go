package sieve

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Bootstrap runs the sequential pre-sieve over [2, stop). Every number still
// a candidate when reached is prime; it is appended to the divisor list and
// immediately applied to the rest of the bootstrap range.
//
// The divisor list is frozen once Bootstrap returns. Strategies refuse to
// run before that point.
func (r *Run) Bootstrap(stop int) error {
	if r.bootstrapped {
		return ErrAlreadyBootstrapped
	}
	if stop < 0 || stop > len(r.table) {
		return fmt.Errorf("%w: stop=%d with table length %d", ErrOutOfRange, stop, len(r.table))
	}

	for i := 2; i < stop; i++ {
		if !r.table[i].Load() {
			continue
		}
		r.divisors = append(r.divisors, i)
		last := len(r.divisors)
		r.MarkRange(Assignment{
			NumbersFrom:  i + 1,
			NumbersTo:    stop,
			DividersFrom: last - 1,
			DividersTo:   last,
		})
	}

	r.bootstrapped = true
	r.logger.WithFields(logrus.Fields{
		"n":        r.n,
		"stop":     stop,
		"divisors": len(r.divisors),
	}).Debug("Bootstrap complete")

	return nil
}
