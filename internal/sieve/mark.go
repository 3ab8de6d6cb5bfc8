package sieve

import "fmt"

// Assignment is one unit of marking work: the numbers in
// [NumbersFrom, NumbersTo) tested against divisors[DividersFrom:DividersTo].
type Assignment struct {
	NumbersFrom  int
	NumbersTo    int
	DividersFrom int
	DividersTo   int
}

func (a Assignment) Validate(tableLen, divisorLen int) error {
	if a.NumbersFrom < 0 || a.NumbersFrom > a.NumbersTo || a.NumbersTo > tableLen {
		return fmt.Errorf("%w: numbers [%d, %d) with table length %d",
			ErrOutOfRange, a.NumbersFrom, a.NumbersTo, tableLen)
	}
	if a.DividersFrom < 0 || a.DividersFrom > a.DividersTo || a.DividersTo > divisorLen {
		return fmt.Errorf("%w: divisors [%d, %d) with %d divisors",
			ErrOutOfRange, a.DividersFrom, a.DividersTo, divisorLen)
	}
	return nil
}

func (a Assignment) String() string {
	return fmt.Sprintf("numbers[%d:%d] divisors[%d:%d]",
		a.NumbersFrom, a.NumbersTo, a.DividersFrom, a.DividersTo)
}

// MarkRange marks every number in the assignment that is divisible by one of
// its divisors other than itself. The divisor list is ascending, so the scan
// for a number stops at the first divisor larger than it.
//
// Bounds are the caller's responsibility; an invalid assignment panics.
func (r *Run) MarkRange(a Assignment) {
	if err := a.Validate(len(r.table), len(r.divisors)); err != nil {
		panic(err)
	}

	divisors := r.divisors[a.DividersFrom:a.DividersTo]
	for i := a.NumbersFrom; i < a.NumbersTo; i++ {
		for _, d := range divisors {
			if d > i {
				break
			}
			if d != i && i%d == 0 {
				// Marks are monotone and idempotent; overlapping workers
				// may store the same value concurrently.
				r.table[i].Store(false)
			}
		}
	}
}
