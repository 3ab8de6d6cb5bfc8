package sieve

// byRange gives every worker a disjoint slice of the numbers and the whole
// divisor list. No two workers ever write the same cell.
func (r *Run) byRange(g *group, workers, startFrom int) int {
	span := len(r.table) - startFrom
	for t := 0; t < workers; t++ {
		a := Assignment{
			NumbersFrom:  startFrom + t*span/workers,
			NumbersTo:    startFrom + (t+1)*span/workers,
			DividersFrom: 0,
			DividersTo:   len(r.divisors),
		}
		g.spawn(t, func(process func(Assignment)) {
			process(a)
		})
	}
	return workers
}

// byDivisors gives every worker all remaining numbers and a disjoint slice of
// the divisor list. Workers may write the same cell.
func (r *Run) byDivisors(g *group, workers, startFrom int) int {
	count := len(r.divisors)
	for t := 0; t < workers; t++ {
		a := Assignment{
			NumbersFrom:  startFrom,
			NumbersTo:    len(r.table),
			DividersFrom: t * count / workers,
			DividersTo:   (t + 1) * count / workers,
		}
		g.spawn(t, func(process func(Assignment)) {
			process(a)
		})
	}
	return workers
}
