package sieve

// byPool queues one task per divisor and lets a fixed pool of workers drain
// the queue. The queue is sized to hold every task. The group join replaces
// per-task completion signals.
func (r *Run) byPool(g *group, workers, startFrom int) int {
	count := len(r.divisors)
	queue := make(chan Assignment, count)

	for t := 0; t < workers; t++ {
		g.spawn(t, func(process func(Assignment)) {
			for a := range queue {
				process(a)
			}
		})
	}

	for d := 0; d < count; d++ {
		queue <- Assignment{
			NumbersFrom:  startFrom,
			NumbersTo:    len(r.table),
			DividersFrom: d,
			DividersTo:   d + 1,
		}
	}
	close(queue)

	return count
}
