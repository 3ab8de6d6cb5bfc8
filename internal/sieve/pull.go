package sieve

import "sync"

// cursor hands out divisor indexes one at a time. It starts at -1 so the
// first claim returns 0.
type cursor struct {
	mu   sync.Mutex
	last int
}

func newCursor() *cursor {
	return &cursor{last: -1}
}

// claim returns the next unclaimed index. Read and increment happen under
// one lock so no index is handed out twice or skipped.
func (c *cursor) claim() int {
	c.mu.Lock()
	c.last++
	next := c.last
	c.mu.Unlock()
	return next
}

// byPull lets every worker repeatedly claim the next single divisor until
// the list is exhausted.
func (r *Run) byPull(g *group, workers, startFrom int) int {
	count := len(r.divisors)
	cur := newCursor()

	for t := 0; t < workers; t++ {
		g.spawn(t, func(process func(Assignment)) {
			for {
				d := cur.claim()
				if d >= count {
					return
				}
				process(Assignment{
					NumbersFrom:  startFrom,
					NumbersTo:    len(r.table),
					DividersFrom: d,
					DividersTo:   d + 1,
				})
			}
		})
	}

	return count
}
