package bench

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/LuckySting/ConcurrentLab2/internal/storage"
)

// Summary collects every measurement of one benchmark run.
type Summary struct {
	Sizes   []int            `json:"sizes"`
	Workers []int            `json:"workers"`
	Records []storage.Record `json:"records"`
	Elapsed time.Duration    `json:"elapsed"`
}

func newSummary(sizes, workers []int) *Summary {
	return &Summary{Sizes: sizes, Workers: workers}
}

func (s *Summary) add(rec storage.Record) {
	s.Records = append(s.Records, rec)
}

// Strategies lists the strategies present, in measurement order.
func (s *Summary) Strategies() []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range s.Records {
		if !seen[r.Strategy] {
			seen[r.Strategy] = true
			out = append(out, r.Strategy)
		}
	}
	return out
}

func (s *Summary) find(strategy string, n, workers int) (storage.Record, bool) {
	for _, r := range s.Records {
		if r.Strategy == strategy && r.N == n && r.Workers == workers {
			return r, true
		}
	}
	return storage.Record{}, false
}

// Inconsistent returns the sizes whose final tables differ between any two
// measurements. Every strategy and worker count must produce the same table.
func (s *Summary) Inconsistent() []int {
	digests := make(map[int]string)
	bad := make(map[int]bool)
	for _, r := range s.Records {
		d, ok := digests[r.N]
		if !ok {
			digests[r.N] = r.Digest
			continue
		}
		if d != r.Digest {
			bad[r.N] = true
		}
	}

	out := make([]int, 0, len(bad))
	for n := range bad {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

func (s *Summary) Consistent() bool {
	return len(s.Inconsistent()) == 0
}

// WriteTable renders one strategy as a size-by-workers grid of milliseconds.
func (s *Summary) WriteTable(w io.Writer, strategy string) error {
	var b strings.Builder

	b.WriteString(strategy + "\n")
	b.WriteString(`|Len\Thr |`)
	for _, workers := range s.Workers {
		fmt.Fprintf(&b, "%8d|", workers)
	}
	b.WriteString("\n")

	for _, n := range s.Sizes {
		fmt.Fprintf(&b, "|%8d|", n)
		for _, workers := range s.Workers {
			if rec, ok := s.find(strategy, n, workers); ok {
				fmt.Fprintf(&b, "%8.2f|", rec.Millis())
			} else {
				fmt.Fprintf(&b, "%8s|", "-")
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteTables renders every strategy in the summary.
func (s *Summary) WriteTables(w io.Writer) error {
	for _, strategy := range s.Strategies() {
		if err := s.WriteTable(w, strategy); err != nil {
			return err
		}
	}
	return nil
}
