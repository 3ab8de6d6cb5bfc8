// Package storage persists benchmark measurements as CSV/JSON files and in a
// SQL database.
package storage

import (
	"strconv"
	"time"
)

// Record is one measured strategy execution.
type Record struct {
	Strategy   string        `json:"strategy"`
	N          int           `json:"n"`
	Workers    int           `json:"workers"`
	StartFrom  int           `json:"start_from"`
	Divisors   int           `json:"divisors"`
	Tasks      int           `json:"tasks"`
	MaxTasks   int           `json:"max_tasks_per_worker"`
	Primes     int           `json:"primes"`
	Elapsed    time.Duration `json:"elapsed"`
	Verified   bool          `json:"verified"`
	Digest     string        `json:"digest"`
	MeasuredAt time.Time     `json:"measured_at"`
}

// Millis is the elapsed time in fractional milliseconds.
func (r Record) Millis() float64 {
	return float64(r.Elapsed) / float64(time.Millisecond)
}

var csvHeader = []string{
	"strategy", "n", "workers", "start_from", "divisors", "tasks",
	"max_tasks_per_worker", "primes", "elapsed_ms", "verified", "digest", "measured_at",
}

func (r Record) csvRow() []string {
	return []string{
		r.Strategy,
		strconv.Itoa(r.N),
		strconv.Itoa(r.Workers),
		strconv.Itoa(r.StartFrom),
		strconv.Itoa(r.Divisors),
		strconv.Itoa(r.Tasks),
		strconv.Itoa(r.MaxTasks),
		strconv.Itoa(r.Primes),
		strconv.FormatFloat(r.Millis(), 'f', 3, 64),
		strconv.FormatBool(r.Verified),
		r.Digest,
		r.MeasuredAt.Format(time.RFC3339Nano),
	}
}
