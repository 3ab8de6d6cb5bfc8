package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/LuckySting/ConcurrentLab2/internal/config"
)

func sample(strategy string, n, workers int, elapsed time.Duration) Record {
	return Record{
		Strategy:   strategy,
		N:          n,
		Workers:    workers,
		StartFrom:  11,
		Divisors:   4,
		Tasks:      workers,
		MaxTasks:   1,
		Primes:     25,
		Elapsed:    elapsed,
		Verified:   true,
		Digest:     "abc",
		MeasuredAt: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
	}
}

func TestFilesWritesCSVAndSummary(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.OutputConfig{Directory: dir, FilenamePrefix: "unit", SaveCSV: true, SaveJSON: true}

	files, err := NewFiles(cfg, nil)
	if err != nil {
		t.Fatalf("NewFiles() error = %v", err)
	}
	for _, w := range []int{1, 2} {
		if err := files.SaveRecord(sample("RangePartition", 100, w, time.Millisecond)); err != nil {
			t.Fatalf("SaveRecord() error = %v", err)
		}
	}
	if err := files.SaveSummary(map[string]int{"records": 2}); err != nil {
		t.Fatalf("SaveSummary() error = %v", err)
	}
	if err := files.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "unit_results.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("csv has %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "strategy" || rows[2][2] != "2" || rows[1][8] != "1.000" {
		t.Errorf("unexpected csv content: %v", rows)
	}

	data, err := os.ReadFile(files.SummaryPath())
	if err != nil {
		t.Fatal(err)
	}
	var summary map[string]int
	if err := json.Unmarshal(data, &summary); err != nil || summary["records"] != 2 {
		t.Errorf("summary = %s (err %v), want records=2", data, err)
	}
}

func TestFilesAppendKeepsSingleHeader(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.OutputConfig{Directory: dir, SaveCSV: true}

	for i := 0; i < 2; i++ {
		files, err := NewFiles(cfg, nil)
		if err != nil {
			t.Fatalf("NewFiles() error = %v", err)
		}
		if err := files.SaveRecord(sample("DynamicPull", 1000, 4, time.Second)); err != nil {
			t.Fatalf("SaveRecord() error = %v", err)
		}
		if err := files.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}

	f, err := os.Open(filepath.Join(dir, "sievebench_results.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, _ := csv.NewReader(f).ReadAll()
	if len(rows) != 3 {
		t.Errorf("csv has %d rows after two sessions, want 3", len(rows))
	}
}

func TestFilesDisabled(t *testing.T) {
	dir := t.TempDir()
	files, err := NewFiles(&config.OutputConfig{Directory: dir}, nil)
	if err != nil {
		t.Fatalf("NewFiles() error = %v", err)
	}
	defer files.Close()

	if err := files.SaveRecord(sample("PooledTask", 10, 1, 0)); err != nil {
		t.Errorf("SaveRecord() error = %v", err)
	}
	if err := files.SaveSummary("x"); err != nil {
		t.Errorf("SaveSummary() error = %v", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("disabled outputs created %d files", len(entries))
	}
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	db, err := Open("sqlite3", filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	recs := []Record{
		sample("DivisorPartition", 1000, 1, 30*time.Millisecond),
		sample("DivisorPartition", 1000, 4, 10*time.Millisecond),
		sample("DivisorPartition", 1000, 8, 20*time.Millisecond),
		sample("RangePartition", 1000, 2, 5*time.Millisecond),
	}
	if err := db.SaveRecords(ctx, recs); err != nil {
		t.Fatalf("SaveRecords() error = %v", err)
	}

	count, err := db.Count(ctx)
	if err != nil || count != 4 {
		t.Errorf("Count() = %d, %v; want 4", count, err)
	}

	best, err := db.Best(ctx, "DivisorPartition", 1000)
	if err != nil {
		t.Fatalf("Best() error = %v", err)
	}
	if best.Workers != 4 || best.Elapsed != 10*time.Millisecond || !best.Verified {
		t.Errorf("Best() = %+v, want the 4-worker 10ms run", best)
	}
	if !best.MeasuredAt.Equal(recs[1].MeasuredAt) {
		t.Errorf("Best().MeasuredAt = %v, want %v", best.MeasuredAt, recs[1].MeasuredAt)
	}

	if _, err := db.Best(ctx, "PooledTask", 1000); !errors.Is(err, ErrNoResults) {
		t.Errorf("Best(missing) error = %v, want %v", err, ErrNoResults)
	}
}

func TestRebind(t *testing.T) {
	pg := &DB{driver: "postgres"}
	if got, want := pg.rebind("a = ? AND b = ?"), "a = $1 AND b = $2"; got != want {
		t.Errorf("rebind() = %q, want %q", got, want)
	}
	lite := &DB{driver: "sqlite3"}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Errorf("rebind() = %q for sqlite, want unchanged", got)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "x"); err == nil {
		t.Errorf("Open(mysql) succeeded, want error")
	}
}
