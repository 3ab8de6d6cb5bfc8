package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/LuckySting/ConcurrentLab2/internal/sieve"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if want := []int{1000, 10000, 100000, 1000000}; !reflect.DeepEqual(cfg.Benchmark.Sizes, want) {
		t.Errorf("Default() sizes = %v, want %v", cfg.Benchmark.Sizes, want)
	}
	strategies, err := cfg.ParsedStrategies()
	if err != nil {
		t.Fatalf("ParsedStrategies() error = %v", err)
	}
	if !reflect.DeepEqual(strategies, sieve.Strategies()) {
		t.Errorf("Default() strategies = %v, want %v", strategies, sieve.Strategies())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
	if cfg.Database.Driver != "sqlite3" {
		t.Errorf("Default() driver = %q, want sqlite3", cfg.Database.Driver)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sieve.yaml")
	data := `benchmark:
  sizes: [100, 2000]
  workers: [1, 3]
  strategies: [pull, range]
  start_from: zero
  repeats: 3
output:
  log_level: debug
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(New(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if want := []int{100, 2000}; !reflect.DeepEqual(cfg.Benchmark.Sizes, want) {
		t.Errorf("sizes = %v, want %v", cfg.Benchmark.Sizes, want)
	}
	if want := []int{1, 3}; !reflect.DeepEqual(cfg.Benchmark.Workers, want) {
		t.Errorf("workers = %v, want %v", cfg.Benchmark.Workers, want)
	}
	strategies, _ := cfg.ParsedStrategies()
	if want := []sieve.Strategy{sieve.DynamicPull, sieve.RangePartition}; !reflect.DeepEqual(strategies, want) {
		t.Errorf("strategies = %v, want %v", strategies, want)
	}
	if cfg.Benchmark.Repeats != 3 {
		t.Errorf("repeats = %d, want 3", cfg.Benchmark.Repeats)
	}
	if got := cfg.StartFor(2000); got != 0 {
		t.Errorf("StartFor(2000) = %d, want 0", got)
	}
	// Unset keys keep their defaults.
	if cfg.Output.FilenamePrefix != "sievebench" {
		t.Errorf("filename_prefix = %q, want sievebench", cfg.Output.FilenamePrefix)
	}
	if cfg.LoadedFrom() != path {
		t.Errorf("LoadedFrom() = %q, want %q", cfg.LoadedFrom(), path)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LoadedFrom() != "" {
		t.Errorf("LoadedFrom() = %q, want empty", cfg.LoadedFrom())
	}
	if got := cfg.StartFor(100); got != 11 {
		t.Errorf("StartFor(100) = %d, want 11", got)
	}
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("SIEVE_BENCHMARK_REPEATS", "5")
	t.Setenv("SIEVE_OUTPUT_FILENAME_PREFIX", "nightly")

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Benchmark.Repeats != 5 {
		t.Errorf("repeats = %d, want 5", cfg.Benchmark.Repeats)
	}
	if cfg.Output.FilenamePrefix != "nightly" {
		t.Errorf("filename_prefix = %q, want nightly", cfg.Output.FilenamePrefix)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no sizes", func(c *Config) { c.Benchmark.Sizes = nil }},
		{"negative size", func(c *Config) { c.Benchmark.Sizes = []int{-1} }},
		{"zero workers", func(c *Config) { c.Benchmark.Workers = []int{2, 0} }},
		{"no strategies", func(c *Config) { c.Benchmark.Strategies = nil }},
		{"bad strategy", func(c *Config) { c.Benchmark.Strategies = []string{"shuffle"} }},
		{"bad start", func(c *Config) { c.Benchmark.StartFrom = "middle" }},
		{"zero repeats", func(c *Config) { c.Benchmark.Repeats = 0 }},
		{"bad log level", func(c *Config) { c.Output.LogLevel = "loud" }},
		{"bad driver", func(c *Config) { c.Database.Enabled = true; c.Database.Driver = "oracle" }},
		{"no dsn", func(c *Config) { c.Database.Enabled = true; c.Database.DSN = "" }},
	}
	for _, tt := range tests {
		cfg := Default()
		tt.modify(cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: Validate() error = %v, want %v", tt.name, err, ErrInvalid)
		}
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sieve.yaml")
	cfg := Default()
	cfg.Benchmark.Sizes = []int{42}
	cfg.Database.Enabled = true

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(New(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(loaded.Benchmark.Sizes, []int{42}) || !loaded.Database.Enabled {
		t.Errorf("Load(Save(cfg)) = %+v, want sizes [42] and database enabled", loaded)
	}
}
