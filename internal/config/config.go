// Package config loads sievebench settings from YAML, environment and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/LuckySting/ConcurrentLab2/internal/sieve"
)

const (
	Version   = "1.2.0"
	EnvPrefix = "SIEVE"

	StartFromStop = "stop"
	StartFromZero = "zero"
)

var ErrInvalid = errors.New("invalid configuration")

type BenchmarkConfig struct {
	Sizes      []int    `json:"sizes" yaml:"sizes" mapstructure:"sizes"`
	Workers    []int    `json:"workers" yaml:"workers" mapstructure:"workers"`
	Strategies []string `json:"strategies" yaml:"strategies" mapstructure:"strategies"`
	StartFrom  string   `json:"start_from" yaml:"start_from" mapstructure:"start_from"`
	Repeats    int      `json:"repeats" yaml:"repeats" mapstructure:"repeats"`
	Verify     bool     `json:"verify" yaml:"verify" mapstructure:"verify"`
}

type OutputConfig struct {
	Directory      string `json:"directory" yaml:"directory" mapstructure:"directory"`
	FilenamePrefix string `json:"filename_prefix" yaml:"filename_prefix" mapstructure:"filename_prefix"`
	SaveCSV        bool   `json:"save_csv" yaml:"save_csv" mapstructure:"save_csv"`
	SaveJSON       bool   `json:"save_json" yaml:"save_json" mapstructure:"save_json"`
	LogLevel       string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	Verbose        bool   `json:"verbose" yaml:"verbose" mapstructure:"verbose"`
}

type DatabaseConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Driver  string `json:"driver" yaml:"driver" mapstructure:"driver"`
	DSN     string `json:"dsn" yaml:"dsn" mapstructure:"dsn"`
}

type Config struct {
	Benchmark BenchmarkConfig `json:"benchmark" yaml:"benchmark" mapstructure:"benchmark"`
	Output    OutputConfig    `json:"output" yaml:"output" mapstructure:"output"`
	Database  DatabaseConfig  `json:"database" yaml:"database" mapstructure:"database"`

	loadedFrom string
}

// LoadedFrom is the config file actually read, or "" when running on defaults.
func (c *Config) LoadedFrom() string { return c.loadedFrom }

// ParsedStrategies resolves the configured strategy names.
func (c *Config) ParsedStrategies() ([]sieve.Strategy, error) {
	out := make([]sieve.Strategy, 0, len(c.Benchmark.Strategies))
	for _, name := range c.Benchmark.Strategies {
		s, err := sieve.ParseStrategy(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// StartFor returns the first index a strategy must mark for a sieve over [0, n].
func (c *Config) StartFor(n int) int {
	if c.Benchmark.StartFrom == StartFromZero {
		return 0
	}
	return sieve.Stop(n)
}

func setDefaults(v *viper.Viper) {
	names := make([]string, 0, 4)
	for _, s := range sieve.Strategies() {
		names = append(names, s.String())
	}

	// Benchmark defaults
	v.SetDefault("benchmark.sizes", []int{1000, 10000, 100000, 1000000})
	v.SetDefault("benchmark.workers", []int{})
	v.SetDefault("benchmark.strategies", names)
	v.SetDefault("benchmark.start_from", StartFromStop)
	v.SetDefault("benchmark.repeats", 1)
	v.SetDefault("benchmark.verify", true)

	// Output defaults
	v.SetDefault("output.directory", ".")
	v.SetDefault("output.filename_prefix", "sievebench")
	v.SetDefault("output.save_csv", true)
	v.SetDefault("output.save_json", true)
	v.SetDefault("output.log_level", "info")
	v.SetDefault("output.verbose", false)

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "sievebench.db")
}

// New returns a viper instance carrying defaults and environment bindings.
// Callers may bind flags to it before passing it to Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path into v, if it exists, and decodes the result. A .env file
// next to the working directory is applied to the environment first.
func Load(v *viper.Viper, path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.loadedFrom = v.ConfigFileUsed()
	if _, err := os.Stat(cfg.loadedFrom); err != nil {
		cfg.loadedFrom = ""
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	// Defaults always decode.
	_ = New().Unmarshal(&cfg)
	return &cfg
}

func (c *Config) Validate() error {
	if len(c.Benchmark.Sizes) == 0 {
		return fmt.Errorf("%w: at least one size is required", ErrInvalid)
	}
	for _, n := range c.Benchmark.Sizes {
		if n < 0 {
			return fmt.Errorf("%w: size %d is negative", ErrInvalid, n)
		}
	}
	for _, w := range c.Benchmark.Workers {
		if w <= 0 {
			return fmt.Errorf("%w: worker count %d must be positive", ErrInvalid, w)
		}
	}
	if len(c.Benchmark.Strategies) == 0 {
		return fmt.Errorf("%w: at least one strategy is required", ErrInvalid)
	}
	if _, err := c.ParsedStrategies(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	switch c.Benchmark.StartFrom {
	case StartFromStop, StartFromZero:
	default:
		return fmt.Errorf("%w: start_from must be %q or %q, got %q",
			ErrInvalid, StartFromStop, StartFromZero, c.Benchmark.StartFrom)
	}
	if c.Benchmark.Repeats < 1 {
		return fmt.Errorf("%w: repeats must be at least 1", ErrInvalid)
	}

	switch strings.ToLower(c.Output.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.Output.LogLevel)
	}

	if c.Database.Enabled {
		switch c.Database.Driver {
		case "sqlite3", "postgres":
		default:
			return fmt.Errorf("%w: unsupported database driver %q", ErrInvalid, c.Database.Driver)
		}
		if c.Database.DSN == "" {
			return fmt.Errorf("%w: database dsn is required", ErrInvalid)
		}
	}
	return nil
}

// Save writes cfg as YAML with a generated header.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	header := `# sievebench configuration v` + Version + `
# Generated on ` + time.Now().Format("2006-01-02 15:04:05") + `
# Every key can be overridden with ` + EnvPrefix + `_<SECTION>_<KEY>.

`
	return os.WriteFile(path, []byte(header+string(data)), 0644)
}
