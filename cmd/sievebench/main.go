// sievebench benchmarks four ways of parallelising the marking phase of a
// Sieve of Eratosthenes.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/LuckySting/ConcurrentLab2/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "sievebench",
	Short: "Parallel Sieve of Eratosthenes strategy benchmark",
	Long: `sievebench sieves [0, N] with a sequential bootstrap followed by one of four
parallel marking strategies (range partition, divisor partition, pooled tasks,
dynamic pull), verifies the result and reports wall-clock timings.`,
	SilenceUsage: true,
}

// Global flags
var (
	configPath string
	verbose    bool
	logLevel   string
	outputDir  string

	v = config.New()
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "sievebench.yaml", "Configuration file path")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "Output directory (overrides config)")

	// Bind flags to viper
	v.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	v.BindPFlag("output.log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	v.BindPFlag("output.directory", rootCmd.PersistentFlags().Lookup("output-dir"))

	rootCmd.AddCommand(benchCmd, countCmd, verifyCmd, configCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration after all flags have been parsed.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(v, configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Output.Verbose = true
		cfg.Output.LogLevel = "debug"
	}
	return cfg, nil
}

func setupLogger(cfg config.OutputConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		if cfg.Verbose {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(logrus.InfoLevel)
		}
	}

	return logger
}
