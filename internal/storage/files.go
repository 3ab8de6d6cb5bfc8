package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/LuckySting/ConcurrentLab2/internal/config"
)

// Files writes measurements to <prefix>_results.csv and benchmark summaries
// to <prefix>_summary.json inside the output directory.
type Files struct {
	config  *config.OutputConfig
	baseDir string
	logger  *logrus.Logger
	mu      sync.Mutex

	resultsFile   *os.File
	resultsWriter *csv.Writer
	summaryPath   string

	saved int
}

func NewFiles(cfg *config.OutputConfig, logger *logrus.Logger) (*Files, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	baseDir := cfg.Directory
	if baseDir == "" {
		baseDir = "."
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	f := &Files{
		config:  cfg,
		baseDir: baseDir,
		logger:  logger,
	}
	if err := f.initializeFiles(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Files) prefix() string {
	if f.config.FilenamePrefix == "" {
		return "sievebench"
	}
	return f.config.FilenamePrefix
}

func (f *Files) initializeFiles() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.config.SaveCSV {
		path := filepath.Join(f.baseDir, f.prefix()+"_results.csv")
		file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open results file: %w", err)
		}

		f.resultsFile = file
		f.resultsWriter = csv.NewWriter(file)

		// Write header if file is new
		if stat, err := file.Stat(); err == nil && stat.Size() == 0 {
			if err := f.resultsWriter.Write(csvHeader); err != nil {
				return fmt.Errorf("failed to write header: %w", err)
			}
			f.resultsWriter.Flush()
		}
	}

	f.summaryPath = filepath.Join(f.baseDir, f.prefix()+"_summary.json")
	return nil
}

// ResultsPath is the CSV file measurements are appended to.
func (f *Files) ResultsPath() string {
	return filepath.Join(f.baseDir, f.prefix()+"_results.csv")
}

func (f *Files) SummaryPath() string { return f.summaryPath }

func (f *Files) SaveRecord(rec Record) error {
	if !f.config.SaveCSV || f.resultsWriter == nil {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.resultsWriter.Write(rec.csvRow()); err != nil {
		return fmt.Errorf("failed to write result record: %w", err)
	}
	f.saved++

	f.resultsWriter.Flush()
	if err := f.resultsWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush results file: %w", err)
	}
	return nil
}

// SaveSummary replaces the JSON summary with v.
func (f *Files) SaveSummary(v interface{}) error {
	if !f.config.SaveJSON {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	tmp := f.summaryPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if err := os.Rename(tmp, f.summaryPath); err != nil {
		return fmt.Errorf("failed to replace summary: %w", err)
	}
	return nil
}

// Saved is the number of records written since the files were opened.
func (f *Files) Saved() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved
}

func (f *Files) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []string

	if f.resultsWriter != nil {
		f.resultsWriter.Flush()
		if err := f.resultsWriter.Error(); err != nil {
			errs = append(errs, fmt.Sprintf("results writer: %v", err))
		}
	}
	if f.resultsFile != nil {
		if err := f.resultsFile.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("results file: %v", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("storage close errors: %s", strings.Join(errs, "; "))
	}
	f.logger.Debugf("Storage closed after %d records", f.saved)
	return nil
}
