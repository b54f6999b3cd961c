// Package pipeline implements the batch transform applied to raw sensor
// data before anomaly scoring: load, clean, feature engineering, export.
// Every stage consumes and returns a whole table; the sequence is strictly
// ordered and single-threaded, and a given input always yields the identical
// output.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/medfabrik/plantops/maintenance/internal/dataset"
)

const ProcessedFileName = "processed_sensor_data.csv"

type Config struct {
	Logger *slog.Logger

	RawPath   string
	OutputDir string
	Window    int
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.RawPath == "" {
		return errors.New("raw data path is required")
	}
	if cfg.OutputDir == "" {
		return errors.New("output directory is required")
	}
	return nil
}

// Run executes the full data pipeline: load raw CSV, clean, engineer
// features, and write the processed dataset. The only failure modes are
// load-time: a missing file or missing required columns abort the run.
func Run(cfg Config) (dataset.Table, error) {
	if err := cfg.Validate(); err != nil {
		return dataset.Table{}, err
	}
	log := cfg.Logger

	table, err := dataset.Load(log, cfg.RawPath, dataset.NumericColumns)
	if err != nil {
		return dataset.Table{}, fmt.Errorf("failed to load raw data: %w", err)
	}

	table = Clean(log, table)
	table = EngineerFeatures(log, table, cfg.Window)

	processedPath := filepath.Join(cfg.OutputDir, ProcessedFileName)
	if err := table.WriteCSV(log, processedPath); err != nil {
		return dataset.Table{}, fmt.Errorf("failed to write processed data: %w", err)
	}

	return table, nil
}
