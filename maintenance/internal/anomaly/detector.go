// Package anomaly implements two complementary statistical scoring methods
// for sensor data.
//
// The z-score measures how many standard deviations a value sits from its
// machine's mean: intuitive and quick to react to point outliers, but the
// mean and deviation are themselves skewed by extremes. The IQR method
// defines the normal band as [Q1 − 1.5·IQR, Q3 + 1.5·IQR]: robust against
// extremes since quartiles ignore individual spikes, which suits production
// floors where single-sample sensor noise is common.
//
// A reading is anomalous when at least one method fires. The OR maximizes
// recall — gradual drift the IQR fences miss, one-sided skew the z-score
// under-weights — at some cost in precision: an explicit trade-off for
// environments where a missed defect costs more than a false alarm.
package anomaly

import (
	"errors"
	"log/slog"
	"slices"

	"github.com/medfabrik/plantops/maintenance/internal/dataset"
)

type Config struct {
	Logger *slog.Logger

	Sensors       []string
	ZThreshold    float64
	IQRMultiplier float64
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if len(cfg.Sensors) == 0 {
		return errors.New("at least one sensor column is required")
	}
	if cfg.ZThreshold <= 0 {
		return errors.New("z-score threshold must be greater than 0")
	}
	if cfg.IQRMultiplier <= 0 {
		return errors.New("iqr multiplier must be greater than 0")
	}
	return nil
}

func DefaultConfig(log *slog.Logger) Config {
	return Config{
		Logger:        log,
		Sensors:       slices.Clone(dataset.SensorColumns),
		ZThreshold:    DefaultZThreshold,
		IQRMultiplier: DefaultIQRMultiplier,
	}
}

// Combine derives anomaly_combined as the row-wise OR of the two method
// flags. It is always recomputed from its inputs, never set directly, and
// marks the table as carrying flag columns.
func Combine(log *slog.Logger, t dataset.Table) dataset.Table {
	out := t.Clone()

	flagged := 0
	for i := range out.Rows {
		combined := out.Rows[i].Anomaly.ZScore || out.Rows[i].Anomaly.IQR
		out.Rows[i].Anomaly.Combined = combined
		if combined {
			flagged++
		}
	}
	out.HasFlags = true

	log.Info("Combined anomaly flags",
		slog.Int("flagged", flagged),
		slog.Float64("ratio", ratio(flagged, len(out.Rows))))

	return out
}

// Detect runs the whole scoring sequence: z-scores, z-flags, IQR bounds,
// IQR flags, combined flag. Pure and deterministic; identical input and
// config always produce identical flags.
func Detect(cfg Config, t dataset.Table) (dataset.Table, error) {
	if err := cfg.Validate(); err != nil {
		return dataset.Table{}, err
	}
	log := cfg.Logger

	t = ComputeZScores(log, t, cfg.Sensors)
	t = FlagZScore(log, t, cfg.Sensors, cfg.ZThreshold)
	bounds := ComputeIQRBounds(log, t, cfg.Sensors, cfg.IQRMultiplier)
	t = FlagIQR(log, t, bounds, cfg.Sensors)
	t = Combine(log, t)
	return t, nil
}
