package anomaly

import (
	"log/slog"
	"math"

	"github.com/medfabrik/plantops/maintenance/internal/dataset"
)

// DefaultZThreshold is the three-sigma rule.
const DefaultZThreshold = 3.0

const suffixZScore = "_zscore"

// ComputeZScores standardizes each sensor column per machine partition and
// appends a <sensor>_zscore column. Machines have different baselines
// (heating-zone temperatures differ between machine types), so the mean and
// deviation are taken within each partition, not globally.
//
// A constant partition has zero deviation; its z-score is defined as zero so
// a flat signal can never be flagged.
func ComputeZScores(log *slog.Logger, t dataset.Table, sensors []string) dataset.Table {
	out := t.Clone()

	parts := out.Partitions()
	for _, sensor := range sensors {
		zCol := sensor + suffixZScore
		out.AddColumn(zCol)

		for _, part := range parts {
			values := make([]float64, len(part.Index))
			for j, i := range part.Index {
				values[j] = out.Rows[i].Values[sensor]
			}
			mean, std := sampleMeanStd(values)

			for _, i := range part.Index {
				if std == 0 {
					out.Rows[i].Values[zCol] = 0
					continue
				}
				out.Rows[i].Values[zCol] = (out.Rows[i].Values[sensor] - mean) / std
			}
		}
	}

	log.Debug("Computed z-scores", slog.Any("sensors", sensors))
	return out
}

// FlagZScore marks a row anomalous iff the absolute z-score of any sensor
// exceeds the threshold. The decision is a per-row OR across sensors, not an
// aggregate score.
func FlagZScore(log *slog.Logger, t dataset.Table, sensors []string, threshold float64) dataset.Table {
	out := t.Clone()

	flagged := 0
	for i := range out.Rows {
		anomalous := false
		for _, sensor := range sensors {
			if math.Abs(out.Rows[i].Values[sensor+suffixZScore]) > threshold {
				anomalous = true
				break
			}
		}
		out.Rows[i].Anomaly.ZScore = anomalous
		if anomalous {
			flagged++
		}
	}

	log.Info("Flagged z-score anomalies",
		slog.Int("flagged", flagged),
		slog.Float64("threshold", threshold),
		slog.Float64("ratio", ratio(flagged, len(out.Rows))))

	return out
}

func sampleMeanStd(values []float64) (float64, float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n

	if len(values) < 2 {
		return mean, 0
	}

	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / (n - 1))
}

func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
