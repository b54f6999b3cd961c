package pipeline

import (
	"log/slog"
	"math"

	"github.com/medfabrik/plantops/maintenance/internal/dataset"
)

// DefaultWindow is the trailing window size, in readings, for rolling
// statistics.
const DefaultWindow = 10

const (
	suffixRollMean = "_roll_mean"
	suffixRollStd  = "_roll_std"
	suffixDiff     = "_diff"
)

// EngineerFeatures derives rolling statistics and first differences for
// every numeric column, per machine partition. It sorts the table itself so
// callers don't have to guarantee order. Three columns are appended per
// input column:
//
//	<col>_roll_mean  trailing mean over the window (partial windows allowed)
//	<col>_roll_std   trailing sample deviation; a single-point window is 0
//	<col>_diff       first difference; the first row of a partition is 0
//
// Derived columns never contain NaN; every edge case has a defined value.
func EngineerFeatures(log *slog.Logger, t dataset.Table, window int) dataset.Table {
	if window <= 0 {
		window = DefaultWindow
	}

	out := t.Clone()
	out.SortByMachineTime()

	base := out.Columns
	parts := out.Partitions()
	for _, col := range base {
		meanCol := col + suffixRollMean
		stdCol := col + suffixRollStd
		diffCol := col + suffixDiff
		out.AddColumn(meanCol)
		out.AddColumn(stdCol)
		out.AddColumn(diffCol)

		for _, part := range parts {
			series := make([]float64, len(part.Index))
			for j, i := range part.Index {
				series[j] = out.Rows[i].Values[col]
			}

			for j, i := range part.Index {
				lo := j - window + 1
				if lo < 0 {
					lo = 0
				}
				mean, std := sampleMeanStd(series[lo : j+1])
				out.Rows[i].Values[meanCol] = mean
				out.Rows[i].Values[stdCol] = std

				if j == 0 {
					out.Rows[i].Values[diffCol] = 0
				} else {
					out.Rows[i].Values[diffCol] = series[j] - series[j-1]
				}
			}
		}
	}

	log.Info("Engineered features",
		slog.Int("window", window),
		slog.Int("columns", len(out.Columns)+3))

	return out
}

// sampleMeanStd returns the mean and sample standard deviation of values.
// The deviation of fewer than two points is defined as zero, not NaN.
func sampleMeanStd(values []float64) (float64, float64) {
	n := float64(len(values))
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
