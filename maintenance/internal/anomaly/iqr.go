package anomaly

import (
	"log/slog"
	"math"
	"slices"

	"github.com/medfabrik/plantops/maintenance/internal/dataset"
)

// DefaultIQRMultiplier is the standard Tukey fence multiplier.
const DefaultIQRMultiplier = 1.5

// Bounds is the valid interval for one sensor; values strictly outside it
// are flagged.
type Bounds struct {
	Lower float64
	Upper float64
}

// ComputeIQRBounds derives Tukey fences per sensor across ALL machines:
// lower = Q1 − m·IQR, upper = Q3 + m·IQR. Quartiles use linear interpolation
// between order statistics so boundary values reproduce exactly across runs.
//
// The bounds are global, machine-spanning, to give every machine a uniform
// reference, while the z-score runs per machine. Machine-specific fences are
// a possible refinement, deliberately not taken here.
func ComputeIQRBounds(log *slog.Logger, t dataset.Table, sensors []string, multiplier float64) map[string]Bounds {
	bounds := make(map[string]Bounds, len(sensors))
	for _, sensor := range sensors {
		// NaN cells (unclean input) are excluded; sorting them would
		// interpolate NaN into the quantiles and poison both fences.
		column := t.Column(sensor)
		values := make([]float64, 0, len(column))
		for _, v := range column {
			if !math.IsNaN(v) {
				values = append(values, v)
			}
		}
		slices.Sort(values)

		q1 := quantile(values, 0.25)
		q3 := quantile(values, 0.75)
		iqr := q3 - q1
		bounds[sensor] = Bounds{
			Lower: q1 - multiplier*iqr,
			Upper: q3 + multiplier*iqr,
		}

		log.Debug("Computed IQR bounds",
			slog.String("sensor", sensor),
			slog.Float64("q1", q1),
			slog.Float64("q3", q3),
			slog.Float64("lower", bounds[sensor].Lower),
			slog.Float64("upper", bounds[sensor].Upper))
	}
	return bounds
}

// FlagIQR marks a row anomalous iff any sensor value falls strictly outside
// its bounds.
func FlagIQR(log *slog.Logger, t dataset.Table, bounds map[string]Bounds, sensors []string) dataset.Table {
	out := t.Clone()

	flagged := 0
	for i := range out.Rows {
		anomalous := false
		for _, sensor := range sensors {
			b, ok := bounds[sensor]
			if !ok {
				continue
			}
			v := out.Rows[i].Values[sensor]
			if v < b.Lower || v > b.Upper {
				anomalous = true
				break
			}
		}
		out.Rows[i].Anomaly.IQR = anomalous
		if anomalous {
			flagged++
		}
	}

	log.Info("Flagged IQR anomalies",
		slog.Int("flagged", flagged),
		slog.Float64("ratio", ratio(flagged, len(out.Rows))))

	return out
}

// quantile interpolates linearly between order statistics, matching the
// default percentile convention of most statistics tooling (type 7).
// Input must be sorted.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
