package anomaly_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/medfabrik/plantops/maintenance/internal/anomaly"
	"github.com/medfabrik/plantops/maintenance/internal/dataset"
)

func singleSensorTable(machine string, values []float64) dataset.Table {
	table := dataset.New([]string{"temperature_c"})
	for i, v := range values {
		table.Rows = append(table.Rows, dataset.Row{
			Timestamp: testBase.Add(time.Duration(i) * time.Minute),
			MachineID: machine,
			Values:    map[string]float64{"temperature_c": v},
		})
	}
	return table
}

func TestAnomaly_ComputeIQRBounds_LinearInterpolation(t *testing.T) {
	t.Parallel()

	log := logger.With("test", t.Name())

	// For {1,2,3,4,100}: Q1 = 2, Q3 = 4, IQR = 2, fences at -1 and 7.
	table := singleSensorTable("M1", []float64{1, 2, 3, 4, 100})

	bounds := anomaly.ComputeIQRBounds(log, table, []string{"temperature_c"}, 1.5)

	b := bounds["temperature_c"]
	require.Equal(t, -1.0, b.Lower)
	require.Equal(t, 7.0, b.Upper)
}

func TestAnomaly_FlagIQR_OnlyStrictlyOutsideIsFlagged(t *testing.T) {
	t.Parallel()

	log := logger.With("test", t.Name())

	table := singleSensorTable("M1", []float64{1, 2, 3, 4, 100})
	bounds := anomaly.ComputeIQRBounds(log, table, []string{"temperature_c"}, 1.5)

	out := anomaly.FlagIQR(log, table, bounds, []string{"temperature_c"})

	for i, r := range out.Rows {
		if r.Values["temperature_c"] == 100 {
			require.True(t, r.Anomaly.IQR, "row %d", i)
		} else {
			require.False(t, r.Anomaly.IQR, "row %d", i)
		}
	}
}

func TestAnomaly_FlagIQR_BoundaryValuesAreNotFlagged(t *testing.T) {
	t.Parallel()

	log := logger.With("test", t.Name())

	table := singleSensorTable("M1", []float64{1, 2, 3, 4, 100})
	bounds := anomaly.ComputeIQRBounds(log, table, []string{"temperature_c"}, 1.5)

	// Values sitting exactly on a fence are inside.
	boundary := singleSensorTable("M1", []float64{-1, 7})
	out := anomaly.FlagIQR(log, boundary, bounds, []string{"temperature_c"})

	require.False(t, out.Rows[0].Anomaly.IQR)
	require.False(t, out.Rows[1].Anomaly.IQR)
}

func TestAnomaly_ComputeIQRBounds_SkipsNaN(t *testing.T) {
	t.Parallel()

	log := logger.With("test", t.Name())

	// NaN cells from unclean input must not poison the fences: the bounds
	// for {1,2,3,4,100} stay the same when NaN readings are interleaved.
	table := singleSensorTable("M1", []float64{math.NaN(), 1, 2, math.NaN(), 3, 4, 100, math.NaN()})

	bounds := anomaly.ComputeIQRBounds(log, table, []string{"temperature_c"}, 1.5)

	b := bounds["temperature_c"]
	require.Equal(t, -1.0, b.Lower)
	require.Equal(t, 7.0, b.Upper)
	require.False(t, math.IsNaN(b.Lower))
	require.False(t, math.IsNaN(b.Upper))
}

func TestAnomaly_ComputeIQRBounds_SpansMachines(t *testing.T) {
	t.Parallel()

	log := logger.With("test", t.Name())

	// Bounds are global: both machines' readings contribute to one fence set.
	table := singleSensorTable("M1", []float64{1, 2, 3})
	other := singleSensorTable("M2", []float64{4, 100})
	table.Rows = append(table.Rows, other.Rows...)

	bounds := anomaly.ComputeIQRBounds(log, table, []string{"temperature_c"}, 1.5)

	b := bounds["temperature_c"]
	require.Equal(t, -1.0, b.Lower)
	require.Equal(t, 7.0, b.Upper)
}
