package pipeline

import (
	"log/slog"
	"math"

	"github.com/medfabrik/plantops/maintenance/internal/dataset"
)

// ValueRange is the physically plausible closed interval for one column.
// Out-of-range readings are clipped to the nearer bound, never dropped, so
// cleaning preserves row count apart from deduplication.
type ValueRange struct {
	Column string
	Lower  float64
	Upper  float64
}

var ValueRanges = []ValueRange{
	{"temperature_c", 0.0, 200.0},
	{"vibration_mm_s", 0.0, 50.0},
	{"pressure_bar", 0.0, 30.0},
	{"cycle_time_s", 0.1, 120.0},
	{"operating_hours", 0.0, 100_000.0},
}

// Clean deduplicates, fills gaps, and clips the dataset. It never fails:
// duplicate or out-of-range data is repaired, not rejected. Running it on
// its own output yields the same table.
//
// Steps, in order:
//  1. sort by (machine_id, timestamp) and drop later duplicates of the pair
//  2. per machine, per numeric column: forward fill, then backward fill,
//     then the global column mean for anything still missing
//  3. clip every numeric column into its valid range, inclusive
func Clean(log *slog.Logger, t dataset.Table) dataset.Table {
	out := t.Clone()
	out.SortByMachineTime()

	before := len(out.Rows)
	out.Rows = dropDuplicates(out.Rows)
	log.Info("Removed duplicate rows", slog.Int("removed", before-len(out.Rows)))

	// Global means are taken before filling so copied values don't weigh in.
	means := make(map[string]float64, len(out.Columns))
	for _, col := range out.Columns {
		means[col] = out.ColumnMean(col)
	}

	for _, part := range out.Partitions() {
		for _, col := range out.Columns {
			fillPartition(out.Rows, part.Index, col, means[col])
		}
	}

	for _, vr := range ValueRanges {
		if !out.HasColumn(vr.Column) {
			continue
		}
		for i := range out.Rows {
			v := out.Rows[i].Values[vr.Column]
			out.Rows[i].Values[vr.Column] = math.Min(math.Max(v, vr.Lower), vr.Upper)
		}
	}

	log.Info("Cleaned dataset", slog.Int("rows", len(out.Rows)))
	return out
}

// dropDuplicates keeps the first occurrence of each (timestamp, machine_id)
// pair. Rows must already be sorted by (machine_id, timestamp).
func dropDuplicates(rows []dataset.Row) []dataset.Row {
	type key struct {
		machine string
		ts      int64
	}
	seen := make(map[key]bool, len(rows))
	out := rows[:0]
	for _, row := range rows {
		k := key{row.MachineID, row.Timestamp.UnixNano()}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, row)
	}
	return out
}

// fillPartition repairs NaN cells of one column within one machine's ordered
// rows: forward fill, backward fill for leading gaps, then the global mean.
func fillPartition(rows []dataset.Row, index []int, col string, globalMean float64) {
	last := math.NaN()
	for _, i := range index {
		v := rows[i].Values[col]
		if math.IsNaN(v) {
			rows[i].Values[col] = last
		} else {
			last = v
		}
	}

	next := math.NaN()
	for j := len(index) - 1; j >= 0; j-- {
		i := index[j]
		v := rows[i].Values[col]
		if math.IsNaN(v) {
			rows[i].Values[col] = next
		} else {
			next = v
		}
	}

	for _, i := range index {
		if math.IsNaN(rows[i].Values[col]) {
			rows[i].Values[col] = globalMean
		}
	}
}
