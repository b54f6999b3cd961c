package dataset

import (
	"maps"
	"math"
	"slices"
	"time"
)

const (
	ColTimestamp = "timestamp"
	ColMachineID = "machine_id"
	ColLabel     = "label"

	ColAnomalyZScore   = "anomaly_zscore"
	ColAnomalyIQR      = "anomaly_iqr"
	ColAnomalyCombined = "anomaly_combined"
)

// SensorColumns are the measurement columns that feed anomaly scoring.
var SensorColumns = []string{
	"temperature_c",
	"vibration_mm_s",
	"pressure_bar",
	"cycle_time_s",
}

// NumericColumns are all numeric base columns, including the wear indicator
// which is cleaned and feature-engineered but excluded from scoring.
var NumericColumns = []string{
	"temperature_c",
	"vibration_mm_s",
	"pressure_bar",
	"cycle_time_s",
	"operating_hours",
}

// AnomalyFlags holds the per-row scoring decisions. Combined is always
// recomputed from the other two, never set directly.
type AnomalyFlags struct {
	ZScore   bool
	IQR      bool
	Combined bool
}

// Row is one (machine, timestamp) observation. Values holds every numeric
// column, base and derived; a missing cell is NaN.
type Row struct {
	Timestamp time.Time
	MachineID string
	Label     bool
	Values    map[string]float64
	Anomaly   AnomalyFlags
}

func (r Row) Clone() Row {
	out := r
	out.Values = maps.Clone(r.Values)
	return out
}

// Table is the working dataset. Columns lists the numeric columns in their
// append order so serialization stays deterministic. Stages consume and
// return whole tables; none mutates its input.
type Table struct {
	Columns  []string
	Rows     []Row
	HasFlags bool
}

func New(columns []string) Table {
	return Table{Columns: slices.Clone(columns)}
}

func (t Table) Clone() Table {
	out := Table{
		Columns:  slices.Clone(t.Columns),
		Rows:     make([]Row, len(t.Rows)),
		HasFlags: t.HasFlags,
	}
	for i, row := range t.Rows {
		out.Rows[i] = row.Clone()
	}
	return out
}

func (t Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

// AddColumn registers a numeric column. Adding an existing column is a no-op
// so stages stay idempotent.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// SortByMachineTime orders rows by (machine_id, timestamp), the canonical
// order every windowed computation assumes.
func (t *Table) SortByMachineTime() {
	slices.SortStableFunc(t.Rows, func(a, b Row) int {
		if c := compareStrings(a.MachineID, b.MachineID); c != 0 {
			return c
		}
		return a.Timestamp.Compare(b.Timestamp)
	})
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Partition is the subsequence of row indexes sharing one machine_id, in
// current row order.
type Partition struct {
	MachineID string
	Index     []int
}

// Partitions groups row indexes by machine, preserving row order within each
// group and first-seen order across groups.
func (t Table) Partitions() []Partition {
	byMachine := make(map[string]int)
	var parts []Partition
	for i, row := range t.Rows {
		p, ok := byMachine[row.MachineID]
		if !ok {
			p = len(parts)
			byMachine[row.MachineID] = p
			parts = append(parts, Partition{MachineID: row.MachineID})
		}
		parts[p].Index = append(parts[p].Index, i)
	}
	return parts
}

// Column returns the values of a numeric column in row order. Rows without
// the column yield NaN.
func (t Table) Column(name string) []float64 {
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		v, ok := row.Values[name]
		if !ok {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

// ColumnMean is the mean of a column's non-NaN values, NaN when none exist.
func (t Table) ColumnMean(name string) float64 {
	var sum float64
	var n int
	for _, row := range t.Rows {
		v, ok := row.Values[name]
		if !ok || math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
