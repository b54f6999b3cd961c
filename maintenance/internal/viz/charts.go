// Package viz renders the scored dataset into chart artifacts. It has no
// contract beyond "read the scored table, write image files": the scoring
// pipeline never depends on anything in here.
package viz

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"

	"github.com/medfabrik/plantops/internal/svg"
	"github.com/medfabrik/plantops/maintenance/internal/dataset"
)

var machinePalette = []string{"#1f77b4", "#2ca02c", "#9467bd", "#8c564b", "#17becf", "#bcbd22"}

const (
	anomalyColor = "#e74c3c"
	normalColor  = "#2ecc71"
)

type Config struct {
	Logger *slog.Logger

	OutputDir string
	Sensors   []string
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.OutputDir == "" {
		return errors.New("output directory is required")
	}
	if len(cfg.Sensors) == 0 {
		return errors.New("at least one sensor column is required")
	}
	return nil
}

// RenderAll writes the five standard charts and returns their paths:
// time series with anomaly markers, machine/sensor z-score heatmap,
// normal-vs-anomaly box plots, cumulative anomaly count, and the sensor
// correlation matrix.
func RenderAll(cfg Config, t dataset.Table) ([]string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create plot directory: %w", err)
	}

	charts := []struct {
		name   string
		render func(Config, dataset.Table) []byte
	}{
		{"timeseries_anomalies.svg", renderTimeSeries},
		{"zscore_heatmap.svg", renderZScoreHeatmap},
		{"sensor_boxplots.svg", renderBoxplots},
		{"anomaly_timeline.svg", renderAnomalyTimeline},
		{"correlation_matrix.svg", renderCorrelationMatrix},
	}

	paths := make([]string, 0, len(charts))
	for _, chart := range charts {
		path := filepath.Join(cfg.OutputDir, chart.name)
		if err := os.WriteFile(path, chart.render(cfg, t), 0644); err != nil {
			return nil, fmt.Errorf("failed to write chart %s: %w", chart.name, err)
		}
		cfg.Logger.Info("Wrote chart", slog.String("path", path))
		paths = append(paths, path)
	}
	return paths, nil
}

// renderTimeSeries plots the first configured sensor over time, one line per
// machine, with combined-flag anomalies marked in red.
func renderTimeSeries(cfg Config, t dataset.Table) []byte {
	const width, height = 1120, 420
	const left, right, top, bottom = 70.0, 30.0, 50.0, 40.0
	sensor := cfg.Sensors[0]

	c := svg.New(width, height, 12, fmt.Sprintf("%s over time (anomalies marked)", sensor))

	if len(t.Rows) == 0 {
		return c.Bytes()
	}

	minTS, maxTS := t.Rows[0].Timestamp, t.Rows[0].Timestamp
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range t.Rows {
		if row.Timestamp.Before(minTS) {
			minTS = row.Timestamp
		}
		if row.Timestamp.After(maxTS) {
			maxTS = row.Timestamp
		}
		v := row.Values[sensor]
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	x := func(ts int64) float64 {
		return svg.Scale(float64(ts), float64(minTS.UnixNano()), float64(maxTS.UnixNano()), left, width-right)
	}
	y := func(v float64) float64 {
		return svg.Scale(v, lo, hi, height-bottom, top)
	}

	c.Line(left, height-bottom, width-right, height-bottom, "#999999", 1)
	c.Line(left, top, left, height-bottom, "#999999", 1)
	c.Text(left-8, y(lo)+4, fmt.Sprintf("%.1f", lo), "end", "#666666")
	c.Text(left-8, y(hi)+4, fmt.Sprintf("%.1f", hi), "end", "#666666")

	sorted := t.Clone()
	sorted.SortByMachineTime()
	for p, part := range sorted.Partitions() {
		points := make([][2]float64, 0, len(part.Index))
		for _, i := range part.Index {
			row := sorted.Rows[i]
			points = append(points, [2]float64{x(row.Timestamp.UnixNano()), y(row.Values[sensor])})
		}
		color := machinePalette[p%len(machinePalette)]
		c.Polyline(points, color, 1)
		c.Text(left+8, top+float64(14*(p+1)), part.MachineID, "start", color)
	}

	for _, row := range sorted.Rows {
		if row.Anomaly.Combined {
			c.Circle(x(row.Timestamp.UnixNano()), y(row.Values[sensor]), 2.5, anomalyColor)
		}
	}

	return c.Bytes()
}

// renderZScoreHeatmap shows the mean absolute z-score per machine and sensor.
func renderZScoreHeatmap(cfg Config, t dataset.Table) []byte {
	const cellW, cellH = 140.0, 44.0
	const left, top = 150.0, 70.0

	parts := t.Partitions()
	width := int(left + cellW*float64(len(cfg.Sensors)) + 30)
	height := int(top + cellH*float64(len(parts)) + 30)
	c := svg.New(width, height, 12, "Mean |z-score| per machine and sensor")

	// Scale colors against the hottest cell so contrast survives quiet data.
	values := make([][]float64, len(parts))
	maxVal := 0.0
	for pi, part := range parts {
		values[pi] = make([]float64, len(cfg.Sensors))
		for si, sensor := range cfg.Sensors {
			var sum float64
			for _, i := range part.Index {
				sum += math.Abs(t.Rows[i].Values[sensor+"_zscore"])
			}
			v := sum / float64(len(part.Index))
			values[pi][si] = v
			maxVal = math.Max(maxVal, v)
		}
	}

	for si, sensor := range cfg.Sensors {
		c.Text(left+cellW*float64(si)+cellW/2, top-12, sensor, "middle", "#333333")
	}
	for pi, part := range parts {
		c.Text(left-10, top+cellH*float64(pi)+cellH/2+4, part.MachineID, "end", "#333333")
		for si := range cfg.Sensors {
			v := values[pi][si]
			norm := 0.0
			if maxVal > 0 {
				norm = v / maxVal
			}
			x := left + cellW*float64(si)
			y := top + cellH*float64(pi)
			c.Rect(x, y, cellW-2, cellH-2, svg.HeatColor(norm), "#dddddd")
			c.Text(x+cellW/2, y+cellH/2+4, fmt.Sprintf("%.2f", v), "middle", "#333333")
		}
	}

	return c.Bytes()
}

// renderBoxplots draws, per sensor, the value distribution split by the
// combined flag. Whiskers span min and max; the box spans the quartiles.
func renderBoxplots(cfg Config, t dataset.Table) []byte {
	const panelW, height = 260, 420
	const top, bottom = 60.0, 40.0

	width := panelW * len(cfg.Sensors)
	c := svg.New(width, height, 12, "Sensor distribution: normal vs anomaly")

	for si, sensor := range cfg.Sensors {
		var normal, anomalous []float64
		for _, row := range t.Rows {
			if row.Anomaly.Combined {
				anomalous = append(anomalous, row.Values[sensor])
			} else {
				normal = append(normal, row.Values[sensor])
			}
		}

		all := append(slices.Clone(normal), anomalous...)
		if len(all) == 0 {
			continue
		}
		slices.Sort(all)
		lo, hi := all[0], all[len(all)-1]

		originX := float64(panelW * si)
		y := func(v float64) float64 { return svg.Scale(v, lo, hi, height-bottom, top) }

		c.Text(originX+panelW/2, height-12, sensor, "middle", "#333333")
		drawBox(c, normal, originX+panelW/2-60, y, normalColor)
		drawBox(c, anomalous, originX+panelW/2+20, y, anomalyColor)
	}

	return c.Bytes()
}

func drawBox(c *svg.Canvas, values []float64, x float64, y func(float64) float64, color string) {
	if len(values) == 0 {
		return
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	q1 := sortedQuantile(sorted, 0.25)
	med := sortedQuantile(sorted, 0.5)
	q3 := sortedQuantile(sorted, 0.75)
	lo, hi := sorted[0], sorted[len(sorted)-1]

	const boxW = 40.0
	mid := x + boxW/2
	c.Line(mid, y(lo), mid, y(q1), "#666666", 1)
	c.Line(mid, y(q3), mid, y(hi), "#666666", 1)
	c.Rect(x, y(q3), boxW, math.Max(y(q1)-y(q3), 1), color, "#666666")
	c.Line(x, y(med), x+boxW, y(med), "#333333", 2)
}

// renderAnomalyTimeline plots the cumulative combined-anomaly count over time.
func renderAnomalyTimeline(cfg Config, t dataset.Table) []byte {
	const width, height = 1120, 360
	const left, right, top, bottom = 70.0, 30.0, 50.0, 40.0

	c := svg.New(width, height, 12, "Cumulative anomaly count")
	if len(t.Rows) == 0 {
		return c.Bytes()
	}

	rows := slices.Clone(t.Rows)
	slices.SortStableFunc(rows, func(a, b dataset.Row) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	total := 0
	for _, row := range rows {
		if row.Anomaly.Combined {
			total++
		}
	}

	x := func(i int) float64 {
		return svg.Scale(float64(i), 0, float64(len(rows)-1), left, width-right)
	}
	y := func(count int) float64 {
		return svg.Scale(float64(count), 0, math.Max(float64(total), 1), height-bottom, top)
	}

	c.Line(left, height-bottom, width-right, height-bottom, "#999999", 1)
	c.Line(left, top, left, height-bottom, "#999999", 1)
	c.Text(left-8, y(total)+4, fmt.Sprintf("%d", total), "end", "#666666")

	points := make([][2]float64, 0, len(rows))
	count := 0
	for i, row := range rows {
		if row.Anomaly.Combined {
			count++
		}
		points = append(points, [2]float64{x(i), y(count)})
	}
	c.Polyline(points, anomalyColor, 1.5)

	return c.Bytes()
}

// renderCorrelationMatrix shows pairwise Pearson correlation of the sensors.
func renderCorrelationMatrix(cfg Config, t dataset.Table) []byte {
	const cellW, cellH = 130.0, 60.0
	const left, top = 150.0, 80.0

	n := len(cfg.Sensors)
	width := int(left + cellW*float64(n) + 30)
	height := int(top + cellH*float64(n) + 30)
	c := svg.New(width, height, 12, "Sensor correlation matrix")

	columns := make([][]float64, n)
	for i, sensor := range cfg.Sensors {
		columns[i] = t.Column(sensor)
	}

	for i, sensor := range cfg.Sensors {
		c.Text(left+cellW*float64(i)+cellW/2, top-12, sensor, "middle", "#333333")
		c.Text(left-10, top+cellH*float64(i)+cellH/2+4, sensor, "end", "#333333")
		for j := range cfg.Sensors {
			r := pearson(columns[i], columns[j])
			x := left + cellW*float64(j)
			y := top + cellH*float64(i)
			c.Rect(x, y, cellW-2, cellH-2, svg.DivergingColor(r), "#dddddd")
			c.Text(x+cellW/2, y+cellH/2+4, fmt.Sprintf("%.2f", r), "middle", "#333333")
		}
	}

	return c.Bytes()
}

func sortedQuantile(sorted []float64, q float64) float64 {
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

func pearson(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.NaN()
	}
	n := float64(len(a))
	var sumA, sumB float64
	for i := range a {
		sumA += a[i]
		sumB += b[i]
	}
	meanA, meanB := sumA/n, sumB/n

	var cov, varA, varB float64
	for i := range a {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}
