package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/medfabrik/plantops/internal/svg"
	"github.com/medfabrik/plantops/netmon/internal/scan"
)

const maxChartReports = 20

// RenderCharts aggregates the most recent JSON reports in dir into three SVG
// charts: status counts per scan, latency history per host, and the port
// status of the latest scan. Returns the written paths.
func RenderCharts(log *slog.Logger, dir string) ([]string, error) {
	payloads, err := LoadRecentPayloads(dir, maxChartReports)
	if err != nil {
		return nil, err
	}
	if len(payloads) == 0 {
		log.Warn("No reports found, skipping charts", slog.String("dir", dir))
		return nil, nil
	}

	charts := []struct {
		name   string
		render func([]Payload) []byte
	}{
		{"01_status_overview.svg", renderStatusOverview},
		{"02_latency_history.svg", renderLatencyHistory},
		{"03_port_status.svg", renderPortStatus},
	}

	paths := make([]string, 0, len(charts))
	for _, chart := range charts {
		data := chart.render(payloads)
		if data == nil {
			continue
		}
		path := filepath.Join(dir, chart.name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write chart %s: %w", chart.name, err)
		}
		log.Info("Wrote chart", slog.String("path", path))
		paths = append(paths, path)
	}
	return paths, nil
}

// renderStatusOverview draws stacked bars of online/degraded/offline counts
// per scan.
func renderStatusOverview(payloads []Payload) []byte {
	const width, height = 960, 360
	const left, right, top, bottom = 70.0, 30.0, 50.0, 50.0

	c := svg.New(width, height, 12, "Device status per scan")

	maxHosts := 0
	for _, p := range payloads {
		maxHosts = max(maxHosts, p.TotalHosts)
	}
	if maxHosts == 0 {
		return c.Bytes()
	}

	plotW := float64(width) - left - right
	barW := plotW / float64(len(payloads)) * 0.75
	gap := plotW / float64(len(payloads))

	y := func(count int) float64 {
		return svg.Scale(float64(count), 0, float64(maxHosts), float64(height)-bottom, top)
	}

	for i, p := range payloads {
		x := left + gap*float64(i) + (gap-barW)/2
		base := float64(height) - bottom

		for _, seg := range []struct {
			count int
			color string
		}{
			{p.Online, statusColors[string(scan.StatusOnline)]},
			{p.Degraded, statusColors[string(scan.StatusDegraded)]},
			{p.Offline, statusColors[string(scan.StatusOffline)]},
		} {
			if seg.count == 0 {
				continue
			}
			h := base - y(seg.count)
			c.Rect(x, base-h, barW, h, seg.color, "none")
			base -= h
		}

		c.Text(x+barW/2, float64(height)-bottom+16, p.GeneratedAt.UTC().Format("15:04"), "middle", "#666666")
	}

	c.Line(left, float64(height)-bottom, float64(width)-right, float64(height)-bottom, "#999999", 1)
	return c.Bytes()
}

// renderLatencyHistory draws one latency line per host across the scans.
func renderLatencyHistory(payloads []Payload) []byte {
	const width, height = 960, 400
	const left, right, top, bottom = 70.0, 30.0, 50.0, 40.0

	type point struct {
		scanIdx int
		ms      float64
	}
	series := make(map[string][]point)
	var hosts []string
	maxMS := 0.0

	for i, p := range payloads {
		for _, r := range p.Results {
			if !r.PingOK || r.PingLatencyMS == nil {
				continue
			}
			if _, seen := series[r.Host]; !seen {
				hosts = append(hosts, r.Host)
			}
			series[r.Host] = append(series[r.Host], point{scanIdx: i, ms: *r.PingLatencyMS})
			maxMS = max(maxMS, *r.PingLatencyMS)
		}
	}
	if len(hosts) == 0 {
		return nil
	}
	slices.Sort(hosts)

	c := svg.New(width, height, 12, "Ping latency per host (ms)")

	x := func(i int) float64 {
		return svg.Scale(float64(i), 0, float64(max(len(payloads)-1, 1)), left, float64(width)-right)
	}
	y := func(ms float64) float64 {
		return svg.Scale(ms, 0, maxMS, float64(height)-bottom, top)
	}

	c.Line(left, float64(height)-bottom, float64(width)-right, float64(height)-bottom, "#999999", 1)
	c.Line(left, top, left, float64(height)-bottom, "#999999", 1)
	c.Text(left-8, y(maxMS)+4, fmt.Sprintf("%.1f", maxMS), "end", "#666666")
	c.Text(left-8, y(0)+4, "0", "end", "#666666")

	palette := []string{"#1f77b4", "#2ca02c", "#9467bd", "#8c564b", "#17becf", "#bcbd22"}
	for hi, host := range hosts {
		color := palette[hi%len(palette)]
		points := make([][2]float64, 0, len(series[host]))
		for _, pt := range series[host] {
			px, py := x(pt.scanIdx), y(pt.ms)
			points = append(points, [2]float64{px, py})
			c.Circle(px, py, 2.5, color)
		}
		c.Polyline(points, color, 1.5)
		c.Text(left+8, top+float64(14*(hi+1)), host, "start", color)
	}

	return c.Bytes()
}

// renderPortStatus draws the open/closed grid of the latest scan.
func renderPortStatus(payloads []Payload) []byte {
	latest := payloads[len(payloads)-1]

	portSet := make(map[int]struct{})
	for _, r := range latest.Results {
		for _, p := range r.OpenPorts {
			portSet[p] = struct{}{}
		}
		for _, p := range r.ClosedPorts {
			portSet[p] = struct{}{}
		}
	}
	if len(portSet) == 0 {
		return nil
	}
	ports := make([]int, 0, len(portSet))
	for p := range portSet {
		ports = append(ports, p)
	}
	slices.Sort(ports)

	const cellW, cellH = 90.0, 40.0
	const left, top = 180.0, 70.0
	width := int(left + cellW*float64(len(ports)) + 30)
	height := int(top + cellH*float64(len(latest.Results)) + 30)

	c := svg.New(width, height, 12, "Port status per host (latest scan)")

	for pi, port := range ports {
		c.Text(left+cellW*float64(pi)+cellW/2, top-12, fmt.Sprintf("%d", port), "middle", "#333333")
	}
	for ri, r := range latest.Results {
		c.Text(left-10, top+cellH*float64(ri)+cellH/2+4, r.Host, "end", "#333333")
		for pi, port := range ports {
			x := left + cellW*float64(pi)
			y := top + cellH*float64(ri)

			color, label := "#bdc3c7", "n/a"
			if slices.Contains(r.OpenPorts, port) {
				color, label = statusColors[string(scan.StatusOnline)], "open"
			} else if slices.Contains(r.ClosedPorts, port) {
				color, label = statusColors[string(scan.StatusOffline)], "closed"
			}
			c.Rect(x, y, cellW-2, cellH-2, color, "#dddddd")
			c.Text(x+cellW/2, y+cellH/2+4, label, "middle", "#16213e")
		}
	}

	return c.Bytes()
}
