package report

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/medfabrik/plantops/netmon/internal/scan"
)

var statusColors = map[string]string{
	string(scan.StatusOnline):   "#2ecc71",
	string(scan.StatusDegraded): "#f39c12",
	string(scan.StatusOffline):  "#e74c3c",
}

type htmlRow struct {
	Host        string
	Status      string
	StatusColor string
	Latency     string
	OpenPorts   string
	ClosedPorts string
	Time        string
}

type htmlView struct {
	Online      int
	Degraded    int
	Offline     int
	Total       int
	Rows        []htmlRow
	GeneratedAt string
}

var statusPage = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Network Monitor Report</title>
  <style>
    body { font-family: 'Segoe UI', sans-serif; background: #1a1a2e; color: #eee; margin: 0; padding: 20px; }
    h1 { color: #00d4ff; border-bottom: 2px solid #00d4ff; padding-bottom: 8px; }
    .summary { display: flex; gap: 20px; margin: 20px 0; }
    .card { background: #16213e; border-radius: 8px; padding: 16px 24px; text-align: center; min-width: 100px; }
    .card .num { font-size: 2em; font-weight: bold; }
    .card .label { font-size: 0.85em; color: #aaa; }
    table { width: 100%; border-collapse: collapse; background: #16213e; border-radius: 8px; overflow: hidden; }
    th { background: #0f3460; padding: 12px; text-align: left; }
    td { padding: 10px 12px; border-bottom: 1px solid #2a2a4a; }
    tr:hover td { background: #1e3a5f; }
    .ts { color: #888; font-size: 0.85em; margin-top: 20px; }
  </style>
</head>
<body>
  <h1>Network Monitor &mdash; Status Report</h1>
  <div class="summary">
    <div class="card"><div class="num" style="color:#2ecc71">{{.Online}}</div><div class="label">ONLINE</div></div>
    <div class="card"><div class="num" style="color:#f39c12">{{.Degraded}}</div><div class="label">DEGRADED</div></div>
    <div class="card"><div class="num" style="color:#e74c3c">{{.Offline}}</div><div class="label">OFFLINE</div></div>
    <div class="card"><div class="num" style="color:#00d4ff">{{.Total}}</div><div class="label">TOTAL</div></div>
  </div>
  <table>
    <thead>
      <tr><th>Host</th><th>Status</th><th>Latency</th><th>Open Ports</th><th>Closed Ports</th><th>Time</th></tr>
    </thead>
    <tbody>
{{- range .Rows}}
      <tr>
        <td>{{.Host}}</td>
        <td style="color:{{.StatusColor}};font-weight:bold">{{.Status}}</td>
        <td>{{.Latency}}</td>
        <td>{{.OpenPorts}}</td>
        <td style="color:#e74c3c">{{.ClosedPorts}}</td>
        <td>{{.Time}}</td>
      </tr>
{{- end}}
    </tbody>
  </table>
  <p class="ts">Generated: {{.GeneratedAt}}</p>
</body>
</html>
`))

// WriteHTML renders the status page for one scan and returns the path.
func WriteHTML(log *slog.Logger, dir string, now time.Time, results []scan.CheckResult) (string, error) {
	view := htmlView{
		Total:       len(results),
		GeneratedAt: now.UTC().Format("2006-01-02 15:04:05 UTC"),
	}

	for _, r := range results {
		status := r.Status()
		switch status {
		case scan.StatusOnline:
			view.Online++
		case scan.StatusDegraded:
			view.Degraded++
		case scan.StatusOffline:
			view.Offline++
		}

		latency := "—"
		if r.PingOK {
			latency = fmt.Sprintf("%.2f ms", float64(r.Latency.Microseconds())/1000)
		}
		view.Rows = append(view.Rows, htmlRow{
			Host:        r.Host,
			Status:      string(status),
			StatusColor: statusColors[string(status)],
			Latency:     latency,
			OpenPorts:   joinPorts(r.OpenPorts),
			ClosedPorts: joinPorts(r.ClosedPorts),
			Time:        r.Timestamp.UTC().Format("15:04:05"),
		})
	}

	var buf bytes.Buffer
	if err := statusPage.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render status page: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s%s.html", jsonFilePrefix, now.UTC().Format("20060102_150405")))
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write status page: %w", err)
	}

	log.Info("Wrote HTML report", slog.String("path", path))
	return path, nil
}

func joinPorts(ports []int) string {
	if len(ports) == 0 {
		return "—"
	}
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ", ")
}
