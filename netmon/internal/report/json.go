// Package report turns scan results into artifacts: a JSON log per scan, an
// HTML status page, and SVG charts aggregated over recent scans.
package report

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/medfabrik/plantops/netmon/internal/scan"
)

const jsonFilePrefix = "report_"

// Result is the JSON shape of one device check. Latency is null for
// unreachable hosts rather than zero, so downstream consumers can tell
// "no answer" from "answered instantly".
type Result struct {
	Host          string    `json:"host"`
	Timestamp     time.Time `json:"timestamp"`
	Status        string    `json:"status"`
	PingOK        bool      `json:"ping_ok"`
	PingLatencyMS *float64  `json:"ping_latency_ms"`
	OpenPorts     []int     `json:"open_ports"`
	ClosedPorts   []int     `json:"closed_ports"`
}

type Payload struct {
	GeneratedAt time.Time `json:"generated_at"`
	TotalHosts  int       `json:"total_hosts"`
	Online      int       `json:"online"`
	Degraded    int       `json:"degraded"`
	Offline     int       `json:"offline"`
	Results     []Result  `json:"results"`
}

func BuildPayload(now time.Time, results []scan.CheckResult) Payload {
	payload := Payload{
		GeneratedAt: now.UTC(),
		TotalHosts:  len(results),
		Results:     make([]Result, 0, len(results)),
	}

	for _, r := range results {
		switch r.Status() {
		case scan.StatusOnline:
			payload.Online++
		case scan.StatusDegraded:
			payload.Degraded++
		case scan.StatusOffline:
			payload.Offline++
		}

		result := Result{
			Host:        r.Host,
			Timestamp:   r.Timestamp,
			Status:      string(r.Status()),
			PingOK:      r.PingOK,
			OpenPorts:   slices.Clone(r.OpenPorts),
			ClosedPorts: slices.Clone(r.ClosedPorts),
		}
		if r.PingOK {
			ms := math.Round(float64(r.Latency.Microseconds())/10) / 100
			result.PingLatencyMS = &ms
		}
		payload.Results = append(payload.Results, result)
	}

	return payload
}

// WriteJSON saves one scan as report_<timestamp>.json and returns the path.
func WriteJSON(log *slog.Logger, dir string, now time.Time, results []scan.CheckResult) (string, error) {
	payload := BuildPayload(now, results)

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s%s.json", jsonFilePrefix, now.UTC().Format("20060102_150405")))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	log.Info("Wrote JSON report", slog.String("path", path))
	return path, nil
}

// LoadRecentPayloads reads up to max report_*.json files from dir,
// chronologically ordered, oldest first.
func LoadRecentPayloads(dir string, max int) ([]Payload, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read report directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasPrefix(name, jsonFilePrefix) && strings.HasSuffix(name, ".json") {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	if len(names) > max {
		names = names[len(names)-max:]
	}

	payloads := make([]Payload, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read report %s: %w", name, err)
		}
		var payload Payload
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("failed to parse report %s: %w", name, err)
		}
		payloads = append(payloads, payload)
	}

	return payloads, nil
}
