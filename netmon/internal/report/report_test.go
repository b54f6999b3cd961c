package report_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/medfabrik/plantops/netmon/internal/report"
	"github.com/medfabrik/plantops/netmon/internal/scan"
)

var testNow = time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)

func sampleResults() []scan.CheckResult {
	return []scan.CheckResult{
		{
			Host:      "router.local",
			Timestamp: testNow,
			PingOK:    true,
			Latency:   1500 * time.Microsecond,
			OpenPorts: []int{22, 443},
		},
		{
			Host:        "printer.local",
			Timestamp:   testNow,
			PingOK:      true,
			Latency:     8 * time.Millisecond,
			OpenPorts:   []int{80},
			ClosedPorts: []int{22},
		},
		{
			Host:      "downhost.local",
			Timestamp: testNow,
			PingOK:    false,
		},
	}
}

func TestNetmon_BuildPayload_CountsAndLatency(t *testing.T) {
	t.Parallel()

	payload := report.BuildPayload(testNow, sampleResults())

	require.Equal(t, 3, payload.TotalHosts)
	require.Equal(t, 1, payload.Online)
	require.Equal(t, 1, payload.Degraded)
	require.Equal(t, 1, payload.Offline)
	require.Len(t, payload.Results, 3)

	require.Equal(t, "ONLINE", payload.Results[0].Status)
	require.NotNil(t, payload.Results[0].PingLatencyMS)
	require.Equal(t, 1.5, *payload.Results[0].PingLatencyMS)

	require.Equal(t, "DEGRADED", payload.Results[1].Status)

	// Unreachable hosts carry no latency at all.
	require.Equal(t, "OFFLINE", payload.Results[2].Status)
	require.Nil(t, payload.Results[2].PingLatencyMS)
}

func TestNetmon_WriteJSON_RoundTrip(t *testing.T) {
	t.Parallel()

	log := logger.With("test", t.Name())
	dir := t.TempDir()

	path, err := report.WriteJSON(log, dir, testNow, sampleResults())
	require.NoError(t, err)
	require.Equal(t, "report_20240601_123000.json", filepath.Base(path))

	payloads, err := report.LoadRecentPayloads(dir, 20)
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	require.Equal(t, 3, payloads[0].TotalHosts)
	require.Equal(t, "router.local", payloads[0].Results[0].Host)
}

func TestNetmon_LoadRecentPayloads_KeepsNewest(t *testing.T) {
	t.Parallel()

	log := logger.With("test", t.Name())
	dir := t.TempDir()

	for i := 0; i < 5; i++ {
		_, err := report.WriteJSON(log, dir, testNow.Add(time.Duration(i)*time.Minute), sampleResults())
		require.NoError(t, err)
	}

	payloads, err := report.LoadRecentPayloads(dir, 3)
	require.NoError(t, err)
	require.Len(t, payloads, 3)

	// Oldest first, and the two oldest scans dropped.
	require.Equal(t, testNow.Add(2*time.Minute), payloads[0].GeneratedAt)
	require.Equal(t, testNow.Add(4*time.Minute), payloads[2].GeneratedAt)
}

func TestNetmon_WriteHTML_RendersStatusPage(t *testing.T) {
	t.Parallel()

	log := logger.With("test", t.Name())
	dir := t.TempDir()

	path, err := report.WriteHTML(log, dir, testNow, sampleResults())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	require.Contains(t, content, "router.local")
	require.Contains(t, content, "ONLINE")
	require.Contains(t, content, "DEGRADED")
	require.Contains(t, content, "OFFLINE")
	require.Contains(t, content, "1.50 ms")
	require.Contains(t, content, "22, 443")
}

func TestNetmon_RenderCharts_WritesThreeCharts(t *testing.T) {
	t.Parallel()

	log := logger.With("test", t.Name())
	dir := t.TempDir()

	_, err := report.WriteJSON(log, dir, testNow, sampleResults())
	require.NoError(t, err)
	_, err = report.WriteJSON(log, dir, testNow.Add(time.Minute), sampleResults())
	require.NoError(t, err)

	paths, err := report.RenderCharts(log, dir)
	require.NoError(t, err)
	require.Len(t, paths, 3)

	for _, path := range paths {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(string(data), "<svg"), "file %s", filepath.Base(path))
	}
}

func TestNetmon_RenderCharts_NoReports(t *testing.T) {
	t.Parallel()

	log := logger.With("test", t.Name())

	paths, err := report.RenderCharts(log, t.TempDir())
	require.NoError(t, err)
	require.Empty(t, paths)
}
