package scan_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/medfabrik/plantops/netmon/internal/scan"
)

func TestNetmon_LoadConfig_ParsesDevicesAndInterval(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `devices:
  - host: 192.168.1.1
    ports: [22, 443]
  - host: printer.local
scan_interval_seconds: 120
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := scan.LoadConfig(path)
	require.NoError(t, err)

	require.Len(t, cfg.Devices, 2)
	require.Equal(t, "192.168.1.1", cfg.Devices[0].Host)
	require.Equal(t, []int{22, 443}, cfg.Devices[0].Ports)
	require.Equal(t, "printer.local", cfg.Devices[1].Host)
	require.Empty(t, cfg.Devices[1].Ports)
	require.Equal(t, 2*time.Minute, cfg.ScanInterval())
}

func TestNetmon_LoadConfig_DefaultInterval(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("devices:\n  - host: a\n"), 0644))

	cfg, err := scan.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, scan.DefaultScanInterval, cfg.ScanInterval())
}

func TestNetmon_LoadConfig_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := scan.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestNetmon_LoadConfig_InvalidYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("devices: [unclosed"), 0644))

	_, err := scan.LoadConfig(path)
	require.Error(t, err)
}
