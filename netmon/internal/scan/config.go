package scan

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultScanInterval = 60 * time.Second

// Device is one monitored host with the TCP ports to probe on it.
type Device struct {
	Host  string `yaml:"host"`
	Ports []int  `yaml:"ports"`
}

// FileConfig is the on-disk YAML configuration.
type FileConfig struct {
	Devices             []Device `yaml:"devices"`
	ScanIntervalSeconds int      `yaml:"scan_interval_seconds"`
}

// ScanInterval returns the configured interval, defaulting when unset.
func (c FileConfig) ScanInterval() time.Duration {
	if c.ScanIntervalSeconds <= 0 {
		return DefaultScanInterval
	}
	return time.Duration(c.ScanIntervalSeconds) * time.Second
}

func LoadConfig(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}
