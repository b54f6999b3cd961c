package generator_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/medfabrik/plantops/maintenance/internal/dataset"
	"github.com/medfabrik/plantops/maintenance/internal/generator"
)

func defaultConfig() generator.Config {
	return generator.Config{
		Logger:      logger,
		Samples:     2000,
		AnomalyRate: 0.05,
		Interval:    60 * time.Second,
		Seed:        42,
	}
}

func TestGenerator_Generate_SameSeedReproducesDataset(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Logger = logger.With("test", t.Name())

	first, err := generator.Generate(cfg)
	require.NoError(t, err)
	second, err := generator.Generate(cfg)
	require.NoError(t, err)

	require.Empty(t, cmp.Diff(first, second))
}

func TestGenerator_Generate_DifferentSeedsDiffer(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Logger = logger.With("test", t.Name())

	first, err := generator.Generate(cfg)
	require.NoError(t, err)

	cfg.Seed = 43
	second, err := generator.Generate(cfg)
	require.NoError(t, err)

	require.NotEmpty(t, cmp.Diff(first, second))
}

func TestGenerator_Generate_AnomalyRateIsApproximate(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Logger = logger.With("test", t.Name())
	cfg.Samples = 5000

	table, err := generator.Generate(cfg)
	require.NoError(t, err)

	anomalies := 0
	for _, row := range table.Rows {
		if row.Label {
			anomalies++
		}
	}
	ratio := float64(anomalies) / float64(len(table.Rows))
	require.InDelta(t, cfg.AnomalyRate, ratio, 0.02)
}

func TestGenerator_Generate_MachinesRoundRobin(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Logger = logger.With("test", t.Name())
	cfg.Samples = 8

	table, err := generator.Generate(cfg)
	require.NoError(t, err)

	for i, row := range table.Rows {
		require.Equal(t, generator.Machines[i%len(generator.Machines)], row.MachineID)
	}
}

func TestGenerator_Generate_TimestampsAdvanceByInterval(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Logger = logger.With("test", t.Name())
	cfg.Samples = 10
	cfg.StartTime = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	cfg.Interval = 30 * time.Second

	table, err := generator.Generate(cfg)
	require.NoError(t, err)

	for i, row := range table.Rows {
		require.Equal(t, cfg.StartTime.Add(time.Duration(i)*cfg.Interval), row.Timestamp)
	}
}

func TestGenerator_Generate_ValuesAreNonNegative(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Logger = logger.With("test", t.Name())

	table, err := generator.Generate(cfg)
	require.NoError(t, err)

	for _, row := range table.Rows {
		for _, name := range dataset.NumericColumns {
			require.GreaterOrEqual(t, row.Values[name], 0.0, "column %s", name)
		}
	}
}

func TestGenerator_Generate_OperatingHoursIncreasePerMachine(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Logger = logger.With("test", t.Name())
	cfg.Samples = 100

	table, err := generator.Generate(cfg)
	require.NoError(t, err)

	last := make(map[string]float64)
	for _, row := range table.Rows {
		hours := row.Values["operating_hours"]
		if prev, ok := last[row.MachineID]; ok {
			require.GreaterOrEqual(t, hours, prev)
		}
		last[row.MachineID] = hours
	}
}

func TestGenerator_Config_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*generator.Config)
	}{
		{"missing logger", func(cfg *generator.Config) { cfg.Logger = nil }},
		{"zero samples", func(cfg *generator.Config) { cfg.Samples = 0 }},
		{"negative anomaly rate", func(cfg *generator.Config) { cfg.AnomalyRate = -0.1 }},
		{"anomaly rate above one", func(cfg *generator.Config) { cfg.AnomalyRate = 1.1 }},
		{"zero interval", func(cfg *generator.Config) { cfg.Interval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := defaultConfig()
			tt.mutate(&cfg)

			_, err := generator.Generate(cfg)
			require.Error(t, err)
		})
	}
}
