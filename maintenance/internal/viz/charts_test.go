package viz_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/medfabrik/plantops/maintenance/internal/anomaly"
	"github.com/medfabrik/plantops/maintenance/internal/dataset"
	"github.com/medfabrik/plantops/maintenance/internal/generator"
	"github.com/medfabrik/plantops/maintenance/internal/viz"
)

func scoredTable(t *testing.T) dataset.Table {
	t.Helper()

	table, err := generator.Generate(generator.Config{
		Logger:      logger,
		Samples:     200,
		AnomalyRate: 0.1,
		Interval:    60 * time.Second,
		Seed:        42,
	})
	require.NoError(t, err)

	scored, err := anomaly.Detect(anomaly.DefaultConfig(logger), table)
	require.NoError(t, err)
	return scored
}

func TestViz_RenderAll_WritesFiveCharts(t *testing.T) {
	t.Parallel()

	log := logger.With("test", t.Name())
	dir := t.TempDir()

	paths, err := viz.RenderAll(viz.Config{
		Logger:    log,
		OutputDir: dir,
		Sensors:   dataset.SensorColumns,
	}, scoredTable(t))
	require.NoError(t, err)
	require.Len(t, paths, 5)

	for _, path := range paths {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		content := string(data)
		require.True(t, strings.HasPrefix(content, "<svg"), "file %s", filepath.Base(path))
		require.True(t, strings.HasSuffix(content, "</svg>\n"), "file %s", filepath.Base(path))
	}
}

func TestViz_RenderAll_EmptyTable(t *testing.T) {
	t.Parallel()

	log := logger.With("test", t.Name())
	dir := t.TempDir()

	paths, err := viz.RenderAll(viz.Config{
		Logger:    log,
		OutputDir: dir,
		Sensors:   dataset.SensorColumns,
	}, dataset.New(dataset.SensorColumns))
	require.NoError(t, err)
	require.Len(t, paths, 5)
}

func TestViz_Config_Validate(t *testing.T) {
	t.Parallel()

	_, err := viz.RenderAll(viz.Config{OutputDir: "x", Sensors: []string{"temperature_c"}}, dataset.Table{})
	require.Error(t, err)

	_, err = viz.RenderAll(viz.Config{Logger: logger, Sensors: []string{"temperature_c"}}, dataset.Table{})
	require.Error(t, err)

	_, err = viz.RenderAll(viz.Config{Logger: logger, OutputDir: "x"}, dataset.Table{})
	require.Error(t, err)
}
