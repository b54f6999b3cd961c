package pipeline_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/medfabrik/plantops/maintenance/internal/dataset"
	"github.com/medfabrik/plantops/maintenance/internal/generator"
	"github.com/medfabrik/plantops/maintenance/internal/pipeline"
)

func TestPipeline_Run_EndToEnd(t *testing.T) {
	t.Parallel()

	log := logger.With("test", t.Name())
	dir := t.TempDir()

	table, err := generator.Generate(generator.Config{
		Logger:      log,
		Samples:     200,
		AnomalyRate: 0.05,
		Interval:    60 * time.Second,
		Seed:        42,
	})
	require.NoError(t, err)

	rawPath := filepath.Join(dir, "raw.csv")
	require.NoError(t, table.WriteCSV(log, rawPath))

	out, err := pipeline.Run(pipeline.Config{
		Logger:    log,
		RawPath:   rawPath,
		OutputDir: dir,
		Window:    10,
	})
	require.NoError(t, err)

	require.Len(t, out.Rows, 200)
	for _, col := range dataset.NumericColumns {
		require.True(t, out.HasColumn(col+"_roll_mean"), "column %s_roll_mean", col)
		require.True(t, out.HasColumn(col+"_roll_std"), "column %s_roll_std", col)
		require.True(t, out.HasColumn(col+"_diff"), "column %s_diff", col)
	}

	// The processed file is written next to the raw data.
	_, err = os.Stat(filepath.Join(dir, pipeline.ProcessedFileName))
	require.NoError(t, err)
}

func TestPipeline_Run_MissingRawFile(t *testing.T) {
	t.Parallel()

	log := logger.With("test", t.Name())

	_, err := pipeline.Run(pipeline.Config{
		Logger:    log,
		RawPath:   filepath.Join(t.TempDir(), "missing.csv"),
		OutputDir: t.TempDir(),
	})
	require.ErrorIs(t, err, dataset.ErrFileNotFound)
}

func TestPipeline_Config_Validate(t *testing.T) {
	t.Parallel()

	_, err := pipeline.Run(pipeline.Config{RawPath: "x", OutputDir: "y"})
	require.Error(t, err)

	_, err = pipeline.Run(pipeline.Config{Logger: logger, OutputDir: "y"})
	require.Error(t, err)

	_, err = pipeline.Run(pipeline.Config{Logger: logger, RawPath: "x"})
	require.Error(t, err)
}
