package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/medfabrik/plantops/maintenance/internal/anomaly"
	"github.com/medfabrik/plantops/maintenance/internal/dataset"
	"github.com/medfabrik/plantops/maintenance/internal/generator"
	"github.com/medfabrik/plantops/maintenance/internal/pipeline"
	"github.com/medfabrik/plantops/maintenance/internal/viz"
)

const (
	defaultDataDir  = "data"
	defaultPlotDir  = "plots"
	rawFileName     = "raw_sensor_data.csv"
	scoredFileName  = "anomaly_scores.csv"
	defaultInterval = 60 * time.Second
)

var (
	dataDir string
	plotDir string
	verbose bool

	samples     int
	anomalyRate float64
	seed        int64
	interval    time.Duration

	rawPath       string
	window        int
	zThreshold    float64
	iqrMultiplier float64
	renderCharts  bool

	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "plantops-maintenance",
	Short: "Predictive maintenance toolkit for production machinery",
	Long: `plantops-maintenance generates synthetic sensor data for production
machinery and scores it for anomalies using z-score and IQR methods.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("plantops-maintenance %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a labeled synthetic sensor dataset",
	Run: func(cmd *cobra.Command, args []string) {
		log := newLogger(verbose)

		table, err := generator.Generate(generator.Config{
			Logger:      log,
			Samples:     samples,
			AnomalyRate: anomalyRate,
			Interval:    interval,
			Seed:        seed,
		})
		if err != nil {
			log.Error("Operation failed: generate_dataset", "error", err)
			os.Exit(1)
		}

		path := filepath.Join(dataDir, rawFileName)
		if err := table.WriteCSV(log, path); err != nil {
			log.Error("Operation failed: write_raw_dataset", "error", err)
			os.Exit(1)
		}
		log.Info("Operation completed: generate_dataset", slog.String("path", path))
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: clean, engineer features, score anomalies",
	Run: func(cmd *cobra.Command, args []string) {
		log := newLogger(verbose)

		if rawPath == "" {
			rawPath = filepath.Join(dataDir, rawFileName)
		}

		table, err := pipeline.Run(pipeline.Config{
			Logger:    log,
			RawPath:   rawPath,
			OutputDir: dataDir,
			Window:    window,
		})
		if err != nil {
			log.Error("Operation failed: run_pipeline", "error", err)
			os.Exit(1)
		}

		detectCfg := anomaly.DefaultConfig(log)
		detectCfg.ZThreshold = zThreshold
		detectCfg.IQRMultiplier = iqrMultiplier
		scored, err := anomaly.Detect(detectCfg, table)
		if err != nil {
			log.Error("Operation failed: detect_anomalies", "error", err)
			os.Exit(1)
		}

		scoredPath := filepath.Join(dataDir, scoredFileName)
		if err := scored.WriteCSV(log, scoredPath); err != nil {
			log.Error("Operation failed: write_scored_dataset", "error", err)
			os.Exit(1)
		}

		if renderCharts {
			paths, err := viz.RenderAll(viz.Config{
				Logger:    log,
				OutputDir: plotDir,
				Sensors:   dataset.SensorColumns,
			}, scored)
			if err != nil {
				log.Error("Operation failed: render_charts", "error", err)
				os.Exit(1)
			}
			log.Info("Rendered charts", slog.Int("count", len(paths)))
		}

		log.Info("Operation completed: run_pipeline", slog.String("path", scoredPath))
	},
}

func newLogger(verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevel,
	}))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir, "Directory for raw and processed CSV files")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Show debug logs")

	generateCmd.Flags().IntVar(&samples, "samples", generator.DefaultSamples, "Number of sensor readings to generate")
	generateCmd.Flags().Float64Var(&anomalyRate, "anomaly-rate", generator.DefaultAnomalyRate, "Probability that a reading is anomalous")
	generateCmd.Flags().Int64Var(&seed, "seed", generator.DefaultSeed, "Random seed (same seed reproduces the same dataset)")
	generateCmd.Flags().DurationVar(&interval, "interval", defaultInterval, "Time between consecutive readings")

	runCmd.Flags().StringVar(&rawPath, "raw-file", "", "Raw sensor CSV to process (default: <data-dir>/"+rawFileName+")")
	runCmd.Flags().IntVar(&window, "window", pipeline.DefaultWindow, "Rolling window size for feature engineering")
	runCmd.Flags().Float64Var(&zThreshold, "z-threshold", anomaly.DefaultZThreshold, "Absolute z-score above which a reading is flagged")
	runCmd.Flags().Float64Var(&iqrMultiplier, "iqr-multiplier", anomaly.DefaultIQRMultiplier, "Tukey fence multiplier for the IQR method")
	runCmd.Flags().BoolVar(&renderCharts, "charts", false, "Render SVG charts from the scored dataset")
	runCmd.Flags().StringVar(&plotDir, "plot-dir", defaultPlotDir, "Directory for rendered charts")

	cobra.EnableCommandSorting = false

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(runCmd)
}

func main() {
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
