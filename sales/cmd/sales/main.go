package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/medfabrik/plantops/sales/internal/export"
	"github.com/medfabrik/plantops/sales/internal/store"
	"github.com/medfabrik/plantops/sales/internal/viz"
)

const (
	defaultDBPath    = "data/sales.duckdb"
	defaultExportDir = "docs"
	defaultTopLimit  = 10
)

var (
	dbPath    string
	exportDir string
	verbose   bool
	noCharts  bool

	records int
	seed    int64

	topLimit int

	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "plantops-sales",
	Short: "Sales database seeding, aggregation, and report export",
	Long: `plantops-sales maintains a DuckDB sales database with synthetic demo
data and produces aggregated reports as console tables, CSV, and JSON.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("plantops-sales %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Initialize the schema and seed demo data",
	Long: `Seed creates the schema if missing and fills an empty database with the
demo catalog, customer base, and synthetic sales. A database that already
holds sales is left untouched.`,
	Run: func(cmd *cobra.Command, args []string) {
		log := newLogger(verbose)
		ctx := context.Background()

		s := mustOpen(ctx, log)
		defer s.Close()

		count, err := s.CountSales(ctx)
		if err != nil {
			log.Error("Operation failed: count_sales", "error", err)
			os.Exit(1)
		}
		if count > 0 {
			log.Info("Database already seeded, skipping", slog.Int("sales", count))
			return
		}

		inserted, err := s.GenerateSales(ctx, store.SeedConfig{Records: records, Seed: seed})
		if err != nil {
			log.Error("Operation failed: generate_sales", "error", err)
			os.Exit(1)
		}
		log.Info("Operation completed: seed_database", slog.Int("records", inserted))
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the aggregated reports as console tables",
	Run: func(cmd *cobra.Command, args []string) {
		log := newLogger(verbose)
		ctx := context.Background()

		s := mustOpen(ctx, log)
		defer s.Close()

		monthly, err := s.MonthlySummary(ctx)
		if err != nil {
			log.Error("Operation failed: query_monthly_summary", "error", err)
			os.Exit(1)
		}
		top, err := s.TopProducts(ctx, topLimit)
		if err != nil {
			log.Error("Operation failed: query_top_products", "error", err)
			os.Exit(1)
		}
		regional, err := s.RegionalPerformance(ctx)
		if err != nil {
			log.Error("Operation failed: query_regional_performance", "error", err)
			os.Exit(1)
		}

		fmt.Println("Monthly revenue by category")
		export.PrintMonthlySummary(os.Stdout, monthly)
		fmt.Println("\nTop products by revenue")
		export.PrintTopProducts(os.Stdout, top)
		fmt.Println("\nRegional performance")
		export.PrintRegionalPerformance(os.Stdout, regional)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the aggregated reports as CSV, JSON, and SVG charts",
	Run: func(cmd *cobra.Command, args []string) {
		log := newLogger(verbose)
		ctx := context.Background()

		s := mustOpen(ctx, log)
		defer s.Close()

		monthly, err := s.MonthlySummary(ctx)
		if err != nil {
			log.Error("Operation failed: query_monthly_summary", "error", err)
			os.Exit(1)
		}
		top, err := s.TopProducts(ctx, topLimit)
		if err != nil {
			log.Error("Operation failed: query_top_products", "error", err)
			os.Exit(1)
		}
		regional, err := s.RegionalPerformance(ctx)
		if err != nil {
			log.Error("Operation failed: query_regional_performance", "error", err)
			os.Exit(1)
		}
		raw, err := s.RawSales(ctx)
		if err != nil {
			log.Error("Operation failed: query_raw_sales", "error", err)
			os.Exit(1)
		}

		now := time.Now()
		csvPath, err := export.WriteSummaryCSV(log, exportDir, now, monthly)
		if err != nil {
			log.Error("Operation failed: write_csv_export", "error", err)
			os.Exit(1)
		}
		jsonPath, err := export.WriteJSONReport(log, exportDir, now, monthly, top, regional, raw)
		if err != nil {
			log.Error("Operation failed: write_json_report", "error", err)
			os.Exit(1)
		}

		if !noCharts {
			paths, err := viz.RenderAll(viz.Config{Logger: log, OutputDir: exportDir}, viz.Data{
				Monthly:  monthly,
				Top:      top,
				Regional: regional,
				Raw:      raw,
			})
			if err != nil {
				log.Error("Operation failed: render_charts", "error", err)
				os.Exit(1)
			}
			log.Info("Rendered charts", slog.Int("count", len(paths)))
		}

		log.Info("Operation completed: export_reports",
			slog.String("csv", csvPath),
			slog.String("json", jsonPath))
	},
}

func mustOpen(ctx context.Context, log *slog.Logger) *store.Store {
	s, err := store.Open(store.Config{Logger: log, Path: dbPath})
	if err != nil {
		log.Error("Operation failed: open_database", "error", err)
		os.Exit(1)
	}
	if err := s.Migrate(ctx); err != nil {
		log.Error("Operation failed: migrate_database", "error", err)
		os.Exit(1)
	}
	return s
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

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func init() {
	// A .env file can override the defaults; flags win over both.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", envOr("PLANTOPS_SALES_DB", defaultDBPath), "DuckDB database file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Show debug logs")

	seedCmd.Flags().IntVar(&records, "records", store.DefaultRecords, "Number of synthetic sales to generate")
	seedCmd.Flags().Int64Var(&seed, "seed", store.DefaultSeed, "Random seed (same seed reproduces the same data)")

	reportCmd.Flags().IntVar(&topLimit, "top", defaultTopLimit, "Number of products in the ranking")
	exportCmd.Flags().IntVar(&topLimit, "top", defaultTopLimit, "Number of products in the ranking")
	exportCmd.Flags().StringVar(&exportDir, "export-dir", envOr("PLANTOPS_SALES_EXPORT_DIR", defaultExportDir), "Directory for exported reports")
	exportCmd.Flags().BoolVar(&noCharts, "no-charts", false, "Skip chart rendering")

	cobra.EnableCommandSorting = false

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
