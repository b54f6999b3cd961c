package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/medfabrik/plantops/netmon/internal/metrics"
	"github.com/medfabrik/plantops/netmon/internal/report"
	"github.com/medfabrik/plantops/netmon/internal/scan"
)

const (
	defaultConfigFile  = "config.yaml"
	defaultReportDir   = "docs"
	defaultMetricsAddr = ":8080"
	defaultPingTimeout = 1 * time.Second
	defaultPortTimeout = 500 * time.Millisecond
)

var (
	configFile  string
	reportDir   string
	verbose     bool
	noCharts    bool
	privileged  bool
	pingTimeout time.Duration
	portTimeout time.Duration

	adhocHost  string
	adhocPorts []int

	metricsAddr string

	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "plantops-netmon",
	Short: "Network device liveness monitor",
	Long: `plantops-netmon checks configured devices with ICMP pings and TCP port
probes, and writes JSON logs, an HTML status page, and SVG charts.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("plantops-netmon %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan all configured devices once",
	Long: `Scan checks every device from the config file, or a single ad-hoc host
given with --host, then writes reports and charts.`,
	Run: func(cmd *cobra.Command, args []string) {
		log := newLogger(verbose)

		devices, _, err := resolveDevices(log)
		if err != nil {
			log.Error("Operation failed: load_config", "error", err)
			os.Exit(1)
		}

		scanner, err := newScanner(log)
		if err != nil {
			log.Error("Operation failed: new_scanner", "error", err)
			os.Exit(1)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		results, err := scanner.Scan(ctx, devices)
		if err != nil {
			log.Error("Operation failed: scan_devices", "error", err)
			os.Exit(1)
		}

		writeReports(log, results)
		log.Info("Operation completed: scan_devices", slog.Int("devices", len(results)))
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scan continuously on the configured interval (service mode)",
	Run: func(cmd *cobra.Command, args []string) {
		log := newLogger(verbose)

		devices, interval, err := resolveDevices(log)
		if err != nil {
			log.Error("Operation failed: load_config", "error", err)
			os.Exit(1)
		}

		scanner, err := newScanner(log)
		if err != nil {
			log.Error("Operation failed: new_scanner", "error", err)
			os.Exit(1)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if metricsAddr != "" {
			metrics.BuildInfo.WithLabelValues(version, commit, date).Set(1)
			go func() {
				listener, err := net.Listen("tcp", metricsAddr)
				if err != nil {
					log.Error("Failed to start prometheus metrics server listener", "error", err)
					os.Exit(1)
				}
				log.Info("Prometheus metrics server listening", "address", listener.Addr().String())
				http.Handle("/metrics", promhttp.Handler())
				if err := http.Serve(listener, nil); err != nil {
					log.Error("Failed to start prometheus metrics server", "error", err)
					os.Exit(1)
				}
			}()
		}

		runner, err := scan.NewRunner(scan.RunnerConfig{
			Logger:   log,
			Clock:    clockwork.NewRealClock(),
			Scanner:  scanner,
			Devices:  devices,
			Interval: interval,
			OnResults: func(results []scan.CheckResult) {
				writeReports(log, results)
			},
		})
		if err != nil {
			log.Error("Operation failed: new_runner", "error", err)
			os.Exit(1)
		}

		if err := runner.Run(ctx); err != nil {
			log.Error("Operation failed: run_scan_loop", "error", err)
			os.Exit(1)
		}
		log.Info("Operation completed: run_scan_loop")
	},
}

// resolveDevices returns either the single ad-hoc host or the configured
// device list, plus the scan interval.
func resolveDevices(log *slog.Logger) ([]scan.Device, time.Duration, error) {
	if adhocHost != "" {
		return []scan.Device{{Host: adhocHost, Ports: adhocPorts}}, scan.DefaultScanInterval, nil
	}

	cfg, err := scan.LoadConfig(configFile)
	if err != nil {
		return nil, 0, err
	}
	log.Info("Loaded config",
		slog.String("path", configFile),
		slog.Int("devices", len(cfg.Devices)),
		slog.Duration("interval", cfg.ScanInterval()))
	return cfg.Devices, cfg.ScanInterval(), nil
}

func newScanner(log *slog.Logger) (*scan.Scanner, error) {
	return scan.New(scan.Config{
		Logger: log,
		Pinger: &scan.ICMPPinger{Timeout: pingTimeout, Privileged: privileged},
		Dialer: &scan.TCPDialer{Timeout: portTimeout},
	})
}

func writeReports(log *slog.Logger, results []scan.CheckResult) {
	now := time.Now()
	if _, err := report.WriteJSON(log, reportDir, now, results); err != nil {
		log.Error("Operation failed: write_json_report", "error", err)
		return
	}
	if _, err := report.WriteHTML(log, reportDir, now, results); err != nil {
		log.Error("Operation failed: write_html_report", "error", err)
		return
	}
	if !noCharts {
		if _, err := report.RenderCharts(log, reportDir); err != nil {
			log.Error("Operation failed: render_charts", "error", err)
		}
	}
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
	rootCmd.PersistentFlags().StringVar(&configFile, "config", defaultConfigFile, "YAML config file with devices and scan interval")
	rootCmd.PersistentFlags().StringVar(&reportDir, "report-dir", defaultReportDir, "Directory for JSON logs, HTML reports, and charts")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Show debug logs")
	rootCmd.PersistentFlags().BoolVar(&noCharts, "no-charts", false, "Skip chart rendering after each scan")
	rootCmd.PersistentFlags().BoolVar(&privileged, "privileged", false, "Use raw ICMP sockets (requires elevated privileges)")
	rootCmd.PersistentFlags().DurationVar(&pingTimeout, "ping-timeout", defaultPingTimeout, "Timeout for ICMP pings")
	rootCmd.PersistentFlags().DurationVar(&portTimeout, "port-timeout", defaultPortTimeout, "Timeout for TCP port probes")

	scanCmd.Flags().StringVar(&adhocHost, "host", "", "Check a single host instead of the config file")
	scanCmd.Flags().IntSliceVar(&adhocPorts, "ports", nil, "Ports to probe on the ad-hoc host (default 22,80,443)")

	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", defaultMetricsAddr, "Address to listen on for prometheus metrics (empty to disable)")

	cobra.EnableCommandSorting = false

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(runCmd)
}

func main() {
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
