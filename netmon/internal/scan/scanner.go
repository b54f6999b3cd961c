package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alitto/pond/v2"
	"github.com/jonboulle/clockwork"

	"github.com/medfabrik/plantops/netmon/internal/metrics"
)

const defaultScanPoolSize = 16

// DefaultPorts are probed when a device names none.
var DefaultPorts = []int{22, 80, 443}

type Config struct {
	Logger *slog.Logger
	Clock  clockwork.Clock
	Pinger Pinger
	Dialer PortDialer

	ScanPoolSize int
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.Pinger == nil {
		return errors.New("pinger is required")
	}
	if cfg.Dialer == nil {
		return errors.New("port dialer is required")
	}
	if cfg.ScanPoolSize == 0 {
		cfg.ScanPoolSize = defaultScanPoolSize
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return nil
}

type Scanner struct {
	log *slog.Logger
	cfg Config

	scanPool pond.ResultPool[CheckResult]
}

func New(cfg Config) (*Scanner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scanner{
		log: cfg.Logger,
		cfg: cfg,

		scanPool: pond.NewResultPool[CheckResult](cfg.ScanPoolSize),
	}, nil
}

// Scan checks every device concurrently and returns results in device order.
func (s *Scanner) Scan(ctx context.Context, devices []Device) ([]CheckResult, error) {
	group := s.scanPool.NewGroupContext(ctx)

	for _, device := range devices {
		device := device

		group.SubmitErr(func() (CheckResult, error) {
			return s.checkDevice(ctx, device), nil
		})
	}

	results, err := group.Wait()
	if err != nil {
		return nil, fmt.Errorf("failed to scan devices: %w", err)
	}

	for _, result := range results {
		metrics.DeviceStatus.WithLabelValues(result.Host).Set(statusValue(result.Status()))
	}
	metrics.ScansTotal.Inc()

	return results, nil
}

func (s *Scanner) checkDevice(ctx context.Context, device Device) CheckResult {
	ports := device.Ports
	if len(ports) == 0 {
		ports = DefaultPorts
	}
	s.log.Info("Checking device", slog.String("host", device.Host), slog.Any("ports", ports))

	start := s.cfg.Clock.Now()
	rtt, ok := s.cfg.Pinger.Ping(ctx, device.Host)
	metrics.ProbeDuration.WithLabelValues(device.Host).Observe(s.cfg.Clock.Since(start).Seconds())

	result := CheckResult{
		Host:      device.Host,
		Timestamp: s.cfg.Clock.Now().UTC(),
		PingOK:    ok,
		Latency:   rtt,
	}

	// Port checks only make sense on a reachable host.
	if ok {
		for _, port := range ports {
			if s.cfg.Dialer.Check(ctx, device.Host, port) {
				result.OpenPorts = append(result.OpenPorts, port)
			} else {
				result.ClosedPorts = append(result.ClosedPorts, port)
			}
		}
	}

	s.log.Info("Checked device",
		slog.String("host", device.Host),
		slog.String("status", string(result.Status())),
		slog.Duration("latency", rtt),
		slog.Any("open_ports", result.OpenPorts),
		slog.Any("closed_ports", result.ClosedPorts))

	return result
}

func statusValue(status Status) float64 {
	switch status {
	case StatusOnline:
		return 2
	case StatusDegraded:
		return 1
	default:
		return 0
	}
}
