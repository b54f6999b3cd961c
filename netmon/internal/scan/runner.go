package scan

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

type RunnerConfig struct {
	Logger  *slog.Logger
	Clock   clockwork.Clock
	Scanner *Scanner

	Devices  []Device
	Interval time.Duration

	// OnResults receives each completed scan; report writing hangs off it.
	OnResults func([]CheckResult)
}

func (cfg *RunnerConfig) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.Scanner == nil {
		return errors.New("scanner is required")
	}
	if len(cfg.Devices) == 0 {
		return errors.New("at least one device is required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultScanInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return nil
}

// Runner scans the configured devices on an interval until the context is
// cancelled. The first scan happens immediately.
type Runner struct {
	log *slog.Logger
	cfg RunnerConfig
}

func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Runner{log: cfg.Logger, cfg: cfg}, nil
}

func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("Starting scan loop",
		slog.Int("devices", len(r.cfg.Devices)),
		slog.Duration("interval", r.cfg.Interval))

	if err := r.scanOnce(ctx); err != nil {
		return err
	}

	ticker := r.cfg.Clock.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Scan loop stopped")
			return nil
		case <-ticker.Chan():
			if err := r.scanOnce(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

func (r *Runner) scanOnce(ctx context.Context) error {
	results, err := r.cfg.Scanner.Scan(ctx, r.cfg.Devices)
	if err != nil {
		return err
	}
	if r.cfg.OnResults != nil {
		r.cfg.OnResults(results)
	}
	return nil
}
