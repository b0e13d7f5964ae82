package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/K0NGR3SS/dailycheck/internal/orchestrator"
	"github.com/oklog/run"
	"github.com/rs/zerolog"
)

type Runner interface {
	RunDailyCheck(ctx context.Context) (*orchestrator.Report, error)
}

type Config struct {
	Interval    time.Duration
	MetricsAddr string
	Metrics     http.Handler
	Logger      zerolog.Logger
}

// Daemon repeats the daily check on a fixed interval and serves metrics
// while it waits.
type Daemon struct {
	runner      Runner
	interval    time.Duration
	metricsAddr string
	metrics     http.Handler
	log         zerolog.Logger
	startTime   time.Time
	runs        atomic.Int64
	failures    atomic.Int64
}

func New(runner Runner, cfg Config) (*Daemon, error) {
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %s", cfg.Interval)
	}
	return &Daemon{
		runner:      runner,
		interval:    cfg.Interval,
		metricsAddr: cfg.MetricsAddr,
		metrics:     cfg.Metrics,
		log:         cfg.Logger,
		startTime:   time.Now(),
	}, nil
}

// Run blocks until ctx is cancelled, a termination signal arrives or the
// metrics server fails.
func (d *Daemon) Run(ctx context.Context) error {
	var g run.Group

	loopCtx, cancelLoop := context.WithCancel(ctx)
	g.Add(func() error {
		return d.loop(loopCtx)
	}, func(error) {
		cancelLoop()
	})

	if d.metricsAddr != "" {
		ln, err := net.Listen("tcp", d.metricsAddr)
		if err != nil {
			cancelLoop()
			return fmt.Errorf("failed to listen on %s: %w", d.metricsAddr, err)
		}
		srv := &http.Server{Handler: d.routes(), ReadHeaderTimeout: 5 * time.Second}
		g.Add(func() error {
			d.log.Info().Str("addr", ln.Addr().String()).Msg("serving metrics")
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		}, func(error) {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		})
	}

	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	err := g.Run()
	if err == nil || errors.Is(err, run.ErrSignal) || ctx.Err() != nil {
		d.log.Info().Int64("runs", d.runs.Load()).Msg("daemon stopped")
		return nil
	}
	return err
}

func (d *Daemon) loop(ctx context.Context) error {
	d.runOnce(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.runOnce(ctx)
		}
	}
}

func (d *Daemon) runOnce(ctx context.Context) {
	d.runs.Add(1)
	if _, err := d.runner.RunDailyCheck(ctx); err != nil {
		d.failures.Add(1)
		d.log.Error().Err(err).Msg("daily check run degraded")
	}
}

func (d *Daemon) routes() http.Handler {
	mux := http.NewServeMux()
	if d.metrics != nil {
		mux.Handle("/metrics", d.metrics)
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(w, "ok runs=%d failures=%d uptime=%s\n",
			d.runs.Load(), d.failures.Load(), time.Since(d.startTime).Truncate(time.Second))
	})
	return mux
}

// RunCount returns how many daily checks have been started.
func (d *Daemon) RunCount() int64 {
	return d.runs.Load()
}
