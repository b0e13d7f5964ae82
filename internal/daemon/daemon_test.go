package daemon

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/K0NGR3SS/dailycheck/internal/orchestrator"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	calls atomic.Int64
	err   error
}

func (c *countingRunner) RunDailyCheck(context.Context) (*orchestrator.Report, error) {
	c.calls.Add(1)
	return &orchestrator.Report{}, c.err
}

func TestNew_RejectsZeroInterval(t *testing.T) {
	_, err := New(&countingRunner{}, Config{})
	assert.Error(t, err)
}

func TestDaemon_RunsImmediatelyAndOnInterval(t *testing.T) {
	runner := &countingRunner{}
	d, err := New(runner, Config{Interval: 20 * time.Millisecond, Logger: zerolog.Nop()})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	require.NoError(t, d.Run(ctx))
	assert.GreaterOrEqual(t, runner.calls.Load(), int64(3))
	assert.Equal(t, runner.calls.Load(), d.RunCount())
}

func TestDaemon_FailedRunsDoNotStopLoop(t *testing.T) {
	runner := &countingRunner{err: errors.New("keypairs: throttled")}
	d, err := New(runner, Config{Interval: 20 * time.Millisecond, Logger: zerolog.Nop()})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	require.NoError(t, d.Run(ctx))
	assert.Greater(t, runner.calls.Load(), int64(1))
	assert.Equal(t, runner.calls.Load(), d.failures.Load())
}

func TestDaemon_ServesMetrics(t *testing.T) {
	d, err := New(&countingRunner{}, Config{Interval: time.Hour, MetricsAddr: "127.0.0.1:0", Logger: zerolog.Nop()})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	assert.NoError(t, d.Run(ctx))
}

func TestDaemon_BadListenAddr(t *testing.T) {
	d, err := New(&countingRunner{}, Config{Interval: time.Hour, MetricsAddr: "not-an-addr", Logger: zerolog.Nop()})
	require.NoError(t, err)

	assert.Error(t, d.Run(context.Background()))
}

func TestDaemon_Routes(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("dailycheck_runs_total 1\n"))
	})
	d, err := New(&countingRunner{}, Config{Interval: time.Hour, Metrics: metrics, Logger: zerolog.Nop()})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	d.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, "dailycheck_runs_total 1\n", rec.Body.String())

	rec = httptest.NewRecorder()
	d.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok runs=0")
}
