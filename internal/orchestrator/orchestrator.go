// Package orchestrator runs the daily check tasks side by side and sends the
// completion card once all of them have returned.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/K0NGR3SS/dailycheck/internal/metrics"
	"github.com/K0NGR3SS/dailycheck/internal/models"
	"github.com/K0NGR3SS/dailycheck/internal/notifications"
	"github.com/rs/zerolog"
)

// Task is one independent inventory scan. Run reports how many anomalies it
// notified about.
type Task struct {
	Name string
	Kind models.AnomalyKind
	Run  func(ctx context.Context) (int, error)
}

type TaskResult struct {
	Name      string
	Kind      models.AnomalyKind
	Anomalies int
	Duration  time.Duration
	Err       error
}

type Report struct {
	Started       time.Time
	Duration      time.Duration
	Tasks         []TaskResult
	CompletionErr error
}

// Degraded is true when at least one task failed.
func (r *Report) Degraded() bool {
	return len(r.FailedTasks()) > 0
}

func (r *Report) FailedTasks() []string {
	var failed []string
	for _, t := range r.Tasks {
		if t.Err != nil {
			failed = append(failed, t.Name)
		}
	}
	return failed
}

type Config struct {
	Tasks    []Task
	Notifier notifications.Notifier
	Cards    notifications.Cards
	// TaskTimeout bounds each task separately. Zero means no bound.
	TaskTimeout time.Duration
	Logger      zerolog.Logger
	Metrics     *metrics.Metrics
}

type Orchestrator struct {
	tasks       []Task
	notifier    notifications.Notifier
	cards       notifications.Cards
	taskTimeout time.Duration
	log         zerolog.Logger
	metrics     *metrics.Metrics
}

func New(cfg Config) *Orchestrator {
	return &Orchestrator{
		tasks:       cfg.Tasks,
		notifier:    cfg.Notifier,
		cards:       cfg.Cards,
		taskTimeout: cfg.TaskTimeout,
		log:         cfg.Logger,
		metrics:     cfg.Metrics,
	}
}

// RunDailyCheck starts every task, waits for all of them, then sends exactly
// one completion card. The returned error joins the failures of all tasks.
func (o *Orchestrator) RunDailyCheck(ctx context.Context) (*Report, error) {
	report := &Report{
		Started: time.Now(),
		Tasks:   make([]TaskResult, len(o.tasks)),
	}

	o.log.Info().Int("tasks", len(o.tasks)).Msg("daily check started")

	var wg sync.WaitGroup
	for i, task := range o.tasks {
		i, task := i, task // per-iteration copies (go 1.21 loop semantics)
		wg.Add(1)
		go func() {
			defer wg.Done()
			report.Tasks[i] = o.runTask(ctx, task)
		}()
	}
	wg.Wait()

	var errs []error
	for _, res := range report.Tasks {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Name, res.Err))
		}
	}

	card := o.cards.Completion()
	if failed := report.FailedTasks(); len(failed) > 0 {
		card = o.cards.DegradedCompletion(failed)
	}
	// The completion card goes out even if the run was cancelled meanwhile.
	if err := o.notifier.Notify(context.WithoutCancel(ctx), card); err != nil {
		report.CompletionErr = err
		o.log.Warn().Err(err).Msg("completion notification failed")
	}

	report.Duration = time.Since(report.Started)
	o.metrics.ObserveRun(report.Degraded(), report.Duration)

	event := o.log.Info()
	if report.Degraded() {
		event = o.log.Error().Strs("failed_tasks", report.FailedTasks())
	}
	event.Dur("duration", report.Duration).Msg("daily check finished")

	return report, errors.Join(errs...)
}

func (o *Orchestrator) runTask(ctx context.Context, task Task) (res TaskResult) {
	res = TaskResult{Name: task.Name, Kind: task.Kind}
	start := time.Now()

	if o.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.taskTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("task panicked: %v", r)
		}
		res.Duration = time.Since(start)
		o.metrics.ObserveTask(task.Name, string(task.Kind), res.Anomalies, res.Err)

		log := o.log.With().Str("task", task.Name).Dur("duration", res.Duration).Logger()
		if res.Err != nil {
			log.Error().Err(res.Err).Msg("task failed")
			return
		}
		log.Info().Int("anomalies", res.Anomalies).Msg("task finished")
	}()

	res.Anomalies, res.Err = task.Run(ctx)
	if res.Err == nil && ctx.Err() != nil {
		res.Err = fmt.Errorf("task exceeded its deadline: %w", ctx.Err())
	}
	return res
}
