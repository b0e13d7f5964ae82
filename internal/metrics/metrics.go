// Package metrics exposes Prometheus counters for daily check runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use as a nil pointer; every method becomes a no-op.
type Metrics struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	taskFailures  *prometheus.CounterVec
	anomalies     *prometheus.CounterVec
	notifications *prometheus.CounterVec
	lastSuccess   prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dailycheck_runs_total",
			Help: "Daily check runs by outcome.",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dailycheck_run_duration_seconds",
			Help:    "Wall-clock time of a daily check run.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		taskFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dailycheck_task_failures_total",
			Help: "Scan tasks that ended in error.",
		}, []string{"task"}),
		anomalies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dailycheck_anomalies_total",
			Help: "Anomalies reported, by kind.",
		}, []string{"kind"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dailycheck_notifications_total",
			Help: "Webhook deliveries by result.",
		}, []string{"result"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dailycheck_last_success_timestamp_seconds",
			Help: "Unix time of the last run where every task succeeded.",
		}),
	}

	m.registry.MustRegister(
		m.runs,
		m.runDuration,
		m.taskFailures,
		m.anomalies,
		m.notifications,
		m.lastSuccess,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRun(degraded bool, d time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.Observe(d.Seconds())
	if degraded {
		m.runs.WithLabelValues("degraded").Inc()
		return
	}
	m.runs.WithLabelValues("ok").Inc()
	m.lastSuccess.SetToCurrentTime()
}

func (m *Metrics) ObserveTask(task, kind string, anomalies int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.taskFailures.WithLabelValues(task).Inc()
	}
	if anomalies > 0 {
		m.anomalies.WithLabelValues(kind).Add(float64(anomalies))
	}
}

func (m *Metrics) ObserveNotification(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.notifications.WithLabelValues("failed").Inc()
		return
	}
	m.notifications.WithLabelValues("sent").Inc()
}
