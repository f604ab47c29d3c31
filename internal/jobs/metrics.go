// Package jobmetrics instruments background job runs.
package jobmetrics

import (
	"errors"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes recorded in the status label.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	// StatusSkipped marks runs rejected with asynq.SkipRetry, e.g. a malformed
	// payload. They are not retried and do not count as failures.
	StatusSkipped = "skipped"
)

// Metrics holds the collectors for summaries:monthly and sessions:cleanup.
type Metrics struct {
	runs        *prometheus.CounterVec
	failures    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	rows        *prometheus.CounterVec
	lastSuccess *prometheus.GaugeVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the collectors on registerer, or once on the default
// registerer when registerer is nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = register(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return register(registerer)
}

func register(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "officehub_jobs_total",
			Help: "Job executions by job name and status.",
		}, []string{"job", "status"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "officehub_jobs_failures_total",
			Help: "Job executions that returned a retryable error.",
		}, []string{"job"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "officehub_job_duration_seconds",
			Help:    "Job execution time in seconds.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"job"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "officehub_job_rows_total",
			Help: "Summary rows upserted or session rows purged.",
		}, []string{"job"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "officehub_job_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run.",
		}, []string{"job"}),
	}
	reg.MustRegister(m.runs, m.failures, m.duration, m.rows, m.lastSuccess)
	return m
}

// Tracker times one run. The zero value and a tracker from nil Metrics are no-ops.
type Tracker struct {
	metrics *Metrics
	job     string
	start   time.Time
	now     func() time.Time
}

// Track starts timing job.
func (m *Metrics) Track(job string) *Tracker {
	return &Tracker{metrics: m, job: job, start: time.Now(), now: time.Now}
}

// End records the outcome of the run and returns err unchanged.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil || t.job == "" {
		return err
	}
	m := t.metrics
	finished := t.now()
	status := Status(err)
	switch status {
	case StatusFailure:
		m.failures.WithLabelValues(t.job).Inc()
	case StatusSuccess:
		m.lastSuccess.WithLabelValues(t.job).Set(float64(finished.Unix()))
	}
	m.runs.WithLabelValues(t.job, status).Inc()
	m.duration.WithLabelValues(t.job).Observe(finished.Sub(t.start).Seconds())
	return err
}

// AddRows counts rows a job wrote or removed.
func (m *Metrics) AddRows(job string, count int64) {
	if m == nil || count <= 0 {
		return
	}
	m.rows.WithLabelValues(job).Add(float64(count))
}

// Status classifies a handler result.
func Status(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, asynq.SkipRetry):
		return StatusSkipped
	default:
		return StatusFailure
	}
}
