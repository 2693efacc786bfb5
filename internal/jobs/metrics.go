// Package jobmetrics instruments background job runs.
package jobmetrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"
	statusSkipped = "skipped"
)

// Metrics holds the job collectors.
type Metrics struct {
	runs        *prometheus.CounterVec
	failures    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	lastSuccess *prometheus.GaugeVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the collectors on registerer, or once on the default
// registerer when it is nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer != nil {
		return register(registerer)
	}
	defaultOnce.Do(func() {
		defaultMetrics = register(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// Tracker measures one run.
type Tracker struct {
	metrics *Metrics
	job     string
	start   time.Time
	skipped bool
}

// Track starts timing a run of job. A nil Metrics yields a tracker that
// records nothing.
func (m *Metrics) Track(job string) *Tracker {
	return &Tracker{metrics: m, job: job, start: time.Now()}
}

// Skip marks the run as having had nothing to do. Skipped runs are counted
// but neither timed nor treated as a success.
func (t *Tracker) Skip() {
	if t != nil {
		t.skipped = true
	}
}

// End records the outcome and returns err unchanged.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil || t.job == "" {
		return err
	}
	m := t.metrics
	switch {
	case err != nil:
		m.failures.WithLabelValues(t.job).Inc()
		m.runs.WithLabelValues(t.job, statusFailure).Inc()
	case t.skipped:
		m.runs.WithLabelValues(t.job, statusSkipped).Inc()
		return nil
	default:
		m.lastSuccess.WithLabelValues(t.job).SetToCurrentTime()
		m.runs.WithLabelValues(t.job, statusSuccess).Inc()
	}
	m.duration.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())
	return err
}

func register(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orderdesk_jobs_total",
			Help: "Job runs by job name and outcome (success, failure, skipped).",
		}, []string{"job", "status"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orderdesk_jobs_failures_total",
			Help: "Failed job runs by job name.",
		}, []string{"job"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "orderdesk_job_duration_seconds",
			Help:    "Duration of job runs that did work.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"job"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "orderdesk_job_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run per job.",
		}, []string{"job"}),
	}
	registerer.MustRegister(m.runs, m.failures, m.duration, m.lastSuccess)
	return m
}
