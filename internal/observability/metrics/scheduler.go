// Package metrics provides scheduler metrics for observability
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SchedulerMetrics contains Prometheus metrics for the background job runner.
type SchedulerMetrics struct {
	registry *prometheus.Registry

	jobRunsTotal     *prometheus.CounterVec
	jobDuration      *prometheus.HistogramVec
	jobOverrunsTotal *prometheus.CounterVec
	jobLastSuccess   *prometheus.GaugeVec
}

// NewSchedulerMetrics creates and registers new scheduler metrics
func NewSchedulerMetrics(registry *prometheus.Registry) (*SchedulerMetrics, error) {
	m := &SchedulerMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *SchedulerMetrics) initMetrics() error {
	m.jobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_job_runs_total",
			Help: "Total number of scheduler job runs",
		},
		[]string{"job", "status"}, // status: success, error
	)

	m.jobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheduler_job_duration_seconds",
			Help:    "Time taken by one scheduler job run",
			Buckets: prometheus.ExponentialBuckets(BucketStart100ms, BucketFactor2, BucketCount12),
		},
		[]string{"job"},
	)

	m.jobOverrunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_job_overruns_skipped_total",
			Help: "Total number of job ticks skipped because the previous run was still in flight",
		},
		[]string{"job"},
	)

	m.jobLastSuccess = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scheduler_job_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful run per job",
		},
		[]string{"job"},
	)

	return nil
}

// Describe implements the Collector interface
func (m *SchedulerMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.jobRunsTotal.Describe(ch)
	m.jobDuration.Describe(ch)
	m.jobOverrunsTotal.Describe(ch)
	m.jobLastSuccess.Describe(ch)
}

// Collect implements the Collector interface
func (m *SchedulerMetrics) Collect(ch chan<- prometheus.Metric) {
	m.jobRunsTotal.Collect(ch)
	m.jobDuration.Collect(ch)
	m.jobOverrunsTotal.Collect(ch)
	m.jobLastSuccess.Collect(ch)
}

// RecordJobRun records one completed job run
func (m *SchedulerMetrics) RecordJobRun(job, status string, seconds float64) {
	m.jobRunsTotal.WithLabelValues(job, status).Inc()
	m.jobDuration.WithLabelValues(job).Observe(seconds)
	if status == "success" {
		m.jobLastSuccess.WithLabelValues(job).Set(float64(time.Now().Unix()))
	}
}

// RecordJobOverrunSkipped records a tick skipped due to a still-running job
func (m *SchedulerMetrics) RecordJobOverrunSkipped(job string) {
	m.jobOverrunsTotal.WithLabelValues(job).Inc()
}
