// Package metrics provides scoring pipeline metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ScoringMetrics contains Prometheus metrics for score recomputation and
// forecast window builds.
type ScoringMetrics struct {
	registry *prometheus.Registry

	recomputesTotal   *prometheus.CounterVec
	recomputeDuration *prometheus.HistogramVec

	windowBuildsTotal   *prometheus.CounterVec
	windowBuildDuration prometheus.Histogram

	learningUpdatesTotal *prometheus.CounterVec
}

// NewScoringMetrics creates and registers new scoring metrics
func NewScoringMetrics(registry *prometheus.Registry) (*ScoringMetrics, error) {
	m := &ScoringMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *ScoringMetrics) initMetrics() error {
	m.recomputesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_recomputes_total",
			Help: "Total number of cached score recomputations",
		},
		[]string{"kind", "status"}, // kind: bite, bait
	)

	m.recomputeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scoring_recompute_duration_seconds",
			Help:    "Time taken to recompute one cached score",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount12),
		},
		[]string{"kind"},
	)

	m.windowBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_window_builds_total",
			Help: "Total number of forecast window rebuilds",
		},
		[]string{"status"},
	)

	m.windowBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scoring_window_build_duration_seconds",
			Help:    "Time taken to rebuild the forecast window set",
			Buckets: prometheus.ExponentialBuckets(BucketStart10ms, BucketFactor2, BucketCount10),
		},
	)

	m.learningUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learning_updates_total",
			Help: "Total number of learned table updates from catches",
		},
		[]string{"table", "status"}, // table: rig, zone_condition, rig_condition, bucket
	)

	return nil
}

// Describe implements the Collector interface
func (m *ScoringMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.recomputesTotal.Describe(ch)
	m.recomputeDuration.Describe(ch)
	m.windowBuildsTotal.Describe(ch)
	m.windowBuildDuration.Describe(ch)
	m.learningUpdatesTotal.Describe(ch)
}

// Collect implements the Collector interface
func (m *ScoringMetrics) Collect(ch chan<- prometheus.Metric) {
	m.recomputesTotal.Collect(ch)
	m.recomputeDuration.Collect(ch)
	m.windowBuildsTotal.Collect(ch)
	m.windowBuildDuration.Collect(ch)
	m.learningUpdatesTotal.Collect(ch)
}

// RecordRecompute records one cached score recomputation
func (m *ScoringMetrics) RecordRecompute(kind, status string) {
	m.recomputesTotal.WithLabelValues(kind, status).Inc()
}

// RecordRecomputeDuration records the duration of one recomputation
func (m *ScoringMetrics) RecordRecomputeDuration(kind string, seconds float64) {
	m.recomputeDuration.WithLabelValues(kind).Observe(seconds)
}

// RecordWindowBuild records a forecast window rebuild
func (m *ScoringMetrics) RecordWindowBuild(status string, seconds float64) {
	m.windowBuildsTotal.WithLabelValues(status).Inc()
	m.windowBuildDuration.Observe(seconds)
}

// RecordLearningUpdate records one learned table update
func (m *ScoringMetrics) RecordLearningUpdate(table, status string) {
	m.learningUpdatesTotal.WithLabelValues(table, status).Inc()
}
