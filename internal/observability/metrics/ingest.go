// Package metrics provides environment ingest metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// IngestMetrics contains Prometheus metrics for environment data ingestion.
// Sources are the upstream feeds: tide, weather_forecast, observations,
// water_temp, astronomy, marine.
type IngestMetrics struct {
	registry *prometheus.Registry

	fetchesTotal     *prometheus.CounterVec
	fetchErrorsTotal *prometheus.CounterVec
	fetchDuration    *prometheus.HistogramVec
	dataPointsTotal  *prometheus.CounterVec
}

// NewIngestMetrics creates and registers new ingest metrics
func NewIngestMetrics(registry *prometheus.Registry) (*IngestMetrics, error) {
	m := &IngestMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *IngestMetrics) initMetrics() error {
	m.fetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_fetches_total",
			Help: "Total number of environment data fetch operations",
		},
		[]string{"source", "status"}, // status: success, error
	)

	m.fetchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_fetch_errors_total",
			Help: "Total number of environment data fetch errors",
		},
		[]string{"source", "error_type"},
	)

	m.fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "ingest_fetch_duration_seconds",
			Help: "Time taken to fetch environment data",
			// NOAA/NWS endpoints answer in 100ms to a few seconds; the top
			// buckets capture timeouts.
			Buckets: prometheus.ExponentialBuckets(BucketStart100ms, BucketFactor2, BucketCount10),
		},
		[]string{"source"},
	)

	m.dataPointsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_data_points_total",
			Help: "Total number of environment data points stored",
		},
		[]string{"source", "data_type"},
	)

	return nil
}

// Describe implements the Collector interface
func (m *IngestMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.fetchesTotal.Describe(ch)
	m.fetchErrorsTotal.Describe(ch)
	m.fetchDuration.Describe(ch)
	m.dataPointsTotal.Describe(ch)
}

// Collect implements the Collector interface
func (m *IngestMetrics) Collect(ch chan<- prometheus.Metric) {
	m.fetchesTotal.Collect(ch)
	m.fetchErrorsTotal.Collect(ch)
	m.fetchDuration.Collect(ch)
	m.dataPointsTotal.Collect(ch)
}

// RecordFetch records a fetch operation against one upstream source
func (m *IngestMetrics) RecordFetch(source, status string) {
	m.fetchesTotal.WithLabelValues(source, status).Inc()
}

// RecordFetchError records a fetch error
func (m *IngestMetrics) RecordFetchError(source, errorType string) {
	m.fetchErrorsTotal.WithLabelValues(source, errorType).Inc()
}

// RecordFetchDuration records the duration of a fetch operation
func (m *IngestMetrics) RecordFetchDuration(source string, seconds float64) {
	m.fetchDuration.WithLabelValues(source).Observe(seconds)
}

// RecordDataPoints records how many data points a fetch stored
func (m *IngestMetrics) RecordDataPoints(source, dataType string, count int) {
	m.dataPointsTotal.WithLabelValues(source, dataType).Add(float64(count))
}
