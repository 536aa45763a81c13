// Package metrics provides datastore metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DatastoreMetrics contains Prometheus metrics for database operations.
type DatastoreMetrics struct {
	registry *prometheus.Registry

	operationsTotal *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	duration        *prometheus.HistogramVec
}

// NewDatastoreMetrics creates and registers new datastore metrics
func NewDatastoreMetrics(registry *prometheus.Registry) (*DatastoreMetrics, error) {
	m := &DatastoreMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *DatastoreMetrics) initMetrics() error {
	m.operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datastore_operations_total",
			Help: "Total number of datastore operations",
		},
		[]string{"operation", "status"},
	)

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datastore_errors_total",
			Help: "Total number of datastore errors",
		},
		[]string{"operation", "error_type"},
	)

	m.duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datastore_operation_duration_seconds",
			Help:    "Time taken for datastore operations",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount10),
		},
		[]string{"operation"},
	)

	return nil
}

// Describe implements the Collector interface
func (m *DatastoreMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.operationsTotal.Describe(ch)
	m.errorsTotal.Describe(ch)
	m.duration.Describe(ch)
}

// Collect implements the Collector interface
func (m *DatastoreMetrics) Collect(ch chan<- prometheus.Metric) {
	m.operationsTotal.Collect(ch)
	m.errorsTotal.Collect(ch)
	m.duration.Collect(ch)
}

// RecordOperation records a datastore operation
func (m *DatastoreMetrics) RecordOperation(operation, status string) {
	m.operationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordError records a datastore error
func (m *DatastoreMetrics) RecordError(operation, errorType string) {
	m.errorsTotal.WithLabelValues(operation, errorType).Inc()
}

// RecordDuration records the duration of a datastore operation
func (m *DatastoreMetrics) RecordDuration(operation string, seconds float64) {
	m.duration.WithLabelValues(operation).Observe(seconds)
}
