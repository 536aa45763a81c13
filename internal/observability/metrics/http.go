// Package metrics provides HTTP API metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics contains Prometheus metrics for the HTTP API.
type HTTPMetrics struct {
	registry *prometheus.Registry

	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	responseCacheTotal *prometheus.CounterVec
}

// NewHTTPMetrics creates and registers new HTTP metrics
func NewHTTPMetrics(registry *prometheus.Registry) (*HTTPMetrics, error) {
	m := &HTTPMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *HTTPMetrics) initMetrics() error {
	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Time taken to serve HTTP requests",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount12),
		},
		[]string{"method", "route"},
	)

	m.responseCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_response_cache_total",
			Help: "Total number of response cache lookups",
		},
		[]string{"route", "result"}, // result: hit, miss
	)

	return nil
}

// Describe implements the Collector interface
func (m *HTTPMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.requestsTotal.Describe(ch)
	m.requestDuration.Describe(ch)
	m.responseCacheTotal.Describe(ch)
}

// Collect implements the Collector interface
func (m *HTTPMetrics) Collect(ch chan<- prometheus.Metric) {
	m.requestsTotal.Collect(ch)
	m.requestDuration.Collect(ch)
	m.responseCacheTotal.Collect(ch)
}

// RecordRequest records one served HTTP request
func (m *HTTPMetrics) RecordRequest(method, route, statusCode string, seconds float64) {
	m.requestsTotal.WithLabelValues(method, route, statusCode).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(seconds)
}

// RecordCacheLookup records a response cache hit or miss
func (m *HTTPMetrics) RecordCacheLookup(route, result string) {
	m.responseCacheTotal.WithLabelValues(route, result).Inc()
}
