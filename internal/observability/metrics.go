// Package observability provides metrics and monitoring capabilities for BiteCast.
package observability

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bitecast/bitecast-go/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry  *prometheus.Registry
	Ingest    *metrics.IngestMetrics
	Scoring   *metrics.ScoringMetrics
	Scheduler *metrics.SchedulerMetrics
	Datastore *metrics.DatastoreMetrics
	HTTP      *metrics.HTTPMetrics
}

// NewMetrics creates a new instance of Metrics, initializing all metric collectors.
// It returns an error if any metric collector fails to initialize.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	ingestMetrics, err := metrics.NewIngestMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create ingest metrics: %w", err)
	}

	scoringMetrics, err := metrics.NewScoringMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create scoring metrics: %w", err)
	}

	schedulerMetrics, err := metrics.NewSchedulerMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler metrics: %w", err)
	}

	datastoreMetrics, err := metrics.NewDatastoreMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create datastore metrics: %w", err)
	}

	httpMetrics, err := metrics.NewHTTPMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
	}

	return &Metrics{
		registry:  registry,
		Ingest:    ingestMetrics,
		Scoring:   scoringMetrics,
		Scheduler: schedulerMetrics,
		Datastore: datastoreMetrics,
		HTTP:      httpMetrics,
	}, nil
}

// RegisterHandlers registers the metrics endpoint with the provided http.ServeMux.
func (m *Metrics) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/metrics", m.metricsHandler)
}

// metricsHandler is the HTTP handler for the /metrics endpoint.
func (m *Metrics) metricsHandler(w http.ResponseWriter, r *http.Request) {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      log.New(os.Stderr, "metrics handler: ", log.LstdFlags),
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
	h.ServeHTTP(w, r)
}
