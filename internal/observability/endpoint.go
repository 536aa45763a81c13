// Package observability provides Prometheus metrics functionality for monitoring BiteCast.
// Sentry-related error telemetry is handled in the telemetry package.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/bitecast/bitecast-go/internal/conf"
	metricspkg "github.com/bitecast/bitecast-go/internal/observability/metrics"
	"github.com/bitecast/bitecast-go/internal/telemetry"
)

// Endpoint serves the Prometheus-compatible /metrics endpoint.
type Endpoint struct {
	server        *http.Server
	listenAddress string
	metrics       *Metrics
}

// NewEndpoint creates a new metrics Endpoint from the provided settings and
// Metrics instance. It returns an error if the telemetry endpoint is not
// enabled in the settings.
func NewEndpoint(settings *conf.Settings, metrics *Metrics) (*Endpoint, error) {
	if !settings.Telemetry.Enabled {
		return nil, fmt.Errorf("telemetry endpoint not enabled in settings")
	}

	return &Endpoint{
		listenAddress: settings.Telemetry.Listen,
		metrics:       metrics,
	}, nil
}

// Start initializes and runs the HTTP server for the metrics endpoint.
// It sets up the routes, starts the server in a separate goroutine, and
// listens for a quit signal to shut down gracefully.
func (e *Endpoint) Start(wg *sync.WaitGroup, quitChan <-chan struct{}) {
	mux := http.NewServeMux()
	e.metrics.RegisterHandlers(mux)
	telemetry.RegisterDebugHandlers(mux)

	e.server = &http.Server{
		Addr:    e.listenAddress,
		Handler: mux,
	}

	wg.Go(func() {
		serviceLogger.Info("metrics endpoint starting", "address", e.listenAddress)
		if err := e.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serviceLogger.Error("metrics HTTP server error", "error", err)
		}
	})

	go e.gracefulShutdown(quitChan)
}

// gracefulShutdown waits for the quit signal and shuts down the server gracefully.
func (e *Endpoint) gracefulShutdown(quitChan <-chan struct{}) {
	<-quitChan
	serviceLogger.Info("stopping metrics server")
	ctx, cancel := context.WithTimeout(context.Background(), metricspkg.ShutdownTimeout)
	defer cancel()
	if err := e.server.Shutdown(ctx); err != nil {
		serviceLogger.Error("metrics server shutdown error", "error", err)
	}
}

// GetMetrics returns the Metrics instance associated with this Endpoint.
func (e *Endpoint) GetMetrics() *Metrics {
	return e.metrics
}
