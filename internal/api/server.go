// Package api provides the HTTP server infrastructure for the scoring
// engine. The JSON endpoints live in the v2 subpackage; this package owns
// the Echo instance, middleware stack and server lifecycle.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	v2 "github.com/bitecast/bitecast-go/internal/api/v2"
	"github.com/bitecast/bitecast-go/internal/conf"
	"github.com/bitecast/bitecast-go/internal/datastore"
	"github.com/bitecast/bitecast-go/internal/logging"
	"github.com/bitecast/bitecast-go/internal/observability"
)

// Default timeouts for the HTTP server.
const (
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultLogPath is the server log file.
	DefaultLogPath = "logs/server.log"
)

// Server is the HTTP server for the engine. It manages the Echo instance,
// middleware, and the v2 API controller.
type Server struct {
	echo     *echo.Echo
	settings *conf.Settings
	logger   *log.Logger
	slogger  *slog.Logger
	levelVar *slog.LevelVar

	dataStore datastore.Interface
	metrics   *observability.Metrics
	ctrlOpts  []v2.Option

	apiController *v2.Controller

	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time

	logCloser func() error
}

// ServerOption is a functional option for configuring the Server.
type ServerOption func(*Server)

// WithLogger sets the standard logger for the server.
func WithLogger(logger *log.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// WithDataStore sets the datastore for the server.
func WithDataStore(ds datastore.Interface) ServerOption {
	return func(s *Server) { s.dataStore = ds }
}

// WithMetrics sets the observability metrics for the server.
func WithMetrics(m *observability.Metrics) ServerOption {
	return func(s *Server) { s.metrics = m }
}

// WithControllerOptions forwards options to the v2 API controller, wiring
// the tide, weather, astronomy, marine, snapshot, scoring, learning and
// tip services into the handlers.
func WithControllerOptions(opts ...v2.Option) ServerOption {
	return func(s *Server) { s.ctrlOpts = append(s.ctrlOpts, opts...) }
}

// New creates the HTTP server with all routes registered.
func New(settings *conf.Settings, opts ...ServerOption) (*Server, error) {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		settings:  settings,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.dataStore == nil {
		cancel()
		return nil, fmt.Errorf("server requires a datastore")
	}

	s.initLogger()

	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Server.ReadTimeout = DefaultReadTimeout
	s.echo.Server.WriteTimeout = DefaultWriteTimeout
	s.echo.Server.IdleTimeout = DefaultIdleTimeout

	s.setupMiddleware()
	s.setupRoutes()

	s.slogger.Info("HTTP server initialized",
		"address", s.address(),
		"debug", settings.WebServer.Debug,
	)
	return s, nil
}

// initLogger sets up the structured server log, falling back to a discard
// logger so the server always has one.
func (s *Server) initLogger() {
	s.levelVar = new(slog.LevelVar)
	if s.settings.WebServer.Debug {
		s.levelVar.Set(slog.LevelDebug)
	}

	logger, closer, err := logging.NewFileLogger(DefaultLogPath, "server", s.levelVar)
	if err != nil {
		s.logger.Printf("Warning: failed to initialize server logger: %v", err)
		handler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: s.levelVar})
		s.slogger = slog.New(handler).With("service", "server")
		s.logCloser = func() error { return nil }
		return
	}
	s.slogger = logger
	s.logCloser = closer
}

// setupMiddleware configures the Echo middleware stack. The v2 group adds
// its own CORS, body limit and request logging.
func (s *Server) setupMiddleware() {
	s.echo.Use(echomw.Recover())
	s.echo.Use(echomw.Gzip())
	s.echo.Use(echomw.Secure())
}

// setupRoutes registers the root health endpoint and mounts the v2 API.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)

	ctrlOpts := s.ctrlOpts
	if s.metrics != nil {
		ctrlOpts = append(ctrlOpts, v2.WithMetrics(s.metrics))
	}
	s.apiController = v2.New(s.echo, s.dataStore, s.settings, ctrlOpts...)

	s.slogger.Info("Routes initialized", "api_version", "v2")
}

// healthCheck is the liveness probe; the deeper data-freshness check lives
// at /api/v2/health.
func (s *Server) healthCheck(c echo.Context) error {
	uptime := time.Since(s.startTime)
	return c.JSON(http.StatusOK, map[string]any{
		"status":         "healthy",
		"version":        s.settings.Version,
		"build_date":     s.settings.BuildDate,
		"uptime_seconds": uptime.Seconds(),
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}

// Controller exposes the API controller, for tests.
func (s *Server) Controller() *v2.Controller { return s.apiController }

func (s *Server) address() string {
	port := s.settings.WebServer.Port
	if port == "" {
		port = "8080"
	}
	return ":" + port
}

// Start begins serving in a background goroutine. Use Shutdown to stop.
func (s *Server) Start() {
	go func() {
		if err := s.startBlocking(); err != nil {
			s.slogger.Error("Server error", "error", err)
		}
	}()
	s.logger.Printf("HTTP server starting on %s", s.address())
}

// startBlocking serves until shutdown.
func (s *Server) startBlocking() error {
	s.slogger.Info("Starting HTTP server", "address", s.address())
	if err := s.echo.Start(s.address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// StartWithGracefulShutdown starts the server and blocks until SIGINT or
// SIGTERM, then shuts down cleanly.
func (s *Server) StartWithGracefulShutdown() error {
	s.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	s.slogger.Info("Shutdown signal received, initiating graceful shutdown")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	if s.apiController != nil {
		s.apiController.Shutdown()
	}
	if err := s.echo.Shutdown(ctx); err != nil {
		s.slogger.Error("Error during server shutdown", "error", err)
		return fmt.Errorf("shutdown error: %w", err)
	}
	if s.logCloser != nil {
		if err := s.logCloser(); err != nil {
			s.logger.Printf("Error closing log file: %v", err)
		}
	}

	s.slogger.Info("Server shutdown complete")
	return nil
}
