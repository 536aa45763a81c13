// Package api provides the JSON API for the scoring engine: current
// conditions, forecasts, cached zone scores, angler event logging and
// learning introspection, all under /api/v2.
package api

import (
	"io"
	"log"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/patrickmn/go-cache"

	"github.com/bitecast/bitecast-go/internal/astro"
	"github.com/bitecast/bitecast-go/internal/conf"
	"github.com/bitecast/bitecast-go/internal/datastore"
	"github.com/bitecast/bitecast-go/internal/learning"
	"github.com/bitecast/bitecast-go/internal/logging"
	"github.com/bitecast/bitecast-go/internal/marine"
	"github.com/bitecast/bitecast-go/internal/observability"
	"github.com/bitecast/bitecast-go/internal/scorecache"
	"github.com/bitecast/bitecast-go/internal/snapshot"
	"github.com/bitecast/bitecast-go/internal/tide"
	"github.com/bitecast/bitecast-go/internal/tips"
	"github.com/bitecast/bitecast-go/internal/weather"
)

const (
	// responseCacheTTL covers the endpoints that fan out over every
	// species/zone pair on each request.
	responseCacheTTL = 30 * time.Second

	apiLogPath = "logs/web.log"
)

// Controller handles the API routes and holds the services they call.
// Tides, Weather, Astro, Marine and Capturer may be nil; handlers degrade
// to stored data when they are.
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	DS       datastore.Interface
	Settings *conf.Settings

	Tides    *tide.Service
	Weather  *weather.Service
	Astro    *astro.Service
	Marine   *marine.Service
	Capturer *snapshot.Capturer
	Scores   *scorecache.Service
	Learner  *learning.Service
	Tips     *tips.Generator

	metrics       *observability.Metrics
	responseCache *cache.Cache
	location      *time.Location
	startTime     time.Time

	logger         *slog.Logger
	apiLogger      *slog.Logger
	apiLoggerClose func() error
}

// Option configures optional controller dependencies.
type Option func(*Controller)

// WithTides sets the tide service.
func WithTides(s *tide.Service) Option { return func(c *Controller) { c.Tides = s } }

// WithWeather sets the weather service.
func WithWeather(s *weather.Service) Option { return func(c *Controller) { c.Weather = s } }

// WithAstro sets the astronomy service.
func WithAstro(s *astro.Service) Option { return func(c *Controller) { c.Astro = s } }

// WithMarine sets the marine service.
func WithMarine(s *marine.Service) Option { return func(c *Controller) { c.Marine = s } }

// WithCapturer sets the environment snapshot capturer.
func WithCapturer(s *snapshot.Capturer) Option { return func(c *Controller) { c.Capturer = s } }

// WithScores sets the score cache service.
func WithScores(s *scorecache.Service) Option { return func(c *Controller) { c.Scores = s } }

// WithLearner sets the learning service.
func WithLearner(s *learning.Service) Option { return func(c *Controller) { c.Learner = s } }

// WithTips sets the tip generator.
func WithTips(g *tips.Generator) Option { return func(c *Controller) { c.Tips = g } }

// WithMetrics sets the observability metrics.
func WithMetrics(m *observability.Metrics) Option { return func(c *Controller) { c.metrics = m } }

// New creates the API controller, mounts the /api/v2 group on e and
// registers all routes.
func New(e *echo.Echo, ds datastore.Interface, settings *conf.Settings, opts ...Option) *Controller {
	c := &Controller{
		Echo:          e,
		DS:            ds,
		Settings:      settings,
		responseCache: cache.New(responseCacheTTL, time.Minute),
		location:      time.UTC,
		startTime:     time.Now(),
		logger:        logging.ForService("api"),
	}
	for _, opt := range opts {
		opt(c)
	}

	if tz := settings.Main.Timezone; tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			c.location = loc
		} else {
			c.logger.Warn("invalid timezone, falling back to UTC", "timezone", tz, "error", err)
		}
	}

	c.initAPILogger()

	c.Group = e.Group("/api/v2")
	c.Group.Use(middleware.Recover())
	c.Group.Use(middleware.CORS())
	c.Group.Use(middleware.BodyLimit("1M"))
	c.Group.Use(c.LoggingMiddleware())

	c.initRoutes()
	return c
}

// initAPILogger sets up the structured file logger for API requests. A
// failure falls back to a discard logger so the controller always has one.
func (c *Controller) initAPILogger() {
	levelVar := new(slog.LevelVar)
	if c.Settings.WebServer.Debug {
		levelVar.Set(slog.LevelDebug)
	}

	logger, closer, err := logging.NewFileLogger(apiLogPath, "api", levelVar)
	if err != nil {
		log.Printf("warning: failed to initialize API log file: %v", err)
		handler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: levelVar})
		c.apiLogger = slog.New(handler).With("service", "api")
		c.apiLoggerClose = func() error { return nil }
		return
	}
	c.apiLogger = logger
	c.apiLoggerClose = closer
}

// initRoutes registers all route groups. Each initializer is isolated so a
// panic during registration cannot take down the rest of the API.
func (c *Controller) initRoutes() {
	routeInitializers := []struct {
		name string
		fn   func()
	}{
		{"health routes", c.initHealthRoutes},
		{"current condition routes", c.initCurrentRoutes},
		{"forecast routes", c.initForecastRoutes},
		{"score routes", c.initScoreRoutes},
		{"tide routes", c.initTideRoutes},
		{"species routes", c.initSpeciesRoutes},
		{"bait routes", c.initBaitRoutes},
		{"catch routes", c.initCatchRoutes},
		{"bait log routes", c.initBaitLogRoutes},
		{"predator log routes", c.initPredatorLogRoutes},
		{"marine routes", c.initMarineRoutes},
		{"system routes", c.initSystemRoutes},
		{"summary routes", c.initSummaryRoutes},
	}

	for _, initializer := range routeInitializers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error("panic during route initialization",
						"routes", initializer.name, "panic", r)
				}
			}()
			initializer.fn()
		}()
	}
}

// LoggingMiddleware returns middleware that logs every API request to the
// structured API log.
func (c *Controller) LoggingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()

			err := next(ctx)
			if err != nil {
				ctx.Error(err)
			}

			req := ctx.Request()
			res := ctx.Response()
			elapsed := time.Since(start)

			if c.apiLogger != nil {
				c.apiLogger.LogAttrs(req.Context(), slog.LevelInfo, "API Request",
					slog.String("method", req.Method),
					slog.String("path", req.URL.Path),
					slog.String("query", req.URL.RawQuery),
					slog.Int("status", res.Status),
					slog.String("ip", ctx.RealIP()),
					slog.Duration("latency", elapsed),
				)
			}
			if c.metrics != nil {
				c.metrics.HTTP.RecordRequest(req.Method, ctx.Path(),
					strconv.Itoa(res.Status), elapsed.Seconds())
			}
			return nil
		}
	}
}

// Shutdown releases controller resources.
func (c *Controller) Shutdown() {
	if c.apiLoggerClose != nil {
		if err := c.apiLoggerClose(); err != nil {
			c.logger.Error("closing API log file", "error", err)
		}
	}
	if c.responseCache != nil {
		c.responseCache.Flush()
	}
}

// localISO formats a time in the configured display timezone.
func (c *Controller) localISO(t time.Time) string {
	return t.In(c.location).Format(time.RFC3339)
}

// cachedJSON serves route responses from the short-lived response cache,
// keyed by the full request URI.
func (c *Controller) cachedJSON(ctx echo.Context, route string, build func() (any, error)) error {
	key := ctx.Request().RequestURI
	if cached, found := c.responseCache.Get(key); found {
		if c.metrics != nil {
			c.metrics.HTTP.RecordCacheLookup(route, "hit")
		}
		return ctx.JSON(http.StatusOK, cached)
	}
	if c.metrics != nil {
		c.metrics.HTTP.RecordCacheLookup(route, "miss")
	}

	payload, err := build()
	if err != nil {
		return err
	}
	c.responseCache.Set(key, payload, cache.DefaultExpiration)
	return ctx.JSON(http.StatusOK, payload)
}
