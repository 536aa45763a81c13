package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

func (c *Controller) initHealthRoutes() {
	c.Group.GET("/health", c.HealthCheck)
}

// HealthCheck reports engine status: healthy when forecast windows exist,
// no_data on a fresh install before the first ingest cycle.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	response := map[string]any{
		"status":      "healthy",
		"location":    c.Settings.Location.Name,
		"server_time": c.localISO(time.Now()),
		"version":     c.Settings.Version,
		"uptime_s":    time.Since(c.startTime).Seconds(),
	}

	window, err := c.DS.LatestForecastWindow()
	if err != nil {
		response["status"] = "no_data"
		response["last_forecast_update"] = nil
	} else {
		response["last_forecast_update"] = c.localISO(window.ComputedAt)
	}

	return ctx.JSON(http.StatusOK, response)
}
