package api

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bitecast/bitecast-go/internal/rules"
	"github.com/bitecast/bitecast-go/internal/scoring"
)

func (c *Controller) initForecastRoutes() {
	c.Group.GET("/forecast", c.GetForecast)
	c.Group.GET("/hourly-outlook", c.GetHourlyOutlook)
	c.Group.GET("/alerts", c.GetAlerts)
	c.Group.POST("/alerts/:id/dismiss", c.DismissAlert)
}

const (
	defaultForecastHours = 24
	maxForecastHours     = 48
	defaultOutlookHours  = 12
	maxOutlookHours      = 24
)

// SpeciesForecastEntry is one species inside a forecast window response.
type SpeciesForecastEntry struct {
	Name      string  `json:"name"`
	Key       string  `json:"key"`
	IsRunning bool    `json:"is_running"`
	BiteScore float64 `json:"bite_score"`
	BiteLabel string  `json:"bite_label"`
	Tier      string  `json:"tier"`
}

// ForecastWindowResponse is a single 2-hour forecast block.
type ForecastWindowResponse struct {
	StartTime     string                 `json:"start_time"`
	EndTime       string                 `json:"end_time"`
	OverallScore  float64                `json:"overall_score"`
	OverallTier   string                 `json:"overall_tier"`
	TideState     string                 `json:"tide_state"`
	TideHeight    float64                `json:"tide_height"`
	TimeOfDay     string                 `json:"time_of_day"`
	Temperature   float64                `json:"temperature"`
	WindSpeed     float64                `json:"wind_speed"`
	PressureTrend string                 `json:"pressure_trend"`
	Conditions    string                 `json:"conditions"`
	Species       []SpeciesForecastEntry `json:"species"`
	TopSpecies    []SpeciesForecastEntry `json:"top_species"`
}

// GetForecast returns the upcoming forecast windows with per-species
// scores. The window tier comes from the top three species, not the
// all-species average, so it reflects what is actually biting.
func (c *Controller) GetForecast(ctx echo.Context) error {
	hours := queryHours(ctx, defaultForecastHours, maxForecastHours)
	now := time.Now().UTC()

	windows, err := c.DS.GetForecastWindows(now, now.Add(time.Duration(hours)*time.Hour))
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load forecast windows")
	}

	result := make([]ForecastWindowResponse, 0, len(windows))
	for i := range windows {
		w := &windows[i]

		species := make([]SpeciesForecastEntry, 0, len(w.SpeciesForecasts))
		for j := range w.SpeciesForecasts {
			sf := &w.SpeciesForecasts[j]
			species = append(species, SpeciesForecastEntry{
				Name:      rules.DisplayName(sf.Species),
				Key:       sf.Species,
				IsRunning: sf.IsRunning,
				BiteScore: round1(sf.BiteScore),
				BiteLabel: sf.BiteLabel,
				Tier:      scoring.UITier(sf.BiteScore),
			})
		}
		sort.SliceStable(species, func(a, b int) bool {
			return species[a].BiteScore > species[b].BiteScore
		})

		overallTier := "SLOW"
		if len(species) > 0 {
			top := species
			if len(top) > 3 {
				top = top[:3]
			}
			sum := 0.0
			for _, s := range top {
				sum += s.BiteScore
			}
			overallTier = scoring.UITier(sum / float64(len(top)))
		}

		topSpecies := species
		if len(topSpecies) > 3 {
			topSpecies = topSpecies[:3]
		}

		result = append(result, ForecastWindowResponse{
			StartTime:     c.localISO(w.StartTime),
			EndTime:       c.localISO(w.EndTime),
			OverallScore:  round1(w.OverallScore),
			OverallTier:   overallTier,
			TideState:     w.TideState,
			TideHeight:    w.TideHeightAvg,
			TimeOfDay:     w.TimeOfDay,
			Temperature:   w.Temperature,
			WindSpeed:     w.WindSpeed,
			PressureTrend: w.PressureTrend,
			Conditions:    w.ConditionsSummary,
			Species:       species,
			TopSpecies:    topSpecies,
		})
	}

	return ctx.JSON(http.StatusOK, result)
}

// HourlyEntry is one hour in the flattened outlook.
type HourlyEntry struct {
	Hour        string  `json:"hour"`
	Tier        string  `json:"tier"`
	BiteScore   float64 `json:"bite_score"`
	TideState   string  `json:"tide_state"`
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"wind_speed"`
	TimeOfDay   string  `json:"time_of_day"`
}

// GetHourlyOutlook flattens the 2-hour windows into a per-hour view using
// each window's best species score.
func (c *Controller) GetHourlyOutlook(ctx echo.Context) error {
	hours := queryHours(ctx, defaultOutlookHours, maxOutlookHours)
	now := time.Now().UTC()

	windows, err := c.DS.GetForecastWindows(now, now.Add(time.Duration(hours)*time.Hour))
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load forecast windows")
	}

	hourly := make([]HourlyEntry, 0, hours)
	for i := range windows {
		w := &windows[i]

		topScore := w.OverallScore
		for j := range w.SpeciesForecasts {
			if s := w.SpeciesForecasts[j].BiteScore; s > topScore {
				topScore = s
			}
		}
		tier := scoring.UITier(topScore)

		for hour := w.StartTime; hour.Before(w.EndTime); hour = hour.Add(time.Hour) {
			hourly = append(hourly, HourlyEntry{
				Hour:        c.localISO(hour),
				Tier:        tier,
				BiteScore:   round1(topScore),
				TideState:   w.TideState,
				Temperature: w.Temperature,
				WindSpeed:   w.WindSpeed,
				TimeOfDay:   w.TimeOfDay,
			})
		}
	}

	if len(hourly) > hours {
		hourly = hourly[:hours]
	}
	return ctx.JSON(http.StatusOK, hourly)
}

// AlertResponse is one active hot-bite alert.
type AlertResponse struct {
	AlertID     string  `json:"alert_id"`
	Species     string  `json:"species"`
	SpeciesKey  string  `json:"species_key"`
	WindowStart string  `json:"window_start"`
	WindowEnd   string  `json:"window_end"`
	BiteScore   float64 `json:"bite_score"`
	Message     string  `json:"message"`
	CreatedAt   string  `json:"created_at"`
}

// GetAlerts returns active alerts whose window has not ended.
func (c *Controller) GetAlerts(ctx echo.Context) error {
	alerts, err := c.DS.ActiveAlerts(time.Now().UTC())
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load alerts")
	}

	result := make([]AlertResponse, 0, len(alerts))
	for i := range alerts {
		a := &alerts[i]
		result = append(result, AlertResponse{
			AlertID:     a.AlertID,
			Species:     rules.DisplayName(a.Species),
			SpeciesKey:  a.Species,
			WindowStart: c.localISO(a.WindowStart),
			WindowEnd:   c.localISO(a.WindowEnd),
			BiteScore:   round1(a.BiteScore),
			Message:     a.Message,
			CreatedAt:   c.localISO(a.CreatedAt),
		})
	}
	return ctx.JSON(http.StatusOK, result)
}

// DismissAlert deactivates an alert by its stable alert ID.
func (c *Controller) DismissAlert(ctx echo.Context) error {
	alertID := ctx.Param("id")
	if alertID == "" {
		return c.HandleError(ctx, validationError("alert id is required"), "Invalid alert id")
	}
	if err := c.DS.DismissAlert(alertID); err != nil {
		return c.HandleError(ctx, err, "Failed to dismiss alert")
	}
	return ctx.JSON(http.StatusOK, map[string]any{"success": true})
}

// queryHours parses the hours query parameter with a default and cap.
func queryHours(ctx echo.Context, fallback, maxHours int) int {
	raw := ctx.QueryParam("hours")
	if raw == "" {
		return fallback
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return fallback
	}
	if hours > maxHours {
		return maxHours
	}
	return hours
}
