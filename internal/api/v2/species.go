package api

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bitecast/bitecast-go/internal/datastore"
	"github.com/bitecast/bitecast-go/internal/rules"
	"github.com/bitecast/bitecast-go/internal/scoring"
)

func (c *Controller) initSpeciesRoutes() {
	c.Group.GET("/species", c.GetSpeciesList)
	c.Group.GET("/species/:key", c.GetSpeciesDetail)
}

// GetSpeciesList returns all tracked species with their seasonal status.
func (c *Controller) GetSpeciesList(ctx echo.Context) error {
	now := time.Now().In(c.location)

	result := make([]map[string]any, 0, len(rules.AllSpecies))
	for _, key := range rules.AllSpecies {
		factor := rules.RunningFactor(key, now)
		result = append(result, map[string]any{
			"key":            key,
			"name":           rules.DisplayName(key),
			"tier":           rules.SpeciesTier(key),
			"running_factor": factor,
			"is_running":     rules.IsRunning(key, now, 0.5),
			"rating":         rules.RatingLabel(rules.BaselineFromFactor(factor)),
		})
	}
	return ctx.JSON(http.StatusOK, result)
}

// GetSpeciesDetail returns regulations, upcoming forecast periods, and the
// behavior cheatsheet for one species. Zones and depth in the behavior
// block reflect current conditions rather than the static card.
func (c *Controller) GetSpeciesDetail(ctx echo.Context) error {
	key := ctx.Param("key")
	if !slices.Contains(rules.AllSpecies, key) {
		return c.HandleError(ctx, notFoundError("unknown species %q", key), "Species not found")
	}

	hours := queryHours(ctx, defaultForecastHours, maxForecastHours)
	now := time.Now().UTC()

	windows, err := c.DS.GetForecastWindows(now, now.Add(time.Duration(hours)*time.Hour))
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load forecast windows")
	}

	periods := make([]map[string]any, 0, len(windows))
	currentTier := "SLOW"
	for i := range windows {
		w := &windows[i]
		for j := range w.SpeciesForecasts {
			sf := &w.SpeciesForecasts[j]
			if sf.Species != key {
				continue
			}
			if i == 0 {
				currentTier = scoring.UITier(sf.BiteScore)
			}
			periods = append(periods, map[string]any{
				"start_time":     c.localISO(w.StartTime),
				"end_time":       c.localISO(w.EndTime),
				"bite_score":     round1(sf.BiteScore),
				"bite_label":     sf.BiteLabel,
				"is_running":     sf.IsRunning,
				"running_factor": sf.RunningFactor,
				"tide_state":     w.TideState,
				"time_of_day":    w.TimeOfDay,
				"temperature":    w.Temperature,
				"conditions":     w.ConditionsSummary,
			})
		}
	}

	env := c.currentEnv(now)
	behavior := c.speciesBehavior(key, currentTier, env)

	response := map[string]any{
		"species":     rules.DisplayName(key),
		"species_key": key,
		"size_limit":  rules.SizeLimitDisplay(key),
		"creel_limit": rules.CreelLimitDisplay(key),
		"forecast":    periods,
		"behavior":    behavior,
	}
	if reg, ok := rules.RegulationFor(key); ok {
		response["regulations"] = reg
	} else {
		response["regulations"] = nil
	}

	return ctx.JSON(http.StatusOK, response)
}

// currentEnv assembles the present environment, falling back to neutral
// values when the capturer is not wired.
func (c *Controller) currentEnv(now time.Time) datastore.EnvSnapshot {
	if c.Capturer != nil {
		return c.Capturer.CurrentEnv(now)
	}
	env := datastore.EnvSnapshot{TideStage: "unknown"}
	if c.Tides != nil {
		if state, err := c.Tides.StateAt(now); err == nil {
			env.TideStage = state.Stage
		}
	}
	return env
}

// speciesBehavior builds the cheatsheet block with condition-aware zones
// and the current tier's depth guidance.
func (c *Controller) speciesBehavior(key, currentTier string, env datastore.EnvSnapshot) map[string]any {
	sheet := rules.CheatsheetFor(key)

	windMph := 0.0
	if env.WindSpeed != nil {
		windMph = *env.WindSpeed
	}
	airTemp := 70.0
	if env.AirTemp != nil {
		airTemp = *env.AirTemp
	}
	waterTemp := airTemp
	if env.WaterTemp != nil {
		waterTemp = *env.WaterTemp
	}
	tideRate := 0.5
	clarity := scoring.PredictWaterClarity(windMph, tideRate, false)
	timeOfDay := env.TimeOfDay
	if timeOfDay == "" {
		timeOfDay = "day"
	}
	tideStage := env.TideStage
	if tideStage == "" {
		tideStage = "unknown"
	}

	zones := scoring.BestZonesNow(scoring.BestZonesInput{
		TopSpecies: []scoring.RankedSpecies{{Key: key, Tier: currentTier}},
		TideStage:  tideStage,
		Clarity:    clarity,
		TimeOfDay:  timeOfDay,
		WindDir:    env.WindDirection,
		WindMph:    windMph,
		AirTempF:   airTemp,
		WaterTempF: waterTemp,
	})
	if len(zones) == 0 {
		zones = sheet.BestZones
	}

	behavior := map[string]any{
		"best_baits":       sheet.BestBaits,
		"best_tide":        sheet.BestTide,
		"best_zones":       zones,
		"behavior_summary": sheet.BehaviorSummary,
	}

	behaviorTier := scoring.BehaviorTierFromUITier(currentTier)
	if depth, ok := rules.DepthBehaviorFor(key, behaviorTier, env.WindDirection, windMph, airTemp, waterTemp); ok {
		behavior["best_depth"] = map[string]any{
			"current": map[string]any{
				"depth": depth.Depth,
				"range": rules.FormatDepthRange(depth.MinFt, depth.MaxFt),
				"note":  depth.Note,
				"tier":  currentTier,
			},
		}
	}

	// Per-zone coaching from the learned tip table.
	tips := map[string]string{}
	for _, z := range rules.ZoneIDs {
		zoneID := strconv.Itoa(z)
		if tip, err := c.DS.GetTip(key, zoneID); err == nil && tip.TipText != "" {
			tips[zoneID] = tip.TipText
		}
	}
	if len(tips) > 0 {
		behavior["zone_tips"] = tips
	}

	return behavior
}
