package api

import (
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bitecast/bitecast-go/internal/astro"
	"github.com/bitecast/bitecast-go/internal/datastore"
	"github.com/bitecast/bitecast-go/internal/rules"
	"github.com/bitecast/bitecast-go/internal/scoring"
)

func (c *Controller) initCurrentRoutes() {
	c.Group.GET("/current", c.GetCurrent)
}

// SpeciesCondition is one species' entry in the current conditions view.
type SpeciesCondition struct {
	Name          string  `json:"name"`
	Key           string  `json:"key"`
	IsRunning     bool    `json:"is_running"`
	BiteScore     float64 `json:"bite_score"`
	BiteLabel     string  `json:"bite_label"`
	BiteTier      string  `json:"bite_tier"`
	Tier          string  `json:"tier"`
	RunningFactor float64 `json:"running_factor"`
	Depth         string  `json:"depth,omitempty"`
	DepthRange    string  `json:"depth_range,omitempty"`
	DepthNote     string  `json:"depth_note,omitempty"`
}

// TopSpecies is the condensed top-species entry.
type TopSpecies struct {
	Name      string  `json:"name"`
	Key       string  `json:"key"`
	BiteScore float64 `json:"bite_score"`
	Tier      string  `json:"tier"`
}

// DepthInfo highlights where the top species is holding.
type DepthInfo struct {
	Species    string `json:"species"`
	Depth      string `json:"depth"`
	DepthRange string `json:"depth_range"`
	Note       string `json:"note"`
}

// defaults when no forecast data or no active species exists.
const (
	fallbackClarity    = "Lightly Stained"
	fallbackConfidence = "MEDIUM"
	fallbackRigAdvice  = "Use a 1/4oz jig with soft plastic."
	fallbackProTip     = "Stay persistent and adjust based on what you're seeing."
)

var fallbackBestZones = []int{3, 4, 5}

// GetCurrent returns the full current-conditions view: the current (or
// next) forecast window, per-species scores with depth behavior, the
// conditions summary and the derived fishing intel block.
func (c *Controller) GetCurrent(ctx echo.Context) error {
	now := time.Now().UTC()

	windows, err := c.DS.GetForecastWindows(now, now.Add(48*time.Hour))
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load forecast windows")
	}
	if len(windows) == 0 {
		return ctx.JSON(http.StatusOK, c.currentFallback(now))
	}
	w := windows[0]

	airTemp := w.Temperature
	windSpeed := w.WindSpeed
	windDir := ""
	windGust := 0.0
	cloudCover := ""
	conditionsText := w.ConditionsSummary

	// Prefer real-time station observations over the stored forecast.
	if c.Weather != nil {
		if obs, obsErr := c.Weather.Observations(ctx.Request().Context()); obsErr == nil {
			if obs.HasAirTemp {
				airTemp = obs.AirTempF
			}
			if obs.HasWind {
				windSpeed = obs.WindSpeedMph
				windDir = obs.WindDirectionCardinal
				windGust = obs.WindGustMph
			}
		}
	}
	mid := w.StartTime.Add(w.EndTime.Sub(w.StartTime) / 2)
	if row, rowErr := c.DS.WeatherForTime(mid); rowErr == nil {
		if windDir == "" {
			windDir = row.WindDirection
		}
		if windGust == 0 {
			windGust = row.WindGust
		}
		cloudCover = row.CloudCover
		if row.Conditions != "" {
			conditionsText = row.Conditions
		}
	}

	waterTemp := 0.0
	hasWaterTemp := false
	if w.WaterTemperature != nil {
		waterTemp = *w.WaterTemperature
		hasWaterTemp = true
	}

	// The window does not store the change rate; read it live when the
	// tide service is wired.
	tideRate := 0.5
	if c.Tides != nil {
		if st, stErr := c.Tides.StateAt(now); stErr == nil && st.HasHeight {
			tideRate = st.ChangeRate
		}
	}

	_, moonName := c.moonAt(now)

	species := make([]SpeciesCondition, 0, len(w.SpeciesForecasts))
	for i := range w.SpeciesForecasts {
		sf := &w.SpeciesForecasts[i]
		entry := SpeciesCondition{
			Name:          rules.DisplayName(sf.Species),
			Key:           sf.Species,
			IsRunning:     sf.IsRunning,
			BiteScore:     round1(sf.BiteScore),
			BiteLabel:     sf.BiteLabel,
			BiteTier:      scoring.BehaviorTier(sf.BiteScore),
			Tier:          scoring.UITier(sf.BiteScore),
			RunningFactor: sf.RunningFactor,
		}
		if behavior, ok := rules.DepthBehaviorFor(sf.Species, entry.BiteTier,
			windDir, windSpeed, airTemp, waterTemp); ok {
			entry.Depth = behavior.Depth
			entry.DepthRange = rules.FormatDepthRange(behavior.MinFt, behavior.MaxFt)
			entry.DepthNote = behavior.Note
		}
		species = append(species, entry)
	}
	sortSpeciesByScore(species)

	top := topActiveSpecies(species, 2)

	response := map[string]any{
		"window_start":   c.localISO(w.StartTime),
		"window_end":     c.localISO(w.EndTime),
		"overall_score":  round1(w.OverallScore),
		"tide_state":     w.TideState,
		"tide_height":    w.TideHeightAvg,
		"time_of_day":    w.TimeOfDay,
		"air_temp_f":     airTemp,
		"water_temp_f":   w.WaterTemperature,
		"wind_speed":     windSpeed,
		"wind_direction": windDir,
		"wind_gust":      windGust,
		"cloud_cover":    cloudCover,
		"moon_phase":     moonName,
		"pressure_trend": w.PressureTrend,
		"conditions":     w.ConditionsSummary,
		"species":        species,
		"top_species":    top,
	}

	if len(top) == 0 {
		response["conditions_summary"] = "Conditions data unavailable."
		c.applyIntelFallback(response)
		c.attachMarine(response)
		c.attachTideDetails(response, now)
		return ctx.JSON(http.StatusOK, response)
	}

	topKey := top[0].Key
	tideScore := scoring.TideSubScore(topKey, w.TideState, tideRate)
	windScore := scoring.WindSubScore(topKey, windSpeed, conditionsText)
	tempScore := scoring.TempSubScore(topKey, airTemp, waterTemp, hasWaterTemp)

	response["conditions_summary"] = scoring.ConditionsSummary(scoring.SummaryInput{
		TideScore:  tideScore,
		WindScore:  windScore,
		TempScore:  tempScore,
		BiteScore:  top[0].BiteScore,
		TideStage:  w.TideState,
		WindMph:    windSpeed,
		WindDir:    windDir,
		AirTempF:   airTemp,
		WaterTempF: waterTemp,
	})
	response["sub_scores"] = map[string]float64{
		"tide": round2(tideScore),
		"wind": round2(windScore),
		"temp": round2(tempScore),
	}

	// Depth highlight for the top species.
	depthMin, depthMax := 3, 5
	if behavior, ok := rules.DepthBehaviorFor(topKey, scoring.BehaviorTier(top[0].BiteScore),
		windDir, windSpeed, airTemp, waterTemp); ok {
		depthMin, depthMax = behavior.MinFt, behavior.MaxFt
		response["depth_info"] = DepthInfo{
			Species:    top[0].Name,
			Depth:      behavior.Depth,
			DepthRange: rules.FormatDepthRange(behavior.MinFt, behavior.MaxFt),
			Note:       behavior.Note,
		}
	}

	clarity := scoring.PredictWaterClarity(windSpeed, tideRate, false)
	pressure, wind, tidePred := scoring.StabilityInputs(w.PressureTrend, windSpeed)

	ranked := make([]scoring.RankedSpecies, 0, 5)
	for _, s := range species {
		if len(ranked) == 5 {
			break
		}
		ranked = append(ranked, scoring.RankedSpecies{Key: s.Key, Tier: s.Tier})
	}

	response["clarity"] = clarity
	response["clarity_tip"] = scoring.ClarityTip(clarity)
	response["confidence"] = scoring.ForecastConfidence(pressure, wind, tidePred)
	response["rig_of_moment"] = scoring.RigOfMoment(clarity, windSpeed, tideRate, topKey, depthMin, depthMax)
	response["best_zones"] = scoring.BestZonesNow(scoring.BestZonesInput{
		TopSpecies: ranked,
		TideStage:  w.TideState,
		Clarity:    clarity,
		TimeOfDay:  w.TimeOfDay,
		WindDir:    windDir,
		WindMph:    windSpeed,
		AirTempF:   airTemp,
		WaterTempF: waterTemp,
	})
	response["pro_tip"] = scoring.ProTip(top[0].Tier, clarity, w.TideState, windSpeed, w.TimeOfDay)
	response["current_strength"] = scoring.CurrentStrength(tideRate)
	response["moon_tide_window"] = scoring.MoonTideWindow(moonName, w.TideState, w.TimeOfDay)

	c.attachMarine(response)
	c.attachTideDetails(response, now)
	return ctx.JSON(http.StatusOK, response)
}

// currentFallback is the response shape before the first ingest cycle has
// produced any forecast windows.
func (c *Controller) currentFallback(now time.Time) map[string]any {
	response := map[string]any{
		"window_start":       nil,
		"window_end":         nil,
		"overall_score":      0.0,
		"tide_state":         "unknown",
		"time_of_day":        astro.FallbackTimeOfDay(now),
		"species":            []SpeciesCondition{},
		"top_species":        []TopSpecies{},
		"conditions_summary": "Conditions data unavailable.",
	}
	c.applyIntelFallback(response)
	c.attachMarine(response)
	c.attachTideDetails(response, now)
	return response
}

func (c *Controller) applyIntelFallback(response map[string]any) {
	response["clarity"] = fallbackClarity
	response["clarity_tip"] = scoring.ClarityTip(fallbackClarity)
	response["confidence"] = fallbackConfidence
	response["rig_of_moment"] = fallbackRigAdvice
	response["best_zones"] = fallbackBestZones
	response["pro_tip"] = fallbackProTip
	response["current_strength"] = "Moderate"
	response["moon_tide_window"] = "Normal conditions."
}

// attachMarine adds the marine safety block when a marine condition row
// exists.
func (c *Controller) attachMarine(response map[string]any) {
	mc, err := c.DS.LatestMarineCondition()
	if err != nil {
		return
	}
	response["marine"] = marineSafetyPayload(&mc)
}

// attachTideDetails adds the live tide state block when the tide service
// is wired.
func (c *Controller) attachTideDetails(response map[string]any, now time.Time) {
	if c.Tides == nil {
		return
	}
	state, err := c.Tides.CurrentState(now)
	if err != nil {
		return
	}
	response["tide_details"] = c.tideStatePayload(&state)
}

// moonAt resolves the moon phase, preferring the astronomy service's
// stored data over the pure computation.
func (c *Controller) moonAt(now time.Time) (float64, string) {
	if c.Astro != nil {
		return c.Astro.MoonPhaseAt(now)
	}
	phase := astro.MoonPhase(now)
	return phase, astro.MoonPhaseName(phase)
}

func sortSpeciesByScore(species []SpeciesCondition) {
	sort.SliceStable(species, func(i, j int) bool {
		return species[i].BiteScore > species[j].BiteScore
	})
}

// topActiveSpecies picks the highest scoring seasonally running species.
func topActiveSpecies(species []SpeciesCondition, limit int) []TopSpecies {
	out := make([]TopSpecies, 0, limit)
	for _, s := range species {
		if !s.IsRunning {
			continue
		}
		out = append(out, TopSpecies{
			Name:      s.Name,
			Key:       s.Key,
			BiteScore: s.BiteScore,
			Tier:      s.Tier,
		})
		if len(out) == limit {
			break
		}
	}
	return out
}

func round1(v float64) float64 { return float64(int(v*10+0.5)) / 10 }

func round2(v float64) float64 { return float64(int(v*100+0.5)) / 100 }

// marineSafetyPayload renders a marine condition row for API responses.
func marineSafetyPayload(mc *datastore.MarineCondition) map[string]any {
	return map[string]any{
		"sea_state":            mc.SeaState,
		"wave_height_ft":       mc.WaveHeight,
		"wave_height_text":     mc.WaveHeightText,
		"summary":              mc.MarineSummary,
		"safety_score":         mc.SafetyScore,
		"safety_level":         mc.SafetyLevel,
		"hazard_level":         mc.HazardLevel,
		"small_craft_advisory": mc.SmallCraftAdvisory,
		"gale_warning":         mc.GaleWarning,
		"thunderstorm_warning": mc.ThunderstormWarning,
		"wind_gust":            mc.WindGust,
		"visibility_nm":        mc.Visibility,
		"fetched_at":           mc.FetchedAt,
	}
}
