package api

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bitecast/bitecast-go/internal/datastore"
	"github.com/bitecast/bitecast-go/internal/rules"
	"github.com/bitecast/bitecast-go/internal/scoring"
)

func (c *Controller) initBaitRoutes() {
	c.Group.GET("/bait-forecast", c.GetBaitForecast)
	c.Group.GET("/bait/:key", c.GetBaitDetail)
}

// BaitForecastEntry is one bait species in the activity forecast.
type BaitForecastEntry struct {
	BaitKey     string  `json:"bait_key"`
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
	Tier        string  `json:"tier"`
	BestZone    string  `json:"best_zone"`
	Reason      string  `json:"reason"`
}

// GetBaitForecast returns activity scores for every catchable bait, each
// graded by its best zone, plus the conditions the scores were built from.
func (c *Controller) GetBaitForecast(ctx echo.Context) error {
	return c.cachedJSON(ctx, "/api/v2/bait-forecast", func() (any, error) {
		now := time.Now().UTC()

		forecasts := make([]BaitForecastEntry, 0, len(rules.CatchableBaits))
		for _, bait := range rules.CatchableBaits {
			best, ok := c.bestBaitScore(ctx, bait)
			if !ok {
				continue
			}
			forecasts = append(forecasts, BaitForecastEntry{
				BaitKey:     bait,
				DisplayName: rules.BaitDisplayName(bait),
				Score:       round1(best.Score),
				Tier:        scoring.UITier(best.Score),
				BestZone:    best.ZoneID,
				Reason:      best.ReasonSummary,
			})
		}
		sort.SliceStable(forecasts, func(a, b int) bool {
			return forecasts[a].Score > forecasts[b].Score
		})

		env := c.currentEnv(now)
		return map[string]any{
			"bait_forecasts": forecasts,
			"conditions":     c.baitConditions(env),
			"updated_at":     c.localISO(now),
		}, nil
	})
}

// GetBaitDetail returns the full profile for one bait species with its
// current best-zone activity score.
func (c *Controller) GetBaitDetail(ctx echo.Context) error {
	key := ctx.Param("key")
	profile := rules.BaitProfileFor(key)
	if profile == nil {
		return c.HandleError(ctx, notFoundError("unknown bait %q", key), "Bait not found")
	}

	response := map[string]any{
		"bait_key":        key,
		"display_name":    profile.DisplayName,
		"description":     profile.Description,
		"zones":           profile.Zones,
		"zone_notes":      profile.ZoneNotes,
		"tide_preference": profile.TidePreference,
		"time_preference": profile.TimePreference,
		"clarity_notes":   profile.ClarityNotes,
		"methods":         profile.Methods,
		"how_to_catch":    profile.HowToCatch,
		"best_for":        profile.BestFor,
		"tips":            profile.Tips,
	}

	if best, ok := c.bestBaitScore(ctx, key); ok {
		response["current_activity_score"] = round1(best.Score)
		response["current_tier"] = scoring.UITier(best.Score)
		response["best_zone"] = best.ZoneID
	} else {
		response["current_activity_score"] = nil
		response["current_tier"] = "UNKNOWN"
	}

	env := c.currentEnv(time.Now().UTC())
	response["conditions"] = c.baitConditions(env)

	return ctx.JSON(http.StatusOK, response)
}

// bestBaitScore finds the highest-scoring zone for a bait, computing rows
// on a cache miss when the score service is wired.
func (c *Controller) bestBaitScore(ctx echo.Context, bait string) (datastore.CachedBaitScore, bool) {
	var best datastore.CachedBaitScore
	found := false
	for _, z := range rules.ZoneIDs {
		zoneID := strconv.Itoa(z)
		row, err := c.DS.GetBaitScore(bait, zoneID)
		if err != nil {
			if c.Scores == nil {
				continue
			}
			if err := c.Scores.RecalculateBait(ctx.Request().Context(), bait, zoneID, true); err != nil {
				continue
			}
			row, err = c.DS.GetBaitScore(bait, zoneID)
			if err != nil {
				continue
			}
		}
		if !found || row.Score > best.Score {
			best = row
			found = true
		}
	}
	return best, found
}

// baitConditions summarizes the environment behind the bait scores.
func (c *Controller) baitConditions(env datastore.EnvSnapshot) map[string]any {
	windMph := 0.0
	if env.WindSpeed != nil {
		windMph = *env.WindSpeed
	}
	waterTemp := 0.0
	if env.WaterTemp != nil {
		waterTemp = *env.WaterTemp
	}
	tideStage := env.TideStage
	if tideStage == "" {
		tideStage = "unknown"
	}
	timeOfDay := env.TimeOfDay
	if timeOfDay == "" {
		timeOfDay = "unknown"
	}
	return map[string]any{
		"tide_stage":  tideStage,
		"clarity":     scoring.PredictWaterClarity(windMph, 0.5, false),
		"time_of_day": timeOfDay,
		"wind_speed":  windMph,
		"water_temp":  waterTemp,
	}
}
