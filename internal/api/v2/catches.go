package api

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bitecast/bitecast-go/internal/datastore"
	"github.com/bitecast/bitecast-go/internal/rules"
	"github.com/bitecast/bitecast-go/internal/scoring"
)

func (c *Controller) initCatchRoutes() {
	c.Group.POST("/catches", c.CreateCatch)
	c.Group.GET("/catches", c.GetCatches)
	c.Group.GET("/catches/stats", c.GetCatchStats)
	c.Group.DELETE("/catches/:id", c.DeleteCatch)
}

const (
	defaultCatchLimit = 50
	maxCatchLimit     = 200
	defaultStatsDays  = 30
	maxStatsDays      = 365
	maxCatchLengthIn  = 100
)

// CatchRequest is the payload for logging a catch. Environment fields are
// filled server-side from the latest snapshot; only the angler's
// observations come from the client.
type CatchRequest struct {
	Species              string `json:"species"`
	ZoneID               string `json:"zone_id"`
	Timestamp            string `json:"timestamp"`
	DistanceFromDock     string `json:"distance_from_dock"`
	DepthEstimate        string `json:"depth_estimate"`
	StructureType        string `json:"structure_type"`
	SizeLengthIn         int    `json:"size_length_in"`
	SizeBucket           string `json:"size_bucket"`
	Quantity             int    `json:"quantity"`
	Kept                 bool   `json:"kept"`
	BaitUsed             string `json:"bait_used"`
	RigType              string `json:"rig_type"`
	PredatorSeenRecently bool   `json:"predator_seen_recently"`
	Notes                string `json:"notes"`
	DaysSinceLastChecked int    `json:"days_since_last_checked"`
}

// CreateCatch logs a catch, stamps it with the current environment, and
// feeds it through the learning pipeline.
func (c *Controller) CreateCatch(ctx echo.Context) error {
	var req CatchRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, validationError("invalid request body: %v", err), "Invalid request")
	}

	if !slices.Contains(rules.AllSpecies, req.Species) {
		return c.HandleError(ctx, validationError("unknown species %q", req.Species), "Invalid species")
	}
	zoneID, ok := normalizeZoneID(req.ZoneID)
	if !ok {
		return c.HandleError(ctx, validationError("zone_id must be 1-5, got %q", req.ZoneID), "Invalid zone")
	}
	req.ZoneID = zoneID
	if req.SizeLengthIn < 0 || req.SizeLengthIn > maxCatchLengthIn {
		return c.HandleError(ctx, validationError("size_length_in out of range: %d", req.SizeLengthIn), "Invalid size")
	}
	if req.Quantity < 0 {
		return c.HandleError(ctx, validationError("quantity cannot be negative"), "Invalid quantity")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	catchTime, err := c.parseEventTime(req.Timestamp)
	if err != nil {
		return c.HandleError(ctx, validationError("invalid timestamp %q", req.Timestamp), "Invalid timestamp")
	}

	catch := datastore.Catch{
		Timestamp:            catchTime,
		Species:              req.Species,
		ZoneID:               req.ZoneID,
		DistanceFromDock:     req.DistanceFromDock,
		DepthEstimate:        req.DepthEstimate,
		StructureType:        req.StructureType,
		SizeLengthIn:         req.SizeLengthIn,
		SizeBucket:           req.SizeBucket,
		Quantity:             req.Quantity,
		Kept:                 req.Kept,
		BaitUsed:             req.BaitUsed,
		RigType:              req.RigType,
		PredatorSeenRecently: req.PredatorSeenRecently,
		Notes:                req.Notes,
		DaysSinceLastChecked: req.DaysSinceLastChecked,
		EnvSnapshot:          c.eventEnv(catchTime),
	}

	if err := c.DS.SaveCatch(&catch); err != nil {
		return c.HandleError(ctx, err, "Failed to save catch")
	}

	// The score the engine showed when the fish hit, for prediction-vs-
	// outcome learning.
	predictedTier := "SLOW"
	if cached, err := c.DS.GetBiteScore(catch.Species, catch.ZoneID); err == nil {
		predictedTier = scoring.UITier(cached.Score)
	}

	c.runCatchTriggers(ctx, &catch, predictedTier)

	response := map[string]any{
		"id":          catch.ID,
		"species":     rules.DisplayName(catch.Species),
		"species_key": catch.Species,
		"zone_id":     catch.ZoneID,
		"timestamp":   c.localISO(catch.Timestamp),
		"size_bucket": catch.SizeBucket,
		"kept":        catch.Kept,
		"message":     "Catch logged with full environment snapshot",
	}
	if updated, err := c.DS.GetBiteScore(catch.Species, catch.ZoneID); err == nil {
		response["updated_score"] = round1(updated.Score)
		response["updated_rating"] = updated.Rating
	}
	return ctx.JSON(http.StatusCreated, response)
}

// runCatchTriggers updates learning tables, the cached score, and the tip
// for the catch's (species, zone). Failures are logged, never surfaced;
// the catch itself is already stored.
func (c *Controller) runCatchTriggers(ctx echo.Context, catch *datastore.Catch, predictedTier string) {
	reqCtx := ctx.Request().Context()

	if c.Learner != nil {
		c.Learner.OnCatch(reqCtx, catch, predictedTier)
	}
	if c.Scores != nil {
		// Event-driven recomputes blend into the cached score; only the
		// explicit recalc path overwrites it.
		if err := c.Scores.Recalculate(reqCtx, catch.Species, catch.ZoneID, false); err != nil {
			c.logger.Warn("score recalculation after catch failed",
				"species", catch.Species, "zone", catch.ZoneID, "error", err)
		}
	}
	if c.Tips != nil {
		c.Tips.UpdateSpeciesZoneTip(reqCtx, catch.Species, catch.ZoneID)
	}
}

// GetCatches lists recent catches, newest first.
func (c *Controller) GetCatches(ctx echo.Context) error {
	limit := defaultCatchLimit
	if raw := ctx.QueryParam("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = min(v, maxCatchLimit)
		}
	}
	species := ctx.QueryParam("species")

	catches, err := c.DS.GetCatches(species, "", limit)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load catches")
	}

	result := make([]map[string]any, 0, len(catches))
	for i := range catches {
		result = append(result, c.catchPayload(&catches[i]))
	}
	return ctx.JSON(http.StatusOK, result)
}

func (c *Controller) catchPayload(catch *datastore.Catch) map[string]any {
	return map[string]any{
		"id":              catch.ID,
		"timestamp":       c.localISO(catch.Timestamp),
		"species":         rules.DisplayName(catch.Species),
		"species_key":     catch.Species,
		"zone_id":         catch.ZoneID,
		"size_length_in":  catch.SizeLengthIn,
		"size_bucket":     catch.SizeBucket,
		"quantity":        catch.Quantity,
		"bait_used":       catch.BaitUsed,
		"rig_type":        catch.RigType,
		"kept":            catch.Kept,
		"notes":           catch.Notes,
		"tide_stage":      catch.TideStage,
		"tide_height":     catch.TideHeight,
		"water_temp":      catch.WaterTemp,
		"air_temp":        catch.AirTemp,
		"wind_speed":      catch.WindSpeed,
		"weather":         catch.Weather,
	}
}

// DeleteCatch removes a catch entry and refreshes the affected score.
func (c *Controller) DeleteCatch(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return c.HandleError(ctx, validationError("invalid catch id %q", ctx.Param("id")), "Invalid id")
	}

	catch, err := c.DS.GetCatch(uint(id))
	if err != nil {
		return c.HandleError(ctx, err, "Catch not found")
	}
	if err := c.DS.DeleteCatch(uint(id)); err != nil {
		return c.HandleError(ctx, err, "Failed to delete catch")
	}

	if c.Scores != nil {
		if err := c.Scores.Recalculate(ctx.Request().Context(), catch.Species, catch.ZoneID, false); err != nil {
			c.logger.Warn("score recalculation after delete failed",
				"species", catch.Species, "zone", catch.ZoneID, "error", err)
		}
	}
	return ctx.JSON(http.StatusOK, map[string]any{"success": true, "message": "Catch deleted"})
}

// GetCatchStats aggregates the catch log over a lookback window. Totals
// count individual fish via the quantity column; bait and rig breakdowns
// count log entries.
func (c *Controller) GetCatchStats(ctx echo.Context) error {
	days := defaultStatsDays
	if raw := ctx.QueryParam("days"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			days = min(v, maxStatsDays)
		}
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	catches, err := c.DS.RecentCatches("", "", since)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load catches")
	}

	if len(catches) == 0 {
		return ctx.JSON(http.StatusOK, map[string]any{
			"total_catches":     0,
			"days_analyzed":     days,
			"species_breakdown": map[string]any{},
			"bait_success":      map[string]int{},
			"method_success":    map[string]int{},
			"message":           "No catches in this time period",
		})
	}

	type speciesTally struct {
		Total int `json:"total"`
		Kept  int `json:"kept"`
	}
	speciesCounts := map[string]*speciesTally{}
	baitCounts := map[string]int{}
	methodCounts := map[string]int{}
	totalFish := 0
	keptFish := 0

	for i := range catches {
		catch := &catches[i]
		qty := catch.Quantity
		if qty < 1 {
			qty = 1
		}
		totalFish += qty
		if catch.Kept {
			keptFish += qty
		}

		name := rules.DisplayName(catch.Species)
		tally := speciesCounts[name]
		if tally == nil {
			tally = &speciesTally{}
			speciesCounts[name] = tally
		}
		tally.Total += qty
		if catch.Kept {
			tally.Kept += qty
		}

		if catch.BaitUsed != "" {
			baitCounts[catch.BaitUsed]++
		}
		if catch.RigType != "" {
			methodCounts[catch.RigType]++
		}
	}

	bySpecies := make([]map[string]any, 0, len(speciesCounts))
	for name, tally := range speciesCounts {
		bySpecies = append(bySpecies, map[string]any{
			"species_display": name,
			"count":           tally.Total,
		})
	}
	slices.SortFunc(bySpecies, func(a, b map[string]any) int {
		return b["count"].(int) - a["count"].(int)
	})

	return ctx.JSON(http.StatusOK, map[string]any{
		"total_catches":     totalFish,
		"kept_count":        keptFish,
		"released_count":    totalFish - keptFish,
		"days_analyzed":     days,
		"species_breakdown": speciesCounts,
		"by_species":        bySpecies,
		"bait_success":      baitCounts,
		"method_success":    methodCounts,
	})
}

// parseEventTime interprets a client timestamp in the configured local
// zone and stores it as UTC. Empty means now.
func (c *Controller) parseEventTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, raw, c.location); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", raw)
}

// eventEnv stamps an angler event with the environment at its timestamp:
// the snapshot pipeline fills weather and water, the tide service fills
// stage and height, and astronomy fills time of day and moon phase.
func (c *Controller) eventEnv(t time.Time) datastore.EnvSnapshot {
	env := datastore.EnvSnapshot{}
	if c.Capturer != nil {
		env = c.Capturer.CurrentEnv(t)
	}
	if c.Tides != nil {
		if state, err := c.Tides.StateAt(t); err == nil {
			env.TideStage = state.Stage
			if state.HasHeight {
				height := state.Height
				env.TideHeight = &height
			}
		}
	}
	if c.Astro != nil {
		env.TimeOfDay = c.Astro.TimeOfDayAt(t)
		phase, _ := c.Astro.MoonPhaseAt(t)
		env.MoonPhase = &phase
	}
	return env
}
