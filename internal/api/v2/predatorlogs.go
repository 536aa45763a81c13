package api

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bitecast/bitecast-go/internal/datastore"
	"github.com/bitecast/bitecast-go/internal/rules"
)

func (c *Controller) initPredatorLogRoutes() {
	c.Group.POST("/predator-logs", c.CreatePredatorLog)
	c.Group.GET("/predator-logs", c.GetPredatorLogs)
	c.Group.DELETE("/predator-logs/:id", c.DeletePredatorLog)
}

// knownPredators are the sighting types anglers can report from the dock.
var knownPredators = []string{"dolphin", "shark", "jack_crevalle", "bull_redfish"}

// predatorRecentWindow marks sightings still fresh enough to suppress
// prey activity.
const predatorRecentWindow = 4 * time.Hour

// PredatorLogRequest is the payload for logging a predator sighting.
type PredatorLogRequest struct {
	Predator string `json:"predator"`
	Zone     string `json:"zone"`
	Time     string `json:"time"`
	Behavior string `json:"behavior"`
	Notes    string `json:"notes"`
}

// CreatePredatorLog records a sighting, stamps it with the tide stage at
// that moment, and rescores the prey species in the zone.
func (c *Controller) CreatePredatorLog(ctx echo.Context) error {
	var req PredatorLogRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, validationError("invalid request body: %v", err), "Invalid request")
	}

	if !slices.Contains(knownPredators, req.Predator) {
		return c.HandleError(ctx, validationError("unknown predator %q", req.Predator), "Invalid predator")
	}
	zone, ok := normalizeZoneID(req.Zone)
	if !ok {
		return c.HandleError(ctx, validationError("zone must be 1-5, got %q", req.Zone), "Invalid zone")
	}
	req.Zone = zone

	sightingTime, err := c.parseEventTime(req.Time)
	if err != nil {
		return c.HandleError(ctx, validationError("invalid time %q", req.Time), "Invalid time")
	}

	tideStage := "unknown"
	if c.Tides != nil {
		if state, err := c.Tides.StateAt(sightingTime); err == nil {
			tideStage = state.Stage
		}
	}

	predatorLog := datastore.PredatorLog{
		Predator: req.Predator,
		Zone:     req.Zone,
		Time:     sightingTime,
		Behavior: req.Behavior,
		Tide:     tideStage,
		Notes:    req.Notes,
	}

	if err := c.DS.SavePredatorLog(&predatorLog); err != nil {
		return c.HandleError(ctx, err, "Failed to save predator log")
	}

	c.runPredatorTriggers(ctx, &predatorLog)

	return ctx.JSON(http.StatusCreated, map[string]any{
		"id":       predatorLog.ID,
		"predator": predatorLog.Predator,
		"zone":     predatorLog.Zone,
		"time":     c.localISO(predatorLog.Time),
		"tide":     predatorLog.Tide,
		"message":  "Predator sighting logged",
	})
}

// runPredatorTriggers rescores the prey species in the sighting's zone so
// the suppression takes effect immediately.
func (c *Controller) runPredatorTriggers(ctx echo.Context, predatorLog *datastore.PredatorLog) {
	if c.Scores == nil {
		return
	}
	reqCtx := ctx.Request().Context()

	for _, species := range rules.AllSpecies {
		if !rules.IsPreySpecies(species) {
			continue
		}
		if err := c.Scores.Recalculate(reqCtx, species, predatorLog.Zone, false); err != nil {
			c.logger.Warn("prey score recalculation failed",
				"species", species, "zone", predatorLog.Zone, "error", err)
		}
	}
}

// GetPredatorLogs lists recent sightings, flagging the ones inside the
// suppression window.
func (c *Controller) GetPredatorLogs(ctx echo.Context) error {
	limit := defaultCatchLimit
	if raw := ctx.QueryParam("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = min(v, maxCatchLimit)
		}
	}

	logs, err := c.DS.GetPredatorLogs(limit)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load predator logs")
	}

	now := time.Now().UTC()
	result := make([]map[string]any, 0, len(logs))
	for i := range logs {
		log := &logs[i]
		result = append(result, map[string]any{
			"id":         log.ID,
			"predator":   log.Predator,
			"zone":       log.Zone,
			"time":       c.localISO(log.Time),
			"behavior":   log.Behavior,
			"tide":       log.Tide,
			"notes":      log.Notes,
			"created_at": c.localISO(log.CreatedAt),
			"is_recent":  now.Sub(log.Time) <= predatorRecentWindow,
		})
	}
	return ctx.JSON(http.StatusOK, result)
}

// DeletePredatorLog removes a sighting entry.
func (c *Controller) DeletePredatorLog(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return c.HandleError(ctx, validationError("invalid predator log id %q", ctx.Param("id")), "Invalid id")
	}
	if err := c.DS.DeletePredatorLog(uint(id)); err != nil {
		return c.HandleError(ctx, err, "Predator log not found")
	}
	return ctx.JSON(http.StatusOK, map[string]any{"success": true, "message": "Predator log deleted"})
}
