package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bitecast/bitecast-go/internal/datastore"
	"github.com/bitecast/bitecast-go/internal/rules"
)

func (c *Controller) initBaitLogRoutes() {
	c.Group.POST("/bait-logs", c.CreateBaitLog)
	c.Group.GET("/bait-logs", c.GetBaitLogs)
	c.Group.DELETE("/bait-logs/:id", c.DeleteBaitLog)
}

// baitPredators maps a logged bait to the predator species whose zone
// scores it influences. Seeing bait means the fish that eat it are worth
// rescoring.
var baitPredators = map[string][]string{
	"live_shrimp":  {"speckled_trout", "redfish", "flounder", "sheepshead", "black_drum"},
	"shrimp":       {"speckled_trout", "redfish", "flounder", "sheepshead", "black_drum"},
	"menhaden":     {"redfish", "speckled_trout", "jack_crevalle"},
	"mullet":       {"redfish", "speckled_trout", "jack_crevalle"},
	"fiddler_crab": {"sheepshead", "black_drum"},
	"fiddler":      {"sheepshead", "black_drum"},
}

var quantityEstimates = []string{"none", "few", "plenty"}

// BaitLogRequest is the payload for logging bait activity.
type BaitLogRequest struct {
	BaitSpecies          string `json:"bait_species"`
	Method               string `json:"method"`
	QuantityEstimate     string `json:"quantity_estimate"`
	ZoneID               string `json:"zone_id"`
	Timestamp            string `json:"timestamp"`
	StructureType        string `json:"structure_type"`
	Notes                string `json:"notes"`
	DaysSinceLastChecked int    `json:"days_since_last_checked"`
}

// CreateBaitLog records a bait sighting or catch and rescores the bait
// plus the predators that feed on it.
func (c *Controller) CreateBaitLog(ctx echo.Context) error {
	var req BaitLogRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, validationError("invalid request body: %v", err), "Invalid request")
	}

	if req.BaitSpecies == "" {
		return c.HandleError(ctx, validationError("bait_species is required"), "Invalid bait")
	}
	zoneID, ok := normalizeZoneID(req.ZoneID)
	if !ok {
		return c.HandleError(ctx, validationError("zone_id must be 1-5, got %q", req.ZoneID), "Invalid zone")
	}
	req.ZoneID = zoneID
	if req.QuantityEstimate == "" {
		req.QuantityEstimate = "few"
	}
	if !validQuantityEstimate(req.QuantityEstimate) {
		return c.HandleError(ctx, validationError("quantity_estimate must be none, few, or plenty"), "Invalid quantity estimate")
	}

	logTime, err := c.parseEventTime(req.Timestamp)
	if err != nil {
		return c.HandleError(ctx, validationError("invalid timestamp %q", req.Timestamp), "Invalid timestamp")
	}

	baitLog := datastore.BaitLog{
		Timestamp:            logTime,
		BaitSpecies:          req.BaitSpecies,
		Method:               req.Method,
		QuantityEstimate:     req.QuantityEstimate,
		ZoneID:               req.ZoneID,
		StructureType:        req.StructureType,
		Notes:                req.Notes,
		DaysSinceLastChecked: req.DaysSinceLastChecked,
		EnvSnapshot:          c.eventEnv(logTime),
	}

	if err := c.DS.SaveBaitLog(&baitLog); err != nil {
		return c.HandleError(ctx, err, "Failed to save bait log")
	}

	c.runBaitTriggers(ctx, &baitLog)

	return ctx.JSON(http.StatusCreated, map[string]any{
		"id":           baitLog.ID,
		"bait_species": baitLog.BaitSpecies,
		"zone_id":      baitLog.ZoneID,
		"method":       baitLog.Method,
		"timestamp":    c.localISO(baitLog.Timestamp),
		"message":      "Bait logged with full environment snapshot",
	})
}

// runBaitTriggers rescores the bait itself and the predator species the
// bait implies are nearby. Failures are logged, never surfaced.
func (c *Controller) runBaitTriggers(ctx echo.Context, baitLog *datastore.BaitLog) {
	if c.Scores == nil {
		return
	}
	reqCtx := ctx.Request().Context()

	if err := c.Scores.RecalculateBait(reqCtx, baitLog.BaitSpecies, baitLog.ZoneID, false); err != nil {
		c.logger.Warn("bait score recalculation failed",
			"bait", baitLog.BaitSpecies, "zone", baitLog.ZoneID, "error", err)
	}
	for _, predator := range baitPredators[strings.ToLower(baitLog.BaitSpecies)] {
		if err := c.Scores.Recalculate(reqCtx, predator, baitLog.ZoneID, false); err != nil {
			c.logger.Warn("predator score recalculation failed",
				"species", predator, "zone", baitLog.ZoneID, "error", err)
		}
	}
}

// GetBaitLogs lists recent bait logs, newest first.
func (c *Controller) GetBaitLogs(ctx echo.Context) error {
	limit := defaultCatchLimit
	if raw := ctx.QueryParam("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = min(v, maxCatchLimit)
		}
	}

	logs, err := c.DS.GetBaitLogs("", "", limit)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load bait logs")
	}

	result := make([]map[string]any, 0, len(logs))
	for i := range logs {
		log := &logs[i]
		result = append(result, map[string]any{
			"id":           log.ID,
			"bait_species": log.BaitSpecies,
			"display_name": rules.BaitDisplayName(log.BaitSpecies),
			"zone":         log.ZoneID,
			"time":         c.localISO(log.Timestamp),
			"quantity":     log.QuantityEstimate,
			"how_caught":   log.Method,
			"notes":        log.Notes,
			"created_at":   c.localISO(log.CreatedAt),
		})
	}
	return ctx.JSON(http.StatusOK, result)
}

// DeleteBaitLog removes a bait log entry.
func (c *Controller) DeleteBaitLog(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return c.HandleError(ctx, validationError("invalid bait log id %q", ctx.Param("id")), "Invalid id")
	}
	if err := c.DS.DeleteBaitLog(uint(id)); err != nil {
		return c.HandleError(ctx, err, "Bait log not found")
	}
	return ctx.JSON(http.StatusOK, map[string]any{"success": true, "message": "Bait log deleted"})
}

func validQuantityEstimate(estimate string) bool {
	for _, q := range quantityEstimates {
		if estimate == q {
			return true
		}
	}
	return false
}
