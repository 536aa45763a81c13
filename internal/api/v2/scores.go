package api

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bitecast/bitecast-go/internal/datastore"
	"github.com/bitecast/bitecast-go/internal/learning"
	"github.com/bitecast/bitecast-go/internal/rules"
)

func (c *Controller) initScoreRoutes() {
	c.Group.GET("/zone-bite-scores", c.GetZoneBiteScores)
	c.Group.GET("/learning-delta", c.GetLearningDelta)
	c.Group.GET("/zone-data-sufficiency", c.GetZoneDataSufficiency)
}

// BiteScoreResponse is one cached (species, zone) score.
type BiteScoreResponse struct {
	Species       string  `json:"species"`
	SpeciesName   string  `json:"species_name"`
	ZoneID        string  `json:"zone_id"`
	BiteScore     float64 `json:"bite_score"`
	Rating        string  `json:"rating"`
	Confidence    string  `json:"confidence"`
	ReasonSummary string  `json:"reason_summary"`
	Tip           string  `json:"tip,omitempty"`
	LastUpdated   string  `json:"last_updated"`
	DataSource    string  `json:"data_source"`

	Breakdown map[string]float64 `json:"breakdown,omitempty"`
}

// GetZoneBiteScores serves the cached zone score table. With both species
// and zone_id it returns a single score, computing it on a cache miss;
// otherwise it returns the filtered list.
func (c *Controller) GetZoneBiteScores(ctx echo.Context) error {
	species := ctx.QueryParam("species")
	zoneID := ctx.QueryParam("zone_id")
	if zoneID != "" {
		normalized, ok := normalizeZoneID(zoneID)
		if !ok {
			return c.HandleError(ctx, validationError("zone_id must be 1-5, got %q", zoneID), "Invalid zone")
		}
		zoneID = normalized
	}

	if species != "" && zoneID != "" {
		return c.singleZoneScore(ctx, species, zoneID)
	}

	return c.cachedJSON(ctx, "/api/v2/zone-bite-scores", func() (any, error) {
		rows, err := c.DS.AllBiteScores()
		if err != nil {
			return nil, err
		}
		result := make([]BiteScoreResponse, 0, len(rows))
		for i := range rows {
			row := &rows[i]
			if species != "" && row.Species != species {
				continue
			}
			if zoneID != "" && row.ZoneID != zoneID {
				continue
			}
			result = append(result, c.biteScoreResponse(row, ""))
		}
		return result, nil
	})
}

func (c *Controller) singleZoneScore(ctx echo.Context, species, zoneID string) error {
	if !slices.Contains(rules.AllSpecies, species) {
		return c.HandleError(ctx, validationError("unknown species %q", species), "Invalid species")
	}

	row, err := c.DS.GetBiteScore(species, zoneID)
	if err != nil {
		if c.Scores == nil {
			return c.HandleError(ctx, err, "Score not available")
		}
		// Cache miss. Compute the score now rather than waiting for the
		// next scheduler pass.
		if err := c.Scores.Recalculate(ctx.Request().Context(), species, zoneID, true); err != nil {
			return c.HandleError(ctx, err, "Failed to compute zone score")
		}
		row, err = c.DS.GetBiteScore(species, zoneID)
		if err != nil {
			return c.HandleError(ctx, err, "Score not available")
		}
	}

	tip := ""
	if t, err := c.DS.GetTip(species, zoneID); err == nil {
		tip = t.TipText
	}
	return ctx.JSON(http.StatusOK, c.biteScoreResponse(&row, tip))
}

func (c *Controller) biteScoreResponse(row *datastore.CachedBiteScore, tip string) BiteScoreResponse {
	var breakdown map[string]float64
	if row.Breakdown != "" {
		if err := json.Unmarshal([]byte(row.Breakdown), &breakdown); err != nil {
			c.logger.Warn("malformed score breakdown",
				"species", row.Species, "zone", row.ZoneID, "error", err)
		}
	}
	return BiteScoreResponse{
		Species:       row.Species,
		SpeciesName:   rules.DisplayName(row.Species),
		ZoneID:        row.ZoneID,
		BiteScore:     round1(row.Score),
		Rating:        row.Rating,
		Confidence:    row.Confidence,
		ReasonSummary: row.ReasonSummary,
		Tip:           tip,
		LastUpdated:   c.localISO(row.LastUpdated),
		DataSource:    "cached",
		Breakdown:     breakdown,
	}
}

// GetLearningDelta exposes the learned adjustment for a (species, zone,
// tide stage, time block) bucket. Tide stage and time block default to
// current conditions when omitted.
func (c *Controller) GetLearningDelta(ctx echo.Context) error {
	if c.Learner == nil {
		return c.HandleError(ctx, notFoundError("learning service not configured"), "Learning data unavailable")
	}

	species := ctx.QueryParam("species")
	zoneID := ctx.QueryParam("zone_id")
	if species == "" || zoneID == "" {
		return c.HandleError(ctx, validationError("species and zone_id are required"), "Missing parameters")
	}
	normalized, ok := normalizeZoneID(zoneID)
	if !ok {
		return c.HandleError(ctx, validationError("zone_id must be 1-5, got %q", zoneID), "Invalid zone")
	}
	zoneID = normalized

	now := time.Now().UTC()
	tideStage := ctx.QueryParam("tide_stage")
	if tideStage == "" {
		tideStage = "unknown"
		if c.Tides != nil {
			if state, err := c.Tides.StateAt(now); err == nil {
				tideStage = state.Stage
			}
		}
	}
	timeBlock := ctx.QueryParam("time_block")
	if timeBlock == "" {
		timeBlock = learning.TimeBlock(now.In(c.location))
	}

	delta, err := c.Learner.DeltaForPair(species, zoneID, tideStage, timeBlock)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load learning delta")
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"species":    species,
		"zone_id":    zoneID,
		"tide_stage": tideStage,
		"time_block": timeBlock,
		"delta":      delta,
	})
}

// GetZoneDataSufficiency reports how much catch history backs a zone's
// learned adjustments.
func (c *Controller) GetZoneDataSufficiency(ctx echo.Context) error {
	if c.Learner == nil {
		return c.HandleError(ctx, notFoundError("learning service not configured"), "Learning data unavailable")
	}

	zoneID := ctx.QueryParam("zone")
	if zoneID == "" {
		zoneID = ctx.QueryParam("zone_id")
	}
	normalized, ok := normalizeZoneID(zoneID)
	if !ok {
		return c.HandleError(ctx, validationError("zone must be 1-5, got %q", zoneID), "Invalid zone")
	}
	zoneID = normalized

	sufficiency, err := c.Learner.ZoneDataSufficiency(zoneID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to assess zone data")
	}
	return ctx.JSON(http.StatusOK, sufficiency)
}

// normalizeZoneID canonicalizes zone input to the bare zone number. Clients
// send both "3" and "Zone 3".
func normalizeZoneID(raw string) (string, bool) {
	z := strings.TrimSpace(raw)
	if len(z) > 4 && strings.EqualFold(z[:4], "zone") {
		z = strings.TrimSpace(z[4:])
	}
	for _, id := range rules.ZoneIDs {
		if z == strconv.Itoa(id) {
			return z, true
		}
	}
	return "", false
}
