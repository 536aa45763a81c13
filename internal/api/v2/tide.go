package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bitecast/bitecast-go/internal/tide"
)

func (c *Controller) initTideRoutes() {
	c.Group.GET("/tide", c.GetTide)
}

// tideCurveWindow bounds the recent/near-future curve returned with the
// tide state.
const tideCurveWindow = 3 * time.Hour

// GetTide returns the current tide stage, height and change rate, the
// next high and low events, and the prediction curve around now.
func (c *Controller) GetTide(ctx echo.Context) error {
	now := time.Now().UTC()

	if c.Tides == nil {
		return c.HandleError(ctx, notFoundError("tide service not configured"), "Tide data unavailable")
	}
	state, err := c.Tides.CurrentState(now)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to derive tide state")
	}

	payload := c.tideStatePayload(&state)

	rows, err := c.DS.GetTideAround(now, tideCurveWindow)
	if err == nil {
		curve := make([]map[string]any, 0, len(rows))
		for i := range rows {
			curve = append(curve, map[string]any{
				"time":   c.localISO(rows[i].Timestamp),
				"height": rows[i].Height,
			})
		}
		payload["curve"] = curve
	}

	return ctx.JSON(http.StatusOK, payload)
}

// tideStatePayload renders a tide state for API responses.
func (c *Controller) tideStatePayload(state *tide.CurrentState) map[string]any {
	payload := map[string]any{
		"state":       state.Stage,
		"change_rate": state.ChangeRate,
		"next_high":   nil,
		"next_low":    nil,
	}
	if state.HasHeight {
		payload["current_height"] = state.Height
	} else {
		payload["current_height"] = nil
	}
	if state.NextHigh != nil {
		payload["next_high"] = map[string]any{
			"time":   c.localISO(state.NextHigh.Time),
			"height": state.NextHigh.Height,
		}
	}
	if state.NextLow != nil {
		payload["next_low"] = map[string]any{
			"time":   c.localISO(state.NextLow.Time),
			"height": state.NextLow.Height,
		}
	}
	return payload
}
