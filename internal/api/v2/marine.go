package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (c *Controller) initMarineRoutes() {
	c.Group.GET("/marine", c.GetMarine)
}

// GetMarine returns the latest marine safety assessment for the zone.
func (c *Controller) GetMarine(ctx echo.Context) error {
	mc, err := c.DS.LatestMarineCondition()
	if err != nil {
		return c.HandleError(ctx, err, "No marine conditions available")
	}
	return ctx.JSON(http.StatusOK, marineSafetyPayload(&mc))
}
