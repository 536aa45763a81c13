package api

import (
	"net/http"
	"slices"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bitecast/bitecast-go/internal/datastore"
	"github.com/bitecast/bitecast-go/internal/rules"
)

func (c *Controller) initSummaryRoutes() {
	c.Group.GET("/weekly-summary", c.GetWeeklySummary)
}

// summaryLookback is the weekly summary window.
const summaryLookback = 7 * 24 * time.Hour

// GetWeeklySummary aggregates the past week: what was caught, where, on
// what, and which conditions the forecast favored.
func (c *Controller) GetWeeklySummary(ctx echo.Context) error {
	now := time.Now().UTC()
	cutoff := now.Add(-summaryLookback)

	catches, err := c.DS.RecentCatches("", "", cutoff)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load catches")
	}
	windows, err := c.DS.GetForecastWindows(cutoff, now)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load forecast windows")
	}

	result := map[string]any{
		"week_start":         c.localISO(cutoff),
		"week_end":           c.localISO(now),
		"total_catches":      0,
		"best_species":       nil,
		"best_zones":         []map[string]any{},
		"best_clarity":       nil,
		"best_hours":         []map[string]any{},
		"best_tide_stage":    nil,
		"best_bait":          nil,
		"user_catch_summary": map[string]any{},
	}

	result["best_hours"] = bestHoursFromWindows(windows)
	if clarity := clarityFromWindows(windows); clarity != "" {
		result["best_clarity"] = clarity
	}

	if len(catches) == 0 {
		result["message"] = "No catches logged this week"
		return ctx.JSON(http.StatusOK, result)
	}

	speciesCounts := map[string]int{}
	zoneCounts := map[string]int{}
	baitCounts := map[string]int{}
	tideCounts := map[string]int{}
	totalFish := 0

	for i := range catches {
		catch := &catches[i]
		qty := catch.Quantity
		if qty < 1 {
			qty = 1
		}
		totalFish += qty
		speciesCounts[rules.DisplayName(catch.Species)] += qty
		if catch.ZoneID != "" {
			zoneCounts[catch.ZoneID] += qty
		}
		if catch.BaitUsed != "" {
			baitCounts[catch.BaitUsed]++
		}
		if catch.TideStage != "" {
			tideCounts[catch.TideStage] += qty
		}
	}

	result["total_catches"] = totalFish

	bySpecies := sortedCountList(speciesCounts, "species", "count", 0)
	result["user_catch_summary"] = map[string]any{"by_species": bySpecies}
	if len(bySpecies) > 0 {
		result["best_species"] = map[string]any{
			"species": bySpecies[0]["species"],
			"count":   bySpecies[0]["count"],
		}
	}
	result["best_zones"] = sortedCountList(zoneCounts, "zone", "catches", 3)
	if best := sortedCountList(baitCounts, "bait", "catches", 1); len(best) > 0 {
		result["best_bait"] = best[0]
	}
	if best := sortedCountList(tideCounts, "tide", "catches", 1); len(best) > 0 {
		result["best_tide_stage"] = best[0]
	}

	return ctx.JSON(http.StatusOK, result)
}

// bestHoursFromWindows averages window scores per time of day, best first.
func bestHoursFromWindows(windows []datastore.ForecastWindow) []map[string]any {
	scores := map[string][]float64{}
	for i := range windows {
		w := &windows[i]
		if w.TimeOfDay == "" || w.OverallScore == 0 {
			continue
		}
		scores[w.TimeOfDay] = append(scores[w.TimeOfDay], w.OverallScore)
	}

	entries := make([]map[string]any, 0, len(scores))
	for tod, list := range scores {
		sum := 0.0
		for _, s := range list {
			sum += s
		}
		entries = append(entries, map[string]any{
			"time_of_day": tod,
			"avg_score":   round1(sum / float64(len(list))),
		})
	}
	slices.SortFunc(entries, func(a, b map[string]any) int {
		av, bv := a["avg_score"].(float64), b["avg_score"].(float64)
		switch {
		case bv > av:
			return 1
		case bv < av:
			return -1
		default:
			return 0
		}
	})
	return entries
}

// clarityFromWindows infers the week's dominant water clarity from wind,
// the same proxy the forecast uses when no observation exists.
func clarityFromWindows(windows []datastore.ForecastWindow) string {
	counts := map[string]int{}
	for i := range windows {
		wind := windows[i].WindSpeed
		switch {
		case wind < 8:
			counts["Clear"]++
		case wind < 15:
			counts["Lightly Stained"]++
		default:
			counts["Muddy"]++
		}
	}
	best, bestCount := "", 0
	for clarity, n := range counts {
		if n > bestCount {
			best, bestCount = clarity, n
		}
	}
	return best
}

// sortedCountList converts a count map into a sorted slice of small maps,
// optionally truncated.
func sortedCountList(counts map[string]int, keyName, countName string, limit int) []map[string]any {
	entries := make([]map[string]any, 0, len(counts))
	for k, v := range counts {
		entries = append(entries, map[string]any{keyName: k, countName: v})
	}
	slices.SortFunc(entries, func(a, b map[string]any) int {
		return b[countName].(int) - a[countName].(int)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
