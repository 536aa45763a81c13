// Package tips regenerates the per-(species, zone) fishing tip from cached
// scores, learned rig effects and recent catches.
package tips

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bitecast/bitecast-go/internal/datastore"
	"github.com/bitecast/bitecast-go/internal/logging"
	"github.com/bitecast/bitecast-go/internal/rules"
)

const (
	// Tips only exist for pairs worth fishing.
	minTipScore  = 50.0
	bestZoneBar  = 70.0
	baitLookback = 30 * 24 * time.Hour
	minRigUses   = 2
)

var defaultRigs = map[string]string{
	"speckled_trout": "popping_cork",
	"redfish":        "jig",
	"flounder":       "jig",
	"sheepshead":     "bottom_rig",
	"black_drum":     "bottom_rig",
	"croaker":        "bottom_rig",
	"white_trout":    "jig",
}

var defaultBaits = map[string]string{
	"speckled_trout": "live shrimp",
	"redfish":        "live shrimp",
	"flounder":       "mud minnow",
	"sheepshead":     "fiddler crab",
	"black_drum":     "shrimp",
	"croaker":        "shrimp",
	"white_trout":    "shrimp",
}

var zoneStructures = map[string]string{
	"1": "rubble and north pilings",
	"2": "open water",
	"3": "north pilings",
	"4": "green light line",
	"5": "deep north piling line with center pilings",
}

// Generator builds and stores tips.
type Generator struct {
	ds     datastore.Interface
	logger *slog.Logger
}

// New creates a tip generator.
func New(ds datastore.Interface) *Generator {
	return &Generator{ds: ds, logger: logging.ForService("tips")}
}

// UpdateSpeciesZoneTip regenerates the tip for one pair. Pairs scoring under
// the bar lose their tip. Failures are logged and swallowed so tip upkeep
// never fails the caller.
func (g *Generator) UpdateSpeciesZoneTip(ctx context.Context, species, zoneID string) {
	if ctx.Err() != nil {
		return
	}

	text, basedOn, err := g.generate(species, zoneID)
	if err != nil {
		g.logger.Error("tip generation failed",
			"species", species, "zone", zoneID, "error", err)
		return
	}

	if text == "" {
		if err := g.ds.DeleteTip(species, zoneID); err != nil {
			g.logger.Error("tip delete failed",
				"species", species, "zone", zoneID, "error", err)
		}
		return
	}

	tip := datastore.SpeciesZoneTip{
		Species:        species,
		ZoneID:         zoneID,
		TipText:        text,
		BasedOnCatches: basedOn,
		LastUpdated:    time.Now().UTC(),
	}
	if err := g.ds.UpsertTip(&tip); err != nil {
		g.logger.Error("tip upsert failed",
			"species", species, "zone", zoneID, "error", err)
		return
	}
	g.logger.Debug("updated tip", "species", species, "zone", zoneID, "tip", text)
}

// RegenerateAll rebuilds tips for every Tier 1 species across all zones and
// returns how many tips now exist.
func (g *Generator) RegenerateAll(ctx context.Context) int {
	count := 0
	for _, species := range rules.Tier1Species {
		for _, zone := range rules.ZoneIDs {
			zoneID := fmt.Sprintf("%d", zone)
			g.UpdateSpeciesZoneTip(ctx, species, zoneID)
			if _, err := g.ds.GetTip(species, zoneID); err == nil {
				count++
			}
		}
	}
	g.logger.Info("regenerated tips", "count", count)
	return count
}

func (g *Generator) generate(species, zoneID string) (string, int, error) {
	score, err := g.ds.GetBiteScore(species, zoneID)
	if err != nil || score.Score < minTipScore {
		// No row or a score too low: no tip.
		return "", 0, nil
	}

	catches, err := g.ds.RecentCatches(species, zoneID, time.Now().UTC().Add(-baitLookback))
	if err != nil {
		g.logger.Warn("recent catch lookup failed", "error", err)
	}

	rig := g.bestRig(species, zoneID)
	bait := g.bestBait(species, catches)
	tide := g.bestTide(species, zoneID)

	zoneName := "Zone " + zoneID
	var intro string
	if score.Score >= bestZoneBar {
		intro = zoneName + " is your best bet."
	} else {
		intro = "Try " + zoneName + "."
	}

	rigDisplay := strings.ReplaceAll(rig, "_", " ")
	structure := zoneStructures[zoneID]

	switch zoneID {
	case "1":
		return fmt.Sprintf("%s Fish a %s with %s around the %s %s.",
			intro, rigDisplay, bait, structure, tide), len(catches), nil
	case "5":
		return fmt.Sprintf("%s Work a %s with %s along the %s %s.",
			intro, rigDisplay, bait, structure, tide), len(catches), nil
	default:
		return fmt.Sprintf("%s Fish a %s with %s %s.",
			intro, rigDisplay, bait, tide), len(catches), nil
	}
}

// bestRig picks the proven rig for the pair, falling back to the species
// default when nothing has enough uses yet.
func (g *Generator) bestRig(species, zoneID string) string {
	effects, err := g.ds.GetRigEffects(species, zoneID)
	if err != nil {
		g.logger.Warn("rig effect lookup failed", "error", err)
	}

	var best *datastore.RigEffect
	for i := range effects {
		e := &effects[i]
		if e.SuccessCount < minRigUses {
			continue
		}
		// Equal weights break toward the rig used most recently.
		if best == nil || e.Weight > best.Weight ||
			(e.Weight == best.Weight && laterUsed(e.LastUsed, best.LastUsed)) {
			best = e
		}
	}
	if best != nil {
		return best.RigType
	}
	if rig, ok := defaultRigs[species]; ok {
		return rig
	}
	return "jig"
}

func laterUsed(a, b *time.Time) bool {
	return a != nil && (b == nil || a.After(*b))
}

// bestBait picks the most used bait from the last month of catches.
func (g *Generator) bestBait(species string, catches []datastore.Catch) string {
	counts := make(map[string]int)
	for _, c := range catches {
		if c.BaitUsed == "" {
			continue
		}
		counts[strings.ToLower(c.BaitUsed)]++
	}

	best := ""
	bestCount := 0
	for bait, count := range counts {
		if count > bestCount || (count == bestCount && bait < best) {
			best = bait
			bestCount = count
		}
	}
	if best != "" {
		return best
	}
	if bait, ok := defaultBaits[species]; ok {
		return bait
	}
	return "live shrimp"
}

// bestTide turns the learned tide-band weights into a recommendation.
func (g *Generator) bestTide(species, zoneID string) string {
	effects, err := g.ds.GetZoneConditionEffects(species, zoneID)
	if err != nil {
		g.logger.Warn("zone condition lookup failed", "error", err)
	}
	if len(effects) == 0 {
		return "on moving tide"
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, e := range effects {
		sums[e.TideBand] += e.Weight
		counts[e.TideBand]++
	}
	avg := func(band string) float64 {
		if counts[band] == 0 {
			return 0
		}
		return sums[band] / float64(counts[band])
	}

	incoming := avg("incoming")
	outgoing := avg("outgoing")
	slack := avg("slack")

	switch {
	case incoming > outgoing+0.5 && incoming > slack:
		return "on incoming tide"
	case outgoing > incoming+0.5 && outgoing > slack:
		return "on outgoing tide"
	case incoming > slack && outgoing > slack:
		return "on any moving tide"
	default:
		return "on moving tide"
	}
}
