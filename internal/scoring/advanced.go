package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bitecast/bitecast-go/internal/rules"
)

var titleCaser = cases.Title(language.AmericanEnglish)

// PredictWaterClarity estimates water clarity from wind, tidal movement and
// rain. Returns "Clear", "Lightly Stained" or "Muddy".
func PredictWaterClarity(windMph, tideRate float64, recentRain bool) string {
	score := 10

	switch {
	case windMph > 15:
		score -= 4
	case windMph > 10:
		score -= 2
	case windMph > 5:
		score -= 1
	}

	switch {
	case math.Abs(tideRate) > 1.5:
		score -= 3
	case math.Abs(tideRate) > 0.8:
		score -= 1
	}

	if recentRain {
		score -= 3
	}

	switch {
	case score >= 7:
		return "Clear"
	case score >= 4:
		return "Lightly Stained"
	default:
		return "Muddy"
	}
}

// ClarityTip returns the actionable tip for a clarity label.
func ClarityTip(clarity string) string {
	switch clarity {
	case "Clear":
		return "Downsize leader and lures."
	case "Lightly Stained":
		return "Balanced visibility - natural colors work well."
	case "Muddy":
		return "Use scent or noise-based baits."
	default:
		return "Normal conditions."
	}
}

// ForecastConfidence bands the mean of the stability inputs (each 0-1)
// into HIGH/MEDIUM/LOW.
func ForecastConfidence(pressureStability, windStability, tidePredictability float64) string {
	avg := (pressureStability + windStability + tidePredictability) / 3
	switch {
	case avg >= 0.7:
		return "HIGH"
	case avg >= 0.4:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// StabilityInputs derives the three stability factors from current
// conditions. Tides are treated as predictable.
func StabilityInputs(pressureTrend string, windMph float64) (pressure, wind, tide float64) {
	pressure = 0.5
	if pressureTrend == "stable" {
		pressure = 0.8
	}
	switch {
	case windMph < 10:
		wind = 0.9
	case windMph < 15:
		wind = 0.6
	default:
		wind = 0.3
	}
	return pressure, wind, 0.8
}

var speciesRigs = map[string]map[string]string{
	"speckled_trout": {
		"shallow": "popping cork at 18-24 inches with live shrimp",
		"mid":     "slow-sink plastic on 1/8oz jighead",
		"deep":    "Carolina rig with live bait",
	},
	"redfish": {
		"shallow": "weedless gold spoon or soft plastic",
		"mid":     "1/4oz jig with paddle tail",
		"deep":    "cut bait on slip sinker rig",
	},
	"flounder": {
		"shallow": "slow drag with live finger mullet",
		"mid":     "Carolina rig with mud minnow",
		"deep":    "knocker rig with live shrimp",
	},
	"sheepshead": {
		"shallow": "sliding sinker rig with fiddler crab",
		"mid":     "drop shot with shrimp near pilings",
		"deep":    "tight-line rig at structure",
	},
	"black_drum": {
		"shallow": "slip float with blue crab",
		"mid":     "bottom rig with peeled shrimp",
		"deep":    "fishfinder rig with cut bait",
	},
}

const fallbackRig = "1/4oz jig with soft plastic"

// RigOfMoment builds the current rig recommendation from clarity, wind,
// tide movement and the top species' depth band.
func RigOfMoment(clarity string, windMph, tideSpeed float64, topSpecies string, depthMinFt, depthMaxFt int) string {
	movingTide := math.Abs(tideSpeed) > 0.5

	avgDepth := float64(depthMinFt+depthMaxFt) / 2
	depthCat := "deep"
	switch {
	case avgDepth <= 3:
		depthCat = "shallow"
	case avgDepth <= 5:
		depthCat = "mid"
	}

	baseRig := fallbackRig
	if rigs, ok := speciesRigs[topSpecies]; ok {
		if rig, ok := rigs[depthCat]; ok {
			baseRig = rig
		}
	}

	clarityMod := ""
	switch {
	case clarity == "Muddy" && !strings.Contains(strings.ToLower(baseRig), "shrimp"):
		clarityMod = " (add scent)"
	case clarity == "Clear":
		clarityMod = " (downsize if needed)"
	}

	action := "Slow-drag"
	if movingTide {
		action = "Work"
	}

	return fmt.Sprintf("%s %s%s.", action, baseRig, clarityMod)
}

// RankedSpecies is a species with its UI tier, for zone ranking.
type RankedSpecies struct {
	Key  string
	Tier string // HOT/DECENT/SLOW/UNLIKELY
}

// BestZonesInput carries the conditions the zone ranking reacts to.
type BestZonesInput struct {
	TopSpecies []RankedSpecies
	TideStage  string
	Clarity    string // display label
	TimeOfDay  string
	WindDir    string
	WindMph    float64
	AirTempF   float64
	WaterTempF float64
}

// BestZonesNow ranks the dock zones for the current conditions and returns
// up to the top three zone IDs.
func BestZonesNow(in BestZonesInput) []int {
	scores := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}

	coldNorthPenalty := rules.HasStrongNorthWindPenalty(in.WindDir, in.WindMph, in.AirTempF, in.WaterTempF)

	// Zones 3 and 4 are the most fished, so they start with higher
	// confidence.
	scores[3] += 2
	scores[4] += 2

	topSpecies := in.TopSpecies
	if len(topSpecies) > 3 {
		topSpecies = topSpecies[:3]
	}
	for _, s := range topSpecies {
		weight := 1
		switch s.Tier {
		case "HOT":
			weight = 3
		case "DECENT":
			weight = 2
		}

		switch s.Key {
		case "sheepshead", "tripletail":
			scores[1] += weight * 2
			scores[3] += weight * 3
			scores[5] += weight * 4
		case "flounder", "black_drum":
			scores[1] += weight * 3
			scores[4] += weight * 2
			scores[5] += weight * 2
		case "speckled_trout":
			scores[2] += weight
			scores[3] += weight * 3
			scores[4] += weight * 2
		case "redfish":
			scores[1] += weight * 3
			scores[2] += weight * 2
			scores[3] += weight * 2
		case "white_trout", "croaker", "jack_crevalle", "mackerel", "shark":
			scores[4] += weight * 2
			scores[5] += weight * 3
		case "mullet":
			scores[1] += weight * 2
			scores[2] += weight * 3
		case "blue_crab":
			scores[1] += weight * 2
			scores[3] += weight * 3
			scores[5] += weight * 2
		default:
			scores[3] += weight * 2
			scores[4] += weight * 2
		}
	}

	switch in.TideStage {
	case "incoming":
		// Incoming water pushes fish shallow.
		scores[1] += 3
		scores[2] += 3
		scores[3]++
	case "outgoing":
		scores[4] += 2
		scores[5] += 2
	}

	switch in.Clarity {
	case "Clear":
		scores[4]++
		scores[5] += 2
	case "Muddy":
		scores[1]++
		scores[3]++
	}

	if in.TimeOfDay == "evening" || in.TimeOfDay == "night" {
		scores[4] += 4 // green light draws bait after dark
	}

	if coldNorthPenalty {
		scores[1] -= 3
		scores[2] -= 4
		scores[4] += 2
		scores[5] += 3
	}

	type zoneScore struct {
		zone  int
		score int
	}
	ranked := make([]zoneScore, 0, len(scores))
	for zone, score := range scores {
		ranked = append(ranked, zoneScore{zone, score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].zone < ranked[j].zone
	})

	out := make([]int, 0, 3)
	for _, zs := range ranked {
		if zs.score <= 0 || len(out) == 3 {
			break
		}
		out = append(out, zs.zone)
	}
	return out
}

// ProTip returns a contextual tip keyed off the bite tier and conditions.
func ProTip(biteTier, clarity, tideStage string, windMph float64, timeOfDay string) string {
	switch {
	case biteTier == "HOT":
		if isMovingStage(tideStage) {
			return "Fish are aggressive - cover water fast and target edges."
		}
		return "Even in slack, active fish will hit. Focus on structure."
	case biteTier == "DECENT":
		switch clarity {
		case "Clear":
			return "Fish can see well - use natural colors and light leaders."
		case "Muddy":
			return "Compensate for low visibility with vibration and scent."
		}
	case windMph > 10:
		return "Choppy water can trigger bites - be patient and vary retrieve."
	case windMph < 4:
		return "Stealth is key - long casts and quiet presentations."
	case timeOfDay == "morning":
		return "First light often brings a feeding window - be ready early."
	case timeOfDay == "evening":
		return "Last light can turn on the bite - stay through dusk."
	}
	return "Stay persistent and adjust based on what you're seeing."
}

// CurrentStrength classifies a tide change rate.
func CurrentStrength(tideRate float64) string {
	abs := math.Abs(tideRate)
	switch {
	case abs < 0.5:
		return "Weak"
	case abs < 1.2:
		return "Moderate"
	default:
		return "Strong"
	}
}

// MoonTideWindow describes the current moon and tide window.
func MoonTideWindow(moonPhaseName, tideStage, timeOfDay string) string {
	lower := strings.ToLower(moonPhaseName)
	moonEffect := "normal tidal range"
	if strings.Contains(lower, "new") || strings.Contains(lower, "full") {
		moonEffect = "strong tidal influence"
	}
	return fmt.Sprintf("%s moon with %s. %s tide during %s.",
		titleCaser.String(moonPhaseName), moonEffect, titleCaser.String(tideStage), timeOfDay)
}
