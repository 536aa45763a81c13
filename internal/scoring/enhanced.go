package scoring

// Adjustments are per-species overrides layered on top of the base model,
// drawn from observed on-the-dock patterns.
type Adjustments struct {
	ScoreAdjustment float64
	ConfidenceBoost float64
	MinTier         string // UI tier floor, "" for none
	MaxTier         string // UI tier cap, "" for none
	Explanation     string
}

// EnhancedRules returns the trip-rule adjustments for a species in a zone
// under the given conditions. Species without trip rules get a zero value.
func EnhancedRules(species string, zoneID int, tideStage, cloudCover, timeOfDay string, hour int) Adjustments {
	switch species {
	case "redfish":
		return redfishRules(zoneID, tideStage, cloudCover == "overcast", timeOfDay)
	case "speckled_trout":
		return speckledTroutRules(zoneID, tideStage)
	case "white_trout":
		return whiteTroutRules(zoneID, tideStage, hour)
	case "croaker":
		return croakerRules(zoneID, tideStage)
	default:
		return Adjustments{}
	}
}

func redfishRules(zoneID int, tideStage string, isOvercast bool, timeOfDay string) Adjustments {
	var adj Adjustments

	if tideStage == "low" && isOvercast && timeOfDay == "midday" && (zoneID == 2 || zoneID == 3) {
		adj.MinTier = "DECENT"
		adj.ConfidenceBoost = 0.15
		adj.Explanation = "Low tide overcast midday pattern - redfish often active"
	}

	if tideStage == "incoming" && (zoneID == 2 || zoneID == 3) {
		adj.ScoreAdjustment = 15.0
		adj.MaxTier = "HOT"
		adj.Explanation = "Rising tide in prime zones - redfish move shallow"
	}

	if zoneID == 1 || zoneID == 4 {
		adj.ConfidenceBoost = -0.05
		adj.Explanation = "Adjacent zone - using similar patterns with lower confidence"
	}

	return adj
}

func speckledTroutRules(zoneID int, tideStage string) Adjustments {
	var adj Adjustments

	if tideStage == "low" && zoneID == 3 {
		adj.MaxTier = "SLOW"
		adj.Explanation = "Low tide - specks avoid shallow Zone 3"
	}

	if tideStage == "incoming" && zoneID == 3 {
		adj.MinTier = "DECENT"
		adj.ScoreAdjustment = 15.0
		adj.MaxTier = "HOT"
		adj.ConfidenceBoost = 0.25
		adj.Explanation = "Rising tide Zone 3 - prime speck conditions"
	}

	return adj
}

func whiteTroutRules(zoneID int, tideStage string, hour int) Adjustments {
	var adj Adjustments

	if tideStage == "low" {
		adj.MaxTier = "SLOW"
		adj.Explanation = "Low tide - white trout less active"
	}

	sunsetWindow := hour >= 17 && hour <= 18
	if tideStage == "incoming" && sunsetWindow && zoneID == 3 {
		adj.MinTier = "DECENT"
		adj.ScoreAdjustment = 15.0
		adj.MaxTier = "HOT"
		adj.ConfidenceBoost = 0.3
		adj.Explanation = "Rising tide + sunset in Zone 3 - peak white trout time"
	}

	return adj
}

func croakerRules(zoneID int, tideStage string) Adjustments {
	var adj Adjustments
	midZone := zoneID == 3 || zoneID == 4

	if tideStage == "low" && midZone {
		adj.MaxTier = "SLOW"
		adj.Explanation = "Low tide - croakers less active in mid zones"
	}

	if tideStage == "incoming" && midZone {
		adj.MinTier = "DECENT"
		adj.ScoreAdjustment = 15.0
		adj.MaxTier = "HOT"
		adj.ConfidenceBoost = 0.25
		adj.Explanation = "Rising tide in Zones 3-4 - croakers feeding actively"
	}

	return adj
}

var tierMinScores = map[string]float64{
	"HOT": 80, "DECENT": 50, "SLOW": 20, "UNLIKELY": 0,
}

var tierMaxScores = map[string]float64{
	"HOT": 100, "DECENT": 79, "SLOW": 49, "UNLIKELY": 19,
}

// ApplyTierConstraints clamps a score into the [minTier, maxTier] band.
// Empty tiers leave that side unconstrained.
func ApplyTierConstraints(score float64, minTier, maxTier string) float64 {
	if min, ok := tierMinScores[minTier]; ok && score < min {
		score = min
	}
	if max, ok := tierMaxScores[maxTier]; ok && score > max {
		score = max
	}
	return clamp(score, 0, 100)
}
