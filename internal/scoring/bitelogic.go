// Package scoring holds the bite score math: the window-path weighted
// environmental model, the zone-level breakdown model, bait ratings and the
// text helpers built on top of them. Everything here is pure; persistence
// and caching live in internal/scorecache.
package scoring

import (
	"math"
	"strings"

	"github.com/bitecast/bitecast-go/internal/conf"
)

// Conditions is the environment block the window-path model scores against.
// Wind speed is always mph, temperatures Fahrenheit, moon phase 0-1 with 0
// new and 0.5 full.
type Conditions struct {
	TideStage      string
	TideChangeRate float64
	TimeOfDay      string
	WindSpeedMph   float64
	WindDirection  string
	AirTempF       float64
	WaterTempF     float64
	HasWaterTemp   bool
	PressureTrend  string
	CloudCover     string
	Weather        string
	MoonPhase      float64
}

type envWeights struct {
	tide, wind, temp, pressure, moon, cloud float64
}

var speciesEnvWeights = map[string]envWeights{
	"speckled_trout": {1.0, 1.0, 1.0, 1.0, 0.9, 0.9},
	"redfish":        {0.8, 0.6, 0.7, 0.7, 0.7, 0.7},
	"flounder":       {0.9, 0.8, 0.8, 0.8, 0.7, 0.7},
	"sheepshead":     {0.7, 0.4, 0.6, 0.5, 0.4, 0.3},
	"black_drum":     {0.2, 0.2, 0.4, 0.3, 0.3, 0.2},
	"white_trout":    {0.7, 0.8, 0.9, 0.8, 0.8, 0.6},
	"croaker":        {0.6, 0.6, 0.7, 0.6, 0.5, 0.4},
	"tripletail":     {0.2, 0.1, 0.7, 0.5, 0.3, 0.5},
	"blue_crab":      {1.0, 0.4, 0.8, 0.4, 0.4, 0.2},
	"mullet":         {0.4, 0.6, 0.5, 0.4, 0.3, 0.3},
	"jack_crevalle":  {0.8, 0.9, 0.6, 0.7, 0.6, 0.6},
	"mackerel":       {0.9, 1.0, 0.7, 0.7, 0.7, 0.6},
	"shark":          {0.7, 0.6, 0.5, 0.5, 0.4, 0.3},
	"stingray":       {0.1, 0.1, 0.2, 0.2, 0.2, 0.1},
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// isMovingStage reports whether the tide stage means water is moving.
func isMovingStage(stage string) bool {
	return stage == "incoming" || stage == "outgoing"
}

// TideSubScore scores tide stage and change rate for a species (0-1).
func TideSubScore(species, stage string, changeRate float64) float64 {
	moving := isMovingStage(stage)
	score := 0.5

	switch species {
	case "speckled_trout":
		switch {
		case moving && changeRate > 0.3:
			score = 0.9
		case moving:
			score = 0.7
		case stage == "slack":
			score = 0.3
		}
	case "redfish":
		switch {
		case moving && changeRate > 0.2:
			score = 0.85
		case moving:
			score = 0.65
		case stage == "slack":
			score = 0.4
		}
	case "flounder":
		switch {
		case stage == "outgoing" && changeRate > 0.3:
			score = 0.95
		case stage == "outgoing":
			score = 0.75
		case stage == "incoming" && changeRate > 0.3:
			score = 0.65
		case stage == "slack":
			score = 0.3
		}
	case "sheepshead":
		if stage == "slack" {
			score = 0.70
		} else {
			score = 0.55
		}
	case "black_drum":
		if moving {
			score = 0.65
		} else {
			score = 0.55
		}
	case "white_trout":
		switch {
		case moving && changeRate > 0.25:
			score = 0.8
		case stage == "slack":
			score = 0.4
		}
	case "croaker":
		if moving && changeRate > 0.2 {
			score = 0.75
		} else {
			score = 0.55
		}
	case "tripletail":
		if moving {
			score = 0.6
		}
	case "blue_crab":
		switch {
		case moving && changeRate > 0.2:
			score = 0.9
		case stage == "slack":
			score = 0.4
		}
	case "mullet":
		if moving && changeRate > 0.2 {
			score = 0.7
		}
	case "jack_crevalle", "mackerel":
		switch {
		case moving && changeRate > 0.3:
			score = 0.85
		case stage == "slack":
			score = 0.35
		}
	case "shark":
		switch {
		case moving && changeRate > 0.2:
			score = 0.8
		case stage == "slack":
			score = 0.4
		}
	case "stingray":
		if moving {
			score = 0.65
		}
	}

	return score
}

// WindSubScore scores wind speed (mph) for a species (0-1). Storm text in
// the weather conditions forces the floor for every species.
func WindSubScore(species string, windMph float64, weatherText string) float64 {
	lower := strings.ToLower(weatherText)
	for _, word := range []string{"storm", "thunder", "severe"} {
		if strings.Contains(lower, word) {
			return 0.1
		}
	}

	score := 0.5
	switch species {
	case "speckled_trout":
		switch {
		case windMph < 10:
			score = 0.8
		case windMph < 15:
			score = 0.6
		case windMph < 20:
			score = 0.4
		default:
			score = 0.2
		}
	case "redfish":
		switch {
		case windMph < 15:
			score = 0.75
		case windMph < 20:
			score = 0.6
		case windMph < 25:
			score = 0.45
		default:
			score = 0.3
		}
	case "flounder", "croaker":
		switch {
		case windMph < 12:
			score = 0.75
		case windMph < 20:
			score = 0.55
		default:
			score = 0.3
		}
	case "sheepshead":
		if windMph < 30 {
			score = 0.7
		} else {
			score = 0.3
		}
	case "black_drum":
		switch {
		case windMph < 20:
			score = 0.75
		case windMph < 30:
			score = 0.6
		default:
			score = 0.35
		}
	case "white_trout":
		switch {
		case windMph < 10:
			score = 0.8
		case windMph < 20:
			score = 0.55
		default:
			score = 0.35
		}
	case "tripletail":
		switch {
		case windMph < 10:
			score = 0.85
		case windMph < 20:
			score = 0.45
		default:
			score = 0.25
		}
	case "blue_crab":
		switch {
		case windMph < 15:
			score = 0.75
		case windMph < 25:
			score = 0.55
		default:
			score = 0.35
		}
	case "mullet":
		switch {
		case windMph > 5 && windMph < 15:
			score = 0.8
		case windMph < 5:
			score = 0.6
		case windMph < 25:
			score = 0.45
		default:
			score = 0.3
		}
	case "jack_crevalle":
		switch {
		case windMph > 5 && windMph < 20:
			score = 0.8
		case windMph < 5:
			score = 0.6
		case windMph < 25:
			score = 0.5
		default:
			score = 0.3
		}
	case "mackerel":
		switch {
		case windMph < 15:
			score = 0.8
		case windMph < 20:
			score = 0.5
		default:
			score = 0.25
		}
	case "shark":
		switch {
		case windMph > 5 && windMph < 20:
			score = 0.75
		case windMph < 25:
			score = 0.6
		default:
			score = 0.35
		}
	case "stingray":
		if windMph < 25 {
			score = 0.65
		} else {
			score = 0.4
		}
	}

	return score
}

// TempSubScore scores temperature for a species (0-1). Water temperature
// drives the score when available; air temperature is the fallback.
func TempSubScore(species string, airTempF, waterTempF float64, hasWaterTemp bool) float64 {
	t := airTempF
	if hasWaterTemp {
		t = waterTempF
	}

	score := 0.5
	switch species {
	case "speckled_trout":
		switch {
		case t >= 60 && t <= 80:
			score = 0.9
		case t >= 55 && t <= 90:
			score = 0.65
		default:
			score = 0.3
		}
	case "redfish":
		switch {
		case t >= 55 && t <= 85:
			score = 0.85
		case t >= 50 && t <= 95:
			score = 0.6
		case t < 50:
			score = 0.3
		default:
			score = 0.4
		}
	case "flounder":
		switch {
		case t >= 60 && t <= 80:
			score = 0.85
		case t >= 55 && t <= 90:
			score = 0.65
		default:
			score = 0.35
		}
	case "sheepshead":
		switch {
		case t >= 50:
			score = 0.75
		case t >= 45:
			score = 0.55
		default:
			score = 0.3
		}
	case "black_drum":
		switch {
		case t >= 50 && t <= 75:
			score = 0.85
		case t >= 45 && t <= 85:
			score = 0.65
		default:
			score = 0.4
		}
	case "white_trout":
		switch {
		case t >= 55 && t <= 85:
			score = 0.8
		case t >= 50 && t <= 95:
			score = 0.55
		default:
			score = 0.25
		}
	case "croaker":
		switch {
		case t > 70:
			score = 0.85
		case t >= 60:
			score = 0.65
		default:
			score = 0.3
		}
	case "tripletail":
		switch {
		case t > 75:
			score = 0.9
		case t > 70:
			score = 0.75
		case t >= 65:
			score = 0.5
		default:
			score = 0.2
		}
	case "blue_crab":
		switch {
		case t > 75:
			score = 0.95
		case t > 70:
			score = 0.8
		case t >= 60:
			score = 0.5
		default:
			score = 0.2
		}
	case "mullet":
		switch {
		case t > 75:
			score = 0.9
		case t >= 60:
			score = 0.65
		default:
			score = 0.25
		}
	case "jack_crevalle":
		switch {
		case t > 75:
			score = 0.9
		case t > 70:
			score = 0.75
		case t >= 65:
			score = 0.5
		default:
			score = 0.25
		}
	case "mackerel":
		switch {
		case t >= 65 && t <= 85:
			score = 0.8
		case t >= 60 && t <= 90:
			score = 0.6
		default:
			score = 0.4
		}
	case "shark":
		switch {
		case t > 75:
			score = 0.9
		case t > 70:
			score = 0.75
		case t >= 65:
			score = 0.55
		default:
			score = 0.2
		}
	case "stingray":
		switch {
		case t > 75:
			score = 0.9
		case t >= 65:
			score = 0.6
		default:
			score = 0.2
		}
	}

	return score
}

// PressureSubScore scores the pressure trend for a species (0-1).
func PressureSubScore(species, trend string) float64 {
	score := 0.5
	switch species {
	case "speckled_trout":
		switch trend {
		case "falling":
			score = 0.85
		case "stable":
			score = 0.6
		default:
			score = 0.45
		}
	case "redfish":
		if trend == "falling" || trend == "stable" {
			score = 0.75
		} else {
			score = 0.55
		}
	case "flounder":
		switch trend {
		case "stable":
			score = 0.85
		case "falling":
			score = 0.65
		default:
			score = 0.55
		}
	case "sheepshead", "mullet":
		score = 0.6
	case "black_drum":
		if trend == "stable" || trend == "rising" {
			score = 0.8
		} else {
			score = 0.6
		}
	case "white_trout":
		switch trend {
		case "falling":
			score = 0.9
		case "stable":
			score = 0.7
		default:
			score = 0.5
		}
	case "croaker":
		if trend == "stable" {
			score = 0.75
		} else {
			score = 0.6
		}
	case "tripletail":
		switch trend {
		case "stable":
			score = 0.8
		case "falling":
			score = 0.65
		default:
			score = 0.55
		}
	case "blue_crab":
		if trend == "stable" || trend == "rising" {
			score = 0.75
		} else {
			score = 0.45
		}
	case "jack_crevalle":
		switch trend {
		case "falling":
			score = 0.8
		case "stable":
			score = 0.65
		default:
			score = 0.55
		}
	case "mackerel":
		switch trend {
		case "stable":
			score = 0.75
		case "falling":
			score = 0.65
		default:
			score = 0.6
		}
	case "shark":
		if trend == "falling" {
			score = 0.65
		} else {
			score = 0.6
		}
	case "stingray":
		if trend == "stable" {
			score = 0.7
		} else {
			score = 0.55
		}
	}

	return score
}

// MoonSubScore scores moon phase for a species (0-1). New and full moons
// mean stronger tides, so proximity to either extreme scores higher.
func MoonSubScore(species string, moonPhase float64) float64 {
	distanceToNew := math.Min(math.Abs(moonPhase), math.Abs(moonPhase-1))
	distanceToFull := math.Abs(moonPhase - 0.5)
	distanceToExtreme := math.Min(distanceToNew, distanceToFull)

	moonScore := 1.0 - distanceToExtreme*2.0
	moonScore = clamp(moonScore, 0.5, 1.0)

	switch species {
	case "speckled_trout", "redfish", "flounder":
		return moonScore
	case "shark", "jack_crevalle", "mackerel":
		return 0.5 + (moonScore-0.5)*0.7
	default:
		return 0.5 + (moonScore-0.5)*0.5
	}
}

// CloudSubScore scores cloud cover for a species (0-1).
func CloudSubScore(species, cloudCover string) float64 {
	score := 0.5
	switch species {
	case "speckled_trout":
		switch cloudCover {
		case "overcast":
			score = 0.85
		case "partly_cloudy":
			score = 0.75
		default:
			score = 0.55
		}
	case "redfish", "croaker":
		score = 0.65
	case "flounder", "sheepshead", "black_drum", "blue_crab", "mullet", "shark", "stingray":
		score = 0.6
	case "white_trout":
		if cloudCover == "overcast" || cloudCover == "mostly_cloudy" {
			score = 0.75
		} else {
			score = 0.6
		}
	case "tripletail":
		if cloudCover == "clear" || cloudCover == "partly_cloudy" {
			score = 0.8
		}
	case "jack_crevalle":
		if cloudCover == "overcast" {
			score = 0.7
		} else {
			score = 0.6
		}
	case "mackerel":
		switch cloudCover {
		case "clear":
			score = 0.75
		case "partly_cloudy":
			score = 0.65
		}
	}

	return score
}

// EnvScore computes the weighted-mean environmental suitability (0-1) for a
// species. Species without a weight table weigh every factor at 0.5.
func EnvScore(species string, cond Conditions) float64 {
	w, ok := speciesEnvWeights[species]
	if !ok {
		w = envWeights{0.5, 0.5, 0.5, 0.5, 0.5, 0.5}
	}

	tide := clamp01(TideSubScore(species, cond.TideStage, cond.TideChangeRate))
	wind := clamp01(WindSubScore(species, cond.WindSpeedMph, cond.Weather))
	temp := clamp01(TempSubScore(species, cond.AirTempF, cond.WaterTempF, cond.HasWaterTemp))
	pressure := clamp01(PressureSubScore(species, cond.PressureTrend))
	moon := clamp01(MoonSubScore(species, cond.MoonPhase))
	cloud := clamp01(CloudSubScore(species, cond.CloudCover))

	totalWeight := w.tide + w.wind + w.temp + w.pressure + w.moon + w.cloud
	if totalWeight == 0 {
		return 0.5
	}

	env := (w.tide*tide + w.wind*wind + w.temp*temp +
		w.pressure*pressure + w.moon*moon + w.cloud*cloud) / totalWeight
	return clamp01(env)
}

// WindowScore computes the 0-100 window bite score: seasonality times
// environmental suitability. A running factor under 0.1 means the species
// is not present and scores 0.
func WindowScore(species string, runningFactor float64, cond Conditions) float64 {
	if runningFactor < 0.1 {
		return 0
	}
	return clamp(runningFactor*EnvScore(species, cond)*100, 0, 100)
}

// ApplySafetyPenalty reduces a bite score when marine conditions make
// fishing inadvisable. UNSAFE deducts the full configured penalty; CAUTION
// scales its penalty linearly from full at safety score 50 down to zero
// at 80.
func ApplySafetyPenalty(biteScore float64, safetyLevel string, safetyScore int, penalties conf.MarinePenalties) float64 {
	switch safetyLevel {
	case "UNSAFE":
		return clamp(biteScore-penalties.Unsafe, 0, 100)
	case "CAUTION":
		penalty := penalties.Caution
		if safetyScore >= 50 {
			penalty = penalties.Caution * float64(80-safetyScore) / 30
		}
		return clamp(biteScore-penalty, 0, 100)
	default:
		return biteScore
	}
}

// BiteLabel converts a window bite score to its display label.
func BiteLabel(score float64) string {
	switch {
	case score >= 71:
		return "Hot"
	case score >= 41:
		return "Decent"
	case score >= 21:
		return "Slow"
	default:
		return "Unlikely"
	}
}

// BehaviorTier maps a bite score to the depth behavior tier.
func BehaviorTier(score float64) string {
	switch {
	case score >= 70:
		return "good"
	case score >= 40:
		return "moderate"
	default:
		return "slow"
	}
}

// UITier maps a bite score to the frontend tier.
func UITier(score float64) string {
	switch {
	case score >= 80:
		return "HOT"
	case score >= 50:
		return "DECENT"
	case score >= 20:
		return "SLOW"
	default:
		return "UNLIKELY"
	}
}

// BehaviorTierFromUITier converts a frontend tier to the depth behavior tier.
func BehaviorTierFromUITier(tier string) string {
	switch tier {
	case "HOT":
		return "good"
	case "DECENT":
		return "moderate"
	default:
		return "slow"
	}
}
