package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/bitecast/bitecast-go/internal/rules"
)

// RecentBaitLog is one bait sighting inside the recent-log window.
type RecentBaitLog struct {
	HoursAgo         float64
	QuantityEstimate string // none, few, some, plenty
}

// BaitScoreResult is the bait activity rating with its additive breakdown.
type BaitScoreResult struct {
	Rating           float64
	TierLabel        string
	SeasonalBaseline float64
	ConditionMatch   float64
	RecentLogsBonus  float64
	LightBonus       float64
}

// BaitScore computes the 0-100 bait activity rating for a bait species in
// a zone: seasonal baseline plus condition match, recent sightings and the
// zone 4 light bonus.
func BaitScore(bait string, zoneID int, date time.Time, env ZoneEnv, logs []RecentBaitLog) BaitScoreResult {
	result := BaitScoreResult{
		SeasonalBaseline: rules.SeasonalBaseline(bait, date),
		ConditionMatch:   baitConditionMatch(bait, zoneID, date, env),
		RecentLogsBonus:  recentBaitLogsBonus(logs),
		LightBonus:       baitLightBonus(bait, zoneID, env),
	}

	total := result.SeasonalBaseline + result.ConditionMatch +
		result.RecentLogsBonus + result.LightBonus
	result.Rating = clamp(total, 0, 100)
	result.TierLabel = BaitRatingLabel(result.Rating)
	return result
}

// BaitRatingLabel converts a bait rating to its tier label.
func BaitRatingLabel(score float64) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Great"
	case score >= 40:
		return "Good"
	case score >= 20:
		return "Fair"
	default:
		return "Poor"
	}
}

func baitConditionMatch(bait string, zoneID int, date time.Time, env ZoneEnv) float64 {
	if rules.Profile(bait) == nil {
		return 0
	}

	waterTemp := 70.0
	if env.HasWaterTemp {
		waterTemp = env.WaterTempF
	}

	score := 0.0
	switch bait {
	case "live_shrimp":
		// Green light pulls shrimp hard after dark.
		if zoneID == 4 && (env.TimeOfDay == "evening" || env.TimeOfDay == "night") {
			score += 10.0
		}
		if env.TideStage == "incoming" {
			score += 5.0
		}
		switch {
		case waterTemp < 55:
			score -= 8.0
		case waterTemp >= 65:
			score += 3.0
		}

	case "menhaden":
		structureZone := zoneID == 1 || zoneID == 3 || zoneID == 5
		if structureZone && WindBand(bait, env.WindDirection) == "favorable" {
			score += 8.0
		}
		if structureZone && env.CurrentSpeed > 0.4 {
			score += 5.0
		}

	case "mullet":
		if (zoneID == 1 || zoneID == 2) && env.TideStage == "incoming" {
			score += 8.0
		}
		if waterTemp >= 70 {
			score += 4.0
		}

	case "fiddler_crab":
		month := date.Month()
		if month == time.December || month <= time.March {
			score += 10.0
		} else {
			score -= 5.0
		}
		if zoneID == 1 || zoneID == 3 || zoneID == 5 {
			score += 3.0
		}
	}

	return score
}

func recentBaitLogsBonus(logs []RecentBaitLog) float64 {
	score := 0.0
	for _, log := range logs {
		base := 1.0
		quantity := strings.ToLower(log.QuantityEstimate)
		switch {
		case strings.Contains(quantity, "plenty"):
			base = 4.0
		case strings.Contains(quantity, "some"):
			base = 2.0
		}
		score += base * math.Pow(0.75, log.HoursAgo)
	}
	return math.Min(8, score)
}

func baitLightBonus(bait string, zoneID int, env ZoneEnv) float64 {
	profile := rules.Profile(bait)
	if profile == nil || profile.Light == nil || zoneID != 4 {
		return 0
	}
	if env.TimeOfDay != "evening" && env.TimeOfDay != "night" {
		return 0
	}

	bonus := profile.Light.GreenLightNightBonus
	if profile.Light.RequiresDecentClarity && env.WaterClarity == "muddy" {
		bonus *= 0.3
	}
	return bonus
}
