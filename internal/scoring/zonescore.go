package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/bitecast/bitecast-go/internal/rules"
)

// ZoneEnv is the snapshot-derived environment block the zone-path model
// scores against.
type ZoneEnv struct {
	WaterTempF        float64
	HasWaterTemp      bool
	TempChange24hF    float64
	TideStage         string
	CurrentSpeed      float64
	WindSpeedMph      float64
	WindDirection     string
	PressureTrend     string
	TimeOfDay         string
	SolunarPeriod     string
	WaterClarity      string // profile clarity key: clear/slightly_stained/stained/muddy
	Salinity          float64
	HasSalinity       bool
	SalinityChange24h float64
}

// RecentCatch is one catch of the (species, zone) pair inside the recent
// activity window.
type RecentCatch struct {
	HoursAgo float64
	Quantity int
}

// PredatorSighting is one predator log inside the predator window.
type PredatorSighting struct {
	HoursAgo float64
	Predator string
}

// LearnedEffect is a zone-condition effect row loaded for the pair.
type LearnedEffect struct {
	TideBand    string
	ClarityBand string
	WindBand    string
	CurrentBand string
	Weight      float64
}

// ZoneScoreInput bundles everything the zone-path model needs beyond the
// species, zone and date. The caller loads it; the model stays pure.
type ZoneScoreInput struct {
	Env             ZoneEnv
	RecentCatches   []RecentCatch      // within 6 h
	Predators       []PredatorSighting // within 4 h
	LifetimeCatches int                // all-time count for the pair
	LearnedEffects  []LearnedEffect
}

// Confidence describes how much history backs a (species, zone) prediction.
type Confidence struct {
	Level       string // LOW/MEDIUM/HIGH
	SampleCount int
	Weight      float64 // scales the recent activity modifier
	Description string
}

// SampleConfidence derives confidence from the lifetime catch count for a
// (species, zone) pair.
func SampleConfidence(count int) Confidence {
	switch {
	case count < 10:
		return Confidence{
			Level:       "LOW",
			SampleCount: count,
			Weight:      0.3,
			Description: "Limited data - predictions based on seasonal baseline and general behavior",
		}
	case count < 50:
		return Confidence{
			Level:       "MEDIUM",
			SampleCount: count,
			Weight:      0.6,
			Description: "Moderate data - predictions incorporate recent activity patterns",
		}
	default:
		return Confidence{
			Level:       "HIGH",
			SampleCount: count,
			Weight:      1.0,
			Description: "High confidence - predictions based on solid historical data",
		}
	}
}

// OverallConfidence bands the all-zone catch count for a species.
func OverallConfidence(totalCatches int) string {
	switch {
	case totalCatches < 20:
		return "LOW"
	case totalCatches < 100:
		return "MEDIUM"
	default:
		return "HIGH"
	}
}

// ZoneScoreResult is the zone bite score with its additive breakdown.
type ZoneScoreResult struct {
	BiteScore          float64
	SeasonalBaseline   float64
	ConditionMatch     float64
	StructureMatch     float64
	ClaritySalinity    float64
	RecentActivity     float64
	PredatorModifier   float64
	ExternalIndicators float64
	Confidence         Confidence
	Tier               int
}

// ZoneBiteScore computes the additive zone-level bite score for a species.
// Tier 1 species get the full breakdown; tier 2 species score seasonal
// baseline plus simplified condition and structure match only.
func ZoneBiteScore(species string, zoneID int, date time.Time, in ZoneScoreInput) ZoneScoreResult {
	baseline := rules.SeasonalBaseline(species, date)
	confidence := SampleConfidence(in.LifetimeCatches)

	result := ZoneScoreResult{
		SeasonalBaseline: baseline,
		Confidence:       confidence,
		Tier:             rules.SpeciesTier(species),
	}

	if rules.UseFullScoring(species) {
		result.ConditionMatch = conditionMatch(species, in.Env) + learnedEffectDelta(species, in.Env, in.LearnedEffects)
		result.StructureMatch = structureMatch(species, zoneID, in.Env)
		result.ClaritySalinity = claritySalinityModifier(species, in.Env)
		result.RecentActivity = recentActivityModifier(in.RecentCatches, confidence.Weight)
		result.PredatorModifier = predatorModifier(species, in.Predators)
	} else {
		result.ConditionMatch = simpleConditionMatch(species, in.Env)
		result.StructureMatch = structureMatch(species, zoneID, in.Env)
	}

	total := baseline + result.ConditionMatch + result.StructureMatch +
		result.ClaritySalinity + result.RecentActivity + result.PredatorModifier +
		result.ExternalIndicators
	result.BiteScore = clamp(total, 0, 100)
	return result
}

// BaselineLabel labels a seasonal baseline score.
func BaselineLabel(baseline float64) string {
	switch {
	case baseline >= 85:
		return "Excellent"
	case baseline >= 70:
		return "Great"
	case baseline >= 50:
		return "Good"
	case baseline >= 30:
		return "Fair"
	case baseline >= 15:
		return "Poor"
	default:
		return "N/A"
	}
}

func conditionMatch(species string, env ZoneEnv) float64 {
	profile := rules.Profile(species)
	if profile == nil {
		return 0
	}

	score := 0.0

	if env.HasWaterTemp && profile.WaterTemp != nil {
		prefs := profile.WaterTemp
		switch {
		case env.WaterTempF >= prefs.IdealMin && env.WaterTempF <= prefs.IdealMax:
			score += prefs.BonusInIdeal
		case env.WaterTempF < prefs.WorkableMin || env.WaterTempF > prefs.WorkableMax:
			score += prefs.PenaltyOutOfWorkable
		}
		if prefs.PenaltyColdSnap != 0 && env.TempChange24hF < -10 {
			score += prefs.PenaltyColdSnap
		}
	}

	if profile.TideStage != nil {
		score += profile.TideStage[env.TideStage]
	}

	if profile.CurrentSpeed != nil {
		prefs := profile.CurrentSpeed
		if env.CurrentSpeed >= prefs.IdealMin && env.CurrentSpeed <= prefs.IdealMax {
			score += prefs.BonusMoving
		} else if env.CurrentSpeed < 0.2 {
			score += prefs.PenaltySlack
		}
	}

	if profile.Wind != nil {
		switch WindBand(species, env.WindDirection) {
		case "favorable":
			score += profile.Wind.BonusFavorable
		case "unfavorable":
			if env.WindSpeedMph > 15 {
				score += profile.Wind.PenaltyUnfavorableStrong
			}
		}
	}

	if profile.Pressure != nil {
		score += profile.Pressure[env.PressureTrend]
	}

	if profile.TimeOfDay != nil {
		score += profile.TimeOfDay[env.TimeOfDay]
	}

	switch env.SolunarPeriod {
	case "major":
		score += profile.SolunarMajor
	case "minor":
		score += profile.SolunarMinor
	}

	return score
}

func simpleConditionMatch(species string, env ZoneEnv) float64 {
	profile := rules.Profile(species)
	if profile == nil {
		return 0
	}

	score := 0.0
	if profile.TideStage != nil {
		score += profile.TideStage[env.TideStage]
	}
	if profile.TimeOfDay != nil {
		score += profile.TimeOfDay[env.TimeOfDay]
	}
	return score
}

func structureMatch(species string, zoneID int, env ZoneEnv) float64 {
	profile := rules.Profile(species)
	if profile == nil {
		return 0
	}

	score := 0.0
	structure := profile.Structure

	switch zoneID {
	case 1:
		score += structure["pilings"]
		score += structure["rubble"]
	case 2:
		score += structure["open_water"]
	case 3:
		score += structure["pilings"]
		score += 0.5 // most-fished zone
	case 4:
		if (env.TimeOfDay == "evening" || env.TimeOfDay == "night") && profile.Light != nil {
			bonus := profile.Light.GreenLightNightBonus
			if profile.Light.RequiresDecentClarity && env.WaterClarity == "muddy" {
				bonus *= 0.3
			}
			score += bonus
		}
		score += 0.5 // most-fished zone
	case 5:
		score += structure["pilings"] * 1.5
		if profile.DepthPreference == "deep" {
			score += 2.0
		}
	}

	if profile.CurrentStructureBonus != 0 && env.CurrentSpeed > 0.3 &&
		(zoneID == 1 || zoneID == 3 || zoneID == 5) {
		score += profile.CurrentStructureBonus
	}

	return score
}

func claritySalinityModifier(species string, env ZoneEnv) float64 {
	profile := rules.Profile(species)
	if profile == nil {
		return 0
	}

	score := 0.0
	if profile.WaterClarity != nil {
		score += profile.WaterClarity[env.WaterClarity]
	}

	if env.HasSalinity && profile.Salinity != nil {
		prefs := profile.Salinity
		if env.Salinity < prefs.PreferredMin || env.Salinity > prefs.PreferredMax {
			if !prefs.Tolerant {
				score -= 2.0
			}
		}
		if math.Abs(env.SalinityChange24h) > 5 {
			score += prefs.PenaltyRapidChange
		}
	}

	return score
}

func recentActivityModifier(catches []RecentCatch, confidenceWeight float64) float64 {
	score := 0.0
	for _, c := range catches {
		qty := c.Quantity
		if qty <= 0 {
			qty = 1
		}
		score += 4.0 * math.Pow(0.75, c.HoursAgo) * float64(qty)
	}
	return math.Min(10, score*confidenceWeight)
}

func predatorModifier(species string, predators []PredatorSighting) float64 {
	if !rules.IsPreySpecies(species) || len(predators) == 0 {
		return 0
	}

	mostRecent := predators[0]
	for _, p := range predators[1:] {
		if p.HoursAgo < mostRecent.HoursAgo {
			mostRecent = p
		}
	}

	basePenalty := -8.0
	if profile := rules.Profile(mostRecent.Predator); profile != nil && profile.PenaltyToPrey != 0 {
		basePenalty = profile.PenaltyToPrey
	}

	decay := math.Max(0, 1.0-mostRecent.HoursAgo/4.0)
	return basePenalty * decay
}

// learnedEffectDelta adds the weights of zone-condition effect rows whose
// bands match the current conditions. Rows learned under other bands
// contribute nothing.
func learnedEffectDelta(species string, env ZoneEnv, effects []LearnedEffect) float64 {
	if len(effects) == 0 {
		return 0
	}

	tide := TideBand(env.TideStage)
	clarity := ClarityBandFromProfileKey(env.WaterClarity)
	wind := WindBand(species, env.WindDirection)
	current := CurrentBand(env.CurrentSpeed)

	delta := 0.0
	for _, e := range effects {
		if e.TideBand == tide && e.ClarityBand == clarity &&
			e.WindBand == wind && e.CurrentBand == current {
			delta += e.Weight
		}
	}
	return delta
}

// TideBand collapses a tide stage into the three learning bands. High and
// low water behave like slack for the effect tables; unknown stages return
// "unknown" so callers can skip them.
func TideBand(stage string) string {
	switch strings.ToLower(stage) {
	case "incoming", "rising":
		return "incoming"
	case "outgoing", "falling":
		return "outgoing"
	case "slack", "high", "low":
		return "slack"
	default:
		return "unknown"
	}
}

// WindBand classifies a wind direction as favorable, neutral or unfavorable
// for a species based on its behavior profile.
func WindBand(species, direction string) string {
	profile := rules.Profile(species)
	if profile == nil || profile.Wind == nil || direction == "" {
		return "neutral"
	}
	for _, d := range profile.Wind.FavorableDirections {
		if strings.EqualFold(d, direction) {
			return "favorable"
		}
	}
	for _, d := range profile.Wind.UnfavorableDirections {
		if strings.EqualFold(d, direction) {
			return "unfavorable"
		}
	}
	return "neutral"
}

// CurrentBand bands a current speed for the learning tables.
func CurrentBand(speed float64) string {
	abs := math.Abs(speed)
	switch {
	case abs < 0.3:
		return "low"
	case abs < 0.6:
		return "medium"
	default:
		return "high"
	}
}

// ClarityBand maps a display clarity label to its learning band.
func ClarityBand(clarity string) string {
	switch clarity {
	case "Clear":
		return "clean"
	case "Muddy":
		return "muddy"
	default:
		return "stained"
	}
}

// ClarityProfileKey maps a display clarity label to the behavior profile
// clarity key.
func ClarityProfileKey(clarity string) string {
	switch clarity {
	case "Clear":
		return "clear"
	case "Muddy":
		return "muddy"
	default:
		return "slightly_stained"
	}
}

// ClarityBandFromProfileKey maps a profile clarity key to its learning band.
func ClarityBandFromProfileKey(key string) string {
	switch key {
	case "clear":
		return "clean"
	case "muddy":
		return "muddy"
	default:
		return "stained"
	}
}
