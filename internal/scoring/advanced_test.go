package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredictWaterClarity(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Clear", PredictWaterClarity(3, 0.2, false))
	assert.Equal(t, "Clear", PredictWaterClarity(12, 1.0, false))
	assert.Equal(t, "Lightly Stained", PredictWaterClarity(8, 1.6, false))
	assert.Equal(t, "Muddy", PredictWaterClarity(16, 0.2, true))
	// Tide rate direction does not matter, only magnitude.
	assert.Equal(t, "Lightly Stained", PredictWaterClarity(8, -1.6, false))
}

func TestClarityTip(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Downsize leader and lures.", ClarityTip("Clear"))
	assert.Equal(t, "Use scent or noise-based baits.", ClarityTip("Muddy"))
	assert.Equal(t, "Normal conditions.", ClarityTip("something else"))
}

func TestForecastConfidence(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "HIGH", ForecastConfidence(0.8, 0.9, 0.8))
	assert.Equal(t, "MEDIUM", ForecastConfidence(0.5, 0.6, 0.8))
	assert.Equal(t, "LOW", ForecastConfidence(0.5, 0.3, 0.2))
}

func TestStabilityInputs(t *testing.T) {
	t.Parallel()
	pressure, wind, tide := StabilityInputs("stable", 5)
	assert.InDelta(t, 0.8, pressure, 1e-9)
	assert.InDelta(t, 0.9, wind, 1e-9)
	assert.InDelta(t, 0.8, tide, 1e-9)

	pressure, wind, _ = StabilityInputs("falling", 20)
	assert.InDelta(t, 0.5, pressure, 1e-9)
	assert.InDelta(t, 0.3, wind, 1e-9)
}

func TestRigOfMoment(t *testing.T) {
	t.Parallel()
	// Moving tide, shallow trout rig, clear water.
	rig := RigOfMoment("Clear", 5, 0.8, "speckled_trout", 1, 3)
	assert.Equal(t, "Work popping cork at 18-24 inches with live shrimp (downsize if needed).", rig)

	// Slack tide, muddy water, a rig without shrimp gets the scent note.
	rig = RigOfMoment("Muddy", 5, 0.2, "redfish", 1, 3)
	assert.Equal(t, "Slow-drag weedless gold spoon or soft plastic (add scent).", rig)

	// Shrimp rigs skip the scent note in muddy water.
	rig = RigOfMoment("Muddy", 5, 0.2, "speckled_trout", 1, 3)
	assert.Equal(t, "Slow-drag popping cork at 18-24 inches with live shrimp.", rig)

	// Unknown species fall back to the generic jig.
	rig = RigOfMoment("Lightly Stained", 5, 0.2, "stingray", 4, 6)
	assert.Equal(t, "Slow-drag 1/4oz jig with soft plastic.", rig)

	// Deep band picks the deep rig.
	rig = RigOfMoment("Lightly Stained", 5, 0.8, "black_drum", 5, 7)
	assert.Equal(t, "Work fishfinder rig with cut bait.", rig)
}

func TestBestZonesNowEveningLight(t *testing.T) {
	t.Parallel()
	zones := BestZonesNow(BestZonesInput{
		TideStage: "incoming",
		TimeOfDay: "evening",
	})
	// Green light makes zone 4 the play; the incoming shallows tie and the
	// lower zone number wins.
	assert.Equal(t, []int{4, 1, 2}, zones)
}

func TestBestZonesNowColdNorthWind(t *testing.T) {
	t.Parallel()
	zones := BestZonesNow(BestZonesInput{
		TimeOfDay:  "midday",
		WindDir:    "N",
		WindMph:    15,
		AirTempF:   50,
		WaterTempF: 55,
	})
	// Shallow zones drop out, deep zones pick up.
	assert.Equal(t, []int{4, 5, 3}, zones)
}

func TestBestZonesNowHotSheepshead(t *testing.T) {
	t.Parallel()
	zones := BestZonesNow(BestZonesInput{
		TopSpecies: []RankedSpecies{{Key: "sheepshead", Tier: "HOT"}},
		TimeOfDay:  "midday",
	})
	assert.Equal(t, []int{5, 3, 1}, zones)
}

func TestProTip(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Fish are aggressive - cover water fast and target edges.",
		ProTip("HOT", "Clear", "incoming", 5, "midday"))
	assert.Equal(t, "Even in slack, active fish will hit. Focus on structure.",
		ProTip("HOT", "Clear", "slack", 5, "midday"))
	assert.Equal(t, "Fish can see well - use natural colors and light leaders.",
		ProTip("DECENT", "Clear", "incoming", 5, "midday"))
	assert.Equal(t, "Compensate for low visibility with vibration and scent.",
		ProTip("DECENT", "Muddy", "incoming", 5, "midday"))
	assert.Equal(t, "Choppy water can trigger bites - be patient and vary retrieve.",
		ProTip("SLOW", "Clear", "incoming", 12, "midday"))
	assert.Equal(t, "Stealth is key - long casts and quiet presentations.",
		ProTip("SLOW", "Clear", "incoming", 2, "midday"))
	assert.Equal(t, "First light often brings a feeding window - be ready early.",
		ProTip("SLOW", "Clear", "incoming", 5, "morning"))
	assert.Equal(t, "Last light can turn on the bite - stay through dusk.",
		ProTip("SLOW", "Clear", "incoming", 5, "evening"))
	assert.Equal(t, "Stay persistent and adjust based on what you're seeing.",
		ProTip("SLOW", "Clear", "incoming", 5, "midday"))
}

func TestCurrentStrength(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Weak", CurrentStrength(0.4))
	assert.Equal(t, "Moderate", CurrentStrength(0.5))
	assert.Equal(t, "Strong", CurrentStrength(1.2))
	assert.Equal(t, "Strong", CurrentStrength(-1.5))
}

func TestMoonTideWindow(t *testing.T) {
	t.Parallel()
	assert.Equal(t,
		"Full Moon moon with strong tidal influence. Incoming tide during morning.",
		MoonTideWindow("full moon", "incoming", "morning"))
	assert.Equal(t,
		"First Quarter moon with normal tidal range. Slack tide during midday.",
		MoonTideWindow("first quarter", "slack", "midday"))
}

func TestConditionsSummary(t *testing.T) {
	t.Parallel()
	// Everything lined up.
	in := SummaryInput{
		TideScore: 0.8, WindScore: 0.8, TempScore: 0.8,
		BiteScore: 75, TideStage: "incoming",
		WindMph: 8, WindDir: "SE", AirTempF: 75, WaterTempF: 72,
	}
	assert.Equal(t,
		"Strong moving tide, good surface chop, and ideal temperatures. Fish are feeding and pushing shallow.",
		ConditionsSummary(in))

	// Strong tide against a cold north wind reads as mixed conditions.
	in = SummaryInput{
		TideScore: 0.8, WindScore: 0.3, TempScore: 0.3,
		BiteScore: 75, TideStage: "incoming",
		WindMph: 15, WindDir: "N", AirTempF: 50, WaterTempF: 55,
	}
	assert.Equal(t,
		"Strong moving tide, but cold north wind and cold temperatures create mixed conditions. "+
			"Cold north wind is pushing fish off the shallow flat. Expect them to hold deeper along edges; shallow bite may be slow.",
		ConditionsSummary(in))

	// Moderate bite, gentle north wind without the cold.
	in = SummaryInput{
		TideScore: 0.5, WindScore: 0.5, TempScore: 0.5,
		BiteScore: 50, TideStage: "outgoing",
		WindMph: 6, WindDir: "NE", AirTempF: 72, WaterTempF: 70,
	}
	assert.Equal(t,
		"Steady tide flow, north wind, and workable temperatures. Fish are behaving normally but favoring deeper edges.",
		ConditionsSummary(in))

	// Slow day.
	in = SummaryInput{
		TideScore: 0.2, WindScore: 0.2, TempScore: 0.2,
		BiteScore: 25, TideStage: "slack",
		WindMph: 2, WindDir: "SE", AirTempF: 92, WaterTempF: 88,
	}
	assert.Equal(t,
		"Weak or slack tide, calm water, and a tough temperature range. Fish are cautious and slow to bite.",
		ConditionsSummary(in))
}

func TestEnhancedRulesRedfish(t *testing.T) {
	t.Parallel()
	// Rising tide into the prime zones.
	adj := EnhancedRules("redfish", 2, "incoming", "clear", "morning", 9)
	assert.InDelta(t, 15.0, adj.ScoreAdjustment, 1e-9)
	assert.Equal(t, "HOT", adj.MaxTier)

	// Low overcast midday pattern.
	adj = EnhancedRules("redfish", 3, "low", "overcast", "midday", 12)
	assert.Equal(t, "DECENT", adj.MinTier)
	assert.InDelta(t, 0.15, adj.ConfidenceBoost, 1e-9)

	// Adjacent zones lose a little confidence.
	adj = EnhancedRules("redfish", 1, "high", "clear", "morning", 9)
	assert.InDelta(t, -0.05, adj.ConfidenceBoost, 1e-9)
}

func TestEnhancedRulesTroutAndCroaker(t *testing.T) {
	t.Parallel()
	adj := EnhancedRules("speckled_trout", 3, "low", "", "midday", 12)
	assert.Equal(t, "SLOW", adj.MaxTier)

	adj = EnhancedRules("speckled_trout", 3, "incoming", "", "morning", 9)
	assert.Equal(t, "DECENT", adj.MinTier)
	assert.Equal(t, "HOT", adj.MaxTier)
	assert.InDelta(t, 0.25, adj.ConfidenceBoost, 1e-9)

	// White trout sunset window in zone 3.
	adj = EnhancedRules("white_trout", 3, "incoming", "", "evening", 17)
	assert.Equal(t, "DECENT", adj.MinTier)
	assert.InDelta(t, 0.3, adj.ConfidenceBoost, 1e-9)
	// Same conditions at noon: no boost.
	adj = EnhancedRules("white_trout", 3, "incoming", "", "midday", 12)
	assert.Zero(t, adj.ConfidenceBoost)

	adj = EnhancedRules("croaker", 4, "low", "", "midday", 12)
	assert.Equal(t, "SLOW", adj.MaxTier)

	// Species without trip rules are untouched.
	assert.Equal(t, Adjustments{}, EnhancedRules("mullet", 3, "incoming", "", "morning", 9))
}

func TestApplyTierConstraints(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 50, ApplyTierConstraints(30, "DECENT", ""), 1e-9)
	assert.InDelta(t, 79, ApplyTierConstraints(95, "", "DECENT"), 1e-9)
	assert.InDelta(t, 60, ApplyTierConstraints(60, "", ""), 1e-9)
	assert.InDelta(t, 100, ApplyTierConstraints(120, "", ""), 1e-9)
	assert.InDelta(t, 49, ApplyTierConstraints(75, "", "SLOW"), 1e-9)
}
