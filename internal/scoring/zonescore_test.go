package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// May: speckled trout run at full strength.
var maySecond = time.Date(2025, time.May, 2, 12, 0, 0, 0, time.UTC)

func TestSampleConfidence(t *testing.T) {
	t.Parallel()
	low := SampleConfidence(3)
	assert.Equal(t, "LOW", low.Level)
	assert.InDelta(t, 0.3, low.Weight, 1e-9)

	medium := SampleConfidence(25)
	assert.Equal(t, "MEDIUM", medium.Level)
	assert.InDelta(t, 0.6, medium.Weight, 1e-9)

	high := SampleConfidence(80)
	assert.Equal(t, "HIGH", high.Level)
	assert.InDelta(t, 1.0, high.Weight, 1e-9)
}

func TestOverallConfidence(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "LOW", OverallConfidence(19))
	assert.Equal(t, "MEDIUM", OverallConfidence(20))
	assert.Equal(t, "HIGH", OverallConfidence(100))
}

func TestZoneBiteScoreTier1Breakdown(t *testing.T) {
	t.Parallel()
	env := ZoneEnv{
		WaterTempF:    70,
		HasWaterTemp:  true,
		TideStage:     "incoming",
		CurrentSpeed:  0.5,
		WindSpeedMph:  8,
		WindDirection: "SE",
		PressureTrend: "falling",
		TimeOfDay:     "dawn",
		WaterClarity:  "clear",
	}

	result := ZoneBiteScore("speckled_trout", 3, maySecond, ZoneScoreInput{Env: env})

	assert.Equal(t, 1, result.Tier)
	assert.InDelta(t, 90, result.SeasonalBaseline, 1e-9)
	// In-ideal temp +5, incoming +4, moving current +3, favorable wind +3,
	// falling pressure +3, dawn +3.
	assert.InDelta(t, 21, result.ConditionMatch, 1e-9)
	// Zone 3: pilings +3 plus the most-fished bump.
	assert.InDelta(t, 3.5, result.StructureMatch, 1e-9)
	// Clear water +5, no salinity data.
	assert.InDelta(t, 5, result.ClaritySalinity, 1e-9)
	assert.Zero(t, result.RecentActivity)
	assert.Zero(t, result.PredatorModifier)
	assert.Zero(t, result.ExternalIndicators)
	assert.InDelta(t, 100, result.BiteScore, 1e-9) // clamped
}

func TestZoneBiteScoreTier2Simplified(t *testing.T) {
	t.Parallel()
	env := ZoneEnv{
		TideStage:    "incoming",
		TimeOfDay:    "night",
		WaterClarity: "clear",
		CurrentSpeed: 0.5,
		WindSpeedMph: 8,
	}

	result := ZoneBiteScore("white_trout", 4, maySecond, ZoneScoreInput{
		Env: env,
		// These must be ignored for tier 2.
		RecentCatches: []RecentCatch{{HoursAgo: 0.5, Quantity: 3}},
		Predators:     []PredatorSighting{{HoursAgo: 1, Predator: "dolphin"}},
	})

	assert.Equal(t, 2, result.Tier)
	// Night +5 only; white trout has no tide stage map entry for incoming.
	assert.InDelta(t, 5, result.ConditionMatch, 1e-9)
	assert.Zero(t, result.RecentActivity)
	assert.Zero(t, result.PredatorModifier)
	assert.Zero(t, result.ClaritySalinity)
}

func TestZone4LightBonusReducedInMud(t *testing.T) {
	t.Parallel()
	clear := ZoneEnv{TimeOfDay: "night", WaterClarity: "clear"}
	muddy := ZoneEnv{TimeOfDay: "night", WaterClarity: "muddy"}

	// Speckled trout light bonus is 4 and requires decent clarity.
	clearMatch := structureMatch("speckled_trout", 4, clear)
	muddyMatch := structureMatch("speckled_trout", 4, muddy)
	assert.InDelta(t, 4.5, clearMatch, 1e-9)
	assert.InDelta(t, 4*0.3+0.5, muddyMatch, 1e-9)

	// No bonus at midday.
	assert.InDelta(t, 0.5, structureMatch("speckled_trout", 4, ZoneEnv{TimeOfDay: "midday"}), 1e-9)
}

func TestZone5DualPilings(t *testing.T) {
	t.Parallel()
	// Sheepshead pilings 6 × 1.5 in zone 5.
	score := structureMatch("sheepshead", 5, ZoneEnv{})
	assert.InDelta(t, 9, score, 1e-9)

	// Black drum add the deep preference bonus on top.
	score = structureMatch("black_drum", 5, ZoneEnv{})
	assert.InDelta(t, 4*1.5+2, score, 1e-9)
}

func TestCurrentStructureBonus(t *testing.T) {
	t.Parallel()
	still := structureMatch("redfish", 3, ZoneEnv{CurrentSpeed: 0.1})
	moving := structureMatch("redfish", 3, ZoneEnv{CurrentSpeed: 0.5})
	assert.InDelta(t, 3, moving-still, 1e-9)

	// Zone 2 has no structure, so no bonus even with current.
	openStill := structureMatch("redfish", 2, ZoneEnv{CurrentSpeed: 0.1})
	openMoving := structureMatch("redfish", 2, ZoneEnv{CurrentSpeed: 0.5})
	assert.InDelta(t, openStill, openMoving, 1e-9)
}

func TestRecentActivityModifier(t *testing.T) {
	t.Parallel()
	// One fresh catch of 1 at full confidence: 4 points.
	assert.InDelta(t, 4, recentActivityModifier([]RecentCatch{{HoursAgo: 0}}, 1.0), 1e-9)
	// Quantity multiplies, cap holds at 10.
	assert.InDelta(t, 10, recentActivityModifier([]RecentCatch{{HoursAgo: 0, Quantity: 5}}, 1.0), 1e-9)
	// Decay: 2 hours ago is 4 × 0.75².
	assert.InDelta(t, 4*0.5625, recentActivityModifier([]RecentCatch{{HoursAgo: 2, Quantity: 1}}, 1.0), 1e-9)
	// Low confidence scales the whole modifier.
	assert.InDelta(t, 1.2, recentActivityModifier([]RecentCatch{{HoursAgo: 0, Quantity: 1}}, 0.3), 1e-9)
}

func TestPredatorModifier(t *testing.T) {
	t.Parallel()
	// Fresh dolphin: full -8 on prey.
	assert.InDelta(t, -8, predatorModifier("speckled_trout", []PredatorSighting{{HoursAgo: 0, Predator: "dolphin"}}), 1e-9)
	// Two hours in: half decayed.
	assert.InDelta(t, -4, predatorModifier("speckled_trout", []PredatorSighting{{HoursAgo: 2, Predator: "dolphin"}}), 1e-9)
	// Jacks carry their profile penalty instead.
	assert.InDelta(t, -6, predatorModifier("menhaden", []PredatorSighting{{HoursAgo: 0, Predator: "jack_crevalle"}}), 1e-9)
	// Fully decayed after four hours.
	assert.Zero(t, predatorModifier("speckled_trout", []PredatorSighting{{HoursAgo: 5, Predator: "dolphin"}}))
	// Non-prey species ignore predators.
	assert.Zero(t, predatorModifier("redfish", []PredatorSighting{{HoursAgo: 0, Predator: "dolphin"}}))
	// Most recent sighting wins.
	assert.InDelta(t, -8, predatorModifier("mullet", []PredatorSighting{
		{HoursAgo: 3.5, Predator: "dolphin"},
		{HoursAgo: 0, Predator: "shark"},
	}), 1e-9)
}

func TestLearnedEffectDelta(t *testing.T) {
	t.Parallel()
	env := ZoneEnv{
		TideStage:     "incoming",
		WaterClarity:  "clear",
		WindDirection: "SE",
		CurrentSpeed:  0.4,
	}
	effects := []LearnedEffect{
		{TideBand: "incoming", ClarityBand: "clean", WindBand: "favorable", CurrentBand: "medium", Weight: 2.5},
		{TideBand: "outgoing", ClarityBand: "clean", WindBand: "favorable", CurrentBand: "medium", Weight: 3.0},
	}
	// Only the matching row contributes.
	assert.InDelta(t, 2.5, learnedEffectDelta("speckled_trout", env, effects), 1e-9)
}

func TestConditionBands(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "favorable", WindBand("speckled_trout", "se"))
	assert.Equal(t, "unfavorable", WindBand("speckled_trout", "N"))
	assert.Equal(t, "neutral", WindBand("speckled_trout", "W"))
	assert.Equal(t, "neutral", WindBand("stingray", "SE"))

	assert.Equal(t, "low", CurrentBand(0.2))
	assert.Equal(t, "medium", CurrentBand(0.4))
	assert.Equal(t, "high", CurrentBand(-0.9))

	assert.Equal(t, "clean", ClarityBand("Clear"))
	assert.Equal(t, "stained", ClarityBand("Lightly Stained"))
	assert.Equal(t, "muddy", ClarityBand("Muddy"))

	assert.Equal(t, "clear", ClarityProfileKey("Clear"))
	assert.Equal(t, "slightly_stained", ClarityProfileKey("Lightly Stained"))
	assert.Equal(t, "muddy", ClarityProfileKey("Muddy"))
}

func TestBaselineLabel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Excellent", BaselineLabel(90))
	assert.Equal(t, "Great", BaselineLabel(70))
	assert.Equal(t, "Good", BaselineLabel(50))
	assert.Equal(t, "Fair", BaselineLabel(30))
	assert.Equal(t, "Poor", BaselineLabel(15))
	assert.Equal(t, "N/A", BaselineLabel(5))
}

func TestBaitScoreShrimpAtNightUnderLight(t *testing.T) {
	t.Parallel()
	june := time.Date(2025, time.June, 10, 22, 0, 0, 0, time.UTC)
	env := ZoneEnv{
		TimeOfDay:    "night",
		TideStage:    "incoming",
		WaterTempF:   72,
		HasWaterTemp: true,
		WaterClarity: "clear",
	}

	result := BaitScore("live_shrimp", 4, june, env, nil)

	assert.InDelta(t, 90, result.SeasonalBaseline, 1e-9)
	// Zone 4 night +10, incoming +5, warm water +3.
	assert.InDelta(t, 18, result.ConditionMatch, 1e-9)
	// Profile light bonus is 8, clarity fine.
	assert.InDelta(t, 8, result.LightBonus, 1e-9)
	assert.InDelta(t, 100, result.Rating, 1e-9)
	assert.Equal(t, "Excellent", result.TierLabel)
}

func TestBaitScoreColdWaterKillsShrimp(t *testing.T) {
	t.Parallel()
	env := ZoneEnv{TimeOfDay: "midday", WaterTempF: 50, HasWaterTemp: true}
	result := BaitScore("live_shrimp", 2, maySecond, env, nil)
	assert.InDelta(t, -8, result.ConditionMatch, 1e-9)
	assert.Zero(t, result.LightBonus)
}

func TestBaitScoreFiddlersInWinter(t *testing.T) {
	t.Parallel()
	january := time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)
	july := time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC)

	winter := BaitScore("fiddler_crab", 3, january, ZoneEnv{TimeOfDay: "midday"}, nil)
	summer := BaitScore("fiddler_crab", 3, july, ZoneEnv{TimeOfDay: "midday"}, nil)

	// Winter: +10 season, +3 structure zone. Summer: -5 season, +3.
	assert.InDelta(t, 13, winter.ConditionMatch, 1e-9)
	assert.InDelta(t, -2, summer.ConditionMatch, 1e-9)
	assert.Greater(t, winter.Rating, summer.Rating)
}

func TestBaitScoreMenhadenWindAndCurrent(t *testing.T) {
	t.Parallel()
	env := ZoneEnv{WindDirection: "SE", CurrentSpeed: 0.5, TimeOfDay: "morning"}
	structure := BaitScore("menhaden", 3, maySecond, env, nil)
	open := BaitScore("menhaden", 2, maySecond, env, nil)
	assert.InDelta(t, 13, structure.ConditionMatch, 1e-9)
	assert.Zero(t, open.ConditionMatch)
}

func TestRecentBaitLogsBonus(t *testing.T) {
	t.Parallel()
	logs := []RecentBaitLog{
		{HoursAgo: 0, QuantityEstimate: "plenty"},
		{HoursAgo: 1, QuantityEstimate: "some"},
		{HoursAgo: 2, QuantityEstimate: "few"},
	}
	bonus := recentBaitLogsBonus(logs)
	require.Greater(t, bonus, 0.0)
	assert.InDelta(t, 4+2*0.75+1*0.5625, bonus, 1e-9)

	// Cap at 8.
	many := make([]RecentBaitLog, 5)
	for i := range many {
		many[i] = RecentBaitLog{QuantityEstimate: "plenty"}
	}
	assert.InDelta(t, 8, recentBaitLogsBonus(many), 1e-9)
}
