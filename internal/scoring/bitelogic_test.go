package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitecast/bitecast-go/internal/conf"
)

func TestTideSubScore(t *testing.T) {
	t.Parallel()

	// Trout want fast moving water.
	assert.InDelta(t, 0.9, TideSubScore("speckled_trout", "incoming", 0.5), 1e-9)
	assert.InDelta(t, 0.7, TideSubScore("speckled_trout", "outgoing", 0.1), 1e-9)
	assert.InDelta(t, 0.3, TideSubScore("speckled_trout", "slack", 0), 1e-9)

	// Flounder strongly prefer the outgoing side.
	assert.InDelta(t, 0.95, TideSubScore("flounder", "outgoing", 0.5), 1e-9)
	assert.InDelta(t, 0.65, TideSubScore("flounder", "incoming", 0.5), 1e-9)

	// Sheepshead are happiest around slack structure.
	assert.InDelta(t, 0.70, TideSubScore("sheepshead", "slack", 0), 1e-9)

	// Unknown species fall back to the neutral baseline.
	assert.InDelta(t, 0.5, TideSubScore("unknown", "incoming", 0.9), 1e-9)
}

func TestWindSubScoreStormFloor(t *testing.T) {
	t.Parallel()
	for _, text := range []string{"Thunderstorms likely", "Severe weather", "Tropical Storm"} {
		assert.InDelta(t, 0.1, WindSubScore("redfish", 5, text), 1e-9, text)
	}
}

func TestWindSubScoreBands(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 0.8, WindSubScore("speckled_trout", 8, ""), 1e-9)
	assert.InDelta(t, 0.2, WindSubScore("speckled_trout", 25, ""), 1e-9)
	// Mullet like a little chop better than dead calm.
	assert.InDelta(t, 0.8, WindSubScore("mullet", 10, ""), 1e-9)
	assert.InDelta(t, 0.6, WindSubScore("mullet", 3, ""), 1e-9)
}

func TestTempSubScorePrefersWaterTemp(t *testing.T) {
	t.Parallel()
	// Hot air but ideal water: water temperature wins.
	assert.InDelta(t, 0.9, TempSubScore("speckled_trout", 95, 72, true), 1e-9)
	// No water temp: air temperature drives the band.
	assert.InDelta(t, 0.65, TempSubScore("speckled_trout", 88, 0, false), 1e-9)
}

func TestMoonSubScore(t *testing.T) {
	t.Parallel()
	// Full moon, moon-sensitive species: maximum.
	assert.InDelta(t, 1.0, MoonSubScore("speckled_trout", 0.5), 1e-9)
	// Quarter moon is the floor.
	assert.InDelta(t, 0.5, MoonSubScore("speckled_trout", 0.25), 1e-9)
	// Moderate sensitivity scales the band by 0.7.
	assert.InDelta(t, 0.85, MoonSubScore("shark", 0.5), 1e-9)
	// Low sensitivity scales by 0.5.
	assert.InDelta(t, 0.75, MoonSubScore("croaker", 0.0), 1e-9)
}

func TestEnvScoreBounded(t *testing.T) {
	t.Parallel()
	cond := Conditions{
		TideStage:      "incoming",
		TideChangeRate: 0.6,
		WindSpeedMph:   8,
		AirTempF:       72,
		WaterTempF:     70,
		HasWaterTemp:   true,
		PressureTrend:  "falling",
		CloudCover:     "overcast",
		MoonPhase:      0.5,
	}
	for _, species := range []string{"speckled_trout", "black_drum", "stingray", "unknown"} {
		score := EnvScore(species, cond)
		assert.GreaterOrEqual(t, score, 0.0, species)
		assert.LessOrEqual(t, score, 1.0, species)
	}
	// Everything lined up for trout: near the top of the range.
	assert.Greater(t, EnvScore("speckled_trout", cond), 0.8)
}

func TestWindowScoreNotRunning(t *testing.T) {
	t.Parallel()
	assert.Zero(t, WindowScore("mackerel", 0.05, Conditions{}))
}

func TestWindowScoreScalesWithSeason(t *testing.T) {
	t.Parallel()
	cond := Conditions{
		TideStage: "incoming", TideChangeRate: 0.5,
		WindSpeedMph: 8, AirTempF: 72, PressureTrend: "stable",
		CloudCover: "partly_cloudy", MoonPhase: 0.5,
	}
	full := WindowScore("speckled_trout", 1.0, cond)
	half := WindowScore("speckled_trout", 0.5, cond)
	assert.InDelta(t, full/2, half, 1e-9)
}

func TestApplySafetyPenalty(t *testing.T) {
	t.Parallel()
	penalties := conf.MarinePenalties{Unsafe: 25, Caution: 30}

	assert.InDelta(t, 55, ApplySafetyPenalty(80, "UNSAFE", 30, penalties), 1e-9)
	// CAUTION at safety 50 takes the full penalty.
	assert.InDelta(t, 50, ApplySafetyPenalty(80, "CAUTION", 50, penalties), 1e-9)
	// CAUTION at safety 65 takes half.
	assert.InDelta(t, 65, ApplySafetyPenalty(80, "CAUTION", 65, penalties), 1e-9)
	// CAUTION at safety 80 takes nothing.
	assert.InDelta(t, 80, ApplySafetyPenalty(80, "CAUTION", 80, penalties), 1e-9)
	// Below 50 the full penalty applies.
	assert.InDelta(t, 50, ApplySafetyPenalty(80, "CAUTION", 40, penalties), 1e-9)
	assert.InDelta(t, 80, ApplySafetyPenalty(80, "SAFE", 100, penalties), 1e-9)
}

func TestBiteLabels(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Hot", BiteLabel(71))
	assert.Equal(t, "Decent", BiteLabel(70))
	assert.Equal(t, "Decent", BiteLabel(41))
	assert.Equal(t, "Slow", BiteLabel(40))
	assert.Equal(t, "Slow", BiteLabel(21))
	assert.Equal(t, "Unlikely", BiteLabel(20))

	assert.Equal(t, "good", BehaviorTier(70))
	assert.Equal(t, "moderate", BehaviorTier(40))
	assert.Equal(t, "slow", BehaviorTier(39))

	assert.Equal(t, "HOT", UITier(80))
	assert.Equal(t, "DECENT", UITier(50))
	assert.Equal(t, "SLOW", UITier(20))
	assert.Equal(t, "UNLIKELY", UITier(19))

	assert.Equal(t, "good", BehaviorTierFromUITier("HOT"))
	assert.Equal(t, "moderate", BehaviorTierFromUITier("DECENT"))
	assert.Equal(t, "slow", BehaviorTierFromUITier("SLOW"))
	assert.Equal(t, "slow", BehaviorTierFromUITier("UNLIKELY"))
}
