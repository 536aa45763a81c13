package scoring

import (
	"fmt"

	"github.com/bitecast/bitecast-go/internal/rules"
)

// SummaryInput carries the context for the two-sentence conditions summary.
// Temperatures of 0 are treated as missing by the cold-wind checks.
type SummaryInput struct {
	TideScore  float64 // sub-scores, 0-1
	WindScore  float64
	TempScore  float64
	BiteScore  float64 // 0-100, from the top active species
	TideStage  string
	WindMph    float64
	WindDir    string
	AirTempF   float64
	WaterTempF float64
}

// ConditionsSummary builds the two-sentence summary: one sentence on the
// conditions, one on the expected fish behavior.
func ConditionsSummary(in SummaryInput) string {
	return conditionsSentence(in) + " " + behaviorSentence(in)
}

func conditionsSentence(in SummaryInput) string {
	strongPenalty := rules.HasStrongNorthWindPenalty(in.WindDir, in.WindMph, in.AirTempF, in.WaterTempF)

	tideLevel := categorizeSubScore(in.TideScore)
	windLevel := categorizeSubScore(in.WindScore)
	tempLevel := categorizeSubScore(in.TempScore)

	var tideDesc string
	switch tideLevel {
	case "high":
		tideDesc = "Strong moving tide"
	case "mid":
		tideDesc = "Steady tide flow"
	default:
		tideDesc = "Weak or slack tide"
	}

	var windDesc string
	switch {
	case strongPenalty:
		windDesc = "cold north wind"
	case rules.IsNorthWind(in.WindDir):
		windDesc = "north wind"
	case windLevel == "high":
		windDesc = "good surface chop"
	case windLevel == "mid":
		windDesc = "moderate wind"
	default:
		windDesc = "calm water"
	}

	var tempDesc string
	switch {
	case strongPenalty || rules.IsColdTemp(in.AirTempF, in.WaterTempF):
		tempDesc = "cold temperatures"
	case tempLevel == "high":
		tempDesc = "ideal temperatures"
	case tempLevel == "mid":
		tempDesc = "workable temperatures"
	default:
		tempDesc = "a tough temperature range"
	}

	if strongPenalty && tideLevel == "high" {
		return fmt.Sprintf("%s, but %s and %s create mixed conditions.", tideDesc, windDesc, tempDesc)
	}
	return fmt.Sprintf("%s, %s, and %s.", tideDesc, windDesc, tempDesc)
}

func behaviorSentence(in SummaryInput) string {
	strongPenalty := rules.HasStrongNorthWindPenalty(in.WindDir, in.WindMph, in.AirTempF, in.WaterTempF)
	moderateNorth := rules.IsNorthWind(in.WindDir) && !strongPenalty

	switch {
	case in.BiteScore >= 70:
		if strongPenalty {
			return "Cold north wind is pushing fish off the shallow flat. Expect them to hold deeper along edges; shallow bite may be slow."
		}
		if moderateNorth {
			return "Fish are feeding but holding slightly deeper than normal due to north wind."
		}
		return "Fish are feeding and pushing shallow."
	case in.BiteScore >= 40:
		if strongPenalty {
			return "Fish are cautious and holding deeper due to cold north wind."
		}
		if moderateNorth {
			return "Fish are behaving normally but favoring deeper edges."
		}
		return "Fish are behaving normally and conditions are stable."
	default:
		if strongPenalty {
			return "Cold conditions and north wind make for a slow bite; target deeper zones and edges."
		}
		return "Fish are cautious and slow to bite."
	}
}

func categorizeSubScore(score float64) string {
	switch {
	case score >= 0.7:
		return "high"
	case score >= 0.4:
		return "mid"
	default:
		return "low"
	}
}
