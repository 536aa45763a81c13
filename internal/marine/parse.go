// Package marine ingests NWS marine zone forecasts and alerts and scores
// how safe the dock is to fish from.
package marine

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Hazard levels.
const (
	HazardNone      = "NONE"
	HazardCaution   = "CAUTION"
	HazardDangerous = "DANGEROUS"
)

// Safety levels.
const (
	SafetySafe    = "SAFE"
	SafetyCaution = "CAUTION"
	SafetyUnsafe  = "UNSAFE"
)

var (
	waveHeightPatterns = []*regexp.Regexp{
		regexp.MustCompile(`waves?\s+(\d+)\s+(?:to\s+\d+\s+)?(?:feet|ft)`),
		regexp.MustCompile(`(\d+)\s+(?:to\s+\d+\s+)?(?:feet|ft)\s+waves?`),
		regexp.MustCompile(`seas?\s+(\d+)\s+(?:to\s+\d+\s+)?(?:feet|ft)`),
	}
	gustPattern      = regexp.MustCompile(`gusts?\s+(?:up\s+to\s+)?(\d+)\s*mph`)
	windRangePattern = regexp.MustCompile(`(\d+)\s+to\s+(\d+)\s*mph`)

	titleCaser = cases.Title(language.AmericanEnglish)
)

// seaStates are matched in order; the more specific entries come first.
var seaStates = []string{
	"very rough", "light chop", "high seas",
	"calm", "choppy", "moderate", "rough", "smooth",
}

// ExtractWaveHeight pulls a wave height in feet out of forecast text. The
// second value is false when no height is mentioned.
func ExtractWaveHeight(text string) (float64, bool) {
	lower := strings.ToLower(text)
	for _, pattern := range waveHeightPatterns {
		if m := pattern.FindStringSubmatch(lower); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

// ExtractSeaState finds a sea state description in forecast text.
func ExtractSeaState(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, state := range seaStates {
		if strings.Contains(lower, state) {
			return titleCaser.String(state), true
		}
	}
	return "", false
}

// ExtractWindGust pulls a gust speed from wind text like
// "15 to 20 mph with gusts up to 30 mph". Without an explicit gust the
// high end of a range stands in.
func ExtractWindGust(windText string) (float64, bool) {
	lower := strings.ToLower(windText)
	if m := gustPattern.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v, true
		}
	}
	if m := windRangePattern.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.ParseFloat(m[2], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

// AlertInfo is one active alert from the NWS zone feed.
type AlertInfo struct {
	Event    string
	Headline string
	Severity string
}

// Hazards is the classified view of the active alerts.
type Hazards struct {
	SmallCraftAdvisory  bool
	GaleWarning         bool
	ThunderstormWarning bool
	Level               string
	Raw                 string
}

// ClassifyHazards folds alert texts into hazard flags and an overall
// level.
func ClassifyHazards(alerts []AlertInfo) Hazards {
	hazards := Hazards{Level: HazardNone}
	if len(alerts) == 0 {
		return hazards
	}

	var textParts, headlines []string
	for _, a := range alerts {
		textParts = append(textParts, a.Event+" "+a.Headline)
		headlines = append(headlines, a.Headline)
	}
	allText := strings.ToLower(strings.Join(textParts, " "))
	hazards.Raw = strings.Join(headlines, "; ")

	if strings.Contains(allText, "small craft advisory") {
		hazards.SmallCraftAdvisory = true
		hazards.Level = HazardCaution
	}
	if strings.Contains(allText, "gale warning") || strings.Contains(allText, "gale watch") {
		hazards.GaleWarning = true
		hazards.Level = HazardDangerous
	}
	if strings.Contains(allText, "thunderstorm") || strings.Contains(allText, "severe") {
		hazards.ThunderstormWarning = true
		if hazards.Level == HazardNone {
			hazards.Level = HazardCaution
		}
	}

	for _, a := range alerts {
		switch strings.ToLower(a.Severity) {
		case "severe", "extreme":
			hazards.Level = HazardDangerous
		}
	}

	return hazards
}

// Safety is the computed safety score and level.
type Safety struct {
	Score int
	Level string
}

// ScoreInput carries the parsed forecast pieces into the safety score.
type ScoreInput struct {
	WaveHeightFt      float64
	HasWaveHeight     bool
	SeaState          string
	WindGustMph       float64
	HasWindGust       bool
	WeatherConditions string // current weather text, may be empty
}

// CalculateSafety starts at 100 and deducts for waves, sea state, gusts
// and hazards. A DANGEROUS hazard level forces UNSAFE and caps the score
// at 40.
func CalculateSafety(in ScoreInput, hazards Hazards) Safety {
	score := 100

	if in.HasWaveHeight {
		switch {
		case in.WaveHeightFt > 6:
			score -= 50
		case in.WaveHeightFt > 4:
			score -= 30
		case in.WaveHeightFt > 2:
			score -= 15
		}
	}

	seaState := strings.ToLower(in.SeaState)
	switch {
	case strings.Contains(seaState, "rough") || strings.Contains(seaState, "very"):
		score -= 25
	case strings.Contains(seaState, "choppy") || strings.Contains(seaState, "moderate"):
		score -= 10
	}

	if in.HasWindGust {
		switch {
		case in.WindGustMph > 35:
			score -= 40
		case in.WindGustMph > 25:
			score -= 25
		case in.WindGustMph > 20:
			score -= 10
		}
	}

	if hazards.GaleWarning {
		score -= 50
	}
	if hazards.SmallCraftAdvisory {
		score -= 25
	}
	if hazards.ThunderstormWarning {
		score -= 30
	}

	conditions := strings.ToLower(in.WeatherConditions)
	if strings.Contains(conditions, "storm") || strings.Contains(conditions, "severe") {
		score -= 20
	}

	score = max(0, min(100, score))

	level := SafetyUnsafe
	switch {
	case score >= 80:
		level = SafetySafe
	case score >= 50:
		level = SafetyCaution
	}

	switch {
	case hazards.Level == HazardDangerous:
		level = SafetyUnsafe
		score = min(score, 40)
	case hazards.Level == HazardCaution && level == SafetySafe:
		level = SafetyCaution
	}

	return Safety{Score: score, Level: level}
}
