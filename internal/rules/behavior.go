package rules

import "fmt"

// DepthBehavior describes where a species holds around the dock at a given
// bite tier. The dock sits on a shallow shelf: 2 ft at the rocky shoreline,
// 4-5 ft at the end of the dock, 7 ft about 500 ft off shore.
type DepthBehavior struct {
	Depth string `json:"depth"`
	MinFt int    `json:"min_ft"`
	MaxFt int    `json:"max_ft"`
	Note  string `json:"note"`
}

var dockDepthBehavior = map[string]map[string]DepthBehavior{
	"speckled_trout": {
		"good":     {Depth: "shallow-mid", MinFt: 2, MaxFt: 4, Note: "Push shallow along rocks and dock edges"},
		"moderate": {Depth: "mid", MinFt: 3, MaxFt: 5, Note: "Cruising around dock and nearby drop"},
		"slow":     {Depth: "mid-deep", MinFt: 4, MaxFt: 7, Note: "Holding off the dock on deeper edge"},
	},
	"redfish": {
		"good":     {Depth: "shallow", MinFt: 1, MaxFt: 3, Note: "Roaming tight to rocks and flooded shoreline"},
		"moderate": {Depth: "shallow-mid", MinFt: 2, MaxFt: 4, Note: "Working around dock and nearby structure"},
		"slow":     {Depth: "mid", MinFt: 3, MaxFt: 5, Note: "Sticking to slower current lanes"},
	},
	"flounder": {
		"good":     {Depth: "mid", MinFt: 3, MaxFt: 5, Note: "Laying on bottom along dock shadow line"},
		"moderate": {Depth: "mid-deep", MinFt: 4, MaxFt: 7, Note: "Sitting on slope from dock to deeper edge"},
		"slow":     {Depth: "deep", MinFt: 5, MaxFt: 7, Note: "Holding on deeper, slower bottom"},
	},
	"sheepshead": {
		"good":     {Depth: "mid", MinFt: 3, MaxFt: 5, Note: "Tight to pilings and dock structure"},
		"moderate": {Depth: "mid", MinFt: 3, MaxFt: 5, Note: "Hugging structure, picking at barnacles"},
		"slow":     {Depth: "mid-deep", MinFt: 4, MaxFt: 6, Note: "Staying glued to deepest pilings"},
	},
	"black_drum": {
		"good":     {Depth: "mid-deep", MinFt: 4, MaxFt: 7, Note: "Rooting bottom off the dock edge"},
		"moderate": {Depth: "mid-deep", MinFt: 4, MaxFt: 7, Note: "Slow cruising along deeper mud"},
		"slow":     {Depth: "deep", MinFt: 5, MaxFt: 7, Note: "Laid up on soft bottom"},
	},
	"white_trout": {
		"good":     {Depth: "mid-deep", MinFt: 4, MaxFt: 7, Note: "Schooling off the dock edge"},
		"moderate": {Depth: "mid-deep", MinFt: 4, MaxFt: 7, Note: "Loose schools just off structure"},
		"slow":     {Depth: "deep", MinFt: 5, MaxFt: 7, Note: "Suspended or tight to bottom deeper"},
	},
	"croaker": {
		"good":     {Depth: "mid", MinFt: 3, MaxFt: 5, Note: "On bottom around dock and nearby slope"},
		"moderate": {Depth: "mid-deep", MinFt: 4, MaxFt: 7, Note: "Scattered along deeper edge"},
		"slow":     {Depth: "deep", MinFt: 5, MaxFt: 7, Note: "Holding tight to deeper mud"},
	},
	"tripletail": {
		"good":     {Depth: "surface-mid", MinFt: 2, MaxFt: 5, Note: "Suspended near surface around debris or dock"},
		"moderate": {Depth: "mid", MinFt: 3, MaxFt: 5, Note: "Holding to any floating cover or pilings"},
		"slow":     {Depth: "mid-deep", MinFt: 4, MaxFt: 7, Note: "Staying tight to limited structure"},
	},
	"blue_crab": {
		"good":     {Depth: "shallow-mid", MinFt: 2, MaxFt: 5, Note: "Active along bottom from rocks to dock edge"},
		"moderate": {Depth: "mid", MinFt: 3, MaxFt: 5, Note: "Walking bottom around dock"},
		"slow":     {Depth: "mid-deep", MinFt: 4, MaxFt: 7, Note: "Less active, hugging bottom in deeper water"},
	},
	"mullet": {
		"good":     {Depth: "shallow", MinFt: 1, MaxFt: 3, Note: "Schooling visibly around rocks and shoreline"},
		"moderate": {Depth: "shallow-mid", MinFt: 2, MaxFt: 4, Note: "Cruising the shelf near the dock"},
		"slow":     {Depth: "mid", MinFt: 3, MaxFt: 5, Note: "Deeper and more scattered"},
	},
	"jack_crevalle": {
		"good":     {Depth: "surface-mid", MinFt: 2, MaxFt: 5, Note: "Roaming fast across the shelf when bait stacks"},
		"moderate": {Depth: "mid-deep", MinFt: 4, MaxFt: 7, Note: "Running edges and deeper bait lines"},
		"slow":     {Depth: "deep", MinFt: 5, MaxFt: 7, Note: "Mostly absent near the dock"},
	},
	"mackerel": {
		"good":     {Depth: "surface-mid", MinFt: 2, MaxFt: 5, Note: "Running bait lines across the shelf"},
		"moderate": {Depth: "mid-deep", MinFt: 4, MaxFt: 7, Note: "On deeper edges when bait is out"},
		"slow":     {Depth: "deep", MinFt: 5, MaxFt: 7, Note: "Mostly off the dock area"},
	},
	"shark": {
		"good":     {Depth: "mid-deep", MinFt: 4, MaxFt: 7, Note: "Cruising deeper edge for scent and bait"},
		"moderate": {Depth: "deep", MinFt: 5, MaxFt: 7, Note: "Off the shelf, following channels"},
		"slow":     {Depth: "deep", MinFt: 5, MaxFt: 7, Note: "Largely away from dock zone"},
	},
	"stingray": {
		"good":     {Depth: "mid-deep", MinFt: 4, MaxFt: 7, Note: "Gliding and feeding on deeper soft bottom"},
		"moderate": {Depth: "mid-deep", MinFt: 4, MaxFt: 7, Note: "Consistent on flat mud/sand bottom"},
		"slow":     {Depth: "deep", MinFt: 5, MaxFt: 7, Note: "Laying mostly inactive on bottom"},
	},
}

// DepthBehaviorFor returns the depth behavior for a species at a bite tier,
// shifted deeper when north wind conditions apply. The boolean is false when
// the species or tier has no entry.
func DepthBehaviorFor(species, biteTier, windDirection string, windSpeedMph, airTempF, waterTempF float64) (DepthBehavior, bool) {
	tiers, ok := dockDepthBehavior[species]
	if !ok {
		return DepthBehavior{}, false
	}
	behavior, ok := tiers[biteTier]
	if !ok {
		return DepthBehavior{}, false
	}

	if windDirection == "" {
		return behavior, true
	}
	shift := DepthShift(species, windDirection, windSpeedMph, airTempF, waterTempF)
	if shift == 0 {
		return behavior, true
	}

	shifted := behavior
	shifted.MinFt, shifted.MaxFt = ApplyDepthShift(behavior.MinFt, behavior.MaxFt, shift)
	shifted.Depth = relabelDepth(shifted.MinFt, shifted.MaxFt)
	strong := HasStrongNorthWindPenalty(windDirection, windSpeedMph, airTempF, waterTempF)
	shifted.Note = ColdNorthWindDepthNote(species, behavior.Note, strong)
	return shifted, true
}

func relabelDepth(minFt, maxFt int) string {
	avg := float64(minFt+maxFt) / 2
	switch {
	case avg <= 2.5:
		return "shallow"
	case avg <= 4.5:
		if minFt < 3 {
			return "shallow-mid"
		}
		return "mid"
	case avg <= 6:
		if maxFt < 6 {
			return "mid"
		}
		return "mid-deep"
	default:
		return "deep"
	}
}

// FormatDepthRange renders a depth range like "2-4 ft".
func FormatDepthRange(minFt, maxFt int) string {
	if minFt == maxFt {
		return fmt.Sprintf("%d ft", minFt)
	}
	return fmt.Sprintf("%d-%d ft", minFt, maxFt)
}
