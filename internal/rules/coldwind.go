package rules

import "strings"

// Cold north wind detection. A strong cold north wind pushes fish off the
// shallow flat around the dock and shifts their holding depth.

const (
	coldTempThresholdF     = 60.0
	shallowDepthThresholdF = 6.0

	// DockAverageDepthFt is the average depth of the flat around the dock.
	DockAverageDepthFt = 4.5

	// MaxDockDepthFt caps any depth shift.
	MaxDockDepthFt = 7
)

var northWindDirections = map[string]bool{
	"N": true, "NNE": true, "NE": true, "NNW": true, "NW": true,
}

// IsNorthWind reports whether the cardinal direction is north derived.
func IsNorthWind(direction string) bool {
	return northWindDirections[strings.ToUpper(direction)]
}

// IsColdTemp reports whether either air or water temperature is at or below
// 60°F. Zero values are treated as missing.
func IsColdTemp(airTempF, waterTempF float64) bool {
	if airTempF != 0 && airTempF <= coldTempThresholdF {
		return true
	}
	if waterTempF != 0 && waterTempF <= coldTempThresholdF {
		return true
	}
	return false
}

// IsShallowLocation reports whether the given average depth counts as
// shallow water.
func IsShallowLocation(averageDepthFt float64) bool {
	return averageDepthFt < shallowDepthThresholdF
}

// HasStrongNorthWindPenalty reports whether the strong penalty applies:
// north wind at 10 mph or more combined with cold air or water.
func HasStrongNorthWindPenalty(direction string, windSpeedMph, airTempF, waterTempF float64) bool {
	if !IsNorthWind(direction) {
		return false
	}
	if windSpeedMph < 10.0 {
		return false
	}
	return IsColdTemp(airTempF, waterTempF)
}

// HasModerateNorthWindPenalty reports whether any north wind over the
// shallow flat warrants a light penalty.
func HasModerateNorthWindPenalty(direction string) bool {
	if !IsNorthWind(direction) {
		return false
	}
	return IsShallowLocation(DockAverageDepthFt)
}

// DepthShift returns how many feet deeper a species holds under north wind
// conditions (0-3).
func DepthShift(species, direction string, windSpeedMph, airTempF, waterTempF float64) int {
	if HasStrongNorthWindPenalty(direction, windSpeedMph, airTempF, waterTempF) {
		switch species {
		case "speckled_trout", "redfish", "mullet":
			return 3
		case "white_trout", "croaker", "blue_crab":
			return 2
		default:
			return 1
		}
	}
	if HasModerateNorthWindPenalty(direction) {
		switch species {
		case "speckled_trout", "redfish", "mullet":
			return 1
		}
	}
	return 0
}

// ApplyDepthShift shifts a depth range deeper, capped at the dock maximum.
func ApplyDepthShift(minFt, maxFt, shiftFt int) (int, int) {
	minFt += shiftFt
	maxFt += shiftFt
	if minFt > MaxDockDepthFt {
		minFt = MaxDockDepthFt
	}
	if maxFt > MaxDockDepthFt {
		maxFt = MaxDockDepthFt
	}
	return minFt, maxFt
}

// ColdNorthWindDepthNote rewrites a depth behavior note for north wind
// conditions.
func ColdNorthWindDepthNote(species, originalNote string, strongPenalty bool) string {
	if strongPenalty {
		switch species {
		case "speckled_trout", "redfish":
			return "Holding deeper along edges; shallow bite may be slow"
		case "black_drum", "flounder":
			return "Off the dock edge on the deeper side, not in skinniest water"
		case "white_trout", "croaker":
			return "Pushed deeper by cold north wind"
		default:
			return "Holding deeper than normal"
		}
	}
	return strings.TrimRight(originalNote, ".") + " (pushed slightly deeper by north wind)"
}
