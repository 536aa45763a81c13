package astro

import (
	"math"
	"time"
)

// Reference new moon used as the lunar cycle epoch.
var moonEpoch = time.Date(2000, time.January, 6, 18, 14, 0, 0, time.UTC)

// synodicMonth is the mean lunar cycle length in days.
const synodicMonth = 29.53059

// MoonPhase returns the phase fraction for a date, 0 = new and 0.5 = full,
// rounded to three decimals.
func MoonPhase(date time.Time) float64 {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	daysSince := math.Floor(day.Sub(moonEpoch).Hours() / 24)
	phase := math.Mod(daysSince, synodicMonth) / synodicMonth
	if phase < 0 {
		phase += 1
	}
	return math.Round(phase*1000) / 1000
}

// MoonPhaseName maps a phase fraction to its common name.
func MoonPhaseName(phase float64) string {
	switch {
	case phase < 0.0625:
		return "New"
	case phase < 0.1875:
		return "Waxing Crescent"
	case phase < 0.3125:
		return "First Quarter"
	case phase < 0.4375:
		return "Waxing Gibbous"
	case phase < 0.5625:
		return "Full"
	case phase < 0.6875:
		return "Waning Gibbous"
	case phase < 0.8125:
		return "Last Quarter"
	case phase < 0.9375:
		return "Waning Crescent"
	default:
		return "New"
	}
}

// MoonIllumination returns the illuminated fraction for a phase, 0 at new
// moon and 1 at full.
func MoonIllumination(phase float64) float64 {
	return (1 - math.Cos(2*math.Pi*phase)) / 2
}
