package astro

import "time"

// Time-of-day band names used across snapshots, profiles and learning.
const (
	BandNight     = "night"
	BandPreDawn   = "pre_dawn"
	BandDawn      = "dawn"
	BandMorning   = "morning"
	BandMidday    = "midday"
	BandAfternoon = "afternoon"
	BandEvening   = "evening"
	BandDusk      = "dusk"
)

// TimeOfDay classifies t against the day's sunrise and sunset. Dawn and
// dusk are 30-minute bands either side of the sun event; the daylight in
// between splits on clock hour.
func TimeOfDay(t, sunrise, sunset time.Time) string {
	const halfBand = 30 * time.Minute

	switch {
	case !t.Before(sunrise.Add(-halfBand)) && !t.After(sunrise.Add(halfBand)):
		return BandDawn
	case !t.Before(sunset.Add(-halfBand)) && !t.After(sunset.Add(halfBand)):
		return BandDusk
	case t.Before(sunrise.Add(-halfBand)):
		if !t.Before(sunrise.Add(-2 * time.Hour)) {
			return BandPreDawn
		}
		return BandNight
	case t.After(sunset.Add(halfBand)):
		return BandNight
	}

	switch hour := t.Hour(); {
	case hour < 11:
		return BandMorning
	case hour < 14:
		return BandMidday
	case hour < 17:
		return BandAfternoon
	default:
		return BandEvening
	}
}

// FallbackTimeOfDay classifies by clock hour alone, for when no sun data
// is available.
func FallbackTimeOfDay(t time.Time) string {
	if hour := t.Hour(); hour >= 6 && hour < 18 {
		return BandMidday
	}
	return BandNight
}

// IsDark reports whether the band calls for dock lights.
func IsDark(band string) bool {
	return band == BandDusk || band == BandNight
}
