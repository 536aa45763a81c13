// Package weather ingests NWS hourly forecasts and CO-OPS meteorological
// observations for the dock.
package weather

import (
	"math"
	"strconv"
	"strings"
)

var cardinalDirections = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// DegreesToCardinal converts a wind bearing to its 16-point cardinal name.
func DegreesToCardinal(degrees float64) string {
	degrees = math.Mod(degrees, 360)
	if degrees < 0 {
		degrees += 360
	}
	index := int(math.Round(degrees/22.5)) % 16
	return cardinalDirections[index]
}

// ParseWindSpeed handles NWS wind speed text like "10 mph" or
// "5 to 10 mph", returning the mean for ranges. Unparseable input reads
// as calm.
func ParseWindSpeed(text string) float64 {
	s := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(text), "mph", ""))
	if s == "" {
		return 0
	}
	if lo, hi, ok := strings.Cut(s, "to"); ok {
		low, err1 := strconv.ParseFloat(strings.TrimSpace(lo), 64)
		high, err2 := strconv.ParseFloat(strings.TrimSpace(hi), 64)
		if err1 != nil || err2 != nil {
			return 0
		}
		return (low + high) / 2
	}
	speed, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return speed
}

// Cloud cover classes stored on weather rows.
const (
	CloudClear        = "clear"
	CloudPartlyCloudy = "partly_cloudy"
	CloudOvercast     = "overcast"
)

// ClassifyCloudCover maps NWS short forecast text to a cloud cover class.
func ClassifyCloudCover(shortForecast string) string {
	text := strings.ToLower(shortForecast)
	switch {
	case strings.Contains(text, "sunny") && !strings.Contains(text, "partly") && !strings.Contains(text, "mostly sunny"):
		return CloudClear
	case strings.Contains(text, "clear") && !strings.Contains(text, "mostly clear"):
		return CloudClear
	case strings.Contains(text, "partly"), strings.Contains(text, "mostly sunny"), strings.Contains(text, "mostly clear"):
		return CloudPartlyCloudy
	case strings.Contains(text, "cloudy"), strings.Contains(text, "overcast"):
		return CloudOvercast
	default:
		return CloudPartlyCloudy
	}
}

// Pressure trend values.
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
)

// InferPressureTrend guesses the trend from forecast text. The hourly NWS
// product carries no barometer readings, so text keywords stand in.
func InferPressureTrend(conditions string) string {
	text := strings.ToLower(conditions)
	switch {
	case strings.Contains(text, "storm"),
		strings.Contains(text, "approaching"),
		strings.Contains(text, "deteriorating"):
		return TrendFalling
	case strings.Contains(text, "clearing"), strings.Contains(text, "improving"):
		return TrendRising
	default:
		return TrendStable
	}
}
