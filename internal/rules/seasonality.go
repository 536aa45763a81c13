package rules

import "time"

// Monthly running factors per species for Mobile Bay / Gulf Coast.
// Scale: 0.0 absent, 0.2 poor, 0.4 fair, 0.6 good, 0.8 great, 1.0 excellent.
// Index 0 is January.
var speciesSeasonality = map[string][12]float64{
	"speckled_trout": {1.0, 0.6, 0.8, 0.8, 1.0, 1.0, 1.0, 0.6, 0.4, 0.6, 1.0, 1.0},
	"redfish":        {1.0, 0.6, 0.8, 0.8, 1.0, 1.0, 1.0, 0.6, 0.6, 0.8, 0.8, 0.8},
	"flounder":       {0.2, 0.6, 0.8, 1.0, 1.0, 0.8, 0.8, 0.6, 0.6, 1.0, 1.0, 0.6},
	"sheepshead":     {0.8, 0.8, 1.0, 1.0, 0.8, 0.4, 0.4, 0.4, 0.6, 0.8, 1.0, 1.0},
	"mullet":         {0.4, 0.4, 0.6, 0.8, 0.9, 1.0, 1.0, 1.0, 1.0, 1.0, 0.8, 0.5},
	"mackerel":       {0.0, 0.0, 0.0, 0.2, 0.6, 0.8, 1.0, 1.0, 0.8, 0.8, 0.4, 0.0},
	"croaker":        {0.3, 0.3, 0.5, 0.7, 0.9, 1.0, 1.0, 1.0, 0.9, 0.7, 0.5, 0.3},
	"stingray":       {0.3, 0.3, 0.5, 0.7, 0.9, 1.0, 1.0, 1.0, 0.9, 0.7, 0.5, 0.4},
	"shark":          {0.2, 0.2, 0.3, 0.6, 0.8, 1.0, 1.0, 1.0, 0.9, 0.7, 0.3, 0.2},
	"black_drum":     {0.8, 0.6, 0.8, 0.8, 0.8, 0.8, 1.0, 0.6, 0.8, 1.0, 1.0, 1.0},
	"tripletail":     {0.0, 0.0, 0.0, 0.2, 0.6, 1.0, 1.0, 1.0, 0.8, 0.8, 0.6, 0.0},
	"jack_crevalle":  {0.0, 0.0, 0.0, 0.2, 0.4, 0.8, 1.0, 1.0, 1.0, 1.0, 0.6, 0.0},
	"white_trout":    {0.8, 0.6, 0.6, 0.6, 0.8, 0.8, 1.0, 0.6, 0.8, 0.8, 0.8, 0.8},
	"blue_crab":      {0.2, 0.2, 0.4, 0.6, 0.8, 1.0, 1.0, 1.0, 0.8, 0.6, 0.4, 0.2},
}

// AllSpecies lists every species with a seasonality table, in a stable order.
var AllSpecies = []string{
	"speckled_trout",
	"redfish",
	"flounder",
	"sheepshead",
	"mullet",
	"mackerel",
	"croaker",
	"stingray",
	"shark",
	"black_drum",
	"tripletail",
	"jack_crevalle",
	"white_trout",
	"blue_crab",
}

// Monthly availability for the bait species that have no fish seasonality
// row. Fiddlers peak in winter for the sheepshead window, everything else
// follows the warm months.
var baitSeasonality = map[string][12]float64{
	"live_shrimp":  {0.3, 0.3, 0.5, 0.7, 0.9, 1.0, 1.0, 1.0, 1.0, 0.8, 0.6, 0.4},
	"menhaden":     {0.2, 0.3, 0.6, 0.8, 1.0, 1.0, 1.0, 1.0, 0.9, 0.7, 0.4, 0.2},
	"fiddler_crab": {1.0, 1.0, 1.0, 0.8, 0.5, 0.3, 0.3, 0.3, 0.4, 0.6, 0.8, 1.0},
	"pinfish":      {0.3, 0.3, 0.5, 0.8, 1.0, 1.0, 1.0, 1.0, 0.9, 0.7, 0.5, 0.3},
	"mud_minnows":  {0.8, 0.8, 0.8, 0.9, 1.0, 1.0, 1.0, 1.0, 1.0, 0.9, 0.8, 0.8},
}

// RunningFactor returns the seasonal presence factor (0-1) for a species
// on the given date. Unknown species return 0.
func RunningFactor(species string, date time.Time) float64 {
	months, ok := speciesSeasonality[species]
	if !ok {
		if months, ok = baitSeasonality[species]; !ok {
			return 0.0
		}
	}
	return months[date.Month()-1]
}

// IsRunning reports whether the species is seasonally present at or above
// the threshold (fair or better by default).
func IsRunning(species string, date time.Time, threshold float64) bool {
	return RunningFactor(species, date) >= threshold
}

// SeasonalBaseline converts the running factor to the 0-100 baseline score
// that the cached zone scores start from.
func SeasonalBaseline(species string, date time.Time) float64 {
	return BaselineFromFactor(RunningFactor(species, date))
}

// BaselineFromFactor maps a 0-1 running factor onto the stepped baseline
// scale (Poor 20, Fair 40, Good 60, Great 80, Excellent 90).
func BaselineFromFactor(factor float64) float64 {
	switch {
	case factor <= 0.0:
		return 0.0
	case factor <= 0.2:
		return 20.0
	case factor <= 0.3:
		return 30.0
	case factor <= 0.4:
		return 40.0
	case factor <= 0.5:
		return 50.0
	case factor <= 0.6:
		return 60.0
	case factor <= 0.7:
		return 70.0
	case factor <= 0.8:
		return 80.0
	case factor <= 0.9:
		return 85.0
	default:
		return 90.0
	}
}

// RatingLabel converts a baseline score to its calendar rating label.
func RatingLabel(baseline float64) string {
	switch {
	case baseline <= 0:
		return "N/A"
	case baseline <= 20:
		return "Poor"
	case baseline <= 40:
		return "Fair"
	case baseline <= 60:
		return "Good"
	case baseline <= 80:
		return "Great"
	default:
		return "Excellent"
	}
}
