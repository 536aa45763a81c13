// Package rules holds the static domain knowledge for the Dauphin Island dock:
// species seasonality, behavior profiles, zone geometry, bait profiles and the
// cold north wind adjustments. Everything here is data plus pure functions so
// the scoring packages can stay free of lookup tables.
package rules

import "strings"

// Species tiers. Tier 1 species get the full environmental scoring path,
// Tier 2 species get the simplified one.
var (
	Tier1Species = []string{
		"speckled_trout",
		"redfish",
		"flounder",
		"sheepshead",
		"black_drum",
	}

	Tier2Species = []string{
		"croaker",
		"white_trout",
		"menhaden",
		"mullet",
		"jack_crevalle",
		"blue_crab",
	}

	// BaitSpecies never appear in the fish forecast.
	BaitSpecies = []string{
		"menhaden",
		"mullet",
		"live_shrimp",
		"fiddler_crab",
	}

	// PredatorSpecies trigger bite penalties for prey when logged.
	PredatorSpecies = []string{
		"jack_crevalle",
		"shark",
	}
)

var displayNames = map[string]string{
	"speckled_trout": "Speckled Trout",
	"redfish":        "Redfish",
	"flounder":       "Flounder",
	"sheepshead":     "Sheepshead",
	"mullet":         "Mullet",
	"mackerel":       "Mackerel",
	"croaker":        "Croaker",
	"stingray":       "Stingray",
	"shark":          "Shark",
	"black_drum":     "Black Drum",
	"tripletail":     "Tripletail (Blackfish)",
	"jack_crevalle":  "Jack Crevalle",
	"white_trout":    "White Trout",
	"blue_crab":      "Blue Crab",
}

// DisplayName converts a species key to its display name. Unknown keys are
// title-cased on a best effort basis.
func DisplayName(species string) string {
	if name, ok := displayNames[species]; ok {
		return name
	}
	words := strings.Split(strings.ReplaceAll(species, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// SpeciesTier returns 1 for full-analytics species and 2 otherwise.
func SpeciesTier(species string) int {
	for _, s := range Tier1Species {
		if s == species {
			return 1
		}
	}
	return 2
}

// IsBaitSpecies reports whether the species is tracked as bait rather than
// a forecast target.
func IsBaitSpecies(species string) bool {
	key := strings.ToLower(species)
	for _, s := range BaitSpecies {
		if s == key {
			return true
		}
	}
	return false
}

// IsPredatorSpecies reports whether a sighting of the species should
// penalize prey bite scores.
func IsPredatorSpecies(species string) bool {
	for _, s := range PredatorSpecies {
		if s == species {
			return true
		}
	}
	return false
}

// UseFullScoring reports whether the species takes the detailed
// environmental scoring path.
func UseFullScoring(species string) bool {
	return SpeciesTier(species) == 1
}
