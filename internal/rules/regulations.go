package rules

import "fmt"

// Regulation holds Alabama saltwater size and creel limits for a species,
// from the Marine Resources Division creel sheet (July 2025).
type Regulation struct {
	Name         string
	MinInches    float64 // 0 means no minimum
	MaxInches    float64 // 0 means no maximum
	Measure      string  // TL, FL, Point-to-point
	PerPerson    int     // 0 means no creel limit
	PerVessel    int
	CreelNotes   string
	SpecialRules []string
}

var speciesRegulations = map[string]Regulation{
	"speckled_trout": {
		Name:       "Spotted Seatrout",
		MinInches:  15, MaxInches: 22, Measure: "TL",
		PerPerson:  6,
		CreelNotes: "One oversized fish allowed in addition to slot fish.",
	},
	"redfish": {
		Name:       "Red Drum (Redfish)",
		MinInches:  16, MaxInches: 26, Measure: "TL",
		PerPerson:  3,
		CreelNotes: "Slot only—fish must be within 16–26 inch range.",
	},
	"sheepshead": {
		Name:      "Sheepshead",
		MinInches: 12, Measure: "FL",
		PerPerson: 8,
	},
	"tripletail": {
		Name:      "Tripletail (Blackfish)",
		MinInches: 18, Measure: "TL",
		PerPerson: 3,
	},
	"flounder": {
		Name:      "Flounder",
		MinInches: 14, Measure: "TL",
		PerPerson: 5,
		SpecialRules: []string{
			"Taking or possession of flounder is prohibited from Nov. 1–Nov. 30.",
		},
	},
	"mackerel": {
		Name:      "King Mackerel",
		MinInches: 24, Measure: "FL",
		PerPerson: 3,
	},
	"mullet": {
		Name:       "Mullet",
		CreelNotes: "No size or creel limit (except seasonal shoreline rule).",
		SpecialRules: []string{
			"Oct 24–Dec 31: 25 mullet per person from the shoreline OR 25 per boat.",
			"During that period, no mullet may be taken by cast net or snagging in Theodore Industrial Canal, Dog River, Fowl River, and their tributaries.",
		},
	},
	"stingray": {
		Name:       "Skates and Rays",
		PerPerson:  3,
		CreelNotes: "No size limit.",
		SpecialRules: []string{
			"Full retention allowed when using bow, spear, or gig.",
			"It is unlawful to remove the tail from any released skate or ray.",
		},
	},
	"croaker": {
		Name:       "Atlantic Croaker",
		CreelNotes: "No size or creel limit.",
	},
	"shark": {
		Name:       "Sharks",
		CreelNotes: "Varies by species. Check current regulations.",
	},
	"black_drum": {
		Name:       "Black Drum",
		CreelNotes: "No size or creel limit.",
	},
	"jack_crevalle": {
		Name: "Jack Crevalle",
	},
	"white_trout": {
		Name:       "White Trout",
		CreelNotes: "No size or creel limit.",
	},
	"blue_crab": {
		Name:       "Blue Crab",
		MinInches:  5, Measure: "Point-to-point",
		CreelNotes: "Recreational crabbing allowed with proper gear.",
		SpecialRules: []string{
			"Minimum size: 5 inches point to point across carapace.",
			"No egg-bearing females may be taken.",
		},
	},
}

// RegulationFor returns the regulation entry for a species.
func RegulationFor(species string) (Regulation, bool) {
	r, ok := speciesRegulations[species]
	return r, ok
}

// SizeLimitDisplay formats the size limit, e.g. `15"-22"` or `14"-N/A`.
func SizeLimitDisplay(species string) string {
	reg, ok := speciesRegulations[species]
	if !ok {
		return "N/A"
	}
	if reg.MinInches == 0 && reg.MaxInches == 0 {
		return "N/A"
	}
	minStr, maxStr := "N/A", "N/A"
	if reg.MinInches > 0 {
		minStr = fmt.Sprintf("%g\"", reg.MinInches)
	}
	if reg.MaxInches > 0 {
		maxStr = fmt.Sprintf("%g\"", reg.MaxInches)
	}
	return minStr + "-" + maxStr
}

// CreelLimitDisplay formats the creel limit, e.g. "6 per person".
func CreelLimitDisplay(species string) string {
	reg, ok := speciesRegulations[species]
	if !ok {
		return "N/A"
	}
	if reg.PerPerson > 0 {
		return fmt.Sprintf("%d per person", reg.PerPerson)
	}
	if reg.PerVessel > 0 {
		return fmt.Sprintf("%d per vessel", reg.PerVessel)
	}
	return "N/A"
}
