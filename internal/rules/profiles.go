package rules

// BehaviorProfile captures a species' environmental preferences for the
// zone-level scoring path. Tier 1 species carry the full set of maps,
// Tier 2 and bait species only fill what matters for them.
type BehaviorProfile struct {
	Tier       int
	Name       string
	Type       string // "", "bait" or "predator"
	PeakMonths []int
	SpawnMonths []int

	WaterTemp    *WaterTempPref
	TideStage    map[string]float64 // stage -> score delta
	CurrentSpeed *CurrentSpeedPref
	WaterClarity map[string]float64 // clarity -> score delta
	Wind         *WindPref
	Pressure     map[string]float64 // trend -> score delta
	Salinity     *SalinityPref
	Structure    map[string]float64 // structure type -> score delta
	Light        *LightPref
	TimeOfDay    map[string]float64 // time block -> score delta

	SolunarMajor float64
	SolunarMinor float64

	// CurrentStructureBonus applies when moving current and structure
	// coincide (redfish, sheepshead).
	CurrentStructureBonus float64

	// DepthPreference marks species that favor the deeper zones.
	DepthPreference string

	// PenaltyToPrey is the bite penalty an active predator of this
	// species applies to prey.
	PenaltyToPrey float64
}

type WaterTempPref struct {
	IdealMin, IdealMax       float64
	WorkableMin, WorkableMax float64
	BonusInIdeal             float64
	PenaltyOutOfWorkable     float64
	PenaltyColdSnap          float64
}

type CurrentSpeedPref struct {
	IdealMin, IdealMax float64
	BonusMoving        float64
	PenaltySlack       float64
}

type WindPref struct {
	FavorableDirections       []string
	UnfavorableDirections     []string
	LightIdealMax             float64
	BonusFavorable            float64
	PenaltyUnfavorableStrong  float64
}

type SalinityPref struct {
	PreferredMin, PreferredMax float64
	Tolerant                   bool
	PenaltyRapidChange         float64
}

type LightPref struct {
	GreenLightNightBonus  float64
	RequiresDecentClarity bool
}

var speciesProfiles = map[string]*BehaviorProfile{
	"speckled_trout": {
		Tier:        1,
		Name:        "Speckled Trout",
		PeakMonths:  []int{3, 4, 5, 6, 7, 8, 9, 10},
		SpawnMonths: []int{4, 5, 6, 7, 8, 9},
		WaterTemp: &WaterTempPref{
			IdealMin: 65, IdealMax: 78,
			WorkableMin: 58, WorkableMax: 85,
			BonusInIdeal: 5, PenaltyOutOfWorkable: -4,
		},
		TideStage: map[string]float64{
			"incoming": 4, "outgoing": 2, "high": 0, "low": 0, "slack": -4,
		},
		CurrentSpeed: &CurrentSpeedPref{
			IdealMin: 0.3, IdealMax: 1.5, BonusMoving: 3, PenaltySlack: -3,
		},
		WaterClarity: map[string]float64{
			"clear": 5, "slightly_stained": 2, "stained": -1, "muddy": -6, "chalky": -5,
		},
		Wind: &WindPref{
			FavorableDirections:      []string{"SE", "S", "SW", "E"},
			UnfavorableDirections:    []string{"N", "NW", "NE"},
			LightIdealMax:            12,
			BonusFavorable:           3,
			PenaltyUnfavorableStrong: -4,
		},
		Pressure: map[string]float64{
			"falling": 3, "stable": 1, "rising_slow": 0, "rising_fast": -3,
		},
		Salinity: &SalinityPref{
			PreferredMin: 15, PreferredMax: 30, Tolerant: true, PenaltyRapidChange: -2,
		},
		Structure: map[string]float64{
			"grass_edges": 4, "pilings": 3, "drop_offs": 3, "current_seams": 4, "open_water": -1,
		},
		Light: &LightPref{GreenLightNightBonus: 4, RequiresDecentClarity: true},
		TimeOfDay: map[string]float64{
			"dawn": 3, "morning": 2, "midday": 0, "afternoon": 1, "evening": 3, "night": 1,
		},
		SolunarMajor: 2, SolunarMinor: 1,
	},
	"redfish": {
		Tier:        1,
		Name:        "Redfish",
		PeakMonths:  []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		SpawnMonths: []int{8, 9, 10, 11},
		WaterTemp: &WaterTempPref{
			IdealMin: 65, IdealMax: 80,
			WorkableMin: 55, WorkableMax: 88,
			BonusInIdeal: 4, PenaltyOutOfWorkable: -2,
		},
		TideStage: map[string]float64{
			"incoming": 5, "outgoing": 4, "high": 1, "low": -1, "slack": -5,
		},
		CurrentSpeed: &CurrentSpeedPref{
			IdealMin: 0.4, IdealMax: 2.0, BonusMoving: 4, PenaltySlack: -4,
		},
		WaterClarity: map[string]float64{
			"clear": 3, "slightly_stained": 3, "stained": 1, "muddy": -1, "chalky": -2,
		},
		Wind: &WindPref{
			FavorableDirections:      []string{"SE", "S", "SW"},
			LightIdealMax:            15,
			BonusFavorable:           2,
			PenaltyUnfavorableStrong: -1,
		},
		Pressure: map[string]float64{
			"falling": 2, "stable": 1, "rising_slow": 0, "rising_fast": -1,
		},
		Salinity: &SalinityPref{
			PreferredMin: 10, PreferredMax: 35, Tolerant: true, PenaltyRapidChange: -1,
		},
		Structure: map[string]float64{
			"pilings": 5, "rubble": 5, "cuts": 4, "drains": 4, "grass_edges": 3, "open_water": -2,
		},
		Light: &LightPref{GreenLightNightBonus: 2},
		TimeOfDay: map[string]float64{
			"dawn": 3, "morning": 3, "midday": 1, "afternoon": 2, "evening": 3, "night": 2,
		},
		SolunarMajor: 2, SolunarMinor: 1,
		CurrentStructureBonus: 3,
	},
	"flounder": {
		Tier:        1,
		Name:        "Flounder",
		PeakMonths:  []int{4, 5, 6, 7, 8, 9, 10},
		SpawnMonths: []int{10, 11, 12},
		WaterTemp: &WaterTempPref{
			IdealMin: 65, IdealMax: 75,
			WorkableMin: 58, WorkableMax: 82,
			BonusInIdeal: 5, PenaltyOutOfWorkable: -5, PenaltyColdSnap: -7,
		},
		TideStage: map[string]float64{
			"incoming": 3, "outgoing": 4, "high": -1, "low": 0, "slack": -6,
		},
		CurrentSpeed: &CurrentSpeedPref{
			IdealMin: 0.3, IdealMax: 1.2, BonusMoving: 4, PenaltySlack: -5,
		},
		WaterClarity: map[string]float64{
			"clear": 6, "slightly_stained": 2, "stained": -2, "muddy": -7, "chalky": -6,
		},
		Wind: &WindPref{
			FavorableDirections:      []string{"SE", "S", "SW"},
			UnfavorableDirections:    []string{"N", "NW"},
			LightIdealMax:            10,
			BonusFavorable:           2,
			PenaltyUnfavorableStrong: -5,
		},
		Pressure: map[string]float64{
			"falling": 3, "stable": 2, "rising_slow": 0, "rising_fast": -4,
		},
		Salinity: &SalinityPref{
			PreferredMin: 18, PreferredMax: 32, PenaltyRapidChange: -3,
		},
		Structure: map[string]float64{
			"rubble": 6, "sand_mud_transitions": 5, "piling_bases": 5, "drop_offs": 4, "open_water": -3,
		},
		Light: &LightPref{GreenLightNightBonus: 3, RequiresDecentClarity: true},
		TimeOfDay: map[string]float64{
			"dawn": 4, "morning": 3, "midday": 0, "afternoon": 1, "evening": 4, "night": 2,
		},
		SolunarMajor: 2, SolunarMinor: 1,
	},
	"sheepshead": {
		Tier:        1,
		Name:        "Sheepshead",
		PeakMonths:  []int{12, 1, 2, 3, 4},
		SpawnMonths: []int{3, 4, 5},
		WaterTemp: &WaterTempPref{
			IdealMin: 55, IdealMax: 70,
			WorkableMin: 48, WorkableMax: 78,
			BonusInIdeal: 4, PenaltyOutOfWorkable: -3,
		},
		TideStage: map[string]float64{
			"incoming": 3, "outgoing": 3, "high": 1, "low": 1, "slack": -3,
		},
		CurrentSpeed: &CurrentSpeedPref{
			IdealMin: 0.2, IdealMax: 1.0, BonusMoving: 3, PenaltySlack: -2,
		},
		WaterClarity: map[string]float64{
			"clear": 5, "slightly_stained": 2, "stained": -1, "muddy": -4, "chalky": -4,
		},
		Wind: &WindPref{
			LightIdealMax:            20,
			BonusFavorable:           1,
			PenaltyUnfavorableStrong: -1,
		},
		Pressure: map[string]float64{
			"falling": 2, "stable": 1, "rising_slow": 1, "rising_fast": -1,
		},
		Salinity: &SalinityPref{
			PreferredMin: 15, PreferredMax: 32, Tolerant: true, PenaltyRapidChange: -1,
		},
		Structure: map[string]float64{
			"pilings": 6, "barnacles": 6, "vertical_structure": 6, "rubble": 4, "open_water": -6,
		},
		Light: &LightPref{GreenLightNightBonus: 1},
		TimeOfDay: map[string]float64{
			"dawn": 3, "morning": 3, "midday": 2, "afternoon": 2, "evening": 2, "night": 0,
		},
		SolunarMajor: 1, SolunarMinor: 1,
		CurrentStructureBonus: 4,
	},
	"black_drum": {
		Tier:        1,
		Name:        "Black Drum",
		PeakMonths:  []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		SpawnMonths: []int{3, 4, 5},
		WaterTemp: &WaterTempPref{
			IdealMin: 60, IdealMax: 75,
			WorkableMin: 50, WorkableMax: 85,
			BonusInIdeal: 3, PenaltyOutOfWorkable: -2,
		},
		TideStage: map[string]float64{
			"incoming": 2, "outgoing": 2, "high": 1, "low": 1, "slack": -2,
		},
		CurrentSpeed: &CurrentSpeedPref{
			IdealMin: 0.2, IdealMax: 1.2, BonusMoving: 2, PenaltySlack: -2,
		},
		WaterClarity: map[string]float64{
			"clear": 2, "slightly_stained": 2, "stained": 1, "muddy": 0, "chalky": -1,
		},
		Wind: &WindPref{
			LightIdealMax:  18,
			BonusFavorable: 1,
		},
		Pressure: map[string]float64{
			"falling": 1, "stable": 1, "rising_slow": 0, "rising_fast": 0,
		},
		Salinity: &SalinityPref{
			PreferredMin: 12, PreferredMax: 35, Tolerant: true,
		},
		Structure: map[string]float64{
			"pilings": 4, "mud_bottom": 4, "rubble": 4, "deep_holes": 3, "open_water": -1,
		},
		Light: &LightPref{GreenLightNightBonus: 1},
		TimeOfDay: map[string]float64{
			"dawn": 2, "morning": 2, "midday": 2, "afternoon": 2, "evening": 2, "night": 1,
		},
		SolunarMajor: 1, SolunarMinor: 1,
		DepthPreference: "deep",
	},

	// Tier 2 species keep simplified profiles.
	"croaker": {
		Tier: 2,
		Name: "Croaker",
		TideStage: map[string]float64{
			"incoming": 3, "outgoing": 3, "slack": -2,
		},
		Structure: map[string]float64{
			"mud_bottom": 3, "current_edges": 3,
		},
	},
	"white_trout": {
		Tier: 2,
		Name: "White Trout",
		TimeOfDay: map[string]float64{
			"evening": 4, "night": 5, "dawn": 2,
		},
		Light: &LightPref{GreenLightNightBonus: 6, RequiresDecentClarity: true},
		WaterClarity: map[string]float64{
			"clear": 4, "slightly_stained": 2, "muddy": -4,
		},
	},
	"menhaden": {
		Tier: 2,
		Name: "Menhaden",
		Type: "bait",
		Wind: &WindPref{
			FavorableDirections: []string{"SE", "S", "SW"},
		},
	},
	"mullet": {
		Tier: 2,
		Name: "Mullet",
		Type: "bait",
		TideStage: map[string]float64{
			"incoming": 4,
		},
	},
	"live_shrimp": {
		Tier:  2,
		Name:  "Live Shrimp",
		Type:  "bait",
		Light: &LightPref{GreenLightNightBonus: 8},
		TideStage: map[string]float64{
			"incoming": 5,
		},
		WaterTemp: &WaterTempPref{IdealMin: 65},
	},
	"fiddler_crab": {
		Tier:       2,
		Name:       "Fiddler Crab",
		Type:       "bait",
		PeakMonths: []int{12, 1, 2, 3},
	},
	"jack_crevalle": {
		Tier:          2,
		Name:          "Jack Crevalle",
		Type:          "predator",
		PenaltyToPrey: -6,
	},
}

// Profile returns the behavior profile for a species, or nil when the
// species has none.
func Profile(species string) *BehaviorProfile {
	return speciesProfiles[species]
}

// PreySpecies are affected by predator penalties.
var preySpecies = map[string]bool{
	"speckled_trout": true,
	"white_trout":    true,
	"menhaden":       true,
	"mullet":         true,
	"live_shrimp":    true,
}

// IsPreySpecies reports whether predator sightings penalize this species.
func IsPreySpecies(species string) bool {
	return preySpecies[species]
}
