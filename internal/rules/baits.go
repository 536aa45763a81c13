package rules

import "strings"

// BaitProfile describes a catchable bait species: where it stacks, when it
// is active, and how to catch it. The weights feed the bait activity score.
type BaitProfile struct {
	Key         string
	DisplayName string
	Description string

	// Scoring weights, summing to 1.
	WeightTideMovement    float64
	WeightCurrentStrength float64
	WeightClarity         float64
	WeightTimeOfDay       float64
	WeightZonePreference  float64

	// Preferred condition values.
	TideStates      []string
	CurrentStrength []string
	Clarity         []string
	TimesOfDay      []string
	Zones           []int

	ZoneNotes      string
	TidePreference string
	TimePreference string
	ClarityNotes   string

	Methods    []string
	HowToCatch []string
	BestFor    []string
	Tips       []string
}

// CatchableBaits lists the bait species that can be caught at or near the
// dock, in display order.
var CatchableBaits = []string{
	"live_shrimp",
	"live_fish",
	"mud_minnows",
	"pinfish",
	"menhaden",
	"fiddler_crabs",
}

var baitProfiles = map[string]*BaitProfile{
	"live_shrimp": {
		Key:         "live_shrimp",
		DisplayName: "Live Shrimp",
		Description: "The #1 most versatile bait in Mobile Bay. Live shrimp catch nearly every inshore species and are consistently productive year-round.",
		WeightTideMovement:    0.30,
		WeightCurrentStrength: 0.25,
		WeightClarity:         0.15,
		WeightTimeOfDay:       0.15,
		WeightZonePreference:  0.15,
		TideStates:      []string{"rising", "falling"},
		CurrentStrength: []string{"moderate", "strong"},
		Clarity:         []string{"clear", "lightly_stained", "muddy"},
		TimesOfDay:      []string{"night", "dawn", "dusk", "day"},
		Zones:           []int{2, 3, 4},
		ZoneNotes:       "Look around grass beds, dock pilings, and mid-depth areas. Shrimp move with tide into shallows at night.",
		TidePreference:  "Moving tide (rising or falling). Shrimp are most active during tidal flow.",
		TimePreference:  "Night and dawn are prime time. Use lights to attract shrimp at night.",
		ClarityNotes:    "Works in any water clarity. In muddy water, use scent to help fish find them.",
		Methods:         []string{"cast net", "dip net", "trap"},
		HowToCatch: []string{
			"Cast net over grass beds and dock lights at night",
			"Use a dip net under dock lights after dark",
			"Shrimp traps baited with fish heads work well",
			"Look for shrimp \"popping\" on the surface at dusk",
		},
		BestFor: []string{"speckled_trout", "redfish", "flounder", "sheepshead", "white_trout", "croaker"},
		Tips: []string{
			"Keep alive in aerated bucket or livewell",
			"Hook through tail for bottom fishing, head for cork fishing",
			"Use 1/0 to 2/0 circle hooks for best hookups",
			"Change out dead shrimp frequently - live action is key",
		},
	},
	"live_fish": {
		Key:         "live_fish",
		DisplayName: "Live Bait Fish",
		Description: "Live baitfish (finger mullet, mud minnows, pinfish) are deadly for larger predators like big trout, redfish, and flounder.",
		WeightTideMovement:    0.25,
		WeightCurrentStrength: 0.30,
		WeightClarity:         0.20,
		WeightTimeOfDay:       0.15,
		WeightZonePreference:  0.10,
		TideStates:      []string{"rising", "falling"},
		CurrentStrength: []string{"moderate", "strong"},
		Clarity:         []string{"clear", "lightly_stained"},
		TimesOfDay:      []string{"dawn", "dusk", "day"},
		Zones:           []int{3, 4, 5},
		ZoneNotes:       "Live baitfish are found in deeper water around structure. Schools move with current and baitfish activity.",
		TidePreference:  "Moving tide when predator fish are feeding. Strong current activates gamefish.",
		TimePreference:  "Dawn and dusk feeding periods are best. Works well during midday too.",
		ClarityNotes:    "Best in clear to lightly stained water where predators can see them swimming.",
		Methods:         []string{"cast net", "sabiki rig", "trap"},
		HowToCatch: []string{
			"Cast net around dock and shallow areas for mullet",
			"Use sabiki rigs or small hooks for mud minnows and pinfish",
			"Minnow traps baited with bread or crackers",
			"Look for baitfish schools dimpling the surface",
		},
		BestFor: []string{"speckled_trout", "redfish", "flounder", "jack_crevalle", "shark"},
		Tips: []string{
			"Keep in large aerated livewell with frequent water changes",
			"Hook through lips or back for free-lining",
			"Use larger hooks (2/0-4/0) for bigger baits",
			"Match bait size to target species - bigger bait, bigger fish",
		},
	},
	"mud_minnows": {
		Key:         "mud_minnows",
		DisplayName: "Mud Minnows",
		Description: "Hardy, active baitfish that excel for flounder and trout. They stay alive longer than most live baits and have great action.",
		WeightTideMovement:    0.30,
		WeightCurrentStrength: 0.25,
		WeightClarity:         0.15,
		WeightTimeOfDay:       0.20,
		WeightZonePreference:  0.10,
		TideStates:      []string{"falling", "slack"},
		CurrentStrength: []string{"weak", "moderate"},
		Clarity:         []string{"lightly_stained", "muddy"},
		TimesOfDay:      []string{"day", "dusk"},
		Zones:           []int{3, 4, 5},
		ZoneNotes:       "Mud minnows are found in muddy, grassy bottoms. They burrow in mud during low tide.",
		TidePreference:  "Falling tide or low slack. They're active when tide is dropping.",
		TimePreference:  "Daytime and evening. Less effective at night.",
		ClarityNotes:    "Prefer stained to muddy water. They're bottom-dwellers.",
		Methods:         []string{"minnow trap", "dip net", "small hook"},
		HowToCatch: []string{
			"Use minnow traps in muddy shallows",
			"Dip net around grass edges at low tide",
			"Small hook with tiny piece of shrimp",
			"Check traps after 1-2 hours",
		},
		BestFor: []string{"flounder", "speckled_trout", "black_drum"},
		Tips: []string{
			"Extremely hardy - can survive hours in a bucket",
			"Hook through lips for best action",
			"Slow presentations work best",
			"Great for targeting flounder on bottom",
		},
	},
	"pinfish": {
		Key:         "pinfish",
		DisplayName: "Pinfish",
		Description: "Feisty, aggressive baitfish perfect for larger predators. Their spiny fins and active swimming make them irresistible.",
		WeightTideMovement:    0.20,
		WeightCurrentStrength: 0.25,
		WeightClarity:         0.25,
		WeightTimeOfDay:       0.20,
		WeightZonePreference:  0.10,
		TideStates:      []string{"rising", "falling"},
		CurrentStrength: []string{"moderate", "strong"},
		Clarity:         []string{"clear", "lightly_stained"},
		TimesOfDay:      []string{"day", "dusk"},
		Zones:           []int{3, 4},
		ZoneNotes:       "Pinfish hang around dock pilings, rocks, and structure. They're aggressive and easy to catch.",
		TidePreference:  "Any tide works. Pinfish are consistent biters.",
		TimePreference:  "Daytime is best. They slow down at night.",
		ClarityNotes:    "Clear to lightly stained water. They're visual feeders.",
		Methods:         []string{"sabiki rig", "small hook"},
		HowToCatch: []string{
			"Sabiki rigs around dock pilings are deadly",
			"Small hook (#6-#10) with tiny shrimp piece",
			"Drop near structure and they'll bite immediately",
			"Can catch dozens in minutes",
		},
		BestFor: []string{"speckled_trout", "redfish", "flounder"},
		Tips: []string{
			"Very hardy - survive well in livewells",
			"Hook through back behind dorsal fin",
			"Watch for spines - they'll stick you",
			"Use heavier tackle - they attract big fish",
		},
	},
	"menhaden": {
		Key:         "menhaden",
		DisplayName: "Menhaden (Pogies)",
		Description: "Oily, strong-scented baitfish that drive predators crazy. Best for big trout, redfish, and jacks when schools are present.",
		WeightTideMovement:    0.30,
		WeightCurrentStrength: 0.30,
		WeightClarity:         0.15,
		WeightTimeOfDay:       0.15,
		WeightZonePreference:  0.10,
		TideStates:      []string{"rising", "falling"},
		CurrentStrength: []string{"strong"},
		Clarity:         []string{"clear", "lightly_stained"},
		TimesOfDay:      []string{"dawn", "day"},
		Zones:           []int{4, 5},
		ZoneNotes:       "Pogies school in open water. Look for surface activity and diving birds indicating schools.",
		TidePreference:  "Strong moving tide when schools are feeding.",
		TimePreference:  "Dawn and morning hours when schools are most active.",
		ClarityNotes:    "Clear to lightly stained water. They're sight feeders.",
		Methods:         []string{"cast net"},
		HowToCatch: []string{
			"Look for nervous water and bait balls",
			"Cast net is the only way - schools move fast",
			"Watch for birds diving on bait schools",
			"Early morning is best for catching pogies",
		},
		BestFor: []string{"speckled_trout", "redfish", "jack_crevalle", "mackerel"},
		Tips: []string{
			"Very fragile - die quickly, keep well-aerated",
			"Their oil creates scent trail that attracts fish",
			"Can be cut up for cut bait when they die",
			"Bigger pogies (4-6\") catch bigger fish",
		},
	},
	"fiddler_crabs": {
		Key:         "fiddler_crabs",
		DisplayName: "Fiddler Crabs",
		Description: "The absolute best bait for sheepshead. Also works for black drum and redfish around structure.",
		WeightTideMovement:    0.15,
		WeightCurrentStrength: 0.10,
		WeightClarity:         0.20,
		WeightTimeOfDay:       0.25,
		WeightZonePreference:  0.30,
		TideStates:      []string{"slack", "rising"},
		CurrentStrength: []string{"weak", "moderate"},
		Clarity:         []string{"clear", "lightly_stained"},
		TimesOfDay:      []string{"day"},
		Zones:           nil, // only on muddy shorelines away from the dock
		ZoneNotes:       "NOT found at the dock. Look for them on muddy shorelines and marsh banks away from the dock. Most active during low tide.",
		TidePreference:  "Low tide for catching them. Fish them on rising tide near structure.",
		TimePreference:  "Daytime fishing. Crabs are most active during the day.",
		ClarityNotes:    "Clear to lightly stained water near structure.",
		Methods:         []string{"hand catch", "scoop"},
		HowToCatch: []string{
			"Walk muddy banks at low tide and grab them by hand",
			"Use a small scoop or bucket to corner them",
			"They live in burrows - watch for movement",
			"Best caught 1-2 hours before low tide",
		},
		BestFor: []string{"sheepshead", "black_drum", "redfish"},
		Tips: []string{
			"Keep alive in bucket with damp grass or newspaper",
			"Hook through back shell from side to side",
			"Remove claws for smaller fish",
			"Fish tight to structure - that's where sheepshead are",
		},
	},
}

// BaitProfileFor returns the profile for a bait key, or nil when unknown.
func BaitProfileFor(key string) *BaitProfile {
	return baitProfiles[key]
}

// BaitDisplayName returns the display name for a bait key.
func BaitDisplayName(key string) string {
	if p, ok := baitProfiles[key]; ok {
		return p.DisplayName
	}
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
