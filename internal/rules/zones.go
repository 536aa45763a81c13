package rules

// DockZone describes one of the five fishing zones around the dock.
// The walkway runs east-west: zones 1 and 3 sit north of it, zones 2 and 4
// south, and zone 5 spans the full width to the east.
type DockZone struct {
	ID          int
	Name        string
	Description string
	MinDepthFt  int
	MaxDepthFt  int
	Position    string
	Structure   string
	Features    []string
	Lights      bool
}

var dockZones = map[int]DockZone{
	1: {
		ID:          1,
		Name:        "Zone 1",
		Description: "Northwest quadrant - above walkway",
		MinDepthFt:  2, MaxDepthFt: 4,
		Position:  "north",
		Structure: "old_pilings_north_edge",
		Features:  []string{"concrete_rubble"},
	},
	2: {
		ID:          2,
		Name:        "Zone 2",
		Description: "Southwest quadrant - below walkway",
		MinDepthFt:  2, MaxDepthFt: 4,
		Position:  "south",
		Structure: "none",
	},
	3: {
		ID:          3,
		Name:        "Zone 3",
		Description: "Northeast quadrant - above walkway",
		MinDepthFt:  3, MaxDepthFt: 6,
		Position:  "north",
		Structure: "old_pilings_north_edge",
	},
	4: {
		ID:          4,
		Name:        "Zone 4",
		Description: "Southeast quadrant - below walkway",
		MinDepthFt:  3, MaxDepthFt: 6,
		Position:  "south",
		Structure: "green_light_only",
		Features:  []string{"green_underwater_light"},
		Lights:    true,
	},
	5: {
		ID:          5,
		Name:        "Zone 5",
		Description: "Eastern zone - full width beyond zones 3&4",
		MinDepthFt:  5, MaxDepthFt: 7,
		Position:  "east",
		Structure: "dual_pilings",
		Features:  []string{"north_piling_line", "center_piling_line"},
	},
}

// ZoneIDs lists the zones in order.
var ZoneIDs = []int{1, 2, 3, 4, 5}

// Zone returns the geometry for a zone ID.
func Zone(id int) (DockZone, bool) {
	z, ok := dockZones[id]
	return z, ok
}

// Zones returns all zones in ID order.
func Zones() []DockZone {
	out := make([]DockZone, 0, len(ZoneIDs))
	for _, id := range ZoneIDs {
		out = append(out, dockZones[id])
	}
	return out
}

// HasPilings reports whether the zone carries piling structure.
func (z DockZone) HasPilings() bool {
	return z.Structure == "old_pilings_north_edge" || z.Structure == "dual_pilings"
}
