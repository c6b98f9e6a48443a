package rules

// Beacon is one corridor cell and the weight pulling units toward it.
type Beacon struct {
	Cell     int `json:"cell"`
	Strength int `json:"strength"`
}

// BeaconMap is the per-turn corridor weighting. It remembers insertion order
// so the emitted directive is deterministic.
type BeaconMap struct {
	order    []int
	strength map[int]int
}

func NewBeaconMap() *BeaconMap {
	return &BeaconMap{strength: make(map[int]int)}
}

// Add records a beacon, keeping the stronger value when the cell is already
// present.
func (m *BeaconMap) Add(cell, strength int) {
	cur, ok := m.strength[cell]
	if !ok {
		m.order = append(m.order, cell)
		m.strength[cell] = strength
		return
	}
	if strength > cur {
		m.strength[cell] = strength
	}
}

func (m *BeaconMap) Len() int { return len(m.order) }

// Strength returns the recorded strength of cell and whether it is present.
func (m *BeaconMap) Strength(cell int) (int, bool) {
	s, ok := m.strength[cell]
	return s, ok
}

// Beacons returns the entries in insertion order.
func (m *BeaconMap) Beacons() []Beacon {
	out := make([]Beacon, 0, len(m.order))
	for _, c := range m.order {
		out = append(out, Beacon{Cell: c, Strength: m.strength[c]})
	}
	return out
}
