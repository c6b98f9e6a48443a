package rules

// Doctrine holds the tunable knobs of the selection engine. The defaults
// reproduce the reference behavior; operators may override them in config.
type Doctrine struct {
	Name string `yaml:"name" json:"name"`

	// Resource ratio thresholds feeding the prioritizer.
	GrowthThreshold     float64 `yaml:"growth_threshold" json:"growth_threshold"`
	ExtractionThreshold float64 `yaml:"extraction_threshold" json:"extraction_threshold"`

	// Optional expr overrides for the two prioritizer conditions. Empty means
	// the conditions are generated from the thresholds above.
	GrowthCondition     string `yaml:"growth_condition" json:"growth_condition"`
	ExtractionCondition string `yaml:"extraction_condition" json:"extraction_condition"`

	// Minimum units per corridor cell before a new target is approved.
	OpeningGarrison   int `yaml:"opening_garrison" json:"opening_garrison"`     // nothing fixed yet
	Garrison          int `yaml:"garrison" json:"garrison"`                     // default once targets exist
	SecondaryGarrison int `yaml:"secondary_garrison" json:"secondary_garrison"` // bases other than the one all targets route through

	BeaconStrength     int `yaml:"beacon_strength" json:"beacon_strength"`
	FrontierMultiplier int `yaml:"frontier_multiplier" json:"frontier_multiplier"` // applied to an unoccupied path end
}

// DefaultDoctrine returns the reference tuning.
func DefaultDoctrine() Doctrine {
	return Doctrine{
		Name:                "Reference",
		GrowthThreshold:     0.7,
		ExtractionThreshold: 0.7,
		OpeningGarrison:     1,
		Garrison:            3,
		SecondaryGarrison:   1,
		BeaconStrength:      1,
		FrontierMultiplier:  2,
	}
}

// Validate clamps all knobs to their valid ranges.
func (d *Doctrine) Validate() {
	d.GrowthThreshold = clamp(d.GrowthThreshold, 0, 1)
	d.ExtractionThreshold = clamp(d.ExtractionThreshold, 0, 1)
	d.OpeningGarrison = clampInt(d.OpeningGarrison, 1, 100)
	d.Garrison = clampInt(d.Garrison, 1, 100)
	d.SecondaryGarrison = clampInt(d.SecondaryGarrison, 1, 100)
	d.BeaconStrength = clampInt(d.BeaconStrength, 1, 100)
	d.FrontierMultiplier = clampInt(d.FrontierMultiplier, 1, 10)
}

// clampInt restricts v to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// clamp restricts v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
