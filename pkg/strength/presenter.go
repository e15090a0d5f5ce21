package strength

import (
	"fmt"
)

// BarTooltip prefixes every advisory text.
const BarTooltip = "Proof of Seeding - "

// DefaultUnit is the noun used for weight amounts in the advisory.
const DefaultUnit = "coins"

// Result is the display-ready outcome of a strength evaluation.
type Result struct {
	LevelName  string  `json:"level_name"`
	GaugeValue int     `json:"gauge_value"`
	Advisory   string  `json:"advisory"`
	Strength   float64 `json:"strength"`
	LevelIndex int     `json:"level_index"`
	// NextLevel and Estimate are empty when no projection applies.
	NextLevel string   `json:"next_level,omitempty"`
	Estimate  *float64 `json:"estimate,omitempty"`
}

// HasEstimate reports whether the result carries a next-level projection.
func (r Result) HasEstimate() bool {
	return r.Estimate != nil
}

// Present evaluates the weights against t and composes the display result.
func (t Table) Present(own, network float64) Result {
	return t.PresentWithUnit(own, network, DefaultUnit)
}

// PresentWithUnit is Present with a custom noun for the estimate amount.
func (t Table) PresentWithUnit(own, network float64, unit string) Result {
	s := ComputeStrength(own, network)
	idx := t.Classify(s)
	level := t.LevelAt(idx)

	res := Result{
		LevelName:  level.Name,
		GaugeValue: level.DisplayValue,
		Advisory:   BarTooltip,
		Strength:   s,
		LevelIndex: idx,
	}

	if idx < t.Last() && network > 0 {
		next := t.LevelAt(idx + 1)
		res.NextLevel = next.Name
		est, err := t.EstimateWeightToNextLevel(own, network, s)
		if err != nil {
			// Own weight equal to the network weight: name the next level, omit the amount.
			res.Advisory += fmt.Sprintf(" Next level: %s.", next.Name)
			return res
		}
		res.Estimate = &est
		res.Advisory += fmt.Sprintf(" Next level: %s, in about %.0f %s.", next.Name, est, unit)
	}
	return res
}

// Present evaluates the weights against DefaultLevels.
func Present(own, network float64) Result {
	return DefaultLevels.Present(own, network)
}
