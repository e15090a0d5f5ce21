// Package strength maps a wallet's staking weight and the network weight to a
// seeding level, a gauge value and an estimate of the weight needed for the
// next level.
package strength

import (
	"fmt"
)

// Level is one tier of the seeding ladder.
type Level struct {
	Name string
	// DisplayValue is the gauge fill percentage, 0-100.
	DisplayValue int
	// Threshold is the inclusive upper bound of the strength ratio for this level.
	Threshold float64
}

// Table is an ordered level ladder. Thresholds and display values never decrease.
type Table []Level

// DefaultLevels is the seeding ladder shown on the overview screen.
var DefaultLevels = Table{
	{Name: "Not Seeding", DisplayValue: 0, Threshold: 0},
	{Name: "Leecher", DisplayValue: 10, Threshold: 0.00001},
	{Name: "Novice Seeder", DisplayValue: 20, Threshold: 0.0001},
	{Name: "Junior Seeder", DisplayValue: 25, Threshold: 0.001},
	{Name: "Rising Seeder", DisplayValue: 35, Threshold: 0.02},
	{Name: "Medium Seeder", DisplayValue: 40, Threshold: 0.05},
	{Name: "Essential Seeder", DisplayValue: 45, Threshold: 0.1},
	{Name: "Hardcore Seeder", DisplayValue: 55, Threshold: 0.15},
	{Name: "Pro Seeder", DisplayValue: 65, Threshold: 0.2},
	{Name: "Elite Contributor", DisplayValue: 75, Threshold: 0.25},
	{Name: "Master Contributor", DisplayValue: 100, Threshold: 1.0},
}

// Count returns the number of levels.
func (t Table) Count() int {
	return len(t)
}

// LevelAt returns the level at index i. It panics if i is out of range.
func (t Table) LevelAt(i int) Level {
	return t[i]
}

// ThresholdAt returns the threshold of the level at index i. It panics if i is out of range.
func (t Table) ThresholdAt(i int) float64 {
	return t[i].Threshold
}

// Last returns the index of the top level.
func (t Table) Last() int {
	return len(t) - 1
}

// Validate checks the ladder invariants: first threshold 0, last threshold 1,
// thresholds in [0,1] and display values in [0,100], both non-decreasing.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("level table is empty")
	}
	if t[0].Threshold != 0 {
		return fmt.Errorf("first threshold must be 0, got %v", t[0].Threshold)
	}
	if t[len(t)-1].Threshold != 1 {
		return fmt.Errorf("last threshold must be 1, got %v", t[len(t)-1].Threshold)
	}
	for i, l := range t {
		if l.Threshold < 0 || l.Threshold > 1 {
			return fmt.Errorf("level %d (%s): threshold %v out of [0,1]", i, l.Name, l.Threshold)
		}
		if l.DisplayValue < 0 || l.DisplayValue > 100 {
			return fmt.Errorf("level %d (%s): display value %d out of [0,100]", i, l.Name, l.DisplayValue)
		}
		if i == 0 {
			continue
		}
		prev := t[i-1]
		if l.Threshold < prev.Threshold {
			return fmt.Errorf("level %d (%s): threshold %v below previous %v", i, l.Name, l.Threshold, prev.Threshold)
		}
		if l.DisplayValue < prev.DisplayValue {
			return fmt.Errorf("level %d (%s): display value %d below previous %d", i, l.Name, l.DisplayValue, prev.DisplayValue)
		}
	}
	return nil
}
