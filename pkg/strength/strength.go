package strength

import (
	"errors"
	"fmt"
)

var (
	// ErrMaxLevel is returned when asking for the level above the top one.
	ErrMaxLevel = errors.New("already at max level")
	// ErrNoEstimate is returned when there is no competing network weight to project against.
	ErrNoEstimate = errors.New("no estimate available")
)

// singularity is the target ratio where the estimate's denominator vanishes.
const (
	singularity      = 0.5
	singularityNudge = 0.0001
)

// ComputeStrength returns own / (own + network), or 0 when both weights are zero.
func ComputeStrength(own, network float64) float64 {
	if own == 0 && network == 0 {
		return 0
	}
	return own / (own + network)
}

// Classify returns the index of the first level whose threshold is >= strength.
// Zero or negative strength maps to level 0, and so does a strength above every
// threshold.
func (t Table) Classify(strength float64) int {
	for i, l := range t {
		if strength > 0 && strength <= l.Threshold {
			return i
		}
	}
	return 0
}

// NextThreshold returns the threshold of the level above idx.
func (t Table) NextThreshold(idx int) (float64, error) {
	if idx < 0 || idx >= len(t) {
		panic(fmt.Sprintf("strength: level index %d out of range [0,%d)", idx, len(t)))
	}
	if idx == t.Last() {
		return 0, ErrMaxLevel
	}
	return t[idx+1].Threshold, nil
}

// EstimateWeightToNextLevel returns the additional own weight needed to lift
// strength to the next level's threshold. New own weight is assumed to join the
// network weight as well, since the network total includes the wallet's stake.
func (t Table) EstimateWeightToNextLevel(own, network, strength float64) (float64, error) {
	if network <= 0 || network == own {
		return 0, ErrNoEstimate
	}
	target, err := t.NextThreshold(t.Classify(strength))
	if err != nil {
		return 0, err
	}
	if target == singularity {
		target += singularityNudge
	}
	return (own - target*(own+network)) / (2*target - 1), nil
}

// Classify classifies strength against DefaultLevels.
func Classify(strength float64) int {
	return DefaultLevels.Classify(strength)
}

// EstimateWeightToNextLevel estimates against DefaultLevels.
func EstimateWeightToNextLevel(own, network, strength float64) (float64, error) {
	return DefaultLevels.EstimateWeightToNextLevel(own, network, strength)
}
