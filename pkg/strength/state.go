package strength

import "fmt"

// State holds the latest weights of one wallet. It has a single owner and is
// not safe for concurrent use.
type State struct {
	OwnWeight     float64
	NetworkWeight float64

	table Table
	unit  string
}

// NewState returns a State evaluated against table. A nil table means
// DefaultLevels; any other table must pass Validate.
func NewState(table Table, unit string) (*State, error) {
	if table == nil {
		table = DefaultLevels
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid level table: %w", err)
	}
	if unit == "" {
		unit = DefaultUnit
	}
	return &State{table: table, unit: unit}, nil
}

// Update stores the weights and returns the recomputed result.
func (s *State) Update(own, network float64) Result {
	s.OwnWeight = own
	s.NetworkWeight = network
	return s.Result()
}

// SetUnit changes the noun used in the advisory.
func (s *State) SetUnit(unit string) {
	if unit != "" {
		s.unit = unit
	}
}

// CurrentStrength recomputes the ratio from the stored weights.
func (s *State) CurrentStrength() float64 {
	return ComputeStrength(s.OwnWeight, s.NetworkWeight)
}

// Result evaluates the stored weights.
func (s *State) Result() Result {
	return s.table.PresentWithUnit(s.OwnWeight, s.NetworkWeight, s.unit)
}
