package generator

import (
	"errors"
	"math/rand/v2"
)

// Weights tune the weighted random choices of the progression phase.
type Weights struct {
	// ProgressionBase is every progression candidate's base weight.
	ProgressionBase float64 `yaml:"progression_base"`
	// PerUnlock is added per node the candidate would open up.
	PerUnlock float64 `yaml:"per_unlock"`
	// LocationBase is every available location's base weight.
	LocationBase float64 `yaml:"location_base"`
	// Newness is added per placement step since the location was first seen
	// reachable, so recently opened locations are favoured.
	Newness float64 `yaml:"newness"`
}

// DefaultWeights returns the weights used when none are configured.
func DefaultWeights() Weights {
	return Weights{
		ProgressionBase: 1,
		PerUnlock:       1,
		LocationBase:    1,
		Newness:         0.5,
	}
}

// Validate rejects negative weights and a zero base, which would leave
// nothing to pick from.
func (w Weights) Validate() error {
	if w.ProgressionBase < 0 || w.PerUnlock < 0 || w.LocationBase < 0 || w.Newness < 0 {
		return errors.New("weights must not be negative")
	}
	if w.ProgressionBase == 0 || w.LocationBase == 0 {
		return errors.New("base weights must be positive")
	}
	return nil
}

// weightedPick returns an index into weights with probability proportional
// to its weight, or -1 when no weight is positive.
func weightedPick(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	x := rng.Float64() * total
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		if x < w {
			return i
		}
		x -= w
	}
	return last
}
