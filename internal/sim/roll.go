package sim

import (
	"errors"
	"math"
)

var ErrInvalidProb = errors.New("invalid probability p; must be 0..1")

// Roll reports whether an event with probability p happens.
// p <= 0 never hits, p >= 1 always hits, otherwise rng.Float64() < p.
func Roll(p float64, rng RandomSource) (bool, error) {
	if err := validateProb(p); err != nil {
		return false, err
	}
	if p <= 0 {
		return false, nil
	}
	if p >= 1 {
		return true, nil
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return rng.Float64() < p, nil
}

func validateProb(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 || p > 1 {
		return ErrInvalidProb
	}
	return nil
}

// CritChance turns a crit rate percentage into a probability clamped to [0, 1].
func CritChance(percent float64) float64 {
	if math.IsNaN(percent) {
		return 0
	}
	return math.Min(1, math.Max(0, percent/100))
}
