package attr

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput marks a value outside its documented domain.
// Converters never return it; Validate reports it so callers can warn.
var ErrInvalidInput = errors.New("invalid attribute input")

// Validate checks a against the converter domains and returns one wrapped
// ErrInvalidInput per offending field, or nil.
func Validate(a Attributes) error {
	inf := math.Inf(1)
	checks := []struct {
		name   string
		value  float64
		lo, hi float64
	}{
		{"agility", a.Agility, 0, inf},
		{"weaponAtk", a.WeaponAtk, 0, inf},
		{"moduleAtk", a.ModuleAtk, 0, inf},
		{"atkBonus", a.AtkBonus, -100, inf},
		{"crit", a.Crit, 0, inf},
		{"luck", a.Luck, 0, inf},
		{"haste", a.Haste, 0, inf},
		{"baseHaste", a.BaseHaste, 0, 100},
		{"mastery", a.Mastery, 0, inf},
		{"versatility", a.Versatility, 0, inf},
		{"stamina", a.Stamina, 0, inf},
		{"hpBase", a.HPBase, 0, inf},
		{"elementPower", a.ElementPower, 0, inf},
		{"allElementPower", a.AllElementPower, 0, inf},
	}

	var errs []error
	for _, c := range checks {
		if validInput(c.value, c.lo, c.hi) {
			continue
		}
		if math.IsInf(c.hi, 1) {
			errs = append(errs, fmt.Errorf("%w: %s=%v must be >= %v", ErrInvalidInput, c.name, c.value, c.lo))
		} else {
			errs = append(errs, fmt.Errorf("%w: %s=%v must be in [%v,%v]", ErrInvalidInput, c.name, c.value, c.lo, c.hi))
		}
	}
	return errors.Join(errs...)
}
