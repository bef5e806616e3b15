package attr

import "math"

// Converter maps raw character attributes to effective percentages and back.
// None of its methods fail: out-of-domain input yields the documented fallback.
type Converter struct {
	c Constants
}

// NewConverter returns a converter over the given constants.
func NewConverter(c Constants) Converter {
	return Converter{c: c}
}

// Default returns a converter over DefaultConstants.
func Default() Converter {
	return NewConverter(DefaultConstants())
}

// Constants returns the coefficients in use.
func (v Converter) Constants() Constants { return v.c }

// Percent converts raw through the curve of kind k. Unknown kinds return 0.
func (v Converter) Percent(k Kind, raw float64) float64 {
	curve, ok := v.c.Curve(k)
	if !ok {
		return 0
	}
	return curve.Percent(raw)
}

// Raw inverts Percent for kind k. Unknown kinds return 0.
func (v Converter) Raw(k Kind, percent float64) float64 {
	curve, ok := v.c.Curve(k)
	if !ok {
		return 0
	}
	return curve.Raw(percent)
}

// CritPercent returns total crit %. With pursuit active the curve output is scaled by 1.24.
func (v Converter) CritPercent(raw float64, pursuit bool) float64 {
	p := v.Percent(KindCrit, raw)
	if pursuit {
		p *= v.c.PursuitCritModifier
	}
	return p
}

// CritRaw inverts CritPercent; the pursuit modifier is divided out before the curve.
func (v Converter) CritRaw(percent float64, pursuit bool) float64 {
	if pursuit {
		if v.c.PursuitCritModifier == 0 {
			return 0
		}
		percent /= v.c.PursuitCritModifier
	}
	return v.Raw(KindCrit, percent)
}

// LuckPercent returns total luck %. With pursuit active the curve output is scaled by 0.8.
func (v Converter) LuckPercent(raw float64, pursuit bool) float64 {
	p := v.Percent(KindLuck, raw)
	if pursuit {
		p *= v.c.PursuitLuckModifier
	}
	return p
}

// LuckRaw inverts LuckPercent.
func (v Converter) LuckRaw(percent float64, pursuit bool) float64 {
	if pursuit {
		if v.c.PursuitLuckModifier == 0 {
			return 0
		}
		percent /= v.c.PursuitLuckModifier
	}
	return v.Raw(KindLuck, percent)
}

// HastePercent returns total haste % on top of a class base haste in [0,100].
// An invalid base haste is returned unchanged.
func (v Converter) HastePercent(raw, baseHaste float64) float64 {
	if !validInput(baseHaste, 0, 100) {
		return baseHaste
	}
	return Curve{Divisor: v.c.HasteDivisor, BaseOffset: baseHaste}.Percent(raw)
}

// HasteRaw inverts HastePercent.
func (v Converter) HasteRaw(percent, baseHaste float64) float64 {
	if !validInput(baseHaste, 0, 100) {
		return 0
	}
	return Curve{Divisor: v.c.HasteDivisor, BaseOffset: baseHaste}.Raw(percent)
}

// AttackSpeed converts total haste % into attack speed % (linear, ×1.6).
func (v Converter) AttackSpeed(hastePercent float64) float64 {
	if !validInput(hastePercent, 0, 200) {
		return 0
	}
	return hastePercent * v.c.AttackSpeedRate
}

// HasteFromAttackSpeed recovers the raw haste behind an attack speed %.
func (v Converter) HasteFromAttackSpeed(speedPercent, baseHaste float64) float64 {
	if !validInput(speedPercent, 0, 200*v.c.AttackSpeedRate) || v.c.AttackSpeedRate == 0 {
		return 0
	}
	return v.HasteRaw(speedPercent/v.c.AttackSpeedRate, baseHaste)
}

func (v Converter) MasteryPercent(raw float64) float64 { return v.Percent(KindMastery, raw) }

func (v Converter) MasteryRaw(percent float64) float64 { return v.Raw(KindMastery, percent) }

func (v Converter) VersatilityPercent(raw float64) float64 { return v.Percent(KindVersatility, raw) }

func (v Converter) VersatilityRaw(percent float64) float64 { return v.Raw(KindVersatility, percent) }

func (v Converter) ElementPercent(power float64) float64 { return v.Percent(KindElement, power) }

func (v Converter) ElementRaw(percent float64) float64 { return v.Raw(KindElement, percent) }

// AllElementPercent is linear: power × 2.2 / 100.
func (v Converter) AllElementPercent(power float64) float64 {
	if !validInput(power, 0, math.Inf(1)) {
		return 0
	}
	return power * v.c.AllElementRatio / 100
}

// AllElementPower inverts AllElementPercent.
func (v Converter) AllElementPower(percent float64) float64 {
	if !validInput(percent, 0, math.Inf(1)) || v.c.AllElementRatio == 0 {
		return 0
	}
	return percent / v.c.AllElementRatio * 100
}

// PhysicalAttack = (agility×0.725 + weaponAtk + moduleAtk) × (1 + atkBonus/100).
// atkBonus may go down to -100; any other negative input yields 0.
func (v Converter) PhysicalAttack(agility, weaponAtk, moduleAtk, atkBonus float64) float64 {
	inf := math.Inf(1)
	if !validInput(agility, 0, inf) || !validInput(weaponAtk, 0, inf) ||
		!validInput(moduleAtk, 0, inf) || !validInput(atkBonus, -100, inf) {
		return 0
	}
	base := agility*v.c.AgilityToAttack + weaponAtk + moduleAtk
	return base * (1 + atkBonus/100)
}

// Agility solves PhysicalAttack for agility with the other inputs fixed, floored at 0.
func (v Converter) Agility(physAtk, weaponAtk, moduleAtk, atkBonus float64) float64 {
	if !validInput(physAtk, 0, math.Inf(1)) || physAtk <= 0 || !validInput(atkBonus, -100, 1000) {
		return 0
	}
	scale := 1 + atkBonus/100
	if scale <= 0 || v.c.AgilityToAttack == 0 {
		return 0
	}
	agility := (physAtk/scale - weaponAtk - moduleAtk) / v.c.AgilityToAttack
	return math.Max(0, agility)
}

// Health = stamina × 7.8 + hpBase. Invalid stamina returns hpBase.
func (v Converter) Health(stamina, hpBase float64) float64 {
	if !validInput(hpBase, 0, math.Inf(1)) {
		return 0
	}
	if !validInput(stamina, 0, math.Inf(1)) {
		return hpBase
	}
	return stamina*v.c.StaminaToHP + hpBase
}

// Stamina inverts Health; totalHp below hpBase returns 0.
func (v Converter) Stamina(totalHp, hpBase float64) float64 {
	if !validInput(hpBase, 0, math.Inf(1)) || !validInput(totalHp, hpBase, math.Inf(1)) || v.c.StaminaToHP == 0 {
		return 0
	}
	return (totalHp - hpBase) / v.c.StaminaToHP
}
