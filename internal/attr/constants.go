package attr

// Constants holds every coefficient used by the converters.
// A Converter copies it by value, so one instance can be shared across goroutines.
type Constants struct {
	CritDivisor        float64
	LuckDivisor        float64
	HasteDivisor       float64
	MasteryDivisor     float64
	VersatilityDivisor float64
	ElementDivisor     float64

	BaseCritPercent    float64
	BaseLuckPercent    float64
	BaseMasteryPercent float64

	AgilityToAttack float64 // physical attack per agility point
	StaminaToHP     float64 // max HP per stamina point
	AllElementRatio float64 // all-element bonus % per 100 power
	AttackSpeedRate float64 // attack speed % per haste %

	// pursuit (wind chase) state scales the final crit/luck percentages
	PursuitCritModifier float64
	PursuitLuckModifier float64
}

// DefaultConstants returns the in-game values.
func DefaultConstants() Constants {
	return Constants{
		CritDivisor:        4458.1,
		LuckDivisor:        4458.1,
		HasteDivisor:       4458.1,
		MasteryDivisor:     4458.1,
		VersatilityDivisor: 2501.1,
		ElementDivisor:     4458.1,

		BaseCritPercent:    5,
		BaseLuckPercent:    5,
		BaseMasteryPercent: 6,

		AgilityToAttack: 0.725,
		StaminaToHP:     7.8,
		AllElementRatio: 2.2,
		AttackSpeedRate: 1.6,

		PursuitCritModifier: 1.24,
		PursuitLuckModifier: 0.8,
	}
}

// Kind names a ratio-curve attribute.
type Kind string

const (
	KindCrit        Kind = "crit"
	KindLuck        Kind = "luck"
	KindHaste       Kind = "haste"
	KindMastery     Kind = "mastery"
	KindVersatility Kind = "versatility"
	KindElement     Kind = "element"
)

// Kinds lists every ratio-curve attribute in display order.
var Kinds = []Kind{KindCrit, KindLuck, KindHaste, KindMastery, KindVersatility, KindElement}

// Curve returns the curve for k. Haste uses a zero base here; callers with a
// class base haste go through HastePercent. ok is false for unknown kinds.
func (c Constants) Curve(k Kind) (Curve, bool) {
	switch k {
	case KindCrit:
		return Curve{Divisor: c.CritDivisor, BaseOffset: c.BaseCritPercent}, true
	case KindLuck:
		return Curve{Divisor: c.LuckDivisor, BaseOffset: c.BaseLuckPercent}, true
	case KindHaste:
		return Curve{Divisor: c.HasteDivisor}, true
	case KindMastery:
		return Curve{Divisor: c.MasteryDivisor, BaseOffset: c.BaseMasteryPercent}, true
	case KindVersatility:
		return Curve{Divisor: c.VersatilityDivisor}, true
	case KindElement:
		return Curve{Divisor: c.ElementDivisor}, true
	}
	return Curve{}, false
}
