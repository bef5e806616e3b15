package attr

// Attributes are raw panel values as read from the character sheet.
type Attributes struct {
	Agility         float64 `json:"agility" yaml:"agility"`
	WeaponAtk       float64 `json:"weaponAtk" yaml:"weaponAtk"`
	ModuleAtk       float64 `json:"moduleAtk" yaml:"moduleAtk"`
	AtkBonus        float64 `json:"atkBonus" yaml:"atkBonus"` // percent, >= -100
	Crit            float64 `json:"crit" yaml:"crit"`
	Luck            float64 `json:"luck" yaml:"luck"`
	Haste           float64 `json:"haste" yaml:"haste"`
	BaseHaste       float64 `json:"baseHaste" yaml:"baseHaste"` // percent, 0..100
	Mastery         float64 `json:"mastery" yaml:"mastery"`
	Versatility     float64 `json:"versatility" yaml:"versatility"`
	Stamina         float64 `json:"stamina" yaml:"stamina"`
	HPBase          float64 `json:"hpBase" yaml:"hpBase"`
	ElementPower    float64 `json:"elementPower" yaml:"elementPower"`
	AllElementPower float64 `json:"allElementPower" yaml:"allElementPower"`
}

// Converted holds the effective values derived from Attributes.
type Converted struct {
	PhysicalAttack         float64 `json:"physicalAttack"`
	CritPercent            float64 `json:"critPercent"`
	LuckPercent            float64 `json:"luckPercent"`
	HastePercent           float64 `json:"hastePercent"`
	AttackSpeedPercent     float64 `json:"attackSpeedPercent"`
	MasteryPercent         float64 `json:"masteryPercent"`
	VersatilityPercent     float64 `json:"versatilityPercent"`
	TotalHP                float64 `json:"totalHp"`
	ElementBonusPercent    float64 `json:"elementBonusPercent"`
	AllElementBonusPercent float64 `json:"allElementBonusPercent"`
}

// ConvertAll runs every converter over a.
func (v Converter) ConvertAll(a Attributes, pursuit bool) Converted {
	haste := v.HastePercent(a.Haste, a.BaseHaste)
	return Converted{
		PhysicalAttack:         v.PhysicalAttack(a.Agility, a.WeaponAtk, a.ModuleAtk, a.AtkBonus),
		CritPercent:            v.CritPercent(a.Crit, pursuit),
		LuckPercent:            v.LuckPercent(a.Luck, pursuit),
		HastePercent:           haste,
		AttackSpeedPercent:     v.AttackSpeed(haste),
		MasteryPercent:         v.MasteryPercent(a.Mastery),
		VersatilityPercent:     v.VersatilityPercent(a.Versatility),
		TotalHP:                v.Health(a.Stamina, a.HPBase),
		ElementBonusPercent:    v.ElementPercent(a.ElementPower),
		AllElementBonusPercent: v.AllElementPercent(a.AllElementPower),
	}
}
