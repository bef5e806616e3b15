package damage

// Skill is one selectable skill: a percent multiplier on base attack plus a flat add.
type Skill struct {
	Multi float64 // percent, 100 = 1.0x
	Add   float64
}

// Talents are the talent toggles of the build. Field comments name the in-game effect.
type Talents struct {
	IaiFlow           bool // skill damage +12% on skill 1 at full seals
	IaiMastery        bool // skill 1 crit +22%, overflow crit converts to crit damage
	LightningRaid     bool // seal ratio 0.25 -> 0.28
	ThunderCurse      bool // vulnerability +2% per level
	ThunderCurseLevel int
	SwiftSlash        bool // monster defense -6% per level
	SwiftSlashLevel   int
	BreakingSlash     bool // skill 1 crits ignore 30% of defense
	ThunderReturn     bool // elemental bonus +10%
	Burst             bool // crit damage +10%
	SealAffinity      bool // elemental bonus +1.5% per seal
	DuelAwareness     bool // vulnerability +20%, seal ratio -0.125
	SharpStrike       bool // skill 2 crit +20%
	PursuitWind       bool // crit +5.28% on skill 1, +4.8% on skill 2
	Proficiency       bool // mastery +6
}

// Sets are the gear set toggles.
type Sets struct {
	Weapon    bool // crit damage +15%
	TwoPiece  bool // skill damage +10% on skill 1
	FourPiece bool // skill damage +6%
}

// Module is a leveled module slot. Levels missing from the module table are a no-op.
type Module struct {
	Enabled bool
	Level   int
}

// Modules are the six module slots.
type Modules struct {
	AgilityBlessing Module // physical damage
	SpecialAttack   Module // elemental bonus, skill 1 only
	EliteStrike     Module // boss damage
	CritFocus       Module // elemental bonus and crit damage
	DamageStack     Module // vulnerability
	AgileMovement   Module // physical attack multiplier
}

// PoisonHive adds Value to vulnerability.
type PoisonHive struct {
	Enabled bool
	Value   float64
}

// BanditLeader multiplies physical attack by Factor.
// Factor 0 means "not provided"; see Constants.BanditLeaderFallback.
type BanditLeader struct {
	Enabled bool
	Factor  float64
}

// Buffs are the temporary buff toggles.
type Buffs struct {
	PoisonHive   PoisonHive
	BanditLeader BanditLeader
}

// BuildConfig is the complete input to one damage evaluation.
// All percentages are in percent units (12.5 means 12.5%).
type BuildConfig struct {
	// base stats
	PhysAtk     float64
	ElemAtk     float64
	RefineAtk   float64
	Mastery     float64 // only effective while ThunderSeal > 0
	ThunderSeal int

	// common zone, summed into one multiplier
	MeleeDmg      float64
	BossDmg       float64
	BossDmgToggle bool
	VulnDmg       float64
	SkillDmg      float64
	PhysDmg       float64

	// independent zones
	AllRound  float64
	ElemBonus float64
	CritDmg   float64
	CritRate  float64

	ActiveSkill int // 1, 2; anything else selects skill 3
	Skills      [3]Skill

	Talents Talents
	Sets    Sets
	Modules Modules
	Buffs   Buffs
}

// Breakdown splits base damage by source.
type Breakdown struct {
	PhysAtk   float64 `json:"physAtk"`
	ElemAtk   float64 `json:"elemAtk"`
	RefineAtk float64 `json:"refineAtk"`
	SkillAdd  float64 `json:"skillAdd"`
}

// Total sums the four sources.
func (b Breakdown) Total() float64 {
	return b.PhysAtk + b.ElemAtk + b.RefineAtk + b.SkillAdd
}

// Zones reports the multipliers applied to base damage.
type Zones struct {
	Common            float64 `json:"common"`
	Element           float64 `json:"element"`
	AllRound          float64 `json:"allRound"`
	CritDamage        float64 `json:"critDamage"`
	DefenseFactor     float64 `json:"defenseFactor"`
	CritDefenseFactor float64 `json:"critDefenseFactor"`
	SealMastery       float64 `json:"sealMastery"`
}

// Bonuses totals the flat percentages contributed by each feature group, for display.
type Bonuses struct {
	Talent float64 `json:"talent"`
	Set    float64 `json:"set"`
	Module float64 `json:"module"`
	Buff   float64 `json:"buff"`
}

// Result is the outcome of one evaluation. It is built once and never mutated.
type Result struct {
	NonCritDamage     float64 `json:"nonCritDamage"`
	CritDamage        float64 `json:"critDamage"`
	ExpectedDamage    float64 `json:"expectedDamage"`
	EffectiveCritRate float64 `json:"critRate"` // unclamped

	Contributions Breakdown `json:"contributions"`
	Shares        Breakdown `json:"damageBreakdown"` // fractions of Contributions.Total()
	Zones         Zones     `json:"zones"`
	Bonuses       Bonuses   `json:"bonuses"`

	PhysAtk      float64 `json:"physAtk"` // after module and buff multipliers
	Mastery      float64 `json:"mastery"` // after seal gating and talents
	ThunderSeal  int     `json:"thunderSeal"`
	Skill        int     `json:"skill"`
	SkillName    string  `json:"skillName"`
	SkillMulti   float64 `json:"skillMulti"`
	SkillAdd     float64 `json:"skillAdd"`
	DoubleAttack bool    `json:"doubleAttack"`
}
