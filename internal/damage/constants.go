package damage

// Bonus is the flat contribution of one module level.
type Bonus struct {
	PhysDmg     float64
	ElemBonus   float64
	BossDmg     float64
	CritDmg     float64
	VulnDmg     float64
	PhysAtkMult float64 // 0 means no multiplier
}

// sum is the display total of b; multipliers count as their percent gain.
func (b Bonus) sum() float64 {
	s := b.PhysDmg + b.ElemBonus + b.BossDmg + b.CritDmg + b.VulnDmg
	if b.PhysAtkMult != 0 {
		s += (b.PhysAtkMult - 1) * 100
	}
	return s
}

// LevelTable maps module level (index) to its bonus. Out-of-range levels contribute nothing.
type LevelTable [7]Bonus

// At returns the bonus for level, or the zero Bonus.
func (t LevelTable) At(level int) Bonus {
	if level < 0 || level >= len(t) {
		return Bonus{}
	}
	return t[level]
}

// ModuleTables holds one LevelTable per module slot.
type ModuleTables struct {
	AgilityBlessing LevelTable
	SpecialAttack   LevelTable
	EliteStrike     LevelTable
	CritFocus       LevelTable
	DamageStack     LevelTable
	AgileMovement   LevelTable
}

// Constants are the fixed game values used by the evaluator.
// They are passed by value; there is no package-level mutable state.
type Constants struct {
	MonsterDefense   float64
	DefenseConstant  float64 // K in K/(def+K)
	CritDefenseScale float64 // defense multiplier for BreakingSlash crits

	SealRatio        float64
	BoostedSealRatio float64 // LightningRaid
	DuelSealPenalty  float64 // subtracted by DuelAwareness
	DuelVulnBonus    float64

	MasteryCoefficient    float64
	AllRoundCoefficient   float64
	OverflowCritThreshold float64
	DoubleAttackSeals     int

	IaiMasteryCrit          float64
	PursuitCritSkill1       float64
	PursuitCritSkill2       float64
	ProficiencyMastery      float64
	ThunderReturnElem       float64
	BurstCritDmg            float64
	ThunderCurseVulnPerLvl  float64
	SwiftSlashDefensePerLvl float64
	IaiFlowSkillDmg         float64
	IaiFlowSeals            int
	SealAffinityElemPerSeal float64
	SharpStrikeCrit         float64

	WeaponSetCritDmg  float64
	TwoPieceSkillDmg  float64
	FourPieceSkillDmg float64

	Modules ModuleTables

	// BanditLeaderFallback is the factor used when the buff is on but no factor was given.
	BanditLeaderFallback float64
}

// DefaultConstants returns the current in-game values.
func DefaultConstants() Constants {
	return Constants{
		MonsterDefense:   2785,
		DefenseConstant:  6500,
		CritDefenseScale: 0.7,

		SealRatio:        0.25,
		BoostedSealRatio: 0.28,
		DuelSealPenalty:  0.125,
		DuelVulnBonus:    20,

		MasteryCoefficient:    0.025,
		AllRoundCoefficient:   0.0035,
		OverflowCritThreshold: 65.28,
		DoubleAttackSeals:     3,

		IaiMasteryCrit:          22,
		PursuitCritSkill1:       5.28,
		PursuitCritSkill2:       4.8,
		ProficiencyMastery:      6,
		ThunderReturnElem:       10,
		BurstCritDmg:            10,
		ThunderCurseVulnPerLvl:  2,
		SwiftSlashDefensePerLvl: 0.06,
		IaiFlowSkillDmg:         12,
		IaiFlowSeals:            6,
		SealAffinityElemPerSeal: 1.5,
		SharpStrikeCrit:         20,

		WeaponSetCritDmg:  15,
		TwoPieceSkillDmg:  10,
		FourPieceSkillDmg: 6,

		Modules: ModuleTables{
			AgilityBlessing: LevelTable{5: {PhysDmg: 3.6}, 6: {PhysDmg: 6}},
			SpecialAttack:   LevelTable{5: {ElemBonus: 7.2}, 6: {ElemBonus: 12}},
			EliteStrike:     LevelTable{5: {BossDmg: 3.9}, 6: {BossDmg: 6.6}},
			CritFocus: LevelTable{
				3: {ElemBonus: 0.44},
				4: {ElemBonus: 0.88},
				5: {ElemBonus: 1.32, CritDmg: 7.1},
				6: {ElemBonus: 1.76, CritDmg: 12},
			},
			DamageStack:   LevelTable{5: {VulnDmg: 6.6}, 6: {VulnDmg: 11}},
			AgileMovement: LevelTable{5: {PhysAtkMult: 1.06}, 6: {PhysAtkMult: 1.1}},
		},

		BanditLeaderFallback: 1,
	}
}
