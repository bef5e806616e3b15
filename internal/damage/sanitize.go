package damage

import "math"

// nonNeg maps NaN, ±Inf and negatives to 0.
func nonNeg(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func nonNegInt(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// sanitize coerces every numeric field into its domain so evaluation stays total.
func sanitize(cfg BuildConfig) BuildConfig {
	cfg.PhysAtk = nonNeg(cfg.PhysAtk)
	cfg.ElemAtk = nonNeg(cfg.ElemAtk)
	cfg.RefineAtk = nonNeg(cfg.RefineAtk)
	cfg.Mastery = nonNeg(cfg.Mastery)
	cfg.ThunderSeal = nonNegInt(cfg.ThunderSeal)

	cfg.MeleeDmg = nonNeg(cfg.MeleeDmg)
	cfg.BossDmg = nonNeg(cfg.BossDmg)
	cfg.VulnDmg = nonNeg(cfg.VulnDmg)
	cfg.SkillDmg = nonNeg(cfg.SkillDmg)
	cfg.PhysDmg = nonNeg(cfg.PhysDmg)

	cfg.AllRound = nonNeg(cfg.AllRound)
	cfg.ElemBonus = nonNeg(cfg.ElemBonus)
	cfg.CritDmg = nonNeg(cfg.CritDmg)
	cfg.CritRate = nonNeg(cfg.CritRate)

	for i := range cfg.Skills {
		cfg.Skills[i].Multi = nonNeg(cfg.Skills[i].Multi)
		cfg.Skills[i].Add = nonNeg(cfg.Skills[i].Add)
	}

	cfg.Talents.ThunderCurseLevel = nonNegInt(cfg.Talents.ThunderCurseLevel)
	cfg.Talents.SwiftSlashLevel = nonNegInt(cfg.Talents.SwiftSlashLevel)

	cfg.Buffs.PoisonHive.Value = nonNeg(cfg.Buffs.PoisonHive.Value)
	cfg.Buffs.BanditLeader.Factor = nonNeg(cfg.Buffs.BanditLeader.Factor)
	return cfg
}
