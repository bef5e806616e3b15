package damage

import "math"

// Feature selects which optional effect groups the evaluator applies.
type Feature uint8

const (
	FeatureTalents Feature = 1 << iota
	FeatureSets
	FeatureModules
	FeatureBuffs

	NoFeatures  Feature = 0
	AllFeatures         = FeatureTalents | FeatureSets | FeatureModules | FeatureBuffs
)

// Totals is the working accumulator folded through the effect pipeline.
type Totals struct {
	PhysAtk   float64
	ElemAtk   float64
	RefineAtk float64
	Mastery   float64
	Seals     int

	Skill      int
	SkillMulti float64
	SkillAdd   float64

	MeleeDmg float64
	BossDmg  float64
	VulnDmg  float64
	SkillDmg float64
	PhysDmg  float64

	AllRound  float64
	ElemBonus float64
	CritDmg   float64
	CritRate  float64

	MonsterDefense   float64
	CritDefenseScale float64 // 1 unless reduced for crit hits
	SealRatio        float64
	OverflowCrit     bool // crit rate above the threshold adds to crit damage

	Bonuses Bonuses
}

// Effect is one (predicate, effect) step. Apply must not modify cfg and
// returns t unchanged when its condition does not hold.
type Effect struct {
	Name  string
	Group Feature
	Apply func(t Totals, cfg *BuildConfig) Totals
}

// Pipeline returns the ordered effects for c. Order matters: later effects read
// values (crit rate, seal ratio) written by earlier ones.
func Pipeline(c Constants) []Effect {
	effects := []Effect{
		{"agile_movement", FeatureModules, func(t Totals, cfg *BuildConfig) Totals {
			return applyModule(t, cfg.Modules.AgileMovement, c.Modules.AgileMovement)
		}},
	}
	effects = append(effects, talentEffects(c)...)
	effects = append(effects, setEffects(c)...)
	effects = append(effects, moduleEffects(c)...)
	effects = append(effects, buffEffects(c)...)
	return effects
}

func talentEffects(c Constants) []Effect {
	return []Effect{
		// crit rate first
		{"iai_mastery", FeatureTalents, func(t Totals, cfg *BuildConfig) Totals {
			if t.Skill != 1 || !cfg.Talents.IaiMastery {
				return t
			}
			t.CritRate += c.IaiMasteryCrit
			t.OverflowCrit = true
			return t
		}},
		{"pursuit_wind", FeatureTalents, func(t Totals, cfg *BuildConfig) Totals {
			if !cfg.Talents.PursuitWind {
				return t
			}
			switch t.Skill {
			case 1:
				t.CritRate += c.PursuitCritSkill1
				t.Bonuses.Talent += c.PursuitCritSkill1
			case 2:
				t.CritRate += c.PursuitCritSkill2
				t.Bonuses.Talent += c.PursuitCritSkill2
			}
			return t
		}},
		{"lightning_raid", FeatureTalents, func(t Totals, cfg *BuildConfig) Totals {
			if cfg.Talents.LightningRaid {
				t.SealRatio = c.BoostedSealRatio
			}
			return t
		}},
		{"proficiency", FeatureTalents, func(t Totals, cfg *BuildConfig) Totals {
			// applied after the seal gate, so it counts even without seals
			if cfg.Talents.Proficiency {
				t.Mastery += c.ProficiencyMastery
				t.Bonuses.Talent += c.ProficiencyMastery
			}
			return t
		}},
		// damage percentages
		{"thunder_return", FeatureTalents, func(t Totals, cfg *BuildConfig) Totals {
			if cfg.Talents.ThunderReturn {
				t.ElemBonus += c.ThunderReturnElem
				t.Bonuses.Talent += c.ThunderReturnElem
			}
			return t
		}},
		{"burst", FeatureTalents, func(t Totals, cfg *BuildConfig) Totals {
			if cfg.Talents.Burst {
				t.CritDmg += c.BurstCritDmg
				t.Bonuses.Talent += c.BurstCritDmg
			}
			return t
		}},
		{"thunder_curse", FeatureTalents, func(t Totals, cfg *BuildConfig) Totals {
			if cfg.Talents.ThunderCurse {
				v := float64(cfg.Talents.ThunderCurseLevel) * c.ThunderCurseVulnPerLvl
				t.VulnDmg += v
				t.Bonuses.Talent += v
			}
			return t
		}},
		{"iai_flow", FeatureTalents, func(t Totals, cfg *BuildConfig) Totals {
			if t.Skill == 1 && cfg.Talents.IaiFlow && t.Seals == c.IaiFlowSeals {
				t.SkillDmg += c.IaiFlowSkillDmg
				t.Bonuses.Talent += c.IaiFlowSkillDmg
			}
			return t
		}},
		// defense
		{"swift_slash", FeatureTalents, func(t Totals, cfg *BuildConfig) Totals {
			if cfg.Talents.SwiftSlash {
				lvl := float64(cfg.Talents.SwiftSlashLevel)
				t.MonsterDefense *= math.Max(0, 1-lvl*c.SwiftSlashDefensePerLvl)
				t.Bonuses.Talent += lvl * c.SwiftSlashDefensePerLvl * 100
			}
			return t
		}},
		{"breaking_slash", FeatureTalents, func(t Totals, cfg *BuildConfig) Totals {
			if t.Skill == 1 && cfg.Talents.BreakingSlash {
				t.CritDefenseScale = c.CritDefenseScale
			}
			return t
		}},
		// seal-scaled
		{"seal_affinity", FeatureTalents, func(t Totals, cfg *BuildConfig) Totals {
			if cfg.Talents.SealAffinity {
				v := float64(t.Seals) * c.SealAffinityElemPerSeal
				t.ElemBonus += v
				t.Bonuses.Talent += v
			}
			return t
		}},
		{"sharp_strike", FeatureTalents, func(t Totals, cfg *BuildConfig) Totals {
			if t.Skill == 2 && cfg.Talents.SharpStrike {
				t.CritRate += c.SharpStrikeCrit
				t.Bonuses.Talent += c.SharpStrikeCrit
			}
			return t
		}},
		{"duel_awareness", FeatureTalents, func(t Totals, cfg *BuildConfig) Totals {
			if !cfg.Talents.DuelAwareness {
				return t
			}
			// both halves apply; each can be disabled by zeroing its constant
			t.VulnDmg += c.DuelVulnBonus
			t.Bonuses.Talent += c.DuelVulnBonus
			t.SealRatio -= c.DuelSealPenalty
			return t
		}},
	}
}

func setEffects(c Constants) []Effect {
	return []Effect{
		{"weapon_set", FeatureSets, func(t Totals, cfg *BuildConfig) Totals {
			if cfg.Sets.Weapon {
				t.CritDmg += c.WeaponSetCritDmg
				t.Bonuses.Set += c.WeaponSetCritDmg
			}
			return t
		}},
		{"two_piece_set", FeatureSets, func(t Totals, cfg *BuildConfig) Totals {
			if cfg.Sets.TwoPiece && t.Skill == 1 {
				t.SkillDmg += c.TwoPieceSkillDmg
				t.Bonuses.Set += c.TwoPieceSkillDmg
			}
			return t
		}},
		{"four_piece_set", FeatureSets, func(t Totals, cfg *BuildConfig) Totals {
			if cfg.Sets.FourPiece {
				t.SkillDmg += c.FourPieceSkillDmg
				t.Bonuses.Set += c.FourPieceSkillDmg
			}
			return t
		}},
	}
}

func moduleEffects(c Constants) []Effect {
	return []Effect{
		{"agility_blessing", FeatureModules, func(t Totals, cfg *BuildConfig) Totals {
			return applyModule(t, cfg.Modules.AgilityBlessing, c.Modules.AgilityBlessing)
		}},
		{"special_attack", FeatureModules, func(t Totals, cfg *BuildConfig) Totals {
			if t.Skill != 1 {
				return t
			}
			return applyModule(t, cfg.Modules.SpecialAttack, c.Modules.SpecialAttack)
		}},
		{"elite_strike", FeatureModules, func(t Totals, cfg *BuildConfig) Totals {
			return applyModule(t, cfg.Modules.EliteStrike, c.Modules.EliteStrike)
		}},
		{"crit_focus", FeatureModules, func(t Totals, cfg *BuildConfig) Totals {
			return applyModule(t, cfg.Modules.CritFocus, c.Modules.CritFocus)
		}},
		{"damage_stack", FeatureModules, func(t Totals, cfg *BuildConfig) Totals {
			return applyModule(t, cfg.Modules.DamageStack, c.Modules.DamageStack)
		}},
	}
}

func applyModule(t Totals, m Module, table LevelTable) Totals {
	if !m.Enabled {
		return t
	}
	b := table.At(m.Level)
	t.PhysDmg += b.PhysDmg
	t.ElemBonus += b.ElemBonus
	t.BossDmg += b.BossDmg
	t.CritDmg += b.CritDmg
	t.VulnDmg += b.VulnDmg
	if b.PhysAtkMult != 0 {
		t.PhysAtk *= b.PhysAtkMult
	}
	t.Bonuses.Module += b.sum()
	return t
}

func buffEffects(c Constants) []Effect {
	return []Effect{
		{"poison_hive", FeatureBuffs, func(t Totals, cfg *BuildConfig) Totals {
			if cfg.Buffs.PoisonHive.Enabled {
				t.VulnDmg += cfg.Buffs.PoisonHive.Value
				t.Bonuses.Buff += cfg.Buffs.PoisonHive.Value
			}
			return t
		}},
		{"bandit_leader", FeatureBuffs, func(t Totals, cfg *BuildConfig) Totals {
			if !cfg.Buffs.BanditLeader.Enabled {
				return t
			}
			f := cfg.Buffs.BanditLeader.Factor
			if f == 0 {
				f = c.BanditLeaderFallback
			}
			t.PhysAtk *= f
			t.Bonuses.Buff += (f - 1) * 100
			return t
		}},
	}
}
