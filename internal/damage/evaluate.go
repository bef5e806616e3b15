package damage

import "math"

// skill names shown for the three selectable skills
var skillNames = [...]string{1: "Iai Slash", 2: "Flash", 3: "Custom"}

// Evaluator computes damage for build configurations.
// It is immutable after construction and safe for concurrent use.
type Evaluator struct {
	consts   Constants
	features Feature
	pipeline []Effect
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithConstants replaces DefaultConstants.
func WithConstants(c Constants) Option {
	return func(e *Evaluator) { e.consts = c }
}

// WithFeatures restricts which effect groups are applied. Default: AllFeatures.
func WithFeatures(f Feature) Option {
	return func(e *Evaluator) { e.features = f }
}

// NewEvaluator builds an evaluator; the effect pipeline is resolved once here.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{consts: DefaultConstants(), features: AllFeatures}
	for _, opt := range opts {
		opt(e)
	}
	e.pipeline = Pipeline(e.consts)
	return e
}

// Constants returns the evaluator's constants.
func (e *Evaluator) Constants() Constants { return e.consts }

// Features returns the enabled effect groups.
func (e *Evaluator) Features() Feature { return e.features }

var defaultEvaluator = NewEvaluator()

// Evaluate runs cfg through an evaluator with default constants and all features.
func Evaluate(cfg BuildConfig) Result {
	return defaultEvaluator.Evaluate(cfg)
}

// Evaluate computes the damage of cfg. It never fails: invalid numbers count as 0.
func (e *Evaluator) Evaluate(cfg BuildConfig) Result {
	cfg = sanitize(cfg)
	t := e.initial(cfg)
	for _, eff := range e.pipeline {
		if e.features&eff.Group == 0 {
			continue
		}
		t = eff.Apply(t, &cfg)
	}
	return e.compose(t, cfg)
}

// initial seeds the accumulator: seal gating and skill selection.
func (e *Evaluator) initial(cfg BuildConfig) Totals {
	skill := cfg.ActiveSkill
	if skill != 1 && skill != 2 {
		skill = 3
	}
	selected := cfg.Skills[skill-1]

	// mastery only counts while at least one seal is stacked
	mastery := 0.0
	if cfg.ThunderSeal > 0 {
		mastery = cfg.Mastery
	}

	return Totals{
		PhysAtk:          cfg.PhysAtk,
		ElemAtk:          cfg.ElemAtk,
		RefineAtk:        cfg.RefineAtk,
		Mastery:          mastery,
		Seals:            cfg.ThunderSeal,
		Skill:            skill,
		SkillMulti:       selected.Multi,
		SkillAdd:         selected.Add,
		MeleeDmg:         cfg.MeleeDmg,
		BossDmg:          cfg.BossDmg,
		VulnDmg:          cfg.VulnDmg,
		SkillDmg:         cfg.SkillDmg,
		PhysDmg:          cfg.PhysDmg,
		AllRound:         cfg.AllRound,
		ElemBonus:        cfg.ElemBonus,
		CritDmg:          cfg.CritDmg,
		CritRate:         cfg.CritRate,
		MonsterDefense:   e.consts.MonsterDefense,
		CritDefenseScale: 1,
		SealRatio:        e.consts.SealRatio,
	}
}

func (e *Evaluator) compose(t Totals, cfg BuildConfig) Result {
	c := e.consts

	defenseFactor := defenseCorrection(t.MonsterDefense, c.DefenseConstant)
	critDefenseFactor := defenseCorrection(t.MonsterDefense*t.CritDefenseScale, c.DefenseConstant)

	sealMastery := 1 + float64(t.Seals)*t.SealRatio + t.Mastery*c.MasteryCoefficient

	boss := 0.0
	if cfg.BossDmgToggle {
		boss = t.BossDmg
	}
	common := 1 + (t.MeleeDmg+boss+t.VulnDmg+t.SkillDmg+t.PhysDmg)/100
	element := 1 + t.ElemBonus/100
	allRound := 1 + t.AllRound*c.AllRoundCoefficient
	critMult := 1 + t.CritDmg/100
	if t.OverflowCrit && t.CritRate > c.OverflowCritThreshold {
		critMult += (t.CritRate - c.OverflowCritThreshold) / 100
	}

	skillMult := t.SkillMulti / 100
	baseNonCrit := (t.PhysAtk*defenseFactor+t.ElemAtk+t.RefineAtk)*skillMult*sealMastery + t.SkillAdd
	baseCrit := (t.PhysAtk*critDefenseFactor+t.ElemAtk+t.RefineAtk)*skillMult*sealMastery + t.SkillAdd

	zones := common * element * allRound
	nonCrit := baseNonCrit * zones
	crit := baseCrit * zones * critMult

	// clamped for weighting only; the reported rate stays unclamped
	w := math.Min(100, math.Max(0, t.CritRate)) / 100
	expected := nonCrit*(1-w) + crit*w

	contrib := Breakdown{
		PhysAtk:   t.PhysAtk * defenseFactor * skillMult * sealMastery,
		ElemAtk:   t.ElemAtk * skillMult * sealMastery,
		RefineAtk: t.RefineAtk * skillMult * sealMastery,
		SkillAdd:  t.SkillAdd,
	}

	return Result{
		NonCritDamage:     nonCrit,
		CritDamage:        crit,
		ExpectedDamage:    expected,
		EffectiveCritRate: t.CritRate,
		Contributions:     contrib,
		Shares:            shares(contrib),
		Zones: Zones{
			Common:            common,
			Element:           element,
			AllRound:          allRound,
			CritDamage:        critMult,
			DefenseFactor:     defenseFactor,
			CritDefenseFactor: critDefenseFactor,
			SealMastery:       sealMastery,
		},
		Bonuses:      t.Bonuses,
		PhysAtk:      t.PhysAtk,
		Mastery:      t.Mastery,
		ThunderSeal:  t.Seals,
		Skill:        t.Skill,
		SkillName:    skillNames[t.Skill],
		SkillMulti:   t.SkillMulti,
		SkillAdd:     t.SkillAdd,
		DoubleAttack: t.Skill == 1 && t.Seals >= c.DoubleAttackSeals,
	}
}

// defenseCorrection = K/(def+K).
func defenseCorrection(def, k float64) float64 {
	if def+k <= 0 {
		return 1
	}
	return k / (def + k)
}

func shares(b Breakdown) Breakdown {
	total := b.Total()
	if total <= 0 {
		return Breakdown{}
	}
	return Breakdown{
		PhysAtk:   b.PhysAtk / total,
		ElemAtk:   b.ElemAtk / total,
		RefineAtk: b.RefineAtk / total,
		SkillAdd:  b.SkillAdd / total,
	}
}
