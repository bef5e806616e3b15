package damage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// baseBuild is the flat regression scenario: 1000 attack, 100% skill, one seal.
func baseBuild() BuildConfig {
	return BuildConfig{
		PhysAtk:     1000,
		ThunderSeal: 1,
		ActiveSkill: 1,
		Skills:      [3]Skill{{Multi: 100}, {Multi: 100}, {Multi: 100}},
	}
}

func TestEvaluateBaseCase(t *testing.T) {
	r := Evaluate(baseBuild())

	want := 1000 * (6500.0 / (2785.0 + 6500.0)) * 1 * (1 + 0.25)
	assert.InDelta(t, want, r.NonCritDamage, 1e-9)
	assert.InDelta(t, 875.07, r.NonCritDamage, 0.01)
	assert.InDelta(t, want, r.CritDamage, 1e-9, "no crit damage bonus")
	assert.InDelta(t, want, r.ExpectedDamage, 1e-9)
	assert.Equal(t, 0.0, r.EffectiveCritRate)
	assert.Equal(t, "Iai Slash", r.SkillName)
	assert.False(t, r.DoubleAttack)
}

func TestMasteryGatedBySeal(t *testing.T) {
	with := baseBuild()
	with.ThunderSeal = 0
	with.Mastery = 50
	without := with
	without.Mastery = 0

	assert.Equal(t, Evaluate(without).ExpectedDamage, Evaluate(with).ExpectedDamage)
	assert.Equal(t, 0.0, Evaluate(with).Mastery)

	with.ThunderSeal = 1
	without.ThunderSeal = 1
	assert.Greater(t, Evaluate(with).ExpectedDamage, Evaluate(without).ExpectedDamage)
	assert.InDelta(t, 1+0.25+50*0.025, Evaluate(with).Zones.SealMastery, 1e-12)
}

func TestProficiencyIgnoresSealGate(t *testing.T) {
	cfg := baseBuild()
	cfg.Talents.Proficiency = true
	assert.Equal(t, 6.0, Evaluate(cfg).Mastery)

	cfg.ThunderSeal = 0
	cfg.Mastery = 50 // gated away
	r := Evaluate(cfg)
	assert.Equal(t, 6.0, r.Mastery)
	assert.InDelta(t, 1.15, r.Zones.SealMastery, 1e-12)
	assert.InDelta(t, 1000*(6500.0/9285.0)*1.15, r.NonCritDamage, 1e-9)
	assert.InDelta(t, 805.06, r.NonCritDamage, 0.01)
}

func TestCritDamageMonotonic(t *testing.T) {
	lo := baseBuild()
	lo.CritRate = 40
	lo.CritDmg = 50
	hi := lo
	hi.CritDmg = 60

	rl, rh := Evaluate(lo), Evaluate(hi)
	assert.Greater(t, rh.CritDamage, rl.CritDamage)
	assert.Greater(t, rh.ExpectedDamage, rl.ExpectedDamage)
	assert.Equal(t, rl.NonCritDamage, rh.NonCritDamage)
}

func TestCritRateClampedForWeightingOnly(t *testing.T) {
	capped := baseBuild()
	capped.CritDmg = 50
	capped.CritRate = 100
	over := capped
	over.CritRate = 150

	rc, ro := Evaluate(capped), Evaluate(over)
	assert.Equal(t, rc.ExpectedDamage, ro.ExpectedDamage)
	assert.Equal(t, ro.CritDamage, ro.ExpectedDamage)
	assert.Equal(t, 150.0, ro.EffectiveCritRate)
}

func TestSkillSelection(t *testing.T) {
	cfg := baseBuild()
	cfg.Skills = [3]Skill{{Multi: 100, Add: 1}, {Multi: 200, Add: 2}, {Multi: 300, Add: 3}}

	for _, tc := range []struct {
		active int
		multi  float64
		name   string
	}{
		{1, 100, "Iai Slash"},
		{2, 200, "Flash"},
		{3, 300, "Custom"},
		{0, 300, "Custom"},
		{9, 300, "Custom"},
		{-1, 300, "Custom"},
	} {
		cfg.ActiveSkill = tc.active
		r := Evaluate(cfg)
		assert.Equal(t, tc.multi, r.SkillMulti, "active=%d", tc.active)
		assert.Equal(t, tc.multi/100, r.SkillAdd, "active=%d", tc.active)
		assert.Equal(t, tc.name, r.SkillName, "active=%d", tc.active)
	}
}

func TestOverflowCritConvertsToCritDamage(t *testing.T) {
	cfg := baseBuild()
	cfg.CritRate = 50
	cfg.CritDmg = 50
	cfg.Talents.IaiMastery = true

	r := Evaluate(cfg)
	assert.InDelta(t, 72.0, r.EffectiveCritRate, 1e-12)
	assert.InDelta(t, 1.5+(72-65.28)/100, r.Zones.CritDamage, 1e-12)

	// pursuit is applied before the overflow check
	cfg.Talents.PursuitWind = true
	r = Evaluate(cfg)
	assert.InDelta(t, 77.28, r.EffectiveCritRate, 1e-12)
	assert.InDelta(t, 1.5+0.12, r.Zones.CritDamage, 1e-12)

	// only on skill 1
	cfg.ActiveSkill = 2
	r = Evaluate(cfg)
	assert.InDelta(t, 54.8, r.EffectiveCritRate, 1e-12)
	assert.InDelta(t, 1.5, r.Zones.CritDamage, 1e-12)
}

func TestSealRatioTalents(t *testing.T) {
	cfg := baseBuild()
	cfg.ThunderSeal = 2

	tests := []struct {
		name    string
		raid    bool
		duel    bool
		want    float64
		wantVul float64
	}{
		{"base", false, false, 1 + 2*0.25, 1},
		{"raid", true, false, 1 + 2*0.28, 1},
		{"duel", false, true, 1 + 2*0.125, 1.2},
		{"raid and duel", true, true, 1 + 2*(0.28-0.125), 1.2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := cfg
			c.Talents.LightningRaid = tc.raid
			c.Talents.DuelAwareness = tc.duel
			r := Evaluate(c)
			assert.InDelta(t, tc.want, r.Zones.SealMastery, 1e-12)
			assert.InDelta(t, tc.wantVul, r.Zones.Common, 1e-12)
		})
	}
}

func TestDuelAwarenessHalvesIndependent(t *testing.T) {
	consts := DefaultConstants()
	consts.DuelSealPenalty = 0
	ev := NewEvaluator(WithConstants(consts))

	cfg := baseBuild()
	cfg.ThunderSeal = 2
	cfg.Talents.DuelAwareness = true
	r := ev.Evaluate(cfg)
	assert.InDelta(t, 1.5, r.Zones.SealMastery, 1e-12)
	assert.InDelta(t, 1.2, r.Zones.Common, 1e-12)
}

func TestDefenseTalents(t *testing.T) {
	cfg := baseBuild()
	cfg.Talents.SwiftSlash = true
	cfg.Talents.SwiftSlashLevel = 5
	r := Evaluate(cfg)
	def := 2785 * (1 - 5*0.06)
	assert.InDelta(t, 6500/(def+6500), r.Zones.DefenseFactor, 1e-12)
	assert.Equal(t, r.Zones.DefenseFactor, r.Zones.CritDefenseFactor)

	cfg.Talents.BreakingSlash = true
	r = Evaluate(cfg)
	assert.InDelta(t, 6500/(def*0.7+6500), r.Zones.CritDefenseFactor, 1e-12)
	assert.Greater(t, r.CritDamage, r.NonCritDamage)

	cfg.ActiveSkill = 2
	r = Evaluate(cfg)
	assert.Equal(t, r.Zones.DefenseFactor, r.Zones.CritDefenseFactor)

	// absurd levels cannot push defense negative
	cfg.Talents.SwiftSlashLevel = 40
	r = Evaluate(cfg)
	assert.Equal(t, 1.0, r.Zones.DefenseFactor)
}

func TestDamagePercentTalents(t *testing.T) {
	cfg := baseBuild()
	cfg.ThunderSeal = 6
	cfg.Talents = Talents{
		IaiFlow:           true,
		ThunderCurse:      true,
		ThunderCurseLevel: 3,
		ThunderReturn:     true,
		Burst:             true,
		SealAffinity:      true,
	}
	r := Evaluate(cfg)
	assert.InDelta(t, 1+(12+6)/100.0, r.Zones.Common, 1e-12)
	assert.InDelta(t, 1+(10+9)/100.0, r.Zones.Element, 1e-12)
	assert.InDelta(t, 1.1, r.Zones.CritDamage, 1e-12)
	assert.InDelta(t, 12+6+10+10+9, r.Bonuses.Talent, 1e-12)
	assert.True(t, r.DoubleAttack)

	cfg.ThunderSeal = 5
	r = Evaluate(cfg)
	assert.InDelta(t, 1.06, r.Zones.Common, 1e-12, "iai flow needs full seals")
}

func TestSharpStrikeOnlyOnSkillTwo(t *testing.T) {
	cfg := baseBuild()
	cfg.Talents.SharpStrike = true
	assert.Equal(t, 0.0, Evaluate(cfg).EffectiveCritRate)
	cfg.ActiveSkill = 2
	assert.Equal(t, 20.0, Evaluate(cfg).EffectiveCritRate)
}

func TestSets(t *testing.T) {
	cfg := baseBuild()
	cfg.Sets = Sets{Weapon: true, TwoPiece: true, FourPiece: true}
	r := Evaluate(cfg)
	assert.InDelta(t, 1.15, r.Zones.CritDamage, 1e-12)
	assert.InDelta(t, 1.16, r.Zones.Common, 1e-12)
	assert.InDelta(t, 31.0, r.Bonuses.Set, 1e-12)

	cfg.ActiveSkill = 2
	r = Evaluate(cfg)
	assert.InDelta(t, 1.06, r.Zones.Common, 1e-12)
}

func TestModules(t *testing.T) {
	cfg := baseBuild()
	cfg.Modules.AgileMovement = Module{Enabled: true, Level: 6}
	assert.InDelta(t, 1100.0, Evaluate(cfg).PhysAtk, 1e-9)

	cfg.Modules.AgileMovement.Level = 4
	assert.Equal(t, 1000.0, Evaluate(cfg).PhysAtk, "unknown level is a no-op")

	cfg.Modules.CritFocus = Module{Enabled: true, Level: 5}
	r := Evaluate(cfg)
	assert.InDelta(t, 1.0132, r.Zones.Element, 1e-12)
	assert.InDelta(t, 1.071, r.Zones.CritDamage, 1e-12)
	assert.InDelta(t, 8.42, r.Bonuses.Module, 1e-9)

	cfg.Modules.SpecialAttack = Module{Enabled: true, Level: 6}
	assert.InDelta(t, 1.1332, Evaluate(cfg).Zones.Element, 1e-12)
	cfg.ActiveSkill = 2
	assert.InDelta(t, 1.0132, Evaluate(cfg).Zones.Element, 1e-12)
}

func TestBossDamageNeedsToggle(t *testing.T) {
	cfg := baseBuild()
	cfg.BossDmg = 10
	cfg.Modules.EliteStrike = Module{Enabled: true, Level: 6}
	assert.Equal(t, 1.0, Evaluate(cfg).Zones.Common)

	cfg.BossDmgToggle = true
	assert.InDelta(t, 1.166, Evaluate(cfg).Zones.Common, 1e-12)
}

func TestBuffs(t *testing.T) {
	cfg := baseBuild()
	cfg.Buffs.PoisonHive = PoisonHive{Enabled: true, Value: 5}
	assert.InDelta(t, 1.05, Evaluate(cfg).Zones.Common, 1e-12)

	cfg.Buffs.BanditLeader = BanditLeader{Enabled: true}
	assert.Equal(t, 1000.0, Evaluate(cfg).PhysAtk, "missing factor falls back to 1")

	cfg.Buffs.BanditLeader.Factor = 1.2
	r := Evaluate(cfg)
	assert.InDelta(t, 1200.0, r.PhysAtk, 1e-9)
	assert.InDelta(t, 25.0, r.Bonuses.Buff, 1e-9)

	consts := DefaultConstants()
	consts.BanditLeaderFallback = 0
	cfg.Buffs.BanditLeader.Factor = 0
	r = NewEvaluator(WithConstants(consts)).Evaluate(cfg)
	assert.Equal(t, 0.0, r.PhysAtk)
}

func TestFeatureGroupsCanBeDisabled(t *testing.T) {
	cfg := baseBuild()
	cfg.CritRate = 10
	cfg.Talents.IaiMastery = true
	cfg.Sets.Weapon = true
	cfg.Modules.AgileMovement = Module{Enabled: true, Level: 6}
	cfg.Buffs.PoisonHive = PoisonHive{Enabled: true, Value: 5}

	plain := NewEvaluator(WithFeatures(NoFeatures)).Evaluate(cfg)
	assert.Equal(t, 10.0, plain.EffectiveCritRate)
	assert.Equal(t, 1.0, plain.Zones.CritDamage)
	assert.Equal(t, 1000.0, plain.PhysAtk)
	assert.Equal(t, 1.0, plain.Zones.Common)
	assert.Equal(t, Bonuses{}, plain.Bonuses)

	onlySets := NewEvaluator(WithFeatures(FeatureSets)).Evaluate(cfg)
	assert.InDelta(t, 1.15, onlySets.Zones.CritDamage, 1e-12)
	assert.Equal(t, 10.0, onlySets.EffectiveCritRate)
}

func TestInvalidNumbersCoerceToZero(t *testing.T) {
	cfg := baseBuild()
	cfg.PhysAtk = math.NaN()
	cfg.CritRate = -20
	cfg.ThunderSeal = -3
	cfg.Skills[0].Add = math.Inf(1)

	r := Evaluate(cfg)
	assert.Equal(t, 0.0, r.NonCritDamage)
	assert.Equal(t, 0.0, r.ExpectedDamage)
	assert.Equal(t, 0.0, r.EffectiveCritRate)
	assert.Equal(t, 0, r.ThunderSeal)

	assert.NotPanics(t, func() { Evaluate(BuildConfig{}) })
}

func TestBreakdownShares(t *testing.T) {
	cfg := baseBuild()
	cfg.ThunderSeal = 0
	cfg.ElemAtk = 100
	cfg.RefineAtk = 50
	cfg.Skills[0].Add = 200

	r := Evaluate(cfg)
	f := 6500 / (2785.0 + 6500)
	assert.InDelta(t, 1000*f, r.Contributions.PhysAtk, 1e-9)
	assert.InDelta(t, 100.0, r.Contributions.ElemAtk, 1e-9)
	assert.InDelta(t, 200.0, r.Contributions.SkillAdd, 1e-9)

	s := r.Shares
	assert.InDelta(t, 1.0, s.Total(), 1e-12)
	assert.InDelta(t, 200/r.Contributions.Total(), s.SkillAdd, 1e-12)

	assert.Equal(t, Breakdown{}, Evaluate(BuildConfig{}).Shares)
}

func TestPipelineOrder(t *testing.T) {
	names := make(map[string]int)
	for i, eff := range Pipeline(DefaultConstants()) {
		_, dup := names[eff.Name]
		require.False(t, dup, eff.Name)
		names[eff.Name] = i
	}
	before := [][2]string{
		{"agile_movement", "iai_mastery"},
		{"iai_mastery", "thunder_return"},
		{"pursuit_wind", "burst"},
		{"lightning_raid", "duel_awareness"},
		{"thunder_curse", "swift_slash"},
		{"swift_slash", "seal_affinity"},
		{"seal_affinity", "sharp_strike"},
		{"duel_awareness", "weapon_set"},
		{"four_piece_set", "agility_blessing"},
		{"damage_stack", "poison_hive"},
	}
	for _, p := range before {
		assert.Less(t, names[p[0]], names[p[1]], "%s before %s", p[0], p[1])
	}
}

func TestEffectIsPureOnMismatch(t *testing.T) {
	var sharp Effect
	for _, eff := range Pipeline(DefaultConstants()) {
		if eff.Name == "sharp_strike" {
			sharp = eff
		}
	}
	require.NotNil(t, sharp.Apply)

	cfg := BuildConfig{Talents: Talents{SharpStrike: true}}
	in := Totals{Skill: 1, CritRate: 30}
	assert.Equal(t, in, sharp.Apply(in, &cfg))

	in.Skill = 2
	out := sharp.Apply(in, &cfg)
	assert.Equal(t, 50.0, out.CritRate)
	assert.Equal(t, 30.0, in.CritRate)
}
