package alloc

import (
	"github.com/xtding233/dmgcalc/internal/attr"
	"github.com/xtding233/dmgcalc/internal/damage"
)

// Candidate is one split of the attribute-point budget.
type Candidate struct {
	CritPoints        int `json:"critPoints"`
	MasteryPoints     int `json:"masteryPoints"`
	VersatilityPoints int `json:"versatilityPoints"`
}

// Total returns the number of points spent.
func (c Candidate) Total() int {
	return c.CritPoints + c.MasteryPoints + c.VersatilityPoints
}

// Scenario is the fixed simplified build the search evaluates: flat attack,
// no talents, sets, modules or buffs. Only crit, mastery and versatility vary.
type Scenario struct {
	PhysAtk     float64 `json:"physAtk" yaml:"phys_atk"`
	ElemAtk     float64 `json:"elemAtk" yaml:"elem_atk"`
	SkillMulti  float64 `json:"skillMulti" yaml:"skill_multi"` // percent
	SkillAdd    float64 `json:"skillAdd" yaml:"skill_add"`
	ThunderSeal int     `json:"thunderSeal" yaml:"thunder_seal"`
	CritDmg     float64 `json:"critDmg" yaml:"crit_dmg"` // percent
}

// DefaultScenario is 1000 attack, a 100% skill, one seal and +50% crit damage.
func DefaultScenario() Scenario {
	return Scenario{
		PhysAtk:     1000,
		SkillMulti:  100,
		ThunderSeal: 1,
		CritDmg:     50,
	}
}

// Build turns c into the evaluator input for this scenario.
func (s Scenario) Build(conv attr.Converter, c Candidate) damage.BuildConfig {
	skill := damage.Skill{Multi: s.SkillMulti, Add: s.SkillAdd}
	return damage.BuildConfig{
		PhysAtk:     s.PhysAtk,
		ElemAtk:     s.ElemAtk,
		ThunderSeal: s.ThunderSeal,
		Mastery:     conv.MasteryPercent(float64(c.MasteryPoints)),
		AllRound:    conv.VersatilityPercent(float64(c.VersatilityPoints)),
		CritRate:    conv.CritPercent(float64(c.CritPoints), false),
		CritDmg:     s.CritDmg,
		ActiveSkill: 1,
		Skills:      [3]damage.Skill{skill, skill, skill},
	}
}

// Plan summarizes a search.
type Plan struct {
	Best           Candidate     `json:"best"`
	ExpectedDamage float64       `json:"expectedDamage"`
	Result         damage.Result `json:"result"`

	// Feasible is false when the budget cannot reach the crit floor;
	// Best then holds every point in crit.
	Feasible      bool    `json:"feasible"`
	MinCritPoints int     `json:"minCritPoints"`
	MinCritTarget float64 `json:"minCritTarget"`
	Evaluations   int     `json:"evaluations"`
}
