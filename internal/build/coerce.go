package build

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/xtding233/dmgcalc/internal/damage"
)

// DefaultModuleLevel is used when a module is enabled without a level.
const DefaultModuleLevel = 5

// FromJSON coerces a loosely typed profile document into a BuildConfig.
// Numbers may be given as strings ("5"); unparsable or missing values count as 0,
// booleans accept true/false, nonzero numbers and non-empty strings.
// activeSkill passes through as given, so a missing one selects skill 3 in
// the evaluator. A module level defaults to DefaultModuleLevel only when the
// key is absent.
func FromJSON(b []byte) damage.BuildConfig {
	return fromResult(gjson.ParseBytes(b))
}

// FromRaw marshals r and coerces it like FromJSON.
func FromRaw(r Raw) (damage.BuildConfig, error) {
	b, err := json.Marshal(map[string]any(r))
	if err != nil {
		return damage.BuildConfig{}, fmt.Errorf("encode profile: %w", err)
	}
	return FromJSON(b), nil
}

func fromResult(doc gjson.Result) damage.BuildConfig {
	f := func(key string) float64 { return Num(doc.Get(key)) }
	i := func(key string) int { return Int(doc.Get(key)) }
	on := func(key string) bool { return Truthy(doc.Get(key)) }
	module := func(n int) damage.Module {
		prefix := "module" + strconv.Itoa(n)
		lvl := DefaultModuleLevel
		if v := doc.Get(prefix + "Level"); v.Exists() && v.Type != gjson.Null {
			lvl = Int(v)
		}
		return damage.Module{Enabled: on(prefix + "Enabled"), Level: lvl}
	}

	return damage.BuildConfig{
		PhysAtk:     f("physAtk"),
		ElemAtk:     f("elemAtk"),
		RefineAtk:   f("refineAtk"),
		Mastery:     f("mastery"),
		ThunderSeal: i("thunderSeal"),

		MeleeDmg:      f("meleeDmg"),
		BossDmg:       f("bossDmg"),
		BossDmgToggle: on("bossDmgToggle"),
		VulnDmg:       f("vulnDmg"),
		SkillDmg:      f("skillDmg"),
		PhysDmg:       f("physDmg"),

		AllRound:  f("allRound"),
		ElemBonus: f("elemBonus"),
		CritDmg:   f("critDmg"),
		CritRate:  f("critRate"),

		ActiveSkill: i("activeSkill"),
		Skills: [3]damage.Skill{
			{Multi: f("skill1Multi"), Add: f("skill1Add")},
			{Multi: f("skill2Multi"), Add: f("skill2Add")},
			{Multi: f("skill3Multi"), Add: f("skill3Add")},
		},

		Talents: damage.Talents{
			IaiFlow:           on("talent1"),
			IaiMastery:        on("talent2"),
			LightningRaid:     on("talent3"),
			ThunderCurse:      on("talent4"),
			ThunderCurseLevel: i("talent4Level"),
			SwiftSlash:        on("talent5"),
			SwiftSlashLevel:   i("talent5Level"),
			BreakingSlash:     on("talent6"),
			ThunderReturn:     on("talent7"),
			Burst:             on("talent8"),
			SealAffinity:      on("talent10"),
			DuelAwareness:     on("talent11"),
			SharpStrike:       on("talent12"),
			PursuitWind:       on("talent13"),
			Proficiency:       on("talent14"),
		},
		Sets: damage.Sets{
			Weapon:    on("weaponSet"),
			TwoPiece:  on("twoPieceSet"),
			FourPiece: on("fourPieceSet"),
		},
		Modules: damage.Modules{
			AgilityBlessing: module(1),
			SpecialAttack:   module(2),
			EliteStrike:     module(3),
			CritFocus:       module(4),
			DamageStack:     module(5),
			AgileMovement:   module(6),
		},
		Buffs: damage.Buffs{
			PoisonHive:   damage.PoisonHive{Enabled: on("buff3Enabled"), Value: f("buff3Value")},
			BanditLeader: damage.BanditLeader{Enabled: on("buff4Enabled"), Factor: f("buff4Value")},
		},
	}
}

// Num reads r as a number; numeric strings parse, everything else is 0.
func Num(r gjson.Result) float64 {
	var v float64
	switch r.Type {
	case gjson.Number:
		v = r.Num
	case gjson.String:
		p, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return 0
		}
		v = p
	default:
		return 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Int is Num truncated toward zero.
func Int(r gjson.Result) int {
	v := Num(r)
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0
	}
	return int(v)
}

// Truthy reads r as a toggle: true, nonzero numbers, "true"-like or other
// non-empty strings, objects and arrays.
func Truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.True:
		return true
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		if b, err := strconv.ParseBool(r.Str); err == nil {
			return b
		}
		return r.Str != ""
	case gjson.JSON:
		return true
	}
	return false
}
