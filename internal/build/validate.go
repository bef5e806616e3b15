package build

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// MaxThunderSeal is the largest seal stack a profile may declare.
const MaxThunderSeal = 6

// non-negative numeric keys
var numericKeys = []string{
	"physAtk", "elemAtk", "refineAtk", "mastery",
	"meleeDmg", "bossDmg", "vulnDmg", "skillDmg", "physDmg",
	"allRound", "elemBonus", "critDmg", "critRate",
	"skill1Multi", "skill1Add", "skill2Multi", "skill2Add", "skill3Multi", "skill3Add",
	"talent4Level", "talent5Level",
	"buff3Value", "buff4Value",
}

// Validate checks semantic constraints of a merged profile. Missing keys are fine.
func Validate(r Raw) error {
	var errs []string
	// null values count as missing
	get := func(k string) (any, bool) {
		v, ok := r[k]
		return v, ok && v != nil
	}

	for _, k := range numericKeys {
		v, ok := get(k)
		if !ok {
			continue
		}
		f, ok := numeric(v)
		switch {
		case !ok:
			errs = append(errs, k+" must be a number")
		case f < 0:
			errs = append(errs, k+" must be >= 0")
		}
	}

	if v, ok := get("thunderSeal"); ok {
		if f, ok := numeric(v); !ok || f < 0 || f > MaxThunderSeal || f != math.Trunc(f) {
			errs = append(errs, fmt.Sprintf("thunderSeal must be an integer in [0,%d]", MaxThunderSeal))
		}
	}
	if v, ok := get("activeSkill"); ok {
		if f, ok := numeric(v); !ok || (f != 1 && f != 2 && f != 3) {
			errs = append(errs, "activeSkill must be one of: 1, 2, 3")
		}
	}
	for n := 1; n <= 6; n++ {
		k := fmt.Sprintf("module%dLevel", n)
		v, ok := get(k)
		if !ok {
			continue
		}
		if f, ok := numeric(v); !ok || f < 1 || f > 6 || f != math.Trunc(f) {
			errs = append(errs, k+" must be an integer in [1,6]")
		}
	}
	if v, ok := get("name"); ok {
		if _, ok := v.(string); !ok {
			errs = append(errs, "name must be a string")
		}
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(errs, "; "))
	}
	return nil
}

// numeric accepts numbers and numeric strings, the same values FromJSON reads.
func numeric(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float64:
		f = n
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
