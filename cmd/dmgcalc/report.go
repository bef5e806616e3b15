package main

import (
	"fmt"
	"io"

	"github.com/xtding233/dmgcalc/internal/alloc"
	"github.com/xtding233/dmgcalc/internal/attr"
	"github.com/xtding233/dmgcalc/internal/damage"
	"github.com/xtding233/dmgcalc/internal/history"
	"github.com/xtding233/dmgcalc/internal/sim"
)

func printResult(w io.Writer, r damage.Result) {
	fmt.Fprintln(w, "=== Base stats ===")
	fmt.Fprintf(w, "Physical attack: %.1f\n", r.PhysAtk)
	fmt.Fprintf(w, "Mastery%%: %.2f\n", r.Mastery)
	fmt.Fprintf(w, "Thunder seals: %d\n", r.ThunderSeal)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Skill ===")
	fmt.Fprintf(w, "Active skill: %s\n", r.SkillName)
	fmt.Fprintf(w, "Skill multiplier%%: %g\n", r.SkillMulti)
	fmt.Fprintf(w, "Flat damage: %g\n", r.SkillAdd)
	if r.DoubleAttack {
		fmt.Fprintln(w, "Double attack (seals >= 3)")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Damage breakdown ===")
	rows := []struct {
		name  string
		value float64
		share float64
	}{
		{"Physical", r.Contributions.PhysAtk, r.Shares.PhysAtk},
		{"Elemental", r.Contributions.ElemAtk, r.Shares.ElemAtk},
		{"Refine", r.Contributions.RefineAtk, r.Shares.RefineAtk},
		{"Flat", r.Contributions.SkillAdd, r.Shares.SkillAdd},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%-9s %10.1f (%.1f%%)\n", row.name+":", row.value, row.share*100)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Zones ===")
	fmt.Fprintf(w, "Common: x%.4f\n", r.Zones.Common)
	fmt.Fprintf(w, "Element: x%.4f\n", r.Zones.Element)
	fmt.Fprintf(w, "All-round: x%.4f\n", r.Zones.AllRound)
	fmt.Fprintf(w, "Crit damage: x%.4f\n", r.Zones.CritDamage)
	fmt.Fprintf(w, "Defense: x%.4f (crit x%.4f)\n", r.Zones.DefenseFactor, r.Zones.CritDefenseFactor)
	fmt.Fprintf(w, "Seal/mastery: x%.4f\n", r.Zones.SealMastery)
	fmt.Fprintln(w)

	b := r.Bonuses
	if b.Talent != 0 || b.Set != 0 || b.Module != 0 || b.Buff != 0 {
		fmt.Fprintln(w, "=== Bonuses ===")
		if b.Talent != 0 {
			fmt.Fprintf(w, "Talents: %.1f%%\n", b.Talent)
		}
		if b.Set != 0 {
			fmt.Fprintf(w, "Sets: %.1f%%\n", b.Set)
		}
		if b.Module != 0 {
			fmt.Fprintf(w, "Modules: %.1f%%\n", b.Module)
		}
		if b.Buff != 0 {
			fmt.Fprintf(w, "Buffs: %.1f%%\n", b.Buff)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "=== Damage ===")
	fmt.Fprintf(w, "Non-crit: %.1f\n", r.NonCritDamage)
	fmt.Fprintf(w, "Crit: %.1f\n", r.CritDamage)
	fmt.Fprintf(w, "Expected: %.1f\n", r.ExpectedDamage)
	fmt.Fprintf(w, "Crit rate: %.2f%%\n", r.EffectiveCritRate)
	fmt.Fprintln(w)
}

func printComparison(w io.Writer, cur history.Snapshot, prev *history.Snapshot) {
	fmt.Fprintln(w, "=== Compared with last run ===")
	if prev == nil {
		fmt.Fprintln(w, "No history yet, nothing to compare.")
		fmt.Fprintln(w)
		return
	}
	d := history.Compare(cur, *prev)
	fmt.Fprintf(w, "Last run: %s\n", d.Since.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Non-crit: %s\n", d.NonCritDamage)
	fmt.Fprintf(w, "Crit: %s\n", d.CritDamage)
	fmt.Fprintf(w, "Expected: %s\n", d.ExpectedDamage)
	fmt.Fprintf(w, "Crit rate: %s\n", d.CritRate)
	fmt.Fprintln(w)
}

func printPlan(w io.Writer, p alloc.Plan) {
	if !p.Feasible {
		fmt.Fprintf(w, "budget below the crit floor (%d points for %.2f%%): all points in crit\n", p.MinCritPoints, p.MinCritTarget)
	}
	fmt.Fprintf(w, "Crit: %d (%.2f%%)\n", p.Best.CritPoints, p.Result.EffectiveCritRate)
	fmt.Fprintf(w, "Mastery: %d\n", p.Best.MasteryPoints)
	fmt.Fprintf(w, "Versatility: %d\n", p.Best.VersatilityPoints)
	fmt.Fprintf(w, "Expected damage: %.2f\n", p.ExpectedDamage)
	fmt.Fprintf(w, "Evaluated: %d\n", p.Evaluations)
}

func printConverted(w io.Writer, c attr.Converted) {
	fmt.Fprintf(w, "Physical attack: %.1f\n", c.PhysicalAttack)
	fmt.Fprintf(w, "Crit: %.2f%%\n", c.CritPercent)
	fmt.Fprintf(w, "Luck: %.2f%%\n", c.LuckPercent)
	fmt.Fprintf(w, "Haste: %.2f%% (attack speed %.2f%%)\n", c.HastePercent, c.AttackSpeedPercent)
	fmt.Fprintf(w, "Mastery: %.2f%%\n", c.MasteryPercent)
	fmt.Fprintf(w, "Versatility: %.2f%%\n", c.VersatilityPercent)
	fmt.Fprintf(w, "HP: %.0f\n", c.TotalHP)
	fmt.Fprintf(w, "Element bonus: %.2f%%\n", c.ElementBonusPercent)
	fmt.Fprintf(w, "All-element bonus: %.2f%%\n", c.AllElementBonusPercent)
}

func printStats(w io.Writer, hits, trials int, st sim.Stats) {
	fmt.Fprintf(w, "%d trials x %d hits\n", trials, hits)
	fmt.Fprintf(w, "Mean: %.1f (analytic %.1f)\n", st.Mean, st.Expected)
	fmt.Fprintf(w, "StdDev: %.1f\n", st.StdDev)
	fmt.Fprintf(w, "P50/P90/P99: %.1f / %.1f / %.1f\n", st.P50, st.P90, st.P99)
	fmt.Fprintf(w, "Min/Max: %.1f / %.1f\n", st.Min, st.Max)
	fmt.Fprintf(w, "Observed crit rate: %.2f%%\n", st.CritRate)
}
