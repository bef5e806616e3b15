package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xtding233/dmgcalc/internal/alloc"
	"github.com/xtding233/dmgcalc/internal/attr"
	"github.com/xtding233/dmgcalc/internal/build"
	"github.com/xtding233/dmgcalc/internal/config"
	"github.com/xtding233/dmgcalc/internal/damage"
	"github.com/xtding233/dmgcalc/internal/history"
	"github.com/xtding233/dmgcalc/internal/sim"
)

func newFlagSet(e env, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

func cmdEval(_ context.Context, e env, cfg config.Service, args []string) error {
	fs := newFlagSet(e, "eval")
	profile := fs.String("profile", "", "profile name in the profile directory (empty: defaults only)")
	dir := fs.String("profiles", cfg.ProfileDir, "profile directory")
	historyPath := fs.String("history", cfg.HistoryPath, "history file")
	noHistory := fs.Bool("no-history", false, "neither compare with nor update the history file")
	asJSON := fs.Bool("json", false, "print the result as JSON")
	sets := setFlags{}
	fs.Var(sets, "set", "override a profile key, key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	o := make(build.Overrides, len(sets))
	for k, v := range sets {
		o[k] = v
	}
	bc, err := build.NewLoader(*dir).Load(*profile, o)
	if err != nil {
		return err
	}
	res := damage.Evaluate(bc)

	if *asJSON {
		enc := json.NewEncoder(e.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	printResult(e.stdout, res)
	if *noHistory {
		return nil
	}

	prev, err := history.Load(*historyPath)
	if err != nil {
		// a corrupt history must not block the evaluation
		slog.Warn("ignoring unreadable history", "path", *historyPath, "err", err)
	}
	cur := history.FromResult(res, *profile, e.now())
	printComparison(e.stdout, cur, prev)
	if err := history.Save(*historyPath, cur); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "history saved to %s\n", *historyPath)
	return nil
}

func cmdOptimize(ctx context.Context, e env, cfg config.Service, args []string) error {
	fs := newFlagSet(e, "optimize")
	total := fs.Int("total", cfg.Optimizer.TotalPoints, "attribute points to distribute")
	step := fs.Int("step", cfg.Optimizer.Step, "mastery increment of the search grid")
	minCrit := fs.Float64("min-crit", cfg.Optimizer.MinCrit, "crit rate floor, percent")
	workers := fs.Int("workers", cfg.Optimizer.Workers, "search goroutines (0: GOMAXPROCS)")
	scenarioPath := fs.String("scenario", "", "YAML file overriding the evaluated scenario")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := []alloc.Option{alloc.WithWorkers(*workers)}
	if *scenarioPath != "" {
		sc, err := readScenario(*scenarioPath)
		if err != nil {
			return err
		}
		opts = append(opts, alloc.WithScenario(sc))
	}
	plan, err := alloc.New(opts...).Optimize(ctx, *total, *step, *minCrit)
	if err != nil {
		return err
	}
	printPlan(e.stdout, plan)
	return nil
}

func readScenario(path string) (alloc.Scenario, error) {
	sc := alloc.DefaultScenario()
	b, err := os.ReadFile(path)
	if err != nil {
		return sc, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &sc); err != nil {
		return sc, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	return sc, nil
}

func cmdConvert(_ context.Context, e env, _ config.Service, args []string) error {
	fs := newFlagSet(e, "convert")
	kind := fs.String("kind", "", "curve: crit, luck, haste, mastery, versatility, element")
	raw := fs.Float64("raw", -1, "raw value to convert to percent")
	percent := fs.Float64("percent", -1, "percent to convert back to a raw value")
	pursuit := fs.Bool("pursuit", false, "apply the pursuit modifier to crit and luck")
	attrsPath := fs.String("attrs", "", "YAML file of panel attributes to convert at once")
	if err := fs.Parse(args); err != nil {
		return err
	}
	conv := attr.Default()

	if *attrsPath != "" {
		b, err := os.ReadFile(*attrsPath)
		if err != nil {
			return fmt.Errorf("reading attributes %s: %w", *attrsPath, err)
		}
		var a attr.Attributes
		if err := yaml.Unmarshal(b, &a); err != nil {
			return fmt.Errorf("parsing attributes %s: %w", *attrsPath, err)
		}
		if err := attr.Validate(a); err != nil {
			fmt.Fprintf(e.stderr, "warning: %v\n", err)
		}
		printConverted(e.stdout, conv.ConvertAll(a, *pursuit))
		return nil
	}

	k := attr.Kind(*kind)
	if _, ok := conv.Constants().Curve(k); !ok {
		return fmt.Errorf("unknown kind %q", *kind)
	}
	switch {
	case *raw >= 0:
		p := conv.Percent(k, *raw)
		switch k {
		case attr.KindCrit:
			p = conv.CritPercent(*raw, *pursuit)
		case attr.KindLuck:
			p = conv.LuckPercent(*raw, *pursuit)
		}
		fmt.Fprintf(e.stdout, "%s %.0f -> %.2f%%\n", k, *raw, p)
	case *percent >= 0:
		r := conv.Raw(k, *percent)
		switch k {
		case attr.KindCrit:
			r = conv.CritRaw(*percent, *pursuit)
		case attr.KindLuck:
			r = conv.LuckRaw(*percent, *pursuit)
		}
		fmt.Fprintf(e.stdout, "%s %.2f%% -> %.1f\n", k, *percent, r)
	default:
		return fmt.Errorf("one of -raw, -percent or -attrs is required")
	}
	return nil
}

func cmdProfiles(_ context.Context, e env, cfg config.Service, args []string) error {
	fs := newFlagSet(e, "profiles")
	dir := fs.String("profiles", cfg.ProfileDir, "profile directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	list, err := build.NewLoader(*dir).List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintf(e.stdout, "no profiles in %s\n", *dir)
		return nil
	}
	for i, p := range list {
		if p.Name != "" {
			fmt.Fprintf(e.stdout, "%d. %s (%s)\n", i+1, p.ID, p.Name)
		} else {
			fmt.Fprintf(e.stdout, "%d. %s\n", i+1, p.ID)
		}
	}
	return nil
}

func cmdSimulate(ctx context.Context, e env, cfg config.Service, args []string) error {
	fs := newFlagSet(e, "simulate")
	profile := fs.String("profile", "", "profile name (empty: defaults only)")
	dir := fs.String("profiles", cfg.ProfileDir, "profile directory")
	hits := fs.Int("hits", cfg.Simulation.Hits, "hits per trial")
	trials := fs.Int("trials", cfg.Simulation.Trials, "number of trials")
	seed := fs.Uint64("seed", 0, "seed for a reproducible run (0: crypto random)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	bc, err := build.NewLoader(*dir).Load(*profile, nil)
	if err != nil {
		return err
	}
	res := damage.Evaluate(bc)

	rng := sim.DefaultRNG()
	if *seed != 0 {
		rng = sim.NewSeededRNG(*seed)
	}
	st, err := sim.RunMonteCarlo(ctx, res, sim.Params{Hits: *hits, Trials: *trials}, rng)
	if err != nil {
		return err
	}
	printStats(e.stdout, *hits, *trials, st)
	return nil
}
