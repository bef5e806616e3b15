// Package service implements the calculator operations shared by the HTTP and
// gRPC surfaces. Requests arrive as loosely typed JSON documents.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/xtding233/dmgcalc/internal/alloc"
	"github.com/xtding233/dmgcalc/internal/attr"
	"github.com/xtding233/dmgcalc/internal/build"
	"github.com/xtding233/dmgcalc/internal/config"
	"github.com/xtding233/dmgcalc/internal/damage"
	"github.com/xtding233/dmgcalc/internal/sim"
)

// ErrBadRequest marks request documents that cannot be served.
var ErrBadRequest = errors.New("bad request")

// MaxEvaluations bounds the grid size of one optimize request.
const MaxEvaluations = 5_000_000

// ProfileSource is the part of build.Loader the service needs.
type ProfileSource interface {
	build.Resolver
	List() ([]build.Profile, error)
}

// Service is safe for concurrent use.
type Service struct {
	profiles ProfileSource
	eval     *damage.Evaluator
	conv     attr.Converter
	opt      config.OptimizerConfig
	sim      config.SimulationConfig
}

// New builds a service. profiles may be nil, in which case only inline
// configs can be evaluated.
func New(profiles ProfileSource, cfg config.Service) *Service {
	return &Service{
		profiles: profiles,
		eval:     damage.NewEvaluator(),
		conv:     attr.Default(),
		opt:      cfg.Optimizer,
		sim:      cfg.Simulation,
	}
}

// EvaluateResponse is the answer to Evaluate.
type EvaluateResponse struct {
	Profile string        `json:"profile,omitempty"`
	Config  any           `json:"config,omitempty"` // merged profile when resolved from disk
	Result  damage.Result `json:"result"`
}

// Evaluate accepts {"config": {...}} with an inline build, or
// {"profile": "name", "overrides": {...}} resolved through the profile source.
func (s *Service) Evaluate(ctx context.Context, body []byte) (EvaluateResponse, error) {
	if err := ctx.Err(); err != nil {
		return EvaluateResponse{}, err
	}
	doc, err := parse(body)
	if err != nil {
		return EvaluateResponse{}, err
	}
	name, raw, cfg, err := s.buildConfig(doc)
	if err != nil {
		return EvaluateResponse{}, err
	}
	resp := EvaluateResponse{Profile: name, Result: s.eval.Evaluate(cfg)}
	if raw != nil {
		resp.Config = raw
	}
	return resp, nil
}

func (s *Service) buildConfig(doc gjson.Result) (string, build.Raw, damage.BuildConfig, error) {
	if c := doc.Get("config"); c.Exists() {
		if !c.IsObject() {
			return "", nil, damage.BuildConfig{}, fmt.Errorf("%w: config must be an object", ErrBadRequest)
		}
		raw, _ := c.Value().(map[string]any)
		if err := build.Validate(raw); err != nil {
			return "", nil, damage.BuildConfig{}, err
		}
		return "", nil, build.FromJSON([]byte(c.Raw)), nil
	}

	if s.profiles == nil {
		return "", nil, damage.BuildConfig{}, fmt.Errorf("%w: no profile directory configured", build.ErrProfileNotFound)
	}
	name := doc.Get("profile").String()
	var o build.Overrides
	if ov := doc.Get("overrides"); ov.Exists() {
		m, ok := ov.Value().(map[string]any)
		if !ok {
			return "", nil, damage.BuildConfig{}, fmt.Errorf("%w: overrides must be an object", ErrBadRequest)
		}
		o = m
	}
	raw, cfg, err := s.profiles.Resolve(name, o)
	if err != nil {
		return "", nil, damage.BuildConfig{}, err
	}
	return name, raw, cfg, nil
}

// Optimize accepts {"totalPoints", "step", "minCrit", "scenario": {...}}.
// Missing numbers fall back to the configured defaults.
func (s *Service) Optimize(ctx context.Context, body []byte) (alloc.Plan, error) {
	doc, err := parse(body)
	if err != nil {
		return alloc.Plan{}, err
	}
	total := s.opt.TotalPoints
	if v := doc.Get("totalPoints"); v.Exists() {
		total = build.Int(v)
	}
	step := s.opt.Step
	if v := doc.Get("step"); v.Exists() {
		step = build.Int(v)
	}
	minCrit := s.opt.MinCrit
	if v := doc.Get("minCrit"); v.Exists() {
		minCrit = build.Num(v)
	}
	if total < 0 {
		return alloc.Plan{}, fmt.Errorf("%w: totalPoints must be >= 0", ErrBadRequest)
	}
	if step <= 0 {
		step = 1
	}
	if total/step+1 > MaxEvaluations {
		return alloc.Plan{}, fmt.Errorf("%w: totalPoints/step exceeds %d evaluations", ErrBadRequest, MaxEvaluations)
	}

	opts := []alloc.Option{alloc.WithConverter(s.conv), alloc.WithWorkers(s.opt.Workers)}
	if sc := doc.Get("scenario"); sc.Exists() {
		opts = append(opts, alloc.WithScenario(scenario(sc)))
	}
	return alloc.New(opts...).Optimize(ctx, total, step, minCrit)
}

// scenario overlays the given keys on the default scenario.
func scenario(doc gjson.Result) alloc.Scenario {
	sc := alloc.DefaultScenario()
	set := func(key string, dst *float64) {
		if v := doc.Get(key); v.Exists() {
			*dst = build.Num(v)
		}
	}
	set("physAtk", &sc.PhysAtk)
	set("elemAtk", &sc.ElemAtk)
	set("skillMulti", &sc.SkillMulti)
	set("skillAdd", &sc.SkillAdd)
	set("critDmg", &sc.CritDmg)
	if v := doc.Get("thunderSeal"); v.Exists() {
		sc.ThunderSeal = build.Int(v)
	}
	return sc
}

// ConvertResponse is the answer to Convert.
type ConvertResponse struct {
	Converted *attr.Converted `json:"converted,omitempty"`
	Warnings  []string        `json:"warnings,omitempty"`

	// single-curve mode
	Kind    attr.Kind `json:"kind,omitempty"`
	Raw     *float64  `json:"raw,omitempty"`
	Percent *float64  `json:"percent,omitempty"`
}

// Convert has two modes. With "kind" it converts one value along one curve:
// {"kind": "crit", "raw": 3648} or {"kind": "crit", "percent": 50}, honoring
// "pursuit" for crit and luck. Otherwise it runs every converter over
// {"attributes": {...}, "pursuit": bool}; advisory validation problems are
// reported as warnings.
func (s *Service) Convert(body []byte) (ConvertResponse, error) {
	doc, err := parse(body)
	if err != nil {
		return ConvertResponse{}, err
	}
	pursuit := build.Truthy(doc.Get("pursuit"))

	if k := doc.Get("kind"); k.Exists() {
		return s.convertOne(attr.Kind(k.String()), doc, pursuit)
	}

	a := attributes(doc.Get("attributes"))
	conv := s.conv.ConvertAll(a, pursuit)
	resp := ConvertResponse{Converted: &conv}
	if err := attr.Validate(a); err != nil {
		resp.Warnings = splitJoined(err)
	}
	return resp, nil
}

func (s *Service) convertOne(k attr.Kind, doc gjson.Result, pursuit bool) (ConvertResponse, error) {
	if _, ok := s.conv.Constants().Curve(k); !ok {
		return ConvertResponse{}, fmt.Errorf("%w: unknown kind %q", ErrBadRequest, k)
	}
	resp := ConvertResponse{Kind: k}
	switch {
	case doc.Get("raw").Exists():
		raw := build.Num(doc.Get("raw"))
		var p float64
		switch k {
		case attr.KindCrit:
			p = s.conv.CritPercent(raw, pursuit)
		case attr.KindLuck:
			p = s.conv.LuckPercent(raw, pursuit)
		default:
			p = s.conv.Percent(k, raw)
		}
		resp.Raw, resp.Percent = &raw, &p
	case doc.Get("percent").Exists():
		p := build.Num(doc.Get("percent"))
		var raw float64
		switch k {
		case attr.KindCrit:
			raw = s.conv.CritRaw(p, pursuit)
		case attr.KindLuck:
			raw = s.conv.LuckRaw(p, pursuit)
		default:
			raw = s.conv.Raw(k, p)
		}
		resp.Raw, resp.Percent = &raw, &p
	default:
		return ConvertResponse{}, fmt.Errorf("%w: raw or percent is required", ErrBadRequest)
	}
	return resp, nil
}

func attributes(doc gjson.Result) attr.Attributes {
	f := func(key string) float64 { return build.Num(doc.Get(key)) }
	return attr.Attributes{
		Agility:         f("agility"),
		WeaponAtk:       f("weaponAtk"),
		ModuleAtk:       f("moduleAtk"),
		AtkBonus:        f("atkBonus"),
		Crit:            f("crit"),
		Luck:            f("luck"),
		Haste:           f("haste"),
		BaseHaste:       f("baseHaste"),
		Mastery:         f("mastery"),
		Versatility:     f("versatility"),
		Stamina:         f("stamina"),
		HPBase:          f("hpBase"),
		ElementPower:    f("elementPower"),
		AllElementPower: f("allElementPower"),
	}
}

// Profiles lists the profile directory.
func (s *Service) Profiles() ([]build.Profile, error) {
	if s.profiles == nil {
		return nil, nil
	}
	return s.profiles.List()
}

// SimulateResponse is the answer to Simulate.
type SimulateResponse struct {
	Profile string        `json:"profile,omitempty"`
	Result  damage.Result `json:"result"`
	Hits    int           `json:"hits"`
	Trials  int           `json:"trials"`
	Stats   sim.Stats     `json:"stats"`
}

// Simulate evaluates a build like Evaluate, then rolls crits for "trials"
// trials of "hits" hits each. A "seed" makes the run reproducible. Both counts
// are bounded by the simulation config and the run stops when ctx is done.
func (s *Service) Simulate(ctx context.Context, body []byte) (SimulateResponse, error) {
	doc, err := parse(body)
	if err != nil {
		return SimulateResponse{}, err
	}
	name, _, cfg, err := s.buildConfig(doc)
	if err != nil {
		return SimulateResponse{}, err
	}

	hits, trials := s.sim.Hits, s.sim.Trials
	if v := doc.Get("hits"); v.Exists() {
		hits = build.Int(v)
	}
	if v := doc.Get("trials"); v.Exists() {
		trials = build.Int(v)
	}
	if hits <= 0 || trials <= 0 {
		return SimulateResponse{}, fmt.Errorf("%w: hits and trials must be > 0", ErrBadRequest)
	}
	if s.sim.MaxTrials > 0 && trials > s.sim.MaxTrials {
		return SimulateResponse{}, fmt.Errorf("%w: trials must be <= %d", ErrBadRequest, s.sim.MaxTrials)
	}
	if s.sim.MaxHits > 0 && hits > s.sim.MaxHits {
		return SimulateResponse{}, fmt.Errorf("%w: hits must be <= %d", ErrBadRequest, s.sim.MaxHits)
	}

	rng := sim.DefaultRNG()
	if v := doc.Get("seed"); v.Exists() {
		rng = sim.NewSeededRNG(v.Uint())
	}
	res := s.eval.Evaluate(cfg)
	st, err := sim.RunMonteCarlo(ctx, res, sim.Params{Hits: hits, Trials: trials}, rng)
	if err != nil {
		return SimulateResponse{}, err
	}
	return SimulateResponse{Profile: name, Result: res, Hits: hits, Trials: trials, Stats: st}, nil
}

// parse accepts an empty body as {}.
func parse(body []byte) (gjson.Result, error) {
	if len(body) == 0 {
		return gjson.Parse("{}"), nil
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%w: malformed JSON", ErrBadRequest)
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: body must be a JSON object", ErrBadRequest)
	}
	return doc, nil
}

func splitJoined(err error) []string {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range j.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
