package alloc

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/xtding233/dmgcalc/internal/attr"
	"github.com/xtding233/dmgcalc/internal/damage"
)

// MinCritPoints returns the smallest integer crit stat whose curve value reaches
// minCritPercent: ceil(x*divisor/(1-x)) with x = (p-base)/100.
// Targets at or below the base need 0 points; targets at or above the asymptote
// are unreachable and return math.MaxInt.
func MinCritPoints(conv attr.Converter, minCritPercent float64) int {
	curve, _ := conv.Constants().Curve(attr.KindCrit)
	lo, hi := curve.ValidRange()
	if math.IsNaN(minCritPercent) || minCritPercent <= lo {
		return 0
	}
	if minCritPercent >= hi {
		return math.MaxInt
	}
	x := (minCritPercent - curve.BaseOffset) / 100
	raw := math.Ceil(x * curve.Divisor / (1 - x))
	if raw >= float64(math.MaxInt) {
		return math.MaxInt
	}
	return int(raw)
}

// Optimizer searches crit/mastery/versatility splits for the highest expected damage.
// It is safe for concurrent use.
type Optimizer struct {
	conv     attr.Converter
	eval     *damage.Evaluator
	scenario Scenario
	workers  int
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithConverter replaces the default attribute converter.
func WithConverter(conv attr.Converter) Option {
	return func(o *Optimizer) { o.conv = conv }
}

// WithDamageConstants replaces the evaluator constants. Feature groups stay disabled.
func WithDamageConstants(c damage.Constants) Option {
	return func(o *Optimizer) {
		o.eval = damage.NewEvaluator(damage.WithConstants(c), damage.WithFeatures(damage.NoFeatures))
	}
}

// WithScenario replaces DefaultScenario.
func WithScenario(s Scenario) Option {
	return func(o *Optimizer) { o.scenario = s }
}

// WithWorkers bounds the number of goroutines; n <= 0 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *Optimizer) { o.workers = n }
}

// New builds an optimizer.
func New(opts ...Option) *Optimizer {
	o := &Optimizer{
		conv:     attr.Default(),
		eval:     damage.NewEvaluator(damage.WithFeatures(damage.NoFeatures)),
		scenario: DefaultScenario(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.workers <= 0 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// Scenario returns the build evaluated at every grid point.
func (o *Optimizer) Scenario() Scenario { return o.scenario }

// Evaluate runs one candidate through conversion and evaluation.
func (o *Optimizer) Evaluate(c Candidate) damage.Result {
	return o.eval.Evaluate(o.scenario.Build(o.conv, c))
}

// Optimize fixes crit at MinCritPoints and walks mastery from 0 to the remaining
// budget in increments of step, versatility taking the rest. Ties keep the
// lowest mastery. A budget below the crit floor puts every point in crit and
// reports Feasible=false. The only error is ctx cancellation.
func (o *Optimizer) Optimize(ctx context.Context, totalPoints, step int, minCritPercent float64) (Plan, error) {
	if totalPoints < 0 {
		totalPoints = 0
	}
	if step <= 0 {
		step = 1
	}

	minCrit := MinCritPoints(o.conv, minCritPercent)
	plan := Plan{MinCritPoints: minCrit, MinCritTarget: minCritPercent}

	if totalPoints < minCrit {
		best := Candidate{CritPoints: totalPoints}
		res := o.Evaluate(best)
		plan.Best = best
		plan.Result = res
		plan.ExpectedDamage = res.ExpectedDamage
		plan.Evaluations = 1
		return plan, nil
	}

	remaining := totalPoints - minCrit
	n := remaining/step + 1

	type best struct {
		idx int
		res damage.Result
		ok  bool
	}
	workers := min(o.workers, n)
	chunk := (n + workers - 1) / workers
	bests := make([]best, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo, hi := w*chunk, min((w+1)*chunk, n)
		g.Go(func() error {
			var b best
			for i := lo; i < hi; i++ {
				if i%256 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				mastery := i * step
				res := o.Evaluate(Candidate{
					CritPoints:        minCrit,
					MasteryPoints:     mastery,
					VersatilityPoints: remaining - mastery,
				})
				if !b.ok || res.ExpectedDamage > b.res.ExpectedDamage {
					b = best{idx: i, res: res, ok: true}
				}
			}
			bests[w] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Plan{}, err
	}

	// chunks are contiguous and ordered, so a strict > keeps the first maximum
	var top best
	for _, b := range bests {
		if b.ok && (!top.ok || b.res.ExpectedDamage > top.res.ExpectedDamage) {
			top = b
		}
	}

	mastery := top.idx * step
	plan.Best = Candidate{
		CritPoints:        minCrit,
		MasteryPoints:     mastery,
		VersatilityPoints: remaining - mastery,
	}
	plan.Result = top.res
	plan.ExpectedDamage = top.res.ExpectedDamage
	plan.Feasible = true
	plan.Evaluations = n
	return plan, nil
}

// Optimize runs a default optimizer and returns the best split and its expected damage.
func Optimize(totalPoints, step int, minCritPercent float64) (Candidate, float64) {
	plan, _ := New().Optimize(context.Background(), totalPoints, step, minCritPercent)
	return plan.Best, plan.ExpectedDamage
}
