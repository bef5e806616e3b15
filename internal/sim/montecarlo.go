package sim

import (
	"context"
	"math"
	"sort"

	"github.com/xtding233/dmgcalc/internal/damage"
)

// Params describes one simulation run against an evaluated build.
type Params struct {
	Hits   int // hits per trial
	Trials int
}

// Stats summarizes per-trial totals.
type Stats struct {
	Mean     float64 `json:"mean"`
	Var      float64 `json:"var"`
	StdDev   float64 `json:"stdDev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	P50      float64 `json:"p50"`
	P90      float64 `json:"p90"`
	P99      float64 `json:"p99"`
	CritRate float64 `json:"critRate"` // observed, percent
	// Expected is Hits * ExpectedDamage, the analytic mean.
	Expected float64 `json:"expected"`

	Samples []float64 `json:"-"`
}

// calcStats computes mean/variance/percentiles for the samples.
func calcStats(xs []float64) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += v
	}
	mean := sum / float64(n)

	// population variance
	var acc float64
	for _, v := range xs {
		d := v - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]float64(nil), xs...)
	sort.Float64s(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return cp[0]
		}
		if p >= 1 {
			return cp[n-1]
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return cp[i]
		}
		return cp[i]*(1-f) + cp[i+1]*f
	}

	return Stats{
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		Min:     cp[0],
		Max:     cp[n-1],
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}

// checkEvery is how many rolls pass between context checks.
const checkEvery = 4096

// simulateOne returns the damage dealt over hits hits and the number of crits.
func simulateOne(ctx context.Context, res damage.Result, chance float64, hits int, rng RandomSource) (float64, int, error) {
	var total float64
	crits := 0
	for i := 0; i < hits; i++ {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return 0, 0, err
			}
		}
		crit, err := Roll(chance, rng)
		if err != nil {
			return 0, 0, err
		}
		if crit {
			total += res.CritDamage
			crits++
		} else {
			total += res.NonCritDamage
		}
	}
	return total, crits, nil
}

// RunMonteCarlo rolls crits for res over p.Trials trials of p.Hits hits each.
// A nil rng uses DefaultRNG. It stops with ctx.Err() once ctx is done.
func RunMonteCarlo(ctx context.Context, res damage.Result, p Params, rng RandomSource) (Stats, error) {
	if p.Trials <= 0 || p.Hits <= 0 {
		return Stats{}, nil
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	chance := CritChance(res.EffectiveCritRate)

	samples := make([]float64, p.Trials)
	crits := 0
	for i := range samples {
		v, c, err := simulateOne(ctx, res, chance, p.Hits, rng)
		if err != nil {
			return Stats{}, err
		}
		samples[i] = v
		crits += c
	}

	st := calcStats(samples)
	st.CritRate = float64(crits) / float64(p.Trials*p.Hits) * 100
	st.Expected = float64(p.Hits) * res.ExpectedDamage
	return st, nil
}
