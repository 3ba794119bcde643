package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/samber/lo"

	"github.com/san-kum/twiddle/internal/config"
	"github.com/san-kum/twiddle/internal/dynamo"
	"github.com/san-kum/twiddle/internal/sim"
)

// MonteCarloConfig scores one gain vector under many noise seeds.
type MonteCarloConfig struct {
	Gains         dynamo.Gains
	Trials        int
	Seed          int64
	SteeringNoise float64
	DistanceNoise float64
	// Threshold is the cost above which a trial counts as a failure.
	Threshold float64
}

type MonteCarloResult struct {
	Trial int
	Seed  int64
	Cost  float64
}

type MonteCarloStats struct {
	Mean     float64
	StdDev   float64
	Min      float64
	Max      float64
	Failures int
}

// RunMonteCarlo evaluates cfg.Gains on the base scenario with the given
// noise, once per trial, each trial with its own seed drawn from cfg.Seed.
func RunMonteCarlo(ctx context.Context, base *config.Config, cfg MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.Trials <= 0 {
		return nil, fmt.Errorf("montecarlo: trials must be positive, got %d", cfg.Trials)
	}
	if base == nil {
		base = config.DefaultConfig()
	}

	sc := base.BuildScenario()
	if err := sc.SetParam("steering_noise", cfg.SteeringNoise); err != nil {
		return nil, err
	}
	if err := sc.SetParam("distance_noise", cfg.DistanceNoise); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	results := make([]MonteCarloResult, 0, cfg.Trials)
	for trial := 0; trial < cfg.Trials; trial++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		sc.Seed = rng.Int63()
		eval, err := sim.New(sc, base.BuildMotion())
		if err != nil {
			return nil, fmt.Errorf("montecarlo: %w", err)
		}
		results = append(results, MonteCarloResult{
			Trial: trial,
			Seed:  sc.Seed,
			Cost:  eval.Evaluate(cfg.Gains),
		})
	}
	return results, nil
}

// Summarize computes cost statistics. Trials with a non-finite cost or a
// cost above threshold are failures; a threshold <= 0 only counts
// non-finite costs.
func Summarize(results []MonteCarloResult, threshold float64) MonteCarloStats {
	if len(results) == 0 {
		return MonteCarloStats{}
	}
	costs := lo.Map(results, func(r MonteCarloResult, _ int) float64 { return r.Cost })
	mean := lo.Mean(costs)
	variance := lo.SumBy(costs, func(c float64) float64 { return (c - mean) * (c - mean) }) / float64(len(costs))

	return MonteCarloStats{
		Mean:   mean,
		StdDev: math.Sqrt(variance),
		Min:    lo.Min(costs),
		Max:    lo.Max(costs),
		Failures: lo.CountBy(costs, func(c float64) bool {
			return math.IsNaN(c) || math.IsInf(c, 0) || (threshold > 0 && c > threshold)
		}),
	}
}
