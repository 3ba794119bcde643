package optim

import (
	"context"
	"math"

	"github.com/san-kum/twiddle/internal/dynamo"
)

// GridSearch evaluates every point of a lattice over the three gains.
type GridSearch struct {
	ranges [3][]float64
}

func NewGridSearch(kp, kd, ki []float64) *GridSearch {
	return &GridSearch{ranges: [3][]float64{kp, kd, ki}}
}

// Size is the number of lattice points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search returns the lowest-cost lattice point. Non-finite costs are
// skipped; if every point is non-finite the cost is +Inf.
func (g *GridSearch) Search(ctx context.Context, cost CostFunc) (dynamo.Gains, float64, error) {
	best := math.Inf(1)
	var bestGains dynamo.Gains

	err := g.searchRecursive(ctx, 0, dynamo.Gains{}, cost, &best, &bestGains)
	return bestGains, best, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current dynamo.Gains,
	cost CostFunc,
	best *float64,
	bestGains *dynamo.Gains,
) error {
	if depth == len(g.ranges) {
		if err := ctx.Err(); err != nil {
			return err
		}
		val := cost(current)
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		if val < *best {
			*best = val
			*bestGains = current
		}
		return nil
	}

	for _, val := range g.ranges[depth] {
		current[depth] = val
		if err := g.searchRecursive(ctx, depth+1, current, cost, best, bestGains); err != nil {
			return err
		}
	}
	return nil
}
