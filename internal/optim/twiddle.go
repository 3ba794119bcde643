package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/samber/lo"
	"github.com/san-kum/twiddle/internal/dynamo"
)

// CostFunc scores a gain vector; lower is better.
type CostFunc func(dynamo.Gains) float64

type Options struct {
	// Tolerance stops the search once the step sizes sum to at most this.
	Tolerance    float64
	InitialGains dynamo.Gains
	InitialStep  float64
	Grow         float64
	Shrink       float64
	// MaxIterations bounds the number of passes; 0 means unbounded.
	MaxIterations int
	// RejectNonFinite scores NaN and ±Inf as +Inf so such trials are never
	// accepted.
	RejectNonFinite bool
	OnIteration     func(Record)
}

func DefaultOptions() Options {
	return Options{
		Tolerance:       0.001,
		InitialStep:     1.0,
		Grow:            1.1,
		Shrink:          0.9,
		RejectNonFinite: true,
	}
}

func (o Options) validate() error {
	switch {
	case !(o.Tolerance > 0):
		return &dynamo.ParamError{Name: "tolerance", Value: o.Tolerance, Wrapped: dynamo.ErrParameterBounds}
	case !(o.InitialStep > 0):
		return &dynamo.ParamError{Name: "initial_step", Value: o.InitialStep, Wrapped: dynamo.ErrParameterBounds}
	case !(o.Grow > 1):
		return &dynamo.ParamError{Name: "grow", Value: o.Grow, Wrapped: dynamo.ErrParameterBounds}
	case !(o.Shrink > 0 && o.Shrink < 1):
		return &dynamo.ParamError{Name: "shrink", Value: o.Shrink, Wrapped: dynamo.ErrParameterBounds}
	case o.MaxIterations < 0:
		return &dynamo.ParamError{Name: "max_iterations", Value: float64(o.MaxIterations), Wrapped: dynamo.ErrParameterBounds}
	case !o.InitialGains.IsValid():
		return fmt.Errorf("%w: initial gains %v", dynamo.ErrInvalidGains, o.InitialGains)
	}
	return nil
}

// Record is the state after one full pass over the gains.
type Record struct {
	Iteration int
	Gains     dynamo.Gains
	Steps     [3]float64
	BestCost  float64
}

func (r Record) StepSum() float64 { return lo.Sum(r.Steps[:]) }

func (r Record) String() string {
	return fmt.Sprintf("Twiddle # %d %s -> %v", r.Iteration, r.Gains, r.BestCost)
}

type Result struct {
	Gains       dynamo.Gains
	BestCost    float64
	InitialCost float64
	Iterations  int
	History     []Record
	Converged   bool
}

// Twiddle is coordinate-wise hill climbing with a per-gain step size. Each
// pass tries gain+step, then gain-step; an improvement grows the step, no
// improvement restores the gain and shrinks it.
type Twiddle struct {
	cost      CostFunc
	opts      Options
	gains     dynamo.Gains
	steps     [3]float64
	best      float64
	initial   float64
	iteration int
	history   []Record
}

// NewTwiddle evaluates the initial gains and returns a search ready to step.
func NewTwiddle(cost CostFunc, opts Options) (*Twiddle, error) {
	if cost == nil {
		return nil, fmt.Errorf("optim: cost function is required")
	}
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("optim: %w", err)
	}

	t := &Twiddle{
		cost:    cost,
		opts:    opts,
		gains:   opts.InitialGains,
		history: make([]Record, 0),
	}
	for i := range t.steps {
		t.steps[i] = opts.InitialStep
	}
	t.best = t.eval(t.gains)
	t.initial = t.best
	return t, nil
}

func (t *Twiddle) eval(g dynamo.Gains) float64 {
	c := t.cost(g)
	if t.opts.RejectNonFinite && (math.IsNaN(c) || math.IsInf(c, 0)) {
		return math.Inf(1)
	}
	return c
}

// Converged reports whether the step sizes have shrunk to the tolerance.
func (t *Twiddle) Converged() bool {
	return lo.Sum(t.steps[:]) <= t.opts.Tolerance
}

// Step runs one pass over all three gains and reports whether the search
// should continue. A converged search returns its last record unchanged.
func (t *Twiddle) Step() (Record, bool) {
	if t.Converged() {
		return t.last(), false
	}

	for i := range t.gains {
		t.gains[i] += t.steps[i]
		if c := t.eval(t.gains); c < t.best {
			t.best = c
			t.steps[i] *= t.opts.Grow
			continue
		}

		t.gains[i] -= 2 * t.steps[i]
		if c := t.eval(t.gains); c < t.best {
			t.best = c
			t.steps[i] *= t.opts.Grow
			continue
		}

		t.gains[i] += t.steps[i]
		t.steps[i] *= t.opts.Shrink
	}

	t.iteration++
	rec := Record{
		Iteration: t.iteration,
		Gains:     t.gains,
		Steps:     t.steps,
		BestCost:  t.best,
	}
	t.history = append(t.history, rec)
	return rec, !t.Converged()
}

// Run steps until convergence, MaxIterations or cancellation. On
// cancellation the best gains so far are returned along with ctx.Err().
func (t *Twiddle) Run(ctx context.Context) (Result, error) {
	for !t.Converged() {
		if err := ctx.Err(); err != nil {
			return t.Result(), err
		}
		if t.opts.MaxIterations > 0 && t.iteration >= t.opts.MaxIterations {
			break
		}
		rec, _ := t.Step()
		if t.opts.OnIteration != nil {
			t.opts.OnIteration(rec)
		}
	}
	return t.Result(), nil
}

func (t *Twiddle) Result() Result {
	history := make([]Record, len(t.history))
	copy(history, t.history)
	return Result{
		Gains:       t.gains,
		BestCost:    t.best,
		InitialCost: t.initial,
		Iterations:  t.iteration,
		History:     history,
		Converged:   t.Converged(),
	}
}

func (t *Twiddle) last() Record {
	if len(t.history) == 0 {
		return Record{Gains: t.gains, Steps: t.steps, BestCost: t.best}
	}
	return t.history[len(t.history)-1]
}

func (t *Twiddle) Gains() dynamo.Gains { return t.gains }
func (t *Twiddle) Steps() [3]float64   { return t.steps }
func (t *Twiddle) BestCost() float64   { return t.best }
func (t *Twiddle) Iteration() int      { return t.iteration }
