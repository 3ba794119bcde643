package experiment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/san-kum/twiddle/internal/config"
	"github.com/san-kum/twiddle/internal/dynamo"
	"github.com/san-kum/twiddle/internal/metrics"
	"github.com/san-kum/twiddle/internal/optim"
	"github.com/san-kum/twiddle/internal/sim"
)

// StabilityBand is the |cte| within which a scored step counts as settled.
const StabilityBand = 0.01

// Experiment tunes the gains for one configured scenario.
type Experiment struct {
	cfg  *config.Config
	log  *slog.Logger
	eval *sim.Evaluator
}

type Option func(*Experiment)

func WithLogger(l *slog.Logger) Option {
	return func(e *Experiment) { e.log = l }
}

// WithMetrics replaces the default metric set.
func WithMetrics(ms ...dynamo.Metric) Option {
	return func(e *Experiment) {
		e.eval = e.eval.WithMetrics(ms...)
	}
}

func New(cfg *config.Config, opts ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("experiment: %w", err)
	}
	eval, err := sim.New(cfg.BuildScenario(), cfg.BuildMotion())
	if err != nil {
		return nil, fmt.Errorf("experiment: %w", err)
	}
	for _, m := range DefaultMetrics(cfg.Scenario.Steps) {
		eval.AddMetric(m)
	}

	e := &Experiment{
		cfg:  cfg,
		log:  slog.Default(),
		eval: eval,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func DefaultMetrics(warmup int) []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewScoredMSE(warmup),
		metrics.NewMaxCTE(warmup),
		metrics.NewStability(StabilityBand, warmup),
		metrics.NewControlEffort(),
	}
}

func (e *Experiment) Evaluator() *sim.Evaluator { return e.eval }
func (e *Experiment) Config() *config.Config     { return e.cfg }

// Baseline is the cost of driving with all gains at zero.
func (e *Experiment) Baseline() float64 {
	return e.eval.Evaluate(dynamo.Gains{})
}

// Tune runs twiddle to convergence. onIter, if set, sees every pass after
// it is logged. A search that never found a finite cost fails with
// dynamo.ErrNonFiniteCost.
func (e *Experiment) Tune(ctx context.Context, onIter func(optim.Record)) (optim.Result, error) {
	opts, err := e.cfg.TwiddleOptions()
	if err != nil {
		return optim.Result{}, fmt.Errorf("experiment: %w", err)
	}
	opts.OnIteration = func(r optim.Record) {
		e.log.Debug("twiddle pass",
			"iteration", r.Iteration,
			"gains", r.Gains.String(),
			"best", r.BestCost,
			"step_sum", r.StepSum())
		if onIter != nil {
			onIter(r)
		}
	}

	tw, err := optim.NewTwiddle(e.eval.Evaluate, opts)
	if err != nil {
		return optim.Result{}, fmt.Errorf("experiment: %w", err)
	}

	e.log.Info("tuning started",
		"initial_gains", opts.InitialGains.String(),
		"initial_cost", tw.BestCost(),
		"tolerance", opts.Tolerance)

	res, err := tw.Run(ctx)
	if err != nil {
		e.log.Warn("tuning interrupted", "iterations", res.Iterations, "best", res.BestCost, "error", err)
		return res, err
	}
	if math.IsNaN(res.BestCost) || math.IsInf(res.BestCost, 0) {
		return res, fmt.Errorf("experiment: %w after %d iterations", dynamo.ErrNonFiniteCost, res.Iterations)
	}

	e.log.Info("tuning finished",
		"converged", res.Converged,
		"gains", res.Gains.String(),
		"cost", res.BestCost,
		"iterations", res.Iterations)
	return res, nil
}

// FinalPass re-runs the scenario with g, recording the trajectory.
func (e *Experiment) FinalPass(g dynamo.Gains, observers ...dynamo.Observer) *dynamo.Trajectory {
	return e.eval.Run(g, observers...)
}

type Report struct {
	Baseline   float64
	Gains      dynamo.Gains
	Cost       float64
	Iterations int
	Converged  bool
	Metrics    map[string]float64
	Trajectory *dynamo.Trajectory `json:"-"`
}

// Run is the full tuning session: one progress line per pass, then the
// diagnostic pass with the tuned gains (when diagnostic is set), then the
// final parameters and their cost.
func (e *Experiment) Run(ctx context.Context, out io.Writer, diagnostic bool) (*Report, error) {
	res, err := e.Tune(ctx, func(r optim.Record) {
		fmt.Fprintln(out, r)
	})
	if err != nil {
		return nil, err
	}

	var observers []dynamo.Observer
	if diagnostic {
		observers = append(observers, sim.NewDiagnosticPrinter(out))
	}
	tr := e.FinalPass(res.Gains, observers...)

	fmt.Fprintf(out, "\nFinal parameters: %s\n -> %v\n", res.Gains, tr.Cost)

	return &Report{
		Baseline:   e.Baseline(),
		Gains:      res.Gains,
		Cost:       tr.Cost,
		Iterations: res.Iterations,
		Converged:  res.Converged,
		Metrics:    tr.Metrics,
		Trajectory: tr,
	}, nil
}
