package sim

import (
	"github.com/san-kum/twiddle/internal/control"
	"github.com/san-kum/twiddle/internal/dynamo"
	"github.com/san-kum/twiddle/internal/physics"
)

// Evaluator scores gain vectors by simulating a fixed scenario.
type Evaluator struct {
	scenario  Scenario
	motion    *physics.Bicycle
	noise     dynamo.NoiseFactory
	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

// New creates an evaluator. A nil motion model uses physics.NewBicycle.
// Noisy scenarios draw from a source seeded with scenario.Seed at the start
// of every evaluation.
func New(scenario Scenario, motion *physics.Bicycle) (*Evaluator, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	if motion == nil {
		motion = physics.NewBicycle()
	}
	e := &Evaluator{
		scenario:  scenario,
		motion:    motion,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
	}
	if scenario.Noisy() {
		e.noise = dynamo.SeededNoise(scenario.Seed)
	}
	return e, nil
}

// WithNoise replaces the noise factory. A nil factory disables noise
// sampling.
func (e *Evaluator) WithNoise(f dynamo.NoiseFactory) *Evaluator {
	e.noise = f
	return e
}

// WithMetrics replaces the registered metrics.
func (e *Evaluator) WithMetrics(ms ...dynamo.Metric) *Evaluator {
	e.metrics = append(make([]dynamo.Metric, 0, len(ms)), ms...)
	return e
}

func (e *Evaluator) AddMetric(m dynamo.Metric)     { e.metrics = append(e.metrics, m) }
func (e *Evaluator) AddObserver(o dynamo.Observer) { e.observers = append(e.observers, o) }

func (e *Evaluator) Scenario() Scenario { return e.scenario }

// Evaluate returns the mean squared cross-track error over the scored half
// of the run. Metrics and observers are not called.
func (e *Evaluator) Evaluate(g dynamo.Gains) float64 {
	return e.simulate(g, nil, nil, nil)
}

// Run evaluates g and records every step. Registered metrics are reset
// before the run and observers see every step.
func (e *Evaluator) Run(g dynamo.Gains, observers ...dynamo.Observer) *dynamo.Trajectory {
	for _, m := range e.metrics {
		m.Reset()
	}

	all := make([]dynamo.Observer, 0, len(e.observers)+len(observers))
	all = append(all, e.observers...)
	all = append(all, observers...)

	tr := &dynamo.Trajectory{
		Gains:   g,
		Initial: e.scenario.Vehicle(),
		Warmup:  e.scenario.Steps,
		Samples: make([]dynamo.Sample, 0, 2*e.scenario.Steps),
		Metrics: make(map[string]float64),
	}
	tr.Cost = e.simulate(g, tr, all, e.metrics)

	for _, m := range e.metrics {
		tr.Metrics[m.Name()] = m.Value()
	}
	return tr
}

func (e *Evaluator) simulate(g dynamo.Gains, rec *dynamo.Trajectory, observers []dynamo.Observer, metrics []dynamo.Metric) float64 {
	var noise dynamo.NoiseSource
	if e.noise != nil {
		noise = e.noise()
	}

	pid := control.NewPID(g)
	n := e.scenario.Steps
	speed := e.scenario.Speed
	v := e.scenario.Vehicle()

	prevCTE := v.Y
	cteSum := 0.0
	errSum := 0.0

	// cteSum spans warm-up and scored steps alike
	for i := 0; i < 2*n; i++ {
		cte := v.Y
		cteSum += cte
		steer := pid.Steer(cte, prevCTE, cteSum)

		v = e.motion.Move(v, steer, speed, noise)
		prevCTE = cte

		if i >= n {
			errSum += cte * cte
		}

		for _, m := range metrics {
			m.Observe(i, cte, steer)
		}
		for _, obs := range observers {
			obs.OnStep(i, v, steer)
		}
		if rec != nil {
			rec.Samples = append(rec.Samples, dynamo.Sample{Step: i, CTE: cte, Steering: steer, Vehicle: v})
		}
	}

	return errSum / float64(n)
}
