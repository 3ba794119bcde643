package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/twiddle/internal/config"
	"github.com/san-kum/twiddle/internal/dynamo"
	"github.com/san-kum/twiddle/internal/experiment"
	"github.com/san-kum/twiddle/internal/optim"
)

// Sweep retunes the gains at evenly spaced values of one scenario
// parameter. Param is any name accepted by config.Config.SetParam.
type Sweep struct {
	Name   string  `yaml:"name"`
	Preset string  `yaml:"preset"`
	Param  string  `yaml:"param"`
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Steps  int     `yaml:"steps"`
}

type SweepResult struct {
	Value      float64
	Gains      dynamo.Gains
	Cost       float64
	Baseline   float64
	Iterations int
	Converged  bool
}

// Improvement is the fraction of the zero-gain cost removed by tuning.
func (r SweepResult) Improvement() float64 {
	if r.Baseline == 0 {
		return 0
	}
	return 1 - r.Cost/r.Baseline
}

func LoadSweep(path string) (*Sweep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Sweep
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &s, s.Validate()
}

func (s *Sweep) Validate() error {
	if _, ok := config.DefaultConfig().GetParams()[s.Param]; !ok {
		return fmt.Errorf("sweep: %w: %q", dynamo.ErrUnknownParam, s.Param)
	}
	if s.Steps <= 0 {
		return fmt.Errorf("sweep: steps must be positive, got %d", s.Steps)
	}
	if s.Preset != "" && config.GetPreset(s.Preset) == nil {
		return fmt.Errorf("sweep: unknown preset %q", s.Preset)
	}
	return nil
}

func (s *Sweep) Values() []float64 {
	return optim.Linspace(s.Min, s.Max, s.Steps)
}

// RunSweep tunes base (or the sweep's preset, when named) once per value.
// progress, if set, is called after each value.
func RunSweep(ctx context.Context, base *config.Config, s *Sweep, log *slog.Logger, progress func(i, n int, r SweepResult)) ([]SweepResult, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.Preset != "" {
		base = config.GetPreset(s.Preset)
	}
	if base == nil {
		base = config.DefaultConfig()
	}
	if log == nil {
		log = slog.Default()
	}

	values := s.Values()
	results := make([]SweepResult, 0, len(values))

	for i, v := range values {
		cfg := base.Clone()
		if err := cfg.SetParam(s.Param, v); err != nil {
			return results, fmt.Errorf("sweep %s=%v: %w", s.Param, v, err)
		}

		exp, err := experiment.New(cfg, experiment.WithLogger(log.With("sweep", s.Param, "value", v)))
		if err != nil {
			return results, fmt.Errorf("sweep %s=%v: %w", s.Param, v, err)
		}
		res, err := exp.Tune(ctx, nil)
		if err != nil {
			return results, fmt.Errorf("sweep %s=%v: %w", s.Param, v, err)
		}

		r := SweepResult{
			Value:      v,
			Gains:      res.Gains,
			Cost:       res.BestCost,
			Baseline:   exp.Baseline(),
			Iterations: res.Iterations,
			Converged:  res.Converged,
		}
		results = append(results, r)
		if progress != nil {
			progress(i+1, len(values), r)
		}
	}

	return results, nil
}

// Best returns the sweep point with the lowest tuned cost.
func Best(results []SweepResult) (SweepResult, bool) {
	if len(results) == 0 {
		return SweepResult{}, false
	}
	return lo.MinBy(results, func(a, b SweepResult) bool { return a.Cost < b.Cost }), true
}
