package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/twiddle/internal/dynamo"
	"github.com/san-kum/twiddle/internal/optim"
	"github.com/san-kum/twiddle/internal/physics"
	"github.com/san-kum/twiddle/internal/sim"
)

type Config struct {
	Seed     int64          `yaml:"seed"`
	Scenario ScenarioConfig `yaml:"scenario"`
	Motion   MotionConfig   `yaml:"motion"`
	Twiddle  TwiddleConfig  `yaml:"twiddle"`
	Log      LogConfig      `yaml:"log"`
}

type PoseConfig struct {
	X           float64 `yaml:"x"`
	Y           float64 `yaml:"y"`
	Orientation float64 `yaml:"orientation"`
}

type ScenarioConfig struct {
	Steps         int        `yaml:"steps"`
	Speed         float64    `yaml:"speed"`
	InitPose      PoseConfig `yaml:"init_pose"`
	DriftDeg      float64    `yaml:"drift_deg"`
	SteeringNoise float64    `yaml:"steering_noise"`
	DistanceNoise float64    `yaml:"distance_noise"`
	Length        float64    `yaml:"length"`
}

type MotionConfig struct {
	MaxSteeringAngle float64 `yaml:"max_steering_angle"`
	Tolerance        float64 `yaml:"tolerance"`
}

type TwiddleConfig struct {
	Tolerance       float64   `yaml:"tolerance"`
	InitialStep     float64   `yaml:"initial_step"`
	InitialGains    []float64 `yaml:"initial_gains,flow"`
	MaxIterations   int       `yaml:"max_iterations"`
	RejectNonFinite bool      `yaml:"reject_non_finite"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario: ScenarioConfig{
			Steps:    sim.DefaultSteps,
			Speed:    sim.DefaultSpeed,
			InitPose: PoseConfig{Y: 1.0},
			DriftDeg: sim.DefaultDriftDeg,
			Length:   dynamo.DefaultLength,
		},
		Motion: MotionConfig{
			MaxSteeringAngle: physics.DefaultMaxSteeringAngle,
			Tolerance:        physics.DefaultTolerance,
		},
		Twiddle: TwiddleConfig{
			Tolerance:       0.001,
			InitialStep:     1.0,
			InitialGains:    []float64{0, 0, 0},
			RejectNonFinite: true,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a YAML file over the defaults; keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	return LoadOver(DefaultConfig(), path)
}

// LoadOver reads a YAML file over a copy of base.
func LoadOver(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Twiddle.InitialGains = append([]float64(nil), c.Twiddle.InitialGains...)
	return &out
}

func (c *Config) Validate() error {
	if err := c.BuildScenario().Validate(); err != nil {
		return err
	}
	if !(c.Motion.MaxSteeringAngle > 0) || c.Motion.MaxSteeringAngle >= math.Pi/2 {
		return &dynamo.ParamError{Name: "max_steering_angle", Value: c.Motion.MaxSteeringAngle, Wrapped: dynamo.ErrParameterBounds}
	}
	if !(c.Motion.Tolerance > 0) {
		return &dynamo.ParamError{Name: "motion.tolerance", Value: c.Motion.Tolerance, Wrapped: dynamo.ErrParameterBounds}
	}
	if _, err := c.TwiddleOptions(); err != nil {
		return err
	}
	return nil
}

// BuildScenario converts the scenario block; drift is given in degrees.
func (c *Config) BuildScenario() sim.Scenario {
	s := c.Scenario
	return sim.Scenario{
		Steps:              s.Steps,
		Speed:              s.Speed,
		InitialX:           s.InitPose.X,
		InitialY:           s.InitPose.Y,
		InitialOrientation: s.InitPose.Orientation,
		SteeringDrift:      sim.DegreesToRadians(s.DriftDeg),
		SteeringNoise:      s.SteeringNoise,
		DistanceNoise:      s.DistanceNoise,
		Length:             s.Length,
		Seed:               c.Seed,
	}
}

func (c *Config) BuildMotion() *physics.Bicycle {
	return &physics.Bicycle{
		Tolerance:        c.Motion.Tolerance,
		MaxSteeringAngle: c.Motion.MaxSteeringAngle,
	}
}

// TwiddleOptions builds optimiser options with the default grow and shrink
// factors. The iteration hook is left for the caller.
func (c *Config) TwiddleOptions() (optim.Options, error) {
	opts := optim.DefaultOptions()
	g, err := dynamo.GainsFromSlice(c.Twiddle.InitialGains)
	if err != nil {
		return opts, err
	}
	opts.Tolerance = c.Twiddle.Tolerance
	opts.InitialStep = c.Twiddle.InitialStep
	opts.InitialGains = g
	opts.MaxIterations = c.Twiddle.MaxIterations
	opts.RejectNonFinite = c.Twiddle.RejectNonFinite

	switch {
	case !(opts.Tolerance > 0):
		return opts, &dynamo.ParamError{Name: "twiddle.tolerance", Value: opts.Tolerance, Wrapped: dynamo.ErrParameterBounds}
	case !(opts.InitialStep > 0):
		return opts, &dynamo.ParamError{Name: "twiddle.initial_step", Value: opts.InitialStep, Wrapped: dynamo.ErrParameterBounds}
	case opts.MaxIterations < 0:
		return opts, &dynamo.ParamError{Name: "twiddle.max_iterations", Value: float64(opts.MaxIterations), Wrapped: dynamo.ErrParameterBounds}
	case !g.IsValid():
		return opts, fmt.Errorf("%w: %v", dynamo.ErrInvalidGains, g)
	}
	return opts, nil
}

// GetParams lists the scenario parameters a sweep can vary. Drift is in
// degrees here, unlike sim.Scenario.
func (c *Config) GetParams() map[string]float64 {
	return map[string]float64{
		"drift":          c.Scenario.DriftDeg,
		"length":         c.Scenario.Length,
		"steering_noise": c.Scenario.SteeringNoise,
		"distance_noise": c.Scenario.DistanceNoise,
		"speed":          c.Scenario.Speed,
		"steps":          float64(c.Scenario.Steps),
	}
}

func (c *Config) SetParam(name string, value float64) error {
	switch name {
	case "drift":
		c.Scenario.DriftDeg = value
	case "length":
		c.Scenario.Length = value
	case "steering_noise":
		c.Scenario.SteeringNoise = value
	case "distance_noise":
		c.Scenario.DistanceNoise = value
	case "speed":
		c.Scenario.Speed = value
	case "steps":
		if value != math.Trunc(value) {
			return &dynamo.ParamError{Name: name, Value: value, Wrapped: dynamo.ErrParameterBounds}
		}
		c.Scenario.Steps = int(value)
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}
