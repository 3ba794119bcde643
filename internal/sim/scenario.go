package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/twiddle/internal/dynamo"
)

const (
	DefaultSteps    = 100
	DefaultSpeed    = 1.0
	DefaultDriftDeg = 10.0
)

// Scenario fixes everything about a trajectory evaluation except the gains.
// A run lasts 2*Steps; the first Steps are warm-up and do not count toward
// the cost.
type Scenario struct {
	Steps              int
	Speed              float64
	InitialX           float64
	InitialY           float64
	InitialOrientation float64
	SteeringDrift      float64
	SteeringNoise      float64
	DistanceNoise      float64
	Length             float64
	Seed               int64
}

// DefaultScenario starts one unit off the x-axis, heading along it, with a
// 10 degree steering drift and no noise.
func DefaultScenario() Scenario {
	return Scenario{
		Steps:         DefaultSteps,
		Speed:         DefaultSpeed,
		InitialY:      1.0,
		SteeringDrift: DegreesToRadians(DefaultDriftDeg),
		Length:        dynamo.DefaultLength,
	}
}

// DegreesToRadians converts at run time in float64, matching how a configured
// drift is converted.
func DegreesToRadians(deg float64) float64 {
	return deg / 180.0 * math.Pi
}

func (s Scenario) Validate() error {
	switch {
	case s.Steps <= 0:
		return fmt.Errorf("%w: steps must be positive, got %d", dynamo.ErrInvalidScenario, s.Steps)
	case !(s.Speed > 0):
		return fmt.Errorf("%w: speed must be positive, got %v", dynamo.ErrInvalidScenario, s.Speed)
	case !(s.Length > 0):
		return fmt.Errorf("%w: length must be positive, got %v", dynamo.ErrInvalidScenario, s.Length)
	case s.SteeringNoise < 0 || s.DistanceNoise < 0:
		return fmt.Errorf("%w: noise must be non-negative", dynamo.ErrInvalidScenario)
	}
	return nil
}

// Noisy reports whether any noise is configured.
func (s Scenario) Noisy() bool {
	return s.SteeringNoise != 0 || s.DistanceNoise != 0
}

// Vehicle builds the initial vehicle of a run.
func (s Scenario) Vehicle() dynamo.Vehicle {
	return dynamo.NewVehicle(s.Length).
		WithPose(s.InitialX, s.InitialY, s.InitialOrientation).
		WithNoise(s.SteeringNoise, s.DistanceNoise).
		WithDrift(s.SteeringDrift)
}

func (s Scenario) GetParams() map[string]float64 {
	return map[string]float64{
		"drift":          s.SteeringDrift,
		"length":         s.Length,
		"steering_noise": s.SteeringNoise,
		"distance_noise": s.DistanceNoise,
		"speed":          s.Speed,
	}
}

// SetParam adjusts a scenario parameter by name. Drift is in radians.
func (s *Scenario) SetParam(name string, value float64) error {
	switch name {
	case "drift":
		s.SteeringDrift = value
	case "length":
		s.Length = value
	case "steering_noise":
		s.SteeringNoise = value
	case "distance_noise":
		s.DistanceNoise = value
	case "speed":
		s.Speed = value
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}
