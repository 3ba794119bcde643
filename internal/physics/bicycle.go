package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/twiddle/internal/dynamo"
)

const (
	DefaultTolerance        = 0.001
	DefaultMaxSteeringAngle = math.Pi / 4.0
)

// Bicycle moves a vehicle along a turning circle, falling back to a straight
// line when the heading change is below Tolerance.
type Bicycle struct {
	Tolerance        float64
	MaxSteeringAngle float64
}

func NewBicycle() *Bicycle {
	return &Bicycle{
		Tolerance:        DefaultTolerance,
		MaxSteeringAngle: DefaultMaxSteeringAngle,
	}
}

// Move drives v for distance with the front wheels at steering. Steering is
// clamped to ±MaxSteeringAngle and negative distances become 0 before noise
// is drawn from noise; a nil noise source means no noise.
func (b *Bicycle) Move(v dynamo.Vehicle, steering, distance float64, noise dynamo.NoiseSource) dynamo.Vehicle {
	if steering > b.MaxSteeringAngle {
		steering = b.MaxSteeringAngle
	}
	if steering < -b.MaxSteeringAngle {
		steering = -b.MaxSteeringAngle
	}
	if distance < 0.0 {
		distance = 0.0
	}

	steering2, distance2 := steering, distance
	if noise != nil {
		steering2 = noise.NormFloat64(steering, v.SteeringNoise)
		distance2 = noise.NormFloat64(distance, v.DistanceNoise)
	}
	steering2 += v.SteeringDrift

	turn := math.Tan(steering2) * distance2 / v.Length

	if math.Abs(turn) < b.Tolerance {
		return Straight(v, distance2, turn)
	}
	return Arc(v, distance2, turn)
}

// Straight advances v along its heading and adds turn to the heading.
func Straight(v dynamo.Vehicle, distance, turn float64) dynamo.Vehicle {
	next := v
	next.X = v.X + (distance * math.Cos(v.Orientation))
	next.Y = v.Y + (distance * math.Sin(v.Orientation))
	next.Orientation = dynamo.NormalizeAngle(v.Orientation + turn)
	return next
}

// Arc rotates v about the centre of a circle of radius distance/turn lying
// perpendicular to its heading. turn must be non-zero.
func Arc(v dynamo.Vehicle, distance, turn float64) dynamo.Vehicle {
	radius := distance / turn
	cx := v.X - (math.Sin(v.Orientation) * radius)
	cy := v.Y + (math.Cos(v.Orientation) * radius)

	next := v
	next.Orientation = dynamo.NormalizeAngle(v.Orientation + turn)
	next.X = cx + (math.Sin(next.Orientation) * radius)
	next.Y = cy - (math.Cos(next.Orientation) * radius)
	return next
}

func (b *Bicycle) GetParams() map[string]float64 {
	return map[string]float64{
		"tolerance":          b.Tolerance,
		"max_steering_angle": b.MaxSteeringAngle,
	}
}

func (b *Bicycle) SetParam(name string, value float64) error {
	switch name {
	case "tolerance":
		if value < 0 {
			return &dynamo.ParamError{Name: name, Value: value, Wrapped: dynamo.ErrParameterBounds}
		}
		b.Tolerance = value
	case "max_steering_angle":
		if value <= 0 || value >= math.Pi/2 {
			return &dynamo.ParamError{Name: name, Value: value, Wrapped: dynamo.ErrParameterBounds}
		}
		b.MaxSteeringAngle = value
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}
