package dynamo

import (
	"fmt"
	"math"
)

// DefaultLength is the wheelbase used when none is configured.
const DefaultLength = 20.0

// Vehicle is the state of a bicycle-model car. It is a value type: motion
// never modifies a Vehicle, it returns a new one.
type Vehicle struct {
	X           float64
	Y           float64
	Orientation float64

	Length        float64
	SteeringNoise float64
	DistanceNoise float64
	SteeringDrift float64
}

func NewVehicle(length float64) Vehicle {
	if length <= 0 {
		length = DefaultLength
	}
	return Vehicle{Length: length}
}

// WithPose returns a copy placed at (x, y) with the given heading.
func (v Vehicle) WithPose(x, y, orientation float64) Vehicle {
	v.X = x
	v.Y = y
	v.Orientation = NormalizeAngle(orientation)
	return v
}

func (v Vehicle) WithNoise(steering, distance float64) Vehicle {
	v.SteeringNoise = steering
	v.DistanceNoise = distance
	return v
}

func (v Vehicle) WithDrift(drift float64) Vehicle {
	v.SteeringDrift = drift
	return v
}

func (v Vehicle) IsValid() bool {
	for _, f := range []float64{v.X, v.Y, v.Orientation} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return v.Length > 0
}

func (v Vehicle) String() string {
	return fmt.Sprintf("[x=%.5f y=%.5f orient=%.5f]", v.X, v.Y, v.Orientation)
}

// NormalizeAngle wraps a into [0, 2π).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	// a tiny negative input rounds up to exactly 2π above
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}

// Gains holds the steering gains in the order proportional, derivative,
// integral.
type Gains [3]float64

func (g Gains) P() float64 { return g[0] }
func (g Gains) D() float64 { return g[1] }
func (g Gains) I() float64 { return g[2] }

func (g Gains) IsValid() bool {
	for _, v := range g {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (g Gains) String() string {
	return fmt.Sprintf("[%v %v %v]", g[0], g[1], g[2])
}

// GainsFromSlice converts a configured gain list. An empty slice yields the
// zero vector.
func GainsFromSlice(s []float64) (Gains, error) {
	var g Gains
	switch len(s) {
	case 0:
		return g, nil
	case len(g):
		copy(g[:], s)
		return g, nil
	default:
		return g, fmt.Errorf("%w: want %d values, got %d", ErrInvalidGains, len(g), len(s))
	}
}

// Sample is one simulation step. CTE is the error read before the move,
// Vehicle is the state after it.
type Sample struct {
	Step     int
	CTE      float64
	Steering float64
	Vehicle  Vehicle
}

type Trajectory struct {
	Gains   Gains
	Initial Vehicle
	Warmup  int
	Samples []Sample
	Cost    float64
	Metrics map[string]float64
}

// CTE returns the cross-track error of every step.
func (t *Trajectory) CTE() []float64 {
	out := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		out[i] = s.CTE
	}
	return out
}

// Path returns the x and y coordinates starting with the initial pose.
func (t *Trajectory) Path() (xs, ys []float64) {
	xs = make([]float64, 0, len(t.Samples)+1)
	ys = make([]float64, 0, len(t.Samples)+1)
	xs = append(xs, t.Initial.X)
	ys = append(ys, t.Initial.Y)
	for _, s := range t.Samples {
		xs = append(xs, s.Vehicle.X)
		ys = append(ys, s.Vehicle.Y)
	}
	return xs, ys
}

func (t *Trajectory) Final() Vehicle {
	if len(t.Samples) == 0 {
		return t.Initial
	}
	return t.Samples[len(t.Samples)-1].Vehicle
}

type Metric interface {
	Name() string
	Observe(step int, cte, steering float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(step int, v Vehicle, steering float64)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
