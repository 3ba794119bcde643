package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"zero", 0, 0},
		{"inside", 1.5, 1.5},
		{"full turn", 2 * math.Pi, 0},
		{"above", 2*math.Pi + 0.25, 0.25},
		{"negative", -0.5, 2*math.Pi - 0.5},
		{"several turns negative", -4*math.Pi - 1, 2*math.Pi - 1},
		{"tiny negative", -1e-20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAngle(tt.in)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if got < 0 || got >= 2*math.Pi {
				t.Errorf("NormalizeAngle(%v) = %v, outside [0, 2π)", tt.in, got)
			}
		})
	}
}

func TestVehicle_WithersDoNotAlias(t *testing.T) {
	base := NewVehicle(20)
	posed := base.WithPose(1, 2, 7)
	noisy := posed.WithNoise(0.1, 0.2)
	drifted := noisy.WithDrift(0.3)

	if base.X != 0 || base.Y != 0 || base.SteeringDrift != 0 {
		t.Errorf("base vehicle modified: %+v", base)
	}
	if posed.SteeringNoise != 0 {
		t.Error("WithNoise modified its receiver")
	}
	if drifted.X != 1 || drifted.Y != 2 || drifted.Length != 20 {
		t.Errorf("fields not carried through: %+v", drifted)
	}
	if math.Abs(drifted.Orientation-(7-2*math.Pi)) > 1e-12 {
		t.Errorf("orientation not normalized: %v", drifted.Orientation)
	}
	if drifted.SteeringNoise != 0.1 || drifted.DistanceNoise != 0.2 || drifted.SteeringDrift != 0.3 {
		t.Errorf("noise/drift not set: %+v", drifted)
	}
}

func TestNewVehicle_DefaultLength(t *testing.T) {
	if got := NewVehicle(0).Length; got != DefaultLength {
		t.Errorf("expected default length %v, got %v", DefaultLength, got)
	}
	if got := NewVehicle(-3).Length; got != DefaultLength {
		t.Errorf("expected default length for negative input, got %v", got)
	}
}

func TestVehicle_String(t *testing.T) {
	v := NewVehicle(20).WithPose(1.234567, -0.5, 0.1)
	want := "[x=1.23457 y=-0.50000 orient=0.10000]"
	if got := v.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestVehicle_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		v     Vehicle
		valid bool
	}{
		{"default", NewVehicle(20), true},
		{"nan x", Vehicle{X: math.NaN(), Length: 1}, false},
		{"inf y", Vehicle{Y: math.Inf(1), Length: 1}, false},
		{"zero length", Vehicle{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestGainsFromSlice(t *testing.T) {
	g, err := GainsFromSlice(nil)
	if err != nil || g != (Gains{}) {
		t.Errorf("empty slice: got %v, %v", g, err)
	}

	g, err = GainsFromSlice([]float64{0.2, 3.0, 0.004})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.P() != 0.2 || g.D() != 3.0 || g.I() != 0.004 {
		t.Errorf("accessors wrong: %v", g)
	}

	_, err = GainsFromSlice([]float64{1, 2})
	if !errors.Is(err, ErrInvalidGains) {
		t.Errorf("expected ErrInvalidGains, got %v", err)
	}
}

func TestGains_String(t *testing.T) {
	if got := (Gains{1, 2.5, 0}).String(); got != "[1 2.5 0]" {
		t.Errorf("String() = %q", got)
	}
}

func TestTrajectory_Path(t *testing.T) {
	tr := &Trajectory{
		Initial: NewVehicle(20).WithPose(0, 1, 0),
		Samples: []Sample{
			{Step: 0, CTE: 1, Vehicle: NewVehicle(20).WithPose(1, 1.5, 0)},
			{Step: 1, CTE: 1.5, Vehicle: NewVehicle(20).WithPose(2, 1.7, 0)},
		},
	}
	xs, ys := tr.Path()
	if len(xs) != 3 || len(ys) != 3 {
		t.Fatalf("expected 3 points, got %d/%d", len(xs), len(ys))
	}
	if xs[0] != 0 || ys[0] != 1 || xs[2] != 2 || ys[2] != 1.7 {
		t.Errorf("unexpected path: %v %v", xs, ys)
	}
	cte := tr.CTE()
	if len(cte) != 2 || cte[1] != 1.5 {
		t.Errorf("unexpected cte: %v", cte)
	}
	if tr.Final().X != 2 {
		t.Errorf("unexpected final vehicle: %v", tr.Final())
	}
}

func TestParamError(t *testing.T) {
	err := &ParamError{Name: "length", Value: -1, Wrapped: ErrParameterBounds}
	if !errors.Is(err, ErrParameterBounds) {
		t.Error("ParamError should unwrap to ErrParameterBounds")
	}
	want := "dynamo: parameter out of valid bounds: length=-1"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestRandSource(t *testing.T) {
	a := NewRandSource(7)
	b := NewRandSource(7)
	for i := 0; i < 5; i++ {
		if x, y := a.NormFloat64(1, 0.5), b.NormFloat64(1, 0.5); x != y {
			t.Fatalf("same seed diverged at draw %d: %v != %v", i, x, y)
		}
	}
	if got := a.NormFloat64(3.25, 0); got != 3.25 {
		t.Errorf("zero stddev should return the mean, got %v", got)
	}
}

func TestSeededNoise(t *testing.T) {
	f := SeededNoise(11)
	x := f().NormFloat64(0, 1)
	y := f().NormFloat64(0, 1)
	if x != y {
		t.Errorf("factory sources should start identically: %v != %v", x, y)
	}
}
