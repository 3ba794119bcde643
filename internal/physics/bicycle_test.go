package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/twiddle/internal/dynamo"
)

func referenceVehicle() dynamo.Vehicle {
	return dynamo.NewVehicle(20).WithPose(0, 1, 0).WithDrift(10.0 / 180.0 * math.Pi)
}

func TestBicycleDriftFirstSteps(t *testing.T) {
	b := NewBicycle()
	v := referenceVehicle()

	want := []struct{ x, y, theta float64 }{
		{0.9999870453819611, 1.004408145964561, 0.008816349035423249},
		{1.999896364264007, 1.0176322412240637, 0.017632698070846498},
		{2.9996502361877098, 1.0396712579025547, 0.026449047106269746},
	}

	for i, w := range want {
		v = b.Move(v, 0, 1.0, nil)
		if math.Abs(v.X-w.x) > 1e-12 || math.Abs(v.Y-w.y) > 1e-12 || math.Abs(v.Orientation-w.theta) > 1e-12 {
			t.Errorf("step %d: got %v, want x=%v y=%v theta=%v", i, v, w.x, w.y, w.theta)
		}
	}
}

func TestBicycleStraightBelowTolerance(t *testing.T) {
	b := NewBicycle()
	v := dynamo.NewVehicle(20).WithPose(2, 3, 0.3)

	// tan(0.01)*1.5/20 ≈ 0.00075, below the 0.001 tolerance
	got := b.Move(v, 0.01, 1.5, nil)
	turn := math.Tan(0.01) * 1.5 / 20

	if got.X != v.X+1.5*math.Cos(0.3) {
		t.Errorf("x = %v, want straight-line %v", got.X, v.X+1.5*math.Cos(0.3))
	}
	if got.Y != v.Y+1.5*math.Sin(0.3) {
		t.Errorf("y = %v, want straight-line %v", got.Y, v.Y+1.5*math.Sin(0.3))
	}
	if got.Orientation != dynamo.NormalizeAngle(0.3+turn) {
		t.Errorf("orientation = %v, want %v", got.Orientation, 0.3+turn)
	}
}

func TestBicycleArcConvergesToStraight(t *testing.T) {
	v := dynamo.NewVehicle(20).WithPose(1, -2, 0.7)
	distance := 1.0

	prevErr := math.Inf(1)
	for _, turn := range []float64{1e-1, 1e-2, 1e-3, 1e-4, 1e-5} {
		arc := Arc(v, distance, turn)
		line := Straight(v, distance, turn)
		errNorm := math.Hypot(arc.X-line.X, arc.Y-line.Y)

		if errNorm >= prevErr {
			t.Errorf("turn=%g: gap %g did not shrink (previous %g)", turn, errNorm, prevErr)
		}
		if errNorm > distance*turn {
			t.Errorf("turn=%g: gap %g larger than distance*turn", turn, errNorm)
		}
		if arc.Orientation != line.Orientation {
			t.Errorf("turn=%g: orientations differ %v vs %v", turn, arc.Orientation, line.Orientation)
		}
		prevErr = errNorm
	}
}

func TestBicycleClampsInputs(t *testing.T) {
	b := NewBicycle()
	v := dynamo.NewVehicle(20)

	wide := b.Move(v, 3.0, 1.0, nil)
	limit := b.Move(v, math.Pi/4, 1.0, nil)
	if wide != limit {
		t.Errorf("steering not clamped: %v vs %v", wide, limit)
	}

	left := b.Move(v, -3.0, 1.0, nil)
	leftLimit := b.Move(v, -math.Pi/4, 1.0, nil)
	if left != leftLimit {
		t.Errorf("negative steering not clamped: %v vs %v", left, leftLimit)
	}

	back := b.Move(v, 0.2, -5.0, nil)
	if back.X != v.X || back.Y != v.Y || back.Orientation != v.Orientation {
		t.Errorf("negative distance should not move the vehicle: %v", back)
	}
}

func TestBicycleOrientationStaysNormalized(t *testing.T) {
	b := NewBicycle()
	v := dynamo.NewVehicle(2)
	src := dynamo.NewRandSource(3)
	v = v.WithNoise(0.3, 0.1)

	for i := 0; i < 2000; i++ {
		steer := math.Pi / 4
		if i%500 > 250 {
			steer = -math.Pi / 4
		}
		v = b.Move(v, steer, 1.0, src)
		if v.Orientation < 0 || v.Orientation >= 2*math.Pi {
			t.Fatalf("step %d: orientation %v outside [0, 2π)", i, v.Orientation)
		}
	}
}

func TestBicycleCopiesParameters(t *testing.T) {
	b := NewBicycle()
	v := referenceVehicle().WithNoise(0.1, 0.05)
	next := b.Move(v, 0.1, 1.0, dynamo.NewRandSource(9))

	if next.Length != v.Length || next.SteeringNoise != v.SteeringNoise ||
		next.DistanceNoise != v.DistanceNoise || next.SteeringDrift != v.SteeringDrift {
		t.Errorf("parameters not copied: %+v", next)
	}
	if v.X != 0 || v.Y != 1 {
		t.Errorf("input vehicle mutated: %v", v)
	}
}

func TestBicycleSeededNoiseIsReproducible(t *testing.T) {
	b := NewBicycle()
	v := referenceVehicle().WithNoise(0.1, 0.05)

	a := b.Move(v, 0.1, 1.0, dynamo.NewRandSource(42))
	c := b.Move(v, 0.1, 1.0, dynamo.NewRandSource(42))
	if a != c {
		t.Errorf("same seed gave different results: %v vs %v", a, c)
	}

	clean := b.Move(v.WithNoise(0, 0), 0.1, 1.0, nil)
	if a.X == clean.X && a.Y == clean.Y && a.Orientation == clean.Orientation {
		t.Error("noise had no effect")
	}
}

func TestBicycleSetParam(t *testing.T) {
	b := NewBicycle()

	if err := b.SetParam("tolerance", 0.01); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.GetParams()["tolerance"] != 0.01 {
		t.Error("tolerance not updated")
	}

	if err := b.SetParam("max_steering_angle", 2.0); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
	if err := b.SetParam("gravity", 9.81); !errors.Is(err, dynamo.ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
}

func TestIntegrateMatchesClosedForm(t *testing.T) {
	b := NewBicycle()
	v := referenceVehicle()

	for _, steer := range []float64{0.3, -0.5, 0.05, -0.1} {
		exact := b.Move(v, steer, 1.0, nil)
		numeric := b.Integrate(v, steer, 1.0, 200)

		if d := math.Hypot(exact.X-numeric.X, exact.Y-numeric.Y); d > 1e-9 {
			t.Errorf("steer=%v: position gap %g", steer, d)
		}
		if d := math.Abs(exact.Orientation - numeric.Orientation); d > 1e-9 {
			t.Errorf("steer=%v: orientation gap %g", steer, d)
		}
	}
}

func TestIntegrateClampsSteering(t *testing.T) {
	b := NewBicycle()
	v := referenceVehicle()

	over := b.Integrate(v, 3, 1, 50)
	atLimit := b.Integrate(v, b.MaxSteeringAngle, 1, 50)
	if over != atLimit {
		t.Errorf("steering was not clamped: %+v vs %+v", over, atLimit)
	}
	if stay := b.Integrate(v, 0, -4, 10); stay.X != v.X || stay.Y != v.Y {
		t.Errorf("negative distance moved the vehicle to %+v", stay)
	}
}
