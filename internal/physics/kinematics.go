package physics

import (
	"math"

	"github.com/san-kum/twiddle/internal/dynamo"
)

// pose is (x, y, orientation) for the integrator.
type pose [3]float64

// derive is the kinematic bicycle per unit of travelled distance.
func derive(p pose, curvature float64) pose {
	return pose{math.Cos(p[2]), math.Sin(p[2]), curvature}
}

// Integrate drives v for distance along the kinematic bicycle equations
//
//	dx/ds = cos θ, dy/ds = sin θ, dθ/ds = tan(steering)/L
//
// with classic RK4 over substeps equal pieces. Steering is clamped and the
// vehicle's drift is added as in Move; no noise is applied. It is the
// numerical counterpart of Arc and exists to cross-check it.
func (b *Bicycle) Integrate(v dynamo.Vehicle, steering, distance float64, substeps int) dynamo.Vehicle {
	if substeps < 1 {
		substeps = 1
	}
	steering = math.Max(-b.MaxSteeringAngle, math.Min(b.MaxSteeringAngle, steering))
	distance = math.Max(0, distance)
	curvature := math.Tan(steering+v.SteeringDrift) / v.Length

	h := distance / float64(substeps)
	p := pose{v.X, v.Y, v.Orientation}
	for i := 0; i < substeps; i++ {
		p = rk4(p, curvature, h)
	}

	next := v
	next.X, next.Y = p[0], p[1]
	next.Orientation = dynamo.NormalizeAngle(p[2])
	return next
}

func rk4(x pose, curvature, h float64) pose {
	var scratch pose

	k1 := derive(x, curvature)
	for i := range x {
		scratch[i] = x[i] + h*0.5*k1[i]
	}
	k2 := derive(scratch, curvature)
	for i := range x {
		scratch[i] = x[i] + h*0.5*k2[i]
	}
	k3 := derive(scratch, curvature)
	for i := range x {
		scratch[i] = x[i] + h*k3[i]
	}
	k4 := derive(scratch, curvature)

	var out pose
	h6 := h / 6.0
	for i := range x {
		out[i] = x[i] + h6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return out
}
