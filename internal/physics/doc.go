// Package physics provides the vehicle motion model.
//
// [Bicycle] implements the kinematic bicycle model: the car pivots about a
// point on the line through its rear axle, at a radius set by the front
// wheel angle and the wheelbase. Small heading changes use a straight-line
// step so the radius never blows up.
//
//	bike := physics.NewBicycle()
//	v = bike.Move(v, steering, 1.0, dynamo.NewRandSource(seed))
//
// [Bicycle.Integrate] solves the same kinematics numerically with RK4 and
// is used to check the closed form.
//
// [Bicycle] implements [dynamo.Configurable] for its tolerance and steering
// limit.
package physics
