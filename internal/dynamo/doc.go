// Package dynamo provides the core value types shared by the vehicle
// simulation and the gain optimiser.
//
//   - [Vehicle]: pose and fixed parameters of a bicycle-model car
//   - [Gains]: proportional, derivative and integral steering gains
//   - [Trajectory]: recorded samples and cost of one evaluation
//   - [NoiseSource]: injectable Gaussian source for motion noise
//   - [Metric], [Observer]: hooks called once per simulation step
//
// # Example
//
//	v := dynamo.NewVehicle(20).WithPose(0, 1, 0).WithDrift(10.0 / 180.0 * math.Pi)
//	next := physics.NewBicycle().Move(v, 0.1, 1.0, nil)
//
// # Thread Safety
//
// Vehicle and Gains are plain values and safe to copy. A [RandSource] is
// NOT safe for concurrent use; give each evaluation its own source.
package dynamo
