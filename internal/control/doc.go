// Package control provides the steering controller.
//
// [PID] turns the cross-track error (the vehicle's distance from the
// x-axis) into a front wheel angle:
//
//	steer = -Kp*cte - Kd*(cte - prevCTE) - Ki*sum(cte)
//
// The integral term is what cancels a constant steering drift; a pure PD
// law settles with a residual offset.
//
// # Usage
//
//	pid := control.NewPID(dynamo.Gains{0.2, 3.0, 0.004})
//	steer := pid.Steer(cte, prev, sum)
//
// [PID] implements [dynamo.Configurable] so the gains can be nudged live.
package control
