package control

import (
	"fmt"

	"github.com/san-kum/twiddle/internal/dynamo"
)

// PID is the three-term cross-track steering law. It keeps no state between
// calls; the caller owns the previous error and the running error sum.
type PID struct {
	Gains dynamo.Gains
}

func NewPID(g dynamo.Gains) *PID {
	return &PID{Gains: g}
}

// Steer returns the unclamped front wheel angle for the current cross-track
// error, the error of the previous step and the sum of all errors so far.
func (p *PID) Steer(cte, prevCTE, cteSum float64) float64 {
	return -p.Gains[0]*cte - p.Gains[1]*(cte-prevCTE) - p.Gains[2]*cteSum
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp": p.Gains.P(),
		"Kd": p.Gains.D(),
		"Ki": p.Gains.I(),
	}
}

// SetParam adjusts a single gain
func (p *PID) SetParam(name string, value float64) error {
	switch name {
	case "Kp":
		p.Gains[0] = value
	case "Kd":
		p.Gains[1] = value
	case "Ki":
		p.Gains[2] = value
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}
