package sim

import (
	"fmt"
	"io"
	"math"

	"github.com/san-kum/twiddle/internal/dynamo"
)

// DiagnosticPrinter writes one line per step: the pose after the move and
// the commanded steering in degrees.
type DiagnosticPrinter struct {
	w io.Writer
}

func NewDiagnosticPrinter(w io.Writer) *DiagnosticPrinter {
	return &DiagnosticPrinter{w: w}
}

func (p *DiagnosticPrinter) OnStep(step int, v dynamo.Vehicle, steering float64) {
	fmt.Fprintln(p.w, v, steering/math.Pi*180.0)
}

// ObserverFunc adapts a function to dynamo.Observer.
type ObserverFunc func(step int, v dynamo.Vehicle, steering float64)

func (f ObserverFunc) OnStep(step int, v dynamo.Vehicle, steering float64) { f(step, v, steering) }
