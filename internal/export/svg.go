package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/twiddle/internal/dynamo"
)

type Point struct{ X, Y float64 }

// PathPoints returns the vehicle positions of tr, initial pose first.
func PathPoints(tr *dynamo.Trajectory) []Point {
	xs, ys := tr.Path()
	pts := make([]Point, len(xs))
	for i := range xs {
		pts[i] = Point{xs[i], ys[i]}
	}
	return pts
}

// TrajectoryToSVG draws points as a polyline over the reference line y=0.
// Fewer than two points yield an empty string.
func TrajectoryToSVG(points []Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := 0.0, 0.0
	for _, p := range points {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	px := func(x float64) float64 { return (x - minX) / rangeX * float64(width) }
	py := func(y float64) float64 { return float64(height) - (y-minY)/rangeY*float64(height) }

	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#444444" stroke-dasharray="4 4"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, py(0), width, py(0), strokeColor)

	for i, p := range points {
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", px(p.X), py(p.Y))
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", px(p.X), py(p.Y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

func WriteSVG(w io.Writer, tr *dynamo.Trajectory, width, height int) error {
	svg := TrajectoryToSVG(PathPoints(tr), width, height, "#00ff00")
	if svg == "" {
		return fmt.Errorf("export: trajectory has no steps")
	}
	_, err := io.WriteString(w, svg)
	return err
}
