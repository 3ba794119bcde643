package export

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/twiddle/internal/dynamo"
)

const DPI = 150

// Series is one labelled trajectory on a plot.
type Series struct {
	Label      string
	Trajectory *dynamo.Trajectory
}

func limitedTicker(maxLabels int, labelFmt string) plot.Ticker {
	if maxLabels < 2 {
		maxLabels = 2
	}
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
			return nil
		}
		if min == max {
			return []plot.Tick{{Value: min, Label: fmt.Sprintf(labelFmt, min)}}
		}
		step := (max - min) / float64(maxLabels-1)
		ticks := make([]plot.Tick, 0, maxLabels)
		for i := 0; i < maxLabels; i++ {
			v := min + float64(i)*step
			ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf(labelFmt, v)})
		}
		return ticks
	})
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(8)
	p.X.Label.TextStyle.Font.Size = vg.Points(12)
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)
	p.X.Tick.Label.Font.Size = vg.Points(10)
	p.Y.Tick.Label.Font.Size = vg.Points(10)
	p.X.Tick.Marker = limitedTicker(8, "%.0f")
	p.Y.Tick.Marker = limitedTicker(8, "%.3g")
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
}

func newPlot(title, xlabel, ylabel string, series []Series, xy func(*dynamo.Trajectory) plotter.XYs) (*plot.Plot, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("export: nothing to plot")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	stylePlot(p)

	for i, s := range series {
		if s.Trajectory == nil || len(s.Trajectory.Samples) == 0 {
			return nil, fmt.Errorf("export: series %q has no steps", s.Label)
		}
		line, err := plotter.NewLine(xy(s.Trajectory))
		if err != nil {
			return nil, fmt.Errorf("export: series %q: %w", s.Label, err)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(s.Label, line)
	}
	return p, nil
}

// CTEPlot draws cross-track error against step over the dashed y=0 target.
// The title notes the step where scoring starts.
func CTEPlot(title string, series ...Series) (*plot.Plot, error) {
	p, err := newPlot(title, "step", "cross-track error", series, func(tr *dynamo.Trajectory) plotter.XYs {
		pts := make(plotter.XYs, len(tr.Samples))
		for i, s := range tr.Samples {
			pts[i].X = float64(s.Step)
			pts[i].Y = s.CTE
		}
		return pts
	})
	if err != nil {
		return nil, err
	}

	warmup := float64(series[0].Trajectory.Warmup)
	target := plotter.NewFunction(func(float64) float64 { return 0 })
	target.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(target)
	if warmup > 0 {
		p.Title.Text = fmt.Sprintf("%s (scored from step %.0f)", title, warmup)
	}
	return p, nil
}

// PathPlot draws y against x.
func PathPlot(title string, series ...Series) (*plot.Plot, error) {
	return newPlot(title, "x", "y", series, func(tr *dynamo.Trajectory) plotter.XYs {
		xs, ys := tr.Path()
		pts := make(plotter.XYs, len(xs))
		for i := range xs {
			pts[i].X = xs[i]
			pts[i].Y = ys[i]
		}
		return pts
	})
}

func WritePNG(w io.Writer, p *plot.Plot, widthIn, heightIn float64) error {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(DPI),
	)
	p.Draw(draw.New(c))

	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(w); err != nil {
		return fmt.Errorf("export: write png: %w", err)
	}
	return nil
}

func SavePNG(path string, p *plot.Plot, widthIn, heightIn float64) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := WritePNG(bw, p, widthIn, heightIn); err != nil {
		return err
	}
	return bw.Flush()
}
