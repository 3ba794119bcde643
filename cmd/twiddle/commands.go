package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/twiddle/internal/automation"
	"github.com/san-kum/twiddle/internal/config"
	"github.com/san-kum/twiddle/internal/dynamo"
	"github.com/san-kum/twiddle/internal/experiment"
	"github.com/san-kum/twiddle/internal/export"
	"github.com/san-kum/twiddle/internal/logger"
	"github.com/san-kum/twiddle/internal/optim"
	"github.com/san-kum/twiddle/internal/sim"
	"github.com/san-kum/twiddle/internal/viz"
)

func newExperiment() (*experiment.Experiment, error) {
	return experiment.New(cfg, experiment.WithLogger(logger.Default))
}

func runTune(cmd *cobra.Command, args []string) error {
	exp, err := newExperiment()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	_, err = exp.Run(ctx, os.Stdout, !quiet)
	return err
}

// gainsFor returns the flag gains when they were given or --no-tune is set,
// and otherwise tunes without printing progress.
func gainsFor(cmd *cobra.Command, exp *experiment.Experiment) (dynamo.Gains, error) {
	flags := cmd.Flags()
	given := flags.Changed("kp") || flags.Changed("kd") || flags.Changed("ki")
	if given || noTune || flags.Lookup("no-tune") == nil {
		return dynamo.Gains{kp, kd, ki}, nil
	}

	ctx, cancel := signalContext()
	defer cancel()
	res, err := exp.Tune(ctx, nil)
	if err != nil {
		return dynamo.Gains{}, err
	}
	return res.Gains, nil
}

func runGains(cmd *cobra.Command, args []string) error {
	exp, err := newExperiment()
	if err != nil {
		return err
	}
	g := dynamo.Gains{kp, kd, ki}

	var observers []dynamo.Observer
	if trace {
		observers = append(observers, sim.NewDiagnosticPrinter(os.Stdout))
	}
	tr := exp.FinalPass(g, observers...)

	fmt.Printf("gains: %s\n", g)
	fmt.Printf("cost: %v\n", tr.Cost)
	fmt.Printf("baseline: %v\n", exp.Baseline())
	fmt.Printf("final: %s\n", tr.Final())
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(tr.Metrics))
	for name := range tr.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, tr.Metrics[name])
	}
	return nil
}

func plotCTE(cmd *cobra.Command, args []string) error {
	exp, err := newExperiment()
	if err != nil {
		return err
	}
	g, err := gainsFor(cmd, exp)
	if err != nil {
		return err
	}

	tuned := exp.FinalPass(g)
	base := exp.FinalPass(dynamo.Gains{})

	fmt.Printf("gains: %s  cost: %v\n\n", g, tuned.Cost)
	fmt.Println(asciigraph.Plot(tuned.CTE(),
		asciigraph.Height(12), asciigraph.Width(70),
		asciigraph.Caption(fmt.Sprintf("cross-track error, gains %s", g))))
	fmt.Println()
	fmt.Println(asciigraph.Plot(base.CTE(),
		asciigraph.Height(8), asciigraph.Width(70),
		asciigraph.Caption("cross-track error, zero gains")))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	exp, err := newExperiment()
	if err != nil {
		return err
	}
	opts, err := cfg.TwiddleOptions()
	if err != nil {
		return err
	}
	m, err := viz.NewModel(exp.Evaluator(), opts)
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	res := final.(viz.Model).Result()
	fmt.Printf("Final parameters: %s\n -> %v\n", res.Gains, res.BestCost)
	return nil
}

func runGrid(cmd *cobra.Command, args []string) error {
	ranges := make([][]float64, 3)
	for i, r := range []string{kpRange, kdRange, kiRange} {
		vals, err := optim.ParseRange(r)
		if err != nil {
			return err
		}
		ranges[i] = vals
	}

	exp, err := newExperiment()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	gs := optim.NewGridSearch(ranges[0], ranges[1], ranges[2])
	logger.Info("grid search started", "points", gs.Size())
	g, cost, err := gs.Search(ctx, exp.Evaluator().Evaluate)
	if err != nil {
		return err
	}
	fmt.Printf("grid best: %s -> %v\n", g, cost)

	if !refine {
		return nil
	}
	cfg.Twiddle.InitialGains = g[:]
	exp, err = newExperiment()
	if err != nil {
		return err
	}
	_, err = exp.Run(ctx, os.Stdout, false)
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	s := &automation.Sweep{Param: sweepParam, Min: sweepMin, Max: sweepMax, Steps: sweepCount}
	if sweepFile != "" {
		loaded, err := automation.LoadSweep(sweepFile)
		if err != nil {
			return err
		}
		s = loaded
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunSweep(ctx, cfg, s, logger.Default, func(i, n int, r automation.SweepResult) {
		fmt.Fprintf(os.Stderr, "sweep %d/%d: %s=%.4g\n", i, n, s.Param, r.Value)
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tKP\tKD\tKI\tCOST\tBASELINE\tITER\n", strings.ToUpper(s.Param))
	for _, r := range results {
		fmt.Fprintf(w, "%.4g\t%.4f\t%.4f\t%.5f\t%.3e\t%.3e\t%d\n",
			r.Value, r.Gains.P(), r.Gains.D(), r.Gains.I(), r.Cost, r.Baseline, r.Iterations)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best, ok := automation.Best(results); ok {
		fmt.Printf("\nlowest cost at %s=%.4g: %s -> %v\n", s.Param, best.Value, best.Gains, best.Cost)
	}
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	exp, err := newExperiment()
	if err != nil {
		return err
	}
	g, err := gainsFor(cmd, exp)
	if err != nil {
		return err
	}

	sn, dn := cfg.Scenario.SteeringNoise, cfg.Scenario.DistanceNoise
	if sn == 0 && dn == 0 {
		noisy := config.GetPreset("noisy")
		sn, dn = noisy.Scenario.SteeringNoise, noisy.Scenario.DistanceNoise
	}

	ctx, cancel := signalContext()
	defer cancel()
	results, err := automation.RunMonteCarlo(ctx, cfg, automation.MonteCarloConfig{
		Gains:         g,
		Trials:        trials,
		Seed:          cfg.Seed,
		SteeringNoise: sn,
		DistanceNoise: dn,
		Threshold:     threshold,
	})
	if err != nil {
		return err
	}

	st := automation.Summarize(results, threshold)
	fmt.Printf("gains: %s\n", g)
	fmt.Printf("noise: steering=%v distance=%v trials=%d\n", sn, dn, len(results))
	fmt.Printf("cost: mean=%.6g std=%.6g min=%.6g max=%.6g\n", st.Mean, st.StdDev, st.Min, st.Max)
	fmt.Printf("failures: %d\n", st.Failures)
	return nil
}

func trajectoryFor(cmd *cobra.Command) (*dynamo.Trajectory, error) {
	exp, err := newExperiment()
	if err != nil {
		return nil, err
	}
	g, err := gainsFor(cmd, exp)
	if err != nil {
		return nil, err
	}
	return exp.FinalPass(g), nil
}

func exportTabular(format string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		tr, err := trajectoryFor(cmd)
		if err != nil {
			return err
		}
		if format == "csv" {
			return export.WriteCSV(os.Stdout, tr)
		}
		return export.WriteJSON(os.Stdout, tr)
	}
}

func exportSVG(cmd *cobra.Command, args []string) error {
	tr, err := trajectoryFor(cmd)
	if err != nil {
		return err
	}
	if outFile == "" {
		return export.WriteSVG(os.Stdout, tr, width, height)
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.WriteSVG(f, tr, width, height); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", outFile)
	return nil
}

func exportPNG(cmd *cobra.Command, args []string) error {
	tr, err := trajectoryFor(cmd)
	if err != nil {
		return err
	}
	series := export.Series{Label: fmt.Sprintf("gains %s", tr.Gains), Trajectory: tr}

	cte, err := export.CTEPlot("Cross-track error", series)
	if err != nil {
		return err
	}
	if err := export.SavePNG(outFile, cte, 8, 4); err != nil {
		return err
	}

	path, err := export.PathPlot("Vehicle path", series)
	if err != nil {
		return err
	}
	pathFile := strings.TrimSuffix(outFile, ".png") + "_path.png"
	if err := export.SavePNG(pathFile, path, 8, 4); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s and %s\n", outFile, pathFile)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTEPS\tDRIFT\tSTEER NOISE\tDIST NOISE\tLENGTH\tSEED")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%g°\t%g\t%g\t%g\t%d\n",
			name, p.Scenario.Steps, p.Scenario.DriftDeg, p.Scenario.SteeringNoise,
			p.Scenario.DistanceNoise, p.Scenario.Length, p.Seed)
	}
	return w.Flush()
}
