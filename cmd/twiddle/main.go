package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/san-kum/twiddle/internal/config"
	"github.com/san-kum/twiddle/internal/logger"
)

var (
	configFile string
	preset     string
	logLevel   string
	logFormat  string

	tolerance     float64
	steps         int
	driftDeg      float64
	steeringNoise float64
	distanceNoise float64
	length        float64
	speed         float64
	seed          int64

	quiet   bool
	trace   bool
	noTune  bool
	kp      float64
	kd      float64
	ki      float64
	outFile string
	width   int
	height  int

	kpRange    string
	kdRange    string
	kiRange    string
	refine     bool
	sweepFile  string
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepCount int
	trials     int
	threshold  float64

	// resolved in PersistentPreRunE
	cfg *config.Config
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "twiddle",
		Short:             "tune PID steering gains for a drifting bicycle-model car",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		RunE:              runTune,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "start from a named preset")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	pf.Float64Var(&tolerance, "tolerance", 0.001, "stop when the step sizes sum to this")
	pf.IntVar(&steps, "steps", 100, "warm-up steps; the same number is scored")
	pf.Float64Var(&driftDeg, "drift", 10, "steering drift in degrees")
	pf.Float64Var(&steeringNoise, "steering-noise", 0, "steering noise std-dev (rad)")
	pf.Float64Var(&distanceNoise, "distance-noise", 0, "distance noise std-dev")
	pf.Float64Var(&length, "length", 20, "wheelbase")
	pf.Float64Var(&speed, "speed", 1, "distance per step")
	pf.Int64Var(&seed, "seed", 0, "noise seed (0 = from clock)")

	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "skip the per-step diagnostic pass")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "tune the gains and print the final pass",
		RunE:  runTune,
	}
	tuneCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "skip the per-step diagnostic pass")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "evaluate fixed gains",
		RunE:  runGains,
	}
	addGainFlags(runCmd)
	runCmd.Flags().BoolVar(&trace, "trace", false, "print one line per step")

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "plot cross-track error of tuned gains against zero gains",
		RunE:  plotCTE,
	}
	addGainFlags(plotCmd)
	plotCmd.Flags().BoolVar(&noTune, "no-tune", false, "plot the given gains instead of tuning")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch the search in the terminal",
		RunE:  runLive,
	}

	gridCmd := &cobra.Command{
		Use:   "grid",
		Short: "coarse grid search over the gains",
		RunE:  runGrid,
	}
	gridCmd.Flags().StringVar(&kpRange, "kp-range", "0:2:5", "Kp values (min:max:count)")
	gridCmd.Flags().StringVar(&kdRange, "kd-range", "0:10:6", "Kd values (min:max:count)")
	gridCmd.Flags().StringVar(&kiRange, "ki-range", "0:0.02:5", "Ki values (min:max:count)")
	gridCmd.Flags().BoolVar(&refine, "refine", false, "run twiddle from the best grid point")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "retune across a range of one scenario parameter",
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepFile, "file", "", "sweep definition (yaml)")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "drift", "parameter to vary")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 20, "last value")
	sweepCmd.Flags().IntVar(&sweepCount, "count", 5, "number of values")

	mcCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "score gains across many noise seeds",
		RunE:  runMonteCarlo,
	}
	addGainFlags(mcCmd)
	mcCmd.Flags().BoolVar(&noTune, "no-tune", false, "use the given gains instead of tuning")
	mcCmd.Flags().IntVar(&trials, "trials", 50, "number of seeds")
	mcCmd.Flags().Float64Var(&threshold, "threshold", 0, "cost above which a trial fails (0 = only non-finite)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv",
		Short: "write the trajectory as CSV to stdout",
		RunE:  exportTabular("csv"),
	}
	exportJSONCmd := &cobra.Command{
		Use:   "export-json",
		Short: "write the trajectory as JSON to stdout",
		RunE:  exportTabular("json"),
	}
	exportSVGCmd := &cobra.Command{
		Use:   "export-svg",
		Short: "draw the path as SVG",
		RunE:  exportSVG,
	}
	exportPNGCmd := &cobra.Command{
		Use:   "export-png",
		Short: "plot cross-track error and path to PNG files",
		RunE:  exportPNG,
	}
	for _, c := range []*cobra.Command{exportCSVCmd, exportJSONCmd, exportSVGCmd, exportPNGCmd} {
		addGainFlags(c)
		c.Flags().BoolVar(&noTune, "no-tune", false, "export the given gains instead of tuning")
	}
	exportSVGCmd.Flags().StringVar(&outFile, "out", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&width, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&height, "height", 300, "image height")
	exportPNGCmd.Flags().StringVar(&outFile, "out", "twiddle.png", "output file; the path plot gets a _path suffix")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(tuneCmd, runCmd, plotCmd, liveCmd, gridCmd, sweepCmd, mcCmd,
		exportCSVCmd, exportJSONCmd, exportSVGCmd, exportPNGCmd, presetsCmd)
	return rootCmd
}

func addGainFlags(c *cobra.Command) {
	c.Flags().Float64Var(&kp, "kp", 0.2, "proportional gain")
	c.Flags().Float64Var(&kd, "kd", 3.0, "derivative gain")
	c.Flags().Float64Var(&ki, "ki", 0.004, "integral gain")
}

// setup resolves the configuration (defaults, then preset, then file, then
// flags) and installs the logger.
func setup(cmd *cobra.Command, args []string) error {
	c := config.DefaultConfig()
	if preset != "" {
		c = config.GetPreset(preset)
		if c == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.LoadOver(c, configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		c = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("tolerance") {
		c.Twiddle.Tolerance = tolerance
	}
	if flags.Changed("steps") {
		c.Scenario.Steps = steps
	}
	if flags.Changed("drift") {
		c.Scenario.DriftDeg = driftDeg
	}
	if flags.Changed("steering-noise") {
		c.Scenario.SteeringNoise = steeringNoise
	}
	if flags.Changed("distance-noise") {
		c.Scenario.DistanceNoise = distanceNoise
	}
	if flags.Changed("length") {
		c.Scenario.Length = length
	}
	if flags.Changed("speed") {
		c.Scenario.Speed = speed
	}
	if flags.Changed("seed") {
		c.Seed = seed
	}
	if flags.Changed("log-level") {
		c.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		c.Log.Format = logFormat
	}

	l, err := logger.Build(c.Log.Level, c.Log.Format, os.Stderr)
	if err != nil {
		return err
	}
	logger.SetDefault(l)

	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	logger.Debug("configuration resolved", "preset", preset, "config", configFile, "scenario", fmt.Sprintf("%+v", c.Scenario))
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
