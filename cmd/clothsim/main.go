package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/clothsim/internal/analysis"
	"github.com/san-kum/clothsim/internal/automation"
	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/experiment"
	"github.com/san-kum/clothsim/internal/export"
	"github.com/san-kum/clothsim/internal/optim"
	"github.com/san-kum/clothsim/internal/storage"
	"github.com/san-kum/clothsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	debug      bool
	dt         float64
	duration   float64
	seed       int64
	integrator string
	controller string
	configFile string
	preset     string
	gridSize   string
	saveName   string
	// live view
	stepsPerFrame int
	theme         string
	gifPath       string
	// export
	outFile string
	format  string
	// sweep
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	seeds      int
	// tune
	tuneParams []string
	tuneMetric string
)

var presetDescriptions = map[string]string{
	"flag":    "left edge pinned, blown past a sphere",
	"curtain": "top edge pinned, gusty breeze",
	"drape":   "free cloth falling onto a sphere",
	"still":   "no forces, springs at rest",
}

func main() {
	var logFile *os.File

	rootCmd := &cobra.Command{
		Use:          "clothsim",
		Short:        "mass-spring cloth simulator",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logFile = setupLogging(dataDir, debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPicker()
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".clothsim", "data directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write a debug log to the data directory")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a simulation and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&saveName, "save", "", "run name (defaults to the preset name)")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run a simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps", 1, "simulation steps per frame")
	liveCmd.Flags().StringVar(&theme, "theme", "harbor", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	liveCmd.Flags().StringVar(&gifPath, "gif", "clothsim.gif", "where the g key saves recordings")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the series of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run as json or svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&format, "format", "json", "json, frame-svg or tip-svg")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and phase analysis of the tip displacement",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "sweep one parameter, or run a seeded ensemble with --seeds",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "dt", "parameter ("+strings.Join(config.ParamNames(), ", ")+")")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.005, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.05, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&seeds, "seeds", 0, "run an ensemble of this many seeds instead")

	tuneCmd := &cobra.Command{
		Use:   "tune [preset]",
		Short: "grid search parameters minimizing a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTune,
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&tuneParams, "param", nil, "name=v1,v2,... (repeatable)")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "sag", "metric to minimize")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Printf("  %-10s %s\n", p, presetDescriptions[p])
			}
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark step throughput over grid sizes",
		RunE:  runBench,
	}
	benchCmd.Flags().StringVar(&integrator, "integrator", "symplectic", "integrator")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, analyzeCmd, sweepCmd, tuneCmd, scenarioCmd, presetsCmd, benchCmd)

	err := rootCmd.Execute()
	if logFile != nil {
		logFile.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().StringVar(&integrator, "integrator", "symplectic", "integrator")
	cmd.Flags().StringVar(&controller, "controller", "none", "controller")
	cmd.Flags().StringVar(&gridSize, "grid", "", "particle grid as WxH")
}

// resolveConfig builds the config for a command. A config file replaces the
// preset and flags override both, but only when given explicitly.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	name := preset
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" {
		name = "flag"
	}

	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("controller") {
		cfg.Controller = controller
	}
	if flags.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if flags.Changed("grid") {
		w, h, err := parseGrid(gridSize)
		if err != nil {
			return nil, "", err
		}
		cfg.Cloth.GridW, cfg.Cloth.GridH = w, h
	}
	return cfg, name, nil
}

func parseGrid(s string) (int, int, error) {
	var w, h int
	if _, err := fmt.Sscanf(s, "%dx%d", &w, &h); err != nil {
		return 0, 0, fmt.Errorf("grid %q: want WxH", s)
	}
	return w, h, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if saveName != "" {
		name = saveName
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(); err != nil {
		return err
	}

	fmt.Printf("running %s (%dx%d particles)...\n", name, cfg.Cloth.GridW, cfg.Cloth.GridH)
	start := time.Now()

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(name, cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	fmt.Println("\nmetrics:")
	for _, k := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", k, result.Metrics[k])
	}
	return nil
}

func buildLive(cfg *config.Config, name string) (viz.Model, error) {
	exp := experiment.New(cfg)
	if err := exp.Setup(); err != nil {
		return viz.Model{}, err
	}
	return viz.NewModel(exp.Simulator(), exp.Manual(), name, cfg.Dt,
		viz.WithStepsPerFrame(stepsPerFrame),
		viz.WithTheme(theme),
		viz.WithGIFPath(gifPath),
	), nil
}

func runLive(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && preset == "" && configFile == "" {
		return runPicker()
	}
	cfg, name, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	m, err := buildLive(cfg, name)
	if err != nil {
		return err
	}
	return viz.Run(m)
}

func runPicker() error {
	// the root command has no live flags
	if stepsPerFrame == 0 {
		stepsPerFrame = 1
	}
	if gifPath == "" {
		gifPath = "clothsim.gif"
	}
	names := config.ListPresets()
	entries := make([]viz.Entry, len(names))
	for i, n := range names {
		entries[i] = viz.Entry{Name: n, Description: presetDescriptions[n]}
	}
	return viz.RunPicker(entries, func(name string) (viz.Model, error) {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return viz.Model{}, fmt.Errorf("unknown preset: %s", name)
		}
		return buildLive(cfg, name)
	})
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tGRID\tDT\tSTEPS\tINTEG\tCTRL\tERRORS")
	for _, run := range runs {
		grid, dtStr, integ, ctrl := "-", "-", "-", "-"
		if c := run.Config; c != nil {
			grid = fmt.Sprintf("%dx%d", c.Cloth.GridW, c.Cloth.GridH)
			dtStr = fmt.Sprintf("%.4fs", c.Dt)
			integ, ctrl = c.Integrator, c.Controller
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			grid,
			dtStr,
			run.Steps,
			integ,
			ctrl,
			len(run.Errors),
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(series.Rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(series.Rows))

	for _, col := range series.Columns {
		if col == "time" {
			continue
		}
		data := finite(series.Column(col))
		if len(data) == 0 {
			continue
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(col),
		))
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	var w io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "json":
		return st.ExportStored(w, runID)
	case "frame-svg":
		meta, err := st.Load(runID)
		if err != nil {
			return err
		}
		if meta.Config == nil {
			return fmt.Errorf("run %s has no config", runID)
		}
		pos, err := st.LoadPositions(runID)
		if err != nil {
			return err
		}
		spheres := make([]cloth.Sphere, len(meta.Config.Spheres))
		for i, s := range meta.Config.Spheres {
			spheres[i] = s.Sphere()
		}
		_, err = io.WriteString(w, export.FrameToSVG(pos, meta.Config.Cloth.GridW, meta.Config.Cloth.GridH,
			spheres, viz.NewCamera(), 800, 600))
		return err
	case "tip-svg":
		series, err := st.LoadSeries(runID)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, export.SeriesToSVG(series.Column("time"), series.Column("tip"), 800, 300, "#00ccff"))
		return err
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	tip := finite(series.Column("tip"))
	if len(tip) < 4 {
		return fmt.Errorf("no data")
	}
	sampleDt := config.DefaultDt
	if meta.Config != nil {
		sampleDt = meta.Config.Dt * float64(max(1, meta.Config.SampleEvery))
	}

	fmt.Printf("frequency analysis: %s\n\n", meta.ID)

	ps := analysis.PowerSpectrum(tip)
	plotData := ps[:max(2, len(ps)/4)]
	fmt.Println(asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (tip)"),
	))
	fmt.Println()

	freq := analysis.DominantFrequency(tip, sampleDt)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	fmt.Printf("mean crossings: %d\n\n", analysis.MeanCrossings(tip))

	fmt.Println("phase portrait (tip vs rate):")
	fmt.Println(analysis.PhasePortraitToASCII(analysis.PhasePortrait(tip, sampleDt), 70, 20))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx := context.Background()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	if seeds > 0 {
		fmt.Printf("ensemble of %d seeds on %s\n\n", seeds, name)
		results, err := automation.RunMonteCarlo(ctx, cfg, seeds, cfg.Seed)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "SEED\tSTABLE\tSAG\tPEAK_STRAIN\tTIP_FINAL")
		for _, r := range results {
			tip := r.Result.Series("tip")
			final := 0.0
			if len(tip) > 0 {
				final = tip[len(tip)-1]
			}
			fmt.Fprintf(w, "%d\t%v\t%.5f\t%.5f\t%.5f\n", r.Seed, r.Stable,
				r.Result.Metrics["sag"], r.Result.Metrics["peak_strain"], final)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		stable, unstable := automation.MonteCarloStats(results)
		fmt.Printf("\nstable: %d unstable: %d\n", stable, unstable)
		return nil
	}

	fmt.Printf("sweeping %s on %s\n\n", sweepParam, name)
	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:     cfg,
		Param:    sweepParam,
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepSteps,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\tSTABLE\tSAG\tPEAK_STRAIN\tTIP_STD\tERROR\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		errStr := ""
		if r.Err != nil {
			errStr = r.Err.Error()
		}
		fmt.Fprintf(w, "%.5g\t%v\t%.5f\t%.5f\t%.5f\t%s\n", r.ParamValue, r.Stable,
			r.Metrics["sag"], r.Metrics["peak_strain"], r.Tip.StdDev, errStr)
	}
	return w.Flush()
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(tuneParams) == 0 {
		return fmt.Errorf("at least one --param name=v1,v2 is required")
	}

	params, ranges, err := parseTuneParams(tuneParams)
	if err != nil {
		return err
	}
	gs, err := optim.NewGridSearch(params, ranges)
	if err != nil {
		return err
	}

	fmt.Printf("tuning %s on %s\n\n", tuneMetric, name)
	best, all, err := gs.Search(context.Background(), cfg, tuneMetric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(params, "\t")), strings.ToUpper(tuneMetric))
	for _, ev := range all {
		vals := make([]string, len(params))
		for i, p := range params {
			vals[i] = strconv.FormatFloat(ev.Params[p], 'g', 5, 64)
		}
		res := fmt.Sprintf("%.6f", ev.Value)
		if ev.Err != nil {
			res = "error: " + ev.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\n", strings.Join(vals, "\t"), res)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest %s = %.6f at", tuneMetric, best.Value)
	for _, p := range params {
		fmt.Printf(" %s=%g", p, best.Params[p])
	}
	fmt.Println()
	return nil
}

// parseTuneParams reads name=v1,v2,... specs.
func parseTuneParams(args []string) ([]string, [][]float64, error) {
	params := make([]string, 0, len(args))
	ranges := make([][]float64, 0, len(args))
	for _, arg := range args {
		name, list, ok := strings.Cut(arg, "=")
		if !ok || name == "" || list == "" {
			return nil, nil, fmt.Errorf("param %q: want name=v1,v2,...", arg)
		}
		var values []float64
		for _, s := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("param %q: %w", arg, err)
			}
			values = append(values, v)
		}
		params = append(params, name)
		ranges = append(ranges, values)
	}
	return params, ranges, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}
	fmt.Println()

	results, err := automation.RunScenario(context.Background(), sc, st)
	for i, r := range results {
		fmt.Printf("step %d: %s steps=%d sag=%.5f", i+1, r.Name, r.Result.StepsTaken, r.Result.Metrics["sag"])
		if r.RunID != "" {
			fmt.Printf(" saved=%s", r.RunID)
		}
		fmt.Println()
	}
	return err
}

func runBench(cmd *cobra.Command, args []string) error {
	sizes := []int{8, 16, 32, 64}
	const steps = 300

	fmt.Printf("benchmarking %s over %d steps\n\n", integrator, steps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GRID\tPARTICLES\tSPRINGS\tTIME\tSTEPS/SEC")

	for _, n := range sizes {
		cfg := config.DefaultConfig()
		cfg.Integrator = integrator
		cfg.Cloth.GridW, cfg.Cloth.GridH = n, n
		cfg.Duration = steps * cfg.Dt
		cfg.SampleEvery = steps

		exp := experiment.New(cfg)
		if err := exp.Setup(); err != nil {
			return err
		}

		start := time.Now()
		result, err := exp.Run(context.Background())
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		grid := exp.Simulator().Grid()
		fmt.Fprintf(w, "%dx%d\t%d\t%d\t%v\t%.0f\n", n, n, grid.Len(), grid.SpringCount(),
			elapsed, float64(result.StepsTaken)/elapsed.Seconds())
	}
	return w.Flush()
}

func finite(values []float64) []float64 {
	out := values[:0:0]
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
