package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/coagsim/internal/automation"
	"github.com/san-kum/coagsim/internal/config"
	"github.com/san-kum/coagsim/internal/experiment"
	"github.com/san-kum/coagsim/internal/export"
	"github.com/san-kum/coagsim/internal/optim"
	"github.com/san-kum/coagsim/internal/sim"
	"github.com/san-kum/coagsim/internal/storage"
	"github.com/san-kum/coagsim/internal/viz"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string
	dt         float64
	duration   float64
	integrator string
	runName    string
	outFile    string
	// tune
	candidates []float64
	// sweep and search
	paramName  string
	paramMin   float64
	paramMax   float64
	numSteps   int
	values     []float64
	metricName string
	// montecarlo
	trials  int
	perturb float64
	seed    int64
)

var log = logrus.New()

func main() {
	rootCmd := &cobra.Command{
		Use:   "coagsim",
		Short: "aerosol coagulation simulator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(lvl)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(experiment.NewRegistry(), quietLogger())
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".coagsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	scenarioFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
		cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
		cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "output interval [s]")
		cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration [s]")
		cmd.Flags().StringVar(&integrator, "integrator", "euler", "integrator")
	}

	runCmd := &cobra.Command{
		Use:   "run [strategy]",
		Short: "run simulation and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	scenarioFlags(runCmd)
	runCmd.Flags().StringVar(&runName, "name", "", "run name")

	kernelCmd := &cobra.Command{
		Use:   "kernel [strategy]",
		Short: "print the coagulation kernel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  printKernel,
	}
	scenarioFlags(kernelCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the initial and final distributions as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [strategy]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strategies := config.ListStrategies()
			if len(args) > 0 {
				strategies = args
			}
			for _, s := range strategies {
				presets := config.ListPresets(s)
				if len(presets) == 0 {
					fmt.Printf("no presets for strategy: %s\n", s)
					continue
				}
				fmt.Printf("presets for %s:\n", s)
				for _, p := range presets {
					fmt.Printf("  %s\n", p)
				}
			}
			return nil
		},
	}

	tuneCmd := &cobra.Command{
		Use:   "tune [strategy]",
		Short: "find the largest time step that needs no clamping",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneTimestep,
	}
	scenarioFlags(tuneCmd)
	tuneCmd.Flags().Float64SliceVar(&candidates, "candidates", []float64{0.1, 1, 10, 60, 600}, "time steps to try [s]")

	sweepCmd := &cobra.Command{
		Use:   "sweep [strategy]",
		Short: "sweep one parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	scenarioFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&paramName, "param", "temperature", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&paramMin, "min", 250, "first value")
	sweepCmd.Flags().Float64Var(&paramMax, "max", 350, "last value")
	sweepCmd.Flags().IntVar(&numSteps, "steps", 5, "number of values")

	searchCmd := &cobra.Command{
		Use:   "search [strategy]",
		Short: "grid search a parameter minimizing a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSearch,
	}
	scenarioFlags(searchCmd)
	searchCmd.Flags().StringVar(&paramName, "param", "temperature", "parameter to search")
	searchCmd.Flags().Float64SliceVar(&values, "values", []float64{250, 300, 350}, "values to try")
	searchCmd.Flags().StringVar(&metricName, "metric", "total_number", "metric to minimize")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [strategy]",
		Short: "perturb the initial distribution and run trials",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	scenarioFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturb, "perturb", 0.1, "relative perturbation")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")

	campaignCmd := &cobra.Command{
		Use:   "campaign [file]",
		Short: "run a campaign file",
		Args:  cobra.ExactArgs(1),
		RunE:  runCampaign,
	}

	liveCmd := &cobra.Command{
		Use:   "live [strategy]",
		Short: "run simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	scenarioFlags(liveCmd)

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "browse presets in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(experiment.NewRegistry(), quietLogger())
		},
	}

	rootCmd.AddCommand(runCmd, kernelCmd, listCmd, plotCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd, presetsCmd,
		tuneCmd, sweepCmd, searchCmd, monteCarloCmd, campaignCmd, liveCmd, tuiCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// quietLogger keeps log output off a full screen view.
func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// loadConfig resolves the scenario from, in increasing precedence, the
// defaults, a preset, a config file and explicit flags.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Strategy = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Strategy, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Strategy))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if len(args) > 0 {
			cfg.Strategy = args[0]
		}
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}
	return cfg, cfg.Validate()
}

func setup(cmd *cobra.Command, args []string, l logrus.FieldLogger) (*experiment.Experiment, error) {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return nil, err
	}
	exp := experiment.New(cfg, l)
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return nil, err
	}
	return exp, nil
}

func metadata(name string, exp *experiment.Experiment) storage.RunMetadata {
	cfg, p, env := exp.Config(), exp.Particles(), exp.Environment()
	return storage.RunMetadata{
		Name:         name,
		Strategy:     cfg.Strategy,
		Distribution: cfg.Distribution,
		MergePolicy:  cfg.MergePolicy,
		Integrator:   cfg.Integrator,
		Dt:           cfg.Dt,
		Duration:     cfg.Duration,
		Temperature:  env.Temperature(),
		Pressure:     env.Pressure(),
		Density:      p.Density(),
		Charge:       p.Charge(),
		Radii:        p.Distribution(),
	}
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, m[name])
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	exp, err := setup(cmd, args, log)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s simulation...\n", exp.Config().Strategy)
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	runID, err := st.Save(metadata(runName, exp), result)
	if err != nil {
		return err
	}

	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d (unstable %d)\n", result.StepsTaken, result.Unstable)
	fmt.Printf("lost mass: %.6g kg m-3\n", result.LostMass)
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func printKernel(cmd *cobra.Command, args []string) error {
	exp, err := setup(cmd, args, log)
	if err != nil {
		return err
	}
	s := exp.GetSimulator().Strategy()
	env := exp.Environment()
	k, err := s.Kernel(exp.Particles(), env.Temperature(), env.Pressure())
	if err != nil {
		return err
	}

	n, _ := k.Dims()
	diag := make([]float64, n)
	for i := range diag {
		diag[i] = k.At(i, i)
	}
	fmt.Printf("strategy: %s\n", s.Name())
	fmt.Printf("environment: %v\n", env)
	fmt.Printf("bins: %d\n", n)
	fmt.Printf("kernel range: %.4g .. %.4g m3 s-1\n", mat.Min(k), mat.Max(k))
	fmt.Printf("\n%.3g\n\n", mat.Formatted(k, mat.Squeeze(), mat.Excerpt(3)))

	logDiag := make([]float64, n)
	for i, v := range diag {
		logDiag[i] = math.Log10(v)
	}
	fmt.Println(asciigraph.Plot(logDiag, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("log10 K(i,i) by bin")))
	fmt.Printf("\nmean diagonal: %.4g m3 s-1\n", floats.Sum(diag)/float64(n))
	return nil
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
	fmt.Fprintln(w, "ID\tSTRATEGY\tTIME\tDURATION\tDT\tINTEG\tBINS\tUNSTABLE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0fs\t%.4gs\t%s\t%d\t%d\n",
			run.ID,
			run.Strategy,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			len(run.Radii),
			run.Unstable,
		)
	}

	return w.Flush()
}

// loadRun rebuilds the stored concentration history of a run.
func loadRun(runID string) (*storage.RunMetadata, *sim.Result, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	times, _, conc, err := st.LoadConcentrations(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, &sim.Result{
		Times:          times,
		Concentrations: conc,
		Metrics:        meta.Metrics,
		StepsTaken:     meta.Steps,
		LostMass:       meta.LostMass,
		Unstable:       meta.Unstable,
	}, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(result.Concentrations) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("strategy: %s\n", meta.Strategy)
	fmt.Printf("samples: %d\n\n", len(result.Times))

	totals := make([]float64, len(result.Concentrations))
	for i, c := range result.Concentrations {
		totals[i] = floats.Sum(c)
	}
	fmt.Println(asciigraph.Plot(totals,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("sum of concentrations vs time"),
	))
	fmt.Println()

	logged := func(c []float64) []float64 {
		out := make([]float64, len(c))
		for i, v := range c {
			out[i] = math.Log10(math.Max(v, 1e-30))
		}
		return out
	}
	fmt.Println(asciigraph.PlotMany(
		[][]float64{logged(result.Concentrations[0]), logged(result.Final())},
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.LowerBound(floats.Max(logged(result.Concentrations[0]))-8),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
		asciigraph.Caption("log10 concentration by bin (blue initial, red final)"),
	))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if outFile == "" {
		return storage.ExportJSONStdout(*meta, result)
	}
	return storage.ExportJSON(outFile, *meta, result)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if outFile == "" {
		return storage.WriteCSV(os.Stdout, meta.Radii, result)
	}
	return storage.ExportCSV(outFile, meta.Radii, result)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(result.Concentrations) == 0 {
		return fmt.Errorf("no data to export")
	}
	series := []export.Series{
		{Label: fmt.Sprintf("t = %g s", result.Times[0]), Values: result.Concentrations[0]},
		{Label: fmt.Sprintf("t = %g s", result.Times[len(result.Times)-1]), Values: result.Final()},
	}

	w := io.Writer(os.Stdout)
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return export.DistributionSVG(w, meta.Radii, series, 800, 500)
}

func tuneTimestep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	best, results, err := optim.LargestStableDt(ctx, cfg, experiment.NewRegistry(), candidates, quietLogger())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tUNSTABLE\tMASS DRIFT\tERROR")
	for _, r := range results {
		msg := "-"
		if r.Err != nil {
			msg = r.Err.Error()
		}
		fmt.Fprintf(w, "%.4g\t%d\t%.3g\t%s\n", r.Dt, r.Unstable, r.MassDrift, msg)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if best == 0 {
		fmt.Println("\nno candidate was stable")
		return nil
	}
	fmt.Printf("\nlargest stable dt: %.4g s\n", best)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:      cfg,
		ParamName: paramName,
		ParamMin:  paramMin,
		ParamMax:  paramMax,
		NumSteps:  numSteps,
	}, experiment.NewRegistry(), log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFINAL NUMBER\tFINAL MASS\tLOST MASS\tUNSTABLE\n", paramName)
	for _, r := range results {
		fmt.Fprintf(w, "%.4g\t%.4e\t%.4e\t%.3e\t%d\n", r.ParamValue, r.FinalNumber, r.FinalMass, r.LostMass, r.Unstable)
	}
	return w.Flush()
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	registry := experiment.NewRegistry()
	gs := optim.NewGridSearch([]string{paramName}, [][]float64{values})
	best, score, err := gs.Search(ctx, func(params map[string]float64) (*experiment.Experiment, error) {
		c := cfg.Clone()
		if err := automation.SetParam(c, paramName, params[paramName]); err != nil {
			return nil, err
		}
		if !containsString(c.Metrics, metricName) {
			c.Metrics = append(c.Metrics, metricName)
		}
		exp := experiment.New(c, quietLogger())
		return exp, exp.Setup(registry)
	}, metricName)
	if err != nil {
		return err
	}
	fmt.Printf("best %s: %.4g (%s = %.6g)\n", paramName, best[paramName], metricName, score)
	return nil
}

func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturb,
		NumTrials:    trials,
		Seed:         seed,
	}, experiment.NewRegistry(), quietLogger())
	if err != nil {
		return err
	}
	stable, unstable, mean, std := automation.MonteCarloStats(results)
	fmt.Printf("trials: %d (stable %d, unstable %d)\n", len(results), stable, unstable)
	fmt.Printf("final number: %.4e ± %.2e m-3\n", mean, std)
	return nil
}

func runCampaign(cmd *cobra.Command, args []string) error {
	campaign, err := automation.LoadCampaign(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	registry := experiment.NewRegistry()
	results, err := automation.RunCampaign(ctx, campaign, registry, log)
	if err != nil {
		return err
	}

	fmt.Printf("campaign: %s\n", campaign.Name)
	for _, r := range results {
		fmt.Printf("\n%s (%s)\n", r.Name, r.Config.Strategy)
		printMetrics(r.Result.Metrics)
		if r.SaveAs == "" {
			continue
		}
		exp := experiment.New(r.Config, log)
		if err := exp.Setup(registry); err != nil {
			return err
		}
		runID, err := st.Save(metadata(r.SaveAs, exp), r.Result)
		if err != nil {
			return err
		}
		fmt.Printf("  saved: %s\n", runID)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	exp, err := setup(cmd, args, quietLogger())
	if err != nil {
		return err
	}
	title := exp.Config().Strategy
	if preset != "" {
		title += "/" + preset
	}
	return viz.Run(exp, title)
}
