package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/bactsim/internal/automation"
	"github.com/san-kum/bactsim/internal/config"
	"github.com/san-kum/bactsim/internal/culture"
	"github.com/san-kum/bactsim/internal/experiment"
	"github.com/san-kum/bactsim/internal/logging"
	"github.com/san-kum/bactsim/internal/sim"
	"github.com/san-kum/bactsim/internal/storage"
	"github.com/san-kum/bactsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir   string
	logLevel  string
	logFormat string
	// Config sources
	configFile string
	preset     string
	// Overrides
	steps      int
	randSeed   int64
	integrator string
	seedCount  int
	growthRate float64
	endTime    float64
	// Outputs
	videoPath    string
	videoStride  int
	frameRate    int
	chartPath    string
	outPath      string
	printRecords bool
	// Sweep
	sweepSteps []int
	plotPath   string
	// Live view
	stepsPerTick int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "bactsim",
		Short:        "bacterial growth simulation with an analytical reference",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".bactsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation and store the result",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().StringVar(&videoPath, "video", "", "write an MJPEG video of the culture to this path")
	runCmd.Flags().IntVar(&videoStride, "video-stride", 10, "record every n-th step")
	runCmd.Flags().IntVar(&frameRate, "fps", 30, "video frame rate")
	runCmd.Flags().StringVar(&chartPath, "chart", "", "write a population chart (.png or .svg)")
	runCmd.Flags().BoolVar(&printRecords, "print", false, "print every step")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsPerTick, "speed", 5, "steps per frame")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	chartCmd := &cobra.Command{
		Use:   "chart [run_id]",
		Short: "render run results to a PNG or SVG chart",
		Args:  cobra.ExactArgs(1),
		RunE:  chartRun,
	}
	chartCmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (default <run_id>.png)")

	convergeCmd := &cobra.Command{
		Use:   "converge",
		Short: "compare end-time error across step counts",
		Args:  cobra.NoArgs,
		RunE:  runConverge,
	}
	convergeCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	convergeCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	convergeCmd.Flags().Int64Var(&randSeed, "seed", 0, "random seed")
	convergeCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (euler, rk4)")
	convergeCmd.Flags().IntSliceVar(&sweepSteps, "steps", nil, "step counts to compare (default from config)")
	convergeCmd.Flags().StringVar(&plotPath, "plot", "", "write a log-log convergence plot to this path")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-10s seeds=%d steps=%d end=%.1f integrator=%s\n",
					name, p.SeedCount, p.Steps, p.End, p.Integrator)
			}
			return nil
		},
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run records to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := storage.New(dataDir).LoadRecords(args[0])
			if err != nil {
				return err
			}
			return storage.ExportCSV(os.Stdout, records)
		},
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a batch of simulations from a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, chartCmd, convergeCmd, presetsCmd, exportJSONCmd, exportCSVCmd, scenarioCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&steps, "steps", culture.DefaultSteps, "number of steps")
	cmd.Flags().Int64Var(&randSeed, "seed", 0, "random seed")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (euler, rk4)")
	cmd.Flags().IntVar(&seedCount, "seeds", culture.DefaultSeedCount, "initial agent count")
	cmd.Flags().Float64Var(&growthRate, "rate", culture.DefaultGrowthRate, "growth rate")
	cmd.Flags().Float64Var(&endTime, "end", culture.DefaultEnd, "end time")
}

// resolveConfig layers preset, config file and explicitly set flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("seed") {
		cfg.RandSeed = randSeed
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("seeds") {
		cfg.SeedCount = seedCount
	}
	if flags.Changed("rate") {
		cfg.GrowthRate = growthRate
	}
	if flags.Changed("end") {
		cfg.End = endTime
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger() *slog.Logger {
	return logging.NewLogger(logLevel, logFormat, os.Stderr)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg, nil, logger)
	if err != nil {
		return err
	}

	var video *viz.VideoRecorder
	if videoPath != "" {
		video, err = viz.NewVideoRecorder(videoPath, cfg.Canvas.Width, cfg.Canvas.Height, frameRate, videoStride)
		if err != nil {
			return fmt.Errorf("creating video: %w", err)
		}
		exp.AddObserver(video)
	}
	if printRecords {
		exp.AddObserver(sim.ObserverFunc(func(rec sim.Record, _ []culture.Position) {
			fmt.Printf("t=%.4f approx=%d analytical=%.4f abs=%.4f rel=%.6f\n",
				rec.Time, rec.Approx, rec.Analytical, rec.AbsError, rec.RelError)
		}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	result, err := exp.Run(ctx)
	if video != nil {
		if cerr := video.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("writing video: %w", cerr)
		}
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg.RandSeed, result)
	if err != nil {
		return err
	}

	if chartPath != "" {
		if err := viz.SaveChart(chartPath, result.Records, cfg.SeedCount); err != nil {
			return fmt.Errorf("writing chart: %w", err)
		}
	}

	last := result.Last()
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d (dt=%g, %s)\n", result.StepsTaken, cfg.Culture().Dt(), result.Integrator)
	fmt.Printf("final: approx=%d analytical=%.2f\n", last.Approx, last.Analytical)
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	if video != nil {
		fmt.Printf("\nvideo: %s (%d frames)\n", videoPath, video.Frames())
	}
	if chartPath != "" {
		fmt.Printf("chart: %s\n", chartPath)
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, nil, nil)
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(viz.NewLive(exp.Model(), stepsPerTick)).Run()
	if err != nil {
		return err
	}
	if live, ok := final.(viz.Live); ok && live.Err() != nil {
		return live.Err()
	}
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
	fmt.Fprintln(w, "ID\tTIME\tSEEDS\tSTEPS\tINTEG\tFINAL\tANALYTICAL\tREL ERR")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%d\t%.2f\t%.4f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.SeedCount,
			run.Steps,
			run.Integrator,
			run.FinalCount,
			run.FinalAnalytical,
			run.Metrics["final_rel_error"],
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

	records, err := st.LoadRecords(runID)
	if err != nil {
		return err
	}
	if len(records) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(records))
	fmt.Println(viz.Graph(records, 80, 15))
	return nil
}

func chartRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	records, err := st.LoadRecords(runID)
	if err != nil {
		return err
	}

	out := outPath
	if out == "" {
		out = runID + ".png"
	}
	if err := viz.SaveChart(out, records, meta.SeedCount); err != nil {
		return err
	}
	fmt.Printf("chart: %s\n", out)
	return nil
}

func runConverge(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, nil, newLogger())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	points, err := exp.Sweep(ctx, sweepSteps)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEPS\tDT\tESTIMATE\tAPPROX\tANALYTICAL\tABS ERR\tREL ERR\tORDER")
	for i, p := range points {
		order := "-"
		if i > 0 {
			order = observedOrder(points[i-1], p)
		}
		fmt.Fprintf(w, "%d\t%g\t%.4f\t%d\t%.4f\t%.4f\t%.6f\t%s\n",
			p.Steps, p.Dt, p.Estimate, p.Final.Approx, p.Final.Analytical,
			p.Final.AbsError, p.Final.RelError, order)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if plotPath != "" {
		if err := viz.SaveConvergencePlot(plotPath, points); err != nil {
			return fmt.Errorf("writing convergence plot: %w", err)
		}
		fmt.Printf("\nplot: %s\n", plotPath)
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, runErr := automation.RunScenario(ctx, scenario, experiment.NewRegistry(), newLogger())

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTEPS\tINTEG\tFINAL\tANALYTICAL\tREL ERR\tRUN ID")
	for _, r := range results {
		runID := "-"
		if r.Save {
			if runID, err = st.Save(r.Config.RandSeed, r.Result); err != nil {
				return err
			}
		}
		last := r.Result.Last()
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%.2f\t%.4f\t%s\n",
			r.Name, r.Config.Steps, r.Result.Integrator, last.Approx, last.Analytical, last.RelError, runID)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

// observedOrder estimates the convergence order between two sweep points
// from the continuous estimate, which is free of the floor applied to the
// agent count.
func observedOrder(a, b sim.SweepPoint) string {
	ea := math.Abs(a.Estimate - a.Final.Analytical)
	eb := math.Abs(b.Estimate - b.Final.Analytical)
	if ea == 0 || eb == 0 || a.Steps == b.Steps {
		return "-"
	}
	return fmt.Sprintf("%.2f", math.Log(ea/eb)/math.Log(float64(b.Steps)/float64(a.Steps)))
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
