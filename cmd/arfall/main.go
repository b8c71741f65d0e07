package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/arfall/internal/config"
	"github.com/san-kum/arfall/internal/experiment"
	"github.com/san-kum/arfall/internal/frames"
	"github.com/san-kum/arfall/internal/optim"
	"github.com/san-kum/arfall/internal/sim"
	"github.com/san-kum/arfall/internal/storage"
	"github.com/san-kum/arfall/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string
	// run overrides
	numFrames   int
	scenario    string
	groundMode  string
	gravity     float64
	restitution float64
	integrator  string
	seed        int64
	// plot
	particle int
	// sweep
	sweepRestitution string
	sweepGravity     string
	sweepMetric      string
	workers          int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "arfall",
		Short: "falling particle field with ray manipulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive(cmd, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".arfall", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless and save the result",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	runCmd.Flags().IntVar(&numFrames, "frames", config.DefaultFrames, "number of frames")
	runCmd.Flags().StringVar(&scenario, "scenario", "", "scenario script (yaml); implies the script frame source")
	runCmd.Flags().StringVar(&groundMode, "mode", "fixed", "ground mode (fixed, detected)")
	runCmd.Flags().Float64Var(&gravity, "gravity", config.DefaultGravity, "vertical gravity")
	runCmd.Flags().Float64Var(&restitution, "restitution", -0.4, "restitution coefficient in [-1, 0]")
	runCmd.Flags().StringVar(&integrator, "integrator", "semi_implicit", "integrator")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "synthetic room seed")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot particle heights of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&particle, "particle", -1, "particle index (default plots the mean)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and heights as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export per-frame statistics as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search restitution and gravity",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepRestitution, "restitution", "-0.6,-0.4,-0.2,0", "restitution values")
	sweepCmd.Flags().StringVar(&sweepGravity, "gravity", "-9.81", "gravity values")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "settle_time", "metric to minimize")
	sweepCmd.Flags().IntVar(&numFrames, "frames", config.DefaultFrames, "frames per trial")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent trials (default GOMAXPROCS)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, liveCmd, presetsCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// loadConfig starts from the preset (or defaults), overlays the config file
// and then any flag the user actually set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		if err := config.Overlay(cfg, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("frames") {
		cfg.Run.Frames = numFrames
	}
	if flags.Changed("scenario") {
		cfg.Frames.Source = "script"
		cfg.Frames.Script = scenario
	}
	if flags.Changed("mode") {
		cfg.Ground.Mode = groundMode
	}
	if flags.Changed("gravity") {
		cfg.Physics.Gravity = gravity
	}
	if flags.Changed("restitution") {
		cfg.Physics.Restitution = restitution
	}
	if flags.Changed("integrator") {
		cfg.Physics.Integrator = integrator
	}
	if flags.Changed("seed") {
		cfg.Frames.Seed = seed
	}
	return cfg, cfg.Validate()
}

func runName() string {
	if preset != "" {
		return preset
	}
	if scenario != "" {
		return strings.TrimSuffix(scenario, ".yaml")
	}
	return "default"
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// a headless run has nobody to click the panel
	cfg.UI.Enabled = false
	exp := experiment.New(cfg, experiment.WithLogger(logger))
	if err := exp.Setup(ctx); err != nil {
		return err
	}

	fmt.Printf("running %s (%s ground, %s frames)...\n", runName(), cfg.Ground.Mode, cfg.Frames.Source)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(runName(), cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d\n", result.FramesRun)
	fmt.Printf("final ground: %s\n", result.FinalMode)
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tFRAMES\tPARTICLES\tGROUND\tGRABS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Particles,
			run.FinalMode,
			run.Grabs,
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
	heights, _, err := st.LoadHeights(runID)
	if err != nil {
		return err
	}
	if len(heights) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", len(heights))

	data := make([]float64, len(heights))
	caption := "mean particle height"
	if particle >= 0 {
		if particle >= len(heights[0]) {
			return fmt.Errorf("particle %d out of range (run has %d)", particle, len(heights[0]))
		}
		caption = fmt.Sprintf("particle %d height", particle)
	}
	for i, row := range heights {
		if particle >= 0 {
			data[i] = row[particle]
			continue
		}
		for _, y := range row {
			data[i] += y
		}
		data[i] /= float64(len(row))
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	fmt.Println(graph)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
}

func exportCSV(cmd *cobra.Command, args []string) error {
	rows, err := storage.New(dataDir).LoadFrames(args[0])
	if err != nil {
		return err
	}
	return gocsv.Marshal(rows, os.Stdout)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// the alt screen owns the terminal, so logs are dropped
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	return viz.Run("arfall", func() (*sim.World, frames.Source, error) {
		c := cfg.Clone()
		c.Run.Frames = 0
		exp := experiment.New(c, experiment.WithLogger(logger))
		if err := exp.Setup(ctx); err != nil {
			return nil, nil, err
		}
		return exp.World(), exp.Source(), nil
	})
}

func parseList(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q: %w", p, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty value list %q", s)
	}
	return out, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rs, err := parseList(sweepRestitution)
	if err != nil {
		return fmt.Errorf("restitution: %w", err)
	}
	gs, err := parseList(sweepGravity)
	if err != nil {
		return fmt.Errorf("gravity: %w", err)
	}
	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}

	opts := []optim.Option{}
	if workers > 0 {
		opts = append(opts, optim.WithWorkers(workers))
	}
	if sweepMetric == "settle_time" {
		opts = append(opts, optim.WithAccept(optim.NonNegative))
	}
	search := optim.NewGridSearch([]string{"restitution", "gravity"}, [][]float64{rs, gs}, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping %d points, minimizing %s...\n", len(rs)*len(gs), sweepMetric)
	out, err := search.Search(ctx, optim.ConfigBuilder(cfg, experiment.WithLogger(logger)), sweepMetric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RESTITUTION\tGRAVITY\t%s\n", strings.ToUpper(sweepMetric))
	for _, t := range out.Trials {
		val := fmt.Sprintf("%.4f", t.Value)
		if !t.Valid {
			val = "-"
		}
		fmt.Fprintf(w, "%.2f\t%.2f\t%s\n", t.Params["restitution"], t.Params["gravity"], val)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if out.Best == nil {
		fmt.Println("\nno trial produced a valid value")
		return nil
	}
	fmt.Printf("\nbest: restitution=%.2f gravity=%.2f %s=%.4f\n",
		out.Best["restitution"], out.Best["gravity"], sweepMetric, out.Value)
	return nil
}
