package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GazzolaLab/Elastica-RL-control/internal/automation"
	"github.com/GazzolaLab/Elastica-RL-control/internal/config"
	"github.com/GazzolaLab/Elastica-RL-control/internal/control"
	"github.com/GazzolaLab/Elastica-RL-control/internal/env"
	"github.com/GazzolaLab/Elastica-RL-control/internal/integrators"
	"github.com/GazzolaLab/Elastica-RL-control/internal/metrics"
	"github.com/GazzolaLab/Elastica-RL-control/internal/render"
	"github.com/GazzolaLab/Elastica-RL-control/internal/storage"
	"github.com/GazzolaLab/Elastica-RL-control/internal/viz"
)

const svgFile = "arm.svg"

var (
	dataDir     string
	verbose     bool
	presetName  string
	configFile  string
	policyName  string
	episodes    int
	seed        uint64
	finalTime   float64
	simDt       float64
	stepsPerUpd int
	integrator  string
	diagnostics bool
	setParams   []string
	monitorKind string
	monitorDB   string
	showKind    string
	themeName   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "softarm",
		Short: "soft arm control benchmark",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunMenu(newLogger())
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".softarm", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log episode events")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run episodes and save the results",
		RunE:  runEpisodes,
	}
	addEnvFlags(runCmd)
	runCmd.Flags().IntVarP(&episodes, "episodes", "n", 1, "number of episodes")
	runCmd.Flags().StringVar(&monitorKind, "monitor", "memory", "episode monitor backend (memory|sqlite)")
	runCmd.Flags().StringVar(&monitorDB, "monitor-db", ".softarm/monitor.db", "sqlite monitor database")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render PNG charts and an SVG of the arm",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export per-episode results to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list benchmark presets",
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write the resolved configuration as YAML",
		Args:  cobra.ExactArgs(1),
		RunE:  writeConfig,
	}
	addEnvFlags(configCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "step the arm with live visualization",
		RunE:  runLive,
	}
	addEnvFlags(liveCmd)
	liveCmd.Flags().StringVar(&themeName, "theme", "ocean", fmt.Sprintf("color theme %v", viz.ThemeNames()))

	monitorCmd := &cobra.Command{
		Use:   "monitor [run_id]",
		Short: "show runs or episodes recorded by the monitor",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showMonitor,
	}
	monitorCmd.Flags().StringVar(&showKind, "monitor", "sqlite", "episode monitor backend (memory|sqlite)")
	monitorCmd.Flags().StringVar(&monitorDB, "monitor-db", ".softarm/monitor.db", "sqlite monitor database")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, renderCmd, exportCmd, exportCSVCmd, presetsCmd, configCmd, liveCmd, monitorCmd)
	rootCmd.AddCommand(batchCommands()...)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addEnvFlags registers the flags that select and override a configuration.
// Precedence is flag, then config file, then preset.
func addEnvFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&presetName, "preset", "p", "reach2d", fmt.Sprintf("benchmark preset %v", config.ListPresets()))
	f.StringVarP(&configFile, "config", "c", "", "YAML config file (overrides the preset)")
	f.StringVar(&policyName, "policy", "none", fmt.Sprintf("policy %v", control.Names()))
	f.Uint64Var(&seed, "seed", 0, "random seed")
	f.Float64Var(&finalTime, "time", 0, "episode length in simulated seconds")
	f.Float64Var(&simDt, "dt", 0, "simulation time step")
	f.IntVar(&stepsPerUpd, "steps-per-update", 0, "micro-steps per control step")
	f.StringVar(&integrator, "integrator", "", fmt.Sprintf("time stepper %v", integrators.Names()))
	f.BoolVar(&diagnostics, "diagnostics", false, "record and render episode diagnostics")
	f.StringSliceVar(&setParams, "set", nil, fmt.Sprintf("override tunables as name=value %v", config.TunableParams()))
}

func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	preset := presetName
	if configFile != "" && !cmd.Flags().Changed("preset") {
		preset = ""
	}
	cfg, err := automation.BuildConfig(preset, configFile, nil)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("time") {
		cfg.FinalTime = finalTime
	}
	if f.Changed("dt") {
		cfg.SimDt = simDt
	}
	if f.Changed("steps-per-update") {
		cfg.StepsPerUpdate = stepsPerUpd
	}
	if f.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if f.Changed("diagnostics") {
		cfg.Diagnostics.Enabled = diagnostics
	}
	for _, kv := range setParams {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--set %q: want name=value", kv)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("--set %s: %w", name, err)
		}
		if err := cfg.SetParam(name, v); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

// newLogger writes human-readable logs to stderr. Episode events are only
// shown with --verbose.
func newLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.DisableStacktrace = true
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func metadata(cfg *config.Config, policy string) storage.RunMetadata {
	return storage.RunMetadata{
		ID:             storage.NewRunID(cfg.Name),
		Name:           cfg.Name,
		Seed:           cfg.Seed,
		SimDt:          cfg.SimDt,
		FinalTime:      cfg.FinalTime,
		StepsPerUpdate: cfg.StepsPerUpdate,
		Integrator:     cfg.Integrator,
		Policy:         policy,
		Dim:            cfg.Actuation.Dim,
		ControlPoints:  cfg.Actuation.ControlPoints,
	}
}

func runEpisodes(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	mon, err := storage.NewMonitor(monitorKind, monitorDB)
	if err != nil {
		return err
	}
	defer storage.CloseIfSupported(mon)
	if err := mon.Init(ctx); err != nil {
		return err
	}

	e, err := env.New(cfg, env.WithLogger(newLogger()), env.WithMetrics(metrics.Default()...))
	if err != nil {
		return err
	}
	policy, err := control.New(policyName, e.ActionSize(), cfg.Actuation.ControlPoints, cfg.Seed)
	if err != nil {
		return err
	}
	if episodes < 1 {
		episodes = 1
	}

	meta := metadata(cfg, policyName)
	fmt.Printf("running %s with %s policy: %s episodes x %s control steps\n",
		cfg.Name, policyName, humanize.Comma(int64(episodes)), humanize.Comma(int64(e.Horizon())))
	start := time.Now()

	results := make([]*env.EpisodeResult, 0, episodes)
	for i := 0; i < episodes; i++ {
		res, err := e.RunEpisode(ctx, policy)
		if err != nil {
			return err
		}
		results = append(results, res)
		if err := mon.RecordEpisode(ctx, meta.ID, storage.Summarize(i, res)); err != nil {
			return err
		}
	}
	elapsed := time.Since(start)

	last := results[len(results)-1]
	meta.Metrics = last.Metrics
	runID, err := st.Save(meta, results)
	if err != nil {
		return err
	}

	if cfg.Diagnostics.Enabled {
		h, err := e.History()
		if err != nil {
			return err
		}
		dir := st.Dir(runID)
		if err := storage.SaveHistory(dir, h); err != nil {
			return err
		}
		if err := render.Episode(dir, h, last.Times, last.Distances); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, svgFile), []byte(render.ArmSVG(h, 600, 5)), 0644); err != nil {
			return err
		}
	}

	microSteps := int64(len(results)) * int64(e.Horizon()) * int64(cfg.StepsPerUpdate)
	fmt.Printf("completed in %v (%s micro-steps)\n", elapsed.Round(time.Millisecond), humanize.Comma(microSteps))
	fmt.Printf("run id: %s\n", runID)
	fmt.Println("\nepisodes:")
	for i, r := range results {
		status := ""
		if r.Divergent {
			status = "  diverged"
		}
		fmt.Printf("  %3d  return %10.4f  length %4d  final distance %.4f%s\n", i, r.Return, r.Length, r.FinalDistance, status)
	}
	fmt.Println("\nmetrics:")
	printMetrics(last.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
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
	fmt.Fprintln(w, "ID\tNAME\tWHEN\tPOLICY\tDIM\tEPISODES\tMEAN RETURN")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%.4f\n",
			run.ID,
			run.Name,
			humanize.Time(run.Timestamp),
			run.Policy,
			run.Dim,
			run.Episodes,
			run.MeanReturn,
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
	rows, err := st.LoadEpisodes(runID)
	if err != nil {
		return err
	}
	traces, err := st.LoadSteps(runID)
	if err != nil {
		return err
	}
	if len(traces) == 0 || len(traces[len(traces)-1].Rewards) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("case: %s (%s, %d control points)\n", meta.Name, meta.Dim, meta.ControlPoints)
	fmt.Printf("episodes: %d\n\n", len(rows))

	if len(rows) > 1 {
		returns := make([]float64, len(rows))
		for i, r := range rows {
			returns[i] = r.Return
		}
		fmt.Println(asciigraph.Plot(returns, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("return per episode")))
		fmt.Println()
	}

	last := traces[len(traces)-1]
	fmt.Println(asciigraph.Plot(last.Distances, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("tip distance, last episode")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(last.Rewards, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("reward, last episode")))
	fmt.Println()
	return nil
}

func renderRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	dir := st.Dir(runID)
	rows, err := st.LoadEpisodes(runID)
	if err != nil {
		return err
	}
	traces, err := st.LoadSteps(runID)
	if err != nil {
		return err
	}

	var written []string
	if len(rows) > 1 {
		returns := make([]float64, len(rows))
		for i, r := range rows {
			returns[i] = r.Return
		}
		path := filepath.Join(dir, "returns.png")
		if err := render.Returns(path, returns); err != nil {
			return err
		}
		written = append(written, path)
	}

	h, err := storage.LoadHistory(dir)
	switch {
	case os.IsNotExist(err):
		if len(traces) > 0 {
			last := traces[len(traces)-1]
			path := filepath.Join(dir, render.DistanceFile)
			if err := render.TipDistance(path, last.Times, last.Distances); err != nil {
				return err
			}
			written = append(written, path)
		}
		fmt.Fprintln(os.Stderr, "no diagnostics saved for this run; rerun with --diagnostics for arm charts")
	case err != nil:
		return err
	default:
		var times, distances []float64
		if len(traces) > 0 {
			times, distances = traces[len(traces)-1].Times, traces[len(traces)-1].Distances
		}
		if err := render.Episode(dir, h, times, distances); err != nil {
			return err
		}
		svgPath := filepath.Join(dir, svgFile)
		if err := os.WriteFile(svgPath, []byte(render.ArmSVG(h, 600, 5)), 0644); err != nil {
			return err
		}
		written = append(written, filepath.Join(dir, render.ArmFile), svgPath)
	}

	for _, p := range written {
		fmt.Println(p)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	rows, err := st.LoadEpisodes(runID)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"episode", "return", "length", "final_distance", "divergent", "sim_time"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.Episode),
			strconv.FormatFloat(r.Return, 'f', 6, 64),
			strconv.Itoa(r.Length),
			strconv.FormatFloat(r.FinalDistance, 'f', 6, 64),
			strconv.FormatBool(r.Divergent),
			strconv.FormatFloat(r.SimulationTime, 'f', 6, 64),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTARGET\tDIM\tPOINTS\tACTION\tOBS\tHORIZON\tSTEPS/UPDATE")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			name,
			cfg.Target.Mode,
			cfg.Actuation.Dim,
			cfg.Actuation.ControlPoints,
			cfg.ActionSize(),
			cfg.ObservationLayout().Size(),
			cfg.Horizon(),
			cfg.StepsPerUpdate,
		)
	}
	return w.Flush()
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	return config.Save(args[0], cfg)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	// the TUI owns the terminal
	e, err := env.New(cfg)
	if err != nil {
		return err
	}
	policy, err := control.New(policyName, e.ActionSize(), cfg.Actuation.ControlPoints, cfg.Seed)
	if err != nil {
		return err
	}
	return viz.Run(e, policy, policyName, themeName)
}

func showMonitor(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	mon, err := storage.NewMonitor(showKind, monitorDB)
	if err != nil {
		return err
	}
	defer storage.CloseIfSupported(mon)
	if err := mon.Init(ctx); err != nil {
		return err
	}

	if len(args) == 0 {
		runs, err := mon.Runs(ctx)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no runs recorded")
		}
		for _, id := range runs {
			fmt.Println(id)
		}
		return nil
	}

	rows, err := mon.Episodes(ctx, args[0])
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EPISODE\tRETURN\tLENGTH\tFINAL DISTANCE\tDIVERGED")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%.4f\t%d\t%.4f\t%v\n", r.Episode, r.Return, r.Length, r.FinalDistance, r.Divergent)
	}
	return w.Flush()
}
