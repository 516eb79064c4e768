package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/GazzolaLab/Elastica-RL-control/internal/automation"
	"github.com/GazzolaLab/Elastica-RL-control/internal/config"
	"github.com/GazzolaLab/Elastica-RL-control/internal/optim"
	"github.com/GazzolaLab/Elastica-RL-control/internal/storage"
)

var (
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	trials     int
	grid       []string
	top        int
)

func batchCommands() []*cobra.Command {
	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one tunable and report mean returns",
		RunE:  runSweep,
	}
	addEnvFlags(sweepCmd)
	sweepCmd.Flags().IntVarP(&episodes, "episodes", "n", 1, "episodes per value")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "alpha", fmt.Sprintf("tunable to sweep %v", config.TunableParams()))
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 75, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario and save every step as a run",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run one episode per seed concurrently",
		RunE:  runMonteCarlo,
	}
	addEnvFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 8, "number of seeds")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search policy parameters for the best mean return",
		RunE:  runTune,
	}
	addEnvFlags(tuneCmd)
	tuneCmd.Flags().IntVarP(&episodes, "episodes", "n", 1, "episodes per grid point")
	tuneCmd.Flags().StringArrayVar(&grid, "grid", nil, "parameter range as name=lo:hi:n (repeatable)")
	tuneCmd.Flags().IntVar(&top, "top", 5, "number of best points to print")

	return []*cobra.Command{sweepCmd, scenarioCmd, monteCarloCmd, tuneCmd}
}

// parseGrid turns name=lo:hi:n specs into parameter names and value lists.
func parseGrid(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, rng, ok := strings.Cut(spec, "=")
		parts := strings.Split(rng, ":")
		if !ok || len(parts) != 3 {
			return nil, nil, fmt.Errorf("--grid %q: want name=lo:hi:n", spec)
		}
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil || n < 1 {
			return nil, nil, fmt.Errorf("--grid %q: want name=lo:hi:n", spec)
		}
		names = append(names, name)
		ranges = append(ranges, optim.Linspace(lo, hi, n))
	}
	return names, ranges, nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(grid)
	if err != nil {
		return err
	}
	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	points := 1
	for _, r := range ranges {
		points *= len(r)
	}
	fmt.Printf("tuning %s policy on %s: %s grid points\n", policyName, cfg.Name, humanize.Comma(int64(points)))
	best, all, err := g.Search(ctx, optim.PolicyObjective(cfg, policyName, episodes))
	if err != nil {
		return err
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })
	if top > 0 && len(all) > top {
		all = all[:top]
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\tMEAN RETURN")
	for _, trial := range all {
		for _, name := range names {
			fmt.Fprintf(w, "%g\t", trial.Params[name])
		}
		fmt.Fprintf(w, "%.4f\n", trial.Score)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nbest: %v (mean return %.4f)\n", best.Params, best.Score)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:      cfg,
		Policy:    policyName,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
		Episodes:  episodes,
	}, newLogger())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMEAN RETURN\tMEAN FINAL DISTANCE\tDIVERGED\n", sweepParam)
	for _, r := range results {
		fmt.Fprintf(w, "%g\t%.4f\t%.4f\t%d\n", r.ParamValue, r.MeanReturn, r.MeanFinalDistance, r.Divergent)
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("scenario %s: %d steps\n", sc.Name, len(sc.Steps))
	results, err := automation.RunScenario(ctx, sc, newLogger())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN ID\tPOLICY\tEPISODES\tMEAN RETURN")
	for i, r := range results {
		policy := r.Policy
		if policy == "" {
			policy = "none"
		}
		meta := metadata(r.Config, policy)
		meta.ID = storage.NewRunID(r.Name)
		meta.Name = r.Name
		if n := len(r.Episodes); n > 0 {
			meta.Metrics = r.Episodes[n-1].Metrics
		}
		id, err := st.Save(meta, r.Episodes)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.4f\n", i+1, id, policy, len(r.Episodes), r.MeanReturn())
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s trials of %s\n", humanize.Comma(int64(trials)), cfg.Name)
	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:      cfg,
		Policy:    policyName,
		NumTrials: trials,
		Seed:      cfg.Seed,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tSEED\tRETURN\tFINAL DISTANCE\tSTABLE")
	sum := 0.0
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%.4f\t%.4f\t%v\n", r.TrialID, r.Seed, r.Return, r.FinalDistance, r.Stable)
		sum += r.Return
	}
	if err := w.Flush(); err != nil {
		return err
	}
	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("\nmean return %.4f, %d stable, %d diverged\n", sum/float64(len(results)), stable, unstable)
	return nil
}
