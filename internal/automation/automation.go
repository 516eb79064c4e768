// Package automation runs batches of episodes: YAML scenarios, parameter
// sweeps and Monte Carlo trials over seeds.
package automation

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/GazzolaLab/Elastica-RL-control/internal/config"
	"github.com/GazzolaLab/Elastica-RL-control/internal/control"
	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
	"github.com/GazzolaLab/Elastica-RL-control/internal/env"
	"github.com/GazzolaLab/Elastica-RL-control/internal/metrics"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run: a preset or config file, overrides, a policy
// and an episode count.
type ScenarioStep struct {
	Preset   string             `yaml:"preset"`
	Config   string             `yaml:"config"`
	Policy   string             `yaml:"policy"`
	Episodes int                `yaml:"episodes"`
	Seed     *uint64            `yaml:"seed"`
	Params   map[string]float64 `yaml:"params"`
	SaveAs   string             `yaml:"save_as"`
}

// StepResult is the outcome of one scenario step.
type StepResult struct {
	Name     string
	Config   *config.Config
	Policy   string
	Episodes []*env.EpisodeResult
}

// MeanReturn averages the episode returns.
func (r StepResult) MeanReturn() float64 {
	if len(r.Episodes) == 0 {
		return 0
	}
	sum := 0.0
	for _, ep := range r.Episodes {
		sum += ep.Return
	}
	return sum / float64(len(r.Episodes))
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, dynamo.NewConfigError("steps", "scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// BuildConfig resolves a preset or a config file and applies overrides.
// A config file wins over a preset; neither means the default config.
func BuildConfig(preset, file string, params map[string]float64) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case file != "":
		var err error
		if cfg, err = config.Load(file); err != nil {
			return nil, err
		}
	case preset != "":
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, dynamo.NewConfigError("preset", "unknown preset %q, have %v", preset, config.ListPresets())
		}
	default:
		cfg = config.DefaultConfig()
	}

	for k, v := range params {
		if err := cfg.SetParam(k, v); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

func runEpisodes(ctx context.Context, cfg *config.Config, policyName string, episodes int, log *zap.Logger) ([]*env.EpisodeResult, error) {
	if episodes < 1 {
		episodes = 1
	}
	if policyName == "" {
		policyName = "none"
	}
	e, err := env.New(cfg, env.WithLogger(log), env.WithMetrics(metrics.Default()...))
	if err != nil {
		return nil, err
	}
	policy, err := control.New(policyName, e.ActionSize(), cfg.Actuation.ControlPoints, cfg.Seed)
	if err != nil {
		return nil, err
	}

	results := make([]*env.EpisodeResult, 0, episodes)
	for i := 0; i < episodes; i++ {
		res, err := e.RunEpisode(ctx, policy)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// RunScenario executes all steps in a scenario. log may be nil.
func RunScenario(ctx context.Context, scenario *Scenario, log *zap.Logger) ([]StepResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := BuildConfig(step.Preset, step.Config, step.Params)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		if step.Seed != nil {
			cfg.Seed = *step.Seed
		}

		name := step.SaveAs
		if name == "" {
			name = cfg.Name
		}
		log.Info("scenario step",
			zap.Int("step", i+1),
			zap.Int("of", len(scenario.Steps)),
			zap.String("name", name),
			zap.String("policy", step.Policy))

		eps, err := runEpisodes(ctx, cfg, step.Policy, step.Episodes, log)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, StepResult{Name: name, Config: cfg, Policy: step.Policy, Episodes: eps})
	}

	return results, nil
}

// ParameterSweep runs episodes across evenly spaced values of one tunable
// config field.
type ParameterSweep struct {
	Base      *config.Config
	Policy    string
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Episodes  int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue        float64
	MeanReturn        float64
	MeanFinalDistance float64
	Divergent         int
}

// RunSweep executes a parameter sweep. log may be nil.
func RunSweep(ctx context.Context, sweep *ParameterSweep, log *zap.Logger) ([]SweepResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if sweep.NumSteps < 1 {
		return nil, dynamo.NewConfigError("steps", "sweep needs at least 1 value, got %d", sweep.NumSteps)
	}
	if err := sweep.Base.Clone().SetParam(sweep.ParamName, sweep.ParamMin); err != nil {
		return nil, err
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := sweep.Base.Clone()
		if err := cfg.SetParam(sweep.ParamName, paramVal); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}

		eps, err := runEpisodes(ctx, cfg, sweep.Policy, sweep.Episodes, log)
		if err != nil {
			return nil, err
		}

		res := SweepResult{ParamValue: paramVal}
		finite := 0
		for _, ep := range eps {
			res.MeanReturn += ep.Return
			if ep.Divergent {
				res.Divergent++
				continue
			}
			res.MeanFinalDistance += ep.FinalDistance
			finite++
		}
		res.MeanReturn /= float64(len(eps))
		if finite > 0 {
			res.MeanFinalDistance /= float64(finite)
		}
		results = append(results, res)

		log.Info("sweep",
			zap.Int("value", i+1),
			zap.Int("of", sweep.NumSteps),
			zap.Float64(sweep.ParamName, paramVal),
			zap.Float64("mean_return", res.MeanReturn))
	}

	return results, nil
}

// MonteCarloConfig runs one episode per seed, concurrently.
type MonteCarloConfig struct {
	Base      *config.Config
	Policy    string
	NumTrials int
	Seed      uint64
}

// MonteCarloResult holds the outcome of one trial
type MonteCarloResult struct {
	TrialID       int
	Seed          uint64
	Return        float64
	FinalDistance float64
	Stable        bool
}

// RunMonteCarlo runs NumTrials independent episodes with consecutive
// seeds. Random target modes place the target differently in each.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.NumTrials < 1 {
		return nil, dynamo.NewConfigError("trials", "need at least 1 trial, got %d", cfg.NumTrials)
	}
	base := cfg.Base.Clone()
	base.Seed = cfg.Seed

	mode, err := base.Mode()
	if err != nil {
		return nil, err
	}
	dim := mode.Multiplier() * base.Actuation.ControlPoints
	policyName := cfg.Policy
	if policyName == "" {
		policyName = "none"
	}
	if _, err := control.New(policyName, dim, base.Actuation.ControlPoints, 0); err != nil {
		return nil, err
	}

	eps, err := env.RunEnsemble(ctx, base, cfg.NumTrials, func(idx int) dynamo.Controller {
		p, _ := control.New(policyName, dim, base.Actuation.ControlPoints, base.Seed+uint64(idx))
		return p
	})
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(eps))
	for i, ep := range eps {
		results[i] = MonteCarloResult{
			TrialID:       i,
			Seed:          base.Seed + uint64(i),
			Return:        ep.Return,
			FinalDistance: ep.FinalDistance,
			Stable:        !ep.Divergent,
		}
	}
	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
