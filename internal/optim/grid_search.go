// Package optim tunes policy parameters by exhaustive grid search.
package optim

import (
	"context"
	"fmt"
	"maps"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/GazzolaLab/Elastica-RL-control/internal/config"
	"github.com/GazzolaLab/Elastica-RL-control/internal/control"
	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
	"github.com/GazzolaLab/Elastica-RL-control/internal/env"
)

// Objective scores one parameter assignment. Higher is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Score  float64
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, dynamo.NewConfigError("params", "need one range per parameter, got %d names and %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, dynamo.NewConfigError(params[i], "empty range")
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive. n < 2
// yields just lo.
func Linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Search evaluates every grid point in order, the first parameter varying
// slowest. Ties keep the earlier point. An objective error aborts the search.
func (g *GridSearch) Search(ctx context.Context, obj Objective) (Trial, []Trial, error) {
	best := Trial{Score: math.Inf(-1)}
	var trials []Trial

	err := g.searchRecursive(ctx, 0, make(map[string]float64), obj, &best, &trials)
	return best, trials, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	obj Objective,
	best *Trial,
	trials *[]Trial,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		score, err := obj(ctx, current)
		if err != nil {
			return fmt.Errorf("%v: %w", current, err)
		}
		trial := Trial{Params: maps.Clone(current), Score: score}
		*trials = append(*trials, trial)
		if score > best.Score {
			*best = trial
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := maps.Clone(current)
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, obj, best, trials); err != nil {
			return err
		}
	}
	return nil
}

// PolicyObjective scores parameters of the named policy by the mean return
// over episodes of cfg. Every evaluation gets a fresh environment with the
// same seed, so random targets repeat across grid points.
func PolicyObjective(cfg *config.Config, policyName string, episodes int) Objective {
	if episodes < 1 {
		episodes = 1
	}
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		e, err := env.New(cfg)
		if err != nil {
			return 0, err
		}
		policy, err := control.New(policyName, e.ActionSize(), cfg.Actuation.ControlPoints, cfg.Seed)
		if err != nil {
			return 0, err
		}
		c, ok := policy.(dynamo.Configurable)
		if !ok && len(params) > 0 {
			return 0, dynamo.NewConfigError("policy", "%s policy has no tunable parameters", policyName)
		}
		for k, v := range params {
			if err := c.SetParam(k, v); err != nil {
				return 0, err
			}
		}

		sum := 0.0
		for i := 0; i < episodes; i++ {
			res, err := e.RunEpisode(ctx, policy)
			if err != nil {
				return 0, err
			}
			sum += res.Return
		}
		return sum / float64(episodes), nil
	}
}
