package env

import (
	"context"
	"sync"

	"github.com/GazzolaLab/Elastica-RL-control/internal/config"
	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
)

type EpisodeResult struct {
	Return         float64
	Length         int
	FinalDistance  float64
	Divergent      bool
	SimulationTime float64
	Rewards        []float64
	Distances      []float64
	Times          []float64
	Metrics        map[string]float64
}

// RunEpisode resets the environment and steps it with policy until the
// episode ends. Cancellation is checked between control steps; the partial
// result is returned with ctx.Err().
func (e *Environment) RunEpisode(ctx context.Context, policy dynamo.Controller) (*EpisodeResult, error) {
	obs, err := e.Reset()
	if err != nil {
		return nil, err
	}

	horizon := e.Horizon()
	result := &EpisodeResult{
		Rewards:   make([]float64, 0, horizon),
		Distances: make([]float64, 0, horizon),
		Times:     make([]float64, 0, horizon),
	}

	for {
		select {
		case <-ctx.Done():
			result.Metrics = e.Metrics()
			return result, ctx.Err()
		default:
		}

		action := policy.Compute(obs, e.Time())
		next, r, done, info, err := e.Step(action)
		if err != nil {
			return result, err
		}

		result.Return += r
		result.Length = info.Step
		result.FinalDistance = info.Distance
		result.Divergent = info.Divergent
		result.SimulationTime = info.SimulationTime
		result.Rewards = append(result.Rewards, r)
		result.Distances = append(result.Distances, info.Distance)
		result.Times = append(result.Times, info.SimulationTime)

		obs = next
		if done {
			break
		}
	}

	result.Metrics = e.Metrics()
	return result, nil
}

// PolicyFactory builds the policy for the idx-th run of an ensemble.
type PolicyFactory func(idx int) dynamo.Controller

// RunEnsemble runs n independent episodes concurrently. Run idx uses seed
// cfg.Seed+idx and its own environment. opts are applied to every
// environment, so they must not carry shared metrics.
func RunEnsemble(ctx context.Context, cfg *config.Config, n int, factory PolicyFactory, opts ...Option) ([]*EpisodeResult, error) {
	results := make([]*EpisodeResult, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := cfg.Clone()
			cfgCopy.Seed = cfg.Seed + uint64(idx)

			e, err := New(cfgCopy, opts...)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = e.RunEpisode(ctx, factory(idx))
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
