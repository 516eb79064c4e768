// Package reward scores one control step of a reaching episode.
package reward

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
	"github.com/GazzolaLab/Elastica-RL-control/internal/geom"
)

// Tier is one proximity band. Inside Tolerance the step earns Bonus plus
// Scale*(1 - orientation distance); inside OrientationTolerance it also
// earns AlignedBonus.
type Tier struct {
	Tolerance            float64 `yaml:"tolerance"`
	Bonus                float64 `yaml:"bonus"`
	Scale                float64 `yaml:"scale"`
	OrientationTolerance float64 `yaml:"orientation_tolerance"`
	AlignedBonus         float64 `yaml:"aligned_bonus"`
}

type Config struct {
	DistanceWeight    float64 `yaml:"distance_weight"`
	OrientationWeight float64 `yaml:"orientation_weight"`
	SmoothnessWeight  float64 `yaml:"smoothness_weight"`
	Outer             Tier    `yaml:"outer"`
	Inner             Tier    `yaml:"inner"`
	Sentinel          float64 `yaml:"sentinel"`
	// TrackOrientation enables the orientation penalty and every
	// orientation-dependent bonus.
	TrackOrientation bool `yaml:"-"`
}

func DefaultConfig() Config {
	return Config{
		DistanceWeight:    1.0,
		OrientationWeight: 0.5,
		Outer:             Tier{Tolerance: 0.1, Bonus: 0.5, Scale: 0.5, OrientationTolerance: 0.1, AlignedBonus: 0.5},
		Inner:             Tier{Tolerance: 0.05, Bonus: 1.5, Scale: 1.5, OrientationTolerance: 0.05, AlignedBonus: 1.5},
		Sentinel:          -10000,
	}
}

func (c Config) Validate() error {
	switch {
	case c.DistanceWeight < 0:
		return dynamo.NewConfigError("reward.distance_weight", "must be non-negative, got %g", c.DistanceWeight)
	case c.DistanceWeight == 0 && c.Outer.Tolerance == 0:
		return dynamo.NewConfigError("reward.distance_weight", "reward would not depend on distance")
	case c.OrientationWeight < 0:
		return dynamo.NewConfigError("reward.orientation_weight", "must be non-negative, got %g", c.OrientationWeight)
	case c.SmoothnessWeight < 0:
		return dynamo.NewConfigError("reward.smoothness_weight", "must be non-negative, got %g", c.SmoothnessWeight)
	case c.Inner.Tolerance > c.Outer.Tolerance:
		return dynamo.NewConfigError("reward.inner.tolerance", "must not exceed outer tolerance %g, got %g", c.Outer.Tolerance, c.Inner.Tolerance)
	case !(c.Sentinel < 0):
		return dynamo.NewConfigError("reward.sentinel", "must be negative, got %g", c.Sentinel)
	}
	return nil
}

type Input struct {
	Tip         r3.Vec
	Target      r3.Vec
	TipQuat     quat.Number
	TargetQuat  quat.Number
	Action      []float64
	PrevAction  []float64
	Observation dynamo.State
}

type Result struct {
	Reward              float64
	Distance            float64
	OrientationDistance float64
	Bonus               float64
	Divergent           bool
}

type Evaluator struct {
	cfg Config
}

func NewEvaluator(cfg Config) (*Evaluator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{cfg: cfg}, nil
}

func (e *Evaluator) Config() Config { return e.cfg }

// Evaluate scores one step. A non-finite tip or observation makes the step
// divergent and replaces the reward with the sentinel.
func (e *Evaluator) Evaluate(in Input) Result {
	if !finite(in.Tip) || !in.Observation.IsValid() {
		return Result{Reward: e.cfg.Sentinel, Distance: math.NaN(), OrientationDistance: math.NaN(), Divergent: true}
	}

	c := e.cfg
	dist := r3.Norm(r3.Sub(in.Tip, in.Target))
	res := Result{Distance: dist}

	reward := -c.DistanceWeight * dist * dist
	od := 0.0
	if c.TrackOrientation {
		od = geom.OrientationDistance(in.TipQuat, in.TargetQuat)
		res.OrientationDistance = od
		reward -= c.OrientationWeight * od * od
	}

	for _, tier := range []Tier{c.Outer, c.Inner} {
		if !(dist < tier.Tolerance) {
			break
		}
		res.Bonus += tier.Bonus
		if c.TrackOrientation {
			res.Bonus += tier.Scale * (1 - od)
			if od < tier.OrientationTolerance {
				res.Bonus += tier.AlignedBonus
			}
		}
	}
	reward += res.Bonus

	if c.SmoothnessWeight > 0 && len(in.PrevAction) == len(in.Action) && len(in.Action) > 0 {
		d := floats.Distance(in.Action, in.PrevAction, 2)
		reward -= c.SmoothnessWeight * d * d
	}

	res.Reward = reward
	return res
}

func finite(v r3.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsNaN(v.Z) &&
		!math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsInf(v.Z, 0)
}
