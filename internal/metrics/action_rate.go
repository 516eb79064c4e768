package metrics

import (
	"gonum.org/v1/gonum/floats"

	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
)

// ActionRate is the mean Euclidean change between consecutive actions.
// The first action of an episode has nothing to compare against.
type ActionRate struct {
	name  string
	prev  dynamo.Control
	sum   float64
	diffs int
}

func NewActionRate() *ActionRate {
	return &ActionRate{name: "action_rate"}
}

func (a *ActionRate) Name() string { return a.name }

func (a *ActionRate) Observe(obs dynamo.State, u dynamo.Control, t float64) {
	if a.prev != nil && len(a.prev) == len(u) {
		a.sum += floats.Distance(u, a.prev, 2)
		a.diffs++
	}
	a.prev = append(a.prev[:0], u...)
}

func (a *ActionRate) Value() float64 {
	if a.diffs == 0 {
		return 0
	}
	return a.sum / float64(a.diffs)
}

func (a *ActionRate) Reset() {
	a.prev = nil
	a.sum = 0
	a.diffs = 0
}
