package control

import "github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"

// None leaves every control point at zero, so the arm stays at rest.
type None struct {
	dim int
}

func NewNone(dim int) *None {
	return &None{
		dim: dim,
	}
}

func (n *None) Compute(obs dynamo.State, t float64) dynamo.Control {
	return make(dynamo.Control, n.dim)
}
