package control

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
)

// Random samples every action entry independently from U(-1, 1).
type Random struct {
	dim  int
	dist distuv.Uniform
}

func NewRandom(dim int, seed uint64) *Random {
	return &Random{
		dim: dim,
		dist: distuv.Uniform{
			Min: -1,
			Max: 1,
			Src: rand.New(rand.NewPCG(seed, seed+1)),
		},
	}
}

func (r *Random) Compute(obs dynamo.State, t float64) dynamo.Control {
	u := make(dynamo.Control, r.dim)
	for i := range u {
		u[i] = r.dist.Rand()
	}
	return u
}
