package integrators

import (
	"gonum.org/v1/gonum/floats"

	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
)

// Classic tableau. Stage s+1 is evaluated at x + rk4Nodes[s+1]*dt*k_s, and
// the stages are summed with rk4Weights/6.
var (
	rk4Nodes   = [4]float64{0, 0.5, 0.5, 1}
	rk4Weights = [4]float64{1, 2, 2, 1}
)

// RK4 is the classic fourth-order Runge-Kutta scheme. It does not need a
// split state and costs four right-hand side evaluations per step. The
// slice returned by Derive is consumed before the next evaluation, so a
// system may reuse its output buffer.
type RK4 struct {
	stage dynamo.State
	sum   dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	if len(r.stage) != n {
		r.stage = make(dynamo.State, n)
		r.sum = make(dynamo.State, n)
	}
	copy(r.stage, x)
	floats.Scale(0, r.sum)

	for s, c := range rk4Nodes {
		k := dyn.Derive(r.stage, u, t+c*dt)
		floats.AddScaled(r.sum, rk4Weights[s], k)
		if s+1 < len(rk4Nodes) {
			floats.AddScaledTo(r.stage, x, rk4Nodes[s+1]*dt, k)
		}
	}
	return floats.AddScaledTo(make(dynamo.State, n), x, dt/6, r.sum)
}
