package integrators

import "github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"

// The second-order schemes below assume a split state: the first half holds
// positions, the second half the matching velocities.

// PositionVerlet is the drift-kick-drift scheme used for the arm. It
// evaluates the right-hand side once per step.
type PositionVerlet struct {
	scratch dynamo.State
}

func NewPositionVerlet() *PositionVerlet {
	return &PositionVerlet{}
}

func (p *PositionVerlet) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	half := n / 2
	if len(p.scratch) != n {
		p.scratch = make(dynamo.State, n)
	}

	halfDt := 0.5 * dt
	for i := 0; i < half; i++ {
		p.scratch[i] = x[i] + x[half+i]*halfDt
		p.scratch[half+i] = x[half+i]
	}

	dx := dyn.Derive(p.scratch, u, t+halfDt)

	result := make(dynamo.State, n)
	for i := 0; i < half; i++ {
		result[half+i] = x[half+i] + dx[half+i]*dt
		result[i] = p.scratch[i] + result[half+i]*halfDt
	}
	return result
}

// Verlet is velocity Verlet.
type Verlet struct {
	scratch dynamo.State
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	half := n / 2
	if len(v.scratch) != n {
		v.scratch = make(dynamo.State, n)
	}

	result := make(dynamo.State, n)
	dx := dyn.Derive(x, u, t)
	dt2 := dt * dt

	for i := 0; i < half; i++ {
		result[i] = x[i] + x[half+i]*dt + 0.5*dx[half+i]*dt2
		v.scratch[i] = result[i]
		v.scratch[half+i] = x[half+i]
	}

	dxNew := dyn.Derive(v.scratch, u, t+dt)

	halfDt := 0.5 * dt
	for i := 0; i < half; i++ {
		result[half+i] = x[half+i] + (dx[half+i]+dxNew[half+i])*halfDt
	}
	return result
}

// Leapfrog is kick-drift-kick.
type Leapfrog struct {
	scratch dynamo.State
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	half := n / 2
	if len(l.scratch) != n {
		l.scratch = make(dynamo.State, n)
	}

	result := make(dynamo.State, n)
	dx := dyn.Derive(x, u, t)
	halfDt := dt * 0.5

	for i := 0; i < half; i++ {
		l.scratch[half+i] = x[half+i] + dx[half+i]*halfDt
		result[i] = x[i] + l.scratch[half+i]*dt
		l.scratch[i] = result[i]
	}

	dxNew := dyn.Derive(l.scratch, u, t+dt)

	for i := 0; i < half; i++ {
		result[half+i] = l.scratch[half+i] + dxNew[half+i]*halfDt
	}
	return result
}
