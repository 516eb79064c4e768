package dynamo

import "math"

// State is a flat vector of physical or observation quantities.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Sanitize replaces every non-finite entry with zero in place and reports
// how many entries were replaced.
func (s State) Sanitize() int {
	n := 0
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			s[i] = 0
			n++
		}
	}
	return n
}

// Control is the input applied to a System over one integration step. For
// the rod it carries the external couple per element, axis-major.
type Control []float64

type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

// Controller maps an observation to an action. Policies in package control
// implement it.
type Controller interface {
	Compute(obs State, t float64) Control
}

type Metric interface {
	Name() string
	Observe(obs State, action Control, t float64)
	Value() float64
	Reset()
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
