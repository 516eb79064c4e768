// Package sim advances the arm and its companion bodies through time.
//
// A [Simulator] performs one micro-step: it clears the torque accumulator,
// lets every forcing hook add its contribution, integrates the arm, moves
// the free bodies and fires periodic callbacks. A [Scheduler] repeats
// micro-steps to cover one control step.
package sim

import (
	"fmt"
	"math"

	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
)

// Rod is the deformable body the simulator integrates.
type Rod interface {
	ZeroTorques()
	Advance(integ dynamo.Integrator, t, dt float64)
}

// Forcing adds external torques to the rod before integration.
type Forcing interface {
	ApplyTorques(t float64) error
}

// FreeBody is advanced kinematically after the rod.
type FreeBody interface {
	AdvanceMicroStep(dt float64)
}

// Callback is invoked every few micro-steps with the step counter and the
// simulation time after the step.
type Callback interface {
	Record(step int, t float64)
}

type CallbackFunc func(step int, t float64)

func (f CallbackFunc) Record(step int, t float64) { f(step, t) }

type scheduled struct {
	every int
	cb    Callback
}

type Simulator struct {
	rod        Rod
	integrator dynamo.Integrator
	forcings   []Forcing
	bodies     []FreeBody
	callbacks  []scheduled
	step       int
}

func New(rod Rod, integrator dynamo.Integrator) *Simulator {
	return &Simulator{
		rod:        rod,
		integrator: integrator,
		forcings:   make([]Forcing, 0),
		bodies:     make([]FreeBody, 0),
		callbacks:  make([]scheduled, 0),
	}
}

func (s *Simulator) AddForcing(f Forcing)   { s.forcings = append(s.forcings, f) }
func (s *Simulator) AddFreeBody(b FreeBody) { s.bodies = append(s.bodies, b) }

// AddCallback registers cb to run whenever the step counter is a multiple
// of every.
func (s *Simulator) AddCallback(cb Callback, every int) {
	if every < 1 {
		every = 1
	}
	s.callbacks = append(s.callbacks, scheduled{every: every, cb: cb})
}

// Start fires all callbacks for the initial configuration at step 0.
func (s *Simulator) Start(t float64) {
	for _, c := range s.callbacks {
		c.cb.Record(0, t)
	}
}

// Step advances every body by dt and returns the new time.
func (s *Simulator) Step(t, dt float64) (float64, error) {
	if dt <= 0 || math.IsNaN(dt) {
		return t, fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrConfiguration, dt)
	}

	s.rod.ZeroTorques()
	for _, f := range s.forcings {
		if err := f.ApplyTorques(t); err != nil {
			return t, err
		}
	}

	s.rod.Advance(s.integrator, t, dt)
	for _, b := range s.bodies {
		b.AdvanceMicroStep(dt)
	}

	s.step++
	t += dt
	for _, c := range s.callbacks {
		if s.step%c.every == 0 {
			c.cb.Record(s.step, t)
		}
	}
	return t, nil
}

// Steps is the number of micro-steps taken so far.
func (s *Simulator) Steps() int { return s.step }
