package sim

import "github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"

type Stepper interface {
	Step(t, dt float64) (float64, error)
}

// Scheduler runs a fixed number of micro-steps per control step and keeps
// the simulation clock.
type Scheduler struct {
	stepper Stepper
	time    float64
	steps   int
}

func NewScheduler(stepper Stepper) *Scheduler {
	return &Scheduler{stepper: stepper}
}

// RunControlStep performs exactly n micro-steps of size dt. The loop does
// not look at the action; actuators pick it up from their buffers.
func (s *Scheduler) RunControlStep(n int, dt float64) error {
	if n < 1 {
		return dynamo.NewConfigError("steps_per_update", "must be at least 1, got %d", n)
	}
	for i := 0; i < n; i++ {
		t, err := s.stepper.Step(s.time, dt)
		if err != nil {
			return &dynamo.SimulationError{Step: s.steps, Time: s.time, Wrapped: err}
		}
		s.time = t
		s.steps++
	}
	return nil
}

func (s *Scheduler) Time() float64 { return s.time }

// MicroSteps is the total number of micro-steps run by this scheduler.
func (s *Scheduler) MicroSteps() int { return s.steps }
