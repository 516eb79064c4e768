package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/GazzolaLab/Elastica-RL-control/internal/actuation"
	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
	"github.com/GazzolaLab/Elastica-RL-control/internal/integrators"
	"github.com/GazzolaLab/Elastica-RL-control/internal/rod"
)

type traceRod struct {
	log *[]string
}

func (r *traceRod) ZeroTorques() { *r.log = append(*r.log, "zero") }
func (r *traceRod) Advance(integ dynamo.Integrator, t, dt float64) {
	*r.log = append(*r.log, "advance")
}

type traceForcing struct {
	log *[]string
	err error
}

func (f *traceForcing) ApplyTorques(t float64) error {
	*f.log = append(*f.log, "force")
	return f.err
}

type traceBody struct {
	log *[]string
}

func (b *traceBody) AdvanceMicroStep(dt float64) { *b.log = append(*b.log, "body") }

func TestStepOrder(t *testing.T) {
	var log []string
	s := New(&traceRod{log: &log}, nil)
	s.AddForcing(&traceForcing{log: &log})
	s.AddFreeBody(&traceBody{log: &log})
	s.AddCallback(CallbackFunc(func(step int, t float64) { log = append(log, "callback") }), 1)

	newT, err := s.Step(0.5, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(newT-0.6) > 1e-15 {
		t.Errorf("time = %v, want 0.6", newT)
	}

	want := []string{"zero", "force", "advance", "body", "callback"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("log[%d] = %s, want %s", i, log[i], want[i])
		}
	}
}

func TestStepForcingError(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	s := New(&traceRod{log: &log}, nil)
	s.AddForcing(&traceForcing{log: &log, err: boom})

	if _, err := s.Step(0, 0.1); !errors.Is(err, boom) {
		t.Errorf("expected forcing error, got %v", err)
	}
	if _, err := s.Step(0, 0); !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for dt=0, got %v", err)
	}
}

func TestCallbackPeriod(t *testing.T) {
	var log []string
	var steps []int
	s := New(&traceRod{log: &log}, nil)
	s.AddCallback(CallbackFunc(func(step int, t float64) { steps = append(steps, step) }), 3)

	s.Start(0)
	sched := NewScheduler(s)
	if err := sched.RunControlStep(10, 0.01); err != nil {
		t.Fatal(err)
	}

	want := []int{0, 3, 6, 9}
	if len(steps) != len(want) {
		t.Fatalf("callback steps = %v, want %v", steps, want)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Errorf("steps[%d] = %d, want %d", i, steps[i], want[i])
		}
	}
	if math.Abs(sched.Time()-0.1) > 1e-12 {
		t.Errorf("scheduler time = %v, want 0.1", sched.Time())
	}
	if sched.MicroSteps() != 10 {
		t.Errorf("micro steps = %d", sched.MicroSteps())
	}
}

func TestSchedulerWrapsErrors(t *testing.T) {
	var log []string
	s := New(&traceRod{log: &log}, nil)
	s.AddForcing(&traceForcing{log: &log, err: dynamo.ErrInvalidInput})

	err := NewScheduler(s).RunControlStep(3, 0.01)
	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) || !errors.Is(err, dynamo.ErrInvalidInput) {
		t.Fatalf("expected wrapped SimulationError, got %v", err)
	}
	if simErr.Step != 0 {
		t.Errorf("failing step = %d, want 0", simErr.Step)
	}

	if err := NewScheduler(s).RunControlStep(0, 0.01); !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for n=0, got %v", err)
	}
}

func TestAtMostOneRebuildPerControlStep(t *testing.T) {
	p := rod.DefaultParams()
	p.Elements = 20
	arm, err := rod.New(p)
	if err != nil {
		t.Fatal(err)
	}

	buf := actuation.NewControlPointBuffer(3)
	act, err := actuation.NewSplineActuator(arm, buf, actuation.Config{
		Direction:     actuation.Normal,
		ControlPoints: 3,
		BaseLength:    1,
		Scale:         10,
		RateLimit:     math.Inf(1),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	s := New(arm, integrators.NewPositionVerlet())
	s.AddForcing(act)
	sched := NewScheduler(s)

	actions := [][]float64{{0.1, 0.2, 0.3}, {0.1, 0.2, 0.3}, {-0.5, 0, 0.5}}
	prev := 0
	for i, a := range actions {
		if err := buf.Set(a); err != nil {
			t.Fatal(err)
		}
		if err := sched.RunControlStep(50, 2e-4); err != nil {
			t.Fatal(err)
		}
		if got := act.Rebuilds() - prev; got > 1 {
			t.Errorf("control step %d rebuilt %d times", i, got)
		}
		prev = act.Rebuilds()
	}
	if act.Rebuilds() != 2 {
		t.Errorf("expected 2 rebuilds over three control steps, got %d", act.Rebuilds())
	}
	if !arm.State().IsValid() {
		t.Error("arm state diverged")
	}
}
