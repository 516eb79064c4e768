package rod

import (
	"errors"
	"math"
	"testing"

	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
	"github.com/GazzolaLab/Elastica-RL-control/internal/integrators"
)

func testParams(n int) Params {
	p := DefaultParams()
	p.Elements = n
	return p
}

func TestStraightRestConfiguration(t *testing.T) {
	r, err := New(testParams(20))
	if err != nil {
		t.Fatalf("new rod: %v", err)
	}

	tip := r.Tip()
	if math.Abs(tip.X) > 1e-12 || math.Abs(tip.Y-1) > 1e-12 || math.Abs(tip.Z) > 1e-12 {
		t.Errorf("tip at rest = %v, want (0, 1, 0)", tip)
	}
	if len(r.Positions()) != 21 {
		t.Errorf("expected 21 nodes, got %d", len(r.Positions()))
	}
	if r.StateDim() != 120 || r.ControlDim() != 60 {
		t.Errorf("dims = %d/%d", r.StateDim(), r.ControlDim())
	}
}

func TestZeroTorqueStaysAtRest(t *testing.T) {
	r, _ := New(testParams(10))
	integ := integrators.NewPositionVerlet()

	for i := 0; i < 100; i++ {
		r.ZeroTorques()
		r.Advance(integ, float64(i)*1e-3, 1e-3)
	}
	for i, v := range r.State() {
		if v != 0 {
			t.Fatalf("state[%d] = %v, want exactly 0", i, v)
		}
	}
}

func TestStaticBendingUnderUniformTorque(t *testing.T) {
	r, _ := New(testParams(10))
	integ := integrators.NewPositionVerlet()
	const tau = 1.0
	dt := 1e-3

	for i := 0; i < 3000; i++ {
		r.ZeroTorques()
		for k := range r.TorqueAxis(0) {
			r.TorqueAxis(0)[k] = tau
		}
		r.Advance(integ, float64(i)*dt, dt)
	}

	want := tau / r.stiff[0]
	for i := 0; i < r.Elements(); i++ {
		got := r.State()[3*i]
		if math.Abs(got-want)/want > 1e-3 {
			t.Errorf("joint %d bend = %v, want %v", i, got, want)
		}
	}

	tip := r.Tip()
	if tip.X >= 0 {
		t.Errorf("positive normal torque should bend toward -x, tip = %v", tip)
	}
	if math.Abs(tip.Z) > 1e-9 {
		t.Errorf("normal torque should keep the arm planar, tip = %v", tip)
	}
}

func TestTaperedRadius(t *testing.T) {
	p := testParams(5)
	p.TipRadius = 0.01
	r, err := New(p)
	if err != nil {
		t.Fatal(err)
	}
	rad := r.Radius()
	if rad[0] != 0.05 || math.Abs(rad[4]-0.01) > 1e-12 {
		t.Errorf("radius profile = %v", rad)
	}
	for i := 1; i < len(rad); i++ {
		if rad[i] >= rad[i-1] {
			t.Errorf("radius not decreasing at %d: %v", i, rad)
		}
	}
}

func TestNonFiniteStatePropagates(t *testing.T) {
	r, _ := New(testParams(8))
	r.State()[0] = math.NaN()
	r.Refresh()

	tip := r.Tip()
	if !math.IsNaN(tip.X) && !math.IsNaN(tip.Y) {
		t.Errorf("expected NaN tip after corrupting state, got %v", tip)
	}
}

func TestInvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"no elements", func(p *Params) { p.Elements = 0 }},
		{"zero length", func(p *Params) { p.BaseLength = 0 }},
		{"negative radius", func(p *Params) { p.BaseRadius = -1 }},
		{"zero modulus", func(p *Params) { p.Youngs = 0 }},
		{"negative damping", func(p *Params) { p.DampingRatio = -0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			if _, err := New(p); !errors.Is(err, dynamo.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}
