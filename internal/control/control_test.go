package control

import (
	"errors"
	"math"
	"testing"

	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
)

func TestPoliciesStayInRange(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			p, err := New(name, 9, 3, 42)
			if err != nil {
				t.Fatal(err)
			}
			for step := 0; step < 50; step++ {
				u := p.Compute(nil, float64(step)*0.01)
				if len(u) != 9 {
					t.Fatalf("action length = %d, want 9", len(u))
				}
				for i, v := range u {
					if v < -1 || v > 1 || math.IsNaN(v) {
						t.Fatalf("u[%d] = %v out of range", i, v)
					}
				}
			}
		})
	}
}

func TestUnknownPolicy(t *testing.T) {
	if _, err := New("ppo", 3, 3, 0); !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestNone(t *testing.T) {
	u := NewNone(4).Compute(dynamo.State{1, 2, 3}, 1.0)
	for i, v := range u {
		if v != 0 {
			t.Errorf("u[%d] = %v, want 0", i, v)
		}
	}
}

func TestRandomIsSeeded(t *testing.T) {
	a := NewRandom(6, 3).Compute(nil, 0)
	b := NewRandom(6, 3).Compute(nil, 0)
	c := NewRandom(6, 4).Compute(nil, 0)

	differs := false
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed differs at %d", i)
		}
		differs = differs || a[i] != c[i]
	}
	if !differs {
		t.Error("different seeds gave the same action")
	}
}

func TestWaveTravels(t *testing.T) {
	w := NewWave(3, 3)
	w.Waves = 0.25

	u := w.Compute(nil, 0)
	// Phase lags by a twelfth of a period per control point.
	want := []float64{0, math.Sin(-math.Pi / 6), math.Sin(-math.Pi / 3)}
	for i := range want {
		if math.Abs(u[i]-want[i]) > 1e-12 {
			t.Errorf("u[%d] = %v, want %v", i, u[i], want[i])
		}
	}

	u = w.Compute(nil, 0.25)
	if math.Abs(u[0]-1) > 1e-12 {
		t.Errorf("u[0] at quarter period = %v, want 1", u[0])
	}
}

func TestManual(t *testing.T) {
	m := NewManual(3)
	if err := m.SetControl([]float64{0.5, 2, -3}); err != nil {
		t.Fatal(err)
	}
	u := m.Compute(nil, 0)
	want := dynamo.Control{0.5, 1, -1}
	for i := range want {
		if u[i] != want[i] {
			t.Errorf("u[%d] = %v, want %v", i, u[i], want[i])
		}
	}

	u[0] = 99
	if m.Compute(nil, 0)[0] != 0.5 {
		t.Error("Compute returned an alias of the stored action")
	}

	if err := m.SetParam("u2", 0.25); err != nil {
		t.Fatal(err)
	}
	if m.GetParams()["u2"] != 0.25 {
		t.Errorf("params = %v", m.GetParams())
	}

	for _, bad := range []string{"u3", "x0", "u-1"} {
		if err := m.SetParam(bad, 0); !errors.Is(err, dynamo.ErrConfiguration) {
			t.Errorf("SetParam(%q): expected ErrConfiguration, got %v", bad, err)
		}
	}
	if err := m.SetControl([]float64{1}); !errors.Is(err, dynamo.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
