package actuation

import (
	"errors"
	"testing"

	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
)

func TestRouteFull3D(t *testing.T) {
	action := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	r, err := Route(action, 4, Mode3DTwist)
	if err != nil {
		t.Fatal(err)
	}

	check := func(name string, got, want []float64) {
		t.Helper()
		if len(got) != len(want) {
			t.Fatalf("%s: len %d, want %d", name, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s[%d] = %v, want %v", name, i, got[i], want[i])
			}
		}
	}
	check("normal", r.Normal, []float64{1, 2, 3, 4})
	check("binormal", r.Binormal, []float64{5, 6, 7, 8})
	check("tangent", r.Tangent, []float64{9, 10, 11, 12})

	action[0] = 100
	if r.Normal[0] != 1 {
		t.Error("routed slice aliases the action")
	}
}

func TestRouteModes(t *testing.T) {
	tests := []struct {
		mode     Mode
		k        int
		normal   float64
		binormal float64
		tangent  float64
	}{
		{Mode2D, 3, 1, 0, 0},
		{Mode2D5, 3, 1, 0, 2},
		{Mode3D, 3, 1, 2, 0},
		{Mode3DTwist, 3, 1, 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			action := make([]float64, 0, tt.k*tt.mode.Multiplier())
			for block := 1; block <= tt.mode.Multiplier(); block++ {
				for i := 0; i < tt.k; i++ {
					action = append(action, float64(block))
				}
			}
			r, err := Route(action, tt.k, tt.mode)
			if err != nil {
				t.Fatal(err)
			}
			if r.Normal[0] != tt.normal || r.Binormal[0] != tt.binormal || r.Tangent[0] != tt.tangent {
				t.Errorf("got n=%v b=%v t=%v", r.Normal[0], r.Binormal[0], r.Tangent[0])
			}
		})
	}
}

func TestRouteLengthMismatch(t *testing.T) {
	if _, err := Route(make([]float64, 5), 3, Mode3D); !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestParse(t *testing.T) {
	modes := map[string]Mode{"2d": Mode2D, "2.0": Mode2D, "2.5": Mode2D5, "3D": Mode3D, "3.5d": Mode3DTwist}
	for name, want := range modes {
		got, err := ParseMode(name)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseMode("4d"); !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}

	for _, d := range []Direction{Normal, Binormal, Tangent} {
		got, err := ParseDirection(d.String())
		if err != nil || got != d {
			t.Errorf("ParseDirection(%q) = %v, %v", d, got, err)
		}
		if got.Axis() != int(d) {
			t.Errorf("axis mismatch for %v", d)
		}
	}
	if _, err := ParseDirection("radial"); !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}
