package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/GazzolaLab/Elastica-RL-control/internal/config"
)

func TestLinspace(t *testing.T) {
	tests := []struct {
		lo, hi float64
		n      int
		want   []float64
	}{
		{0, 1, 5, []float64{0, 0.25, 0.5, 0.75, 1}},
		{2, 2, 3, []float64{2, 2, 2}},
		{3, 9, 1, []float64{3}},
	}
	for _, tt := range tests {
		got := Linspace(tt.lo, tt.hi, tt.n)
		if len(got) != len(tt.want) {
			t.Fatalf("Linspace(%g, %g, %d) = %v", tt.lo, tt.hi, tt.n, got)
		}
		for i := range got {
			if math.Abs(got[i]-tt.want[i]) > 1e-12 {
				t.Errorf("Linspace(%g, %g, %d)[%d] = %g, want %g", tt.lo, tt.hi, tt.n, i, got[i], tt.want[i])
			}
		}
	}
}

func TestGridSearchFindsMaximum(t *testing.T) {
	g, err := NewGridSearch([]string{"x", "y"}, [][]float64{Linspace(-2, 2, 5), Linspace(-2, 2, 5)})
	if err != nil {
		t.Fatal(err)
	}
	obj := func(_ context.Context, p map[string]float64) (float64, error) {
		return -math.Pow(p["x"]-1, 2) - math.Pow(p["y"]+0.5, 2), nil
	}

	best, trials, err := g.Search(context.Background(), obj)
	if err != nil {
		t.Fatal(err)
	}
	if len(trials) != 25 {
		t.Errorf("evaluated %d points, want 25", len(trials))
	}
	// y = -1 and y = 0 tie; the earlier point wins.
	if best.Params["x"] != 1 || best.Params["y"] != -1 || best.Score != -0.25 {
		t.Errorf("best = %+v", best)
	}
	if trials[0].Params["x"] != -2 || trials[1].Params["x"] != -2 || trials[1].Params["y"] != -1 {
		t.Errorf("first parameter should vary slowest: %v, %v", trials[0].Params, trials[1].Params)
	}
}

func TestGridSearchErrors(t *testing.T) {
	if _, err := NewGridSearch([]string{"a"}, nil); err == nil {
		t.Error("expected error for missing range")
	}
	if _, err := NewGridSearch([]string{"a"}, [][]float64{{}}); err == nil {
		t.Error("expected error for empty range")
	}

	g, _ := NewGridSearch([]string{"a"}, [][]float64{{1, 2, 3}})
	boom := errors.New("boom")
	calls := 0
	_, trials, err := g.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		calls++
		if p["a"] == 2 {
			return 0, boom
		}
		return p["a"], nil
	})
	if !errors.Is(err, boom) || calls != 2 || len(trials) != 1 {
		t.Errorf("err=%v calls=%d trials=%d", err, calls, len(trials))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := g.Search(ctx, func(context.Context, map[string]float64) (float64, error) { return 0, nil }); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPolicyObjective(t *testing.T) {
	cfg := config.GetPreset("reach2d")
	cfg.FinalTime = 0.1

	obj := PolicyObjective(cfg, "wave", 1)
	score, err := obj(context.Background(), map[string]float64{"amplitude": 0})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(score-10*-0.64) > 1e-9 {
		t.Errorf("zero-amplitude wave return = %g, want %g", score, 10*-0.64)
	}

	if _, err := obj(context.Background(), map[string]float64{"phase": 1}); err == nil {
		t.Error("expected error for unknown wave parameter")
	}
	if _, err := PolicyObjective(cfg, "none", 1)(context.Background(), map[string]float64{"amplitude": 1}); err == nil {
		t.Error("expected error tuning a policy without parameters")
	}
}
