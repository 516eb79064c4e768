package storage

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GazzolaLab/Elastica-RL-control/internal/diagnostics"
	"github.com/GazzolaLab/Elastica-RL-control/internal/env"
)

func sampleResults() []*env.EpisodeResult {
	return []*env.EpisodeResult{
		{
			Return: -1.5, Length: 2, FinalDistance: 0.7, SimulationTime: 0.02,
			Rewards: []float64{-0.8, -0.7}, Distances: []float64{0.8, 0.7}, Times: []float64{0.01, 0.02},
		},
		{
			Return: -10000.5, Length: 1, FinalDistance: math.NaN(), Divergent: true, SimulationTime: 0.01,
			Rewards: []float64{-10000.5}, Distances: []float64{math.NaN()}, Times: []float64{0.01},
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(RunMetadata{Name: "reach2d", Seed: 42, Policy: "wave", Integrator: "rk4"}, sampleResults())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "reach2d_") {
		t.Errorf("run id %q does not carry the run name", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Seed != 42 || meta.Policy != "wave" || meta.Episodes != 2 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if math.Abs(meta.MeanReturn+5001) > 1e-9 {
		t.Errorf("mean return = %v, want -5001", meta.MeanReturn)
	}

	rows, err := st.LoadEpisodes(runID)
	if err != nil {
		t.Fatalf("load episodes: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d episode rows, want 2", len(rows))
	}
	if rows[0].Length != 2 || rows[0].FinalDistance != 0.7 || rows[0].Divergent {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if !rows[1].Divergent || !math.IsNaN(rows[1].FinalDistance) {
		t.Errorf("row 1 = %+v", rows[1])
	}

	traces, err := st.LoadSteps(runID)
	if err != nil {
		t.Fatalf("load steps: %v", err)
	}
	if len(traces) != 2 || len(traces[0].Rewards) != 2 || traces[0].Rewards[1] != -0.7 {
		t.Errorf("unexpected traces %+v", traces)
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Fatalf("empty store: runs=%v err=%v", runs, err)
	}

	for _, name := range []string{"a", "b"} {
		if _, err := st.Save(RunMetadata{Name: name}, sampleResults()); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("listed %d runs, want 2", len(runs))
	}
}

func TestLoadStepsRejectsCorruptRows(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"bad reward", "0,1,0.01,oops,0.8"},
		{"bad episode", "x,1,0.01,-0.8,0.8"},
		{"episode out of range", "99999999,1,0.01,-0.8,0.8"},
		{"negative episode", "-1,1,0.01,-0.8,0.8"},
		{"short row", "0,1,0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := New(t.TempDir())
			runID, err := st.Save(RunMetadata{Name: "corrupt"}, sampleResults())
			if err != nil {
				t.Fatal(err)
			}
			csv := "episode,step,time,reward,distance\n0,1,0.01,-0.8,0.8\n" + tt.row + "\n"
			if err := os.WriteFile(filepath.Join(st.Dir(runID), "steps.csv"), []byte(csv), 0644); err != nil {
				t.Fatal(err)
			}
			if traces, err := st.LoadSteps(runID); err == nil {
				t.Errorf("expected an error, got %d traces", len(traces))
			}
		})
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	h := &diagnostics.History{
		Arm: diagnostics.ArmData{
			Time:      []float64{0, 0.1},
			NElemsRod: 2,
			RadiiRod:  [][]float64{{0.05, 0.05}, {0.05, 0.05}},
		},
		Activation: map[string]*diagnostics.Activation{
			"normal": {Time: []float64{0}, TorqueMag: [][]float64{{1, 2}}},
		},
	}

	dir := filepath.Join(t.TempDir(), "history")
	if err := SaveHistory(dir, h); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, ObstacleDataFile)); !os.IsNotExist(err) {
		t.Errorf("obstacle file written without obstacles: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, ArmDataFile))
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"position_rod"`, `"radii_rod"`, `"n_elems_rod"`, `"position_sphere"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("%s missing key %s", ArmDataFile, key)
		}
	}

	loaded, err := LoadHistory(dir)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Arm.NElemsRod != 2 || len(loaded.Arm.Time) != 2 {
		t.Errorf("arm data = %+v", loaded.Arm)
	}
	if act := loaded.Activation["normal"]; act == nil || act.TorqueMag[0][1] != 2 {
		t.Errorf("activation = %+v", loaded.Activation)
	}
}
