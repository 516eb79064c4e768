package main

import (
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/GazzolaLab/Elastica-RL-control/internal/config"
)

func envCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addEnvFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatal(err)
	}
	return cmd
}

func TestResolveConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arm.yaml")
	fromFile := config.GetPreset("track2d")
	fromFile.Name = "from_file"
	fromFile.FinalTime = 2.0
	fromFile.Seed = 3
	if err := config.Save(path, fromFile); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		args      []string
		wantName  string
		wantTime  float64
		wantSeed  uint64
		wantAlpha float64
	}{
		{"preset default", nil, "reach2d", 1.0, 0, 75},
		{"preset flag", []string{"--preset", "track2d_k2"}, "track2d_k2", 5.0, 0, 75},
		{"file beats preset default", []string{"--config", path}, "from_file", 2.0, 3, 75},
		{"flag beats file", []string{"--config", path, "--time", "0.5", "--seed", "9"}, "from_file", 0.5, 9, 75},
		{"set tunable", []string{"--set", "alpha=10", "--set", "final_time=0.2"}, "reach2d", 0.2, 0, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := resolveConfig(envCommand(t, tt.args...))
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Name != tt.wantName || cfg.FinalTime != tt.wantTime || cfg.Seed != tt.wantSeed {
				t.Errorf("got name=%s time=%g seed=%d", cfg.Name, cfg.FinalTime, cfg.Seed)
			}
			if cfg.Actuation.Alpha != tt.wantAlpha {
				t.Errorf("alpha = %g, want %g", cfg.Actuation.Alpha, tt.wantAlpha)
			}
		})
	}
}

func TestResolveConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown preset", []string{"--preset", "nope"}},
		{"malformed set", []string{"--set", "alpha"}},
		{"unknown tunable", []string{"--set", "gamma=1"}},
		{"invalid time", []string{"--time", "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := resolveConfig(envCommand(t, tt.args...)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParseGrid(t *testing.T) {
	names, ranges, err := parseGrid([]string{"amplitude=0:1:3", "frequency=2:2:1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "amplitude" || names[1] != "frequency" {
		t.Fatalf("names = %v", names)
	}
	if len(ranges[0]) != 3 || ranges[0][1] != 0.5 || len(ranges[1]) != 1 || ranges[1][0] != 2 {
		t.Errorf("ranges = %v", ranges)
	}

	for _, bad := range []string{"amplitude", "amplitude=0:1", "amplitude=a:1:2", "amplitude=0:1:0"} {
		if _, _, err := parseGrid([]string{bad}); err == nil {
			t.Errorf("parseGrid(%q) should fail", bad)
		}
	}
}
