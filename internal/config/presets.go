package config

import "sort"

func preset(name string, mutate func(c *Config)) *Config {
	c := DefaultConfig()
	c.Name = name
	mutate(c)
	return c
}

// Presets are the benchmark cases. Each call to GetPreset returns a copy.
var Presets = map[string]*Config{
	// A fixed planar target 0.8 to the side of the undeformed tip.
	"reach2d": preset("reach2d", func(c *Config) {
		c.FinalTime = 1.0
		c.SimDt = 2e-4
		c.StepsPerUpdate = 50
		c.Rod.Elements = 20
		c.Actuation.Dim = "2d"
		c.Actuation.ControlPoints = 3
		c.Target.Mode = "fixed"
		c.Target.Position = [3]float64{-0.8, 1.0, 0}
	}),
	// Planar random walk tracking.
	"track2d": preset("track2d", func(c *Config) {
		c.FinalTime = 10.0
		c.SimDt = 2e-4
		c.StepsPerUpdate = 50
		c.Rod.Elements = 20
		c.Actuation.Dim = "2d"
		c.Actuation.ControlPoints = 3
		c.Target.Mode = "random_walk"
		c.Target.Speed = 0.5
		c.Target.Position = [3]float64{-0.4, 0.6, 0}
		c.Target.Boundary = []float64{-0.6, 0.6, 0.3, 0.9, -0.6, 0.6}
	}),
	// Two control points per direction, shorter episodes.
	"track2d_k2": preset("track2d_k2", func(c *Config) {
		c.FinalTime = 5.0
		c.SimDt = 2e-4
		c.StepsPerUpdate = 35
		c.Rod.Elements = 20
		c.Actuation.Dim = "2d"
		c.Actuation.ControlPoints = 2
		c.Target.Mode = "random_walk"
		c.Target.Speed = 0.5
		c.Target.Boundary = []float64{-0.6, 0.6, 0.3, 0.9, -0.6, 0.6}
	}),
	// Reach a randomly placed, randomly yawed target in full 3D with twist.
	"orient3d": preset("orient3d", func(c *Config) {
		c.FinalTime = 2.0
		c.SimDt = 2e-4
		c.StepsPerUpdate = 35
		c.Actuation.Dim = "3.5d"
		c.Actuation.ControlPoints = 6
		c.Target.Mode = "random_fixed"
		c.Target.Position = [3]float64{-0.4, 0.6, 0.2}
		c.Target.Boundary = []float64{-0.6, 0.6, 0.3, 0.9, -0.6, 0.6}
		c.Target.TrackOrientation = true
	}),
	// A target on a square path, bending only.
	"periodic3d": preset("periodic3d", func(c *Config) {
		c.FinalTime = 4.0
		c.SimDt = 2e-4
		c.StepsPerUpdate = 50
		c.Actuation.Dim = "3d"
		c.Actuation.ControlPoints = 4
		c.Target.Mode = "periodic"
		c.Target.Speed = 0.2
		c.Target.Position = [3]float64{0, 0.7, 0}
		c.Target.Boundary = []float64{-0.6, 0.6, 0.3, 0.9, -0.6, 0.6}
	}),
	// A fixed target behind a row of vertical posts.
	"obstacles2d": preset("obstacles2d", func(c *Config) {
		c.FinalTime = 5.0
		c.SimDt = 1e-4
		c.StepsPerUpdate = 70
		c.Rod.Elements = 50
		c.Actuation.Dim = "2d"
		c.Actuation.ControlPoints = 6
		c.Target.Mode = "fixed"
		c.Target.Position = [3]float64{-0.8, 0.5, 0}
		c.Target.Orientation = [3]float64{0, 0, 0}
		c.Obstacles = obstacleRow(8, 0.45, 0.12, 0.02)
	}),
}

// obstacleRow places n vertical posts on a line at height y, centered on
// the arm axis and spaced gap apart.
func obstacleRow(n int, y, gap, radius float64) []ObstacleConfig {
	out := make([]ObstacleConfig, n)
	x0 := -gap * float64(n-1) / 2
	for i := range out {
		out[i] = ObstacleConfig{
			Start:     [3]float64{x0 + gap*float64(i), y, -0.2},
			Direction: [3]float64{0, 0, 1},
			Normal:    [3]float64{1, 0, 0},
			Length:    0.4,
			Radius:    radius,
		}
	}
	return out
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
