package config

import (
	"math"
	"os"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/GazzolaLab/Elastica-RL-control/internal/actuation"
	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
	"github.com/GazzolaLab/Elastica-RL-control/internal/observe"
	"github.com/GazzolaLab/Elastica-RL-control/internal/reward"
	"github.com/GazzolaLab/Elastica-RL-control/internal/rod"
	"github.com/GazzolaLab/Elastica-RL-control/internal/target"
)

const (
	DefaultFinalTime        = 10.0
	DefaultSimDt            = 2.5e-4
	DefaultStepsPerUpdate   = 100
	DefaultControlPoints    = 6
	DefaultAlpha            = 75.0
	DefaultBeta             = 75.0
	DefaultSphereRadius     = 0.05
	DefaultResampleInterval = 500
	DefaultFPS              = 60.0
)

type Config struct {
	Name           string  `yaml:"name"`
	Seed           uint64  `yaml:"seed"`
	FinalTime      float64 `yaml:"final_time"`
	SimDt          float64 `yaml:"sim_dt"`
	StepsPerUpdate int     `yaml:"steps_per_update"`
	Integrator     string  `yaml:"integrator"`

	Rod         RodConfig         `yaml:"rod"`
	Actuation   ActuationConfig   `yaml:"actuation"`
	Target      TargetConfig      `yaml:"target"`
	Obstacles   []ObstacleConfig  `yaml:"obstacles,omitempty"`
	Observation ObservationConfig `yaml:"observation"`
	Reward      reward.Config     `yaml:"reward"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
}

type RodConfig struct {
	Elements     int     `yaml:"n_elements"`
	BaseLength   float64 `yaml:"base_length"`
	BaseRadius   float64 `yaml:"base_radius"`
	TipRadius    float64 `yaml:"tip_radius"`
	Density      float64 `yaml:"density"`
	Youngs       float64 `yaml:"youngs_modulus"`
	Poisson      float64 `yaml:"poisson_ratio"`
	DampingRatio float64 `yaml:"damping_ratio"`
}

type ActuationConfig struct {
	Dim           string  `yaml:"dim"`
	ControlPoints int     `yaml:"control_points"`
	Alpha         float64 `yaml:"alpha"`
	Beta          float64 `yaml:"beta"`
	// MaxRateOfChange limits control point motion per micro-step. Zero
	// disables limiting.
	MaxRateOfChange float64 `yaml:"max_rate_of_change"`
}

type TargetConfig struct {
	Mode             string     `yaml:"mode"`
	Position         [3]float64 `yaml:"position,flow"`
	Orientation      [3]float64 `yaml:"orientation,flow"`
	Speed            float64    `yaml:"speed"`
	Boundary         []float64  `yaml:"boundary,flow,omitempty"`
	Radius           float64    `yaml:"radius"`
	ResampleInterval int        `yaml:"resample_interval"`
	TrackOrientation bool       `yaml:"track_orientation"`
}

type ObstacleConfig struct {
	Start     [3]float64 `yaml:"start,flow"`
	Direction [3]float64 `yaml:"direction,flow"`
	Normal    [3]float64 `yaml:"normal,flow"`
	Length    float64    `yaml:"length"`
	Radius    float64    `yaml:"radius"`
}

type ObservationConfig struct {
	RodPoints         int `yaml:"rod_points"`
	PointsPerObstacle int `yaml:"points_per_obstacle"`
	// Size, when non-zero, must match the encoder layout.
	Size int `yaml:"size"`
}

type DiagnosticsConfig struct {
	Enabled bool    `yaml:"enabled"`
	FPS     float64 `yaml:"fps"`
}

func DefaultConfig() *Config {
	rp := rod.DefaultParams()
	return &Config{
		Name:           "default",
		FinalTime:      DefaultFinalTime,
		SimDt:          DefaultSimDt,
		StepsPerUpdate: DefaultStepsPerUpdate,
		Integrator:     "position_verlet",
		Rod: RodConfig{
			Elements:     rp.Elements,
			BaseLength:   rp.BaseLength,
			BaseRadius:   rp.BaseRadius,
			TipRadius:    rp.TipRadius,
			Density:      rp.Density,
			Youngs:       rp.Youngs,
			Poisson:      rp.Poisson,
			DampingRatio: rp.DampingRatio,
		},
		Actuation: ActuationConfig{
			Dim:           "3.5d",
			ControlPoints: DefaultControlPoints,
			Alpha:         DefaultAlpha,
			Beta:          DefaultBeta,
		},
		Target: TargetConfig{
			Mode:             "fixed",
			Position:         [3]float64{-0.4, 0.6, 0.2},
			Orientation:      [3]float64{0, math.Pi / 4, 0},
			Radius:           DefaultSphereRadius,
			ResampleInterval: DefaultResampleInterval,
		},
		Observation: ObservationConfig{
			RodPoints:         observe.DefaultRodPoints,
			PointsPerObstacle: observe.DefaultPointsPerObstacle,
		},
		Reward: reward.DefaultConfig(),
		Diagnostics: DiagnosticsConfig{
			FPS: DefaultFPS,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Target.Boundary = append([]float64(nil), c.Target.Boundary...)
	out.Obstacles = append([]ObstacleConfig(nil), c.Obstacles...)
	return &out
}

// TotalSteps is the number of micro-steps in an episode.
func (c *Config) TotalSteps() int {
	return int(math.Floor(c.FinalTime/c.SimDt + 1e-9))
}

// TimeStep is the micro-step size that divides FinalTime evenly.
func (c *Config) TimeStep() float64 {
	return c.FinalTime / float64(c.TotalSteps())
}

// Horizon is the number of control steps in an episode.
func (c *Config) Horizon() int {
	return c.TotalSteps() / c.StepsPerUpdate
}

// StepSkip is the diagnostics sampling period in micro-steps.
func (c *Config) StepSkip() int {
	fps := c.Diagnostics.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	skip := int(1 / (fps * c.TimeStep()))
	if skip < 1 {
		skip = 1
	}
	return skip
}

// PeriodicInterval is the number of control steps between heading changes
// of a periodic target, about one second of simulated time.
func (c *Config) PeriodicInterval() int {
	n := int(math.Round(1 / (c.TimeStep() * float64(c.StepsPerUpdate))))
	if n < 1 {
		n = 1
	}
	return n
}

func (c *Config) Mode() (actuation.Mode, error) {
	return actuation.ParseMode(c.Actuation.Dim)
}

// ActionSize is the number of values a policy must emit per control step.
func (c *Config) ActionSize() int {
	mode, err := c.Mode()
	if err != nil {
		return 0
	}
	return mode.Multiplier() * c.Actuation.ControlPoints
}

// RateLimit converts MaxRateOfChange into the actuator limit.
func (c *Config) RateLimit() float64 {
	if c.Actuation.MaxRateOfChange <= 0 {
		return math.Inf(1)
	}
	return c.Actuation.MaxRateOfChange
}

func (c *Config) RodParams() rod.Params {
	return rod.Params{
		Elements:     c.Rod.Elements,
		BaseLength:   c.Rod.BaseLength,
		BaseRadius:   c.Rod.BaseRadius,
		TipRadius:    c.Rod.TipRadius,
		Density:      c.Rod.Density,
		Youngs:       c.Rod.Youngs,
		Poisson:      c.Rod.Poisson,
		DampingRatio: c.Rod.DampingRatio,
	}
}

func (c *Config) TargetParams() (target.Config, error) {
	mode, err := target.ParseMode(c.Target.Mode)
	if err != nil {
		return target.Config{}, err
	}
	actMode, err := c.Mode()
	if err != nil {
		return target.Config{}, err
	}

	tc := target.Config{
		Mode:             mode,
		Position:         Vec(c.Target.Position),
		Orientation:      Vec(c.Target.Orientation),
		Speed:            c.Target.Speed,
		Planar:           actMode.Planar(),
		Interval:         c.PeriodicInterval(),
		ResampleInterval: c.Target.ResampleInterval,
	}
	if len(c.Target.Boundary) > 0 {
		box, err := target.BoxFromSlice(c.Target.Boundary)
		if err != nil {
			return target.Config{}, err
		}
		tc.Box = &box
	}
	return tc, tc.Validate()
}

func (c *Config) ObservationLayout() observe.Layout {
	return observe.Layout{
		Elements:          c.Rod.Elements,
		RodPoints:         c.Observation.RodPoints,
		TargetOrientation: c.Target.TrackOrientation,
		Obstacles:         len(c.Obstacles),
		PointsPerObstacle: c.Observation.PointsPerObstacle,
	}
}

func (c *Config) RewardParams() reward.Config {
	rc := c.Reward
	rc.TrackOrientation = c.Target.TrackOrientation
	return rc
}

// Validate checks every section and returns the first problem found as a
// *dynamo.ConfigError.
func (c *Config) Validate() error {
	if !(c.FinalTime > 0) {
		return dynamo.NewConfigError("final_time", "must be positive, got %g", c.FinalTime)
	}
	if !(c.SimDt > 0) || c.SimDt > c.FinalTime {
		return dynamo.NewConfigError("sim_dt", "must be positive and at most final_time, got %g", c.SimDt)
	}
	if c.StepsPerUpdate < 1 {
		return dynamo.NewConfigError("steps_per_update", "must be at least 1, got %d", c.StepsPerUpdate)
	}
	if c.Horizon() < 1 {
		return dynamo.NewConfigError("steps_per_update", "%d exceeds the %d micro-steps of an episode", c.StepsPerUpdate, c.TotalSteps())
	}
	if err := c.RodParams().Validate(); err != nil {
		return err
	}
	if _, err := c.Mode(); err != nil {
		return err
	}
	if c.Actuation.ControlPoints < 1 {
		return dynamo.NewConfigError("actuation.control_points", "must be at least 1, got %d", c.Actuation.ControlPoints)
	}
	if c.Actuation.MaxRateOfChange < 0 {
		return dynamo.NewConfigError("actuation.max_rate_of_change", "must be non-negative, got %g", c.Actuation.MaxRateOfChange)
	}
	if !(c.Target.Radius > 0) {
		return dynamo.NewConfigError("target.radius", "must be positive, got %g", c.Target.Radius)
	}
	if _, err := c.TargetParams(); err != nil {
		return err
	}
	for i, o := range c.Obstacles {
		if o.Length <= 0 || o.Radius <= 0 {
			return dynamo.NewConfigError("obstacles", "obstacle %d needs positive length and radius", i)
		}
	}
	if c.Observation.Size != 0 {
		if got := c.ObservationLayout().Size(); got != c.Observation.Size {
			return dynamo.NewConfigError("observation.size", "configured %d but layout produces %d", c.Observation.Size, got)
		}
	}
	if c.Diagnostics.FPS < 0 {
		return dynamo.NewConfigError("diagnostics.fps", "must be non-negative, got %g", c.Diagnostics.FPS)
	}
	return c.RewardParams().Validate()
}

var tunable = map[string]func(c *Config) *float64{
	"alpha":              func(c *Config) *float64 { return &c.Actuation.Alpha },
	"beta":               func(c *Config) *float64 { return &c.Actuation.Beta },
	"max_rate_of_change": func(c *Config) *float64 { return &c.Actuation.MaxRateOfChange },
	"target.speed":       func(c *Config) *float64 { return &c.Target.Speed },
	"damping_ratio":      func(c *Config) *float64 { return &c.Rod.DampingRatio },
	"youngs_modulus":     func(c *Config) *float64 { return &c.Rod.Youngs },
	"final_time":         func(c *Config) *float64 { return &c.FinalTime },
	"distance_weight":    func(c *Config) *float64 { return &c.Reward.DistanceWeight },
	"orientation_weight": func(c *Config) *float64 { return &c.Reward.OrientationWeight },
}

// GetParams returns the numeric fields a sweep can vary.
func (c *Config) GetParams() map[string]float64 {
	out := make(map[string]float64, len(tunable))
	for name, field := range tunable {
		out[name] = *field(c)
	}
	return out
}

func (c *Config) SetParam(name string, value float64) error {
	field, ok := tunable[name]
	if !ok {
		return dynamo.NewConfigError(name, "not a tunable parameter")
	}
	*field(c) = value
	return nil
}

// TunableParams lists the names accepted by SetParam.
func TunableParams() []string {
	names := make([]string, 0, len(tunable))
	for name := range tunable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Vec converts a configured triple into a vector.
func Vec(a [3]float64) r3.Vec { return r3.Vec{X: a[0], Y: a[1], Z: a[2]} }
