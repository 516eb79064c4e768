// Package env runs reinforcement learning episodes on the soft arm.
//
// An [Environment] owns one arm, one target, optional obstacles and the
// actuators that turn a policy action into torques. Each call to Step is
// one control step: the action is routed into per-direction control point
// buffers, a fixed number of micro-steps is integrated, and the new
// observation is scored.
package env

import (
	"fmt"
	"math"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/GazzolaLab/Elastica-RL-control/internal/actuation"
	"github.com/GazzolaLab/Elastica-RL-control/internal/body"
	"github.com/GazzolaLab/Elastica-RL-control/internal/config"
	"github.com/GazzolaLab/Elastica-RL-control/internal/diagnostics"
	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
	"github.com/GazzolaLab/Elastica-RL-control/internal/geom"
	"github.com/GazzolaLab/Elastica-RL-control/internal/integrators"
	"github.com/GazzolaLab/Elastica-RL-control/internal/observe"
	"github.com/GazzolaLab/Elastica-RL-control/internal/reward"
	"github.com/GazzolaLab/Elastica-RL-control/internal/rod"
	"github.com/GazzolaLab/Elastica-RL-control/internal/sim"
	"github.com/GazzolaLab/Elastica-RL-control/internal/target"
)

type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseReady
	PhaseRunning
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseReady:
		return "ready"
	case PhaseRunning:
		return "running"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Info carries per-step details that are not part of the observation.
type Info struct {
	SimulationTime      float64
	Step                int
	Distance            float64
	OrientationDistance float64
	Divergent           bool
}

type Option func(*Environment)

// WithLogger sets the logger for episode events. The default discards.
func WithLogger(l *zap.Logger) Option {
	return func(e *Environment) { e.log = l }
}

// WithMetrics attaches metrics that observe every control step. They are
// reset by Reset.
func WithMetrics(ms ...dynamo.Metric) Option {
	return func(e *Environment) { e.metrics = append(e.metrics, ms...) }
}

// WithRand replaces the seeded generator used for random targets.
func WithRand(rng *rand.Rand) Option {
	return func(e *Environment) { e.rng = rng }
}

type episode struct {
	step       int
	horizon    int
	prevAction []float64
	done       bool
}

type Environment struct {
	cfg        *config.Config
	mode       actuation.Mode
	actionSize int
	log        *zap.Logger
	rng        *rand.Rand
	metrics    []dynamo.Metric
	phase      Phase

	arm       *rod.Rod
	sphere    *body.Sphere
	target    *target.Dynamics
	obstacles []*body.Cylinder
	buffers   []*actuation.ControlPointBuffer
	actuators []*actuation.SplineActuator
	simulator *sim.Simulator
	scheduler *sim.Scheduler
	encoder   *observe.Encoder
	evaluator *reward.Evaluator
	recorder  *diagnostics.Recorder

	ep episode
}

// New validates cfg and prepares an environment. Reset must be called
// before the first Step.
func New(cfg *config.Config, opts ...Option) (*Environment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mode, err := cfg.Mode()
	if err != nil {
		return nil, err
	}

	e := &Environment{
		cfg:        cfg.Clone(),
		mode:       mode,
		actionSize: cfg.ActionSize(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	}
	return e, nil
}

// Reset rebuilds the arena for a new episode and returns the initial
// observation.
func (e *Environment) Reset() (dynamo.State, error) {
	cfg := e.cfg

	arm, err := rod.New(cfg.RodParams())
	if err != nil {
		return nil, err
	}

	sphere := body.NewSphere(config.Vec(cfg.Target.Position), cfg.Target.Radius)
	tp, err := cfg.TargetParams()
	if err != nil {
		return nil, err
	}
	dyn, err := target.New(tp, sphere, e.rng)
	if err != nil {
		return nil, err
	}
	dyn.Reset()

	obstacles := make([]*body.Cylinder, 0, len(cfg.Obstacles))
	for i, o := range cfg.Obstacles {
		c, err := body.NewCylinder(config.Vec(o.Start), config.Vec(o.Direction), config.Vec(o.Normal), o.Length, o.Radius)
		if err != nil {
			return nil, fmt.Errorf("obstacle %d: %w", i, err)
		}
		obstacles = append(obstacles, c)
	}

	var recorder *diagnostics.Recorder
	var sink actuation.HistorySink
	if cfg.Diagnostics.Enabled {
		recorder = diagnostics.NewRecorder(arm, sphere, obstacles,
			diagnostics.Capacity(cfg.Horizon(), cfg.StepsPerUpdate, cfg.StepSkip()))
		sink = recorder
	}

	integ, err := integrators.New(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	simulator := sim.New(arm, integ)

	k := cfg.Actuation.ControlPoints
	dirs := e.mode.Directions()
	buffers := make([]*actuation.ControlPointBuffer, len(dirs))
	actuators := make([]*actuation.SplineActuator, len(dirs))
	for i, d := range dirs {
		scale := cfg.Actuation.Alpha
		if d == actuation.Tangent {
			scale = cfg.Actuation.Beta
		}
		buffers[i] = actuation.NewControlPointBuffer(k)
		actuators[i], err = actuation.NewSplineActuator(arm, buffers[i], actuation.Config{
			Direction:     d,
			ControlPoints: k,
			BaseLength:    cfg.Rod.BaseLength,
			Scale:         scale,
			RateLimit:     cfg.RateLimit(),
			StepSkip:      cfg.StepSkip(),
		}, sink)
		if err != nil {
			return nil, fmt.Errorf("%s actuator: %w", d, err)
		}
		simulator.AddForcing(actuators[i])
	}

	simulator.AddFreeBody(dyn)
	if recorder != nil {
		simulator.AddCallback(recorder, cfg.StepSkip())
	}
	simulator.Start(0)

	encoder, err := observe.NewEncoder(cfg.ObservationLayout(), cfg.Observation.Size)
	if err != nil {
		return nil, err
	}
	evaluator, err := reward.NewEvaluator(cfg.RewardParams())
	if err != nil {
		return nil, err
	}

	e.arm = arm
	e.sphere = sphere
	e.target = dyn
	e.obstacles = obstacles
	e.buffers = buffers
	e.actuators = actuators
	e.simulator = simulator
	e.scheduler = sim.NewScheduler(simulator)
	e.encoder = encoder
	e.evaluator = evaluator
	e.recorder = recorder
	e.ep = episode{horizon: cfg.Horizon()}

	for _, m := range e.metrics {
		m.Reset()
	}

	obs, err := e.observe()
	if err != nil {
		return nil, err
	}
	e.phase = PhaseReady
	return obs, nil
}

// Step applies one action for a full control step. The action must have
// ActionSize entries, grouped by direction in normal, binormal, tangent
// order for the directions the mode enables.
func (e *Environment) Step(action []float64) (dynamo.State, float64, bool, Info, error) {
	if e.phase == PhaseUninitialized || e.phase == PhaseDone {
		return nil, 0, false, Info{}, fmt.Errorf("%w: step in phase %s", dynamo.ErrEpisodeState, e.phase)
	}
	if len(action) != e.actionSize {
		return nil, 0, false, Info{}, fmt.Errorf("%w: action has %d values, want %d", dynamo.ErrInvalidInput, len(action), e.actionSize)
	}
	for i, v := range action {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, 0, false, Info{}, fmt.Errorf("%w: action[%d] is %v", dynamo.ErrInvalidInput, i, v)
		}
	}

	routed, err := actuation.Route(action, e.cfg.Actuation.ControlPoints, e.mode)
	if err != nil {
		return nil, 0, false, Info{}, err
	}
	for i, d := range e.mode.Directions() {
		if err := e.buffers[i].Set(routed.For(d)); err != nil {
			return nil, 0, false, Info{}, err
		}
	}

	e.phase = PhaseRunning
	if err := e.scheduler.RunControlStep(e.cfg.StepsPerUpdate, e.cfg.TimeStep()); err != nil {
		return nil, 0, false, Info{}, err
	}
	e.target.AdvanceControlStep(e.ep.step + 1)
	e.ep.step++

	obs, err := e.observe()
	if err != nil {
		return nil, 0, false, Info{}, err
	}

	res := e.evaluator.Evaluate(reward.Input{
		Tip:         e.arm.Tip(),
		Target:      e.sphere.Position,
		TipQuat:     geom.FrameToQuat(e.arm.TipFrame()),
		TargetQuat:  geom.FrameToQuat(e.sphere.Directors),
		Action:      action,
		PrevAction:  e.ep.prevAction,
		Observation: obs,
	})
	if res.Divergent {
		n := obs.Sanitize()
		e.log.Warn("arm diverged",
			zap.Int("step", e.ep.step),
			zap.Float64("time", e.scheduler.Time()),
			zap.Int("non_finite", n))
	}

	for _, m := range e.metrics {
		m.Observe(obs, dynamo.Control(action), e.scheduler.Time())
	}
	e.ep.prevAction = append(e.ep.prevAction[:0], action...)

	done := e.ep.step >= e.ep.horizon || res.Divergent
	if done {
		e.ep.done = true
		e.phase = PhaseDone
		e.log.Info("episode finished",
			zap.Int("steps", e.ep.step),
			zap.Float64("time", e.scheduler.Time()),
			zap.Float64("distance", res.Distance),
			zap.Bool("divergent", res.Divergent))
	}

	info := Info{
		SimulationTime:      e.scheduler.Time(),
		Step:                e.ep.step,
		Distance:            res.Distance,
		OrientationDistance: res.OrientationDistance,
		Divergent:           res.Divergent,
	}
	return obs, res.Reward, done, info, nil
}

func (e *Environment) observe() (dynamo.State, error) {
	return e.encoder.Encode(e.arm, e.sphere, e.obstacles)
}

// History returns the recorded diagnostics of the current episode.
func (e *Environment) History() (*diagnostics.History, error) {
	if e.recorder == nil {
		return nil, fmt.Errorf("%w: enable diagnostics before Reset", dynamo.ErrPostprocessing)
	}
	return e.recorder.History(), nil
}

// Metrics returns the current value of every attached metric.
func (e *Environment) Metrics() map[string]float64 {
	out := make(map[string]float64, len(e.metrics))
	for _, m := range e.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (e *Environment) Config() *config.Config                 { return e.cfg }
func (e *Environment) Phase() Phase                           { return e.phase }
func (e *Environment) ActionSize() int                        { return e.actionSize }
func (e *Environment) ObservationSize() int                   { return e.cfg.ObservationLayout().Size() }
func (e *Environment) Horizon() int                           { return e.cfg.Horizon() }
func (e *Environment) Rod() *rod.Rod                          { return e.arm }
func (e *Environment) Target() *body.Sphere                   { return e.sphere }
func (e *Environment) Obstacles() []*body.Cylinder            { return e.obstacles }
func (e *Environment) Actuators() []*actuation.SplineActuator { return e.actuators }
func (e *Environment) Recorder() *diagnostics.Recorder        { return e.recorder }
func (e *Environment) StepCount() int                         { return e.ep.step }

// Time is the simulated time of the current episode.
func (e *Environment) Time() float64 {
	if e.scheduler == nil {
		return 0
	}
	return e.scheduler.Time()
}
