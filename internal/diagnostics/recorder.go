package diagnostics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/GazzolaLab/Elastica-RL-control/internal/actuation"
	"github.com/GazzolaLab/Elastica-RL-control/internal/body"
	"github.com/GazzolaLab/Elastica-RL-control/internal/geom"
)

// RodSource is the arm kinematics sampled by the recorder.
type RodSource interface {
	Positions() []r3.Vec
	ElementCenters() []r3.Vec
	Radius() []float64
	TipFrame() geom.Frame
	Elements() int
}

type RodRecord struct {
	Time    float64
	Step    int
	Nodes   []r3.Vec
	Centers []r3.Vec
	Radius  []float64
	TipQuat [4]float64
}

type SphereRecord struct {
	Time     float64
	Step     int
	Position r3.Vec
	Velocity r3.Vec
	Radius   float64
	Quat     [4]float64
}

// Recorder samples the arm and the target from a simulator callback and
// receives actuator torque samples. Every series is bounded by the
// capacity given at construction.
type Recorder struct {
	rod       RodSource
	sphere    *body.Sphere
	obstacles []*body.Cylinder

	rodSeries    *Series[RodRecord]
	sphereSeries *Series[SphereRecord]
	torques      [3]*Series[actuation.TorqueRecord]
	skipped      int
}

func NewRecorder(rod RodSource, sphere *body.Sphere, obstacles []*body.Cylinder, capacity int) *Recorder {
	r := &Recorder{
		rod:          rod,
		sphere:       sphere,
		obstacles:    obstacles,
		rodSeries:    NewSeries[RodRecord](capacity),
		sphereSeries: NewSeries[SphereRecord](capacity),
	}
	for i := range r.torques {
		r.torques[i] = NewSeries[actuation.TorqueRecord](capacity)
	}
	return r
}

// Capacity is the number of samples needed for an episode of horizon
// control steps with stepsPerUpdate micro-steps each, sampled every
// stepSkip micro-steps. Two extra slots hold the initial sample and a
// final partial period.
func Capacity(horizon, stepsPerUpdate, stepSkip int) int {
	if stepSkip < 1 {
		stepSkip = 1
	}
	return horizon*stepsPerUpdate/stepSkip + 2
}

// Record implements the simulator callback. Samples of a diverged arm are
// skipped so the exported history stays finite.
func (r *Recorder) Record(step int, t float64) {
	nodes := r.rod.Positions()
	for _, p := range nodes {
		if math.IsNaN(p.X+p.Y+p.Z) || math.IsInf(p.X+p.Y+p.Z, 0) {
			r.skipped++
			return
		}
	}
	r.rodSeries.Append(RodRecord{
		Time:    t,
		Step:    step,
		Nodes:   append([]r3.Vec(nil), nodes...),
		Centers: r.rod.ElementCenters(),
		Radius:  append([]float64(nil), r.rod.Radius()...),
		TipQuat: geom.QuatSlice(geom.FrameToQuat(r.rod.TipFrame())),
	})
	if r.sphere != nil {
		r.sphereSeries.Append(SphereRecord{
			Time:     t,
			Step:     step,
			Position: r.sphere.Position,
			Velocity: r.sphere.Velocity,
			Radius:   r.sphere.Radius,
			Quat:     geom.QuatSlice(geom.FrameToQuat(r.sphere.Directors)),
		})
	}
}

// RecordTorque implements actuation.HistorySink.
func (r *Recorder) RecordTorque(rec actuation.TorqueRecord) {
	r.torques[rec.Direction.Axis()].Append(rec)
}

func (r *Recorder) Rod() *Series[RodRecord]       { return r.rodSeries }
func (r *Recorder) Sphere() *Series[SphereRecord] { return r.sphereSeries }

func (r *Recorder) Torques(d actuation.Direction) *Series[actuation.TorqueRecord] {
	return r.torques[d.Axis()]
}

func (r *Recorder) Obstacles() []*body.Cylinder { return r.obstacles }

// Skipped counts callbacks dropped because the arm was not finite.
func (r *Recorder) Skipped() int { return r.skipped }
