// Package target prescribes the motion of the spherical target.
package target

import (
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/GazzolaLab/Elastica-RL-control/internal/body"
	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
	"github.com/GazzolaLab/Elastica-RL-control/internal/geom"
)

type Mode int

const (
	// ModeFixed keeps the target at its configured position.
	ModeFixed Mode = iota + 1
	// ModeRandomFixed samples a position and yaw at reset, then holds still.
	ModeRandomFixed
	// ModePeriodic moves at constant speed around a square path.
	ModePeriodic
	// ModeRandomWalk moves in straight lines, reflecting off the box and
	// picking a new heading at a fixed control-step interval.
	ModeRandomWalk
)

func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fixed", "1":
		return ModeFixed, nil
	case "random_fixed", "2":
		return ModeRandomFixed, nil
	case "periodic", "3":
		return ModePeriodic, nil
	case "random_walk", "4":
		return ModeRandomWalk, nil
	}
	return 0, dynamo.NewConfigError("target.mode", "unknown target mode %q", name)
}

func (m Mode) String() string {
	switch m {
	case ModeFixed:
		return "fixed"
	case ModeRandomFixed:
		return "random_fixed"
	case ModePeriodic:
		return "periodic"
	case ModeRandomWalk:
		return "random_walk"
	default:
		return strconv.Itoa(int(m))
	}
}

func (m Mode) Random() bool { return m == ModeRandomFixed || m == ModeRandomWalk }
func (m Mode) Moving() bool { return m == ModePeriodic || m == ModeRandomWalk }

// Box is an axis-aligned bounding region.
type Box struct {
	Min, Max r3.Vec
}

// BoxFromSlice reads [xmin, xmax, ymin, ymax, zmin, zmax].
func BoxFromSlice(b []float64) (Box, error) {
	if len(b) != 6 {
		return Box{}, dynamo.NewConfigError("target.boundary", "expected 6 values, got %d", len(b))
	}
	box := Box{
		Min: r3.Vec{X: b[0], Y: b[2], Z: b[4]},
		Max: r3.Vec{X: b[1], Y: b[3], Z: b[5]},
	}
	if box.Min.X > box.Max.X || box.Min.Y > box.Max.Y || box.Min.Z > box.Max.Z {
		return Box{}, dynamo.NewConfigError("target.boundary", "min exceeds max in %v", b)
	}
	return box, nil
}

type Config struct {
	Mode     Mode
	Position r3.Vec
	// Orientation holds the Euler angles used for fixed and periodic
	// targets.
	Orientation r3.Vec
	Speed       float64
	Box         *Box
	// Planar pins sampled positions and headings to z = 0.
	Planar bool
	// Interval is the periodic direction switch period in control steps.
	Interval int
	// ResampleInterval is the random-walk heading period in control steps.
	ResampleInterval int
}

func (c Config) Validate() error {
	if c.Mode < ModeFixed || c.Mode > ModeRandomWalk {
		return dynamo.NewConfigError("target.mode", "unknown target mode %d", int(c.Mode))
	}
	if c.Mode.Random() && c.Box == nil {
		return dynamo.NewConfigError("target.boundary", "mode %s requires a boundary", c.Mode)
	}
	if c.Mode.Moving() && (c.Speed <= 0 || math.IsNaN(c.Speed)) {
		return dynamo.NewConfigError("target.speed", "mode %s requires a positive speed, got %g", c.Mode, c.Speed)
	}
	if c.Mode == ModePeriodic && c.Interval < 1 {
		return dynamo.NewConfigError("target.interval", "must be at least 1, got %d", c.Interval)
	}
	return nil
}

var periodicHeadings = [4]r3.Vec{{X: 1}, {Y: -1}, {X: -1}, {Y: 1}}

// Dynamics drives a sphere according to one of the target modes.
type Dynamics struct {
	cfg     Config
	sphere  *body.Sphere
	rng     *rand.Rand
	heading int
}

// New binds target dynamics to a sphere. rng is only used by random modes
// and may be nil otherwise.
func New(cfg Config, sphere *body.Sphere, rng *rand.Rand) (*Dynamics, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ResampleInterval < 1 {
		cfg.ResampleInterval = 500
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(0, 0))
	}
	return &Dynamics{cfg: cfg, sphere: sphere, rng: rng}, nil
}

// Reset places the sphere for a new episode.
func (d *Dynamics) Reset() {
	s := d.sphere
	s.Velocity = r3.Vec{}
	d.heading = 0

	switch d.cfg.Mode {
	case ModeFixed:
		s.Position = d.cfg.Position
		s.Directors = geom.EulerFrame(d.cfg.Orientation)
	case ModeRandomFixed:
		s.Position = d.samplePosition()
		s.Directors = geom.EulerFrame(r3.Vec{Y: d.uniform(-math.Pi/2, math.Pi/2)})
	case ModePeriodic:
		s.Position = d.cfg.Position
		s.Directors = geom.EulerFrame(d.cfg.Orientation)
		s.Velocity = r3.Scale(d.cfg.Speed, periodicHeadings[0])
	case ModeRandomWalk:
		s.Position = d.samplePosition()
		s.Directors = geom.EulerFrame(r3.Vec{Y: d.uniform(-math.Pi/2, math.Pi/2)})
		s.Velocity = d.sampleVelocity()
	}
}

// AdvanceMicroStep integrates the position and reflects off the box.
func (d *Dynamics) AdvanceMicroStep(dt float64) {
	s := d.sphere
	s.Position = r3.Add(s.Position, r3.Scale(dt, s.Velocity))
	if d.cfg.Box != nil && d.cfg.Mode.Moving() {
		s.Velocity = Reflect(s.Position, s.Velocity, s.Radius, *d.cfg.Box)
	}
}

// AdvanceControlStep applies per-decision updates. step is the number of
// control steps completed, counting the one that just finished.
func (d *Dynamics) AdvanceControlStep(step int) {
	switch d.cfg.Mode {
	case ModePeriodic:
		if step%d.cfg.Interval == 0 {
			d.heading = (d.heading + 1) % len(periodicHeadings)
			d.sphere.Velocity = r3.Scale(d.cfg.Speed, periodicHeadings[d.heading])
		}
	case ModeRandomWalk:
		if step%d.cfg.ResampleInterval == 0 {
			d.sphere.Velocity = d.sampleVelocity()
		}
	}
}

func (d *Dynamics) Sphere() *body.Sphere { return d.sphere }
func (d *Dynamics) Mode() Mode           { return d.cfg.Mode }

// Reflect negates each velocity component whose axis has the sphere
// crossing a wall while still moving outward. Components are handled
// independently, so a corner flips both.
func Reflect(pos, vel r3.Vec, radius float64, box Box) r3.Vec {
	vel.X = reflectAxis(pos.X, vel.X, radius, box.Min.X, box.Max.X)
	vel.Y = reflectAxis(pos.Y, vel.Y, radius, box.Min.Y, box.Max.Y)
	vel.Z = reflectAxis(pos.Z, vel.Z, radius, box.Min.Z, box.Max.Z)
	return vel
}

func reflectAxis(p, v, radius, lo, hi float64) float64 {
	if (p+radius > hi && v > 0) || (p-radius < lo && v < 0) {
		return -v
	}
	return v
}

func (d *Dynamics) uniform(lo, hi float64) float64 {
	if lo == hi {
		return lo
	}
	return distuv.Uniform{Min: lo, Max: hi, Src: d.rng}.Rand()
}

func (d *Dynamics) samplePosition() r3.Vec {
	b := d.cfg.Box
	p := r3.Vec{
		X: d.uniform(b.Min.X, b.Max.X),
		Y: d.uniform(b.Min.Y, b.Max.Y),
		Z: d.uniform(b.Min.Z, b.Max.Z),
	}
	if d.cfg.Planar {
		p.Z = 0
	}
	return p
}

func (d *Dynamics) sampleVelocity() r3.Vec {
	azimuth := math.Pi * d.uniform(0, 2)
	elevation := math.Pi / 2
	if !d.cfg.Planar {
		elevation = math.Pi * d.uniform(0, 2)
	}
	sa, ca := math.Sincos(azimuth)
	se, ce := math.Sincos(elevation)
	if d.cfg.Planar {
		ce = 0
	}
	return r3.Scale(d.cfg.Speed, r3.Vec{X: ca * se, Y: sa * se, Z: ce})
}
