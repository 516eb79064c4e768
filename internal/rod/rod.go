// Package rod implements a reduced-order model of a clamped soft arm.
//
// The arm is a chain of straight elements joined by elastic joints. Each
// joint carries a rotation vector expressed in the parent element's
// frame: the normal and binormal components bend the arm, the tangent
// component twists it. Per joint and axis the dynamics are
//
//	J * dω/dt = τ - k*κ - c*ω
//
// with bending and twist stiffness taken from the section properties of
// the element, inertia from the distal part of the chain, and damping
// from a damping ratio. The base node and base frame are fixed.
package rod

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
	"github.com/GazzolaLab/Elastica-RL-control/internal/geom"
)

// Params describes the geometry and material of the arm.
type Params struct {
	Elements     int
	BaseLength   float64
	BaseRadius   float64
	TipRadius    float64
	Density      float64
	Youngs       float64
	Poisson      float64
	DampingRatio float64
}

func DefaultParams() Params {
	return Params{
		Elements:     40,
		BaseLength:   1.0,
		BaseRadius:   0.05,
		TipRadius:    0.05,
		Density:      1000,
		Youngs:       1e7,
		Poisson:      0.5,
		DampingRatio: 0.5,
	}
}

func (p Params) Validate() error {
	switch {
	case p.Elements < 1:
		return dynamo.NewConfigError("rod.n_elements", "must be at least 1, got %d", p.Elements)
	case p.BaseLength <= 0:
		return dynamo.NewConfigError("rod.base_length", "must be positive, got %g", p.BaseLength)
	case p.BaseRadius <= 0 || p.TipRadius <= 0:
		return dynamo.NewConfigError("rod.radius", "must be positive")
	case p.Density <= 0:
		return dynamo.NewConfigError("rod.density", "must be positive, got %g", p.Density)
	case p.Youngs <= 0:
		return dynamo.NewConfigError("rod.youngs_modulus", "must be positive, got %g", p.Youngs)
	case p.Poisson <= -1:
		return dynamo.NewConfigError("rod.poisson_ratio", "must be greater than -1, got %g", p.Poisson)
	case p.DampingRatio < 0:
		return dynamo.NewConfigError("rod.damping_ratio", "must be non-negative, got %g", p.DampingRatio)
	}
	return nil
}

// Rod is the arm. It implements dynamo.System over the joint state
// [κ (3N), ω (3N)], element-major within each half.
type Rod struct {
	n       int
	lengths []float64
	radius  []float64
	arc     []float64

	stiff   []float64
	inertia []float64
	damping []float64

	state   dynamo.State
	torques dynamo.Control

	frames []geom.Frame
	nodes  []r3.Vec
	vel    []r3.Vec
	omega  []r3.Vec
}

func New(p Params) (*Rod, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	n := p.Elements
	r := &Rod{
		n:       n,
		lengths: make([]float64, n),
		radius:  make([]float64, n),
		arc:     make([]float64, n),
		stiff:   make([]float64, 3*n),
		inertia: make([]float64, 3*n),
		damping: make([]float64, 3*n),
		state:   make(dynamo.State, 6*n),
		torques: make(dynamo.Control, 3*n),
		frames:  make([]geom.Frame, n),
		nodes:   make([]r3.Vec, n+1),
		vel:     make([]r3.Vec, n+1),
		omega:   make([]r3.Vec, n),
	}

	for i := range r.lengths {
		r.lengths[i] = p.BaseLength / float64(n)
	}
	if n == 1 {
		r.radius[0] = p.BaseRadius
	} else {
		floats.Span(r.radius, p.BaseRadius, p.TipRadius)
	}
	floats.CumSum(r.arc, r.lengths)

	shear := p.Youngs / (2 * (1 + p.Poisson))
	area := make([]float64, n)
	second := make([]float64, n)
	for i := 0; i < n; i++ {
		area[i] = math.Pi * r.radius[i] * r.radius[i]
		second[i] = area[i] * r.radius[i] * r.radius[i] / 4
	}

	for i := 0; i < n; i++ {
		var jBend, jTwist float64
		start := r.arc[i] - r.lengths[i]
		for j := i; j < n; j++ {
			mass := p.Density * area[j] * r.lengths[j]
			d := r.arc[j] - r.lengths[j]/2 - start
			jBend += mass*d*d + p.Density*second[j]*r.lengths[j]
			jTwist += 2 * p.Density * second[j] * r.lengths[j]
		}

		kBend := p.Youngs * second[i] / r.lengths[i]
		kTwist := shear * 2 * second[i] / r.lengths[i]

		for a := 0; a < 3; a++ {
			k, j := kBend, jBend
			if a == 2 {
				k, j = kTwist, jTwist
			}
			idx := 3*i + a
			r.stiff[idx] = k
			r.inertia[idx] = j
			r.damping[idx] = 2 * p.DampingRatio * math.Sqrt(k*j)
		}
	}

	r.update()
	return r, nil
}

func (r *Rod) StateDim() int   { return 6 * r.n }
func (r *Rod) ControlDim() int { return 3 * r.n }

// Derive returns d/dt [κ, ω]. u holds the external couple per element in
// axis-major order, the same layout as the torque accumulator.
func (r *Rod) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	m := 3 * r.n
	dx := make(dynamo.State, 2*m)
	copy(dx[:m], x[m:])

	for i := 0; i < r.n; i++ {
		for a := 0; a < 3; a++ {
			idx := 3*i + a
			tau := 0.0
			if len(u) == m {
				tau = u[a*r.n+i]
			}
			dx[m+idx] = (tau - r.stiff[idx]*x[idx] - r.damping[idx]*x[m+idx]) / r.inertia[idx]
		}
	}
	return dx
}

// Advance integrates the joint state over dt under the accumulated torques
// and refreshes the kinematics.
func (r *Rod) Advance(integ dynamo.Integrator, t, dt float64) {
	r.state = integ.Step(r, r.state, r.torques, t, dt)
	r.update()
}

// ZeroTorques clears the external torque accumulator.
func (r *Rod) ZeroTorques() {
	for i := range r.torques {
		r.torques[i] = 0
	}
}

// TorqueAxis returns the accumulator row for one local axis (0 normal,
// 1 binormal, 2 tangent). Writes through the slice are seen by the next
// Advance.
func (r *Rod) TorqueAxis(axis int) []float64 {
	return r.torques[axis*r.n : (axis+1)*r.n]
}

func (r *Rod) Torques() dynamo.Control { return r.torques }

// State exposes the joint state. Callers that modify it must call Refresh.
func (r *Rod) State() dynamo.State { return r.state }

// Refresh recomputes positions and frames from the current state.
func (r *Rod) Refresh() { r.update() }

func (r *Rod) Elements() int           { return r.n }
func (r *Rod) Lengths() []float64      { return r.lengths }
func (r *Rod) Radius() []float64       { return r.radius }
func (r *Rod) Positions() []r3.Vec     { return r.nodes }
func (r *Rod) Velocities() []r3.Vec    { return r.vel }
func (r *Rod) Directors() []geom.Frame { return r.frames }
func (r *Rod) Tip() r3.Vec             { return r.nodes[r.n] }
func (r *Rod) TipVelocity() r3.Vec     { return r.vel[r.n] }
func (r *Rod) TipFrame() geom.Frame    { return r.frames[r.n-1] }

// ElementCenters returns the midpoint of every element.
func (r *Rod) ElementCenters() []r3.Vec {
	out := make([]r3.Vec, r.n)
	for i := range out {
		out[i] = r3.Scale(0.5, r3.Add(r.nodes[i], r.nodes[i+1]))
	}
	return out
}

func (r *Rod) update() {
	m := 3 * r.n
	parent := geom.BaseFrame()
	spin := r3.Vec{}

	r.nodes[0] = r3.Vec{}
	r.vel[0] = r3.Vec{}

	for i := 0; i < r.n; i++ {
		kappa := r3.Vec{X: r.state[3*i], Y: r.state[3*i+1], Z: r.state[3*i+2]}
		rate := r3.Vec{X: r.state[m+3*i], Y: r.state[m+3*i+1], Z: r.state[m+3*i+2]}

		frame := parent.Rotate(geom.RotationVector(parent.ToLab(kappa)))
		spin = r3.Add(spin, parent.ToLab(rate))

		seg := r3.Scale(r.lengths[i], frame.Tangent())
		r.frames[i] = frame
		r.omega[i] = spin
		r.nodes[i+1] = r3.Add(r.nodes[i], seg)
		r.vel[i+1] = r3.Add(r.vel[i], r3.Cross(spin, seg))

		parent = frame
	}
}
