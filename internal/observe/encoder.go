// Package observe flattens the arena into the fixed-length vector a policy
// sees each control step.
package observe

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/GazzolaLab/Elastica-RL-control/internal/body"
	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
	"github.com/GazzolaLab/Elastica-RL-control/internal/geom"
)

const (
	DefaultRodPoints         = 10
	DefaultPointsPerObstacle = 5
)

// RodView is the read-only arm kinematics the encoder needs.
type RodView interface {
	Positions() []r3.Vec
	TipVelocity() r3.Vec
	TipFrame() geom.Frame
}

// Layout fixes the shape of the observation vector.
type Layout struct {
	Elements          int
	RodPoints         int
	TargetOrientation bool
	Obstacles         int
	PointsPerObstacle int
}

func (l Layout) withDefaults() Layout {
	if l.RodPoints < 1 {
		l.RodPoints = DefaultRodPoints
	}
	if l.PointsPerObstacle < 1 {
		l.PointsPerObstacle = DefaultPointsPerObstacle
	}
	return l
}

// RodIndices returns the node indices sampled from the arm: every stride-th
// node from the base, plus the tip when the stride does not land on it.
func (l Layout) RodIndices() []int {
	l = l.withDefaults()
	stride := l.Elements / l.RodPoints
	if stride < 1 {
		stride = 1
	}
	idx := make([]int, 0, l.Elements/stride+2)
	for i := 0; i <= l.Elements; i += stride {
		idx = append(idx, i)
	}
	if idx[len(idx)-1] != l.Elements {
		idx = append(idx, l.Elements)
	}
	return idx
}

// Size is the exact length of an encoded observation.
func (l Layout) Size() int {
	l = l.withDefaults()
	n := 3*len(l.RodIndices()) + 4 + 4 + 3 + 4
	if l.TargetOrientation {
		n += 4
	}
	return n + 3*l.Obstacles*l.PointsPerObstacle
}

type Encoder struct {
	layout  Layout
	indices []int
	size    int
}

// NewEncoder validates the layout against an expected observation size.
// expected == 0 accepts whatever the layout produces.
func NewEncoder(layout Layout, expected int) (*Encoder, error) {
	if layout.Elements < 1 {
		return nil, dynamo.NewConfigError("observation", "layout needs at least one element, got %d", layout.Elements)
	}
	if layout.Obstacles < 0 {
		return nil, dynamo.NewConfigError("observation", "negative obstacle count %d", layout.Obstacles)
	}
	layout = layout.withDefaults()
	size := layout.Size()
	if expected != 0 && expected != size {
		return nil, dynamo.NewConfigError("observation.size", "configured %d but layout produces %d", expected, size)
	}
	return &Encoder{layout: layout, indices: layout.RodIndices(), size: size}, nil
}

func (e *Encoder) Size() int      { return e.size }
func (e *Encoder) Layout() Layout { return e.layout }

// Encode writes the observation in a fixed order: sampled rod x, y and z
// blocks; tip speed and heading; tip quaternion; target position, speed,
// heading and optional quaternion; obstacle sample points.
func (e *Encoder) Encode(rod RodView, target *body.Sphere, obstacles []*body.Cylinder) (dynamo.State, error) {
	nodes := rod.Positions()
	if len(nodes) != e.layout.Elements+1 {
		return nil, fmt.Errorf("%w: rod has %d nodes, layout expects %d", dynamo.ErrInvalidInput, len(nodes), e.layout.Elements+1)
	}
	if len(obstacles) != e.layout.Obstacles {
		return nil, fmt.Errorf("%w: %d obstacles, layout expects %d", dynamo.ErrInvalidInput, len(obstacles), e.layout.Obstacles)
	}

	obs := make(dynamo.State, 0, e.size)
	for _, i := range e.indices {
		obs = append(obs, nodes[i].X)
	}
	for _, i := range e.indices {
		obs = append(obs, nodes[i].Y)
	}
	for _, i := range e.indices {
		obs = append(obs, nodes[i].Z)
	}

	obs = appendSpeed(obs, rod.TipVelocity())
	q := geom.QuatSlice(geom.FrameToQuat(rod.TipFrame()))
	obs = append(obs, q[:]...)

	obs = append(obs, target.Position.X, target.Position.Y, target.Position.Z)
	obs = appendSpeed(obs, target.Velocity)
	if e.layout.TargetOrientation {
		tq := geom.QuatSlice(geom.FrameToQuat(target.Directors))
		obs = append(obs, tq[:]...)
	}

	for _, c := range obstacles {
		for _, p := range c.SamplePoints(e.layout.PointsPerObstacle) {
			obs = append(obs, p.X, p.Y, p.Z)
		}
	}
	return obs, nil
}

// appendSpeed appends |v| and v/|v|, with a zero heading for a zero vector.
func appendSpeed(obs dynamo.State, v r3.Vec) dynamo.State {
	n := r3.Norm(v)
	if n == 0 {
		return append(obs, 0, 0, 0, 0)
	}
	return append(obs, n, v.X/n, v.Y/n, v.Z/n)
}
