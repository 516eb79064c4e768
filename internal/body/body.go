// Package body holds the rigid bodies that share the arena with the arm:
// the spherical target and static cylindrical obstacles.
package body

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
	"github.com/GazzolaLab/Elastica-RL-control/internal/geom"
)

// Sphere is a kinematic rigid sphere. Its motion is prescribed by the
// target dynamics, not integrated from forces.
type Sphere struct {
	Position  r3.Vec
	Velocity  r3.Vec
	Directors geom.Frame
	Radius    float64
}

func NewSphere(center r3.Vec, radius float64) *Sphere {
	return &Sphere{Position: center, Directors: geom.BaseFrame(), Radius: radius}
}

// Cylinder is a static obstacle. Contact forces are not modeled; obstacles
// only appear in observations and exported diagnostics.
type Cylinder struct {
	Start     r3.Vec
	Direction r3.Vec
	Normal    r3.Vec
	Length    float64
	Radius    float64
}

func NewCylinder(start, direction, normal r3.Vec, length, radius float64) (*Cylinder, error) {
	if length <= 0 {
		return nil, dynamo.NewConfigError("obstacles.length", "must be positive, got %g", length)
	}
	if radius <= 0 {
		return nil, dynamo.NewConfigError("obstacles.radius", "must be positive, got %g", radius)
	}
	if r3.Norm(direction) == 0 {
		return nil, dynamo.NewConfigError("obstacles.direction", "must be non-zero")
	}
	c := &Cylinder{
		Start:     start,
		Direction: r3.Unit(direction),
		Length:    length,
		Radius:    radius,
	}
	if r3.Norm(normal) > 0 {
		c.Normal = r3.Unit(normal)
	}
	return c, nil
}

// SamplePoints returns n points evenly spaced along the axis, from Start to
// Start + Length*Direction inclusive.
func (c *Cylinder) SamplePoints(n int) []r3.Vec {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []r3.Vec{c.Start}
	}
	ts := floats.Span(make([]float64, n), 0, c.Length)
	pts := make([]r3.Vec, n)
	for i, s := range ts {
		pts[i] = r3.Add(c.Start, r3.Scale(s, c.Direction))
	}
	return pts
}

// Center is the midpoint of the axis.
func (c *Cylinder) Center() r3.Vec {
	return r3.Add(c.Start, r3.Scale(c.Length/2, c.Direction))
}
