// Package geom holds the small amount of rigid-body geometry shared by the
// rod, the free bodies and the observation encoder.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Frame is an orthonormal material frame stored row-wise: d1 (normal),
// d2 (binormal), d3 (tangent). Applying it to a lab vector yields the
// vector's components in the local frame.
type Frame [3]r3.Vec

// Identity is the frame whose directors coincide with the lab axes.
var Identity = Frame{{X: 1}, {Y: 1}, {Z: 1}}

// BaseFrame returns the clamped-end frame of the arm: tangent along +y,
// normal along +z, binormal = tangent x normal = +x.
func BaseFrame() Frame {
	d3 := r3.Vec{Y: 1}
	d1 := r3.Vec{Z: 1}
	return Frame{d1, r3.Cross(d3, d1), d3}
}

func (f Frame) Normal() r3.Vec   { return f[0] }
func (f Frame) Binormal() r3.Vec { return f[1] }
func (f Frame) Tangent() r3.Vec  { return f[2] }

// At returns the (i, j) entry of the row-major director matrix.
func (f Frame) At(i, j int) float64 {
	v := f[i]
	switch j {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// ToLocal expresses a lab vector in local components.
func (f Frame) ToLocal(v r3.Vec) r3.Vec {
	return r3.Vec{X: r3.Dot(f[0], v), Y: r3.Dot(f[1], v), Z: r3.Dot(f[2], v)}
}

// ToLab maps local components back to the lab frame.
func (f Frame) ToLab(v r3.Vec) r3.Vec {
	out := r3.Scale(v.X, f[0])
	out = r3.Add(out, r3.Scale(v.Y, f[1]))
	return r3.Add(out, r3.Scale(v.Z, f[2]))
}

// Rotate applies a lab-frame rotation to every director.
func (f Frame) Rotate(rot r3.Rotation) Frame {
	return Frame{rot.Rotate(f[0]), rot.Rotate(f[1]), rot.Rotate(f[2])}
}

// Flatten writes the nine director entries row by row.
func (f Frame) Flatten() [9]float64 {
	return [9]float64{
		f[0].X, f[0].Y, f[0].Z,
		f[1].X, f[1].Y, f[1].Z,
		f[2].X, f[2].Y, f[2].Z,
	}
}

// EulerFrame builds the directors of a body from three angles. The zero
// angle yields BaseFrame, so a target with theta = 0 is aligned with an
// undeformed arm.
func EulerFrame(theta r3.Vec) Frame {
	s0, c0 := math.Sincos(theta.X)
	s1, c1 := math.Sincos(theta.Y)
	s2, c2 := math.Sincos(theta.Z)

	return Frame{
		{X: -s1, Y: s0 * c1, Z: c0 * c1},
		{X: c1 * c2, Y: s0*s1*c2 - s2*c0, Z: s1*c0*c2 + s0*s2},
		{X: s2 * c1, Y: s0*s1*s2 + c0*c2, Z: s1*s2*c0 - s0*c2},
	}
}

// RotationVector returns a rotation of |v| radians about v, or the identity
// rotation when v is zero.
func RotationVector(v r3.Vec) r3.Rotation {
	angle := r3.Norm(v)
	if angle == 0 {
		return r3.NewRotation(0, r3.Vec{Z: 1})
	}
	return r3.NewRotation(angle, r3.Scale(1/angle, v))
}
