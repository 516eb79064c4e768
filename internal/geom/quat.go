package geom

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// FrameToQuat extracts the unit quaternion (w, x, y, z) of a frame.
//
// The largest of the trace and the three diagonal entries selects the
// pivot, so the division is never by a value close to zero. The result is
// normalized to w >= 0.
func FrameToQuat(f Frame) quat.Number {
	q00, q11, q22 := f.At(0, 0), f.At(1, 1), f.At(2, 2)
	trace := q00 + q11 + q22

	var q quat.Number
	switch {
	case trace > 0:
		s := 2 * math.Sqrt(trace+1)
		q = quat.Number{
			Real: s / 4,
			Imag: (f.At(2, 1) - f.At(1, 2)) / s,
			Jmag: (f.At(0, 2) - f.At(2, 0)) / s,
			Kmag: (f.At(1, 0) - f.At(0, 1)) / s,
		}
	case q00 > q11 && q00 > q22:
		s := 2 * math.Sqrt(1+q00-q11-q22)
		q = quat.Number{
			Real: (f.At(2, 1) - f.At(1, 2)) / s,
			Imag: s / 4,
			Jmag: (f.At(0, 1) + f.At(1, 0)) / s,
			Kmag: (f.At(0, 2) + f.At(2, 0)) / s,
		}
	case q11 > q22:
		s := 2 * math.Sqrt(1+q11-q00-q22)
		q = quat.Number{
			Real: (f.At(0, 2) - f.At(2, 0)) / s,
			Imag: (f.At(0, 1) + f.At(1, 0)) / s,
			Jmag: s / 4,
			Kmag: (f.At(1, 2) + f.At(2, 1)) / s,
		}
	default:
		s := 2 * math.Sqrt(1+q22-q00-q11)
		q = quat.Number{
			Real: (f.At(1, 0) - f.At(0, 1)) / s,
			Imag: (f.At(0, 2) + f.At(2, 0)) / s,
			Jmag: (f.At(1, 2) + f.At(2, 1)) / s,
			Kmag: s / 4,
		}
	}

	if n := quat.Abs(q); n > 0 {
		q = quat.Scale(1/n, q)
	}
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	return q
}

// QuatDot is the 4-vector dot product of two quaternions.
func QuatDot(a, b quat.Number) float64 {
	return a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
}

// OrientationDistance is 1 - <a, b>^2. It is zero for identical
// orientations, insensitive to the sign of either quaternion and at most 1.
func OrientationDistance(a, b quat.Number) float64 {
	d := QuatDot(a, b)
	return 1 - d*d
}

// QuatSlice returns q as (w, x, y, z).
func QuatSlice(q quat.Number) [4]float64 {
	return [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag}
}
