package actuation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// Spline is a natural cubic spline through k+2 evenly spaced anchors on
// [0, length]. The first and last anchors are pinned to zero.
type Spline struct {
	anchors []float64
	values  []float64
	fit     interp.NaturalCubic
}

func newSpline(k int, length float64) *Spline {
	return &Spline{
		anchors: floats.Span(make([]float64, k+2), 0, length),
		values:  make([]float64, k+2),
	}
}

// Interior returns the k free anchor values.
func (s *Spline) Interior() []float64 {
	return s.values[1 : len(s.values)-1]
}

// Anchors returns the anchor arc-length positions.
func (s *Spline) Anchors() []float64 { return s.anchors }

func (s *Spline) set(interior []float64) error {
	copy(s.Interior(), interior)
	return s.fit.Fit(s.anchors, s.values)
}

// knotTolerance is the distance, relative to the spline length, within
// which a position is treated as lying on an anchor. Summed element
// lengths land a few ULPs off the rod length.
const knotTolerance = 1e-12

// At evaluates the spline. Outside [0, length] it is zero, and on an
// anchor it is exactly the anchor value.
func (s *Spline) At(x float64) float64 {
	last := len(s.anchors) - 1
	tol := knotTolerance * s.anchors[last]
	if x < s.anchors[0]-tol || x > s.anchors[last]+tol {
		return 0
	}
	i := sort.SearchFloat64s(s.anchors, x)
	for _, j := range [2]int{i - 1, i} {
		if j >= 0 && j <= last && math.Abs(x-s.anchors[j]) <= tol {
			return s.values[j]
		}
	}
	return s.fit.Predict(x)
}
