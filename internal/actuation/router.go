package actuation

import (
	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
)

// Routed holds one control point vector per direction. Inactive
// directions are all zeros.
type Routed struct {
	Normal   []float64
	Binormal []float64
	Tangent  []float64
}

func (r Routed) For(d Direction) []float64 {
	switch d {
	case Binormal:
		return r.Binormal
	case Tangent:
		return r.Tangent
	default:
		return r.Normal
	}
}

// Route splits an action of length k*mode.Multiplier() into per-direction
// control points. The returned slices never alias action.
func Route(action []float64, k int, mode Mode) (Routed, error) {
	if k < 1 {
		return Routed{}, dynamo.NewConfigError("actuation.control_points", "must be at least 1, got %d", k)
	}
	if want := k * mode.Multiplier(); len(action) != want {
		return Routed{}, dynamo.NewConfigError("action", "mode %s expects %d values, got %d", mode, want, len(action))
	}

	r := Routed{
		Normal:   make([]float64, k),
		Binormal: make([]float64, k),
		Tangent:  make([]float64, k),
	}
	for block, d := range mode.Directions() {
		copy(r.For(d), action[block*k:(block+1)*k])
	}
	return r, nil
}
