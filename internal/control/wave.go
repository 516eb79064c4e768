package control

import (
	"math"

	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
)

// Wave drives each block of k control points with a sine travelling from
// base to tip. Block b lags block 0 by a quarter period per block, which
// makes a 3D arm sweep a cone instead of a plane.
type Wave struct {
	dim       int
	k         int
	Amplitude float64
	Frequency float64
	// Waves is the number of wavelengths along the arm.
	Waves float64
}

func NewWave(dim, k int) *Wave {
	if k < 1 {
		k = 1
	}
	return &Wave{dim: dim, k: k, Amplitude: 1, Frequency: 1, Waves: 0.5}
}

func (w *Wave) Compute(obs dynamo.State, t float64) dynamo.Control {
	u := make(dynamo.Control, w.dim)
	for i := range u {
		block, j := i/w.k, i%w.k
		phase := 2*math.Pi*(w.Frequency*t-w.Waves*float64(j)/float64(w.k)) - float64(block)*math.Pi/2
		u[i] = clamp(w.Amplitude * math.Sin(phase))
	}
	return u
}

func (w *Wave) GetParams() map[string]float64 {
	return map[string]float64{
		"amplitude": w.Amplitude,
		"frequency": w.Frequency,
		"waves":     w.Waves,
	}
}

func (w *Wave) SetParam(name string, value float64) error {
	switch name {
	case "amplitude":
		w.Amplitude = value
	case "frequency":
		w.Frequency = value
	case "waves":
		w.Waves = value
	default:
		return dynamo.NewConfigError(name, "wave policy has no such parameter")
	}
	return nil
}
