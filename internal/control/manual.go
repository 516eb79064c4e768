package control

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
)

// Manual returns whatever action was last set, clamped to [-1, 1]. The
// live view nudges individual control points through SetParam.
type Manual struct {
	u dynamo.Control
}

func NewManual(dim int) *Manual {
	return &Manual{u: make(dynamo.Control, dim)}
}

// SetControl replaces the whole action.
func (m *Manual) SetControl(u []float64) error {
	if len(u) != len(m.u) {
		return fmt.Errorf("%w: manual action needs %d values, got %d", dynamo.ErrInvalidInput, len(m.u), len(u))
	}
	for i, v := range u {
		m.u[i] = clamp(v)
	}
	return nil
}

func (m *Manual) Compute(obs dynamo.State, t float64) dynamo.Control {
	return slices.Clone(m.u)
}

// GetParams exposes each action entry as u0, u1, ...
func (m *Manual) GetParams() map[string]float64 {
	out := make(map[string]float64, len(m.u))
	for i, v := range m.u {
		out["u"+strconv.Itoa(i)] = v
	}
	return out
}

func (m *Manual) SetParam(name string, value float64) error {
	i, err := strconv.Atoi(strings.TrimPrefix(name, "u"))
	if !strings.HasPrefix(name, "u") || err != nil || i < 0 || i >= len(m.u) {
		return dynamo.NewConfigError(name, "manual policy has parameters u0..u%d", len(m.u)-1)
	}
	m.u[i] = clamp(value)
	return nil
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}
