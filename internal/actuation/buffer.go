package actuation

import (
	"fmt"

	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
)

// ControlPointBuffer carries the latest control points for one direction.
// The environment owns it and writes once per control step; actuators
// only read it.
type ControlPointBuffer struct {
	values []float64
}

func NewControlPointBuffer(k int) *ControlPointBuffer {
	return &ControlPointBuffer{values: make([]float64, k)}
}

// Set copies values into the buffer.
func (b *ControlPointBuffer) Set(values []float64) error {
	if len(values) != len(b.values) {
		return fmt.Errorf("%w: expected %d control points, got %d", dynamo.ErrInvalidInput, len(b.values), len(values))
	}
	copy(b.values, values)
	return nil
}

// Values returns the buffer contents. The slice must not be modified.
func (b *ControlPointBuffer) Values() []float64 { return b.values }

func (b *ControlPointBuffer) Len() int { return len(b.values) }
