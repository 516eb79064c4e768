package metrics

import (
	"math"

	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
)

// ControlEffort is the mean absolute action entry per control step.
type ControlEffort struct {
	name    string
	sum     float64
	entries int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(obs dynamo.State, u dynamo.Control, t float64) {
	for _, val := range u {
		c.sum += math.Abs(val)
	}
	c.entries += len(u)
}

func (c *ControlEffort) Value() float64 {
	if c.entries == 0 {
		return 0
	}
	return c.sum / float64(c.entries)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.entries = 0
}
