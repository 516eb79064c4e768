package metrics

import "github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"

// DefaultStabilityThreshold bounds observation entries. Positions are in
// metres and the arm is one metre long, so only blow-ups exceed it.
const DefaultStabilityThreshold = 100.0

// Default returns a fresh set of the standard episode metrics.
func Default() []dynamo.Metric {
	return []dynamo.Metric{
		NewControlEffort(),
		NewActionRate(),
		NewStability(DefaultStabilityThreshold),
	}
}
