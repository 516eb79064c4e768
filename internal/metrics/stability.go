package metrics

import (
	"math"

	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
)

// Stability is the fraction of observations whose entries all stay within
// threshold in magnitude. A diverging arm drives it toward zero.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(obs dynamo.State, u dynamo.Control, t float64) {
	s.samples++
	for _, val := range obs {
		if !(math.Abs(val) <= s.threshold) {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
