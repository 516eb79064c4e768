package actuation

import "math"

// RateLimit moves every entry of current toward target by at most limit and
// returns the result in a new slice. An entry within limit of its target
// lands on it exactly; an infinite limit returns a copy of target.
func RateLimit(current, target []float64, limit float64) []float64 {
	out := make([]float64, len(target))
	for i := range target {
		diff := target[i] - current[i]
		if math.Abs(diff) <= limit {
			out[i] = target[i]
			continue
		}
		out[i] = current[i] + math.Copysign(limit, diff)
	}
	return out
}
