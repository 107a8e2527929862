package searcher

import (
	"math"

	"golang.org/x/exp/rand"
)

// Exploration is the default UCB exploration constant K.
var Exploration = math.Sqrt2

type uct struct {
	numerator float64
}

func newUCT(k float64, N float64) *uct {
	if N == 0 {
		panic("N cannot be 0")
	}
	return &uct{numerator: k * k * math.Log(N)}
}

func (u uct) evaluate(q float64, n float64) float64 {
	if n == 0 {
		panic("n cannot be 0")
	}
	// UCT = q/n + K*sqrt(ln(N)/n)
	return q/n + math.Sqrt(u.numerator/n)
}

// boltzmann turns values into selection probabilities. Values are first
// rescaled to [0, 1] so the temperature does not depend on the score range.
func boltzmann(values []float64, temperature float64) []float64 {
	probs := make([]float64, len(values))
	if len(values) == 0 {
		return probs
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	spread := hi - lo

	sum := 0.0
	for i, v := range values {
		normalized := 0.0
		if spread > 0 {
			normalized = (v - lo) / spread
		}
		// Shift by the maximum normalized value (1) to keep exp bounded
		probs[i] = math.Exp((normalized - 1) / temperature)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// Sample draws an index from a probability vector.
func Sample(rng *rand.Rand, probs []float64) int {
	sampled := rng.Float64()
	cumulative := 0.0
	for i, prob := range probs {
		cumulative += prob
		if sampled < cumulative {
			return i
		}
	}
	return len(probs) - 1 // Fallback in case of rounding errors
}
