package scoring

import (
	"fmt"
	"math"
)

// Weights are the component weights of the composite score. They must be
// non-negative and sum to 1.
type Weights struct {
	Personality float64 `koanf:"personality"`
	Distance    float64 `koanf:"distance"`
	Imminence   float64 `koanf:"imminence"`
	Calendar    float64 `koanf:"calendar"`
	Circadian   float64 `koanf:"circadian"`
}

const weightTolerance = 1e-6

// DefaultWeights returns the stock weighting.
func DefaultWeights() Weights {
	return Weights{
		Personality: 0.30,
		Distance:    0.20,
		Imminence:   0.15,
		Calendar:    0.15,
		Circadian:   0.20,
	}
}

// Validate checks the weights are non-negative and sum to 1.
func (w Weights) Validate() error {
	parts := []float64{w.Personality, w.Distance, w.Imminence, w.Calendar, w.Circadian}
	sum := 0.0
	for _, p := range parts {
		if p < 0 || math.IsNaN(p) {
			return fmt.Errorf("%w: negative or NaN weight", ErrInvalidWeights)
		}
		sum += p
	}
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: sum is %.4f, want 1", ErrInvalidWeights, sum)
	}
	return nil
}

func (w Weights) combine(b Breakdown) float64 {
	return w.Personality*b.Personality +
		w.Distance*b.Distance +
		w.Imminence*b.Imminence +
		w.Calendar*b.Calendar +
		w.Circadian*b.Circadian
}
