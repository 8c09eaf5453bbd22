package scoring

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ValidateWeights checks there is exactly one finite, non-negative weight per
// criterion and that at least one of them is positive.
func ValidateWeights(weights []float64, criteria int) error {
	if len(weights) != criteria {
		return fmt.Errorf("%w: got %d weights for %d criteria", ErrMalformedWeights, len(weights), criteria)
	}
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: weight %d is not finite", ErrMalformedWeights, i)
		}
		if w < 0 {
			return fmt.Errorf("%w: negative weight %f at %d", ErrMalformedWeights, w, i)
		}
	}
	if floats.Sum(weights) == 0 {
		return fmt.Errorf("%w: weights sum to zero", ErrMalformedWeights)
	}
	return nil
}

// Validate enforces 0 <= indifference <= preference <= veto <= 1.
func (t Thresholds) Validate() error {
	bounds := []struct {
		name  string
		value float64
	}{
		{"indifference", t.Indifference},
		{"preference", t.Preference},
		{"veto", t.Veto},
	}
	for _, b := range bounds {
		if math.IsNaN(b.value) || b.value < 0 || b.value > 1 {
			return fmt.Errorf("%w: %s=%v outside [0,1]", ErrInvalidThresholds, b.name, b.value)
		}
	}
	if t.Indifference > t.Preference || t.Preference > t.Veto {
		return fmt.Errorf("%w: want indifference <= preference <= veto, got %v <= %v <= %v",
			ErrInvalidThresholds, t.Indifference, t.Preference, t.Veto)
	}
	return nil
}
