package scoring

func DefaultThresholds() Thresholds {
	return Thresholds{
		Indifference: 0.05,
		Preference:   0.15,
		Veto:         0.4,
	}
}

// DefaultWeights is the six-criterion weighting used for every territorial level.
func DefaultWeights() []float64 {
	return []float64{0.2, 0.2, 0.15, 0.15, 0.2, 0.1}
}

// UniformWeights gives every criterion a weight of 1.
func UniformWeights(criteria int) []float64 {
	w := make([]float64, criteria)
	for i := range w {
		w[i] = 1
	}
	return w
}
