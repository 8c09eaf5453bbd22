package scoring

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// BuildOutrankingMatrices computes the pairwise concordance and discordance
// matrices over every ordered pair (i, j), i != j.
//
// Concordance C[i][j] is the weighted share of criteria on which i is at
// least as good as j. Discordance D[i][j] is the largest absolute gap on any
// single criterion, clipped by ClipDiscordance. The gap is a magnitude, so D
// is symmetric.
func BuildOutrankingMatrices(nt *NormalizedTable, weights []float64, thresholds Thresholds) (*OutrankingMatrices, error) {
	if nt == nil || len(nt.Keys) == 0 {
		return nil, ErrEmptyInput
	}
	if err := ValidateWeights(weights, len(nt.Criteria)); err != nil {
		return nil, err
	}
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}

	n := len(nt.Keys)
	totalWeight := floats.Sum(weights)
	concordance := mat.NewDense(n, n, nil)
	discordance := mat.NewDense(n, n, nil)

	rows := make([][]float64, n)
	for i := range n {
		rows[i] = mat.Row(nil, i, nt.Values)
	}

	for i := range n {
		for j := range n {
			if i == j {
				continue
			}
			var agree, gap float64
			for c, w := range weights {
				if rows[i][c] >= rows[j][c] {
					agree += w
				}
				gap = math.Max(gap, math.Abs(rows[i][c]-rows[j][c]))
			}
			concordance.Set(i, j, agree/totalWeight)
			discordance.Set(i, j, ClipDiscordance(gap, thresholds))
		}
	}

	return &OutrankingMatrices{
		Concordance: concordance,
		Discordance: discordance,
	}, nil
}

// ClipDiscordance zeroes gaps below the indifference threshold and saturates
// gaps above the veto threshold to 1. The preference threshold does not take
// part in clipping.
func ClipDiscordance(gap float64, thresholds Thresholds) float64 {
	switch {
	case gap < thresholds.Indifference:
		return 0
	case gap > thresholds.Veto:
		return 1
	default:
		return gap
	}
}
