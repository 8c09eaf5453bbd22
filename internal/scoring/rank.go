package scoring

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// NetScores returns score[i] = sum over j != i of C[i][j] - D[i][j].
func NetScores(m *OutrankingMatrices) []float64 {
	n := m.Size()
	scores := make([]float64, n)
	for i := range n {
		c := mat.Row(nil, i, m.Concordance)
		d := mat.Row(nil, i, m.Discordance)
		for j := range n {
			if i == j {
				continue
			}
			scores[i] += c[j] - d[j]
		}
	}
	return scores
}

// Rank orders entity indices by descending net score. Equal scores keep
// their input order.
func Rank(m *OutrankingMatrices) []int {
	return rankScores(NetScores(m))
}

func rankScores(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	return order
}
