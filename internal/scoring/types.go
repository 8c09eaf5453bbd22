package scoring

import "gonum.org/v1/gonum/mat"

// Record is one entity row: an identifying key and its criterion values, in
// the same order as CriteriaTable.Criteria.
type Record struct {
	Key    string
	Values []float64
}

// CriteriaTable holds the raw entity × criteria values for one ranking call.
type CriteriaTable struct {
	KeyColumn string
	Criteria  []string
	Records   []Record
}

func (t *CriteriaTable) Len() int { return len(t.Records) }

// Keys returns the record keys in table order.
func (t *CriteriaTable) Keys() []string {
	keys := make([]string, len(t.Records))
	for i, r := range t.Records {
		keys[i] = r.Key
	}
	return keys
}

// NormalizedTable mirrors a CriteriaTable with every criterion column rescaled
// to [0,1]. Values is rows=entities, cols=criteria.
type NormalizedTable struct {
	KeyColumn string
	Criteria  []string
	Keys      []string
	Values    *mat.Dense
	// Degenerate lists the criteria whose column had a zero range.
	Degenerate []string
}

type Thresholds struct {
	Indifference float64 `json:"indifference" yaml:"indifference"`
	Preference   float64 `json:"preference" yaml:"preference"`
	Veto         float64 `json:"veto" yaml:"veto"`
}

// OutrankingMatrices are n×n; the diagonal is always zero.
type OutrankingMatrices struct {
	Concordance *mat.Dense // 2D: weighted share of criteria where i >= j
	Discordance *mat.Dense // 2D: clipped max absolute gap between i and j
}

func (m *OutrankingMatrices) Size() int {
	n, _ := m.Concordance.Dims()
	return n
}

type RankedEntry struct {
	Record   Record
	Score    float64
	Position int // 1-based
}

// RankedTable is the input table reordered by descending net score. Records
// keep their original, un-normalized values.
type RankedTable struct {
	KeyColumn string
	Criteria  []string
	Entries   []RankedEntry
}

// Top returns a copy of the table truncated to the first k entries. k <= 0
// or k >= len returns every entry.
func (r *RankedTable) Top(k int) *RankedTable {
	out := &RankedTable{KeyColumn: r.KeyColumn, Criteria: r.Criteria}
	if k <= 0 || k >= len(r.Entries) {
		out.Entries = append([]RankedEntry(nil), r.Entries...)
		return out
	}
	out.Entries = append([]RankedEntry(nil), r.Entries[:k]...)
	return out
}

// DegeneratePolicy decides what happens to a criterion whose values are all equal.
type DegeneratePolicy int

const (
	// DegenerateAsTie maps the column to 0.0 for every entity, so it ties on
	// every pair: full weight in both concordance directions, zero gap.
	DegenerateAsTie DegeneratePolicy = iota
	// DegenerateReject fails normalization with ErrDegenerateCriterion.
	DegenerateReject
)

func (p DegeneratePolicy) String() string {
	switch p {
	case DegenerateAsTie:
		return "tie"
	case DegenerateReject:
		return "reject"
	}
	return "unknown"
}

// ParseDegeneratePolicy accepts "tie" or "reject".
func ParseDegeneratePolicy(s string) (DegeneratePolicy, bool) {
	switch s {
	case "tie", "":
		return DegenerateAsTie, true
	case "reject":
		return DegenerateReject, true
	}
	return DegenerateAsTie, false
}
