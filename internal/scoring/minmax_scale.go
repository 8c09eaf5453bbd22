package scoring

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MinMaxScale rescales scores into [0,1]. The second return value is false
// when the input has a zero range, in which case every value maps to 0.
func MinMaxScale(scores []float64) ([]float64, bool) {
	result := make([]float64, len(scores))
	copy(result, scores)
	if len(result) == 0 {
		return result, true
	}

	min := floats.Min(result)
	max := floats.Max(result)

	if max == min {
		floats.Scale(0, result)
		return result, false
	}

	// divide rather than scale by the reciprocal so the max lands on exactly 1.0
	span := max - min
	if math.IsInf(span, 0) {
		// the range overflows float64; rescale by the largest magnitude first
		s := math.Max(math.Abs(min), math.Abs(max))
		lo, hi := min/s, max/s
		span = hi - lo
		for i, v := range result {
			result[i] = (v/s - lo) / span
		}
		return result, true
	}
	for i, v := range result {
		result[i] = (v - min) / span
	}
	return result, true
}

// Normalize min-max scales every criterion column of table. Bounds are taken
// from this table only and recomputed on every call.
func Normalize(table *CriteriaTable, policy DegeneratePolicy) (*NormalizedTable, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}

	rows, cols := table.Len(), len(table.Criteria)
	raw := mat.NewDense(rows, cols, nil)
	for i, r := range table.Records {
		raw.SetRow(i, r.Values)
	}

	normalized := mat.NewDense(rows, cols, nil)
	var degenerate []string
	for c := range cols {
		column := mat.Col(nil, c, raw)
		scaled, ok := MinMaxScale(column)
		if !ok {
			if policy == DegenerateReject {
				return nil, &CriterionError{Criterion: table.Criteria[c], Err: ErrDegenerateCriterion}
			}
			log.Debug().Msgf("criterion %s is constant across %d entities, treating as a tie", table.Criteria[c], rows)
			degenerate = append(degenerate, table.Criteria[c])
		}
		normalized.SetCol(c, scaled)
	}

	return &NormalizedTable{
		KeyColumn:  table.KeyColumn,
		Criteria:   append([]string(nil), table.Criteria...),
		Keys:       table.Keys(),
		Values:     normalized,
		Degenerate: degenerate,
	}, nil
}

func validateTable(table *CriteriaTable) error {
	if table == nil || table.Len() == 0 {
		return ErrEmptyInput
	}
	if len(table.Criteria) == 0 {
		return fmt.Errorf("%w: table has no criteria", ErrRaggedRecord)
	}

	seen := make(map[string]struct{}, table.Len())
	for i, r := range table.Records {
		if _, dup := seen[r.Key]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateKey, r.Key)
		}
		seen[r.Key] = struct{}{}

		if len(r.Values) != len(table.Criteria) {
			return fmt.Errorf("%w: record %d (%q) has %d values, want %d",
				ErrRaggedRecord, i, r.Key, len(r.Values), len(table.Criteria))
		}
		for c, v := range r.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &CriterionError{
					Criterion: table.Criteria[c],
					Err:       fmt.Errorf("%w: record %q", ErrNonFiniteValue, r.Key),
				}
			}
		}
	}
	return nil
}
