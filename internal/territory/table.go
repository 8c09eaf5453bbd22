package territory

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/territory-ranker/internal/scoring"
	"github.com/tensorplex-labs/territory-ranker/internal/sheet"
)

var ErrMissingColumns = errors.New("missing columns")

// BuildReport counts what happened to the sheet rows on the way to a table.
type BuildReport struct {
	Rows             int      `json:"rows"`
	Selected         int      `json:"selected"`
	DroppedMissing   int      `json:"dropped_missing"`
	DroppedDuplicate int      `json:"dropped_duplicate"`
	Unmatched        []string `json:"unmatched,omitempty"`
}

// BuildTable projects the key and criteria columns of s into a criteria
// table. When selected is non-empty only matching territories are kept.
// Rows with a missing or non-numeric criterion are dropped, and only the
// first row of a repeated key survives.
func BuildTable(s *sheet.Sheet, spec LevelSpec, selected []string) (*scoring.CriteriaTable, BuildReport, error) {
	report := BuildReport{Rows: len(s.Rows)}

	keyCol := s.Column(spec.KeyColumn)
	criteriaCols := make([]int, len(spec.Criteria))
	var missing []string
	if keyCol < 0 {
		missing = append(missing, spec.KeyColumn)
	}
	for i, c := range spec.Criteria {
		criteriaCols[i] = s.Column(c)
		if criteriaCols[i] < 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, report, fmt.Errorf("%w for %s: %s", ErrMissingColumns, spec.Level, strings.Join(missing, ", "))
	}

	wanted := make(map[string]string, len(selected))
	for _, name := range selected {
		wanted[MatchKey(spec.Level, name)] = name
	}
	matched := make(map[string]bool, len(wanted))

	table := &scoring.CriteriaTable{
		KeyColumn: spec.KeyColumn,
		Criteria:  append([]string(nil), spec.Criteria...),
	}
	seen := make(map[string]bool)

rows:
	for r := range s.Rows {
		rawKey := s.Cell(r, keyCol)
		if rawKey == "" {
			report.DroppedMissing++
			continue
		}
		match := MatchKey(spec.Level, rawKey)
		if len(wanted) > 0 {
			if _, ok := wanted[match]; !ok {
				continue
			}
			matched[match] = true
		}
		report.Selected++

		values := make([]float64, len(criteriaCols))
		for i, col := range criteriaCols {
			v, ok := ParseNumber(s.Cell(r, col))
			if !ok {
				log.Debug().Msgf("dropping %s %q: criterion %s is missing", spec.Level, rawKey, spec.Criteria[i])
				report.DroppedMissing++
				continue rows
			}
			values[i] = v
		}

		if seen[match] {
			report.DroppedDuplicate++
			continue
		}
		seen[match] = true

		table.Records = append(table.Records, scoring.Record{
			Key:    rawKey,
			Values: values,
		})
	}

	for key, name := range wanted {
		if !matched[key] {
			report.Unmatched = append(report.Unmatched, name)
		}
	}
	slices.Sort(report.Unmatched)

	return table, report, nil
}

// ParseNumber reads a spreadsheet number, accepting a decimal comma and
// space thousands separators. Empty and non-finite cells are reported as missing.
func ParseNumber(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}
	s = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "").Replace(s)
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
