package evaluator

import (
	"fmt"

	"github.com/tensorplex-labs/territory-ranker/internal/scoring"
	"github.com/tensorplex-labs/territory-ranker/internal/territory"
)

// Request selects territories per level and optionally overrides the ranking
// parameters. An empty selection ranks every territory of that level.
type Request struct {
	SelectedCommunes     []string            `json:"selected_communes" validate:"omitempty,dive,required"`
	SelectedDepartements []string            `json:"selected_departements" validate:"omitempty,dive,required"`
	SelectedRegions      []string            `json:"selected_regions" validate:"omitempty,dive,required"`
	Levels               []string            `json:"levels,omitempty" validate:"omitempty,dive,oneof=communes departements regions"`
	Weights              []float64           `json:"weights,omitempty" validate:"omitempty,dive,gte=0"`
	Thresholds           *ThresholdsOverride `json:"thresholds,omitempty"`
	Top                  int                 `json:"top,omitempty" validate:"gte=0"`
}

// ThresholdsOverride replaces only the thresholds that are set; the others
// keep the evaluator's resolved defaults.
type ThresholdsOverride struct {
	Indifference *float64 `json:"indifference,omitempty" validate:"omitempty,gte=0,lte=1"`
	Preference   *float64 `json:"preference,omitempty" validate:"omitempty,gte=0,lte=1"`
	Veto         *float64 `json:"veto,omitempty" validate:"omitempty,gte=0,lte=1"`
}

func (o *ThresholdsOverride) apply(base scoring.Thresholds) scoring.Thresholds {
	if o == nil {
		return base
	}
	if o.Indifference != nil {
		base.Indifference = *o.Indifference
	}
	if o.Preference != nil {
		base.Preference = *o.Preference
	}
	if o.Veto != nil {
		base.Veto = *o.Veto
	}
	return base
}

func (r *Request) selection(level territory.Level) []string {
	switch level {
	case territory.Communes:
		return r.SelectedCommunes
	case territory.Departements:
		return r.SelectedDepartements
	case territory.Regions:
		return r.SelectedRegions
	}
	return nil
}

func (r *Request) levels() ([]territory.Level, error) {
	if len(r.Levels) == 0 {
		return territory.AllLevels, nil
	}
	out := make([]territory.Level, 0, len(r.Levels))
	seen := make(map[territory.Level]bool)
	for _, name := range r.Levels {
		level, err := territory.ParseLevel(name)
		if err != nil {
			return nil, err
		}
		if !seen[level] {
			seen[level] = true
			out = append(out, level)
		}
	}
	return out, nil
}

type RankedTerritory struct {
	Position int                `json:"position"`
	Name     string             `json:"name"`
	Score    float64            `json:"score"`
	Criteria map[string]float64 `json:"criteria"`
}

type LevelResult struct {
	Level     territory.Level       `json:"level"`
	KeyColumn string                `json:"key_column"`
	Criteria  []string              `json:"criteria"`
	Ranking   []RankedTerritory     `json:"ranking"`
	Report    territory.BuildReport `json:"report"`
}

type Response struct {
	Communes     *LevelResult `json:"communes_ranking,omitempty"`
	Departements *LevelResult `json:"departements_ranking,omitempty"`
	Regions      *LevelResult `json:"regions_ranking,omitempty"`
}

func (r *Response) set(res *LevelResult) {
	switch res.Level {
	case territory.Communes:
		r.Communes = res
	case territory.Departements:
		r.Departements = res
	case territory.Regions:
		r.Regions = res
	}
}

// LevelError attributes a failure to the territorial level that produced it.
type LevelError struct {
	Level territory.Level
	Err   error
}

func (e *LevelError) Error() string {
	return fmt.Sprintf("%s: %v", e.Level, e.Err)
}

func (e *LevelError) Unwrap() error { return e.Err }

func toLevelResult(level territory.Level, ranked *scoring.RankedTable, report territory.BuildReport) *LevelResult {
	res := &LevelResult{
		Level:     level,
		KeyColumn: ranked.KeyColumn,
		Criteria:  ranked.Criteria,
		Ranking:   make([]RankedTerritory, len(ranked.Entries)),
		Report:    report,
	}
	for i, e := range ranked.Entries {
		criteria := make(map[string]float64, len(ranked.Criteria))
		for c, name := range ranked.Criteria {
			criteria[name] = e.Record.Values[c]
		}
		res.Ranking[i] = RankedTerritory{
			Position: e.Position,
			Name:     e.Record.Key,
			Score:    e.Score,
			Criteria: criteria,
		}
	}
	return res
}
