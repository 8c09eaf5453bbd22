// Package territory describes the territorial levels that get ranked and
// turns raw spreadsheet rows into criteria tables.
package territory

import (
	"fmt"
	"slices"

	"github.com/tensorplex-labs/territory-ranker/internal/config"
	"github.com/tensorplex-labs/territory-ranker/internal/scoring"
)

type Level string

const (
	Communes     Level = "communes"
	Departements Level = "departements"
	Regions      Level = "regions"
)

// AllLevels lists every level in response order.
var AllLevels = []Level{Communes, Departements, Regions}

func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !slices.Contains(AllLevels, l) {
		return "", fmt.Errorf("unknown territorial level %q", s)
	}
	return l, nil
}

// LevelSpec says where a level's data lives and which columns matter.
type LevelSpec struct {
	Level     Level     `json:"level"`
	File      string    `json:"file"`
	KeyColumn string    `json:"key_column"`
	Criteria  []string  `json:"criteria"`
	Weights   []float64 `json:"weights"`
}

// DefaultLevelSpecs returns a fresh copy of the built-in level definitions.
func DefaultLevelSpecs() map[Level]LevelSpec {
	return map[Level]LevelSpec{
		Communes: {
			Level:     Communes,
			File:      "donnees_communes_filtrees_2023.xlsx",
			KeyColumn: "inom",
			Criteria:  []string{"fprod", "fcaf", "fcafn", "febf", "fdette", "fequip"},
			Weights:   scoring.DefaultWeights(),
		},
		Departements: {
			Level:     Departements,
			File:      "donnees_departement_2023.xlsx",
			KeyColumn: "lbudg",
			Criteria:  []string{"ftpf", "fcaf", "fcnr", "febf", "fdba", "fded"},
			Weights:   scoring.DefaultWeights(),
		},
		Regions: {
			Level:     Regions,
			File:      "donnees_region_2023.xlsx",
			KeyColumn: "lbudg",
			Criteria:  []string{"ftpf", "fcaf", "fcnr", "febf", "fdba", "fded"},
			Weights:   scoring.DefaultWeights(),
		},
	}
}

// ApplyProfile overlays profile level settings onto specs. Unknown level
// names are rejected.
func ApplyProfile(specs map[Level]LevelSpec, profile *config.Profile) error {
	if profile == nil {
		return nil
	}
	for name, lp := range profile.Levels {
		level, err := ParseLevel(name)
		if err != nil {
			return err
		}
		spec := specs[level]
		if lp.File != "" {
			spec.File = lp.File
		}
		if lp.KeyColumn != "" {
			spec.KeyColumn = lp.KeyColumn
		}
		if len(lp.Criteria) > 0 {
			spec.Criteria = append([]string(nil), lp.Criteria...)
		}
		if len(lp.Weights) > 0 {
			spec.Weights = append([]float64(nil), lp.Weights...)
		}
		if len(spec.Weights) != len(spec.Criteria) {
			return fmt.Errorf("level %s: %d weights for %d criteria", level, len(spec.Weights), len(spec.Criteria))
		}
		specs[level] = spec
	}
	return nil
}
