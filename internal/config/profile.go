package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile overrides ranking parameters from a YAML file. Any field left out
// keeps the built-in default.
type Profile struct {
	Thresholds       *ThresholdsProfile      `yaml:"thresholds"`
	DegeneratePolicy string                  `yaml:"degenerate_policy"`
	Levels           map[string]LevelProfile `yaml:"levels"`
}

type ThresholdsProfile struct {
	Indifference float64 `yaml:"indifference"`
	Preference   float64 `yaml:"preference"`
	Veto         float64 `yaml:"veto"`
}

type LevelProfile struct {
	File      string    `yaml:"file"`
	KeyColumn string    `yaml:"key_column"`
	Criteria  []string  `yaml:"criteria"`
	Weights   []float64 `yaml:"weights"`
}

// LoadProfile reads a ranking profile. An empty path yields an empty profile.
func LoadProfile(path string) (*Profile, error) {
	if path == "" {
		return &Profile{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}

	for name, lvl := range p.Levels {
		if len(lvl.Weights) > 0 && len(lvl.Criteria) > 0 && len(lvl.Weights) != len(lvl.Criteria) {
			return nil, fmt.Errorf("profile level %s: %d weights for %d criteria", name, len(lvl.Weights), len(lvl.Criteria))
		}
	}
	return &p, nil
}
