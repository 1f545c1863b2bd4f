package db

import (
	"bytes"
	"fmt"

	"github.com/frahmantamala/evaluation-criteria/internal/category"
	"gopkg.in/yaml.v3"
)

type Seed struct {
	Categories []SeedCategory `yaml:"categories"`
}

type SeedCategory struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Weight      float64        `yaml:"weight"`
	Active      *bool          `yaml:"active"`
	Criteria    []SeedCriteria `yaml:"criteria"`
}

type SeedCriteria struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// IsActive defaults to true when the fixture omits the field.
func (c SeedCategory) IsActive() bool {
	return c.Active == nil || *c.Active
}

// ParseSeed decodes a fixture and checks that the active categories form a
// valid weight distribution.
func ParseSeed(raw []byte) (*Seed, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var seed Seed
	if err := dec.Decode(&seed); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	names := make(map[string]struct{}, len(seed.Categories))
	var pairs []category.WeightPair
	for i, c := range seed.Categories {
		if c.Name == "" {
			return nil, fmt.Errorf("category #%d: name is required", i+1)
		}
		if _, dup := names[c.Name]; dup {
			return nil, fmt.Errorf("category %q listed twice", c.Name)
		}
		names[c.Name] = struct{}{}
		if err := category.CheckWeightRange(c.Weight); err != nil {
			return nil, fmt.Errorf("category %q: %w", c.Name, err)
		}

		if c.IsActive() {
			pairs = append(pairs, category.WeightPair{CategoryID: int64(i + 1), Weight: c.Weight})
		}
	}

	if len(pairs) > 0 {
		if result := category.ValidateWeights(pairs); !result.Valid {
			return nil, fmt.Errorf("seed weights: active total %.2f must be 100 (%d violations)", result.Total, len(result.Violations))
		}
	}
	return &seed, nil
}
