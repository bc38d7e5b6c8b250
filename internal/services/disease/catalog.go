package disease

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/LeonardoBeccarini/farmassist/internal/model"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// LoadCatalog parses a YAML list of diseases.
func LoadCatalog(data []byte) ([]model.Disease, error) {
	var out []model.Disease
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse disease catalog: %w", err)
	}
	if len(out) == 0 {
		return nil, errors.New("disease catalog is empty")
	}
	for i, d := range out {
		if d.Name == "" {
			return nil, fmt.Errorf("disease catalog entry %d has no name", i)
		}
	}
	return out, nil
}

// DefaultCatalog returns the built-in four-entry catalog.
func DefaultCatalog() []model.Disease {
	out, err := LoadCatalog(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return out
}
