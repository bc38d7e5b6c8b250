package dashboard

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/LeonardoBeccarini/farmassist/internal/model/entities"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog holds the static panels of the dashboard.
type Catalog struct {
	Suggestions []entities.CropSuggestion `json:"suggestions" yaml:"suggestions"`
	Prices      []entities.MarketPrice    `json:"prices" yaml:"prices"`
	CropInfo    []entities.CropInfo       `json:"crop_info" yaml:"crop_info"`
}

func LoadCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse dashboard catalog: %w", err)
	}
	return c, nil
}

func DefaultCatalog() Catalog {
	c, err := LoadCatalog(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}
