package entities

import "time"

// SensorReadings is the dashboard's ambient sensor panel.
type SensorReadings struct {
	Temperature    float64   `json:"temperature"`     // °C
	Humidity       float64   `json:"humidity"`        // %
	SoilMoisture   float64   `json:"soil_moisture"`   // %
	LightIntensity float64   `json:"light_intensity"` // lux
	PHLevel        float64   `json:"ph_level"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ReadingStatus classifies a reading against its comfort range.
type ReadingStatus string

const (
	ReadingLow     ReadingStatus = "low"
	ReadingOptimal ReadingStatus = "optimal"
	ReadingHigh    ReadingStatus = "high"
)

type CropSuggestion struct {
	Name         string `json:"name" yaml:"name"`
	Reason       string `json:"reason" yaml:"reason"`
	Suitability  int    `json:"suitability" yaml:"suitability"`
	Season       string `json:"season" yaml:"season"`
	WaterNeeds   string `json:"water_needs" yaml:"water_needs"`
	Icon         string `json:"icon" yaml:"icon"`
	ProfitMargin string `json:"profit_margin" yaml:"profit_margin"`
}

type MarketPrice struct {
	Crop   string `json:"crop" yaml:"crop"`
	Price  string `json:"price" yaml:"price"`
	Change string `json:"change" yaml:"change"`
	Trend  string `json:"trend" yaml:"trend"` // up | down
}

type CropInfo struct {
	Name             string `json:"name" yaml:"name"`
	ScientificName   string `json:"scientific_name" yaml:"scientific_name"`
	Family           string `json:"family" yaml:"family"`
	Season           string `json:"season" yaml:"season"`
	WaterRequirement string `json:"water_requirement" yaml:"water_requirement"`
	SoilType         string `json:"soil_type" yaml:"soil_type"`
	PHRange          string `json:"ph_range" yaml:"ph_range"`
	Temperature      string `json:"temperature" yaml:"temperature"`
	Duration         string `json:"duration" yaml:"duration"`
}

// CropRecord is a cultivation record entered from the dashboard form.
type CropRecord struct {
	ID              string    `json:"id"`
	Crop            string    `json:"crop"`
	CultivationDate string    `json:"cultivation_date"` // YYYY-MM-DD
	Quantity        float64   `json:"quantity"`
	Description     string    `json:"description"`
	CreatedAt       time.Time `json:"created_at"`
}
