package dashboard

import (
	"math/rand/v2"
	"time"

	"github.com/LeonardoBeccarini/farmassist/internal/model"
	"github.com/LeonardoBeccarini/farmassist/internal/model/entities"
)

// InitialReadings are shown until the first refresh lands.
func InitialReadings(now time.Time) model.SensorReadings {
	return model.SensorReadings{
		Temperature:    28,
		Humidity:       65,
		SoilMoisture:   42,
		LightIntensity: 1200,
		PHLevel:        6.8,
		UpdatedAt:      now,
	}
}

// RandomReadings simula una lettura dei sensori ambientali.
func RandomReadings(now time.Time) model.SensorReadings {
	return model.SensorReadings{
		Temperature:    25 + rand.Float64()*10,
		Humidity:       60 + rand.Float64()*20,
		SoilMoisture:   30 + rand.Float64()*40,
		LightIntensity: 800 + rand.Float64()*800,
		PHLevel:        6.0 + rand.Float64()*1.5,
		UpdatedAt:      now,
	}
}

// ReadingStatuses classifies the readings that have a comfort range.
type ReadingStatuses struct {
	Temperature  entities.ReadingStatus `json:"temperature"`
	Humidity     entities.ReadingStatus `json:"humidity"`
	SoilMoisture entities.ReadingStatus `json:"soil_moisture"`
}

func StatusesFor(r model.SensorReadings) ReadingStatuses {
	return ReadingStatuses{
		Temperature:  band(r.Temperature, 20, 30),
		Humidity:     band(r.Humidity, 40, 80),
		SoilMoisture: band(r.SoilMoisture, 30, 60),
	}
}

func band(v, low, high float64) entities.ReadingStatus {
	switch {
	case v > high:
		return entities.ReadingHigh
	case v < low:
		return entities.ReadingLow
	default:
		return entities.ReadingOptimal
	}
}
