package messages

import (
	"time"

	"github.com/LeonardoBeccarini/farmassist/internal/model/entities"
)

// MoistureSnapshot is published after every tick (MQTT, Influx, listeners).
type MoistureSnapshot struct {
	FieldID   string                  `json:"field_id"`
	SensorID  string                  `json:"sensor_id"`
	Level     float64                 `json:"level"`
	PumpOn    bool                    `json:"pump_on"`
	AutoMode  bool                    `json:"auto_mode"`
	Threshold float64                 `json:"threshold"`
	Status    entities.MoistureStatus `json:"status"`
	Busy      bool                    `json:"busy"`
	Timestamp time.Time               `json:"timestamp"`
}

// MoistureAggregate is the rolling summary published by the aggregator.
type MoistureAggregate struct {
	FieldID    string    `json:"field_id"`
	SensorID   string    `json:"sensor_id"`
	Mean       float64   `json:"mean"`
	Min        float64   `json:"min"`
	Max        float64   `json:"max"`
	Samples    int       `json:"samples"`
	PumpOnPct  float64   `json:"pump_on_pct"`
	Aggregated bool      `json:"aggregated"`
	Timestamp  time.Time `json:"timestamp"`
}
