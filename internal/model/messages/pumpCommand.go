package messages

import "time"

// CommandKind names a remote control action on the simulator.
type CommandKind string

const (
	CommandTogglePump   CommandKind = "toggle_pump"
	CommandToggleAuto   CommandKind = "toggle_auto"
	CommandSetThreshold CommandKind = "set_threshold"
)

// PumpCommand is received on the MQTT command topic.
type PumpCommand struct {
	FieldID   string      `json:"field_id"`
	SensorID  string      `json:"sensor_id"`
	Command   CommandKind `json:"command"`
	Threshold float64     `json:"threshold,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
