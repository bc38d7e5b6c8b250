package entities

// Bounds applied by the simulator. The level is displayed on a 0..100 scale
// but every tick clamps it to [MinLevel, MaxLevel].
const (
	MinLevel = 20.0
	MaxLevel = 80.0

	MinThreshold = 20.0
	MaxThreshold = 60.0

	// AutoOffMargin: in auto mode the pump stops once level > threshold + margin.
	AutoOffMargin = 15.0

	InitialLevel     = 45.0
	InitialThreshold = 30.0
)

// PumpState indicates whether the irrigation pump is running.
type PumpState string

const (
	PumpOff PumpState = "off"
	PumpOn  PumpState = "on"
)

// MoistureState is the mutable state owned by one soil-moisture view.
type MoistureState struct {
	Level     float64 `json:"level"`
	PumpOn    bool    `json:"pump_on"`
	AutoMode  bool    `json:"auto_mode"`
	Threshold float64 `json:"threshold"`
}

// DefaultMoistureState is the state a freshly mounted view starts from.
func DefaultMoistureState() MoistureState {
	return MoistureState{
		Level:     InitialLevel,
		AutoMode:  true,
		Threshold: InitialThreshold,
	}
}

func (s MoistureState) Pump() PumpState {
	if s.PumpOn {
		return PumpOn
	}
	return PumpOff
}

// MoistureStatus is the display band of a moisture level.
type MoistureStatus string

const (
	StatusCritical MoistureStatus = "Critical"
	StatusDry      MoistureStatus = "Dry"
	StatusOptimal  MoistureStatus = "Optimal"
	StatusWet      MoistureStatus = "Wet"
)

// StatusFor maps a level on the 0..100 scale to its band.
// Levels produced by the simulator never go below 20 or above 80, so the
// Critical band is only reachable through 20 <= level < 30.
func StatusFor(level float64) MoistureStatus {
	switch {
	case level < 30:
		return StatusCritical
	case level < 50:
		return StatusDry
	case level < 70:
		return StatusOptimal
	default:
		return StatusWet
	}
}
