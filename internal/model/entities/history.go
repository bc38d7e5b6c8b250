package entities

import "time"

// HistoryStatus tags an irrigation history entry.
type HistoryStatus string

const (
	HistoryActive    HistoryStatus = "Active"
	HistoryCompleted HistoryStatus = "Completed"
	HistoryStarted   HistoryStatus = "Started"
	HistoryStopped   HistoryStatus = "Stopped"
)

// HistoryEntry is one row of the irrigation history (newest first, capped).
type HistoryEntry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  string        `json:"duration"`   // e.g. "25 min", "Manual Start"
	WaterUsed string        `json:"water_used"` // e.g. "50.0L"
	Status    HistoryStatus `json:"status"`
}

// DailyPoint is one day of the mock weekly moisture chart.
type DailyPoint struct {
	Date        string `json:"date"` // YYYY-MM-DD
	Moisture    int    `json:"moisture"`
	Temperature int    `json:"temperature"`
	Humidity    int    `json:"humidity"`
	Irrigation  int    `json:"irrigation"`
	PumpActive  bool   `json:"pump_active"`
}
