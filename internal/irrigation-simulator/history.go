package irrigation_simulator

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/LeonardoBeccarini/farmassist/internal/model"
	"github.com/LeonardoBeccarini/farmassist/internal/model/entities"
)

const (
	seedEntries     = 10
	seedSpacing     = 2 * time.Hour
	litersPerMinute = 2.0
)

// IntSource yields ints in [0, n); RandomSource implements it.
type IntSource interface {
	IntN(n int) int
}

// History keeps irrigation entries newest first, dropping the oldest past size.
// Not safe for concurrent use; the Simulator guards it.
type History struct {
	size    int
	entries []model.HistoryEntry
}

func NewHistory(size int) *History {
	if size <= 0 {
		size = 10
	}
	return &History{size: size, entries: make([]model.HistoryEntry, 0, size)}
}

func (h *History) Prepend(e model.HistoryEntry) {
	keep := h.entries
	if len(keep) >= h.size {
		keep = keep[:h.size-1]
	}
	next := make([]model.HistoryEntry, 0, h.size)
	next = append(next, e)
	h.entries = append(next, keep...)
}

func (h *History) Entries() []model.HistoryEntry {
	out := make([]model.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *History) Len() int { return len(h.entries) }

// manualEntry is the row recorded when a manual toggle completes.
func manualEntry(now time.Time, pumpNowOn bool) model.HistoryEntry {
	e := model.HistoryEntry{
		ID:        uuid.NewString(),
		Timestamp: now,
		WaterUsed: "0L",
	}
	if pumpNowOn {
		e.Duration = "Manual Start"
		e.Status = entities.HistoryStarted
	} else {
		e.Duration = "0 min"
		e.Status = entities.HistoryStopped
	}
	return e
}

// SeedHistory genera lo storico iniziale: una voce ogni 2 ore, la più recente "Active".
func SeedHistory(now time.Time, rnd IntSource) []model.HistoryEntry {
	out := make([]model.HistoryEntry, 0, seedEntries)
	for i := 0; i < seedEntries; i++ {
		minutes := rnd.IntN(30) + 10
		status := entities.HistoryCompleted
		if i == 0 {
			status = entities.HistoryActive
		}
		out = append(out, model.HistoryEntry{
			ID:        uuid.NewString(),
			Timestamp: now.Add(-time.Duration(i) * seedSpacing),
			Duration:  fmt.Sprintf("%d min", minutes),
			WaterUsed: fmt.Sprintf("%.1fL", float64(minutes)*litersPerMinute),
			Status:    status,
		})
	}
	return out
}

// WeeklySeries builds the 7-day chart ending today, oldest first.
func WeeklySeries(now time.Time, rnd IntSource) []model.DailyPoint {
	out := make([]model.DailyPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		moisture := rnd.IntN(30) + 35
		p := model.DailyPoint{
			Date:        day.Format("2006-01-02"),
			Moisture:    moisture,
			Temperature: rnd.IntN(10) + 22,
			Humidity:    rnd.IntN(30) + 50,
			PumpActive:  moisture < 40,
		}
		if p.PumpActive {
			p.Irrigation = rnd.IntN(20) + 10
		}
		out = append(out, p)
	}
	return out
}
