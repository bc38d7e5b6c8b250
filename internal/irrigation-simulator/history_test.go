package irrigation_simulator

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonardoBeccarini/farmassist/internal/model"
	"github.com/LeonardoBeccarini/farmassist/internal/model/entities"
)

func TestHistoryPrependCaps(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 5; i++ {
		h.Prepend(model.HistoryEntry{ID: fmt.Sprint(i)})
	}
	got := h.Entries()
	require.Len(t, got, 3)
	assert.Equal(t, "4", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
	assert.Equal(t, "2", got[2].ID)
}

func TestHistoryEntriesIsACopy(t *testing.T) {
	h := NewHistory(2)
	h.Prepend(model.HistoryEntry{ID: "a"})
	got := h.Entries()
	got[0].ID = "mutated"
	assert.Equal(t, "a", h.Entries()[0].ID)
}

func TestSeedHistory(t *testing.T) {
	entries := SeedHistory(fixedNow, NewRandomSource(nil))
	require.Len(t, entries, 10)

	assert.Equal(t, entities.HistoryActive, entries[0].Status)
	for i, e := range entries {
		if i > 0 {
			assert.Equal(t, entities.HistoryCompleted, e.Status)
		}
		assert.Equal(t, fixedNow.Add(-time.Duration(i)*2*time.Hour), e.Timestamp)

		var minutes int
		_, err := fmt.Sscanf(e.Duration, "%d min", &minutes)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, minutes, 10)
		assert.LessOrEqual(t, minutes, 39)
		assert.Equal(t, fmt.Sprintf("%.1fL", float64(minutes)*2), e.WaterUsed)
	}
}

func TestWeeklySeries(t *testing.T) {
	points := WeeklySeries(fixedNow, NewRandomSource(nil))
	require.Len(t, points, 7)
	assert.Equal(t, "2024-05-26", points[0].Date)
	assert.Equal(t, "2024-06-01", points[6].Date)

	for _, p := range points {
		assert.GreaterOrEqual(t, p.Moisture, 35)
		assert.LessOrEqual(t, p.Moisture, 64)
		assert.GreaterOrEqual(t, p.Temperature, 22)
		assert.LessOrEqual(t, p.Temperature, 31)
		assert.GreaterOrEqual(t, p.Humidity, 50)
		assert.LessOrEqual(t, p.Humidity, 79)
		assert.Equal(t, p.Moisture < 40, p.PumpActive)
		if p.PumpActive {
			assert.GreaterOrEqual(t, p.Irrigation, 10)
			assert.LessOrEqual(t, p.Irrigation, 29)
		} else {
			assert.Zero(t, p.Irrigation)
		}
	}
}

func TestRandomSourceRanges(t *testing.T) {
	seed := uint64(42)
	src := NewRandomSource(&seed)
	for i := 0; i < 1000; i++ {
		d := src.Delta()
		assert.GreaterOrEqual(t, d, -4.0)
		assert.Less(t, d, 4.0)
		b := src.Boost()
		assert.GreaterOrEqual(t, b, 0.0)
		assert.Less(t, b, 5.0)
	}
}
