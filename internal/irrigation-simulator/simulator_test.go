package irrigation_simulator

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/LeonardoBeccarini/farmassist/internal/model"
	"github.com/LeonardoBeccarini/farmassist/internal/model/entities"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeSource replays queued deltas and boosts; empty queues yield 0.
type fakeSource struct {
	mu     sync.Mutex
	deltas []float64
	boosts []float64
	n      int
}

func (f *fakeSource) Delta() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.deltas) == 0 {
		return 0
	}
	d := f.deltas[0]
	f.deltas = f.deltas[1:]
	return d
}

func (f *fakeSource) Boost() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.boosts) == 0 {
		return 0
	}
	b := f.boosts[0]
	f.boosts = f.boosts[1:]
	return b
}

func (f *fakeSource) IntN(n int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	return f.n % n
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestSimulator(t *testing.T, src *fakeSource, mutate func(*Options)) *Simulator {
	t.Helper()
	logger, _ := test.NewNullLogger()
	opts := DefaultOptions()
	opts.Source = src
	opts.ToggleDelay = 10 * time.Millisecond
	opts.Now = func() time.Time { return fixedNow }
	opts.Logger = logger
	if mutate != nil {
		mutate(&opts)
	}
	sim := NewSimulator(opts)
	t.Cleanup(sim.Stop)
	return sim
}

func TestInitialState(t *testing.T) {
	sim := newTestSimulator(t, &fakeSource{}, nil)

	st := sim.State()
	assert.Equal(t, 45.0, st.Level)
	assert.Equal(t, 30.0, st.Threshold)
	assert.True(t, st.AutoMode)
	assert.False(t, st.PumpOn)
	assert.False(t, sim.Busy())
	assert.Len(t, sim.History(), 10)
}

func TestTickClampsLevel(t *testing.T) {
	tests := []struct {
		name  string
		start float64
		delta float64
		want  float64
	}{
		{"upper bound", 78, 4, 80},
		{"lower bound", 22, -4, 20},
		{"inside", 50, -3.3, 46.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := newTestSimulator(t, &fakeSource{deltas: []float64{tt.delta}}, func(o *Options) {
				o.InitialLevel = tt.start
				o.AutoMode = false
			})
			snap := sim.Tick()
			assert.Equal(t, tt.want, snap.Level)
			assert.GreaterOrEqual(t, snap.Level, entities.MinLevel)
			assert.LessOrEqual(t, snap.Level, entities.MaxLevel)
		})
	}
}

func TestTickNeverLeavesBounds(t *testing.T) {
	sim := newTestSimulator(t, &fakeSource{}, func(o *Options) { o.Source = NewRandomSource(nil) })
	for i := 0; i < 2000; i++ {
		snap := sim.Tick()
		require.GreaterOrEqual(t, snap.Level, entities.MinLevel)
		require.LessOrEqual(t, snap.Level, entities.MaxLevel)
	}
}

func TestTickRoundsToOneDecimal(t *testing.T) {
	sim := newTestSimulator(t, &fakeSource{deltas: []float64{0.04, 0.06}}, nil)
	assert.Equal(t, 45.0, sim.Tick().Level)
	assert.Equal(t, 45.1, sim.Tick().Level)
}

func TestTickAddsBoostOnlyWhilePumpRuns(t *testing.T) {
	src := &fakeSource{deltas: []float64{1, 1}, boosts: []float64{3, 3}}
	sim := newTestSimulator(t, src, func(o *Options) { o.AutoMode = false })

	assert.Equal(t, 46.0, sim.Tick().Level)

	require.NoError(t, sim.TogglePump())
	require.Eventually(t, func() bool { return sim.State().PumpOn }, time.Second, time.Millisecond)
	assert.Equal(t, 50.0, sim.Tick().Level)
}

func TestAutoModeTurnsPumpOnBelowThreshold(t *testing.T) {
	sim := newTestSimulator(t, &fakeSource{deltas: []float64{-2}}, func(o *Options) { o.InitialLevel = 31 })

	snap := sim.Tick()
	assert.Equal(t, 29.0, snap.Level)
	assert.True(t, snap.PumpOn)
}

func TestAutoModeTurnsPumpOffAboveThresholdPlusMargin(t *testing.T) {
	src := &fakeSource{deltas: []float64{-2, 1}, boosts: []float64{14.5}}
	sim := newTestSimulator(t, src, func(o *Options) { o.InitialLevel = 31 })

	require.True(t, sim.Tick().PumpOn) // 29
	snap := sim.Tick()                 // 29 + 1 + 14.5
	assert.Equal(t, 44.5, snap.Level)
	assert.True(t, snap.PumpOn, "44.5 is not above 30+15")

	src.deltas = []float64{1}
	snap = sim.Tick()
	assert.Equal(t, 45.5, snap.Level)
	assert.False(t, snap.PumpOn)
}

func TestDefaultScenarioDriesUntilPumpStarts(t *testing.T) {
	src := &fakeSource{deltas: []float64{-4, -4, -4, -4}}
	sim := newTestSimulator(t, src, nil)

	var levels []float64
	var pumps []bool
	for i := 0; i < 4; i++ {
		snap := sim.Tick()
		levels = append(levels, snap.Level)
		pumps = append(pumps, snap.PumpOn)
	}
	assert.Equal(t, []float64{41, 37, 33, 29}, levels)
	assert.Equal(t, []bool{false, false, false, true}, pumps)
	assert.Equal(t, entities.StatusCritical, sim.Snapshot().Status)
}

func TestTogglePumpIgnoredInAutoMode(t *testing.T) {
	sim := newTestSimulator(t, &fakeSource{}, nil)
	before := sim.History()

	assert.ErrorIs(t, sim.TogglePump(), ErrAutoMode)
	assert.False(t, sim.Busy())

	time.Sleep(30 * time.Millisecond)
	assert.False(t, sim.State().PumpOn)
	assert.Equal(t, before, sim.History())
}

func TestTogglePumpManual(t *testing.T) {
	sim := newTestSimulator(t, &fakeSource{}, func(o *Options) { o.AutoMode = false })

	require.NoError(t, sim.TogglePump())
	assert.True(t, sim.Busy())
	assert.True(t, sim.Snapshot().Busy)
	assert.ErrorIs(t, sim.TogglePump(), ErrBusy)

	require.Eventually(t, func() bool { return !sim.Busy() }, time.Second, time.Millisecond)
	assert.True(t, sim.State().PumpOn)

	h := sim.History()
	require.Len(t, h, 10)
	assert.Equal(t, entities.HistoryStarted, h[0].Status)
	assert.Equal(t, "Manual Start", h[0].Duration)
	assert.Equal(t, "0L", h[0].WaterUsed)

	require.NoError(t, sim.TogglePump())
	require.Eventually(t, func() bool { return !sim.Busy() }, time.Second, time.Millisecond)
	assert.False(t, sim.State().PumpOn)

	h = sim.History()
	require.Len(t, h, 10)
	assert.Equal(t, entities.HistoryStopped, h[0].Status)
	assert.Equal(t, "0 min", h[0].Duration)
	assert.Equal(t, entities.HistoryStarted, h[1].Status)
}

func TestHistoryCapKeepsNewestFirst(t *testing.T) {
	sim := newTestSimulator(t, &fakeSource{}, func(o *Options) { o.AutoMode = false })
	seeded := sim.History()

	for i := 0; i < 3; i++ {
		require.NoError(t, sim.TogglePump())
		require.Eventually(t, func() bool { return !sim.Busy() }, time.Second, time.Millisecond)
	}

	h := sim.History()
	require.Len(t, h, 10)
	assert.Equal(t, entities.HistoryStarted, h[0].Status)
	assert.Equal(t, entities.HistoryStopped, h[1].Status)
	assert.Equal(t, entities.HistoryStarted, h[2].Status)
	// the seven newest seeded entries survive, the three oldest are dropped
	assert.Equal(t, seeded[:7], h[3:])
}

func TestToggleAutoMode(t *testing.T) {
	t.Run("entering auto evaluates the pump", func(t *testing.T) {
		sim := newTestSimulator(t, &fakeSource{}, func(o *Options) {
			o.AutoMode = false
			o.InitialLevel = 25
		})
		require.NoError(t, sim.ToggleAutoMode())
		st := sim.State()
		assert.True(t, st.AutoMode)
		assert.True(t, st.PumpOn)
	})

	t.Run("entering auto above threshold stops the pump", func(t *testing.T) {
		sim := newTestSimulator(t, &fakeSource{}, func(o *Options) { o.AutoMode = false })
		require.NoError(t, sim.TogglePump())
		require.Eventually(t, func() bool { return sim.State().PumpOn }, time.Second, time.Millisecond)

		require.NoError(t, sim.ToggleAutoMode())
		assert.False(t, sim.State().PumpOn)
	})

	t.Run("leaving auto keeps the pump", func(t *testing.T) {
		sim := newTestSimulator(t, &fakeSource{deltas: []float64{-20}}, nil)
		require.True(t, sim.Tick().PumpOn)

		require.NoError(t, sim.ToggleAutoMode())
		st := sim.State()
		assert.False(t, st.AutoMode)
		assert.True(t, st.PumpOn)
	})

	t.Run("entering auto drops a pending manual toggle", func(t *testing.T) {
		sim := newTestSimulator(t, &fakeSource{}, func(o *Options) {
			o.AutoMode = false
			o.ToggleDelay = 20 * time.Millisecond
		})
		before := sim.History()
		require.NoError(t, sim.TogglePump())
		require.NoError(t, sim.ToggleAutoMode())
		assert.False(t, sim.Busy())

		time.Sleep(60 * time.Millisecond)
		assert.False(t, sim.State().PumpOn)
		assert.Equal(t, before, sim.History())
	})
}

func TestSetThreshold(t *testing.T) {
	sim := newTestSimulator(t, &fakeSource{}, nil)

	require.NoError(t, sim.SetThreshold(20))
	require.NoError(t, sim.SetThreshold(60))
	assert.Equal(t, 60.0, sim.State().Threshold)

	assert.ErrorIs(t, sim.SetThreshold(19.9), ErrThresholdRange)
	assert.ErrorIs(t, sim.SetThreshold(61), ErrThresholdRange)
	assert.Equal(t, 60.0, sim.State().Threshold)

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.ErrorIs(t, sim.SetThreshold(bad), ErrThresholdRange)
	}
	assert.Equal(t, 60.0, sim.State().Threshold)
}

func TestNonFiniteThresholdKeepsAutoModeWorking(t *testing.T) {
	src := &fakeSource{}
	sim := newTestSimulator(t, src, nil)
	require.Error(t, sim.SetThreshold(math.NaN()))

	src.deltas = []float64{-30}
	snap := sim.Tick()
	assert.Equal(t, entities.MinLevel, snap.Level)
	assert.True(t, snap.PumpOn)
}

func TestNonFiniteInitialLevelFallsBack(t *testing.T) {
	sim := newTestSimulator(t, &fakeSource{}, func(o *Options) { o.InitialLevel = math.NaN() })
	assert.Equal(t, entities.InitialLevel, sim.State().Level)
}

func TestStartTicksAndNotifiesListeners(t *testing.T) {
	sim := newTestSimulator(t, &fakeSource{}, func(o *Options) { o.TickInterval = 5 * time.Millisecond })

	got := make(chan model.MoistureSnapshot, 16)
	sim.OnTick(func(s model.MoistureSnapshot) {
		select {
		case got <- s:
		default:
		}
	})

	require.NoError(t, sim.Start(context.Background()))
	assert.ErrorIs(t, sim.Start(context.Background()), ErrStarted)

	select {
	case snap := <-got:
		assert.Equal(t, "field1", snap.FieldID)
	case <-time.After(time.Second):
		t.Fatal("no tick received")
	}

	sim.Stop()
	sim.Stop()
	assert.ErrorIs(t, sim.Start(context.Background()), ErrStopped)
}

func TestStopCancelsPendingToggle(t *testing.T) {
	sim := newTestSimulator(t, &fakeSource{}, func(o *Options) {
		o.AutoMode = false
		o.ToggleDelay = 20 * time.Millisecond
	})
	require.NoError(t, sim.Start(context.Background()))
	require.NoError(t, sim.TogglePump())

	sim.Stop()
	time.Sleep(60 * time.Millisecond)

	assert.False(t, sim.State().PumpOn)
	assert.False(t, sim.Busy())
	assert.ErrorIs(t, sim.TogglePump(), ErrStopped)
	assert.ErrorIs(t, sim.ToggleAutoMode(), ErrStopped)

	level := sim.State().Level
	sim.Tick()
	assert.Equal(t, level, sim.State().Level)
}

func TestSummaryWindow(t *testing.T) {
	src := &fakeSource{deltas: []float64{1, 1, 1, 1}}
	sim := newTestSimulator(t, src, func(o *Options) {
		o.AutoMode = false
		o.SummaryWindow = 3
	})

	assert.Equal(t, Stats{}, sim.Summary())
	for i := 0; i < 4; i++ {
		sim.Tick()
	}
	st := sim.Summary()
	assert.Equal(t, 3, st.Samples)
	assert.Equal(t, 47.0, st.Min)
	assert.Equal(t, 49.0, st.Max)
	assert.Equal(t, 48.0, st.Mean)
	assert.Equal(t, 0.0, st.PumpOnPct)
}
