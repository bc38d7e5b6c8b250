package irrigation_simulator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/LeonardoBeccarini/farmassist/internal/model"
	"github.com/LeonardoBeccarini/farmassist/internal/model/entities"
)

var (
	ErrAutoMode       = errors.New("pump is under automatic control")
	ErrBusy           = errors.New("pump toggle already in progress")
	ErrThresholdRange = fmt.Errorf("threshold must be within [%.0f, %.0f]", entities.MinThreshold, entities.MaxThreshold)
	ErrStopped        = errors.New("simulator stopped")
	ErrStarted        = errors.New("simulator already started")
)

// Listener receives the snapshot produced by every tick.
type Listener func(model.MoistureSnapshot)

type Options struct {
	FieldID       string
	SensorID      string
	TickInterval  time.Duration
	ToggleDelay   time.Duration
	InitialLevel  float64
	Threshold     float64
	AutoMode      bool
	HistorySize   int
	SummaryWindow int
	// SeedHistory pre-fills the history with mock entries.
	SeedHistory bool
	Source      MoistureSource
	Now         func() time.Time
	Logger      logrus.FieldLogger
}

// DefaultOptions mirrors the state a freshly opened soil-moisture page starts from.
func DefaultOptions() Options {
	st := entities.DefaultMoistureState()
	return Options{
		FieldID:       "field1",
		SensorID:      "sensor1",
		TickInterval:  3 * time.Second,
		ToggleDelay:   time.Second,
		InitialLevel:  st.Level,
		Threshold:     st.Threshold,
		AutoMode:      st.AutoMode,
		HistorySize:   10,
		SummaryWindow: 20,
		SeedHistory:   true,
	}
}

// Simulator è la macchina a stati dell'umidità del suolo: tick periodico,
// logica automatica della pompa e toggle manuale ritardato.
type Simulator struct {
	mu      sync.Mutex
	opts    Options
	state   entities.MoistureState
	busy    bool
	history *History
	window  *window
	source  MoistureSource
	now     func() time.Time
	logger  logrus.FieldLogger

	listeners []Listener

	toggleTimer *time.Timer
	toggleGen   uint64

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	stopped bool
}

func NewSimulator(opts Options) *Simulator {
	if opts.Source == nil {
		opts.Source = NewRandomSource(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = 3 * time.Second
	}
	if math.IsNaN(opts.InitialLevel) || math.IsInf(opts.InitialLevel, 0) {
		opts.InitialLevel = entities.InitialLevel
	}

	s := &Simulator{
		opts: opts,
		state: entities.MoistureState{
			Level:     round1(clampLevel(opts.InitialLevel)),
			AutoMode:  opts.AutoMode,
			Threshold: opts.Threshold,
		},
		history: NewHistory(opts.HistorySize),
		window:  newWindow(opts.SummaryWindow),
		source:  opts.Source,
		now:     opts.Now,
		logger: opts.Logger.WithFields(logrus.Fields{
			"field_id":  opts.FieldID,
			"sensor_id": opts.SensorID,
		}),
	}
	if opts.SeedHistory {
		ints, ok := opts.Source.(IntSource)
		if !ok {
			ints = NewRandomSource(nil)
		}
		seed := SeedHistory(s.now(), ints)
		for i := len(seed) - 1; i >= 0; i-- {
			s.history.Prepend(seed[i])
		}
	}
	return s
}

// OnTick registers l; must be called before Start.
func (s *Simulator) OnTick(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Start avvia il ticker in una goroutine posseduta dal simulatore.
func (s *Simulator) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return ErrStarted
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run(ctx)

	s.logger.WithField("interval", s.opts.TickInterval).Info("simulator started")
	return nil
}

func (s *Simulator) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Stop cancella il ticker e l'eventuale toggle in attesa; idempotente.
func (s *Simulator) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	if s.cancel != nil {
		s.cancel()
	}
	s.cancelToggleLocked()
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("simulator stopped")
}

// Tick advances the state by one step. After Stop it only reports the last state.
func (s *Simulator) Tick() model.MoistureSnapshot {
	s.mu.Lock()
	if s.stopped {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}

	delta := s.source.Delta()
	if s.state.PumpOn {
		delta += s.source.Boost()
	}
	level := clampLevel(s.state.Level + delta)

	if s.state.AutoMode {
		switch {
		case level < s.state.Threshold && !s.state.PumpOn:
			s.state.PumpOn = true
			s.logger.WithField("level", level).Debug("auto: pump on")
		case level > s.state.Threshold+entities.AutoOffMargin && s.state.PumpOn:
			s.state.PumpOn = false
			s.logger.WithField("level", level).Debug("auto: pump off")
		}
	}
	s.state.Level = round1(level)
	s.window.add(s.state.Level, s.state.PumpOn)

	snap := s.snapshotLocked()
	listeners := s.listeners
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
	return snap
}

// TogglePump schedules a manual flip after ToggleDelay.
// In auto mode, or while a flip is pending, nothing changes.
func (s *Simulator) TogglePump() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.stopped:
		return ErrStopped
	case s.state.AutoMode:
		return ErrAutoMode
	case s.busy:
		return ErrBusy
	}

	s.busy = true
	s.toggleGen++
	gen := s.toggleGen
	s.toggleTimer = time.AfterFunc(s.opts.ToggleDelay, func() { s.completeToggle(gen) })
	return nil
}

func (s *Simulator) completeToggle(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// un toggle annullato (Stop o passaggio in auto) non deve toccare lo stato
	if s.stopped || gen != s.toggleGen || !s.busy {
		return
	}
	s.state.PumpOn = !s.state.PumpOn
	s.busy = false
	s.toggleTimer = nil
	s.history.Prepend(manualEntry(s.now(), s.state.PumpOn))
	s.logger.WithField("pump", s.state.Pump()).Info("manual toggle applied")
}

func (s *Simulator) cancelToggleLocked() {
	if s.toggleTimer != nil {
		s.toggleTimer.Stop()
		s.toggleTimer = nil
	}
	s.toggleGen++
	s.busy = false
}

// ToggleAutoMode flips auto mode. Entering auto drops any pending manual flip
// and sets the pump from the current level.
func (s *Simulator) ToggleAutoMode() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrStopped
	}

	s.state.AutoMode = !s.state.AutoMode
	if s.state.AutoMode {
		if s.busy {
			s.cancelToggleLocked()
		}
		s.state.PumpOn = s.state.Level < s.state.Threshold
	}
	s.logger.WithFields(logrus.Fields{
		"auto_mode": s.state.AutoMode,
		"pump":      s.state.Pump(),
	}).Info("auto mode toggled")
	return nil
}

// SetThreshold accepts values in [20, 60]; the next tick uses it.
func (s *Simulator) SetThreshold(t float64) error {
	if math.IsNaN(t) || math.IsInf(t, 0) || t < entities.MinThreshold || t > entities.MaxThreshold {
		return fmt.Errorf("%w: got %.1f", ErrThresholdRange, t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrStopped
	}
	s.state.Threshold = t
	return nil
}

func (s *Simulator) State() entities.MoistureState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Busy reports whether a manual toggle is pending ("Processing...").
func (s *Simulator) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *Simulator) Snapshot() model.MoistureSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Simulator) snapshotLocked() model.MoistureSnapshot {
	return model.MoistureSnapshot{
		FieldID:   s.opts.FieldID,
		SensorID:  s.opts.SensorID,
		Level:     s.state.Level,
		PumpOn:    s.state.PumpOn,
		AutoMode:  s.state.AutoMode,
		Threshold: s.state.Threshold,
		Status:    entities.StatusFor(s.state.Level),
		Busy:      s.busy,
		Timestamp: s.now(),
	}
}

func (s *Simulator) History() []model.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries()
}

// Summary returns statistics over the last SummaryWindow ticks.
func (s *Simulator) Summary() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.stats()
}

// WeeklyChart returns a fresh mock 7-day series.
func (s *Simulator) WeeklyChart() []model.DailyPoint {
	ints, ok := s.source.(IntSource)
	if !ok {
		ints = NewRandomSource(nil)
	}
	return WeeklySeries(s.now(), ints)
}

func (s *Simulator) FieldID() string  { return s.opts.FieldID }
func (s *Simulator) SensorID() string { return s.opts.SensorID }
