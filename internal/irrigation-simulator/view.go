package irrigation_simulator

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Factory builds a fresh simulator for each mount.
type Factory func() *Simulator

// View is the soil-moisture page: mounting creates and starts a simulator,
// unmounting stops it and discards its state.
type View struct {
	factory Factory
	logger  logrus.FieldLogger

	mu  sync.RWMutex
	sim *Simulator
}

func NewView(factory Factory, logger logrus.FieldLogger) *View {
	return &View{factory: factory, logger: logger.WithField("view", "soil-moisture")}
}

func (v *View) Mount(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.sim != nil {
		return nil
	}
	sim := v.factory()
	if err := sim.Start(ctx); err != nil {
		return err
	}
	v.sim = sim
	v.logger.Debug("mounted")
	return nil
}

func (v *View) Unmount() {
	v.mu.Lock()
	sim := v.sim
	v.sim = nil
	v.mu.Unlock()

	if sim != nil {
		sim.Stop()
		v.logger.Debug("unmounted")
	}
}

// Simulator returns the mounted simulator; false when the view is not mounted.
func (v *View) Simulator() (*Simulator, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.sim, v.sim != nil
}
