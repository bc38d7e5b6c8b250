package dashboard

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// View is the dashboard page; every mount starts a fresh Dashboard.
type View struct {
	opts   Options
	logger logrus.FieldLogger

	mu   sync.RWMutex
	dash *Dashboard
}

func NewView(opts Options, logger logrus.FieldLogger) *View {
	if opts.Logger == nil {
		opts.Logger = logger
	}
	return &View{opts: opts, logger: logger.WithField("view", "dashboard")}
}

func (v *View) Mount(context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.dash != nil {
		return nil
	}
	d := New(v.opts)
	if err := d.Start(); err != nil {
		d.Stop()
		return err
	}
	v.dash = d
	return nil
}

func (v *View) Unmount() {
	v.mu.Lock()
	d := v.dash
	v.dash = nil
	v.mu.Unlock()
	if d != nil {
		d.Stop()
	}
}

func (v *View) Dashboard() (*Dashboard, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.dash, v.dash != nil
}
