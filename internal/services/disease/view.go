package disease

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// View is the crop-disease page; each mount gets a fresh Analyzer.
type View struct {
	opts   Options
	logger logrus.FieldLogger

	mu       sync.RWMutex
	analyzer *Analyzer
}

func NewView(opts Options, logger logrus.FieldLogger) *View {
	if opts.Logger == nil {
		opts.Logger = logger
	}
	return &View{opts: opts, logger: logger.WithField("view", "crop-disease")}
}

func (v *View) Mount(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.analyzer != nil {
		return nil
	}
	a, err := NewAnalyzer(ctx, v.opts)
	if err != nil {
		return err
	}
	v.analyzer = a
	v.logger.Debug("mounted")
	return nil
}

func (v *View) Unmount() {
	v.mu.Lock()
	a := v.analyzer
	v.analyzer = nil
	v.mu.Unlock()
	if a != nil {
		a.Stop()
		v.logger.Debug("unmounted")
	}
}

func (v *View) Analyzer() (*Analyzer, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.analyzer, v.analyzer != nil
}
