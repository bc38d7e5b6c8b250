package contact

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// View is the contact page; each mount starts from an empty form.
type View struct {
	relay      Relay
	successFor time.Duration
	logger     logrus.FieldLogger

	mu   sync.RWMutex
	form *Form
}

func NewView(relay Relay, successFor time.Duration, logger logrus.FieldLogger) *View {
	return &View{relay: relay, successFor: successFor, logger: logger}
}

func (v *View) Mount(context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.form == nil {
		v.form = NewForm(v.relay, v.successFor, v.logger)
	}
	return nil
}

func (v *View) Unmount() {
	v.mu.Lock()
	f := v.form
	v.form = nil
	v.mu.Unlock()
	if f != nil {
		f.Close()
	}
}

func (v *View) Form() (*Form, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.form, v.form != nil
}
