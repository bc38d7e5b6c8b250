package navigation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var ErrUnknownRoute = errors.New("unknown route")

// View owns the state of one page while it is displayed.
type View interface {
	Mount(ctx context.Context) error
	Unmount()
}

// Navigator tracks the current page and mounts/unmounts its view.
type Navigator struct {
	ctx    context.Context
	logger logrus.FieldLogger

	mu      sync.Mutex
	current string
	views   map[string]View
}

// NewNavigator starts on "/"; views are mounted with ctx as parent.
func NewNavigator(ctx context.Context, logger logrus.FieldLogger) *Navigator {
	return &Navigator{
		ctx:     ctx,
		logger:  logger.WithField("component", "navigator"),
		current: PathHome,
		views:   make(map[string]View),
	}
}

func (n *Navigator) Register(path string, v View) error {
	path = normalize(path)
	if !known(path) {
		return fmt.Errorf("%w: %s", ErrUnknownRoute, path)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.views[path] = v
	return nil
}

func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Navigate unmounts the current view and mounts the one at path.
// Navigating to the current path is a no-op.
func (n *Navigator) Navigate(path string) error {
	path = normalize(path)
	if !known(path) {
		return fmt.Errorf("%w: %s", ErrUnknownRoute, path)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if path == n.current {
		return nil
	}

	prev := n.current
	if v, ok := n.views[prev]; ok {
		v.Unmount()
	}
	if v, ok := n.views[path]; ok {
		if err := v.Mount(n.ctx); err != nil {
			// rimane sulla pagina precedente
			if old, ok := n.views[prev]; ok {
				if rerr := old.Mount(n.ctx); rerr != nil {
					n.logger.WithError(rerr).WithField("path", prev).Error("remount failed")
				}
			}
			return fmt.Errorf("mount %s: %w", path, err)
		}
	}
	n.current = path
	n.logger.WithFields(logrus.Fields{"from": prev, "to": path}).Info("navigated")
	return nil
}

// Close unmounts the current view.
func (n *Navigator) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if v, ok := n.views[n.current]; ok {
		v.Unmount()
	}
}

func normalize(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return PathHome
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
