package app

import (
	"errors"
	"net/http"

	"github.com/LeonardoBeccarini/farmassist/internal/model"
	"github.com/LeonardoBeccarini/farmassist/internal/services/contact"
)

func (g *Gateway) HandleContactState(w http.ResponseWriter, r *http.Request) {
	f, err := g.acquireForm()
	if err != nil {
		g.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f.State())
}

// HandleContactSubmit fills the form with the body and sends it. The response
// always carries the form state; on relay failure it holds the error message.
func (g *Gateway) HandleContactSubmit(w http.ResponseWriter, r *http.Request) {
	var msg model.ContactMessage
	if err := decodeJSON(r, &msg); err != nil {
		g.fail(w, r, err)
		return
	}
	f, err := g.acquireForm()
	if err != nil {
		g.fail(w, r, err)
		return
	}
	f.SetFields(msg)

	err = f.Submit(r.Context())
	g.observeContact(err)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, f.State())
	case errors.Is(err, contact.ErrSendFailed):
		g.logger.WithError(err).Warn("contact relay failed")
		writeJSON(w, statusFor(err), f.State())
	default:
		g.fail(w, r, err)
	}
}

func (g *Gateway) observeContact(err error) {
	if g.cfg.Metrics == nil {
		return
	}
	result := "sent"
	switch {
	case errors.Is(err, contact.ErrInvalidForm):
		result = "invalid"
	case err != nil:
		result = "failed"
	}
	g.cfg.Metrics.ContactResults.WithLabelValues(result).Inc()
}
