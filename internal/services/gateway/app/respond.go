package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	irrigation_simulator "github.com/LeonardoBeccarini/farmassist/internal/irrigation-simulator"
	"github.com/LeonardoBeccarini/farmassist/internal/services/contact"
	"github.com/LeonardoBeccarini/farmassist/internal/services/dashboard"
	"github.com/LeonardoBeccarini/farmassist/internal/services/disease"
	"github.com/LeonardoBeccarini/farmassist/internal/services/navigation"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps domain errors to HTTP codes: validation 400, state conflicts 409,
// relay failures 502.
func statusFor(err error) int {
	switch {
	case errors.Is(err, irrigation_simulator.ErrThresholdRange),
		errors.Is(err, disease.ErrNotImage),
		errors.Is(err, dashboard.ErrInvalidRecord),
		errors.Is(err, dashboard.ErrUnknownTab),
		errors.Is(err, contact.ErrInvalidForm),
		errors.Is(err, navigation.ErrUnknownRoute),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, disease.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, disease.ErrNotFound),
		errors.Is(err, dashboard.ErrUnknownAction):
		return http.StatusNotFound
	case errors.Is(err, irrigation_simulator.ErrAutoMode),
		errors.Is(err, irrigation_simulator.ErrBusy),
		errors.Is(err, irrigation_simulator.ErrStopped),
		errors.Is(err, disease.ErrStopped),
		errors.Is(err, dashboard.ErrStopped),
		errors.Is(err, contact.ErrClosed),
		errors.Is(err, errNotMounted):
		return http.StatusConflict
	case errors.Is(err, contact.ErrSendFailed):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (g *Gateway) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		g.logger.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	writeError(w, status, err.Error())
}

var errBadRequest = errors.New("bad request")

const maxJSONBody = 1 << 20

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}
