package app

import (
	"net/http"

	irrigation_simulator "github.com/LeonardoBeccarini/farmassist/internal/irrigation-simulator"
	"github.com/LeonardoBeccarini/farmassist/internal/model"
)

type soilResponse struct {
	model.MoistureSnapshot
	Summary irrigation_simulator.Stats `json:"summary"`
}

type thresholdRequest struct {
	Threshold *float64 `json:"threshold"`
}

func (g *Gateway) soilState(sim *irrigation_simulator.Simulator) soilResponse {
	return soilResponse{MoistureSnapshot: sim.Snapshot(), Summary: sim.Summary()}
}

func (g *Gateway) observeCommand(command string, err error) {
	if g.cfg.Metrics != nil {
		g.cfg.Metrics.ObserveCommand(command, err)
	}
}

func (g *Gateway) HandleSoilState(w http.ResponseWriter, r *http.Request) {
	sim, err := g.AcquireSimulator()
	if err != nil {
		g.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g.soilState(sim))
}

// HandleTogglePump answers 202: the flip lands after the toggle delay.
func (g *Gateway) HandleTogglePump(w http.ResponseWriter, r *http.Request) {
	sim, err := g.AcquireSimulator()
	if err != nil {
		g.fail(w, r, err)
		return
	}
	err = sim.TogglePump()
	g.observeCommand("toggle_pump", err)
	if err != nil {
		g.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, g.soilState(sim))
}

func (g *Gateway) HandleToggleAutoMode(w http.ResponseWriter, r *http.Request) {
	sim, err := g.AcquireSimulator()
	if err != nil {
		g.fail(w, r, err)
		return
	}
	err = sim.ToggleAutoMode()
	g.observeCommand("toggle_auto", err)
	if err != nil {
		g.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g.soilState(sim))
}

func (g *Gateway) HandleSetThreshold(w http.ResponseWriter, r *http.Request) {
	var req thresholdRequest
	if err := decodeJSON(r, &req); err != nil {
		g.fail(w, r, err)
		return
	}
	if req.Threshold == nil {
		writeError(w, http.StatusBadRequest, "threshold is required")
		return
	}
	sim, err := g.AcquireSimulator()
	if err != nil {
		g.fail(w, r, err)
		return
	}
	err = sim.SetThreshold(*req.Threshold)
	g.observeCommand("set_threshold", err)
	if err != nil {
		g.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g.soilState(sim))
}

func (g *Gateway) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sim, err := g.AcquireSimulator()
	if err != nil {
		g.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sim.History())
}

func (g *Gateway) HandleChart(w http.ResponseWriter, r *http.Request) {
	sim, err := g.AcquireSimulator()
	if err != nil {
		g.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sim.WeeklyChart())
}
