package app

import (
	"net/http"

	"github.com/LeonardoBeccarini/farmassist/internal/services/dashboard"
)

type tabRequest struct {
	Tab string `json:"tab"`
}

type recordResponse struct {
	Message string `json:"message"`
	Record  any    `json:"record"`
}

func (g *Gateway) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := g.acquireDashboard()
	if err != nil {
		g.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d.Panel())
}

func (g *Gateway) HandleSetTab(w http.ResponseWriter, r *http.Request) {
	var req tabRequest
	if err := decodeJSON(r, &req); err != nil {
		g.fail(w, r, err)
		return
	}
	d, err := g.acquireDashboard()
	if err != nil {
		g.fail(w, r, err)
		return
	}
	if err := d.SetTab(req.Tab); err != nil {
		g.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d.Panel())
}

func (g *Gateway) HandleAddRecord(w http.ResponseWriter, r *http.Request) {
	var in dashboard.RecordInput
	if err := decodeJSON(r, &in); err != nil {
		g.fail(w, r, err)
		return
	}
	d, err := g.acquireDashboard()
	if err != nil {
		g.fail(w, r, err)
		return
	}
	rec, err := d.AddRecord(r.Context(), in)
	if err != nil {
		g.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, recordResponse{Message: "Crop record added successfully!", Record: rec})
}

func (g *Gateway) HandleQuickAction(w http.ResponseWriter, r *http.Request) {
	d, err := g.acquireDashboard()
	if err != nil {
		g.fail(w, r, err)
		return
	}
	res, err := d.QuickAction(r.PathValue("action"))
	if err != nil {
		g.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
