package app

import (
	"net/http"

	"github.com/LeonardoBeccarini/farmassist/internal/services/navigation"
)

type navigateRequest struct {
	Path string `json:"path"`
}

type currentResponse struct {
	Path string `json:"path"`
}

func (g *Gateway) HandleRoutes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, navigation.Routes())
}

func (g *Gateway) HandleCurrent(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, currentResponse{Path: g.cfg.Navigator.Current()})
}

func (g *Gateway) HandleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := decodeJSON(r, &req); err != nil {
		g.fail(w, r, err)
		return
	}
	if err := g.enter(req.Path); err != nil {
		g.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, currentResponse{Path: g.cfg.Navigator.Current()})
}
