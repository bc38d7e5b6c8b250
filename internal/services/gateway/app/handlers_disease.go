package app

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/LeonardoBeccarini/farmassist/internal/services/disease"
)

const uploadField = "image"

func (g *Gateway) HandleDiseaseCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, disease.DefaultCatalog())
}

// HandleSubmitAnalysis accepts a multipart upload in the "image" field.
func (g *Gateway) HandleSubmitAnalysis(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, g.cfg.MaxUploadBytes+1<<20)
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			g.fail(w, r, disease.ErrTooLarge)
			return
		}
		g.fail(w, r, fmt.Errorf("%w: missing %q file: %v", errBadRequest, uploadField, err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, g.cfg.MaxUploadBytes+1))
	if err != nil {
		g.fail(w, r, fmt.Errorf("%w: read upload: %v", errBadRequest, err))
		return
	}
	if int64(len(data)) > g.cfg.MaxUploadBytes {
		g.fail(w, r, fmt.Errorf("%w: limit is %d bytes", disease.ErrTooLarge, g.cfg.MaxUploadBytes))
		return
	}

	a, err := g.acquireAnalyzer()
	if err != nil {
		g.fail(w, r, err)
		return
	}
	an, err := a.Submit(header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		g.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, an)
}

func (g *Gateway) HandleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := g.acquireAnalyzer()
	if err != nil {
		g.fail(w, r, err)
		return
	}
	an, err := a.Get(r.PathValue("id"))
	if err != nil {
		g.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, an)
}

func (g *Gateway) HandleAnalysisHistory(w http.ResponseWriter, r *http.Request) {
	a, err := g.acquireAnalyzer()
	if err != nil {
		g.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.History())
}

func (g *Gateway) HandleCurrentAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := g.acquireAnalyzer()
	if err != nil {
		g.fail(w, r, err)
		return
	}
	an, ok := a.Latest()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, an)
}

func (g *Gateway) HandleClearAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := g.acquireAnalyzer()
	if err != nil {
		g.fail(w, r, err)
		return
	}
	a.Clear()
	w.WriteHeader(http.StatusNoContent)
}
