package api

import (
	"encoding/json"
	"net/http"

	"github.com/dgallion1/doctex/internal/abbrev"
	"github.com/dgallion1/doctex/internal/doctree"
)

type abbreviateRequest struct {
	Tree          *doctree.Node     `json:"tree"`
	Abbreviations map[string]string `json:"abbreviations"`
}

type abbreviateResponse struct {
	Tree          *doctree.Node `json:"tree"`
	Abbreviations int           `json:"abbreviations"`
}

// handleAbbreviate marks abbreviations in a posted tree and returns it. The
// server's default abbreviations apply underneath the request's own.
func (s *Server) handleAbbreviate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req abbreviateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Tree == nil {
		jsonError(w, "tree is required", http.StatusBadRequest)
		return
	}
	if err := doctree.Validate(req.Tree); err != nil {
		jsonError(w, "invalid tree: "+err.Error(), http.StatusBadRequest)
		return
	}

	cfg := abbrev.Merge(s.orchestrator.Renderer().Abbreviations, req.Abbreviations)
	abbrev.Transform(req.Tree, cfg)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(abbreviateResponse{
		Tree:          req.Tree,
		Abbreviations: len(doctree.SelectAll(req.Tree, doctree.KindAbbreviation)),
	})
}
