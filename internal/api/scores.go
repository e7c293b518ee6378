package api

import (
	"net/http"

	"github.com/nodesafety/safetyscore/pkg/scoring"
)

func (h *Handler) handleSafetyScores(w http.ResponseWriter, r *http.Request) {
	rep := h.reports.Build(r.Context())
	writeJSON(w, http.StatusOK, rep)
}

// RulesResponse lists the active rule table.
type RulesResponse struct {
	Version string                  `json:"version"`
	Rules   map[string]scoring.Rule `json:"rules"`
}

func (h *Handler) handleScoringRules(w http.ResponseWriter, r *http.Request) {
	rules := h.incidents.Rules()
	writeJSON(w, http.StatusOK, RulesResponse{
		Version: rules.Version(),
		Rules:   rules.Rules(),
	})
}
