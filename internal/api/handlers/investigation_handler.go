package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/veriscope/modelaudit/internal/api/middleware"
	"github.com/veriscope/modelaudit/internal/investigation"
)

// InvestigationHandler handles run-trigger endpoints
type InvestigationHandler struct {
	orchestrator *investigation.Orchestrator
}

// NewInvestigationHandler creates a new investigation handler
func NewInvestigationHandler(orchestrator *investigation.Orchestrator) *InvestigationHandler {
	return &InvestigationHandler{
		orchestrator: orchestrator,
	}
}

type startInvestigationRequest struct {
	ModelName string `json:"model_name"`
	Vendor    string `json:"vendor"`
}

// StartInvestigation handles POST /api/investigations
func (h *InvestigationHandler) StartInvestigation(w http.ResponseWriter, r *http.Request) {
	var req startInvestigationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	createdBy := middleware.UsernameFromContext(r.Context())

	assessment, err := h.orchestrator.Start(r.Context(), req.ModelName, req.Vendor, createdBy)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	log.Info().
		Str("assessment_id", assessment.ID).
		Str("model", assessment.ModelName).
		Str("created_by", createdBy).
		Msg("investigation accepted")

	respondWithJSON(w, http.StatusAccepted, map[string]string{
		"assessment_id": assessment.ID,
		"status":        "started",
	})
}
