package handlers

import (
	"net/http"

	"github.com/veriscope/modelaudit/internal/domain/repositories"
)

// CriteriaHandler handles catalog read endpoints
type CriteriaHandler struct {
	criteriaRepo repositories.CriterionRepository
}

// NewCriteriaHandler creates a new criteria handler
func NewCriteriaHandler(criteriaRepo repositories.CriterionRepository) *CriteriaHandler {
	return &CriteriaHandler{
		criteriaRepo: criteriaRepo,
	}
}

// ListCriteria handles GET /api/criteria
func (h *CriteriaHandler) ListCriteria(w http.ResponseWriter, r *http.Request) {
	criteria, err := h.criteriaRepo.List(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list criteria")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"criteria": criteria,
		"count":    len(criteria),
	})
}
