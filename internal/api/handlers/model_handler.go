package handlers

import (
	"net/http"

	"github.com/veriscope/modelaudit/internal/domain/repositories"
)

// ModelHandler handles model-related HTTP requests
type ModelHandler struct {
	modelRepo repositories.ModelRepository
}

// NewModelHandler creates a new model handler
func NewModelHandler(modelRepo repositories.ModelRepository) *ModelHandler {
	return &ModelHandler{
		modelRepo: modelRepo,
	}
}

// ListModels handles GET /api/admin/models
func (h *ModelHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.modelRepo.List(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list models")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"models": models,
		"count":  len(models),
	})
}

// GetModel handles GET /api/admin/models/{id}
func (h *ModelHandler) GetModel(w http.ResponseWriter, r *http.Request) {
	modelID := r.PathValue("id")
	if modelID == "" {
		respondWithError(w, http.StatusBadRequest, "model ID is required")
		return
	}

	model, err := h.modelRepo.GetByID(r.Context(), modelID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, model)
}

// DeleteModel handles DELETE /api/admin/models/{id}
func (h *ModelHandler) DeleteModel(w http.ResponseWriter, r *http.Request) {
	modelID := r.PathValue("id")
	if modelID == "" {
		respondWithError(w, http.StatusBadRequest, "model ID is required")
		return
	}

	if _, err := h.modelRepo.GetByID(r.Context(), modelID); err != nil {
		respondWithAppError(w, err)
		return
	}

	if err := h.modelRepo.Delete(r.Context(), modelID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to delete model")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"status": "deleted",
	})
}
