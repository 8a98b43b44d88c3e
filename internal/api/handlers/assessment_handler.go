package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/veriscope/modelaudit/internal/api/middleware"
	"github.com/veriscope/modelaudit/internal/domain/entities"
	"github.com/veriscope/modelaudit/internal/domain/repositories"
)

// AssessmentHandler handles assessment retrieval and admin maintenance
type AssessmentHandler struct {
	assessmentRepo repositories.AssessmentRepository
	itemRepo       repositories.AssessmentItemRepository
	criteriaRepo   repositories.CriterionRepository
	progressRepo   repositories.ProgressRepository
	auditRepo      repositories.AuditLogRepository
}

// NewAssessmentHandler creates a new assessment handler
func NewAssessmentHandler(
	assessmentRepo repositories.AssessmentRepository,
	itemRepo repositories.AssessmentItemRepository,
	criteriaRepo repositories.CriterionRepository,
	progressRepo repositories.ProgressRepository,
	auditRepo repositories.AuditLogRepository,
) *AssessmentHandler {
	return &AssessmentHandler{
		assessmentRepo: assessmentRepo,
		itemRepo:       itemRepo,
		criteriaRepo:   criteriaRepo,
		progressRepo:   progressRepo,
		auditRepo:      auditRepo,
	}
}

// assessmentItemView is an item enriched with catalog metadata for display.
type assessmentItemView struct {
	entities.AssessmentItem
	CriterionName string `json:"criterion_name,omitempty"`
	Category      string `json:"category,omitempty"`
}

// ListAssessments handles GET /api/assessments
func (h *AssessmentHandler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	assessments, err := h.assessmentRepo.List(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list assessments")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"assessments": assessments,
		"count":       len(assessments),
	})
}

// GetAssessment handles GET /api/assessments/{id}
func (h *AssessmentHandler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	assessmentID := r.PathValue("id")
	if assessmentID == "" {
		respondWithError(w, http.StatusBadRequest, "assessment ID is required")
		return
	}

	assessment, err := h.assessmentRepo.GetByID(r.Context(), assessmentID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	items, err := h.itemRepo.ListByAssessment(r.Context(), assessmentID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to load assessment items")
		return
	}

	catalog, err := h.criteriaRepo.List(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to load criteria catalog")
		return
	}
	byID := make(map[string]entities.Criterion, len(catalog))
	for _, criterion := range catalog {
		byID[criterion.ID] = criterion
	}

	views := make([]assessmentItemView, 0, len(items))
	for _, item := range items {
		view := assessmentItemView{AssessmentItem: item}
		if criterion, ok := byID[item.CriterionID]; ok {
			view.CriterionName = criterion.Name
			view.Category = criterion.Category
		}
		views = append(views, view)
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"assessment": assessment,
		"items":      views,
	})
}

// DeleteAssessment handles DELETE /api/admin/assessments/{id}
func (h *AssessmentHandler) DeleteAssessment(w http.ResponseWriter, r *http.Request) {
	assessmentID := r.PathValue("id")
	if assessmentID == "" {
		respondWithError(w, http.StatusBadRequest, "assessment ID is required")
		return
	}

	if _, err := h.assessmentRepo.GetByID(r.Context(), assessmentID); err != nil {
		respondWithAppError(w, err)
		return
	}

	deleted, err := h.deleteAssessmentCascade(r, assessmentID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to delete assessment")
		return
	}

	h.recordAudit(r, "assessment_deleted", assessmentID, map[string]interface{}{
		"items_deleted": deleted,
	})

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "deleted",
		"items_deleted": deleted,
	})
}

// CleanupStaleAssessments handles DELETE /api/admin/assessments/stale.
// Keeps only the newest assessment per model name and deletes the rest.
func (h *AssessmentHandler) CleanupStaleAssessments(w http.ResponseWriter, r *http.Request) {
	assessments, err := h.assessmentRepo.List(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list assessments")
		return
	}

	// List is newest first, so the first assessment seen per model wins.
	newest := make(map[string]string, len(assessments))
	var stale []entities.Assessment
	for _, assessment := range assessments {
		if _, ok := newest[assessment.ModelName]; !ok {
			newest[assessment.ModelName] = assessment.ID
			continue
		}
		stale = append(stale, assessment)
	}

	deletedAssessments := 0
	deletedItems := 0
	for _, assessment := range stale {
		items, err := h.deleteAssessmentCascade(r, assessment.ID)
		if err != nil {
			log.Error().Err(err).Str("assessment_id", assessment.ID).Msg("failed to delete stale assessment")
			continue
		}
		deletedAssessments++
		deletedItems += items
	}

	h.recordAudit(r, "stale_assessments_cleaned", "", map[string]interface{}{
		"assessments_deleted": deletedAssessments,
		"items_deleted":       deletedItems,
	})

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"assessments_deleted": deletedAssessments,
		"items_deleted":       deletedItems,
		"models_kept":         len(newest),
	})
}

// deleteAssessmentCascade removes an assessment with its items and any
// leftover progress record, returning the number of items removed.
func (h *AssessmentHandler) deleteAssessmentCascade(r *http.Request, assessmentID string) (int, error) {
	ctx := r.Context()

	items, err := h.itemRepo.ListByAssessment(ctx, assessmentID)
	if err != nil {
		return 0, err
	}
	for _, item := range items {
		if err := h.itemRepo.Delete(ctx, item.ID); err != nil {
			return 0, err
		}
	}

	if err := h.progressRepo.Delete(ctx, assessmentID); err != nil {
		log.Warn().Err(err).Str("assessment_id", assessmentID).Msg("failed to delete progress record")
	}

	if err := h.assessmentRepo.Delete(ctx, assessmentID); err != nil {
		return 0, err
	}
	return len(items), nil
}

func (h *AssessmentHandler) recordAudit(r *http.Request, action, entityID string, changes map[string]interface{}) {
	entry := &entities.AuditLog{
		Timestamp:  time.Now(),
		User:       middleware.UsernameFromContext(r.Context()),
		Action:     action,
		EntityType: "assessment",
		EntityID:   entityID,
		Changes:    changes,
	}
	if err := h.auditRepo.Create(r.Context(), entry); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("failed to write audit log entry")
	}
}
