package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veriscope/modelaudit/internal/api/handlers"
	"github.com/veriscope/modelaudit/internal/domain/entities"
)

type assessmentFixture struct {
	handler     *handlers.AssessmentHandler
	assessments *stubAssessmentRepo
	items       *stubItemRepo
	progress    *stubProgressRepo
	audits      *stubAuditRepo
}

func newAssessmentFixture(catalog []entities.Criterion) *assessmentFixture {
	assessments := newStubAssessmentRepo()
	items := &stubItemRepo{}
	progress := &stubProgressRepo{records: make(map[string]*entities.ProgressRecord)}
	audits := &stubAuditRepo{}

	return &assessmentFixture{
		handler:     handlers.NewAssessmentHandler(assessments, items, &stubCriterionRepo{catalog: catalog}, progress, audits),
		assessments: assessments,
		items:       items,
		progress:    progress,
		audits:      audits,
	}
}

func TestAssessmentHandler_GetUnknownReturns404(t *testing.T) {
	fixture := newAssessmentFixture(nil)

	req := httptest.NewRequest("GET", "/api/assessments/missing", nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()

	fixture.handler.GetAssessment(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssessmentHandler_GetEnrichesItemsWithCatalogMetadata(t *testing.T) {
	catalog := []entities.Criterion{
		{ID: "crit-1", Category: "Security", Name: "Encryption at rest"},
	}
	fixture := newAssessmentFixture(catalog)

	assessment := &entities.Assessment{ModelName: "TestModel", Status: entities.AssessmentStatusCompleted}
	require.NoError(t, fixture.assessments.Create(context.Background(), assessment))
	require.NoError(t, fixture.items.Create(context.Background(), &entities.AssessmentItem{
		AssessmentID: assessment.ID,
		CriterionID:  "crit-1",
		Verdict:      entities.VerdictCompliant,
	}))

	req := httptest.NewRequest("GET", "/api/assessments/"+assessment.ID, nil)
	req.SetPathValue("id", assessment.ID)
	w := httptest.NewRecorder()

	fixture.handler.GetAssessment(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Assessment entities.Assessment `json:"assessment"`
		Items      []struct {
			CriterionID   string `json:"criterion_id"`
			CriterionName string `json:"criterion_name"`
			Category      string `json:"category"`
		} `json:"items"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "TestModel", response.Assessment.ModelName)
	require.Len(t, response.Items, 1)
	assert.Equal(t, "Encryption at rest", response.Items[0].CriterionName)
	assert.Equal(t, "Security", response.Items[0].Category)
}

func TestAssessmentHandler_DeleteCascadesItemsAndProgress(t *testing.T) {
	fixture := newAssessmentFixture(nil)

	assessment := &entities.Assessment{ModelName: "TestModel"}
	require.NoError(t, fixture.assessments.Create(context.Background(), assessment))
	require.NoError(t, fixture.items.Create(context.Background(), &entities.AssessmentItem{
		AssessmentID: assessment.ID,
		CriterionID:  "crit-1",
	}))
	require.NoError(t, fixture.progress.Set(context.Background(), &entities.ProgressRecord{
		AssessmentID: assessment.ID,
	}))

	req := httptest.NewRequest("DELETE", "/api/admin/assessments/"+assessment.ID, nil)
	req.SetPathValue("id", assessment.ID)
	w := httptest.NewRecorder()

	fixture.handler.DeleteAssessment(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	_, err := fixture.assessments.GetByID(context.Background(), assessment.ID)
	assert.Error(t, err)
	remaining, err := fixture.items.ListByAssessment(context.Background(), assessment.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
	_, err = fixture.progress.Get(context.Background(), assessment.ID)
	assert.Error(t, err)

	require.Len(t, fixture.audits.entries, 1)
	assert.Equal(t, "assessment_deleted", fixture.audits.entries[0].Action)
}

func TestAssessmentHandler_CleanupKeepsNewestPerModel(t *testing.T) {
	fixture := newAssessmentFixture(nil)

	old := &entities.Assessment{ModelName: "TestModel", CreatedAt: time.Now().Add(-2 * time.Hour)}
	newer := &entities.Assessment{ModelName: "TestModel", CreatedAt: time.Now()}
	other := &entities.Assessment{ModelName: "OtherModel", CreatedAt: time.Now().Add(-time.Hour)}
	for _, a := range []*entities.Assessment{old, newer, other} {
		require.NoError(t, fixture.assessments.Create(context.Background(), a))
	}

	req := httptest.NewRequest("DELETE", "/api/admin/assessments/stale", nil)
	w := httptest.NewRecorder()

	fixture.handler.CleanupStaleAssessments(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, float64(1), response["assessments_deleted"])
	assert.Equal(t, float64(2), response["models_kept"])

	_, err := fixture.assessments.GetByID(context.Background(), old.ID)
	assert.Error(t, err)
	_, err = fixture.assessments.GetByID(context.Background(), newer.ID)
	assert.NoError(t, err)
	_, err = fixture.assessments.GetByID(context.Background(), other.ID)
	assert.NoError(t, err)
}

func TestAssessmentHandler_ListReturnsNewestFirst(t *testing.T) {
	fixture := newAssessmentFixture(nil)

	old := &entities.Assessment{ModelName: "A", CreatedAt: time.Now().Add(-time.Hour)}
	recent := &entities.Assessment{ModelName: "B", CreatedAt: time.Now()}
	require.NoError(t, fixture.assessments.Create(context.Background(), old))
	require.NoError(t, fixture.assessments.Create(context.Background(), recent))

	req := httptest.NewRequest("GET", "/api/assessments", nil)
	w := httptest.NewRecorder()

	fixture.handler.ListAssessments(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Assessments []entities.Assessment `json:"assessments"`
		Count       int                   `json:"count"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 2, response.Count)
	assert.Equal(t, "B", response.Assessments[0].ModelName)
}
