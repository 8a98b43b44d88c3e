package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veriscope/modelaudit/internal/api/handlers"
	"github.com/veriscope/modelaudit/internal/domain/entities"
	"github.com/veriscope/modelaudit/internal/investigation"
	apperrors "github.com/veriscope/modelaudit/pkg/errors"
)

type stubCriterionRepo struct {
	catalog []entities.Criterion
}

func (s *stubCriterionRepo) Create(ctx context.Context, criterion *entities.Criterion) error {
	s.catalog = append(s.catalog, *criterion)
	return nil
}

func (s *stubCriterionRepo) GetByID(ctx context.Context, id string) (*entities.Criterion, error) {
	for i := range s.catalog {
		if s.catalog[i].ID == id {
			return &s.catalog[i], nil
		}
	}
	return nil, apperrors.NewNotFoundError("criterion not found")
}

func (s *stubCriterionRepo) List(ctx context.Context) ([]entities.Criterion, error) {
	return s.catalog, nil
}

type stubModelRepo struct {
	mu     sync.Mutex
	models map[string]*entities.Model
}

func newStubModelRepo() *stubModelRepo {
	return &stubModelRepo{models: make(map[string]*entities.Model)}
}

func (s *stubModelRepo) Create(ctx context.Context, model *entities.Model) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if model.ID == "" {
		model.ID = uuid.New().String()
	}
	clone := *model
	s.models[model.ID] = &clone
	return nil
}

func (s *stubModelRepo) GetByID(ctx context.Context, id string) (*entities.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	model, ok := s.models[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("model not found")
	}
	clone := *model
	return &clone, nil
}

func (s *stubModelRepo) List(ctx context.Context) ([]entities.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.Model
	for _, model := range s.models {
		out = append(out, *model)
	}
	return out, nil
}

func (s *stubModelRepo) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.models, id)
	return nil
}

type stubAssessmentRepo struct {
	mu          sync.Mutex
	assessments map[string]*entities.Assessment
}

func newStubAssessmentRepo() *stubAssessmentRepo {
	return &stubAssessmentRepo{assessments: make(map[string]*entities.Assessment)}
}

func (s *stubAssessmentRepo) Create(ctx context.Context, assessment *entities.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if assessment.ID == "" {
		assessment.ID = uuid.New().String()
	}
	clone := *assessment
	s.assessments[assessment.ID] = &clone
	return nil
}

func (s *stubAssessmentRepo) GetByID(ctx context.Context, id string) (*entities.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	assessment, ok := s.assessments[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("assessment not found")
	}
	clone := *assessment
	return &clone, nil
}

func (s *stubAssessmentRepo) List(ctx context.Context) ([]entities.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.Assessment
	for _, assessment := range s.assessments {
		out = append(out, *assessment)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *stubAssessmentRepo) Update(ctx context.Context, assessment *entities.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *assessment
	s.assessments[assessment.ID] = &clone
	return nil
}

func (s *stubAssessmentRepo) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.assessments, id)
	return nil
}

type stubItemRepo struct {
	mu    sync.Mutex
	items []entities.AssessmentItem
}

func (s *stubItemRepo) Create(ctx context.Context, item *entities.AssessmentItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	s.items = append(s.items, *item)
	return nil
}

func (s *stubItemRepo) ListByAssessment(ctx context.Context, assessmentID string) ([]entities.AssessmentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.AssessmentItem
	for _, item := range s.items {
		if item.AssessmentID == assessmentID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubItemRepo) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return nil
}

type stubAuditRepo struct {
	mu      sync.Mutex
	entries []entities.AuditLog
}

func (s *stubAuditRepo) Create(ctx context.Context, entry *entities.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *stubAuditRepo) List(ctx context.Context, limit int) ([]entities.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.AuditLog(nil), s.entries...), nil
}

func newTestOrchestrator(t *testing.T, catalog []entities.Criterion) *investigation.Orchestrator {
	t.Helper()

	planner, err := investigation.NewPlanner(investigation.DefaultSearchGroups(), 7)
	require.NoError(t, err)

	progressRepo := &stubProgressRepo{records: make(map[string]*entities.ProgressRecord)}
	return investigation.NewOrchestrator(
		planner,
		investigation.NewRetriever(nil, 0),
		investigation.NewEngine(nil, 0),
		investigation.NewAggregator(nil, 0),
		investigation.NewTracker(progressRepo, nil),
		&stubCriterionRepo{catalog: catalog},
		newStubModelRepo(),
		newStubAssessmentRepo(),
		&stubItemRepo{},
		&stubAuditRepo{},
		nil,
	)
}

func TestInvestigationHandler_StartAccepted(t *testing.T) {
	catalog := []entities.Criterion{
		{ID: "a", Category: "Security", Name: "Encryption"},
	}
	handler := handlers.NewInvestigationHandler(newTestOrchestrator(t, catalog))

	req := httptest.NewRequest("POST", "/api/investigations", strings.NewReader(`{"model_name":"TestModel","vendor":"TestVendor"}`))
	w := httptest.NewRecorder()

	handler.StartInvestigation(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)

	var response map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "started", response["status"])
	assert.NotEmpty(t, response["assessment_id"])

	// Give the detached pipeline a moment so test teardown stays quiet.
	time.Sleep(50 * time.Millisecond)
}

func TestInvestigationHandler_EmptyModelNameRejected(t *testing.T) {
	handler := handlers.NewInvestigationHandler(newTestOrchestrator(t, []entities.Criterion{
		{ID: "a", Category: "Security", Name: "Encryption"},
	}))

	req := httptest.NewRequest("POST", "/api/investigations", strings.NewReader(`{"model_name":"  "}`))
	w := httptest.NewRecorder()

	handler.StartInvestigation(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvestigationHandler_InvalidBodyRejected(t *testing.T) {
	handler := handlers.NewInvestigationHandler(newTestOrchestrator(t, nil))

	req := httptest.NewRequest("POST", "/api/investigations", strings.NewReader(`{not json`))
	w := httptest.NewRecorder()

	handler.StartInvestigation(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
