package store

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/veriscope/modelaudit/internal/domain/entities"
	"github.com/veriscope/modelaudit/internal/domain/repositories"
	redisclient "github.com/veriscope/modelaudit/internal/infrastructure/clients/redis"
)

// AssessmentStore implements AssessmentRepository over Redis.
type AssessmentStore struct {
	base
}

// NewAssessmentStore creates a new assessment store.
func NewAssessmentStore(client *redisclient.Client) repositories.AssessmentRepository {
	return &AssessmentStore{base{client: client}}
}

// Create stores an assessment record, assigning an id when missing.
func (s *AssessmentStore) Create(ctx context.Context, assessment *entities.Assessment) error {
	if assessment.ID == "" {
		assessment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if assessment.CreatedAt.IsZero() {
		assessment.CreatedAt = now
	}
	assessment.UpdatedAt = now
	return s.setJSON(ctx, assessmentPrefix+assessment.ID, assessment)
}

// GetByID returns one assessment record.
func (s *AssessmentStore) GetByID(ctx context.Context, id string) (*entities.Assessment, error) {
	var assessment entities.Assessment
	if err := s.getJSON(ctx, assessmentPrefix+id, &assessment); err != nil {
		return nil, err
	}
	return &assessment, nil
}

// List returns all assessments, newest first.
func (s *AssessmentStore) List(ctx context.Context) ([]entities.Assessment, error) {
	keys, err := s.listKeys(ctx, assessmentPrefix)
	if err != nil {
		return nil, err
	}

	assessments := make([]entities.Assessment, 0, len(keys))
	for _, key := range keys {
		var assessment entities.Assessment
		if err := s.getJSON(ctx, key, &assessment); err != nil {
			continue
		}
		assessments = append(assessments, assessment)
	}

	sort.Slice(assessments, func(i, j int) bool {
		return assessments[i].CreatedAt.After(assessments[j].CreatedAt)
	})
	return assessments, nil
}

// Update replaces an assessment record.
func (s *AssessmentStore) Update(ctx context.Context, assessment *entities.Assessment) error {
	assessment.UpdatedAt = time.Now().UTC()
	return s.setJSON(ctx, assessmentPrefix+assessment.ID, assessment)
}

// Delete removes an assessment record.
func (s *AssessmentStore) Delete(ctx context.Context, id string) error {
	return s.delete(ctx, assessmentPrefix+id)
}
