package store

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/veriscope/modelaudit/internal/domain/entities"
	"github.com/veriscope/modelaudit/internal/domain/repositories"
	redisclient "github.com/veriscope/modelaudit/internal/infrastructure/clients/redis"
	apperrors "github.com/veriscope/modelaudit/pkg/errors"
)

// AssessmentItemStore implements AssessmentItemRepository over Redis.
// A set index per assessment keeps item lookups off full key scans.
type AssessmentItemStore struct {
	base
}

// NewAssessmentItemStore creates a new assessment item store.
func NewAssessmentItemStore(client *redisclient.Client) repositories.AssessmentItemRepository {
	return &AssessmentItemStore{base{client: client}}
}

// Create stores a judgement record and indexes it by assessment.
func (s *AssessmentItemStore) Create(ctx context.Context, item *entities.AssessmentItem) error {
	if item.AssessmentID == "" {
		return apperrors.NewValidationError("assessment id is required")
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	if err := s.setJSON(ctx, assessmentItemPrefix+item.ID, item); err != nil {
		return err
	}
	if err := s.client.Client().SAdd(ctx, itemsByAssessmentPrefix+item.AssessmentID, item.ID).Err(); err != nil {
		return apperrors.NewInternalError("failed to index assessment item", err)
	}
	return nil
}

// ListByAssessment returns all judgements for one assessment.
func (s *AssessmentItemStore) ListByAssessment(ctx context.Context, assessmentID string) ([]entities.AssessmentItem, error) {
	ids, err := s.client.Client().SMembers(ctx, itemsByAssessmentPrefix+assessmentID).Result()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read assessment item index", err)
	}

	items := make([]entities.AssessmentItem, 0, len(ids))
	for _, id := range ids {
		var item entities.AssessmentItem
		if err := s.getJSON(ctx, assessmentItemPrefix+id, &item); err != nil {
			continue
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

// Delete removes a judgement record and its index entry.
func (s *AssessmentItemStore) Delete(ctx context.Context, id string) error {
	var item entities.AssessmentItem
	if err := s.getJSON(ctx, assessmentItemPrefix+id, &item); err == nil {
		_ = s.client.Client().SRem(ctx, itemsByAssessmentPrefix+item.AssessmentID, id).Err()
	}
	return s.delete(ctx, assessmentItemPrefix+id)
}
